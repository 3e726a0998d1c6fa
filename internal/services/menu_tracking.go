package services

import (
	"github.com/TumainiCare/tumaini-backend/internal/i18n"
	"github.com/TumainiCare/tumaini-backend/internal/models"
)

// Weekly tracking flow: income -> expenses -> capital -> attendance ->
// confirm. Each numeric step rejects bad input in place; the draft is
// submitted atomically from the confirm state.

func (m *MenuService) trackingDraft(session *models.UssdSession) *models.TrackingDraft {
	if session.FlowData.Tracking == nil {
		session.FlowData.ActiveFlow = models.FlowTracking
		session.FlowData.Tracking = &models.TrackingDraft{}
	}
	return session.FlowData.Tracking
}

func (m *MenuService) renderTrackingIncome(session *models.UssdSession) string {
	return i18n.T("tracking_income", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleTrackingIncome(session *models.UssdSession, input string) string {
	value, ok := parseAmount(input)
	if !ok {
		return m.invalidRetry(session)
	}
	m.trackingDraft(session).IncomeThisWeek = &value
	session.MenuState = models.StateTrackingExpenses
	return Con(m.render(session))
}

func (m *MenuService) renderTrackingExpenses(session *models.UssdSession) string {
	return i18n.T("tracking_expenses", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleTrackingExpenses(session *models.UssdSession, input string) string {
	value, ok := parseAmount(input)
	if !ok {
		return m.invalidRetry(session)
	}
	m.trackingDraft(session).ExpensesThisWeek = &value
	session.MenuState = models.StateTrackingCapital
	return Con(m.render(session))
}

func (m *MenuService) renderTrackingCapital(session *models.UssdSession) string {
	return i18n.T("tracking_capital", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleTrackingCapital(session *models.UssdSession, input string) string {
	value, ok := parseAmount(input)
	if !ok {
		return m.invalidRetry(session)
	}
	m.trackingDraft(session).CurrentCapital = &value
	session.MenuState = models.StateTrackingAttendance
	return Con(m.render(session))
}

func (m *MenuService) renderTrackingAttendance(session *models.UssdSession) string {
	return i18n.T("tracking_attendance", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleTrackingAttendance(session *models.UssdSession, input string) string {
	var attendance string
	switch input {
	case "1":
		attendance = models.AttendancePresent
	case "2":
		attendance = models.AttendanceAbsent
	case "3":
		attendance = models.AttendanceExcused
	default:
		return m.invalidRetry(session)
	}
	m.trackingDraft(session).Attendance = attendance
	session.MenuState = models.StateTrackingConfirm
	return Con(m.render(session))
}

func attendanceLabel(attendance, language string) string {
	switch attendance {
	case models.AttendancePresent:
		return i18n.T("attendance_present", language)
	case models.AttendanceAbsent:
		return i18n.T("attendance_absent", language)
	case models.AttendanceExcused:
		return i18n.T("attendance_excused", language)
	default:
		return attendance
	}
}

func (m *MenuService) renderTrackingConfirm(session *models.UssdSession) string {
	draft := session.FlowData.Tracking
	if draft == nil {
		draft = &models.TrackingDraft{}
	}
	lang := session.Language

	var income, expenses, capital float64
	if draft.IncomeThisWeek != nil {
		income = *draft.IncomeThisWeek
	}
	if draft.ExpensesThisWeek != nil {
		expenses = *draft.ExpensesThisWeek
	}
	if draft.CurrentCapital != nil {
		capital = *draft.CurrentCapital
	}

	return i18n.T("tracking_confirm_header", lang) + "\n" +
		i18n.T("label_income", lang) + ": KES " + fmtAmount(income) + "\n" +
		i18n.T("label_expenses", lang) + ": KES " + fmtAmount(expenses) + "\n" +
		i18n.T("label_capital", lang) + ": KES " + fmtAmount(capital) + "\n" +
		i18n.T("label_attendance", lang) + ": " + attendanceLabel(draft.Attendance, lang) + "\n" +
		i18n.T("confirm_options", lang)
}

func (m *MenuService) handleTrackingConfirm(session *models.UssdSession, input string) string {
	switch input {
	case "1":
		return m.submitTracking(session)
	case "2":
		// Edit restarts at the first step with the draft intact.
		session.MenuState = models.StateTrackingIncome
		return Con(m.render(session))
	case "3":
		session.FlowData.ClearFlow()
		session.MenuState = models.StateMainMenu
		return Con(i18n.T("tracking_cancelled", session.Language) + "\n\n" + m.render(session))
	default:
		return m.invalidRetry(session)
	}
}

func (m *MenuService) submitTracking(session *models.UssdSession) string {
	draft := session.FlowData.Tracking
	if draft == nil || draft.IncomeThisWeek == nil || draft.ExpensesThisWeek == nil ||
		draft.CurrentCapital == nil || draft.Attendance == "" {
		return m.invalidRetry(session)
	}

	payload := &TrackingPayload{
		WeekEnding:       m.today(),
		IncomeThisWeek:   *draft.IncomeThisWeek,
		ExpensesThisWeek: *draft.ExpensesThisWeek,
		CurrentCapital:   *draft.CurrentCapital,
		Attendance:       draft.Attendance,
		Notes:            "Submitted via USSD",
		Challenges:       "Not captured via USSD",
	}

	_, err := m.gateways.Tracking.Submit(session.BeneficiaryID, payload, session.UserID, session.UserRole)
	if err != nil {
		return m.collaboratorFailure(session, "tracking submit", err)
	}

	session.FlowData.ClearFlow()
	session.MenuState = models.StateMainMenu
	return Con(i18n.T("tracking_saved", session.Language) + "\n\n" + m.render(session))
}
