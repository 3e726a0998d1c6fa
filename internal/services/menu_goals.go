package services

import (
	"regexp"
	"strconv"
	"time"

	"github.com/TumainiCare/tumaini-backend/internal/i18n"
	"github.com/TumainiCare/tumaini-backend/internal/models"
)

// Goals flow. Read path: goals_menu -> view_goals -> goal_details, with the
// listing cached on the session so index selections resolve without a
// second query. Write path: create_goal_type -> ... -> create_goal_confirm.

const goalListLimit = 5

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func (m *MenuService) goalDraft(session *models.UssdSession) *models.GoalDraft {
	if session.FlowData.Goal == nil {
		session.FlowData.ActiveFlow = models.FlowGoalCreate
		session.FlowData.Goal = &models.GoalDraft{}
	}
	return session.FlowData.Goal
}

func (m *MenuService) renderGoalsMenu(session *models.UssdSession) string {
	return i18n.T("goals_menu", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleGoalsMenu(session *models.UssdSession, input string) string {
	switch input {
	case "1":
		goals, err := m.gateways.Goals.ListRecent(session.BeneficiaryID, goalListLimit)
		if err != nil {
			return m.collaboratorFailure(session, "goal listing", err)
		}

		session.FlowData.ClearFlow()
		session.FlowData.ActiveFlow = models.FlowGoalView
		for _, g := range goals {
			session.FlowData.GoalPage = append(session.FlowData.GoalPage, models.ListedGoal{
				GoalID:       g.GoalID,
				GoalType:     g.GoalType,
				Description:  g.Description,
				TargetAmount: g.TargetAmount,
				TargetDate:   g.TargetDate.Format("2006-01-02"),
				Status:       g.Status,
			})
		}
		session.MenuState = models.StateViewGoals
		return Con(m.render(session))
	case "2":
		session.FlowData.ClearFlow()
		session.FlowData.ActiveFlow = models.FlowGoalCreate
		session.FlowData.Goal = &models.GoalDraft{}
		session.MenuState = models.StateCreateGoalType
		return Con(m.render(session))
	default:
		return m.invalidRetry(session)
	}
}

func (m *MenuService) renderViewGoals(session *models.UssdSession) string {
	lang := session.Language
	page := session.FlowData.GoalPage
	if len(page) == 0 {
		return i18n.T("no_goals", lang) + "\n" + i18n.T("back_hint", lang)
	}

	out := i18n.T("goals_list_header", lang)
	for i, g := range page {
		out += "\n" + strconv.Itoa(i+1) + ". " + g.Description + " (KES " + fmtAmount(g.TargetAmount) + ")"
	}
	return out + "\n" + i18n.T("back_hint", lang)
}

func (m *MenuService) handleViewGoals(session *models.UssdSession, input string) string {
	page := session.FlowData.GoalPage

	if len(page) == 0 {
		// Empty-list escape hatch straight into goal creation.
		if input == "2" {
			session.FlowData.ClearFlow()
			session.FlowData.ActiveFlow = models.FlowGoalCreate
			session.FlowData.Goal = &models.GoalDraft{}
			session.MenuState = models.StateCreateGoalType
			return Con(m.render(session))
		}
		return m.invalidRetry(session)
	}

	index, err := strconv.Atoi(input)
	if err != nil || index < 1 || index > len(page) {
		return m.invalidRetry(session)
	}

	selected := page[index-1]
	session.FlowData.SelectedGoal = &selected
	session.MenuState = models.StateGoalDetails
	return Con(m.render(session))
}

func goalTypeLabel(goalType, language string) string {
	switch goalType {
	case models.GoalTypeBusiness:
		return i18n.T("goal_type_business", language)
	case models.GoalTypeEducation:
		return i18n.T("goal_type_education", language)
	case models.GoalTypeSavings:
		return i18n.T("goal_type_savings", language)
	case models.GoalTypeOther:
		return i18n.T("goal_type_other", language)
	default:
		return goalType
	}
}

func (m *MenuService) renderGoalDetails(session *models.UssdSession) string {
	lang := session.Language
	goal := session.FlowData.SelectedGoal
	if goal == nil {
		return m.renderGoalsMenu(session)
	}

	return goal.Description + "\n" +
		i18n.T("label_type", lang) + ": " + goalTypeLabel(goal.GoalType, lang) + "\n" +
		i18n.T("label_amount", lang) + ": KES " + fmtAmount(goal.TargetAmount) + "\n" +
		i18n.T("label_date", lang) + ": " + goal.TargetDate + "\n" +
		i18n.T("label_status", lang) + ": " + goal.Status + "\n" +
		i18n.T("back_hint", lang)
}

func (m *MenuService) handleGoalDetails(session *models.UssdSession, input string) string {
	// Any input returns to the goals menu; 00 separately walks back to
	// the listing.
	session.FlowData.ClearFlow()
	session.MenuState = models.StateGoalsMenu
	return Con(m.render(session))
}

// Create-goal write path

func (m *MenuService) renderCreateGoalType(session *models.UssdSession) string {
	return i18n.T("create_goal_type", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleCreateGoalType(session *models.UssdSession, input string) string {
	var goalType string
	switch input {
	case "1":
		goalType = models.GoalTypeBusiness
	case "2":
		goalType = models.GoalTypeEducation
	case "3":
		goalType = models.GoalTypeSavings
	case "4":
		goalType = models.GoalTypeOther
	default:
		return m.invalidRetry(session)
	}
	m.goalDraft(session).GoalType = goalType
	session.MenuState = models.StateCreateGoalDesc
	return Con(m.render(session))
}

func (m *MenuService) renderCreateGoalDesc(session *models.UssdSession) string {
	return i18n.T("create_goal_desc", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleCreateGoalDesc(session *models.UssdSession, input string) string {
	if input == "" {
		return m.invalidRetry(session)
	}
	m.goalDraft(session).Description = input
	session.MenuState = models.StateCreateGoalAmount
	return Con(m.render(session))
}

func (m *MenuService) renderCreateGoalAmount(session *models.UssdSession) string {
	return i18n.T("create_goal_amount", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleCreateGoalAmount(session *models.UssdSession, input string) string {
	value, ok := parseAmount(input)
	if !ok {
		return m.invalidRetry(session)
	}
	m.goalDraft(session).TargetAmount = &value
	session.MenuState = models.StateCreateGoalDate
	return Con(m.render(session))
}

func (m *MenuService) renderCreateGoalDate(session *models.UssdSession) string {
	return i18n.T("create_goal_date", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleCreateGoalDate(session *models.UssdSession, input string) string {
	// Pattern first, then a real-calendar parse: 2025-02-30 matches the
	// pattern but is not a date.
	if !isoDatePattern.MatchString(input) {
		return m.invalidRetry(session)
	}
	if _, err := time.Parse("2006-01-02", input); err != nil {
		return m.invalidRetry(session)
	}
	m.goalDraft(session).TargetDate = input
	session.MenuState = models.StateCreateGoalConfirm
	return Con(m.render(session))
}

func (m *MenuService) renderCreateGoalConfirm(session *models.UssdSession) string {
	lang := session.Language
	draft := session.FlowData.Goal
	if draft == nil {
		draft = &models.GoalDraft{}
	}

	var amount float64
	if draft.TargetAmount != nil {
		amount = *draft.TargetAmount
	}

	return i18n.T("goal_confirm_header", lang) + "\n" +
		i18n.T("label_type", lang) + ": " + goalTypeLabel(draft.GoalType, lang) + "\n" +
		i18n.T("label_description", lang) + ": " + draft.Description + "\n" +
		i18n.T("label_amount", lang) + ": KES " + fmtAmount(amount) + "\n" +
		i18n.T("label_date", lang) + ": " + draft.TargetDate + "\n" +
		i18n.T("confirm_options", lang)
}

func (m *MenuService) handleCreateGoalConfirm(session *models.UssdSession, input string) string {
	switch input {
	case "1":
		draft := session.FlowData.Goal
		if draft == nil || draft.GoalType == "" || draft.Description == "" ||
			draft.TargetAmount == nil || draft.TargetDate == "" {
			return m.invalidRetry(session)
		}
		if _, err := m.gateways.Goals.Create(session.BeneficiaryID, draft); err != nil {
			return m.collaboratorFailure(session, "goal create", err)
		}
		session.FlowData.ClearFlow()
		session.MenuState = models.StateGoalsMenu
		return Con(i18n.T("goal_saved", session.Language) + "\n\n" + m.render(session))
	case "2":
		session.MenuState = models.StateCreateGoalType
		return Con(m.render(session))
	case "3":
		session.FlowData.ClearFlow()
		session.MenuState = models.StateGoalsMenu
		return Con(i18n.T("goal_cancelled", session.Language) + "\n\n" + m.render(session))
	default:
		return m.invalidRetry(session)
	}
}
