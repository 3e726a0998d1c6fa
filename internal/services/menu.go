package services

import (
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/TumainiCare/tumaini-backend/internal/i18n"
	"github.com/TumainiCare/tumaini-backend/internal/models"
)

// BackSentinel is the reserved input that pops the single-slot back memory.
// It is honored in every state except session start.
const BackSentinel = "00"

// stateEntry pairs a state's pure renderer with its input handler. The
// handler mutates the session and returns the full CON/END response; the
// renderer returns the bare screen text for the state as it stands.
type stateEntry struct {
	render func(session *models.UssdSession) string
	handle func(session *models.UssdSession, input string) string
}

// MenuService is the menu state machine: one table entry per state,
// dispatched on (current state, newest input token).
type MenuService struct {
	gateways *Gateways
	states   map[string]stateEntry
	today    func() time.Time
}

// NewMenuService builds the state-transition table once.
func NewMenuService(gateways *Gateways) *MenuService {
	m := &MenuService{
		gateways: gateways,
		today:    time.Now,
	}

	m.states = map[string]stateEntry{
		models.StateMainMenu:       {render: m.renderMainMenu, handle: m.handleMainMenu},
		models.StateSessionExpired: {render: m.renderSessionExpired, handle: m.handleSessionExpired},
		models.StateLanguageSelect: {render: m.renderLanguageSelect, handle: m.handleLanguageSelect},

		models.StateTrackingIncome:     {render: m.renderTrackingIncome, handle: m.handleTrackingIncome},
		models.StateTrackingExpenses:   {render: m.renderTrackingExpenses, handle: m.handleTrackingExpenses},
		models.StateTrackingCapital:    {render: m.renderTrackingCapital, handle: m.handleTrackingCapital},
		models.StateTrackingAttendance: {render: m.renderTrackingAttendance, handle: m.handleTrackingAttendance},
		models.StateTrackingConfirm:    {render: m.renderTrackingConfirm, handle: m.handleTrackingConfirm},

		models.StateGoalsMenu:         {render: m.renderGoalsMenu, handle: m.handleGoalsMenu},
		models.StateViewGoals:         {render: m.renderViewGoals, handle: m.handleViewGoals},
		models.StateGoalDetails:       {render: m.renderGoalDetails, handle: m.handleGoalDetails},
		models.StateCreateGoalType:    {render: m.renderCreateGoalType, handle: m.handleCreateGoalType},
		models.StateCreateGoalDesc:    {render: m.renderCreateGoalDesc, handle: m.handleCreateGoalDesc},
		models.StateCreateGoalAmount:  {render: m.renderCreateGoalAmount, handle: m.handleCreateGoalAmount},
		models.StateCreateGoalDate:    {render: m.renderCreateGoalDate, handle: m.handleCreateGoalDate},
		models.StateCreateGoalConfirm: {render: m.renderCreateGoalConfirm, handle: m.handleCreateGoalConfirm},

		models.StateContactsMenu:           {render: m.renderContactsMenu, handle: m.handleContactsMenu},
		models.StateViewContacts:           {render: m.renderViewContacts, handle: m.handleViewContacts},
		models.StateAddContactName:         {render: m.renderAddContactName, handle: m.handleAddContactName},
		models.StateAddContactPhone:        {render: m.renderAddContactPhone, handle: m.handleAddContactPhone},
		models.StateAddContactRelationship: {render: m.renderAddContactRelationship, handle: m.handleAddContactRelationship},
		models.StateAddContactAddress:      {render: m.renderAddContactAddress, handle: m.handleAddContactAddress},
		models.StateAddContactPrimary:      {render: m.renderAddContactPrimary, handle: m.handleAddContactPrimary},
		models.StateAddContactConfirm:      {render: m.renderAddContactConfirm, handle: m.handleAddContactConfirm},
		models.StateSelectPrimaryContact:   {render: m.renderSelectPrimaryContact, handle: m.handleSelectPrimaryContact},
	}

	return m
}

// LastToken isolates the newest input segment. The gateway re-delivers the
// whole accumulated text ("1*10000*2000") on every turn; only the portion
// after the last separator is new.
func LastToken(text string) string {
	if idx := strings.LastIndex(text, "*"); idx >= 0 {
		return text[idx+1:]
	}
	return text
}

// Process runs one turn of the state machine. The session arrives already
// resolved (and extended) by the SessionService; expiredNow is true when
// this very turn detected expiry and created the replacement row, in which
// case the pending input belongs to the dead session and is discarded in
// favor of the restart offer.
func (m *MenuService) Process(session *models.UssdSession, text string, isStart, expiredNow bool) string {
	m.bindIdentity(session)

	if !session.HasIdentity() {
		session.IsActive = false
		return End(i18n.Bilingual("not_registered"))
	}
	if session.UserRole != models.RoleBeneficiary {
		session.IsActive = false
		return End(i18n.Bilingual("role_not_supported"))
	}

	if isStart {
		// A fresh keypress sequence always starts at the root menu,
		// whatever state a stale row may carry.
		session.MenuState = models.StateMainMenu
		session.FlowData.ClearFlow()
		return Con(m.render(session))
	}

	input := LastToken(text)
	session.StepCount++
	session.RecordInput(input)

	if expiredNow {
		return Con(m.render(session))
	}

	if input == BackSentinel {
		prev := session.FlowData.PreviousMenuState
		if prev == "" {
			prev = models.StateMainMenu
		}
		session.FlowData.PreviousMenuState = ""
		session.MenuState = prev
		// An accumulator lives only while the state belongs to its flow;
		// backing out of the flow drops the draft.
		if session.FlowData.ActiveFlow != models.FlowNone && flowFamily(prev) != session.FlowData.ActiveFlow {
			session.FlowData.ClearFlow()
		}
		return Con(m.render(session))
	}

	entry, ok := m.states[session.MenuState]
	if !ok {
		log.Printf("⚠️  Unknown menu state %q for session %s - resetting to main menu", session.MenuState, session.SessionID)
		session.MenuState = models.StateMainMenu
		session.FlowData.ClearFlow()
		return Con(m.render(session))
	}

	// Single-slot back memory: remember where this input was typed.
	session.FlowData.PreviousMenuState = session.MenuState

	return entry.handle(session, input)
}

// flowFamily maps a state to the flow whose accumulator it may touch.
func flowFamily(state string) models.FlowKind {
	switch state {
	case models.StateTrackingIncome, models.StateTrackingExpenses, models.StateTrackingCapital,
		models.StateTrackingAttendance, models.StateTrackingConfirm:
		return models.FlowTracking
	case models.StateViewGoals, models.StateGoalDetails:
		return models.FlowGoalView
	case models.StateCreateGoalType, models.StateCreateGoalDesc, models.StateCreateGoalAmount,
		models.StateCreateGoalDate, models.StateCreateGoalConfirm:
		return models.FlowGoalCreate
	case models.StateViewContacts:
		return models.FlowContactView
	case models.StateAddContactName, models.StateAddContactPhone, models.StateAddContactRelationship,
		models.StateAddContactAddress, models.StateAddContactPrimary, models.StateAddContactConfirm:
		return models.FlowContactCreate
	case models.StateSelectPrimaryContact:
		return models.FlowContactSelect
	default:
		return models.FlowNone
	}
}

// RenderState renders the session's current state with no mutation.
func (m *MenuService) RenderState(session *models.UssdSession) string {
	return m.render(session)
}

func (m *MenuService) render(session *models.UssdSession) string {
	entry, ok := m.states[session.MenuState]
	if !ok {
		return i18n.T("main_menu", session.Language)
	}
	return entry.render(session)
}

// invalidRetry re-renders the current state behind an inline error line.
// State and accumulator stay untouched; the caller simply tries again.
func (m *MenuService) invalidRetry(session *models.UssdSession) string {
	return Con(i18n.T("invalid_input", session.Language) + "\n" + m.render(session))
}

// bindIdentity resolves the caller's phone number to a domain identity on
// first contact and caches it on the session. Idempotent; a miss leaves
// the identity unset for the dispatcher to reject.
func (m *MenuService) bindIdentity(session *models.UssdSession) {
	if session.HasIdentity() {
		return
	}

	user, err := m.gateways.Users.FindByPhone(session.PhoneNumber)
	if err != nil {
		return
	}

	if user.Role == models.RoleBeneficiary {
		beneficiary, err := m.gateways.Beneficiaries.FindBeneficiaryByUserID(user.UserID)
		if err != nil {
			log.Printf("⚠️  User %s has beneficiary role but no beneficiary record", user.UserID)
			return
		}
		session.BeneficiaryID = beneficiary.BeneficiaryID
	}

	session.UserID = user.UserID
	session.UserRole = user.Role
	session.Language = user.Language
}

// collaboratorFailure terminates the turn after a gateway error. The
// in-progress draft does not survive; the caller re-enters the flow.
func (m *MenuService) collaboratorFailure(session *models.UssdSession, op string, err error) string {
	log.Printf("❌ %s failed for session %s: %v", op, session.SessionID, err)
	session.ErrorCount++
	session.IsActive = false
	session.FlowData.ClearFlow()
	return End(i18n.T("could_not_save", session.Language))
}

// Root menu

func (m *MenuService) renderMainMenu(session *models.UssdSession) string {
	return i18n.T("main_menu", session.Language)
}

func (m *MenuService) handleMainMenu(session *models.UssdSession, input string) string {
	switch input {
	case "1":
		session.FlowData.ClearFlow()
		session.FlowData.ActiveFlow = models.FlowTracking
		session.FlowData.Tracking = &models.TrackingDraft{}
		session.MenuState = models.StateTrackingIncome
		return Con(m.render(session))
	case "2":
		session.MenuState = models.StateGoalsMenu
		return Con(m.render(session))
	case "3":
		session.MenuState = models.StateContactsMenu
		return Con(m.render(session))
	case "4":
		session.MenuState = models.StateLanguageSelect
		return Con(m.render(session))
	case "0":
		return m.exit(session)
	default:
		return m.invalidRetry(session)
	}
}

// exit ends the session through the normal terminal path.
func (m *MenuService) exit(session *models.UssdSession) string {
	now := m.today()
	session.IsActive = false
	session.CompletedAt = &now
	session.FlowData.ClearFlow()
	return End(i18n.T("goodbye", session.Language))
}

// Expired-session restart offer

func (m *MenuService) renderSessionExpired(session *models.UssdSession) string {
	return i18n.T("session_expired", session.Language)
}

func (m *MenuService) handleSessionExpired(session *models.UssdSession, input string) string {
	switch input {
	case "1":
		session.MenuState = models.StateMainMenu
		session.FlowData.ClearFlow()
		return Con(m.render(session))
	case "2":
		return m.exit(session)
	default:
		return m.invalidRetry(session)
	}
}

// Language flow

func (m *MenuService) renderLanguageSelect(session *models.UssdSession) string {
	return i18n.T("language_select", session.Language)
}

func (m *MenuService) handleLanguageSelect(session *models.UssdSession, input string) string {
	var language string
	switch input {
	case "1":
		language = models.LanguageEnglish
	case "2":
		language = models.LanguageSwahili
	default:
		return m.invalidRetry(session)
	}

	if err := m.gateways.Users.UpdateLanguage(session.UserID, language); err != nil {
		return m.collaboratorFailure(session, "language update", err)
	}

	session.Language = language
	session.MenuState = models.StateMainMenu
	return Con(i18n.T("language_updated", session.Language) + "\n\n" + m.render(session))
}

// parseAmount accepts non-negative finite numeric input. ParseFloat also
// admits "nan" and "inf", neither of which survives jsonb marshalling.
func parseAmount(input string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, false
	}
	return value, true
}

// fmtAmount renders a KES amount without trailing zeros.
func fmtAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
