package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/TumainiCare/tumaini-backend/internal/i18n"
	"github.com/TumainiCare/tumaini-backend/internal/models"
)

// Gateway fakes

type fakeUserGateway struct {
	users         map[string]*models.User // keyed by normalized phone
	languageCalls []string
	updateErr     error
}

func (f *fakeUserGateway) FindByPhone(phone string) (*models.User, error) {
	user, ok := f.users[models.NormalizePhone(phone)]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (f *fakeUserGateway) UpdateLanguage(userID, language string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.languageCalls = append(f.languageCalls, userID+":"+language)
	for _, u := range f.users {
		if u.UserID == userID {
			u.Language = language
		}
	}
	return nil
}

type fakeBeneficiaryGateway struct {
	beneficiaries map[string]*models.Beneficiary // keyed by user id
}

func (f *fakeBeneficiaryGateway) FindBeneficiaryByUserID(userID string) (*models.Beneficiary, error) {
	b, ok := f.beneficiaries[userID]
	if !ok {
		return nil, errors.New("beneficiary not found")
	}
	return b, nil
}

type fakeGoalGateway struct {
	goals     []*models.Goal
	created   []*models.GoalDraft
	listErr   error
	createErr error
}

func (f *fakeGoalGateway) ListRecent(beneficiaryID string, limit int) ([]*models.Goal, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.goals) > limit {
		return f.goals[:limit], nil
	}
	return f.goals, nil
}

func (f *fakeGoalGateway) Create(beneficiaryID string, draft *models.GoalDraft) (*models.Goal, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	copied := *draft
	f.created = append(f.created, &copied)
	return &models.Goal{GoalID: "GOL-test", BeneficiaryID: beneficiaryID}, nil
}

type fakeContactGateway struct {
	contacts     []*models.EmergencyContact
	created      []*models.ContactDraft
	primaryCalls []string
	listErr      error
	createErr    error
	primaryErr   error
}

func (f *fakeContactGateway) ListRecent(beneficiaryID string, limit int) ([]*models.EmergencyContact, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.contacts) > limit {
		return f.contacts[:limit], nil
	}
	return f.contacts, nil
}

func (f *fakeContactGateway) Create(beneficiaryID string, draft *models.ContactDraft) (*models.EmergencyContact, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	copied := *draft
	f.created = append(f.created, &copied)
	return &models.EmergencyContact{ContactID: "CNT-test", BeneficiaryID: beneficiaryID}, nil
}

func (f *fakeContactGateway) SetPrimary(contactID string) error {
	if f.primaryErr != nil {
		return f.primaryErr
	}
	f.primaryCalls = append(f.primaryCalls, contactID)
	return nil
}

type fakeTrackingSubmission struct {
	beneficiaryID string
	payload       *TrackingPayload
	submitterID   string
	submitterRole string
}

type fakeTrackingGateway struct {
	submissions []fakeTrackingSubmission
	submitErr   error
}

func (f *fakeTrackingGateway) Submit(beneficiaryID string, payload *TrackingPayload, submitterID, submitterRole string) (*models.WeeklyTracking, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submissions = append(f.submissions, fakeTrackingSubmission{
		beneficiaryID: beneficiaryID,
		payload:       payload,
		submitterID:   submitterID,
		submitterRole: submitterRole,
	})
	return &models.WeeklyTracking{RecordID: "TRK-test"}, nil
}

type fakeSet struct {
	users         *fakeUserGateway
	beneficiaries *fakeBeneficiaryGateway
	goals         *fakeGoalGateway
	contacts      *fakeContactGateway
	tracking      *fakeTrackingGateway
}

const testPhone = "+254712345678"

func newTestMenu() (*MenuService, *fakeSet) {
	fakes := &fakeSet{
		users: &fakeUserGateway{users: map[string]*models.User{
			testPhone: {UserID: "USR-1", PhoneNumber: testPhone, Role: models.RoleBeneficiary, Language: models.LanguageEnglish},
		}},
		beneficiaries: &fakeBeneficiaryGateway{beneficiaries: map[string]*models.Beneficiary{
			"USR-1": {BeneficiaryID: "BEN-1", UserID: "USR-1"},
		}},
		goals:    &fakeGoalGateway{},
		contacts: &fakeContactGateway{},
		tracking: &fakeTrackingGateway{},
	}

	m := NewMenuService(&Gateways{
		Users:         fakes.users,
		Beneficiaries: fakes.beneficiaries,
		Goals:         fakes.goals,
		Contacts:      fakes.contacts,
		Tracking:      fakes.tracking,
	})
	m.today = func() time.Time {
		return time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC)
	}
	return m, fakes
}

func newTestSession() *models.UssdSession {
	return &models.UssdSession{
		SessionID:   "ATU-1",
		PhoneNumber: testPhone,
		MenuState:   models.StateMainMenu,
		Language:    models.LanguageEnglish,
		IsActive:    true,
	}
}

// drive plays a session-start turn followed by the given inputs,
// re-delivering the accumulated text the way the gateway does.
func drive(t *testing.T, m *MenuService, session *models.UssdSession, inputs ...string) string {
	t.Helper()
	response := m.Process(session, "", true, false)
	var accumulated []string
	for _, input := range inputs {
		accumulated = append(accumulated, input)
		response = m.Process(session, strings.Join(accumulated, "*"), false, false)
	}
	return response
}

func TestSessionStartRendersMainMenu(t *testing.T) {
	m, _ := newTestMenu()
	session := newTestSession()

	response := m.Process(session, "", true, false)

	want := Con(i18n.T("main_menu", models.LanguageEnglish))
	if response != want {
		t.Errorf("session start response = %q, want %q", response, want)
	}
	if session.StepCount != 0 {
		t.Errorf("session start should not count as a step, got %d", session.StepCount)
	}
}

func TestLastToken(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"1":             "1",
		"1*10000":       "10000",
		"1*10000*2000*": "",
	}
	for text, want := range cases {
		if got := LastToken(text); got != want {
			t.Errorf("LastToken(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestUnregisteredCallerTerminates(t *testing.T) {
	m, fakes := newTestMenu()
	fakes.users.users = map[string]*models.User{}
	session := newTestSession()

	response := m.Process(session, "", true, false)

	if !strings.HasPrefix(response, "END ") {
		t.Fatalf("expected END response, got %q", response)
	}
	if !strings.Contains(response, i18n.T("not_registered", models.LanguageEnglish)) ||
		!strings.Contains(response, i18n.T("not_registered", models.LanguageSwahili)) {
		t.Errorf("expected bilingual not-registered message, got %q", response)
	}
	if session.IsActive {
		t.Error("session should be inactive after registration failure")
	}
	if session.CompletedAt != nil {
		t.Error("abandonment must not set CompletedAt")
	}
}

func TestUnsupportedRoleTerminates(t *testing.T) {
	m, fakes := newTestMenu()
	fakes.users.users[testPhone].Role = models.RoleCaseworker
	session := newTestSession()

	response := m.Process(session, "", true, false)

	if !strings.HasPrefix(response, "END ") {
		t.Fatalf("expected END response, got %q", response)
	}
	if !strings.Contains(response, i18n.T("role_not_supported", models.LanguageEnglish)) {
		t.Errorf("expected role-not-supported message, got %q", response)
	}
}

func TestRenderIdempotent(t *testing.T) {
	m, _ := newTestMenu()
	session := newTestSession()
	m.Process(session, "", true, false)

	first := m.RenderState(session)
	second := m.RenderState(session)
	if first != second {
		t.Errorf("render mutated state: %q vs %q", first, second)
	}
}

func TestFullTrackingSubmission(t *testing.T) {
	m, fakes := newTestMenu()
	session := newTestSession()

	response := drive(t, m, session, "1", "10000", "2000", "50000", "1", "1")

	if len(fakes.tracking.submissions) != 1 {
		t.Fatalf("expected exactly 1 tracking submission, got %d", len(fakes.tracking.submissions))
	}
	sub := fakes.tracking.submissions[0]
	if sub.beneficiaryID != "BEN-1" {
		t.Errorf("beneficiary = %q, want BEN-1", sub.beneficiaryID)
	}
	if sub.payload.IncomeThisWeek != 10000 || sub.payload.ExpensesThisWeek != 2000 || sub.payload.CurrentCapital != 50000 {
		t.Errorf("unexpected amounts: %+v", sub.payload)
	}
	if sub.payload.Attendance != models.AttendancePresent {
		t.Errorf("attendance = %q, want PRESENT", sub.payload.Attendance)
	}
	if !sub.payload.WeekEnding.Equal(m.today()) {
		t.Errorf("weekEnding = %v, want today", sub.payload.WeekEnding)
	}
	if sub.submitterID != "USR-1" || sub.submitterRole != models.RoleBeneficiary {
		t.Errorf("submitter = %q/%q", sub.submitterID, sub.submitterRole)
	}

	if !strings.HasPrefix(response, "CON ") {
		t.Errorf("flow should return to the main menu, not exit: %q", response)
	}
	if !strings.Contains(response, i18n.T("main_menu", models.LanguageEnglish)) {
		t.Errorf("expected main menu after submit, got %q", response)
	}
	if session.MenuState != models.StateMainMenu {
		t.Errorf("state = %q, want main_menu", session.MenuState)
	}
	if session.FlowData.Tracking != nil || session.FlowData.ActiveFlow != models.FlowNone {
		t.Error("draft should be cleared after submit")
	}
}

func TestBadAmountRejectedWithoutAdvancing(t *testing.T) {
	m, fakes := newTestMenu()

	// ParseFloat accepts "nan" and "inf"; those must be rejected like any
	// other bad amount or the draft would never survive jsonb marshalling.
	for _, bad := range []string{"-5", "banana", "nan", "NaN", "inf", "+inf", "-Inf", "1e999"} {
		session := newTestSession()
		response := drive(t, m, session, "1", bad)

		if session.MenuState != models.StateTrackingIncome {
			t.Errorf("input %q: state = %q, want tracking_income", bad, session.MenuState)
		}
		if session.FlowData.Tracking == nil || session.FlowData.Tracking.IncomeThisWeek != nil {
			t.Errorf("input %q: income must stay unset after rejected input", bad)
		}
		if !strings.Contains(response, i18n.T("invalid_input", models.LanguageEnglish)) {
			t.Errorf("input %q: expected inline error, got %q", bad, response)
		}
		if !strings.Contains(response, i18n.T("tracking_income", models.LanguageEnglish)) {
			t.Errorf("input %q: expected income prompt re-render, got %q", bad, response)
		}
	}
	if len(fakes.tracking.submissions) != 0 {
		t.Error("no submission expected")
	}
}

func TestParseAmount(t *testing.T) {
	accepted := map[string]float64{"0": 0, "10000": 10000, " 2500.50 ": 2500.50}
	for input, want := range accepted {
		value, ok := parseAmount(input)
		if !ok || value != want {
			t.Errorf("parseAmount(%q) = %v, %v; want %v, true", input, value, ok, want)
		}
	}
	for _, input := range []string{"-1", "nan", "inf", "+inf", "-inf", "1e999", "ten", ""} {
		if _, ok := parseAmount(input); ok {
			t.Errorf("parseAmount(%q) accepted, want rejection", input)
		}
	}
}

func TestTrackingEditKeepsDraft(t *testing.T) {
	m, _ := newTestMenu()
	session := newTestSession()

	drive(t, m, session, "1", "10000", "2000", "50000", "1", "2")

	if session.MenuState != models.StateTrackingIncome {
		t.Fatalf("edit should restart at income, got %q", session.MenuState)
	}
	draft := session.FlowData.Tracking
	if draft == nil || draft.ExpensesThisWeek == nil || *draft.ExpensesThisWeek != 2000 {
		t.Error("edit must not clear the draft")
	}
}

func TestTrackingCancelClearsDraft(t *testing.T) {
	m, fakes := newTestMenu()
	session := newTestSession()

	response := drive(t, m, session, "1", "10000", "2000", "50000", "1", "3")

	if len(fakes.tracking.submissions) != 0 {
		t.Error("cancel must not submit")
	}
	if session.FlowData.Tracking != nil {
		t.Error("cancel must clear the draft")
	}
	if session.MenuState != models.StateMainMenu {
		t.Errorf("state = %q, want main_menu", session.MenuState)
	}
	if !strings.Contains(response, i18n.T("tracking_cancelled", models.LanguageEnglish)) {
		t.Errorf("expected cancel notice, got %q", response)
	}
}

func TestTrackingSubmitFailureEndsSession(t *testing.T) {
	m, fakes := newTestMenu()
	fakes.tracking.submitErr = errors.New("gateway down")
	session := newTestSession()

	response := drive(t, m, session, "1", "10000", "2000", "50000", "1", "1")

	if !strings.HasPrefix(response, "END ") {
		t.Fatalf("collaborator failure must terminate, got %q", response)
	}
	if !strings.Contains(response, i18n.T("could_not_save", models.LanguageEnglish)) {
		t.Errorf("expected could-not-save message, got %q", response)
	}
	if session.IsActive {
		t.Error("session should be inactive after collaborator failure")
	}
	if session.CompletedAt != nil {
		t.Error("failure termination must not set CompletedAt")
	}
	if session.ErrorCount != 1 {
		t.Errorf("error count = %d, want 1", session.ErrorCount)
	}
}

func TestBackNavigationRoundTrip(t *testing.T) {
	m, _ := newTestMenu()
	session := newTestSession()
	m.Process(session, "", true, false)

	mainRender := m.RenderState(session)

	m.Process(session, "2", false, false)
	if session.MenuState != models.StateGoalsMenu {
		t.Fatalf("state = %q, want goals_menu", session.MenuState)
	}

	response := m.Process(session, "2*00", false, false)

	if session.MenuState != models.StateMainMenu {
		t.Errorf("back should return to main_menu, got %q", session.MenuState)
	}
	if response != Con(mainRender) {
		t.Errorf("back render = %q, want %q", response, Con(mainRender))
	}
	if session.FlowData.PreviousMenuState != "" {
		t.Errorf("back slot should be cleared, got %q", session.FlowData.PreviousMenuState)
	}
}

func TestBackWithinFlowKeepsDraft(t *testing.T) {
	m, _ := newTestMenu()
	session := newTestSession()

	drive(t, m, session, "1", "10000")
	m.Process(session, "1*10000*00", false, false)

	if session.MenuState != models.StateTrackingIncome {
		t.Fatalf("state = %q, want tracking_income", session.MenuState)
	}
	draft := session.FlowData.Tracking
	if draft == nil || draft.IncomeThisWeek == nil || *draft.IncomeThisWeek != 10000 {
		t.Error("back within the flow must keep the draft")
	}
}

func TestBackOutOfFlowClearsDraft(t *testing.T) {
	m, _ := newTestMenu()
	session := newTestSession()

	drive(t, m, session, "1", "10000", "00")
	m.Process(session, "1*10000*00*00", false, false)

	if session.MenuState != models.StateMainMenu {
		t.Fatalf("state = %q, want main_menu", session.MenuState)
	}
	if session.FlowData.Tracking != nil || session.FlowData.ActiveFlow != models.FlowNone {
		t.Error("leaving the flow family must drop the accumulator")
	}
}

func TestBackWithEmptySlotDefaultsToMainMenu(t *testing.T) {
	m, _ := newTestMenu()
	session := newTestSession()
	m.Process(session, "", true, false)

	response := m.Process(session, "00", false, false)

	if session.MenuState != models.StateMainMenu {
		t.Errorf("state = %q, want main_menu", session.MenuState)
	}
	if !strings.Contains(response, i18n.T("main_menu", models.LanguageEnglish)) {
		t.Errorf("expected main menu, got %q", response)
	}
}

func TestGoalDraftAtomicSubmit(t *testing.T) {
	m, fakes := newTestMenu()
	session := newTestSession()

	response := drive(t, m, session,
		"2",          // goals menu
		"2",          // create goal
		"1",          // business
		"Sewing kit", // description
		"5000",       // amount
		"2026-01-31", // date
		"1",          // submit
	)

	if len(fakes.goals.created) != 1 {
		t.Fatalf("expected exactly 1 goal create, got %d", len(fakes.goals.created))
	}
	draft := fakes.goals.created[0]
	if draft.GoalType != models.GoalTypeBusiness || draft.Description != "Sewing kit" {
		t.Errorf("unexpected draft: %+v", draft)
	}
	if draft.TargetAmount == nil || *draft.TargetAmount != 5000 {
		t.Errorf("amount not carried: %+v", draft.TargetAmount)
	}
	if draft.TargetDate != "2026-01-31" {
		t.Errorf("date = %q", draft.TargetDate)
	}

	if session.FlowData.Goal != nil {
		t.Error("draft should be cleared after submit")
	}
	if session.MenuState != models.StateGoalsMenu {
		t.Errorf("state = %q, want goals_menu", session.MenuState)
	}
	if !strings.Contains(response, i18n.T("goal_saved", models.LanguageEnglish)) {
		t.Errorf("expected saved notice, got %q", response)
	}
}

func TestGoalCancelMakesNoCreateCall(t *testing.T) {
	m, fakes := newTestMenu()
	session := newTestSession()

	drive(t, m, session, "2", "2", "1", "Sewing kit", "5000", "2026-01-31", "3")

	if len(fakes.goals.created) != 0 {
		t.Fatalf("cancel must not create, got %d calls", len(fakes.goals.created))
	}
	if session.FlowData.Goal != nil {
		t.Error("cancel must clear the draft")
	}
}

func TestGoalDateValidation(t *testing.T) {
	m, _ := newTestMenu()

	for _, bad := range []string{"31-01-2026", "tomorrow", "2026-13-01", "2025-02-30"} {
		response := drive(t, m, newTestSession(), "2", "2", "1", "Sewing kit", "5000", bad)
		if !strings.Contains(response, i18n.T("invalid_input", models.LanguageEnglish)) {
			t.Errorf("date %q should be rejected, got %q", bad, response)
		}
	}
}

func TestViewGoalsCachesListingForSelection(t *testing.T) {
	m, fakes := newTestMenu()
	fakes.goals.goals = []*models.Goal{
		{GoalID: "GOL-a", GoalType: models.GoalTypeBusiness, Description: "Stock up shop", TargetAmount: 20000, TargetDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Status: "active"},
		{GoalID: "GOL-b", GoalType: models.GoalTypeSavings, Description: "School fees", TargetAmount: 15000, TargetDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Status: "active"},
	}
	session := newTestSession()

	response := drive(t, m, session, "2", "1")

	if session.MenuState != models.StateViewGoals {
		t.Fatalf("state = %q, want view_goals", session.MenuState)
	}
	if !strings.Contains(response, "1. Stock up shop") || !strings.Contains(response, "2. School fees") {
		t.Errorf("listing missing entries: %q", response)
	}

	response = m.Process(session, "2*1*2", false, false)
	if session.MenuState != models.StateGoalDetails {
		t.Fatalf("state = %q, want goal_details", session.MenuState)
	}
	if !strings.Contains(response, "School fees") || !strings.Contains(response, "15000") {
		t.Errorf("details missing selected goal: %q", response)
	}
}

func TestContactPhoneValidation(t *testing.T) {
	m, _ := newTestMenu()
	session := newTestSession()

	response := drive(t, m, session, "3", "2", "Mary Wanjiku", "12345")

	if session.MenuState != models.StateAddContactPhone {
		t.Errorf("state = %q, want add_contact_phone", session.MenuState)
	}
	if !strings.Contains(response, i18n.T("invalid_input", models.LanguageEnglish)) {
		t.Errorf("expected inline error, got %q", response)
	}

	response = m.Process(session, "3*2*Mary Wanjiku*12345*0712345679", false, false)
	if session.MenuState != models.StateAddContactRelationship {
		t.Errorf("valid phone should advance, state = %q", session.MenuState)
	}
	if session.FlowData.Contact.Phone != "+254712345679" {
		t.Errorf("phone not normalized: %q", session.FlowData.Contact.Phone)
	}
	_ = response
}

func TestContactCreateFlow(t *testing.T) {
	m, fakes := newTestMenu()
	session := newTestSession()

	response := drive(t, m, session,
		"3",            // contacts menu
		"2",            // add contact
		"Mary Wanjiku", // name
		"0712345679",   // phone
		"1",            // parent
		"Nakuru town",  // address
		"1",            // primary yes
		"1",            // submit
	)

	if len(fakes.contacts.created) != 1 {
		t.Fatalf("expected exactly 1 contact create, got %d", len(fakes.contacts.created))
	}
	draft := fakes.contacts.created[0]
	if draft.Name != "Mary Wanjiku" || draft.Relationship != "Parent" || draft.Address != "Nakuru town" {
		t.Errorf("unexpected draft: %+v", draft)
	}
	if draft.IsPrimary == nil || !*draft.IsPrimary {
		t.Error("primary flag not carried")
	}
	if !strings.Contains(response, i18n.T("contact_saved", models.LanguageEnglish)) {
		t.Errorf("expected saved notice, got %q", response)
	}
	if session.MenuState != models.StateContactsMenu {
		t.Errorf("state = %q, want contacts_menu", session.MenuState)
	}
}

func TestEmptyContactListEscapeHatch(t *testing.T) {
	m, _ := newTestMenu()
	session := newTestSession()

	response := drive(t, m, session, "3", "1")

	if session.MenuState != models.StateViewContacts {
		t.Fatalf("state = %q, want view_contacts", session.MenuState)
	}
	if !strings.Contains(response, i18n.T("no_contacts", models.LanguageEnglish)) {
		t.Errorf("expected empty-list notice, got %q", response)
	}

	m.Process(session, "3*1*1", false, false)
	if session.MenuState != models.StateAddContactName {
		t.Errorf("escape hatch should start add flow, state = %q", session.MenuState)
	}
}

func TestSelectPrimaryContact(t *testing.T) {
	m, fakes := newTestMenu()
	fakes.contacts.contacts = []*models.EmergencyContact{
		{ContactID: "CNT-a", Name: "Mary", Phone: "+254712345679"},
		{ContactID: "CNT-b", Name: "John", Phone: "+254712345670"},
	}
	session := newTestSession()

	response := drive(t, m, session, "3", "3", "2")

	if len(fakes.contacts.primaryCalls) != 1 || fakes.contacts.primaryCalls[0] != "CNT-b" {
		t.Fatalf("expected SetPrimary(CNT-b), got %v", fakes.contacts.primaryCalls)
	}
	if !strings.Contains(response, i18n.T("primary_set", models.LanguageEnglish)) {
		t.Errorf("expected confirmation, got %q", response)
	}
	if session.MenuState != models.StateContactsMenu {
		t.Errorf("state = %q, want contacts_menu", session.MenuState)
	}
}

func TestLanguageSwitchPersistsAcrossSessions(t *testing.T) {
	m, fakes := newTestMenu()
	session := newTestSession()

	response := drive(t, m, session, "4", "2")

	if len(fakes.users.languageCalls) != 1 || fakes.users.languageCalls[0] != "USR-1:sw" {
		t.Fatalf("expected one UpdateLanguage(USR-1, sw) call, got %v", fakes.users.languageCalls)
	}
	if session.Language != models.LanguageSwahili {
		t.Errorf("session language = %q, want sw", session.Language)
	}
	if !strings.Contains(response, i18n.T("main_menu", models.LanguageSwahili)) {
		t.Errorf("main menu should render in Swahili, got %q", response)
	}

	// A brand-new session for the same caller starts in Swahili because
	// the preference was persisted on the user.
	fresh := newTestSession()
	fresh.SessionID = "ATU-2"
	response = m.Process(fresh, "", true, false)
	if !strings.Contains(response, i18n.T("main_menu", models.LanguageSwahili)) {
		t.Errorf("new session should render in Swahili, got %q", response)
	}
}

func TestExitFromMainMenu(t *testing.T) {
	m, _ := newTestMenu()
	session := newTestSession()

	response := drive(t, m, session, "0")

	if !strings.HasPrefix(response, "END ") {
		t.Fatalf("exit should END, got %q", response)
	}
	if session.IsActive {
		t.Error("session should be inactive after exit")
	}
	if session.CompletedAt == nil {
		t.Error("normal exit should set CompletedAt")
	}
}

func TestExpiredTurnShowsRestartOffer(t *testing.T) {
	m, _ := newTestMenu()
	session := newTestSession()
	session.MenuState = models.StateSessionExpired

	// The turn that detected expiry: the pending input belongs to the dead
	// session and is discarded in favor of the offer.
	response := m.Process(session, "1*10000*5000", false, true)

	if session.MenuState != models.StateSessionExpired {
		t.Fatalf("state = %q, want session_expired", session.MenuState)
	}
	if !strings.Contains(response, i18n.T("session_expired", models.LanguageEnglish)) {
		t.Errorf("expected restart offer, got %q", response)
	}

	// Restart choice returns to a clean main menu.
	response = m.Process(session, "1*10000*5000*1", false, false)
	if session.MenuState != models.StateMainMenu {
		t.Errorf("state = %q, want main_menu", session.MenuState)
	}
	if session.FlowData.Tracking != nil {
		t.Error("restart must not resurrect the old draft")
	}
	if !strings.Contains(response, i18n.T("main_menu", models.LanguageEnglish)) {
		t.Errorf("expected main menu, got %q", response)
	}
}

func TestStepCountAndHistoryGrowPerInput(t *testing.T) {
	m, _ := newTestMenu()
	session := newTestSession()

	drive(t, m, session, "1", "banana", "10000")

	if session.StepCount != 3 {
		t.Errorf("step count = %d, want 3 (invalid input still counts)", session.StepCount)
	}
	want := []string{"1", "banana", "10000"}
	if len(session.FlowData.InputHistory) != len(want) {
		t.Fatalf("history = %v", session.FlowData.InputHistory)
	}
	for i, in := range want {
		if session.FlowData.InputHistory[i] != in {
			t.Errorf("history[%d] = %q, want %q", i, session.FlowData.InputHistory[i], in)
		}
	}
}
