package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Menu states known to the session engine. Every value stored in
// UssdSession.MenuState must be one of these.
const (
	StateMainMenu       = "main_menu"
	StateSessionExpired = "session_expired"

	StateTrackingIncome     = "tracking_income"
	StateTrackingExpenses   = "tracking_expenses"
	StateTrackingCapital    = "tracking_capital"
	StateTrackingAttendance = "tracking_attendance"
	StateTrackingConfirm    = "tracking_confirm"

	StateGoalsMenu         = "goals_menu"
	StateViewGoals         = "view_goals"
	StateGoalDetails       = "goal_details"
	StateCreateGoalType    = "create_goal_type"
	StateCreateGoalDesc    = "create_goal_desc"
	StateCreateGoalAmount  = "create_goal_amount"
	StateCreateGoalDate    = "create_goal_date"
	StateCreateGoalConfirm = "create_goal_confirm"

	StateContactsMenu           = "contacts_menu"
	StateViewContacts           = "view_contacts"
	StateAddContactName         = "add_contact_name"
	StateAddContactPhone        = "add_contact_phone"
	StateAddContactRelationship = "add_contact_relationship"
	StateAddContactAddress      = "add_contact_address"
	StateAddContactPrimary      = "add_contact_primary"
	StateAddContactConfirm      = "add_contact_confirm"
	StateSelectPrimaryContact   = "select_primary_contact"

	StateLanguageSelect = "language_select"
)

// FlowKind tags which accumulator (if any) is active on a session.
type FlowKind string

const (
	FlowNone          FlowKind = ""
	FlowTracking      FlowKind = "tracking"
	FlowGoalCreate    FlowKind = "goal_create"
	FlowGoalView      FlowKind = "goal_view"
	FlowContactCreate FlowKind = "contact_create"
	FlowContactView   FlowKind = "contact_view"
	FlowContactSelect FlowKind = "contact_select"
)

// TrackingDraft accumulates a weekly tracking submission across turns.
// Pointer fields distinguish "not entered yet" from zero.
type TrackingDraft struct {
	IncomeThisWeek   *float64 `json:"income_this_week,omitempty"`
	ExpensesThisWeek *float64 `json:"expenses_this_week,omitempty"`
	CurrentCapital   *float64 `json:"current_capital,omitempty"`
	Attendance       string   `json:"attendance,omitempty"`
}

// GoalDraft accumulates a new goal across the create-goal states.
type GoalDraft struct {
	GoalType     string   `json:"goal_type,omitempty"`
	Description  string   `json:"description,omitempty"`
	TargetAmount *float64 `json:"target_amount,omitempty"`
	TargetDate   string   `json:"target_date,omitempty"` // YYYY-MM-DD
}

// ContactDraft accumulates a new emergency contact across the add-contact
// states.
type ContactDraft struct {
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Address      string `json:"address,omitempty"`
	IsPrimary    *bool  `json:"is_primary,omitempty"`
}

// ListedGoal is a cached row of the view-goals listing, kept so a numeric
// selection on the next turn can resolve without re-querying.
type ListedGoal struct {
	GoalID       string  `json:"goal_id"`
	GoalType     string  `json:"goal_type"`
	Description  string  `json:"description"`
	TargetAmount float64 `json:"target_amount"`
	TargetDate   string  `json:"target_date"`
	Status       string  `json:"status"`
}

// ListedContact is a cached row of a contact listing.
type ListedContact struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	IsPrimary bool   `json:"is_primary"`
}

// SessionFlowData is the per-session transient state: at most one flow
// accumulator at a time, the single-slot back memory, and the input trail.
type SessionFlowData struct {
	ActiveFlow FlowKind `json:"active_flow,omitempty"`

	Tracking *TrackingDraft `json:"tracking,omitempty"`
	Goal     *GoalDraft     `json:"goal,omitempty"`
	Contact  *ContactDraft  `json:"contact,omitempty"`

	GoalPage     []ListedGoal    `json:"goal_page,omitempty"`
	SelectedGoal *ListedGoal     `json:"selected_goal,omitempty"`
	ContactPage  []ListedContact `json:"contact_page,omitempty"`

	PreviousMenuState string   `json:"previous_menu_state,omitempty"`
	InputHistory      []string `json:"input_history,omitempty"`
}

// ClearFlow drops the active accumulator and any cached listings, leaving
// the back slot and input trail untouched.
func (f *SessionFlowData) ClearFlow() {
	f.ActiveFlow = FlowNone
	f.Tracking = nil
	f.Goal = nil
	f.Contact = nil
	f.GoalPage = nil
	f.SelectedGoal = nil
	f.ContactPage = nil
}

// Value implements driver.Valuer so GORM stores the union as jsonb.
func (f SessionFlowData) Value() (driver.Value, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (f *SessionFlowData) Scan(value interface{}) error {
	if value == nil {
		*f = SessionFlowData{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("unsupported flow data type %T", value)
	}
}

// UssdSession is one conversational instance between a caller and the menu
// engine. SessionID is the gateway-assigned id; it is indexed but not
// unique because an expired session is superseded by a fresh row under the
// same gateway id. At most one row per SessionID is active.
type UssdSession struct {
	gorm.Model

	SessionID   string `json:"session_id" gorm:"index;type:varchar(100);not null"`
	PhoneNumber string `json:"phone_number" gorm:"index;type:varchar(20);not null"`
	ServiceCode string `json:"service_code" gorm:"type:varchar(30)"`
	MenuState   string `json:"menu_state" gorm:"type:varchar(50);not null"`

	// Identity resolved on first contact; immutable for the session's life
	// except Language, which the language flow may change.
	UserID        string `json:"user_id" gorm:"index;type:varchar(50)"`
	UserRole      string `json:"user_role" gorm:"index;type:varchar(20)"`
	BeneficiaryID string `json:"beneficiary_id" gorm:"type:varchar(50)"`
	Language      string `json:"language" gorm:"type:varchar(5)"`

	StepCount int             `json:"step_count" gorm:"default:0"`
	FlowData  SessionFlowData `json:"flow_data" gorm:"type:jsonb"`

	LastInteractionAt time.Time  `json:"last_interaction_at"`
	ExpiresAt         time.Time  `json:"expires_at"`
	IsActive          bool       `json:"is_active" gorm:"index;default:true"`
	CompletedAt       *time.Time `json:"completed_at"`

	// Provider diagnostics, no state machine meaning.
	NetworkCode string `json:"network_code" gorm:"type:varchar(20)"`
	ErrorCount  int    `json:"error_count" gorm:"default:0"`
}

// HasIdentity reports whether the identity binder has resolved this caller.
func (s *UssdSession) HasIdentity() bool {
	return s.UserID != ""
}

// RecordInput appends to the diagnostic input trail, keeping it bounded.
func (s *UssdSession) RecordInput(input string) {
	const maxTrail = 50
	s.FlowData.InputHistory = append(s.FlowData.InputHistory, input)
	if len(s.FlowData.InputHistory) > maxTrail {
		s.FlowData.InputHistory = s.FlowData.InputHistory[len(s.FlowData.InputHistory)-maxTrail:]
	}
}

// SessionFilter narrows admin session listings.
type SessionFilter struct {
	PhoneNumber string
	UserRole    string
	ActiveOnly  bool
	From        *time.Time
	To          *time.Time
	Limit       int
}
