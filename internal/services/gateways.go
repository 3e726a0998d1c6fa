package services

import (
	"time"

	"github.com/TumainiCare/tumaini-backend/internal/models"
	"github.com/TumainiCare/tumaini-backend/internal/storage"
)

// Gateway interfaces the menu engine depends on. The engine never touches
// the domain tables directly; everything goes through these, so the state
// machine stays testable against fakes and the domain services stay free
// to move out of process.

// UserGateway resolves callers and persists their language preference.
type UserGateway interface {
	FindByPhone(phone string) (*models.User, error)
	UpdateLanguage(userID, language string) error
}

// BeneficiaryGateway maps a user to their beneficiary record.
type BeneficiaryGateway interface {
	FindBeneficiaryByUserID(userID string) (*models.Beneficiary, error)
}

// GoalGateway reads and creates beneficiary goals.
type GoalGateway interface {
	ListRecent(beneficiaryID string, limit int) ([]*models.Goal, error)
	Create(beneficiaryID string, draft *models.GoalDraft) (*models.Goal, error)
}

// ContactGateway reads and creates emergency contacts.
type ContactGateway interface {
	ListRecent(beneficiaryID string, limit int) ([]*models.EmergencyContact, error)
	Create(beneficiaryID string, draft *models.ContactDraft) (*models.EmergencyContact, error)
	SetPrimary(contactID string) error
}

// TrackingPayload is one week's submission assembled from a draft.
type TrackingPayload struct {
	WeekEnding       time.Time
	IncomeThisWeek   float64
	ExpensesThisWeek float64
	CurrentCapital   float64
	Attendance       string
	Notes            string
	Challenges       string
}

// TrackingGateway accepts weekly tracking submissions.
type TrackingGateway interface {
	Submit(beneficiaryID string, payload *TrackingPayload, submitterID, submitterRole string) (*models.WeeklyTracking, error)
}

// Gateways bundles every collaborator the menu engine calls.
type Gateways struct {
	Users         UserGateway
	Beneficiaries BeneficiaryGateway
	Goals         GoalGateway
	Contacts      ContactGateway
	Tracking      TrackingGateway
}

// NewStoreGateways wires all gateways to the shared store.
func NewStoreGateways(store storage.Store) *Gateways {
	return &Gateways{
		Users:         &storeUserGateway{store: store},
		Beneficiaries: &storeBeneficiaryGateway{store: store},
		Goals:         &storeGoalGateway{store: store},
		Contacts:      &storeContactGateway{store: store},
		Tracking:      &storeTrackingGateway{store: store},
	}
}

type storeUserGateway struct {
	store storage.Store
}

func (g *storeUserGateway) FindByPhone(phone string) (*models.User, error) {
	return g.store.GetUserByPhone(phone)
}

func (g *storeUserGateway) UpdateLanguage(userID, language string) error {
	return g.store.UpdateUserLanguage(userID, language)
}

type storeBeneficiaryGateway struct {
	store storage.Store
}

func (g *storeBeneficiaryGateway) FindBeneficiaryByUserID(userID string) (*models.Beneficiary, error) {
	return g.store.GetBeneficiaryByUserID(userID)
}

type storeGoalGateway struct {
	store storage.Store
}

func (g *storeGoalGateway) ListRecent(beneficiaryID string, limit int) ([]*models.Goal, error) {
	return g.store.GetRecentGoals(beneficiaryID, limit)
}

func (g *storeGoalGateway) Create(beneficiaryID string, draft *models.GoalDraft) (*models.Goal, error) {
	targetDate, err := time.Parse("2006-01-02", draft.TargetDate)
	if err != nil {
		return nil, err
	}
	var amount float64
	if draft.TargetAmount != nil {
		amount = *draft.TargetAmount
	}
	goal := &models.Goal{
		BeneficiaryID: beneficiaryID,
		GoalType:      draft.GoalType,
		Description:   draft.Description,
		TargetAmount:  amount,
		TargetDate:    targetDate,
		CreatedVia:    "ussd",
	}
	return g.store.CreateGoal(goal)
}

type storeContactGateway struct {
	store storage.Store
}

func (g *storeContactGateway) ListRecent(beneficiaryID string, limit int) ([]*models.EmergencyContact, error) {
	return g.store.GetRecentContacts(beneficiaryID, limit)
}

func (g *storeContactGateway) Create(beneficiaryID string, draft *models.ContactDraft) (*models.EmergencyContact, error) {
	isPrimary := draft.IsPrimary != nil && *draft.IsPrimary
	contact := &models.EmergencyContact{
		BeneficiaryID: beneficiaryID,
		Name:          draft.Name,
		Phone:         draft.Phone,
		Relationship:  draft.Relationship,
		Address:       draft.Address,
		IsPrimary:     isPrimary,
		CreatedVia:    "ussd",
	}
	return g.store.CreateContact(contact)
}

func (g *storeContactGateway) SetPrimary(contactID string) error {
	return g.store.SetPrimaryContact(contactID)
}

type storeTrackingGateway struct {
	store storage.Store
}

func (g *storeTrackingGateway) Submit(beneficiaryID string, payload *TrackingPayload, submitterID, submitterRole string) (*models.WeeklyTracking, error) {
	record := &models.WeeklyTracking{
		BeneficiaryID:    beneficiaryID,
		WeekEnding:       payload.WeekEnding,
		IncomeThisWeek:   payload.IncomeThisWeek,
		ExpensesThisWeek: payload.ExpensesThisWeek,
		CurrentCapital:   payload.CurrentCapital,
		Attendance:       payload.Attendance,
		Notes:            payload.Notes,
		Challenges:       payload.Challenges,
		SubmittedBy:      submitterID,
		SubmitterRole:    submitterRole,
	}
	return g.store.CreateWeeklyTracking(record)
}
