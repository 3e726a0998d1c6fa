package storage

import (
	"time"

	"github.com/TumainiCare/tumaini-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// Session operations
	CreateSession(session *models.UssdSession) (*models.UssdSession, error)
	GetSessionBySessionID(sessionID string) (*models.UssdSession, error)
	UpdateSession(session *models.UssdSession) error
	ListSessions(filter *models.SessionFilter) ([]*models.UssdSession, error)
	DeactivateStaleSessions(before time.Time) (int64, error)

	// User operations
	CreateUser(user *models.User) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)
	UpdateUserLanguage(userID, language string) error

	// Beneficiary operations
	CreateBeneficiary(b *models.Beneficiary) (*models.Beneficiary, error)
	GetBeneficiaryByUserID(userID string) (*models.Beneficiary, error)

	// Goal operations
	CreateGoal(goal *models.Goal) (*models.Goal, error)
	GetRecentGoals(beneficiaryID string, limit int) ([]*models.Goal, error)

	// Emergency contact operations
	CreateContact(contact *models.EmergencyContact) (*models.EmergencyContact, error)
	GetRecentContacts(beneficiaryID string, limit int) ([]*models.EmergencyContact, error)
	SetPrimaryContact(contactID string) error

	// Weekly tracking operations
	CreateWeeklyTracking(record *models.WeeklyTracking) (*models.WeeklyTracking, error)
}
