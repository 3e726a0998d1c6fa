package storage

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/TumainiCare/tumaini-backend/internal/models"
)

// DatabaseStore implements Store on top of GORM/PostgreSQL.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Session operations

func (d *DatabaseStore) CreateSession(session *models.UssdSession) (*models.UssdSession, error) {
	if err := d.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSessionBySessionID returns the newest row for a gateway session id.
func (d *DatabaseStore) GetSessionBySessionID(sessionID string) (*models.UssdSession, error) {
	var session models.UssdSession
	err := d.db.Where("session_id = ?", sessionID).Order("id DESC").First(&session).Error
	if err != nil {
		return nil, fmt.Errorf("session not found")
	}
	return &session, nil
}

func (d *DatabaseStore) UpdateSession(session *models.UssdSession) error {
	return d.db.Save(session).Error
}

func (d *DatabaseStore) ListSessions(filter *models.SessionFilter) ([]*models.UssdSession, error) {
	if filter == nil {
		filter = &models.SessionFilter{}
	}

	query := d.db.Model(&models.UssdSession{})
	if filter.PhoneNumber != "" {
		query = query.Where("phone_number = ?", filter.PhoneNumber)
	}
	if filter.UserRole != "" {
		query = query.Where("user_role = ?", filter.UserRole)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var sessions []*models.UssdSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (d *DatabaseStore) DeactivateStaleSessions(before time.Time) (int64, error) {
	result := d.db.Model(&models.UssdSession{}).
		Where("is_active = ? AND expires_at < ?", true, before).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

// User operations

func (d *DatabaseStore) CreateUser(user *models.User) (*models.User, error) {
	if err := d.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (d *DatabaseStore) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	err := d.db.Where("phone_number = ?", models.NormalizePhone(phone)).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}
	return &user, nil
}

func (d *DatabaseStore) UpdateUserLanguage(userID, language string) error {
	result := d.db.Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("language", language)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// Beneficiary operations

func (d *DatabaseStore) CreateBeneficiary(b *models.Beneficiary) (*models.Beneficiary, error) {
	if err := d.db.Create(b).Error; err != nil {
		return nil, fmt.Errorf("failed to create beneficiary: %w", err)
	}
	return b, nil
}

func (d *DatabaseStore) GetBeneficiaryByUserID(userID string) (*models.Beneficiary, error) {
	var beneficiary models.Beneficiary
	err := d.db.Where("user_id = ?", userID).First(&beneficiary).Error
	if err != nil {
		return nil, fmt.Errorf("beneficiary not found")
	}
	return &beneficiary, nil
}

// Goal operations

func (d *DatabaseStore) CreateGoal(goal *models.Goal) (*models.Goal, error) {
	if err := d.db.Create(goal).Error; err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return goal, nil
}

func (d *DatabaseStore) GetRecentGoals(beneficiaryID string, limit int) ([]*models.Goal, error) {
	var goals []*models.Goal
	err := d.db.Where("beneficiary_id = ?", beneficiaryID).
		Order("created_at DESC").
		Limit(limit).
		Find(&goals).Error
	if err != nil {
		return nil, err
	}
	return goals, nil
}

// Emergency contact operations

func (d *DatabaseStore) CreateContact(contact *models.EmergencyContact) (*models.EmergencyContact, error) {
	err := d.db.Transaction(func(tx *gorm.DB) error {
		if contact.IsPrimary {
			if err := tx.Model(&models.EmergencyContact{}).
				Where("beneficiary_id = ?", contact.BeneficiaryID).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(contact).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, nil
}

func (d *DatabaseStore) GetRecentContacts(beneficiaryID string, limit int) ([]*models.EmergencyContact, error) {
	var contacts []*models.EmergencyContact
	err := d.db.Where("beneficiary_id = ?", beneficiaryID).
		Order("created_at DESC").
		Limit(limit).
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// Weekly tracking operations

func (d *DatabaseStore) CreateWeeklyTracking(record *models.WeeklyTracking) (*models.WeeklyTracking, error) {
	if err := d.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create weekly tracking: %w", err)
	}
	return record, nil
}

func (d *DatabaseStore) SetPrimaryContact(contactID string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var contact models.EmergencyContact
		if err := tx.Where("contact_id = ?", contactID).First(&contact).Error; err != nil {
			return fmt.Errorf("contact not found")
		}
		if err := tx.Model(&models.EmergencyContact{}).
			Where("beneficiary_id = ?", contact.BeneficiaryID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.EmergencyContact{}).
			Where("contact_id = ?", contactID).
			Update("is_primary", true).Error
	})
}
