package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TumainiCare/tumaini-backend/internal/models"
)

// MemoryStore holds all data in memory, for tests and USE_MEMORY_STORE runs.
type MemoryStore struct {
	sessions      []*models.UssdSession
	users         map[string]*models.User        // keyed by UserID
	beneficiaries map[string]*models.Beneficiary // keyed by BeneficiaryID
	goals         []*models.Goal
	contacts      []*models.EmergencyContact
	trackings     []*models.WeeklyTracking

	sessionMu  sync.RWMutex
	userMu     sync.RWMutex
	goalMu     sync.RWMutex
	contactMu  sync.RWMutex
	trackingMu sync.RWMutex

	idCounter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]*models.User),
		beneficiaries: make(map[string]*models.Beneficiary),
	}
}

// Session operations

func (m *MemoryStore) CreateSession(session *models.UssdSession) (*models.UssdSession, error) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	m.idCounter++
	session.ID = m.idCounter
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	session.UpdatedAt = time.Now()

	m.sessions = append(m.sessions, session)
	return session, nil
}

// GetSessionBySessionID returns the newest row for a gateway session id.
// Expiry supersession can leave several rows under one id.
func (m *MemoryStore) GetSessionBySessionID(sessionID string) (*models.UssdSession, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	for i := len(m.sessions) - 1; i >= 0; i-- {
		if m.sessions[i].SessionID == sessionID {
			return m.sessions[i], nil
		}
	}
	return nil, fmt.Errorf("session not found")
}

func (m *MemoryStore) UpdateSession(session *models.UssdSession) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	for i, s := range m.sessions {
		if s.ID == session.ID {
			session.UpdatedAt = time.Now()
			m.sessions[i] = session
			return nil
		}
	}
	return fmt.Errorf("session not found")
}

func (m *MemoryStore) ListSessions(filter *models.SessionFilter) ([]*models.UssdSession, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	if filter == nil {
		filter = &models.SessionFilter{}
	}

	result := []*models.UssdSession{}
	for _, s := range m.sessions {
		if filter.PhoneNumber != "" && s.PhoneNumber != filter.PhoneNumber {
			continue
		}
		if filter.UserRole != "" && s.UserRole != filter.UserRole {
			continue
		}
		if filter.ActiveOnly && !s.IsActive {
			continue
		}
		if filter.From != nil && s.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.CreatedAt.After(*filter.To) {
			continue
		}
		result = append(result, s)
	}

	// Newest first, same ordering as the database store
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *MemoryStore) DeactivateStaleSessions(before time.Time) (int64, error) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	var count int64
	for _, s := range m.sessions {
		if s.IsActive && s.ExpiresAt.Before(before) {
			s.IsActive = false
			count++
		}
	}
	return count, nil
}

// User operations

func (m *MemoryStore) CreateUser(user *models.User) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	if user.UserID == "" {
		user.UserID = "USR-" + uuid.NewString()
	}
	user.PhoneNumber = models.NormalizePhone(user.PhoneNumber)
	if user.Language == "" {
		user.Language = models.LanguageEnglish
	}
	user.CreatedAt = time.Now()

	m.users[user.UserID] = user
	return user, nil
}

func (m *MemoryStore) GetUserByPhone(phone string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	normalized := models.NormalizePhone(phone)
	for _, u := range m.users {
		if u.PhoneNumber == normalized {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (m *MemoryStore) UpdateUserLanguage(userID, language string) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	user, exists := m.users[userID]
	if !exists {
		return fmt.Errorf("user not found")
	}
	user.Language = language
	return nil
}

// Beneficiary operations

func (m *MemoryStore) CreateBeneficiary(b *models.Beneficiary) (*models.Beneficiary, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	if b.BeneficiaryID == "" {
		b.BeneficiaryID = "BEN-" + uuid.NewString()
	}
	b.CreatedAt = time.Now()

	m.beneficiaries[b.BeneficiaryID] = b
	return b, nil
}

func (m *MemoryStore) GetBeneficiaryByUserID(userID string) (*models.Beneficiary, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, b := range m.beneficiaries {
		if b.UserID == userID {
			return b, nil
		}
	}
	return nil, fmt.Errorf("beneficiary not found")
}

// Goal operations

func (m *MemoryStore) CreateGoal(goal *models.Goal) (*models.Goal, error) {
	m.goalMu.Lock()
	defer m.goalMu.Unlock()

	if goal.GoalID == "" {
		goal.GoalID = "GOL-" + uuid.NewString()
	}
	if goal.Status == "" {
		goal.Status = "active"
	}
	goal.CreatedAt = time.Now()

	m.goals = append(m.goals, goal)
	return goal, nil
}

func (m *MemoryStore) GetRecentGoals(beneficiaryID string, limit int) ([]*models.Goal, error) {
	m.goalMu.RLock()
	defer m.goalMu.RUnlock()

	result := []*models.Goal{}
	for i := len(m.goals) - 1; i >= 0 && len(result) < limit; i-- {
		if m.goals[i].BeneficiaryID == beneficiaryID {
			result = append(result, m.goals[i])
		}
	}
	return result, nil
}

// Emergency contact operations

func (m *MemoryStore) CreateContact(contact *models.EmergencyContact) (*models.EmergencyContact, error) {
	m.contactMu.Lock()
	defer m.contactMu.Unlock()

	if contact.ContactID == "" {
		contact.ContactID = "CNT-" + uuid.NewString()
	}
	contact.Phone = models.NormalizePhone(contact.Phone)
	contact.CreatedAt = time.Now()

	// A new primary displaces the old one
	if contact.IsPrimary {
		for _, c := range m.contacts {
			if c.BeneficiaryID == contact.BeneficiaryID {
				c.IsPrimary = false
			}
		}
	}

	m.contacts = append(m.contacts, contact)
	return contact, nil
}

func (m *MemoryStore) GetRecentContacts(beneficiaryID string, limit int) ([]*models.EmergencyContact, error) {
	m.contactMu.RLock()
	defer m.contactMu.RUnlock()

	result := []*models.EmergencyContact{}
	for i := len(m.contacts) - 1; i >= 0 && len(result) < limit; i-- {
		if m.contacts[i].BeneficiaryID == beneficiaryID {
			result = append(result, m.contacts[i])
		}
	}
	return result, nil
}

func (m *MemoryStore) SetPrimaryContact(contactID string) error {
	m.contactMu.Lock()
	defer m.contactMu.Unlock()

	var target *models.EmergencyContact
	for _, c := range m.contacts {
		if c.ContactID == contactID {
			target = c
			break
		}
	}
	if target == nil {
		return fmt.Errorf("contact not found")
	}

	for _, c := range m.contacts {
		if c.BeneficiaryID == target.BeneficiaryID {
			c.IsPrimary = false
		}
	}
	target.IsPrimary = true
	return nil
}

// Weekly tracking operations

func (m *MemoryStore) CreateWeeklyTracking(record *models.WeeklyTracking) (*models.WeeklyTracking, error) {
	m.trackingMu.Lock()
	defer m.trackingMu.Unlock()

	if record.RecordID == "" {
		record.RecordID = "TRK-" + uuid.NewString()
	}
	record.CreatedAt = time.Now()

	m.trackings = append(m.trackings, record)
	return record, nil
}
