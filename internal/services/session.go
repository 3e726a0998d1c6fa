package services

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/TumainiCare/tumaini-backend/internal/models"
	"github.com/TumainiCare/tumaini-backend/internal/storage"
)

const defaultSessionTimeout = 180 * time.Second

// SessionService resolves inbound gateway requests to session rows and
// owns the inactivity-expiry policy.
type SessionService struct {
	store      storage.Store
	sessionTTL time.Duration
	locks      sync.Map // sessionID -> *sync.Mutex
	now        func() time.Time
}

// Singleton instance
var (
	sessionServiceInstance *SessionService
	sessionServiceOnce     sync.Once
)

// NewSessionService creates a new session service. The timeout comes from
// SESSION_TIMEOUT_SECONDS, defaulting to 180s (a typical gateway ceiling).
func NewSessionService(store storage.Store) *SessionService {
	ttl := defaultSessionTimeout
	if raw := os.Getenv("SESSION_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		} else {
			log.Printf("⚠️  Invalid SESSION_TIMEOUT_SECONDS %q - using default", raw)
		}
	}

	return &SessionService{
		store:      store,
		sessionTTL: ttl,
		now:        time.Now,
	}
}

// GetSessionService returns the singleton session service instance
func GetSessionService() *SessionService {
	sessionServiceOnce.Do(func() {
		if sessionServiceInstance == nil {
			log.Println("Warning: SessionService not initialized. Creating new instance.")
			sessionServiceInstance = NewSessionService(storage.GetStore())
		}
	})
	return sessionServiceInstance
}

// SetSessionService sets the global session service instance (call from main.go)
func SetSessionService(s *SessionService) {
	sessionServiceInstance = s
}

// Lock takes the per-session mutex. Gateways retry on timeout, so duplicate
// turns for one sessionId can arrive concurrently; the turn's whole
// read-modify-write runs under this lock.
func (s *SessionService) Lock(sessionID string) {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
}

// Unlock releases the per-session mutex.
func (s *SessionService) Unlock(sessionID string) {
	if mu, ok := s.locks.Load(sessionID); ok {
		mu.(*sync.Mutex).Unlock()
	}
}

// Resolve finds or creates the session row for a gateway request. The
// booleans report whether the row was created fresh by this call and
// whether this call detected expiry of the previous row.
//
// Expiry is tested against the ExpiresAt stored on the previous turn,
// before any extension. An expired session is deactivated (abandonment,
// no CompletedAt) and superseded by a fresh row in the session_expired
// state so the caller can be offered a restart.
func (s *SessionService) Resolve(sessionID, phoneNumber, serviceCode, networkCode string) (session *models.UssdSession, created, expired bool, err error) {
	now := s.now()

	session, err = s.store.GetSessionBySessionID(sessionID)
	if err != nil {
		fresh := s.newSession(sessionID, phoneNumber, serviceCode, networkCode, models.StateMainMenu, now)
		session, err = s.store.CreateSession(fresh)
		if err != nil {
			return nil, false, false, err
		}
		return session, true, false, nil
	}

	if now.After(session.ExpiresAt) {
		log.Printf("⏰ Session %s expired (last interaction %s)", sessionID, session.LastInteractionAt.Format(time.RFC3339))

		session.IsActive = false
		if err := s.store.UpdateSession(session); err != nil {
			return nil, false, false, err
		}

		replacement := s.newSession(sessionID, phoneNumber, serviceCode, networkCode, models.StateSessionExpired, now)
		// The replacement keeps the resolved identity so the restart
		// offer needs no second lookup.
		replacement.UserID = session.UserID
		replacement.UserRole = session.UserRole
		replacement.BeneficiaryID = session.BeneficiaryID
		replacement.Language = session.Language

		session, err = s.store.CreateSession(replacement)
		if err != nil {
			return nil, false, false, err
		}
		return session, false, true, nil
	}

	// Any accepted request counts as activity, valid input or not.
	session.LastInteractionAt = now
	session.ExpiresAt = now.Add(s.sessionTTL)
	return session, false, false, nil
}

func (s *SessionService) newSession(sessionID, phoneNumber, serviceCode, networkCode, state string, now time.Time) *models.UssdSession {
	return &models.UssdSession{
		SessionID:         sessionID,
		PhoneNumber:       models.NormalizePhone(phoneNumber),
		ServiceCode:       serviceCode,
		MenuState:         state,
		Language:          models.LanguageEnglish,
		StepCount:         0,
		FlowData:          models.SessionFlowData{},
		LastInteractionAt: now,
		ExpiresAt:         now.Add(s.sessionTTL),
		IsActive:          true,
		NetworkCode:       networkCode,
	}
}

// Save writes the session back. This is the single durability boundary of
// a turn; the handlers mutate the session in memory only.
func (s *SessionService) Save(session *models.UssdSession) error {
	return s.store.UpdateSession(session)
}

// SweepStale flips stale active rows to inactive. Reporting hygiene only;
// conversational expiry is detected lazily in Resolve.
func (s *SessionService) SweepStale() (int64, error) {
	return s.store.DeactivateStaleSessions(s.now())
}
