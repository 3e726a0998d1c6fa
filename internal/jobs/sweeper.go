package jobs

import (
	"log"
	"time"

	"github.com/TumainiCare/tumaini-backend/internal/services"
)

// SweeperJob periodically flips stale active sessions to inactive so the
// reporting counters stay honest. Conversational expiry is detected lazily
// by the session resolver; this job has no effect on it.
type SweeperJob struct {
	sessionService *services.SessionService
	interval       time.Duration
	isRunning      bool
	stop           chan struct{}
}

// NewSweeperJob creates a new session sweeper
func NewSweeperJob(sessionService *services.SessionService) *SweeperJob {
	return &SweeperJob{
		sessionService: sessionService,
		interval:       5 * time.Minute,
		stop:           make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (j *SweeperJob) Start() {
	if j.isRunning {
		log.Println("Session sweeper already running")
		return
	}
	j.isRunning = true
	log.Println("Starting session sweeper...")

	go j.run()
}

// Stop halts the sweep loop
func (j *SweeperJob) Stop() {
	if !j.isRunning {
		return
	}
	j.isRunning = false
	close(j.stop)
	log.Println("Stopping session sweeper...")
}

func (j *SweeperJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			count, err := j.sessionService.SweepStale()
			if err != nil {
				log.Printf("❌ Session sweep failed: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("🧹 Swept %d stale sessions", count)
			}
		case <-j.stop:
			return
		}
	}
}
