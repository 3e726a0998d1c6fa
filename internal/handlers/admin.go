package handlers

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/TumainiCare/tumaini-backend/internal/models"
	"github.com/TumainiCare/tumaini-backend/internal/storage"
)

// AdminHandler serves the read-only session reporting endpoints. These
// consume the session log only and never touch the state machine.
type AdminHandler struct {
	store storage.Store
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store) *AdminHandler {
	return &AdminHandler{store: store}
}

func parseSessionFilter(c *fiber.Ctx) *models.SessionFilter {
	filter := &models.SessionFilter{
		PhoneNumber: c.Query("phone"),
		UserRole:    c.Query("role"),
		ActiveOnly:  c.Query("active") == "true",
	}

	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			end := t.Add(24*time.Hour - time.Second)
			filter.To = &end
		}
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	return filter
}

// ListSessions lists session rows, newest first, with optional filters.
func (h *AdminHandler) ListSessions(c *fiber.Ctx) error {
	sessions, err := h.store.ListSessions(parseSessionFilter(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch sessions",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetSession returns one session's detail, including the input trail.
func (h *AdminHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.store.GetSessionBySessionID(c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"session": session,
	})
}

// SessionStats holds the aggregate counters for the reporting dashboard.
type SessionStats struct {
	TotalSessions     int            `json:"total_sessions"`
	ActiveSessions    int            `json:"active_sessions"`
	CompletedSessions int            `json:"completed_sessions"`
	SessionsToday     int            `json:"sessions_today"`
	SessionsThisWeek  int            `json:"sessions_this_week"`
	ByRole            map[string]int `json:"sessions_by_role"`
	ByLanguage        map[string]int `json:"sessions_by_language"`
	AverageSteps      float64        `json:"average_steps"`
	CompletionRate    float64        `json:"completion_rate"`
}

// GetSessionStats computes the aggregate counters over the session log.
func (h *AdminHandler) GetSessionStats(c *fiber.Ctx) error {
	sessions, err := h.store.ListSessions(nil)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch sessions",
		})
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started last Monday
	}
	weekStart := midnight.AddDate(0, 0, -(weekday - 1))

	stats := &SessionStats{
		ByRole:     make(map[string]int),
		ByLanguage: make(map[string]int),
	}

	totalSteps := 0
	for _, s := range sessions {
		stats.TotalSessions++
		totalSteps += s.StepCount

		if s.IsActive {
			stats.ActiveSessions++
		}
		if s.CompletedAt != nil {
			stats.CompletedSessions++
		}
		if !s.CreatedAt.Before(midnight) {
			stats.SessionsToday++
		}
		if !s.CreatedAt.Before(weekStart) {
			stats.SessionsThisWeek++
		}
		if s.UserRole != "" {
			stats.ByRole[s.UserRole]++
		}
		if s.Language != "" {
			stats.ByLanguage[s.Language]++
		}
	}

	if stats.TotalSessions > 0 {
		stats.AverageSteps = float64(totalSteps) / float64(stats.TotalSessions)
		stats.CompletionRate = float64(stats.CompletedSessions) / float64(stats.TotalSessions)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}

// ExportSessions streams the session log as CSV.
func (h *AdminHandler) ExportSessions(c *fiber.Ctx) error {
	sessions, err := h.store.ListSessions(parseSessionFilter(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch sessions",
		})
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"session_id", "phone_number", "menu_state", "user_role", "language",
		"step_count", "is_active", "created_at", "last_interaction_at",
		"completed_at", "network_code", "error_count", "input_history",
	}
	if err := writer.Write(header); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build export",
		})
	}

	for _, s := range sessions {
		completedAt := ""
		if s.CompletedAt != nil {
			completedAt = s.CompletedAt.Format(time.RFC3339)
		}
		record := []string{
			s.SessionID,
			s.PhoneNumber,
			s.MenuState,
			s.UserRole,
			s.Language,
			strconv.Itoa(s.StepCount),
			strconv.FormatBool(s.IsActive),
			s.CreatedAt.Format(time.RFC3339),
			s.LastInteractionAt.Format(time.RFC3339),
			completedAt,
			s.NetworkCode,
			strconv.Itoa(s.ErrorCount),
			strings.Join(s.FlowData.InputHistory, "|"),
		}
		if err := writer.Write(record); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to build export",
			})
		}
	}
	writer.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", `attachment; filename="ussd_sessions.csv"`)
	return c.Send(buf.Bytes())
}
