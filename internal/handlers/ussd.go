package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/TumainiCare/tumaini-backend/internal/i18n"
	"github.com/TumainiCare/tumaini-backend/internal/services"
)

// UssdHandler handles USSD gateway callback requests
type UssdHandler struct {
	sessionService *services.SessionService
	menuService    *services.MenuService
}

// NewUssdHandler creates a new USSD handler
func NewUssdHandler(sessionService *services.SessionService, menuService *services.MenuService) *UssdHandler {
	return &UssdHandler{
		sessionService: sessionService,
		menuService:    menuService,
	}
}

// UssdCallbackPayload represents an incoming turn from the USSD gateway.
// The gateway re-sends the whole accumulated input in Text on every turn;
// an empty Text signals session start.
type UssdCallbackPayload struct {
	SessionID   string `form:"sessionId"`
	PhoneNumber string `form:"phoneNumber"`
	ServiceCode string `form:"serviceCode"`
	Text        string `form:"text"`
	NetworkCode string `form:"networkCode"`
}

// HandleCallback processes one USSD turn and replies with a CON/END body.
// The gateway expects 200 text/plain no matter what went wrong internally.
func (h *UssdHandler) HandleCallback(c *fiber.Ctx) error {
	var payload UssdCallbackPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing USSD callback: %v", err)
		return c.Status(fiber.StatusBadRequest).SendString("invalid callback payload")
	}

	if payload.SessionID == "" || payload.PhoneNumber == "" {
		return c.Status(fiber.StatusBadRequest).SendString("sessionId and phoneNumber are required")
	}

	log.Printf("📱 USSD turn %s from %s: %q", payload.SessionID, payload.PhoneNumber, payload.Text)

	response := h.processTurn(&payload)

	c.Set("Content-Type", "text/plain; charset=utf-8")
	return c.SendString(response)
}

// processTurn runs resolve -> bind -> dispatch -> persist under the
// per-session lock. Gateways retry duplicate turns on timeout; the lock
// serializes the read-modify-write so neither copy loses updates.
func (h *UssdHandler) processTurn(payload *UssdCallbackPayload) (response string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Panic processing USSD turn %s: %v", payload.SessionID, r)
			response = services.End(i18n.Bilingual("system_error"))
		}
	}()

	h.sessionService.Lock(payload.SessionID)
	defer h.sessionService.Unlock(payload.SessionID)

	session, _, expiredNow, err := h.sessionService.Resolve(
		payload.SessionID, payload.PhoneNumber, payload.ServiceCode, payload.NetworkCode)
	if err != nil {
		log.Printf("❌ Failed to resolve session %s: %v", payload.SessionID, err)
		return services.End(i18n.Bilingual("system_error"))
	}

	isStart := payload.Text == ""
	response = h.menuService.Process(session, payload.Text, isStart, expiredNow)

	// The only durability boundary of a turn.
	if err := h.sessionService.Save(session); err != nil {
		log.Printf("❌ Failed to persist session %s: %v", payload.SessionID, err)
		return services.End(i18n.Bilingual("system_error"))
	}

	return response
}
