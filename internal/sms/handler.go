package sms

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	twilioclient "github.com/twilio/twilio-go/client"
)

// Processor turns one inbound message into one reply string.
type Processor interface {
	Process(ctx context.Context, from, body string) string
}

// Sender delivers an outbound SMS. Optional: without one, the reply rides
// back in the TwiML webhook response instead of a REST call.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Handler receives Twilio inbound-message webhooks.
type Handler struct {
	processor Processor
	sender    Sender
	validator *twilioclient.RequestValidator
	logger    *slog.Logger
}

// NewHandler constructs the webhook handler. authToken enables signature
// validation when non-empty; sender may be nil.
func NewHandler(processor Processor, sender Sender, authToken string, logger *slog.Logger) *Handler {
	h := &Handler{processor: processor, sender: sender, logger: logger}
	if authToken != "" {
		validator := twilioclient.NewRequestValidator(authToken)
		h.validator = &validator
	}
	return h
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

// Inbound handles POST /webhook/sms. Twilio retries non-2xx responses, so
// every outcome past signature validation answers 200 with TwiML.
func (h *Handler) Inbound(c *fiber.Ctx) error {
	if h.validator != nil {
		if !h.validSignature(c) {
			h.logger.Warn("rejected webhook with bad signature", "ip", c.IP())
			return fiber.NewError(http.StatusForbidden, "invalid signature")
		}
	}

	from := c.FormValue("From")
	body := c.FormValue("Body")
	if from == "" {
		return fiber.NewError(http.StatusBadRequest, "missing From")
	}

	replyText := h.processor.Process(c.UserContext(), from, body)

	if h.sender != nil {
		if err := h.sender.Send(c.UserContext(), from, replyText); err != nil {
			h.logger.Error("outbound reply failed", "to", from, "error", err)
			// Fall back to the TwiML path so the user still gets a reply.
			return h.twiml(c, replyText)
		}
		return h.twiml(c, "")
	}
	return h.twiml(c, replyText)
}

func (h *Handler) twiml(c *fiber.Ctx, message string) error {
	payload, err := xml.Marshal(twimlResponse{Message: message})
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	return c.Status(http.StatusOK).SendString(xml.Header + string(payload))
}

func (h *Handler) validSignature(c *fiber.Ctx) bool {
	params := make(map[string]string)
	args := c.Request().PostArgs()
	args.VisitAll(func(key, value []byte) {
		params[string(key)] = string(value)
	})

	requestURL := c.BaseURL() + c.OriginalURL()
	return h.validator.Validate(requestURL, params, c.Get("X-Twilio-Signature"))
}
