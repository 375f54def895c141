package sms

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"io"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/textchain/sms-gateway/internal/logging"
)

type echoProcessor struct{}

func (echoProcessor) Process(_ context.Context, from, body string) string {
	return "echo " + from + ": " + body
}

func postForm(t *testing.T, app *fiber.App, form url.Values, headers map[string]string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/webhook/sms", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()

	rec := httptest.NewRecorder()
	rec.Code = resp.StatusCode
	return rec, string(body)
}

func TestInboundRendersTwiML(t *testing.T) {
	app := fiber.New()
	handler := NewHandler(echoProcessor{}, nil, "", logging.Discard())
	app.Post("/webhook/sms", handler.Inbound)

	form := url.Values{}
	form.Set("From", "+14155550100")
	form.Set("Body", "BALANCE")

	rec, body := postForm(t, app, form, nil)
	if rec.Code != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(body, "<Message>echo +14155550100: BALANCE</Message>") {
		t.Fatalf("unexpected TwiML: %s", body)
	}
}

func TestInboundMissingFrom(t *testing.T) {
	app := fiber.New()
	handler := NewHandler(echoProcessor{}, nil, "", logging.Discard())
	app.Post("/webhook/sms", handler.Inbound)

	rec, _ := postForm(t, app, url.Values{"Body": {"HELP"}}, nil)
	if rec.Code != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestInboundRejectsBadSignature(t *testing.T) {
	app := fiber.New()
	handler := NewHandler(echoProcessor{}, nil, "secret-token", logging.Discard())
	app.Post("/webhook/sms", handler.Inbound)

	form := url.Values{}
	form.Set("From", "+14155550100")
	form.Set("Body", "HELP")

	rec, _ := postForm(t, app, form, map[string]string{"X-Twilio-Signature": "bogus"})
	if rec.Code != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestInboundAcceptsValidSignature(t *testing.T) {
	app := fiber.New()
	handler := NewHandler(echoProcessor{}, nil, "secret-token", logging.Discard())
	app.Post("/webhook/sms", handler.Inbound)

	form := url.Values{}
	form.Set("From", "+14155550100")
	form.Set("Body", "HELP")

	// httptest defaults the host to example.com, so the signed URL must too.
	sig := signFixture("secret-token", "http://example.com/webhook/sms", map[string]string{
		"From": "+14155550100",
		"Body": "HELP",
	})

	rec, body := postForm(t, app, form, map[string]string{"X-Twilio-Signature": sig})
	if rec.Code != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(body, "<Message>echo +14155550100: HELP</Message>") {
		t.Fatalf("unexpected TwiML: %s", body)
	}
}

// signFixture computes the documented webhook signature:
// base64(HMAC-SHA1(token, url + params concatenated in sorted key order)).
func signFixture(token, requestURL string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	payload := requestURL
	for _, k := range keys {
		payload += k + params[k]
	}

	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestXMLEscaping(t *testing.T) {
	app := fiber.New()
	handler := NewHandler(echoProcessor{}, nil, "", logging.Discard())
	app.Post("/webhook/sms", handler.Inbound)

	form := url.Values{}
	form.Set("From", "+14155550100")
	form.Set("Body", "a<b>&c")

	_, body := postForm(t, app, form, nil)
	if strings.Contains(body, "<b>") {
		t.Fatalf("reply not XML-escaped: %s", body)
	}
}
