package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/textchain/sms-gateway/internal/cashout"
	"github.com/textchain/sms-gateway/internal/chainapi"
	"github.com/textchain/sms-gateway/internal/config"
	"github.com/textchain/sms-gateway/internal/contact"
	"github.com/textchain/sms-gateway/internal/deposit"
	"github.com/textchain/sms-gateway/internal/directory"
	"github.com/textchain/sms-gateway/internal/middleware"
	"github.com/textchain/sms-gateway/internal/resolve"
	"github.com/textchain/sms-gateway/internal/sms"
	"github.com/textchain/sms-gateway/internal/textcmd"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories fall back to memory twins without Postgres; command
	// handlers then answer with their degraded offline replies.
	var users directory.Repository
	if d.DB != nil {
		users = directory.NewPostgresRepository(d.DB)
	} else {
		users = directory.NewMemoryRepository()
		d.Logger.Warn("no database configured, accounts are in-memory only")
	}
	var contacts contact.Repository
	if d.DB != nil {
		contacts = contact.NewPostgresRepository(d.DB)
	} else {
		contacts = contact.NewMemoryRepository()
	}
	var deposits deposit.Repository
	if d.DB != nil {
		deposits = deposit.NewPostgresRepository(d.DB)
	} else {
		deposits = deposit.NewMemoryRepository()
	}

	chain := chainapi.New(d.Cfg.ChainAPIURL)

	var cashoutSvc textcmd.CashoutService
	if d.Cfg.CashoutAPIURL != "" {
		cashoutSvc = cashout.New(d.Cfg.CashoutAPIURL)
	}

	processor := textcmd.NewProcessor(textcmd.Options{
		Users:           directory.NewService(users),
		Contacts:        contacts,
		Deposits:        deposits,
		Chain:           chain,
		Cashout:         cashoutSvc,
		Resolver:        resolve.New(users, contacts, chain),
		Logger:          d.Logger,
		DispatchTimeout: d.Cfg.DispatchTimeout,
	})

	var sender sms.Sender
	if d.Cfg.TwilioConfigured() {
		sender = sms.NewClient(d.Cfg.TwilioAccountSID, d.Cfg.TwilioAuthToken, d.Cfg.TwilioPhoneNumber)
	} else {
		d.Logger.Warn("twilio not configured, replies are rendered as TwiML only")
	}

	handler := sms.NewHandler(processor, sender, d.Cfg.TwilioAuthToken, d.Logger)

	webhook := app.Group("/webhook")
	if d.Cache != nil {
		webhook.Use(middleware.SenderRateLimit(d.Cache, 10))
		webhook.Use(middleware.Dedupe(d.Cache, d.Cfg.DedupeTTL, d.Logger))
	}
	webhook.Post("/sms", handler.Inbound)

	app.Get("/api/v1/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	return nil
}
