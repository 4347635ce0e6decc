package routes

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DamasoSilva/Platzgo-sub000/internal/audit"
	"github.com/DamasoSilva/Platzgo-sub000/internal/config"
	domain "github.com/DamasoSilva/Platzgo-sub000/internal/domain/booking"
	"github.com/DamasoSilva/Platzgo-sub000/internal/handlers"
	infraRepo "github.com/DamasoSilva/Platzgo-sub000/internal/infra/repository"
	"github.com/DamasoSilva/Platzgo-sub000/internal/mailqueue"
	"github.com/DamasoSilva/Platzgo-sub000/internal/middleware"
	"github.com/DamasoSilva/Platzgo-sub000/internal/mq"
	"github.com/DamasoSilva/Platzgo-sub000/internal/notify"
	"github.com/DamasoSilva/Platzgo-sub000/internal/outbox"
	"github.com/DamasoSilva/Platzgo-sub000/internal/payment"
	"github.com/DamasoSilva/Platzgo-sub000/internal/ratelimit"
	ucBooking "github.com/DamasoSilva/Platzgo-sub000/internal/usecase/booking"
)

// RegisterRoutes wires every dependency and mounts the API.
// The returned func releases background workers and connections.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, log *logrus.Logger) (func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware(cfg.AppBaseURL))

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db, cfg.LockTimeout)

	sinks := outbox.Sinks{
		Emails: mailqueue.NewQueue(db),
		Audit:  audit.New(db),
	}

	var notifier *notify.Sink
	if cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.NotifyExchange)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		closers = append(closers, func() { _ = pub.Close() })
		notifier = notify.NewSink(db, pub, log)
	} else {
		log.Warn("RABBIT_URL not set, notifications are stored only")
		notifier = notify.NewSink(db, nil, log)
	}
	sinks.Notifier = notifier

	var providerLookup handlers.ProviderLookup
	if cfg.MercadoPagoAccessToken != "" {
		gateway, err := payment.NewMercadoPago(
			cfg.MercadoPagoAccessToken,
			cfg.PaymentWebhookURL(),
			cfg.AppBaseURL,
		)
		if err != nil {
			cleanup()
			return nil, err
		}
		sinks.Payments = gateway
		providerLookup = gateway
		sinks.Checkouts = payment.NewRecorder(db)
	} else {
		log.Warn("MERCADOPAGO_ACCESS_TOKEN not set, checkouts are disabled")
	}

	dispatcher := outbox.NewDispatcher(log.WithField("component", "outbox"), sinks)
	closers = append(closers, dispatcher.Close)

	var limiter ucBooking.RateLimiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable, rate limit checks will fail open")
		}
		closers = append(closers, func() { _ = rdb.Close() })
		limiter = ratelimit.NewRedis(rdb, cfg.RateLimitMax, cfg.RateLimitWindow)
	} else {
		limiter = ratelimit.NewMemory(cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	env := ucBooking.Env{
		Store:    bookingRepo,
		Intents:  dispatcher,
		Clock:    domain.SystemClock{},
		Settings: cfg.BookingSettings(),
		Log:      log.WithField("component", "booking"),
	}

	// ======================================================
	// 🧠 USE CASES (RESERVAS)
	// ======================================================
	reservationUC := handlers.ReservationUseCases{
		Create:      ucBooking.NewCreateReservation(env, limiter),
		CreateOwner: ucBooking.NewCreateOwnerReservation(env),
		Confirm:     ucBooking.NewConfirmReservation(env),
		Cancel:      ucBooking.NewCancelReservation(env),
		Reschedule:  ucBooking.NewRescheduleReservation(env),
		Schedule:    ucBooking.NewCourtSchedule(bookingRepo),
	}

	createBlockUC := ucBooking.NewCreateBlock(env)
	deleteBlockUC := ucBooking.NewDeleteBlock(env)
	applyPaymentUC := ucBooking.NewApplyPaymentStatus(env)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	meHandler := handlers.NewMeHandler(db)
	publicHandler := handlers.NewPublicHandler(db)
	establishmentHandler := handlers.NewEstablishmentHandler(db)
	courtHandler := handlers.NewCourtHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	reservationHandler := handlers.NewReservationHandler(bookingRepo, reservationUC)
	blockHandler := handlers.NewBlockHandler(reservationHandler, createBlockUC, deleteBlockUC)
	webhookHandler := handlers.NewPaymentWebhookHandler(applyPaymentUC, providerLookup, log.WithField("component", "webhook"))

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		api.GET("/public/:slug/courts", publicHandler.ListCourts)

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 💳 WEBHOOKS
		// ------------------------------
		api.POST("/webhooks/payments",
			middleware.WebhookToken(cfg.PaymentWebhookToken),
			webhookHandler.Receive,
		)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.GET("/me/reservations", meHandler.ListReservations)
			secured.GET("/me/notifications", meHandler.ListNotifications)
			secured.PATCH("/me/notifications/:id/read", meHandler.MarkNotificationRead)

			// ------------------------------
			// RESERVAS
			// ------------------------------
			secured.POST("/courts/:id/reservations", reservationHandler.Create)
			secured.GET("/courts/:id/schedule", reservationHandler.DaySchedule)
			secured.PATCH("/reservations/:id/confirm", reservationHandler.Confirm)
			secured.PATCH("/reservations/:id/cancel", reservationHandler.Cancel)
			secured.PATCH("/reservations/:id/reschedule", reservationHandler.Reschedule)

			// ------------------------------
			// DONO
			// ------------------------------
			secured.POST("/owner/courts/:id/reservations", reservationHandler.CreateByOwner)
			secured.POST("/owner/courts/:id/blocks", blockHandler.Create)
			secured.DELETE("/owner/courts/:id/blocks/:blockId", blockHandler.Delete)

			secured.GET("/owner/establishments/:id", establishmentHandler.Get)
			secured.PATCH("/owner/establishments/:id", establishmentHandler.Update)
			secured.GET("/owner/establishments/:id/weekday-hours", establishmentHandler.GetWeekdayHours)
			secured.PUT("/owner/establishments/:id/weekday-hours", establishmentHandler.UpdateWeekdayHours)
			secured.PUT("/owner/establishments/:id/holidays/:date", establishmentHandler.PutHoliday)
			secured.DELETE("/owner/establishments/:id/holidays/:date", establishmentHandler.DeleteHoliday)
			secured.GET("/owner/establishments/:id/courts", courtHandler.List)
			secured.POST("/owner/establishments/:id/courts", courtHandler.Create)
			secured.PATCH("/owner/establishments/:id/courts/:courtId", courtHandler.Update)

			secured.GET("/audit-logs", auditLogsHandler.List)
		}
	}

	return cleanup, nil
}
