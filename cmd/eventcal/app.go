package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	_ "eventcalendar/docs"

	"eventcalendar/config"
	"eventcalendar/internal/adapters/auth"
	"eventcalendar/internal/adapters/email"
	"eventcalendar/internal/adapters/ical"
	deliveryhttp "eventcalendar/internal/delivery/http"
	"eventcalendar/internal/delivery/http/controllers"
	"eventcalendar/internal/domain"
	"eventcalendar/internal/metrics"
	"eventcalendar/internal/repository/memory"
	"eventcalendar/internal/repository/postgres"
	"eventcalendar/internal/services"
)

type stores struct {
	events domain.EventRepository
	users  domain.UserRepository
	db     *sql.DB
}

func (s *stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func openDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on exit")
		return &stores{events: memory.NewEventRepository(), users: memory.NewUserRepository()}, nil
	}
	db, err := openDB(ctx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database")
	return &stores{
		events: postgres.NewEventRepository(db),
		users:  postgres.NewUserRepository(db),
		db:     db,
	}, nil
}

type application struct {
	handler http.Handler
	auth    *services.AuthService
	stores  *stores
}

func newAuthService(cfg *config.Config, st *stores, logger *slog.Logger) (*services.AuthService, *auth.JWT, error) {
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	tokens := auth.NewJWT(cfg.JWTSecret)
	authService := services.NewAuthService(st.users, auth.NewBcryptHasher(cfg.PasswordCost), tokens, cfg.JWTExpiry, emailService, logger)
	return authService, tokens, nil
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	authService, tokens, err := newAuthService(cfg, st, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	m := metrics.New()

	eventService := services.NewEventService(st.events, logger, cfg.PriceMax, cfg.ToggleMaxAttempts, cfg.RequestTimeout)
	participationService := services.NewParticipationService(st.events, m, logger, cfg.ToggleMaxAttempts, cfg.RequestTimeout)
	queryService := services.NewQueryService(st.events, st.users, logger, cfg.QueryMaxWindow, cfg.RequestTimeout)

	handler := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Events:        controllers.NewEventController(logger, eventService, queryService),
		Participation: controllers.NewParticipationController(logger, participationService),
		Auth:          controllers.NewAuthController(logger, authService),
		Calendar:      controllers.NewCalendarController(logger, queryService, ical.NewRenderer(cfg.CalendarName, logger)),
	}, deliveryhttp.RouterConfig{
		Logger:             logger,
		Verifier:           tokens,
		Metrics:            m,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	return &application{handler: handler, auth: authService, stores: st}, nil
}
