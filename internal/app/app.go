// Package app assembles the stores, oracle and services into a runnable API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hawy/hawy-go/internal/config"
	"github.com/hawy/hawy-go/internal/crypto"
	"github.com/hawy/hawy-go/internal/handler"
	"github.com/hawy/hawy-go/internal/knowledge"
	"github.com/hawy/hawy-go/internal/oracle"
	"github.com/hawy/hawy-go/internal/repository"
	"github.com/hawy/hawy-go/internal/repository/mongodb"
	"github.com/hawy/hawy-go/internal/service"
)

// App holds everything built once at startup and shared by all requests.
type App struct {
	cfg    config.Config
	logger *slog.Logger

	auth *service.AuthService
	chat *service.ChatService

	closers []func(context.Context) error
}

// New connects the configured store and builds the services.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	kb, err := knowledge.Load(cfg.KnowledgeDir)
	if err != nil {
		return nil, fmt.Errorf("loading knowledge base: %w", err)
	}

	users, chats, err := a.openStores(ctx)
	if err != nil {
		return nil, err
	}

	o, err := a.newOracle(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	tokens := crypto.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	hasher := crypto.NewPasswordHasher(crypto.DefaultHashParams())

	a.auth = service.NewAuthService(users, tokens, hasher, logger)
	a.chat = service.NewChatService(chats, o, kb, cfg.ChatContextTurns, logger)

	return a, nil
}

func (a *App) openStores(ctx context.Context) (repository.UserStore, repository.ChatStore, error) {
	switch a.cfg.StoreDriver {
	case config.DriverMongoDB:
		store, err := mongodb.Connect(ctx, a.cfg.MongoURL, a.cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, store.Close)
		a.logger.Info("store connected", "driver", a.cfg.StoreDriver, "database", a.cfg.MongoDatabase)
		return store.Users(), store.Chats(), nil

	default:
		db, err := repository.NewDB(ctx, a.cfg.StoreDriver, a.cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		a.logger.Info("store connected", "driver", a.cfg.StoreDriver)
		return repository.NewUserRepository(db), repository.NewChatRepository(db), nil
	}
}

func (a *App) newOracle(ctx context.Context) (oracle.Oracle, error) {
	if a.cfg.GoogleAPIKey == "" {
		a.logger.Warn("GOOGLE_API_KEY not set, chat replies will fail")
		return oracle.Unavailable("GOOGLE_API_KEY is not set"), nil
	}

	return oracle.NewGemini(ctx, oracle.GeminiConfig{
		APIKey:  a.cfg.GoogleAPIKey,
		Model:   a.cfg.GeminiModel,
		BaseURL: a.cfg.GeminiBaseURL,
		Timeout: a.cfg.OracleTimeout,
	})
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return handler.NewRouter(a.auth, a.chat, a.logger)
}

// Close releases the store connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
