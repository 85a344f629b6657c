package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/hawy/hawy-go/internal/knowledge"
	"github.com/hawy/hawy-go/internal/model"
	"github.com/hawy/hawy-go/internal/oracle"
	"github.com/hawy/hawy-go/internal/prompt"
	"github.com/hawy/hawy-go/internal/repository"
)

var (
	ErrMessageRequired  = errors.New("message is required")
	ErrSessionRequired  = errors.New("session id is required")
	ErrGenerationFailed = errors.New("failed to generate a reply")
	ErrFetchFailed      = errors.New("failed to fetch chat history")
	ErrDeleteFailed     = errors.New("failed to clear chat history")
)

const (
	DefaultContextTurns = 25
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// NewSessionID returns a fresh session identifier of the form session_<xid>.
func NewSessionID() string {
	return "session_" + xid.New().String()
}

// ChatService runs the read, compose, generate, append cycle for chat messages.
// Requests on the same session are not serialized: two concurrent messages may
// be composed from the same history and are both appended.
type ChatService struct {
	chats        repository.ChatStore
	oracle       oracle.Oracle
	kb           knowledge.Base
	contextTurns int
	logger       *slog.Logger

	now          func() time.Time
	newSessionID func() string
}

// NewChatService creates a new ChatService. contextTurns is the number of
// previous turns included in each prompt.
func NewChatService(chats repository.ChatStore, o oracle.Oracle, kb knowledge.Base, contextTurns int, logger *slog.Logger) *ChatService {
	return &ChatService{
		chats:        chats,
		oracle:       o,
		kb:           kb,
		contextTurns: contextTurns,
		logger:       logger,
		now:          time.Now,
		newSessionID: NewSessionID,
	}
}

// SendMessage generates Hawy's reply to req.Message and records the exchange.
// A reply that could not be stored is still returned, with Persisted set to false.
func (s *ChatService) SendMessage(ctx context.Context, req model.SendMessageRequest) (model.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return model.ChatResponse{}, ErrMessageRequired
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.newSessionID()
	}
	scope := model.Owned(sessionID, req.UserID)

	var transcript []prompt.Exchange
	if s.contextTurns > 0 {
		recent, err := s.chats.Recent(ctx, scope, s.contextTurns)
		if err != nil {
			return model.ChatResponse{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		slices.Reverse(recent)
		transcript = make([]prompt.Exchange, 0, len(recent))
		for _, t := range recent {
			transcript = append(transcript, prompt.Exchange{Child: t.UserMessage, Hawy: t.BotResponse})
		}
	}

	p := prompt.Compose(prompt.Input{
		Knowledge:     s.kb.Knowledge,
		LanguageRules: s.kb.LanguageRules,
		Persona:       s.kb.Persona,
		Transcript:    transcript,
		Message:       req.Message,
	})

	reply, err := s.oracle.Complete(ctx, p)
	if err != nil {
		s.logger.Error("generation failed", "session_id", sessionID, "error", err)
		return model.ChatResponse{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	// Millisecond precision survives every store, so the returned timestamp
	// equals the stored one.
	turn := &model.ChatTurn{
		SessionID:   sessionID,
		UserID:      req.UserID,
		UserMessage: req.Message,
		BotResponse: reply,
		Timestamp:   s.now().UTC().Truncate(time.Millisecond),
	}

	persisted := true
	if err := s.chats.Append(ctx, turn); err != nil {
		persisted = false
		s.logger.Warn("chat turn not persisted", "session_id", sessionID, "error", err)
	}

	return model.ChatResponse{
		Response:  reply,
		SessionID: sessionID,
		Timestamp: turn.Timestamp,
		Persisted: persisted,
	}, nil
}

// GetHistory returns up to limit of the most recent turns in scope, oldest first.
// A non-positive limit selects DefaultHistoryLimit; larger values are capped at
// MaxHistoryLimit.
func (s *ChatService) GetHistory(ctx context.Context, scope model.AccessScope, limit int) ([]model.ChatTurnResponse, error) {
	if scope.SessionID == "" {
		return nil, ErrSessionRequired
	}

	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	turns, err := s.chats.Recent(ctx, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	history := make([]model.ChatTurnResponse, len(turns))
	for i, t := range turns {
		history[len(turns)-1-i] = model.ChatTurnResponse{
			ID:          t.ID,
			SessionID:   t.SessionID,
			UserID:      t.UserID,
			UserMessage: t.UserMessage,
			BotResponse: t.BotResponse,
			Timestamp:   t.Timestamp,
		}
	}

	return history, nil
}

// ClearHistory deletes every turn in scope and reports how many were removed.
func (s *ChatService) ClearHistory(ctx context.Context, scope model.AccessScope) (int64, error) {
	if scope.SessionID == "" {
		return 0, ErrSessionRequired
	}

	n, err := s.chats.Delete(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}

	s.logger.Info("chat history cleared", "session_id", scope.SessionID, "deleted", n)
	return n, nil
}
