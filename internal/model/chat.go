package model

import "time"

// ChatTurn is one stored exchange: the child's message and Hawy's reply.
type ChatTurn struct {
	ID          string
	SessionID   string
	UserID      string
	UserMessage string
	BotResponse string
	Timestamp   time.Time
}

// SendMessageRequest is the body of POST /api/chat.
type SendMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// ChatResponse is returned after a reply has been generated. Persisted is false
// when the reply could not be written to the conversation store.
type ChatResponse struct {
	Response  string    `json:"response"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Persisted bool      `json:"persisted"`
}

// ChatTurnResponse is a stored turn as served by the history endpoint.
type ChatTurnResponse struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id,omitempty"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Timestamp   time.Time `json:"timestamp"`
}

// HistoryResponse wraps a chronological list of turns.
type HistoryResponse struct {
	History []ChatTurnResponse `json:"history"`
}

// ClearHistoryResponse reports how many turns were removed.
type ClearHistoryResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}
