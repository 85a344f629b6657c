package repository

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/hawy/hawy-go/internal/model"
)

var _ ChatStore = (*ChatRepository)(nil)

// ChatRepository handles chat turn persistence operations.
type ChatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Append inserts a turn and sets the generated ID on it.
func (r *ChatRepository) Append(ctx context.Context, turn *model.ChatTurn) error {
	query := `INSERT INTO chats (session_id, user_id, user_message, bot_response, created_at)
		VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		turn.SessionID,
		turn.UserID,
		turn.UserMessage,
		turn.BotResponse,
		turn.Timestamp,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	turn.ID = strconv.FormatInt(id, 10)
	return nil
}

// Recent returns at most limit turns in scope, newest first. Turns written in the
// same instant are ordered by insertion.
func (r *ChatRepository) Recent(ctx context.Context, scope model.AccessScope, limit int) ([]model.ChatTurn, error) {
	where, args := scopeFilter(scope)
	query := `SELECT id, session_id, user_id, user_message, bot_response, created_at
		FROM chats WHERE ` + where + ` ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, append(args, limit)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []model.ChatTurn
	for rows.Next() {
		var (
			t  model.ChatTurn
			id int64
		)
		if err := rows.Scan(&id, &t.SessionID, &t.UserID, &t.UserMessage, &t.BotResponse, &t.Timestamp); err != nil {
			return nil, err
		}
		t.ID = strconv.FormatInt(id, 10)
		turns = append(turns, t)
	}

	return turns, rows.Err()
}

// Delete removes every turn in scope.
func (r *ChatRepository) Delete(ctx context.Context, scope model.AccessScope) (int64, error) {
	where, args := scopeFilter(scope)

	result, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE `+where, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func scopeFilter(scope model.AccessScope) (string, []any) {
	if scope.IsOwned() {
		return `session_id = ? AND user_id = ?`, []any{scope.SessionID, scope.UserID}
	}
	return `session_id = ?`, []any{scope.SessionID}
}
