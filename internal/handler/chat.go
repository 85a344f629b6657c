package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hawy/hawy-go/internal/middleware"
	"github.com/hawy/hawy-go/internal/model"
	"github.com/hawy/hawy-go/internal/service"
)

var errUserMismatch = errors.New("user_id does not match the authenticated user")

// ChatHandler handles HTTP requests for chatting with Hawy.
type ChatHandler struct {
	service *service.ChatService
	logger  *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{service: svc, logger: logger}
}

// HandleSendMessage handles POST /api/chat requests.
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req model.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, err := resolveUserID(r, req.UserID)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
		return
	}
	req.UserID = userID

	resp, err := h.service.SendMessage(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGetHistory handles GET /api/chat/history/{session_id} requests.
func (h *ChatHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
			return
		}
		limit = n
	}

	history, err := h.service.GetHistory(r.Context(), scope, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.HistoryResponse{History: history})
}

// HandleClearHistory handles DELETE /api/chat/history/{session_id} requests.
func (h *ChatHandler) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	n, err := h.service.ClearHistory(r.Context(), scope)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ClearHistoryResponse{DeletedCount: n})
}

func (h *ChatHandler) scope(w http.ResponseWriter, r *http.Request) (model.AccessScope, bool) {
	userID, err := resolveUserID(r, r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
		return model.AccessScope{}, false
	}
	return model.Owned(chi.URLParam(r, "session_id"), userID), true
}

func (h *ChatHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMessageRequired), errors.Is(err, service.ErrSessionRequired):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, service.ErrGenerationFailed):
		writeError(w, http.StatusInternalServerError, "generation_failed", "Hawy could not answer right now, please try again")
	case errors.Is(err, service.ErrFetchFailed):
		h.logger.Error("chat store read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "could not load the conversation")
	case errors.Is(err, service.ErrDeleteFailed):
		h.logger.Error("chat store delete failed", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "could not clear the conversation")
	default:
		h.logger.Error("chat request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// resolveUserID picks the user a chat request acts for. An authenticated user
// always wins and a different supplied id is refused. Anonymous callers may
// pass any id.
func resolveUserID(r *http.Request, supplied string) (string, error) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return supplied, nil
	}
	if supplied != "" && supplied != user.ID {
		return "", errUserMismatch
	}
	return user.ID, nil
}
