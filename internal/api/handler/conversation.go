package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Sharadgup/AGI-Innovation/internal/api/middleware"
	"github.com/Sharadgup/AGI-Innovation/internal/api/response"
	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/Sharadgup/AGI-Innovation/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ConversationReader reads conversation history on behalf of a caller
type ConversationReader interface {
	Recent(ctx context.Context, kind domain.ContextKind, id domain.Identity, contextKey string, limit int) ([]domain.Message, error)
}

// ConversationHandler exposes stored conversations
type ConversationHandler struct {
	conversations ConversationReader
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversations ConversationReader) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// Messages returns the trailing messages of one conversation
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	kind := domain.ContextKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		response.NotFound(w, "unknown conversation kind")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 0 {
			response.BadRequest(w, "invalid limit")
			return
		}
		limit = v
	}

	msgs, err := h.conversations.Recent(r.Context(), kind, id, r.URL.Query().Get("context_key"), limit)
	if err != nil {
		writeConversationError(w, r, err)
		return
	}

	response.OK(w, map[string]any{
		"kind":     kind,
		"messages": msgs,
	})
}

func writeConversationError(w http.ResponseWriter, r *http.Request, err error) {
	var rej *service.RejectError
	switch {
	case errors.Is(err, domain.ErrContextNotFound):
		response.NotFound(w, service.MsgPDFContextError)
	case errors.Is(err, domain.ErrStoreUnavailable):
		response.ServiceUnavailable(w, service.MsgStoreUnavailable)
	case errors.Is(err, domain.ErrAuthRequired):
		response.Unauthorized(w, service.MsgSessionError)
	case errors.As(err, &rej):
		response.BadRequest(w, rej.Message)
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to read conversation")
		response.InternalError(w, service.MsgServerError)
	}
}
