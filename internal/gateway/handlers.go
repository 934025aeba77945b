package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/obitus-ai/contextd/internal/buffer"
	"github.com/obitus-ai/contextd/pkg/message"
)

// writeJSON encodes v with the given status. Encoding errors are ignored:
// the status line is already on the wire.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleHealth returns the manager's health report. 200 when healthy,
// 503 on warning so load balancers can react.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		health := g.manager.HealthCheck()
		status := http.StatusOK
		if health.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, health)
	}
}

func (g *Gateway) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, g.manager.Stats())
	}
}

func (g *Gateway) handleBufferInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, ok := g.manager.BufferInfo(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "no buffer for conversation")
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

func (g *Gateway) handleContext() http.HandlerFunc {
	type response struct {
		ConversationID string `json:"conversation_id"`
		Context        string `json:"context"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		writeJSON(w, http.StatusOK, response{
			ConversationID: id,
			Context:        g.manager.Context(r.Context(), id),
		})
	}
}

func (g *Gateway) handleAddMessage() http.HandlerFunc {
	type request struct {
		Content    string             `json:"content"`
		SenderID   string             `json:"sender_id"`
		SenderType message.SenderType `json:"sender_type"`
		Metadata   map[string]any     `json:"metadata,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Content == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}
		if !req.SenderType.Valid() {
			writeError(w, http.StatusBadRequest, "sender_type must be user, agent, or system")
			return
		}

		g.manager.AddMessage(r.Context(), chi.URLParam(r, "id"), req.Content, req.SenderID, req.SenderType, req.Metadata)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (g *Gateway) handleForceSummarize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !g.manager.ForceSummarize(r.Context(), id) {
			writeError(w, http.StatusNotFound, "no buffer for conversation")
			return
		}
		info, _ := g.manager.BufferInfo(id)
		writeJSON(w, http.StatusOK, info)
	}
}

func (g *Gateway) handleResume() http.HandlerFunc {
	type response struct {
		ConversationID string `json:"conversation_id"`
		Context        string `json:"context"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if g.loader == nil {
			writeError(w, http.StatusServiceUnavailable, "no persistence store configured")
			return
		}
		id := chi.URLParam(r, "id")
		writeJSON(w, http.StatusOK, response{
			ConversationID: id,
			Context:        g.manager.ResumeConversation(r.Context(), id, g.loader),
		})
	}
}

func (g *Gateway) handleClear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.manager.ClearConversation(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (g *Gateway) handleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeMetadata := r.URL.Query().Get("metadata") == "true"
		export, ok := g.manager.ExportConversation(chi.URLParam(r, "id"), includeMetadata)
		if !ok {
			writeError(w, http.StatusNotFound, "no buffer for conversation")
			return
		}
		writeJSON(w, http.StatusOK, export)
	}
}

func (g *Gateway) handleImport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data buffer.Export
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !g.manager.ImportConversation(chi.URLParam(r, "id"), data) {
			writeError(w, http.StatusBadRequest, "record has no messages or summary")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
