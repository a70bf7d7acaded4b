package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lojasmm/wamcp/internal/tools"
)

const maxBodyBytes = 1 << 20

// Server exposes the tool operations as POST /mcp/tools/<name>.
type Server struct {
	tools   *tools.Service
	metrics *Metrics
}

func NewServer(svc *tools.Service, metrics *Metrics) *Server {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Server{tools: svc, metrics: metrics}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/mcp/tools", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, tools.Names)
		})

		s.tool(r, "search_contacts", handle(s.tools.SearchContacts))
		s.tool(r, "list_messages", handle(s.tools.ListMessages))
		s.tool(r, "list_chats", handle(s.tools.ListChats))
		s.tool(r, "get_chat", handle(s.tools.GetChat))
		s.tool(r, "get_direct_chat_by_contact", handle(s.tools.GetDirectChatByContact))
		s.tool(r, "get_contact_chats", handle(s.tools.GetContactChats))
		s.tool(r, "get_last_interaction", handle(s.tools.GetLastInteraction))
		s.tool(r, "get_message_context", handle(s.tools.GetMessageContext))
		s.tool(r, "send_message", handle(s.tools.SendMessage))
		s.tool(r, "send_file", handle(s.tools.SendFile))
		s.tool(r, "send_audio_message", handle(s.tools.SendAudioMessage))
		s.tool(r, "download_media", handle(s.tools.DownloadMedia))
	})
	return r
}

func (s *Server) tool(r chi.Router, name string, h func(name string) http.HandlerFunc) {
	r.Post("/"+name, s.metrics.instrument(name, h(name)))
}

// handle adapts a tool operation to an HTTP handler: the JSON body becomes
// the params (an empty body means all defaults) and the result is written
// back as JSON.
func handle[P, R any](op func(context.Context, P) (R, error)) func(name string) http.HandlerFunc {
	return func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var p P
			if err := decodeBody(r, &p); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}

			res, err := op(r.Context(), p)
			if err != nil {
				status := statusFor(err)
				if status >= http.StatusInternalServerError {
					log.Printf("api: %s: %v", name, err)
				}
				writeError(w, status, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, res)
		}
	}
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
