// Package apitest runs an in-memory stand-in for the remote todo API.
// Tests point a real api.Client at it through httptest.
package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/idilsaglam/tada/internal/model"
)

// Request records one call the server received.
type Request struct {
	Method    string
	Path      string
	Body      map[string]any
	RequestID string
}

// Server is a fake /api/todos collection with integer ids.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	seq      int64
	items    []model.Item
	fail     map[string]int
	raw      map[string]string
	requests []Request
}

// New starts a server seeded with items. Close it when done.
func New(items ...model.Item) *Server {
	s := &Server{
		fail: make(map[string]int),
		raw:  make(map[string]string),
	}
	for _, it := range items {
		s.items = append(s.items, it)
		if n, err := strconv.ParseInt(it.ID.String(), 10, 64); err == nil && n > s.seq {
			s.seq = n
		}
	}

	r := chi.NewRouter()
	r.Route("/api/todos", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Put("/{id}", s.update)
		r.Delete("/{id}", s.remove)
	})
	s.Server = httptest.NewServer(s.record(r))
	return s
}

// BaseURL is what api.New expects.
func (s *Server) BaseURL() string { return s.URL + "/api" }

// FailWith makes every request with method answer with status until cleared
// with status 0.
func (s *Server) FailWith(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.fail, method)
		return
	}
	s.fail[method] = status
}

// RespondRaw makes every successful request with method answer with body
// instead of the real payload.
func (s *Server) RespondRaw(method, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[method] = body
}

// Items returns a copy of the server-side collection.
func (s *Server) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{
			Method:    r.Method,
			Path:      r.URL.EscapedPath(),
			RequestID: r.Header.Get("X-Request-ID"),
		}
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
				return
			}
			req.Body = body
			r = r.WithContext(withBody(r.Context(), body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		status := s.fail[r.Method]
		raw, hasRaw := s.raw[r.Method]
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
			return
		}
		if hasRaw {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(raw))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]model.Item{}, s.items...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	task, _ := body["task"].(string)
	if task == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "task required"})
		return
	}

	s.mu.Lock()
	s.seq++
	it := model.Item{ID: model.ID(strconv.FormatInt(s.seq, 10)), Task: task}
	s.items = append(s.items, it)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := urlID(r)
	body := bodyFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Todo not found"})
		return
	}
	if task, ok := body["task"].(string); ok {
		s.items[i].Task = task
	}
	if done, ok := body["completed"].(bool); ok {
		s.items[i].Completed = done
	}
	writeJSON(w, http.StatusOK, s.items[i])
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := urlID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Todo not found"})
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted"})
}

// urlID reads the {id} segment. chi matches on the raw path when the
// request has one, so the segment may still be escaped.
func urlID(r *http.Request) model.ID {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return model.ID(id)
	}
	return model.ID(raw)
}

func (s *Server) index(id model.ID) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type bodyKey struct{}

func withBody(ctx context.Context, body map[string]any) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

func bodyFrom(ctx context.Context) map[string]any {
	body, _ := ctx.Value(bodyKey{}).(map[string]any)
	return body
}
