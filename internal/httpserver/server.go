// internal/httpserver/server.go
//
// HTTP server wiring for the mini-games backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): /quiz/*, /sequence/*, /words/*.
//   - Scoreboard endpoints: /scores/{game}, /scores/mine (auth).
//   - Auth endpoints: /auth/*.
//
// Notes:
//   - Game sessions live in memory (internal/store); only finished results reach SQLite.
//   - Rejected game actions answer 200 with "ignored": true. Only malformed JSON is a 400
//     and only an unknown session is a 404.
//   - CORS is origin-aware and credentials-enabled (so cookies work).

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/constitution-games/internal/config"
	"github.com/robalobadob/constitution-games/internal/content"
	"github.com/robalobadob/constitution-games/internal/rng"
	"github.com/robalobadob/constitution-games/internal/schedule"
	"github.com/robalobadob/constitution-games/internal/scoreboard"
	"github.com/robalobadob/constitution-games/internal/store"
	"github.com/robalobadob/constitution-games/internal/tally"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Config   *config.Config
	Library  *content.Library
	Sessions *store.Memory[*Session]
	Scores   *scoreboard.Store
	Random   rng.Source
	Clock    schedule.Scheduler
}

// Server bundles the router and its dependencies.
type Server struct {
	r    *chi.Mux
	cfg  *config.Config
	lib  *content.Library
	sess *store.Memory[*Session]
	sb   *scoreboard.Store
	rnd  rng.Source
	clk  schedule.Scheduler
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:    chi.NewRouter(),
		cfg:  d.Config,
		lib:  d.Library,
		sess: d.Sessions,
		sb:   d.Scores,
		rnd:  d.Random,
		clk:  d.Clock,
	}
	if s.rnd == nil {
		s.rnd = rng.Crypto{}
	}
	if s.clk == nil {
		s.clk = schedule.Clock{}
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "constitution-games",
			"quizSets":  s.lib.SetNames(),
			"wordCount": len(s.lib.Words),
			"endpoints": []string{"/health", "/quiz/*", "/sequence/*", "/words/*", "/scores/*", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.sess.Len()})
	})

	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountQuiz(r)
		s.mountSequence(r)
		s.mountWords(r)
		s.mountScores(r)
	})
	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger writes one debug line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// decode reads a JSON body. An empty body is allowed and leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// actionRes is the envelope for every game command.
type actionRes struct {
	SessionID string `json:"sessionId"`
	Snapshot  any    `json:"snapshot"`
	Verdict   any    `json:"verdict,omitempty"`
	Ignored   bool   `json:"ignored,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// respond writes a command result. Rejections from the game become ignored:true;
// anything else is an internal error.
func respond(w http.ResponseWriter, r *http.Request, res actionRes, err error) {
	if err != nil {
		if !tally.Ignored(err) {
			log.Error().Err(err).Str("session", res.SessionID).Msg("game action")
			writeError(w, http.StatusInternalServerError, "internal")
			return
		}
		res.Ignored = true
		res.Reason = reason(err)
		log.Debug().Err(err).Str("session", res.SessionID).Str("path", r.URL.Path).Msg("action ignored")
	}
	writeJSON(w, http.StatusOK, res)
}

func reason(err error) string {
	switch {
	case errors.Is(err, tally.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, tally.ErrInvalidState):
		return "invalid_state"
	}
	return ""
}
