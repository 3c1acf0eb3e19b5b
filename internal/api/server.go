// Package api exposes the dice interpreter, verifier and scanner over HTTP.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dicekit/internal/dice"
	"dicekit/internal/scan"
	"dicekit/internal/store"
)

// Server handles HTTP requests
type Server struct {
	db       store.DB
	scanner  *scan.Scanner
	cfg      dice.Config
	logger   *log.Logger
	security *SecurityLogger
}

// NewServer creates a new API server
func NewServer(db store.DB, cfg dice.Config) *Server {
	return &Server{
		db:       db,
		scanner:  scan.NewScanner(),
		cfg:      cfg,
		logger:   log.New(os.Stdout, "", log.LstdFlags|log.LUTC),
		security: NewSecurityLogger(),
	}
}

// Routes sets up the HTTP routes
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.SecurityLoggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Heartbeat("/health"))
	r.Use(s.CORSMiddleware)

	// Routes
	r.Post("/roll", s.handleRoll)
	r.Post("/verify", s.handleVerify)
	r.Post("/scan", s.handleScan)
	r.Post("/seed/hash", s.handleSeedHash)
	r.Get("/variants", s.handleVariants)
	r.Get("/version", s.handleVersion)
	r.Get("/rolls", s.handleListRolls)
	r.Get("/runs/{id}", s.handleGetRun)
	r.Get("/runs/{id}/hits", s.handleGetRunHits)

	return r
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("response_encode_failed error=%v", err)
	}
}
