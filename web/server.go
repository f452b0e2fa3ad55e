// Package web hosts a swarm over HTTP.
//
// Routes:
//
//	POST /api/action          execute one Action, reply with its Output
//	GET  /api/agents          registered agents and their operations
//	GET  /api/ws              websocket, one Action per frame, one Output per reply
//	GET  /resources/{file...} files below Options.ResourcesDir
//	POST /a2a                 A2A JSON-RPC endpoint when Options.A2A is set
//	GET  /{file...}           single page app below Options.UIDir
//
// When an *auth.Agent is registered under Options.AuthAgentID, every action
// is checked with its IsAccessible against the Token request header.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hupe1980/agentswarm/auth"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/swarm"
)

// TokenHeader carries the auth token of a request.
const TokenHeader = "Token"

// RequestIDHeader carries the request id, generated when absent.
const RequestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestID returns the request id stored in ctx.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Options configures a Server.
type Options struct {
	Address         string
	UIDir           string
	ResourcesDir    string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodySize     int64
	AuthAgentID     string
	Logger          logging.Logger

	// A2A is mounted at /a2a when set, with AgentCard describing it at
	// /.well-known/agent.json.
	A2A       http.Handler
	AgentCard any
}

// Server is the HTTP host of a swarm.
type Server struct {
	sw       *swarm.Swarm
	opts     Options
	mux      *http.ServeMux
	handler  http.Handler
	upgrader websocket.Upgrader
}

// New creates a Server for sw.
func New(sw *swarm.Swarm, optFns ...func(o *Options)) *Server {
	opts := Options{
		Address:         ":8000",
		UIDir:           "ui",
		ResourcesDir:    "resources",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    5 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
		MaxBodySize:     10 << 20,
		AuthAgentID:     "Auth",
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	opts.Logger = logging.ForComponent(opts.Logger, "web")

	s := &Server{
		sw:       sw,
		opts:     opts,
		mux:      http.NewServeMux(),
		upgrader: newUpgrader(),
	}
	s.setupRoutes()
	s.handler = s.withMiddleware(s.mux)

	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("POST /api/action", s.handleAction)
	s.mux.HandleFunc("GET /api/agents", s.handleAgents)
	s.mux.HandleFunc("GET /api/ws", s.handleWebsocket)
	s.mux.HandleFunc("GET /resources/{file...}", s.handleResource)

	if s.opts.A2A != nil {
		s.mux.Handle("POST /a2a", s.opts.A2A)
		if s.opts.AgentCard != nil {
			s.mux.HandleFunc("GET /.well-known/agent.json", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, s.opts.AgentCard)
			})
		}
	}

	s.mux.HandleFunc("GET /{file...}", s.handleUI)
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("Server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.opts.Logger.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// Accessible reports whether token may run actionID. Without an auth agent
// every action is accessible.
func (s *Server) Accessible(token, actionID string) bool {
	a, err := swarm.Lookup[*auth.Agent](s.sw, s.opts.AuthAgentID)
	if err != nil {
		return true
	}
	return a.IsAccessible(token, actionID)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodySize)

	var action core.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if action.ID() == "" {
		http.Error(w, "Missing action id", http.StatusBadRequest)
		return
	}

	if !s.Accessible(r.Header.Get(TokenHeader), action.ID()) {
		s.opts.Logger.Warn("Forbidden action", "action_id", action.ID(), "request_id", RequestID(r.Context()))
		http.Error(w, "Forbidden access: "+r.URL.RequestURI(), http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusOK, s.sw.ExecuteAction(r.Context(), action))
}

func (s *Server) handleAgents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sw.Describe())
}

// withMiddleware adds request ids, request logging and panic recovery.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, reqID)
		ctx := context.WithValue(r.Context(), requestIDKey, reqID)

		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.opts.Logger.Error("Handler panic", "panic", rec, "request_id", reqID)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.opts.Logger.Debug("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", reqID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
