package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/splitpilot/splitpilot/internal/abtest"
	"github.com/splitpilot/splitpilot/internal/archive"
	"github.com/splitpilot/splitpilot/internal/reporter"
)

type Server struct {
	hub       *abtest.Hub
	archive   *archive.Store
	beacon    abtest.Reporter // optional external forwarder
	port      int
	token     string
	tokenFile string
	router    *http.ServeMux
	startTime time.Time
	log       *zap.Logger
}

func New(hub *abtest.Hub, arch *archive.Store, port int, tokenFile string, beaconURL string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	srv := &Server{
		hub:       hub,
		archive:   arch,
		port:      port,
		token:     generateToken(),
		tokenFile: tokenFile,
		router:    http.NewServeMux(),
		startTime: time.Now(),
		log:       log,
	}
	if beaconURL != "" {
		srv.beacon = reporter.NewBeacon(beaconURL, log)
	}

	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	// Public endpoints
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/b", s.handleBeacon)
	s.router.HandleFunc("/sp.js", s.handleGlobalJS)
	s.router.HandleFunc("/api/assign", s.handleAssign)
	s.router.HandleFunc("/api/tests", s.handleTestsAPI)
	s.router.HandleFunc("/api/events", s.handleEventsAPI)

	// Dashboard endpoints (protected)
	s.router.Handle("/dashboard", s.authMiddleware(http.HandlerFunc(s.handleDashboard)))
	s.router.Handle("/dashboard/test/", s.authMiddleware(http.HandlerFunc(s.handleDashboardTest)))
}

// session builds the per-visitor framework with the archive reporter
// attached, plus the external beacon when configured.
func (s *Server) session(visitorID string) *abtest.Framework {
	rep := abtest.Reporter(reporter.NewArchive(s.archive, visitorID, s.log))
	if s.beacon != nil {
		rep = reporter.Multi{rep, s.beacon}
	}
	return s.hub.SessionWith(visitorID, rep)
}

func (s *Server) Start() error {
	return s.StartWithOptions(true)
}

// StartQuiet starts the server without printing startup messages
func (s *Server) StartQuiet() error {
	return s.StartWithOptions(false)
}

func (s *Server) StartWithOptions(printMessages bool) error {
	// Write token to file for the otp command
	if s.tokenFile != "" {
		if err := os.WriteFile(s.tokenFile, []byte(s.token), 0600); err != nil {
			fmt.Printf("Warning: failed to write token file: %v\n", err)
		}
	}

	addr := fmt.Sprintf(":%d", s.port)

	if printMessages {
		fmt.Println()
		fmt.Printf("splitpilot running on http://localhost:%d\n", s.port)
		fmt.Printf("Dashboard: http://localhost:%d/dashboard?token=%s\n", s.port, s.token)
		fmt.Println()
		fmt.Println("Press Ctrl+C to stop")
	}

	return http.ListenAndServe(addr, s.router)
}

func (s *Server) Token() string {
	return s.token
}

func (s *Server) StartTime() time.Time {
	return s.startTime
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func generateToken() string {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a simple token if crypto/rand fails
		return "a1b2c3d4"
	}
	return hex.EncodeToString(bytes)
}
