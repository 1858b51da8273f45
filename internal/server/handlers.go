package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/splitpilot/splitpilot/internal/abtest"
)

const visitorCookieName = "sp_vid"

type HealthResponse struct {
	Status        string `json:"status"`
	TestsCount    int    `json:"tests_count"`
	DBSizeBytes   int64  `json:"db_size_bytes"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Get database size
	var dbSize int64
	row := s.archive.DB().QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	_ = row.Scan(&dbSize)

	response := HealthResponse{
		Status:        "ok",
		TestsCount:    len(s.hub.Registry().All()),
		DBSizeBytes:   dbSize,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// corsHeaders opens an endpoint to browser calls from the marketing
// site's origin. Returns true when the request was a handled preflight.
func corsHeaders(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// visitorID resolves the visitor: explicit vid param (script-managed),
// then cookie, then a fresh id persisted via cookie.
func (s *Server) visitorID(w http.ResponseWriter, r *http.Request) string {
	if vid := r.URL.Query().Get("vid"); vid != "" {
		return vid
	}

	if cookie, err := r.Cookie(visitorCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	vid := abtest.NewVisitorID()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    vid,
		Path:     "/",
		MaxAge:   int(365 * 24 * time.Hour / time.Second),
		SameSite: http.SameSiteLaxMode,
	})
	return vid
}

type AssignResponse struct {
	Test    string `json:"test"`
	Variant string `json:"variant"`
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	if corsHeaders(w, r, "GET") {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	testID := r.URL.Query().Get("test")
	if testID == "" {
		http.Error(w, "test parameter required", http.StatusBadRequest)
		return
	}

	vid := s.visitorID(w, r)
	variant := s.session(vid).AssignVariant(testID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AssignResponse{Test: testID, Variant: variant})
}

// BeaconRequest represents an incoming beacon event
type BeaconRequest struct {
	TestID    string   `json:"t"`
	EventName string   `json:"e"`
	VisitorID string   `json:"vid"`
	Value     *float64 `json:"val,omitempty"`
}

func (s *Server) handleBeacon(w http.ResponseWriter, r *http.Request) {
	if corsHeaders(w, r, "POST") {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BeaconRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.TestID == "" || req.VisitorID == "" || req.EventName == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	// Unknown test or unassigned visitor is a silent no-op inside the
	// framework; the beacon never fails the page.
	session := s.session(req.VisitorID)
	if req.EventName == "conversion" {
		if req.Value != nil {
			session.TrackConversion(req.TestID, *req.Value)
		} else {
			session.TrackConversion(req.TestID)
		}
	} else {
		if req.Value != nil {
			session.TrackEvent(req.TestID, req.EventName, *req.Value)
		} else {
			session.TrackEvent(req.TestID, req.EventName)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleTestsAPI returns the active tests for the global script and the
// dashboard read surface.
func (s *Server) handleTestsAPI(w http.ResponseWriter, r *http.Request) {
	if corsHeaders(w, r, "GET") {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tests := s.hub.Registry().Active()
	if tests == nil {
		// Return empty array instead of null
		tests = []abtest.Test{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tests)
}

// handleEventsAPI exposes the visitor's bounded local event log.
func (s *Server) handleEventsAPI(w http.ResponseWriter, r *http.Request) {
	if corsHeaders(w, r, "GET") {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	vid := s.visitorID(w, r)
	events := s.session(vid).StoredEvents()
	if events == nil {
		events = []abtest.Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}
