package abtest

import (
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/splitpilot/splitpilot/internal/kvstore"
)

// AssignmentsKey holds the full testID -> Assignment map in each scope,
// so one read or write covers every test at once.
const AssignmentsKey = "sp_assignments"

// AssignmentStore keeps assignments in two independent key-value
// scopes. Writes go to both; reads prefer the primary and fall back to
// the secondary, so either scope alone can serve after the other is
// cleared. Records older than the retention window are dropped on read.
type AssignmentStore struct {
	primary   kvstore.Store
	secondary kvstore.Store
	retention time.Duration
	log       *zap.Logger
}

func NewAssignmentStore(primary, secondary kvstore.Store, log *zap.Logger) *AssignmentStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssignmentStore{
		primary:   primary,
		secondary: secondary,
		retention: DefaultRetention,
		log:       log,
	}
}

// Assignment returns the stored assignment for a test, if a fresh one
// exists in either scope. Expired records are deleted before returning.
func (s *AssignmentStore) Assignment(testID string) (Assignment, bool) {
	if rec, ok := s.lookup(s.primary, testID); ok {
		if !s.expired(rec) {
			return rec, true
		}
		s.Remove(testID)
		return Assignment{}, false
	}

	if rec, ok := s.lookup(s.secondary, testID); ok {
		if !s.expired(rec) {
			return rec, true
		}
		s.Remove(testID)
		return Assignment{}, false
	}

	return Assignment{}, false
}

// Save records an assignment in both scopes with the current timestamp.
// Store failures are logged, never surfaced: losing durability must not
// break the page.
func (s *AssignmentStore) Save(testID, variantID, userID string) {
	rec := Assignment{
		VariantID:  variantID,
		AssignedAt: nowMillis(),
		UserID:     userID,
	}
	s.update(s.primary, "primary", testID, &rec)
	s.update(s.secondary, "secondary", testID, &rec)
}

// Remove deletes the assignment for one test from both scopes.
func (s *AssignmentStore) Remove(testID string) {
	s.update(s.primary, "primary", testID, nil)
	s.update(s.secondary, "secondary", testID, nil)
}

// Clear drops every assignment from both scopes.
func (s *AssignmentStore) Clear() {
	if err := s.primary.Delete(AssignmentsKey); err != nil {
		s.log.Warn("failed to clear primary assignments", zap.Error(err))
	}
	if err := s.secondary.Delete(AssignmentsKey); err != nil {
		s.log.Warn("failed to clear secondary assignments", zap.Error(err))
	}
}

func (s *AssignmentStore) expired(rec Assignment) bool {
	age := time.Duration(nowMillis()-rec.AssignedAt) * time.Millisecond
	return age > s.retention
}

func (s *AssignmentStore) lookup(store kvstore.Store, testID string) (Assignment, bool) {
	rec, ok := s.readMap(store)[testID]
	return rec, ok
}

// readMap decodes the assignment map from one scope. Missing or corrupt
// data is treated as empty.
func (s *AssignmentStore) readMap(store kvstore.Store) map[string]Assignment {
	raw, err := store.Get(AssignmentsKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.log.Warn("failed to read assignments", zap.Error(err))
		return nil
	}

	var m map[string]Assignment
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		s.log.Warn("corrupt assignment data, treating as empty", zap.Error(err))
		return nil
	}
	return m
}

// update rewrites one entry of the assignment map in one scope.
// A nil record deletes the entry.
func (s *AssignmentStore) update(store kvstore.Store, label, testID string, rec *Assignment) {
	m := s.readMap(store)
	if m == nil {
		m = make(map[string]Assignment)
	}

	if rec == nil {
		delete(m, testID)
	} else {
		m[testID] = *rec
	}

	raw, err := json.Marshal(m)
	if err != nil {
		s.log.Warn("failed to encode assignments", zap.String("store", label), zap.Error(err))
		return
	}
	if err := store.Set(AssignmentsKey, string(raw)); err != nil {
		s.log.Warn("failed to write assignments", zap.String("store", label), zap.Error(err))
	}
}
