package abtest

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/splitpilot/splitpilot/internal/kvstore"
)

// EventsKey holds the JSON-encoded bounded event log in a scope.
const EventsKey = "sp_events"

// EventLog is the bounded per-visitor event log, persisted in the
// secondary (local-storage-like) scope for later inspection by a
// reporting surface. At capacity the oldest event is evicted first.
type EventLog struct {
	store kvstore.Store
	cap   int
	log   *zap.Logger
}

func NewEventLog(store kvstore.Store, log *zap.Logger) *EventLog {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventLog{store: store, cap: EventLogCapacity, log: log}
}

// Append adds an event, evicting from the front if the log is full.
func (l *EventLog) Append(e Event) {
	events := l.Events()
	events = append(events, e)
	if len(events) > l.cap {
		events = events[len(events)-l.cap:]
	}

	raw, err := json.Marshal(events)
	if err != nil {
		l.log.Warn("failed to encode event log", zap.Error(err))
		return
	}
	if err := l.store.Set(EventsKey, string(raw)); err != nil {
		l.log.Warn("failed to write event log", zap.Error(err))
	}
}

// Events returns the stored log, oldest first. Corrupt data is treated
// as empty.
func (l *EventLog) Events() []Event {
	raw, err := l.store.Get(EventsKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		l.log.Warn("failed to read event log", zap.Error(err))
		return nil
	}

	var events []Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		l.log.Warn("corrupt event log, treating as empty", zap.Error(err))
		return nil
	}
	return events
}

// Clear empties the log.
func (l *EventLog) Clear() {
	if err := l.store.Delete(EventsKey); err != nil {
		l.log.Warn("failed to clear event log", zap.Error(err))
	}
}
