package abtest

import (
	"go.uber.org/zap"

	"github.com/splitpilot/splitpilot/internal/kvstore"
)

// Hub is the application-wide experiment framework: one registry, one
// reporter, two backing stores. Construct it once at startup and pass
// it to consumers; per-visitor work happens through Session.
type Hub struct {
	registry  *Registry
	selector  *Selector
	primary   kvstore.Store
	secondary kvstore.Store
	reporter  Reporter
	log       *zap.Logger
}

func NewHub(registry *Registry, primary, secondary kvstore.Store, reporter Reporter, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Hub{
		registry:  registry,
		selector:  NewSelector(log),
		primary:   primary,
		secondary: secondary,
		reporter:  reporter,
		log:       log,
	}
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

// Session returns the framework view for one visitor: both scopes
// namespaced by the visitor id, event log in the secondary scope.
func (h *Hub) Session(visitorID string) *Framework {
	return h.SessionWith(visitorID, h.reporter)
}

// SessionWith is Session with a reporter override, for callers that
// attach visitor context to their reporter (the analytics archive
// records which visitor produced each signal).
func (h *Hub) SessionWith(visitorID string, rep Reporter) *Framework {
	if rep == nil {
		rep = NopReporter{}
	}
	primary := kvstore.Namespace(h.primary, visitorID)
	secondary := kvstore.Namespace(h.secondary, visitorID)

	return &Framework{
		registry: h.registry,
		selector: h.selector,
		store:    NewAssignmentStore(primary, secondary, h.log),
		events:   NewEventLog(secondary, h.log),
		identity: StaticIdentity(visitorID),
		reporter: rep,
		log:      h.log,
	}
}

// ServerRendered returns the non-interactive framework: no persistent
// storage, sentinel identity, deterministic control-like behavior.
func (h *Hub) ServerRendered() *Framework {
	return &Framework{
		registry: h.registry,
		selector: h.selector,
		identity: ServerIdentity{},
		reporter: h.reporter,
		log:      h.log,
	}
}

// Framework exposes the assignment and tracking operations for one
// visitor context. All runtime failures degrade to safe defaults and
// are only logged: experiment plumbing must never break page rendering.
type Framework struct {
	registry *Registry
	selector *Selector
	store    *AssignmentStore // nil in non-interactive contexts
	events   *EventLog        // nil in non-interactive contexts
	identity Identity
	reporter Reporter
	log      *zap.Logger
}

func (f *Framework) interactive() bool {
	return f.store != nil
}

// AssignVariant resolves the visitor's variant for a test, bucketing
// and persisting on first use. Once assigned, the same variant comes
// back until the assignment expires.
func (f *Framework) AssignVariant(testID string) string {
	test, known := f.registry.Get(testID)

	if !f.interactive() {
		if known && len(test.Variants) > 0 {
			return test.Variants[0].ID
		}
		return ControlVariantID
	}

	if rec, ok := f.store.Assignment(testID); ok {
		return rec.VariantID
	}

	if !known {
		f.log.Warn("assignment requested for unknown test", zap.String("test", testID))
		return ControlVariantID
	}

	if !test.Active {
		// No persistence here, so activating later starts clean.
		f.log.Warn("assignment requested for inactive test", zap.String("test", testID))
		return test.Variants[0].ID
	}

	visitorID := f.identity.VisitorID()
	variant := f.selector.Select(testID, test.Variants, visitorID)
	f.store.Save(testID, variant.ID, visitorID)
	f.report(func() { f.reporter.Assignment(testID, variant.ID) })

	return variant.ID
}

// Variant is the read-only lookup: it returns the stored assignment if
// one exists and never assigns.
func (f *Framework) Variant(testID string) (string, bool) {
	if !f.interactive() {
		return "", false
	}
	rec, ok := f.store.Assignment(testID)
	if !ok {
		return "", false
	}
	return rec.VariantID, true
}

// TrackEvent records a named event against the visitor's assignment.
// Without a prior assignment it is a logged no-op, so uncontrolled
// traffic never pollutes results. At most one value is used.
func (f *Framework) TrackEvent(testID, name string, value ...float64) {
	f.track(testID, name, optValue(value), nil)
}

// TrackEventMeta is TrackEvent with an attached metadata map.
func (f *Framework) TrackEventMeta(testID, name string, metadata map[string]string, value ...float64) {
	f.track(testID, name, optValue(value), metadata)
}

// TrackConversion records a "conversion" event and additionally reports
// it through the dedicated conversion channel; downstream consumers may
// listen for either.
func (f *Framework) TrackConversion(testID string, value ...float64) {
	v := optValue(value)
	variantID, ok := f.track(testID, "conversion", v, nil)
	if !ok {
		return
	}
	f.report(func() { f.reporter.Conversion(testID, variantID, v) })
}

// ActiveTests is the dashboard read surface over the registry.
func (f *Framework) ActiveTests() []Test {
	return f.registry.Active()
}

// StoredEvents returns the visitor's bounded local event log.
func (f *Framework) StoredEvents() []Event {
	if f.events == nil {
		return nil
	}
	return f.events.Events()
}

// ClearEvents empties the visitor's local event log.
func (f *Framework) ClearEvents() {
	if f.events != nil {
		f.events.Clear()
	}
}

func (f *Framework) track(testID, name string, value *float64, metadata map[string]string) (string, bool) {
	if !f.interactive() {
		return "", false
	}

	rec, ok := f.store.Assignment(testID)
	if !ok {
		f.log.Warn("event for unassigned test dropped",
			zap.String("test", testID),
			zap.String("event", name))
		return "", false
	}

	e := Event{
		TestID:    testID,
		VariantID: rec.VariantID,
		Name:      name,
		Value:     value,
		Timestamp: nowMillis(),
		UserID:    f.identity.VisitorID(),
		Metadata:  metadata,
	}

	f.report(func() { f.reporter.Event(testID, rec.VariantID, name, value) })
	f.events.Append(e)

	return rec.VariantID, true
}

// report isolates reporter failures from the caller's control flow.
func (f *Framework) report(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Warn("event reporter failed", zap.Any("panic", r))
		}
	}()
	fn()
}

func optValue(value []float64) *float64 {
	if len(value) == 0 {
		return nil
	}
	v := value[0]
	return &v
}
