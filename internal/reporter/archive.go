package reporter

import (
	"context"

	"go.uber.org/zap"

	"github.com/splitpilot/splitpilot/internal/archive"
)

// Archive records every signal into the SQLite analytics archive. The
// visitor id is attached by the caller constructing the reporter for a
// session, since the abtest.Reporter contract does not carry it.
type Archive struct {
	store     *archive.Store
	visitorID string
	log       *zap.Logger
}

func NewArchive(store *archive.Store, visitorID string, log *zap.Logger) *Archive {
	if log == nil {
		log = zap.NewNop()
	}
	return &Archive{store: store, visitorID: visitorID, log: log}
}

func (a *Archive) Assignment(testID, variantID string) {
	a.record(testID, variantID, archive.EventAssignment, nil)
}

func (a *Archive) Event(testID, variantID, name string, value *float64) {
	a.record(testID, variantID, name, value)
}

func (a *Archive) Conversion(testID, variantID string, value *float64) {
	// The conversion event itself arrives through Event; this channel
	// only exists for consumers listening on it specifically, and the
	// archive dedup index collapses the duplicate anyway.
	a.record(testID, variantID, archive.EventConversion, value)
}

func (a *Archive) record(testID, variantID, name string, value *float64) {
	err := a.store.RecordEvent(context.Background(), testID, variantID, name, a.visitorID, value)
	if err != nil {
		a.log.Warn("failed to archive event",
			zap.String("test", testID),
			zap.String("event", name),
			zap.Error(err))
	}
}
