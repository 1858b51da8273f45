// Package reporter provides the concrete event reporters the framework
// forwards assignment, event and conversion signals through. Every
// implementation is fire-and-forget: failures are logged and swallowed,
// never surfaced to the tracking caller.
package reporter

import (
	"go.uber.org/zap"

	"github.com/splitpilot/splitpilot/internal/abtest"
)

// Multi fans one signal out to several reporters.
type Multi []abtest.Reporter

func (m Multi) Assignment(testID, variantID string) {
	for _, r := range m {
		r.Assignment(testID, variantID)
	}
}

func (m Multi) Event(testID, variantID, name string, value *float64) {
	for _, r := range m {
		r.Event(testID, variantID, name, value)
	}
}

func (m Multi) Conversion(testID, variantID string, value *float64) {
	for _, r := range m {
		r.Conversion(testID, variantID, value)
	}
}

// Log writes every signal to a zap logger at debug level. Useful in
// development and as the reporter of last resort.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{log: log}
}

func (l *Log) Assignment(testID, variantID string) {
	l.log.Debug("assignment reported",
		zap.String("test", testID),
		zap.String("variant", variantID))
}

func (l *Log) Event(testID, variantID, name string, value *float64) {
	l.log.Debug("event reported",
		zap.String("test", testID),
		zap.String("variant", variantID),
		zap.String("event", name),
		zap.Float64p("value", value))
}

func (l *Log) Conversion(testID, variantID string, value *float64) {
	l.log.Debug("conversion reported",
		zap.String("test", testID),
		zap.String("variant", variantID),
		zap.Float64p("value", value))
}
