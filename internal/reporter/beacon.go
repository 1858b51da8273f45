package reporter

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Beacon posts signals to an external analytics endpoint, one JSON
// object per signal. Sends happen off the caller's goroutine and any
// failure is logged and dropped, the Go rendition of sendBeacon.
type Beacon struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

func NewBeacon(url string, log *zap.Logger) *Beacon {
	if log == nil {
		log = zap.NewNop()
	}
	return &Beacon{
		url:    url,
		client: &http.Client{Timeout: 2 * time.Second},
		log:    log,
	}
}

type beaconPayload struct {
	Type      string   `json:"type"`
	TestID    string   `json:"testId"`
	VariantID string   `json:"variantId"`
	EventName string   `json:"eventName,omitempty"`
	Value     *float64 `json:"value,omitempty"`
}

func (b *Beacon) Assignment(testID, variantID string) {
	b.send(beaconPayload{Type: "assignment", TestID: testID, VariantID: variantID})
}

func (b *Beacon) Event(testID, variantID, name string, value *float64) {
	b.send(beaconPayload{Type: "event", TestID: testID, VariantID: variantID, EventName: name, Value: value})
}

func (b *Beacon) Conversion(testID, variantID string, value *float64) {
	b.send(beaconPayload{Type: "conversion", TestID: testID, VariantID: variantID, Value: value})
}

func (b *Beacon) send(p beaconPayload) {
	raw, err := json.Marshal(p)
	if err != nil {
		b.log.Warn("failed to encode beacon", zap.Error(err))
		return
	}

	go func() {
		resp, err := b.client.Post(b.url, "application/json", bytes.NewReader(raw))
		if err != nil {
			b.log.Warn("beacon send failed", zap.String("url", b.url), zap.Error(err))
			return
		}
		resp.Body.Close()
	}()
}
