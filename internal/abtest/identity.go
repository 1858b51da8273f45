package abtest

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/splitpilot/splitpilot/internal/kvstore"
)

const visitorKey = "sp_visitor_id"

// SSRVisitorID is the fixed sentinel used when no persistent storage
// scope exists (server-rendered, non-interactive contexts). It buckets
// deterministically like any other id and never collides with a
// generated one.
const SSRVisitorID = "ssr-user"

// Identity yields the stable per-visitor identifier used for bucketing.
type Identity interface {
	VisitorID() string
}

// StaticIdentity is an identity already resolved by the caller,
// typically from a request cookie.
type StaticIdentity string

func (s StaticIdentity) VisitorID() string { return string(s) }

// ServerIdentity is the non-interactive identity: always the SSR
// sentinel, never persisted.
type ServerIdentity struct{}

func (ServerIdentity) VisitorID() string { return SSRVisitorID }

// StoredIdentity generates an identifier on first use and persists it
// in the given scope. Subsequent calls return the stored value
// unchanged, for the life of the scope.
type StoredIdentity struct {
	store kvstore.Store
	log   *zap.Logger
}

func NewStoredIdentity(store kvstore.Store, log *zap.Logger) *StoredIdentity {
	if log == nil {
		log = zap.NewNop()
	}
	return &StoredIdentity{store: store, log: log}
}

func (i *StoredIdentity) VisitorID() string {
	if v, err := i.store.Get(visitorKey); err == nil && v != "" {
		return v
	}

	id := NewVisitorID()
	if err := i.store.Set(visitorKey, id); err != nil {
		i.log.Warn("failed to persist visitor id", zap.Error(err))
	}
	return id
}

// NewVisitorID returns a fresh visitor identifier: a millisecond
// timestamp plus a random suffix, unique with overwhelming probability.
func NewVisitorID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("user_%d_%s", nowMillis(), suffix)
}
