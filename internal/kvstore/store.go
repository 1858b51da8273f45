// Package kvstore provides the flat key-value scopes that back visitor
// assignment persistence. Each backend is a dumb string store; policy
// (dual-write, expiry, fallback) lives in the abtest package.
package kvstore

import "errors"

var ErrNotFound = errors.New("key not found")

// Store is a single persistent key-value scope.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Namespaced wraps a Store so that all keys are prefixed with a scope
// name. Two Namespaced views over the same backend with different
// scopes never see each other's keys.
type Namespaced struct {
	store Store
	scope string
}

func Namespace(s Store, scope string) *Namespaced {
	return &Namespaced{store: s, scope: scope}
}

func (n *Namespaced) key(key string) string {
	return n.scope + ":" + key
}

func (n *Namespaced) Get(key string) (string, error) {
	return n.store.Get(n.key(key))
}

func (n *Namespaced) Set(key, value string) error {
	return n.store.Set(n.key(key), value)
}

func (n *Namespaced) Delete(key string) error {
	return n.store.Delete(n.key(key))
}

// Close is a no-op: the underlying store is shared across scopes and
// owned by whoever opened it.
func (n *Namespaced) Close() error {
	return nil
}
