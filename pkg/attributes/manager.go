// Package attributes manages the three attribute scopes available to a
// handler during one dispatch: request attributes living for the single
// call, session attributes carried between turns of a session, and
// persistent attributes stored across sessions through a
// ports.PersistenceAdapter.
package attributes

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/ports"
)

// ErrNoSession is returned when session attributes are accessed for an
// out-of-session request.
var ErrNoSession = errors.New("request has no session")

// ErrNoPersistenceAdapter is returned when persistent attributes are
// accessed but no persistence adapter is configured.
var ErrNoPersistenceAdapter = errors.New("no persistence adapter configured")

// Manager holds the attribute state of one dispatch. It is created per
// incoming request and must not be shared across concurrent dispatches; the
// pipeline accesses it sequentially.
type Manager struct {
	envelope *model.RequestEnvelope
	adapter  ports.PersistenceAdapter

	request map[string]any

	session    map[string]any
	hasSession bool

	persistent       map[string]any
	persistentLoaded bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithPersistenceAdapter wires the adapter used for persistent attributes.
func WithPersistenceAdapter(adapter ports.PersistenceAdapter) Option {
	return func(m *Manager) {
		m.adapter = adapter
	}
}

// NewManager builds a manager for one request envelope. Session attributes
// are seeded from the envelope's session when one is present; the seed is
// copied so mutations never leak back into the envelope.
func NewManager(envelope *model.RequestEnvelope, opts ...Option) *Manager {
	m := &Manager{
		envelope: envelope,
		request:  make(map[string]any),
	}
	if envelope != nil && envelope.Session != nil {
		m.hasSession = true
		m.session = maps.Clone(envelope.Session.Attributes)
		if m.session == nil {
			m.session = make(map[string]any)
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RequestAttributes returns the live request-scoped map. It starts empty on
// every dispatch; mutations are visible to later pipeline steps of the same
// dispatch only.
func (m *Manager) RequestAttributes() map[string]any {
	return m.request
}

// SetRequestAttributes replaces the request-scoped map.
func (m *Manager) SetRequestAttributes(attributes map[string]any) {
	if attributes == nil {
		attributes = make(map[string]any)
	}
	m.request = attributes
}

// SessionAttributes returns the live session-scoped map. Mutations are
// folded into the response envelope when the dispatch completes. Fails with
// ErrNoSession for out-of-session requests.
func (m *Manager) SessionAttributes() (map[string]any, error) {
	if !m.hasSession {
		return nil, ErrNoSession
	}
	return m.session, nil
}

// SetSessionAttributes replaces the session-scoped map. Fails with
// ErrNoSession for out-of-session requests.
func (m *Manager) SetSessionAttributes(attributes map[string]any) error {
	if !m.hasSession {
		return ErrNoSession
	}
	if attributes == nil {
		attributes = make(map[string]any)
	}
	m.session = attributes
	return nil
}

// PersistentAttributes returns the live persistent-scoped map, loading it
// through the adapter on first access and caching it for the rest of the
// dispatch. A subject with nothing stored yet gets an empty map. Fails with
// ErrNoPersistenceAdapter when no adapter is configured.
func (m *Manager) PersistentAttributes(ctx context.Context) (map[string]any, error) {
	if m.adapter == nil {
		return nil, ErrNoPersistenceAdapter
	}
	if !m.persistentLoaded {
		attrs, found, err := m.adapter.GetAttributes(ctx, m.envelope)
		if err != nil {
			return nil, fmt.Errorf("loading persistent attributes: %w", err)
		}
		if !found || attrs == nil {
			attrs = make(map[string]any)
		}
		m.persistent = attrs
		m.persistentLoaded = true
	}
	return m.persistent, nil
}

// SetPersistentAttributes replaces the cached persistent map without
// touching the adapter; SavePersistentAttributes writes it out.
func (m *Manager) SetPersistentAttributes(attributes map[string]any) error {
	if m.adapter == nil {
		return ErrNoPersistenceAdapter
	}
	if attributes == nil {
		attributes = make(map[string]any)
	}
	m.persistent = attributes
	m.persistentLoaded = true
	return nil
}

// SavePersistentAttributes writes the cached persistent map through the
// adapter. A dispatch that never read or set persistent attributes has
// nothing to save; the call is then a no-op.
func (m *Manager) SavePersistentAttributes(ctx context.Context) error {
	if m.adapter == nil {
		return ErrNoPersistenceAdapter
	}
	if !m.persistentLoaded {
		return nil
	}
	if err := m.adapter.SaveAttributes(ctx, m.envelope, m.persistent); err != nil {
		return fmt.Errorf("saving persistent attributes: %w", err)
	}
	return nil
}

// DeletePersistentAttributes removes the subject's stored attributes and
// drops the cache, so a later read loads fresh state.
func (m *Manager) DeletePersistentAttributes(ctx context.Context) error {
	if m.adapter == nil {
		return ErrNoPersistenceAdapter
	}
	if err := m.adapter.DeleteAttributes(ctx, m.envelope); err != nil {
		return fmt.Errorf("deleting persistent attributes: %w", err)
	}
	m.persistent = nil
	m.persistentLoaded = false
	return nil
}

// Decode maps an attribute map onto a tagged struct. Field names follow
// json tags, and weak typing absorbs the numeric widening JSON-backed
// adapters introduce (ints stored as float64).
func Decode(src map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("building attribute decoder: %w", err)
	}
	if err := dec.Decode(src); err != nil {
		return fmt.Errorf("decoding attributes: %w", err)
	}
	return nil
}
