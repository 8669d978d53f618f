// Package simulate synthesizes request envelopes for driving a skill
// without the voice platform. It backs unit tests, the dialog REPL, and
// one-shot invocations.
package simulate

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/tendril/pkg/model"
)

// Session tracks continuity across synthesized turns. The first envelope is
// marked new; later ones reuse the session id and carry the attributes the
// skill folded into its previous response.
type Session struct {
	skillID   string
	userID    string
	deviceID  string
	sessionID string
	locale    string

	attributes map[string]any
	started    bool
}

// Option defines a functional option for configuring a Session.
type Option func(*Session)

// WithSkillID sets the application id stamped on envelopes, so skill id
// verification can be exercised.
func WithSkillID(id string) Option {
	return func(s *Session) {
		s.skillID = id
	}
}

// WithUserID pins the synthesized user id.
func WithUserID(id string) Option {
	return func(s *Session) {
		s.userID = id
	}
}

// WithDeviceID pins the synthesized device id.
func WithDeviceID(id string) Option {
	return func(s *Session) {
		s.deviceID = id
	}
}

// WithLocale sets the locale stamped on requests.
func WithLocale(locale string) Option {
	return func(s *Session) {
		s.locale = locale
	}
}

// NewSession creates a simulated session with generated ids.
func NewSession(opts ...Option) *Session {
	s := &Session{
		skillID:    "skill-simulated",
		userID:     "user-" + uuid.New().String(),
		deviceID:   "device-" + uuid.New().String(),
		sessionID:  "session-" + uuid.New().String(),
		locale:     "en-US",
		attributes: make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Launch synthesizes the session-opening launch request.
func (s *Session) Launch() *model.RequestEnvelope {
	return s.envelope(s.request(model.RequestTypeLaunch))
}

// Intent synthesizes an intent request. Slots may be nil.
func (s *Session) Intent(name string, slots map[string]string) *model.RequestEnvelope {
	req := s.request(model.RequestTypeIntent)
	req.Intent = &model.Intent{
		Name:               name,
		ConfirmationStatus: model.ConfirmationStatusNone,
	}
	if len(slots) > 0 {
		req.Intent.Slots = make(map[string]model.Slot, len(slots))
		for slot, value := range slots {
			req.Intent.Slots[slot] = model.Slot{Name: slot, Value: value}
		}
	}
	return s.envelope(req)
}

// SessionEnded synthesizes the closing request the platform sends when a
// session dies, with the given reason.
func (s *Session) SessionEnded(reason string) *model.RequestEnvelope {
	req := s.request(model.RequestTypeSessionEnded)
	req.Reason = reason
	return s.envelope(req)
}

// Record folds a response's session attributes into the next synthesized
// turn and reports whether the response closed the session.
func (s *Session) Record(resp *model.ResponseEnvelope) bool {
	if resp == nil {
		return false
	}
	if resp.SessionAttributes != nil {
		s.attributes = maps.Clone(resp.SessionAttributes)
	}
	return resp.Response.EndsSession()
}

// Reset starts a fresh session: new session id, cleared attributes, and the
// next envelope marked new again. Identity options are kept.
func (s *Session) Reset() {
	s.sessionID = "session-" + uuid.New().String()
	s.attributes = make(map[string]any)
	s.started = false
}

// SessionID returns the current session id.
func (s *Session) SessionID() string {
	return s.sessionID
}

func (s *Session) request(requestType string) *model.Request {
	return &model.Request{
		Type:      requestType,
		RequestID: "request-" + uuid.New().String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Locale:    s.locale,
	}
}

func (s *Session) envelope(req *model.Request) *model.RequestEnvelope {
	isNew := !s.started
	s.started = true

	application := &model.Application{ApplicationID: s.skillID}
	user := &model.User{UserID: s.userID}

	return &model.RequestEnvelope{
		Version: model.EnvelopeVersion,
		Session: &model.Session{
			New:         isNew,
			SessionID:   s.sessionID,
			Attributes:  maps.Clone(s.attributes),
			Application: application,
			User:        user,
		},
		Context: &model.Context{
			System: &model.System{
				Application: application,
				User:        user,
				Device:      &model.Device{DeviceID: s.deviceID},
			},
		},
		Request: req,
	}
}
