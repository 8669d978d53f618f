package model

import (
	"errors"
	"fmt"
)

// Request type discriminators.
const (
	RequestTypeLaunch       = "LaunchRequest"
	RequestTypeIntent       = "IntentRequest"
	RequestTypeSessionEnded = "SessionEndedRequest"

	RequestTypeAudioPlayerPlaybackStarted  = "AudioPlayer.PlaybackStarted"
	RequestTypeAudioPlayerPlaybackFinished = "AudioPlayer.PlaybackFinished"
	RequestTypeAudioPlayerPlaybackStopped  = "AudioPlayer.PlaybackStopped"
	RequestTypeAudioPlayerPlaybackFailed   = "AudioPlayer.PlaybackFailed"

	RequestTypeSystemExceptionEncountered = "System.ExceptionEncountered"
)

// Intent confirmation states.
const (
	ConfirmationStatusNone      = "NONE"
	ConfirmationStatusConfirmed = "CONFIRMED"
	ConfirmationStatusDenied    = "DENIED"
)

// ErrInvalidEnvelope is returned when a request envelope is structurally unusable.
var ErrInvalidEnvelope = errors.New("invalid request envelope")

// RequestEnvelope is the top-level inbound value for one skill invocation.
type RequestEnvelope struct {
	Version string   `json:"version"`
	Session *Session `json:"session,omitempty"`
	Context *Context `json:"context,omitempty"`
	Request *Request `json:"request"`
}

// Session describes the conversational session, absent for out-of-session
// requests such as audio player events.
type Session struct {
	New         bool           `json:"new"`
	SessionID   string         `json:"sessionId"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	Application *Application   `json:"application,omitempty"`
	User        *User          `json:"user,omitempty"`
}

// Context carries the ambient invocation state supplied by the platform.
type Context struct {
	System      *System           `json:"System,omitempty"`
	AudioPlayer *AudioPlayerState `json:"AudioPlayer,omitempty"`
}

// System identifies the skill, user, and device behind a request, plus the
// per-invocation API endpoint and access token for platform service calls.
type System struct {
	Application    *Application `json:"application,omitempty"`
	User           *User        `json:"user,omitempty"`
	Device         *Device      `json:"device,omitempty"`
	APIEndpoint    string       `json:"apiEndpoint,omitempty"`
	APIAccessToken string       `json:"apiAccessToken,omitempty"`
}

// Application identifies the skill the request was sent to.
type Application struct {
	ApplicationID string `json:"applicationId"`
}

// User identifies the platform account invoking the skill.
type User struct {
	UserID      string       `json:"userId"`
	AccessToken string       `json:"accessToken,omitempty"`
	Permissions *Permissions `json:"permissions,omitempty"`
}

// Permissions holds consent granted by the user.
type Permissions struct {
	ConsentToken string `json:"consentToken,omitempty"`
}

// Device identifies the device a request originated from.
type Device struct {
	DeviceID            string         `json:"deviceId"`
	SupportedInterfaces map[string]any `json:"supportedInterfaces,omitempty"`
}

// AudioPlayerState reports playback state for audio-capable devices.
type AudioPlayerState struct {
	Token                string `json:"token,omitempty"`
	OffsetInMilliseconds int64  `json:"offsetInMilliseconds,omitempty"`
	PlayerActivity       string `json:"playerActivity,omitempty"`
}

// Request is the discriminated request payload. Type selects the kind; the
// remaining fields are populated per kind (Intent for intent requests, Reason
// and Error for session-ended requests, Token and OffsetInMilliseconds for
// audio player events).
type Request struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp,omitempty"`
	Locale    string `json:"locale,omitempty"`

	Intent      *Intent `json:"intent,omitempty"`
	DialogState string  `json:"dialogState,omitempty"`

	Reason string        `json:"reason,omitempty"`
	Error  *RequestError `json:"error,omitempty"`

	Token                string `json:"token,omitempty"`
	OffsetInMilliseconds int64  `json:"offsetInMilliseconds,omitempty"`
}

// RequestError details a platform-reported failure on session-ended and
// exception-encountered requests.
type RequestError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

// Intent is the resolved user intention of an intent request.
type Intent struct {
	Name               string          `json:"name"`
	ConfirmationStatus string          `json:"confirmationStatus,omitempty"`
	Slots              map[string]Slot `json:"slots,omitempty"`
}

// Slot is one filled (or unfilled) argument of an intent.
type Slot struct {
	Name               string       `json:"name"`
	Value              string       `json:"value,omitempty"`
	ConfirmationStatus string       `json:"confirmationStatus,omitempty"`
	Resolutions        *Resolutions `json:"resolutions,omitempty"`
}

// Resolutions carries entity-resolution results for a slot.
type Resolutions struct {
	ResolutionsPerAuthority []Resolution `json:"resolutionsPerAuthority,omitempty"`
}

// Resolution is one authority's match attempt for a slot value.
type Resolution struct {
	Authority string            `json:"authority,omitempty"`
	Status    *ResolutionStatus `json:"status,omitempty"`
	Values    []ResolutionValue `json:"values,omitempty"`
}

// ResolutionStatus reports whether an authority matched the slot value.
type ResolutionStatus struct {
	Code string `json:"code,omitempty"`
}

// ResolutionValue is one resolved entity.
type ResolutionValue struct {
	Value *ResolvedEntity `json:"value,omitempty"`
}

// ResolvedEntity is the canonical name and id an authority resolved to.
type ResolvedEntity struct {
	Name string `json:"name,omitempty"`
	ID   string `json:"id,omitempty"`
}

// RequestType returns the request's type discriminator, or "" when the
// envelope carries no request.
func (e *RequestEnvelope) RequestType() string {
	if e == nil || e.Request == nil {
		return ""
	}
	return e.Request.Type
}

// IntentName returns the intent name for intent requests and "" otherwise.
func (e *RequestEnvelope) IntentName() string {
	if e.RequestType() != RequestTypeIntent || e.Request.Intent == nil {
		return ""
	}
	return e.Request.Intent.Name
}

// SlotValue returns the value of the named slot on an intent request, with
// ok reporting whether the slot exists.
func (e *RequestEnvelope) SlotValue(name string) (string, bool) {
	if e.RequestType() != RequestTypeIntent || e.Request.Intent == nil {
		return "", false
	}
	slot, ok := e.Request.Intent.Slots[name]
	if !ok {
		return "", false
	}
	return slot.Value, true
}

// ApplicationID returns the skill id the platform addressed, preferring the
// system context over the session.
func (e *RequestEnvelope) ApplicationID() string {
	if e == nil {
		return ""
	}
	if e.Context != nil && e.Context.System != nil && e.Context.System.Application != nil {
		return e.Context.System.Application.ApplicationID
	}
	if e.Session != nil && e.Session.Application != nil {
		return e.Session.Application.ApplicationID
	}
	return ""
}

// UserID returns the invoking user's id, preferring the system context.
func (e *RequestEnvelope) UserID() string {
	if e == nil {
		return ""
	}
	if e.Context != nil && e.Context.System != nil && e.Context.System.User != nil {
		return e.Context.System.User.UserID
	}
	if e.Session != nil && e.Session.User != nil {
		return e.Session.User.UserID
	}
	return ""
}

// DeviceID returns the originating device id, or "".
func (e *RequestEnvelope) DeviceID() string {
	if e == nil || e.Context == nil || e.Context.System == nil || e.Context.System.Device == nil {
		return ""
	}
	return e.Context.System.Device.DeviceID
}

// APIEndpoint returns the per-invocation platform API endpoint, or "".
func (e *RequestEnvelope) APIEndpoint() string {
	if e == nil || e.Context == nil || e.Context.System == nil {
		return ""
	}
	return e.Context.System.APIEndpoint
}

// APIAccessToken returns the per-invocation platform API token, or "".
func (e *RequestEnvelope) APIAccessToken() string {
	if e == nil || e.Context == nil || e.Context.System == nil {
		return ""
	}
	return e.Context.System.APIAccessToken
}

// Validate checks the envelope is structurally usable for dispatch.
func (e *RequestEnvelope) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: envelope is nil", ErrInvalidEnvelope)
	}
	if e.Request == nil {
		return fmt.Errorf("%w: missing request", ErrInvalidEnvelope)
	}
	if e.Request.Type == "" {
		return fmt.Errorf("%w: missing request type", ErrInvalidEnvelope)
	}
	return nil
}
