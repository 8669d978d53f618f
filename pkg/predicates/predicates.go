// Package predicates provides composable CanHandle predicates for request
// handlers. Each constructor returns a Predicate closed over its match
// criteria, and And, Or, and Not combine them.
package predicates

import (
	"reflect"

	"github.com/aretw0/tendril/pkg/dispatch"
)

// Predicate decides whether a handler claims an input. Predicates must be
// side-effect-free; the dispatcher probes them for requests the handler may
// never receive.
type Predicate func(input *dispatch.HandlerInput) bool

// RequestType matches requests of the given type discriminator.
func RequestType(requestType string) Predicate {
	return func(input *dispatch.HandlerInput) bool {
		return input.RequestEnvelope().RequestType() == requestType
	}
}

// IntentName matches intent requests carrying the given intent.
func IntentName(name string) Predicate {
	return func(input *dispatch.HandlerInput) bool {
		return input.RequestEnvelope().IntentName() == name && name != ""
	}
}

// SlotValue matches intent requests where the named slot is filled with the
// given value.
func SlotValue(slot, value string) Predicate {
	return func(input *dispatch.HandlerInput) bool {
		got, ok := input.RequestEnvelope().SlotValue(slot)
		return ok && got == value
	}
}

// NewSession matches the first request of a session.
func NewSession() Predicate {
	return func(input *dispatch.HandlerInput) bool {
		session := input.RequestEnvelope().Session
		return session != nil && session.New
	}
}

// SessionAttribute matches when the session attribute under key deep-equals
// value. Out-of-session requests never match.
func SessionAttribute(key string, value any) Predicate {
	return func(input *dispatch.HandlerInput) bool {
		attrs, err := input.Attributes().SessionAttributes()
		if err != nil {
			return false
		}
		got, ok := attrs[key]
		return ok && reflect.DeepEqual(got, value)
	}
}

// And matches when every predicate matches. With no predicates it always
// matches.
func And(predicates ...Predicate) Predicate {
	return func(input *dispatch.HandlerInput) bool {
		for _, p := range predicates {
			if !p(input) {
				return false
			}
		}
		return true
	}
}

// Or matches when at least one predicate matches.
func Or(predicates ...Predicate) Predicate {
	return func(input *dispatch.HandlerInput) bool {
		for _, p := range predicates {
			if p(input) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(predicate Predicate) Predicate {
	return func(input *dispatch.HandlerInput) bool {
		return !predicate(input)
	}
}
