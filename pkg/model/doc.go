// Package model defines the request and response envelope types exchanged
// with the voice platform.
//
// The types mirror the platform wire schema with plain struct tags; there is
// no custom marshaling. A RequestEnvelope arrives with exactly one Request
// whose Type field discriminates the request kind (launch, intent, session
// ended, audio player events). A ResponseEnvelope carries the optional
// Response a handler produced plus the session attributes to carry forward.
//
// Pointer fields model wire-level absence: a nil Session means an
// out-of-session request, a nil ShouldEndSession means the flag is unset and
// the platform applies its own default.
package model
