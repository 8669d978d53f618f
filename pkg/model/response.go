package model

// EnvelopeVersion is the wire schema version stamped on every response.
const EnvelopeVersion = "1.0"

// Output speech formats.
const (
	SpeechTypeSSML      = "SSML"
	SpeechTypePlainText = "PlainText"
)

// Card type discriminators.
const (
	CardTypeSimple                   = "Simple"
	CardTypeStandard                 = "Standard"
	CardTypeLinkAccount              = "LinkAccount"
	CardTypeAskForPermissionsConsent = "AskForPermissionsConsent"
)

// ResponseEnvelope is the top-level outbound value for one skill invocation.
type ResponseEnvelope struct {
	Version           string         `json:"version"`
	SessionAttributes map[string]any `json:"sessionAttributes,omitempty"`
	Response          *Response      `json:"response,omitempty"`
}

// Response is what a handler says back: speech, an optional card, an
// optional reprompt, directives, and the session lifecycle flag.
//
// ShouldEndSession is a tri-state: nil leaves the decision to the platform,
// which matters for directives that keep the session open on their own.
type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Card             *Card         `json:"card,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	Directives       []Directive   `json:"directives,omitempty"`
	ShouldEndSession *bool         `json:"shouldEndSession,omitempty"`
}

// OutputSpeech is rendered speech, either SSML or plain text per Type.
type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	SSML string `json:"ssml,omitempty"`
}

// Reprompt is spoken when the user stays silent after a question.
type Reprompt struct {
	OutputSpeech *OutputSpeech `json:"outputSpeech,omitempty"`
}

// Card is the visual companion shown in the platform app. Type selects the
// kind; Content is used by simple cards, Text and Image by standard cards,
// Permissions by consent cards.
type Card struct {
	Type        string   `json:"type"`
	Title       string   `json:"title,omitempty"`
	Content     string   `json:"content,omitempty"`
	Text        string   `json:"text,omitempty"`
	Image       *Image   `json:"image,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Image points at the small and large renditions of a card image.
type Image struct {
	SmallImageURL string `json:"smallImageUrl,omitempty"`
	LargeImageURL string `json:"largeImageUrl,omitempty"`
}

// EndsSession reports the ShouldEndSession flag with nil treated as false.
func (r *Response) EndsSession() bool {
	return r != nil && r.ShouldEndSession != nil && *r.ShouldEndSession
}

// SpeechText returns the response's speech payload regardless of format,
// or "" when no speech is set.
func (r *Response) SpeechText() string {
	if r == nil || r.OutputSpeech == nil {
		return ""
	}
	if r.OutputSpeech.Type == SpeechTypeSSML {
		return r.OutputSpeech.SSML
	}
	return r.OutputSpeech.Text
}
