package response

import "strings"

const (
	speakOpen  = "<speak>"
	speakClose = "</speak>"
)

// normalizeSSML wraps speech text in exactly one speak envelope. Input that
// is already wrapped is unwrapped first, so repeated normalization is
// idempotent.
func normalizeSSML(text string) string {
	return speakOpen + TrimSpeech(text) + speakClose
}

// TrimSpeech strips surrounding whitespace and at most one speak envelope
// from speech text. Display surfaces use it to show spoken output without
// the SSML markup.
func TrimSpeech(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, speakOpen) && strings.HasSuffix(trimmed, speakClose) {
		inner := trimmed[len(speakOpen) : len(trimmed)-len(speakClose)]
		return strings.TrimSpace(inner)
	}
	return trimmed
}
