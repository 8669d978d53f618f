// Package response provides a fluent builder for constructing skill
// responses against the platform wire schema.
//
// Speech text is normalized into SSML: the builder wraps text in a speak
// envelope and strips one that is already present, so handlers can pass raw
// text or pre-built SSML interchangeably. The builder also guards the
// session lifecycle flag around the video launch directive, which keeps the
// session open on its own terms: once that directive is added, reprompts and
// explicit end-session calls leave the flag unset.
package response

import "github.com/aretw0/tendril/pkg/model"

// Builder accumulates the parts of a response and assembles them on Build.
// The zero value is ready to use; a fresh builder yields an empty response
// with the session flag unset.
type Builder struct {
	speech     *model.OutputSpeech
	card       *model.Card
	reprompt   *model.Reprompt
	directives []model.Directive
	endSession *bool
}

// NewBuilder returns an empty response builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithSpeech sets the spoken output, normalized into a single SSML speak
// envelope. Later calls replace earlier speech.
func (b *Builder) WithSpeech(text string) *Builder {
	b.speech = &model.OutputSpeech{
		Type: model.SpeechTypeSSML,
		SSML: normalizeSSML(text),
	}
	return b
}

// WithReprompt sets the speech spoken when the user stays silent, normalized
// the same way as WithSpeech. Unless a video launch directive is present,
// this also marks the session to stay open.
func (b *Builder) WithReprompt(text string) *Builder {
	b.reprompt = &model.Reprompt{
		OutputSpeech: &model.OutputSpeech{
			Type: model.SpeechTypeSSML,
			SSML: normalizeSSML(text),
		},
	}
	if !b.hasVideoAppLaunchDirective() {
		end := false
		b.endSession = &end
	}
	return b
}

// WithShouldEndSession sets the session lifecycle flag. Ignored when a video
// launch directive is present, since that directive owns the session
// lifecycle.
func (b *Builder) WithShouldEndSession(end bool) *Builder {
	if !b.hasVideoAppLaunchDirective() {
		v := end
		b.endSession = &v
	}
	return b
}

// WithSimpleCard sets a simple card with a title and text content.
func (b *Builder) WithSimpleCard(title, content string) *Builder {
	b.card = &model.Card{
		Type:    model.CardTypeSimple,
		Title:   title,
		Content: content,
	}
	return b
}

// WithStandardCard sets a standard card with a title, text, and image.
func (b *Builder) WithStandardCard(title, text string, image *model.Image) *Builder {
	b.card = &model.Card{
		Type:  model.CardTypeStandard,
		Title: title,
		Text:  text,
		Image: image,
	}
	return b
}

// WithLinkAccountCard sets a card prompting the user to link their account.
func (b *Builder) WithLinkAccountCard() *Builder {
	b.card = &model.Card{Type: model.CardTypeLinkAccount}
	return b
}

// WithAskForPermissionsConsentCard sets a card asking the user to grant the
// listed permissions.
func (b *Builder) WithAskForPermissionsConsentCard(permissions []string) *Builder {
	b.card = &model.Card{
		Type:        model.CardTypeAskForPermissionsConsent,
		Permissions: permissions,
	}
	return b
}

// AddHintDirective adds a hint shown on screen-capable devices.
func (b *Builder) AddHintDirective(text string) *Builder {
	return b.AddDirective(model.Directive{
		Type: model.DirectiveTypeHint,
		Hint: &model.Hint{Type: model.SpeechTypePlainText, Text: text},
	})
}

// AddVideoAppLaunchDirective adds a directive playing the video at source
// and clears the session lifecycle flag, since video playback keeps the
// session open on its own.
func (b *Builder) AddVideoAppLaunchDirective(source, title, subtitle string) *Builder {
	b.endSession = nil
	return b.AddDirective(model.Directive{
		Type: model.DirectiveTypeVideoAppLaunch,
		VideoItem: &model.VideoItem{
			Source:   source,
			Metadata: &model.VideoMetadata{Title: title, Subtitle: subtitle},
		},
	})
}

// AddRenderTemplateDirective adds a display template directive.
func (b *Builder) AddRenderTemplateDirective(template any) *Builder {
	return b.AddDirective(model.Directive{
		Type:     model.DirectiveTypeRenderTemplate,
		Template: template,
	})
}

// AddDelegateDirective hands the dialog back to the platform's dialog
// model, optionally with an updated intent.
func (b *Builder) AddDelegateDirective(updatedIntent *model.Intent) *Builder {
	return b.AddDirective(model.Directive{
		Type:          model.DirectiveTypeDialogDelegate,
		UpdatedIntent: updatedIntent,
	})
}

// AddElicitSlotDirective asks the user to fill the named slot.
func (b *Builder) AddElicitSlotDirective(slotName string, updatedIntent *model.Intent) *Builder {
	return b.AddDirective(model.Directive{
		Type:          model.DirectiveTypeDialogElicitSlot,
		SlotToElicit:  slotName,
		UpdatedIntent: updatedIntent,
	})
}

// AddConfirmSlotDirective asks the user to confirm the named slot's value.
func (b *Builder) AddConfirmSlotDirective(slotName string, updatedIntent *model.Intent) *Builder {
	return b.AddDirective(model.Directive{
		Type:          model.DirectiveTypeDialogConfirmSlot,
		SlotToConfirm: slotName,
		UpdatedIntent: updatedIntent,
	})
}

// AddConfirmIntentDirective asks the user to confirm the whole intent.
func (b *Builder) AddConfirmIntentDirective(updatedIntent *model.Intent) *Builder {
	return b.AddDirective(model.Directive{
		Type:          model.DirectiveTypeDialogConfirmIntent,
		UpdatedIntent: updatedIntent,
	})
}

// AddAudioPlayerPlayDirective adds a directive to play an audio stream.
func (b *Builder) AddAudioPlayerPlayDirective(playBehavior string, offsetInMilliseconds int64, expectedPreviousToken, token, url string) *Builder {
	return b.AddDirective(model.Directive{
		Type:         model.DirectiveTypeAudioPlayerPlay,
		PlayBehavior: playBehavior,
		AudioItem: &model.AudioItem{
			Stream: &model.Stream{
				URL:                   url,
				Token:                 token,
				ExpectedPreviousToken: expectedPreviousToken,
				OffsetInMilliseconds:  offsetInMilliseconds,
			},
		},
	})
}

// AddAudioPlayerStopDirective adds a directive stopping audio playback.
func (b *Builder) AddAudioPlayerStopDirective() *Builder {
	return b.AddDirective(model.Directive{Type: model.DirectiveTypeAudioPlayerStop})
}

// AddAudioPlayerClearQueueDirective adds a directive clearing the playback
// queue with the given behavior.
func (b *Builder) AddAudioPlayerClearQueueDirective(clearBehavior string) *Builder {
	return b.AddDirective(model.Directive{
		Type:          model.DirectiveTypeAudioPlayerClearQueue,
		ClearBehavior: clearBehavior,
	})
}

// AddDirective appends an arbitrary directive.
func (b *Builder) AddDirective(directive model.Directive) *Builder {
	b.directives = append(b.directives, directive)
	return b
}

// Build assembles the accumulated parts into a response. The builder stays
// usable afterwards; directives are copied so later additions do not leak
// into built responses.
func (b *Builder) Build() *model.Response {
	resp := &model.Response{
		OutputSpeech:     b.speech,
		Card:             b.card,
		Reprompt:         b.reprompt,
		ShouldEndSession: b.endSession,
	}
	if len(b.directives) > 0 {
		resp.Directives = append([]model.Directive(nil), b.directives...)
	}
	return resp
}

func (b *Builder) hasVideoAppLaunchDirective() bool {
	for _, d := range b.directives {
		if d.Type == model.DirectiveTypeVideoAppLaunch {
			return true
		}
	}
	return false
}
