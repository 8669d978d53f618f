package model

// Directive type discriminators.
const (
	DirectiveTypeHint           = "Hint"
	DirectiveTypeVideoAppLaunch = "VideoApp.Launch"
	DirectiveTypeRenderTemplate = "Display.RenderTemplate"

	DirectiveTypeDialogDelegate      = "Dialog.Delegate"
	DirectiveTypeDialogElicitSlot    = "Dialog.ElicitSlot"
	DirectiveTypeDialogConfirmSlot   = "Dialog.ConfirmSlot"
	DirectiveTypeDialogConfirmIntent = "Dialog.ConfirmIntent"

	DirectiveTypeAudioPlayerPlay       = "AudioPlayer.Play"
	DirectiveTypeAudioPlayerStop       = "AudioPlayer.Stop"
	DirectiveTypeAudioPlayerClearQueue = "AudioPlayer.ClearQueue"
)

// AudioPlayer.Play behaviors.
const (
	PlayBehaviorReplaceAll      = "REPLACE_ALL"
	PlayBehaviorEnqueue         = "ENQUEUE"
	PlayBehaviorReplaceEnqueued = "REPLACE_ENQUEUED"
)

// AudioPlayer.ClearQueue behaviors.
const (
	ClearBehaviorClearAll      = "CLEAR_ALL"
	ClearBehaviorClearEnqueued = "CLEAR_ENQUEUED"
)

// Directive instructs the device to do something beyond speaking. Type
// selects the kind; the payload fields are populated per kind.
type Directive struct {
	Type string `json:"type"`

	Hint      *Hint      `json:"hint,omitempty"`
	VideoItem *VideoItem `json:"videoItem,omitempty"`
	Template  any        `json:"template,omitempty"`

	SlotToElicit  string  `json:"slotToElicit,omitempty"`
	SlotToConfirm string  `json:"slotToConfirm,omitempty"`
	UpdatedIntent *Intent `json:"updatedIntent,omitempty"`

	PlayBehavior  string     `json:"playBehavior,omitempty"`
	AudioItem     *AudioItem `json:"audioItem,omitempty"`
	ClearBehavior string     `json:"clearBehavior,omitempty"`
}

// Hint is the payload of a Hint directive.
type Hint struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// VideoItem is the payload of a VideoApp.Launch directive.
type VideoItem struct {
	Source   string         `json:"source"`
	Metadata *VideoMetadata `json:"metadata,omitempty"`
}

// VideoMetadata titles a video item on screen.
type VideoMetadata struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
}

// AudioItem is the payload of an AudioPlayer.Play directive.
type AudioItem struct {
	Stream *Stream `json:"stream,omitempty"`
}

// Stream describes one audio stream to play.
type Stream struct {
	URL                   string `json:"url"`
	Token                 string `json:"token"`
	ExpectedPreviousToken string `json:"expectedPreviousToken,omitempty"`
	OffsetInMilliseconds  int64  `json:"offsetInMilliseconds"`
}

// HasDirective reports whether the response carries a directive of the given
// type.
func (r *Response) HasDirective(directiveType string) bool {
	if r == nil {
		return false
	}
	for _, d := range r.Directives {
		if d.Type == directiveType {
			return true
		}
	}
	return false
}
