package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/response"
	"github.com/aretw0/tendril/pkg/simulate"
)

// Script is a scripted conversation, one YAML entry per turn. Scripts double
// as smoke tests: a turn may declare a substring the spoken response must
// contain, and the first mismatch aborts the replay with an error.
type Script struct {
	Locale string       `yaml:"locale,omitempty"`
	UserID string       `yaml:"user,omitempty"`
	Turns  []ScriptTurn `yaml:"turns"`
}

// ScriptTurn describes one request. Exactly one of Launch, Intent or End
// must be set; End carries the session-ended reason.
type ScriptTurn struct {
	Launch bool              `yaml:"launch,omitempty"`
	Intent string            `yaml:"intent,omitempty"`
	Slots  map[string]string `yaml:"slots,omitempty"`
	End    string            `yaml:"end,omitempty"`
	Expect string            `yaml:"expect,omitempty"`
}

// LoadScript reads and validates a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	if len(script.Turns) == 0 {
		return nil, fmt.Errorf("script has no turns")
	}
	for i, turn := range script.Turns {
		if err := turn.validate(); err != nil {
			return nil, fmt.Errorf("turn %d: %w", i+1, err)
		}
	}

	return &script, nil
}

func (t ScriptTurn) validate() error {
	set := 0
	if t.Launch {
		set++
	}
	if t.Intent != "" {
		set++
	}
	if t.End != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of launch, intent or end must be set")
	}
	if len(t.Slots) > 0 && t.Intent == "" {
		return fmt.Errorf("slots require an intent")
	}
	return nil
}

// envelope synthesizes the turn's request and a label for replay output.
func (t ScriptTurn) envelope(session *simulate.Session) (*model.RequestEnvelope, string) {
	switch {
	case t.Launch:
		return session.Launch(), "launch"
	case t.Intent != "":
		return session.Intent(t.Intent, t.Slots), t.Intent
	default:
		return session.SessionEnded(t.End), "end (" + t.End + ")"
	}
}

// RunScript replays a scripted conversation against the skill, writing each
// spoken response to out.
func RunScript(ctx context.Context, invoker Invoker, script *Script, out io.Writer) error {
	var sessionOpts []simulate.Option
	if script.Locale != "" {
		sessionOpts = append(sessionOpts, simulate.WithLocale(script.Locale))
	}
	if script.UserID != "" {
		sessionOpts = append(sessionOpts, simulate.WithUserID(script.UserID))
	}
	session := simulate.NewSession(sessionOpts...)

	for i, turn := range script.Turns {
		envelope, label := turn.envelope(session)

		resp, err := invoker.Invoke(ctx, envelope)
		if err != nil {
			return fmt.Errorf("turn %d (%s): %w", i+1, label, err)
		}

		speech := ""
		if resp != nil && resp.Response != nil {
			speech = response.TrimSpeech(resp.Response.SpeechText())
		}

		fmt.Fprintf(out, "[%d] %s\n", i+1, label)
		if speech != "" {
			fmt.Fprintf(out, "    %s\n", speech)
		}

		if turn.Expect != "" && !strings.Contains(speech, turn.Expect) {
			return fmt.Errorf("turn %d (%s): speech %q does not contain %q", i+1, label, speech, turn.Expect)
		}

		session.Record(resp)
	}

	return nil
}
