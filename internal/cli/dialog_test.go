package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/pkg/dispatch"
	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/predicates"
)

// dialogSkill builds a small skill covering what the command front ends
// exercise: a launch greeting, a greet intent with a slot, a session counter
// and a stop intent that closes the session.
func dialogSkill(t *testing.T) *tendril.Skill {
	t.Helper()

	launch := dispatch.NewHandler(predicates.RequestType(model.RequestTypeLaunch),
		func(_ context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			return input.ResponseBuilder().
				WithSpeech("Welcome to the echo chamber.").
				Build(), nil
		})

	greet := dispatch.NewHandler(predicates.IntentName("GreetIntent"),
		func(_ context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			name, _ := input.RequestEnvelope().SlotValue("name")
			if name == "" {
				name = "stranger"
			}
			return input.ResponseBuilder().
				WithSpeech("Hello, " + name + ".").
				WithSimpleCard("Greetings", "Said hello to "+name+".").
				Build(), nil
		})

	count := dispatch.NewHandler(predicates.IntentName("CountIntent"),
		func(_ context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			attrs, err := input.Attributes().SessionAttributes()
			if err != nil {
				return nil, err
			}
			n, _ := attrs["count"].(int)
			n++
			attrs["count"] = n
			if err := input.Attributes().SetSessionAttributes(attrs); err != nil {
				return nil, err
			}
			return input.ResponseBuilder().
				WithSpeech(fmt.Sprintf("Count is %d.", n)).
				Build(), nil
		})

	stop := dispatch.NewHandler(predicates.IntentName("StopIntent"),
		func(_ context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			return input.ResponseBuilder().
				WithSpeech("Bye.").
				WithShouldEndSession(true).
				Build(), nil
		})

	ended := dispatch.NewHandler(predicates.RequestType(model.RequestTypeSessionEnded),
		func(_ context.Context, _ *dispatch.HandlerInput) (*model.Response, error) {
			return nil, nil
		})

	skill, err := tendril.NewBuilder().
		AddRequestHandlers(launch, greet, count, stop, ended).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return skill
}

func runDialogWithInput(t *testing.T, input string) string {
	t.Helper()

	var out bytes.Buffer
	err := RunDialog(dialogSkill(t), DialogOptions{
		In:  strings.NewReader(input),
		Out: &out,
	})
	if err != nil {
		t.Fatalf("RunDialog() error = %v", err)
	}
	return out.String()
}

func TestRunDialog_GreetsAndQuits(t *testing.T) {
	out := runDialogWithInput(t, "GreetIntent name=Ada\nquit\n")

	for _, want := range []string{
		"Welcome to the echo chamber.",
		"Hello, Ada.",
		">>> Goodbye.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunDialog_UnhandledIntent(t *testing.T) {
	out := runDialogWithInput(t, "MysteryIntent\nq\n")

	if !strings.Contains(out, "could not handle 'MysteryIntent'") {
		t.Errorf("output missing unhandled notice:\n%s", out)
	}
}

func TestRunDialog_SkillEndsSession(t *testing.T) {
	out := runDialogWithInput(t, "StopIntent\nGreetIntent\nq\n")

	for _, want := range []string{
		"Bye.",
		">>> Session ended.",
		// The turn after the skill closed the session runs in a fresh one.
		"Hello, stranger.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunDialog_ResetCommand(t *testing.T) {
	out := runDialogWithInput(t, "CountIntent\n/reset\nCountIntent\nq\n")

	if !strings.Contains(out, ">>> Session cleared.") {
		t.Errorf("output missing reset notice:\n%s", out)
	}
	// The counter lives in session attributes, so the reset restarts it.
	if strings.Contains(out, "Count is 2.") {
		t.Errorf("counter survived the reset:\n%s", out)
	}
}

func TestRunDialog_BadSlotSyntax(t *testing.T) {
	out := runDialogWithInput(t, "GreetIntent name\nq\n")

	if !strings.Contains(out, "slot 'name' must be key=value") {
		t.Errorf("output missing slot syntax notice:\n%s", out)
	}
}

func TestParseUtterance(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantName  string
		wantSlots map[string]string
		wantErr   bool
	}{
		{name: "bare intent", line: "HelloIntent", wantName: "HelloIntent"},
		{
			name:      "intent with slots",
			line:      "GreetIntent name=Ada mood=happy",
			wantName:  "GreetIntent",
			wantSlots: map[string]string{"name": "Ada", "mood": "happy"},
		},
		{
			name:      "quoted slot value",
			line:      `RememberIntent item="buy milk"`,
			wantName:  "RememberIntent",
			wantSlots: map[string]string{"item": "buy milk"},
		},
		{name: "empty line", line: "", wantErr: true},
		{name: "slot before intent", line: "name=Ada", wantErr: true},
		{name: "slot without value", line: "GreetIntent name", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, slots, err := parseUtterance(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseUtterance(%q) expected error", tt.line)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseUtterance(%q) error = %v", tt.line, err)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if len(slots) != len(tt.wantSlots) {
				t.Fatalf("slots = %v, want %v", slots, tt.wantSlots)
			}
			for key, want := range tt.wantSlots {
				if slots[key] != want {
					t.Errorf("slot %q = %q, want %q", key, slots[key], want)
				}
			}
		})
	}
}
