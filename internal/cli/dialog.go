package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"golang.org/x/term"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/internal/presentation/tui"
	"github.com/aretw0/tendril/pkg/dispatch"
	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/response"
	"github.com/aretw0/tendril/pkg/simulate"
)

// DialogOptions contains all the configuration for the dialog command.
type DialogOptions struct {
	Locale string
	UserID string // pins the simulated user so persisted attributes survive restarts
	Debug  bool
	Quiet  bool
	In     io.Reader // defaults to os.Stdin
	Out    io.Writer // defaults to os.Stdout
}

// RunDialog drives an interactive conversation with the skill from the
// terminal. Each line is an intent name followed by optional key=value
// slots; the loop opens with a launch request and notifies the skill when
// the session ends.
func RunDialog(invoker Invoker, opts DialogOptions) error {
	logger := createLogger(opts.Debug)

	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}

	if interactive && !opts.Quiet {
		tui.PrintBanner(tendril.Version)
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	var sessionOpts []simulate.Option
	if opts.Locale != "" {
		sessionOpts = append(sessionOpts, simulate.WithLocale(opts.Locale))
	}
	if opts.UserID != "" {
		sessionOpts = append(sessionOpts, simulate.WithUserID(opts.UserID))
	}
	session := simulate.NewSession(sessionOpts...)

	render := tui.NewRenderer()

	logger.Info("dialog started", "session_id", session.SessionID())

	// Open the conversation the way the platform would.
	if ended, err := runTurn(sigCtx, invoker, session, session.Launch(), render, out, logger); err != nil {
		if isInterrupted(err) {
			printFarewell(out, sigCtx.Signal(), opts.Quiet)
			return nil
		}
		var dispatchErr *dispatch.DispatchError
		if !errors.As(err, &dispatchErr) {
			return err
		}
		if !opts.Quiet {
			printSystemMessage(out, "No launch handler registered. Type an intent name to begin.")
		}
	} else if ended {
		printFarewell(out, sigCtx.Signal(), opts.Quiet)
		return nil
	}

	scanner := bufio.NewScanner(NewInterruptibleReader(in, sigCtx.Done()))

	for {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "q" || line == "quit" || line == "exit" {
			break
		}
		if line == "/reset" {
			endSession(invoker, session, logger)
			session.Reset()
			if !opts.Quiet {
				printSystemMessage(out, "Session cleared.")
			}
			continue
		}

		name, slots, err := parseUtterance(line)
		if err != nil {
			printSystemMessage(out, "%v", err)
			continue
		}

		ended, err := runTurn(sigCtx, invoker, session, session.Intent(name, slots), render, out, logger)
		if err != nil {
			if isInterrupted(err) {
				break
			}
			var dispatchErr *dispatch.DispatchError
			if errors.As(err, &dispatchErr) && errors.Is(err, dispatch.ErrNotHandled) {
				printSystemMessage(out, "The skill could not handle '%s'.", name)
				continue
			}
			logger.Error("turn failed", "intent", name, "err", err)
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		if ended {
			session.Reset()
			if !opts.Quiet {
				printSystemMessage(out, "Session ended. The next message starts a new one.")
			}
		}
	}

	if err := scanner.Err(); err != nil && !isInterrupted(err) {
		return err
	}

	endSession(invoker, session, logger)
	printFarewell(out, sigCtx.Signal(), opts.Quiet)
	return nil
}

// runTurn sends one envelope through the skill and renders the response.
// It reports whether the response closed the session.
func runTurn(ctx context.Context, invoker Invoker, session *simulate.Session, envelope *model.RequestEnvelope, render func(string) (string, error), out io.Writer, logger *slog.Logger) (bool, error) {
	resp, err := invoker.Invoke(ctx, envelope)
	if err != nil {
		return false, err
	}

	logger.Debug("turn handled", "request_type", envelope.Request.Type, "session_id", session.SessionID())

	printResponse(out, resp, render)
	return session.Record(resp), nil
}

// printResponse writes the spoken and visual parts of a response. Card text
// is markdown by convention, so it goes through the renderer.
func printResponse(out io.Writer, resp *model.ResponseEnvelope, render func(string) (string, error)) {
	if resp == nil || resp.Response == nil {
		return
	}
	r := resp.Response

	if speech := response.TrimSpeech(r.SpeechText()); speech != "" {
		fmt.Fprintln(out, speech)
	}

	if r.Card != nil {
		body := r.Card.Text
		if body == "" {
			body = r.Card.Content
		}
		md := fmt.Sprintf("# %s\n\n%s", r.Card.Title, body)
		if rendered, err := render(md); err == nil {
			fmt.Fprint(out, rendered)
		} else {
			fmt.Fprintln(out, md)
		}
	}

	if r.Reprompt != nil && r.Reprompt.OutputSpeech != nil {
		reprompt := r.Reprompt.OutputSpeech.Text
		if reprompt == "" {
			reprompt = r.Reprompt.OutputSpeech.SSML
		}
		if reprompt = response.TrimSpeech(reprompt); reprompt != "" {
			fmt.Fprintf(out, "(%s)\n", reprompt)
		}
	}
}

// endSession tells the skill the session is over. The signal context may
// already be cancelled at this point, so delivery uses a fresh one; failures
// only get logged because the conversation is finished either way.
func endSession(invoker Invoker, session *simulate.Session, logger *slog.Logger) {
	envelope := session.SessionEnded("USER_INITIATED")
	if _, err := invoker.Invoke(context.Background(), envelope); err != nil {
		var dispatchErr *dispatch.DispatchError
		if !errors.As(err, &dispatchErr) {
			logger.Warn("session ended delivery failed", "err", err)
		}
	}
}

// parseUtterance splits "IntentName slot=value ..." into an intent name and
// slot map. Values may be double-quoted to carry spaces.
func parseUtterance(line string) (string, map[string]string, error) {
	fields := splitQuoted(line)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("empty utterance")
	}

	name := fields[0]
	if strings.Contains(name, "=") {
		return "", nil, fmt.Errorf("first word must be an intent name, got '%s'", name)
	}

	var slots map[string]string
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return "", nil, fmt.Errorf("slot '%s' must be key=value", field)
		}
		if slots == nil {
			slots = make(map[string]string)
		}
		slots[key] = value
	}

	return name, slots, nil
}

// splitQuoted behaves like strings.Fields but keeps double-quoted spans in
// one token, so item="buy milk" survives as a single slot.
func splitQuoted(line string) []string {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
		pending bool
	)

	flush := func() {
		if pending || current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
			pending = false
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}
