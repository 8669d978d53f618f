package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/tendril/pkg/model"
)

// InvokeOptions contains all the configuration for the invoke command.
type InvokeOptions struct {
	Path   string // envelope file; "-" or empty reads stdin
	Pretty bool
	In     io.Reader // defaults to os.Stdin
	Out    io.Writer // defaults to os.Stdout
}

// RunInvoke sends a single request envelope through the skill and writes the
// response envelope as JSON. It is the piping-friendly sibling of the dialog
// command.
func RunInvoke(invoker Invoker, opts InvokeOptions) error {
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	var (
		data []byte
		err  error
	)
	if opts.Path == "" || opts.Path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(opts.Path)
	}
	if err != nil {
		return fmt.Errorf("failed to read envelope: %w", err)
	}

	var envelope model.RequestEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to parse envelope: %w", err)
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	resp, err := invoker.Invoke(sigCtx, &envelope)
	if err != nil {
		return handleExecutionError(err)
	}

	enc := json.NewEncoder(out)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	return nil
}
