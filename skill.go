package tendril

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/tendril/pkg/attributes"
	"github.com/aretw0/tendril/pkg/dispatch"
	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/services"
)

// ErrSkillIDMismatch is returned when an envelope addresses a different
// application than the one the skill was built for. The envelope is
// rejected before any handler runs.
var ErrSkillIDMismatch = errors.New("skill id verification failed")

// Skill is the assembled entry point: one immutable configuration plus the
// dispatcher built from it. A Skill is safe for concurrent Invoke calls.
type Skill struct {
	config     *Configuration
	dispatcher *dispatch.Dispatcher
}

// New assembles a skill from a frozen configuration. Most callers go
// through NewBuilder instead and never touch Configuration directly.
func New(config *Configuration) *Skill {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	dispatcher := dispatch.NewDispatcher(
		dispatch.WithRequestMappers(config.RequestMappers...),
		dispatch.WithHandlerAdapters(config.HandlerAdapters...),
		dispatch.WithExceptionMapper(config.ExceptionMapper),
		dispatch.WithRequestInterceptors(config.RequestInterceptors...),
		dispatch.WithResponseInterceptors(config.ResponseInterceptors...),
		dispatch.WithLogger(logger),
	)
	return &Skill{config: config, dispatcher: dispatcher}
}

// Invoke runs one request envelope through the skill and produces the
// response envelope to send back.
//
// When a skill id is configured, the envelope's application id must match
// or the call fails with ErrSkillIDMismatch before any handler runs. The
// handler input is built fresh per call: an attributes manager seeded from
// the envelope's session, and a service client factory bound to the
// envelope's API endpoint when an API client is configured. Session
// attribute mutations made during the dispatch are folded into the
// returned envelope.
func (s *Skill) Invoke(ctx context.Context, envelope *model.RequestEnvelope) (*model.ResponseEnvelope, error) {
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	if s.config.SkillID != "" && envelope.ApplicationID() != s.config.SkillID {
		return nil, fmt.Errorf("%w: envelope is for application %q", ErrSkillIDMismatch, envelope.ApplicationID())
	}

	manager := attributes.NewManager(envelope, attributes.WithPersistenceAdapter(s.config.PersistenceAdapter))
	inputOpts := []dispatch.InputOption{dispatch.WithAttributesManager(manager)}
	if s.config.APIClient != nil {
		inputOpts = append(inputOpts,
			dispatch.WithAPIClient(s.config.APIClient),
			dispatch.WithServiceClientFactory(services.NewClientFactoryForEnvelope(s.config.APIClient, envelope)),
		)
	}
	input := dispatch.NewHandlerInput(envelope, inputOpts...)

	resp, err := s.dispatcher.Dispatch(ctx, input)
	if err != nil {
		return nil, err
	}

	out := &model.ResponseEnvelope{
		Version:  model.EnvelopeVersion,
		Response: resp,
	}
	if envelope.Session != nil {
		if attrs, err := manager.SessionAttributes(); err == nil {
			out.SessionAttributes = attrs
		}
	}
	return out, nil
}
