package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/pkg/dispatch"
	"github.com/aretw0/tendril/pkg/interceptors"
	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/aretw0/tendril/pkg/predicates"
)

// demoSkill assembles the skill every transport in this binary serves: a
// small memory keeper that stores one fact per user through whatever
// persistence adapter the command selected.
func demoSkill(adapter ports.PersistenceAdapter, logger *slog.Logger, modules ...tendril.Module) (*tendril.Skill, error) {
	launch := dispatch.NewHandler(predicates.RequestType(model.RequestTypeLaunch),
		func(_ context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			return input.ResponseBuilder().
				WithSpeech("Welcome to Tendril. Tell me something to remember, or ask me to recall it.").
				WithReprompt("Try: RememberIntent fact=\"the cake is a lie\".").
				Build(), nil
		})

	remember := dispatch.NewHandler(predicates.IntentName("RememberIntent"),
		func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			fact, ok := input.RequestEnvelope().SlotValue("fact")
			if !ok || fact == "" {
				return input.ResponseBuilder().
					WithSpeech("Tell me what to remember, like: RememberIntent fact=something.").
					WithReprompt("What should I remember?").
					Build(), nil
			}

			attrs, err := input.Attributes().PersistentAttributes(ctx)
			if err != nil {
				return nil, err
			}
			attrs["fact"] = fact
			if err := input.Attributes().SetPersistentAttributes(attrs); err != nil {
				return nil, err
			}
			if err := input.Attributes().SavePersistentAttributes(ctx); err != nil {
				return nil, err
			}

			return input.ResponseBuilder().
				WithSpeech("Got it. I will remember that.").
				Build(), nil
		})

	recall := dispatch.NewHandler(predicates.IntentName("RecallIntent"),
		func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			attrs, err := input.Attributes().PersistentAttributes(ctx)
			if err != nil {
				return nil, err
			}
			fact, ok := attrs["fact"].(string)
			if !ok || fact == "" {
				return input.ResponseBuilder().
					WithSpeech("You have not told me anything yet.").
					WithReprompt("Tell me something with RememberIntent.").
					Build(), nil
			}
			return input.ResponseBuilder().
				WithSpeech(fmt.Sprintf("You told me: %s.", fact)).
				Build(), nil
		})

	forget := dispatch.NewHandler(predicates.IntentName("ForgetIntent"),
		func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			if err := input.Attributes().DeletePersistentAttributes(ctx); err != nil {
				return nil, err
			}
			return input.ResponseBuilder().
				WithSpeech("Forgotten.").
				Build(), nil
		})

	help := dispatch.NewHandler(predicates.IntentName("HelpIntent"),
		func(_ context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			return input.ResponseBuilder().
				WithSpeech("I can remember one fact for you. Say RememberIntent with a fact slot, RecallIntent, or ForgetIntent.").
				WithSimpleCard("Tendril Demo",
					"RememberIntent fact=...\nRecallIntent\nForgetIntent\nStopIntent").
				Build(), nil
		})

	stop := dispatch.NewHandler(
		predicates.Or(predicates.IntentName("StopIntent"), predicates.IntentName("CancelIntent")),
		func(_ context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
			return input.ResponseBuilder().
				WithSpeech("Goodbye.").
				WithShouldEndSession(true).
				Build(), nil
		})

	sessionEnded := dispatch.NewHandler(predicates.RequestType(model.RequestTypeSessionEnded),
		func(_ context.Context, _ *dispatch.HandlerInput) (*model.Response, error) {
			return nil, nil
		})

	// Exception handlers are scanned in order, so the specific one for
	// unrouted requests comes before the catch-all.
	unknown := dispatch.NewExceptionHandler(
		func(_ *dispatch.HandlerInput, err error) bool { return errors.Is(err, dispatch.ErrNotHandled) },
		func(_ context.Context, input *dispatch.HandlerInput, _ error) (*model.Response, error) {
			return input.ResponseBuilder().
				WithSpeech("I do not know how to help with that. Say HelpIntent to hear what I can do.").
				Build(), nil
		})

	apology := dispatch.NewExceptionHandler(
		func(*dispatch.HandlerInput, error) bool { return true },
		func(_ context.Context, input *dispatch.HandlerInput, err error) (*model.Response, error) {
			logger.Error("handler failed", "err", err)
			return input.ResponseBuilder().
				WithSpeech("Something went wrong. Please try again.").
				Build(), nil
		})

	logging := interceptors.NewLogging(logger)

	return tendril.NewBuilder().
		AddRequestHandlers(launch, remember, recall, forget, help, stop, sessionEnded).
		AddExceptionHandlers(unknown, apology).
		AddRequestInterceptors(logging.Request()).
		AddResponseInterceptors(logging.Response()).
		WithPersistenceAdapter(adapter).
		WithLogger(logger).
		RegisterModules(modules...).
		Build()
}
