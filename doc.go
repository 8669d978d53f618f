/*
Package tendril is a request-dispatch SDK for building voice-assistant
skill backends: it receives a structured request envelope, routes it
through an ordered chain of candidate handlers, lets exactly one matching
handler produce a response, and recovers from failures through an ordered
chain of exception handlers.

# Concept

Tendril treats a skill as a set of small capabilities. Each request handler
answers two questions, "can I handle this?" and "handle it", as separate
calls. The dispatcher probes the predicates in registration order, commits
to the first match, runs interceptors around the invocation, and folds the
handler's output into a response envelope. Everything a handler needs for
one turn travels in a single HandlerInput: the envelope, an attribute
manager over request, session, and persistent scopes, a response builder,
and clients for platform services.

# Key Features

  - Deterministic Routing: registration order is the only priority; given
    the same registrations and request, the same handler always wins.
  - Hexagonal Architecture: persistence and platform services are ports;
    bring any adapter, decorate it with middleware, test it against the
    shipped contract suite.
  - Layered Recovery: failures, including panics inside handlers, flow
    through an exception-handler chain before they ever reach the caller.
  - Local-First Development: simulate envelopes, drive a skill from a
    terminal REPL or plain HTTP, and inspect it over MCP, all without the
    voice platform in the loop.

# Usage

Register handlers on a builder and invoke the built skill with envelopes:

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/tendril"
		"github.com/aretw0/tendril/pkg/dispatch"
		"github.com/aretw0/tendril/pkg/model"
		"github.com/aretw0/tendril/pkg/predicates"
		"github.com/aretw0/tendril/pkg/simulate"
	)

	func main() {
		hello := dispatch.NewHandler(
			predicates.IntentName("HelloIntent"),
			func(ctx context.Context, input *dispatch.HandlerInput) (*model.Response, error) {
				return input.ResponseBuilder().
					WithSpeech("Hello from tendril").
					WithShouldEndSession(true).
					Build(), nil
			},
		)

		skill, err := tendril.NewBuilder().
			AddRequestHandlers(hello).
			Build()
		if err != nil {
			log.Fatal(err)
		}

		sess := simulate.NewSession()
		resp, err := skill.Invoke(context.Background(), sess.Intent("HelloIntent", nil))
		if err != nil {
			log.Fatal(err)
		}
		log.Println(resp.Response.SpeechText())
	}

The pipeline for every Invoke is: global request interceptors, handler
resolution, chain-local request interceptors, the handler, chain-local
response interceptors, global response interceptors. Any failure is offered
once to the exception-handler chain.
*/
package tendril
