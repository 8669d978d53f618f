package tendril

import (
	"log/slog"

	"github.com/aretw0/tendril/pkg/dispatch"
	"github.com/aretw0/tendril/pkg/ports"
)

// Configuration is the complete wiring of a skill: the dispatch pipeline
// pieces in their resolution order, the optional storage and API
// collaborators, and the skill identity. Build assembles one and it is
// read-only from then on; concurrent dispatches share it without
// synchronization.
type Configuration struct {
	// RequestMappers are tried in order until one resolves a chain.
	RequestMappers []dispatch.RequestMapper

	// HandlerAdapters are tried in order until one supports the resolved
	// handler.
	HandlerAdapters []dispatch.HandlerAdapter

	// ExceptionMapper is consulted when the pipeline fails. Nil means
	// failures propagate unrecovered.
	ExceptionMapper dispatch.ExceptionMapper

	// RequestInterceptors run before handler resolution, in order.
	RequestInterceptors []dispatch.RequestInterceptor

	// ResponseInterceptors run after handler execution, in order.
	ResponseInterceptors []dispatch.ResponseInterceptor

	// PersistenceAdapter backs persistent attributes. Nil disables them.
	PersistenceAdapter ports.PersistenceAdapter

	// APIClient reaches platform services. Nil disables the service
	// client factory on handler inputs.
	APIClient ports.APIClient

	// SkillID, when set, is verified against every envelope's application
	// id before dispatch.
	SkillID string

	// Logger is the structured logger for the dispatch pipeline.
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}
