package tendril

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/tendril/pkg/dispatch"
	"github.com/aretw0/tendril/pkg/ports"
)

// Builder accumulates skill registrations and freezes them into a Skill.
// Registration order is resolution priority everywhere: handlers, exception
// handlers, and interceptors all resolve in the order they were added.
type Builder struct {
	requestHandlers      []dispatch.RequestHandler
	exceptionHandlers    []dispatch.ExceptionHandler
	requestInterceptors  []dispatch.RequestInterceptor
	responseInterceptors []dispatch.ResponseInterceptor
	modules              []Module
	persistenceAdapter   ports.PersistenceAdapter
	apiClient            ports.APIClient
	skillID              string
	logger               *slog.Logger
}

// NewBuilder creates an empty skill builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddRequestHandlers registers request handlers. Each is wrapped into its
// own single-handler chain at Build time.
func (b *Builder) AddRequestHandlers(handlers ...dispatch.RequestHandler) *Builder {
	b.requestHandlers = append(b.requestHandlers, handlers...)
	return b
}

// AddExceptionHandlers registers exception handlers.
func (b *Builder) AddExceptionHandlers(handlers ...dispatch.ExceptionHandler) *Builder {
	b.exceptionHandlers = append(b.exceptionHandlers, handlers...)
	return b
}

// AddRequestInterceptors registers global request interceptors.
func (b *Builder) AddRequestInterceptors(interceptors ...dispatch.RequestInterceptor) *Builder {
	b.requestInterceptors = append(b.requestInterceptors, interceptors...)
	return b
}

// AddResponseInterceptors registers global response interceptors.
func (b *Builder) AddResponseInterceptors(interceptors ...dispatch.ResponseInterceptor) *Builder {
	b.responseInterceptors = append(b.responseInterceptors, interceptors...)
	return b
}

// RegisterModules registers modules run at Build time, in order.
func (b *Builder) RegisterModules(modules ...Module) *Builder {
	b.modules = append(b.modules, modules...)
	return b
}

// WithPersistenceAdapter wires the adapter backing persistent attributes.
func (b *Builder) WithPersistenceAdapter(adapter ports.PersistenceAdapter) *Builder {
	b.persistenceAdapter = adapter
	return b
}

// WithAPIClient wires the client used to reach platform services.
func (b *Builder) WithAPIClient(client ports.APIClient) *Builder {
	b.apiClient = client
	return b
}

// WithSkillID enables skill id verification against inbound envelopes.
func (b *Builder) WithSkillID(id string) *Builder {
	b.skillID = id
	return b
}

// WithLogger sets the structured logger for the dispatch pipeline.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build freezes the registrations into a Configuration and assembles the
// Skill.
//
// With at least one request handler registered, the configuration gets
// exactly one default request mapper over single-handler chains and one
// default handler adapter; with none, it gets no mapper and no adapter and
// relies entirely on modules. Exception handlers likewise produce one
// default exception mapper only when present. Modules run last, in
// registration order, and a module failure aborts the build.
func (b *Builder) Build() (*Skill, error) {
	config, err := b.buildConfiguration()
	if err != nil {
		return nil, err
	}
	return New(config), nil
}

func (b *Builder) buildConfiguration() (*Configuration, error) {
	config := &Configuration{
		RequestInterceptors:  slices.Clone(b.requestInterceptors),
		ResponseInterceptors: slices.Clone(b.responseInterceptors),
		PersistenceAdapter:   b.persistenceAdapter,
		APIClient:            b.apiClient,
		SkillID:              b.skillID,
		Logger:               b.logger,
	}

	if len(b.requestHandlers) > 0 {
		chains := make([]*dispatch.HandlerChain, 0, len(b.requestHandlers))
		for _, handler := range b.requestHandlers {
			chains = append(chains, dispatch.NewHandlerChain(handler))
		}
		config.RequestMappers = []dispatch.RequestMapper{dispatch.NewRequestMapper(chains...)}
		config.HandlerAdapters = []dispatch.HandlerAdapter{dispatch.DefaultHandlerAdapter{}}
	}

	if len(b.exceptionHandlers) > 0 {
		config.ExceptionMapper = dispatch.NewExceptionMapper(slices.Clone(b.exceptionHandlers)...)
	}

	// Modules get the last word over the assembled configuration.
	moduleCtx := &ModuleContext{config: config}
	defer moduleCtx.detach()
	for _, module := range b.modules {
		if err := module.Setup(moduleCtx); err != nil {
			return nil, fmt.Errorf("module setup failed: %w", err)
		}
	}

	return config, nil
}
