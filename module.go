package tendril

import (
	"github.com/aretw0/tendril/pkg/dispatch"
	"github.com/aretw0/tendril/pkg/ports"
)

// Module packages reusable registrations (custom mappers, adapters,
// interceptors, storage wiring) that plug into a skill at assembly time.
//
// Setup runs inside Build, after the builder's own handlers have been
// assembled, so whatever a module appends resolves behind them. The context
// is only valid during the call; modules must not retain it.
type Module interface {
	Setup(ctx *ModuleContext) error
}

// ModuleContext is the mutable assembly window handed to a module. It is
// detached when Build returns; a retained context panics on use.
type ModuleContext struct {
	config *Configuration
}

// AddRequestMappers appends request mappers behind the existing ones.
func (c *ModuleContext) AddRequestMappers(mappers ...dispatch.RequestMapper) {
	c.config.RequestMappers = append(c.config.RequestMappers, mappers...)
}

// AddHandlerAdapters appends handler adapters behind the existing ones.
func (c *ModuleContext) AddHandlerAdapters(adapters ...dispatch.HandlerAdapter) {
	c.config.HandlerAdapters = append(c.config.HandlerAdapters, adapters...)
}

// AddRequestInterceptors appends global request interceptors.
func (c *ModuleContext) AddRequestInterceptors(interceptors ...dispatch.RequestInterceptor) {
	c.config.RequestInterceptors = append(c.config.RequestInterceptors, interceptors...)
}

// AddResponseInterceptors appends global response interceptors.
func (c *ModuleContext) AddResponseInterceptors(interceptors ...dispatch.ResponseInterceptor) {
	c.config.ResponseInterceptors = append(c.config.ResponseInterceptors, interceptors...)
}

// SetPersistenceAdapter replaces the persistence adapter.
func (c *ModuleContext) SetPersistenceAdapter(adapter ports.PersistenceAdapter) {
	c.config.PersistenceAdapter = adapter
}

// SetAPIClient replaces the API client.
func (c *ModuleContext) SetAPIClient(client ports.APIClient) {
	c.config.APIClient = client
}

// SetSkillID replaces the skill id the dispatcher verifies envelopes against.
func (c *ModuleContext) SetSkillID(id string) {
	c.config.SkillID = id
}

// detach invalidates the context once assembly is over.
func (c *ModuleContext) detach() {
	c.config = nil
}
