package civi

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Handler implements a custom action. It receives the entity the action is
// bound to, so compound actions can issue further calls through
// entity.API().
type Handler func(ctx context.Context, entity *Entity, params Params) (Result, error)

// Action is a named, entity-bound callable. Default actions relay to the
// single call path on API; actions registered with a Handler run that
// handler instead, from every call style.
type Action struct {
	name    string
	entity  *Entity
	handler Handler
}

// NewAction creates a custom action for registration via WithAction. The
// handler may be nil, in which case the action behaves like a default one.
// The action is not callable until WithAction binds it to an entity.
func NewAction(name string, handler Handler) (*Action, error) {
	if name == "" {
		return nil, ErrActionNameRequired
	}

	return &Action{name: name, handler: handler}, nil
}

// Name returns the action name.
func (a *Action) Name() string {
	return a.name
}

// Invoke performs the API call for this action. An action that was never
// bound to an entity fails with ErrActionNotBound.
func (a *Action) Invoke(ctx context.Context, params Params) (Result, error) {
	if a.entity == nil {
		return nil, ErrActionNotBound
	}

	if a.handler != nil {
		return a.handler(ctx, a.entity, params)
	}

	return a.entity.api.perform(ctx, a.entity.name, a.name, params)
}

// Entity is a named endpoint-group bound to one API instance. It owns the
// mapping from action name to Action. Entities are created during API
// construction and are read-only afterwards.
type Entity struct {
	name    string
	api     *API
	actions map[string]*Action
}

// EntityOption configures a custom entity before registration.
type EntityOption func(*Entity) error

// WithAction registers a custom action on the entity. A custom action is
// never clobbered by default action registration, and it may use a name
// beyond the version's default action set.
func WithAction(action *Action) EntityOption {
	return func(e *Entity) error {
		if action == nil || action.name == "" {
			return ErrActionNameRequired
		}

		action.entity = e
		e.actions[action.name] = action

		return nil
	}
}

// NewEntity creates a custom entity for registration via WithEntity. Its
// default actions are filled in from the version descriptor when the owning
// API is constructed; actions supplied here win over defaults.
func NewEntity(name string, opts ...EntityOption) (*Entity, error) {
	if name == "" {
		return nil, ErrEntityNameRequired
	}

	entity := &Entity{
		name:    name,
		actions: make(map[string]*Action),
	}

	for _, opt := range opts {
		if err := opt(entity); err != nil {
			return nil, err
		}
	}

	return entity, nil
}

// Name returns the entity name.
func (e *Entity) Name() string {
	return e.name
}

// API returns the owning API instance.
func (e *Entity) API() *API {
	return e.api
}

// Actions returns the registered action names, sorted.
func (e *Entity) Actions() []string {
	names := make([]string, 0, len(e.actions))
	for name := range e.actions {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Action returns the action with the given name. Unregistered names yield a
// default action bound to this entity, so the call is still relayed and the
// remote API decides whether the name is valid.
func (e *Entity) Action(name string) *Action {
	if action, ok := e.actions[name]; ok {
		return action
	}

	return &Action{name: name, entity: e}
}

// Invoke performs the named action on this entity.
func (e *Entity) Invoke(ctx context.Context, action string, params Params) (Result, error) {
	if action == "" {
		return nil, ErrActionNameRequired
	}

	return e.Action(action).Invoke(ctx, params)
}

// addDefaultActions synthesizes an Action per version-declared action name,
// keeping any identically-named action that is already registered.
func (e *Entity) addDefaultActions(version *Version) {
	for _, name := range version.Actions() {
		if _, ok := e.actions[name]; ok {
			continue
		}

		e.actions[name] = &Action{name: name, entity: e}
	}
}

// API is the root dispatcher. It owns the entities of its bound version and
// the transport used to reach CiviCRM. Entity and action bindings are built
// once at construction and are read-only afterwards, so one API instance
// may be shared across goroutines.
type API struct {
	version   *Version
	transport Transport
	logger    Logger
	entities  map[string]*Entity
}

// Option configures an API during construction.
type Option func(*API) error

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger Logger) Option {
	return func(a *API) error {
		if logger != nil {
			a.logger = logger
		}

		return nil
	}
}

// WithEntity registers a custom entity. A custom entity is never clobbered
// by default entity registration, and it may use a name beyond the
// version's default entity set.
func WithEntity(entity *Entity) Option {
	return func(a *API) error {
		if entity == nil || entity.name == "" {
			return ErrEntityNameRequired
		}

		entity.api = a
		a.entities[entity.name] = entity

		return nil
	}
}

// NewAPI creates an API bound to one version descriptor and one transport.
// Custom entities registered through options win over the version's
// defaults; every remaining entity name declared by the version gets a
// synthesized default entity, and the same rule applies one level down for
// actions within each entity.
func NewAPI(version *Version, transport Transport, opts ...Option) (*API, error) {
	if version == nil {
		return nil, ErrVersionRequired
	}

	if transport == nil {
		return nil, ErrTransportRequired
	}

	api := &API{
		version:   version,
		transport: transport,
		logger:    NoopLogger{},
		entities:  make(map[string]*Entity),
	}

	for _, opt := range opts {
		if err := opt(api); err != nil {
			return nil, err
		}
	}

	for _, entity := range api.entities {
		entity.addDefaultActions(version)
	}

	for _, name := range version.Entities() {
		if _, ok := api.entities[name]; ok {
			continue
		}

		entity := &Entity{
			name:    name,
			api:     api,
			actions: make(map[string]*Action),
		}
		entity.addDefaultActions(version)
		api.entities[name] = entity
	}

	return api, nil
}

// Version returns the bound version descriptor.
func (a *API) Version() *Version {
	return a.version
}

// Entities returns the registered entity names, sorted.
func (a *API) Entities() []string {
	names := make([]string, 0, len(a.entities))
	for name := range a.entities {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Entity returns the entity with the given name. Unregistered names yield a
// default entity bound to this API, so the call is still relayed and the
// remote API decides whether the name is valid.
func (a *API) Entity(name string) *Entity {
	if entity, ok := a.entities[name]; ok {
		return entity
	}

	return &Entity{
		name:    name,
		api:     a,
		actions: make(map[string]*Action),
	}
}

// Invoke performs an API call. It is equivalent to resolving the entity and
// action first: a custom action handler registered for the pair is honored
// here as well.
func (a *API) Invoke(ctx context.Context, entity, action string, params Params) (Result, error) {
	if entity == "" {
		return nil, ErrEntityNameRequired
	}

	return a.Entity(entity).Invoke(ctx, action, params)
}

// perform is the single real call path shared by all three call styles:
// normalize parameters, execute the transport, classify the reply, and
// normalize the result.
func (a *API) perform(ctx context.Context, entity, action string, params Params) (Result, error) {
	if entity == "" {
		return nil, ErrEntityNameRequired
	}

	if action == "" {
		return nil, ErrActionNameRequired
	}

	wireParams := NormalizeParams(action, a.version, params)

	a.logger.Debug("performing api call", map[string]interface{}{
		"entity":  entity,
		"action":  action,
		"version": a.version.Name(),
		"params":  wireParams,
	})

	raw, err := a.transport.Perform(ctx, entity, action, wireParams)
	if err != nil {
		a.logger.Error("api call failed", map[string]interface{}{
			"entity": entity,
			"action": action,
			"error":  err.Error(),
		})

		return nil, a.withCallContext(err, entity, action)
	}

	decoded, err := ClassifyResponse(raw)
	if err != nil {
		return nil, a.withCallContext(err, entity, action)
	}

	result, err := NormalizeResult(decoded)
	if err != nil {
		return nil, a.withCallContext(err, entity, action)
	}

	a.logger.Debug("api call done", map[string]interface{}{
		"entity":  entity,
		"action":  action,
		"records": len(result),
	})

	return result, nil
}

// withCallContext stamps the entity/action pair onto API errors that were
// classified below the dispatch layer and therefore lack request context.
func (a *API) withCallContext(err error, entity, action string) error {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) && apiErr.Entity == "" && apiErr.Action == "" {
		apiErr.Entity = entity
		apiErr.Action = action
	}

	return err
}

// String identifies the API instance in logs.
func (a *API) String() string {
	return fmt.Sprintf("civi.API(v%s, %d entities)", a.version.Name(), len(a.entities))
}
