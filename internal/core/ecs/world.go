package ecs

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// World is the top-level owner of the entity registry and every component
// store, indexed by component type. Entities are merely handles; stores own
// the data. Because Go methods cannot be generic, per-component-type
// operations (AddComponent, GetComponent, RemoveComponent, RegisterStore)
// are free functions parameterized over the component type, taking *World
// as their first argument.
type World struct {
	mu sync.RWMutex

	id       uuid.UUID
	registry *Registry
	stores   map[ComponentType]any
	config   WorldConfig
	logger   zerolog.Logger

	createdAt        time.Time
	lastStepDuration time.Duration
}

// Option configures a World at construction time.
type Option func(*World)

// WithLogger injects a structured logger. The default is zerolog.Nop, so
// the core emits nothing unless a caller wires a sink.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *World) { w.logger = logger }
}

// NewWorld creates a world with the given configuration and no registered
// component stores; call RegisterStore for each component type the
// simulation will use.
func NewWorld(cfg WorldConfig, opts ...Option) *World {
	w := &World{
		id:        uuid.New(),
		registry:  NewRegistry(),
		stores:    make(map[ComponentType]any),
		config:    cfg,
		logger:    zerolog.Nop(),
		createdAt: time.Now(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ID returns this world instance's identity, used for diagnostic labeling
// when more than one world exists in a process (e.g. a test harness running
// scenarios concurrently).
func (w *World) ID() uuid.UUID { return w.id }

// Logger returns the injected structured logger.
func (w *World) Logger() zerolog.Logger { return w.logger }

// Config returns the world's active configuration.
func (w *World) Config() WorldConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// UpdateConfig replaces the world's configuration.
func (w *World) UpdateConfig(cfg WorldConfig) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.config = cfg
}

// CreateEntity allocates a new entity handle.
func (w *World) CreateEntity() Entity {
	return w.registry.Create()
}

// DestroyEntity frees the entity and removes it from every registered
// component store, per the lifecycle invariant that a component may only
// exist for a live entity.
func (w *World) DestroyEntity(e Entity) {
	w.mu.Lock()
	stores := make([]any, 0, len(w.stores))
	for _, s := range w.stores {
		stores = append(stores, s)
	}
	w.mu.Unlock()

	for _, s := range stores {
		if remover, ok := s.(interface{ removeEntity(Entity) }); ok {
			remover.removeEntity(e)
		}
	}
	w.registry.Destroy(e)
}

// IsAlive reports whether e refers to a currently live entity.
func (w *World) IsAlive(e Entity) bool {
	return w.registry.IsAlive(e)
}

// EntityCount returns the number of currently live entities.
func (w *World) EntityCount() int {
	return w.registry.Count()
}

// IterAlive calls fn for every live entity.
func (w *World) IterAlive(fn func(Entity)) {
	w.registry.IterAlive(fn)
}

// RecordStepDuration stores the wall-clock time of the most recent
// simulation step, surfaced through DebugInfo and the Prometheus collectors
// in metrics.go.
func (w *World) RecordStepDuration(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastStepDuration = d
}

// DebugInfo returns a snapshot of entity and store occupancy, mirroring the
// teacher's EntityManagerDebugInfo (internal/core/ecs/entity.go) trimmed to
// the live entity count, each store's component count, and the last step
// duration.
type DebugInfo struct {
	EntityCount  int                             `json:"entity_count"`
	StoreStats   map[ComponentType]StorageStats  `json:"store_stats"`
	LastStepTime time.Duration                   `json:"last_step_time"`
}

func (w *World) DebugInfo() DebugInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()

	info := DebugInfo{
		EntityCount:  w.registry.Count(),
		StoreStats:   make(map[ComponentType]StorageStats, len(w.stores)),
		LastStepTime: w.lastStepDuration,
	}
	for ct, s := range w.stores {
		if sized, ok := s.(interface{ size() int }); ok {
			info.StoreStats[ct] = StorageStats{ComponentType: ct, ComponentCount: sized.size()}
		}
	}
	return info
}

// storeHandle adapts a generic Store[C] to the type-erased operations World
// needs to perform without knowing C: removing an entity on destroy, and
// reporting occupancy for DebugInfo.
type storeHandle[C Component] struct {
	store Store[C]
}

func (h storeHandle[C]) removeEntity(e Entity) { h.store.Remove(e) }
func (h storeHandle[C]) size() int             { return h.store.Len() }

// RegisterStore attaches a concrete store for component type ct. Registering
// a second store under the same type replaces the first.
func RegisterStore[C Component](w *World, ct ComponentType, store Store[C]) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stores[ct] = storeHandle[C]{store: store}
}

// GetStoreRaw returns the underlying Store[C] for ct, if one is registered
// with a matching component type.
func GetStoreRaw[C Component](w *World, ct ComponentType) (Store[C], bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	h, ok := w.stores[ct]
	if !ok {
		return nil, false
	}
	handle, ok := h.(storeHandle[C])
	if !ok {
		return nil, false
	}
	return handle.store, true
}

// AddComponent inserts c for entity e into the store registered for ct. It
// returns an error if e is not alive or no store is registered.
func AddComponent[C Component](w *World, ct ComponentType, e Entity, c C) error {
	if !w.IsAlive(e) {
		return New(CodeInvalidHandle, "cannot add component to dead entity").WithEntity(e).WithComponent(ct)
	}
	store, ok := GetStoreRaw[C](w, ct)
	if !ok {
		return New(CodeMissingState, "no store registered for component type").WithComponent(ct)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	store.Insert(e, c)
	return nil
}

// GetComponent fetches entity e's component of type ct. ok is false if the
// entity has none, which is also the legitimate result for a live entity in
// a dense-SoA-backed store (see storage.Vector3SoA).
func GetComponent[C Component](w *World, ct ComponentType, e Entity) (c C, ok bool) {
	store, registered := GetStoreRaw[C](w, ct)
	if !registered {
		return c, false
	}
	return store.Get(e)
}

// RemoveComponent removes entity e's component of type ct, if present.
func RemoveComponent[C Component](w *World, ct ComponentType, e Entity) (removed C, ok bool) {
	store, registered := GetStoreRaw[C](w, ct)
	if !registered {
		return removed, false
	}
	return store.Remove(e)
}

// HasComponent reports whether entity e has a component of type ct.
func HasComponent[C Component](w *World, ct ComponentType, e Entity) bool {
	store, ok := GetStoreRaw[C](w, ct)
	return ok && store.Contains(e)
}
