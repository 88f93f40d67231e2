package simulation

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/core"
)

// EntityKind is the type of a spawned entity
type EntityKind string

const (
	EntityDrone     EntityKind = "drone"
	EntityObjective EntityKind = "objective"
)

// Spawner creates and removes the entities that make up a trial.
// The search only ever holds the returned handles.
type Spawner interface {
	Spawn(kind EntityKind, position, rotation core.Vector3D) uuid.UUID
	Destroy(handle uuid.UUID)
}

// Entity is a live entity tracked by the registry
type Entity struct {
	Handle    uuid.UUID
	Kind      EntityKind
	Position  core.Vector3D
	Rotation  core.Vector3D
	SpawnedAt time.Time
}

// EntityRegistry is an in-memory Spawner
type EntityRegistry struct {
	mu        sync.RWMutex
	entities  map[uuid.UUID]Entity
	spawned   int
	destroyed int
}

func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{entities: make(map[uuid.UUID]Entity)}
}

// Spawn registers a new entity and returns its handle
func (r *EntityRegistry) Spawn(kind EntityKind, position, rotation core.Vector3D) uuid.UUID {
	handle := uuid.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entities[handle] = Entity{
		Handle:    handle,
		Kind:      kind,
		Position:  position,
		Rotation:  rotation,
		SpawnedAt: time.Now(),
	}
	r.spawned++
	return handle
}

// Destroy removes an entity. Unknown handles are ignored.
func (r *EntityRegistry) Destroy(handle uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entities[handle]; !ok {
		return
	}
	delete(r.entities, handle)
	r.destroyed++
}

// Get returns the entity for handle
func (r *EntityRegistry) Get(handle uuid.UUID) (Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[handle]
	return e, ok
}

// Live returns the number of entities currently alive
func (r *EntityRegistry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// Count returns the number of live entities of kind
func (r *EntityRegistry) Count(kind EntityKind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.entities {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Totals returns how many entities were spawned and destroyed over the registry's lifetime
func (r *EntityRegistry) Totals() (spawned, destroyed int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.spawned, r.destroyed
}
