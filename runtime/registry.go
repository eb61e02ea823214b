package runtime

import (
	"chathub/domain"
	"chathub/errors"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Registry is the authoritative room table. Rooms are never deleted:
// they live for the process lifetime, even at zero occupancy.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
	order []domain.RoomID
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID]*domain.Room)}
}

// Create validates the name, generates an id and stores the record.
// The room is visible in the public listing immediately, even with
// zero occupants. A private room must carry a password hash; an empty
// one is rejected rather than silently producing a joinable "private"
// room.
func (r *Registry) Create(name string, private bool, passwordHash string) (domain.Room, error) {
	if n := utf8.RuneCountInString(name); n < domain.MinRoomNameLength || n > domain.MaxRoomNameLength {
		return domain.Room{}, errors.ErrInvalidRoomName
	}
	if private && passwordHash == "" {
		return domain.Room{}, errors.ErrPasswordRequired
	}

	room := domain.Room{
		ID:           domain.RoomID(uuid.NewString()),
		Name:         name,
		Private:      private,
		PasswordHash: passwordHash,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = &room
	r.order = append(r.order, room.ID)
	return room, nil
}

func (r *Registry) Get(id domain.RoomID) (domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return domain.Room{}, errors.ErrRoomNotFound
	}
	return *room, nil
}

// ListPublicView returns room summaries in insertion order. The
// password hash never leaves the registry boundary.
func (r *Registry) ListPublicView() []domain.RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.order, func(id domain.RoomID, _ int) domain.RoomSummary {
		return r.rooms[id].Summary()
	})
}

// AdjustOccupancy applies a delta to the stored occupant count,
// clamped at zero so out-of-order leaves can never drive it negative.
func (r *Registry) AdjustOccupancy(id domain.RoomID, delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return
	}
	room.Occupants += delta
	if room.Occupants < 0 {
		room.Occupants = 0
	}
}

// SetOccupancy pins the stored count to the authoritative membership
// size. The coordinator calls this before any broadcast so externally
// visible counts are always recomputed, never trusted deltas.
func (r *Registry) SetOccupancy(id domain.RoomID, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[id]; ok {
		if count < 0 {
			count = 0
		}
		room.Occupants = count
	}
}
