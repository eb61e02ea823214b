package runtime

import (
	"chathub/domain"
	"sync"
)

const DefaultHistoryLimit = 100

// History keeps a bounded, append-only, FIFO-truncated log of recent
// messages per room. It is the only persisted-in-memory message path;
// system notices never enter it.
type History struct {
	mu    sync.Mutex
	limit int
	logs  map[domain.RoomID][]domain.Message
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit, logs: make(map[domain.RoomID][]domain.Message)}
}

// Append adds a message to the room's log, evicting from the front
// when the limit is exceeded.
func (h *History) Append(roomID domain.RoomID, msg domain.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	log := append(h.logs[roomID], msg)
	if len(log) > h.limit {
		log = log[len(log)-h.limit:]
	}
	h.logs[roomID] = log
}

// Snapshot returns a copy of the room's log, oldest to newest. Used
// only when a session newly joins a room.
func (h *History) Snapshot(roomID domain.RoomID) []domain.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	log := h.logs[roomID]
	out := make([]domain.Message, len(log))
	copy(out, log)
	return out
}
