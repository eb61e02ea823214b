package runtime

import (
	"chathub/domain"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHistory_Append_And_Snapshot_In_Order(t *testing.T) {
	req := require.New(t)
	history := NewHistory(DefaultHistoryLimit)
	roomID := domain.RoomID("room-1")

	// When three messages are appended
	for i := range 3 {
		history.Append(roomID, domain.NewMessage("alice", fmt.Sprintf("msg-%d", i), time.Now().UTC()))
	}

	// Then the snapshot is oldest to newest
	snapshot := history.Snapshot(roomID)
	req.Len(snapshot, 3)
	req.Equal("msg-0", snapshot[0].Content)
	req.Equal("msg-2", snapshot[2].Content)
}

func TestHistory_Evicts_Oldest_Beyond_Limit(t *testing.T) {
	req := require.New(t)
	history := NewHistory(100)
	roomID := domain.RoomID("room-1")

	// When 101 messages are appended
	for i := range 101 {
		history.Append(roomID, domain.NewMessage("alice", fmt.Sprintf("msg-%d", i), time.Now().UTC()))
	}

	// Then the log holds exactly 100 entries, the oldest is gone, and
	// the newest 100 remain in order
	snapshot := history.Snapshot(roomID)
	req.Len(snapshot, 100)
	req.Equal("msg-1", snapshot[0].Content)
	req.Equal("msg-100", snapshot[99].Content)
}

func TestHistory_Snapshot_Is_A_Copy(t *testing.T) {
	req := require.New(t)
	history := NewHistory(10)
	roomID := domain.RoomID("room-1")
	history.Append(roomID, domain.NewMessage("alice", "hello", time.Now().UTC()))

	snapshot := history.Snapshot(roomID)
	snapshot[0].Content = "tampered"

	req.Equal("hello", history.Snapshot(roomID)[0].Content)
}

func TestHistory_Rooms_Are_Independent(t *testing.T) {
	req := require.New(t)
	history := NewHistory(10)

	history.Append("room-1", domain.NewMessage("alice", "one", time.Now().UTC()))
	history.Append("room-2", domain.NewMessage("bob", "two", time.Now().UTC()))

	req.Len(history.Snapshot("room-1"), 1)
	req.Len(history.Snapshot("room-2"), 1)
	req.Empty(history.Snapshot("room-3"))
}
