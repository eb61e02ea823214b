package runtime

import (
	"chathub/domain"
	"chathub/domain/event"
	"chathub/errors"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) All() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func eventsOf[T event.DomainEvent](s *recordingSink) []T {
	var out []T
	for _, e := range s.All() {
		if evt, ok := e.(T); ok {
			out = append(out, evt)
		}
	}
	return out
}

func newCoordinator() *Coordinator {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewCoordinator(log, NewRegistry(), NewHistory(DefaultHistoryLimit), NewSessions())
}

func TestCoordinator_Connect_Sends_Listing_To_New_Session_Only(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCoordinator()
	sink1 := &recordingSink{}
	sink2 := &recordingSink{}

	// Given a connected session
	_, err := c.Connect(ctx, "alice", sink1)
	req.NoError(err)

	// When a second session connects
	_, err = c.Connect(ctx, "bob", sink2)
	req.NoError(err)

	// Then only the new session received the snapshot
	req.Len(eventsOf[event.RoomListing](sink2), 1)
	req.Len(eventsOf[event.RoomListing](sink1), 1) // its own connect snapshot only
}

func TestCoordinator_Connect_Rejects_Missing_Identity(t *testing.T) {
	req := require.New(t)
	c := newCoordinator()
	sink := &recordingSink{}

	_, err := c.Connect(context.Background(), "", sink)

	req.ErrorIs(err, errors.ErrMissingIdentity)
	req.Empty(sink.All())
}

// Walks the public-room scenario end to end: create, second join,
// message fanout, disconnect.
func TestCoordinator_General_Room_Scenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCoordinator()
	aliceSink := &recordingSink{}
	bobSink := &recordingSink{}

	alice, err := c.Connect(ctx, "alice", aliceSink)
	req.NoError(err)
	bob, err := c.Connect(ctx, "bob", bobSink)
	req.NoError(err)

	// When alice creates "General"
	req.NoError(c.CreateRoom(ctx, alice.ID, domain.CreateRoomCommand{Name: "General"}))

	// Then she is its sole occupant with an empty history
	joined := eventsOf[event.RoomJoined](aliceSink)
	req.Len(joined, 1)
	req.Equal("General", joined[0].Room.Name)
	req.Equal(1, joined[0].Room.UserCount)
	req.Empty(joined[0].Messages)
	req.Len(joined[0].Occupants, 1)
	req.Equal(alice.ID, joined[0].Occupants[0].ID)
	roomID := joined[0].Room.ID

	// And everyone saw the updated listing
	listings := eventsOf[event.RoomListing](bobSink)
	req.NotEmpty(listings)
	last := listings[len(listings)-1]
	req.Len(last.Rooms, 1)
	req.Equal(1, last.Rooms[0].UserCount)

	aliceSink.Reset()
	bobSink.Reset()

	// When bob joins
	req.NoError(c.JoinRoom(ctx, bob.ID, domain.JoinRoomCommand{RoomID: roomID}))

	// Then bob's joined payload lists both occupants, in registration order
	joined = eventsOf[event.RoomJoined](bobSink)
	req.Len(joined, 1)
	req.Equal(2, joined[0].Room.UserCount)
	req.Len(joined[0].Occupants, 2)
	req.Equal(alice.ID, joined[0].Occupants[0].ID)
	req.Equal(bob.ID, joined[0].Occupants[1].ID)

	// And the user-joined notice reached alice only
	req.Len(eventsOf[event.UserJoined](aliceSink), 1)
	req.Equal(bob.ID, eventsOf[event.UserJoined](aliceSink)[0].Occupant.ID)
	req.Empty(eventsOf[event.UserJoined](bobSink))

	aliceSink.Reset()
	bobSink.Reset()

	// When bob sends "hi"
	req.NoError(c.PostMessage(ctx, bob.ID, domain.PostMessageCommand{RoomID: roomID, Content: "hi"}))

	// Then both sessions receive it with bob as sender
	for _, sink := range []*recordingSink{aliceSink, bobSink} {
		posted := eventsOf[event.MessagePosted](sink)
		req.Len(posted, 1)
		req.Equal("bob", posted[0].Message.Sender)
		req.Equal("hi", posted[0].Message.Content)
	}

	aliceSink.Reset()

	// When bob disconnects
	c.Disconnect(ctx, bob.ID)

	// Then alice is told who left and occupancy drops to one
	left := eventsOf[event.UserLeft](aliceSink)
	req.Len(left, 1)
	req.Equal(bob.ID, left[0].SessionID)

	listings = eventsOf[event.RoomListing](aliceSink)
	req.NotEmpty(listings)
	req.Equal(1, listings[len(listings)-1].Rooms[0].UserCount)
	req.Len(c.sessions.OccupantsOf(roomID), 1)
}

// Walks the private-room scenario: wrong password fails without any
// state change, the right one succeeds.
func TestCoordinator_Private_Room_Scenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCoordinator()
	ownerSink := &recordingSink{}
	guestSink := &recordingSink{}

	owner, err := c.Connect(ctx, "owner", ownerSink)
	req.NoError(err)
	guest, err := c.Connect(ctx, "guest", guestSink)
	req.NoError(err)

	req.NoError(c.CreateRoom(ctx, owner.ID, domain.CreateRoomCommand{
		Name:     "Secret",
		Private:  true,
		Password: "xyz",
	}))
	roomID := eventsOf[event.RoomJoined](ownerSink)[0].Room.ID

	// The creator is in; leave it empty again for the occupancy check
	c.Disconnect(ctx, owner.ID)
	guestSink.Reset()

	// When joining with the wrong password
	err = c.JoinRoom(ctx, guest.ID, domain.JoinRoomCommand{RoomID: roomID, Password: "abc"})

	// Then the join fails and occupancy is untouched
	req.ErrorIs(err, errors.ErrBadPassword)
	req.Empty(guestSink.All())
	room, err := c.registry.Get(roomID)
	req.NoError(err)
	req.Equal(0, room.Occupants)
	req.Empty(c.sessions.OccupantsOf(roomID))

	// When joining with the right password
	req.NoError(c.JoinRoom(ctx, guest.ID, domain.JoinRoomCommand{RoomID: roomID, Password: "xyz"}))

	// Then occupancy becomes one
	room, err = c.registry.Get(roomID)
	req.NoError(err)
	req.Equal(1, room.Occupants)
}

func TestCoordinator_CreateRoom_Private_Without_Password(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCoordinator()
	sink := &recordingSink{}

	session, err := c.Connect(ctx, "alice", sink)
	req.NoError(err)
	sink.Reset()

	err = c.CreateRoom(ctx, session.ID, domain.CreateRoomCommand{Name: "Secret", Private: true})

	req.ErrorIs(err, errors.ErrPasswordRequired)
	req.Empty(sink.All())
	req.Empty(c.registry.ListPublicView())
}

func TestCoordinator_JoinRoom_Not_Found(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCoordinator()
	sink := &recordingSink{}

	session, err := c.Connect(ctx, "alice", sink)
	req.NoError(err)
	sink.Reset()

	err = c.JoinRoom(ctx, session.ID, domain.JoinRoomCommand{RoomID: "no-such-room"})

	req.ErrorIs(err, errors.ErrRoomNotFound)
	req.Empty(sink.All())
	got, _ := c.sessions.Get(session.ID)
	req.Empty(got.CurrentRoom)
}

func TestCoordinator_Room_Switch_Is_Leave_Then_Join(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCoordinator()
	aliceSink := &recordingSink{}
	bobSink := &recordingSink{}

	alice, err := c.Connect(ctx, "alice", aliceSink)
	req.NoError(err)
	bob, err := c.Connect(ctx, "bob", bobSink)
	req.NoError(err)

	req.NoError(c.CreateRoom(ctx, alice.ID, domain.CreateRoomCommand{Name: "first"}))
	firstID := eventsOf[event.RoomJoined](aliceSink)[0].Room.ID
	req.NoError(c.JoinRoom(ctx, bob.ID, domain.JoinRoomCommand{RoomID: firstID}))

	aliceSink.Reset()
	bobSink.Reset()

	// When bob creates a second room while still in the first
	req.NoError(c.CreateRoom(ctx, bob.ID, domain.CreateRoomCommand{Name: "second"}))

	// Then alice saw bob leave before any joined state
	left := eventsOf[event.UserLeft](aliceSink)
	req.Len(left, 1)
	req.Equal(bob.ID, left[0].SessionID)

	// And bob is a member of exactly one room
	req.Len(c.sessions.OccupantsOf(firstID), 1)
	secondID := eventsOf[event.RoomJoined](bobSink)[0].Room.ID
	req.Len(c.sessions.OccupantsOf(secondID), 1)

	// And both counts were recomputed for the listing broadcast
	listings := eventsOf[event.RoomListing](aliceSink)
	req.NotEmpty(listings)
	final := listings[len(listings)-1].Rooms
	req.Len(final, 2)
	req.Equal(1, final[0].UserCount)
	req.Equal(1, final[1].UserCount)
}

func TestCoordinator_PostMessage_From_Non_Member_Is_Dropped(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCoordinator()
	memberSink := &recordingSink{}
	strangerSink := &recordingSink{}

	member, err := c.Connect(ctx, "member", memberSink)
	req.NoError(err)
	stranger, err := c.Connect(ctx, "stranger", strangerSink)
	req.NoError(err)

	req.NoError(c.CreateRoom(ctx, member.ID, domain.CreateRoomCommand{Name: "General"}))
	roomID := eventsOf[event.RoomJoined](memberSink)[0].Room.ID
	memberSink.Reset()

	// When a non-member posts into the room
	err = c.PostMessage(ctx, stranger.ID, domain.PostMessageCommand{RoomID: roomID, Content: "hi"})

	// Then nothing is broadcast and nothing is stored
	req.ErrorIs(err, errors.ErrNotAMember)
	req.Empty(eventsOf[event.MessagePosted](memberSink))
	req.Empty(c.history.Snapshot(roomID))
}

func TestCoordinator_Typing_Reaches_Other_Occupants_Only(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCoordinator()
	aliceSink := &recordingSink{}
	bobSink := &recordingSink{}

	alice, err := c.Connect(ctx, "alice", aliceSink)
	req.NoError(err)
	bob, err := c.Connect(ctx, "bob", bobSink)
	req.NoError(err)

	req.NoError(c.CreateRoom(ctx, alice.ID, domain.CreateRoomCommand{Name: "General"}))
	roomID := eventsOf[event.RoomJoined](aliceSink)[0].Room.ID
	req.NoError(c.JoinRoom(ctx, bob.ID, domain.JoinRoomCommand{RoomID: roomID}))

	aliceSink.Reset()
	bobSink.Reset()

	// When bob starts typing
	req.NoError(c.SetTyping(ctx, bob.ID, domain.SetTypingCommand{RoomID: roomID, Typing: true}))

	// Then alice is notified and bob is not echoed
	typing := eventsOf[event.UserTyping](aliceSink)
	req.Len(typing, 1)
	req.Equal(bob.ID, typing[0].SessionID)
	req.Equal("bob", typing[0].DisplayName)
	req.True(typing[0].IsTyping)
	req.Empty(eventsOf[event.UserTyping](bobSink))

	// And typing for a room bob is not in is silently refused
	err = c.SetTyping(ctx, bob.ID, domain.SetTypingCommand{RoomID: "other", Typing: true})
	req.ErrorIs(err, errors.ErrNotAMember)
}

func TestCoordinator_Disconnect_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newCoordinator()
	aliceSink := &recordingSink{}
	bobSink := &recordingSink{}

	alice, err := c.Connect(ctx, "alice", aliceSink)
	req.NoError(err)
	bob, err := c.Connect(ctx, "bob", bobSink)
	req.NoError(err)

	req.NoError(c.CreateRoom(ctx, alice.ID, domain.CreateRoomCommand{Name: "General"}))
	roomID := eventsOf[event.RoomJoined](aliceSink)[0].Room.ID
	req.NoError(c.JoinRoom(ctx, bob.ID, domain.JoinRoomCommand{RoomID: roomID}))
	aliceSink.Reset()

	c.Disconnect(ctx, bob.ID)
	c.Disconnect(ctx, bob.ID)

	// A second disconnect must not produce a second leave or skew counts
	req.Len(eventsOf[event.UserLeft](aliceSink), 1)
	room, err := c.registry.Get(roomID)
	req.NoError(err)
	req.Equal(1, room.Occupants)
}
