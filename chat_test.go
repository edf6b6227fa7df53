package chachan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataShades/chachan/transport"
)

func TestValidation_MissingRequiredField(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		payload map[string]any
		field   string
	}{
		{"login without user", EventUserLogin, map[string]any{}, "user"},
		{"visit without room", EventRoomVisit, map[string]any{}, "room"},
		{"create without room", EventRoomCreate, map[string]any{}, "room"},
		{"join without room", EventRoomJoin, map[string]any{}, "room"},
		{"leave without room", EventRoomLeave, map[string]any{}, "room"},
		{"invite without user", EventRoomInvite, map[string]any{"room": "lobby"}, "user"},
		{"invite without room", EventRoomInvite, map[string]any{"user": "bob"}, "room"},
		{"expel without user", EventRoomExpel, map[string]any{"room": "lobby"}, "user"},
		{"message without room", EventMessage, map[string]any{"text": "hi"}, "room"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat, ns := newTestChat(t, nil)
			chat.Start()
			sess := connect(t, ns, "A")
			peer := connect(t, ns, "B")
			peer.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)

			var acked any
			ackCalled := false
			sess.Emit(tt.event, tt.payload, func(result any) {
				acked = result
				ackCalled = true
			})

			failures := sess.Events(EventValidationError)
			require.Len(t, failures, 1, "exactly one validation error")
			assert.Equal(t,
				map[string]any{"error": "<" + tt.field + "> must be specified"},
				failures[0])

			assert.True(t, ackCalled, "the short-circuit response is still acked")
			assert.Nil(t, acked, "no ack value reflects success")
			assert.Empty(t, peer.Events(EventRoomJoined), "no broadcast on validation failure")
			assert.Empty(t, peer.Events(EventRoomInvited))
			assert.Empty(t, peer.Events(EventMessage))
		})
	}
}

func TestLoginLogout_RoundTrip(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()
	sess := connect(t, ns, "A")

	var loginAck any
	sess.Emit(EventUserLogin, map[string]any{"user": "alice"}, func(r any) { loginAck = r })
	require.Equal(t, map[string]any{"user": "alice"}, loginAck)

	var logoutAck any
	sess.Emit(EventUserLogout, map[string]any{}, func(r any) { logoutAck = r })
	require.Equal(t, "alice", logoutAck, "logout answers the prior user name")

	// Identity is gone: inviting alice is now a no-op.
	peer := connect(t, ns, "B")
	login(t, peer, "bob")
	var inviteAck any
	peer.Emit(EventRoomInvite, map[string]any{"room": "lobby", "user": "alice"}, func(r any) { inviteAck = r })
	require.Equal(t, map[string]any{"room": "lobby", "user": "alice"}, inviteAck)
}

func TestLogout_WithoutLogin(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()
	sess := connect(t, ns, "A")

	var acked any
	ackCalled := false
	sess.Emit(EventUserLogout, map[string]any{}, func(r any) { acked = r; ackCalled = true })

	require.True(t, ackCalled)
	assert.Equal(t, "", acked)
}

func TestRoomList_ExcludesPrivateRoom(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()
	sess := connect(t, ns, "A")

	sess.Emit(EventRoomJoin, map[string]any{"room": "zebra"}, nil)
	sess.Emit(EventRoomJoin, map[string]any{"room": "apple"}, nil)

	var acked any
	sess.Emit(EventRoomList, map[string]any{}, func(r any) { acked = r })

	require.Equal(t, []string{"apple", "zebra"}, acked)
}

func TestRoomDetails_EchoesPayload(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()
	sess := connect(t, ns, "A")

	payload := map[string]any{"room": "lobby", "whatever": 42}
	var acked any
	sess.Emit(EventRoomDetails, payload, func(r any) { acked = r })

	require.Equal(t, payload, acked)
}

func TestJoin_Idempotent(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()
	sess := connect(t, ns, "A")
	login(t, sess, "alice")

	sess.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)
	sess.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)

	require.Equal(t, []string{"A"}, ns.RoomMembers("lobby"))
}

func TestJoin_FansOutToAllConnectionsOfIdentity(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()

	first := connect(t, ns, "A1")
	second := connect(t, ns, "A2")
	login(t, first, "alice")
	login(t, second, "alice")

	first.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)

	assert.ElementsMatch(t, []string{"A1", "A2"}, ns.RoomMembers("lobby"))

	// The sibling connection is in the room, so it sees the broadcast; the
	// acting one is excluded.
	joined := second.Events(EventRoomJoined)
	require.Len(t, joined, 1)
	assert.Equal(t, map[string]any{"room": "lobby", "user": "alice"}, joined[0])
	assert.Empty(t, first.Events(EventRoomJoined))
}

func TestCreate_BehavesAsJoin(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()
	sess := connect(t, ns, "A")
	login(t, sess, "alice")

	var acked any
	sess.Emit(EventRoomCreate, map[string]any{"room": "lobby"}, func(r any) { acked = r })

	require.Equal(t, map[string]any{"room": "lobby", "user": "alice"}, acked)
	assert.Equal(t, []string{"A"}, ns.RoomMembers("lobby"))
}

func TestLeave_BroadcastsUnderJoinedName(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()

	alice := connect(t, ns, "A")
	bob := connect(t, ns, "B")
	login(t, alice, "alice")
	login(t, bob, "bob")
	alice.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)
	bob.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)

	alice.Emit(EventRoomLeave, map[string]any{"room": "lobby"}, nil)

	require.Equal(t, []string{"B"}, ns.RoomMembers("lobby"))

	// Leave reuses the room:joined event name on the wire. Bob saw no join
	// broadcasts before this: alice joined an empty room, and his own join
	// excluded him.
	joined := bob.Events(EventRoomJoined)
	require.Len(t, joined, 1)
	assert.Equal(t, map[string]any{"room": "lobby", "user": "alice"}, joined[0])
}

func TestVisit_BroadcastsWithoutJoining(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()

	alice := connect(t, ns, "A")
	bob := connect(t, ns, "B")
	login(t, alice, "alice")
	login(t, bob, "bob")
	bob.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)

	var acked any
	alice.Emit(EventRoomVisit, map[string]any{"room": "lobby"}, func(r any) { acked = r })

	require.Equal(t, map[string]any{"room": "lobby", "user": "alice"}, acked)
	assert.Equal(t, []string{"B"}, ns.RoomMembers("lobby"), "visiting does not join")

	visited := bob.Events(EventRoomVisited)
	require.Len(t, visited, 1)
	assert.Equal(t, map[string]any{"room": "lobby", "user": "alice"}, visited[0])
}

// The two-connection scenario: alice joins, bob sees it, bob invites the
// already-present alice and alice sees the invitation.
func TestJoinInvite_EndToEnd(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()

	alice := connect(t, ns, "A")
	bob := connect(t, ns, "B")
	login(t, alice, "alice")
	login(t, bob, "bob")

	bob.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)
	alice.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)

	joined := bob.Events(EventRoomJoined)
	require.Len(t, joined, 1)
	assert.Equal(t, map[string]any{"room": "lobby", "user": "alice"}, joined[0])

	var acked any
	bob.Emit(EventRoomInvite, map[string]any{"room": "lobby", "user": "alice"}, func(r any) { acked = r })

	want := map[string]any{"room": "lobby", "user": "alice", "by": "bob"}
	require.Equal(t, want, acked)

	invited := alice.Events(EventRoomInvited)
	require.Len(t, invited, 1)
	assert.Equal(t, want, invited[0])
}

func TestInvite_AbsentTargetIsNoOp(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()

	bob := connect(t, ns, "B")
	peer := connect(t, ns, "C")
	login(t, bob, "bob")
	login(t, peer, "carol")
	bob.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)
	peer.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)

	var acked any
	bob.Emit(EventRoomInvite, map[string]any{"room": "lobby", "user": "ghost"}, func(r any) { acked = r })

	require.Equal(t, map[string]any{"room": "lobby", "user": "ghost"}, acked,
		"no-op response carries no by key")
	assert.Empty(t, peer.Events(EventRoomInvited), "no broadcast for an absent target")
}

func TestExpel_RemovesAllTargetConnections(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()

	alice1 := connect(t, ns, "A1")
	alice2 := connect(t, ns, "A2")
	bob := connect(t, ns, "B")
	carol := connect(t, ns, "C")
	login(t, alice1, "alice")
	login(t, alice2, "alice")
	login(t, bob, "bob")
	login(t, carol, "carol")

	alice1.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)
	bob.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)
	carol.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)

	var acked any
	bob.Emit(EventRoomExpel, map[string]any{"room": "lobby", "user": "alice"}, func(r any) { acked = r })

	want := map[string]any{"room": "lobby", "user": "alice", "by": "bob"}
	require.Equal(t, want, acked)
	assert.ElementsMatch(t, []string{"B", "C"}, ns.RoomMembers("lobby"))

	// Expel reuses the room:invited event name on the wire.
	invited := carol.Events(EventRoomInvited)
	require.Len(t, invited, 1)
	assert.Equal(t, want, invited[0])
}

func TestMessage_RelaysRawPayloadToRoom(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()

	alice := connect(t, ns, "A")
	bob := connect(t, ns, "B")
	outsider := connect(t, ns, "C")
	login(t, alice, "alice")
	login(t, bob, "bob")
	alice.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)
	bob.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)

	payload := map[string]any{"room": "lobby", "text": "hello", "extra": true}
	var acked any
	alice.Emit(EventMessage, payload, func(r any) { acked = r })

	require.Equal(t, payload, acked)

	received := bob.Events(EventMessage)
	require.Len(t, received, 1)
	assert.Equal(t, payload, received[0])

	assert.Empty(t, alice.Events(EventMessage), "the sender is excluded")
	assert.Empty(t, outsider.Events(EventMessage), "non-members receive nothing")
}

func TestSetRooms_SubscribesAllUserConnections(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()

	first := connect(t, ns, "A1")
	second := connect(t, ns, "A2")
	login(t, first, "alice")
	login(t, second, "alice")

	chat.SetRooms("alice", []string{"news", "random"})

	assert.ElementsMatch(t, []string{"A1", "A2"}, ns.RoomMembers("news"))
	assert.ElementsMatch(t, []string{"A1", "A2"}, ns.RoomMembers("random"))
}

func TestListMembers_DeduplicatesUsers(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()

	alice1 := connect(t, ns, "A1")
	alice2 := connect(t, ns, "A2")
	bob := connect(t, ns, "B")
	login(t, alice1, "alice")
	login(t, alice2, "alice")
	login(t, bob, "bob")

	alice1.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)
	bob.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)
	bob.Emit(EventRoomJoin, map[string]any{"room": "dev"}, nil)

	members := chat.ListMembers([]string{"lobby", "dev"})
	require.Equal(t, map[string][]string{
		"lobby": {"alice", "bob"},
		"dev":   {"bob"},
	}, members)

	all := chat.ListMembers(nil)
	assert.Equal(t, []string{"alice", "bob"}, all["lobby"])
}

func TestDisconnect_ClearsIdentityAndRooms(t *testing.T) {
	chat, ns := newTestChat(t, nil)
	chat.Start()

	alice := connect(t, ns, "A")
	bob := connect(t, ns, "B")
	login(t, alice, "alice")
	login(t, bob, "bob")
	alice.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)
	bob.Emit(EventRoomJoin, map[string]any{"room": "lobby"}, nil)

	alice.Close("client gone")

	require.Equal(t, []string{"B"}, ns.RoomMembers("lobby"))

	var acked any
	bob.Emit(EventRoomInvite, map[string]any{"room": "lobby", "user": "alice"}, func(r any) { acked = r })
	require.Equal(t, map[string]any{"room": "lobby", "user": "alice"}, acked,
		"disconnected identities are no longer invitable")
}

func TestMiddleware_ChainAndRejection(t *testing.T) {
	chat, ns := newTestChat(t, nil)

	var order []string
	chat.Use(
		func(s *transport.Socket, next func()) {
			order = append(order, "first")
			next()
		},
		func(s *transport.Socket, next func()) {
			order = append(order, "second")
			next()
		},
	)
	chat.Start()

	sess := connect(t, ns, "A")
	require.Equal(t, []string{"first", "second"}, order)

	ackCalled := false
	sess.Emit(EventUserLogin, map[string]any{"user": "alice"}, func(any) { ackCalled = true })
	assert.True(t, ackCalled, "listeners installed after the chain completed")

	// A middleware that never calls next leaves the socket unprepared.
	blocked, bns := newTestChat(t, nil)
	blocked.Use(func(s *transport.Socket, next func()) {})
	blocked.Start()

	mute := connect(t, bns, "M")
	ackCalled = false
	mute.Emit(EventUserLogin, map[string]any{"user": "alice"}, func(any) { ackCalled = true })
	assert.False(t, ackCalled)
}

func TestOnConnect_RunsAfterPreparation(t *testing.T) {
	chat, ns := newTestChat(t, nil)

	var greeted []string
	chat.OnConnect(func(s *transport.Socket) {
		greeted = append(greeted, s.ID())
	})
	chat.Start()

	connect(t, ns, "A")
	connect(t, ns, "B")

	require.Equal(t, []string{"A", "B"}, greeted)
}
