package voice

import (
	"context"
	"errors"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/concord-chat/concord/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVerifier struct {
	profile model.UserProfile
	err     error
}

func (s *stubVerifier) ResolveParticipant(ctx context.Context, accessToken string, roomId string) (model.UserProfile, error) {
	return s.profile, s.err
}

func newTestGateway(verifier TokenVerifier) *Gateway {
	return NewGateway(NewRoomRegistry(), NewHub(zap.NewNop()), verifier, zap.NewNop())
}

func register(gateway *Gateway, socketId string) *Connection {
	connection := NewConnection(socketId, nil)
	gateway.Hub.Register(connection)
	return connection
}

func decodeFrame(t *testing.T, connection *Connection) map[string]interface{} {
	t.Helper()
	payload := recvPayload(t, connection)
	var frame map[string]interface{}
	require.NoError(t, sonic.Unmarshal(payload, &frame))
	return frame
}

func TestJoinRoomSendsCreatedAndUserConnected(t *testing.T) {
	gateway := newTestGateway(&stubVerifier{profile: model.UserProfile{Username: "alice"}})
	first := register(gateway, "s1")
	second := register(gateway, "s2")

	gateway.joinRoom("s1", inboundFrame{Event: "join-room", RoomId: "room-1", Token: "t1"})

	created := decodeFrame(t, first)
	assert.Equal(t, "created", created["event"])
	assert.Equal(t, "room-1", created["roomId"])
	participants := created["participants"].([]interface{})
	require.Len(t, participants, 1, "snapshot includes the joiner itself")
	self := participants[0].(map[string]interface{})
	assert.Equal(t, "s1", self["socketId"])
	assert.Equal(t, true, self["micEnabled"])

	gateway.joinRoom("s2", inboundFrame{Event: "join-room", RoomId: "room-1", Token: "t2"})

	created = decodeFrame(t, second)
	assert.Equal(t, "created", created["event"])
	participants = created["participants"].([]interface{})
	require.Len(t, participants, 2)

	connected := decodeFrame(t, first)
	assert.Equal(t, "user-connected", connected["event"])
	assert.Equal(t, "s2", connected["socketId"])
	userData := connected["userData"].(map[string]interface{})
	assert.Equal(t, "alice", userData["username"])
}

func TestJoinRoomFallsBackToPlaceholderIdentity(t *testing.T) {
	gateway := newTestGateway(&stubVerifier{err: errors.New("token rejected")})
	connection := register(gateway, "s1")

	gateway.joinRoom("s1", inboundFrame{Event: "join-room", RoomId: "room-1", Token: "bad"})

	created := decodeFrame(t, connection)
	assert.Equal(t, "created", created["event"], "identity failure must not block the join")

	participants := gateway.Registry.Participants("room-1")
	require.Len(t, participants, 1)
	assert.Equal(t, UnknownUsername, participants[0].UserData.Username)
}

func TestJoinRoomKeepsTokenForLookup(t *testing.T) {
	gateway := newTestGateway(&stubVerifier{profile: model.UserProfile{Username: "alice"}})
	connection := register(gateway, "s1")

	gateway.joinRoom("s1", inboundFrame{Event: "join-room", RoomId: "room-1", Token: "t1"})

	participant, ok := gateway.Registry.FindByToken("t1")
	require.True(t, ok)
	assert.Equal(t, "s1", participant.SocketId)

	// The token must not leak into the frames peers receive.
	created := decodeFrame(t, connection)
	self := created["participants"].([]interface{})[0].(map[string]interface{})
	assert.NotContains(t, self, "token")
}

func TestRejoinDoesNotRebroadcast(t *testing.T) {
	gateway := newTestGateway(&stubVerifier{profile: model.UserProfile{Username: "alice"}})
	first := register(gateway, "s1")
	second := register(gateway, "s2")

	gateway.joinRoom("s1", inboundFrame{RoomId: "room-1"})
	gateway.joinRoom("s2", inboundFrame{RoomId: "room-1"})
	recvPayload(t, first)  // created
	recvPayload(t, second) // created
	recvPayload(t, first)  // user-connected for s2

	gateway.joinRoom("s2", inboundFrame{RoomId: "room-1"})
	recvPayload(t, second) // created again

	select {
	case <-first.send:
		t.Fatal("rejoin must not broadcast user-connected again")
	default:
	}
}

func TestRelaySignalDeliversWithinRoom(t *testing.T) {
	gateway := newTestGateway(&stubVerifier{})
	first := register(gateway, "s1")
	second := register(gateway, "s2")

	gateway.joinRoom("s1", inboundFrame{RoomId: "room-1"})
	gateway.joinRoom("s2", inboundFrame{RoomId: "room-1"})
	recvPayload(t, first)
	recvPayload(t, second)
	recvPayload(t, first)

	gateway.relaySignal("s1", inboundFrame{
		Event:   "signal",
		To:      "s2",
		Type:    "offer",
		Payload: sonic.NoCopyRawMessage(`{"sdp":"v=0"}`),
	})

	frame := decodeFrame(t, second)
	assert.Equal(t, "signal", frame["event"])
	assert.Equal(t, "s1", frame["from"])
	assert.Equal(t, "offer", frame["type"])
}

func TestRelaySignalDropsCrossRoomAndUnknownTargets(t *testing.T) {
	gateway := newTestGateway(&stubVerifier{})
	first := register(gateway, "s1")
	other := register(gateway, "s2")

	gateway.joinRoom("s1", inboundFrame{RoomId: "room-1"})
	gateway.joinRoom("s2", inboundFrame{RoomId: "room-2"})
	recvPayload(t, first)
	recvPayload(t, other)

	// Target in a different room.
	gateway.relaySignal("s1", inboundFrame{To: "s2", Type: "offer"})
	// Target does not exist at all.
	gateway.relaySignal("s1", inboundFrame{To: "ghost", Type: "offer"})

	select {
	case <-other.send:
		t.Fatal("cross-room signal must be dropped")
	default:
	}
}

func TestRelaySignalDropsWhenSenderNotInRoom(t *testing.T) {
	gateway := newTestGateway(&stubVerifier{})
	register(gateway, "s1")
	target := register(gateway, "s2")

	gateway.joinRoom("s2", inboundFrame{RoomId: "room-1"})
	recvPayload(t, target)

	gateway.relaySignal("s1", inboundFrame{To: "s2", Type: "offer"})

	select {
	case <-target.send:
		t.Fatal("signal from a socket outside any room must be dropped")
	default:
	}
}

func TestLeaveRoomBroadcastsUserDisconnected(t *testing.T) {
	gateway := newTestGateway(&stubVerifier{})
	first := register(gateway, "s1")
	second := register(gateway, "s2")

	gateway.joinRoom("s1", inboundFrame{RoomId: "room-1"})
	gateway.joinRoom("s2", inboundFrame{RoomId: "room-1"})
	recvPayload(t, first)
	recvPayload(t, second)
	recvPayload(t, first)

	gateway.leaveRoom("s2")

	frame := decodeFrame(t, first)
	assert.Equal(t, "user-disconnected", frame["event"])
	assert.Equal(t, "s2", frame["socketId"])

	gateway.leaveRoom("s1")
	assert.Equal(t, 0, gateway.Registry.RoomCount())
}
