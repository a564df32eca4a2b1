package voice

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/concord-chat/concord/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParticipant(socketId string, username string) Participant {
	return Participant{
		SocketId: socketId,
		UserData: model.UserProfile{Username: username, BaseRole: model.BaseRoleMember},
		JoinedAt: time.Now().UTC(),
	}
}

func TestJoinCreatesRoomAndReturnsOthers(t *testing.T) {
	registry := NewRoomRegistry()

	others, rejoined := registry.Join("room-1", testParticipant("s1", "alice"))
	assert.Empty(t, others)
	assert.False(t, rejoined)
	assert.Equal(t, 1, registry.RoomCount())

	others, rejoined = registry.Join("room-1", testParticipant("s2", "bob"))
	assert.False(t, rejoined)
	require.Len(t, others, 1)
	assert.Equal(t, "s1", others[0].SocketId)
	assert.Equal(t, "alice", others[0].UserData.Username)
	assert.Equal(t, 1, registry.RoomCount())
}

func TestJoinIsIdempotentPerSocket(t *testing.T) {
	registry := NewRoomRegistry()

	registry.Join("room-1", testParticipant("s1", "alice"))
	others, rejoined := registry.Join("room-1", testParticipant("s1", "alice-renamed"))

	assert.True(t, rejoined)
	assert.Empty(t, others)

	participants := registry.Participants("room-1")
	require.Len(t, participants, 1)
	assert.Equal(t, "alice-renamed", participants[0].UserData.Username, "rejoin refreshes user data")
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	registry := NewRoomRegistry()

	registry.Join("room-1", testParticipant("s1", "alice"))
	registry.Join("room-1", testParticipant("s2", "bob"))

	roomId, ok := registry.Leave("s1")
	assert.True(t, ok)
	assert.Equal(t, "room-1", roomId)
	assert.Equal(t, 1, registry.RoomCount())

	roomId, ok = registry.Leave("s2")
	assert.True(t, ok)
	assert.Equal(t, "room-1", roomId)
	assert.Equal(t, 0, registry.RoomCount())

	assert.Empty(t, registry.Participants("room-1"))
}

func TestLeaveUnknownSocketIsNoop(t *testing.T) {
	registry := NewRoomRegistry()

	_, ok := registry.Leave("ghost")
	assert.False(t, ok)

	registry.Join("room-1", testParticipant("s1", "alice"))
	registry.Leave("s1")
	_, ok = registry.Leave("s1")
	assert.False(t, ok, "second leave finds nothing")
}

func TestFindBySocketIdAndToken(t *testing.T) {
	registry := NewRoomRegistry()

	alice := testParticipant("s1", "alice")
	alice.Token = "tok-alice"
	alice.MicEnabled = true
	registry.Join("room-1", alice)
	registry.Join("room-2", testParticipant("s2", "bob"))

	participant, ok := registry.FindBySocketId("s1")
	require.True(t, ok)
	assert.Equal(t, "alice", participant.UserData.Username)
	assert.True(t, participant.MicEnabled)

	participant, ok = registry.FindByToken("tok-alice")
	require.True(t, ok)
	assert.Equal(t, "s1", participant.SocketId)

	_, ok = registry.FindByToken("")
	assert.False(t, ok, "tokenless participants are unreachable by token")

	_, ok = registry.FindBySocketId("ghost")
	assert.False(t, ok)

	registry.Leave("s1")
	_, ok = registry.FindByToken("tok-alice")
	assert.False(t, ok)
	_, ok = registry.FindBySocketId("s1")
	assert.False(t, ok)
}

func TestRoomOf(t *testing.T) {
	registry := NewRoomRegistry()

	registry.Join("room-1", testParticipant("s1", "alice"))

	roomId, ok := registry.RoomOf("s1")
	assert.True(t, ok)
	assert.Equal(t, "room-1", roomId)

	_, ok = registry.RoomOf("s2")
	assert.False(t, ok)
}

func TestConcurrentJoinLeave(t *testing.T) {
	registry := NewRoomRegistry()

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			socketId := fmt.Sprintf("s%d", i)
			roomId := fmt.Sprintf("room-%d", i%4)

			for j := 0; j < 100; j++ {
				registry.Join(roomId, testParticipant(socketId, socketId))
				registry.Participants(roomId)
				registry.RoomOf(socketId)
				registry.Leave(socketId)
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 0, registry.RoomCount())
}
