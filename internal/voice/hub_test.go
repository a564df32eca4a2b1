package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recvPayload drains one frame off the connection's send queue without
// running the write loop.
func recvPayload(t *testing.T, connection *Connection) []byte {
	t.Helper()
	select {
	case payload := <-connection.send:
		return payload
	default:
		t.Fatal("expected a queued frame")
		return nil
	}
}

func TestSendToDeliversPayload(t *testing.T) {
	hub := NewHub(zap.NewNop())

	connection := NewConnection("s1", nil)
	hub.Register(connection)

	hub.SendTo("s1", []byte("hello"))
	assert.Equal(t, []byte("hello"), recvPayload(t, connection))
}

func TestSendToUnknownSocketIsSilent(t *testing.T) {
	hub := NewHub(zap.NewNop())

	// Must not panic or block.
	hub.SendTo("ghost", []byte("hello"))
}

func TestSendToUnregisteredSocketAfterRemoval(t *testing.T) {
	hub := NewHub(zap.NewNop())

	connection := NewConnection("s1", nil)
	hub.Register(connection)
	hub.Unregister("s1")

	hub.SendTo("s1", []byte("hello"))
	select {
	case <-connection.send:
		t.Fatal("unregistered connection should receive nothing")
	default:
	}
}

func TestBroadcastSkipsSender(t *testing.T) {
	hub := NewHub(zap.NewNop())

	sender := NewConnection("s1", nil)
	peerA := NewConnection("s2", nil)
	peerB := NewConnection("s3", nil)
	hub.Register(sender)
	hub.Register(peerA)
	hub.Register(peerB)

	hub.Broadcast([]string{"s1", "s2", "s3"}, "s1", []byte("frame"))

	assert.Equal(t, []byte("frame"), recvPayload(t, peerA))
	assert.Equal(t, []byte("frame"), recvPayload(t, peerB))

	select {
	case <-sender.send:
		t.Fatal("sender should not receive its own broadcast")
	default:
	}
}

func TestSendQueuesUpToBuffer(t *testing.T) {
	connection := NewConnection("s1", nil)

	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, connection.Send([]byte("x")))
	}

	assert.Len(t, connection.send, sendBufferSize)
}
