package voice

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const identityResolveTimeout = 5 * time.Second

// Gateway is the websocket entrypoint for voice rooms. It assigns each
// connection a socket id, tracks room membership through the registry and
// relays WebRTC signaling frames between peers without inspecting them.
type Gateway struct {
	Registry *RoomRegistry
	Hub      *Hub
	Verifier TokenVerifier
	Log      *zap.Logger
}

func NewGateway(registry *RoomRegistry, hub *Hub, verifier TokenVerifier, zap *zap.Logger) *Gateway {
	return &Gateway{
		Registry: registry,
		Hub:      hub,
		Verifier: verifier,
		Log:      zap,
	}
}

type inboundFrame struct {
	Event   string                 `json:"event"`
	RoomId  string                 `json:"roomId,omitempty"`
	Token   string                 `json:"token,omitempty"`
	To      string                 `json:"to,omitempty"`
	Type    string                 `json:"type,omitempty"`
	Payload sonic.NoCopyRawMessage `json:"payload,omitempty"`
}

type createdFrame struct {
	Event        string        `json:"event"`
	RoomId       string        `json:"roomId"`
	SocketId     string        `json:"socketId"`
	Participants []Participant `json:"participants"`
}

type userConnectedFrame struct {
	Event    string      `json:"event"`
	SocketId string      `json:"socketId"`
	UserData interface{} `json:"userData"`
}

type signalFrame struct {
	Event   string                 `json:"event"`
	From    string                 `json:"from"`
	Type    string                 `json:"type"`
	Payload sonic.NoCopyRawMessage `json:"payload,omitempty"`
}

type userDisconnectedFrame struct {
	Event    string `json:"event"`
	SocketId string `json:"socketId"`
}

// Upgrade gates the route so only websocket upgrade requests reach the
// handler.
func Upgrade(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler serves one websocket connection for its whole lifetime.
func (gateway *Gateway) Handler() fiber.Handler {
	return websocket.New(func(ws *websocket.Conn) {
		socketId := uuid.NewString()
		connection := NewConnection(socketId, ws)
		connection.Start()

		gateway.Hub.Register(connection)

		defer func() {
			gateway.disconnect(socketId)
			gateway.Hub.Unregister(socketId)
			connection.Close(websocket.CloseNormalClosure, "")
		}()

		for {
			_, message, err := ws.ReadMessage()
			if err != nil {
				return
			}

			var frame inboundFrame
			if err := sonic.Unmarshal(message, &frame); err != nil {
				gateway.Log.Debug("discarding malformed frame", zap.String("socketId", socketId))
				continue
			}

			switch frame.Event {
			case "join-room":
				gateway.joinRoom(socketId, frame)
			case "signal":
				gateway.relaySignal(socketId, frame)
			case "leave-room":
				gateway.leaveRoom(socketId)
			default:
				gateway.Log.Debug("discarding unknown event", zap.String("event", frame.Event), zap.String("socketId", socketId))
			}
		}
	})
}

func (gateway *Gateway) joinRoom(socketId string, frame inboundFrame) {
	if frame.RoomId == "" {
		gateway.Log.Debug("join without room id", zap.String("socketId", socketId))
		return
	}

	// Switching rooms implies leaving the previous one first.
	if currentRoom, ok := gateway.Registry.RoomOf(socketId); ok && currentRoom != frame.RoomId {
		gateway.leaveRoom(socketId)
	}

	ctx, cancel := context.WithTimeout(context.Background(), identityResolveTimeout)
	profile, err := gateway.Verifier.ResolveParticipant(ctx, frame.Token, frame.RoomId)
	cancel()
	if err != nil {
		gateway.Log.Warn("failed to resolve participant identity",
			zap.String("socketId", socketId),
			zap.String("roomId", frame.RoomId),
			zap.Error(err))
		profile = placeholderProfile()
	}

	participant := Participant{
		SocketId:   socketId,
		Token:      frame.Token,
		UserData:   profile,
		MicEnabled: true,
		JoinedAt:   time.Now().UTC(),
	}

	others, rejoined := gateway.Registry.Join(frame.RoomId, participant)

	// The snapshot covers the whole room, the joiner included.
	created, err := sonic.Marshal(createdFrame{
		Event:        "created",
		RoomId:       frame.RoomId,
		SocketId:     socketId,
		Participants: append(others, participant),
	})
	if err != nil {
		gateway.Log.Error("failed to encode created frame", zap.Error(err))
		return
	}
	gateway.Hub.SendTo(socketId, created)

	if rejoined {
		return
	}

	connected, err := sonic.Marshal(userConnectedFrame{
		Event:    "user-connected",
		SocketId: socketId,
		UserData: profile,
	})
	if err != nil {
		gateway.Log.Error("failed to encode user-connected frame", zap.Error(err))
		return
	}
	gateway.Hub.Broadcast(socketIds(others), socketId, connected)
}

// relaySignal forwards a signaling frame to its addressee. Frames addressed
// to sockets outside the sender's room, or to sockets that no longer exist,
// are dropped silently; so are frames from a sender that has not joined a
// room yet.
func (gateway *Gateway) relaySignal(socketId string, frame inboundFrame) {
	if frame.To == "" {
		return
	}

	senderRoom, ok := gateway.Registry.RoomOf(socketId)
	if !ok {
		return
	}

	targetRoom, ok := gateway.Registry.RoomOf(frame.To)
	if !ok || targetRoom != senderRoom {
		return
	}

	payload, err := sonic.Marshal(signalFrame{
		Event:   "signal",
		From:    socketId,
		Type:    frame.Type,
		Payload: frame.Payload,
	})
	if err != nil {
		gateway.Log.Error("failed to encode signal frame", zap.Error(err))
		return
	}

	gateway.Hub.SendTo(frame.To, payload)
}

func (gateway *Gateway) leaveRoom(socketId string) {
	roomId, ok := gateway.Registry.Leave(socketId)
	if !ok {
		return
	}

	gateway.notifyDisconnected(roomId, socketId)
}

// disconnect mirrors leaveRoom but runs on transport teardown, where the
// client never got a chance to send leave-room.
func (gateway *Gateway) disconnect(socketId string) {
	gateway.leaveRoom(socketId)
}

func (gateway *Gateway) notifyDisconnected(roomId string, socketId string) {
	payload, err := sonic.Marshal(userDisconnectedFrame{
		Event:    "user-disconnected",
		SocketId: socketId,
	})
	if err != nil {
		gateway.Log.Error("failed to encode user-disconnected frame", zap.Error(err))
		return
	}

	remaining := gateway.Registry.Participants(roomId)
	gateway.Hub.Broadcast(socketIds(remaining), socketId, payload)
}

func socketIds(participants []Participant) []string {
	ids := make([]string, 0, len(participants))
	for _, participant := range participants {
		ids = append(ids, participant.SocketId)
	}
	return ids
}
