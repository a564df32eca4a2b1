package voice

import (
	"sync"
	"time"

	"github.com/concord-chat/concord/internal/model"
)

// Participant is one occupant of a voice room, keyed by the socket id the
// gateway assigned to its connection. Token is the credential the participant
// joined with, kept for lookups only and never serialized to peers.
type Participant struct {
	SocketId   string            `json:"socketId"`
	Token      string            `json:"-"`
	UserData   model.UserProfile `json:"userData"`
	MicEnabled bool              `json:"micEnabled"`
	JoinedAt   time.Time         `json:"joinedAt"`
}

type room struct {
	mu           sync.Mutex
	participants map[string]Participant
}

// RoomRegistry tracks which sockets occupy which rooms. Rooms exist only
// while occupied: the first join creates a room, the last leave deletes it.
// Nothing here survives a restart.
type RoomRegistry struct {
	mu       sync.RWMutex
	rooms    map[string]*room
	bySocket map[string]string
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:    make(map[string]*room),
		bySocket: make(map[string]string),
	}
}

// Join adds the participant to the room, creating it when absent, and returns
// a snapshot of the other occupants. Joining a room the socket is already in
// refreshes its user data and reports rejoined=true so the gateway can skip
// the user-connected broadcast.
func (registry *RoomRegistry) Join(roomId string, participant Participant) (others []Participant, rejoined bool) {
	registry.mu.Lock()
	r, ok := registry.rooms[roomId]
	if !ok {
		r = &room{participants: make(map[string]Participant)}
		registry.rooms[roomId] = r
	}
	registry.bySocket[participant.SocketId] = roomId
	registry.mu.Unlock()

	r.mu.Lock()
	_, rejoined = r.participants[participant.SocketId]
	r.participants[participant.SocketId] = participant
	for socketId, other := range r.participants {
		if socketId == participant.SocketId {
			continue
		}
		others = append(others, other)
	}
	r.mu.Unlock()

	return others, rejoined
}

// Leave removes the socket from whatever room it occupies and returns the
// room id. The room is deleted once its last participant leaves. Leaving
// while not in any room is a no-op.
func (registry *RoomRegistry) Leave(socketId string) (string, bool) {
	registry.mu.Lock()
	roomId, ok := registry.bySocket[socketId]
	if !ok {
		registry.mu.Unlock()
		return "", false
	}
	delete(registry.bySocket, socketId)

	r := registry.rooms[roomId]
	r.mu.Lock()
	delete(r.participants, socketId)
	empty := len(r.participants) == 0
	r.mu.Unlock()

	if empty {
		delete(registry.rooms, roomId)
	}
	registry.mu.Unlock()

	return roomId, true
}

// Participants returns a snapshot of a room's occupants, empty when the room
// does not exist.
func (registry *RoomRegistry) Participants(roomId string) []Participant {
	registry.mu.RLock()
	r, ok := registry.rooms[roomId]
	registry.mu.RUnlock()

	if !ok {
		return nil
	}

	r.mu.Lock()
	participants := make([]Participant, 0, len(r.participants))
	for _, participant := range r.participants {
		participants = append(participants, participant)
	}
	r.mu.Unlock()

	return participants
}

// FindBySocketId returns the participant record behind a socket id.
func (registry *RoomRegistry) FindBySocketId(socketId string) (Participant, bool) {
	registry.mu.RLock()
	roomId, ok := registry.bySocket[socketId]
	if !ok {
		registry.mu.RUnlock()
		return Participant{}, false
	}
	r := registry.rooms[roomId]
	registry.mu.RUnlock()

	r.mu.Lock()
	participant, ok := r.participants[socketId]
	r.mu.Unlock()

	return participant, ok
}

// FindByToken scans every room for the participant that joined with the given
// token. Empty tokens never match, so anonymous participants stay unreachable
// by this path.
func (registry *RoomRegistry) FindByToken(token string) (Participant, bool) {
	if token == "" {
		return Participant{}, false
	}

	registry.mu.RLock()
	rooms := make([]*room, 0, len(registry.rooms))
	for _, r := range registry.rooms {
		rooms = append(rooms, r)
	}
	registry.mu.RUnlock()

	for _, r := range rooms {
		r.mu.Lock()
		for _, participant := range r.participants {
			if participant.Token == token {
				r.mu.Unlock()
				return participant, true
			}
		}
		r.mu.Unlock()
	}

	return Participant{}, false
}

// RoomOf reports which room a socket currently occupies.
func (registry *RoomRegistry) RoomOf(socketId string) (string, bool) {
	registry.mu.RLock()
	roomId, ok := registry.bySocket[socketId]
	registry.mu.RUnlock()
	return roomId, ok
}

// RoomCount reports how many rooms currently exist.
func (registry *RoomRegistry) RoomCount() int {
	registry.mu.RLock()
	count := len(registry.rooms)
	registry.mu.RUnlock()
	return count
}
