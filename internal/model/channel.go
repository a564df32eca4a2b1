package model

import (
	"time"

	"github.com/google/uuid"
)

type ChannelType string

const (
	ChannelTypeText  ChannelType = "text"
	ChannelTypeVoice ChannelType = "voice"
)

type Channel struct {
	Id             uuid.UUID
	ServerId       uuid.UUID
	Name           string
	Type           ChannelType
	Position       int
	CreateDatetime time.Time
	UpdateDatetime time.Time
	CreateUserId   uuid.UUID
	UpdateUserId   uuid.UUID
}

type ChannelCreateRequest struct {
	Name     string      `json:"name"`
	Type     ChannelType `json:"type"`
	Position int         `json:"position"`
}

type ChannelUpdateRequest struct {
	Name     *string `json:"name"`
	Position *int    `json:"position"`
}

type ChannelResponse struct {
	Id       uuid.UUID   `json:"id"`
	ServerId uuid.UUID   `json:"serverId"`
	Name     string      `json:"name"`
	Type     ChannelType `json:"type"`
	Position int         `json:"position"`
}

func (channel Channel) ToResponse() ChannelResponse {
	return ChannelResponse{
		Id:       channel.Id,
		ServerId: channel.ServerId,
		Name:     channel.Name,
		Type:     channel.Type,
		Position: channel.Position,
	}
}
