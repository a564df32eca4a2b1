package model

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

type Server struct {
	Id             uuid.UUID
	OwnerId        uuid.UUID
	Name           string
	ShortName      string
	Description    *string
	Settings       sonic.NoCopyRawMessage
	CreateDatetime time.Time
	UpdateDatetime time.Time
	CreateUserId   uuid.UUID
	UpdateUserId   uuid.UUID
}

type ServerCreateRequest struct {
	Name        string                 `json:"name"`
	ShortName   string                 `json:"shortName"`
	Description *string                `json:"description"`
	Settings    sonic.NoCopyRawMessage `json:"settings"`
}

type ServerResponse struct {
	Id          uuid.UUID `json:"id"`
	OwnerId     uuid.UUID `json:"ownerId"`
	Name        string    `json:"name"`
	ShortName   string    `json:"shortName"`
	Description *string   `json:"description"`
}

func (server Server) ToResponse() ServerResponse {
	return ServerResponse{
		Id:          server.Id,
		OwnerId:     server.OwnerId,
		Name:        server.Name,
		ShortName:   server.ShortName,
		Description: server.Description,
	}
}
