package model

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

type User struct {
	Id             uuid.UUID
	Username       string
	Fullname       string
	Bio            *string
	AvatarImageId  *uuid.UUID
	Email          string
	Password       string
	Settings       sonic.NoCopyRawMessage
	CreateDatetime time.Time
	UpdateDatetime time.Time
	CreateUserId   uuid.UUID
	UpdateUserId   uuid.UUID
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	Id             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Fullname       string    `json:"fullname"`
	Email          string    `json:"email"`
	AvatarImage    *string   `json:"avatarImage"`
	CreateDatetime time.Time `json:"createDatetime"`
	UpdateDatetime time.Time `json:"updateDatetime"`
}

// UserProfile is the snapshot attached to voice room participants: just
// enough identity to render a participant tile.
type UserProfile struct {
	Id          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	AvatarImage *string   `json:"avatarImage"`
	BaseRole    BaseRole  `json:"baseRole"`
}
