package voice

import (
	"context"

	"github.com/concord-chat/concord/internal/model"
)

// TokenVerifier resolves the credentials carried on a join request into a
// participant profile.
type TokenVerifier interface {
	ResolveParticipant(ctx context.Context, accessToken string, roomId string) (model.UserProfile, error)
}

// UnknownUsername labels participants whose identity could not be resolved.
// A failed lookup degrades the label, it never blocks the join.
const UnknownUsername = "Unknown User"

func placeholderProfile() model.UserProfile {
	return model.UserProfile{
		Username: UnknownUsername,
		BaseRole: model.BaseRoleMember,
	}
}
