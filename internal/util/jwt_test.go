package util

import (
	"testing"
	"time"

	"github.com/concord-chat/concord/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret-key"

func TestGenerateAndValidateAccessToken(t *testing.T) {
	userId := uuid.New()

	token, err := GenerateAccessToken(userId, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	tokenString, parsedId, err := ValidateAccessToken(BearerPrefix+token, zap.NewNop(), testSecret)
	require.NoError(t, err)
	assert.Equal(t, token, tokenString)
	assert.Equal(t, userId, parsedId)
}

func TestValidateBareToken(t *testing.T) {
	userId := uuid.New()

	token, err := GenerateAccessToken(userId, testSecret)
	require.NoError(t, err)

	_, parsedId, err := ValidateBareToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userId, parsedId)

	_, _, err = ValidateBareToken(token, "wrong-secret")
	var authenticationErr *model.AuthenticationError
	assert.ErrorAs(t, err, &authenticationErr)
}

func TestValidateAccessTokenHeaderFormat(t *testing.T) {
	var authenticationErr *model.AuthenticationError

	_, _, err := ValidateAccessToken("", zap.NewNop(), testSecret)
	assert.ErrorAs(t, err, &authenticationErr)

	_, _, err = ValidateAccessToken("Token abc", zap.NewNop(), testSecret)
	assert.ErrorAs(t, err, &authenticationErr)

	_, _, err = ValidateAccessToken(BearerPrefix, zap.NewNop(), testSecret)
	assert.ErrorAs(t, err, &authenticationErr)
}

func TestValidateExpiredToken(t *testing.T) {
	userId := uuid.New()
	now := time.Now().UTC().Add(-time.Hour)
	claims := &model.Claims{
		UserId: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    TokenIssuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, _, err = ValidateBareToken(token, testSecret)
	var authenticationErr *model.AuthenticationError
	require.ErrorAs(t, err, &authenticationErr)
	assert.Contains(t, authenticationErr.Message, "expired")
}

func TestGenerateTokenPair(t *testing.T) {
	pair, err := GenerateTokenPair(uuid.New(), testSecret)
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int(AccessTokenDuration.Seconds()), pair.AccessTokenExpiresIn)
	assert.Equal(t, int(RefreshTokenDuration.Seconds()), pair.RefreshTokenExpiresIn)
}

func TestGenerateAccessTokenRequiresSecret(t *testing.T) {
	_, err := GenerateAccessToken(uuid.New(), "")
	assert.Error(t, err)
}

func TestHashTokenIsDeterministic(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}
