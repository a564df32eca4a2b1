package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/concord-chat/concord/internal/constant"
	"github.com/concord-chat/concord/internal/model"
	"github.com/concord-chat/concord/internal/util"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type UserRepository struct {
	Log      *zap.Logger
	DB       *pgxpool.Pool
	DBCache  *redis.Client
	DBObject *minio.Client
}

func NewUserRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client, minio *minio.Client) *UserRepository {
	return &UserRepository{
		Log:      zap,
		DB:       db,
		DBCache:  dbCache,
		DBObject: minio,
	}
}

// Postgresql

func (repository *UserRepository) Register(ctx context.Context, user model.User) error {
	query := "INSERT INTO users (id,username,fullname,bio,avatar_image_id,email,password,settings,create_datetime,update_datetime,create_user_id,update_user_id) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)"

	_, err := repository.DB.Exec(ctx, query, user.Id, user.Username, user.Fullname, user.Bio, user.AvatarImageId, user.Email, user.Password, user.Settings, user.CreateDatetime, user.UpdateDatetime, user.CreateUserId, user.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) CheckUsernameOrEmailUnique(ctx context.Context, username string, email string) (string, string, error) {
	query := "SELECT username,email FROM users WHERE username=$1 OR email=$2 LIMIT 1"

	var existUsername string
	var existEmail string
	err := repository.DB.QueryRow(ctx, query, username, email).Scan(&existUsername, &existEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return existUsername, existEmail, nil
		}
		return existUsername, existEmail, err
	}

	return existUsername, existEmail, nil
}

func (repository *UserRepository) GetUserAuth(ctx context.Context, username string) (uuid.UUID, string, error) {
	query := "SELECT id,password FROM users WHERE username=$1 LIMIT 1"

	var id uuid.UUID
	var passwordHash string

	err := repository.DB.QueryRow(ctx, query, username).Scan(&id, &passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return id, passwordHash, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Username is not found",
				Param:   "username",
			}
		}
		return id, passwordHash, err
	}

	return id, passwordHash, nil
}

func (repository *UserRepository) GetUserInfo(ctx context.Context, id uuid.UUID) (model.UserResponse, error) {
	query := "SELECT id,username,fullname,email,avatar_image_id,create_datetime,update_datetime FROM users WHERE id=$1 LIMIT 1"

	user := model.UserResponse{}
	var avatarImageId *uuid.UUID
	err := repository.DB.QueryRow(ctx, query, id).Scan(&user.Id, &user.Username, &user.Fullname, &user.Email, &avatarImageId, &user.CreateDatetime, &user.UpdateDatetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, &model.NotFoundError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "User not found",
				Param:   "userId",
			}
		}
		return user, err
	}

	if avatarImageId != nil {
		key := avatarImageId.String()
		user.AvatarImage = &key
	}

	return user, nil
}

// GetUserProfile loads the snapshot attached to voice participants, including
// the member's base role on the given server when one exists.
func (repository *UserRepository) GetUserProfile(ctx context.Context, userId uuid.UUID, serverId uuid.UUID) (model.UserProfile, error) {
	query := `SELECT A.id,A.username,A.avatar_image_id,B.base_role
			FROM users A
			LEFT JOIN server_members B ON B.user_id = A.id AND B.server_id = $2 AND B.status = $3
			WHERE A.id=$1
			LIMIT 1`

	profile := model.UserProfile{}
	var avatarImageId *uuid.UUID
	var baseRole *model.BaseRole
	err := repository.DB.QueryRow(ctx, query, userId, serverId, model.MemberStatusActive).Scan(&profile.Id, &profile.Username, &avatarImageId, &baseRole)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile, &model.NotFoundError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "User not found",
				Param:   "userId",
			}
		}
		return profile, err
	}

	if avatarImageId != nil {
		key := avatarImageId.String()
		profile.AvatarImage = &key
	}
	if baseRole != nil {
		profile.BaseRole = *baseRole
	} else {
		profile.BaseRole = model.BaseRoleMember
	}

	return profile, nil
}

func (repository *UserRepository) SetUserAvatar(ctx context.Context, userId uuid.UUID, avatarImageId uuid.UUID) error {
	query := "UPDATE users SET avatar_image_id=$1,update_datetime=$2,update_user_id=$3 WHERE id=$4"

	_, err := repository.DB.Exec(ctx, query, avatarImageId, time.Now().UTC(), userId, userId)
	if err != nil {
		return err
	}

	return nil
}

// Redis - Cache

func (repository *UserRepository) SetAuthTokenInCache(ctx context.Context, accessToken string, refreshToken string, userId uuid.UUID) error {
	accessTokenKey := fmt.Sprintf("auth:accessToken:%s", userId)
	refreshTokenKey := fmt.Sprintf("auth:refreshToken:%s", userId)

	// Tokens are hashed before they hit Redis.
	hashedAccessToken := util.HashToken(accessToken)
	hashedRefreshToken := util.HashToken(refreshToken)

	err := repository.DBCache.Set(ctx, accessTokenKey, hashedAccessToken, util.AccessTokenDuration).Err()
	if err != nil {
		return err
	}

	err = repository.DBCache.Set(ctx, refreshTokenKey, hashedRefreshToken, util.RefreshTokenDuration).Err()
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) GetAccessTokenInCache(ctx context.Context, userId uuid.UUID) (string, error) {
	accessTokenKey := fmt.Sprintf("auth:accessToken:%s", userId)
	hashedToken, err := repository.DBCache.Get(ctx, accessTokenKey).Result()
	if err == redis.Nil {
		return hashedToken, &model.AuthenticationError{
			Code:    constant.ERR_UNATHORIZED_ERROR,
			Message: "Authorization token not found or expired",
			Param:   "accessToken",
		}
	} else if err != nil {
		return hashedToken, err
	}

	return hashedToken, nil
}

func (repository *UserRepository) RemoveAuthToken(ctx context.Context, userId uuid.UUID) error {
	accessTokenKey := fmt.Sprintf("auth:accessToken:%s", userId)
	refreshTokenKey := fmt.Sprintf("auth:refreshToken:%s", userId)

	err := repository.DBCache.Del(ctx, accessTokenKey).Err()
	if err != nil {
		return err
	}

	err = repository.DBCache.Del(ctx, refreshTokenKey).Err()
	if err != nil {
		return err
	}

	return nil
}

// MinIO - Object storage

func (repository *UserRepository) UploadUserAvatar(ctx context.Context, bucketName string, imageName string, imageFile *bytes.Reader, imageSize int64) error {
	_, err := repository.DBObject.PutObject(ctx, bucketName, imageName, imageFile, imageSize,
		minio.PutObjectOptions{
			ContentType: "image/webp",
		})
	if err != nil {
		return err
	}

	return nil
}
