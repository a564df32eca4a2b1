package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/concord-chat/concord/internal/constant"
	"github.com/concord-chat/concord/internal/model"
	"github.com/concord-chat/concord/internal/repository"
	"github.com/concord-chat/concord/internal/util"
	"github.com/google/uuid"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserUsecase struct {
	UserRepository   *repository.UserRepository
	ServerRepository *repository.ServerRepository
	DB               *pgxpool.Pool
	Log              *zap.Logger
	Config           *koanf.Koanf
}

func NewUserUsecase(userRepository *repository.UserRepository, serverRepository *repository.ServerRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *UserUsecase {
	return &UserUsecase{
		UserRepository:   userRepository,
		ServerRepository: serverRepository,
		DB:               db,
		Log:              zap,
		Config:           koanf,
	}
}

func (usecase *UserUsecase) Register(ctx *fiber.Ctx, payload model.UserCreateRequest) (model.TokenResponse, error) {
	ctxContext := ctx.Context()
	token := model.TokenResponse{}

	if payload.Username == "" {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Username is required to not be empty",
			Param:   "username",
		}
	} else if len(payload.Username) < 4 {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Username must be at least 4 characters",
			Param:   "username",
		}
	} else if len(payload.Username) > 22 {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Username must be at most 22 characters",
			Param:   "username",
		}
	}

	if payload.Email == "" {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is required to not be empty",
			Param:   "email",
		}
	} else if len(payload.Email) > 80 {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email must be at most 80 characters",
			Param:   "email",
		}
	} else if !strings.Contains(payload.Email, "@") {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is not valid",
			Param:   "email",
		}
	}

	if payload.Password == "" {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Password is required to not be empty",
			Param:   "password",
		}
	} else if len(payload.Password) < 8 {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Password must be at least 8 characters",
			Param:   "password",
		}
	} else if len(payload.Password) > 72 {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Password must be at most 72 characters",
			Param:   "password",
		}
	}

	payload.Username = strings.ToLower(payload.Username)
	payload.Email = strings.ToLower(payload.Email)

	existUsername, existEmail, err := usecase.UserRepository.CheckUsernameOrEmailUnique(ctxContext, payload.Username, payload.Email)
	if err != nil {
		return token, err
	}

	if existUsername == payload.Username {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Username is already taken",
			Param:   "username",
		}
	}
	if existEmail == payload.Email {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is already taken",
			Param:   "email",
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return token, err
	}

	userUUID := uuid.New()
	now := time.Now().UTC()
	user := model.User{
		Id:             userUUID,
		Username:       payload.Username,
		Fullname:       payload.Username,
		Bio:            nil,
		AvatarImageId:  nil,
		Email:          payload.Email,
		Password:       string(hashedPassword),
		Settings:       sonic.NoCopyRawMessage("{}"),
		CreateDatetime: now,
		UpdateDatetime: now,
		CreateUserId:   userUUID,
		UpdateUserId:   userUUID,
	}

	err = usecase.UserRepository.Register(ctxContext, user)
	if err != nil {
		return token, err
	}

	token, err = util.GenerateTokenPair(user.Id, usecase.Config.String("JWT_SECRET_KEY"))
	if err != nil {
		return token, err
	}

	err = usecase.UserRepository.SetAuthTokenInCache(ctxContext, token.AccessToken, token.RefreshToken, user.Id)
	if err != nil {
		return token, err
	}

	return token, nil
}

func (usecase *UserUsecase) Login(ctx *fiber.Ctx, payload model.UserLoginRequest) (model.TokenResponse, error) {
	ctxContext := ctx.Context()
	token := model.TokenResponse{}

	if payload.Username == "" {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Username is required to not be empty",
			Param:   "username",
		}
	}

	if payload.Password == "" {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Password is required to not be empty",
			Param:   "password",
		}
	}

	payload.Username = strings.ToLower(payload.Username)

	userId, password, err := usecase.UserRepository.GetUserAuth(ctxContext, payload.Username)
	if err != nil {
		return token, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(password), []byte(payload.Password))
	if err != nil {
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Password is incorrect",
			Param:   "password",
		}
	}

	token, err = util.GenerateTokenPair(userId, usecase.Config.String("JWT_SECRET_KEY"))
	if err != nil {
		return token, err
	}

	err = usecase.UserRepository.SetAuthTokenInCache(ctxContext, token.AccessToken, token.RefreshToken, userId)
	if err != nil {
		return token, err
	}

	return token, nil
}

func (usecase *UserUsecase) GetUserInfo(ctx *fiber.Ctx, userId uuid.UUID) (model.UserResponse, error) {
	user, err := usecase.UserRepository.GetUserInfo(ctx.Context(), userId)
	if err != nil {
		return user, err
	}

	if user.AvatarImage != nil {
		*user.AvatarImage = usecase.avatarURL(*user.AvatarImage)
	}

	return user, nil
}

// GetAccessToken verifies that the presented token still matches the hash
// held in the cache. A logout or expiry invalidates the token even when the
// JWT itself is still within its window.
func (usecase *UserUsecase) GetAccessToken(ctx context.Context, userId uuid.UUID, accessToken string) error {
	hashedTokenFromCache, err := usecase.UserRepository.GetAccessTokenInCache(ctx, userId)
	if err != nil {
		return err
	}

	hashedTokenFromClient := util.HashToken(accessToken)

	if hashedTokenFromClient != hashedTokenFromCache {
		return &model.AuthenticationError{
			Code:    constant.ERR_UNATHORIZED_ERROR,
			Message: "Authorization token is expired",
			Param:   "accessToken",
		}
	}

	return nil
}

func (usecase *UserUsecase) Logout(ctx *fiber.Ctx, userId uuid.UUID) error {
	err := usecase.UserRepository.RemoveAuthToken(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return nil
}

func (usecase *UserUsecase) UpdateAvatar(ctx *fiber.Ctx, userId uuid.UUID) error {
	ctxContext := ctx.Context()

	fieldName := "avatar"
	fileHeader, err := ctx.FormFile(fieldName)
	if err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Avatar is required to not be empty",
			Param:   fieldName,
		}
	}

	imageFile, imageSize, err := util.ValidateImage(fileHeader, fieldName)
	if err != nil {
		return err
	}

	avatarImageId := uuid.New()
	bucketName := usecase.Config.String("MINIO_BUCKET_NAME")
	objectKey := fmt.Sprintf("user/avatar/%s.webp", avatarImageId)

	err = usecase.UserRepository.UploadUserAvatar(ctxContext, bucketName, objectKey, imageFile, imageSize)
	if err != nil {
		return err
	}

	return usecase.UserRepository.SetUserAvatar(ctxContext, userId, avatarImageId)
}

func (usecase *UserUsecase) avatarURL(objectKey string) string {
	return fmt.Sprintf("%s%s/%s/user/avatar/%s.webp",
		usecase.Config.String("MINIO_HTTP"),
		usecase.Config.String("MINIO_URL"),
		usecase.Config.String("MINIO_BUCKET_NAME"),
		objectKey)
}

// ResolveParticipant turns the credentials attached to a voice join request
// into a participant profile. The gateway treats any error here as a cue to
// fall back to a placeholder identity rather than rejecting the join.
func (usecase *UserUsecase) ResolveParticipant(ctx context.Context, accessToken string, roomId string) (model.UserProfile, error) {
	_, userId, err := util.ValidateBareToken(accessToken, usecase.Config.String("JWT_SECRET_KEY"))
	if err != nil {
		return model.UserProfile{}, err
	}

	err = usecase.GetAccessToken(ctx, userId, accessToken)
	if err != nil {
		return model.UserProfile{}, err
	}

	serverId := uuid.Nil
	if channelId, parseErr := uuid.Parse(roomId); parseErr == nil {
		serverId, err = usecase.ServerRepository.GetChannelServer(ctx, channelId)
		if err != nil {
			serverId = uuid.Nil
		}
	}

	profile, err := usecase.UserRepository.GetUserProfile(ctx, userId, serverId)
	if err != nil {
		return model.UserProfile{}, err
	}

	if profile.AvatarImage != nil {
		*profile.AvatarImage = usecase.avatarURL(*profile.AvatarImage)
	}

	return profile, nil
}
