package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/internal/repository"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
	"github.com/Hems566/eter-projectv1.0/pkg/jwt"
	"github.com/Hems566/eter-projectv1.0/pkg/redis"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = pkgerrors.NotFound("user_not_found", "user not found")
	ErrUserInactive       = errors.New("account is disabled")
	ErrUsernameTaken      = pkgerrors.Conflict("username_taken", "username is already taken")
	ErrAdminOnly          = pkgerrors.Forbidden("admin_only", "only administrators manage accounts")
)

// AuthService authenticates users and manages accounts.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout blacklists the token ID until the token expires.
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
	CreateUser(ctx context.Context, req *dto.CreateUserRequest, actor Actor) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, req *dto.PaginationRequest, actor Actor) ([]dto.UserResponse, int64, error)
}

type authService struct {
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) AuthService {
	return &authService{repo: repo, jwtMgr: jwtMgr, rdb: rdb, logger: logger}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("get user failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, string(user.Role), user.Department)
	if err != nil {
		s.logger.Error("generate access token failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.UserID), zap.String("role", string(user.Role)))
	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.TTL().Seconds()),
		User:        *toUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil || jti == "" {
		return nil
	}
	if err := s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("blacklist token failed", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("get user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *authService) CreateUser(ctx context.Context, req *dto.CreateUserRequest, actor Actor) (*dto.UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if !model.ValidRole(req.Role) {
		return nil, pkgerrors.Validation("role", "unknown role %q", req.Role)
	}
	department := model.NormalizeDepartment(req.Role, req.Department)
	if req.Role == model.RoleRequester && !model.ValidDepartment(department) {
		return nil, pkgerrors.Validation("department", "requesters need a department")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		UserID:       uuid.NewString(),
		Username:     strings.TrimSpace(req.Username),
		FullName:     strings.TrimSpace(req.FullName),
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		Department:   department,
		IsActive:     true,
	}
	user.CreatedBy = &actor.UserID
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, pkgerrors.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		s.logger.Error("create user failed", zap.String("username", user.Username), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.UserID), zap.String("role", string(user.Role)))
	return toUserResponse(user), nil
}

func (s *authService) ListUsers(ctx context.Context, req *dto.PaginationRequest, actor Actor) ([]dto.UserResponse, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, ErrAdminOnly
	}
	users, total, err := s.repo.User.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, *toUserResponse(&users[i]))
	}
	return list, total, nil
}

func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:           u.UserID,
		Username:     u.Username,
		FullName:     u.FullName,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		Department:   u.Department,
		Capabilities: model.CapabilitiesFor(u.Role),
		CreatedAt:    formatTimestamp(u.CreatedAt),
	}
}
