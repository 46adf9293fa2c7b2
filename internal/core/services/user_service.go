package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/k3rn3l808/swift_sim_backend/internal/apperrors"
	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	portsrepo "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/repositories"
	portssvc "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/services"
	"github.com/k3rn3l808/swift_sim_backend/internal/dto"
	"github.com/k3rn3l808/swift_sim_backend/internal/middleware"
	"github.com/k3rn3l808/swift_sim_backend/internal/utils"
)

// SeedAdminConfig describes the administrator account created at first boot.
type SeedAdminConfig struct {
	Username string
	Password string
	FullName string
	Email    string
}

// userService provides user management and authentication operations.
type userService struct {
	userRepo  portsrepo.UserRepositoryFacade
	seedAdmin SeedAdminConfig
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, seedAdmin SeedAdminConfig) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo, seedAdmin: seedAdmin}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// requireAdmin loads the acting user and verifies the admin role.
func (s *userService) requireAdmin(ctx context.Context, actorUserID string) error {
	actor, err := s.userRepo.FindUserByID(ctx, actorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrForbidden
		}
		return fmt.Errorf("failed to load acting user: %w", err)
	}
	if actor.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: admin role required", apperrors.ErrForbidden)
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Self-registration (no creator) is limited to the customer role; staff
	// accounts are provisioned by an admin.
	if creatorUserID == "" {
		if domain.UserRole(req.Role) != domain.RoleCustomer {
			return nil, fmt.Errorf("%w: self-registration is limited to customer accounts", apperrors.ErrForbidden)
		}
	} else if err := s.requireAdmin(ctx, creatorUserID); err != nil {
		logger.Warn("Authorization failed for CreateUser", slog.String("creator_id", creatorUserID), slog.String("error", err.Error()))
		return nil, err
	}

	existing, err := s.userRepo.FindUserByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("username %s: %w", req.Username, apperrors.ErrDuplicate)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	userID := uuid.NewString()
	auditActor := creatorUserID
	if auditActor == "" {
		auditActor = userID
	}
	user := domain.User{
		UserID:       userID,
		Username:     req.Username,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		Role:         domain.UserRole(req.Role),
		Email:        req.Email,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     auditActor,
			LastUpdatedAt: now,
			LastUpdatedBy: auditActor,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to save user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User created", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID %s: %w", userID, err)
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.userRepo.FindUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Users may edit themselves; role changes and edits of others need admin.
	if requestingUserID != userID || req.Role != nil {
		if err := s.requireAdmin(ctx, requestingUserID); err != nil {
			logger.Warn("Authorization failed for UpdateUser", slog.String("requester_id", requestingUserID), slog.String("target_id", userID))
			return nil, err
		}
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user for update: %w", err)
	}

	updated := false
	if req.FullName != nil {
		user.FullName = *req.FullName
		updated = true
	}
	if req.Email != nil {
		user.Email = *req.Email
		updated = true
	}
	if req.Role != nil {
		user.Role = domain.UserRole(*req.Role)
		updated = true
	}
	if !updated {
		return user, nil
	}

	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = requestingUserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		logger.Error("Failed to update user", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logger.Info("User updated", slog.String("user_id", userID))
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.requireAdmin(ctx, requestingUserID); err != nil {
		logger.Warn("Authorization failed for DeleteUser", slog.String("requester_id", requestingUserID))
		return err
	}
	if userID == requestingUserID {
		return fmt.Errorf("%w: cannot delete own account", apperrors.ErrValidation)
	}

	if err := s.userRepo.MarkUserDeleted(ctx, userID, time.Now().UTC(), requestingUserID); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}

	logger.Info("User deleted", slog.String("user_id", userID))
	return nil
}

func (s *userService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to authenticate user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

// EnsureSeedAdmin creates the configured administrator account when absent,
// so a fresh deployment is immediately usable.
func (s *userService) EnsureSeedAdmin(ctx context.Context) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	_, err := s.userRepo.FindUserByUsername(ctx, s.seedAdmin.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check for seed admin: %w", err)
	}

	passwordHash, err := utils.HashPassword(s.seedAdmin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	now := time.Now().UTC()
	userID := uuid.NewString()
	admin := domain.User{
		UserID:       userID,
		Username:     s.seedAdmin.Username,
		PasswordHash: passwordHash,
		FullName:     s.seedAdmin.FullName,
		Role:         domain.RoleAdmin,
		Email:        s.seedAdmin.Email,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, admin); err != nil {
		// A concurrent boot may have created it first.
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("failed to create seed admin: %w", err)
	}

	logger.Info("Seed administrator created", slog.String("username", s.seedAdmin.Username))
	return nil
}
