package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"time"

	"labqc/internal/model"
	"labqc/internal/repository"
	"labqc/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- DTOs ---

type RegisterUserRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	FullName   string `json:"full_name" binding:"required"`
	Password   string `json:"password" binding:"required,min=6"`
	Role       string `json:"role" binding:"required"`
	Department string `json:"department" binding:"required"`
}

type LoginRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// UpdateProfileRequest patches the caller's own record; nil fields are
// left unchanged.
type UpdateProfileRequest struct {
	FullName   *string `json:"full_name"`
	Department *string `json:"department"`
}

// ResetPasswordResponse returns the freshly issued credential. Delivery
// (email) is outside this service.
type ResetPasswordResponse struct {
	EmployeeID  string `json:"employee_id"`
	NewPassword string `json:"new_password"`
}

// --- Interface ---

type UserService interface {
	Register(ctx context.Context, req RegisterUserRequest, caller model.Identity) (*model.User, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	GetByEmployeeID(ctx context.Context, employeeID string, caller model.Identity) (*model.User, error)
	List(ctx context.Context, caller model.Identity, page, limit int) ([]model.User, int64, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest, caller model.Identity) (*model.User, error)
	ChangeRole(ctx context.Context, userID uuid.UUID, newRole string, caller model.Identity) (*model.User, error)
	Delete(ctx context.Context, userID uuid.UUID, caller model.Identity) error
	ResetPassword(ctx context.Context, employeeID string) (*ResetPasswordResponse, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

// --- Implementation ---

// Register creates a new user account. Only the admin tier registers users
// directly; everyone else goes through an access request first.
func (s *userService) Register(ctx context.Context, req RegisterUserRequest, caller model.Identity) (*model.User, error) {
	if !caller.Role.In(model.AdminTier) {
		return nil, apperror.Forbidden("role %s may not register users", caller.Role)
	}

	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, apperror.Validation("unknown role %q", req.Role)
	}
	// Only a full admin may mint elevated accounts.
	if caller.Role != model.RoleAdmin && (role == model.RoleAdmin || role == model.RoleQCManager) {
		return nil, apperror.Forbidden("only an admin may assign the %s role", role)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		EmployeeID: req.EmployeeID,
		FullName:   req.FullName,
		Password:   string(hashed),
		Role:       role,
		Department: req.Department,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("employee id %s already registered", req.EmployeeID)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.users.GetByEmployeeID(ctx, req.EmployeeID)
	if err != nil {
		return nil, apperror.Forbidden("invalid employee id or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.Forbidden("invalid employee id or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":         user.ID.String(),
		"employee_id": user.EmployeeID,
		"role":        string(user.Role),
		"department":  user.Department,
		"exp":         time.Now().Add(24 * time.Hour).Unix(),
	})

	// Same fallback strategy as the middleware
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &TokenResponse{Token: tokenString}, nil
}

func (s *userService) GetByEmployeeID(ctx context.Context, employeeID string, caller model.Identity) (*model.User, error) {
	user, err := s.users.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %s not found", employeeID)
		}
		return nil, err
	}
	if !caller.Role.In(model.AdminTier) && caller.EmployeeID != employeeID {
		return nil, apperror.Forbidden("not authorized to view user %s", employeeID)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, caller model.Identity, page, limit int) ([]model.User, int64, error) {
	if !caller.Role.In(model.AdminTier) {
		return nil, 0, apperror.Forbidden("role %s may not list users", caller.Role)
	}
	return s.users.List(ctx, page, limit)
}

func (s *userService) UpdateProfile(ctx context.Context, req UpdateProfileRequest, caller model.Identity) (*model.User, error) {
	user, err := s.users.GetByID(ctx, caller.UserID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %s not found", caller.UserID)
		}
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Department != nil {
		user.Department = *req.Department
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeRole mutates a user's role. A qc_manager may manage the lower
// tiers but can neither elevate anyone to admin or qc_manager nor touch an
// existing admin; only an admin can.
func (s *userService) ChangeRole(ctx context.Context, userID uuid.UUID, newRole string, caller model.Identity) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %s not found", userID)
		}
		return nil, err
	}

	if !caller.Role.In(model.AdminTier) {
		return nil, apperror.Forbidden("role %s may not change roles", caller.Role)
	}

	role := model.Role(newRole)
	if !role.Valid() {
		return nil, apperror.Validation("unknown role %q", newRole)
	}
	if caller.Role != model.RoleAdmin {
		if role == model.RoleAdmin || role == model.RoleQCManager {
			return nil, apperror.Forbidden("only an admin may assign the %s role", role)
		}
		if user.Role == model.RoleAdmin {
			return nil, apperror.Forbidden("only an admin may change an admin's role")
		}
	}

	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user account. Admin accounts are never deleted, and a
// caller cannot delete themselves.
func (s *userService) Delete(ctx context.Context, userID uuid.UUID, caller model.Identity) error {
	user, err := s.users.GetByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user %s not found", userID)
		}
		return err
	}

	if !caller.Role.In(model.AdminTier) {
		return apperror.Forbidden("role %s may not delete users", caller.Role)
	}
	if user.Role == model.RoleAdmin {
		return apperror.Forbidden("admin accounts cannot be deleted")
	}
	if user.ID == caller.UserID {
		return apperror.Forbidden("cannot delete your own account")
	}

	return s.users.Delete(ctx, userID.String())
}

// ResetPassword issues a fresh random credential and invalidates the old
// one in a single update.
func (s *userService) ResetPassword(ctx context.Context, employeeID string) (*ResetPasswordResponse, error) {
	user, err := s.users.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %s not found", employeeID)
		}
		return nil, err
	}

	newPassword, err := generatePassword(12)
	if err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user.Password = string(hashed)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return &ResetPasswordResponse{EmployeeID: user.EmployeeID, NewPassword: newPassword}, nil
}

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generatePassword(length int) (string, error) {
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordCharset))))
		if err != nil {
			return "", err
		}
		buf[i] = passwordCharset[n.Int64()]
	}
	return string(buf), nil
}
