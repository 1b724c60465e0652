package user

import (
	"errors"
	"fmt"
	"time"

	userRepo "salonbook/database/repository/user"
	"salonbook/models"
	"salonbook/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on a failed login. Deliberately vague.
var ErrInvalidCredentials = errors.New("invalid email or password")

// DefaultUserService implements UserService.
type DefaultUserService struct {
	Repo userRepo.UserRepository
}

// Register creates an account and issues a token. Unrecognized roles fall
// back to customer; the HTTP layer strips privileged roles from
// self-registration before calling here.
func (svc *DefaultUserService) Register(req models.RegisterRequest) (*models.AuthResponse, error) {
	if _, err := svc.Repo.GetByEmail(req.Email); err == nil {
		return nil, fmt.Errorf("account with email %s already exists", req.Email)
	} else if !errors.Is(err, userRepo.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role != models.RoleStylist && role != models.RoleAdmin {
		role = models.RoleCustomer
	}

	u := &models.User{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Phone:    req.Phone,
		Role:     role,
		IsActive: true,
	}
	if role == models.RoleStylist {
		u.StylistInfo = req.StylistInfo
	}

	if err := svc.Repo.Create(u); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	token, err := utils.GenerateToken(u.ID, u.Email, 72*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: u}, nil
}

// Authenticate verifies credentials and issues a token.
func (svc *DefaultUserService) Authenticate(email, password string) (*models.AuthResponse, error) {
	u, err := svc.Repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(u.ID, u.Email, 72*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: u}, nil
}

// GetUserByID fetches an account by id.
func (svc *DefaultUserService) GetUserByID(id string) (*models.User, error) {
	return svc.Repo.GetByID(id)
}

// ListStylists returns active stylist profiles.
func (svc *DefaultUserService) ListStylists() ([]models.User, error) {
	return svc.Repo.ListStylists()
}
