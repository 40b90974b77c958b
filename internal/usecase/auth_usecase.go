package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pharmacare-backend/internal/domain"
	"pharmacare-backend/pkg/logger"
	"pharmacare-backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase struct {
	userRepo    domain.UserRepository
	tokenExpiry time.Duration
}

func NewAuthUsecase(userRepo domain.UserRepository, tokenExpiry time.Duration) *AuthUsecase {
	return &AuthUsecase{userRepo: userRepo, tokenExpiry: tokenExpiry}
}

type RegisterInput struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	ShopName        string `json:"shopName"`
	Mobile          string `json:"mobile"`
	Email           string `json:"email"`
	Address         string `json:"address"`
}

// isStrongPassword checks length plus one of each character class. Go's
// regexp has no lookaheads, so the classes are scanned directly.
func isStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(",?@#.", r):
			special = true
		}
	}
	return lower && upper && digit && special
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.ShopName = strings.TrimSpace(in.ShopName)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)

	if in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidRequest)
	}
	if in.Password != in.ConfirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", domain.ErrInvalidRequest)
	}
	if !isStrongPassword(in.Password) {
		return nil, domain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:       utils.GenerateUUID(),
		Username: in.Username,
		Password: string(hash),
		ShopName: in.ShopName,
		Mobile:   in.Mobile,
		Email:    in.Email,
		Address:  in.Address,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Get().Info().Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Login verifies credentials and returns the user plus a signed access token.
// Unknown username and wrong password both map to ErrInvalidCredentials so
// the response does not leak which one failed.
func (u *AuthUsecase) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", fmt.Errorf("%w: username and password are required", domain.ErrInvalidRequest)
	}

	user, err := u.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.ID, user.Username, u.tokenExpiry)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID string) (*domain.User, error) {
	return u.userRepo.GetByID(ctx, userID)
}

func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID, shopName, mobile, email, address string) (*domain.User, error) {
	return u.userRepo.UpdateProfile(ctx, userID,
		strings.TrimSpace(shopName), strings.TrimSpace(mobile),
		strings.TrimSpace(email), strings.TrimSpace(address))
}
