package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"langswap/internal/models"
	"langswap/internal/repositories"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const tokenTTL = 7 * 24 * time.Hour

// UserService owns signup, login, and onboarding of profiles.
type UserService struct {
	users     repositories.UserRepository
	jwtSecret []byte
}

func NewUserService(users repositories.UserRepository, jwtSecret string) *UserService {
	return &UserService{users: users, jwtSecret: []byte(jwtSecret)}
}

func (s *UserService) Signup(ctx context.Context, email, password, fullName string) (*models.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	// New accounts get a placeholder avatar; onboarding can replace it.
	idx := rand.Intn(100) + 1
	avatar := fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", idx)

	user, err := s.users.Create(ctx, email, string(hash), fullName, avatar)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) CompleteOnboarding(ctx context.Context, userID int64, update repositories.OnboardingUpdate) (*models.User, error) {
	return s.users.CompleteOnboarding(ctx, userID, update)
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) issueToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(tokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
