package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"langswap/internal/mocks"
	"langswap/internal/models"
	"langswap/internal/repositories"
	"langswap/internal/services"
)

func setupAuthRouter(users *mocks.MockUserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(services.NewUserService(users, "test-secret"))
	r := gin.New()
	r.POST("/auth/signup", handler.Signup)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/logout", handler.Logout)
	r.POST("/auth/onboarding", func(c *gin.Context) {
		c.Set("userID", int64(1))
		handler.CompleteOnboarding(c)
	})
	return r
}

func TestSignupInvalidBody(t *testing.T) {
	router := setupAuthRouter(new(mocks.MockUserRepository))

	body := bytes.NewBufferString(`{"email":"not-an-email","password":"short","full_name":""}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupSuccessReturnsToken(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	router := setupAuthRouter(mockUsers)

	mockUsers.On("Create", mock.Anything, "ana@example.com", mock.Anything, "Ana", mock.Anything).
		Return(&models.User{ID: 42, Email: "ana@example.com", FullName: "Ana"}, nil).Once()

	body := bytes.NewBufferString(`{"email":"ana@example.com","password":"hunter22","full_name":"Ana"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, int64(42), resp.User.ID)

	mockUsers.AssertExpectations(t)
}

func TestSignupDuplicateEmail(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	router := setupAuthRouter(mockUsers)

	mockUsers.On("Create", mock.Anything, "ana@example.com", mock.Anything, "Ana", mock.Anything).
		Return((*models.User)(nil), repositories.ErrEmailTaken).Once()

	body := bytes.NewBufferString(`{"email":"ana@example.com","password":"hunter22","full_name":"Ana"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	router := setupAuthRouter(mockUsers)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)
	mockUsers.On("GetByEmail", mock.Anything, "ana@example.com").
		Return(&models.User{ID: 42, Email: "ana@example.com", PasswordHash: string(hash)}, nil).Once()

	body := bytes.NewBufferString(`{"email":"ana@example.com","password":"wrong-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	mockUsers.AssertExpectations(t)
}

func TestLoginSuccess(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	router := setupAuthRouter(mockUsers)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)
	mockUsers.On("GetByEmail", mock.Anything, "ana@example.com").
		Return(&models.User{ID: 42, Email: "ana@example.com", PasswordHash: string(hash)}, nil).Once()

	body := bytes.NewBufferString(`{"email":"ana@example.com","password":"correct-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)

	mockUsers.AssertExpectations(t)
}

func TestOnboardingMissingFields(t *testing.T) {
	router := setupAuthRouter(new(mocks.MockUserRepository))

	body := bytes.NewBufferString(`{"full_name":"Ana","bio":""}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/onboarding", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOnboardingSuccess(t *testing.T) {
	mockUsers := new(mocks.MockUserRepository)
	router := setupAuthRouter(mockUsers)

	update := repositories.OnboardingUpdate{
		FullName:         "Ana",
		Bio:              "learning spanish",
		NativeLanguage:   "english",
		LearningLanguage: "spanish",
		Location:         "Lisbon",
	}
	mockUsers.On("CompleteOnboarding", mock.Anything, int64(1), update).
		Return(&models.User{ID: 1, FullName: "Ana", IsOnboarded: true}, nil).Once()

	body := bytes.NewBufferString(`{"full_name":"Ana","bio":"learning spanish","native_language":"english","learning_language":"spanish","location":"Lisbon"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/onboarding", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.True(t, resp.User.IsOnboarded)

	mockUsers.AssertExpectations(t)
}
