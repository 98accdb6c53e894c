package handlers

import (
	"errors"
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"langswap/internal/repositories"
	"langswap/internal/services"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type signupBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
}

type loginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type onboardingBody struct {
	FullName         string `json:"full_name" binding:"required"`
	Bio              string `json:"bio" binding:"required"`
	NativeLanguage   string `json:"native_language" binding:"required"`
	LearningLanguage string `json:"learning_language" binding:"required"`
	Location         string `json:"location" binding:"required"`
	ProfilePic       string `json:"profile_pic"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var body signupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := h.users.Signup(c.Request.Context(), body.Email, body.Password, body.FullName)
	if err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			c.JSON(nethttp.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	c.JSON(nethttp.StatusCreated, gin.H{"token": token, "user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{"token": token, "user": user})
}

// Logout exists for client symmetry; tokens are stateless so there is
// nothing to revoke server-side.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(nethttp.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) CompleteOnboarding(c *gin.Context) {
	userIDVal, _ := c.Get("userID")
	userID := userIDVal.(int64)

	var body onboardingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(nethttp.StatusBadRequest, gin.H{"error": "all onboarding fields are required"})
		return
	}

	user, err := h.users.CompleteOnboarding(c.Request.Context(), userID, repositories.OnboardingUpdate{
		FullName:         body.FullName,
		Bio:              body.Bio,
		NativeLanguage:   body.NativeLanguage,
		LearningLanguage: body.LearningLanguage,
		Location:         body.Location,
		ProfilePic:       body.ProfilePic,
	})
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to complete onboarding"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	userIDVal, _ := c.Get("userID")
	userID := userIDVal.(int64)

	user, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(nethttp.StatusInternalServerError, gin.H{"error": "failed to fetch user"})
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{"user": user})
}
