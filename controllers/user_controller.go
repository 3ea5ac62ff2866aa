package controllers

import (
	"net/http"

	"github.com/campuscarry/campuscarry-api/middleware"
	"github.com/campuscarry/campuscarry-api/models"
	"github.com/campuscarry/campuscarry-api/services"
	"github.com/gin-gonic/gin"
)

// CreateUserRequest represents the request body for creating the caller's profile.
// Name and email may be omitted when the account comes from Auth0.
type CreateUserRequest struct {
	Name           string                `json:"name"`
	Email          string                `json:"email" binding:"omitempty,email"`
	Phone          *string               `json:"phone"`
	Campus         *string               `json:"campus"`
	RolePreference models.RolePreference `json:"role_preference" binding:"omitempty,role_preference"`
}

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Name           *string                `json:"name"`
	Phone          *string                `json:"phone"`
	Campus         *string                `json:"campus"`
	RolePreference *models.RolePreference `json:"role_preference" binding:"omitempty,role_preference"`
}

type UserController struct {
	users *services.UserService
	auth0 *services.Auth0Service
}

// NewUserController wires the profile endpoints. auth0 may be nil when tokens are not issued by Auth0.
func NewUserController(users *services.UserService, auth0 *services.Auth0Service) *UserController {
	return &UserController{users: users, auth0: auth0}
}

// CreateUser handles POST /api/v1/users - links a new profile to the token subject
func (h *UserController) CreateUser(c *gin.Context) {
	subject, err := middleware.GetUserID(c)
	if err != nil {
		abortWithError(c, services.CodeUnauthorized, "Could not extract user ID from token")
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if (req.Name == "" || req.Email == "") && h.auth0 != nil {
		accessToken, err := middleware.GetAccessToken(c)
		if err != nil {
			abortWithError(c, services.CodeUnauthorized, "Access token not found")
			return
		}
		info, err := h.auth0.GetUserInfo(c.Request.Context(), accessToken)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"error": "Failed to fetch user information from Auth0",
				"code":  services.CodeUnexpected,
			})
			return
		}
		if req.Name == "" {
			req.Name = info.Name
		}
		if req.Email == "" {
			req.Email = info.Email
		}
	}

	user, err := h.users.Create(c.Request.Context(), subject, services.CreateUserInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Campus:         req.Campus,
		RolePreference: req.RolePreference,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetMyProfile handles GET /api/v1/users/me
func (h *UserController) GetMyProfile(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/users/me
func (h *UserController) UpdateMyProfile(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	updated, err := h.users.Update(c.Request.Context(), user.ID, services.UpdateUserInput{
		Name:           req.Name,
		Phone:          req.Phone,
		Campus:         req.Campus,
		RolePreference: req.RolePreference,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetUser handles GET /api/v1/users/:id - public summary
func (h *UserController) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
