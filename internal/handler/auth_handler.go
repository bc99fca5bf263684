package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tasktracker/internal/model"
	"tasktracker/internal/service"
)

type AuthHandler struct {
	members MemberService
	auth    LoginService
}

func NewAuthHandler(members MemberService, auth LoginService) *AuthHandler {
	return &AuthHandler{members: members, auth: auth}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	RoleName string `json:"role_name" binding:"omitempty,oneof=admin manager user"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthUser struct {
	ID    uuid.UUID      `json:"id"`
	Email string         `json:"email"`
	Name  string         `json:"name"`
	Role  model.RoleName `json:"role"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// Register godoc
// @Summary      Register a member
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Member details"
// @Success      201 {object} MemberResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	member, err := h.members.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		RoleName: req.RoleName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, memberResponse(member))
}

// Login godoc
// @Summary      Log in and receive a bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} AuthResponse
// @Failure      401 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, member, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User: AuthUser{
			ID:    member.ID,
			Email: member.Email,
			Name:  member.Name,
			Role:  member.Role.Name,
		},
	})
}

// Logout godoc
// @Summary      Log out
// @Description  Tokens are stateless; the client discards its copy.
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} MessageResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}
