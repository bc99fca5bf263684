package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/service"
)

type MemberHandler struct {
	members MemberService
}

func NewMemberHandler(members MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

type UpdateMemberRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Name     *string `json:"name"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// List godoc
// @Summary      List members
// @Tags         Members
// @Produce      json
// @Security     BearerAuth
// @Param        role query string false "Role filter" Enums(admin, manager, user)
// @Param        page query int false "Page number"
// @Param        per_page query int false "Page size (max 100)"
// @Success      200 {object} MemberListResponse
// @Failure      403 {object} ErrorResponse
// @Router       /api/members [get]
func (h *MemberHandler) List(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}

	members, page, err := h.members.List(c.Request.Context(), me, c.Query("role"), pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := MemberListResponse{Members: make([]MemberResponse, 0, len(members)), Pagination: page}
	for i := range members {
		resp.Members = append(resp.Members, memberResponse(&members[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Show a member
// @Tags         Members
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Member ID"
// @Success      200 {object} MemberResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", service.ErrMemberNotFound)
	if !ok {
		return
	}

	member, err := h.members.Get(c.Request.Context(), me, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, memberResponse(member))
}

// Create godoc
// @Summary      Create a member (admin only)
// @Tags         Members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body RegisterRequest true "Member details"
// @Success      201 {object} MemberResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/members [post]
func (h *MemberHandler) Create(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	member, err := h.members.Create(c.Request.Context(), me, service.RegisterInput{
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

// Update godoc
// @Summary      Update a member
// @Tags         Members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Member ID"
// @Param        request body UpdateMemberRequest true "Fields to change"
// @Success      200 {object} MemberResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/members/{id} [put]
func (h *MemberHandler) Update(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", service.ErrMemberNotFound)
	if !ok {
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	member, err := h.members.Update(c.Request.Context(), me, id, service.UpdateMemberInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, memberResponse(member))
}

// Delete godoc
// @Summary      Delete a member and everything they own (admin only)
// @Tags         Members
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Member ID"
// @Success      200 {object} MessageResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/members/{id} [delete]
func (h *MemberHandler) Delete(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", service.ErrMemberNotFound)
	if !ok {
		return
	}

	if err := h.members.Delete(c.Request.Context(), me, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Member deleted successfully"})
}
