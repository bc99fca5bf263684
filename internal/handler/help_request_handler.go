package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/service"
)

type HelpRequestHandler struct {
	requests HelpRequestService
}

func NewHelpRequestHandler(requests HelpRequestService) *HelpRequestHandler {
	return &HelpRequestHandler{requests: requests}
}

type CreateHelpRequestRequest struct {
	AdminID  string  `json:"admin_id" binding:"required"`
	TaskID   *string `json:"task_id"`
	Question string  `json:"question" binding:"required"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type AdminsResponse struct {
	Admins []MemberContact `json:"admins"`
}

type HelpRequestListResponse struct {
	HelpRequests []HelpRequestResponse `json:"help_requests"`
}

// Admins godoc
// @Summary      List admins who can receive help requests
// @Tags         Help Requests
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} AdminsResponse
// @Router       /api/help_requests/admins [get]
func (h *HelpRequestHandler) Admins(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}

	admins, err := h.requests.ListAdmins(c.Request.Context(), me)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := AdminsResponse{Admins: make([]MemberContact, 0, len(admins))}
	for _, a := range admins {
		resp.Admins = append(resp.Admins, contact(a))
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Ask an admin for help
// @Tags         Help Requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateHelpRequestRequest true "Help request"
// @Success      201 {object} HelpRequestResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /api/help_requests [post]
func (h *HelpRequestHandler) Create(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}

	var req CreateHelpRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.requests.Create(c.Request.Context(), me, service.CreateHelpRequestInput{
		AdminID:  req.AdminID,
		TaskID:   req.TaskID,
		Question: req.Question,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, helpRequestResponse(created))
}

// List godoc
// @Summary      List help requests addressed to or raised by the caller
// @Tags         Help Requests
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} HelpRequestListResponse
// @Router       /api/help_requests [get]
func (h *HelpRequestHandler) List(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}

	requests, err := h.requests.List(c.Request.Context(), me)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := HelpRequestListResponse{HelpRequests: make([]HelpRequestResponse, 0, len(requests))}
	for i := range requests {
		resp.HelpRequests = append(resp.HelpRequests, helpRequestResponse(&requests[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Answer godoc
// @Summary      Answer a help request (bound admin only)
// @Tags         Help Requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Help request ID"
// @Param        request body AnswerRequest true "Answer"
// @Success      200 {object} HelpRequestResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/help_requests/{id}/answer [post]
func (h *HelpRequestHandler) Answer(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", service.ErrHelpRequestNotFound)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	answered, err := h.requests.Answer(c.Request.Context(), me, id, req.Answer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, helpRequestResponse(answered))
}
