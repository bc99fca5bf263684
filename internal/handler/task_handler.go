package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/model"
	"tasktracker/internal/service"
)

type TaskHandler struct {
	tasks TaskService
}

func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date"`
}

// UpdateTaskRequest distinguishes an absent field from an explicit null,
// which clears the field.
type UpdateTaskRequest struct {
	Title       model.Optional[string] `json:"title" swaggertype:"string"`
	Description model.Optional[string] `json:"description" swaggertype:"string"`
	Status      model.Optional[string] `json:"status" swaggertype:"string" enums:"pending,in_progress"`
	Priority    model.Optional[string] `json:"priority" swaggertype:"string" enums:"low,medium,high"`
	DueDate     model.Optional[string] `json:"due_date" swaggertype:"string" format:"date"`
}

type AssignRequest struct {
	MemberIDs []string `json:"member_ids"`
}

type CompleteRequest struct {
	Comment *string `json:"comment"`
}

// List godoc
// @Summary      List tasks the caller created or is assigned to
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Status filter" Enums(pending, in_progress, completed)
// @Param        priority query string false "Priority filter" Enums(low, medium, high)
// @Param        sort query string false "Sort field, prefix with - for descending"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Page size (max 100)"
// @Success      200 {object} TaskListResponse
// @Failure      422 {object} ErrorResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}

	tasks, page, err := h.tasks.List(c.Request.Context(), me, service.TaskListInput{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Sort:     c.Query("sort"),
		Page:     pageRequest(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := TaskListResponse{Tasks: make([]TaskSummary, 0, len(tasks)), Pagination: page}
	for i := range tasks {
		resp.Tasks = append(resp.Tasks, taskSummary(&tasks[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateTaskRequest true "Task"
// @Success      201 {object} TaskDetail
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	in := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			invalidField(c, "due_date", "is not a valid date")
			return
		}
		in.DueDate = &due
	}

	task, err := h.tasks.Create(c.Request.Context(), me, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskDetail(task))
}

// Get godoc
// @Summary      Show a task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} TaskDetail
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", service.ErrTaskNotFound)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), me, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskDetail(task))
}

// Update godoc
// @Summary      Update a task (creator or admin)
// @Description  status moves between pending and in_progress only; completed is reached through assignee completion.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Param        request body UpdateTaskRequest true "Fields to change"
// @Success      200 {object} TaskDetail
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", service.ErrTaskNotFound)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	in := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.DueDate.Set {
		in.DueDate = model.Null[time.Time]()
		if req.DueDate.Value != nil && *req.DueDate.Value != "" {
			due, err := parseDate(*req.DueDate.Value)
			if err != nil {
				invalidField(c, "due_date", "is not a valid date")
				return
			}
			in.DueDate = model.Some(due)
		}
	}

	task, err := h.tasks.Update(c.Request.Context(), me, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskDetail(task))
}

// Delete godoc
// @Summary      Delete a task with its assignments and help requests
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} MessageResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", service.ErrTaskNotFound)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), me, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

// Assign godoc
// @Summary      Assign members to a task
// @Description  Unknown member ids are skipped and existing assignments are left as they are.
// @Tags         Assignments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Param        request body AssignRequest true "Member ids"
// @Success      200 {object} AssignResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/tasks/{id}/assign [post]
func (h *TaskHandler) Assign(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", service.ErrTaskNotFound)
	if !ok {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.tasks.Assign(c.Request.Context(), me, id, req.MemberIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := AssignResponse{
		ID:              result.Task.ID,
		Title:           result.Task.Title,
		AssignedUsers:   assignedUsers(result.Task),
		NewlyAssigned:   result.Assigned,
		AlreadyAssigned: result.AlreadyAssigned,
		Skipped:         result.Skipped,
	}
	c.JSON(http.StatusOK, resp)
}

// Unassign godoc
// @Summary      Remove a member from a task
// @Tags         Assignments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Param        member_id path string true "Member ID"
// @Success      200 {object} MessageResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/tasks/{id}/unassign/{member_id} [delete]
func (h *TaskHandler) Unassign(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", service.ErrTaskNotFound)
	if !ok {
		return
	}

	if err := h.tasks.Unassign(c.Request.Context(), me, id, c.Param("member_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Member unassigned successfully"})
}

// Assignments godoc
// @Summary      List a task's assignees with completion state
// @Tags         Assignments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} AssignmentsResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/tasks/{id}/assignments [get]
func (h *TaskHandler) Assignments(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", service.ErrTaskNotFound)
	if !ok {
		return
	}

	assignments, err := h.tasks.Assignments(c.Request.Context(), me, id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := AssignmentsResponse{TaskID: id, AssignedUsers: make([]AssigneeResponse, 0, len(assignments))}
	for _, a := range assignments {
		resp.AssignedUsers = append(resp.AssignedUsers, AssigneeResponse{
			ID:                a.Member.ID,
			Name:              a.Member.Name,
			Email:             a.Member.Email,
			AssignedAt:        a.AssignedAt,
			CompletedAt:       a.CompletedAt,
			CompletionComment: a.CompletionComment,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Complete godoc
// @Summary      Mark the caller's assignment complete
// @Description  The task becomes completed once every assignee has completed.
// @Tags         Assignments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Param        request body CompleteRequest false "Completion comment"
// @Success      200 {object} CompletionResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", service.ErrTaskNotFound)
	if !ok {
		return
	}

	var req CompleteRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	result, err := h.tasks.Complete(c.Request.Context(), me, id, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	var resp CompletionResponse
	resp.Task = taskDetail(result.Task)
	resp.Assignment.MemberID = result.Assignment.MemberID
	resp.Assignment.CompletedAt = result.Assignment.CompletedAt
	resp.Assignment.CompletionComment = result.Assignment.CompletionComment
	c.JSON(http.StatusOK, resp)
}
