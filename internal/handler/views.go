package handler

import (
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/model"
	"tasktracker/internal/service"
)

type MemberRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type MemberContact struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type MemberResponse struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      model.RoleName `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

type MemberListResponse struct {
	Members    []MemberResponse   `json:"members"`
	Pagination service.Pagination `json:"pagination"`
}

type TaskSummary struct {
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Status        model.TaskStatus `json:"status"`
	Priority      *model.Priority  `json:"priority"`
	DueDate       *string          `json:"due_date"`
	AssignedUsers []MemberRef      `json:"assigned_users"`
}

type TaskDetail struct {
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Description   *string          `json:"description"`
	Status        model.TaskStatus `json:"status"`
	Priority      *model.Priority  `json:"priority"`
	DueDate       *string          `json:"due_date"`
	CreatedBy     MemberRef        `json:"created_by"`
	AssignedUsers []MemberRef      `json:"assigned_users"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type TaskListResponse struct {
	Tasks      []TaskSummary      `json:"tasks"`
	Pagination service.Pagination `json:"pagination"`
}

type AssignResponse struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	AssignedUsers   []MemberRef `json:"assigned_users"`
	NewlyAssigned   []uuid.UUID `json:"newly_assigned"`
	AlreadyAssigned []uuid.UUID `json:"already_assigned"`
	Skipped         []string    `json:"skipped"`
}

type AssigneeResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	AssignedAt        time.Time  `json:"assigned_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	CompletionComment *string    `json:"completion_comment"`
}

type AssignmentsResponse struct {
	TaskID        uuid.UUID          `json:"task_id"`
	AssignedUsers []AssigneeResponse `json:"assigned_users"`
}

type CompletionResponse struct {
	Task       TaskDetail `json:"task"`
	Assignment struct {
		MemberID          uuid.UUID  `json:"member_id"`
		CompletedAt       *time.Time `json:"completed_at"`
		CompletionComment *string    `json:"completion_comment"`
	} `json:"assignment"`
}

type HelpRequestResponse struct {
	ID         uuid.UUID               `json:"id"`
	Question   string                  `json:"question"`
	Status     model.HelpRequestStatus `json:"status"`
	TaskID     *uuid.UUID              `json:"task_id"`
	Requester  MemberContact           `json:"requester"`
	Admin      MemberContact           `json:"admin"`
	Answer     *string                 `json:"answer"`
	AnsweredAt *time.Time              `json:"answered_at"`
	CreatedAt  time.Time               `json:"created_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

func memberResponse(m *model.Member) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Role:      m.Role.Name,
		CreatedAt: m.CreatedAt,
	}
}

func contact(m model.Member) MemberContact {
	return MemberContact{ID: m.ID, Name: m.Name, Email: m.Email}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func assignedUsers(task *model.Task) []MemberRef {
	users := make([]MemberRef, 0, len(task.Assignments))
	for _, a := range task.Assignments {
		users = append(users, MemberRef{ID: a.Member.ID, Name: a.Member.Name})
	}
	return users
}

func taskSummary(task *model.Task) TaskSummary {
	return TaskSummary{
		ID:            task.ID,
		Title:         task.Title,
		Status:        task.Status,
		Priority:      task.Priority,
		DueDate:       formatDate(task.DueDate),
		AssignedUsers: assignedUsers(task),
	}
}

func taskDetail(task *model.Task) TaskDetail {
	return TaskDetail{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Status:        task.Status,
		Priority:      task.Priority,
		DueDate:       formatDate(task.DueDate),
		CreatedBy:     MemberRef{ID: task.Creator.ID, Name: task.Creator.Name},
		AssignedUsers: assignedUsers(task),
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

func helpRequestResponse(req *model.HelpRequest) HelpRequestResponse {
	resp := HelpRequestResponse{
		ID:        req.ID,
		Question:  req.Question,
		Status:    req.Status,
		TaskID:    req.TaskID,
		Requester: contact(req.Requester),
		Admin:     contact(req.Admin),
		CreatedAt: req.CreatedAt,
	}
	if req.Answer != nil {
		resp.Answer = &req.Answer.Answer
		resp.AnsweredAt = &req.Answer.CreatedAt
	}
	return resp
}
