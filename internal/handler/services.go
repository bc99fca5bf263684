package handler

import (
	"context"

	"github.com/google/uuid"

	"tasktracker/internal/model"
	"tasktracker/internal/service"
)

type MemberService interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.Member, error)
	Create(ctx context.Context, actor *model.Member, in service.RegisterInput) (*model.Member, error)
	List(ctx context.Context, actor *model.Member, role string, page service.PageRequest) ([]model.Member, service.Pagination, error)
	Get(ctx context.Context, actor *model.Member, id uuid.UUID) (*model.Member, error)
	Update(ctx context.Context, actor *model.Member, id uuid.UUID, in service.UpdateMemberInput) (*model.Member, error)
	Delete(ctx context.Context, actor *model.Member, id uuid.UUID) error
}

type LoginService interface {
	Login(ctx context.Context, email, password string) (string, *model.Member, error)
}

type TaskService interface {
	List(ctx context.Context, actor *model.Member, in service.TaskListInput) ([]model.Task, service.Pagination, error)
	Create(ctx context.Context, actor *model.Member, in service.CreateTaskInput) (*model.Task, error)
	Get(ctx context.Context, actor *model.Member, id uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, actor *model.Member, id uuid.UUID, in service.UpdateTaskInput) (*model.Task, error)
	Delete(ctx context.Context, actor *model.Member, id uuid.UUID) error
	Assign(ctx context.Context, actor *model.Member, id uuid.UUID, memberIDs []string) (*service.AssignResult, error)
	Unassign(ctx context.Context, actor *model.Member, id uuid.UUID, memberID string) error
	Assignments(ctx context.Context, actor *model.Member, id uuid.UUID) ([]model.TaskAssignment, error)
	Complete(ctx context.Context, actor *model.Member, id uuid.UUID, comment *string) (*service.CompletionResult, error)
}

type HelpRequestService interface {
	ListAdmins(ctx context.Context, actor *model.Member) ([]model.Member, error)
	Create(ctx context.Context, actor *model.Member, in service.CreateHelpRequestInput) (*model.HelpRequest, error)
	List(ctx context.Context, actor *model.Member) ([]model.HelpRequest, error)
	Answer(ctx context.Context, actor *model.Member, id uuid.UUID, text string) (*model.HelpRequest, error)
}

var (
	_ MemberService      = (*service.MemberService)(nil)
	_ LoginService       = (*service.AuthService)(nil)
	_ TaskService        = (*service.TaskService)(nil)
	_ HelpRequestService = (*service.HelpRequestService)(nil)
)
