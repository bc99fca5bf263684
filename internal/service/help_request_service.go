package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"tasktracker/internal/model"
	"tasktracker/internal/policy"
	"tasktracker/internal/repository"
)

// HelpRequestService routes questions from members to one chosen admin.
type HelpRequestService struct {
	requests repository.HelpRequestRepositoryInterface
	members  repository.MemberRepositoryInterface
	tasks    repository.TaskRepositoryInterface
	options
}

func NewHelpRequestService(
	requests repository.HelpRequestRepositoryInterface,
	members repository.MemberRepositoryInterface,
	tasks repository.TaskRepositoryInterface,
	opts ...Option,
) *HelpRequestService {
	return &HelpRequestService{
		requests: requests,
		members:  members,
		tasks:    tasks,
		options:  buildOptions(opts),
	}
}

type CreateHelpRequestInput struct {
	AdminID  string
	TaskID   *string
	Question string
}

// ListAdmins returns every member who can receive a help request.
func (s *HelpRequestService) ListAdmins(ctx context.Context, actor *model.Member) ([]model.Member, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	admins, err := s.members.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}

	eligible := admins[:0]
	for _, m := range admins {
		if policy.IsAdmin(&m) {
			eligible = append(eligible, m)
		}
	}
	return eligible, nil
}

// Create opens a help request addressed to the admin named in the input. The
// admin is checked against their role at creation time only.
func (s *HelpRequestService) Create(ctx context.Context, actor *model.Member, in CreateHelpRequestInput) (*model.HelpRequest, error) {
	question := strings.TrimSpace(in.Question)

	verr := &ValidationError{}
	if strings.TrimSpace(in.AdminID) == "" {
		verr.Add("admin_id", "can't be blank")
	}
	if question == "" {
		verr.Add("question", "can't be blank")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	adminID, err := uuid.Parse(strings.TrimSpace(in.AdminID))
	if err != nil {
		return nil, ErrAdminNotFound
	}
	admin, err := s.members.FindAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}

	req := &model.HelpRequest{
		ID:          uuid.New(),
		RequesterID: actor.ID,
		AdminID:     admin.ID,
		Question:    question,
		Status:      model.HelpRequestOpen,
	}

	if in.TaskID != nil && strings.TrimSpace(*in.TaskID) != "" {
		taskID, err := uuid.Parse(strings.TrimSpace(*in.TaskID))
		if err != nil {
			return nil, ErrTaskNotFound
		}
		task, err := s.tasks.GetByID(ctx, taskID)
		if err != nil {
			return nil, mapTaskError(err)
		}
		if task.IsOverdue(s.now()) {
			return nil, ErrOverdueTask
		}
		req.TaskID = &task.ID
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return s.load(ctx, req.ID)
}

// List shows an admin the requests addressed to them and everyone else the
// requests they raised, newest first.
func (s *HelpRequestService) List(ctx context.Context, actor *model.Member) ([]model.HelpRequest, error) {
	scope := repository.HelpRequestScope{RequesterID: actor.ID}
	if policy.IsAdmin(actor) {
		scope = repository.HelpRequestScope{AdminID: actor.ID}
	}
	return s.requests.List(ctx, scope)
}

// Answer stores or overwrites the answer and moves the request to answered.
// Only the admin the request is bound to may answer it.
func (s *HelpRequestService) Answer(ctx context.Context, actor *model.Member, id uuid.UUID, text string) (*model.HelpRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAnswerHelpRequest(actor, req) {
		return nil, ErrForbidden
	}

	text = strings.TrimSpace(text)
	if text == "" {
		verr := &ValidationError{}
		verr.Add("answer", "can't be blank")
		return nil, verr
	}

	if _, err := s.requests.SaveAnswer(ctx, req.ID, actor.ID, text); err != nil {
		if errors.Is(err, repository.ErrHelpRequestNotFound) {
			return nil, ErrHelpRequestNotFound
		}
		return nil, err
	}
	return s.load(ctx, req.ID)
}

func (s *HelpRequestService) load(ctx context.Context, id uuid.UUID) (*model.HelpRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHelpRequestNotFound) {
			return nil, ErrHelpRequestNotFound
		}
		return nil, err
	}
	return req, nil
}
