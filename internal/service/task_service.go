package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/model"
	"tasktracker/internal/policy"
	"tasktracker/internal/repository"
)

// TaskService owns task CRUD, assignment and the completion state machine.
type TaskService struct {
	tasks       repository.TaskRepositoryInterface
	assignments repository.AssignmentRepositoryInterface
	members     repository.MemberRepositoryInterface
	options
}

func NewTaskService(
	tasks repository.TaskRepositoryInterface,
	assignments repository.AssignmentRepositoryInterface,
	members repository.MemberRepositoryInterface,
	opts ...Option,
) *TaskService {
	return &TaskService{
		tasks:       tasks,
		assignments: assignments,
		members:     members,
		options:     buildOptions(opts),
	}
}

type TaskListInput struct {
	Status   string
	Priority string
	Sort     string
	Page     PageRequest
}

type CreateTaskInput struct {
	Title       string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
}

// UpdateTaskInput carries only the fields present in the request. A present
// field with a nil value clears it.
type UpdateTaskInput struct {
	Title       model.Optional[string]
	Description model.Optional[string]
	Status      model.Optional[string]
	Priority    model.Optional[string]
	DueDate     model.Optional[time.Time]
}

// AssignResult reports what happened to each requested member id.
type AssignResult struct {
	Task            *model.Task
	Assigned        []uuid.UUID
	AlreadyAssigned []uuid.UUID
	Skipped         []string
}

type CompletionResult struct {
	Task       *model.Task
	Assignment *model.TaskAssignment
}

// List returns the tasks the actor created or is assigned to.
func (s *TaskService) List(ctx context.Context, actor *model.Member, in TaskListInput) ([]model.Task, Pagination, error) {
	verr := &ValidationError{}
	if in.Status != "" && !model.TaskStatus(in.Status).Valid() {
		verr.Add("status", "is not included in the list")
	}
	if in.Priority != "" && !model.Priority(in.Priority).Valid() {
		verr.Add("priority", "is not included in the list")
	}
	order, ok := repository.TaskOrder(in.Sort)
	if !ok {
		verr.Add("sort", "is not a sortable field")
	}
	if err := verr.Err(); err != nil {
		return nil, Pagination{}, err
	}

	page := in.Page.normalize(DefaultTaskPerPage)
	tasks, total, err := s.tasks.ListVisible(ctx, actor.ID, repository.TaskFilter{
		Status:   model.TaskStatus(in.Status),
		Priority: model.Priority(in.Priority),
		Order:    order,
		Page:     page.query(),
	})
	if err != nil {
		return nil, Pagination{}, err
	}
	return tasks, paginate(page, total), nil
}

func (s *TaskService) Create(ctx context.Context, actor *model.Member, in CreateTaskInput) (*model.Task, error) {
	task := &model.Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      model.TaskPending,
		DueDate:     in.DueDate,
		CreatedByID: actor.ID,
	}

	verr := &ValidationError{}
	if task.Title == "" {
		verr.Add("title", "can't be blank")
	}
	if in.Status != nil {
		status := model.TaskStatus(*in.Status)
		if !status.Valid() {
			verr.Add("status", "is not included in the list")
		} else if err := model.TaskPending.CanTransitionTo(status); err != nil {
			return nil, &Error{Kind: ErrConflict, Msg: err.Error(), Err: err}
		}
		task.Status = status
	}
	if in.Priority != nil {
		priority := model.Priority(*in.Priority)
		if !priority.Valid() {
			verr.Add("priority", "is not included in the list")
		}
		task.Priority = &priority
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return s.tasks.GetDetail(ctx, task.ID)
}

func (s *TaskService) Get(ctx context.Context, actor *model.Member, id uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetDetail(ctx, id)
	if err != nil {
		return nil, mapTaskError(err)
	}
	if !policy.CanViewTask(actor, task, isAssignee(task, actor.ID)) {
		return nil, ErrForbidden
	}
	return task, nil
}

// Update edits a task. Status may move between pending and in_progress only;
// completed is derived from assignee completion and never written here.
func (s *TaskService) Update(ctx context.Context, actor *model.Member, id uuid.UUID, in UpdateTaskInput) (*model.Task, error) {
	task, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditTask(actor, task) {
		return nil, ErrForbidden
	}

	verr := &ValidationError{}
	if in.Title.Set {
		if in.Title.Value == nil || strings.TrimSpace(*in.Title.Value) == "" {
			verr.Add("title", "can't be blank")
		} else {
			task.Title = strings.TrimSpace(*in.Title.Value)
		}
	}
	if in.Description.Set {
		task.Description = in.Description.Value
	}
	var transitionErr error
	if in.Status.Set {
		if in.Status.Value == nil || !model.TaskStatus(*in.Status.Value).Valid() {
			verr.Add("status", "is not included in the list")
		} else {
			next := model.TaskStatus(*in.Status.Value)
			transitionErr = task.Status.CanTransitionTo(next)
			task.Status = next
		}
	}
	if in.Priority.Set {
		if in.Priority.Value == nil {
			task.Priority = nil
		} else {
			priority := model.Priority(*in.Priority.Value)
			if !priority.Valid() {
				verr.Add("priority", "is not included in the list")
			}
			task.Priority = &priority
		}
	}
	if in.DueDate.Set {
		task.DueDate = in.DueDate.Value
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	if transitionErr != nil {
		return nil, &Error{Kind: ErrConflict, Msg: transitionErr.Error(), Err: transitionErr}
	}

	if err := s.tasks.Update(ctx, task, in.Status.Set); err != nil {
		if errors.Is(err, model.ErrTaskClosed) {
			return nil, &Error{Kind: ErrConflict, Msg: err.Error(), Err: err}
		}
		return nil, mapTaskError(err)
	}
	return s.tasks.GetDetail(ctx, id)
}

// Delete removes the task with its assignments and help requests.
func (s *TaskService) Delete(ctx context.Context, actor *model.Member, id uuid.UUID) error {
	task, err := s.loadTask(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanEditTask(actor, task) {
		return ErrForbidden
	}
	return mapTaskError(s.tasks.DeleteCascade(ctx, id))
}

// Assign binds every known member in memberIDs to the task. Unknown or
// malformed ids are skipped and already-assigned members are left untouched,
// so the call never fails part way on a bad id.
func (s *TaskService) Assign(ctx context.Context, actor *model.Member, id uuid.UUID, memberIDs []string) (*AssignResult, error) {
	task, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAssignTask(actor, task) {
		return nil, ErrForbidden
	}

	result := &AssignResult{}
	seen := make(map[uuid.UUID]bool, len(memberIDs))
	for _, raw := range memberIDs {
		memberID, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			result.Skipped = append(result.Skipped, raw)
			continue
		}
		if seen[memberID] {
			continue
		}
		seen[memberID] = true

		member, err := s.members.GetByID(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			result.Skipped = append(result.Skipped, raw)
			continue
		}

		created, err := s.assignments.Assign(ctx, task.ID, member.ID, s.now())
		if err != nil {
			return nil, err
		}
		if created {
			result.Assigned = append(result.Assigned, member.ID)
		} else {
			result.AlreadyAssigned = append(result.AlreadyAssigned, member.ID)
		}
	}

	result.Task, err = s.tasks.GetDetail(ctx, task.ID)
	if err != nil {
		return nil, mapTaskError(err)
	}
	return result, nil
}

func (s *TaskService) Unassign(ctx context.Context, actor *model.Member, id uuid.UUID, rawMemberID string) error {
	task, err := s.loadTask(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanAssignTask(actor, task) {
		return ErrForbidden
	}

	memberID, err := uuid.Parse(rawMemberID)
	if err != nil {
		return ErrMemberNotFound
	}
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}

	if err := s.assignments.Delete(ctx, task.ID, member.ID); err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	// Removing the last open assignee finishes the task for everyone left.
	if task.Status == model.TaskCompleted {
		return nil
	}
	remaining, err := s.assignments.ListByTask(ctx, task.ID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}
	for _, a := range remaining {
		if !a.Completed() {
			return nil
		}
	}
	return mapTaskError(s.tasks.SetStatus(ctx, task.ID, model.TaskCompleted))
}

// Assignments lists every assignee of the task with their completion state.
func (s *TaskService) Assignments(ctx context.Context, actor *model.Member, id uuid.UUID) ([]model.TaskAssignment, error) {
	task, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	own, err := s.assignments.Find(ctx, task.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewTask(actor, task, own != nil) {
		return nil, ErrForbidden
	}
	return s.assignments.ListByTask(ctx, task.ID)
}

// Complete marks the actor's own assignment done and, once no assignment on
// the task is still open, drives the task to completed. The check reruns on
// every call, so concurrent completions converge once all writes land.
func (s *TaskService) Complete(ctx context.Context, actor *model.Member, id uuid.UUID, comment *string) (*CompletionResult, error) {
	task, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	assignment, err := s.assignments.Find(ctx, task.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !policy.CanCompleteAssignment(actor, task, assignment) {
		return nil, ErrNotAssigned
	}

	now := s.now()
	if err := s.assignments.MarkCompleted(ctx, assignment.ID, now, comment); err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return nil, ErrNotAssigned
		}
		return nil, err
	}
	assignment.CompletedAt = &now
	assignment.CompletionComment = comment

	pending, err := s.assignments.CountPending(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if pending == 0 && task.Status != model.TaskCompleted {
		if err := s.tasks.SetStatus(ctx, task.ID, model.TaskCompleted); err != nil {
			return nil, mapTaskError(err)
		}
	}

	detail, err := s.tasks.GetDetail(ctx, task.ID)
	if err != nil {
		return nil, mapTaskError(err)
	}
	return &CompletionResult{Task: detail, Assignment: assignment}, nil
}

func (s *TaskService) loadTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, mapTaskError(err)
	}
	return task, nil
}

func mapTaskError(err error) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return err
}

func isAssignee(task *model.Task, memberID uuid.UUID) bool {
	for _, a := range task.Assignments {
		if a.MemberID == memberID {
			return true
		}
	}
	return false
}
