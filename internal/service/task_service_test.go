package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type taskFixture struct {
	tasks       *MockTaskRepository
	assignments *MockAssignmentRepository
	members     *MockMemberRepository
	svc         *service.TaskService
}

func newTaskFixture() *taskFixture {
	f := &taskFixture{
		tasks:       new(MockTaskRepository),
		assignments: new(MockAssignmentRepository),
		members:     new(MockMemberRepository),
	}
	f.svc = service.NewTaskService(f.tasks, f.assignments, f.members, service.WithClock(fixedClock(now)))
	return f
}

func strPtr(s string) *string { return &s }

func TestTaskService_Create(t *testing.T) {
	f := newTaskFixture()
	alice := member(model.RoleUser)

	f.tasks.On("Create", mock.Anything, mock.MatchedBy(func(task *model.Task) bool {
		return task.Title == "Ship release" && task.Status == model.TaskPending && task.CreatedByID == alice.ID
	})).Return(nil)
	f.tasks.On("GetDetail", mock.Anything, mock.Anything).Return(&model.Task{Title: "Ship release"}, nil)

	task, err := f.svc.Create(context.Background(), alice, service.CreateTaskInput{Title: "  Ship release "})

	require.NoError(t, err)
	assert.Equal(t, "Ship release", task.Title)
	f.tasks.AssertExpectations(t)
}

func TestTaskService_Create_Validation(t *testing.T) {
	f := newTaskFixture()
	alice := member(model.RoleUser)

	_, err := f.svc.Create(context.Background(), alice, service.CreateTaskInput{
		Title:    " ",
		Priority: strPtr("urgent"),
	})

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "priority")
	assert.ErrorIs(t, err, service.ErrValidation)
	f.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaskService_Create_RejectsCompletedStatus(t *testing.T) {
	f := newTaskFixture()

	_, err := f.svc.Create(context.Background(), member(model.RoleAdmin), service.CreateTaskInput{
		Title:  "Done already",
		Status: strPtr("completed"),
	})

	assert.ErrorIs(t, err, service.ErrConflict)
	assert.ErrorIs(t, err, model.ErrCompletionDerived)
}

func TestTaskService_Update(t *testing.T) {
	owner := member(model.RoleUser)

	t.Run("moves between pending and in_progress", func(t *testing.T) {
		f := newTaskFixture()
		task := &model.Task{ID: uuid.New(), Title: "A", Status: model.TaskPending, CreatedByID: owner.ID}
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		f.tasks.On("Update", mock.Anything, mock.MatchedBy(func(updated *model.Task) bool {
			return updated.Status == model.TaskInProgress && updated.Description == nil
		}), true).Return(nil)
		f.tasks.On("GetDetail", mock.Anything, task.ID).Return(task, nil)

		_, err := f.svc.Update(context.Background(), owner, task.ID, service.UpdateTaskInput{
			Status:      model.Some("in_progress"),
			Description: model.Null[string](),
		})

		require.NoError(t, err)
		f.tasks.AssertExpectations(t)
	})

	t.Run("direct write to completed is a conflict", func(t *testing.T) {
		f := newTaskFixture()
		task := &model.Task{ID: uuid.New(), Title: "A", Status: model.TaskInProgress, CreatedByID: owner.ID}
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

		_, err := f.svc.Update(context.Background(), owner, task.ID, service.UpdateTaskInput{
			Status: model.Some("completed"),
		})

		assert.ErrorIs(t, err, service.ErrConflict)
		f.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("title-only edit does not write status", func(t *testing.T) {
		f := newTaskFixture()
		task := &model.Task{ID: uuid.New(), Title: "A", Status: model.TaskInProgress, CreatedByID: owner.ID}
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		f.tasks.On("Update", mock.Anything, mock.MatchedBy(func(updated *model.Task) bool {
			return updated.Title == "B"
		}), false).Return(nil)
		f.tasks.On("GetDetail", mock.Anything, task.ID).Return(task, nil)

		_, err := f.svc.Update(context.Background(), owner, task.ID, service.UpdateTaskInput{
			Title: model.Some("B"),
		})

		require.NoError(t, err)
		f.tasks.AssertExpectations(t)
	})

	t.Run("status write over a task completed meanwhile is a conflict", func(t *testing.T) {
		f := newTaskFixture()
		task := &model.Task{ID: uuid.New(), Title: "A", Status: model.TaskInProgress, CreatedByID: owner.ID}
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		f.tasks.On("Update", mock.Anything, mock.Anything, true).Return(model.ErrTaskClosed)

		_, err := f.svc.Update(context.Background(), owner, task.ID, service.UpdateTaskInput{
			Status: model.Some("pending"),
		})

		assert.ErrorIs(t, err, service.ErrConflict)
		assert.ErrorIs(t, err, model.ErrTaskClosed)
		f.tasks.AssertNotCalled(t, "GetDetail", mock.Anything, mock.Anything)
	})

	t.Run("completed task is closed", func(t *testing.T) {
		f := newTaskFixture()
		task := &model.Task{ID: uuid.New(), Title: "A", Status: model.TaskCompleted, CreatedByID: owner.ID}
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

		_, err := f.svc.Update(context.Background(), owner, task.ID, service.UpdateTaskInput{
			Status: model.Some("pending"),
		})

		assert.ErrorIs(t, err, model.ErrTaskClosed)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		f := newTaskFixture()
		task := &model.Task{ID: uuid.New(), Status: model.TaskPending, CreatedByID: owner.ID}
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

		_, err := f.svc.Update(context.Background(), member(model.RoleManager), task.ID, service.UpdateTaskInput{
			Title: model.Some("B"),
		})

		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("missing task", func(t *testing.T) {
		f := newTaskFixture()
		id := uuid.New()
		f.tasks.On("GetByID", mock.Anything, id).Return(nil, repository.ErrTaskNotFound)

		_, err := f.svc.Update(context.Background(), owner, id, service.UpdateTaskInput{})

		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestTaskService_Delete(t *testing.T) {
	f := newTaskFixture()
	owner := member(model.RoleUser)
	task := &model.Task{ID: uuid.New(), CreatedByID: owner.ID}
	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	f.tasks.On("DeleteCascade", mock.Anything, task.ID).Return(nil)

	err := f.svc.Delete(context.Background(), member(model.RoleAdmin), task.ID)

	require.NoError(t, err)
	f.tasks.AssertExpectations(t)
}

func TestTaskService_Assign_IdempotentAndSkipsUnknown(t *testing.T) {
	f := newTaskFixture()
	bob := member(model.RoleAdmin)
	alice := member(model.RoleUser)
	carol := member(model.RoleUser)
	ghost := uuid.New()
	task := &model.Task{ID: uuid.New(), CreatedByID: alice.ID}

	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	f.tasks.On("GetDetail", mock.Anything, task.ID).Return(task, nil)
	f.members.On("GetByID", mock.Anything, alice.ID).Return(alice, nil)
	f.members.On("GetByID", mock.Anything, carol.ID).Return(carol, nil)
	f.members.On("GetByID", mock.Anything, ghost).Return(nil, nil)
	f.assignments.On("Assign", mock.Anything, task.ID, alice.ID, now).Return(true, nil)
	f.assignments.On("Assign", mock.Anything, task.ID, carol.ID, now).Return(false, nil)

	result, err := f.svc.Assign(context.Background(), bob, task.ID, []string{
		alice.ID.String(), carol.ID.String(), alice.ID.String(), ghost.String(), "not-a-uuid",
	})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alice.ID}, result.Assigned)
	assert.Equal(t, []uuid.UUID{carol.ID}, result.AlreadyAssigned)
	assert.Equal(t, []string{ghost.String(), "not-a-uuid"}, result.Skipped)
	f.assignments.AssertNumberOfCalls(t, "Assign", 2)
}

func TestTaskService_Assign_Forbidden(t *testing.T) {
	f := newTaskFixture()
	task := &model.Task{ID: uuid.New(), CreatedByID: uuid.New()}
	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

	_, err := f.svc.Assign(context.Background(), member(model.RoleUser), task.ID, []string{uuid.NewString()})

	assert.ErrorIs(t, err, service.ErrForbidden)
	f.assignments.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskService_Unassign(t *testing.T) {
	manager := member(model.RoleManager)
	alice := member(model.RoleUser)

	t.Run("no such assignment", func(t *testing.T) {
		f := newTaskFixture()
		task := &model.Task{ID: uuid.New(), CreatedByID: uuid.New()}
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		f.members.On("GetByID", mock.Anything, alice.ID).Return(alice, nil)
		f.assignments.On("Delete", mock.Anything, task.ID, alice.ID).Return(repository.ErrAssignmentNotFound)

		err := f.svc.Unassign(context.Background(), manager, task.ID, alice.ID.String())

		assert.ErrorIs(t, err, service.ErrNotFound)
		assert.Equal(t, service.ErrAssignmentNotFound, err)
	})

	t.Run("unknown member", func(t *testing.T) {
		f := newTaskFixture()
		task := &model.Task{ID: uuid.New(), CreatedByID: uuid.New()}
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

		err := f.svc.Unassign(context.Background(), manager, task.ID, "nope")

		assert.Equal(t, service.ErrMemberNotFound, err)
		f.assignments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("removes", func(t *testing.T) {
		f := newTaskFixture()
		task := &model.Task{ID: uuid.New(), CreatedByID: uuid.New()}
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		f.members.On("GetByID", mock.Anything, alice.ID).Return(alice, nil)
		f.assignments.On("Delete", mock.Anything, task.ID, alice.ID).Return(nil)
		f.assignments.On("ListByTask", mock.Anything, task.ID).Return([]model.TaskAssignment{
			{TaskID: task.ID, MemberID: uuid.New()},
		}, nil)

		err := f.svc.Unassign(context.Background(), manager, task.ID, alice.ID.String())

		require.NoError(t, err)
		f.tasks.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("removing the last open assignee completes the task", func(t *testing.T) {
		f := newTaskFixture()
		done := now.Add(-time.Hour)
		task := &model.Task{ID: uuid.New(), Status: model.TaskInProgress, CreatedByID: uuid.New()}
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		f.members.On("GetByID", mock.Anything, alice.ID).Return(alice, nil)
		f.assignments.On("Delete", mock.Anything, task.ID, alice.ID).Return(nil)
		f.assignments.On("ListByTask", mock.Anything, task.ID).Return([]model.TaskAssignment{
			{TaskID: task.ID, MemberID: uuid.New(), CompletedAt: &done},
		}, nil)
		f.tasks.On("SetStatus", mock.Anything, task.ID, model.TaskCompleted).Return(nil)

		err := f.svc.Unassign(context.Background(), manager, task.ID, alice.ID.String())

		require.NoError(t, err)
		f.tasks.AssertExpectations(t)
	})

	t.Run("removing the only assignee leaves status alone", func(t *testing.T) {
		f := newTaskFixture()
		task := &model.Task{ID: uuid.New(), Status: model.TaskPending, CreatedByID: uuid.New()}
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		f.members.On("GetByID", mock.Anything, alice.ID).Return(alice, nil)
		f.assignments.On("Delete", mock.Anything, task.ID, alice.ID).Return(nil)
		f.assignments.On("ListByTask", mock.Anything, task.ID).Return([]model.TaskAssignment{}, nil)

		err := f.svc.Unassign(context.Background(), manager, task.ID, alice.ID.String())

		require.NoError(t, err)
		f.tasks.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

// Alice and carol share a task; it completes only after the second of them finishes.
func TestTaskService_Complete_AllAssigneesDone(t *testing.T) {
	f := newTaskFixture()
	alice := member(model.RoleUser)
	carol := member(model.RoleUser)
	task := &model.Task{ID: uuid.New(), Title: "Ship release", Status: model.TaskPending, CreatedByID: alice.ID}
	aliceAssignment := &model.TaskAssignment{ID: uuid.New(), TaskID: task.ID, MemberID: alice.ID}
	carolAssignment := &model.TaskAssignment{ID: uuid.New(), TaskID: task.ID, MemberID: carol.ID}
	done := strPtr("done")

	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	f.tasks.On("GetDetail", mock.Anything, task.ID).Return(task, nil)
	f.assignments.On("Find", mock.Anything, task.ID, alice.ID).Return(aliceAssignment, nil)
	f.assignments.On("Find", mock.Anything, task.ID, carol.ID).Return(carolAssignment, nil)
	f.assignments.On("MarkCompleted", mock.Anything, aliceAssignment.ID, now, done).Return(nil)
	f.assignments.On("MarkCompleted", mock.Anything, carolAssignment.ID, now, (*string)(nil)).Return(nil)
	f.assignments.On("CountPending", mock.Anything, task.ID).Return(int64(1), nil).Once()

	result, err := f.svc.Complete(context.Background(), alice, task.ID, done)

	require.NoError(t, err)
	assert.Equal(t, "done", *result.Assignment.CompletionComment)
	assert.Equal(t, now, *result.Assignment.CompletedAt)
	f.tasks.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)

	f.assignments.On("CountPending", mock.Anything, task.ID).Return(int64(0), nil).Once()
	f.tasks.On("SetStatus", mock.Anything, task.ID, model.TaskCompleted).Return(nil).Once()

	_, err = f.svc.Complete(context.Background(), carol, task.ID, nil)

	require.NoError(t, err)
	f.tasks.AssertCalled(t, "SetStatus", mock.Anything, task.ID, model.TaskCompleted)
}

func TestTaskService_Complete_NotAssigned(t *testing.T) {
	f := newTaskFixture()
	admin := member(model.RoleAdmin)
	task := &model.Task{ID: uuid.New(), CreatedByID: admin.ID}
	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	f.assignments.On("Find", mock.Anything, task.ID, admin.ID).Return(nil, nil)

	_, err := f.svc.Complete(context.Background(), admin, task.ID, nil)

	assert.ErrorIs(t, err, service.ErrForbidden)
	f.assignments.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskService_Complete_RecompletionKeepsCompleted(t *testing.T) {
	f := newTaskFixture()
	alice := member(model.RoleUser)
	task := &model.Task{ID: uuid.New(), Status: model.TaskCompleted, CreatedByID: alice.ID}
	a := &model.TaskAssignment{ID: uuid.New(), TaskID: task.ID, MemberID: alice.ID}

	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	f.tasks.On("GetDetail", mock.Anything, task.ID).Return(task, nil)
	f.assignments.On("Find", mock.Anything, task.ID, alice.ID).Return(a, nil)
	f.assignments.On("MarkCompleted", mock.Anything, a.ID, now, mock.Anything).Return(nil)
	f.assignments.On("CountPending", mock.Anything, task.ID).Return(int64(0), nil)

	_, err := f.svc.Complete(context.Background(), alice, task.ID, strPtr("again"))

	require.NoError(t, err)
	f.tasks.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskService_List_Pagination(t *testing.T) {
	f := newTaskFixture()
	alice := member(model.RoleUser)

	f.tasks.On("ListVisible", mock.Anything, alice.ID, mock.MatchedBy(func(filter repository.TaskFilter) bool {
		return filter.Page.Limit == service.MaxPerPage && filter.Page.Offset == 100 && filter.Status == model.TaskPending
	})).Return([]model.Task{}, int64(250), nil)

	_, page, err := f.svc.List(context.Background(), alice, service.TaskListInput{
		Status: "pending",
		Page:   service.PageRequest{Page: 2, PerPage: 500},
	})

	require.NoError(t, err)
	assert.Equal(t, service.Pagination{CurrentPage: 2, PerPage: 100, TotalPages: 3, TotalCount: 250}, page)
}

func TestTaskService_List_HugePageIsClamped(t *testing.T) {
	f := newTaskFixture()
	alice := member(model.RoleUser)

	f.tasks.On("ListVisible", mock.Anything, alice.ID, mock.MatchedBy(func(filter repository.TaskFilter) bool {
		return filter.Page.Offset == (service.MaxPage-1)*service.DefaultTaskPerPage && filter.Page.Offset > 0
	})).Return([]model.Task{}, int64(3), nil)

	_, page, err := f.svc.List(context.Background(), alice, service.TaskListInput{
		Page: service.PageRequest{Page: math.MaxInt},
	})

	require.NoError(t, err)
	assert.Equal(t, service.MaxPage, page.CurrentPage)
	f.tasks.AssertExpectations(t)
}

func TestTaskService_List_InvalidFilters(t *testing.T) {
	f := newTaskFixture()

	_, _, err := f.svc.List(context.Background(), member(model.RoleUser), service.TaskListInput{
		Status: "archived",
		Sort:   "password",
	})

	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "status")
	assert.Contains(t, verr.Fields, "sort")
}

func TestTaskService_Get_Visibility(t *testing.T) {
	f := newTaskFixture()
	alice := member(model.RoleUser)
	outsider := member(model.RoleUser)
	task := &model.Task{
		ID:          uuid.New(),
		CreatedByID: uuid.New(),
		Assignments: []model.TaskAssignment{{MemberID: alice.ID}},
	}
	f.tasks.On("GetDetail", mock.Anything, task.ID).Return(task, nil)

	got, err := f.svc.Get(context.Background(), alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, got)

	_, err = f.svc.Get(context.Background(), outsider, task.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)
}
