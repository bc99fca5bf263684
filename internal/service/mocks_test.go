package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *model.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepository) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	args := m.Called(ctx, email)
	member, _ := args.Get(0).(*model.Member)
	return member, args.Error(1)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	args := m.Called(ctx, id)
	member, _ := args.Get(0).(*model.Member)
	return member, args.Error(1)
}

func (m *MockMemberRepository) FindAdmin(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	args := m.Called(ctx, id)
	member, _ := args.Get(0).(*model.Member)
	return member, args.Error(1)
}

func (m *MockMemberRepository) ListAdmins(ctx context.Context) ([]model.Member, error) {
	args := m.Called(ctx)
	members, _ := args.Get(0).([]model.Member)
	return members, args.Error(1)
}

func (m *MockMemberRepository) List(ctx context.Context, filter repository.MemberFilter) ([]model.Member, int64, error) {
	args := m.Called(ctx, filter)
	members, _ := args.Get(0).([]model.Member)
	return members, args.Get(1).(int64), args.Error(2)
}

func (m *MockMemberRepository) Update(ctx context.Context, member *model.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindOrCreate(ctx context.Context, name model.RoleName) (*model.Role, error) {
	args := m.Called(ctx, name)
	role, _ := args.Get(0).(*model.Role)
	return role, args.Error(1)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) ListVisible(ctx context.Context, memberID uuid.UUID, filter repository.TaskFilter) ([]model.Task, int64, error) {
	args := m.Called(ctx, memberID, filter)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Get(1).(int64), args.Error(2)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *model.Task, writeStatus bool) error {
	return m.Called(ctx, task, writeStatus).Error(0)
}

func (m *MockTaskRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockTaskRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) Assign(ctx context.Context, taskID, memberID uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, taskID, memberID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssignmentRepository) Find(ctx context.Context, taskID, memberID uuid.UUID) (*model.TaskAssignment, error) {
	args := m.Called(ctx, taskID, memberID)
	a, _ := args.Get(0).(*model.TaskAssignment)
	return a, args.Error(1)
}

func (m *MockAssignmentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.TaskAssignment, error) {
	args := m.Called(ctx, taskID)
	list, _ := args.Get(0).([]model.TaskAssignment)
	return list, args.Error(1)
}

func (m *MockAssignmentRepository) Delete(ctx context.Context, taskID, memberID uuid.UUID) error {
	return m.Called(ctx, taskID, memberID).Error(0)
}

func (m *MockAssignmentRepository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time, comment *string) error {
	return m.Called(ctx, id, at, comment).Error(0)
}

func (m *MockAssignmentRepository) CountPending(ctx context.Context, taskID uuid.UUID) (int64, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).(int64), args.Error(1)
}

type MockHelpRequestRepository struct {
	mock.Mock
}

func (m *MockHelpRequestRepository) Create(ctx context.Context, req *model.HelpRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockHelpRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.HelpRequest, error) {
	args := m.Called(ctx, id)
	req, _ := args.Get(0).(*model.HelpRequest)
	return req, args.Error(1)
}

func (m *MockHelpRequestRepository) List(ctx context.Context, scope repository.HelpRequestScope) ([]model.HelpRequest, error) {
	args := m.Called(ctx, scope)
	list, _ := args.Get(0).([]model.HelpRequest)
	return list, args.Error(1)
}

func (m *MockHelpRequestRepository) SaveAnswer(ctx context.Context, requestID, adminID uuid.UUID, text string) (*model.HelpAnswer, error) {
	args := m.Called(ctx, requestID, adminID, text)
	answer, _ := args.Get(0).(*model.HelpAnswer)
	return answer, args.Error(1)
}

func member(role model.RoleName) *model.Member {
	return &model.Member{
		ID:   uuid.New(),
		Name: string(role),
		Role: model.Role{ID: uuid.New(), Name: role},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
