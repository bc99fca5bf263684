package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tasktracker/internal/middleware"
	"tasktracker/internal/model"
	"tasktracker/internal/service"
)

type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) Register(ctx context.Context, in service.RegisterInput) (*model.Member, error) {
	args := m.Called(ctx, in)
	member, _ := args.Get(0).(*model.Member)
	return member, args.Error(1)
}

func (m *MockMemberService) Create(ctx context.Context, actor *model.Member, in service.RegisterInput) (*model.Member, error) {
	args := m.Called(ctx, actor, in)
	member, _ := args.Get(0).(*model.Member)
	return member, args.Error(1)
}

func (m *MockMemberService) List(ctx context.Context, actor *model.Member, role string, page service.PageRequest) ([]model.Member, service.Pagination, error) {
	args := m.Called(ctx, actor, role, page)
	members, _ := args.Get(0).([]model.Member)
	return members, args.Get(1).(service.Pagination), args.Error(2)
}

func (m *MockMemberService) Get(ctx context.Context, actor *model.Member, id uuid.UUID) (*model.Member, error) {
	args := m.Called(ctx, actor, id)
	member, _ := args.Get(0).(*model.Member)
	return member, args.Error(1)
}

func (m *MockMemberService) Update(ctx context.Context, actor *model.Member, id uuid.UUID, in service.UpdateMemberInput) (*model.Member, error) {
	args := m.Called(ctx, actor, id, in)
	member, _ := args.Get(0).(*model.Member)
	return member, args.Error(1)
}

func (m *MockMemberService) Delete(ctx context.Context, actor *model.Member, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockLoginService struct {
	mock.Mock
}

func (m *MockLoginService) Login(ctx context.Context, email, password string) (string, *model.Member, error) {
	args := m.Called(ctx, email, password)
	member, _ := args.Get(1).(*model.Member)
	return args.String(0), member, args.Error(2)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) List(ctx context.Context, actor *model.Member, in service.TaskListInput) ([]model.Task, service.Pagination, error) {
	args := m.Called(ctx, actor, in)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Get(1).(service.Pagination), args.Error(2)
}

func (m *MockTaskService) Create(ctx context.Context, actor *model.Member, in service.CreateTaskInput) (*model.Task, error) {
	args := m.Called(ctx, actor, in)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, actor *model.Member, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, actor, id)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, actor *model.Member, id uuid.UUID, in service.UpdateTaskInput) (*model.Task, error) {
	args := m.Called(ctx, actor, id, in)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, actor *model.Member, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockTaskService) Assign(ctx context.Context, actor *model.Member, id uuid.UUID, memberIDs []string) (*service.AssignResult, error) {
	args := m.Called(ctx, actor, id, memberIDs)
	result, _ := args.Get(0).(*service.AssignResult)
	return result, args.Error(1)
}

func (m *MockTaskService) Unassign(ctx context.Context, actor *model.Member, id uuid.UUID, memberID string) error {
	return m.Called(ctx, actor, id, memberID).Error(0)
}

func (m *MockTaskService) Assignments(ctx context.Context, actor *model.Member, id uuid.UUID) ([]model.TaskAssignment, error) {
	args := m.Called(ctx, actor, id)
	list, _ := args.Get(0).([]model.TaskAssignment)
	return list, args.Error(1)
}

func (m *MockTaskService) Complete(ctx context.Context, actor *model.Member, id uuid.UUID, comment *string) (*service.CompletionResult, error) {
	args := m.Called(ctx, actor, id, comment)
	result, _ := args.Get(0).(*service.CompletionResult)
	return result, args.Error(1)
}

type MockHelpRequestService struct {
	mock.Mock
}

func (m *MockHelpRequestService) ListAdmins(ctx context.Context, actor *model.Member) ([]model.Member, error) {
	args := m.Called(ctx, actor)
	list, _ := args.Get(0).([]model.Member)
	return list, args.Error(1)
}

func (m *MockHelpRequestService) Create(ctx context.Context, actor *model.Member, in service.CreateHelpRequestInput) (*model.HelpRequest, error) {
	args := m.Called(ctx, actor, in)
	req, _ := args.Get(0).(*model.HelpRequest)
	return req, args.Error(1)
}

func (m *MockHelpRequestService) List(ctx context.Context, actor *model.Member) ([]model.HelpRequest, error) {
	args := m.Called(ctx, actor)
	list, _ := args.Get(0).([]model.HelpRequest)
	return list, args.Error(1)
}

func (m *MockHelpRequestService) Answer(ctx context.Context, actor *model.Member, id uuid.UUID, text string) (*model.HelpRequest, error) {
	args := m.Called(ctx, actor, id, text)
	req, _ := args.Get(0).(*model.HelpRequest)
	return req, args.Error(1)
}

// asMember stands in for JWTAuthMiddleware.
func asMember(m *model.Member) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.MemberKey, m)
		c.Set(middleware.MemberIDKey, m.ID)
		c.Next()
	}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func perform(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func newMember(role model.RoleName) *model.Member {
	return &model.Member{
		ID:    uuid.New(),
		Email: string(role) + "@example.com",
		Name:  string(role),
		Role:  model.Role{Name: role},
	}
}
