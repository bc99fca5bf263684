package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"tasktracker/internal/auth"
	"tasktracker/internal/model"
	"tasktracker/internal/policy"
	"tasktracker/internal/repository"
)

const minPasswordLength = 8

type MemberService struct {
	members repository.MemberRepositoryInterface
	roles   repository.RoleRepositoryInterface
}

func NewMemberService(members repository.MemberRepositoryInterface, roles repository.RoleRepositoryInterface) *MemberService {
	return &MemberService{members: members, roles: roles}
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
	// RoleName defaults to user when empty.
	RoleName string
}

type UpdateMemberInput struct {
	Email    *string
	Name     *string
	Password *string
}

// Register is the public sign-up path. It only ever creates plain users;
// asking for a privileged role here is forbidden.
func (s *MemberService) Register(ctx context.Context, in RegisterInput) (*model.Member, error) {
	if role := model.RoleName(in.RoleName); role.Valid() && role != model.RoleUser {
		return nil, ErrPrivilegedRole
	}
	return s.create(ctx, in)
}

// Create is the admin-only variant of Register and may bind any role.
func (s *MemberService) Create(ctx context.Context, actor *model.Member, in RegisterInput) (*model.Member, error) {
	if !policy.CanManageMembers(actor) {
		return nil, ErrForbidden
	}
	return s.create(ctx, in)
}

// create binds the role lazily through find-or-create.
func (s *MemberService) create(ctx context.Context, in RegisterInput) (*model.Member, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	role := model.RoleName(in.RoleName)
	if role == "" {
		role = model.RoleUser
	}

	verr := &ValidationError{}
	validateEmail(verr, in.Email)
	if in.Name == "" {
		verr.Add("name", "can't be blank")
	}
	validatePassword(verr, in.Password)
	if !role.Valid() {
		verr.Add("role_name", "is not included in the list")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	existing, err := s.members.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	digest, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	r, err := s.roles.FindOrCreate(ctx, role)
	if err != nil {
		return nil, err
	}

	member := &model.Member{
		ID:             uuid.New(),
		Email:          in.Email,
		Name:           in.Name,
		PasswordDigest: digest,
		RoleID:         r.ID,
	}
	if err := s.members.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	member.Role = *r
	return member, nil
}

func (s *MemberService) List(ctx context.Context, actor *model.Member, role string, page PageRequest) ([]model.Member, Pagination, error) {
	if !policy.CanListMembers(actor) {
		return nil, Pagination{}, ErrForbidden
	}
	if role != "" && !model.RoleName(role).Valid() {
		verr := &ValidationError{}
		verr.Add("role", "is not included in the list")
		return nil, Pagination{}, verr
	}

	page = page.normalize(DefaultMemberPerPage)
	members, total, err := s.members.List(ctx, repository.MemberFilter{
		Role: model.RoleName(role),
		Page: page.query(),
	})
	if err != nil {
		return nil, Pagination{}, err
	}
	return members, paginate(page, total), nil
}

func (s *MemberService) Get(ctx context.Context, actor *model.Member, id uuid.UUID) (*model.Member, error) {
	target, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewOrEditMember(actor, target) {
		return nil, ErrForbidden
	}
	return target, nil
}

func (s *MemberService) Update(ctx context.Context, actor *model.Member, id uuid.UUID, in UpdateMemberInput) (*model.Member, error) {
	target, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewOrEditMember(actor, target) {
		return nil, ErrForbidden
	}

	verr := &ValidationError{}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		validateEmail(verr, email)
		target.Email = email
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			verr.Add("name", "can't be blank")
		}
		target.Name = name
	}
	if in.Password != nil {
		validatePassword(verr, *in.Password)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if in.Email != nil {
		other, err := s.members.FindByEmail(ctx, target.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != target.ID {
			return nil, ErrEmailTaken
		}
	}
	if in.Password != nil {
		digest, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		target.PasswordDigest = digest
	}

	if err := s.members.Update(ctx, target); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrMemberNotFound):
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return target, nil
}

// Delete removes the member and everything they own.
func (s *MemberService) Delete(ctx context.Context, actor *model.Member, id uuid.UUID) error {
	if !policy.CanManageMembers(actor) {
		return ErrForbidden
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.members.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	return nil
}

func (s *MemberService) load(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

func validateEmail(verr *ValidationError, email string) {
	if email == "" {
		verr.Add("email", "can't be blank")
		return
	}
	if at := strings.Index(email, "@"); at < 1 || at == len(email)-1 {
		verr.Add("email", "is invalid")
	}
}

func validatePassword(verr *ValidationError, password string) {
	if len(password) < minPasswordLength {
		verr.Add("password", "is too short (minimum is 8 characters)")
	}
}
