package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"tasktracker/internal/auth"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

// TokenIssuer issues and verifies bearer tokens.
type TokenIssuer interface {
	GenerateToken(memberID uuid.UUID, role model.RoleName) (string, error)
	ParseToken(token string) (*auth.Claims, error)
}

type AuthService struct {
	members repository.MemberRepositoryInterface
	tokens  TokenIssuer
}

func NewAuthService(members repository.MemberRepositoryInterface, tokens TokenIssuer) *AuthService {
	return &AuthService{members: members, tokens: tokens}
}

// Login verifies credentials and returns a signed token with the member.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.Member, error) {
	member, err := s.members.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, err
	}
	if member == nil || !auth.CheckPassword(member.PasswordDigest, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(member.ID, member.Role.Name)
	if err != nil {
		return "", nil, err
	}
	return token, member, nil
}

// Authenticate resolves a bearer token to the member it names. The member is
// reloaded so role changes and deletions take effect before the token expires.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Member, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, &Error{Kind: ErrUnauthorized, Msg: "invalid or expired token", Err: err}
	}

	id, err := uuid.Parse(claims.MemberID)
	if err != nil {
		return nil, &Error{Kind: ErrUnauthorized, Msg: "invalid member id in token", Err: err}
	}

	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrUnauthenticated
	}
	return member, nil
}
