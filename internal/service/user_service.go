package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type RegisterParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// OAuthProfile is what an identity provider tells us about a user
type OAuthProfile struct {
	Provider  string
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

type UserService struct {
	users       UserStore
	identities  OAuthIdentityStore
	adminEmails []string
}

func NewUserService(users UserStore, identities OAuthIdentityStore, adminEmails []string) *UserService {
	return &UserService{users: users, identities: identities, adminEmails: adminEmails}
}

func (s *UserService) Register(ctx context.Context, p RegisterParams) (*domain.User, error) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = normalizeEmail(p.Email)

	if p.FirstName == "" {
		return nil, invalid("first name is required")
	}
	if err := ValidateEmail(p.Email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(p.Password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		PasswordHash: hash,
		Role:         s.roleFor(p.Email),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Authenticate checks an email/password pair. Guests have no password and
// can never log in this way.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.Guest || u.PasswordHash == "" || !CheckPasswordHash(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// CreateGuest creates a passwordless throwaway account
func (s *UserService) CreateGuest(ctx context.Context) (*domain.User, error) {
	id := uuid.New().String()
	u := &domain.User{
		FirstName: "Guest",
		LastName:  id[:8],
		Email:     fmt.Sprintf("guest-%s@guest.local", id),
		Role:      domain.RoleUser,
		Guest:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("user", id, err)
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, notFound("user", email, err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return notFound("user", id, s.users.Delete(ctx, id))
}

func (s *UserService) SetRole(ctx context.Context, id int64, role domain.RoleName) error {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return invalid("unknown role %q", role)
	}
	return notFound("user", id, s.users.SetRole(ctx, id, role))
}

// FindOrCreateOAuthUser resolves an external identity to a local user.
// A known identity wins; otherwise a user with the same email is linked, and
// failing that a new user is created.
func (s *UserService) FindOrCreateOAuthUser(ctx context.Context, p OAuthProfile) (*domain.User, error) {
	if p.Provider == "" || p.Subject == "" {
		return nil, invalid("oauth profile without provider or subject")
	}

	ident, err := s.identities.GetByProviderSubject(ctx, p.Provider, p.Subject)
	switch {
	case err == nil:
		return s.GetByID(ctx, ident.UserID)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	email := normalizeEmail(p.Email)
	if email == "" {
		email = fmt.Sprintf("%s-%s@%s.oauth.local", p.Provider, p.Subject, p.Provider)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		first := strings.TrimSpace(p.FirstName)
		if first == "" {
			first = strings.SplitN(email, "@", 2)[0]
		}
		u = &domain.User{
			FirstName: first,
			LastName:  strings.TrimSpace(p.LastName),
			Email:     email,
			Role:      s.roleFor(email),
		}
		err = s.users.Create(ctx, u)
	}
	if err != nil {
		return nil, err
	}

	if err := s.identities.Create(ctx, &domain.OAuthIdentity{
		UserID:   u.ID,
		Provider: p.Provider,
		Subject:  p.Subject,
		Email:    email,
	}); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return nil, err
	}
	return u, nil
}

func (s *UserService) roleFor(email string) domain.RoleName {
	if slices.Contains(s.adminEmails, email) {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address is a bare, well formed email
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("invalid email %q", email)
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return invalid("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
