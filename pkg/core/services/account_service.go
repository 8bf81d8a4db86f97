package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{2,29}$`)

type AccountService struct {
	repo ports.UserRepository
}

func NewAccountService(repo ports.UserRepository) *AccountService {
	return &AccountService{repo: repo}
}

// Signup creates the account together with its profile and starter groups
func (s *AccountService) Signup(ctx context.Context, email, username, password, name string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.ToLower(strings.TrimSpace(username))

	if err := required("email", email); err != nil {
		return nil, err
	}
	if !strings.Contains(email, "@") {
		return nil, domain.Invalid("email", "must be an email address")
	}
	if !usernamePattern.MatchString(username) {
		return nil, domain.Invalid("username", "use 3-30 lowercase letters, digits, '-' or '_'")
	}
	if len(password) < minPasswordLen {
		return nil, domain.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}

	if err := s.ensureFree(ctx, email, username); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.create(ctx, email, username, string(hash), name)
}

func (s *AccountService) ensureFree(ctx context.Context, email, username string) error {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return storeErr("get user", err)
	}
	if u != nil {
		return domain.Invalid("email", "already registered")
	}
	u, err = s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return storeErr("get user", err)
	}
	if u != nil {
		return domain.Invalid("username", "already taken")
	}
	return nil
}

func (s *AccountService) create(ctx context.Context, email, username, hash, name string) (*domain.User, error) {
	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if name == "" {
		name = username
	}
	profile := &domain.Profile{
		UserID:         user.ID,
		Name:           name,
		Bio:            "Welcome to my page!",
		Socials:        []domain.Social{},
		Theme:          "classic",
		TimelineLayout: domain.TimelineEditorial,
		UpdatedAt:      now,
	}

	groups := make([]domain.Group, len(domain.DefaultGroups))
	for i, g := range domain.DefaultGroups {
		g.ID = uuid.NewString()
		g.OwnerID = user.ID
		g.CreatedAt = now
		g.UpdatedAt = now
		groups[i] = g
	}

	if err := s.repo.CreateAccount(ctx, user, profile, groups); err != nil {
		return nil, storeErr("create account", err)
	}
	return user, nil
}

// Authenticate checks email and password. Accounts created through Google
// have no password and cannot log in this way.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, storeErr("get user", err)
	}
	if u == nil || u.PasswordHash == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return u, nil
}

// LoginWithEmail finds the account for a verified email, creating one with a
// username derived from the address when none exists.
func (s *AccountService) LoginWithEmail(ctx context.Context, email, name string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := required("email", email); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	if u != nil {
		return u, nil
	}

	base := usernameFromEmail(email)
	username := base
	for i := 2; ; i++ {
		taken, err := s.repo.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, storeErr("get user", err)
		}
		if taken == nil {
			break
		}
		username = fmt.Sprintf("%s%d", base, i)
	}
	return s.create(ctx, email, username, "", name)
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
		if b.Len() == 24 {
			break
		}
	}
	name := strings.TrimLeft(b.String(), "_-")
	for len(name) < 3 {
		name += "x"
	}
	return name
}

func (s *AccountService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *AccountService) GetProfile(ctx context.Context, ownerID string) (*domain.Profile, error) {
	p, err := s.repo.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, storeErr("get profile", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, ownerID string, patch domain.ProfilePatch) (*domain.Profile, error) {
	p, err := s.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	patch.Apply(p)
	if err := required("name", p.Name); err != nil {
		return nil, err
	}
	switch p.TimelineLayout {
	case domain.TimelineEditorial, domain.TimelineClassic:
	default:
		return nil, domain.Invalid("timeline_layout", fmt.Sprintf("unknown layout %q", p.TimelineLayout))
	}
	for i, soc := range p.Socials {
		if err := validURL(fmt.Sprintf("socials[%d].url", i), soc.URL); err != nil {
			return nil, err
		}
	}
	if p.Socials == nil {
		p.Socials = []domain.Social{}
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		return nil, storeErr("update profile", err)
	}
	return p, nil
}
