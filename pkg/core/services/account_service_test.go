package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

func TestSignupAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewAccountService(repo)

	u, err := svc.Signup(ctx, " Alice@Example.com ", "Alice", "correct-horse", "Alice A.")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	p, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", p.Name)
	assert.Equal(t, domain.TimelineEditorial, p.TimelineLayout)

	_, err = svc.Signup(ctx, "alice@example.com", "other", "correct-horse", "")
	assert.True(t, domain.IsValidation(err))
	_, err = svc.Signup(ctx, "other@example.com", "alice", "correct-horse", "")
	assert.True(t, domain.IsValidation(err))
	_, err = svc.Signup(ctx, "short@example.com", "short", "pw", "")
	assert.True(t, domain.IsValidation(err))
	_, err = svc.Signup(ctx, "bad@example.com", "no spaces", "correct-horse", "")
	assert.True(t, domain.IsValidation(err))

	got, err := svc.Authenticate(ctx, "alice@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong-horse")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginWithEmail(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewAccountService(repo)

	existing, err := svc.Signup(ctx, "dev@example.com", "dev", "correct-horse", "")
	require.NoError(t, err)

	same, err := svc.LoginWithEmail(ctx, "DEV@example.com", "Dev")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, same.ID)

	created, err := svc.LoginWithEmail(ctx, "dev@other.org", "Other Dev")
	require.NoError(t, err)
	assert.Equal(t, "dev2", created.Username)

	_, err = svc.Authenticate(ctx, "dev@other.org", "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	groups, err := repo.ListGroups(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, groups, len(domain.DefaultGroups))
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "janedoe", usernameFromEmail("jane.doe@example.com"))
	assert.Equal(t, "abx", usernameFromEmail("ab@example.com"))
	assert.Equal(t, "x1y", usernameFromEmail("__X1Y@example.com"))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	owner := newOwner(t, repo, "alice")
	svc := NewAccountService(repo)

	bio := "I make **music**"
	socials := []domain.Social{{Icon: "Github", URL: "https://github.com/alice", Label: "GitHub", IsActive: true}}
	layout := domain.TimelineClassic

	p, err := svc.UpdateProfile(ctx, owner.ID, domain.ProfilePatch{Bio: &bio, Socials: &socials, TimelineLayout: &layout})
	require.NoError(t, err)
	assert.Equal(t, bio, p.Bio)

	stored, err := svc.GetProfile(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, socials, stored.Socials)
	assert.Equal(t, domain.TimelineClassic, stored.TimelineLayout)

	bad := domain.TimelineLayout("grid")
	_, err = svc.UpdateProfile(ctx, owner.ID, domain.ProfilePatch{TimelineLayout: &bad})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
