package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

func newTestRepo(t *testing.T) *sqlite.SQLiteRepository {
	t.Helper()
	repo, err := sqlite.NewSQLiteRepository("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newOwner(t *testing.T, repo *sqlite.SQLiteRepository, username string) *domain.User {
	t.Helper()
	u, err := NewAccountService(repo).Signup(context.Background(), username+"@example.com", username, "correct-horse", "")
	require.NoError(t, err)
	return u
}

func createLink(t *testing.T, svc *LinkService, ownerID, title, group string) *domain.Link {
	t.Helper()
	l, err := svc.CreateLink(context.Background(), ownerID, domain.NewLink{
		Title: title,
		URL:   "https://example.com/" + title,
		Group: group,
	})
	require.NoError(t, err)
	return l
}

func orders(links []domain.Link) map[string]int {
	out := make(map[string]int, len(links))
	for _, l := range links {
		out[l.Title] = l.Order
	}
	return out
}
