package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

func TestGetPublicPage(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	owner := newOwner(t, repo, "alice")
	links := NewLinkService(repo)
	timeline := NewTimelineService(repo)
	svc := NewPageService(repo)

	createLink(t, links, owner.ID, "A", "Music")
	createLink(t, links, owner.ID, "P", "Podcasts")
	_, err := links.CreateLink(ctx, owner.ID, domain.NewLink{Title: "Hidden", URL: "https://h.example", Group: "Work", IsActive: new(bool)})
	require.NoError(t, err)
	_, err = timeline.CreateEvent(ctx, owner.ID, domain.NewTimelineEvent{Title: "Joined", Year: 2019, MediaURL: "https://cdn.example/a.png"})
	require.NoError(t, err)

	page, err := svc.GetPublicPage(ctx, "ALICE", true)
	require.NoError(t, err)
	assert.Equal(t, "alice", page.Username)
	require.Equal(t, []string{"Music", "Podcasts"}, names(page.Groups))
	assert.Equal(t, "A", page.Groups[0].Links[0].Title)
	require.Len(t, page.Timeline, 1)
	assert.Equal(t, "https://cdn.example/a.png", page.Timeline[0].MediaURL)

	public := PublicTimeline(page.Timeline)
	assert.Empty(t, public[0].MediaURL)
	assert.NotEmpty(t, page.Timeline[0].MediaURL)

	page, err = svc.GetPublicPage(ctx, "alice", false)
	require.NoError(t, err)
	assert.Nil(t, page.Timeline)

	_, err = svc.GetPublicPage(ctx, "nobody", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetTimelineMedia(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	owner := newOwner(t, repo, "alice")
	timeline := NewTimelineService(repo)
	svc := NewPageService(repo)

	inline, err := timeline.CreateEvent(ctx, owner.ID, domain.NewTimelineEvent{
		Title: "Inline", Year: 2020, MediaURL: "data:image/png;base64,aGVsbG8=",
	})
	require.NoError(t, err)
	external, err := timeline.CreateEvent(ctx, owner.ID, domain.NewTimelineEvent{
		Title: "External", Year: 2021, MediaURL: "https://cdn.example/clip.mp4", MediaType: domain.MediaVideo,
	})
	require.NoError(t, err)
	bare, err := timeline.CreateEvent(ctx, owner.ID, domain.NewTimelineEvent{Title: "Bare", Year: 2022})
	require.NoError(t, err)

	media, err := svc.GetTimelineMedia(ctx, inline.ID)
	require.NoError(t, err)
	assert.Equal(t, "image/png", media.ContentType)
	assert.Equal(t, []byte("hello"), media.Data)
	assert.Empty(t, media.URL)

	media, err = svc.GetTimelineMedia(ctx, external.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/clip.mp4", media.URL)
	assert.Nil(t, media.Data)

	_, err = svc.GetTimelineMedia(ctx, bare.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetTimelineMedia(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	public := PublicTimeline([]domain.TimelineEvent{*inline, *bare})
	assert.True(t, public[0].HasMedia)
	assert.False(t, public[1].HasMedia)
}

func TestInlineMediaIsValidated(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	owner := newOwner(t, repo, "alice")
	timeline := NewTimelineService(repo)

	for _, raw := range []string{
		"data:text/html;base64,PGgxPg==",
		"data:image/png;base64,not base64!",
		"data:image/png,raw",
	} {
		_, err := timeline.CreateEvent(ctx, owner.ID, domain.NewTimelineEvent{Title: "Bad", Year: 2020, MediaURL: raw})
		assert.True(t, domain.IsValidation(err), raw)
	}
}
