package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/optimistic"
)

type fakeAPI struct {
	mu       sync.Mutex
	links    []domain.Link
	groups   []domain.GroupView
	timeline []domain.TimelineEvent
	fail     bool
	requests []map[string]json.RawMessage
	auth     []string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	list := func(v func() any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.auth = append(f.auth, r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(v())
		}
	}
	reorder := func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var body map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.requests = append(f.requests, body)
		if f.fail {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
	mux.HandleFunc("GET /api/v1/links", list(func() any { return f.links }))
	mux.HandleFunc("GET /api/v1/groups", list(func() any { return f.groups }))
	mux.HandleFunc("GET /api/v1/timeline", list(func() any { return f.timeline }))
	mux.HandleFunc("PUT /api/v1/links/order", reorder)
	mux.HandleFunc("PUT /api/v1/groups/order", reorder)
	mux.HandleFunc("PUT /api/v1/timeline/order", reorder)
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "correct-horse" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(Session{Token: "tok", User: &domain.User{ID: "u1", Username: "alice"}})
	})
	return mux
}

func (f *fakeAPI) sent() []map[string]json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]json.RawMessage(nil), f.requests...)
}

func (f *fakeAPI) lastAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth[len(f.auth)-1]
}

func ids(links []domain.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.ID
	}
	return out
}

func newFake(t *testing.T) (*fakeAPI, *Client) {
	f := &fakeAPI{
		links: []domain.Link{
			{ID: "a", Title: "A", Group: "Music", Order: 0},
			{ID: "c", Title: "C", Group: "Work", Order: 1},
			{ID: "b", Title: "B", Group: "Music", Order: 2},
		},
		groups: []domain.GroupView{
			{ID: "g1", Name: "Music", Order: 1, Materialized: true},
			{Name: "Podcasts", Order: 2},
		},
		timeline: []domain.TimelineEvent{
			{ID: "e1", Title: "Joined", Order: 0},
			{ID: "e2", Title: "Shipped", Order: 1},
		},
	}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return f, New(srv.URL, "", WithHTTPClient(srv.Client()))
}

func TestLoginKeepsToken(t *testing.T) {
	f, c := newFake(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "alice@example.com", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	s, err := c.Login(ctx, "alice@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", s.User.Username)

	_, err = c.Links(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", f.lastAuth())
}

func TestLinkEditorPersistsGroupOrder(t *testing.T) {
	f, c := newFake(t)

	ed, err := c.NewLinkEditor(context.Background(), optimistic.Options[domain.Link]{})
	require.NoError(t, err)
	defer ed.Close()

	moved, err := ed.Move("b", "a")
	require.NoError(t, err)
	require.True(t, moved)
	ed.Wait()

	assert.Equal(t, []string{"b", "c", "a"}, ids(ed.Items()))
	assert.Equal(t, optimistic.Stable, ed.State())

	sent := f.sent()
	require.Len(t, sent, 1)
	assert.JSONEq(t, `"Music"`, string(sent[0]["group"]))
	assert.JSONEq(t, `[{"id":"b","order":0},{"id":"a","order":1}]`, string(sent[0]["items"]))

	moved, err = ed.Move("b", "c")
	require.NoError(t, err)
	assert.False(t, moved, "cross-group drag is ignored")
}

func TestLinkEditorRollsBackOnFailure(t *testing.T) {
	f, c := newFake(t)
	f.mu.Lock()
	f.fail = true
	f.mu.Unlock()

	notices := make(chan optimistic.Notice, 1)
	ed, err := c.NewLinkEditor(context.Background(), optimistic.Options[domain.Link]{
		OnFailure: func(n optimistic.Notice) { notices <- n },
	})
	require.NoError(t, err)
	defer ed.Close()

	_, err = ed.Move("b", "a")
	require.NoError(t, err)
	ed.Wait()

	n := <-notices
	var apiErr *APIError
	require.True(t, errors.As(n.Err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Music", n.Scope)
	assert.Equal(t, []string{"a", "c", "b"}, ids(ed.Items()))
	assert.Len(t, f.sent(), 1)
}

func TestGroupEditorSendsNames(t *testing.T) {
	f, c := newFake(t)

	ed, err := c.NewGroupEditor(context.Background(), optimistic.Options[domain.GroupView]{})
	require.NoError(t, err)
	defer ed.Close()

	_, err = ed.Move("Podcasts", "Music")
	require.NoError(t, err)
	ed.Wait()

	sent := f.sent()
	require.Len(t, sent, 1)
	assert.JSONEq(t, `[{"name":"Podcasts","order":1},{"name":"Music","order":2}]`, string(sent[0]["items"]))
}

func TestTimelineEditor(t *testing.T) {
	f, c := newFake(t)

	ed, err := c.NewTimelineEditor(context.Background(), optimistic.Options[domain.TimelineEvent]{})
	require.NoError(t, err)
	defer ed.Close()

	_, err = ed.Move("e2", "e1")
	require.NoError(t, err)
	ed.Wait()

	sent := f.sent()
	require.Len(t, sent, 1)
	assert.JSONEq(t, `[{"id":"e2","order":0},{"id":"e1","order":1}]`, string(sent[0]["items"]))
	assert.Equal(t, "e2", ed.Items()[0].ID)
}
