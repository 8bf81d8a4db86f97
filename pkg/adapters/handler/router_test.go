package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/config"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/services"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo, err := sqlite.NewSQLiteRepository("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	cfg := &config.Config{
		JWTSecret:  "test-secret",
		BaseURL:    "http://example.test",
		SessionTTL: time.Hour,
	}
	h := NewRouter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), Services{
		Links:    services.NewLinkService(repo),
		Groups:   services.NewGroupService(repo, repo),
		Timeline: services.NewTimelineService(repo),
		Accounts: services.NewAccountService(repo),
		Pages:    services.NewPageService(repo),
	})
	return &testServer{t: t, handler: h}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			r = strings.NewReader(raw)
		} else {
			b, err := json.Marshal(body)
			require.NoError(s.t, err)
			r = bytes.NewReader(b)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) signup(username string) {
	s.t.Helper()
	rr := s.do("POST", "/auth/signup", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": "correct-horse",
	})
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp SessionResponse
	require.NoError(s.t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotEmpty(s.t, resp.Token)
	s.token = resp.Token
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func TestLinkRoutes(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")

	rr := s.do("POST", "/api/v1/links", map[string]string{"title": "A", "url": "https://a.example", "group": "Music"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	a := decode[domain.Link](t, rr)

	rr = s.do("POST", "/api/v1/links", map[string]string{"title": "B", "url": "https://b.example", "group": "Music"})
	require.Equal(t, http.StatusCreated, rr.Code)
	b := decode[domain.Link](t, rr)

	rr = s.do("POST", "/api/v1/links", map[string]string{"title": "", "url": "https://b.example"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do("PATCH", "/api/v1/links/"+a.ID, `{"title":"A2","owner_id":"someone"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "unknown keys are rejected")

	rr = s.do("PATCH", "/api/v1/links/"+a.ID, `{"title":"A2"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "A2", decode[domain.Link](t, rr).Title)

	rr = s.do("PUT", "/api/v1/links/order", ReorderLinksRequest{
		Group: "Music",
		Items: []domain.OrderUpdate{{ID: a.ID, Order: 0}, {ID: b.ID, Order: 1}},
	})
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	rr = s.do("GET", "/api/v1/links", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	links := decode[[]domain.Link](t, rr)
	require.Len(t, links, 2)
	assert.Equal(t, a.ID, links[0].ID)

	rr = s.do("PUT", "/api/v1/links/order", ReorderLinksRequest{
		Group: "Music",
		Items: []domain.OrderUpdate{{ID: "missing", Order: 0}},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do("DELETE", "/api/v1/links/"+b.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = s.do("DELETE", "/api/v1/links/"+b.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOwnershipIsolation(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")
	rr := s.do("POST", "/api/v1/links", map[string]string{"title": "A", "url": "https://a.example"})
	require.Equal(t, http.StatusCreated, rr.Code)
	a := decode[domain.Link](t, rr)

	s.signup("bob")
	assert.Equal(t, http.StatusNotFound, s.do("PATCH", "/api/v1/links/"+a.ID, `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, s.do("DELETE", "/api/v1/links/"+a.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do("GET", "/api/v1/links/"+a.ID+"/stats", nil).Code)

	rr = s.do("GET", "/api/v1/links", nil)
	assert.Empty(t, decode[[]domain.Link](t, rr))
}

func TestGroupRoutes(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")

	rr := s.do("POST", "/api/v1/links", map[string]string{"title": "P", "url": "https://p.example", "group": "Podcasts"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = s.do("GET", "/api/v1/groups", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	views := decode[[]domain.GroupView](t, rr)
	require.Len(t, views, 4)
	assert.Equal(t, "Podcasts", views[3].Name)
	assert.False(t, views[3].Materialized)

	rr = s.do("PUT", "/api/v1/groups/describe", map[string]string{"name": "Podcasts", "description": "Weekly"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	g := decode[domain.Group](t, rr)
	assert.Equal(t, 4, g.Order)

	rr = s.do("PATCH", "/api/v1/groups/"+g.ID, map[string]string{"name": "Shows"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do("PUT", "/api/v1/groups/order", map[string]any{"items": []domain.GroupOrder{
		{Name: "Shows", Order: 1}, {Name: "Music", Order: 2}, {Name: "Socials", Order: 3}, {Name: "Work", Order: 4},
	}})
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	rr = s.do("GET", "/api/v1/groups", nil)
	views = decode[[]domain.GroupView](t, rr)
	assert.Equal(t, "Shows", views[0].Name)
	assert.Equal(t, 1, views[0].LinkCount)

	rr = s.do("DELETE", "/api/v1/groups/"+g.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestTimelineRoutes(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")

	var ids []string
	for _, title := range []string{"A", "B"} {
		rr := s.do("POST", "/api/v1/timeline", map[string]any{"title": title, "year": 2020})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		ids = append(ids, decode[domain.TimelineEvent](t, rr).ID)
	}

	rr := s.do("PUT", "/api/v1/timeline/order", map[string]any{"items": []domain.OrderUpdate{{ID: ids[1], Order: 0}, {ID: "missing", Order: 1}}})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do("PUT", "/api/v1/timeline/order", map[string]any{"items": []domain.OrderUpdate{{ID: ids[1], Order: 0}, {ID: ids[0], Order: 1}}})
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do("GET", "/api/v1/timeline", nil)
	events := decode[[]domain.TimelineEvent](t, rr)
	require.Len(t, events, 2)
	assert.Equal(t, "B", events[0].Title)

	rr = s.do("PATCH", "/api/v1/timeline/"+ids[0], map[string]any{"year": 1999})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1999, decode[domain.TimelineEvent](t, rr).Year)

	assert.Equal(t, http.StatusNoContent, s.do("DELETE", "/api/v1/timeline/"+ids[0], nil).Code)
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")

	rr := s.do("PATCH", "/api/v1/profile", map[string]any{"name": "Alice", "bio": "Hello **world** <script>x</script>"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do("POST", "/api/v1/links", map[string]string{"title": "Site", "url": "https://alice.example", "group": "Work"})
	require.Equal(t, http.StatusCreated, rr.Code)
	link := decode[domain.Link](t, rr)

	rr = s.do("POST", "/api/v1/timeline", map[string]any{"title": "Joined", "year": 2020, "media_url": "https://cdn.example/a.png"})
	require.Equal(t, http.StatusCreated, rr.Code)

	s.token = ""

	rr = s.do("GET", "/u/alice?no_stat=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<strong>world</strong>")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "/l/"+link.ID)

	rr = s.do("GET", "/u/alice/story", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "https://cdn.example/a.png")

	rr = s.do("GET", "/public/alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[domain.PublicPage](t, rr)
	require.Len(t, page.Timeline, 1)
	assert.Empty(t, page.Timeline[0].MediaURL)
	assert.True(t, page.Timeline[0].HasMedia)
	require.Len(t, page.Groups, 1)
	assert.Equal(t, "Work", page.Groups[0].Name)

	assert.Equal(t, http.StatusNotFound, s.do("GET", "/u/nobody", nil).Code)

	rr = s.do("GET", "/l/"+link.ID+"?no_stat=1", nil)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://alice.example", rr.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, s.do("GET", "/l/missing", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do("GET", "/api/v1/links", nil).Code)
}

func TestTimelineMediaRoute(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")

	create := func(title, media string) string {
		rr := s.do("POST", "/api/v1/timeline", map[string]any{"title": title, "year": 2020, "media_url": media})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		return decode[domain.TimelineEvent](t, rr).ID
	}
	inline := create("Inline", "data:image/png;base64,aGVsbG8=")
	external := create("External", "https://cdn.example/a.png")
	bare := create("Bare", "")

	s.token = ""

	rr := s.do("GET", "/api/timeline/"+inline+"/media", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hello", rr.Body.String())
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000, immutable", rr.Header().Get("Cache-Control"))

	rr = s.do("GET", "/api/timeline/"+external+"/media", nil)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://cdn.example/a.png", rr.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, s.do("GET", "/api/timeline/"+bare+"/media", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do("GET", "/api/timeline/missing/media", nil).Code)
}

func TestPageViewsReachDashboard(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")
	token := s.token

	rr := s.do("POST", "/api/v1/links", map[string]string{"title": "Site", "url": "https://alice.example"})
	require.Equal(t, http.StatusCreated, rr.Code)

	s.token = ""
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, s.do("GET", "/u/alice", nil).Code)
	}
	require.Equal(t, http.StatusOK, s.do("GET", "/u/alice?no_stat=1", nil).Code)
	s.token = token

	// views are recorded after the response is written
	var dash domain.Dashboard
	require.Eventually(t, func() bool {
		rr := s.do("GET", "/api/v1/dashboard?limit=1000", nil)
		if rr.Code != http.StatusOK {
			return false
		}
		dash = decode[domain.Dashboard](t, rr)
		return dash.Views == 2
	}, 2*time.Second, 20*time.Millisecond)

	assert.Zero(t, dash.CTR)
	assert.Equal(t, map[string]int64{"Direct": 2}, dash.Referrers)
	assert.Len(t, dash.TopLinks, 1)
}

func TestPasswordLogin(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")

	rr := s.do("POST", "/auth/login", map[string]string{"email": "alice@example.com", "password": "wrong-horse"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do("POST", "/auth/login", map[string]string{"email": "alice@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[SessionResponse](t, rr)
	assert.Equal(t, "alice", resp.User.Username)

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	req := httptest.NewRequest("GET", "/api/v1/profile", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
