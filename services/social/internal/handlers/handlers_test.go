package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/socialtrust/internal/platform/api"
	"github.com/example/socialtrust/internal/platform/auth"
	"github.com/example/socialtrust/internal/platform/httpserver"
	"github.com/example/socialtrust/services/social/internal/actions"
	"github.com/example/socialtrust/services/social/internal/events"
	"github.com/example/socialtrust/services/social/internal/feed"
	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/store"
)

var testSecret = []byte("handlers-test-secret")

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	router http.Handler
	svc    *actions.Service
	stores store.Stores
	clock  *clock
	events *events.Broadcaster
}

func newEnv() testEnv {
	st := store.NewInMemoryStores()
	clk := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	b := events.NewBroadcaster(64)
	svc := actions.New(actions.Deps{Stores: st, Policy: policy.Default(), Observer: b, Now: clk.Now})

	r := chi.NewRouter()
	httpserver.SetupRouter(r)
	Mount(r, RouteDeps{Service: svc, Verifier: auth.JWTVerifier{Secret: testSecret}, Events: b})
	return testEnv{router: r, svc: svc, stores: st, clock: clk, events: b}
}

func token(t *testing.T, userID, name, role string) string {
	t.Helper()
	tok, _, err := auth.Issuer{Secret: testSecret}.Issue(userID, name, role, time.Time{})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (e testEnv) do(t *testing.T, method, url, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userID, "", ""))
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) api.APIError {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rr.Body.String())
	}
	return resp.Error
}

func TestCreatePost_RateLimited(t *testing.T) {
	env := newEnv()

	rr := env.do(t, http.MethodPost, "/v1/posts", `{"text":"hello"}`, "alice")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var p store.Post
	if err := json.NewDecoder(rr.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.AuthorID != "alice" || p.Visibility != store.VisibilityPublic {
		t.Fatalf("unexpected post: %+v", p)
	}

	rr = env.do(t, http.MethodPost, "/v1/posts", `{"text":"again"}`, "alice")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rr.Header().Get("Retry-After"))
	}
	if e := decodeError(t, rr); e.Code != "RATE_LIMITED" || e.Details["action"] != policy.ActionPost {
		t.Fatalf("unexpected error: %+v", e)
	}

	env.clock.Advance(time.Minute)
	if rr := env.do(t, http.MethodPost, "/v1/posts", `{"text":"later"}`, "alice"); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 after window, got %d", rr.Code)
	}
}

func TestCreatePost_Unauthorized(t *testing.T) {
	env := newEnv()
	rr := env.do(t, http.MethodPost, "/v1/posts", `{"text":"hello"}`, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestCreatePost_BadInput(t *testing.T) {
	env := newEnv()
	if rr := env.do(t, http.MethodPost, "/v1/posts", `{not json`, "alice"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", rr.Code)
	}
	rr := env.do(t, http.MethodPost, "/v1/posts", `{"text":"   "}`, "alice")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty text, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != "INVALID_ARGUMENT" {
		t.Fatalf("expected INVALID_ARGUMENT, got %q", e.Code)
	}
}

func TestCreatePost_Muted(t *testing.T) {
	env := newEnv()
	if _, _, err := env.stores.Trust.AddTrust(context.Background(), "troll", -5, "", "test"); err != nil {
		t.Fatal(err)
	}
	rr := env.do(t, http.MethodPost, "/v1/posts", `{"text":"hello"}`, "troll")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != "MUTED" {
		t.Fatalf("expected MUTED, got %q", e.Code)
	}
}

func TestLikePost_Twice(t *testing.T) {
	env := newEnv()
	p, err := env.svc.CreatePost(context.Background(), "author", "likeable", "")
	if err != nil {
		t.Fatal(err)
	}

	rr := env.do(t, http.MethodPost, "/v1/posts/"+p.ID+"/like", "", "fan")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = env.do(t, http.MethodPost, "/v1/posts/"+p.ID+"/like", "", "fan")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat, got %d", rr.Code)
	}
	var res actions.LikeResult
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Created || res.Post.Likes != 1 {
		t.Fatalf("expected one like, got %+v", res)
	}

	if rr := env.do(t, http.MethodPost, "/v1/posts/missing/like", "", "fan"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestThread_FlattenedToDisplayDepth(t *testing.T) {
	env := newEnv()
	ctx := context.Background()
	p, _ := env.svc.CreatePost(ctx, "author", "post", "")

	rr := env.do(t, http.MethodPost, "/v1/posts/"+p.ID+"/comments", `{"text":"top"}`, "a")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var top store.Comment
	_ = json.NewDecoder(rr.Body).Decode(&top)

	rr = env.do(t, http.MethodPost, "/v1/posts/"+p.ID+"/comments", `{"text":"reply","parent_id":"`+top.ID+`"}`, "b")
	var reply store.Comment
	_ = json.NewDecoder(rr.Body).Decode(&reply)

	rr = env.do(t, http.MethodPost, "/v1/posts/"+p.ID+"/comments", `{"text":"deep","parent_id":"`+reply.ID+`"}`, "c")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for deep reply, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/v1/posts/"+p.ID+"/comments", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Comments []*feed.ThreadNode `json:"comments"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Comments) != 1 {
		t.Fatalf("expected 1 root, got %d", len(resp.Comments))
	}
	replies := resp.Comments[0].Replies
	if len(replies) != 2 || replies[0].Comment.Text != "reply" || replies[1].Comment.Text != "deep" {
		t.Fatalf("unexpected replies: %+v", replies)
	}
	if len(replies[0].Replies) != 0 {
		t.Fatalf("expected no third level, got %+v", replies[0].Replies)
	}

	if rr := env.do(t, http.MethodGet, "/v1/posts/missing/comments", "", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestFriendRequestFlow(t *testing.T) {
	env := newEnv()

	rr := env.do(t, http.MethodPost, "/v1/friends/requests", `{"to":"bob"}`, "alice")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var fr store.FriendRequest
	_ = json.NewDecoder(rr.Body).Decode(&fr)

	rr = env.do(t, http.MethodGet, "/v1/friends/requests", "", "bob")
	var incoming struct {
		Requests []store.FriendRequest `json:"requests"`
	}
	_ = json.NewDecoder(rr.Body).Decode(&incoming)
	if len(incoming.Requests) != 1 || incoming.Requests[0].From != "alice" {
		t.Fatalf("unexpected incoming: %+v", incoming.Requests)
	}

	rr = env.do(t, http.MethodPost, "/v1/friends/requests/"+fr.ID+"/approve", "", "alice")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for sender approval, got %d", rr.Code)
	}
	rr = env.do(t, http.MethodPost, "/v1/friends/requests/"+fr.ID+"/approve", "", "bob")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/v1/friends", "", "alice")
	var friends struct {
		Friends []string `json:"friends"`
	}
	_ = json.NewDecoder(rr.Body).Decode(&friends)
	if len(friends.Friends) != 1 || friends.Friends[0] != "bob" {
		t.Fatalf("expected [bob], got %v", friends.Friends)
	}

	if rr := env.do(t, http.MethodPost, "/v1/friends/requests", `{"to":"alice"}`, "alice"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self request, got %d", rr.Code)
	}
}

func TestReports_ModeratorOnly(t *testing.T) {
	env := newEnv()
	ctx := context.Background()
	p, _ := env.svc.CreatePost(ctx, "troll", "bad", "")

	rr := env.do(t, http.MethodPost, "/v1/reports", `{"target_type":"post","target_id":"`+p.ID+`","reason":"spam"}`, "victim")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var rep store.Report
	_ = json.NewDecoder(rr.Body).Decode(&rep)
	if rep.TargetAuthorID != "troll" || rep.ReporterID != "victim" || !rep.PenaltyApplied {
		t.Fatalf("unexpected report: %+v", rep)
	}

	if rr := env.do(t, http.MethodGet, "/v1/reports", "", "victim"); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for regular user, got %d", rr.Code)
	}

	if err := env.stores.Users.SetRole(ctx, "mod", store.RoleModerator); err != nil {
		t.Fatal(err)
	}
	rr = env.do(t, http.MethodGet, "/v1/reports", "", "mod")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for moderator, got %d", rr.Code)
	}
	var list struct {
		Reports []store.Report `json:"reports"`
	}
	_ = json.NewDecoder(rr.Body).Decode(&list)
	if len(list.Reports) != 1 || list.Reports[0].ID != rep.ID {
		t.Fatalf("unexpected reports: %+v", list.Reports)
	}

	if rr := env.do(t, http.MethodPost, "/v1/reports/"+rep.ID+"/retry", "", "mod"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on retry, got %d", rr.Code)
	}
	status, _ := env.svc.Trust(ctx, "troll")
	if status.Score != -2 {
		t.Fatalf("retry must not apply the penalty twice, score=%d", status.Score)
	}
}

func TestProfile(t *testing.T) {
	env := newEnv()

	req := httptest.NewRequest(http.MethodPost, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "alice", "Alice", ""))
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var p actions.Profile
	_ = json.NewDecoder(rr.Body).Decode(&p)
	if p.DisplayName != "Alice" || p.Role != store.RoleUser || p.Muted {
		t.Fatalf("unexpected profile: %+v", p)
	}

	if rr := env.do(t, http.MethodPost, "/v1/me", `{"display_name":"Other"}`, "alice"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for existing profile, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPut, "/v1/me/preferences", `{"dark_mode":true}`, "alice")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	_ = json.NewDecoder(rr.Body).Decode(&p)
	if !p.DarkMode {
		t.Fatal("expected dark mode on")
	}
	if rr := env.do(t, http.MethodPut, "/v1/me/preferences", `{}`, "alice"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without dark_mode, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/v1/me/devices", `{"token":"push-token","platform":"IOS"}`, "alice")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "push-token") {
		t.Fatal("device token must not be echoed")
	}
}

func TestFeeds(t *testing.T) {
	env := newEnv()
	ctx := context.Background()
	quiet, _ := env.svc.CreatePost(ctx, "a", "quiet", "")
	loud, _ := env.svc.CreatePost(ctx, "b", "loud", "")
	_, _ = env.svc.CreatePost(ctx, "c", "private", store.VisibilityFriends)
	for _, u := range []string{"x", "y"} {
		if _, err := env.svc.Like(ctx, u, loud.ID); err != nil {
			t.Fatal(err)
		}
	}

	rr := env.do(t, http.MethodGet, "/v1/feed/trending?limit=1", "", "")
	var resp feedResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Posts) != 1 || resp.Posts[0].ID != loud.ID {
		t.Fatalf("unexpected trending: %+v", resp.Posts)
	}

	rr = env.do(t, http.MethodGet, "/v1/feed/public", "", "")
	resp = feedResponse{}
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Posts) != 2 || resp.Posts[1].ID != quiet.ID {
		t.Fatalf("unexpected public feed: %+v", resp.Posts)
	}

	rr = env.do(t, http.MethodGet, "/v1/feed/friends", "", "lonely")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"posts":[]`) {
		t.Fatalf("expected empty friend feed, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestWriteError_PartialFailure(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/posts/p1/like", nil)
	rr := httptest.NewRecorder()
	writeError(rr, req, &policy.PartialFailureError{
		Op: "like", Completed: "like p1", Pending: "author trust credit", Err: errors.New("db down"),
	})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	e := decodeError(t, rr)
	if e.Code != "PARTIAL_FAILURE" || e.Details["pending"] != "author trust credit" {
		t.Fatalf("unexpected error: %+v", e)
	}
}

func TestWriteError_Internal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	writeError(rr, req, errors.New("boom"))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != "INTERNAL" {
		t.Fatalf("expected INTERNAL, got %q", e.Code)
	}
}

func TestEvents_Stream(t *testing.T) {
	env := newEnv()
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events?types=post.created", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "watcher", "", ""))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event stream, got %q", ct)
	}

	if _, _, err := env.svc.EnsureProfile(context.Background(), "alice", ""); err != nil {
		t.Fatal(err)
	}
	p, err := env.svc.CreatePost(context.Background(), "alice", "live", "")
	if err != nil {
		t.Fatal(err)
	}

	sc := bufio.NewScanner(resp.Body)
	var gotEvent bool
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "event: ") {
			if line != "event: "+events.PostCreated {
				t.Fatalf("filtered stream delivered %q", line)
			}
			gotEvent = true
			continue
		}
		if gotEvent && strings.HasPrefix(line, "data: ") {
			var ev events.Event
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if ev.UserID != "alice" || ev.Data["post_id"] != p.ID {
				t.Fatalf("unexpected event: %+v", ev)
			}
			return
		}
	}
	t.Fatalf("stream ended without event: %v", sc.Err())
}
