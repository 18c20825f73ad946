package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"PenaltyHub/internal/adapter/local"
	"PenaltyHub/internal/config"
	"PenaltyHub/internal/model"
	"PenaltyHub/internal/repository"
	"PenaltyHub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := repository.NewMemoryStore()
	identity, err := local.New(&config.IdentityConfig{BcryptCost: bcrypt.MinCost}, store, log)
	if err != nil {
		t.Fatal(err)
	}
	users := repository.NewUserRepository(store)
	userSvc := service.NewUserService(service.UserServiceDeps{
		Users:    users,
		Identity: identity,
		Tags:     service.NewTagAllocator(users, 0, log),
		Logger:   log,
	})
	matchSvc := service.NewMatchService(repository.NewMatchRepository(store), config.MatchConfig{}, log)
	return NewRouter(config.ServerConfig{CORSOrigins: []string{"http://localhost:3000"}}, userSvc, matchSvc, log)
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAuthFlow(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/auth/register/nickname", gin.H{"nickname": "Nico", "tag": "0007", "password": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("register: %d %s", w.Code, w.Body)
	}
	registered := decode[model.User](t, w)

	w = do(t, r, http.MethodPost, "/auth/login/nickname", gin.H{"nickname": "Nico", "tag": "0007", "password": "secret"})
	if w.Code != http.StatusOK || decode[model.User](t, w).UID != registered.UID {
		t.Fatalf("login: %d %s", w.Code, w.Body)
	}

	cases := []struct {
		name   string
		path   string
		body   gin.H
		status int
	}{
		{"unknown tag", "/auth/login/nickname", gin.H{"nickname": "Nico", "tag": "9999", "password": "secret"}, http.StatusNotFound},
		{"wrong password", "/auth/login/nickname", gin.H{"nickname": "Nico", "tag": "0007", "password": "nope!!"}, http.StatusUnauthorized},
		{"tag taken", "/auth/register/nickname", gin.H{"nickname": "Nico", "tag": "0007", "password": "secret"}, http.StatusBadRequest},
		{"malformed tag", "/auth/register/nickname", gin.H{"nickname": "Nico", "tag": "7", "password": "secret"}, http.StatusBadRequest},
		{"unknown email", "/auth/login/email", gin.H{"email": "ghost@example.com", "password": "secret"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(t, r, http.MethodPost, tc.path, tc.body); w.Code != tc.status {
				t.Errorf("status = %d, want %d (%s)", w.Code, tc.status, w.Body)
			}
		})
	}
}

func TestRegisterEmailAlias(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/auth/register", gin.H{"email": "a@example.com", "password": "secret1", "nickname": "Nico"})
	if w.Code != http.StatusOK {
		t.Fatalf("register: %d %s", w.Code, w.Body)
	}
	w = do(t, r, http.MethodPost, "/auth/login/email", gin.H{"email": "a@example.com", "password": "secret1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body)
	}
}

func TestUserRoutes(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/auth/register/email", gin.H{"email": "a@example.com", "password": "secret1", "nickname": "Nico"})
	uid := decode[model.User](t, w).UID

	w = do(t, r, http.MethodPatch, "/users/"+uid, gin.H{"favorite_team": "Arsenal"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", w.Code, w.Body)
	}
	if u := decode[model.User](t, w); u.FavoriteTeam == nil || *u.FavoriteTeam != "Arsenal" {
		t.Errorf("favorite_team = %v", u.FavoriteTeam)
	}

	w = do(t, r, http.MethodPost, "/users/"+uid+"/results", gin.H{"goals_scored": 2, "goals_conceded": 1, "result": "win"})
	if w.Code != http.StatusOK {
		t.Fatalf("results: %d %s", w.Code, w.Body)
	}
	w = do(t, r, http.MethodGet, "/users/"+uid+"/stats", nil)
	if s := decode[model.UserStats](t, w); s.TotalMatches != 1 || s.Wins != 1 || s.GoalsScored != 2 || s.LastMatchAt == nil {
		t.Errorf("stats = %+v", s)
	}

	if w := do(t, r, http.MethodGet, "/users/ghost", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing user: %d", w.Code)
	}
	if w := do(t, r, http.MethodPut, "/users/"+uid, gin.H{"status": "banned"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad status: %d", w.Code)
	}
}

func TestUploadAvatarDisabled(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/auth/register/nickname", gin.H{"nickname": "Nico", "tag": "0007", "password": "secret"})
	uid := decode[model.User](t, w).UID

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "me.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("\x89PNG"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/users/"+uid+"/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 (%s)", rec.Code, rec.Body)
	}
}

func TestMatchRoutes(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/matches", gin.H{"home_team": "A", "away_team": "B", "players": []string{"u1"}})
	if w.Code != http.StatusOK {
		t.Fatalf("create: %d %s", w.Code, w.Body)
	}
	m := decode[model.Match](t, w)
	if m.Status != model.MatchScheduled || m.HomeScore != 0 {
		t.Fatalf("created = %+v", m)
	}

	w = do(t, r, http.MethodPut, "/matches/"+m.MatchID+"/score", gin.H{"home_score": 3, "away_score": 1, "status": "finished"})
	if w.Code != http.StatusOK {
		t.Fatalf("score: %d %s", w.Code, w.Body)
	}
	w = do(t, r, http.MethodGet, "/matches/"+m.MatchID, nil)
	if got := decode[model.Match](t, w); got.HomeScore != 3 || got.AwayScore != 1 || got.Status != model.MatchFinished {
		t.Errorf("match = %+v", got)
	}

	w = do(t, r, http.MethodGet, "/matches?status=finished", nil)
	if list := decode[[]model.Match](t, w); len(list) != 1 || list[0].MatchID != m.MatchID {
		t.Errorf("list = %+v", list)
	}
	w = do(t, r, http.MethodGet, "/matches?status=live", nil)
	if list := decode[[]model.Match](t, w); len(list) != 0 {
		t.Errorf("live list = %+v", list)
	}
	if w := do(t, r, http.MethodGet, "/matches?status=postponed", nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown status: %d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/matches/"+m.MatchID+"/events", gin.H{"type": "goal", "minute": 12})
	if w.Code != http.StatusOK {
		t.Fatalf("event: %d %s", w.Code, w.Body)
	}
	w = do(t, r, http.MethodPut, "/matches/"+m.MatchID+"/stats", gin.H{"possession_home": 60, "possession_away": 40})
	if w.Code != http.StatusOK {
		t.Fatalf("stats: %d %s", w.Code, w.Body)
	}
	w = do(t, r, http.MethodGet, "/matches/"+m.MatchID+"/stats", nil)
	if st := decode[model.MatchStats](t, w); len(st.Events) != 1 || st.PossessionHome == nil || *st.PossessionHome != 60 {
		t.Errorf("stats = %+v", st)
	}

	if w := do(t, r, http.MethodGet, "/matches/nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing match: %d", w.Code)
	}
	if w := do(t, r, http.MethodPut, "/matches/nope/score", gin.H{"home_score": 1, "away_score": 0}); w.Code != http.StatusNotFound {
		t.Errorf("missing match score: %d", w.Code)
	}
}
