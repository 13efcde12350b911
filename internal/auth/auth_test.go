package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	biomass "PalmBiomass/internal/calc/biomass"
)

func startSession(t *testing.T, env *Authenv, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	env.SessionHandler(rec, httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(body)))
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestSessionHandlerOpen(t *testing.T) {
	env := &Authenv{JWTkey: []byte("test-key")}
	rec := startSession(t, env, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(t, rec)
	if !cookie.Expires.IsZero() {
		t.Fatalf("session cookie should not persist, expires=%v", cookie.Expires)
	}
	claims, err := env.ParseToken(cookie.Value)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.ID == "" || !claims.Settings.IsZero() {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestSessionHandlerAccessCode(t *testing.T) {
	hash, err := HashAccessCode("palm-2024")
	if err != nil {
		t.Fatalf("HashAccessCode: %v", err)
	}
	env := &Authenv{JWTkey: []byte("test-key"), AccessHash: []byte(hash)}

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", `{"access_code":"nope"}`, http.StatusUnauthorized},
		{"bad-json", `{`, http.StatusBadRequest},
		{"ok", `{"access_code":" palm-2024 "}`, http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := startSession(t, env, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status=%d, want %d", rec.Code, tc.status)
			}
		})
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	env := &Authenv{JWTkey: []byte("test-key")}
	a := sessionCookie(t, startSession(t, env, ""))
	b := sessionCookie(t, startSession(t, env, ""))

	ca, err := env.ParseToken(a.Value)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	cb, err := env.ParseToken(b.Value)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if ca.ID == cb.ID {
		t.Fatalf("sessions share id %s", ca.ID)
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := &Authenv{JWTkey: []byte("test-key")}
	var gotID string
	var gotSettings biomass.Settings
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = SessionIDFromContext(r.Context())
		gotSettings = biomass.SettingsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := env.AuthMiddleware(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no cookie: status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad cookie: status=%d", rec.Code)
	}

	other := &Authenv{JWTkey: []byte("other-key")}
	issued := httptest.NewRecorder()
	if _, err := other.IssueToken(issued, "foreign", biomass.Settings{}); err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, issued))
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("foreign key: status=%d", rec.Code)
	}

	issued = httptest.NewRecorder()
	settings := biomass.Settings{Preset: "legacy", Overrides: map[string]float64{"EFB": 22}}
	if _, err := env.IssueToken(issued, "s-1", settings); err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, issued))
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("valid cookie: status=%d", rec.Code)
	}
	if gotID != "s-1" || gotSettings.Preset != "legacy" || gotSettings.Overrides["EFB"] != 22 {
		t.Fatalf("context id=%q settings=%+v", gotID, gotSettings)
	}
}

func TestLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	h := limiter.LimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	codes := []int{}
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:" + []string{"1000", "1001", "1002"}[i]
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes=%v, want 200 200 429 for one host on different ports", codes)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1000"
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("other host throttled: %d", rec.Code)
	}
}

func (i *IPRateLimiter) size() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.ips)
}

func TestLimiterEvictsIdleHosts(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.getLimiter("10.0.0.1")
	limiter.getLimiter("10.0.0.2")
	if n := limiter.size(); n != 2 {
		t.Fatalf("size=%d, want 2", n)
	}

	now = now.Add(IdleTTL / 2)
	limiter.getLimiter("10.0.0.2")
	now = now.Add(IdleTTL/2 + time.Second)
	limiter.getLimiter("10.0.0.3")
	if n := limiter.size(); n != 2 {
		t.Fatalf("size=%d, want 2 after sweep", n)
	}
	if _, ok := limiter.ips["10.0.0.1"]; ok {
		t.Fatalf("idle host not evicted")
	}
	if _, ok := limiter.ips["10.0.0.2"]; !ok {
		t.Fatalf("recent host evicted")
	}
}
