// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/pals/internal/audit"
	"github.com/taibuivan/pals/internal/platform/ctxutil"
	"github.com/taibuivan/pals/internal/platform/dberr"
	"github.com/taibuivan/pals/internal/platform/middleware"
	"github.com/taibuivan/pals/internal/platform/routes"
	"github.com/taibuivan/pals/internal/users/session"
)

// # Fakes

type memoryStore struct {
	mu        sync.Mutex
	records   map[string]session.Record
	lookupErr error
	deletes   []string
}

func (store *memoryStore) Lookup(_ context.Context, token string) (*session.Record, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.lookupErr != nil {
		return nil, store.lookupErr
	}
	record, ok := store.records[token]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return &record, nil
}

func (store *memoryStore) Delete(_ context.Context, token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.deletes = append(store.deletes, token)
	delete(store.records, token)
	return nil
}

type recordingLog struct {
	mu        sync.Mutex
	entries   []audit.Entry
	outcomes  map[int64]audit.Outcome
	insertErr error
	updateErr error
	release   chan struct{}
}

func newRecordingLog() *recordingLog {
	return &recordingLog{outcomes: map[int64]audit.Outcome{}}
}

func (log *recordingLog) Insert(ctx context.Context, entry audit.Entry) (int64, error) {
	if log.release != nil {
		select {
		case <-log.release:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	log.mu.Lock()
	defer log.mu.Unlock()

	if log.insertErr != nil {
		return 0, log.insertErr
	}
	log.entries = append(log.entries, entry)
	return int64(len(log.entries)), nil
}

func (log *recordingLog) Update(_ context.Context, id int64, outcome audit.Outcome) error {
	log.mu.Lock()
	defer log.mu.Unlock()

	if log.updateErr != nil {
		return log.updateErr
	}
	log.outcomes[id] = outcome
	return nil
}

func (log *recordingLog) recorded() ([]audit.Entry, map[int64]audit.Outcome) {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.entries, log.outcomes
}

// # Helpers

func palsStore() *memoryStore {
	return &memoryStore{records: map[string]session.Record{
		"abc123": {Identity: session.Identity{
			UserID:       42,
			Name:         "Ana",
			Email:        "ana@example.com",
			ImageDataURL: "data:image/png;base64,AAAA",
			IsVerified:   true,
			Roles:        []int64{2, 1},
			Permissions:  []string{"write", "read", "read"},
		}},
		"stale": {Identity: session.Identity{UserID: 9}, Expired: true},
	}}
}

func serve(t *testing.T, gate func(http.Handler) http.Handler, handler http.HandlerFunc, request *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	gate(handler).ServeHTTP(recorder, request)
	return recorder
}

func withSession(request *http.Request, token string) *http.Request {
	request.AddCookie(&http.Cookie{Name: "session", Value: token})
	return request
}

func okHandler(called *bool) http.HandlerFunc {
	return func(writer http.ResponseWriter, _ *http.Request) {
		*called = true
		writer.WriteHeader(http.StatusOK)
		_, _ = writer.Write([]byte("ok"))
	}
}

func newGate(store session.Store, log audit.Log, cfg middleware.GateConfig) func(http.Handler) http.Handler {
	return middleware.Gate(routes.NewClassifier(), session.NewResolver(store), log, cfg)
}

// # Branching

/*
TestGate_Redirects covers every short-circuit of the gate: the handler never
runs and nothing is audited.
*/
func TestGate_Redirects(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		token    string
		location string
		reason   string
	}{
		{"no_cookie_protected", "/pals", "", "/login?redirectTo=/pals", middleware.ReasonNotAuthenticated},
		{"unknown_session_protected", "/pals", "nope", "/login?redirectTo=/pals", middleware.ReasonSessionExpired},
		{"expired_session_protected", "/its_a_match/3", "stale", "/login?redirectTo=/its_a_match/3", middleware.ReasonInvalidSession},
		{"live_on_login", "/login", "abc123", "/", middleware.ReasonAlreadyLoggedIn},
		{"live_on_signup", "/signup", "abc123", "/", middleware.ReasonAlreadyLoggedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := newRecordingLog()
			called := false

			request := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				request = withSession(request, tt.token)
			}

			recorder := serve(t, newGate(palsStore(), log, middleware.GateConfig{}), okHandler(&called), request)

			assert.Equal(t, http.StatusSeeOther, recorder.Code)
			assert.Equal(t, tt.location, recorder.Header().Get("Location"))
			assert.Equal(t, tt.reason, recorder.Body.String())
			assert.False(t, called)

			entries, _ := log.recorded()
			assert.Empty(t, entries)
		})
	}
}

/*
TestGate_AnonymousOnPublicRoutes verifies public routes serve visitors without
a usable session.
*/
func TestGate_AnonymousOnPublicRoutes(t *testing.T) {
	for _, token := range []string{"", "nope"} {
		t.Run("token_"+token, func(t *testing.T) {
			log := newRecordingLog()
			var seen *session.Identity
			handler := func(writer http.ResponseWriter, request *http.Request) {
				seen = ctxutil.GetIdentity(request.Context())
				writer.WriteHeader(http.StatusOK)
			}

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if token != "" {
				request = withSession(request, token)
			}

			recorder := serve(t, newGate(palsStore(), log, middleware.GateConfig{}), handler, request)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Nil(t, seen)

			entries, outcomes := log.recorded()
			require.Len(t, entries, 1)
			assert.Nil(t, entries[0].UserSession)
			assert.Equal(t, audit.Outcome{Status: http.StatusOK}, outcomes[1])
		})
	}
}

/*
TestGate_ExpiredOnPublicRoute verifies an expired session is purged, its cookie
cleared and its snapshot audited while the visitor continues anonymously.
*/
func TestGate_ExpiredOnPublicRoute(t *testing.T) {
	store := palsStore()
	log := newRecordingLog()
	var seen *session.Identity
	handler := func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetIdentity(request.Context())
		writer.WriteHeader(http.StatusOK)
	}

	request := withSession(httptest.NewRequest(http.MethodGet, "/signup", nil), "stale")
	recorder := serve(t, newGate(store, log, middleware.GateConfig{}), handler, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, seen)
	assert.Equal(t, []string{"stale"}, store.deletes)

	cookie := recorder.Result().Cookies()
	require.Len(t, cookie, 1)
	assert.Equal(t, "session", cookie[0].Name)
	assert.Equal(t, -1, cookie[0].MaxAge)
	assert.Equal(t, "/", cookie[0].Path)

	entries, _ := log.recorded()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].UserSession)
	assert.True(t, entries[0].UserSession.Expired)
	assert.Equal(t, int64(9), entries[0].UserSession.UserID)
}

/*
TestGate_ExpiredOnProtectedRoute verifies the redirect also purges the session
and clears its cookie.
*/
func TestGate_ExpiredOnProtectedRoute(t *testing.T) {
	store := palsStore()
	request := withSession(httptest.NewRequest(http.MethodGet, "/pals", nil), "stale")
	called := false

	recorder := serve(t, newGate(store, newRecordingLog(), middleware.GateConfig{}), okHandler(&called), request)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, []string{"stale"}, store.deletes)
	require.Len(t, recorder.Result().Cookies(), 1)
	assert.Equal(t, -1, recorder.Result().Cookies()[0].MaxAge)
}

/*
TestGate_LiveSession walks the abc123 / user 42 / GET /pals scenario end to end.
*/
func TestGate_LiveSession(t *testing.T) {
	log := newRecordingLog()
	var seen *session.Identity
	handler := func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetIdentity(request.Context())
		writer.Header().Set("Content-Type", "text/html")
		writer.WriteHeader(http.StatusOK)
		_, _ = writer.Write([]byte("<ul></ul>"))
	}

	request := withSession(httptest.NewRequest(http.MethodGet, "/pals?page=2", nil), "abc123")
	recorder := serve(t, newGate(palsStore(), log, middleware.GateConfig{RedactHeaders: []string{"cookie"}}), handler, request)

	// 1. Response passes through unchanged
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/html", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "<ul></ul>", recorder.Body.String())

	// 2. Handler sees the identity with normalised permissions
	require.NotNil(t, seen)
	assert.Equal(t, int64(42), seen.UserID)
	assert.Equal(t, []string{"read", "write"}, seen.Permissions)
	assert.Equal(t, []int64{1, 2}, seen.Roles)

	// 3. One record with the snapshot (minus avatar) and status only
	entries, outcomes := log.recorded()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "/pals", entry.Path)
	assert.Equal(t, http.MethodGet, entry.Method)
	assert.Equal(t, "2", entry.Params["page"])
	assert.NotContains(t, entry.Headers["cookie"], "abc123")
	require.NotNil(t, entry.UserSession)
	assert.Equal(t, int64(42), entry.UserSession.UserID)
	assert.False(t, entry.UserSession.Expired)
	assert.Equal(t, []string{"read", "write"}, entry.UserSession.Permissions)

	require.Contains(t, outcomes, int64(1))
	assert.Equal(t, http.StatusOK, outcomes[1].Status)
	assert.Nil(t, outcomes[1].Body)
}

// # Audit Outcome

/*
TestGate_FailureCapturesBody verifies that a 5xx stores the raw request body
even though the handler consumed it.
*/
func TestGate_FailureCapturesBody(t *testing.T) {
	log := newRecordingLog()
	handler := func(writer http.ResponseWriter, request *http.Request) {
		_, _ = io.ReadAll(request.Body)
		http.Error(writer, "boom", http.StatusInternalServerError)
	}

	request := withSession(httptest.NewRequest(http.MethodPost, "/pals/meet", strings.NewReader(`{"pal_id":7}`)), "abc123")
	recorder := serve(t, newGate(palsStore(), log, middleware.GateConfig{}), handler, request)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "boom")

	_, outcomes := log.recorded()
	require.NotNil(t, outcomes[1].Body)
	assert.Equal(t, `{"pal_id":7}`, *outcomes[1].Body)
	assert.Equal(t, http.StatusInternalServerError, outcomes[1].Status)
}

/*
TestGate_FailureMarksTruncatedBody verifies a body longer than the capture
limit is stored cut and flagged.
*/
func TestGate_FailureMarksTruncatedBody(t *testing.T) {
	log := newRecordingLog()
	handler := func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
	}

	sent := strings.Repeat("x", 100)
	request := withSession(httptest.NewRequest(http.MethodPost, "/pals/meet", strings.NewReader(sent)), "abc123")
	serve(t, newGate(palsStore(), log, middleware.GateConfig{BodyLimit: 10}), handler, request)

	_, outcomes := log.recorded()
	require.NotNil(t, outcomes[1].Body)
	assert.Equal(t, sent[:10], *outcomes[1].Body)
	assert.True(t, outcomes[1].BodyTruncated)
}

/*
TestGate_FailureStoresValidUTF8 verifies binary bodies are stored as valid text.
*/
func TestGate_FailureStoresValidUTF8(t *testing.T) {
	log := newRecordingLog()
	handler := func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusBadGateway)
	}

	request := withSession(httptest.NewRequest(http.MethodPost, "/pals/meet", strings.NewReader("a\xff\xfeb")), "abc123")
	recorder := serve(t, newGate(palsStore(), log, middleware.GateConfig{}), handler, request)

	assert.Equal(t, http.StatusBadGateway, recorder.Code)

	_, outcomes := log.recorded()
	require.NotNil(t, outcomes[1].Body)
	assert.Equal(t, "a\uFFFDb", *outcomes[1].Body)
	assert.False(t, outcomes[1].BodyTruncated)
}

/*
TestGate_ClientErrorOmitsBody verifies statuses below 500 never store the body.
*/
func TestGate_ClientErrorOmitsBody(t *testing.T) {
	log := newRecordingLog()
	handler := func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	}

	request := withSession(httptest.NewRequest(http.MethodPost, "/pals/meet", strings.NewReader(`secret`)), "abc123")
	serve(t, newGate(palsStore(), log, middleware.GateConfig{}), handler, request)

	_, outcomes := log.recorded()
	assert.Equal(t, audit.Outcome{Status: http.StatusNotFound}, outcomes[1])
}

/*
TestGate_InsertOverlapsHandler verifies the handler runs while the insert is
still in flight and the update waits for it.
*/
func TestGate_InsertOverlapsHandler(t *testing.T) {
	log := newRecordingLog()
	log.release = make(chan struct{})

	handler := func(writer http.ResponseWriter, _ *http.Request) {
		close(log.release)
		writer.WriteHeader(http.StatusAccepted)
	}

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		request := withSession(httptest.NewRequest(http.MethodGet, "/pals", nil), "abc123")
		done <- serve(t, newGate(palsStore(), log, middleware.GateConfig{}), handler, request)
	}()

	select {
	case recorder := <-done:
		assert.Equal(t, http.StatusAccepted, recorder.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not run while the insert was pending")
	}

	_, outcomes := log.recorded()
	assert.Equal(t, http.StatusAccepted, outcomes[1].Status)
}

/*
TestGate_ClientCancellation verifies the record is completed even when the
client goes away mid-request.
*/
func TestGate_ClientCancellation(t *testing.T) {
	log := newRecordingLog()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := func(writer http.ResponseWriter, _ *http.Request) {
		cancel()
		writer.WriteHeader(http.StatusOK)
	}

	request := withSession(httptest.NewRequest(http.MethodGet, "/pals", nil), "abc123").WithContext(ctx)
	serve(t, newGate(palsStore(), log, middleware.GateConfig{}), handler, request)

	_, outcomes := log.recorded()
	assert.Equal(t, http.StatusOK, outcomes[1].Status)
}

/*
TestGate_SlowHandler verifies handler run time does not count against the
audit write timeout.
*/
func TestGate_SlowHandler(t *testing.T) {
	log := newRecordingLog()
	handler := func(writer http.ResponseWriter, _ *http.Request) {
		time.Sleep(100 * time.Millisecond)
		writer.WriteHeader(http.StatusOK)
		_, _ = writer.Write([]byte("ok"))
	}

	request := withSession(httptest.NewRequest(http.MethodGet, "/pals", nil), "abc123")
	gate := newGate(palsStore(), log, middleware.GateConfig{WriteTimeout: 50 * time.Millisecond})
	recorder := serve(t, gate, handler, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())

	_, outcomes := log.recorded()
	assert.Equal(t, audit.Outcome{Status: http.StatusOK}, outcomes[1])
}

// # Failure Modes

/*
TestGate_StoreFailure verifies the gate fails closed when sessions cannot be read.
*/
func TestGate_StoreFailure(t *testing.T) {
	for _, path := range []string{"/", "/pals"} {
		t.Run(path, func(t *testing.T) {
			store := palsStore()
			store.lookupErr = errors.New("connection refused")
			log := newRecordingLog()
			called := false

			request := withSession(httptest.NewRequest(http.MethodGet, path, nil), "abc123")
			recorder := serve(t, newGate(store, log, middleware.GateConfig{}), okHandler(&called), request)

			assert.Equal(t, http.StatusInternalServerError, recorder.Code)
			assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
			assert.False(t, called)

			entries, _ := log.recorded()
			assert.Empty(t, entries)
		})
	}
}

/*
TestGate_AuditFailure covers both audit failure modes for insert and update errors.
*/
func TestGate_AuditFailure(t *testing.T) {
	tests := []struct {
		name       string
		insertErr  error
		updateErr  error
		failOpen   bool
		wantStatus int
	}{
		{"insert_fail_closed", errors.New("insert"), nil, false, http.StatusInternalServerError},
		{"update_fail_closed", nil, errors.New("update"), false, http.StatusInternalServerError},
		{"insert_fail_open", errors.New("insert"), nil, true, http.StatusOK},
		{"update_fail_open", nil, errors.New("update"), true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := newRecordingLog()
			log.insertErr = tt.insertErr
			log.updateErr = tt.updateErr
			called := false

			request := withSession(httptest.NewRequest(http.MethodGet, "/pals", nil), "abc123")
			gate := newGate(palsStore(), log, middleware.GateConfig{FailOpen: tt.failOpen})
			recorder := serve(t, gate, okHandler(&called), request)

			assert.True(t, called)
			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.failOpen {
				assert.Equal(t, "ok", recorder.Body.String())
			} else {
				assert.NotEqual(t, "ok", recorder.Body.String())
				assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
			}
		})
	}
}
