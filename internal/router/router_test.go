package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"deepflow/backend/internal/clock"
	"deepflow/backend/internal/db"
	"deepflow/backend/internal/handler"
	"deepflow/backend/internal/insight"
	"deepflow/backend/internal/repository"
	"deepflow/backend/internal/router"
	"deepflow/backend/internal/service"
)

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type timerEnvelope struct {
	Timer struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		DurationSeconds int    `json:"durationSeconds"`
		State           string `json:"state"`
	} `json:"timer"`
}

type stateEnvelope struct {
	State struct {
		State       string `json:"state"`
		ElapsedMS   int64  `json:"elapsedMs"`
		RemainingMS int64  `json:"remainingMs"`
	} `json:"state"`
}

type summaryResponse struct {
	Summary struct {
		AverageLevel float64 `json:"averageLevel"`
		SampleCount  int     `json:"sampleCount"`
		BestDay      string  `json:"bestDay"`
		Trend        string  `json:"trend"`
		Message      string  `json:"message"`
	} `json:"summary"`
}

type shelfEnvelope struct {
	Items []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"items"`
}

func TestTimerLifecycleOverHTTP(t *testing.T) {
	server, clk := setupTestEngine(t)
	user := registerUser(t, server, "lifecycle@example.com", "secret123")

	timerID := createTimer(t, server, user.Token, "Deep work", 60)

	// start at T0
	state := applyAction(t, server, user.Token, timerID, "start", http.StatusOK)
	if state.State.State != "running" {
		t.Fatalf("expected running after start, got %s", state.State.State)
	}

	// pause at T0+10m: 10 minutes elapsed
	clk.Advance(10 * time.Minute)
	state = applyAction(t, server, user.Token, timerID, "pause", http.StatusOK)
	if state.State.State != "paused" {
		t.Fatalf("expected paused, got %s", state.State.State)
	}
	if state.State.ElapsedMS != 600_000 {
		t.Fatalf("expected 600000ms elapsed after pause, got %d", state.State.ElapsedMS)
	}

	// paused time is not counted
	clk.Advance(5 * time.Minute)
	state = getState(t, server, user.Token, timerID)
	if state.State.ElapsedMS != 600_000 {
		t.Fatalf("elapsed advanced while paused: %d", state.State.ElapsedMS)
	}

	// resume at T0+15m, stop at T0+25m: 20 minutes total
	state = applyAction(t, server, user.Token, timerID, "resume", http.StatusOK)
	if state.State.ElapsedMS != 600_000 {
		t.Fatalf("resume changed elapsed: %d", state.State.ElapsedMS)
	}
	clk.Advance(10 * time.Minute)
	state = applyAction(t, server, user.Token, timerID, "stop", http.StatusOK)
	if state.State.State != "stopped" {
		t.Fatalf("expected stopped, got %s", state.State.State)
	}
	if state.State.ElapsedMS != 1_200_000 {
		t.Fatalf("expected 1200000ms elapsed at stop, got %d", state.State.ElapsedMS)
	}
	if state.State.RemainingMS != 2_400_000 {
		t.Fatalf("expected 2400000ms remaining, got %d", state.State.RemainingMS)
	}

	// get_state on a stopped timer is idempotent
	clk.Advance(2 * time.Hour)
	state = getState(t, server, user.Token, timerID)
	if state.State.ElapsedMS != 1_200_000 {
		t.Fatalf("stopped elapsed drifted: %d", state.State.ElapsedMS)
	}

	// start again resets elapsed to zero
	state = applyAction(t, server, user.Token, timerID, "start", http.StatusOK)
	if state.State.ElapsedMS != 0 {
		t.Fatalf("start did not reset elapsed: %d", state.State.ElapsedMS)
	}
}

func TestTimerActionValidation(t *testing.T) {
	server, _ := setupTestEngine(t)
	user := registerUser(t, server, "actions@example.com", "secret123")
	timerID := createTimer(t, server, user.Token, "Reading", 60)

	// pause and resume are not valid from stopped
	status, body := requestJSON(t, server, http.MethodPost, "/api/timers/"+timerID+"/action", user.Token, map[string]string{"action": "pause"})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 pausing a stopped timer, got %d: %s", status, string(body))
	}
	var errResp errorEnvelope
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	if errResp.Error.Code != "invalid_action" {
		t.Fatalf("expected invalid_action, got %s", errResp.Error.Code)
	}

	// unknown action names are a different error
	status, body = requestJSON(t, server, http.MethodPost, "/api/timers/"+timerID+"/action", user.Token, map[string]string{"action": "restart"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", status)
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	if errResp.Error.Code != "unknown_action" {
		t.Fatalf("expected unknown_action, got %s", errResp.Error.Code)
	}
}

func TestCreateTimerNormalizesDuration(t *testing.T) {
	server, _ := setupTestEngine(t)
	user := registerUser(t, server, "durations@example.com", "secret123")

	cases := []struct {
		minutes int
		seconds int
	}{
		{37, 5400},
		{60, 3600},
		{245, 5400},
	}
	for _, tc := range cases {
		status, body := requestJSON(t, server, http.MethodPost, "/api/timers", user.Token, map[string]interface{}{
			"name":            "Session",
			"durationMinutes": tc.minutes,
		})
		if status != http.StatusCreated {
			t.Fatalf("create timer (%d min) failed with %d: %s", tc.minutes, status, string(body))
		}
		var resp timerEnvelope
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("unmarshal timer response: %v", err)
		}
		if resp.Timer.DurationSeconds != tc.seconds {
			t.Fatalf("minutes=%d: expected %ds, got %ds", tc.minutes, tc.seconds, resp.Timer.DurationSeconds)
		}
	}
}

func TestTimersAreInvisibleAcrossUsers(t *testing.T) {
	server, _ := setupTestEngine(t)
	owner := registerUser(t, server, "owner@example.com", "secret123")
	stranger := registerUser(t, server, "stranger@example.com", "secret123")
	timerID := createTimer(t, server, owner.Token, "Private", 60)

	// Not-yours reads as not-found, never forbidden.
	status, body := requestJSON(t, server, http.MethodGet, "/api/timers/"+timerID+"/state", stranger.Token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign timer state, got %d: %s", status, string(body))
	}

	status, _ = requestJSON(t, server, http.MethodPost, "/api/timers/"+timerID+"/action", stranger.Token, map[string]string{"action": "start"})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign timer action, got %d", status)
	}

	status, _ = requestJSON(t, server, http.MethodPost, "/api/energy/checkins", stranger.Token, map[string]interface{}{
		"timerId": timerID,
		"stage":   "mid",
		"level":   5,
	})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for check-in on foreign timer, got %d", status)
	}
}

func TestEnergyCheckinsValidateAndDriveTimer(t *testing.T) {
	server, _ := setupTestEngine(t)
	user := registerUser(t, server, "energy@example.com", "secret123")
	timerID := createTimer(t, server, user.Token, "Focus", 90)

	// inclusive level boundaries
	for _, tc := range []struct {
		level  int
		status int
	}{
		{0, http.StatusBadRequest},
		{11, http.StatusBadRequest},
		{1, http.StatusCreated},
		{10, http.StatusCreated},
	} {
		status, body := requestJSON(t, server, http.MethodPost, "/api/energy/checkins", user.Token, map[string]interface{}{
			"timerId": timerID,
			"stage":   "mid",
			"level":   tc.level,
		})
		if status != tc.status {
			t.Fatalf("level=%d: expected %d, got %d: %s", tc.level, tc.status, status, string(body))
		}
	}

	// unknown stage
	status, body := requestJSON(t, server, http.MethodPost, "/api/energy/checkins", user.Token, map[string]interface{}{
		"timerId": timerID,
		"stage":   "midnight",
		"level":   5,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown stage, got %d: %s", status, string(body))
	}

	// a start check-in also starts the timer
	status, _ = requestJSON(t, server, http.MethodPost, "/api/energy/checkins", user.Token, map[string]interface{}{
		"timerId":    timerID,
		"stage":      "start",
		"level":      7,
		"focusLevel": 6,
	})
	if status != http.StatusCreated {
		t.Fatalf("start check-in failed with %d", status)
	}
	state := getState(t, server, user.Token, timerID)
	if state.State.State != "running" {
		t.Fatalf("expected running after start check-in, got %s", state.State.State)
	}

	// an end check-in stops it
	status, _ = requestJSON(t, server, http.MethodPost, "/api/energy/checkins", user.Token, map[string]interface{}{
		"timerId": timerID,
		"stage":   "end",
		"level":   4,
	})
	if status != http.StatusCreated {
		t.Fatalf("end check-in failed with %d", status)
	}
	state = getState(t, server, user.Token, timerID)
	if state.State.State != "stopped" {
		t.Fatalf("expected stopped after end check-in, got %s", state.State.State)
	}

	// a second end check-in on an already stopped timer still records
	status, _ = requestJSON(t, server, http.MethodPost, "/api/energy/checkins", user.Token, map[string]interface{}{
		"timerId": timerID,
		"stage":   "end",
		"level":   4,
	})
	if status != http.StatusCreated {
		t.Fatalf("end check-in on stopped timer failed with %d", status)
	}
}

func TestDisabledStageRejectsCheckin(t *testing.T) {
	server, _ := setupTestEngine(t)
	user := registerUser(t, server, "prefs@example.com", "secret123")
	timerID := createTimer(t, server, user.Token, "Focus", 60)

	status, _ := requestJSON(t, server, http.MethodPut, "/api/preferences", user.Token, map[string]interface{}{
		"enableStartCheckin": true,
		"enableMidCheckin":   false,
		"enableEndCheckin":   true,
		"enableEnergyLog":    true,
		"enableSound":        false,
	})
	if status != http.StatusOK {
		t.Fatalf("update preferences failed with %d", status)
	}

	status, body := requestJSON(t, server, http.MethodPost, "/api/energy/checkins", user.Token, map[string]interface{}{
		"timerId": timerID,
		"stage":   "mid",
		"level":   5,
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for disabled stage, got %d: %s", status, string(body))
	}
	var errResp errorEnvelope
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	if errResp.Error.Code != "feature_disabled" {
		t.Fatalf("expected feature_disabled, got %s", errResp.Error.Code)
	}

	// other stages still work
	status, _ = requestJSON(t, server, http.MethodPost, "/api/energy/checkins", user.Token, map[string]interface{}{
		"timerId": timerID,
		"stage":   "start",
		"level":   5,
	})
	if status != http.StatusCreated {
		t.Fatalf("start check-in failed with %d", status)
	}
}

func TestWeeklySummaryOverHTTP(t *testing.T) {
	server, clk := setupTestEngine(t)
	user := registerUser(t, server, "weekly@example.com", "secret123")
	timerID := createTimer(t, server, user.Token, "Focus", 60)

	// Six mid check-ins an hour apart: [3 3 3 9 9 9] reads as improving.
	for _, level := range []int{3, 3, 3, 9, 9, 9} {
		status, body := requestJSON(t, server, http.MethodPost, "/api/energy/checkins", user.Token, map[string]interface{}{
			"timerId": timerID,
			"stage":   "mid",
			"level":   level,
		})
		if status != http.StatusCreated {
			t.Fatalf("check-in failed with %d: %s", status, string(body))
		}
		clk.Advance(time.Hour)
	}

	status, body := requestJSON(t, server, http.MethodGet, "/api/insights/weekly", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("weekly summary failed with %d: %s", status, string(body))
	}
	var resp summaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if resp.Summary.SampleCount != 6 {
		t.Fatalf("expected 6 samples, got %d", resp.Summary.SampleCount)
	}
	if resp.Summary.AverageLevel != 6.0 {
		t.Fatalf("expected average 6.0, got %v", resp.Summary.AverageLevel)
	}
	if resp.Summary.Trend != "Improving" {
		t.Fatalf("expected Improving, got %s", resp.Summary.Trend)
	}

	// the previous week has no data
	status, body = requestJSON(t, server, http.MethodGet, "/api/insights/weekly?offset=-1", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("previous week summary failed with %d", status)
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if resp.Summary.SampleCount != 0 {
		t.Fatalf("expected empty previous week, got %d samples", resp.Summary.SampleCount)
	}
	if resp.Summary.Trend != "Building data" {
		t.Fatalf("expected Building data for empty week, got %s", resp.Summary.Trend)
	}
}

func TestShelfRoundTrip(t *testing.T) {
	server, _ := setupTestEngine(t)
	user := registerUser(t, server, "shelf@example.com", "secret123")

	status, _ := requestJSON(t, server, http.MethodPost, "/api/shelf", user.Token, map[string]string{"text": "  "})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank shelf text, got %d", status)
	}

	status, _ = requestJSON(t, server, http.MethodPost, "/api/shelf", user.Token, map[string]string{"text": "reply to Sam"})
	if status != http.StatusCreated {
		t.Fatalf("add shelf item failed with %d", status)
	}

	status, body := requestJSON(t, server, http.MethodGet, "/api/shelf", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("list shelf failed with %d", status)
	}
	var shelf shelfEnvelope
	if err := json.Unmarshal(body, &shelf); err != nil {
		t.Fatalf("unmarshal shelf: %v", err)
	}
	if len(shelf.Items) != 1 || shelf.Items[0].Text != "reply to Sam" {
		t.Fatalf("unexpected shelf contents: %+v", shelf.Items)
	}

	status, _ = requestJSON(t, server, http.MethodDelete, "/api/shelf/"+shelf.Items[0].ID, user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("remove shelf item failed with %d", status)
	}
	status, _ = requestJSON(t, server, http.MethodDelete, "/api/shelf/"+shelf.Items[0].ID, user.Token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 removing twice, got %d", status)
	}
}

func TestExportAndDeleteAccount(t *testing.T) {
	server, _ := setupTestEngine(t)
	user := registerUser(t, server, "export@example.com", "secret123")
	createTimer(t, server, user.Token, "Focus", 60)

	status, body := requestJSON(t, server, http.MethodGet, "/api/account/export", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("export failed with %d: %s", status, string(body))
	}
	var export struct {
		Timers []struct {
			Name string `json:"name"`
		} `json:"timers"`
	}
	if err := json.Unmarshal(body, &export); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(export.Timers) != 1 || export.Timers[0].Name != "Focus" {
		t.Fatalf("unexpected export timers: %+v", export.Timers)
	}

	status, _ = requestJSON(t, server, http.MethodDelete, "/api/account", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete account failed with %d", status)
	}

	status, _ = requestJSON(t, server, http.MethodGet, "/api/account/export", user.Token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 exporting deleted account, got %d", status)
	}
}

func TestRequiresAuthentication(t *testing.T) {
	server, _ := setupTestEngine(t)

	status, _ := requestJSON(t, server, http.MethodGet, "/api/timers", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
}

func TestCORSPreflight(t *testing.T) {
	server, _ := setupTestEngine(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	recorder := httptest.NewRecorder()

	server.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin header: %s", recorder.Header().Get("Access-Control-Allow-Origin"))
	}
}

func setupTestEngine(t *testing.T) (http.Handler, *clock.Fake) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	if err := db.RunMigrations(database, migrationsDir); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	// Monday 09:00 of the current real week, so issued JWTs stay close to
	// real time while tests advance the clock deterministically.
	weekStart, _ := insight.WeekWindow(time.Now().UTC(), 0)
	clk := clock.NewFake(weekStart.Add(9 * time.Hour))

	userRepo := repository.NewUserRepository(database)
	timerRepo := repository.NewTimerRepository(database)
	energyRepo := repository.NewEnergyRepository(database)
	shelfRepo := repository.NewShelfRepository(database)
	prefsRepo := repository.NewPreferencesRepository(database)

	prefsService := service.NewPreferencesService(prefsRepo, clk)
	authService := service.NewAuthService(userRepo, prefsService, "test-secret", 240*time.Hour, clk)
	timerService := service.NewTimerService(timerRepo, clk)
	energyService := service.NewEnergyService(energyRepo, prefsRepo, timerService, clk, []string{"start", "mid", "end"})
	insightService := service.NewInsightService(energyRepo, prefsRepo, clk, service.UTCOffset)
	shelfService := service.NewShelfService(shelfRepo, clk)
	accountService := service.NewAccountService(userRepo, timerRepo, energyRepo, shelfRepo, prefsRepo)

	engine := router.New(authService, router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Timer:       handler.NewTimerHandler(timerService),
		Energy:      handler.NewEnergyHandler(energyService),
		Insight:     handler.NewInsightHandler(insightService),
		Shelf:       handler.NewShelfHandler(shelfService),
		Preferences: handler.NewPreferencesHandler(prefsService),
		Account:     handler.NewAccountHandler(accountService),
	}, []string{"http://localhost:5173"})

	return engine, clk
}

func registerUser(t *testing.T, server http.Handler, email, password string) authResponse {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s failed with status %d: %s", email, status, string(body))
	}
	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("empty token for user %s", email)
	}
	return resp
}

func createTimer(t *testing.T, server http.Handler, token, name string, minutes int) string {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodPost, "/api/timers", token, map[string]interface{}{
		"name":            name,
		"durationMinutes": minutes,
	})
	if status != http.StatusCreated {
		t.Fatalf("create timer failed with status %d: %s", status, string(body))
	}
	var resp timerEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal timer response: %v", err)
	}
	if resp.Timer.ID == "" {
		t.Fatal("empty timer id")
	}
	return resp.Timer.ID
}

func applyAction(t *testing.T, server http.Handler, token, timerID, action string, wantStatus int) stateEnvelope {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodPost, "/api/timers/"+timerID+"/action", token, map[string]string{
		"action": action,
	})
	if status != wantStatus {
		t.Fatalf("action %s: expected status %d, got %d: %s", action, wantStatus, status, string(body))
	}
	var resp stateEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal state response: %v", err)
	}
	return resp
}

func getState(t *testing.T, server http.Handler, token, timerID string) stateEnvelope {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodGet, "/api/timers/"+timerID+"/state", token, nil)
	if status != http.StatusOK {
		t.Fatalf("get state failed with status %d: %s", status, string(body))
	}
	var resp stateEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal state response: %v", err)
	}
	return resp
}

func requestJSON(
	t *testing.T,
	server http.Handler,
	method, path, token string,
	body interface{},
) (int, []byte) {
	t.Helper()

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		payload = raw
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder.Code, recorder.Body.Bytes()
}
