package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"agendei/internal/auth"
	"agendei/internal/config"
	"agendei/internal/database"
	"agendei/internal/models"
	"agendei/internal/notification"
	"agendei/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server *httptest.Server
	cfg    *config.Config
	db     *database.DB
	store  *notification.MemoryStore
	users  *service.UserService
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.New(os.Stdout)

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.App.Environment = "test"
	cfg.Server.BaseURL = "http://localhost:3333"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Uploads.Dir = t.TempDir()

	store := notification.NewMemoryStore()
	users := service.NewUserService(db, &logger)
	appointments := service.NewAppointmentService(db, nil, &logger)
	schedule := service.NewScheduleService(db)

	srv := NewHTTPServer(cfg, users, appointments, schedule, store, &logger)
	ts := httptest.NewServer(srv.server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, cfg: cfg, db: db, store: store, users: users}
}

func (e *testEnv) register(t *testing.T, name, email string, provider bool) *models.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), name, email, "123456", provider)
	require.NoError(t, err)
	return user
}

func (e *testEnv) token(t *testing.T, userID int64) string {
	t.Helper()
	token, err := auth.MakeToken(userID, e.cfg.Auth.JWTSecret, e.cfg.Auth.TokenTTL)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func futureDate(hoursAhead int) string {
	return time.Now().Add(time.Duration(hoursAhead) * time.Hour).UTC().Truncate(time.Hour).Format(time.RFC3339)
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestServer(t)

	resp, body := env.request(t, http.MethodPost, "/users", "", map[string]any{
		"name": "Ana", "email": "ana@example.com", "password": "123456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ana", body["name"])
	assert.NotContains(t, body, "password_hash")

	resp, body = env.request(t, http.MethodPost, "/sessions", "", map[string]any{
		"email": "ana@example.com", "password": "123456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, body = env.request(t, http.MethodPost, "/sessions", "", map[string]any{
		"email": "ana@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Email ou senha incorretos", body["error"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := setupTestServer(t)
	env.register(t, "Ana", "ana@example.com", false)

	resp, body := env.request(t, http.MethodPost, "/users", "", map[string]any{
		"name": "Outra", "email": "ana@example.com", "password": "123456",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User already exists", body["error"])
}

func TestAuthRequired(t *testing.T) {
	env := setupTestServer(t)

	resp, body := env.request(t, http.MethodGet, "/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token not provided", body["error"])

	resp, body = env.request(t, http.MethodGet, "/appointments", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token invalid", body["error"])
}

func TestAuthHeader_NoBearerSpace(t *testing.T) {
	env := setupTestServer(t)
	user := env.register(t, "Ana", "ana@example.com", false)
	token := env.token(t, user.ID)

	// A scheme glued to the token is not a bearer header.
	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/appointments", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer"+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Token invalid", body["error"])
}

func TestCreateAppointment_BusinessRules(t *testing.T) {
	env := setupTestServer(t)
	user := env.register(t, "Ana", "ana@example.com", false)
	other := env.register(t, "Carla", "carla@example.com", false)
	provider := env.register(t, "Bruno", "bruno@example.com", true)
	token := env.token(t, user.ID)

	// Booking yourself.
	resp, body := env.request(t, http.MethodPost, "/appointments", token, map[string]any{
		"provider_id": user.ID, "date": futureDate(26),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Provider and user are the same", body["error"])

	// Booking a non-provider.
	resp, body = env.request(t, http.MethodPost, "/appointments", token, map[string]any{
		"provider_id": other.ID, "date": futureDate(26),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Voce pode criar agendamentos apenas com especialistas", body["error"])

	// Booking in the past.
	resp, body = env.request(t, http.MethodPost, "/appointments", token, map[string]any{
		"provider_id": provider.ID, "date": time.Now().Add(-24 * time.Hour).UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Datas passadas nao sao permitidas", body["error"])

	// First booking succeeds.
	resp, body = env.request(t, http.MethodPost, "/appointments", token, map[string]any{
		"provider_id": provider.ID, "date": futureDate(26),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["cancelable"])
	assert.Equal(t, false, body["past"])

	// Same hour again collides.
	otherToken := env.token(t, other.ID)
	resp, body = env.request(t, http.MethodPost, "/appointments", otherToken, map[string]any{
		"provider_id": provider.ID, "date": futureDate(26),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Agendamento indisponivel", body["error"])
}

func TestCreateAppointment_BadPayload(t *testing.T) {
	env := setupTestServer(t)
	user := env.register(t, "Ana", "ana@example.com", false)
	token := env.token(t, user.ID)

	resp, body := env.request(t, http.MethodPost, "/appointments", token, map[string]any{
		"provider_id": 2, "date": "not-a-date",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation fails", body["error"])
}

func TestListAppointments(t *testing.T) {
	env := setupTestServer(t)
	user := env.register(t, "Ana", "ana@example.com", false)
	provider := env.register(t, "Bruno", "bruno@example.com", true)
	token := env.token(t, user.ID)

	resp, _ := env.request(t, http.MethodPost, "/appointments", token, map[string]any{
		"provider_id": provider.ID, "date": futureDate(26),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/appointments?page=1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var views []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, "Bruno", views[0]["provider"].(map[string]any)["name"])
}

func TestListAppointments_PageBelowOne(t *testing.T) {
	env := setupTestServer(t)
	user := env.register(t, "Ana", "ana@example.com", false)
	provider := env.register(t, "Bruno", "bruno@example.com", true)
	token := env.token(t, user.ID)

	resp, _ := env.request(t, http.MethodPost, "/appointments", token, map[string]any{
		"provider_id": provider.ID, "date": futureDate(26),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// page=0 falls back to the first page instead of erroring.
	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/appointments?page=0", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var views []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&views))
	assert.Len(t, views, 1)
}

func TestCancelAppointment(t *testing.T) {
	env := setupTestServer(t)
	user := env.register(t, "Ana", "ana@example.com", false)
	intruder := env.register(t, "Carla", "carla@example.com", false)
	provider := env.register(t, "Bruno", "bruno@example.com", true)
	token := env.token(t, user.ID)

	resp, body := env.request(t, http.MethodPost, "/appointments", token, map[string]any{
		"provider_id": provider.ID, "date": futureDate(26),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := int64(body["id"].(float64))

	// Someone else's appointment.
	resp, body = env.request(t, http.MethodDelete, fmt.Sprintf("/appointments/%d", id), env.token(t, intruder.ID), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Voce nao tem permissao para cancelar este agendamento", body["error"])

	// Owner cancels.
	resp, body = env.request(t, http.MethodDelete, fmt.Sprintf("/appointments/%d", id), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, body["canceled_at"])

	// Cancelling twice is rejected.
	resp, body = env.request(t, http.MethodDelete, fmt.Sprintf("/appointments/%d", id), token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Agendamento ja foi cancelado", body["error"])
}

func TestCancelAppointment_WindowClosed(t *testing.T) {
	env := setupTestServer(t)
	user := env.register(t, "Ana", "ana@example.com", false)
	provider := env.register(t, "Bruno", "bruno@example.com", true)
	token := env.token(t, user.ID)

	// The next hour starts less than two hours from now.
	resp, body := env.request(t, http.MethodPost, "/appointments", token, map[string]any{
		"provider_id": provider.ID, "date": futureDate(1),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := int64(body["id"].(float64))

	resp, body = env.request(t, http.MethodDelete, fmt.Sprintf("/appointments/%d", id), token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Voce so pode cancelar 2 horas antes do agendamento", body["error"])
}

func TestListProviders(t *testing.T) {
	env := setupTestServer(t)
	user := env.register(t, "Ana", "ana@example.com", false)
	env.register(t, "Bruno", "bruno@example.com", true)
	env.register(t, "Clara", "clara@example.com", true)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/providers", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token(t, user.ID))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var providers []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&providers))
	assert.Len(t, providers, 2)
}

func TestNotificationsProviderOnly(t *testing.T) {
	env := setupTestServer(t)
	user := env.register(t, "Ana", "ana@example.com", false)
	provider := env.register(t, "Bruno", "bruno@example.com", true)

	resp, body := env.request(t, http.MethodGet, "/notifications", env.token(t, user.ID), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Apenas especialistas podem carregar as notificacoes", body["error"])

	require.NoError(t, env.store.Create(context.Background(), &models.Notification{
		ID: "n1", UserID: provider.ID, Content: "Novo agendamento", CreatedAt: time.Now(),
	}))

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/notifications", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token(t, provider.ID))
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var notifications []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&notifications))
	require.Len(t, notifications, 1)
	assert.Equal(t, "Novo agendamento", notifications[0]["content"])
}

func TestMarkNotificationRead(t *testing.T) {
	env := setupTestServer(t)
	provider := env.register(t, "Bruno", "bruno@example.com", true)
	token := env.token(t, provider.ID)

	require.NoError(t, env.store.Create(context.Background(), &models.Notification{
		ID: "n1", UserID: provider.ID, Content: "a", CreatedAt: time.Now(),
	}))

	resp, body := env.request(t, http.MethodPut, "/notifications/n1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["read"])

	resp, body = env.request(t, http.MethodPut, "/notifications/ghost", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Registro nao encontrado", body["error"])
}

func TestSchedule(t *testing.T) {
	env := setupTestServer(t)
	user := env.register(t, "Ana", "ana@example.com", false)
	provider := env.register(t, "Bruno", "bruno@example.com", true)

	date := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Hour)
	resp, _ := env.request(t, http.MethodPost, "/appointments", env.token(t, user.ID), map[string]any{
		"provider_id": provider.ID, "date": date.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	path := "/schedule?date=" + date.Format("2006-01-02")
	req, err := http.NewRequest(http.MethodGet, env.server.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token(t, provider.ID))
	dayResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer dayResp.Body.Close()
	require.Equal(t, http.StatusOK, dayResp.StatusCode)

	var views []map[string]any
	require.NoError(t, json.NewDecoder(dayResp.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, "Ana", views[0]["user"].(map[string]any)["name"])
}

func TestSchedule_ProviderOnly(t *testing.T) {
	env := setupTestServer(t)
	user := env.register(t, "Ana", "ana@example.com", false)
	token := env.token(t, user.ID)
	day := time.Now().Add(48 * time.Hour).UTC().Format("2006-01-02")

	resp, body := env.request(t, http.MethodGet, "/schedule?date="+day, token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Apenas especialistas podem acessar a agenda", body["error"])

	path := fmt.Sprintf("/schedule/export?start=%s&end=%s", day, day)
	resp, body = env.request(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Apenas especialistas podem acessar a agenda", body["error"])
}

func TestScheduleExport(t *testing.T) {
	env := setupTestServer(t)
	user := env.register(t, "Ana", "ana@example.com", false)
	provider := env.register(t, "Bruno", "bruno@example.com", true)

	date := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Hour)
	resp, _ := env.request(t, http.MethodPost, "/appointments", env.token(t, user.ID), map[string]any{
		"provider_id": provider.ID, "date": date.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	day := date.Format("2006-01-02")
	path := fmt.Sprintf("/schedule/export?start=%s&end=%s", day, day)
	req, err := http.NewRequest(http.MethodGet, env.server.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token(t, provider.ID))
	exportResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer exportResp.Body.Close()

	require.Equal(t, http.StatusOK, exportResp.StatusCode)
	assert.Contains(t, exportResp.Header.Get("Content-Type"), "spreadsheetml")
	data, err := io.ReadAll(exportResp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestHealthz(t *testing.T) {
	env := setupTestServer(t)

	resp, body := env.request(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
