package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/T-Watch/T-Watch-Backend/internal/auth"
	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"github.com/T-Watch/T-Watch-Backend/internal/repository/memory"
	mongostore "github.com/T-Watch/T-Watch-Backend/internal/repository/mongo"
	"github.com/T-Watch/T-Watch-Backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	router *gin.Engine
	tokens *auth.TokenService
	repos  repository.Repositories
}

func newTestServer(t *testing.T, repos repository.Repositories, bypass bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenService("api-test-secret", time.Hour)
	require.NoError(t, err)
	log := zap.NewNop()

	users := service.NewUserService(repos.Users, repos.Trainings, nil, log)
	svc := Services{
		Gate:     auth.NewGate(tokens, bypass),
		Auth:     service.NewAuthService(repos.Users, tokens),
		Users:    users,
		Training: service.NewTrainingService(repos.Trainings, repos.Blocks, service.NewBlockResolver(repos.Blocks)),
		Results:  service.NewResultCoordinator(repos, false, log),
		Plans:    service.NewPlanService(repos.Plans),
		Messages: service.NewMessageService(repos.Messages),
		Health:   repos.Health,
	}
	router := gin.New()
	SetupRoutes(router, svc, nil, log)
	return &testServer{router: router, tokens: tokens, repos: repos}
}

type response struct {
	Data  json.RawMessage `json:"data"`
	Error *ErrorBody      `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, resp := s.do(t, http.MethodPost, "/api/v1/token", "", TokenRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, status, resp.Error)
	var tok TokenResponse
	require.NoError(t, json.Unmarshal(resp.Data, &tok))
	return tok.Token
}

func createUser(t *testing.T, s *testServer, email string, userType domain.UserType) {
	t.Helper()
	status, resp := s.do(t, http.MethodPost, "/api/v1/users", "", map[string]any{
		"email": email, "password": "pw", "type": userType, "name": "N",
	})
	require.Equal(t, http.StatusCreated, status, resp.Error)
}

func TestTokenScenario(t *testing.T) {
	s := newTestServer(t, memory.NewStore().Repositories(), false)
	createUser(t, s, "a@x.com", domain.UserTypeUser)

	token := s.login(t, "a@x.com", "pw")
	assert.NotEmpty(t, token)

	status, resp := s.do(t, http.MethodPost, "/api/v1/token", "", TokenRequest{Email: "a@x.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeAuthenticationFailed, resp.Error.Code)
	assert.Empty(t, resp.Data)
}

func TestCreateUser_NeverExposesPassword(t *testing.T) {
	s := newTestServer(t, memory.NewStore().Repositories(), false)
	status, resp := s.do(t, http.MethodPost, "/api/v1/users", "", map[string]any{
		"email": "a@x.com", "password": "pw", "type": "COACH",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.NotContains(t, string(resp.Data), "password")

	status, resp = s.do(t, http.MethodPost, "/api/v1/users", "", map[string]any{
		"email": "a@x.com", "password": "pw2", "type": "USER",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, CodeConflict, resp.Error.Code)
}

func TestGatedEndpointsRequireToken(t *testing.T) {
	s := newTestServer(t, memory.NewStore().Repositories(), false)

	expiredSvc, err := auth.NewTokenService("api-test-secret", time.Millisecond)
	require.NoError(t, err)
	expired, err := expiredSvc.Issue("a@x.com", domain.UserTypeUser)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/users"},
		{http.MethodGet, "/api/v1/users/a@x.com"},
		{http.MethodPatch, "/api/v1/users/a@x.com"},
		{http.MethodDelete, "/api/v1/users/a@x.com"},
		{http.MethodGet, "/api/v1/coaches"},
		{http.MethodGet, "/api/v1/trainings"},
		{http.MethodGet, "/api/v1/trainings/abc"},
		{http.MethodPut, "/api/v1/trainings"},
		{http.MethodDelete, "/api/v1/trainings/abc"},
		{http.MethodPost, "/api/v1/trainings/results"},
		{http.MethodGet, "/api/v1/training-blocks"},
		{http.MethodPut, "/api/v1/training-blocks"},
		{http.MethodGet, "/api/v1/plans"},
		{http.MethodPut, "/api/v1/plans"},
		{http.MethodGet, "/api/v1/messages"},
		{http.MethodPost, "/api/v1/messages"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			status, resp := s.do(t, r.method, r.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, CodeUnauthenticated, resp.Error.Code)

			status, resp = s.do(t, r.method, r.path, "garbage", nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, CodeInvalidToken, resp.Error.Code)

			status, resp = s.do(t, r.method, r.path, expired, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, CodeTokenExpired, resp.Error.Code)
		})
	}
}

func TestBypassLetsRequestsThrough(t *testing.T) {
	s := newTestServer(t, memory.NewStore().Repositories(), true)
	status, resp := s.do(t, http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestReadsOfMissingDocumentsReturnNull(t *testing.T) {
	s := newTestServer(t, memory.NewStore().Repositories(), false)
	createUser(t, s, "a@x.com", domain.UserTypeUser)
	token := s.login(t, "a@x.com", "pw")

	status, resp := s.do(t, http.MethodGet, "/api/v1/users/ghost@x.com", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null", string(resp.Data))

	status, resp = s.do(t, http.MethodGet, "/api/v1/trainings/000000000000000000000000", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null", string(resp.Data))

	status, resp = s.do(t, http.MethodDelete, "/api/v1/trainings/000000000000000000000000", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "false", string(resp.Data))
}

func TestTrainingFlow(t *testing.T) {
	s := newTestServer(t, memory.NewStore().Repositories(), false)
	createUser(t, s, "coach@x.com", domain.UserTypeCoach)
	token := s.login(t, "coach@x.com", "pw")

	var blockIDs []string
	for i := 0; i < 2; i++ {
		status, resp := s.do(t, http.MethodPut, "/api/v1/training-blocks", token, map[string]any{"coach": "coach@x.com"})
		require.Equal(t, http.StatusOK, status, resp.Error)
		var b domain.TrainingBlock
		require.NoError(t, json.Unmarshal(resp.Data, &b))
		blockIDs = append(blockIDs, b.ID)
	}

	status, resp := s.do(t, http.MethodPut, "/api/v1/trainings", token, map[string]any{
		"type": "run", "coach": "coach@x.com", "user": "a@x.com",
		"trainingBlocks": []string{blockIDs[1], blockIDs[0]},
	})
	require.Equal(t, http.StatusOK, status, resp.Error)
	var training domain.Training
	require.NoError(t, json.Unmarshal(resp.Data, &training))
	assert.False(t, training.Completed)

	status, resp = s.do(t, http.MethodGet, "/api/v1/trainings?user=a@x.com&completed=false", token, nil)
	require.Equal(t, http.StatusOK, status)
	var list []struct {
		ID             string                 `json:"_id"`
		TrainingBlocks []domain.TrainingBlock `json:"trainingBlocks"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 1)
	require.Len(t, list[0].TrainingBlocks, 2)
	assert.Equal(t, blockIDs[1], list[0].TrainingBlocks[0].ID)

	results := []map[string]any{
		{"_id": blockIDs[0], "result": []map[string]any{{"date": "2024-05-06T07:30:00Z", "HR": 130}}},
		{"_id": blockIDs[1], "result": []map[string]any{}},
	}
	status, resp = s.do(t, http.MethodPost, "/api/v1/trainings/results", token, results)
	require.Equal(t, http.StatusOK, status, resp.Error)
	var report service.Submission
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	assert.True(t, report.Completed)

	// the same set again matches a completed training: partial failure with report
	status, resp = s.do(t, http.MethodPost, "/api/v1/trainings/results", token, results)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, CodePartialFailure, resp.Error.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	assert.Len(t, report.Blocks, 2)

	status, resp = s.do(t, http.MethodGet, "/api/v1/trainings?completed=maybe", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeValidation, resp.Error.Code)
}

func TestStorageUnavailableBeforeConnect(t *testing.T) {
	store := mongostore.NewStore("mongodb://localhost:1", "twatch", zap.NewNop())
	s := newTestServer(t, store.Repositories(), true)

	status, resp := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, CodeStorageUnavailable, resp.Error.Code)

	status, resp = s.do(t, http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, CodeStorageUnavailable, resp.Error.Code)

	_, err := store.Repositories().Users.GetByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
}

func TestHealthzReady(t *testing.T) {
	s := newTestServer(t, memory.NewStore().Repositories(), false)
	status, _ := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
}
