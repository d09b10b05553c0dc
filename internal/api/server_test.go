package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aurasflow/backend/internal/api"
	"github.com/aurasflow/backend/internal/auth"
	"github.com/aurasflow/backend/internal/config"
	"github.com/aurasflow/backend/internal/logger"
	"github.com/aurasflow/backend/internal/models"
	"github.com/aurasflow/backend/internal/services"
	"github.com/aurasflow/backend/internal/session"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Init(logger.Config{Level: "error", Output: io.Discard})
	m.Run()
}

var testDBCounter int

func newTestServer(t *testing.T) *api.Server {
	t.Helper()

	testDBCounter++
	dsn := fmt.Sprintf("file:apitest%d?mode=memory&cache=shared", testDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.SocialLink{},
		&models.MarketingPlan{},
		&models.PlanItem{},
		&models.CreditTransaction{},
		&auth.RefreshToken{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{Environment: "test", JWTSecret: "test-secret"}
	authService := auth.NewService(db, cfg.JWTSecret)
	svc := services.NewContainer(cfg, db, nil, nil, session.NewMemoryStore(0))
	return api.NewServer(cfg, db, nil, nil, authService, svc)
}

func doJSON(t *testing.T, srv *api.Server, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var parsed map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, parsed
}

func registerUser(t *testing.T, srv *api.Server, username string) string {
	t.Helper()

	rec, body := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse battery",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	tokens := body["tokens"].(map[string]interface{})
	return tokens["access_token"].(string)
}

func createProject(t *testing.T, srv *api.Server, token string) string {
	t.Helper()

	rec, body := doJSON(t, srv, http.MethodPost, "/api/v1/projects", token, map[string]string{
		"name":            "Acme",
		"type":            "saas",
		"target_audience": "founders",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project status = %d, body %s", rec.Code, rec.Body.String())
	}
	return body["id"].(string)
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct horse battery",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	user := body["user"].(map[string]interface{})
	if credits := user["credits"].(float64); credits != float64(models.InitialCredits) {
		t.Errorf("credits = %v, want %d", credits, models.InitialCredits)
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "correct horse battery",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", rec.Code)
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "correct horse battery",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("login status = %d, want 200", rec.Code)
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodGet, "/api/v1/projects", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}

	rec, _ = doJSON(t, srv, http.MethodGet, "/api/v1/projects", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", rec.Code)
	}
}

func TestContentGenerationFlow(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice")
	projectID := createProject(t, srv, token)

	rec, body := doJSON(t, srv, http.MethodPost,
		"/api/v1/projects/"+projectID+"/content/generate", token,
		map[string]int{"designs": 2, "videos": 1, "articles": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d, body %s", rec.Code, rec.Body.String())
	}
	if cost := body["cost"].(float64); cost != 35 {
		t.Errorf("cost = %v, want 35", cost)
	}
	if items := body["items"].([]interface{}); len(items) != 4 {
		t.Errorf("items = %d, want 4", len(items))
	}

	rec, body = doJSON(t, srv, http.MethodGet, "/api/v1/dashboard/stats", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	if credits := body["credits"].(float64); credits != 65 {
		t.Errorf("credits = %v, want 65", credits)
	}

	// The remaining 65 credits cannot cover five videos.
	rec, _ = doJSON(t, srv, http.MethodPost,
		"/api/v1/projects/"+projectID+"/content/generate", token,
		map[string]int{"videos": 5})
	if rec.Code != http.StatusPaymentRequired {
		t.Errorf("overdraft status = %d, want 402", rec.Code)
	}

	rec, body = doJSON(t, srv, http.MethodGet, "/api/v1/dashboard/credits", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("credit history status = %d", rec.Code)
	}
	if entries := body["transactions"].([]interface{}); len(entries) != 1 {
		t.Errorf("ledger entries = %d, want 1", len(entries))
	}
}

func TestPlanFlow(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice")
	projectID := createProject(t, srv, token)

	rec, body := doJSON(t, srv, http.MethodPost,
		"/api/v1/projects/"+projectID+"/plans", token,
		map[string]int{"month": 6, "year": 2024})
	if rec.Code != http.StatusCreated {
		t.Fatalf("plan status = %d, body %s", rec.Code, rec.Body.String())
	}
	planID := body["id"].(string)
	if status := body["status"].(string); status != "draft" {
		t.Errorf("status = %q, want draft", status)
	}

	rec, body = doJSON(t, srv, http.MethodGet, "/api/v1/plans/"+planID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get plan status = %d", rec.Code)
	}
	if items := body["items"].([]interface{}); len(items) != 30 {
		t.Errorf("items = %d, want 30", len(items))
	}

	rec, body = doJSON(t, srv, http.MethodPost, "/api/v1/plans/"+planID+"/approve", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d", rec.Code)
	}
	if status := body["status"].(string); status != "approved" {
		t.Errorf("status = %q, want approved", status)
	}

	// Another user gets 403, never 404, for an existing plan.
	intruder := registerUser(t, srv, "mallory")
	rec, _ = doJSON(t, srv, http.MethodGet, "/api/v1/plans/"+planID, intruder, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign plan status = %d, want 403", rec.Code)
	}
}

func TestInvalidProjectID(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice")

	rec, _ := doJSON(t, srv, http.MethodGet, "/api/v1/projects/not-a-uuid", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}

	rec, _ = doJSON(t, srv, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz before SetReady status = %d, want 503", rec.Code)
	}

	srv.SetReady(true)
	rec, _ = doJSON(t, srv, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("readyz after SetReady status = %d, want 200", rec.Code)
	}
}
