//go:build integration

package integration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	authMiddleware "github.com/gradesystem/backend/internal/auth/middleware"
	"github.com/gradesystem/backend/internal/auth/service"
	"github.com/gradesystem/backend/internal/config"
	"github.com/gradesystem/backend/internal/handlers"
	"github.com/gradesystem/backend/internal/models"
	"github.com/gradesystem/backend/internal/repositories"
	"github.com/gradesystem/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	testDB     *sql.DB
	testRouter chi.Router
	testLogger *zap.Logger
)

// cleanupTestData removes all rows and resets AUTO_INCREMENT
func cleanupTestData(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, table := range []string{"grades", "tasks", "users"} {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err, "Failed to clear %s", table)
		_, err = db.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1")
		require.NoError(t, err, "Failed to reset AUTO_INCREMENT of %s", table)
	}
}

// setupTestRouter wires the whole stack the same way cmd/main.go does
func setupTestRouter(db *sql.DB, cfg *config.Config, logger *zap.Logger) chi.Router {
	codec, err := service.NewCredentialCodec(cfg.Password.Iterations, cfg.Password.SaltBytes)
	if err != nil {
		panic(fmt.Sprintf("Failed to create credential codec: %v", err))
	}
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	userRepo := repositories.NewUserRepository(db, logger)
	taskRepo := repositories.NewTaskRepository(db, logger)
	gradeRepo := repositories.NewGradeRepository(db, logger)

	accountSvc, err := services.NewAccountService(userRepo, codec, tokens, logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to create account service: %v", err))
	}
	adminSvc := services.NewAdminService(userRepo, accountSvc, logger)
	taskSvc := services.NewTaskService(taskRepo, logger)
	gradeSvc := services.NewGradeService(gradeRepo, userRepo, logger)

	noLimit := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		handlers.NewAuthHandler(accountSvc, logger).RegisterRoutes(r, noLimit, authMiddleware.RequireAuth(tokens))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireRole(tokens, models.RoleDirector))
			handlers.NewAdminHandler(accountSvc, adminSvc, logger).RegisterRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireRole(tokens, models.RoleProfessor))
			handlers.NewTaskHandler(taskSvc, logger).RegisterRoutes(r)
			handlers.NewGradeHandler(gradeSvc, logger).RegisterRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireRole(tokens, models.RoleStudent))
			handlers.NewStudentHandler(taskSvc, gradeSvc, logger).RegisterRoutes(r)
		})
	})

	return r
}

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	var err error
	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	dsn := ""
	if cfg.Database.Host != "" {
		dsn = cfg.DSN()
	}
	if dsn == "" {
		// Default test database connection
		dsn = "root:password@tcp(localhost:3306)/grades_test?parseTime=true&charset=utf8mb4&clientFoundRows=true"
	}

	testDB, err = sql.Open("mysql", dsn)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}

	if err = testDB.Ping(); err != nil {
		panic(fmt.Sprintf("Failed to ping test database: %v", err))
	}

	setupTestSchemaForMain(testDB)

	testRouter = setupTestRouter(testDB, cfg, testLogger)

	code := m.Run()

	if testDB != nil {
		testDB.Close()
	}
	os.Exit(code)
}

// setupTestSchemaForMain applies the up migrations in order
func setupTestSchemaForMain(db *sql.DB) {
	for _, name := range []string{
		"000001_create_users_table.up.sql",
		"000002_create_tasks_table.up.sql",
		"000003_create_grades_table.up.sql",
	} {
		query, err := os.ReadFile("../../migrations/" + name)
		if err != nil {
			panic(fmt.Sprintf("Failed to read migration %s: %v", name, err))
		}
		if _, err := db.Exec(string(query)); err != nil {
			panic(fmt.Sprintf("Failed to apply migration %s: %v", name, err))
		}
	}
}

func doJSON(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, email, password string) models.LoginResult {
	t.Helper()

	w := doJSON(t, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.LoginResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	return result
}

// seedDirector stores a director account directly, since self-registration only creates students
func seedDirector(t *testing.T) string {
	t.Helper()

	codec, err := service.NewCredentialCodec(config.MinKDFIterations, config.MinSaltBytes)
	require.NoError(t, err)
	cred, err := codec.NewCredential("root-pass")
	require.NoError(t, err)

	_, err = testDB.Exec(
		"INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?)",
		"Dora", "dora@school.edu", cred, models.RoleDirector,
	)
	require.NoError(t, err)

	return login(t, "dora@school.edu", "root-pass").Token
}

func TestIntegration_RegisterAndLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	w := doJSON(t, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Name: "Ana", Email: "ana@x.com", Password: "s3cret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var stored string
	require.NoError(t, testDB.QueryRow("SELECT password_hash FROM users WHERE email = ?", "ana@x.com").Scan(&stored))
	assert.NotContains(t, stored, "s3cret")

	tests := []struct {
		name           string
		email          string
		password       string
		expectedStatus int
	}{
		{name: "correct credentials", email: "ana@x.com", password: "s3cret", expectedStatus: http.StatusOK},
		{name: "email is case insensitive", email: "ANA@X.COM", password: "s3cret", expectedStatus: http.StatusOK},
		{name: "wrong password", email: "ana@x.com", password: "s3cret!", expectedStatus: http.StatusUnauthorized},
		{name: "unknown email", email: "nobody@x.com", password: "s3cret", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: tt.email, Password: tt.password})
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var result models.LoginResult
				require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
				assert.NotEmpty(t, result.Token)
				assert.Equal(t, "Ana", result.User.Name)
				assert.Equal(t, models.RoleStudent, result.User.Role)
			} else {
				assert.JSONEq(t, `{"error":"invalid credentials"}`, w.Body.String())
			}
		})
	}

	t.Run("duplicate registration", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
			Name: "Ana Two", Email: "Ana@X.com", Password: "other",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("me returns the session profile", func(t *testing.T) {
		token := login(t, "ana@x.com", "s3cret").Token
		w := doJSON(t, http.MethodGet, "/api/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var profile models.PublicProfile
		require.NoError(t, json.NewDecoder(w.Body).Decode(&profile))
		assert.Equal(t, "Ana", profile.Name)
	})
}

func TestIntegration_RoleGuards(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	directorToken := seedDirector(t)

	w := doJSON(t, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Name: "Sam", Email: "sam@school.edu", Password: "pw",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	studentToken := login(t, "sam@school.edu", "pw").Token

	tests := []struct {
		name           string
		method         string
		path           string
		token          string
		expectedStatus int
	}{
		{name: "no token", method: http.MethodGet, path: "/api/admin/users", expectedStatus: http.StatusUnauthorized},
		{name: "student on admin route", method: http.MethodGet, path: "/api/admin/users", token: studentToken, expectedStatus: http.StatusUnauthorized},
		{name: "director on admin route", method: http.MethodGet, path: "/api/admin/users", token: directorToken, expectedStatus: http.StatusOK},
		{name: "director on professor route", method: http.MethodGet, path: "/api/tasks", token: directorToken, expectedStatus: http.StatusUnauthorized},
		{name: "student on own grades", method: http.MethodGet, path: "/api/student/grades", token: studentToken, expectedStatus: http.StatusOK},
		{name: "garbage token", method: http.MethodGet, path: "/api/student/grades", token: "not.a.jwt", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestIntegration_GradingFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	directorToken := seedDirector(t)

	w := doJSON(t, http.MethodPost, "/api/admin/users", directorToken, models.CreateUserRequest{
		RegisterRequest: models.RegisterRequest{Name: "Pablo", Email: "pablo@school.edu", Password: "pw"},
		Role:            models.RoleProfessor,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	professorToken := login(t, "pablo@school.edu", "pw").Token

	w = doJSON(t, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Name: "Eva", Email: "eva@school.edu", Password: "pw",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]int
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	studentID := created["id"]

	taskIDs := make([]int, 0, 3)
	for i, weight := range []float64{30, 30, 40} {
		w := doJSON(t, http.MethodPost, "/api/tasks", professorToken, models.CreateTaskRequest{
			Title:        fmt.Sprintf("Task %d", i+1),
			AssignedDate: "2024-03-01",
			DueDate:      "2024-03-15",
			Weight:       weight,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var task models.Task
		require.NoError(t, json.NewDecoder(w.Body).Decode(&task))
		taskIDs = append(taskIDs, task.ID)
	}

	scores := []*float64{floatPtr(80), floatPtr(60), nil}
	for i, score := range scores {
		w := doJSON(t, http.MethodPost, "/api/grades", professorToken, models.AddGradeRequest{
			TaskID: taskIDs[i], StudentID: studentID, Score: score,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = doJSON(t, http.MethodGet, "/api/grades/pending/count", professorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pending_grades":1}`, w.Body.String())

	w = doJSON(t, http.MethodGet, "/api/tasks/count", professorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_tasks":3}`, w.Body.String())

	studentToken := login(t, "eva@school.edu", "pw").Token
	w = doJSON(t, http.MethodGet, "/api/student/grades", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report models.StudentGradesReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.Len(t, report.Grades, 3)
	require.NotNil(t, report.FinalAverage)
	assert.InDelta(t, 42.0, *report.FinalAverage, 0.001)

	t.Run("grade for a missing task", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/api/grades", professorToken, models.AddGradeRequest{
			TaskID: 999, StudentID: studentID, Score: floatPtr(50),
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("director edits student password", func(t *testing.T) {
		w := doJSON(t, http.MethodPut, fmt.Sprintf("/api/admin/students/%d", studentID), directorToken, models.UpdateUserRequest{
			Name: "Eva", Email: "eva@school.edu", Password: "new-pw",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var stored string
		require.NoError(t, testDB.QueryRow("SELECT password_hash FROM users WHERE id = ?", studentID).Scan(&stored))
		assert.False(t, strings.Contains(stored, "new-pw"))

		login(t, "eva@school.edu", "new-pw")
	})

	t.Run("director deletes professor", func(t *testing.T) {
		var professorID int
		require.NoError(t, testDB.QueryRow("SELECT id FROM users WHERE email = ?", "pablo@school.edu").Scan(&professorID))

		w := doJSON(t, http.MethodDelete, fmt.Sprintf("/api/admin/students/%d", professorID), directorToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(t, http.MethodDelete, fmt.Sprintf("/api/admin/professors/%d", professorID), directorToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func floatPtr(v float64) *float64 {
	return &v
}
