package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewire/hospital-api/internal/config"
	"github.com/carewire/hospital-api/internal/email"
	"github.com/carewire/hospital-api/internal/handler"
	appointmentHandler "github.com/carewire/hospital-api/internal/handler/appointment"
	authHandler "github.com/carewire/hospital-api/internal/handler/auth"
	invoiceHandler "github.com/carewire/hospital-api/internal/handler/invoice"
	promHandler "github.com/carewire/hospital-api/internal/handler/prometheus"
	reportHandler "github.com/carewire/hospital-api/internal/handler/report"
	userHandler "github.com/carewire/hospital-api/internal/handler/user"
	"github.com/carewire/hospital-api/internal/middleware"
	"github.com/carewire/hospital-api/internal/repository/memory"
	appointmentService "github.com/carewire/hospital-api/internal/service/appointment"
	authService "github.com/carewire/hospital-api/internal/service/auth"
	eventService "github.com/carewire/hospital-api/internal/service/event"
	invoiceService "github.com/carewire/hospital-api/internal/service/invoice"
	reportService "github.com/carewire/hospital-api/internal/service/report"
	userService "github.com/carewire/hospital-api/internal/service/user"
	jwtauth "github.com/carewire/hospital-api/pkg/auth"
	"github.com/carewire/hospital-api/pkg/logger"
	"github.com/carewire/hospital-api/pkg/validator"
)

var prom = promHandler.New()

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.RegisterCustomValidations())

	userRepo := memory.NewUserRepository()
	outboxRepo := memory.NewOutboxRepository()
	appLogger := logger.NewLogger(nil)
	emailSvc := email.NewService(config.SMTPConfig{})
	eventSvc := eventService.NewService(outboxRepo)

	jwtSvc, err := jwtauth.NewJWTService("router-test-secret", time.Hour)
	require.NoError(t, err)

	authSvc := authService.NewService(userRepo, jwtSvc, time.Hour)
	userSvc := userService.NewService(userRepo)
	appointmentSvc := appointmentService.NewService(memory.NewAppointmentRepository(), userRepo, eventSvc, emailSvc, appLogger)
	invoiceSvc := invoiceService.NewService(memory.NewInvoiceRepository(), userRepo, eventSvc, emailSvc, appLogger)
	reportSvc := reportService.NewService(memory.NewReportRepository(), userRepo, eventSvc, appLogger)

	r := NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		authHandler.NewHandler(authSvc),
		userHandler.NewHandler(userSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		invoiceHandler.NewHandler(invoiceSvc),
		reportHandler.NewHandler(reportSvc),
		handler.NewHandler(nil),
		prom,
		Config{RequestTimeout: 5 * time.Second},
	)
	r.Setup()
	return r.Engine()
}

type apiResponse struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"-"`
	RawData json.RawMessage        `json:"data"`
}

func doRequest(t *testing.T, engine *gin.Engine, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, *apiResponse) {
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
	engine.ServeHTTP(w, req)

	resp := &apiResponse{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), resp), "body: %s", w.Body.String())
		if len(resp.RawData) > 0 && resp.RawData[0] == '{' {
			resp.Data = map[string]interface{}{}
			require.NoError(t, json.Unmarshal(resp.RawData, &resp.Data))
		}
	}
	return w, resp
}

func signupAndLogin(t *testing.T, engine *gin.Engine, name, emailAddr, role string) string {
	t.Helper()
	w, _ := doRequest(t, engine, http.MethodPost, "/api/v1/auth/signup", map[string]interface{}{
		"name":     name,
		"email":    emailAddr,
		"password": "s3cret-pass",
		"role":     role,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, resp := doRequest(t, engine, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email":    emailAddr,
		"password": "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := resp.Data["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestPatientBookingFlow(t *testing.T) {
	engine := newTestEngine(t)

	aliceToken := signupAndLogin(t, engine, "Alice", "alice@example.com", "patient")
	doctorToken := signupAndLogin(t, engine, "Dr. Grey", "grey@example.com", "doctor")

	// Alice books
	w, resp := doRequest(t, engine, http.MethodPost, "/api/v1/appointments", map[string]interface{}{
		"date": "2026-09-15",
		"time": "10:30",
	}, aliceToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Pending", resp.Data["status"])
	aptID, _ := resp.Data["id"].(string)
	require.NotEmpty(t, aptID)

	// Doctor sees it in the staff listing
	w, resp = doRequest(t, engine, http.MethodGet, "/api/v1/appointments", nil, doctorToken)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.RawData, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Alice", listed[0]["patient_name"])

	// Doctor approves
	w, resp = doRequest(t, engine, http.MethodPut, "/api/v1/appointments/"+aptID, map[string]interface{}{
		"status": "Approved",
	}, doctorToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Approved", resp.Data["status"])

	// Alice sees the decision
	w, resp = doRequest(t, engine, http.MethodGet, "/api/v1/appointments/my", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.RawData, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "Approved", mine[0]["status"])
}

func TestRoleMatrix(t *testing.T) {
	engine := newTestEngine(t)

	patientToken := signupAndLogin(t, engine, "Alice", "alice@example.com", "patient")
	doctorToken := signupAndLogin(t, engine, "Dr. Grey", "grey@example.com", "doctor")
	receptionistToken := signupAndLogin(t, engine, "Rita", "rita@example.com", "receptionist")

	// Staff cannot book appointments
	w, _ := doRequest(t, engine, http.MethodPost, "/api/v1/appointments", map[string]interface{}{
		"date": "2026-09-15", "time": "10:30",
	}, doctorToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Patients cannot read the staff listing
	w, _ = doRequest(t, engine, http.MethodGet, "/api/v1/appointments", nil, patientToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Receptionists cannot file reports
	w, _ = doRequest(t, engine, http.MethodPost, "/api/v1/reports", map[string]interface{}{
		"patient_id": "000000000000000000000000", "diagnosis": "x", "prescription": "y",
	}, receptionistToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Doctors cannot issue invoices
	w, _ = doRequest(t, engine, http.MethodPost, "/api/v1/invoices", map[string]interface{}{
		"patient_id": "000000000000000000000000", "amount": 10,
	}, doctorToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Patients cannot read all invoices
	w, _ = doRequest(t, engine, http.MethodGet, "/api/v1/invoices/all", nil, patientToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthenticationFailures(t *testing.T) {
	engine := newTestEngine(t)

	// No token
	w, resp := doRequest(t, engine, http.MethodGet, "/api/v1/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "error", resp.Status)

	// Malformed header
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token
	w, _ = doRequest(t, engine, http.MethodGet, "/api/v1/users", nil, "garbage.token.here")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Token signed with another secret
	otherJwt, err := jwtauth.NewJWTService("another-secret", time.Hour)
	require.NoError(t, err)
	forged, err := otherJwt.GenerateToken("65f1c0ffee0000000000abcd", "x@y.com", "admin")
	require.NoError(t, err)
	w, _ = doRequest(t, engine, http.MethodGet, "/api/v1/users", nil, forged)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDuplicateSignupConflict(t *testing.T) {
	engine := newTestEngine(t)

	signupAndLogin(t, engine, "Alice", "alice@example.com", "patient")

	w, resp := doRequest(t, engine, http.MethodPost, "/api/v1/auth/signup", map[string]interface{}{
		"name":     "Alice Again",
		"email":    "alice@example.com",
		"password": "s3cret-pass",
		"role":     "patient",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "error", resp.Status)
}

func TestSignupValidation(t *testing.T) {
	engine := newTestEngine(t)

	cases := []map[string]interface{}{
		{"name": "A", "email": "not-an-email", "password": "s3cret-pass", "role": "patient"},
		{"name": "A", "email": "a@b.com", "password": "short", "role": "patient"},
		{"name": "A", "email": "a@b.com", "password": "s3cret-pass", "role": "superuser"},
		{"name": "A", "email": "a@b.com", "password": "s3cret-pass", "role": "patient", "contact_number": "abc"},
	}
	for i, body := range cases {
		w, _ := doRequest(t, engine, http.MethodPost, "/api/v1/auth/signup", body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "case %d: %s", i, w.Body.String())
	}
}

func TestUsersListingExcludesAdmins(t *testing.T) {
	engine := newTestEngine(t)

	signupAndLogin(t, engine, "Root", "root@example.com", "admin")
	aliceToken := signupAndLogin(t, engine, "Alice", "alice@example.com", "patient")

	w, resp := doRequest(t, engine, http.MethodGet, "/api/v1/users", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)

	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.RawData, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "alice@example.com", users[0]["email"])
	for _, u := range users {
		_, hasHash := u["passwordHash"]
		assert.False(t, hasHash)
	}
}

func TestMyInvoicesScoping(t *testing.T) {
	engine := newTestEngine(t)

	adminToken := signupAndLogin(t, engine, "Root", "root@example.com", "admin")
	bobToken := signupAndLogin(t, engine, "Bob", "bob@example.com", "patient")
	carolToken := signupAndLogin(t, engine, "Carol", "carol@example.com", "patient")

	// Look up Bob's id from the listing
	w, resp := doRequest(t, engine, http.MethodGet, "/api/v1/users", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.RawData, &users))
	var bobID string
	for _, u := range users {
		if u["email"] == "bob@example.com" {
			bobID, _ = u["id"].(string)
		}
	}
	require.NotEmpty(t, bobID)

	w, _ = doRequest(t, engine, http.MethodPost, "/api/v1/invoices", map[string]interface{}{
		"patient_id": bobID,
		"amount":     99.50,
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, resp = doRequest(t, engine, http.MethodGet, "/api/v1/invoices/my-invoices", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	var bobInvoices []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.RawData, &bobInvoices))
	require.Len(t, bobInvoices, 1)
	assert.Equal(t, 99.50, bobInvoices[0]["amount"])

	w, resp = doRequest(t, engine, http.MethodGet, "/api/v1/invoices/my-invoices", nil, carolToken)
	require.Equal(t, http.StatusOK, w.Code)
	if len(resp.RawData) > 0 && string(resp.RawData) != "null" {
		var carolInvoices []map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.RawData, &carolInvoices))
		assert.Empty(t, carolInvoices)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	engine := newTestEngine(t)

	token := signupAndLogin(t, engine, "Alice", "alice@example.com", "patient")

	w, _ := doRequest(t, engine, http.MethodGet, "/api/v1/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, engine, http.MethodPost, "/api/v1/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, engine, http.MethodGet, "/api/v1/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	engine := newTestEngine(t)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, fmt.Sprintf("path %s", path))
	}
}
