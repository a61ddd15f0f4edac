package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlog "gorm.io/gorm/logger"

	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/handlers/middleware"
	"github.com/teamspace-app/teamspace/internal/models"
	"github.com/teamspace-app/teamspace/internal/storage"
)

type testEnv struct {
	db     *gormw.DB
	router *gin.Engine
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gormw.Open(&gormw.Config{
		LogLevel: gormlog.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	router := gin.New()
	NewHandler(db).RegisterHandlers(router.Group("/"), middleware.NewSessionAuth(db))

	return &testEnv{db: db, router: router}
}

func (e *testEnv) signUp(t *testing.T, email string) (*models.User, *http.Cookie) {
	t.Helper()

	user := &models.User{Name: "User " + email, Email: email, EmailVerified: true}
	require.NoError(t, storage.CreateUser(e.db, user))

	token := uuid.New().String()
	require.NoError(t, storage.CreateSession(e.db, &models.Session{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	return user, &http.Cookie{Name: middleware.SessionCookie, Value: token}
}

func (e *testEnv) member(t *testing.T, email string) (*models.User, *http.Cookie, *models.Company) {
	t.Helper()

	user, cookie := e.signUp(t, email)
	company := &models.Company{Name: "Acme", CreatedBy: user.ID}
	require.NoError(t, storage.CreateCompanyWithOwner(e.db, company, user.ID))
	return user, cookie, company
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleCreateClient(t *testing.T) {
	env := setupEnv(t)
	_, cookie, company := env.member(t, "owner@example.com")

	path := fmt.Sprintf("/companies/%d/clients", company.ID)

	rec := env.do(t, http.MethodPost, path, gin.H{
		"name":  "Globex",
		"email": "contact@globex.com",
		"phone": "555-0100",
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	clients, err := storage.ListClientsByCompany(env.db, company.ID)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Globex", clients[0].Name)

	// Validation.
	rec = env.do(t, http.MethodPost, path, gin.H{"email": "x@example.com"}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodPost, path, gin.H{"name": "Bad", "email": "nope"}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Non-members are rejected.
	_, outsiderCookie := env.signUp(t, "outsider@example.com")
	rec = env.do(t, http.MethodPost, path, gin.H{"name": "Spy"}, outsiderCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleUpdateClient(t *testing.T) {
	env := setupEnv(t)
	_, cookie, company := env.member(t, "owner@example.com")

	client := &models.Client{CompanyID: company.ID, Name: "Globex", Phone: "555-0100"}
	require.NoError(t, storage.CreateClient(env.db, client))

	path := fmt.Sprintf("/clients/%d", client.ID)

	// Single-field patch leaves the rest untouched.
	rec := env.do(t, http.MethodPatch, path, gin.H{"notes": "key account"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := storage.GetClientByID(env.db, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "key account", got.Notes)
	assert.Equal(t, "Globex", got.Name)
	assert.Equal(t, "555-0100", got.Phone)

	// Name cannot be blanked.
	rec = env.do(t, http.MethodPatch, path, gin.H{"name": ""}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Foreign company clients read as not found.
	_, outsiderCookie := env.signUp(t, "outsider@example.com")
	rec = env.do(t, http.MethodPatch, path, gin.H{"notes": "spy"}, outsiderCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDeleteClient(t *testing.T) {
	env := setupEnv(t)
	_, cookie, company := env.member(t, "owner@example.com")

	client := &models.Client{CompanyID: company.ID, Name: "Globex"}
	require.NoError(t, storage.CreateClient(env.db, client))

	rec := env.do(t, http.MethodDelete, fmt.Sprintf("/clients/%d", client.ID), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := storage.GetClientByID(env.db, client.ID)
	assert.Error(t, err)

	rec = env.do(t, http.MethodDelete, "/clients/999", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleListClients(t *testing.T) {
	env := setupEnv(t)
	_, cookie, company := env.member(t, "owner@example.com")

	require.NoError(t, storage.CreateClient(env.db, &models.Client{CompanyID: company.ID, Name: "A"}))
	require.NoError(t, storage.CreateClient(env.db, &models.Client{CompanyID: company.ID, Name: "B"}))

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/companies/%d/clients", company.ID), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Clients []models.Client `json:"clients"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Clients, 2)
}
