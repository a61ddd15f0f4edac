package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlog "gorm.io/gorm/logger"

	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/handlers/middleware"
	"github.com/teamspace-app/teamspace/internal/models"
	"github.com/teamspace-app/teamspace/internal/storage"
)

type fakeVerificationMailer struct {
	emails []string
	tokens []string
}

func (f *fakeVerificationMailer) SendVerificationEmail(ctx context.Context, email, token string) (string, error) {
	f.emails = append(f.emails, email)
	f.tokens = append(f.tokens, token)
	return "msg-1", nil
}

func setupHandler(t *testing.T) (*Handler, *gormw.DB, *fakeVerificationMailer, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gormw.Open(&gormw.Config{
		LogLevel: gormlog.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	mailer := &fakeVerificationMailer{}
	h := NewHandler(&Config{}, db, mailer)
	h.clock = clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	router := gin.New()
	h.RegisterHandlers(router.Group("/"))

	return h, db, mailer, router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Password1", false},
		{"too short", "Pass1", true},
		{"no number", "PasswordOnly", true},
		{"no letter", "12345678", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHandleRegister(t *testing.T) {
	_, db, mailer, router := setupHandler(t)

	rec := postJSON(t, router, "/auth/register", gin.H{
		"name":     "Bob",
		"email":    "Bob@Example.com",
		"password": "Password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	user, err := storage.GetUserByEmail(db, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bob", user.Name)
	assert.False(t, user.EmailVerified)
	assert.NotEmpty(t, user.VerifyToken)
	assert.True(t, user.CheckPassword("Password1"))

	require.Len(t, mailer.emails, 1)
	assert.Equal(t, "bob@example.com", mailer.emails[0])
	assert.Equal(t, user.VerifyToken, mailer.tokens[0])
}

func TestHandleRegister_Errors(t *testing.T) {
	_, db, _, router := setupHandler(t)

	require.NoError(t, storage.CreateUser(db, &models.User{Name: "Taken", Email: "taken@example.com"}))

	tests := []struct {
		name         string
		body         gin.H
		expectedCode int
		expectedBody string
	}{
		{
			name:         "missing fields",
			body:         gin.H{"email": "bob@example.com"},
			expectedCode: http.StatusBadRequest,
			expectedBody: "missing_parameters",
		},
		{
			name:         "bad email",
			body:         gin.H{"name": "Bob", "email": "not-an-email", "password": "Password1"},
			expectedCode: http.StatusBadRequest,
			expectedBody: "invalid_email",
		},
		{
			name:         "weak password",
			body:         gin.H{"name": "Bob", "email": "bob@example.com", "password": "short"},
			expectedCode: http.StatusBadRequest,
			expectedBody: "weak_password",
		},
		{
			name:         "duplicate email",
			body:         gin.H{"name": "Bob", "email": "Taken@example.com", "password": "Password1"},
			expectedCode: http.StatusConflict,
			expectedBody: "email_taken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/auth/register", tt.body)
			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}

func TestHandleVerify(t *testing.T) {
	_, db, mailer, router := setupHandler(t)

	rec := postJSON(t, router, "/auth/register", gin.H{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "Password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, mailer.tokens, 1)

	rec = postJSON(t, router, "/auth/verify", gin.H{"token": mailer.tokens[0]})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	user, err := storage.GetUserByEmail(db, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)
	assert.Empty(t, user.VerifyToken)

	// The token is single-use.
	rec = postJSON(t, router, "/auth/verify", gin.H{"token": mailer.tokens[0]})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleVerify_ExpiredToken(t *testing.T) {
	h, _, mailer, router := setupHandler(t)

	rec := postJSON(t, router, "/auth/register", gin.H{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "Password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	h.clock.(*clockwork.FakeClock).Advance(25 * time.Hour)

	rec = postJSON(t, router, "/auth/verify", gin.H{"token": mailer.tokens[0]})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "token_expired")
}

func TestHandleLogin(t *testing.T) {
	_, db, _, router := setupHandler(t)

	user := &models.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, user.SetPassword("Password1"))
	require.NoError(t, storage.CreateUser(db, user))

	tests := []struct {
		name         string
		body         gin.H
		expectedCode int
	}{
		{"success", gin.H{"email": "bob@example.com", "password": "Password1"}, http.StatusOK},
		{"wrong password", gin.H{"email": "bob@example.com", "password": "Wrong1234"}, http.StatusUnauthorized},
		{"unknown user", gin.H{"email": "nobody@example.com", "password": "Password1"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/auth/login", tt.body)
			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}

func TestHandleLogin_SetsSessionCookie(t *testing.T) {
	_, db, _, router := setupHandler(t)

	user := &models.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, user.SetPassword("Password1"))
	require.NoError(t, storage.CreateUser(db, user))

	rec := postJSON(t, router, "/auth/login", gin.H{"email": "bob@example.com", "password": "Password1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var token string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			token = cookie.Value
		}
	}
	require.NotEmpty(t, token)

	session, err := storage.GetSessionByToken(db, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
}

func TestHandleLogout(t *testing.T) {
	h, db, _, router := setupHandler(t)

	user := &models.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, storage.CreateUser(db, user))
	require.NoError(t, storage.CreateSession(db, &models.Session{
		UserID:    user.ID,
		Token:     "logout-token",
		ExpiresAt: h.clock.Now().Add(time.Hour),
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "logout-token"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := storage.GetSessionByToken(db, "logout-token")
	assert.Error(t, err)
}
