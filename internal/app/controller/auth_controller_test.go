package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hyeonkim/tabling-backend/internal/app/repository"
	"github.com/hyeonkim/tabling-backend/internal/app/service"
	"github.com/hyeonkim/tabling-backend/internal/db"
	"github.com/hyeonkim/tabling-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthControllerTest(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)

	ctrl := NewAuthController(authService, 15*time.Minute)
	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()
	router.POST("/register", ctrl.Register)
	router.POST("/login", ctrl.Login)
	router.GET("/me", authMiddleware.Authenticate(), ctrl.GetMe)

	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthController_Register_Success(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := postJSON(t, router, "/register", RegisterRequest{
		Email:    "test@example.com",
		Password: "password123",
		Name:     "Test User",
		Phone:    "01012345678",
		Role:     "partner",
	}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "User registered successfully", response["message"])
	assert.NotNil(t, response["tokens"])

	user := response["user"].(map[string]interface{})
	assert.Equal(t, "partner", user["role"])
}

func TestAuthController_Register_Invalid(t *testing.T) {
	router := setupAuthControllerTest(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{
			name: "Invalid email",
			req:  RegisterRequest{Email: "invalid-email", Password: "password123", Name: "User"},
		},
		{
			name: "Short password",
			req:  RegisterRequest{Email: "test@example.com", Password: "123", Name: "User"},
		},
		{
			name: "Unknown role",
			req:  RegisterRequest{Email: "test@example.com", Password: "password123", Name: "User", Role: "admin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/register", tt.req, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "VALIDATION_INVALID_INPUT")
		})
	}
}

func TestAuthController_Register_DuplicateEmail(t *testing.T) {
	router := setupAuthControllerTest(t)

	req := RegisterRequest{
		Email:    "dup@example.com",
		Password: "password123",
		Name:     "User",
	}
	w := postJSON(t, router, "/register", req, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/register", req, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_EMAIL_EXISTS")
}

func TestAuthController_LoginAndGetMe(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := postJSON(t, router, "/register", RegisterRequest{
		Email:    "login@example.com",
		Password: "password123",
		Name:     "Login User",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// 로그인
	w = postJSON(t, router, "/login", LoginRequest{
		Email:    "login@example.com",
		Password: "password123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Tokens.AccessToken)

	// 발급된 토큰으로 내 정보 조회
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+response.Tokens.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "login@example.com")
}

func TestAuthController_Login_WrongPassword(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := postJSON(t, router, "/register", RegisterRequest{
		Email:    "login@example.com",
		Password: "password123",
		Name:     "Login User",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/login", LoginRequest{
		Email:    "login@example.com",
		Password: "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_UNAUTHORIZED")
}
