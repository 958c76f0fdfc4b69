package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ANJAN672/Ecom/internal/config"
	"github.com/ANJAN672/Ecom/internal/hash"
	"github.com/ANJAN672/Ecom/internal/models"
	"github.com/ANJAN672/Ecom/internal/mykafka"
	"github.com/ANJAN672/Ecom/internal/service/token"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{
		DB: db,
		Tokens: &token.Service{
			DB:            db,
			JWTSecret:     []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
		},
		Producer: &mykafka.Producer{},
	}
}

func postJSON(e *echo.Echo, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegister(t *testing.T) {
	db := initTestDB(t)
	h := newAuthHandler(db)
	e := echo.New()

	c, rec := postJSON(e, "/register", map[string]string{
		"username": "test_user",
		"password": "password",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "test_user", user.Username)
	require.Equal(t, "customer", user.Role)
	require.NotEmpty(t, user.ID)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.NotEqual(t, "password", stored.PasswordHash)

	// Same username again conflicts.
	c, _ = postJSON(e, "/register", map[string]string{
		"username": "test_user",
		"password": "password",
	})
	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestRegisterSeller(t *testing.T) {
	db := initTestDB(t)
	h := newAuthHandler(db)
	e := echo.New()

	c, rec := postJSON(e, "/register", map[string]string{
		"username": "shop_owner",
		"password": "password",
		"role":     "seller",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "seller", user.Role)

	// Arbitrary roles collapse to customer.
	c, rec = postJSON(e, "/register", map[string]string{
		"username": "sneaky",
		"password": "password",
		"role":     "admin",
	})
	require.NoError(t, h.Register(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "customer", user.Role)
}

func TestLogin(t *testing.T) {
	db := initTestDB(t)
	h := newAuthHandler(db)
	e := echo.New()

	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)
	user := models.User{Username: "test_user", PasswordHash: pwHash, Role: "customer"}
	require.NoError(t, db.Create(&user).Error)

	c, rec := postJSON(e, "/login", map[string]string{
		"username": "test_user",
		"password": "password",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	names := map[string]bool{}
	for _, ck := range cookies {
		names[ck.Name] = true
		require.True(t, ck.HttpOnly)
	}
	require.True(t, names["accessToken"])
	require.True(t, names["refreshToken"])

	var saved models.RefreshToken
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&saved).Error)
	require.False(t, saved.Revoked)

	c, _ = postJSON(e, "/login", map[string]string{
		"username": "test_user",
		"password": "wrong",
	})
	err = h.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
	require.Equal(t, "invalid username or password", he.Message)
}

func TestLogout(t *testing.T) {
	db := initTestDB(t)
	h := newAuthHandler(db)
	e := echo.New()

	refresh, err := h.Tokens.SignRefreshToken(1, "customer")
	require.NoError(t, err)
	require.NoError(t, h.Tokens.SaveRefreshToken(refresh, 1))

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var saved models.RefreshToken
	require.NoError(t, db.Where("token = ?", refresh).First(&saved).Error)
	require.True(t, saved.Revoked)
}
