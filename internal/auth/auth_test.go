package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleetquote/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService(Config{Secret: "test-secret"})
	require.NoError(t, err)
	return service
}

func testUser() *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		TenantID: primitive.NewObjectID().Hex(),
		Username: "dispatcher",
		Role:     models.RoleOperator,
	}
}

func TestNewService_Defaults(t *testing.T) {
	service, err := NewService(Config{})
	assert.NoError(t, err)
	assert.Equal(t, []byte(defaultSecret), service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)

	service, _ = NewService(Config{Secret: "s", Expiry: time.Hour})
	assert.Equal(t, time.Hour, service.tokenExp)
}

func TestService_HashAndCheckPassword(t *testing.T) {
	service := newTestService(t)

	password := "testpassword123"
	hash, err := service.HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hash)

	assert.True(t, service.CheckPassword(password, hash))
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_ValidateToken(t *testing.T) {
	service := newTestService(t)
	user := testUser()

	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.TenantID, claims.TenantID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Role, claims.Role)

	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)

	_, err = service.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateToken_RejectsOtherSecret(t *testing.T) {
	other, _ := NewService(Config{Secret: "another-secret"})
	token, _ := other.GenerateToken(testUser())

	_, err := newTestService(t).ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	service := newTestService(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   "u1",
		"tenant_id": "t1",
		"username":  "dispatcher",
		"role":      "operator",
		"exp":       time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = service.ValidateToken(signed)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestService_ValidateToken_MissingClaims(t *testing.T) {
	service := newTestService(t)

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"no tenant", jwt.MapClaims{"user_id": "u1", "username": "d", "role": "admin"}},
		{"unknown role", jwt.MapClaims{"user_id": "u1", "tenant_id": "t1", "username": "d", "role": "root"}},
		{"no exp", jwt.MapClaims{"user_id": "u1", "tenant_id": "t1", "username": "d", "role": "admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tt.claims).SignedString([]byte("test-secret"))
			require.NoError(t, err)

			_, err = service.ValidateToken(signed)
			assert.Equal(t, ErrInvalidToken, err)
		})
	}
}

func TestClaims_User(t *testing.T) {
	c := &Claims{TenantID: "t1", Username: "v", Role: models.RoleViewer}
	u := c.User()
	assert.True(t, u.HasPermission(models.ActionViewQuotations))
	assert.False(t, u.HasPermission(models.ActionCreateQuotation))
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := newTestService(t)

	extracted, err := service.ExtractTokenFromHeader("Bearer valid-token")
	assert.NoError(t, err)
	assert.Equal(t, "valid-token", extracted)

	for _, header := range []string{"", "InvalidFormat", "Bearer ", "Basic abc"} {
		_, err = service.ExtractTokenFromHeader(header)
		assert.Equal(t, ErrInvalidToken, err, header)
	}
}

func TestService_ValidatePassword(t *testing.T) {
	service := newTestService(t)

	assert.NoError(t, service.ValidatePassword("validpassword123"))

	err := service.ValidatePassword("short")
	assert.ErrorContains(t, err, "at least 8 characters")
}

func TestService_ValidateEmail(t *testing.T) {
	service := newTestService(t)

	assert.NoError(t, service.ValidateEmail("ventas@transportes.hn"))
	for _, email := range []string{"testexample.com", "test@", "test", "@example.com"} {
		assert.ErrorContains(t, service.ValidateEmail(email), "invalid email format", email)
	}
}

func TestService_ValidateUsername(t *testing.T) {
	service := newTestService(t)

	assert.NoError(t, service.ValidateUsername("testuser"))
	assert.ErrorContains(t, service.ValidateUsername("ab"), "at least 3 characters")
	assert.ErrorContains(t, service.ValidateUsername(strings.Repeat("a", 51)), "less than 50 characters")
}

func TestService_GenerateRefreshToken(t *testing.T) {
	service := newTestService(t)

	token, err := service.GenerateRefreshToken()
	assert.NoError(t, err)
	assert.Len(t, token, 44)
}

func TestService_TokenExpiration(t *testing.T) {
	service := newTestService(t)

	token, _ := service.GenerateToken(testUser())
	claims, err := service.ValidateToken(token)
	require.NoError(t, err)

	now := time.Now().Unix()
	assert.Greater(t, claims.Exp, now)
	assert.LessOrEqual(t, claims.Exp, now+int64(service.tokenExp.Seconds())+1)
}
