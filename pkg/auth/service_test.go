package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phc-health/phc-engine/pkg/models"
)

func testUser() *models.User {
	tenantID := uuid.New()
	return &models.User{
		ID:       uuid.New(),
		Email:    "doctor@phc.test",
		Role:     models.RoleDoctor,
		TenantID: &tenantID,
	}
}

func TestService_IssueAndParse(t *testing.T) {
	service := NewService("test-signing-key", time.Hour)
	user := testUser()

	token, err := service.IssueToken(user)
	require.NoError(t, err)

	claims, err := service.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, models.RoleDoctor, claims.Role)
	assert.Equal(t, user.TenantID.String(), claims.TenantID)
	assert.False(t, claims.Elevated())

	tenantID, ok := claims.TenantUUID()
	require.True(t, ok)
	assert.Equal(t, *user.TenantID, tenantID)
}

func TestService_SuperAdminHasNoTenant(t *testing.T) {
	service := NewService("test-signing-key", time.Hour)

	token, err := service.IssueToken(&models.User{
		ID:    uuid.New(),
		Email: "ops@phc.test",
		Role:  models.RoleSuperAdmin,
	})
	require.NoError(t, err)

	claims, err := service.ParseToken(token)
	require.NoError(t, err)
	assert.True(t, claims.Elevated())
	assert.Empty(t, claims.TenantID)

	_, ok := claims.TenantUUID()
	assert.False(t, ok)
}

func TestService_RejectsWrongKey(t *testing.T) {
	issuer := NewService("key-one", time.Hour)
	verifier := NewService("key-two", time.Hour)

	token, err := issuer.IssueToken(testUser())
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestService_RejectsExpiredToken(t *testing.T) {
	service := NewService("test-signing-key", -time.Minute)

	token, err := service.IssueToken(testUser())
	require.NoError(t, err)

	_, err = service.ParseToken(token)
	assert.Error(t, err)
}

func TestService_RejectsGarbage(t *testing.T) {
	service := NewService("test-signing-key", time.Hour)

	_, err := service.ParseToken("not.a.token")
	assert.Error(t, err)
}
