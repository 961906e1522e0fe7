package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLoginAndValidate(t *testing.T) {
	svc := NewAuthService()

	_, err := svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login("admin", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.AdminID)

	claims, err := svc.ValidateAdminToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.AdminID, claims.AdminID)

	_, err = svc.ValidateAdminToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRespondentTokenRoundTrip(t *testing.T) {
	svc := NewAuthService()

	token, err := svc.GenerateRespondentToken("asmt_123", "resp_1")
	require.NoError(t, err)

	claims, err := svc.ValidateRespondentToken(token)
	require.NoError(t, err)
	assert.Equal(t, "asmt_123", claims.AssessmentID)
	assert.Equal(t, "resp_1", claims.RespondentID)
}

// Admin tokens must not validate as respondent tokens with populated scope
func TestTokenScopesAreDistinct(t *testing.T) {
	svc := NewAuthService()

	resp, err := svc.Login("admin", "password123")
	require.NoError(t, err)

	claims, err := svc.ValidateRespondentToken(resp.Token)
	if err == nil {
		assert.Empty(t, claims.AssessmentID)
	}
}
