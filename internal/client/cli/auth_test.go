package cli

import (
	"testing"

	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Failure(t *testing.T) {
	h := newHarness(t, "alice@example.com\nwrong\n")
	h.auth.err = common.WithReason(common.ErrorUnauthorized, common.ReasonWrongPassword)

	err := h.run("login")
	assert.Equal(t, "Incorrect password. Please try again.", friendly(err))
	_, ok := h.sessions.Current(t.Context())
	assert.False(t, ok)
}

func TestLogin_EmailFlag(t *testing.T) {
	h := newHarness(t, "pw\n")

	require.NoError(t, h.run("login", "-e", "alice@example.com"))
	assert.Equal(t, "alice@example.com", h.auth.email)
	assert.Equal(t, "pw", h.auth.password)
}

func TestLogin_GitHub(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run("login", "--github"))
	assert.Equal(t, []string{"GitHubLogin"}, h.auth.calls)
	assert.Contains(t, h.out.String(), "Open https://github.com/login/device and enter the code ABCD-1234")
	_, ok := h.sessions.Current(t.Context())
	assert.True(t, ok)
}

func TestSignup(t *testing.T) {
	h := newHarness(t, "bob@example.com\nBob\nsecret\nsecret\n")

	require.NoError(t, h.run("signup"))
	assert.Equal(t, []string{"SignUp"}, h.auth.calls)
	assert.Contains(t, h.out.String(), "Welcome, Bob!")
}

func TestResetPassword_WithCode(t *testing.T) {
	h := newHarness(t, "newpass\nnewpass\n")

	require.NoError(t, h.run("reset-password", "--code", "abc123"))
	assert.Equal(t, []string{"ResetPassword"}, h.auth.calls)
	assert.Equal(t, "abc123", h.auth.code)
	assert.Contains(t, h.out.String(), "Password changed.")
}

func TestResetPassword_FullFlow(t *testing.T) {
	h := newHarness(t, "bob@example.com\nabc123\nnewpass\nnewpass\n")

	require.NoError(t, h.run("reset-password"))
	assert.Equal(t, []string{"RequestPasswordReset", "ResetPassword"}, h.auth.calls)
	assert.Contains(t, h.out.String(), "Check your inbox")
}
