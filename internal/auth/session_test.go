package auth

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	return NewManager(Config{
		Secret:  "unit-test-session-secret-0123456789",
		Student: Credentials{Email: "student@example.com", Password: "Student123"},
		Tutor:   Credentials{Email: "tutor@example.com", Password: "Tutor1234"},
	}, zerolog.New(io.Discard))
}

func TestIssueAndParseTokenRoundTrip(t *testing.T) {
	manager := newTestManager(t)

	token, expiresAt, err := manager.IssueToken(RoleStudent, "student@example.com")
	require.NoError(t, err)
	require.Contains(t, token, ".")
	require.WithinDuration(t, time.Now().Add(SessionTTL), expiresAt, time.Second)

	session := manager.ParseToken(token)
	require.NotNil(t, session)
	require.Equal(t, RoleStudent, session.Role)
	require.Equal(t, "student@example.com", session.Email)
	require.Equal(t, expiresAt.UnixMilli(), session.Exp)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	manager := newTestManager(t)
	manager.now = func() time.Time { return time.Now().Add(-9 * time.Hour) }

	token, _, err := manager.IssueToken(RoleTutor, "tutor@example.com")
	require.NoError(t, err)

	manager.now = time.Now
	require.Nil(t, manager.ParseToken(token))
}

func TestParseTokenRejectsTampering(t *testing.T) {
	manager := newTestManager(t)

	token, _, err := manager.IssueToken(RoleStudent, "student@example.com")
	require.NoError(t, err)

	cases := map[string]string{
		"missing separator": strings.ReplaceAll(token, ".", ""),
		"empty payload":     "." + strings.SplitN(token, ".", 2)[1],
		"empty signature":   strings.SplitN(token, ".", 2)[0] + ".",
		"flipped payload":   flipFirstRune(token),
		"truncated":         token[:len(token)-4],
		"garbage":           "not-a-token",
		"foreign signature": strings.SplitN(token, ".", 2)[0] + ".AAAA",
	}
	for name, tampered := range cases {
		require.Nil(t, manager.ParseToken(tampered), name)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	manager := newTestManager(t)
	other := NewManager(Config{
		Secret:  "a-completely-different-secret-value",
		Student: Credentials{Email: "student@example.com", Password: "Student123"},
		Tutor:   Credentials{Email: "tutor@example.com", Password: "Tutor1234"},
	}, zerolog.New(io.Discard))

	token, _, err := manager.IssueToken(RoleStudent, "student@example.com")
	require.NoError(t, err)

	require.Nil(t, other.ParseToken(token))
}

func TestParseTokenRejectsNonCanonicalRole(t *testing.T) {
	manager := newTestManager(t)

	signedToken := func(role Role) string {
		raw, err := json.Marshal(Session{
			Role:  role,
			Email: "student@example.com",
			Exp:   time.Now().Add(time.Hour).UnixMilli(),
			V:     sessionVersion,
		})
		require.NoError(t, err)
		encoded := base64.RawURLEncoding.EncodeToString(raw)
		return encoded + "." + manager.sign(encoded)
	}

	require.NotNil(t, manager.ParseToken(signedToken(RoleStudent)))
	require.Nil(t, manager.ParseToken(signedToken("Student")), "only the exact lowercase spelling is valid")
	require.Nil(t, manager.ParseToken(signedToken("TUTOR")))
	require.Nil(t, manager.ParseToken(signedToken("admin")))
}

func TestVerifyCredentials(t *testing.T) {
	manager := newTestManager(t)

	require.True(t, manager.VerifyCredentials(RoleStudent, "student@example.com", "Student123"))
	require.True(t, manager.VerifyCredentials(RoleStudent, "  Student@Example.COM  ", "Student123"), "email match is case-insensitive")
	require.False(t, manager.VerifyCredentials(RoleStudent, "student@example.com", "student123"), "password match is case-sensitive")
	require.False(t, manager.VerifyCredentials(RoleStudent, "tutor@example.com", "Tutor1234"), "credentials are bound to the role")
	require.False(t, manager.VerifyCredentials(RoleTutor, "tutor@example.com", "wrongpass"))
}

func TestIsValidPasswordFormat(t *testing.T) {
	require.True(t, IsValidPasswordFormat("Student123"))
	require.False(t, IsValidPasswordFormat("Ab1"), "too short")
	require.False(t, IsValidPasswordFormat("alllowercase1"), "missing uppercase")
	require.False(t, IsValidPasswordFormat("ALLUPPERCASE1"), "missing lowercase")
	require.False(t, IsValidPasswordFormat("NoDigitsHere"), "missing digit")
}

func TestHasQuickLearnAccessFallsBackToStudent(t *testing.T) {
	manager := newTestManager(t)

	require.True(t, manager.HasQuickLearnAccess("student@example.com"))
	require.True(t, manager.HasQuickLearnAccess("STUDENT@example.com"))
	require.False(t, manager.HasQuickLearnAccess("tutor@example.com"))
}

func TestHasQuickLearnAccessAllowList(t *testing.T) {
	manager := NewManager(Config{
		Secret:           "unit-test-session-secret-0123456789",
		Student:          Credentials{Email: "student@example.com", Password: "Student123"},
		QuickLearnEmails: []string{"Plan@Example.com", "  other@example.com "},
	}, zerolog.New(io.Discard))

	require.True(t, manager.HasQuickLearnAccess("plan@example.com"))
	require.True(t, manager.HasQuickLearnAccess("other@example.com"))
	require.False(t, manager.HasQuickLearnAccess("student@example.com"), "explicit allow-list replaces the fallback")
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("Tutor")
	require.True(t, ok)
	require.Equal(t, RoleTutor, role)

	_, ok = ParseRole("admin")
	require.False(t, ok)
}

func flipFirstRune(token string) string {
	if token == "" {
		return token
	}
	replacement := byte('A')
	if token[0] == 'A' {
		replacement = 'B'
	}
	return string(replacement) + token[1:]
}
