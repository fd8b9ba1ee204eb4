package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "upgrade_session_v2"

// SessionTTL is how long an issued session remains valid.
const SessionTTL = 8 * time.Hour

// sessionVersion is bumped whenever the payload schema changes; tokens
// carrying any other version are rejected.
const sessionVersion = 2

// Session is the decoded token payload. Exp is epoch milliseconds.
type Session struct {
	Role  Role   `json:"role"`
	Email string `json:"email"`
	Exp   int64  `json:"exp"`
	V     int    `json:"v"`
}

// ExpiresAt returns the expiry as a time.Time.
func (s Session) ExpiresAt() time.Time {
	return time.UnixMilli(s.Exp)
}

// Credentials is the configured email/password pair for one role.
type Credentials struct {
	Email    string
	Password string
}

// Config carries everything the session manager needs, constructed once
// at startup instead of being read lazily from the environment.
type Config struct {
	Secret           string
	Student          Credentials
	Tutor            Credentials
	QuickLearnEmails []string
}

// Manager issues, verifies and parses signed session tokens and checks
// role credentials. Tokens are `base64url(JSON payload).base64url(HMAC-SHA256)`,
// stateless and never persisted server-side.
type Manager struct {
	secret     []byte
	creds      map[Role]Credentials
	quickLearn map[string]struct{}
	logger     zerolog.Logger
	now        func() time.Time
}

// NewManager constructs a session manager.
func NewManager(cfg Config, logger zerolog.Logger) *Manager {
	quickLearn := make(map[string]struct{}, len(cfg.QuickLearnEmails))
	for _, email := range cfg.QuickLearnEmails {
		normalized := strings.ToLower(strings.TrimSpace(email))
		if normalized != "" {
			quickLearn[normalized] = struct{}{}
		}
	}
	if len(quickLearn) == 0 {
		// Without an explicit allow-list the gate covers the configured
		// student account only.
		quickLearn[strings.ToLower(strings.TrimSpace(cfg.Student.Email))] = struct{}{}
	}

	return &Manager{
		secret:     []byte(cfg.Secret),
		creds:      map[Role]Credentials{RoleStudent: cfg.Student, RoleTutor: cfg.Tutor},
		quickLearn: quickLearn,
		logger:     logger.With().Str("component", "session_manager").Logger(),
		now:        time.Now,
	}
}

// IsValidPasswordFormat reports whether a password meets the minimum
// format rules: at least 8 characters with an uppercase letter, a
// lowercase letter and a digit. It says nothing about correctness.
func IsValidPasswordFormat(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

// VerifyCredentials checks the supplied email/password against the
// configured pair for the role. Both comparisons are constant-time and
// the email comparison is case-insensitive.
func (m *Manager) VerifyCredentials(role Role, email, password string) bool {
	expected, ok := m.creds[role]
	if !ok || expected.Email == "" || expected.Password == "" {
		return false
	}

	emailOK := secureEqual(strings.ToLower(strings.TrimSpace(email)), strings.ToLower(strings.TrimSpace(expected.Email)))
	passwordOK := secureEqual(password, expected.Password)
	return emailOK && passwordOK
}

// IssueToken builds a signed session token for the role/email pair and
// returns it together with its expiry.
func (m *Manager) IssueToken(role Role, email string) (string, time.Time, error) {
	expiresAt := m.now().Add(SessionTTL)
	payload := Session{
		Role:  role,
		Email: email,
		Exp:   expiresAt.UnixMilli(),
		V:     sessionVersion,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", time.Time{}, err
	}

	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + m.sign(encoded), expiresAt, nil
}

// ParseToken verifies and decodes a session token. Every failure mode
// (malformed, tampered, expired, stale version, unknown role) collapses
// into a nil result so callers cannot tell why a token was rejected.
func (m *Manager) ParseToken(token string) *Session {
	encoded, signature, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || signature == "" {
		return nil
	}

	if !secureEqual(signature, m.sign(encoded)) {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil
	}
	if session.Email == "" || session.Exp <= m.now().UnixMilli() {
		return nil
	}
	if session.V != sessionVersion {
		return nil
	}
	// Only the exact canonical role spellings are valid; a token carrying
	// "Student" was not issued by us.
	if role, ok := ParseRole(string(session.Role)); !ok || role != session.Role {
		return nil
	}

	return &session
}

// HasQuickLearnAccess reports whether the student email is on the
// QuickLearn plan allow-list.
func (m *Manager) HasQuickLearnAccess(email string) bool {
	_, ok := m.quickLearn[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

func (m *Manager) sign(value string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func secureEqual(left, right string) bool {
	return subtle.ConstantTimeCompare([]byte(left), []byte(right)) == 1
}
