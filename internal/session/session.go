// Package session holds the authenticated MindWell session for the running
// client. The bearer token is issued by the backend; the client never
// verifies the signature, it only extracts the identity claims it needs to
// scope notification and preference requests.
package session

import (
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mindwell/mindwell-go/internal/errors"
)

// UserType identifies the persona the session belongs to
type UserType string

const (
	// UserTypePatient is a regular support-seeking user
	UserTypePatient UserType = "patient"
	// UserTypePsychologist is a professional user with quiet-hours scheduling
	UserTypePsychologist UserType = "psychologist"
	// UserTypeUnknown is reported when the token carries no recognizable role
	UserTypeUnknown UserType = "unknown"
)

// Claims mirrors the identity claims the MindWell backend puts in its tokens
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

// Session is the authenticated session for one user. Safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	token  string
	claims *Claims
}

// New creates a session from a bearer token. The token's claims are parsed
// without signature verification; verification is the server's concern, the
// client only needs the identity for request scoping.
func New(token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.Newf("no session token available").
			Component("session").
			Category(errors.CategoryAuth).
			Build()
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.New(err).
			Component("session").
			Category(errors.CategoryAuth).
			Context("operation", "parse_token").
			Build()
	}

	if claims.UserID == "" {
		// Some deployments put the user id in the standard subject claim
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, errors.Newf("session token carries no user id").
			Component("session").
			Category(errors.CategoryAuth).
			Build()
	}

	return &Session{token: token, claims: claims}, nil
}

// Token returns the raw bearer token for the Authorization header.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUserID returns the authenticated user's id.
func (s *Session) CurrentUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims.UserID
}

// CurrentUserType returns the persona encoded in the token.
func (s *Session) CurrentUserType() UserType {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch strings.ToLower(s.claims.UserType) {
	case "patient", "user":
		return UserTypePatient
	case "psychologist", "professional":
		return UserTypePsychologist
	default:
		return UserTypeUnknown
	}
}
