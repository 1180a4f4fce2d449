// ABOUTME: Auth gate consulted by the CLI and MCP adapters before any session action
// ABOUTME: AllowAll admits everyone; TokenGate admits sessions that logged in with the shared token
package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"sync"

	"github.com/harper/docchat/internal/models"
)

// Gate decides whether a session may use the chat
type Gate interface {
	IsAuthorized(sessionID string) bool
}

// AllowAll authorizes every session
type AllowAll struct{}

// IsAuthorized always returns true
func (AllowAll) IsAuthorized(string) bool { return true }

// TokenGate authorizes sessions that presented the shared access token
type TokenGate struct {
	token []byte

	mu       sync.RWMutex
	sessions map[string]bool
}

// NewTokenGate creates a gate for token; an empty token is a configuration error
func NewTokenGate(token string) (*TokenGate, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: access token cannot be empty", models.ErrInvalidConfiguration)
	}
	return &TokenGate{token: []byte(token), sessions: make(map[string]bool)}, nil
}

// Login authorizes sessionID when token matches
func (g *TokenGate) Login(sessionID, token string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", models.ErrInvalidInput)
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), g.token) != 1 {
		return models.ErrUnauthorized
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[sessionID] = true
	return nil
}

// Logout revokes sessionID
func (g *TokenGate) Logout(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessions, sessionID)
}

// IsAuthorized reports whether sessionID has logged in
func (g *TokenGate) IsAuthorized(sessionID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sessions[sessionID]
}

// Require returns ErrUnauthorized when gate rejects sessionID
func Require(gate Gate, sessionID string) error {
	if gate == nil || gate.IsAuthorized(sessionID) {
		return nil
	}
	return fmt.Errorf("%w: session %q must log in first", models.ErrUnauthorized, sessionID)
}

// FromToken returns a TokenGate when token is set and AllowAll otherwise
func FromToken(token string) Gate {
	if strings.TrimSpace(token) == "" {
		return AllowAll{}
	}
	g, _ := NewTokenGate(token)
	return g
}
