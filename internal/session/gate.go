package session

import (
	"context"
	"io"
	"log"
	"sync"

	"onlineshop/internal/backend"
	"onlineshop/internal/domain"
)

// Identity is who the session belongs to, as reported by the backend. It is
// never derived client-side.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// authAPI is the slice of the backend client the gate drives.
type authAPI interface {
	Login(ctx context.Context, in backend.LoginInput) (*backend.AuthResult, error)
	Register(ctx context.Context, in backend.RegisterInput) (*backend.AuthResult, error)
	Me(ctx context.Context) (*domain.User, error)
}

// Persister stores the auth partition of the client state.
type Persister interface {
	SaveAuth(token string, identity Identity) error
	ClearAuth() error
}

// Gate holds the session token and identity, and decides whether protected
// workflows may proceed. It doubles as the backend client's TokenSource, so
// the raw token never flows anywhere except outgoing request headers.
type Gate struct {
	mu       sync.RWMutex
	api      authAPI
	persist  Persister
	logger   *log.Logger
	token    string
	identity Identity
	authed   bool
}

func NewGate(persist Persister, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Gate{persist: persist, logger: logger}
}

// Bind wires the backend client in. The gate and the client reference each
// other (the gate is the client's token source), so this runs after both are
// constructed.
func (g *Gate) Bind(api authAPI) {
	g.mu.Lock()
	g.api = api
	g.mu.Unlock()
}

// Token implements backend.TokenSource.
func (g *Gate) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// Authenticated reports whether a session is active.
func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authed
}

// Identity returns the current identity; ok is false when anonymous.
func (g *Gate) Identity() (Identity, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.identity, g.authed
}

// Login exchanges credentials for a session. Any failure leaves the gate
// anonymous with persisted auth state wiped, so a half-set session can never
// survive a failed attempt.
func (g *Gate) Login(ctx context.Context, username, password string) (Identity, error) {
	api := g.boundAPI()
	res, err := api.Login(ctx, backend.LoginInput{Username: username, Password: password})
	if err != nil {
		g.forceLogout("login failed")
		return Identity{}, err
	}
	return g.establish(res), nil
}

// Register creates an account and opens a session, with the same all-or-
// nothing failure behavior as Login.
func (g *Gate) Register(ctx context.Context, username, email, password string) (Identity, error) {
	api := g.boundAPI()
	res, err := api.Register(ctx, backend.RegisterInput{Username: username, Email: email, Password: password})
	if err != nil {
		g.forceLogout("register failed")
		return Identity{}, err
	}
	return g.establish(res), nil
}

// RefreshIdentity re-fetches the identity bound to the current token. A
// failed fetch means the credential is stale or invalid: the session is
// closed rather than operating on it.
func (g *Gate) RefreshIdentity(ctx context.Context) (Identity, error) {
	g.mu.RLock()
	hasToken := g.token != ""
	api := g.api
	g.mu.RUnlock()
	if !hasToken {
		return Identity{}, domain.ErrUnauthorized
	}

	user, err := api.Me(ctx)
	if err != nil {
		g.forceLogout("identity fetch failed")
		return Identity{}, err
	}

	identity := Identity{ID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role}
	g.mu.Lock()
	g.identity = identity
	g.authed = true
	token := g.token
	g.mu.Unlock()
	g.saveAuth(token, identity)
	return identity, nil
}

// Logout explicitly closes the session.
func (g *Gate) Logout() {
	g.forceLogout("logout")
}

// Restore rehydrates a persisted session. The token is accepted as-is;
// callers typically follow up with RefreshIdentity to verify it still works.
func (g *Gate) Restore(token string, identity Identity) {
	if token == "" {
		return
	}
	g.mu.Lock()
	g.token = token
	g.identity = identity
	g.authed = true
	g.mu.Unlock()
}

func (g *Gate) establish(res *backend.AuthResult) Identity {
	identity := Identity{ID: res.UserID, Username: res.Username, Email: res.Email, Role: res.Role}
	g.mu.Lock()
	g.token = res.Token
	g.identity = identity
	g.authed = true
	g.mu.Unlock()
	g.saveAuth(res.Token, identity)
	g.logger.Printf("session: authenticated user=%s role=%s", identity.Username, identity.Role)
	return identity
}

func (g *Gate) forceLogout(reason string) {
	g.mu.Lock()
	wasAuthed := g.authed
	g.token = ""
	g.identity = Identity{}
	g.authed = false
	g.mu.Unlock()

	if g.persist != nil {
		if err := g.persist.ClearAuth(); err != nil {
			g.logger.Printf("session: clear persisted auth: %v", err)
		}
	}
	if wasAuthed {
		g.logger.Printf("session: closed (%s)", reason)
	}
}

func (g *Gate) saveAuth(token string, identity Identity) {
	if g.persist == nil {
		return
	}
	if err := g.persist.SaveAuth(token, identity); err != nil {
		g.logger.Printf("session: persist auth: %v", err)
	}
}

func (g *Gate) boundAPI() authAPI {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.api
}
