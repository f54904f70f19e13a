package main

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/xlexi/oauth2orize/clients"
	"github.com/xlexi/oauth2orize/exchanges"
	"github.com/xlexi/oauth2orize/grants"
	"github.com/xlexi/oauth2orize/internal/config"
	"github.com/xlexi/oauth2orize/internal/utils"
	"github.com/xlexi/oauth2orize/oauth2"
	"github.com/xlexi/oauth2orize/server"
	"github.com/xlexi/oauth2orize/sessions"
	"github.com/xlexi/oauth2orize/token"
	"github.com/xlexi/oauth2orize/users"
)

const sessionCookie = "oauth_session"

// app is the example authorization server: the protocol engine wired to
// in-memory repositories, a JWT issuer and a plain net/http transport.
type app struct {
	cfg    config.Config
	logger zerolog.Logger

	engine      *server.Server
	issuer      *token.Issuer
	signer      token.Signer
	clientRepo  clients.Repo
	userRepo    users.Repo
	refreshRepo token.RefreshTokenRepo

	authorize     server.Handler
	decision      server.Handler
	tokenEndpoint server.Handler
	errDirect     server.ErrorHandlerFunc
	errIndirect   server.ErrorHandlerFunc

	browserSessions *sessionManager
}

func newApp(cfg config.Config) (*app, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	signer, err := newSigner(cfg)
	if err != nil {
		return nil, err
	}

	refreshRepo := token.NewMemoryRefreshTokenRepo()
	issuer := token.NewIssuer(signer, token.NewMemoryCodeRepo(), refreshRepo,
		token.WithIssuer(cfg.GetBaseURL()),
		token.WithAudience(cfg.GetBaseURL()),
		token.WithTokenExpiry(time.Hour, 10*time.Minute, 30*24*time.Hour),
	)

	a := &app{
		cfg:             cfg,
		logger:          logger,
		issuer:          issuer,
		signer:          signer,
		clientRepo:      clients.NewMemoryRepo(),
		userRepo:        users.NewMemoryRepo(),
		refreshRepo:     refreshRepo,
		browserSessions: newSessionManager(),
	}
	if err := a.seedDemoData(); err != nil {
		return nil, err
	}

	engine := server.NewServer(server.WithLogger(logger))
	engine.RegisterGrant(grants.Code(nil, a.issueCode))
	engine.RegisterGrant(grants.Token(nil, a.issueImplicitToken))
	engine.RegisterExchange(exchanges.AuthorizationCode(nil, a.exchangeCode))
	engine.RegisterExchange(exchanges.Password(nil, a.exchangePassword))
	engine.RegisterExchange(exchanges.ClientCredentials(nil, a.exchangeClientCredentials))
	engine.RegisterExchange(exchanges.RefreshToken(nil, a.exchangeRefreshToken))
	engine.RegisterSerializer(func(client any) (string, bool, error) {
		if c, ok := client.(*clients.Client); ok {
			return c.ID, true, nil
		}
		return "", false, nil
	})
	engine.RegisterDeserializer(func(id string) (any, bool, error) {
		client, err := a.clientRepo.Get(id)
		if errors.Is(err, clients.ErrClientNotFound) {
			// The client was removed while the transaction was pending.
			return nil, true, nil
		}
		if err != nil {
			return nil, false, err
		}
		return client, true, nil
	})
	a.engine = engine

	authorize, err := engine.Authorization(nil, a.validateClient, nil)
	if err != nil {
		return nil, err
	}
	a.authorize = authorize
	a.decision = engine.Decision(nil, nil)
	a.tokenEndpoint = engine.Token(nil)
	a.errDirect = server.ErrorHandler(&server.ErrorHandlerOptions{Mode: server.DirectMode, Logger: &logger})
	a.errIndirect = server.ErrorHandler(&server.ErrorHandlerOptions{Mode: server.IndirectMode, Logger: &logger})

	return a, nil
}

func newSigner(cfg config.Config) (token.Signer, error) {
	switch cfg.GetSignerType() {
	case "rs256":
		keyPair, err := token.GenerateRSAKeyPair("default", 2048)
		if err != nil {
			return nil, err
		}
		return token.NewKeyPairSigner(keyPair), nil
	default:
		return token.NewHMACSigner(cfg.GetSignerSecret()), nil
	}
}

func (a *app) seedDemoData() error {
	client := &clients.Client{
		ID:           "demo-client",
		Type:         clients.ClientTypeConfidential,
		Name:         "Demo App",
		RedirectURIs: []string{"http://localhost:3000/callback"},
		Scopes:       []string{"profile", "email"},
	}
	if err := client.SetSecret("demo-secret"); err != nil {
		return err
	}
	if err := a.clientRepo.Upsert(client); err != nil {
		return err
	}

	user := &users.User{
		ID:        "demo-user",
		Username:  "bob",
		Email:     "bob@example.com",
		FirstName: "Bob",
	}
	if err := user.SetPassword("secret"); err != nil {
		return err
	}
	return a.userRepo.Upsert(user)
}

// validateClient authenticates the authorization request's client and checks
// its redirect URI and scope against the registration.
func (a *app) validateClient(req *oauth2.AuthorizeRequest) (*server.ClientAuthorization, error) {
	client, err := a.clientRepo.Get(req.ClientID)
	if errors.Is(err, clients.ErrClientNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !client.ValidRedirectURI(req.RedirectURI) {
		return nil, nil
	}
	if err := client.ValidateScopes(req.Scope); err != nil {
		return nil, oauth2.NewAuthorizationError("The requested scope is invalid", "invalid_scope")
	}

	redirectURI := req.RedirectURI
	if redirectURI == "" {
		redirectURI = client.DefaultRedirectURI()
	}
	return &server.ClientAuthorization{Client: client, RedirectURI: redirectURI}, nil
}

func (a *app) issueCode(client any, redirectURI string, user any, res *oauth2.Decision, req *oauth2.AuthorizeRequest) (string, error) {
	c := client.(*clients.Client)
	u := user.(*users.User)
	return a.issuer.CreateAuthorizationCode(c.ID, redirectURI, u.ID, req.Scope)
}

func (a *app) issueImplicitToken(client, user any, res *oauth2.Decision) (string, map[string]any, error) {
	c := client.(*clients.Client)
	u := user.(*users.User)
	accessToken, expiresIn, err := a.issuer.CreateAccessToken(u.ID, c.ID, nil)
	if err != nil {
		return "", nil, err
	}
	return accessToken, map[string]any{"expires_in": expiresIn}, nil
}

func (a *app) exchangeCode(client any, code, redirectURI string, body url.Values) (*exchanges.Issued, error) {
	c := client.(*clients.Client)
	grant, err := a.issuer.RedeemAuthorizationCode(code, c.ID, redirectURI)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return nil, nil
	}
	return a.issueTokens(c.ID, grant.UserID, grant.Scope)
}

func (a *app) exchangePassword(client any, username, password string, scope []string, body url.Values) (*exchanges.Issued, error) {
	c := client.(*clients.Client)
	user, err := a.userRepo.GetByUsername(username)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user.Blocked || !user.CheckPassword(password) {
		return nil, nil
	}
	if err := c.ValidateScopes(scope); err != nil {
		return nil, nil
	}
	return a.issueTokens(c.ID, user.ID, scope)
}

func (a *app) exchangeClientCredentials(client any, scope []string, body url.Values) (*exchanges.Issued, error) {
	c := client.(*clients.Client)
	if c.IsPublic() {
		return nil, nil
	}
	if err := c.ValidateScopes(scope); err != nil {
		return nil, nil
	}
	accessToken, expiresIn, err := a.issuer.CreateAccessToken("", c.ID, scope)
	if err != nil {
		return nil, err
	}
	// No refresh token for client credentials: the client can always
	// re-authenticate directly.
	return &exchanges.Issued{
		AccessToken: accessToken,
		Params:      map[string]any{"expires_in": expiresIn},
	}, nil
}

func (a *app) exchangeRefreshToken(client any, refreshToken string, scope []string, body url.Values) (*exchanges.Issued, error) {
	c := client.(*clients.Client)
	grant, err := a.issuer.RedeemRefreshToken(refreshToken, c.ID)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return nil, nil
	}
	return a.issueTokens(c.ID, grant.UserID, grant.Scope)
}

func (a *app) issueTokens(clientID, userID string, scope []string) (*exchanges.Issued, error) {
	accessToken, expiresIn, err := a.issuer.CreateAccessToken(userID, clientID, scope)
	if err != nil {
		return nil, err
	}
	refreshToken, err := a.issuer.CreateRefreshToken(clientID, userID, scope)
	if err != nil {
		return nil, err
	}
	return &exchanges.Issued{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Params:       map[string]any{"expires_in": expiresIn},
	}, nil
}

// sessionManager keeps one transaction store per browser session cookie.
type sessionManager struct {
	mu     sync.Mutex
	stores map[string]*sessions.MemoryStore
}

func newSessionManager() *sessionManager {
	return &sessionManager{stores: make(map[string]*sessions.MemoryStore)}
}

func (m *sessionManager) store(w http.ResponseWriter, r *http.Request) (oauth2.SessionStore, error) {
	id := ""
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		id = cookie.Value
	}
	if id == "" {
		generated, err := utils.UID(32)
		if err != nil {
			return nil, err
		}
		id = generated
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	store, ok := m.stores[id]
	if !ok {
		store = sessions.NewMemoryStore()
		m.stores[id] = store
	}
	return store, nil
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /authorize", a.handleAuthorize)
	mux.HandleFunc("POST /authorize/decision", a.handleDecision)
	mux.HandleFunc("POST /token", a.handleToken)
	mux.HandleFunc("POST /revoke", a.handleRevoke)
	mux.HandleFunc("POST /introspect", a.handleIntrospect)
	mux.HandleFunc("GET /.well-known/jwks.json", a.handleJWKS)
	return mux
}

// newContext adapts an inbound HTTP request onto the engine's context
// contract.
func (a *app) newContext(w http.ResponseWriter, r *http.Request) (*oauth2.Context, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	store, err := a.browserSessions.store(w, r)
	if err != nil {
		return nil, err
	}

	ctx := oauth2.NewContext()
	ctx.Query = r.URL.Query()
	ctx.Body = r.PostForm
	ctx.Session = store
	return ctx, nil
}

func (a *app) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx, err := a.newContext(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// A real host authenticates the resource owner first; the demo signs
	// everyone in as the seeded user.
	user, err := a.userRepo.Get("demo-user")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	ctx.User = user

	if err := a.authorize(ctx); err != nil {
		a.writeAuthorizationError(w, ctx, err)
		return
	}
	if ctx.Response.StatusCode != 0 {
		writeResponse(w, ctx.Response)
		return
	}
	a.renderConsent(w, ctx.Transaction)
}

func (a *app) handleDecision(w http.ResponseWriter, r *http.Request) {
	ctx, err := a.newContext(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	user, err := a.userRepo.Get("demo-user")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	ctx.User = user

	if err := a.decision(ctx); err != nil {
		a.writeAuthorizationError(w, ctx, err)
		return
	}
	writeResponse(w, ctx.Response)
}

func (a *app) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx, err := a.newContext(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	client, authErr := a.authenticateClient(r)
	if authErr != nil {
		if err := a.errDirect(ctx, authErr); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeResponse(w, ctx.Response)
		return
	}
	ctx.User = client

	if err := a.tokenEndpoint(ctx); err != nil {
		if err := a.errDirect(ctx, err); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	writeResponse(w, ctx.Response)
}

func (a *app) handleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := a.authenticateClient(r); err != nil {
		http.Error(w, "client authentication failed", http.StatusUnauthorized)
		return
	}

	presented := r.PostForm.Get("token")
	// Try both token kinds; RFC 7009 treats unknown tokens as revoked.
	if err := a.refreshRepo.Delete(presented); err != nil {
		a.logger.Error().Err(err).Msg("revoke refresh token")
	}
	if err := a.issuer.RevokeAccessToken(presented); err != nil {
		a.logger.Error().Err(err).Msg("revoke access token")
	}
	w.WriteHeader(http.StatusOK)
}

func (a *app) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := a.authenticateClient(r); err != nil {
		http.Error(w, "client authentication failed", http.StatusUnauthorized)
		return
	}

	info, err := a.issuer.Introspection(r.PostForm.Get("token"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		a.logger.Error().Err(err).Msg("encode introspection response")
	}
}

func (a *app) handleJWKS(w http.ResponseWriter, r *http.Request) {
	keyPairSigner, ok := a.signer.(*token.KeyPairSigner)
	if !ok {
		http.NotFound(w, r)
		return
	}
	jwks, err := keyPairSigner.GetJWKS()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(jwks); err != nil {
		a.logger.Error().Err(err).Msg("encode JWKS response")
	}
}

// authenticateClient accepts HTTP Basic credentials or client_id plus
// client_secret form fields. Public clients authenticate with their ID alone.
func (a *app) authenticateClient(r *http.Request) (*clients.Client, error) {
	clientID, clientSecret, ok := r.BasicAuth()
	if !ok {
		clientID = r.PostForm.Get("client_id")
		clientSecret = r.PostForm.Get("client_secret")
	}
	if clientID == "" {
		return nil, oauth2.NewTokenError("Missing client credentials", "invalid_client")
	}

	client, err := a.clientRepo.Get(clientID)
	if errors.Is(err, clients.ErrClientNotFound) {
		return nil, oauth2.NewTokenError("Invalid client credentials", "invalid_client")
	}
	if err != nil {
		return nil, err
	}
	if client.IsPublic() {
		return client, nil
	}
	if !client.CheckSecret(clientSecret) {
		return nil, oauth2.NewTokenError("Invalid client credentials", "invalid_client")
	}
	return client, nil
}

func (a *app) writeAuthorizationError(w http.ResponseWriter, ctx *oauth2.Context, err error) {
	if remaining := a.errIndirect(ctx, err); remaining != nil {
		// No safe redirect target; fall back to a direct response.
		if directErr := a.errDirect(ctx, remaining); directErr != nil {
			http.Error(w, directErr.Error(), http.StatusInternalServerError)
			return
		}
	}
	writeResponse(w, ctx.Response)
}

func writeResponse(w http.ResponseWriter, resp *oauth2.Response) {
	for key, value := range resp.Headers() {
		w.Header().Set(key, value)
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if resp.Body != "" {
		_, _ = w.Write([]byte(resp.Body))
	}
}

var consentTemplate = template.Must(template.New("consent").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hi {{.User}}, <b>{{.Client}}</b> is requesting access to your account.</p>
<form action="/authorize/decision" method="post">
  <input type="hidden" name="transaction_id" value="{{.TransactionID}}">
  <input type="submit" value="Allow">
  <input type="submit" name="cancel" value="Deny">
</form>
</body>
</html>
`))

func (a *app) renderConsent(w http.ResponseWriter, txn *oauth2.Transaction) {
	data := struct {
		User          string
		Client        string
		TransactionID string
	}{
		User:          txn.User.(*users.User).Username,
		Client:        txn.Client.(*clients.Client).Name,
		TransactionID: txn.ID,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := consentTemplate.Execute(w, data); err != nil {
		a.logger.Error().Err(err).Msg("render consent page")
	}
}
