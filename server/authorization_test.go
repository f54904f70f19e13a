package server_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xlexi/oauth2orize/oauth2"
	"github.com/xlexi/oauth2orize/server"
	"github.com/xlexi/oauth2orize/sessions"
)

type testClient struct {
	ID   string
	Name string
}

func newAuthServer(t *testing.T) *server.Server {
	t.Helper()
	srv := server.NewServer()
	srv.RegisterGrant(&server.Grant{
		Type: "code",
		Request: func(ctx *oauth2.Context) (*oauth2.AuthorizeRequest, error) {
			return &oauth2.AuthorizeRequest{
				ClientID:    ctx.Query.Get("client_id"),
				RedirectURI: ctx.Query.Get("redirect_uri"),
				State:       ctx.Query.Get("state"),
			}, nil
		},
	})
	srv.RegisterSerializer(func(client any) (string, bool, error) {
		return client.(*testClient).ID, true, nil
	})
	return srv
}

func newAuthContext(q url.Values) *oauth2.Context {
	ctx := oauth2.NewContext()
	ctx.Query = q
	ctx.Session = sessions.NewMemoryStore()
	return ctx
}

func validateOK(req *oauth2.AuthorizeRequest) (*server.ClientAuthorization, error) {
	return &server.ClientAuthorization{
		Client:      &testClient{ID: req.ClientID, Name: "Example"},
		RedirectURI: req.RedirectURI,
	}, nil
}

func TestAuthorizationRequiresValidate(t *testing.T) {
	srv := newAuthServer(t)
	_, err := srv.Authorization(nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate")
}

func TestAuthorizationPersistsTransaction(t *testing.T) {
	srv := newAuthServer(t)
	handler, err := srv.Authorization(nil, validateOK, nil)
	require.NoError(t, err)

	ctx := newAuthContext(url.Values{
		"response_type": {"code"},
		"client_id":     {"c123"},
		"redirect_uri":  {"http://example.com/auth/callback"},
		"state":         {"f1o1o1"},
	})
	ctx.User = "u123"

	require.NoError(t, handler(ctx))

	txn := ctx.Transaction
	require.NotNil(t, txn)
	assert.Len(t, txn.ID, 8)
	assert.Equal(t, &testClient{ID: "c123", Name: "Example"}, txn.Client)
	assert.Equal(t, "u123", txn.User)
	assert.Equal(t, "http://example.com/auth/callback", txn.RedirectURI)
	assert.Equal(t, "code", txn.Req.Type)
	assert.Equal(t, "f1o1o1", txn.Req.State)
	assert.Nil(t, txn.Res)

	snap, err := ctx.Session.Get("authorize", txn.ID)
	require.NoError(t, err)
	assert.Equal(t, oauth2.TransactionProtocol, snap.Protocol)
	assert.Equal(t, "c123", snap.ClientID)
	assert.Equal(t, "http://example.com/auth/callback", snap.RedirectURI)
	assert.Equal(t, txn.Req, snap.Req)
}

func TestAuthorizationOptionOverrides(t *testing.T) {
	srv := newAuthServer(t)
	handler, err := srv.Authorization(&server.AuthorizationOptions{
		SessionKey: "oauth",
		IDLength:   16,
	}, validateOK, nil)
	require.NoError(t, err)

	ctx := newAuthContext(url.Values{
		"response_type": {"code"},
		"client_id":     {"c123"},
	})
	require.NoError(t, handler(ctx))

	assert.Len(t, ctx.Transaction.ID, 16)
	_, err = ctx.Session.Get("oauth", ctx.Transaction.ID)
	assert.NoError(t, err)
}

func TestAuthorizationMissingSession(t *testing.T) {
	srv := newAuthServer(t)
	handler, err := srv.Authorization(nil, validateOK, nil)
	require.NoError(t, err)

	ctx := oauth2.NewContext()
	ctx.Query = url.Values{"response_type": {"code"}}

	assert.ErrorIs(t, handler(ctx), server.ErrSessionSupport)
}

func TestAuthorizationMissingResponseType(t *testing.T) {
	srv := newAuthServer(t)
	handler, err := srv.Authorization(nil, validateOK, nil)
	require.NoError(t, err)

	ctx := newAuthContext(url.Values{"client_id": {"c123"}})
	err = handler(ctx)

	var authErr *oauth2.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Missing required parameter: response_type", authErr.Description)
	assert.Equal(t, "invalid_request", authErr.Code)
}

func TestAuthorizationUnsupportedResponseType(t *testing.T) {
	srv := newAuthServer(t)
	handler, err := srv.Authorization(nil, validateOK, nil)
	require.NoError(t, err)

	ctx := newAuthContext(url.Values{"response_type": {"foo"}})
	err = handler(ctx)

	var authErr *oauth2.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Unsupported response type: foo", authErr.Description)
	assert.Equal(t, "unsupported_response_type", authErr.Code)
}

func TestAuthorizationUnauthorizedClient(t *testing.T) {
	srv := newAuthServer(t)
	handler, err := srv.Authorization(nil, func(req *oauth2.AuthorizeRequest) (*server.ClientAuthorization, error) {
		return &server.ClientAuthorization{RedirectURI: "http://example.com/auth/callback"}, nil
	}, nil)
	require.NoError(t, err)

	ctx := newAuthContext(url.Values{
		"response_type": {"code"},
		"client_id":     {"c123"},
	})
	err = handler(ctx)

	var authErr *oauth2.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Unauthorized client", authErr.Description)
	assert.Equal(t, "unauthorized_client", authErr.Code)
	// The partial transaction still carries the validated redirect target so
	// an indirect error handler can use it.
	require.NotNil(t, ctx.Transaction)
	assert.Equal(t, "http://example.com/auth/callback", ctx.Transaction.RedirectURI)
}

func TestAuthorizationValidateError(t *testing.T) {
	srv := newAuthServer(t)
	boom := errors.New("something went wrong while validating client")
	handler, err := srv.Authorization(nil, func(req *oauth2.AuthorizeRequest) (*server.ClientAuthorization, error) {
		return nil, boom
	}, nil)
	require.NoError(t, err)

	ctx := newAuthContext(url.Values{"response_type": {"code"}})
	assert.ErrorIs(t, handler(ctx), boom)
}

func TestAuthorizationImmediateAllow(t *testing.T) {
	srv := newAuthServer(t)
	srv.RegisterGrant(&server.Grant{
		Type: "code",
		Response: func(ctx *oauth2.Context) (server.Disposition, error) {
			require.NotNil(t, ctx.Transaction.Res)
			assert.True(t, ctx.Transaction.Res.Allow)
			assert.Equal(t, map[string]any{"scope": "profile"}, ctx.Transaction.Res.Ext)
			ctx.Response.Redirect("http://example.com/auth/callback?code=abc")
			return server.Handled, nil
		},
	})

	handler, err := srv.Authorization(nil, validateOK, func(txn *oauth2.Transaction) (*server.ImmediateResponse, error) {
		return &server.ImmediateResponse{Allow: true, Info: map[string]any{"scope": "profile"}}, nil
	})
	require.NoError(t, err)

	ctx := newAuthContext(url.Values{
		"response_type": {"code"},
		"client_id":     {"c123"},
		"redirect_uri":  {"http://example.com/auth/callback"},
	})
	require.NoError(t, handler(ctx))

	assert.Equal(t, 302, ctx.Response.StatusCode)
	assert.Equal(t, "http://example.com/auth/callback?code=abc", ctx.Response.Header("Location"))

	// Immediately resolved transactions are never persisted.
	_, err = ctx.Session.Get("authorize", ctx.Transaction.ID)
	assert.ErrorIs(t, err, oauth2.ErrNoTransactions)
}

func TestAuthorizationImmediateDenyPersistsInfo(t *testing.T) {
	srv := newAuthServer(t)
	handler, err := srv.Authorization(nil, validateOK, func(txn *oauth2.Transaction) (*server.ImmediateResponse, error) {
		return &server.ImmediateResponse{
			Allow:  false,
			Info:   map[string]any{"scope": "profile"},
			Locals: map[string]any{"grant": "g123"},
		}, nil
	})
	require.NoError(t, err)

	ctx := newAuthContext(url.Values{
		"response_type": {"code"},
		"client_id":     {"c123"},
	})
	require.NoError(t, handler(ctx))

	assert.Equal(t, map[string]any{"scope": "profile"}, ctx.Transaction.Info)
	assert.Equal(t, map[string]any{"grant": "g123"}, ctx.Transaction.Locals)

	snap, err := ctx.Session.Get("authorize", ctx.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"scope": "profile"}, snap.Info)
}
