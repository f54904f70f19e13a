package grants_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xlexi/oauth2orize/grants"
	"github.com/xlexi/oauth2orize/oauth2"
	"github.com/xlexi/oauth2orize/server"
)

type testClient struct {
	ID string
}

type testUser struct {
	ID string
}

func respondContext(txn *oauth2.Transaction) *oauth2.Context {
	ctx := oauth2.NewContext()
	ctx.Transaction = txn
	return ctx
}

func allowTxn(state string) *oauth2.Transaction {
	return &oauth2.Transaction{
		ID:          "abc123",
		Client:      &testClient{ID: "c123"},
		User:        &testUser{ID: "u123"},
		RedirectURI: "http://example.com/auth/callback",
		Req: &oauth2.AuthorizeRequest{
			Type:        "code",
			ClientID:    "c123",
			RedirectURI: "http://example.com/auth/callback",
			State:       state,
		},
		Res: &oauth2.Decision{Allow: true},
	}
}

func TestCodeRequiresIssueCallback(t *testing.T) {
	assert.Panics(t, func() { grants.Code(nil, nil) })
}

func TestCodeParsesRequest(t *testing.T) {
	grant := grants.Code(nil, func(client any, redirectURI string, user any, res *oauth2.Decision, req *oauth2.AuthorizeRequest) (string, error) {
		return "abc", nil
	})
	require.Equal(t, "code", grant.Type)

	ctx := oauth2.NewContext()
	ctx.Query = url.Values{
		"client_id":    {"c123"},
		"redirect_uri": {"http://example.com/auth/callback"},
		"scope":        {"read write"},
		"state":        {"f1o1o1"},
	}

	areq, err := grant.Request(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c123", areq.ClientID)
	assert.Equal(t, "http://example.com/auth/callback", areq.RedirectURI)
	assert.Equal(t, []string{"read", "write"}, areq.Scope)
	assert.Equal(t, "f1o1o1", areq.State)
}

func TestCodeParseMissingClientID(t *testing.T) {
	grant := grants.Code(nil, func(client any, redirectURI string, user any, res *oauth2.Decision, req *oauth2.AuthorizeRequest) (string, error) {
		return "abc", nil
	})

	ctx := oauth2.NewContext()
	ctx.Query = url.Values{"redirect_uri": {"http://example.com/auth/callback"}}

	_, err := grant.Request(ctx)
	var authErr *oauth2.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Missing required parameter: client_id", authErr.Description)
	assert.Equal(t, "invalid_request", authErr.Code)
}

func TestCodeCommaScopeSeparator(t *testing.T) {
	grant := grants.Code(&grants.Options{ScopeSeparator: []string{" ", ","}}, func(client any, redirectURI string, user any, res *oauth2.Decision, req *oauth2.AuthorizeRequest) (string, error) {
		return "abc", nil
	})

	ctx := oauth2.NewContext()
	ctx.Query = url.Values{
		"client_id": {"c123"},
		"scope":     {"read,write"},
	}

	areq, err := grant.Request(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"read", "write"}, areq.Scope)
}

func TestCodeRespondsWithCode(t *testing.T) {
	grant := grants.Code(nil, func(client any, redirectURI string, user any, res *oauth2.Decision, req *oauth2.AuthorizeRequest) (string, error) {
		assert.Equal(t, &testClient{ID: "c123"}, client)
		assert.Equal(t, "http://example.com/auth/callback", redirectURI)
		assert.Equal(t, &testUser{ID: "u123"}, user)
		return "xyz", nil
	})

	ctx := respondContext(allowTxn("f1o1o1"))
	disposition, err := grant.Response(ctx)
	require.NoError(t, err)
	assert.Equal(t, server.Handled, disposition)
	assert.Equal(t, 302, ctx.Response.StatusCode)
	assert.Equal(t, "http://example.com/auth/callback?code=xyz&state=f1o1o1", ctx.Response.Header("Location"))
}

func TestCodeRespondsWithoutState(t *testing.T) {
	grant := grants.Code(nil, func(client any, redirectURI string, user any, res *oauth2.Decision, req *oauth2.AuthorizeRequest) (string, error) {
		return "xyz", nil
	})

	ctx := respondContext(allowTxn(""))
	_, err := grant.Response(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/auth/callback?code=xyz", ctx.Response.Header("Location"))
}

func TestCodeDeniedDecision(t *testing.T) {
	grant := grants.Code(nil, func(client any, redirectURI string, user any, res *oauth2.Decision, req *oauth2.AuthorizeRequest) (string, error) {
		t.Fatal("issue must not run for a denied transaction")
		return "", nil
	})

	txn := allowTxn("f1o1o1")
	txn.Res = &oauth2.Decision{Allow: false}
	ctx := respondContext(txn)

	_, err := grant.Response(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/auth/callback?error=access_denied&state=f1o1o1", ctx.Response.Header("Location"))
}

func TestCodeIssuerDenies(t *testing.T) {
	grant := grants.Code(nil, func(client any, redirectURI string, user any, res *oauth2.Decision, req *oauth2.AuthorizeRequest) (string, error) {
		return "", nil
	})

	ctx := respondContext(allowTxn(""))
	_, err := grant.Response(ctx)

	var authErr *oauth2.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Request denied by authorization server", authErr.Description)
	assert.Equal(t, "access_denied", authErr.Code)
}

func TestCodeIssuerError(t *testing.T) {
	boom := errors.New("something went wrong while issuing code")
	grant := grants.Code(nil, func(client any, redirectURI string, user any, res *oauth2.Decision, req *oauth2.AuthorizeRequest) (string, error) {
		return "", boom
	})

	ctx := respondContext(allowTxn(""))
	disposition, err := grant.Response(ctx)
	assert.Equal(t, server.Handled, disposition)
	assert.ErrorIs(t, err, boom)
}

func TestCodeUnsupportedResponseMode(t *testing.T) {
	grant := grants.Code(nil, func(client any, redirectURI string, user any, res *oauth2.Decision, req *oauth2.AuthorizeRequest) (string, error) {
		return "xyz", nil
	})

	txn := allowTxn("")
	txn.Req.ResponseMode = "fragment"
	ctx := respondContext(txn)

	_, err := grant.Response(ctx)
	var authErr *oauth2.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Unsupported response mode: fragment", authErr.Description)
	assert.Equal(t, "unsupported_response_mode", authErr.Code)
	assert.Equal(t, 501, authErr.Status)
}

func TestCodeCustomResponseMode(t *testing.T) {
	custom := &oauth2.Responder{
		Respond: func(txn *oauth2.Transaction, resp *oauth2.Response, params *oauth2.Params) error {
			resp.StatusCode = 200
			resp.Body = params.Encode()
			return nil
		},
	}
	grant := grants.Code(&grants.Options{
		Modes: map[string]*oauth2.Responder{"form_post": custom},
	}, func(client any, redirectURI string, user any, res *oauth2.Decision, req *oauth2.AuthorizeRequest) (string, error) {
		return "xyz", nil
	})

	txn := allowTxn("")
	txn.Req.ResponseMode = "form_post"
	ctx := respondContext(txn)

	_, err := grant.Response(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, ctx.Response.StatusCode)
	assert.Equal(t, "code=xyz", ctx.Response.Body)
}

func TestCodeResponderValidateRuns(t *testing.T) {
	validateErr := errors.New("redirect URI mismatch")
	custom := &oauth2.Responder{
		Respond: func(txn *oauth2.Transaction, resp *oauth2.Response, params *oauth2.Params) error {
			t.Fatal("respond must not run when validation fails")
			return nil
		},
		Validate: func(txn *oauth2.Transaction) error {
			return validateErr
		},
	}
	grant := grants.Code(&grants.Options{
		Modes: map[string]*oauth2.Responder{oauth2.QueryResponseMode: custom},
	}, func(client any, redirectURI string, user any, res *oauth2.Decision, req *oauth2.AuthorizeRequest) (string, error) {
		return "xyz", nil
	})

	ctx := respondContext(allowTxn(""))
	_, err := grant.Response(ctx)
	assert.ErrorIs(t, err, validateErr)
}
