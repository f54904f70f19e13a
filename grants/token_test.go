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

func implicitTxn(state string) *oauth2.Transaction {
	txn := allowTxn(state)
	txn.Req.Type = "token"
	return txn
}

func TestTokenGrantRequiresIssueCallback(t *testing.T) {
	assert.Panics(t, func() { grants.Token(nil, nil) })
}

func TestTokenGrantParsesRequest(t *testing.T) {
	grant := grants.Token(nil, func(client, user any, res *oauth2.Decision) (string, map[string]any, error) {
		return "s3cr1t", nil, nil
	})
	require.Equal(t, "token", grant.Type)

	ctx := oauth2.NewContext()
	ctx.Query = url.Values{
		"client_id": {"c123"},
		"scope":     {"profile"},
		"state":     {"f1o1o1"},
	}

	areq, err := grant.Request(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c123", areq.ClientID)
	assert.Equal(t, []string{"profile"}, areq.Scope)
}

func TestTokenGrantRespondsInFragment(t *testing.T) {
	grant := grants.Token(nil, func(client, user any, res *oauth2.Decision) (string, map[string]any, error) {
		return "s3cr1t", nil, nil
	})

	ctx := respondContext(implicitTxn("f1o1o1"))
	disposition, err := grant.Response(ctx)
	require.NoError(t, err)
	assert.Equal(t, server.Handled, disposition)
	assert.Equal(t, 302, ctx.Response.StatusCode)
	assert.Equal(t,
		"http://example.com/auth/callback#access_token=s3cr1t&token_type=Bearer&state=f1o1o1",
		ctx.Response.Header("Location"))
}

func TestTokenGrantExtraParams(t *testing.T) {
	grant := grants.Token(nil, func(client, user any, res *oauth2.Decision) (string, map[string]any, error) {
		return "s3cr1t", map[string]any{"expires_in": 3600}, nil
	})

	ctx := respondContext(implicitTxn(""))
	_, err := grant.Response(ctx)
	require.NoError(t, err)
	assert.Equal(t,
		"http://example.com/auth/callback#access_token=s3cr1t&expires_in=3600&token_type=Bearer",
		ctx.Response.Header("Location"))
}

func TestTokenGrantExtraTokenTypeWins(t *testing.T) {
	grant := grants.Token(nil, func(client, user any, res *oauth2.Decision) (string, map[string]any, error) {
		return "s3cr1t", map[string]any{"token_type": "MAC"}, nil
	})

	ctx := respondContext(implicitTxn(""))
	_, err := grant.Response(ctx)
	require.NoError(t, err)
	assert.Equal(t,
		"http://example.com/auth/callback#access_token=s3cr1t&token_type=MAC",
		ctx.Response.Header("Location"))
}

func TestTokenGrantDeniedDecision(t *testing.T) {
	grant := grants.Token(nil, func(client, user any, res *oauth2.Decision) (string, map[string]any, error) {
		t.Fatal("issue must not run for a denied transaction")
		return "", nil, nil
	})

	txn := implicitTxn("f1o1o1")
	txn.Res = &oauth2.Decision{Allow: false}
	ctx := respondContext(txn)

	_, err := grant.Response(ctx)
	require.NoError(t, err)
	assert.Equal(t,
		"http://example.com/auth/callback#error=access_denied&state=f1o1o1",
		ctx.Response.Header("Location"))
}

func TestTokenGrantDeniedWithoutState(t *testing.T) {
	grant := grants.Token(nil, func(client, user any, res *oauth2.Decision) (string, map[string]any, error) {
		return "", nil, nil
	})

	txn := implicitTxn("")
	txn.Res = &oauth2.Decision{Allow: false}
	ctx := respondContext(txn)

	_, err := grant.Response(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/auth/callback#error=access_denied", ctx.Response.Header("Location"))
}

func TestTokenGrantIssuerDenies(t *testing.T) {
	grant := grants.Token(nil, func(client, user any, res *oauth2.Decision) (string, map[string]any, error) {
		return "", nil, nil
	})

	ctx := respondContext(implicitTxn(""))
	_, err := grant.Response(ctx)

	var authErr *oauth2.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "access_denied", authErr.Code)
}

func TestTokenGrantIssuerError(t *testing.T) {
	boom := errors.New("something went wrong while issuing token")
	grant := grants.Token(nil, func(client, user any, res *oauth2.Decision) (string, map[string]any, error) {
		return "", nil, boom
	})

	ctx := respondContext(implicitTxn(""))
	_, err := grant.Response(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestTokenGrantQueryModeUnsupported(t *testing.T) {
	grant := grants.Token(nil, func(client, user any, res *oauth2.Decision) (string, map[string]any, error) {
		return "s3cr1t", nil, nil
	})

	txn := implicitTxn("")
	txn.Req.ResponseMode = "query"
	ctx := respondContext(txn)

	_, err := grant.Response(ctx)
	var authErr *oauth2.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Unsupported response mode: query", authErr.Description)
	assert.Equal(t, 501, authErr.Status)
}
