package responses_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xlexi/oauth2orize/oauth2"
	"github.com/xlexi/oauth2orize/responses"
)

func codeParams() *oauth2.Params {
	params := oauth2.NewParams()
	params.Set("code", "abc123")
	params.Set("state", "f1o1o1")
	return params
}

func TestQueryRedirect(t *testing.T) {
	responder := responses.Query()
	txn := &oauth2.Transaction{RedirectURI: "http://example.com/auth/callback"}
	resp := oauth2.NewResponse()

	require.NoError(t, responder.Respond(txn, resp, codeParams()))
	assert.Equal(t, 302, resp.StatusCode)
	assert.Equal(t, "http://example.com/auth/callback?code=abc123&state=f1o1o1", resp.Header("Location"))
}

func TestQueryReplacesExistingQueryString(t *testing.T) {
	responder := responses.Query()
	txn := &oauth2.Transaction{RedirectURI: "http://example.com/auth/callback?foo=bar"}
	resp := oauth2.NewResponse()

	require.NoError(t, responder.Respond(txn, resp, codeParams()))
	assert.Equal(t, "http://example.com/auth/callback?code=abc123&state=f1o1o1", resp.Header("Location"))
}

func TestQueryPrefersRequestRedirectURI(t *testing.T) {
	responder := responses.Query()
	txn := &oauth2.Transaction{
		RedirectURI: "http://example.com/auth/callback",
		Req:         &oauth2.AuthorizeRequest{RedirectURI: "http://example.com/auth/other"},
	}
	resp := oauth2.NewResponse()

	require.NoError(t, responder.Respond(txn, resp, codeParams()))
	assert.Equal(t, "http://example.com/auth/other?code=abc123&state=f1o1o1", resp.Header("Location"))
}

func TestFragmentRedirect(t *testing.T) {
	responder := responses.Fragment()
	txn := &oauth2.Transaction{RedirectURI: "http://example.com/auth/callback"}
	params := oauth2.NewParams()
	params.Set("access_token", "s3cr1t")
	params.Set("token_type", "Bearer")
	resp := oauth2.NewResponse()

	require.NoError(t, responder.Respond(txn, resp, params))
	assert.Equal(t, 302, resp.StatusCode)
	assert.Equal(t, "http://example.com/auth/callback#access_token=s3cr1t&token_type=Bearer", resp.Header("Location"))
}

func TestFragmentReplacesExistingFragment(t *testing.T) {
	responder := responses.Fragment()
	txn := &oauth2.Transaction{RedirectURI: "http://example.com/auth/callback#old"}
	params := oauth2.NewParams()
	params.Set("access_token", "s3cr1t")
	resp := oauth2.NewResponse()

	require.NoError(t, responder.Respond(txn, resp, params))
	assert.Equal(t, "http://example.com/auth/callback#access_token=s3cr1t", resp.Header("Location"))
}

func TestFragmentKeepsQueryString(t *testing.T) {
	responder := responses.Fragment()
	txn := &oauth2.Transaction{RedirectURI: "http://example.com/auth/callback?lang=en"}
	params := oauth2.NewParams()
	params.Set("access_token", "s3cr1t")
	resp := oauth2.NewResponse()

	require.NoError(t, responder.Respond(txn, resp, params))
	assert.Equal(t, "http://example.com/auth/callback?lang=en#access_token=s3cr1t", resp.Header("Location"))
}

func TestValidateRejectsMissingRedirectURI(t *testing.T) {
	for _, responder := range []*oauth2.Responder{responses.Query(), responses.Fragment()} {
		err := responder.Validate(&oauth2.Transaction{})
		assert.ErrorIs(t, err, responses.ErrNoRedirectURI)

		err = responder.Validate(&oauth2.Transaction{RedirectURI: "http://example.com/auth/callback"})
		assert.NoError(t, err)
	}
}
