package server_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xlexi/oauth2orize/oauth2"
	"github.com/xlexi/oauth2orize/server"
)

func TestTokenDispatchesGrantType(t *testing.T) {
	srv := server.NewServer()
	var seen string
	srv.RegisterExchange(&server.Exchange{
		Type: "authorization_code",
		Handle: func(ctx *oauth2.Context) (server.Disposition, error) {
			seen = ctx.Body.Get("code")
			ctx.Response.StatusCode = 200
			return server.Handled, nil
		},
	})

	handler := srv.Token(nil)
	ctx := oauth2.NewContext()
	ctx.Body = url.Values{
		"grant_type": {"authorization_code"},
		"code":       {"abc123"},
	}

	require.NoError(t, handler(ctx))
	assert.Equal(t, "abc123", seen)
	assert.Equal(t, 200, ctx.Response.StatusCode)
}

func TestTokenCustomGrantTypeField(t *testing.T) {
	srv := server.NewServer()
	handled := false
	srv.RegisterExchange(&server.Exchange{
		Type: "password",
		Handle: func(ctx *oauth2.Context) (server.Disposition, error) {
			handled = true
			return server.Handled, nil
		},
	})

	handler := srv.Token(&server.TokenOptions{GrantTypeField: "type"})
	ctx := oauth2.NewContext()
	ctx.Body = url.Values{"type": {"password"}}

	require.NoError(t, handler(ctx))
	assert.True(t, handled)
}

func TestTokenUnsupportedGrantType(t *testing.T) {
	srv := server.NewServer()
	handler := srv.Token(nil)

	ctx := oauth2.NewContext()
	ctx.Body = url.Values{"grant_type": {"foo"}}

	err := handler(ctx)
	var tokenErr *oauth2.TokenError
	require.ErrorAs(t, err, &tokenErr)
	assert.Equal(t, "Unsupported grant type: foo", tokenErr.Description)
	assert.Equal(t, "unsupported_grant_type", tokenErr.Code)
}

func TestTokenMissingBody(t *testing.T) {
	srv := server.NewServer()
	handler := srv.Token(nil)

	assert.ErrorIs(t, handler(oauth2.NewContext()), server.ErrBodySupport)
}
