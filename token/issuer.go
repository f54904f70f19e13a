package token

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// TokenIntrospection represents the metadata information of an OAuth 2.0 token.
// The 'active' field indicates the state of the token - if it's false, other
// fields may not be populated.
type TokenIntrospection struct {
	Active bool    `json:"active"`
	Aud    *string `json:"aud,omitempty"` // Audience - the client ID that requested the token
	Exp    *int64  `json:"exp,omitempty"` // Expiration
	Iat    *int64  `json:"iat,omitempty"` // Issued at time
	Iss    *string `json:"iss,omitempty"` // Issuer of the token
	Sub    *string `json:"sub,omitempty"` // Subject's unique ID
	Scope  string  `json:"scope,omitempty"`
}

// Issuer mints and tracks all three credential kinds the example server hands
// out. Authorization codes and refresh tokens are opaque random values backed
// by repos; access tokens are signed JWTs.
type Issuer struct {
	signer             Signer
	issuer             string
	audience           string
	codeRepo           CodeRepo
	refreshRepo        RefreshTokenRepo
	revocations        RevocationRepo
	accessTokenExpiry  time.Duration
	codeExpiry         time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type IssuerOption func(*Issuer)

func WithTokenExpiry(accessTokenExpiry, codeExpiry, refreshTokenExpiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessTokenExpiry = accessTokenExpiry
		i.codeExpiry = codeExpiry
		i.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

func WithIssuer(issuer string) IssuerOption {
	return func(i *Issuer) {
		i.issuer = issuer
	}
}

func WithAudience(audience string) IssuerOption {
	return func(i *Issuer) {
		i.audience = audience
	}
}

func WithRevocationRepo(repo RevocationRepo) IssuerOption {
	return func(i *Issuer) {
		i.revocations = repo
	}
}

func NewIssuer(signer Signer, codeRepo CodeRepo, refreshRepo RefreshTokenRepo, options ...IssuerOption) *Issuer {
	i := &Issuer{
		signer:      signer,
		codeRepo:    codeRepo,
		refreshRepo: refreshRepo,
		revocations: NewMemoryRevocationRepo(),
	}

	for _, opt := range options {
		opt(i)
	}

	if i.accessTokenExpiry == 0 {
		i.accessTokenExpiry = time.Hour
	}
	if i.codeExpiry == 0 {
		i.codeExpiry = 10 * time.Minute
	}
	if i.refreshTokenExpiry == 0 {
		i.refreshTokenExpiry = 30 * 24 * time.Hour
	}
	if i.nowFunc == nil {
		i.nowFunc = time.Now
	}
	return i
}

// CreateAccessToken mints a signed JWT for the subject and client. The
// returned expiry is intended for the expires_in response parameter.
func (i *Issuer) CreateAccessToken(subjectID, clientID string, scope []string) (string, int64, error) {
	now := i.nowFunc()
	claims := jwt.MapClaims{
		"iss": i.issuer,
		"sub": subjectID,
		"aud": i.audience,
		"iat": now.Unix(),
		"exp": now.Add(i.accessTokenExpiry).Unix(),
		"jti": uuid.New().String(), // Unique token ID for revocation
	}
	if subjectID == "" {
		claims["sub"] = clientID
	}
	if len(scope) > 0 {
		claims["scope"] = strings.Join(scope, " ")
	}
	claims["client_id"] = clientID

	signed, err := i.signer.Sign(claims)
	if err != nil {
		return "", 0, errors.Wrap(err, "Issuer.CreateAccessToken Sign")
	}
	return signed, int64(i.accessTokenExpiry.Seconds()), nil
}

// CreateAuthorizationCode mints a single-use code bound to the client,
// redirect URI and approving user.
func (i *Issuer) CreateAuthorizationCode(clientID, redirectURI, userID string, scope []string) (string, error) {
	code, err := randomToken()
	if err != nil {
		return "", errors.Wrap(err, "Issuer.CreateAuthorizationCode randomToken")
	}

	if err := i.codeRepo.Store(&AuthorizationCode{
		Code:        code,
		ClientID:    clientID,
		RedirectURI: redirectURI,
		UserID:      userID,
		Scope:       scope,
		ExpiresAt:   i.nowFunc().Add(i.codeExpiry),
	}); err != nil {
		return "", errors.Wrap(err, "Issuer.CreateAuthorizationCode Store")
	}
	return code, nil
}

// RedeemAuthorizationCode removes and returns the pending grant for code. It
// returns nil when the code is unknown, expired, or bound to a different
// client or redirect URI. A bad binding never surfaces which check failed.
func (i *Issuer) RedeemAuthorizationCode(code, clientID, redirectURI string) (*AuthorizationCode, error) {
	stored, err := i.codeRepo.Redeem(code)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "Issuer.RedeemAuthorizationCode Redeem")
	}

	if i.nowFunc().After(stored.ExpiresAt) {
		return nil, nil
	}
	if stored.ClientID != clientID {
		return nil, nil
	}
	if stored.RedirectURI != redirectURI {
		return nil, nil
	}
	return stored, nil
}

// CreateRefreshToken mints an opaque refresh token bound to the client and
// user.
func (i *Issuer) CreateRefreshToken(clientID, userID string, scope []string) (string, error) {
	tokenStr, err := randomToken()
	if err != nil {
		return "", errors.Wrap(err, "Issuer.CreateRefreshToken randomToken")
	}

	now := i.nowFunc()
	if err := i.refreshRepo.Upsert(&RefreshToken{
		Token:     tokenStr,
		ClientID:  clientID,
		UserID:    userID,
		Scope:     scope,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.refreshTokenExpiry),
	}); err != nil {
		return "", errors.Wrap(err, "Issuer.CreateRefreshToken Upsert")
	}
	return tokenStr, nil
}

// RedeemRefreshToken rotates the presented refresh token: the old token is
// deleted and its grant returned for re-issuance. Returns nil when the token
// is unknown, expired, or bound to another client.
func (i *Issuer) RedeemRefreshToken(tokenStr, clientID string) (*RefreshToken, error) {
	stored, err := i.refreshRepo.Get(tokenStr)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "Issuer.RedeemRefreshToken Get")
	}
	if err := i.refreshRepo.Delete(tokenStr); err != nil {
		return nil, errors.Wrap(err, "Issuer.RedeemRefreshToken Delete")
	}

	if i.nowFunc().After(stored.ExpiresAt) {
		return nil, nil
	}
	if stored.ClientID != clientID {
		return nil, nil
	}
	return stored, nil
}

// RevokeAccessToken marks a verified access token's jti as revoked until the
// token would have expired anyway.
func (i *Issuer) RevokeAccessToken(rawToken string) error {
	parsed, err := jwt.Parse(rawToken, i.signer.GetVerificationKey)
	if err != nil || !parsed.Valid {
		// RFC 7009: revoking an invalid token is not an error.
		return nil
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	jti, _ := claims["jti"].(string)
	exp, _ := claims["exp"].(float64)
	if jti == "" {
		return nil
	}
	return errors.Wrap(i.revocations.Revoke(jti, time.Unix(int64(exp), 0)), "Issuer.RevokeAccessToken Revoke")
}

// Introspection verifies an access token and reports its claims.
func (i *Issuer) Introspection(rawToken string) (*TokenIntrospection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &TokenIntrospection{Active: false}, nil
	}

	parsed, err := jwt.Parse(rawToken, i.signer.GetVerificationKey)
	if err != nil || !parsed.Valid {
		return &TokenIntrospection{Active: false}, nil
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return &TokenIntrospection{Active: false}, errors.New("error extracting claims from token")
	}

	iss, _ := claims["iss"].(string)
	sub, _ := claims["sub"].(string)
	aud, _ := claims["aud"].(string)
	scope, _ := claims["scope"].(string)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)
	jti, _ := claims["jti"].(string)

	iatInt := int64(iat)
	expInt := int64(exp)

	now := i.nowFunc()
	active := now.Unix() <= expInt
	if jti != "" && i.revocations.IsRevoked(jti, now) {
		active = false
	}

	return &TokenIntrospection{
		Active: active,
		Aud:    &aud,
		Exp:    &expInt,
		Iat:    &iatInt,
		Iss:    &iss,
		Sub:    &sub,
		Scope:  scope,
	}, nil
}

func randomToken() (string, error) {
	tokenBytes := make([]byte, 32) // 256 bits
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}
