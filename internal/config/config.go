// Package config reads the example server's environment configuration.
package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar       = "PORT"
	appNameVar       = "APP_NAME"
	baseURLVar       = "BASE_URL"
	signerTypeVar    = "SIGNER_TYPE"
	signerSecretVar  = "SIGNER_SECRET"
	sessionSecretVar = "SESSION_SECRET"
)

type Config interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetSignerType() string
	GetSignerSecret() string
	GetSessionSecret() string
}

type EnvVars struct{}

var _ Config = EnvVars{}

func New() Config {
	return EnvVars{}
}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "OAuth2orize")
}

// GetBaseURL returns the base URL for the OAuth server (e.g., "https://auth.example.com")
// This is used as the issuer for signed access tokens
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

// GetSignerType selects the access token signer: "hmac" or "rs256".
func (EnvVars) GetSignerType() string {
	return GetEnv(signerTypeVar, "hmac")
}

func (EnvVars) GetSignerSecret() string {
	return GetEnv(signerSecretVar, "dev-signer-secret")
}

func (EnvVars) GetSessionSecret() string {
	return GetEnv(sessionSecretVar, "dev-session-secret")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
