package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	baseURLVar    = "BASE_URL"
	jwtSecretVar  = "JWT_SECRET"
	oidcIssuerVar = "OIDC_ISSUER"
	oidcClientVar = "OIDC_CLIENT_ID"
	mongoURIVar   = "MONGO_URI"
	mongoDBVar    = "MONGO_DATABASE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ AuthConfig = EnvVars{}
var _ StoreConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Go Chat Server")
}

// GetBaseURL returns the externally visible base URL of the server, used in
// startup logging and the DEV seeding banner.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetJWTSecret returns the HMAC secret used to verify locally issued bearer
// tokens. The default is only acceptable in DEV.
func (EnvVars) GetJWTSecret() string {
	return GetEnv(jwtSecretVar, "change-this-secret")
}

// GetOIDCIssuer returns the issuer URL of an external OIDC provider. When set,
// handshake credentials are verified against the issuer's published keys
// instead of the local HMAC secret.
func (EnvVars) GetOIDCIssuer() string {
	return GetEnv(oidcIssuerVar, "")
}

func (EnvVars) GetOIDCClientID() string {
	return GetEnv(oidcClientVar, "")
}

func (EnvVars) GetMongoURI() string {
	return GetEnv(mongoURIVar, "")
}

func (EnvVars) GetMongoDatabase() string {
	return GetEnv(mongoDBVar, "chat")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
