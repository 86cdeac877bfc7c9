package config

type Config interface {
	EnvConfig
	CorsConfig
	AuthConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// AuthConfig supplies the credential-verification settings for the
// authentication gate and the bearer middleware.
type AuthConfig interface {
	GetJWTSecret() string
	GetOIDCIssuer() string
	GetOIDCClientID() string
}

// StoreConfig supplies the durable message store settings. An empty Mongo URI
// selects the in-memory store.
type StoreConfig interface {
	GetMongoURI() string
	GetMongoDatabase() string
}

type mainConfig struct {
	EnvVars
	Cors
}

func New() Config {
	return mainConfig{}
}
