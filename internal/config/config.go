package config

type Config interface {
	EnvConfig
	CorsConfig
	StoreConfig
	AuthConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetBaseURL() string
	GetEnv() string
	IsDev() bool
	GetConsoleFile() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Store
	Auth
	Security
}

func New() Config {
	return mainConfig{}
}
