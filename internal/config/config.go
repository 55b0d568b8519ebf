package config

import "github.com/caarlos0/env/v10"

// Config centralizes configuration for the API server.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	JWTSecret            string `env:"JWT_SECRET_KEY,required"`
	JWTAccessTTLMinutes  int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"10080"`
	JWTRefreshTTLMinutes int    `env:"REFRESH_TOKEN_EXPIRE_MINUTES" envDefault:"43200"`

	CORSOrigins []string `env:"BACKEND_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`
}

// LoadConfig loads the server configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CLIConfig is the configuration consumed by cmd/cli. Kept separate because
// the client must start without a database or JWT secret available.
type CLIConfig struct {
	APIBaseURL  string `env:"ORION_API_URL" envDefault:"http://localhost:8080"`
	SessionFile string `env:"ORION_SESSION_FILE"`
	MockLogin   bool   `env:"ORION_MOCK_LOGIN" envDefault:"false"`
}

// LoadCLIConfig loads the CLI client configuration from environment variables.
func LoadCLIConfig() (*CLIConfig, error) {
	var cfg CLIConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
