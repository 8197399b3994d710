package config

import (
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is the full environment configuration.
type Config struct {
	Port          string        `env:"PORT,default=8080"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	MLServiceURL  string        `env:"ML_SERVICE_URL,default=http://localhost:8002"`
	MLTimeout     time.Duration `env:"ML_TIMEOUT,default=10s"`
	JWTSecret     string        `env:"JWT_SECRET,default=lacteva-dev-secret"`
	CORSOrigins   string        `env:"CORS_ORIGINS,default=http://localhost:3000"`
	OfflineAfter  time.Duration `env:"DEVICE_OFFLINE_AFTER,default=5m"`
	TokenLifetime time.Duration `env:"TOKEN_LIFETIME,default=24h"`
}

// C holds the loaded configuration.
var C Config

// Load reads .env (when present) and decodes the environment into C.
func Load() error {
	godotenv.Load()
	return envdecode.Decode(&C)
}
