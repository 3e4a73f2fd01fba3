package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "astra"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App        AppConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Google     GoogleConfig
	Firestore  FirestoreConfig
	Cloudinary CloudinaryConfig
	OpenAI     OpenAIConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ASTRA_APP_ENV" required:"true"`
	Port         string `envconfig:"ASTRA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ASTRA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ASTRA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"ASTRA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ASTRA_REDIS_ADDR"`
	Password     string        `envconfig:"ASTRA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ASTRA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ASTRA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ASTRA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ASTRA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ASTRA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ASTRA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ASTRA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ASTRA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ASTRA_JWT_EXPIRATION_MINUTES" default:"720"`
}

// AccessTokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type GoogleConfig struct {
	OAuthClientID string `envconfig:"ASTRA_GOOGLE_OAUTH_CLIENT_ID" required:"true"`
}

type FirestoreConfig struct {
	ProjectID              string `envconfig:"ASTRA_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"ASTRA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ASTRA_GOOGLE_APPLICATION_CREDENTIALS"`
	ImagesCollection       string `envconfig:"ASTRA_FIRESTORE_IMAGES_COLLECTION" default:"images"`
	UsersCollection        string `envconfig:"ASTRA_FIRESTORE_USERS_COLLECTION" default:"users"`
}

type CloudinaryConfig struct {
	CloudName     string `envconfig:"ASTRA_CLOUDINARY_CLOUD_NAME" required:"true"`
	APIKey        string `envconfig:"ASTRA_CLOUDINARY_API_KEY" required:"true"`
	APISecret     string `envconfig:"ASTRA_CLOUDINARY_API_SECRET" required:"true"`
	DefaultFolder string `envconfig:"ASTRA_CLOUDINARY_DEFAULT_FOLDER" default:"astra-images"`
}

type OpenAIConfig struct {
	APIKey      string `envconfig:"ASTRA_OPENAI_API_KEY" required:"true"`
	ImageModel  string `envconfig:"ASTRA_OPENAI_IMAGE_MODEL" default:"dall-e-3"`
	ImageSize   string `envconfig:"ASTRA_OPENAI_IMAGE_SIZE" default:"1024x1024"`
	VisionModel string `envconfig:"ASTRA_OPENAI_VISION_MODEL" default:"gpt-4o-mini"`
	MaxKeywords int    `envconfig:"ASTRA_OPENAI_MAX_KEYWORDS" default:"5"`
}

type RateLimitConfig struct {
	AuthWindow     time.Duration `envconfig:"ASTRA_RATE_LIMIT_AUTH_WINDOW" default:"1m"`
	AuthIPLimit    int           `envconfig:"ASTRA_RATE_LIMIT_AUTH_IP_LIMIT" default:"20"`
	GenerateWindow time.Duration `envconfig:"ASTRA_RATE_LIMIT_GENERATE_WINDOW" default:"1m"`
	GenerateLimit  int           `envconfig:"ASTRA_RATE_LIMIT_GENERATE_LIMIT" default:"5"`
	AnalysisWindow time.Duration `envconfig:"ASTRA_RATE_LIMIT_ANALYSIS_WINDOW" default:"1m"`
	AnalysisLimit  int           `envconfig:"ASTRA_RATE_LIMIT_ANALYSIS_LIMIT" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ASTRA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
