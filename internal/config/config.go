package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	SessionStore  string
	SessionSecret string
	RedisHost     string
	RedisPort     string
	RedisPassword string

	OpenAIAPIKey string
	OpenAIModel  string
	ChatTimeout  time.Duration

	EmailHost     string
	EmailPort     int
	EmailUser     string
	EmailPassword string
	AppURL        string

	StorageType     string
	StorageBasePath string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3UseSSL        bool
	S3Region        string
	MaxUploadSize   int64

	NATSURL           string
	DeadLetterSubject string
	SideEffectTimeout time.Duration

	LogLevel  string
	LogFormat string
	LogOutput string
	LogFile   string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "taskuser"),
		DBPassword:  getEnv("DB_PASSWORD", "taskpassword"),
		DBName:      getEnv("DB_NAME", "taskflow"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		SessionStore:  getEnv("SESSION_STORE", "cookie"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		ChatTimeout:  getEnvDuration("CHAT_TIMEOUT", 30*time.Second),

		EmailHost:     getEnv("EMAIL_HOST", "smtp.gmail.com"),
		EmailPort:     getEnvInt("EMAIL_PORT", 587),
		EmailUser:     getEnv("EMAIL_USER", ""),
		EmailPassword: getEnv("EMAIL_PASS", ""),
		AppURL:        getEnv("APP_URL", "http://localhost:3000"),

		StorageType:     getEnv("STORAGE_TYPE", "local"),
		StorageBasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		S3Endpoint:      getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:     getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:        getEnv("S3_BUCKET", "task-documents"),
		S3UseSSL:        getEnvBool("S3_USE_SSL", false),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		MaxUploadSize:   int64(getEnvInt("MAX_UPLOAD_SIZE", 10<<20)),

		NATSURL:           getEnv("NATS_URL", ""),
		DeadLetterSubject: getEnv("DEAD_LETTER_SUBJECT", "taskflow.deadletter"),
		SideEffectTimeout: getEnvDuration("SIDE_EFFECT_TIMEOUT", 30*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogOutput: getEnv("LOG_OUTPUT", "stdout"),
		LogFile:   getEnv("LOG_FILE", "logs/app.log"),
	}
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
