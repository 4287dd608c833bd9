package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// dotenvFile is read before the process environment; a missing file is fine.
var dotenvFile = ".env"

// parseEnv overlays values from the environment. Variables already set in
// the process win over the ones loaded from .env.
//
//	PORT, HTTP_ADDR, DATABASE_URL, JWT_SECRET, TOKEN_TTL, APP_ENV (NODE_ENV),
//	CLIENT_URL, COOKIE_SECURE, BCRYPT_COST, UPLOAD_DIR, MAX_UPLOAD_SIZE,
//	AUTH_RATE_LIMIT, S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET, S3_REGION,
//	S3_ENDPOINT, S3_PUBLIC_URL, S3_FOLDER, GEMINI_API_KEY, GEMINI_MODEL,
//	GEMINI_BASE_URL, LOG_LEVEL, LOG_FORMAT
//
// Malformed numeric or boolean values panic, like malformed flags do.
func parseEnv(config *Config) {
	_ = godotenv.Load(dotenvFile)

	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		config.EndpointAddrHTTP = ":" + v
	}
	setString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_URL")
	setString(&config.SecretKey, "JWT_SECRET")
	setDuration(&config.TokenValidityDuration, "TOKEN_TTL")
	setString(&config.Environment, "NODE_ENV")
	setString(&config.Environment, "APP_ENV")
	setString(&config.ClientURL, "CLIENT_URL")
	setBool(&config.CookieSecure, "COOKIE_SECURE")
	setInt(&config.BcryptCost, "BCRYPT_COST")
	setString(&config.UploadDir, "UPLOAD_DIR")
	setInt64(&config.MaxUploadSize, "MAX_UPLOAD_SIZE")
	setInt(&config.AuthRateLimit, "AUTH_RATE_LIMIT")
	setString(&config.S3RootUser, "S3_ACCESS_KEY")
	setString(&config.S3RootPassword, "S3_SECRET_KEY")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_ENDPOINT")
	setString(&config.S3PublicBaseURL, "S3_PUBLIC_URL")
	setString(&config.S3Folder, "S3_FOLDER")
	setString(&config.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&config.GeminiModel, "GEMINI_MODEL")
	setString(&config.GeminiBaseURL, "GEMINI_BASE_URL")
	setString(&config.LogLevel, "LOG_LEVEL")
	setString(&config.LogFormat, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		*dst = b
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func setInt64(dst *int64, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}
