package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/blogkeeper/internal/flagx"
	"github.com/dmitrijs2005/blogkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Pointer fields
// distinguish "absent" from zero values so a partial file only overrides
// what it mentions.
type JsonConfig struct {
	EndpointAddrHTTP      *string         `json:"endpoint_addr_http"`
	DatabaseDSN           *string         `json:"database_dsn"`
	SecretKey             *string         `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	Environment           *string         `json:"environment"`
	ClientURL             *string         `json:"client_url"`
	CookieSecure          *bool           `json:"cookie_secure"`
	BcryptCost            *int            `json:"bcrypt_cost"`
	UploadDir             *string         `json:"upload_dir"`
	MaxUploadSize         *int64          `json:"max_upload_size"`
	AuthRateLimit         *int            `json:"auth_rate_limit"`
	S3RootUser            *string         `json:"s3_root_user"`
	S3RootPassword        *string         `json:"s3_root_password"`
	S3Bucket              *string         `json:"s3_bucket"`
	S3Region              *string         `json:"s3_region"`
	S3BaseEndpoint        *string         `json:"s3_base_endpoint"`
	S3PublicBaseURL       *string         `json:"s3_public_base_url"`
	S3Folder              *string         `json:"s3_folder"`
	GeminiAPIKey          *string         `json:"gemini_api_key"`
	GeminiModel           *string         `json:"gemini_model"`
	GeminiBaseURL         *string         `json:"gemini_base_url"`
	LogLevel              *string         `json:"log_level"`
	LogFormat             *string         `json:"log_format"`
}

// parseJson overlays values from the JSON file named by -c/-config (or the
// CONFIG variable). Without a path nothing happens; an unreadable or invalid
// file panics.
func parseJson(config *Config) {
	path := flagx.ConfigFile()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	override(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	override(&config.DatabaseDSN, c.DatabaseDSN)
	override(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	override(&config.Environment, c.Environment)
	override(&config.ClientURL, c.ClientURL)
	override(&config.CookieSecure, c.CookieSecure)
	override(&config.BcryptCost, c.BcryptCost)
	override(&config.UploadDir, c.UploadDir)
	override(&config.MaxUploadSize, c.MaxUploadSize)
	override(&config.AuthRateLimit, c.AuthRateLimit)
	override(&config.S3RootUser, c.S3RootUser)
	override(&config.S3RootPassword, c.S3RootPassword)
	override(&config.S3Bucket, c.S3Bucket)
	override(&config.S3Region, c.S3Region)
	override(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	override(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	override(&config.S3Folder, c.S3Folder)
	override(&config.GeminiAPIKey, c.GeminiAPIKey)
	override(&config.GeminiModel, c.GeminiModel)
	override(&config.GeminiBaseURL, c.GeminiBaseURL)
	override(&config.LogLevel, c.LogLevel)
	override(&config.LogFormat, c.LogFormat)
}

func override[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
