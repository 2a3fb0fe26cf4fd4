package config

import (
	"fmt"

	"github.com/JaimeStill/briefer/pkg/formatting"
	"github.com/JaimeStill/briefer/pkg/middleware"
	"github.com/JaimeStill/briefer/pkg/pagination"
)

const (
	EnvAPIBasePath      = "BRIEFER_API_BASE_PATH"
	EnvAPIMaxUploadSize = "BRIEFER_API_MAX_UPLOAD_SIZE"
	EnvAPIMaxExtracted  = "BRIEFER_API_MAX_EXTRACTED_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "BRIEFER_CORS_ENABLED",
	Origins:          "BRIEFER_CORS_ORIGINS",
	AllowedMethods:   "BRIEFER_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "BRIEFER_CORS_ALLOWED_HEADERS",
	AllowCredentials: "BRIEFER_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "BRIEFER_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "BRIEFER_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "BRIEFER_PAGINATION_MAX_PAGE_SIZE",
}

const (
	defaultMaxUpload    = 50 * 1024 * 1024
	defaultMaxExtracted = 200 * 1024 * 1024
)

// APIConfig holds API routing, upload, CORS, and pagination settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	MaxExtracted  string                `toml:"max_extracted_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return defaultMaxUpload
	}
	return size
}

// MaxExtractedBytes returns the decompressed byte budget for one uploaded
// archive.
func (c *APIConfig) MaxExtractedBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxExtracted)
	if err != nil {
		return defaultMaxExtracted
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
	if c.MaxExtracted == "" {
		c.MaxExtracted = "200MB"
	}
	envString(&c.BasePath, EnvAPIBasePath)
	envString(&c.MaxUploadSize, EnvAPIMaxUploadSize)
	envString(&c.MaxExtracted, EnvAPIMaxExtracted)

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fieldError("max_upload_size", err)
	}
	if _, err := formatting.ParseBytes(c.MaxExtracted); err != nil {
		return fieldError("max_extracted_size", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.MaxExtracted != "" {
		c.MaxExtracted = overlay.MaxExtracted
	}
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}
