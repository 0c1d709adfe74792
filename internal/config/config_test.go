package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/renovation-tracker-api/internal/constants"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("BLOB_BACKEND", "")
	t.Setenv("DB_MAX_OPEN_CONNS", "")
	t.Setenv("DB_CONN_MAX_LIFETIME", "")
	t.Setenv("GIN_MODE", "release")

	cfg := Load()

	require.Equal(t, constants.DefaultTokenTTL, cfg.TokenTTL)
	require.Equal(t, constants.MaxUploadBytes, cfg.MaxUploadBytes)
	require.Equal(t, "local", cfg.BlobBackend)
	require.Equal(t, constants.DefaultDBMaxOpenConns, cfg.DBMaxOpenConns)
	require.Equal(t, constants.DefaultDBConnMaxLifetime, cfg.DBConnMaxLifetime)
	require.True(t, cfg.IsRelease())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("S3_FORCE_PATH_STYLE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("PUBLIC_BASE_URL", "https://api.example/")
	t.Setenv("DB_MAX_OPEN_CONNS", "8")

	cfg := Load()

	require.Equal(t, 30*time.Minute, cfg.TokenTTL)
	require.Equal(t, 12, cfg.BcryptCost)
	require.True(t, cfg.S3ForcePathStyle)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "https://api.example", cfg.PublicBaseURL)
	require.Equal(t, 8, cfg.DBMaxOpenConns)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	t.Setenv("REDIS_DB", "two")

	cfg := Load()

	require.Equal(t, constants.DefaultTokenTTL, cfg.TokenTTL)
	require.Equal(t, 0, cfg.RedisDB)
}
