package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "CORS_ORIGIN", "STORE", "MONGO_DB", "SHUTDOWN_TIMEOUT_SEC", "CLOUDINARY_FOLDER"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "http://localhost:5173", cfg.CORSOrigin)
	assert.Equal(t, StoreMongo, cfg.Store)
	assert.Equal(t, "eventoems", cfg.Mongo.Database)
	assert.Equal(t, "events", cfg.Cloudinary.Folder)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE", "MEMORY")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("MONGO_TIMEOUT_SEC", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 10*time.Second, cfg.Mongo.Timeout)
}

func TestValidate(t *testing.T) {
	t.Run("missing secret fails fast", func(t *testing.T) {
		cfg := &Config{Store: StoreMemory}
		require.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)
	})

	t.Run("mongo store needs a url", func(t *testing.T) {
		cfg := &Config{Store: StoreMongo, JWTSecret: "s3cret"}
		require.ErrorIs(t, cfg.Validate(), ErrMissingMongoURL)
	})

	t.Run("unknown store", func(t *testing.T) {
		cfg := &Config{Store: "redis", JWTSecret: "s3cret"}
		require.ErrorIs(t, cfg.Validate(), ErrUnknownStore)
	})

	t.Run("memory store with secret", func(t *testing.T) {
		cfg := &Config{Store: StoreMemory, JWTSecret: "s3cret"}
		require.NoError(t, cfg.Validate())
	})
}

func TestCloudinaryEnabled(t *testing.T) {
	assert.False(t, CloudinaryConfig{CloudName: "demo"}.Enabled())
	assert.True(t, CloudinaryConfig{CloudName: "demo", APIKey: "k", APISecret: "s"}.Enabled())
}
