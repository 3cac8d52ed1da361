package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "recetario-api", cfg.AppName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "db/migrations", cfg.MigrationsDir)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "recipes", cfg.ESRecipesIndex)
	assert.Equal(t, "recipe-index", cfg.RabbitMQIndexQueue)
	assert.False(t, cfg.IndexAsyncEnabled)
	assert.True(t, cfg.DebugMetricsEnabled)
	assert.Equal(t, time.Hour, cfg.DBMaxConnLife)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("INDEX_ASYNC_ENABLED", "true")
	t.Setenv("DB_MAX_CONN_LIFETIME", "30m")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, int32(25), cfg.DBMaxConns)
	assert.True(t, cfg.IndexAsyncEnabled)
	assert.Equal(t, 30*time.Minute, cfg.DBMaxConnLife)
}

func TestSupabaseConfigured(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.SupabaseConfigured())

	cfg.SupabaseURL = "https://x.supabase.co"
	assert.False(t, cfg.SupabaseConfigured(), "url without a key is not usable")

	cfg.SupabaseAnonKey = "anon"
	assert.True(t, cfg.SupabaseConfigured())

	cfg.SupabaseAnonKey = ""
	cfg.SupabaseServiceRoleKey = "service"
	assert.True(t, cfg.SupabaseConfigured(), "service role alone is enough")
}

func TestCORSOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: "http://localhost:5173, https://app.example.com ,"}
	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, cfg.CORSOrigins())

	cfg.CORSAllowedOrigins = ""
	assert.Empty(t, cfg.CORSOrigins())
}

func TestESAddrs(t *testing.T) {
	cfg := &Config{ElasticsearchAddrs: "http://es1:9200,http://es2:9200"}
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.ESAddrs())
	assert.True(t, (&Config{ElasticsearchAddrs: "http://es1:9200", ESRecipesIndex: "recipes"}).ESConfigured())
	assert.False(t, (&Config{}).ESConfigured())
}
