package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDRESS", "PORT", "STORE_DRIVER", "MONGO_URI", "KAFKA_BROKERS", "PUBLISH_TIMEOUT", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "JWT_SECRET"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	require.Equal(t, ":3000", cfg.HTTPAddress)
	require.Equal(t, DriverMongo, cfg.StoreDriver)
	require.Equal(t, "exercise-db", cfg.MongoDatabase)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	require.Zero(t, cfg.RateLimitRPS)
	require.Equal(t, 10*time.Second, cfg.StoreTimeout)
	require.Equal(t, 2*time.Second, cfg.PublishTimeout)
	require.ErrorContains(t, cfg.Validate(), "MONGO_URI")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", "")
	t.Setenv("PORT", "8081")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("POSTGRES_URL", "postgres://tracker@localhost/exercise")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092 , ,kafka-2:9092")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("STORE_TIMEOUT", "not-a-duration")
	t.Setenv("PUBLISH_TIMEOUT", "250ms")

	cfg := FromEnv()
	require.Equal(t, ":8081", cfg.HTTPAddress)
	require.Equal(t, DriverPostgres, cfg.StoreDriver)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 2.5, cfg.RateLimitRPS)
	require.Equal(t, 10*time.Second, cfg.StoreTimeout)
	require.Equal(t, 250*time.Millisecond, cfg.PublishTimeout)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	require.ErrorContains(t, Config{StoreDriver: "sqlite"}.Validate(), "sqlite")
	require.NoError(t, Config{StoreDriver: DriverMemory}.Validate())
}
