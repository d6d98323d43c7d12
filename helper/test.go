package helper

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDatabase = "database"
	testUsername = "user"
	testPassword = "password"
)

// MustStartPostgresContainer starts a throwaway Postgres container and returns
// its teardown function and the mapped host port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(
		ctx,
		"postgres:17-alpine",
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUsername),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", NewError("start postgres container", err)
	}

	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return pgContainer.Terminate, "", NewError("mapped port", err)
	}

	return pgContainer.Terminate, port.Port(), nil
}

// SetTestDatabaseConfigEnvs points the database environment at a test container.
func SetTestDatabaseConfigEnvs(t *testing.T, dbPort string) {
	t.Setenv(envPrefix+"HOST", "localhost")
	t.Setenv(envPrefix+"PORT", dbPort)
	t.Setenv(envPrefix+"DATABASE", testDatabase)
	t.Setenv(envPrefix+"USERNAME", testUsername)
	t.Setenv(envPrefix+"PASSWORD", testPassword)
	t.Setenv(envPrefix+"SCHEMA", "public")
	t.Setenv(envPrefix+"SSLMODE", "disable")
}

// NewTestDatabase connects to a test container and panics on failure.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	logger := NewLogger(os.Stdout, slog.LevelWarn)
	db, err := NewDatabase("test", config, logger)
	if err != nil {
		panic(err)
	}
	return db
}
