package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const envPrefix = "ONTOGRAPH_DB_"

// DatabaseConfiguration holds the Postgres connection settings.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the configuration from the environment.
// A .env file in the working directory is loaded first if present; variables
// already set in the environment win.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv(envPrefix + "HOST"),
		Port:     os.Getenv(envPrefix + "PORT"),
		Database: os.Getenv(envPrefix + "DATABASE"),
		Username: os.Getenv(envPrefix + "USERNAME"),
		Password: os.Getenv(envPrefix + "PASSWORD"),
		Schema:   os.Getenv(envPrefix + "SCHEMA"),
		SSLMode:  os.Getenv(envPrefix + "SSLMODE"),
	}

	if config.Host == "" || config.Port == "" || config.Database == "" || config.Username == "" {
		return nil, NewError("database configuration", fmt.Errorf("%sHOST, %sPORT, %sDATABASE and %sUSERNAME must be set", envPrefix, envPrefix, envPrefix, envPrefix))
	}
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config, nil
}

// DSN builds the lib/pq connection string.
func (c *DatabaseConfiguration) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	q.Set("search_path", c.Schema)
	u.RawQuery = q.Encode()
	return u.String()
}

// Database bundles the connection pool with its logger.
type Database struct {
	Name     string
	Logger   *slog.Logger
	Instance *sql.DB
}

// NewDatabase opens and pings a Postgres connection pool.
func NewDatabase(name string, dbConfig *DatabaseConfiguration, logger *slog.Logger) (*Database, error) {
	if dbConfig == nil {
		return nil, NewError("database configuration validation", fmt.Errorf("database configuration is nil"))
	}
	if logger == nil {
		logger = DiscardLogger()
	}

	instance, err := sql.Open("postgres", dbConfig.DSN())
	if err != nil {
		return nil, NewError("open database", err)
	}
	instance.SetMaxOpenConns(25)
	instance.SetMaxIdleConns(5)
	instance.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = instance.PingContext(ctx)
	if err != nil {
		instance.Close()
		return nil, NewError("ping database", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", dbConfig.Host), slog.String("database", dbConfig.Database))

	return &Database{
		Name:     name,
		Logger:   logger,
		Instance: instance,
	}, nil
}

// Close closes the connection pool.
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}
