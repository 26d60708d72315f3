//go:build integration

// Package containers provides testcontainers helpers for integration tests
// that need a real database instead of the in-memory sqlite store.
package containers

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
)

// MySQLConfig holds knobs for the MySQL test container.
type MySQLConfig struct {
	Database string
	Username string
	Password string
}

// DefaultMySQLConfig returns the config used by the repository tests.
func DefaultMySQLConfig() MySQLConfig {
	return MySQLConfig{
		Database: "channelpulse_test",
		Username: "testuser",
		Password: "testpass",
	}
}

// MySQLContainer wraps a running MySQL container and its GORM-ready DSN.
type MySQLContainer struct {
	container *mysql.MySQLContainer
	dsn       string
}

// NewMySQLContainer starts a MySQL container and waits for it to accept
// connections. Callers must Terminate it when done.
func NewMySQLContainer(ctx context.Context, config *MySQLConfig) (*MySQLContainer, error) {
	if config == nil {
		c := DefaultMySQLConfig()
		config = &c
	}

	opts := []testcontainers.ContainerCustomizer{
		mysql.WithDatabase(config.Database),
		mysql.WithUsername(config.Username),
		mysql.WithPassword(config.Password),
	}
	container, err := mysql.RunContainer(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("starting mysql container: %w", err)
	}

	// parseTime is required so GORM scans fired_at into time.Time.
	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, fmt.Errorf("resolving mysql connection string: %w", err)
	}

	return &MySQLContainer{container: container, dsn: dsn}, nil
}

// DSN returns the connection string for datastore.Open("mysql", ...).
func (c *MySQLContainer) DSN() string {
	return c.dsn
}

// Terminate stops and removes the container.
func (c *MySQLContainer) Terminate(ctx context.Context) error {
	if c.container == nil {
		return nil
	}
	if err := c.container.Terminate(ctx); err != nil {
		return fmt.Errorf("terminating mysql container: %w", err)
	}
	return nil
}
