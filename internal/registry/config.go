package registry

import "time"

// Config holds the relational-store connection settings. The default DSN
// targets a local Postgres holding the control-plane schema.
type Config struct {
	URL               string        `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/gateway?sslmode=disable"` // URL is the Postgres DSN of the shared registry database.
	MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`                                           // MaxOpenConns is the maximum number of open connections.
	MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`                                            // MaxIdleConns is the minimum number of idle connections kept ready.
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`                                       // HealthCheckPeriod is the period between pool health checks.
	RetryAttempts     int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`                                            // RetryAttempts is the number of connection attempts before startup fails.
	RetryInterval     time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`                                           // RetryInterval is the base pause between connection attempts.
}
