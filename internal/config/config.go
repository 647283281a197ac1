package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
)

type Config struct {
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	DBName     string `env:"DB_NAME" envDefault:"number_guessing_game"`
	DBUser     string `env:"DB_USER" envDefault:"root"`
	DBPassword string `env:"DB_PASSWORD"`

	// RedisAddr enables the leaderboard cache when set, e.g. "localhost:6379".
	RedisAddr string `env:"REDIS_ADDR"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN builds the MySQL connection string for the configured database.
func (c *Config) DSN() string {
	return c.dsn(c.DBName)
}

// ServerDSN builds a connection string without a database selected, used to
// create the database itself during setup.
func (c *Config) ServerDSN() string {
	return c.dsn("")
}

func (c *Config) dsn(dbName string) string {
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.Net = "tcp"
	mc.Addr = c.DBHost + ":" + c.DBPort
	mc.DBName = dbName
	mc.ParseTime = true
	return mc.FormatDSN()
}
