package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// ErrMissingAPIToken is returned when API_TOKEN is unset. The metrics and
// logs endpoints cannot be guarded without it.
var ErrMissingAPIToken = errors.New("API_TOKEN must be set")

type Config struct {
	Env             string
	ShortCodeLength int
	CacheTTL        time.Duration
	APIToken        string
	HTTPServer      HTTPServer
	Postgres        Postgres
	Redis           Redis
	Mongo           Mongo
}

type HTTPServer struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	CertFile       string
	KeyFile        string
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User            string
	Password        string
	Host            string
	Port            int
	DB              string
	SSLMode         string
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	MaxIdleConns    int
	MaxOpenConns    int
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

var defaultRedis = Redis{
	Addr: "localhost:6379",
}

type Mongo struct {
	URI string
}

var defaultMongo = Mongo{
	URI: "mongodb://localhost:27017",
}

// Load builds the configuration from environment variables, falling back to
// defaults for everything except the API token.
func Load() (*Config, error) {
	const op = "config.Load"

	cfg := Config{
		Env:             getEnvString("ENV", EnvDev),
		ShortCodeLength: getEnvInt("SHORT_CODE_LENGTH", 6),
		CacheTTL:        getEnvDuration("CACHE_TTL", time.Hour),
		APIToken:        os.Getenv("API_TOKEN"),
		HTTPServer: HTTPServer{
			Port:           getEnvInt("SERVER_PORT", defaultHTTPServer.Port),
			ReadTimeout:    getEnvDuration("SERVER_READ_TIMEOUT", defaultHTTPServer.ReadTimeout),
			WriteTimeout:   getEnvDuration("SERVER_WRITE_TIMEOUT", defaultHTTPServer.WriteTimeout),
			IdleTimeout:    getEnvDuration("SERVER_IDLE_TIMEOUT", defaultHTTPServer.IdleTimeout),
			MaxHeaderBytes: defaultHTTPServer.MaxHeaderBytes,
			CertFile:       os.Getenv("SERVER_CERT_FILE"),
			KeyFile:        os.Getenv("SERVER_KEY_FILE"),
		},
		Postgres: Postgres{
			User:            getEnvString("POSTGRES_USER", "postgres"),
			Password:        os.Getenv("POSTGRES_PASSWORD"),
			Host:            getEnvString("POSTGRES_HOST", defaultPostgres.Host),
			Port:            getEnvInt("POSTGRES_PORT", defaultPostgres.Port),
			DB:              getEnvString("POSTGRES_DB", "postgres"),
			SSLMode:         getEnvString("POSTGRES_SSLMODE", defaultPostgres.SSLMode),
			ConnMaxIdleTime: getEnvDuration("POSTGRES_CONN_MAX_IDLE_TIME", defaultPostgres.ConnMaxIdleTime),
			ConnMaxLifetime: getEnvDuration("POSTGRES_CONN_MAX_LIFETIME", defaultPostgres.ConnMaxLifetime),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", defaultPostgres.MaxIdleConns),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", defaultPostgres.MaxOpenConns),
		},
		Redis: Redis{
			Addr:     getEnvString("REDIS_ADDR", defaultRedis.Addr),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Mongo: Mongo{
			URI: getEnvString("MONGO_URI", defaultMongo.URI),
		},
	}

	if cfg.APIToken == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingAPIToken)
	}

	return &cfg, nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}

	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}

	return d
}
