package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses the duration tunables
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Durations accept Go
// duration syntax (e.g. "5m", "30s").
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	JWTSecret      string        // secret used to verify externally issued JWTs
	PaymentURL     string        // base URL of the external payment service
	HoldTTL        time.Duration // lifetime of a seat hold
	HoldMaxSeats   int           // maximum seats per hold
	SweepInterval  time.Duration // period of the expired-hold sweep
	PaymentTimeout time.Duration // deadline for a single charge call
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// The reservation tunables all have defaults so a dev setup only
// needs the DB and payment settings.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),     // environment (dev/test/prod)
		Port:           must("APP_PORT"),    // port to bind the HTTP server
		DBUser:         must("DB_USER"),     // database user
		DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:         must("DB_HOST"),     // database host
		DBPort:         must("DB_PORT"),     // database port
		DBName:         must("DB_NAME"),     // database name
		JWTSecret:      must("JWT_SECRET"),  // secret for verifying access tokens
		PaymentURL:     must("PAYMENT_URL"), // payment service base URL
		HoldTTL:        dur("HOLD_TTL", 5*time.Minute),
		HoldMaxSeats:   intOr("HOLD_MAX_SEATS", 10),
		SweepInterval:  dur("SWEEP_INTERVAL", 30*time.Second),
		PaymentTimeout: dur("PAYMENT_TIMEOUT", 30*time.Second),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr returns the integer value of an environment variable or the
// default when unset.  An unparseable value is fatal: silently falling
// back would mask a typo in deployment config.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// dur is like intOr for duration-valued variables.
func dur(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, s)
	}
	return d
}
