package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits the admin email allow-list
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and thresholds.
type Config struct {
	Env               string   // application environment (e.g. "dev", "prod")
	Port              string   // HTTP port to listen on
	AppURL            string   // external base URL, used in emailed login links
	DBUser            string   // database username
	DBPass            string   // database password (optional)
	DBHost            string   // database host address
	DBPort            string   // database port number
	DBName            string   // database name
	JWTSecret         string   // secret used to sign admin session JWTs
	AdminTTLDays      int      // admin session time-to-live in days
	OTPTTLMin         int      // one-time login token time-to-live in minutes
	AdminEmails       []string // lower-cased emails allowed to request a login link
	AdminPasswordHash string   // optional bcrypt hash for break-glass password login
	AbuseThreshold    int      // unique daily visitors above which an alert is raised
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Optional values
// fall back to sensible defaults.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),                  // environment (dev/test/prod)
		Port:              must("APP_PORT"),                 // port to bind the HTTP server
		AppURL:            optional("APP_URL", "http://localhost:8080"),
		DBUser:            must("DB_USER"),                  // database user
		DBPass:            os.Getenv("DB_PASS"),             // database password (empty allowed)
		DBHost:            must("DB_HOST"),                  // database host
		DBPort:            must("DB_PORT"),                  // database port
		DBName:            must("DB_NAME"),                  // database name
		JWTSecret:         must("JWT_SECRET"),               // secret used for signing JWTs
		AdminTTLDays:      optionalInt("ADMIN_SESSION_TTL_DAYS", 7),
		OTPTTLMin:         optionalInt("OTP_TTL_MIN", 15),
		AdminEmails:       splitEmails(os.Getenv("ADMIN_EMAILS")),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"), // empty disables password login
		AbuseThreshold:    optionalInt("ABUSE_THRESHOLD", 12),
	}
}

// IsAdminEmail reports whether the given address is on the configured
// allow-list.  Comparison is case-insensitive.
func (c Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

// splitEmails parses a comma-separated allow-list into lower-cased,
// trimmed entries, dropping empties.
func splitEmails(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
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

// optional retrieves an environment variable or returns the provided
// default when it is unset or empty.
func optional(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// optionalInt is like optional() but converts the retrieved string to an
// integer.  Invalid values fall back to the default rather than aborting,
// since every integer setting here has a safe default.
func optionalInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid int for %s: %q, using default %d", key, v, def)
		return def
	}
	return n
}
