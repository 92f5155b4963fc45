package keybench

import (
	"os"
	"strings"
)

// Config holds the connection settings and data directory.
type Config struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	SSLMode  string
	DataDir  string
}

// ConfigFromEnv reads the POSTGRES_* and DATA_DIR variables with getenv.
// A nil getenv uses [os.Getenv].
func ConfigFromEnv(getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}

	c := Config{
		Host:     getenv("POSTGRES_HOST"),
		Port:     getenv("POSTGRES_PORT"),
		Database: getenv("POSTGRES_DB"),
		User:     getenv("POSTGRES_USER"),
		Password: getenv("POSTGRES_PASSWORD"),
		SSLMode:  getenv("POSTGRES_SSLMODE"),
		DataDir:  getenv("DATA_DIR"),
	}

	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}

	if c.DataDir == "" {
		c.DataDir = "."
	}

	return c
}

// DSN returns a key/value connection string. Empty settings are omitted.
func (c Config) DSN() string {
	params := []struct{ key, value string }{
		{"host", c.Host},
		{"port", c.Port},
		{"dbname", c.Database},
		{"user", c.User},
		{"password", c.Password},
		{"sslmode", c.SSLMode},
	}

	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.value != "" {
			parts = append(parts, p.key+"="+quoteDSNValue(p.value))
		}
	}

	return strings.Join(parts, " ")
}

func quoteDSNValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}

	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)

	return "'" + r.Replace(v) + "'"
}
