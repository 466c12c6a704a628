package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultCategories is the built-in chart of accounts, overridable via
// JOBTRACK_CATEGORIES. The list drives the expense form dropdown only;
// the repository and report engine accept any category string.
var DefaultCategories = []string{
	"Materials",
	"Subcontractor",
	"Labor",
	"Tools",
	"Disposal",
	"Permits",
	"Fuel",
	"Other",
}

type Config struct {
	// HTTP Server
	Port string

	// Storage
	DBPath     string
	ReceiptDir string

	// Chart of accounts (expense categories offered by the UI)
	Categories []string

	// Project deletion policy: cascade to dependent rows when true,
	// otherwise deletes with dependents fail.
	CascadeDelete bool
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("JOBTRACK_DB_PATH", "./data/jobtrack.db"),
		ReceiptDir:    getEnv("JOBTRACK_RECEIPT_DIR", "./data/receipts"),
		Categories:    getEnvList("JOBTRACK_CATEGORIES", DefaultCategories),
		CascadeDelete: getEnvBool("JOBTRACK_CASCADE_DELETE", false),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	} else if err := ensureDir(filepath.Dir(c.DBPath)); err != nil {
		errs = append(errs, fmt.Sprintf("cannot create database directory: %v", err))
	}

	if c.ReceiptDir == "" {
		errs = append(errs, "receipt directory cannot be empty")
	} else if err := ensureDir(c.ReceiptDir); err != nil {
		errs = append(errs, fmt.Sprintf("cannot create receipt directory: %v", err))
	}

	if len(c.Categories) == 0 {
		errs = append(errs, "category list cannot be empty")
	}
	for _, cat := range c.Categories {
		if strings.TrimSpace(cat) == "" {
			errs = append(errs, "category list contains a blank entry")
			break
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
