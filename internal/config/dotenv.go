package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DotenvFile is the file LoadDotenvIfPresent reads by default
const DotenvFile = ".env"

// LoadDotenvIfPresent reads a local .env file for development and local CLI use.
// It does not override existing environment variables and is a no-op when the
// file is absent or MARQUEE_ENV is production.
func LoadDotenvIfPresent(path string) {
	if strings.EqualFold(os.Getenv("MARQUEE_ENV"), "production") {
		return
	}
	if path == "" {
		path = DotenvFile
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return
		}
		slog.Warn("dotenv stat error", "path", path, "error", err)
		return
	}

	if err := godotenv.Load(path); err != nil {
		slog.Warn("dotenv load error", "path", path, "error", err)
	}
}
