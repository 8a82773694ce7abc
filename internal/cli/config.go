package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"github.com/aretw0/turning/internal/logging"
)

// Store kinds accepted by TURNING_STORE.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config holds the settings shared by every command.
// Values come from the environment, optionally seeded by .env files.
type Config struct {
	// Store is one of file, memory, redis or sqlite. Default: file.
	Store string
	// StorePath is the directory of the file store or the database of the sqlite store.
	StorePath     string
	RedisAddr     string
	RedisPassword string
	// EncryptionKey is a hex encoded AES-256 key sealing stored reports.
	EncryptionKey string
	// Redact lists regular expressions masked in stored error messages.
	Redact []string
	// Pushgateway receives run metrics when set.
	Pushgateway string
	LogLevel    string
}

// LoadConfig reads the environment after loading envFiles.
// Without envFiles, a missing .env in the working directory is not an error.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("failed to load env files: %w", err)
	}

	cfg := Config{
		Store:         strings.ToLower(os.Getenv("TURNING_STORE")),
		StorePath:     os.Getenv("TURNING_STORE_PATH"),
		RedisAddr:     os.Getenv("TURNING_REDIS_ADDR"),
		RedisPassword: os.Getenv("TURNING_REDIS_PASSWORD"),
		EncryptionKey: os.Getenv("TURNING_ENCRYPTION_KEY"),
		Pushgateway:   os.Getenv("TURNING_PUSHGATEWAY"),
		LogLevel:      os.Getenv("TURNING_LOG_LEVEL"),
	}
	if cfg.Store == "" {
		cfg.Store = StoreFile
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	for _, p := range strings.Split(os.Getenv("TURNING_REDACT"), ",") {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			return Config{}, fmt.Errorf("invalid TURNING_REDACT pattern %q: %w", p, err)
		}
		cfg.Redact = append(cfg.Redact, p)
	}
	return cfg, nil
}

// Logger builds the application logger.
// Logs go to Stderr so they never mix with the test output on Stdout.
func (c Config) Logger(debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	if c.LogLevel == "" {
		return logging.NewNop(), nil
	}
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

func (c Config) encryptionKey() ([]byte, error) {
	key, err := hex.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid TURNING_ENCRYPTION_KEY: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid TURNING_ENCRYPTION_KEY: want 32 bytes, got %d", len(key))
	}
	return key, nil
}
