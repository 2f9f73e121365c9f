package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the leave
// management service.
type Config struct {
	HTTPPort          int
	SQLiteDSN         string
	SessionSecret     string
	SessionTTL        time.Duration
	RemoteWeeklyLimit int
	VouchersPerDay    int
}

// Load parses configuration values from the current process environment.
//
// When a .env file exists in the working directory its entries are loaded
// first without overriding variables already set. The loader applies
// defaults for optional fields while validating required values and
// reporting localized error messages for missing entries.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf(".env ファイルの読み込みに失敗しました: %w", err)
		}
	}

	cfg := Config{
		HTTPPort:          8080,
		SQLiteDSN:         "file:leavedesk.db?_foreign_keys=on",
		SessionTTL:        24 * time.Hour,
		RemoteWeeklyLimit: 2,
		VouchersPerDay:    8,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("LEAVEDESK_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "LEAVEDESK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("LEAVEDESK_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("LEAVEDESK_SESSION_SECRET")); secret == "" {
		missing = append(missing, "LEAVEDESK_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("LEAVEDESK_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "LEAVEDESK_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if limitValue := strings.TrimSpace(os.Getenv("LEAVEDESK_REMOTE_WEEKLY_LIMIT")); limitValue != "" {
		limit, err := strconv.Atoi(limitValue)
		// The services treat non-positive limits as unset, so zero cannot be
		// honored and is rejected here instead of silently reverting.
		if err != nil || limit <= 0 {
			invalid = append(invalid, "LEAVEDESK_REMOTE_WEEKLY_LIMIT")
		} else {
			cfg.RemoteWeeklyLimit = limit
		}
	}

	if rateValue := strings.TrimSpace(os.Getenv("LEAVEDESK_VOUCHERS_PER_DAY")); rateValue != "" {
		rate, err := strconv.Atoi(rateValue)
		if err != nil || rate <= 0 {
			invalid = append(invalid, "LEAVEDESK_VOUCHERS_PER_DAY")
		} else {
			cfg.VouchersPerDay = rate
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
