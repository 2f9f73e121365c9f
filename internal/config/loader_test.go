package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"LEAVEDESK_HTTP_PORT",
			"LEAVEDESK_SQLITE_DSN",
			"LEAVEDESK_SESSION_TTL",
			"LEAVEDESK_REMOTE_WEEKLY_LIMIT",
			"LEAVEDESK_VOUCHERS_PER_DAY",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		const secret = "super-secret"
		t.Setenv("LEAVEDESK_SESSION_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:leavedesk.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionSecret != secret {
			t.Fatalf("expected session secret to be %q, got %q", secret, cfg.SessionSecret)
		}
		if cfg.RemoteWeeklyLimit != 2 {
			t.Fatalf("expected default remote weekly limit 2, got %d", cfg.RemoteWeeklyLimit)
		}
		if cfg.VouchersPerDay != 8 {
			t.Fatalf("expected default voucher rate 8, got %d", cfg.VouchersPerDay)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		for _, key := range []string{
			"LEAVEDESK_SESSION_SECRET",
			"LEAVEDESK_HTTP_PORT",
			"LEAVEDESK_SQLITE_DSN",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "必須の環境変数が設定されていません: LEAVEDESK_SESSION_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("LEAVEDESK_SESSION_SECRET", "secret-value")
		t.Setenv("LEAVEDESK_HTTP_PORT", "9090")
		t.Setenv("LEAVEDESK_SQLITE_DSN", "file:/tmp/leavedesk.db")
		t.Setenv("LEAVEDESK_SESSION_TTL", "12h")
		t.Setenv("LEAVEDESK_REMOTE_WEEKLY_LIMIT", "3")
		t.Setenv("LEAVEDESK_VOUCHERS_PER_DAY", "5")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.RemoteWeeklyLimit != 3 {
			t.Fatalf("expected remote weekly limit 3, got %d", cfg.RemoteWeeklyLimit)
		}
		if cfg.VouchersPerDay != 5 {
			t.Fatalf("expected voucher rate 5, got %d", cfg.VouchersPerDay)
		}
	})

	t.Run("rejects zero quota and voucher rates", func(t *testing.T) {
		t.Setenv("LEAVEDESK_SESSION_SECRET", "secret-value")
		t.Setenv("LEAVEDESK_REMOTE_WEEKLY_LIMIT", "0")
		t.Setenv("LEAVEDESK_VOUCHERS_PER_DAY", "0")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for zero overrides")
		}
		expected := "環境変数の値が不正です: LEAVEDESK_REMOTE_WEEKLY_LIMIT, LEAVEDESK_VOUCHERS_PER_DAY"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("rejects malformed numeric values", func(t *testing.T) {
		t.Setenv("LEAVEDESK_SESSION_SECRET", "secret-value")
		t.Setenv("LEAVEDESK_HTTP_PORT", "not-a-port")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed port")
		}
		expected := "環境変数の値が不正です: LEAVEDESK_HTTP_PORT"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}
