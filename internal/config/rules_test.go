package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAlertRules(t *testing.T) {
	tmpDir := t.TempDir()

	writeRules := func(t *testing.T, name, content string) string {
		t.Helper()
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write rules file: %v", err)
		}
		return path
	}

	t.Run("empty path returns defaults", func(t *testing.T) {
		rules, err := LoadAlertRules("")
		if err != nil {
			t.Fatalf("LoadAlertRules() error = %v", err)
		}
		if rules != DefaultAlertRules() {
			t.Errorf("LoadAlertRules() = %+v, want defaults", rules)
		}
	})

	t.Run("file overrides provided fields only", func(t *testing.T) {
		path := writeRules(t, "partial.yaml", "large_transaction_threshold: 500\ndedup_window_hours: 6\n")

		rules, err := LoadAlertRules(path)
		if err != nil {
			t.Fatalf("LoadAlertRules() error = %v", err)
		}
		if rules.LargeTransactionThreshold != 500 {
			t.Errorf("LargeTransactionThreshold = %v, want 500", rules.LargeTransactionThreshold)
		}
		if rules.DedupWindowHours != 6 {
			t.Errorf("DedupWindowHours = %v, want 6", rules.DedupWindowHours)
		}
		if rules.BudgetWarnPercent != 90 {
			t.Errorf("BudgetWarnPercent = %v, want default 90", rules.BudgetWarnPercent)
		}
		if rules.CleanupAgeDays != 30 {
			t.Errorf("CleanupAgeDays = %v, want default 30", rules.CleanupAgeDays)
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		if _, err := LoadAlertRules(filepath.Join(tmpDir, "nope.yaml")); err == nil {
			t.Error("LoadAlertRules() expected error for missing file")
		}
	})

	t.Run("invalid yaml fails and keeps defaults", func(t *testing.T) {
		path := writeRules(t, "broken.yaml", "large_transaction_threshold: [not a number\n")

		rules, err := LoadAlertRules(path)
		if err == nil {
			t.Fatal("LoadAlertRules() expected error for invalid yaml")
		}
		if rules != DefaultAlertRules() {
			t.Errorf("LoadAlertRules() = %+v, want defaults after parse failure", rules)
		}
	})

	t.Run("out of range value fails and keeps defaults", func(t *testing.T) {
		path := writeRules(t, "range.yaml", "low_balance_percent: 150\n")

		rules, err := LoadAlertRules(path)
		if err == nil {
			t.Fatal("LoadAlertRules() expected error for out of range value")
		}
		if rules != DefaultAlertRules() {
			t.Errorf("LoadAlertRules() = %+v, want defaults after validation failure", rules)
		}
	})
}

func TestAlertRulesDurations(t *testing.T) {
	rules := DefaultAlertRules()

	if rules.DedupWindow() != 24*time.Hour {
		t.Errorf("DedupWindow() = %v, want 24h", rules.DedupWindow())
	}
	if rules.CleanupAge() != 30*24*time.Hour {
		t.Errorf("CleanupAge() = %v, want 720h", rules.CleanupAge())
	}
}
