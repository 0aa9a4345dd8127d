package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryConstantStoreGetManyOmitsAbsentCodes(t *testing.T) {
	s := NewMemoryConstantStore(map[string]interface{}{"RATE_LIMIT": 0.05})
	s.Set("MAX_TERM", 360)

	got, err := s.GetMany(context.Background(), []string{"RATE_LIMIT", "MAX_TERM", "UNKNOWN"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetMany() = %v, want 2 entries (UNKNOWN omitted)", got)
	}
	if got["RATE_LIMIT"] != 0.05 {
		t.Errorf("RATE_LIMIT = %v, want 0.05", got["RATE_LIMIT"])
	}
}

func TestMemoryConstantStoreConstructorCopiesInput(t *testing.T) {
	seed := map[string]interface{}{"A": 1}
	s := NewMemoryConstantStore(seed)
	seed["A"] = 2
	got, _ := s.GetMany(context.Background(), []string{"A"})
	if got["A"] != 1 {
		t.Errorf("store observed mutation of caller's map: A = %v, want 1", got["A"])
	}
}

func TestMemoryRuleStoreGetByCode(t *testing.T) {
	s := NewMemoryRuleStore(map[string]string{"credit_tier": "name: credit_tier\n"})
	text, ok, err := s.GetByCode(context.Background(), "credit_tier")
	if err != nil || !ok {
		t.Fatalf("GetByCode() = %q, %v, %v", text, ok, err)
	}
	if _, ok, _ := s.GetByCode(context.Background(), "missing"); ok {
		t.Error("GetByCode(missing) ok = true, want false")
	}
}

func writeRuleFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
}

func TestFileRuleStoreLoadsAtStartup(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "credit_tier.yaml", "name: credit_tier\n")
	writeRuleFile(t, dir, "notes.txt", "not a rule\n")

	s, err := NewFileRuleStore(dir, "", nil)
	if err != nil {
		t.Fatalf("NewFileRuleStore: %v", err)
	}
	defer s.Close()

	text, ok, err := s.GetByCode(context.Background(), "credit_tier")
	if err != nil || !ok {
		t.Fatalf("GetByCode(credit_tier) = %q, %v, %v", text, ok, err)
	}
	if _, ok, _ := s.GetByCode(context.Background(), "notes"); ok {
		t.Error("non-YAML file should not be loaded as a rule")
	}
}

func TestFileRuleStorePicksUpNewFileOnRescan(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileRuleStore(dir, "", nil)
	if err != nil {
		t.Fatalf("NewFileRuleStore: %v", err)
	}
	defer s.Close()

	if _, ok, _ := s.GetByCode(context.Background(), "debt_to_income"); ok {
		t.Fatal("rule should not exist before the file is written")
	}

	writeRuleFile(t, dir, "debt_to_income.yml", "name: debt_to_income\n")
	if err := s.rescan(); err != nil {
		t.Fatalf("rescan: %v", err)
	}

	text, ok, err := s.GetByCode(context.Background(), "debt_to_income")
	if err != nil || !ok {
		t.Fatalf("GetByCode(debt_to_income) = %q, %v, %v", text, ok, err)
	}
}

func TestFileRuleStoreDefensiveRescanOnCronSchedule(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileRuleStore(dir, "@every 20ms", nil)
	if err != nil {
		t.Fatalf("NewFileRuleStore: %v", err)
	}
	defer s.Close()

	writeRuleFile(t, dir, "aba_checksum.yaml", "name: aba_checksum\n")

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok, _ := s.GetByCode(context.Background(), "aba_checksum"); ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("defensive cron rescan never picked up the new rule file")
}

func TestSQLiteConstantStoreRoundTrips(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "constants.db")
	s, err := NewSQLiteConstantStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteConstantStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Set(ctx, "RATE_LIMIT", 0.0525); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.GetMany(ctx, []string{"RATE_LIMIT", "MISSING"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if got["RATE_LIMIT"] != 0.0525 {
		t.Errorf("RATE_LIMIT = %v, want 0.0525", got["RATE_LIMIT"])
	}
	if _, ok := got["MISSING"]; ok {
		t.Error("MISSING should be omitted, not present")
	}
}

func TestSQLiteRuleStoreRoundTrips(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rules.db")
	s, err := NewSQLiteRuleStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRuleStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Set(ctx, "credit_tier", "name: credit_tier\n"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	text, ok, err := s.GetByCode(ctx, "credit_tier")
	if err != nil || !ok || text != "name: credit_tier\n" {
		t.Fatalf("GetByCode() = %q, %v, %v", text, ok, err)
	}

	if err := s.Set(ctx, "credit_tier", "name: credit_tier\nversion: 2\n"); err != nil {
		t.Fatalf("Set (update): %v", err)
	}
	text, _, _ = s.GetByCode(ctx, "credit_tier")
	if text != "name: credit_tier\nversion: 2\n" {
		t.Errorf("GetByCode() after update = %q, want updated source", text)
	}
}
