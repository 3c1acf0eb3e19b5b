package store

import (
	"context"
	"errors"
	"testing"

	"dicekit/internal/fair"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()

	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}
}

func TestSaveAndListRolls(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rolls := []*Roll{
		{Notation: "2D6", Kind: "standard", Result: 8, Detail: "2D6=[3+5]=8"},
		{Notation: "4F", Kind: "fudge", Result: -1, Detail: "4F=[-, 0, +, -]=-1"},
		{Notation: "B2", Kind: "bonus_punish", Result: 37, Detail: "D100=57, B2=[3, 9]=37"},
	}

	for _, roll := range rolls {
		if err := db.SaveRoll(ctx, roll); err != nil {
			t.Fatalf("Failed to save roll %s: %v", roll.Notation, err)
		}
		if roll.ID == "" {
			t.Errorf("Expected an ID to be assigned for %s", roll.Notation)
		}
	}

	listed, err := db.ListRolls(ctx, 10, 0)
	if err != nil {
		t.Fatalf("Failed to list rolls: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("Expected 3 rolls, got %d", len(listed))
	}

	// Most recent first; rowid breaks same-second ties.
	if listed[0].Notation != "B2" {
		t.Errorf("Expected newest roll first, got %s", listed[0].Notation)
	}

	byID := make(map[string]Roll, len(listed))
	for _, roll := range listed {
		if roll.RolledAt.IsZero() {
			t.Errorf("Roll %s has no timestamp", roll.ID)
		}
		byID[roll.ID] = roll
	}
	for _, want := range rolls {
		got, ok := byID[want.ID]
		if !ok {
			t.Fatalf("Saved roll %s missing from listing", want.ID)
		}
		if got.Notation != want.Notation || got.Kind != want.Kind ||
			got.Result != want.Result || got.Detail != want.Detail {
			t.Errorf("Roll %s did not roundtrip: got %+v", want.ID, got)
		}
	}

	page, err := db.ListRolls(ctx, 2, 0)
	if err != nil {
		t.Fatalf("Failed to list page: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("Expected page of 2 rolls, got %d", len(page))
	}
}

func TestSaveRunAndGetRun(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	run := &Run{
		Notation:       "2D6",
		ServerSeed:     "server-seed",
		ClientSeed:     "client-seed",
		NonceStart:     1,
		NonceEnd:       1000,
		TargetOp:       "ge",
		TargetVal:      10,
		HitLimit:       100,
		TimedOut:       true,
		HitCount:       42,
		TotalEvaluated: 1000,
		MinResult:      10,
		MaxResult:      12,
		MeanResult:     "10.93",
		HitRate:        "0.042",
		EngineVersion:  "1.0.0",
	}

	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("Expected an ID to be assigned")
	}
	if want := fair.HashSeed("server-seed"); run.ServerSeedHash != want {
		t.Errorf("Expected seed hash %s, got %s", want, run.ServerSeedHash)
	}

	got, err := db.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}

	if got.Notation != run.Notation {
		t.Errorf("Expected notation %s, got %s", run.Notation, got.Notation)
	}
	if got.ServerSeedHash != run.ServerSeedHash {
		t.Errorf("Expected seed hash %s, got %s", run.ServerSeedHash, got.ServerSeedHash)
	}
	if got.NonceStart != 1 || got.NonceEnd != 1000 {
		t.Errorf("Nonce range did not roundtrip: %d..%d", got.NonceStart, got.NonceEnd)
	}
	if got.TargetOp != "ge" || got.TargetVal != 10 {
		t.Errorf("Target did not roundtrip: %s %d", got.TargetOp, got.TargetVal)
	}
	if !got.TimedOut {
		t.Error("Expected timed out flag to roundtrip")
	}
	if got.HitCount != 42 || got.TotalEvaluated != 1000 {
		t.Errorf("Counters did not roundtrip: %d hits, %d evaluated", got.HitCount, got.TotalEvaluated)
	}
	if got.MinResult != 10 || got.MaxResult != 12 {
		t.Errorf("Result bounds did not roundtrip: %d..%d", got.MinResult, got.MaxResult)
	}
	if got.MeanResult != "10.93" || got.HitRate != "0.042" {
		t.Errorf("Statistics did not roundtrip: mean %s, rate %s", got.MeanResult, got.HitRate)
	}
	if got.CreatedAt.IsZero() {
		t.Error("Expected a creation timestamp")
	}
}

func TestGetRunNotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetRun(context.Background(), "no-such-run"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSaveAndGetHits(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	run := &Run{
		Notation:      "D6",
		ServerSeed:    "s",
		ClientSeed:    "c",
		NonceStart:    1,
		NonceEnd:      100,
		TargetOp:      "eq",
		TargetVal:     6,
		EngineVersion: "1.0.0",
	}
	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}

	hits := []Hit{
		{Nonce: 7, Result: 6, Detail: "D6=6"},
		{Nonce: 19, Result: 6, Detail: "D6=6"},
		{Nonce: 23, Result: 6, Detail: "D6=6"},
		{Nonce: 55, Result: 6, Detail: "D6=6"},
		{Nonce: 81, Result: 6},
	}
	if err := db.SaveHits(ctx, run.ID, hits); err != nil {
		t.Fatalf("Failed to save hits: %v", err)
	}

	all, err := db.GetHits(ctx, run.ID, 100, 0)
	if err != nil {
		t.Fatalf("Failed to get hits: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("Expected 5 hits, got %d", len(all))
	}

	wantNonces := []uint64{7, 19, 23, 55, 81}
	for i, hit := range all {
		if hit.Nonce != wantNonces[i] {
			t.Errorf("Hit %d: expected nonce %d, got %d", i, wantNonces[i], hit.Nonce)
		}
		if hit.RunID != run.ID {
			t.Errorf("Hit %d: expected run ID %s, got %s", i, run.ID, hit.RunID)
		}
	}
	if all[4].Detail != "" {
		t.Errorf("Expected empty detail to roundtrip, got %q", all[4].Detail)
	}

	page, err := db.GetHits(ctx, run.ID, 2, 2)
	if err != nil {
		t.Fatalf("Failed to get hit page: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Expected 2 hits on page, got %d", len(page))
	}
	if page[0].Nonce != 23 || page[1].Nonce != 55 {
		t.Errorf("Expected nonces 23 and 55, got %d and %d", page[0].Nonce, page[1].Nonce)
	}
}

func TestSaveHitsEmpty(t *testing.T) {
	db := newTestDB(t)

	if err := db.SaveHits(context.Background(), "whatever", nil); err != nil {
		t.Errorf("Expected saving no hits to succeed, got %v", err)
	}
}
