package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ledger/internal/core"
)

func input(date, category string, amount float64) core.TransactionInput {
	return core.TransactionInput{Date: date, Category: category, Description: "d", Amount: core.NewAmount(amount)}
}

func TestMemoryStoreCreateAndList(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.Create(ctx, input("2024-01-10", "Food", -5))
	if err != nil || first.ID != 1 {
		t.Fatalf("unexpected create: tx=%+v err=%v", first, err)
	}
	second, _ := s.Create(ctx, input("2024-02-10", "Rent", -800))
	if second.ID != 2 {
		t.Fatalf("ids not sequential: %d", second.ID)
	}

	all, _ := s.List(ctx, core.Filter{})
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 2 {
		t.Fatalf("unexpected list order: %+v", all)
	}

	food, _ := s.List(ctx, core.Filter{Category: "food"})
	if len(food) != 1 || food[0].Category != "Food" {
		t.Fatalf("category filter: %+v", food)
	}

	feb, _ := s.List(ctx, core.Filter{StartDate: "2024-02-01", EndDate: "2024-02-10"})
	if len(feb) != 1 || feb[0].ID != 2 {
		t.Fatalf("date filter should be inclusive: %+v", feb)
	}
}

func TestMemoryStoreRejectsBadDate(t *testing.T) {
	_, err := New().Create(context.Background(), input("10/01/2024", "Food", 1))
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("want ErrInvalidDate, got %v", err)
	}
}

func TestMemoryStorePatchAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	tx, _ := s.Create(ctx, input("2024-01-10", "Food", -5))

	desc := "groceries"
	got, err := s.Patch(ctx, tx.ID, core.TransactionPatch{Description: &desc})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got.Description != "groceries" || got.Category != "Food" || got.Amount.Format() != "-5.00" {
		t.Fatalf("partial patch changed other fields: %+v", got)
	}

	bad := "2024-13-01"
	if _, err := s.Patch(ctx, tx.ID, core.TransactionPatch{Date: &bad}); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("want ErrInvalidDate, got %v", err)
	}
	if _, err := s.Patch(ctx, 99, core.TransactionPatch{}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	if err := s.Delete(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
	if _, err := s.Get(ctx, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get after delete: want ErrNotFound, got %v", err)
	}
}

func TestNewFromFilePersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "data.json")

	s := NewFromFile(path, nil)
	if _, err := s.Create(ctx, input("2024-01-10", "Food", -5)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, input("2024-01-11", "Salary", 1000)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	reloaded := NewFromFile(path, nil)
	all, _ := reloaded.List(ctx, core.Filter{})
	if len(all) != 1 || all[0].ID != 2 || all[0].Amount.Format() != "1000.00" {
		t.Fatalf("unexpected reloaded ledger: %+v", all)
	}

	// Ids keep increasing after a reload.
	tx, _ := reloaded.Create(ctx, input("2024-01-12", "Food", -1))
	if tx.ID != 3 {
		t.Fatalf("next id = %d, want 3", tx.ID)
	}
}

func TestNewFromFileCorruptOrEmpty(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) string {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	for _, path := range []string{
		mustWrite("empty.json", "  \n"),
		mustWrite("corrupt.json", "{not json"),
		filepath.Join(dir, "missing.json"),
	} {
		s := NewFromFile(path, nil)
		all, _ := s.List(context.Background(), core.Filter{})
		if len(all) != 0 {
			t.Fatalf("%s: expected empty ledger, got %+v", path, all)
		}
	}
}
