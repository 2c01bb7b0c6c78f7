package repository

import (
	"testing"
	"time"
)

func TestBuilderEmpty(t *testing.T) {
	b := &Builder{}
	if got := b.WhereSQL(); got != "" {
		t.Fatalf("WhereSQL() = %q, want empty", got)
	}
	if len(b.Args()) != 0 {
		t.Fatalf("Args() = %v, want empty", b.Args())
	}
}

func TestBuilderNumbersPlaceholdersInOrder(t *testing.T) {
	b := &Builder{}
	b.Where("p.category_id = ?", 3)
	b.Where("p.is_active = ?", true)
	b.Where("(LOWER(p.name) LIKE ? OR LOWER(p.reference) LIKE ?)", "%riz%", "%riz%")

	want := "WHERE p.category_id = $1 AND p.is_active = $2 AND (LOWER(p.name) LIKE $3 OR LOWER(p.reference) LIKE $4)"
	if got := b.WhereSQL(); got != want {
		t.Fatalf("WhereSQL() = %q, want %q", got, want)
	}
	args := b.Args()
	if len(args) != 4 {
		t.Fatalf("len(args) = %d, want 4", len(args))
	}
	if args[0] != 3 || args[1] != true || args[2] != "%riz%" {
		t.Fatalf("args = %v", args)
	}
}

func TestBuilderSuffixContinuesNumbering(t *testing.T) {
	b := &Builder{}
	b.Where("o.user_id = ?", uint64(9))
	tail := b.Suffix("ORDER BY o.created_at DESC LIMIT ? OFFSET ?", 20, 40)

	want := "ORDER BY o.created_at DESC LIMIT $2 OFFSET $3"
	if tail != want {
		t.Fatalf("Suffix() = %q, want %q", tail, want)
	}
	args := b.Args()
	if len(args) != 3 || args[1] != 20 || args[2] != 40 {
		t.Fatalf("args = %v", args)
	}
}

func TestBuilderSuffixWithoutWhere(t *testing.T) {
	b := &Builder{}
	tail := b.Suffix("LIMIT ? OFFSET ?", 10, 0)
	if tail != "LIMIT $1 OFFSET $2" {
		t.Fatalf("Suffix() = %q", tail)
	}
}

func TestFormatOrderNumber(t *testing.T) {
	now := time.Date(2025, time.March, 7, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		seq  int64
		want string
	}{
		{1, "CMD-20250307-0001"},
		{42, "CMD-20250307-0042"},
		{9999, "CMD-20250307-9999"},
		{12345, "CMD-20250307-12345"}, // padding grows past 4 digits
	}
	for _, tc := range tests {
		if got := FormatOrderNumber(now, tc.seq); got != tc.want {
			t.Errorf("FormatOrderNumber(seq=%d) = %q, want %q", tc.seq, got, tc.want)
		}
	}
}
