package handler

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		total       int64
		wantPages   int
		wantNext    bool
		wantPrev    bool
	}{
		{"first of many", 1, 20, 95, 5, true, false},
		{"middle page", 3, 20, 95, 5, true, true},
		{"last page", 5, 20, 95, 5, false, true},
		{"exact fit", 2, 10, 20, 2, false, true},
		{"empty result", 1, 20, 0, 0, false, false},
		{"single page", 1, 20, 7, 1, false, false},
	}
	for _, tc := range tests {
		p := NewPagination(tc.page, tc.limit, tc.total)
		if p.TotalPages != tc.wantPages {
			t.Errorf("%s: totalPages = %d, want %d", tc.name, p.TotalPages, tc.wantPages)
		}
		if p.HasNext != tc.wantNext {
			t.Errorf("%s: hasNext = %v, want %v", tc.name, p.HasNext, tc.wantNext)
		}
		if p.HasPrev != tc.wantPrev {
			t.Errorf("%s: hasPrev = %v, want %v", tc.name, p.HasPrev, tc.wantPrev)
		}
		if p.Total != tc.total || p.Page != tc.page || p.Limit != tc.limit {
			t.Errorf("%s: echo fields wrong: %+v", tc.name, p)
		}
	}
}
