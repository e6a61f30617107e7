package shared

import "testing"

func TestPagination(t *testing.T) {
	p := NewPagination(2, 25, 60)
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 pages got %d", p.TotalPages)
	}
	if p.Offset() != 25 {
		t.Fatalf("expected offset 25 got %d", p.Offset())
	}
	if !p.HasPrev() || !p.HasNext() {
		t.Fatalf("middle page should have both neighbours")
	}
	if p.PrevPage() != 1 || p.NextPage() != 3 {
		t.Fatalf("unexpected neighbours %d/%d", p.PrevPage(), p.NextPage())
	}
}

func TestPaginationClampsInput(t *testing.T) {
	p := NewPagination(0, 0, 10)
	if p.Page != 1 || p.PerPage != 25 {
		t.Fatalf("expected defaults, got page %d per %d", p.Page, p.PerPage)
	}
	if p.PrevPage() != 1 {
		t.Fatalf("prev page must clamp at 1")
	}
	if p.NextPage() != p.TotalPages {
		t.Fatalf("next page must clamp at the last page")
	}
}
