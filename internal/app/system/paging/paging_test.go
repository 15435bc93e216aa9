package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		target string
		want   int
	}{
		{"/", 1},
		{"/?page=3", 3},
		{"/?page=0", 1},
		{"/?page=-2", 1},
		{"/?page=abc", 1},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.target, nil)
		if got := ParsePage(r); got != tt.want {
			t.Errorf("ParsePage(%q) = %d, want %d", tt.target, got, tt.want)
		}
	}
}

func TestSkip(t *testing.T) {
	if got := Skip(1, PageSize); got != 0 {
		t.Errorf("Skip(1) = %d, want 0", got)
	}
	if got := Skip(3, 10); got != 20 {
		t.Errorf("Skip(3, 10) = %d, want 20", got)
	}
	if got := Skip(0, 10); got != 0 {
		t.Errorf("Skip(0, 10) = %d, want 0", got)
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		total int64
		want  Result
	}{
		{"empty", 1, 0, Result{Page: 1, TotalPages: 1}},
		{"exactly one page", 1, 50, Result{Page: 1, TotalPages: 1, Total: 50}},
		{"first of two", 1, 51, Result{Page: 1, TotalPages: 2, Total: 51, HasNext: true}},
		{"last of two", 2, 51, Result{Page: 2, TotalPages: 2, Total: 51, HasPrev: true}},
		{"past the end", 5, 51, Result{Page: 5, TotalPages: 2, Total: 51, HasPrev: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.page, PageSize, tt.total); got != tt.want {
				t.Errorf("Compute() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
