package videoquery

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestBuildDefaults(t *testing.T) {
	q, err := Build(ListParams{})
	if err != nil {
		t.Fatalf("build with empty params: %v", err)
	}

	if q.Page != DefaultPage || q.Limit != DefaultLimit {
		t.Fatalf("expected defaults page=%d limit=%d, got page=%d limit=%d", DefaultPage, DefaultLimit, q.Page, q.Limit)
	}
	if q.Offset != 0 {
		t.Fatalf("expected zero offset on first page, got %d", q.Offset)
	}
	if q.SortColumn != "created_at" || q.SortAscending {
		t.Fatalf("expected default created_at descending, got %s ascending=%v", q.SortColumn, q.SortAscending)
	}
	if q.Search != "" || q.OwnerID != "" {
		t.Fatalf("expected no filters, got search=%q owner=%q", q.Search, q.OwnerID)
	}
}

func TestBuildComputesOffset(t *testing.T) {
	q, err := Build(ListParams{Page: "3", Limit: "20"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if q.Offset != 40 {
		t.Fatalf("expected offset 40 for page 3 limit 20, got %d", q.Offset)
	}
}

func TestBuildRejectsBadPageAndLimit(t *testing.T) {
	cases := []ListParams{
		{Page: "0"},
		{Page: "-2"},
		{Page: "abc"},
		{Limit: "0"},
		{Limit: "-1"},
		{Limit: "ten"},
	}

	for _, params := range cases {
		if _, err := Build(params); !errors.Is(err, ErrInvalidQuery) {
			t.Fatalf("expected ErrInvalidQuery for %+v, got %v", params, err)
		}
	}
}

func TestBuildCapsLimit(t *testing.T) {
	q, err := Build(ListParams{Limit: "5000"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if q.Limit != MaxLimit {
		t.Fatalf("expected limit capped at %d, got %d", MaxLimit, q.Limit)
	}
}

func TestBuildSortDirection(t *testing.T) {
	asc, err := Build(ListParams{SortBy: "views", SortType: "asc"})
	if err != nil {
		t.Fatalf("build ascending: %v", err)
	}
	if asc.SortColumn != "views" || !asc.SortAscending {
		t.Fatalf("expected ascending views sort, got %+v", asc)
	}

	for _, sortType := range []string{"desc", "DESC", "banana", ""} {
		q, err := Build(ListParams{SortBy: "duration", SortType: sortType})
		if err != nil {
			t.Fatalf("build with sortType %q: %v", sortType, err)
		}
		if q.SortColumn != "duration_seconds" || q.SortAscending {
			t.Fatalf("expected descending duration sort for sortType %q, got %+v", sortType, q)
		}
	}
}

func TestBuildRejectsUnknownSortField(t *testing.T) {
	if _, err := Build(ListParams{SortBy: "password_hash"}); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery for unlisted sort field, got %v", err)
	}
}

func TestBuildOwnerFilter(t *testing.T) {
	ownerID := uuid.NewString()
	q, err := Build(ListParams{UserID: ownerID})
	if err != nil {
		t.Fatalf("build with owner filter: %v", err)
	}
	if q.OwnerID != ownerID {
		t.Fatalf("expected owner filter %s, got %s", ownerID, q.OwnerID)
	}

	if _, err := Build(ListParams{UserID: "not-a-uuid"}); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery for malformed owner id, got %v", err)
	}
}

func TestBuildTrimsSearch(t *testing.T) {
	q, err := Build(ListParams{Query: "  gophers  "})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if q.Search != "gophers" {
		t.Fatalf("expected trimmed search term, got %q", q.Search)
	}
}
