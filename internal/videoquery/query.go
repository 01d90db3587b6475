package videoquery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidQuery indicates the caller supplied malformed listing parameters.
var ErrInvalidQuery = errors.New("invalid video query")

const (
	// DefaultPage is used when the caller omits the page parameter.
	DefaultPage = 1
	// DefaultLimit is used when the caller omits the limit parameter.
	DefaultLimit = 10
	// MaxLimit caps the page size a caller may request.
	MaxLimit = 100
)

// sortColumns whitelists the fields a listing may sort on. Values are the
// actual store columns, so a raw sortBy string never reaches the SQL layer.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"title":     "title",
	"duration":  "duration_seconds",
	"views":     "views",
}

// ListParams carries the raw, unvalidated query-string values of a listing
// request.
type ListParams struct {
	Page     string
	Limit    string
	Query    string
	SortBy   string
	SortType string
	UserID   string
}

// ListQuery is the validated filter/sort/pagination specification handed to
// the store.
type ListQuery struct {
	Search        string
	OwnerID       string
	SortColumn    string
	SortAscending bool
	Page          int
	Limit         int
	Offset        int
}

// Build validates raw listing parameters and produces the query spec.
//
// Page and limit default to 1 and 10; non-numeric or non-positive values are
// rejected. A sortType of "asc" selects ascending order, any other value
// (including absent) selects descending. When sortBy is absent results are
// ordered by creation time, newest first. An owner filter must be a
// well-formed identifier.
func Build(p ListParams) (ListQuery, error) {
	page, err := positiveInt(p.Page, "page", DefaultPage)
	if err != nil {
		return ListQuery{}, err
	}

	limit, err := positiveInt(p.Limit, "limit", DefaultLimit)
	if err != nil {
		return ListQuery{}, err
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	q := ListQuery{
		Search:        strings.TrimSpace(p.Query),
		SortColumn:    "created_at",
		SortAscending: false,
		Page:          page,
		Limit:         limit,
		Offset:        (page - 1) * limit,
	}

	if sortBy := strings.TrimSpace(p.SortBy); sortBy != "" {
		column, ok := sortColumns[sortBy]
		if !ok {
			return ListQuery{}, fmt.Errorf("%w: unknown sort field %q", ErrInvalidQuery, sortBy)
		}
		q.SortColumn = column
		q.SortAscending = strings.EqualFold(strings.TrimSpace(p.SortType), "asc")
	}

	if ownerID := strings.TrimSpace(p.UserID); ownerID != "" {
		if _, err := uuid.Parse(ownerID); err != nil {
			return ListQuery{}, fmt.Errorf("%w: malformed owner id %q", ErrInvalidQuery, ownerID)
		}
		q.OwnerID = ownerID
	}

	return q, nil
}

func positiveInt(raw, name string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidQuery, name)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidQuery, name)
	}

	return value, nil
}
