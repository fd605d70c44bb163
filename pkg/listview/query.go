package listview

import (
	"maps"
	"net/url"
	"strconv"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Query is the full parameter set of one list request.
//
// Search holds the settled (debounced) search text, never the raw input.
type Query struct {
	Search        string
	StartDate     string
	EndDate       string
	Filters       map[string]string
	SortBy        string
	SortDirection string
	Page          int
	PerPage       int
}

// Clone returns a deep copy of q.
func (q Query) Clone() Query {
	q.Filters = maps.Clone(q.Filters)
	return q
}

// Values returns the query string parameters for q. Every parameter is
// present, empty ones included, so equal queries always produce the same
// encoded URL.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("perPage", strconv.Itoa(q.PerPage))
	v.Set("sortBy", q.SortBy)
	v.Set("sortDirection", q.SortDirection)
	v.Set("startDate", q.StartDate)
	v.Set("endDate", q.EndDate)
	v.Set("search", q.Search)
	for key, value := range q.Filters {
		v.Set(key, value)
	}
	return v
}

// Filter returns the value of the filter key, or "".
func (q Query) Filter(key string) string {
	return q.Filters[key]
}
