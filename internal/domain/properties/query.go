package properties

import (
	"cmp"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"homestay/internal/domain/shared/fault"
)

var (
	ErrInvalidQuery = fault.New(fault.InvalidInput, "properties: invalid search query")
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindTime
	kindList
)

// Filterable fields and their value kinds. Anything else in a query string is ignored.
var filterFields = map[string]fieldKind{
	"name":           kindText,
	"status":         kindText,
	"host_id":        kindText,
	"base_rate":      kindNumber,
	"average_rating": kindNumber,
	"num_reviews":    kindNumber,
	"amenities":      kindList,
	"created_at":     kindTime,
}

// Fields that may be requested through select.
var SelectableFields = []string{
	"id", "host_id", "name", "description", "address", "location", "amenities", "room_types",
	"base_rate", "seasonal_rates", "images", "status", "average_rating", "num_reviews",
	"created_at", "updated_at",
}

var reservedParams = map[string]struct{}{
	"select": {}, "sort": {}, "page": {}, "limit": {}, "location": {},
}

var filterKey = regexp.MustCompile(`^([a-z_]+)(?:\[(gt|gte|lt|lte|in)\])?$`)

type Filter struct {
	Field  string
	Op     Operator
	Values []any
}

type SortField struct {
	Field string
	Desc  bool
}

// Query is a parsed catalog search.
type Query struct {
	Filters  []Filter
	Location string
	Select   []string
	Sort     []SortField
	Page     int
	Limit    int
}

type SearchResult struct {
	Items []*Property
	Total int
}

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// ParseQuery reads filters, projection, ordering and paging from URL parameters.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{Page: 1, Limit: DefaultLimit}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if _, reserved := reservedParams[key]; reserved {
			continue
		}
		m := filterKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		kind, ok := filterFields[m[1]]
		if !ok {
			continue
		}
		op := Operator(m[2])
		if op == "" {
			op = OpEq
		}
		raw := strings.TrimSpace(values.Get(key))
		if raw == "" {
			continue
		}
		filter, err := buildFilter(m[1], kind, op, raw)
		if err != nil {
			return Query{}, err
		}
		q.Filters = append(q.Filters, filter)
	}

	q.Location = strings.TrimSpace(values.Get("location"))
	q.Select = parseSelect(values.Get("select"))
	q.Sort = parseSort(values.Get("sort"))

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return Query{}, fault.Wrap(fault.InvalidInput, "properties: page must be a positive integer", err)
		}
		q.Page = page
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return Query{}, fault.Wrap(fault.InvalidInput, "properties: limit must be a positive integer", err)
		}
		q.Limit = min(limit, MaxLimit)
	}
	return q, nil
}

func buildFilter(field string, kind fieldKind, op Operator, raw string) (Filter, error) {
	parts := []string{raw}
	if op == OpIn {
		parts = splitList(raw)
	}
	if kind == kindList && op != OpEq && op != OpIn {
		return Filter{}, fault.New(fault.InvalidInput, "properties: "+field+" supports only equality and in")
	}
	if kind == kindText && op != OpEq && op != OpIn {
		return Filter{}, fault.New(fault.InvalidInput, "properties: "+field+" supports only equality and in")
	}
	filter := Filter{Field: field, Op: op}
	for _, part := range parts {
		v, err := parseValue(kind, part)
		if err != nil {
			return Filter{}, fault.Wrap(fault.InvalidInput, "properties: invalid value for "+field, err)
		}
		if field == "status" || kind == kindList {
			v = strings.ToLower(v.(string))
		}
		filter.Values = append(filter.Values, v)
	}
	if len(filter.Values) == 0 {
		return Filter{}, ErrInvalidQuery
	}
	return filter, nil
}

func parseValue(kind fieldKind, raw string) (any, error) {
	switch kind {
	case kindNumber:
		return strconv.ParseFloat(raw, 64)
	case kindTime:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.UTC(), nil
		}
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, err
		}
		return t.UTC(), nil
	default:
		return raw, nil
	}
}

func parseSelect(raw string) []string {
	var out []string
	for _, field := range splitList(raw) {
		if slices.Contains(SelectableFields, field) && !slices.Contains(out, field) {
			out = append(out, field)
		}
	}
	return out
}

func parseSort(raw string) []SortField {
	var out []SortField
	for _, token := range splitList(raw) {
		desc := strings.HasPrefix(token, "-")
		field := strings.TrimPrefix(token, "-")
		kind, ok := filterFields[field]
		if !ok || kind == kindList {
			continue
		}
		out = append(out, SortField{Field: field, Desc: desc})
	}
	if len(out) == 0 {
		out = []SortField{{Field: "created_at", Desc: true}}
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Paginate describes the neighbouring pages for a result of total matches.
func (q Query) Paginate(total int) Pagination {
	var p Pagination
	if q.Page*q.Limit < total {
		p.Next = &PageRef{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.Page > 1 {
		p.Prev = &PageRef{Page: q.Page - 1, Limit: q.Limit}
	}
	return p
}

// Matches evaluates the query predicate against a property in memory.
func (q Query) Matches(p *Property) bool {
	if q.Location != "" && !strings.Contains(strings.ToLower(p.Address), strings.ToLower(q.Location)) {
		return false
	}
	for _, f := range q.Filters {
		if !f.matches(p) {
			return false
		}
	}
	return true
}

func (f Filter) matches(p *Property) bool {
	if filterFields[f.Field] == kindList {
		for _, want := range f.Values {
			if slices.Contains(p.Amenities, want.(string)) {
				return true
			}
		}
		return false
	}
	actual := FieldValue(p, f.Field)
	for _, want := range f.Values {
		c, ok := compareValues(actual, want)
		if !ok {
			return false
		}
		switch f.Op {
		case OpEq, OpIn:
			if c == 0 {
				return true
			}
		case OpGt:
			return c > 0
		case OpGte:
			return c >= 0
		case OpLt:
			return c < 0
		case OpLte:
			return c <= 0
		}
	}
	return false
}

// Compare orders two properties by the query's sort fields, falling back to ID.
func (q Query) Compare(a, b *Property) int {
	for _, s := range q.Sort {
		c, _ := compareValues(FieldValue(a, s.Field), FieldValue(b, s.Field))
		if c == 0 {
			continue
		}
		if s.Desc {
			return -c
		}
		return c
	}
	return strings.Compare(string(a.ID), string(b.ID))
}

// FieldValue returns the comparable value of a filterable field.
func FieldValue(p *Property, field string) any {
	switch field {
	case "name":
		return p.Name
	case "status":
		return string(p.Status)
	case "host_id":
		return string(p.HostID)
	case "base_rate":
		return float64(p.BaseRate.Amount)
	case "average_rating":
		return p.AverageRating
	case "num_reviews":
		return float64(p.NumReviews)
	case "created_at":
		return p.CreatedAt
	case "amenities":
		return p.Amenities
	default:
		return nil
	}
}

func compareValues(a, b any) (int, bool) {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return strings.Compare(av, bv), ok
	case float64:
		bv, ok := b.(float64)
		return cmp.Compare(av, bv), ok
	case time.Time:
		bv, ok := b.(time.Time)
		return av.Compare(bv), ok
	default:
		return 0, false
	}
}
