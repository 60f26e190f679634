package sensor

import (
	"fmt"
	"math"
	"strings"
)

// Page size defaults used when the registry is not configured otherwise.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// sortColumns maps sortable attributes to their SQL columns.
var sortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"ip":         "ip",
	"location":   "location",
	"protocol":   "protocol",
	"model":      "model",
	"enabled":    "enabled",
	"created_at": "created_at",
}

// Order is one sort key of a page request.
type Order struct {
	Field string
	Desc  bool
}

// PageRequest selects a zero-based page of sensors. A zero Size means the
// configured default. Without Sort, storage order is used.
type PageRequest struct {
	Page int
	Size int
	Sort []Order
}

// Page is one page of sensors plus pagination metadata.
type Page struct {
	Sensors    []Sensor `json:"sensors"`
	Page       int      `json:"page"`
	Size       int      `json:"size"`
	Total      int      `json:"total"`
	TotalPages int      `json:"total_pages"`
}

// Offset is the number of records skipped before this page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// normalize applies the size default and cap and rejects negative values,
// pages whose offset would overflow, and unknown sort fields.
func (p PageRequest) normalize(defaultSize, maxSize int) (PageRequest, error) {
	if p.Page < 0 {
		return p, fmt.Errorf("%w: page must not be negative", ErrInvalidPage)
	}
	switch {
	case p.Size < 0:
		return p, fmt.Errorf("%w: size must not be negative", ErrInvalidPage)
	case p.Size == 0:
		p.Size = defaultSize
	case p.Size > maxSize:
		p.Size = maxSize
	}
	if p.Size > 0 && p.Page > math.MaxInt/p.Size {
		return p, fmt.Errorf("%w: page %d is out of range", ErrInvalidPage, p.Page)
	}
	for _, o := range p.Sort {
		if _, ok := sortColumns[o.Field]; !ok {
			return p, fmt.Errorf("%w: unknown field %q", ErrInvalidSort, o.Field)
		}
	}
	return p, nil
}

// ParseSort parses sort parameters of the form "field" or
// "field,asc|desc". Each value contributes one key, in order.
func ParseSort(values []string) ([]Order, error) {
	orders := make([]Order, 0, len(values))
	for _, v := range values {
		field, dir, _ := strings.Cut(strings.TrimSpace(v), ",")
		field = strings.ToLower(strings.TrimSpace(field))
		if _, ok := sortColumns[field]; !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidSort, field)
		}

		o := Order{Field: field}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			o.Desc = true
		default:
			return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidSort, dir)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// newPage assembles the page metadata for a result slice.
func newPage(req PageRequest, sensors []Sensor, total int) *Page {
	if sensors == nil {
		sensors = []Sensor{}
	}
	pages := 0
	if req.Size > 0 {
		pages = (total + req.Size - 1) / req.Size
	}
	return &Page{
		Sensors:    sensors,
		Page:       req.Page,
		Size:       req.Size,
		Total:      total,
		TotalPages: pages,
	}
}
