package product

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	domainProduct "product-catalog/internal/domain/product"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*MaxPageSize within int range.
	MaxPage = math.MaxInt32
)

// listColumns whitelists listing columns, camelCase aliases included.
var listColumns = map[string]string{
	"id":          "id",
	"title":       "title",
	"description": "description",
	"price":       "price",
	"image":       "image",
	"imagePath":   "image",
	"image_path":  "image",
	"created_at":  "created_at",
	"createdAt":   "created_at",
	"updated_at":  "updated_at",
	"updatedAt":   "updated_at",
}

type listParams struct {
	PageSize any `json:"pageSize"`
	Keyword  any `json:"keyword"`
	Current  any `json:"current"`
}

type columnMeta struct {
	DataIndex string `json:"dataIndex"`
	Search    any    `json:"search"`
}

// ParseListQuery turns the raw widget parameters into a repository filter.
// Malformed parts fall back to their defaults: page 1, DefaultPageSize rows,
// created_at descending and no keyword filter.
func ParseListQuery(ownerUserID int64, q *ListQuery) *domainProduct.Filter {
	filter := &domainProduct.Filter{
		OwnerUserID: ownerUserID,
		SortBy:      "created_at",
		SortOrder:   domainProduct.SortDesc,
		Page:        1,
		PageSize:    DefaultPageSize,
	}

	var params listParams
	if strings.TrimSpace(q.Params) != "" {
		_ = json.Unmarshal([]byte(q.Params), &params)
	}

	if size, ok := toInt(params.PageSize); ok && size > 0 {
		filter.PageSize = min(size, MaxPageSize)
	}

	if page, ok := toInt(q.Page); ok {
		filter.Page = page
	} else if page, ok := toInt(params.Current); ok {
		filter.Page = page
	}
	filter.Page = min(max(filter.Page, 1), MaxPage)

	if column, order, ok := lastSortPair(q.Sorter); ok {
		if name, known := listColumns[column]; known {
			filter.SortBy = name
			filter.SortOrder = domainProduct.SortDesc
			if order == "ascend" {
				filter.SortOrder = domainProduct.SortAsc
			}
		}
	}

	if params.Keyword != nil {
		filter.Keyword = strings.TrimSpace(fmt.Sprint(params.Keyword))
	}
	if filter.Keyword != "" {
		filter.SearchColumns = searchColumns(q.Columns)
	}

	return filter
}

// lastSortPair returns the last {column: order} pair of a sorter object,
// keeping document order.
func lastSortPair(raw string) (column, order string, ok bool) {
	if strings.TrimSpace(raw) == "" {
		return "", "", false
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return "", "", false
	}
	if delim, isDelim := tok.(json.Delim); !isDelim || delim != '{' {
		return "", "", false
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return "", "", false
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return "", "", false
		}
		column, _ = keyTok.(string)
		order, _ = value.(string)
		ok = true
	}
	return column, order, ok
}

func searchColumns(raw []string) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, c := range raw {
		var meta columnMeta
		if err := json.Unmarshal([]byte(c), &meta); err != nil {
			continue
		}
		if search, _ := meta.Search.(bool); !search {
			continue
		}
		name, known := listColumns[meta.DataIndex]
		if !known || seen[name] {
			continue
		}
		seen[name] = true
		cols = append(cols, name)
	}
	return cols
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return int(max(min(n, math.MaxInt32), math.MinInt32)), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		return int(max(min(i, math.MaxInt32), math.MinInt32)), true
	}
	return 0, false
}
