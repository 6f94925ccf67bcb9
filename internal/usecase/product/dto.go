package product

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	domainProduct "product-catalog/internal/domain/product"
	"product-catalog/internal/storage"
)

// ListQuery carries the raw listing parameters of a table widget.
type ListQuery struct {
	Params  string   `form:"params"`
	Sorter  string   `form:"sorter"`
	Columns []string `form:"columns[]"`
	Page    string   `form:"page"`
}

func (q *ListQuery) Lookup(field string) (any, bool) {
	switch field {
	case "params":
		return q.Params, true
	case "sorter":
		return q.Sorter, true
	case "page":
		return q.Page, true
	}
	if i, ok := strings.CutPrefix(field, "columns."); ok {
		n, err := strconv.Atoi(i)
		if err == nil && n >= 0 && n < len(q.Columns) {
			return q.Columns[n], true
		}
	}
	return nil, false
}

// StoreRequest creates a product, or updates it when ID is set.
type StoreRequest struct {
	ID          string        `form:"id"`
	Title       string        `form:"title"`
	Description string        `form:"description"`
	Price       string        `form:"price"`
	Image       *storage.File `form:"-"`
}

func (r *StoreRequest) Lookup(field string) (any, bool) {
	switch field {
	case "id":
		return r.ID, true
	case "title":
		return r.Title, true
	case "description":
		return r.Description, true
	case "price":
		return r.Price, true
	case "image":
		if r.Image == nil {
			return nil, true
		}
		return r.Image, true
	}
	return nil, false
}

// IDList accepts ids as JSON numbers or strings.
type IDList []int64

func (l *IDList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ids := make(IDList, 0, len(raw))
	for _, item := range raw {
		text := string(item)
		var s string
		if json.Unmarshal(item, &s) == nil {
			text = s
		}
		id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %s", item)
		}
		ids = append(ids, id)
	}
	*l = ids
	return nil
}

// ParseIDList reads ids from a comma separated query value.
func ParseIDList(values []string) (IDList, error) {
	var ids IDList
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type DeleteRequest struct {
	IDs IDList `json:"ids"`
}

type ProductResponse struct {
	ID          int64     `json:"id,string"`
	UserID      int64     `json:"user_id,string"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PageResponse is one page of a listing with its paginator metadata.
// From and To are null for an empty page.
type PageResponse struct {
	CurrentPage int                `json:"current_page"`
	Data        []*ProductResponse `json:"data"`
	From        *int               `json:"from"`
	LastPage    int                `json:"last_page"`
	PerPage     int                `json:"per_page"`
	To          *int               `json:"to"`
	Total       int64              `json:"total"`
}

type DeleteResponse struct {
	TotalDeleted int `json:"totalDeleted"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func ToProductResponse(p *domainProduct.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:          p.ID,
		UserID:      p.OwnerUserID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.ImagePath,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPageResponse(page *domainProduct.Page, filter *domainProduct.Filter) *PageResponse {
	res := &PageResponse{
		CurrentPage: filter.Page,
		Data:        make([]*ProductResponse, len(page.Items)),
		PerPage:     filter.PageSize,
		Total:       page.Total,
		LastPage:    max(1, int((page.Total+int64(filter.PageSize)-1)/int64(filter.PageSize))),
	}
	for i, p := range page.Items {
		res.Data[i] = ToProductResponse(p)
	}

	if len(page.Items) > 0 {
		from := filter.Offset() + 1
		to := filter.Offset() + len(page.Items)
		res.From, res.To = &from, &to
	}
	return res
}
