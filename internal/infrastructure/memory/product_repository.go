package memory

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"

	domainProduct "product-catalog/internal/domain/product"

	"github.com/jonboulle/clockwork"
)

// ProductRepository implements domainProduct.Repository in memory
type ProductRepository struct {
	mu       sync.RWMutex
	clock    clockwork.Clock
	nextID   int64
	products []domainProduct.Product
}

func NewProductRepository(clock clockwork.Clock) *ProductRepository {
	return &ProductRepository{clock: clock}
}

func (r *ProductRepository) Create(_ context.Context, p *domainProduct.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := r.clock.Now()
	p.ID = r.nextID
	p.CreatedAt = now
	p.UpdatedAt = now
	r.products = append(r.products, *p)

	return nil
}

func (r *ProductRepository) Update(_ context.Context, p *domainProduct.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(p.OwnerUserID, p.ID)
	if i < 0 {
		return domainProduct.ErrProductNotFound
	}

	p.UpdatedAt = r.clock.Now()
	p.CreatedAt = r.products[i].CreatedAt
	r.products[i] = *p

	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, ownerUserID, productID int64) (*domainProduct.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(ownerUserID, productID)
	if i < 0 {
		return nil, domainProduct.ErrProductNotFound
	}
	found := r.products[i]
	return &found, nil
}

func (r *ProductRepository) ListByIDs(_ context.Context, ownerUserID int64, productIDs []int64) ([]*domainProduct.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domainProduct.Product
	for _, p := range r.products {
		if p.OwnerUserID == ownerUserID && slices.Contains(productIDs, p.ID) {
			found := p
			out = append(out, &found)
		}
	}
	return out, nil
}

func (r *ProductRepository) Delete(_ context.Context, ownerUserID, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(ownerUserID, productID)
	if i < 0 {
		return domainProduct.ErrProductNotFound
	}
	r.products = slices.Delete(r.products, i, i+1)
	return nil
}

func (r *ProductRepository) List(_ context.Context, filter *domainProduct.Filter) (*domainProduct.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keyword := strings.ToLower(filter.Keyword)
	var matched []domainProduct.Product
	for _, p := range r.products {
		if p.OwnerUserID != filter.OwnerUserID {
			continue
		}
		if keyword != "" && len(filter.SearchColumns) > 0 && !matchesAny(p, filter.SearchColumns, keyword) {
			continue
		}
		matched = append(matched, p)
	}

	slices.SortStableFunc(matched, func(a, b domainProduct.Product) int {
		c := compareColumn(a, b, filter.SortBy)
		if filter.SortOrder == domainProduct.SortDesc {
			return -c
		}
		return c
	})

	page := &domainProduct.Page{Total: int64(len(matched)), Items: []*domainProduct.Product{}}
	start := min(filter.Offset(), len(matched))
	end := min(start+filter.PageSize, len(matched))
	for _, p := range matched[start:end] {
		item := p
		page.Items = append(page.Items, &item)
	}

	return page, nil
}

func (r *ProductRepository) Count(_ context.Context, filter *domainProduct.CountFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, p := range r.products {
		if p.OwnerUserID != filter.OwnerUserID {
			continue
		}
		if filter.CreatedFrom != nil && p.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedUntil != nil && p.CreatedAt.After(*filter.CreatedUntil) {
			continue
		}
		n++
	}
	return n, nil
}

func (r *ProductRepository) indexOf(ownerUserID, productID int64) int {
	return slices.IndexFunc(r.products, func(p domainProduct.Product) bool {
		return p.ID == productID && p.OwnerUserID == ownerUserID
	})
}

func columnText(p domainProduct.Product, column string) string {
	switch column {
	case "id":
		return strconv.FormatInt(p.ID, 10)
	case "title":
		return p.Title
	case "description":
		return p.Description
	case "price":
		return strconv.FormatFloat(p.Price, 'f', 2, 64)
	case "image":
		return p.ImagePath
	case "created_at":
		return p.CreatedAt.String()
	case "updated_at":
		return p.UpdatedAt.String()
	}
	return ""
}

func matchesAny(p domainProduct.Product, columns []string, keyword string) bool {
	for _, col := range columns {
		if strings.Contains(strings.ToLower(columnText(p, col)), keyword) {
			return true
		}
	}
	return false
}

func compareColumn(a, b domainProduct.Product, column string) int {
	switch column {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "price":
		return cmp.Compare(a.Price, b.Price)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return strings.Compare(columnText(a, column), columnText(b, column))
}
