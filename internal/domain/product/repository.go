package product

import "context"

// Repository defines persistence of products. Every method is scoped to an owner.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, ownerUserID, productID int64) (*Product, error)
	ListByIDs(ctx context.Context, ownerUserID int64, productIDs []int64) ([]*Product, error)
	Delete(ctx context.Context, ownerUserID, productID int64) error
	List(ctx context.Context, filter *Filter) (*Page, error)
	Count(ctx context.Context, filter *CountFilter) (int64, error)
}
