package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainProduct "product-catalog/internal/domain/product"
	"product-catalog/internal/infrastructure/database/postgres/models"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// columns maps listing column names to table columns.
var columns = map[string]string{
	"id":          "id",
	"title":       "title",
	"description": "description",
	"price":       "price",
	"image":       "image",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ProductRepository implements domainProduct.Repository on gorm
type ProductRepository struct {
	db    *DB
	clock clockwork.Clock
}

func NewProductRepository(db *DB, clock clockwork.Clock) *ProductRepository {
	return &ProductRepository{db: db, clock: clock}
}

func (r *ProductRepository) Create(ctx context.Context, p *domainProduct.Product) error {
	now := r.clock.Now()
	p.ID = r.db.NextID()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := r.db.DB.WithContext(ctx).Create(toProductModel(p)).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domainProduct.Product) error {
	p.UpdatedAt = r.clock.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND user_id = ?", p.ID, p.OwnerUserID).
		Updates(map[string]interface{}{
			"title":       p.Title,
			"description": p.Description,
			"price":       p.Price,
			"image":       p.ImagePath,
			"updated_at":  p.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainProduct.ErrProductNotFound
	}

	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, ownerUserID, productID int64) (*domainProduct.Product, error) {
	var dbModel models.ProductModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", productID, ownerUserID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainProduct.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return toProductEntity(&dbModel), nil
}

func (r *ProductRepository) ListByIDs(ctx context.Context, ownerUserID int64, productIDs []int64) ([]*domainProduct.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	var dbModels []models.ProductModel
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ? AND id IN ?", ownerUserID, productIDs).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return toProductEntities(dbModels), nil
}

func (r *ProductRepository) Delete(ctx context.Context, ownerUserID, productID int64) error {
	result := r.db.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", productID, ownerUserID).
		Delete(&models.ProductModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainProduct.ErrProductNotFound
	}

	return nil
}

func (r *ProductRepository) List(ctx context.Context, filter *domainProduct.Filter) (*domainProduct.Page, error) {
	var dbModels []models.ProductModel
	var total int64

	db := r.db.DB.WithContext(ctx).Model(&models.ProductModel{}).
		Where("user_id = ?", filter.OwnerUserID)

	if filter.Keyword != "" {
		if search := searchCondition(filter.Keyword, filter.SearchColumns); search != nil {
			db = db.Where(search)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	sortBy, ok := columns[filter.SortBy]
	if !ok {
		sortBy = "id"
	}
	db = db.Order(clause.OrderByColumn{
		Column: clause.Column{Name: sortBy},
		Desc:   filter.SortOrder == domainProduct.SortDesc,
	})

	if err := db.Limit(filter.PageSize).Offset(filter.Offset()).Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &domainProduct.Page{Items: toProductEntities(dbModels), Total: total}, nil
}

func (r *ProductRepository) Count(ctx context.Context, filter *domainProduct.CountFilter) (int64, error) {
	var count int64

	db := r.db.DB.WithContext(ctx).Model(&models.ProductModel{}).
		Where("user_id = ?", filter.OwnerUserID)
	if filter.CreatedFrom != nil {
		db = db.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedUntil != nil {
		db = db.Where("created_at <= ?", *filter.CreatedUntil)
	}

	if err := db.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// searchCondition ORs a case-insensitive match of keyword over the known
// columns. Unknown columns are dropped.
func searchCondition(keyword string, searchColumns []string) clause.Expression {
	pattern := "%" + likeEscaper.Replace(keyword) + "%"

	var exprs []clause.Expression
	for _, col := range searchColumns {
		name, ok := columns[col]
		if !ok {
			continue
		}
		exprs = append(exprs, clause.Expr{
			SQL:  "CAST(? AS TEXT) ILIKE ?",
			Vars: []interface{}{clause.Column{Name: name}, pattern},
		})
	}

	if len(exprs) == 0 {
		return nil
	}
	return clause.Or(exprs...)
}

func toProductModel(p *domainProduct.Product) *models.ProductModel {
	return &models.ProductModel{
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

func toProductEntity(m *models.ProductModel) *domainProduct.Product {
	return &domainProduct.Product{
		ID:          m.ID,
		OwnerUserID: m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Price:       m.Price,
		ImagePath:   m.Image,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toProductEntities(dbModels []models.ProductModel) []*domainProduct.Product {
	products := make([]*domainProduct.Product, len(dbModels))
	for i := range dbModels {
		products[i] = toProductEntity(&dbModels[i])
	}
	return products
}
