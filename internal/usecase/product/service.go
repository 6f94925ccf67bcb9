package product

import (
	"context"
	"errors"
	"strconv"
	"strings"

	domainProduct "product-catalog/internal/domain/product"
	"product-catalog/internal/logger"
	"product-catalog/internal/storage"
	"product-catalog/internal/validation"
	"product-catalog/pkg/envelope"
	"product-catalog/pkg/utils"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	MsgFetched         = "Data is fetched successfully"
	MsgNoResult        = "No result is found"
	MsgSaved           = "Product is successfully saved"
	MsgUpdated         = "Product is successfully updated"
	MsgDeletedOne      = "Product is deleted successfully"
	MsgDeletedMany     = "Products are deleted successfully"
	MsgNothingToDelete = "Nothing to Delete"
)

// Service implements product use cases. Every operation is scoped to the
// owning user passed in by the caller.
type Service struct {
	productRepo domainProduct.Repository
	store       storage.Store
	clock       clockwork.Clock
}

// NewService creates a new product service
func NewService(productRepo domainProduct.Repository, store storage.Store, clock clockwork.Clock) *Service {
	return &Service{
		productRepo: productRepo,
		store:       store,
		clock:       clock,
	}
}

func (s *Service) List(ctx context.Context, ownerUserID int64, q *ListQuery) *envelope.Envelope[PageResponse] {
	if res, ok := check[PageResponse](ctx, "list_products", listRules(q), q); !ok {
		return res
	}

	filter := ParseListQuery(ownerUserID, q)
	page, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return fail[PageResponse]("list_products", err)
	}
	if page == nil {
		return envelope.NotFound[PageResponse](MsgNoResult)
	}

	return envelope.OK(MsgFetched, toPageResponse(page, filter))
}

func (s *Service) GetByID(ctx context.Context, ownerUserID, productID int64) *envelope.Envelope[ProductResponse] {
	p, err := s.productRepo.GetByID(ctx, ownerUserID, productID)
	if errors.Is(err, domainProduct.ErrProductNotFound) {
		return envelope.NotFound[ProductResponse](MsgNoResult)
	}
	if err != nil {
		return fail[ProductResponse]("get_product", err)
	}

	return envelope.OK(MsgFetched, ToProductResponse(p))
}

func (s *Service) Store(ctx context.Context, ownerUserID int64, req *StoreRequest) *envelope.Envelope[ProductResponse] {
	req.Title = utils.SanitizeString(req.Title)
	req.Description = utils.SanitizeText(req.Description)

	if res, ok := check[ProductResponse](ctx, "store_product", storeRules(), req); !ok {
		return res
	}

	price, _ := strconv.ParseFloat(strings.TrimSpace(req.Price), 64)

	if strings.TrimSpace(req.ID) != "" {
		productID, _ := strconv.ParseInt(strings.TrimSpace(req.ID), 10, 64)
		return s.update(ctx, ownerUserID, productID, req, price)
	}

	imagePath, err := s.saveImage(ctx, ownerUserID, req.Image)
	if err != nil {
		return fail[ProductResponse]("store_product", err)
	}

	p := &domainProduct.Product{
		OwnerUserID: ownerUserID,
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		ImagePath:   imagePath,
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		s.cleanupImage(ctx, imagePath, 0)
		return fail[ProductResponse]("store_product", err)
	}

	logger.Info("Product created",
		zap.Int64("product_id", p.ID),
		zap.Int64("user_id", ownerUserID),
		zap.String("event", "product_created"),
	)

	return envelope.OK(MsgSaved, ToProductResponse(p))
}

func (s *Service) update(ctx context.Context, ownerUserID, productID int64, req *StoreRequest, price float64) *envelope.Envelope[ProductResponse] {
	p, err := s.productRepo.GetByID(ctx, ownerUserID, productID)
	if errors.Is(err, domainProduct.ErrProductNotFound) {
		logger.Warn("Update of a product not owned by caller",
			zap.Int64("product_id", productID),
			zap.Int64("user_id", ownerUserID),
			zap.String("event", "product_update_not_found"),
		)
		return envelope.NotFound[ProductResponse](MsgNoResult)
	}
	if err != nil {
		return fail[ProductResponse]("update_product", err)
	}

	s.cleanupImage(ctx, p.ImagePath, p.ID)

	imagePath, err := s.saveImage(ctx, ownerUserID, req.Image)
	if err != nil {
		return fail[ProductResponse]("update_product", err)
	}

	p.Title = req.Title
	p.Description = req.Description
	p.Price = price
	p.ImagePath = imagePath

	if err := s.productRepo.Update(ctx, p); err != nil {
		if errors.Is(err, domainProduct.ErrProductNotFound) {
			s.cleanupImage(ctx, imagePath, p.ID)
			return envelope.NotFound[ProductResponse](MsgNoResult)
		}
		return fail[ProductResponse]("update_product", err)
	}

	logger.Info("Product updated",
		zap.Int64("product_id", p.ID),
		zap.Int64("user_id", ownerUserID),
		zap.String("event", "product_updated"),
	)

	return envelope.OK(MsgUpdated, ToProductResponse(p))
}

func (s *Service) DeleteByIDs(ctx context.Context, ownerUserID int64, ids []int64) *envelope.Envelope[DeleteResponse] {
	if len(ids) == 0 {
		return envelope.NotFound[DeleteResponse](MsgNothingToDelete)
	}

	products, err := s.productRepo.ListByIDs(ctx, ownerUserID, ids)
	if err != nil {
		return fail[DeleteResponse]("delete_products", err)
	}

	deleted := 0
	for _, p := range products {
		s.cleanupImage(ctx, p.ImagePath, p.ID)

		err := s.productRepo.Delete(ctx, ownerUserID, p.ID)
		if errors.Is(err, domainProduct.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return fail[DeleteResponse]("delete_products", err)
		}
		deleted++
	}

	if deleted == 0 {
		return envelope.NotFound[DeleteResponse](MsgNothingToDelete)
	}

	logger.Info("Products deleted",
		zap.Int64("user_id", ownerUserID),
		zap.Int("total_deleted", deleted),
		zap.String("event", "products_deleted"),
	)

	msg := MsgDeletedOne
	if deleted > 1 {
		msg = MsgDeletedMany
	}
	return envelope.OK(msg, &DeleteResponse{TotalDeleted: deleted})
}

func (s *Service) saveImage(ctx context.Context, ownerUserID int64, file *storage.File) (string, error) {
	key, err := storage.ImageKey(ownerUserID, s.clock.Now())
	if err != nil {
		return "", err
	}
	return s.store.Save(ctx, key, file)
}

// cleanupImage removes an image that is no longer referenced. Failures are
// reported on the log only.
func (s *Service) cleanupImage(ctx context.Context, path string, productID int64) {
	if path == "" {
		return
	}
	if err := s.store.Delete(ctx, path); err != nil {
		logger.Warn("Failed to delete product image",
			zap.Int64("product_id", productID),
			zap.String("path", path),
			zap.String("event", "image_cleanup_failed"),
			zap.Error(err),
		)
	}
}

// check runs table over in. ok is false when res must be returned as is.
func check[T any](ctx context.Context, op string, table validation.Table, in validation.Source) (res *envelope.Envelope[T], ok bool) {
	fields, err := table.Validate(ctx, in)
	if err != nil {
		return fail[T](op, err), false
	}
	if fields != nil {
		return envelope.Invalid[T](fields), false
	}
	return nil, true
}

func fail[T any](op string, err error) *envelope.Envelope[T] {
	logger.Error("Operation failed",
		zap.String("operation", op),
		zap.Error(err),
	)
	return envelope.Internal[T](err)
}
