package handler

import (
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"product-catalog/internal/storage"
	"product-catalog/internal/usecase/product"
	"product-catalog/pkg/envelope"
	appErrors "product-catalog/pkg/errors"
	"product-catalog/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	service *product.Service
}

func NewProductHandler(service *product.Service) *ProductHandler {
	return &ProductHandler{service: service}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/stats", h.Stats)

	products := router.Group("/products")
	{
		products.GET("", h.List)
		products.POST("/import", h.Import)
	}

	single := router.Group("/product")
	{
		single.GET("", h.Get)
		single.POST("", h.Store)
		single.DELETE("", h.Delete)
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var q product.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	if len(q.Columns) == 0 {
		q.Columns = indexedColumns(c.QueryMap("columns"))
	}

	utils.Respond(c, h.service.List(c.Request.Context(), id.UserID, &q))
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(strings.TrimSpace(c.Query("id")), 10, 64)
	if err != nil {
		utils.Respond(c, envelope.NotFound[product.ProductResponse](product.MsgNoResult))
		return
	}

	utils.Respond(c, h.service.GetByID(c.Request.Context(), id.UserID, productID))
}

func (h *ProductHandler) Store(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req product.StoreRequest
	if !bind(c, &req) {
		return
	}
	req.Image = formFile(c, "image")

	utils.Respond(c, h.service.Store(c.Request.Context(), id.UserID, &req))
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req product.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	if len(req.IDs) == 0 {
		ids, err := product.ParseIDList(append(c.QueryArray("ids"), c.QueryArray("ids[]")...))
		if err != nil {
			badRequest(c, errors.Join(appErrors.ErrInvalidInput, err))
			return
		}
		req.IDs = ids
	}

	utils.Respond(c, h.service.DeleteByIDs(c.Request.Context(), id.UserID, req.IDs))
}

func (h *ProductHandler) Import(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	utils.Respond(c, h.service.Import(c.Request.Context(), id.UserID, formFile(c, "file")))
}

func (h *ProductHandler) Stats(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var q product.StatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	utils.Respond(c, h.service.Stats(c.Request.Context(), id.UserID, &q))
}

// formFile returns the named upload, or nil when the request has none.
func formFile(c *gin.Context, name string) *storage.File {
	fh, err := c.FormFile(name)
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			_ = c.Error(err)
		}
		return nil
	}
	return storage.FromMultipart(fh)
}

// indexedColumns orders columns[0]=..&columns[1]=.. by index.
func indexedColumns(m map[string]string) []string {
	keys := make([]int, 0, len(m))
	for k := range m {
		if i, err := strconv.Atoi(k); err == nil {
			keys = append(keys, i)
		}
	}
	slices.Sort(keys)

	cols := make([]string, 0, len(keys))
	for _, k := range keys {
		cols = append(cols, m[strconv.Itoa(k)])
	}
	return cols
}
