package product

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	domainProduct "product-catalog/internal/domain/product"
	"product-catalog/internal/logger"
	"product-catalog/internal/storage"
	"product-catalog/internal/validation"
	"product-catalog/pkg/envelope"
	appErrors "product-catalog/pkg/errors"
	"product-catalog/pkg/utils"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	MsgImported     = "Products are imported successfully"
	msgInvalidSheet = "The file must be a valid xlsx workbook."
)

// Import creates products from the first sheet of an xlsx workbook. The
// first row is a header; the columns are title, description and price.
// Rows failing the product rules are skipped.
func (s *Service) Import(ctx context.Context, ownerUserID int64, file *storage.File) *envelope.Envelope[ImportResponse] {
	in := validation.Fields{"file": nil}
	if file != nil {
		in["file"] = file
	}
	if res, ok := check[ImportResponse](ctx, "import_products", importRules(), in); !ok {
		return res
	}

	rows, err := readSheet(file)
	if err != nil {
		logger.Warn("Rejected product import",
			zap.Int64("user_id", ownerUserID),
			zap.String("event", "product_import_rejected"),
			zap.Error(err),
		)
		return envelope.Invalid[ImportResponse](envelope.FieldErrors{"file": {msgInvalidSheet}})
	}

	res := &ImportResponse{}
	rules := productRules()
	for i, row := range rows {
		if i == 0 {
			continue
		}

		fields := validation.Fields{
			"title":       utils.SanitizeString(cell(row, 0)),
			"description": utils.SanitizeText(cell(row, 1)),
			"price":       strings.TrimSpace(cell(row, 2)),
		}
		violations, err := rules.Validate(ctx, fields)
		if err != nil {
			return fail[ImportResponse]("import_products", err)
		}
		if violations != nil {
			res.Skipped++
			continue
		}

		price, _ := strconv.ParseFloat(fields["price"].(string), 64)
		p := &domainProduct.Product{
			OwnerUserID: ownerUserID,
			Title:       fields["title"].(string),
			Description: fields["description"].(string),
			Price:       price,
		}
		if err := s.productRepo.Create(ctx, p); err != nil {
			return fail[ImportResponse]("import_products", err)
		}
		res.Imported++
	}

	logger.Info("Products imported",
		zap.Int64("user_id", ownerUserID),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.String("event", "products_imported"),
	)

	return envelope.OK(MsgImported, res)
}

func readSheet(file *storage.File) ([][]string, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	book, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrInvalidWorkbook, err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, appErrors.ErrInvalidWorkbook
	}
	return book.GetRows(sheets[0])
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
