package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest is the payload for creating or updating a product
type ProductRequest struct {
	Code         string          `json:"code" binding:"required"`
	Barcode      string          `json:"barcode"`
	Name         string          `json:"name" binding:"required"`
	CategoryID   *uuid.UUID      `json:"category_id"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	TaxPercent   decimal.Decimal `json:"tax_percent"`
	ReorderLevel int64           `json:"reorder_level"`
}

// ImportResult reports a CSV catalog import
type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

// ProductService handles catalog maintenance
type ProductService struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	logger     *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository, categories catalog.CategoryRepository, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, categories: categories, logger: logger}
}

// CreateProduct adds a product, enforcing code and barcode uniqueness
func (s *ProductService) CreateProduct(ctx context.Context, req ProductRequest) (*catalog.Product, error) {
	existing, err := s.products.FindByCode(ctx, strings.TrimSpace(req.Code))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_CODE", "A product with this code already exists")
	}

	product, err := catalog.NewProduct(req.Code, req.Name, req.UnitPrice, req.CostPrice, req.TaxPercent)
	if err != nil {
		return nil, err
	}
	if err := s.applyOptional(ctx, product, req); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct modifies a product in place
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product does not exist")
	}

	code := strings.TrimSpace(req.Code)
	if code != product.Code {
		clash, err := s.products.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if clash != nil {
			return nil, shared.NewDomainError("DUPLICATE_CODE", "A product with this code already exists")
		}
		product.Code = code
	}
	product.Name = strings.TrimSpace(req.Name)
	if err := product.SetPricing(req.UnitPrice, req.CostPrice); err != nil {
		return nil, err
	}
	if err := product.SetTaxPercent(req.TaxPercent); err != nil {
		return nil, err
	}
	if err := s.applyOptional(ctx, product, req); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) applyOptional(ctx context.Context, product *catalog.Product, req ProductRequest) error {
	product.SetBarcode(req.Barcode)
	if err := product.SetReorderLevel(req.ReorderLevel); err != nil {
		return err
	}
	if req.CategoryID == nil {
		product.ClearCategory()
		return nil
	}
	category, err := s.categories.FindByID(ctx, *req.CategoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return shared.NewDomainError("CATEGORY_NOT_FOUND", "Category does not exist")
	}
	product.SetCategory(category.ID)
	return nil
}

// GetProduct loads one product
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product does not exist")
	}
	return product, nil
}

// LookupByBarcode resolves a scanned barcode for the POS screen
func (s *ProductService) LookupByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	product, err := s.products.FindByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "No product with this barcode")
	}
	return product, nil
}

// ListProducts returns products page by page
func (s *ProductService) ListProducts(ctx context.Context, filter shared.Filter) (*shared.Paginated[catalog.Product], error) {
	filter.Normalize()
	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(products, total, filter.Page, filter.PageSize)
	return &page, nil
}

// DeactivateProduct hides a product from the POS without losing history
func (s *ProductService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product does not exist")
	}
	product.Deactivate()
	return s.products.Save(ctx, product)
}

// ExportCSV writes the catalog as CSV
func (s *ProductService) ExportCSV(ctx context.Context, w io.Writer) error {
	products, err := s.products.FindAll(ctx, shared.Filter{PageSize: -1})
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"code", "barcode", "name", "unit_price", "cost_price", "tax_percent", "reorder_level", "active"}); err != nil {
		return err
	}
	for _, p := range products {
		barcode := ""
		if p.Barcode != nil {
			barcode = *p.Barcode
		}
		record := []string{
			p.Code,
			barcode,
			p.Name,
			p.UnitPrice.StringFixed(2),
			p.CostPrice.StringFixed(2),
			p.TaxPercent.String(),
			strconv.FormatInt(p.ReorderLevel, 10),
			strconv.FormatBool(p.Active),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ImportCSV upserts products from a CSV with the same columns ExportCSV
// produces. Rows with errors are reported and skipped; good rows apply.
func (s *ProductService) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	result := &ImportResult{}
	lineNo := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, shared.NewDomainError("INVALID_CSV", "Could not parse CSV: "+err.Error())
		}
		lineNo++
		if lineNo == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "code") {
			continue
		}
		if len(record) < 6 {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: too few columns", lineNo))
			continue
		}

		unitPrice, err1 := decimal.NewFromString(strings.TrimSpace(record[3]))
		costPrice, err2 := decimal.NewFromString(strings.TrimSpace(record[4]))
		taxPercent, err3 := decimal.NewFromString(strings.TrimSpace(record[5]))
		if err1 != nil || err2 != nil || err3 != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: bad money or tax value", lineNo))
			continue
		}

		code := strings.TrimSpace(record[0])
		existing, err := s.products.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			existing.Name = strings.TrimSpace(record[2])
			existing.SetBarcode(record[1])
			if err := existing.SetPricing(unitPrice, costPrice); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNo, err))
				continue
			}
			if err := existing.SetTaxPercent(taxPercent); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNo, err))
				continue
			}
			if err := s.products.Save(ctx, existing); err != nil {
				return nil, err
			}
			result.Updated++
			continue
		}

		product, err := catalog.NewProduct(code, record[2], unitPrice, costPrice, taxPercent)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}
		product.SetBarcode(record[1])
		if err := s.products.Save(ctx, product); err != nil {
			return nil, err
		}
		result.Created++
	}
	return result, nil
}

// CategoryService handles product categories
type CategoryService struct {
	categories catalog.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories catalog.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// CreateCategory adds a category, enforcing name uniqueness
func (s *CategoryService) CreateCategory(ctx context.Context, name string) (*catalog.Category, error) {
	existing, err := s.categories.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_NAME", "A category with this name already exists")
	}
	category, err := catalog.NewCategory(name)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns all categories
func (s *CategoryService) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return s.categories.FindAll(ctx)
}

// DeleteCategory removes a category; products keep selling uncategorized
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categories.Delete(ctx, id)
}
