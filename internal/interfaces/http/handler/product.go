package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/retailpos/backend/internal/application/catalog"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// Create adds a product to the catalog
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// Update modifies an existing product
func (h *ProductHandler) Update(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req catalogapp.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// GetByID retrieves a product
func (h *ProductHandler) GetByID(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// LookupByBarcode resolves a scanned barcode to a product
func (h *ProductHandler) LookupByBarcode(c *gin.Context) {
	barcode := c.Query("barcode")
	if barcode == "" {
		h.BadRequest(c, "Missing barcode parameter")
		return
	}

	product, err := h.products.LookupByBarcode(c.Request.Context(), barcode)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// List returns a paginated product listing
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := req.ToFilter()
	if active := c.Query("active"); active != "" {
		filter.Filters = map[string]any{"active": active == "true"}
	}

	page, err := h.products.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Deactivate retires a product from sale
func (h *ProductHandler) Deactivate(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	if err := h.products.DeactivateProduct(c.Request.Context(), productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ExportCSV streams the catalog as a CSV download
func (h *ProductHandler) ExportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="products.csv"`)
	if err := h.products.ExportCSV(c.Request.Context(), c.Writer); err != nil {
		h.InternalError(c, "Export failed")
		return
	}
	c.Status(http.StatusOK)
}

// ImportCSV upserts catalog rows from an uploaded CSV file
func (h *ProductHandler) ImportCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file upload")
		return
	}
	defer file.Close()

	result, err := h.products.ImportCSV(c.Request.Context(), file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	BaseHandler
	categories *catalogapp.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories *catalogapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// CreateCategoryRequest is the payload for creating a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// Create adds a category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	category, err := h.categories.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, category)
}

// List returns all categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, categories)
}

// Delete removes a category; its products become uncategorized
func (h *CategoryHandler) Delete(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid category ID format")
		return
	}

	if err := h.categories.DeleteCategory(c.Request.Context(), categoryID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
