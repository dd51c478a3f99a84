// internal/handlers/product.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopverse/storefront-backend/internal/services"
	"github.com/shopverse/storefront-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

// parseProductFilter maps the catalog query string onto the explicit filter.
// Unknown or malformed values are dropped rather than rejected.
func parseProductFilter(c *gin.Context) services.ProductFilter {
	filter := services.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		Sort:     services.SortKey(c.DefaultQuery("sort", string(services.SortNewest))),
	}

	if v := c.Query("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &f
		}
	}
	if v := c.Query("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &f
		}
	}
	if v := c.Query("min_rating"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinRating = &f
		}
	}
	if v := c.Query("in_stock"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.InStock = &b
		}
	}

	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	return filter
}

// GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := parseProductFilter(c)

	products, total, err := h.productService.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	params := utils.PaginationParams{Page: filter.Page, Limit: filter.Limit}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 20
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// GET /products/featured
func (h *ProductHandler) GetFeatured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	if limit < 1 || limit > 50 {
		limit = 8
	}

	products, err := h.productService.GetFeatured(limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, products)
}

// GET /products/categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.GetCategories()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, categories)
}

// POST /products (admin)
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.Create(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, product)
}

// PUT /products/:id (admin)
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.Update(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// DELETE /products/:id (admin)
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Product deleted"})
}

// POST /products/upload-images (admin)
func (h *ProductHandler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form", err.Error())
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "No images provided", nil)
		return
	}
	if len(files) > 10 {
		utils.BadRequestResponse(c, "At most 10 images per upload", nil)
		return
	}

	options := h.storageService.GetDefaultUploadOptions("products")

	results := make([]*services.UploadResult, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			utils.BadRequestResponse(c, "Failed to open uploaded file", err.Error())
			return
		}

		if err := h.storageService.ValidateImage(file); err != nil {
			file.Close()
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}

		result, err := h.storageService.UploadFile(file, header, options)
		file.Close()
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}

		results = append(results, result)
	}

	utils.CreatedResponse(c, results)
}
