package devserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"onlineshop/internal/domain"
)

type productRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents" binding:"gte=0"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
	Stock       int    `json:"stock" binding:"gte=0"`
	SupplierID  string `json:"supplierId"`
}

// productPage is the paginated listing payload: the content/totalPages
// envelope shape.
type productPage struct {
	Content      []domain.Product `json:"content"`
	Page         int              `json:"page"`
	Size         int              `json:"size"`
	TotalPages   int              `json:"totalPages"`
	TotalResults int              `json:"totalResults"`
}

func listProductsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
		size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
		if size <= 0 {
			size = 10
		}
		if page < 0 {
			page = 0
		}

		products, total, err := deps.Products.List(c.Request.Context(), page, size)
		if err != nil {
			respondErr(c, http.StatusInternalServerError, "Fetch products failed")
			return
		}
		totalPages := (total + size - 1) / size
		if products == nil {
			products = []domain.Product{}
		}
		respond(c, http.StatusOK, "OK", productPage{
			Content:      products,
			Page:         page,
			Size:         size,
			TotalPages:   totalPages,
			TotalResults: total,
		})
	}
}

func getProductHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := deps.Products.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				respondErr(c, http.StatusNotFound, "Product not found")
				return
			}
			respondErr(c, http.StatusInternalServerError, "Fetch product failed")
			return
		}
		respond(c, http.StatusOK, "OK", product)
	}
}

func createProductHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, http.StatusBadRequest, "Invalid product payload")
			return
		}
		product, err := deps.Products.Create(c.Request.Context(), domain.Product{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			Category:    req.Category,
			ImageURL:    req.ImageURL,
			Stock:       req.Stock,
			SupplierID:  req.SupplierID,
		})
		if err != nil {
			respondErr(c, http.StatusInternalServerError, "Create product failed")
			return
		}
		respond(c, http.StatusCreated, "Product created successfully", product)
	}
}

func updateProductHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, http.StatusBadRequest, "Invalid product payload")
			return
		}
		product, err := deps.Products.Update(c.Request.Context(), domain.Product{
			ID:          c.Param("id"),
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			Category:    req.Category,
			ImageURL:    req.ImageURL,
			Stock:       req.Stock,
			SupplierID:  req.SupplierID,
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				respondErr(c, http.StatusNotFound, "Product not found")
				return
			}
			respondErr(c, http.StatusInternalServerError, "Update product failed")
			return
		}
		respond(c, http.StatusOK, "Product updated successfully", product)
	}
}

func deleteProductHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				respondErr(c, http.StatusNotFound, "Product not found")
				return
			}
			respondErr(c, http.StatusInternalServerError, "Delete product failed")
			return
		}
		respond(c, http.StatusOK, "Product deleted successfully", nil)
	}
}
