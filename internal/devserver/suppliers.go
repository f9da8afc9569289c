package devserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"onlineshop/internal/domain"
)

type supplierRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

func listSuppliersHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		suppliers, err := deps.Suppliers.List(c.Request.Context())
		if err != nil {
			respondErr(c, http.StatusInternalServerError, "Fetch suppliers failed")
			return
		}
		if suppliers == nil {
			suppliers = []domain.Supplier{}
		}
		respond(c, http.StatusOK, "OK", suppliers)
	}
}

func addSupplierHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req supplierRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, http.StatusBadRequest, "Invalid supplier payload")
			return
		}
		supplier, err := deps.Suppliers.Create(c.Request.Context(), domain.Supplier{
			ID:    uuid.NewString(),
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		})
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				respondErr(c, http.StatusConflict, "Supplier already exists")
				return
			}
			respondErr(c, http.StatusInternalServerError, "Add supplier failed")
			return
		}
		respond(c, http.StatusCreated, "Supplier added successfully", supplier)
	}
}
