package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"onlineshop/internal/domain"
	productrepo "onlineshop/internal/repository/product"
)

type orderRequest struct {
	OrderItems []orderItemRequest `json:"orderItems" binding:"required,min=1,dive"`
}

type orderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// buildPreview prices a prospective order. Quantities come from the client,
// prices exclusively from the product repository; duplicate product ids are
// merged before pricing.
func buildPreview(ctx context.Context, products productrepo.Repository, shippingCents int64, items []orderItemRequest) (*domain.OrderPreview, error) {
	merged := make([]orderItemRequest, 0, len(items))
	index := make(map[string]int)
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	preview := &domain.OrderPreview{ShippingCostCents: shippingCents}
	for _, item := range merged {
		product, err := products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("product %s not found", item.ProductID)
			}
			return nil, err
		}
		subTotal := product.PriceCents * int64(item.Quantity)
		preview.Items = append(preview.Items, domain.PreviewItem{
			ProductID:         product.ID,
			ProductName:       product.Name,
			Quantity:          item.Quantity,
			PerItemPriceCents: product.PriceCents,
			SubTotalCents:     subTotal,
		})
		preview.TotalPriceCents += subTotal
	}
	return preview, nil
}

func previewOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req orderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, http.StatusBadRequest, "Invalid order payload")
			return
		}
		preview, err := buildPreview(c.Request.Context(), deps.Products, deps.ShippingCents, req.OrderItems)
		if err != nil {
			respondErr(c, http.StatusBadRequest, err.Error())
			return
		}
		respond(c, http.StatusOK, "OK", preview)
	}
}

func createOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req orderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, http.StatusBadRequest, "Invalid order payload")
			return
		}
		preview, err := buildPreview(c.Request.Context(), deps.Products, deps.ShippingCents, req.OrderItems)
		if err != nil {
			respondErr(c, http.StatusBadRequest, err.Error())
			return
		}

		user := currentUser(c)
		order, err := deps.Orders.Create(c.Request.Context(), domain.Order{
			ID:                uuid.NewString(),
			UserID:            user.ID,
			Items:             preview.Items,
			TotalPriceCents:   preview.TotalPriceCents,
			ShippingCostCents: preview.ShippingCostCents,
			Status:            domain.OrderStatusPlaced,
		})
		if err != nil {
			respondErr(c, http.StatusInternalServerError, "Place order failed")
			return
		}
		respond(c, http.StatusCreated, "Order placed successfully", order)
	}
}

func listOrdersHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		orders, err := deps.Orders.ListByUser(c.Request.Context(), user.ID)
		if err != nil {
			respondErr(c, http.StatusInternalServerError, "Fetch orders failed")
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		respond(c, http.StatusOK, "OK", orders)
	}
}

func deleteOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		order, err := deps.Orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				respondErr(c, http.StatusNotFound, "Order not found")
				return
			}
			respondErr(c, http.StatusInternalServerError, "Delete order failed")
			return
		}
		// Owners cancel their own orders; admins can cancel any.
		if order.UserID != user.ID && user.Role != domain.RoleAdmin {
			respondErr(c, http.StatusNotFound, "Order not found")
			return
		}
		if err := deps.Orders.SetStatus(c.Request.Context(), order.ID, domain.OrderStatusCancelled); err != nil {
			respondErr(c, http.StatusInternalServerError, "Delete order failed")
			return
		}
		respond(c, http.StatusOK, "Order cancelled successfully", nil)
	}
}
