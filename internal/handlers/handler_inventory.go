package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kareem3680/akhdar-erp/internal/apperrors"
	portssvc "github.com/kareem3680/akhdar-erp/internal/core/ports/services"
	"github.com/kareem3680/akhdar-erp/internal/dto"
	"github.com/kareem3680/akhdar-erp/internal/middleware"
)

// inventoryHandler handles HTTP requests related to inventories.
type inventoryHandler struct {
	inventoryService portssvc.InventorySvcFacade
	stockService     portssvc.StockSvcFacade
}

// registerInventoryRoutes registers routes related to inventories,
// including the per-inventory stock listing.
func registerInventoryRoutes(rg *gin.RouterGroup, inventoryService portssvc.InventorySvcFacade, stockService portssvc.StockSvcFacade) {
	h := &inventoryHandler{inventoryService: inventoryService, stockService: stockService}

	inventories := rg.Group("/inventories")
	{
		inventories.POST("", h.createInventory)
		inventories.GET("", h.listInventories)
		inventories.GET("/:id", h.getInventory)
		inventories.GET("/:id/stocks", h.listInventoryStocks)
		inventories.PUT("/:id", h.updateInventory)
	}
}

func (h *inventoryHandler) createInventory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateInventory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	inventory, err := h.inventoryService.CreateInventory(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create inventory in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inventory"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToInventoryResponse(inventory))
}

func (h *inventoryHandler) listInventories(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, offset := parseListParams(c)

	inventories, err := h.inventoryService.ListInventories(c.Request.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list inventories from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list inventories"})
		return
	}

	responses := make([]dto.InventoryResponse, len(inventories))
	for i := range inventories {
		responses[i] = dto.ToInventoryResponse(&inventories[i])
	}
	c.JSON(http.StatusOK, gin.H{"inventories": responses})
}

func (h *inventoryHandler) getInventory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	inventoryID := c.Param("id")

	inventory, err := h.inventoryService.GetInventoryByID(c.Request.Context(), inventoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory not found"})
		} else {
			logger.Error("Failed to get inventory from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inventory"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToInventoryResponse(inventory))
}

func (h *inventoryHandler) listInventoryStocks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	inventoryID := c.Param("id")

	stocks, err := h.stockService.ListStocksByInventory(c.Request.Context(), inventoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory not found"})
		} else {
			logger.Error("Failed to list stocks from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stocks"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"stocks": dto.ToStockResponses(stocks)})
}

func (h *inventoryHandler) updateInventory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	inventoryID := c.Param("id")

	var req dto.UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateInventory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	inventory, err := h.inventoryService.UpdateInventory(c.Request.Context(), inventoryID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to update inventory in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inventory"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToInventoryResponse(inventory))
}
