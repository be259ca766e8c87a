package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kareem3680/akhdar-erp/internal/apperrors"
	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portsrepo "github.com/kareem3680/akhdar-erp/internal/core/ports/repositories"
	portssvc "github.com/kareem3680/akhdar-erp/internal/core/ports/services"
	"github.com/kareem3680/akhdar-erp/internal/dto"
	"github.com/kareem3680/akhdar-erp/internal/middleware"
)

// inventoryService provides inventory (capacity pool) operations.
type inventoryService struct {
	inventoryRepo portsrepo.InventoryRepository
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(inventoryRepo portsrepo.InventoryRepository) portssvc.InventorySvcFacade {
	return &inventoryService{inventoryRepo: inventoryRepo}
}

var _ portssvc.InventorySvcFacade = (*inventoryService)(nil)

func (s *inventoryService) CreateInventory(ctx context.Context, req dto.CreateInventoryRequest, creatorUserID string) (*domain.Inventory, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	inventory := domain.Inventory{
		InventoryID:    uuid.NewString(),
		Name:           req.Name,
		Location:       req.Location,
		Capacity:       req.Capacity,
		Status:         domain.InventoryActive,
		ManagerID:      req.ManagerID,
		OrganizationID: req.OrganizationID,
		AuditFields:    domain.NewAuditFields(creatorUserID, now),
	}

	if err := s.inventoryRepo.SaveInventory(ctx, inventory); err != nil {
		logger.Error("Failed to save inventory in repository", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Inventory created successfully", slog.String("inventory_id", inventory.InventoryID), slog.Int64("capacity", inventory.Capacity))
	return &inventory, nil
}

func (s *inventoryService) GetInventoryByID(ctx context.Context, inventoryID string) (*domain.Inventory, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	inventory, err := s.inventoryRepo.FindInventoryByID(ctx, inventoryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find inventory by ID", slog.String("error", err.Error()), slog.String("inventory_id", inventoryID))
		}
		return nil, err
	}
	return inventory, nil
}

func (s *inventoryService) ListInventories(ctx context.Context, limit int, offset int) ([]domain.Inventory, error) {
	if limit <= 0 {
		limit = 20
	}
	inventories, err := s.inventoryRepo.ListInventories(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventories: %w", err)
	}
	if inventories == nil {
		return []domain.Inventory{}, nil
	}
	return inventories, nil
}

// UpdateInventory updates the descriptive fields and status of an
// inventory. Capacity is deliberately not updatable here: it moves only in
// lock-step with stock mutations.
func (s *inventoryService) UpdateInventory(ctx context.Context, inventoryID string, req dto.UpdateInventoryRequest, userID string) (*domain.Inventory, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	inventory, err := s.inventoryRepo.FindInventoryByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		inventory.Name = *req.Name
		updated = true
	}
	if req.Location != nil {
		inventory.Location = *req.Location
		updated = true
	}
	if req.ManagerID != nil {
		inventory.ManagerID = *req.ManagerID
		updated = true
	}
	if req.Status != nil {
		status := domain.InventoryStatus(*req.Status)
		switch status {
		case domain.InventoryActive, domain.InventoryInactive, domain.InventoryMaintenance:
			inventory.Status = status
			updated = true
		default:
			return nil, fmt.Errorf("%w: unknown inventory status %q", apperrors.ErrValidation, *req.Status)
		}
	}
	if !updated {
		return inventory, nil
	}

	inventory.Touch(userID, time.Now().UTC())
	if err := s.inventoryRepo.UpdateInventory(ctx, *inventory); err != nil {
		logger.Error("Failed to update inventory in repository", slog.String("error", err.Error()), slog.String("inventory_id", inventoryID))
		return nil, err
	}

	logger.Info("Inventory updated successfully", slog.String("inventory_id", inventoryID))
	return inventory, nil
}
