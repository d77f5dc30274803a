package db

import (
	"context"
	"errors"
	"strings"

	"lebs_backend/models"

	"gorm.io/gorm"
)

func (r *Repo) CreateItem(ctx context.Context, it *models.Item) error {
	it.Status = models.ItemStatus(it.Quantity, it.Borrowed)
	return r.DB.WithContext(ctx).Create(it).Error
}

func (r *Repo) FindItemByID(ctx context.Context, itemID uint) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).First(&it, "item_id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *Repo) ListItems(ctx context.Context, q, itemType string) ([]models.Item, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Item{})
	if q = strings.TrimSpace(q); q != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if itemType != "" {
		tx = tx.Where("type = ?", itemType)
	}
	var items []models.Item
	err := tx.Order("item_id ASC").Find(&items).Error
	return items, err
}

// EditItem applies an administrative edit to name/type/quantity. Quantity
// only changes here, never in the borrow/return flow, and may not drop below
// the number of units currently out. Status is recomputed, not taken from
// the caller.
func (r *Repo) EditItem(ctx context.Context, itemID uint, name, itemType string, quantity int) (*models.Item, error) {
	var it models.Item
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&it, "item_id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if quantity < it.Borrowed {
			return ErrInsufficientStock
		}
		it.Name = name
		it.Type = itemType
		it.Quantity = quantity
		it.Status = models.ItemStatus(quantity, it.Borrowed)
		return tx.Model(&models.Item{}).
			Where("item_id = ?", itemID).
			Updates(map[string]any{
				"name":     it.Name,
				"type":     it.Type,
				"quantity": it.Quantity,
				"status":   it.Status,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ArchiveItem snapshots the row and removes it from live inventory.
// Items with units still out cannot be archived.
func (r *Repo) ArchiveItem(ctx context.Context, itemID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it models.Item
		if err := lockForUpdate(tx).First(&it, "item_id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if it.Borrowed > 0 {
			return ErrInsufficientStock
		}
		arch := models.ItemArchive{
			ItemID:   it.ItemID,
			Name:     it.Name,
			Type:     it.Type,
			Quantity: it.Quantity,
			Borrowed: it.Borrowed,
			Status:   it.Status,
		}
		if err := tx.Create(&arch).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Item{}, "item_id = ?", itemID).Error
	})
}

func (r *Repo) RestoreItem(ctx context.Context, archiveID uint) (*models.Item, error) {
	var restored models.Item
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.ItemArchive
		if err := lockForUpdate(tx).First(&a, "archive_id = ?", archiveID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		restored = models.Item{
			Name:     a.Name,
			Type:     a.Type,
			Quantity: a.Quantity,
			Borrowed: 0,
			Status:   models.ItemStatus(a.Quantity, 0),
		}
		if err := tx.Create(&restored).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ItemArchive{}, "archive_id = ?", archiveID).Error
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

func (r *Repo) ListArchivedItems(ctx context.Context) ([]models.ItemArchive, error) {
	var as []models.ItemArchive
	err := r.DB.WithContext(ctx).Order("deleted_at DESC").Find(&as).Error
	return as, err
}
