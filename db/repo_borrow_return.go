package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lebs_backend/models"

	"gorm.io/gorm"
)

type BorrowLine struct {
	ItemID          uint
	Quantity        int
	BeforeCondition string
}

type BorrowInput struct {
	BorrowerRFID   string
	InstructorRFID string
	AdminID        uint
	Subject        string
	Room           string
	Lines          []BorrowLine
}

// Borrow records one borrow event per line inside a single transaction:
// lock the item row, check available units, insert the ledger row, bump the
// borrowed counter. Any failing line rolls back every line.
func (r *Repo) Borrow(ctx context.Context, in BorrowInput) ([]models.Transaction, error) {
	if len(in.Lines) == 0 {
		return nil, errors.New("no borrow lines")
	}
	var created []models.Transaction
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var borrower models.Borrower
		if err := tx.Where("rfid = ?", in.BorrowerRFID).First(&borrower).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBorrowerNotFound
			}
			return err
		}
		var instructor models.Borrower
		if err := tx.Where("rfid = ?", in.InstructorRFID).First(&instructor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInstructorNotFound
			}
			return err
		}

		now := time.Now().UTC()
		for _, line := range in.Lines {
			if line.Quantity <= 0 {
				return ErrInsufficientStock
			}
			var it models.Item
			if err := lockForUpdate(tx).First(&it, "item_id = ?", line.ItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrItemNotFound
				}
				return err
			}
			if it.Quantity-it.Borrowed < line.Quantity {
				return ErrInsufficientStock
			}

			t := models.Transaction{
				UserID:          borrower.UserID,
				AdminID:         in.AdminID,
				InstructorID:    instructor.UserID,
				InstructorRFID:  in.InstructorRFID,
				Subject:         in.Subject,
				Room:            in.Room,
				RFID:            in.BorrowerRFID,
				ItemID:          it.ItemID,
				BorrowedQty:     line.Quantity,
				ReturnedQty:     0,
				BorrowedAt:      now,
				BeforeCondition: line.BeforeCondition,
			}
			if err := tx.Create(&t).Error; err != nil {
				return err
			}

			newBorrowed := it.Borrowed + line.Quantity
			if err := tx.Model(&models.Item{}).
				Where("item_id = ?", it.ItemID).
				Updates(map[string]any{
					"borrowed": newBorrowed,
					"status":   models.ItemStatus(it.Quantity, newBorrowed),
				}).Error; err != nil {
				return err
			}
			created = append(created, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// OpenTransactionsByRFID lists the ledger rows of a borrower that still have
// units outstanding, for the return form.
func (r *Repo) OpenTransactionsByRFID(ctx context.Context, rfid string) ([]models.Transaction, error) {
	var ts []models.Transaction
	err := r.DB.WithContext(ctx).
		Where("rfid = ? AND returned_qty < borrowed_qty", rfid).
		Order("borrowed_at ASC").
		Find(&ts).Error
	return ts, err
}

func (r *Repo) FindTransactionByID(ctx context.Context, borrowID uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.DB.WithContext(ctx).First(&t, "borrow_id = ?", borrowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repo) ListTransactionsByBorrower(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var ts []models.Transaction
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("borrowed_at DESC").
		Find(&ts).Error
	return ts, err
}

// StagePendingReturn records the kiosk's return request for later admin
// confirmation. At most one staging row per borrow; staging a second one is
// rejected.
func (r *Repo) StagePendingReturn(ctx context.Context, borrowID uint, lines []models.ReturnLine) (*models.PendingReturn, error) {
	var pr models.PendingReturn
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Transaction
		if err := tx.First(&t, "borrow_id = ?", borrowID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		if t.ReturnedQty >= t.BorrowedQty {
			return ErrOverReturn
		}
		var n int64
		if err := tx.Model(&models.PendingReturn{}).
			Where("borrow_id = ?", borrowID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrReturnAlreadyPending
		}
		data, err := json.Marshal(lines)
		if err != nil {
			return err
		}
		pr = models.PendingReturn{
			BorrowID:   borrowID,
			UserID:     t.UserID,
			ReturnData: string(data),
		}
		return tx.Create(&pr).Error
	})
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

// ConfirmReturn applies a staged return: bump the ledger's returned counter,
// release the inventory units, append the history snapshot on completion and
// consume the staging row. Confirming the same pending return twice fails
// with ErrPendingNotFound since the row is gone.
func (r *Repo) ConfirmReturn(ctx context.Context, pendingID uint) (*models.Transaction, error) {
	var out *models.Transaction
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pr models.PendingReturn
		if err := lockForUpdate(tx).First(&pr, "id = ?", pendingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPendingNotFound
			}
			return err
		}
		var lines []models.ReturnLine
		if err := json.Unmarshal([]byte(pr.ReturnData), &lines); err != nil {
			return fmt.Errorf("decode return data: %w", err)
		}
		qty := 0
		condition := ""
		for _, l := range lines {
			qty += l.Quantity
			if l.Condition != "" {
				condition = l.Condition
			}
		}

		t, err := applyReturn(tx, pr.BorrowID, qty, condition)
		if err != nil {
			return err
		}
		out = t

		res := tx.Delete(&models.PendingReturn{}, "id = ?", pendingID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPendingNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeclinePendingReturn drops the staging row without touching the ledger.
func (r *Repo) DeclinePendingReturn(ctx context.Context, pendingID uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.PendingReturn{}, "id = ?", pendingID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPendingNotFound
	}
	return nil
}

// DirectReturn applies a counter return with no staging step.
func (r *Repo) DirectReturn(ctx context.Context, borrowID uint, qty int, condition string) (*models.Transaction, error) {
	var out *models.Transaction
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := applyReturn(tx, borrowID, qty, condition)
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// applyReturn holds the shared return bookkeeping. Caller supplies the
// enclosing transaction; the ledger and item rows are locked here.
func applyReturn(tx *gorm.DB, borrowID uint, qty int, condition string) (*models.Transaction, error) {
	var t models.Transaction
	if err := lockForUpdate(tx).First(&t, "borrow_id = ?", borrowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	outstanding := t.BorrowedQty - t.ReturnedQty
	if qty <= 0 || qty > outstanding {
		return nil, ErrOverReturn
	}

	now := time.Now().UTC()
	t.ReturnedQty += qty
	t.AfterCondition = condition
	updates := map[string]any{
		"returned_qty":    t.ReturnedQty,
		"after_condition": t.AfterCondition,
	}
	complete := t.ReturnedQty == t.BorrowedQty
	if complete {
		t.ReturnedAt = &now
		updates["returned_at"] = now
	}
	if err := tx.Model(&models.Transaction{}).
		Where("borrow_id = ?", borrowID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	var it models.Item
	if err := lockForUpdate(tx).First(&it, "item_id = ?", t.ItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	newBorrowed := it.Borrowed - qty
	if newBorrowed < 0 {
		newBorrowed = 0
	}
	if err := tx.Model(&models.Item{}).
		Where("item_id = ?", it.ItemID).
		Updates(map[string]any{
			"borrowed": newBorrowed,
			"status":   models.ItemStatus(it.Quantity, newBorrowed),
		}).Error; err != nil {
		return nil, err
	}

	if complete {
		var b models.Borrower
		borrowerName := ""
		if err := tx.First(&b, "user_id = ?", t.UserID).Error; err == nil {
			borrowerName = b.FirstName + " " + b.LastName
		}
		h := models.History{
			TransactionID: t.BorrowID,
			EquipmentNo:   fmt.Sprintf("%07d", t.ItemID),
			Name:          it.Name,
			Borrower:      borrowerName,
			BorrowDate:    t.BorrowedAt.Format("2006-01-02 15:04"),
			DateReturned:  now.Format("2006-01-02 15:04"),
			Status:        "Returned",
		}
		if err := tx.Create(&h).Error; err != nil {
			return nil, err
		}
	}
	return &t, nil
}
