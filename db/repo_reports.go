package db

import (
	"context"
	"time"

	"lebs_backend/models"
)

// PendingReturnRow is the dashboard view of a staged return joined with the
// borrower and the original borrow.
type PendingReturnRow struct {
	PendingID    uint      `json:"pendingId"`
	BorrowID     uint      `json:"borrowId"`
	UserID       uint      `json:"userId"`
	ReturnData   string    `json:"returnData"`
	CreatedAt    time.Time `json:"createdAt"`
	BorrowerName string    `json:"borrowerName"`
	Department   string    `json:"department"`
	Course       string    `json:"course"`
	ItemName     string    `json:"itemName"`
	BorrowedQty  int       `json:"borrowedQty"`
	ReturnedQty  int       `json:"returnedQty"`
	BorrowedAt   time.Time `json:"borrowedAt"`
}

func (r *Repo) ListPendingReturns(ctx context.Context) ([]PendingReturnRow, error) {
	var rows []PendingReturnRow
	err := r.DB.WithContext(ctx).
		Table(models.PendingReturnTable+" pr").
		Select(`
			pr.id AS pending_id, pr.borrow_id, pr.user_id, pr.return_data, pr.created_at,
			(b.first_name || ' ' || b.last_name) AS borrower_name,
			b.department, b.course,
			i.name AS item_name,
			t.borrowed_qty, t.returned_qty, t.borrowed_at
		`).
		Joins("JOIN "+models.BorrowerTable+" b ON b.user_id = pr.user_id").
		Joins("JOIN "+models.TransactionTable+" t ON t.borrow_id = pr.borrow_id").
		Joins("JOIN "+models.ItemTable+" i ON i.item_id = t.item_id").
		Order("pr.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

type DashboardStats struct {
	Borrowers      int64 `json:"borrowers"`
	Items          int64 `json:"items"`
	OpenBorrows    int64 `json:"openBorrows"`
	Returned       int64 `json:"returned"`
	PendingReturns int64 `json:"pendingReturns"`
}

func (r *Repo) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var s DashboardStats
	db := r.DB.WithContext(ctx)
	if err := db.Model(&models.Borrower{}).Count(&s.Borrowers).Error; err != nil {
		return s, err
	}
	if err := db.Model(&models.Item{}).Count(&s.Items).Error; err != nil {
		return s, err
	}
	if err := db.Model(&models.Transaction{}).
		Where("returned_qty < borrowed_qty").
		Count(&s.OpenBorrows).Error; err != nil {
		return s, err
	}
	if err := db.Model(&models.Transaction{}).
		Where("returned_at IS NOT NULL").
		Count(&s.Returned).Error; err != nil {
		return s, err
	}
	if err := db.Model(&models.PendingReturn{}).Count(&s.PendingReturns).Error; err != nil {
		return s, err
	}
	return s, nil
}

func (r *Repo) ListHistory(ctx context.Context) ([]models.History, error) {
	var hs []models.History
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&hs).Error
	return hs, err
}

// WeeklyBorrowCounts sums borrowed quantities per day for the seven days
// starting at monday, for the dashboard chart.
func (r *Repo) WeeklyBorrowCounts(ctx context.Context, monday time.Time) ([]int64, error) {
	counts := make([]int64, 7)
	for i := 0; i < 7; i++ {
		dayStart := monday.AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1)
		var total int64
		if err := r.DB.WithContext(ctx).Model(&models.Transaction{}).
			Select("COALESCE(SUM(borrowed_qty), 0)").
			Where("borrowed_at >= ? AND borrowed_at < ?", dayStart, dayEnd).
			Scan(&total).Error; err != nil {
			return nil, err
		}
		counts[i] = total
	}
	return counts, nil
}
