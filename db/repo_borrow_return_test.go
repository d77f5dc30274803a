package db

import (
	"context"
	"testing"

	"lebs_backend/models"

	"github.com/stretchr/testify/require"
)

func borrowOne(t *testing.T, r *Repo, borrowerRFID, instructorRFID string, itemID uint, qty int) models.Transaction {
	t.Helper()
	created, err := r.Borrow(context.Background(), BorrowInput{
		BorrowerRFID:   borrowerRFID,
		InstructorRFID: instructorRFID,
		AdminID:        1,
		Subject:        "Physics Lab",
		Room:           "B-402",
		Lines:          []BorrowLine{{ItemID: itemID, Quantity: qty, BeforeCondition: "Good"}},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func TestBorrowUpdatesInventory(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	seedBorrower(t, r, "CARD-9", "I-900", "Instructor")
	item := seedItem(t, r, "Multimeter", 4)

	tx := borrowOne(t, r, "CARD-1", "CARD-9", item.ItemID, 2)
	require.Equal(t, 2, tx.BorrowedQty)
	require.Equal(t, 0, tx.ReturnedQty)
	require.Nil(t, tx.ReturnedAt)

	got, err := r.FindItemByID(context.Background(), item.ItemID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Borrowed)
	require.Equal(t, models.StatusAvailable, got.Status)

	// taking the last free units flips the status
	borrowOne(t, r, "CARD-1", "CARD-9", item.ItemID, 2)
	got, err = r.FindItemByID(context.Background(), item.ItemID)
	require.NoError(t, err)
	require.Equal(t, 4, got.Borrowed)
	require.Equal(t, models.StatusUnavailable, got.Status)
}

func TestBorrowInsufficientStock(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	seedBorrower(t, r, "CARD-9", "I-900", "Instructor")
	item := seedItem(t, r, "Multimeter", 4)
	borrowOne(t, r, "CARD-1", "CARD-9", item.ItemID, 2)

	_, err := r.Borrow(context.Background(), BorrowInput{
		BorrowerRFID:   "CARD-1",
		InstructorRFID: "CARD-9",
		AdminID:        1,
		Subject:        "Physics Lab",
		Room:           "B-402",
		Lines:          []BorrowLine{{ItemID: item.ItemID, Quantity: 3}},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// rejected borrow leaves ledger and inventory untouched
	var n int64
	require.NoError(t, r.DB.Model(&models.Transaction{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
	got, err := r.FindItemByID(context.Background(), item.ItemID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Borrowed)
}

func TestBorrowAllLinesOrNothing(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	seedBorrower(t, r, "CARD-9", "I-900", "Instructor")
	a := seedItem(t, r, "Claw Hammer", 4)
	b := seedItem(t, r, "Hacksaw", 1)

	_, err := r.Borrow(context.Background(), BorrowInput{
		BorrowerRFID:   "CARD-1",
		InstructorRFID: "CARD-9",
		AdminID:        1,
		Subject:        "Workshop",
		Room:           "B-101",
		Lines: []BorrowLine{
			{ItemID: a.ItemID, Quantity: 2},
			{ItemID: b.ItemID, Quantity: 2}, // only 1 available
		},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	gotA, err := r.FindItemByID(context.Background(), a.ItemID)
	require.NoError(t, err)
	require.Equal(t, 0, gotA.Borrowed)
	var n int64
	require.NoError(t, r.DB.Model(&models.Transaction{}).Count(&n).Error)
	require.EqualValues(t, 0, n)
}

func TestBorrowUnknownCards(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	item := seedItem(t, r, "Multimeter", 4)

	_, err := r.Borrow(context.Background(), BorrowInput{
		BorrowerRFID:   "NOPE",
		InstructorRFID: "CARD-1",
		AdminID:        1,
		Subject:        "x", Room: "x",
		Lines: []BorrowLine{{ItemID: item.ItemID, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrBorrowerNotFound)

	_, err = r.Borrow(context.Background(), BorrowInput{
		BorrowerRFID:   "CARD-1",
		InstructorRFID: "NOPE",
		AdminID:        1,
		Subject:        "x", Room: "x",
		Lines: []BorrowLine{{ItemID: item.ItemID, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrInstructorNotFound)

	_, err = r.Borrow(context.Background(), BorrowInput{
		BorrowerRFID:   "CARD-1",
		InstructorRFID: "CARD-1",
		AdminID:        1,
		Subject:        "x", Room: "x",
		Lines: []BorrowLine{{ItemID: 999, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestDirectReturnFullCycle(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	seedBorrower(t, r, "CARD-9", "I-900", "Instructor")
	item := seedItem(t, r, "Multimeter", 4)
	tx := borrowOne(t, r, "CARD-1", "CARD-9", item.ItemID, 2)

	got, err := r.DirectReturn(context.Background(), tx.BorrowID, 2, "Good")
	require.NoError(t, err)
	require.Equal(t, 2, got.ReturnedQty)
	require.NotNil(t, got.ReturnedAt)

	it, err := r.FindItemByID(context.Background(), item.ItemID)
	require.NoError(t, err)
	require.Equal(t, 0, it.Borrowed)
	require.Equal(t, models.StatusAvailable, it.Status)

	// completed return lands in the history projection
	hs, err := r.ListHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, hs, 1)
	require.Equal(t, tx.BorrowID, hs[0].TransactionID)
	require.Equal(t, "Returned", hs[0].Status)
}

func TestPartialReturnKeepsReturnDateNull(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	seedBorrower(t, r, "CARD-9", "I-900", "Instructor")
	item := seedItem(t, r, "Chisels", 10)
	tx := borrowOne(t, r, "CARD-1", "CARD-9", item.ItemID, 3)

	got, err := r.DirectReturn(context.Background(), tx.BorrowID, 1, "Scratched")
	require.NoError(t, err)
	require.Equal(t, 1, got.ReturnedQty)
	require.Equal(t, "Scratched", got.AfterCondition)
	require.Nil(t, got.ReturnedAt)

	it, err := r.FindItemByID(context.Background(), item.ItemID)
	require.NoError(t, err)
	require.Equal(t, 2, it.Borrowed)

	hs, err := r.ListHistory(context.Background())
	require.NoError(t, err)
	require.Empty(t, hs)
}

func TestOverReturnRejected(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	seedBorrower(t, r, "CARD-9", "I-900", "Instructor")
	item := seedItem(t, r, "Multimeter", 4)
	tx := borrowOne(t, r, "CARD-1", "CARD-9", item.ItemID, 2)

	_, err := r.DirectReturn(context.Background(), tx.BorrowID, 3, "")
	require.ErrorIs(t, err, ErrOverReturn)

	got, err := r.FindTransactionByID(context.Background(), tx.BorrowID)
	require.NoError(t, err)
	require.Equal(t, 0, got.ReturnedQty)
	it, err := r.FindItemByID(context.Background(), item.ItemID)
	require.NoError(t, err)
	require.Equal(t, 2, it.Borrowed)
}

func TestStagedReturnConfirm(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	seedBorrower(t, r, "CARD-9", "I-900", "Instructor")
	item := seedItem(t, r, "Multimeter", 4)
	tx := borrowOne(t, r, "CARD-1", "CARD-9", item.ItemID, 2)

	pr, err := r.StagePendingReturn(context.Background(), tx.BorrowID, []models.ReturnLine{
		{Quantity: 2, Condition: "Good"},
	})
	require.NoError(t, err)

	// a second staging for the same borrow is rejected
	_, err = r.StagePendingReturn(context.Background(), tx.BorrowID, []models.ReturnLine{
		{Quantity: 1, Condition: "Good"},
	})
	require.ErrorIs(t, err, ErrReturnAlreadyPending)

	got, err := r.ConfirmReturn(context.Background(), pr.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.ReturnedQty)
	require.NotNil(t, got.ReturnedAt)

	it, err := r.FindItemByID(context.Background(), item.ItemID)
	require.NoError(t, err)
	require.Equal(t, 0, it.Borrowed)

	// double confirmation: the staging row is gone, state untouched
	_, err = r.ConfirmReturn(context.Background(), pr.ID)
	require.ErrorIs(t, err, ErrPendingNotFound)
	it, err = r.FindItemByID(context.Background(), item.ItemID)
	require.NoError(t, err)
	require.Equal(t, 0, it.Borrowed)
}

func TestDeclinePendingReturn(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	seedBorrower(t, r, "CARD-9", "I-900", "Instructor")
	item := seedItem(t, r, "Multimeter", 4)
	tx := borrowOne(t, r, "CARD-1", "CARD-9", item.ItemID, 2)

	pr, err := r.StagePendingReturn(context.Background(), tx.BorrowID, []models.ReturnLine{
		{Quantity: 2, Condition: "Good"},
	})
	require.NoError(t, err)
	require.NoError(t, r.DeclinePendingReturn(context.Background(), pr.ID))

	// decline touches neither ledger nor inventory
	got, err := r.FindTransactionByID(context.Background(), tx.BorrowID)
	require.NoError(t, err)
	require.Equal(t, 0, got.ReturnedQty)
	it, err := r.FindItemByID(context.Background(), item.ItemID)
	require.NoError(t, err)
	require.Equal(t, 2, it.Borrowed)

	require.ErrorIs(t, r.DeclinePendingReturn(context.Background(), pr.ID), ErrPendingNotFound)
}

func TestOpenTransactionsByRFID(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	seedBorrower(t, r, "CARD-9", "I-900", "Instructor")
	item := seedItem(t, r, "Multimeter", 4)
	tx := borrowOne(t, r, "CARD-1", "CARD-9", item.ItemID, 2)

	open, err := r.OpenTransactionsByRFID(context.Background(), "CARD-1")
	require.NoError(t, err)
	require.Len(t, open, 1)

	_, err = r.DirectReturn(context.Background(), tx.BorrowID, 2, "Good")
	require.NoError(t, err)

	open, err = r.OpenTransactionsByRFID(context.Background(), "CARD-1")
	require.NoError(t, err)
	require.Empty(t, open)
}

func TestPendingReturnDashboardRow(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	seedBorrower(t, r, "CARD-9", "I-900", "Instructor")
	item := seedItem(t, r, "Multimeter", 4)
	tx := borrowOne(t, r, "CARD-1", "CARD-9", item.ItemID, 2)

	_, err := r.StagePendingReturn(context.Background(), tx.BorrowID, []models.ReturnLine{
		{Quantity: 1, Condition: "Good"},
	})
	require.NoError(t, err)

	rows, err := r.ListPendingReturns(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, tx.BorrowID, rows[0].BorrowID)
	require.Equal(t, "Multimeter", rows[0].ItemName)
	require.Equal(t, "Test Student", rows[0].BorrowerName)

	stats, err := r.DashboardStats(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.PendingReturns)
	require.EqualValues(t, 1, stats.OpenBorrows)
}
