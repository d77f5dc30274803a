package db

import (
	"context"
	"testing"

	"lebs_backend/models"

	"github.com/stretchr/testify/require"
)

func TestItemStatusRule(t *testing.T) {
	require.Equal(t, models.StatusAvailable, models.ItemStatus(4, 0))
	require.Equal(t, models.StatusAvailable, models.ItemStatus(4, 3))
	require.Equal(t, models.StatusUnavailable, models.ItemStatus(4, 4))
	require.Equal(t, models.StatusUnavailable, models.ItemStatus(0, 0))
}

func TestEditItemClampsQuantity(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	seedBorrower(t, r, "CARD-9", "I-900", "Instructor")
	item := seedItem(t, r, "Multimeter", 4)
	borrowOne(t, r, "CARD-1", "CARD-9", item.ItemID, 3)

	// cannot shrink below units currently out
	_, err := r.EditItem(context.Background(), item.ItemID, "Multimeter", "Hand Tools", 2)
	require.ErrorIs(t, err, ErrInsufficientStock)

	got, err := r.EditItem(context.Background(), item.ItemID, "Multimeter", "Hand Tools", 3)
	require.NoError(t, err)
	require.Equal(t, 3, got.Quantity)
	require.Equal(t, models.StatusUnavailable, got.Status)

	got, err = r.EditItem(context.Background(), item.ItemID, "Digital Multimeter", "Instruments", 6)
	require.NoError(t, err)
	require.Equal(t, models.StatusAvailable, got.Status)
	require.Equal(t, "Digital Multimeter", got.Name)
}

func TestArchiveAndRestoreItem(t *testing.T) {
	r := newTestRepo(t)
	item := seedItem(t, r, "Oscilloscope", 1)

	require.NoError(t, r.ArchiveItem(context.Background(), item.ItemID))
	_, err := r.FindItemByID(context.Background(), item.ItemID)
	require.ErrorIs(t, err, ErrItemNotFound)

	archived, err := r.ListArchivedItems(context.Background())
	require.NoError(t, err)
	require.Len(t, archived, 1)

	restored, err := r.RestoreItem(context.Background(), archived[0].ArchiveID)
	require.NoError(t, err)
	require.Equal(t, "Oscilloscope", restored.Name)
	require.Equal(t, 0, restored.Borrowed)
	require.Equal(t, models.StatusAvailable, restored.Status)
}

func TestArchiveItemWithUnitsOutRejected(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	seedBorrower(t, r, "CARD-9", "I-900", "Instructor")
	item := seedItem(t, r, "Multimeter", 4)
	borrowOne(t, r, "CARD-1", "CARD-9", item.ItemID, 1)

	require.ErrorIs(t, r.ArchiveItem(context.Background(), item.ItemID), ErrInsufficientStock)
}

func TestArchiveAndRestoreBorrower(t *testing.T) {
	r := newTestRepo(t)
	b := seedBorrower(t, r, "CARD-1", "S-100", "Student")

	require.NoError(t, r.ArchiveBorrower(context.Background(), b.UserID))
	_, err := r.FindBorrowerByRFID(context.Background(), "CARD-1")
	require.ErrorIs(t, err, ErrBorrowerNotFound)

	archived, err := r.ListArchivedBorrowers(context.Background())
	require.NoError(t, err)
	require.Len(t, archived, 1)

	restored, err := r.RestoreBorrower(context.Background(), archived[0].ArchiveID)
	require.NoError(t, err)
	require.Equal(t, "CARD-1", restored.RFID)
	require.Equal(t, "S-100", restored.BorrowerID)
}

func TestListBorrowersSearch(t *testing.T) {
	r := newTestRepo(t)
	seedBorrower(t, r, "CARD-1", "S-100", "Student")
	seedBorrower(t, r, "CARD-2", "S-200", "Student")
	seedBorrower(t, r, "CARD-9", "I-900", "Instructor")

	res, err := r.ListBorrowers(context.Background(), "s-2", 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	require.Equal(t, "S-200", res.Borrowers[0].BorrowerID)

	res, err = r.ListBorrowers(context.Background(), "", 1, 2)
	require.NoError(t, err)
	require.EqualValues(t, 3, res.Total)
	require.Len(t, res.Borrowers, 2)
}
