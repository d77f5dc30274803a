package db

import (
	"testing"

	"lebs_backend/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))
	return NewRepo(conn)
}

func seedBorrower(t *testing.T, r *Repo, rfid, borrowerID, role string) *models.Borrower {
	t.Helper()
	b := &models.Borrower{
		RFID:       rfid,
		BorrowerID: borrowerID,
		FirstName:  "Test",
		LastName:   role,
		Department: "CCIS",
		Course:     "BSCS",
		Role:       role,
		Email:      borrowerID + "@example.edu",
	}
	require.NoError(t, r.DB.Create(b).Error)
	return b
}

func seedItem(t *testing.T, r *Repo, name string, quantity int) *models.Item {
	t.Helper()
	it := &models.Item{
		Name:     name,
		Type:     "Hand Tools",
		Quantity: quantity,
		Status:   models.ItemStatus(quantity, 0),
	}
	require.NoError(t, r.DB.Create(it).Error)
	return it
}
