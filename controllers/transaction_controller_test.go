package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"lebs_backend/db"
	"lebs_backend/models"
	"lebs_backend/notify"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) (*gin.Engine, *db.Repo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	repo := db.NewRepo(gdb)

	srv := &Srv{Repo: repo, Notify: notify.New(nil)}
	tc := NewTransactionController(srv)

	r := gin.New()
	// stand-in for the session middleware
	r.Use(func(c *gin.Context) { c.Set("adminID", uint(1)) })
	r.POST("/api/transactions/borrow", tc.Borrow)
	r.GET("/api/transactions/open/:rfid", tc.OpenByRFID)
	r.POST("/api/transactions/:borrowId/return", tc.Return)
	return r, repo
}

func seedCardsAndItem(t *testing.T, repo *db.Repo, quantity int) *models.Item {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.CreateBorrower(ctx, &models.Borrower{
		RFID: "CARD-1", BorrowerID: "S-100", FirstName: "Ana", LastName: "Reyes",
		Department: "CET", Course: "BSEE", Role: "Student",
	}))
	require.NoError(t, repo.CreateBorrower(ctx, &models.Borrower{
		RFID: "CARD-9", BorrowerID: "I-900", FirstName: "Luis", LastName: "Cruz",
		Role: "Instructor",
	}))
	it := &models.Item{Name: "Multimeter", Type: "Instruments", Quantity: quantity}
	require.NoError(t, repo.CreateItem(ctx, it))
	return it
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBorrowEndpoint(t *testing.T) {
	r, repo := newTestRouter(t)
	item := seedCardsAndItem(t, repo, 4)

	w := postJSON(t, r, "/api/transactions/borrow", gin.H{
		"rfid":           "CARD-1",
		"instructorRfid": "CARD-9",
		"subject":        "Circuits 1",
		"room":           "B-204",
		"lines": []gin.H{
			{"itemId": item.ItemID, "quantity": 2, "beforeCondition": "Good"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Transactions []models.Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 1)
	require.Equal(t, 2, resp.Transactions[0].BorrowedQty)
	require.EqualValues(t, 1, resp.Transactions[0].AdminID)

	got, err := repo.FindItemByID(context.Background(), item.ItemID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Borrowed)
}

func TestBorrowEndpointInsufficientStock(t *testing.T) {
	r, repo := newTestRouter(t)
	item := seedCardsAndItem(t, repo, 1)

	w := postJSON(t, r, "/api/transactions/borrow", gin.H{
		"rfid":           "CARD-1",
		"instructorRfid": "CARD-9",
		"subject":        "Circuits 1",
		"room":           "B-204",
		"lines": []gin.H{
			{"itemId": item.ItemID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusConflict, w.Code)

	got, err := repo.FindItemByID(context.Background(), item.ItemID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Borrowed)
}

func TestBorrowEndpointUnknownCard(t *testing.T) {
	r, repo := newTestRouter(t)
	item := seedCardsAndItem(t, repo, 4)

	w := postJSON(t, r, "/api/transactions/borrow", gin.H{
		"rfid":           "NO-SUCH-CARD",
		"instructorRfid": "CARD-9",
		"subject":        "Circuits 1",
		"room":           "B-204",
		"lines": []gin.H{
			{"itemId": item.ItemID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestBorrowEndpointRejectsEmptyLines(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(t, r, "/api/transactions/borrow", gin.H{
		"rfid":           "CARD-1",
		"instructorRfid": "CARD-9",
		"subject":        "Circuits 1",
		"room":           "B-204",
		"lines":          []gin.H{},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReturnEndpoint(t *testing.T) {
	r, repo := newTestRouter(t)
	item := seedCardsAndItem(t, repo, 4)

	w := postJSON(t, r, "/api/transactions/borrow", gin.H{
		"rfid":           "CARD-1",
		"instructorRfid": "CARD-9",
		"subject":        "Circuits 1",
		"room":           "B-204",
		"lines": []gin.H{
			{"itemId": item.ItemID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Transactions []models.Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	borrowID := resp.Transactions[0].BorrowID

	w = postJSON(t, r, fmt.Sprintf("/api/transactions/%d/return", borrowID),
		gin.H{"quantity": 2, "condition": "Good"})
	require.Equal(t, http.StatusOK, w.Code)

	// over-return against a settled transaction
	w = postJSON(t, r, fmt.Sprintf("/api/transactions/%d/return", borrowID),
		gin.H{"quantity": 1, "condition": "Good"})
	require.Equal(t, http.StatusConflict, w.Code)

	got, err := repo.FindItemByID(context.Background(), item.ItemID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Borrowed)
	require.Equal(t, models.StatusAvailable, got.Status)
}

func TestOpenByRFIDEndpoint(t *testing.T) {
	r, repo := newTestRouter(t)
	item := seedCardsAndItem(t, repo, 4)

	w := postJSON(t, r, "/api/transactions/borrow", gin.H{
		"rfid":           "CARD-1",
		"instructorRfid": "CARD-9",
		"subject":        "Circuits 1",
		"room":           "B-204",
		"lines": []gin.H{
			{"itemId": item.ItemID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/open/CARD-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var open struct {
		Transactions []models.Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &open))
	require.Len(t, open.Transactions, 1)

	req = httptest.NewRequest(http.MethodGet, "/api/transactions/open/NO-SUCH-CARD", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
