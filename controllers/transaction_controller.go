package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"lebs_backend/app"
	"lebs_backend/db"
	"lebs_backend/mail"
	"lebs_backend/models"
	"lebs_backend/notify"

	"github.com/gin-gonic/gin"
)

type TransactionController struct{ *Srv }

func NewTransactionController(s *Srv) *TransactionController {
	return &TransactionController{Srv: s}
}

type borrowLineReq struct {
	ItemID          uint   `json:"itemId" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required,min=1"`
	BeforeCondition string `json:"beforeCondition"`
}

type borrowReq struct {
	RFID           string          `json:"rfid" binding:"required"`
	InstructorRFID string          `json:"instructorRfid" binding:"required"`
	Subject        string          `json:"subject" binding:"required"`
	Room           string          `json:"room" binding:"required"`
	Lines          []borrowLineReq `json:"lines" binding:"required,min=1,dive"`
}

// Borrow records a borrow event against the scanned cards. All lines commit
// together or not at all.
func (tc *TransactionController) Borrow(c *gin.Context) {
	var req borrowReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request: " + err.Error()})
		return
	}
	adminID, _ := app.AdminID(c)

	in := db.BorrowInput{
		BorrowerRFID:   req.RFID,
		InstructorRFID: req.InstructorRFID,
		AdminID:        adminID,
		Subject:        req.Subject,
		Room:           req.Room,
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, db.BorrowLine{
			ItemID:          l.ItemID,
			Quantity:        l.Quantity,
			BeforeCondition: l.BeforeCondition,
		})
	}

	created, err := tc.Repo.Borrow(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrBorrowerNotFound),
			errors.Is(err, db.ErrInstructorNotFound),
			errors.Is(err, db.ErrItemNotFound):
			c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
		case errors.Is(err, db.ErrInsufficientStock):
			c.JSON(http.StatusConflict, app.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		}
		return
	}

	tc.Notify.Publish(c.Request.Context(), notify.EventBorrowRecorded, app.H{
		"rfid":      req.RFID,
		"borrowIds": borrowIDs(created),
	})
	c.JSON(http.StatusCreated, app.H{"transactions": created})
}

// OpenByRFID lists a borrower's outstanding items, for the return form.
func (tc *TransactionController) OpenByRFID(c *gin.Context) {
	rfid := c.Param("rfid")
	if _, err := tc.Repo.FindBorrowerByRFID(c.Request.Context(), rfid); err != nil {
		if errors.Is(err, db.ErrBorrowerNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "no borrower found for this RFID"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	ts, err := tc.Repo.OpenTransactionsByRFID(c.Request.Context(), rfid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"transactions": ts})
}

type returnReq struct {
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Condition string `json:"condition"`
}

// Return applies a counter return directly against the ledger.
func (tc *TransactionController) Return(c *gin.Context) {
	borrowID, err := strconv.ParseUint(c.Param("borrowId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid borrow id"})
		return
	}
	var req returnReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request: " + err.Error()})
		return
	}
	t, err := tc.Repo.DirectReturn(c.Request.Context(), uint(borrowID), req.Quantity, req.Condition)
	if err != nil {
		tc.writeReturnErr(c, err)
		return
	}
	tc.Notify.Publish(c.Request.Context(), notify.EventReturnConfirmed, app.H{
		"borrowId": t.BorrowID,
		"complete": t.ReturnedAt != nil,
	})
	c.JSON(http.StatusOK, t)
}

// StageReturn records a kiosk return request for later confirmation.
func (tc *TransactionController) StageReturn(c *gin.Context) {
	borrowID, err := strconv.ParseUint(c.Param("borrowId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid borrow id"})
		return
	}
	var req struct {
		Lines []returnReq `json:"lines" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request: " + err.Error()})
		return
	}
	lines := make([]models.ReturnLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, models.ReturnLine{Quantity: l.Quantity, Condition: l.Condition})
	}
	pr, err := tc.Repo.StagePendingReturn(c.Request.Context(), uint(borrowID), lines)
	if err != nil {
		tc.writeReturnErr(c, err)
		return
	}
	tc.Notify.Publish(c.Request.Context(), notify.EventReturnRequested, app.H{
		"pendingId": pr.ID,
		"borrowId":  pr.BorrowID,
	})
	c.JSON(http.StatusCreated, pr)
}

// ConfirmReturn applies a staged return. Confirming it twice fails the
// second time.
func (tc *TransactionController) ConfirmReturn(c *gin.Context) {
	pendingID, err := strconv.ParseUint(c.Param("pendingId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid pending id"})
		return
	}
	t, err := tc.Repo.ConfirmReturn(c.Request.Context(), uint(pendingID))
	if err != nil {
		tc.writeReturnErr(c, err)
		return
	}
	tc.Notify.Publish(c.Request.Context(), notify.EventReturnConfirmed, app.H{
		"borrowId": t.BorrowID,
		"complete": t.ReturnedAt != nil,
	})
	c.JSON(http.StatusOK, t)
}

func (tc *TransactionController) DeclineReturn(c *gin.Context) {
	pendingID, err := strconv.ParseUint(c.Param("pendingId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid pending id"})
		return
	}
	if err := tc.Repo.DeclinePendingReturn(c.Request.Context(), uint(pendingID)); err != nil {
		tc.writeReturnErr(c, err)
		return
	}
	tc.Notify.Publish(c.Request.Context(), notify.EventReturnDeclined, app.H{
		"pendingId": pendingID,
	})
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (tc *TransactionController) writeReturnErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrTransactionNotFound), errors.Is(err, db.ErrItemNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrOverReturn),
		errors.Is(err, db.ErrReturnAlreadyPending),
		errors.Is(err, db.ErrPendingNotFound):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}

// Slip assembles the printable-slip payload for one transaction; rendering
// is left to the external slip service.
func (tc *TransactionController) Slip(c *gin.Context) {
	borrowID, err := strconv.ParseUint(c.Param("borrowId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid borrow id"})
		return
	}
	ctx := c.Request.Context()
	t, err := tc.Repo.FindTransactionByID(ctx, uint(borrowID))
	if err != nil {
		if errors.Is(err, db.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	borrower, err := tc.Repo.FindBorrowerByID(ctx, t.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	item, err := tc.Repo.FindItemByID(ctx, t.ItemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	slip := app.H{
		"transactionNumber": fmt.Sprintf("%07d", t.BorrowID),
		"name":              borrower.FirstName + " " + borrower.LastName,
		"borrowerId":        borrower.BorrowerID,
		"department":        borrower.Department,
		"course":            borrower.Course,
		"subject":           t.Subject,
		"room":              t.Room,
		"item":              item.Name,
		"borrowedQty":       t.BorrowedQty,
		"returnedQty":       t.ReturnedQty,
		"beforeCondition":   t.BeforeCondition,
		"afterCondition":    t.AfterCondition,
		"borrowedAt":        t.BorrowedAt,
		"returnedAt":        t.ReturnedAt,
	}
	if instr, err := tc.Repo.FindBorrowerByRFID(ctx, t.InstructorRFID); err == nil {
		slip["instructorName"] = instr.FirstName + " " + instr.LastName
	}
	if admin, err := tc.Repo.FindAdminByID(ctx, t.AdminID); err == nil {
		slip["adminName"] = admin.FirstName + " " + admin.LastName
	}

	// fire and forget, the slip itself is the response
	if tc.Mailer != nil && borrower.Email != "" {
		no := fmt.Sprintf("%07d", t.BorrowID)
		to, itemName, qty := borrower.Email, item.Name, t.BorrowedQty
		go func() {
			_ = tc.Mailer.Send(context.Background(), to, "LEBS Borrow Slip "+no, mail.SlipBody(no, itemName, qty))
		}()
	}
	c.JSON(http.StatusOK, slip)
}

func borrowIDs(ts []models.Transaction) []uint {
	ids := make([]uint, 0, len(ts))
	for _, t := range ts {
		ids = append(ids, t.BorrowID)
	}
	return ids
}
