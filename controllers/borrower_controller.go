package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"lebs_backend/app"
	"lebs_backend/db"
	"lebs_backend/models"

	"github.com/gin-gonic/gin"
)

type BorrowerController struct{ *Srv }

func NewBorrowerController(s *Srv) *BorrowerController { return &BorrowerController{Srv: s} }

// Register enrolls a borrower against a scanned RFID card.
func (bc *BorrowerController) Register(c *gin.Context) {
	var in struct {
		RFID       string `json:"rfid" binding:"required"`
		BorrowerID string `json:"borrowerId" binding:"required"`
		FirstName  string `json:"firstName" binding:"required"`
		LastName   string `json:"lastName" binding:"required"`
		Department string `json:"department"`
		Course     string `json:"course"`
		Role       string `json:"role"`
		Email      string `json:"email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Role == "" {
		in.Role = "Student"
	}
	b := &models.Borrower{
		RFID:       in.RFID,
		BorrowerID: in.BorrowerID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Department: in.Department,
		Course:     in.Course,
		Role:       in.Role,
		Email:      in.Email,
	}
	if err := bc.Repo.CreateBorrower(c.Request.Context(), b); err != nil {
		// uniqueness on rfid/borrower_id surfaces here
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (bc *BorrowerController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	res, err := bc.Repo.ListBorrowers(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Scan resolves an RFID card to its borrower, for the scanner screens.
func (bc *BorrowerController) Scan(c *gin.Context) {
	rfid := c.Param("rfid")
	b, err := bc.Repo.FindBorrowerByRFID(c.Request.Context(), rfid)
	if err != nil {
		if errors.Is(err, db.ErrBorrowerNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "no borrower found for this RFID"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (bc *BorrowerController) Update(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid borrower id"})
		return
	}
	var in struct {
		FirstName  string `json:"firstName"`
		LastName   string `json:"lastName"`
		Department string `json:"department"`
		Course     string `json:"course"`
		Role       string `json:"role"`
		Email      string `json:"email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	fields := map[string]any{}
	if in.FirstName != "" {
		fields["first_name"] = in.FirstName
	}
	if in.LastName != "" {
		fields["last_name"] = in.LastName
	}
	if in.Department != "" {
		fields["department"] = in.Department
	}
	if in.Course != "" {
		fields["course"] = in.Course
	}
	if in.Role != "" {
		fields["role"] = in.Role
	}
	if in.Email != "" {
		fields["email"] = in.Email
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "nothing to update"})
		return
	}
	if err := bc.Repo.UpdateBorrower(c.Request.Context(), uint(userID), fields); err != nil {
		if errors.Is(err, db.ErrBorrowerNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (bc *BorrowerController) Archive(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid borrower id"})
		return
	}
	if err := bc.Repo.ArchiveBorrower(c.Request.Context(), uint(userID)); err != nil {
		if errors.Is(err, db.ErrBorrowerNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (bc *BorrowerController) ListArchived(c *gin.Context) {
	as, err := bc.Repo.ListArchivedBorrowers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"borrowers": as})
}

func (bc *BorrowerController) Restore(c *gin.Context) {
	archiveID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid archive id"})
		return
	}
	b, err := bc.Repo.RestoreBorrower(c.Request.Context(), uint(archiveID))
	if err != nil {
		if errors.Is(err, db.ErrBorrowerNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b)
}

// Transactions lists a borrower's ledger rows.
func (bc *BorrowerController) Transactions(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid borrower id"})
		return
	}
	ts, err := bc.Repo.ListTransactionsByBorrower(c.Request.Context(), uint(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"transactions": ts})
}
