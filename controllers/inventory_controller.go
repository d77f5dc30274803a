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

type InventoryController struct{ *Srv }

func NewInventoryController(s *Srv) *InventoryController { return &InventoryController{Srv: s} }

func (ic *InventoryController) Add(c *gin.Context) {
	var in struct {
		Name     string `json:"name" binding:"required"`
		Type     string `json:"type"`
		Quantity int    `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it := &models.Item{Name: in.Name, Type: in.Type, Quantity: in.Quantity}
	if err := ic.Repo.CreateItem(c.Request.Context(), it); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (ic *InventoryController) List(c *gin.Context) {
	items, err := ic.Repo.ListItems(c.Request.Context(), c.Query("q"), c.Query("type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

func (ic *InventoryController) Edit(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid item id"})
		return
	}
	var in struct {
		Name     string `json:"name" binding:"required"`
		Type     string `json:"type"`
		Quantity int    `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it, err := ic.Repo.EditItem(c.Request.Context(), uint(itemID), in.Name, in.Type, in.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrItemNotFound):
			c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
		case errors.Is(err, db.ErrInsufficientStock):
			c.JSON(http.StatusConflict, app.H{"error": "quantity cannot drop below units currently out"})
		default:
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, it)
}

func (ic *InventoryController) Archive(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid item id"})
		return
	}
	if err := ic.Repo.ArchiveItem(c.Request.Context(), uint(itemID)); err != nil {
		switch {
		case errors.Is(err, db.ErrItemNotFound):
			c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
		case errors.Is(err, db.ErrInsufficientStock):
			c.JSON(http.StatusConflict, app.H{"error": "item has units still out"})
		default:
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (ic *InventoryController) ListArchived(c *gin.Context) {
	as, err := ic.Repo.ListArchivedItems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": as})
}

func (ic *InventoryController) Restore(c *gin.Context) {
	archiveID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid archive id"})
		return
	}
	it, err := ic.Repo.RestoreItem(c.Request.Context(), uint(archiveID))
	if err != nil {
		if errors.Is(err, db.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, it)
}
