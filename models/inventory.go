package models

import "time"

const ItemTable = "lebs_inventory"
const ItemArchiveTable = "lebs_inventory_archive"

const (
	StatusAvailable   = "Available"
	StatusUnavailable = "Unavailable"
)

// Item is one equipment line in the inventory. Quantity is the number of
// units owned, Borrowed the number currently out. Status is a stored
// projection of the two counters; ItemStatus is the only rule that writes it.
type Item struct {
	ItemID   uint   `gorm:"primaryKey" json:"itemId"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Type     string `gorm:"size:100" json:"type"`
	Quantity int    `gorm:"not null;default:0" json:"quantity"`
	Borrowed int    `gorm:"not null;default:0" json:"borrowed"`
	Status   string `gorm:"size:20;not null;default:'Available'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemStatus derives the availability label from the counters.
func ItemStatus(quantity, borrowed int) string {
	if borrowed < quantity {
		return StatusAvailable
	}
	return StatusUnavailable
}

// ItemArchive keeps removed equipment restorable.
type ItemArchive struct {
	ArchiveID uint   `gorm:"primaryKey" json:"archiveId"`
	ItemID    uint   `gorm:"index" json:"itemId"`
	Name      string `gorm:"size:100;not null" json:"name"`
	Type      string `gorm:"size:100" json:"type"`
	Quantity  int    `gorm:"not null;default:0" json:"quantity"`
	Borrowed  int    `gorm:"not null;default:0" json:"borrowed"`
	Status    string `gorm:"size:20" json:"status"`

	DeletedAt time.Time `gorm:"autoCreateTime" json:"deletedAt"`
}

func (Item) TableName() string        { return ItemTable }
func (ItemArchive) TableName() string { return ItemArchiveTable }
