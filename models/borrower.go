package models

import "time"

const BorrowerTable = "lebs_borrowers"
const BorrowerArchiveTable = "lebs_borrowers_archive"

// Borrower is a registered student or instructor. RFID is the physical card
// scanned to authorize a transaction; BorrowerID is the school-issued ID.
type Borrower struct {
	UserID     uint   `gorm:"primaryKey" json:"userId"`
	RFID       string `gorm:"column:rfid;uniqueIndex;size:50;not null" json:"rfid"`
	BorrowerID string `gorm:"uniqueIndex;size:15;not null" json:"borrowerId"`
	LastName   string `gorm:"size:50;not null" json:"lastName"`
	FirstName  string `gorm:"size:50;not null" json:"firstName"`
	Department string `gorm:"size:30" json:"department"`
	Course     string `gorm:"size:70" json:"course"`
	Role       string `gorm:"size:30;not null;default:'Student'" json:"role"`
	Email      string `gorm:"size:100" json:"email"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BorrowerArchive is the snapshot written when a borrower is removed from
// the active registry. Restoring moves it back.
type BorrowerArchive struct {
	ArchiveID  uint   `gorm:"primaryKey" json:"archiveId"`
	RFID       string `gorm:"column:rfid;size:50" json:"rfid"`
	BorrowerID string `gorm:"size:15" json:"borrowerId"`
	LastName   string `gorm:"size:50" json:"lastName"`
	FirstName  string `gorm:"size:50" json:"firstName"`
	Department string `gorm:"size:30" json:"department"`
	Course     string `gorm:"size:70" json:"course"`
	Role       string `gorm:"size:30" json:"role"`
	Email      string `gorm:"size:100" json:"email"`

	ArchivedAt time.Time `gorm:"autoCreateTime" json:"archivedAt"`
}

func (Borrower) TableName() string        { return BorrowerTable }
func (BorrowerArchive) TableName() string { return BorrowerArchiveTable }
