package models

import "time"

const TransactionTable = "lebs_transactions"
const PendingReturnTable = "lebs_pending_returns"
const HistoryTable = "lebs_history"

// Transaction is one borrow event for one item. It is created at borrow time
// and mutated in place as returns are confirmed, never deleted. ReturnedAt is
// set only once ReturnedQty has reached BorrowedQty; partial returns update
// ReturnedQty and AfterCondition while ReturnedAt stays nil.
type Transaction struct {
	BorrowID       uint   `gorm:"primaryKey" json:"borrowId"`
	UserID         uint   `gorm:"index;not null" json:"userId"`
	AdminID        uint   `gorm:"index" json:"adminId"`
	InstructorID   uint   `gorm:"not null" json:"instructorId"`
	InstructorRFID string `gorm:"column:instructor_rfid;size:50;not null" json:"instructorRfid"`
	Subject        string `gorm:"size:100;not null" json:"subject"`
	Room           string `gorm:"size:50;not null" json:"room"`
	RFID           string `gorm:"column:rfid;index;size:50;not null" json:"rfid"`
	ItemID         uint   `gorm:"index;not null" json:"itemId"`

	BorrowedQty int `gorm:"not null;default:1" json:"borrowedQty"`
	ReturnedQty int `gorm:"not null;default:0" json:"returnedQty"`

	BorrowedAt      time.Time  `gorm:"index;not null" json:"borrowedAt"`
	BeforeCondition string     `gorm:"type:text" json:"beforeCondition"`
	AfterCondition  string     `gorm:"type:text" json:"afterCondition"`
	ReturnedAt      *time.Time `gorm:"index" json:"returnedAt,omitempty"`
}

// PendingReturn stages a kiosk return until an admin confirms it.
// ReturnData is the JSON-encoded return lines; the row is deleted once the
// return is applied or declined. At most one pending row per borrow
// (partial unique index created in db.Migrate).
type PendingReturn struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BorrowID   uint      `gorm:"index;not null" json:"borrowId"`
	UserID     uint      `gorm:"index;not null" json:"userId"`
	ReturnData string    `gorm:"type:text;not null" json:"returnData"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReturnLine is one entry inside PendingReturn.ReturnData.
type ReturnLine struct {
	Quantity  int    `json:"quantity"`
	Condition string `json:"condition"`
}

// History is a denormalized snapshot appended when a transaction completes.
// Reporting only; live state always comes from transactions/inventory.
type History struct {
	TransactionID uint      `gorm:"primaryKey" json:"transactionId"`
	EquipmentNo   string    `gorm:"size:50" json:"equipmentNo"`
	Name          string    `gorm:"size:100" json:"name"`
	Borrower      string    `gorm:"size:100" json:"borrower"`
	BorrowDate    string    `gorm:"size:50" json:"borrowDate"`
	DateReturned  string    `gorm:"size:50" json:"dateReturned"`
	Status        string    `gorm:"size:50" json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (Transaction) TableName() string   { return TransactionTable }
func (PendingReturn) TableName() string { return PendingReturnTable }
func (History) TableName() string       { return HistoryTable }
