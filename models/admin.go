package models

import "time"

const AdminTable = "lebs_admins"
const PendingAdminTable = "lebs_pending_admins"

// Admin accounts gate every mutating endpoint. OTP/OTPExpiry hold the
// step-up login code between step1 and step2; both are cleared on success.
type Admin struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	FirstName    string `gorm:"size:50;not null" json:"firstName"`
	LastName     string `gorm:"size:50;not null" json:"lastName"`
	Email        string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	VerificationCode *string    `gorm:"size:10" json:"-"`
	OTP              *string    `gorm:"size:6" json:"-"`
	OTPExpiry        *time.Time `json:"-"`
	IsVerified       bool       `gorm:"not null;default:false" json:"isVerified"`

	LastSeenAt *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PendingAdmin is a registration awaiting email verification. Promoted to
// Admin when the code matches, then deleted.
type PendingAdmin struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	FirstName        string    `gorm:"size:50" json:"firstName"`
	LastName         string    `gorm:"size:50" json:"lastName"`
	Email            string    `gorm:"uniqueIndex;size:100" json:"email"`
	PasswordHash     string    `gorm:"size:255" json:"-"`
	VerificationCode string    `gorm:"size:10" json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (Admin) TableName() string        { return AdminTable }
func (PendingAdmin) TableName() string { return PendingAdminTable }
