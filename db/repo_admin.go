package db

import (
	"context"
	"errors"
	"time"

	"lebs_backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAdminNotFound = errors.New("admin account not found")
	ErrCodeMismatch  = errors.New("invalid verification code")
	ErrOTPMismatch   = errors.New("invalid one-time password")
	ErrOTPExpired    = errors.New("one-time password expired")
)

func (r *Repo) FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repo) FindAdminByID(ctx context.Context, id uint) (*models.Admin, error) {
	var a models.Admin
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repo) CountVerifiedAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Admin{}).
		Where("is_verified = ?", true).
		Count(&n).Error
	return n, err
}

func (r *Repo) TouchAdminSeen(ctx context.Context, adminID uint) error {
	return r.DB.WithContext(ctx).Model(&models.Admin{}).
		Where("id = ?", adminID).
		Update("last_seen_at", time.Now().UTC()).Error
}

// UpsertPendingAdmin records a registration awaiting verification.
// Registering the same email again replaces the password and code.
func (r *Repo) UpsertPendingAdmin(ctx context.Context, p *models.PendingAdmin) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "password_hash", "verification_code", "created_at",
		}),
	}).Create(p).Error
}

func (r *Repo) FindPendingAdminByEmail(ctx context.Context, email string) (*models.PendingAdmin, error) {
	var p models.PendingAdmin
	if err := r.DB.WithContext(ctx).First(&p, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &p, nil
}

// PromotePendingAdmin moves a pending registration into the admins table
// once the emailed code matches, and deletes the pending row. Code mismatch
// rejects without touching either table.
func (r *Repo) PromotePendingAdmin(ctx context.Context, email, code string) (*models.Admin, error) {
	var admin models.Admin
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.PendingAdmin
		if err := lockForUpdate(tx).Where("email = ?", email).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAdminNotFound
			}
			return err
		}
		if p.VerificationCode != code {
			return ErrCodeMismatch
		}
		admin = models.Admin{
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			Email:        p.Email,
			PasswordHash: p.PasswordHash,
			IsVerified:   true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PendingAdmin{}, "email = ?", email).Error
	})
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *Repo) SetPendingVerificationCode(ctx context.Context, email, code string) error {
	res := r.DB.WithContext(ctx).Model(&models.PendingAdmin{}).
		Where("email = ?", email).
		Update("verification_code", code)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}

// SetAdminOTP stores a fresh login OTP with its expiry.
func (r *Repo) SetAdminOTP(ctx context.Context, adminID uint, otp string, expiry time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.Admin{}).
		Where("id = ?", adminID).
		Updates(map[string]any{"otp": otp, "otp_expiry": expiry}).Error
}

// VerifyAdminOTP checks the supplied code against the stored OTP and its
// expiry. The stored fields are cleared only on success; a mismatch or an
// expired code leaves the row untouched and never extends the expiry.
func (r *Repo) VerifyAdminOTP(ctx context.Context, email, code string, now time.Time) (*models.Admin, error) {
	var admin models.Admin
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("email = ?", email).First(&admin).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAdminNotFound
			}
			return err
		}
		if admin.OTP == nil || *admin.OTP != code {
			return ErrOTPMismatch
		}
		if admin.OTPExpiry == nil || !now.Before(*admin.OTPExpiry) {
			return ErrOTPExpired
		}
		return tx.Model(&models.Admin{}).
			Where("id = ?", admin.ID).
			Updates(map[string]any{"otp": nil, "otp_expiry": nil}).Error
	})
	if err != nil {
		return nil, err
	}
	admin.OTP = nil
	admin.OTPExpiry = nil
	return &admin, nil
}

// SetAdminVerificationCode stores a forgot-password code on a verified admin.
func (r *Repo) SetAdminVerificationCode(ctx context.Context, email, code string) error {
	res := r.DB.WithContext(ctx).Model(&models.Admin{}).
		Where("email = ?", email).
		Update("verification_code", code)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}

// ResetAdminPassword swaps the password hash when the forgot-password code
// matches, and clears the code.
func (r *Repo) ResetAdminPassword(ctx context.Context, email, code, newHash string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Admin
		if err := lockForUpdate(tx).Where("email = ?", email).First(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAdminNotFound
			}
			return err
		}
		if a.VerificationCode == nil || *a.VerificationCode != code {
			return ErrCodeMismatch
		}
		return tx.Model(&models.Admin{}).
			Where("id = ?", a.ID).
			Updates(map[string]any{"password_hash": newHash, "verification_code": nil}).Error
	})
}

func (r *Repo) CreateAdmin(ctx context.Context, a *models.Admin) error {
	return r.DB.WithContext(ctx).Create(a).Error
}
