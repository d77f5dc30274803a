package db

import (
	"context"
	"errors"
	"strings"

	"lebs_backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Validation / lookup failures.
var (
	ErrBorrowerNotFound    = errors.New("borrower not found")
	ErrInstructorNotFound  = errors.New("instructor not found")
	ErrItemNotFound        = errors.New("item not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// State conflicts. These reject the whole operation with no partial writes.
var (
	ErrInsufficientStock    = errors.New("not enough units available")
	ErrOverReturn           = errors.New("returned quantity exceeds outstanding amount")
	ErrReturnAlreadyPending = errors.New("a pending return already exists for this borrow")
	ErrPendingNotFound      = errors.New("pending return not found or already consumed")
)

// lockForUpdate adds a row lock on dialects that support it. The sqlite
// test database runs each test single-threaded and has no FOR UPDATE.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Borrowers

func (r *Repo) CreateBorrower(ctx context.Context, b *models.Borrower) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *Repo) FindBorrowerByRFID(ctx context.Context, rfid string) (*models.Borrower, error) {
	var b models.Borrower
	if err := r.DB.WithContext(ctx).Where("rfid = ?", rfid).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBorrowerNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *Repo) FindBorrowerByID(ctx context.Context, userID uint) (*models.Borrower, error) {
	var b models.Borrower
	if err := r.DB.WithContext(ctx).First(&b, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBorrowerNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *Repo) UpdateBorrower(ctx context.Context, userID uint, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.Borrower{}).
		Where("user_id = ?", userID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBorrowerNotFound
	}
	return nil
}

// 列表（分页 + 关键词，匹配姓名/学号/RFID）
type ListBorrowersResult struct {
	Borrowers []models.Borrower `json:"borrowers"`
	Total     int64             `json:"total"`
}

func (r *Repo) ListBorrowers(ctx context.Context, q string, page, size int) (ListBorrowersResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Borrower{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(borrower_id) LIKE ? OR LOWER(rfid) LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListBorrowersResult{}, err
	}

	var bs []models.Borrower
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&bs).Error; err != nil {
		return ListBorrowersResult{}, err
	}
	return ListBorrowersResult{Borrowers: bs, Total: total}, nil
}

// ArchiveBorrower snapshots the row into the archive table and deletes it
// from the active registry, in one transaction.
func (r *Repo) ArchiveBorrower(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Borrower
		if err := lockForUpdate(tx).First(&b, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBorrowerNotFound
			}
			return err
		}
		arch := models.BorrowerArchive{
			RFID:       b.RFID,
			BorrowerID: b.BorrowerID,
			LastName:   b.LastName,
			FirstName:  b.FirstName,
			Department: b.Department,
			Course:     b.Course,
			Role:       b.Role,
			Email:      b.Email,
		}
		if err := tx.Create(&arch).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Borrower{}, "user_id = ?", userID).Error
	})
}

func (r *Repo) RestoreBorrower(ctx context.Context, archiveID uint) (*models.Borrower, error) {
	var restored models.Borrower
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.BorrowerArchive
		if err := lockForUpdate(tx).First(&a, "archive_id = ?", archiveID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBorrowerNotFound
			}
			return err
		}
		restored = models.Borrower{
			RFID:       a.RFID,
			BorrowerID: a.BorrowerID,
			LastName:   a.LastName,
			FirstName:  a.FirstName,
			Department: a.Department,
			Course:     a.Course,
			Role:       a.Role,
			Email:      a.Email,
		}
		if err := tx.Create(&restored).Error; err != nil {
			return err
		}
		return tx.Delete(&models.BorrowerArchive{}, "archive_id = ?", archiveID).Error
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

func (r *Repo) ListArchivedBorrowers(ctx context.Context) ([]models.BorrowerArchive, error) {
	var as []models.BorrowerArchive
	err := r.DB.WithContext(ctx).Order("archived_at DESC").Find(&as).Error
	return as, err
}
