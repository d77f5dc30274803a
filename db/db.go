package db

import (
	"fmt"
	"log"
	"os"

	"lebs_backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return conn
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Admin{}, &models.PendingAdmin{},
		&models.Borrower{}, &models.BorrowerArchive{},
		&models.Item{}, &models.ItemArchive{},
		&models.Transaction{}, &models.PendingReturn{}, &models.History{},
	); err != nil {
		return err
	}

	// 同一笔借出最多一条待确认归还
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_pending_per_borrow
	  ON %s (borrow_id);
	`, models.PendingReturnTable, models.PendingReturnTable)).Error; err != nil {
		return err
	}

	// 查询某张卡的未归还记录更快
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_by_rfid
	  ON %s (rfid, borrowed_at DESC)
	  WHERE returned_at IS NULL;
	`, models.TransactionTable, models.TransactionTable)).Error; err != nil {
		return err
	}

	return nil
}
