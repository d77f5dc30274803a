// app/bootstrap.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"

	"lebs_backend/db"
	"lebs_backend/models"

	"golang.org/x/crypto/bcrypt"
)

// BootstrapFirstAdmin creates a verified admin for ADMIN_EMAIL when no
// verified admin exists yet. The generated password is printed once; the
// operator is expected to change it through the forgot-password flow.
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.BootstrapEmail == "" {
		return
	}
	n, err := repo.CountVerifiedAdmins(ctx)
	if err != nil {
		log.Printf("bootstrap: count admins: %v", err)
		return
	}
	if n > 0 {
		return
	}

	buf := make([]byte, 12)
	rand.Read(buf)
	password := hex.EncodeToString(buf)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("bootstrap: hash password: %v", err)
		return
	}

	admin := &models.Admin{
		FirstName:    "System",
		LastName:     "Administrator",
		Email:        cfg.BootstrapEmail,
		PasswordHash: string(hash),
		IsVerified:   true,
	}
	if err := repo.CreateAdmin(ctx, admin); err != nil {
		log.Printf("bootstrap admin failed: %v", err)
		return
	}

	log.Printf("[BOOTSTRAP] No admin found, created %s", cfg.BootstrapEmail)
	log.Printf("[BOOTSTRAP] One-time password: %s", password)
}
