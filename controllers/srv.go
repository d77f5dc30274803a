// controllers/srv.go
package controllers

import (
	"context"
	"crypto/rand"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lebs_backend/app"
	"lebs_backend/db"
	"lebs_backend/mail"
	"lebs_backend/notify"
	"lebs_backend/session"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Srv struct {
	Repo      *db.Repo
	AdminSess *session.AdminSessionStore
	Mailer    mail.Sender
	Notify    *notify.Notifier
	RDB       *redis.Client
	WebOrigin string
	Cfg       app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:      db.NewRepo(a.DB),
		AdminSess: a.AdminSessions(),
		Mailer:    mail.NewFromEnv(),
		Notify:    notify.New(a.RDB),
		RDB:       a.RDB,
		WebOrigin: a.Config.WebOrigin,
		Cfg:       a.Config,
	}
}

// --- helpers ---

// 统一设置会话 Cookie
func (s *Srv) setSessionCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AdminSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

// 登录成功：创建会话
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, adminID uint, email, name string) error {
	id := uuid.NewString()
	if err := s.AdminSess.Create(ctx, id, adminID, email, name); err != nil {
		return err
	}
	s.setSessionCookie(w, id, s.Cfg.SessionTTL)
	return nil
}

// sixDigitCode draws a verification/OTP code from crypto/rand.
func sixDigitCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand failing means the process is in no state to mint codes
		panic(err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10)
}
