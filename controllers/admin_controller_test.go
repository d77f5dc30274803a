package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"lebs_backend/app"
	"lebs_backend/db"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeMailer captures outgoing messages so tests can read the codes that
// would have been emailed.
type fakeMailer struct {
	to   []string
	body []string
	fail bool
}

func (m *fakeMailer) Send(_ context.Context, to, _, body string) error {
	if m.fail {
		return context.DeadlineExceeded
	}
	m.to = append(m.to, to)
	m.body = append(m.body, body)
	return nil
}

func newAuthRouter(t *testing.T) (*gin.Engine, *db.Repo, *fakeMailer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	repo := db.NewRepo(gdb)

	mailer := &fakeMailer{}
	srv := &Srv{
		Repo:   repo,
		Mailer: mailer,
		Cfg:    app.Config{OTPTTL: 10 * time.Minute},
	}
	ac := NewAdminController(srv)

	r := gin.New()
	r.POST("/api/auth/register", ac.Register)
	r.POST("/api/auth/verify", ac.Verify)
	r.POST("/api/auth/login/step1", ac.LoginStep1)
	r.POST("/api/auth/login/step2", ac.LoginStep2)
	return r, repo, mailer
}

func TestRegisterVerifyLogin(t *testing.T) {
	r, repo, mailer := newAuthRouter(t)

	w := postJSON(t, r, "/api/auth/register", gin.H{
		"firstName": "Maria",
		"lastName":  "Santos",
		"email":     "maria@umak.edu.ph",
		"password":  "correct horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, mailer.to, 1)

	pending, err := repo.FindPendingAdminByEmail(context.Background(), "maria@umak.edu.ph")
	require.NoError(t, err)

	// wrong code first
	w = postJSON(t, r, "/api/auth/verify", gin.H{
		"email": "maria@umak.edu.ph",
		"code":  "000000",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(t, r, "/api/auth/verify", gin.H{
		"email": "maria@umak.edu.ph",
		"code":  pending.VerificationCode,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// password check sends the OTP
	w = postJSON(t, r, "/api/auth/login/step1", gin.H{
		"email":    "maria@umak.edu.ph",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mailer.to, 2)

	admin, err := repo.FindAdminByEmail(context.Background(), "maria@umak.edu.ph")
	require.NoError(t, err)
	require.NotNil(t, admin.OTP)
	require.NotNil(t, admin.OTPExpiry)

	// a wrong OTP never starts a session
	w = postJSON(t, r, "/api/auth/login/step2", gin.H{
		"email": "maria@umak.edu.ph",
		"code":  "000000",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginStep1WrongPassword(t *testing.T) {
	r, _, _ := newAuthRouter(t)

	w := postJSON(t, r, "/api/auth/register", gin.H{
		"firstName": "Maria",
		"lastName":  "Santos",
		"email":     "maria@umak.edu.ph",
		"password":  "correct horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// pending accounts cannot log in at all
	w = postJSON(t, r, "/api/auth/login/step1", gin.H{
		"email":    "maria@umak.edu.ph",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterFailedEmailKeepsPending(t *testing.T) {
	r, repo, mailer := newAuthRouter(t)
	mailer.fail = true

	w := postJSON(t, r, "/api/auth/register", gin.H{
		"firstName": "Maria",
		"lastName":  "Santos",
		"email":     "maria@umak.edu.ph",
		"password":  "correct horse",
	})
	require.Equal(t, http.StatusBadGateway, w.Code)

	// the pending row survives so a resend can recover
	_, err := repo.FindPendingAdminByEmail(context.Background(), "maria@umak.edu.ph")
	require.NoError(t, err)
}
