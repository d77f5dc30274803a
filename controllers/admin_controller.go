package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"lebs_backend/app"
	"lebs_backend/db"
	"lebs_backend/mail"
	"lebs_backend/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AdminController struct{ *Srv }

func NewAdminController(s *Srv) *AdminController { return &AdminController{Srv: s} }

// Register stores a pending admin and emails the verification code. The
// account cannot log in until the code is confirmed. A failed email keeps
// the row pending and reports the failure.
func (ac *AdminController) Register(c *gin.Context) {
	var in struct {
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := ac.Repo.FindAdminByEmail(c.Request.Context(), email); err == nil {
		c.JSON(http.StatusConflict, app.H{"error": "account already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	code := sixDigitCode()
	p := &models.PendingAdmin{
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            email,
		PasswordHash:     string(hash),
		VerificationCode: code,
	}
	if err := ac.Repo.UpsertPendingAdmin(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if err := ac.Mailer.Send(c.Request.Context(), email, "LEBS Account Verification Code", mail.VerificationBody(code)); err != nil {
		c.JSON(http.StatusBadGateway, app.H{"error": "failed to send verification email"})
		return
	}
	c.JSON(http.StatusCreated, app.H{"ok": true, "message": "verification code sent"})
}

// Verify promotes a pending admin once the emailed code matches.
func (ac *AdminController) Verify(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	admin, err := ac.Repo.PromotePendingAdmin(c.Request.Context(), email, in.Code)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrAdminNotFound):
			c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
		case errors.Is(err, db.ErrCodeMismatch):
			c.JSON(http.StatusConflict, app.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "admin": admin})
}

// ResendCode mints a fresh verification code for a pending registration,
// throttled per email.
func (ac *AdminController) ResendCode(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if ok, _ := ac.RDB.SetNX(c, "lebs:resend:"+email, "1", time.Minute).Result(); !ok {
		c.JSON(http.StatusTooManyRequests, app.H{"error": "please wait before requesting another code"})
		return
	}

	code := sixDigitCode()
	if err := ac.Repo.SetPendingVerificationCode(c.Request.Context(), email, code); err != nil {
		if errors.Is(err, db.ErrAdminNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "no pending registration for this email"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if err := ac.Mailer.Send(c.Request.Context(), email, "LEBS Account Verification Code", mail.VerificationBody(code)); err != nil {
		c.JSON(http.StatusBadGateway, app.H{"error": "failed to send verification email"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// LoginStep1 checks the password and emails a time-limited OTP. The session
// is not issued until step 2.
func (ac *AdminController) LoginStep1(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	admin, err := ac.Repo.FindAdminByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, db.ErrAdminNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if !admin.IsVerified {
		c.JSON(http.StatusForbidden, app.H{"error": "account not verified"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.Password)) != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "incorrect password"})
		return
	}

	otp := sixDigitCode()
	expiry := time.Now().UTC().Add(ac.Cfg.OTPTTL)
	if err := ac.Repo.SetAdminOTP(c.Request.Context(), admin.ID, otp, expiry); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if err := ac.Mailer.Send(c.Request.Context(), email, "LEBS Login One-Time Password", mail.OTPBody(otp)); err != nil {
		c.JSON(http.StatusBadGateway, app.H{"error": "failed to send OTP email"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "message": "OTP sent to your email"})
}

// LoginStep2 verifies the OTP and starts the session. An expired or wrong
// code rejects without clearing or extending the stored OTP.
func (ac *AdminController) LoginStep2(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	admin, err := ac.Repo.VerifyAdminOTP(c.Request.Context(), email, in.Code, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, db.ErrAdminNotFound):
			c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
		case errors.Is(err, db.ErrOTPMismatch), errors.Is(err, db.ErrOTPExpired):
			c.JSON(http.StatusConflict, app.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		}
		return
	}

	name := admin.FirstName + " " + admin.LastName
	if err := ac.issueSession(c.Request.Context(), c.Writer, admin.ID, admin.Email, name); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "admin": admin})
}

func (ac *AdminController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AdminSessionCookie); err == nil && ck.Value != "" {
		_ = ac.AdminSess.Delete(c.Request.Context(), ck.Value)
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     app.AdminSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(ac.WebOrigin, "https://"),
	})
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (ac *AdminController) WhoAmI(c *gin.Context) {
	id, _ := app.AdminID(c)
	email, _ := c.Get("adminEmail")
	name, _ := c.Get("adminName")
	c.JSON(http.StatusOK, app.H{"adminId": id, "email": email, "name": name})
}

// ForgotPassword emails a reset code to a verified admin.
func (ac *AdminController) ForgotPassword(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	code := sixDigitCode()
	if err := ac.Repo.SetAdminVerificationCode(c.Request.Context(), email, code); err != nil {
		if errors.Is(err, db.ErrAdminNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if err := ac.Mailer.Send(c.Request.Context(), email, "LEBS Password Reset Code", mail.VerificationBody(code)); err != nil {
		c.JSON(http.StatusBadGateway, app.H{"error": "failed to send reset email"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// ResetPassword swaps the password when the emailed code matches, and
// revokes every live session of the account.
func (ac *AdminController) ResetPassword(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Code     string `json:"code" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if err := ac.Repo.ResetAdminPassword(c.Request.Context(), email, in.Code, string(hash)); err != nil {
		switch {
		case errors.Is(err, db.ErrAdminNotFound):
			c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
		case errors.Is(err, db.ErrCodeMismatch):
			c.JSON(http.StatusConflict, app.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		}
		return
	}
	if admin, err := ac.Repo.FindAdminByEmail(c.Request.Context(), email); err == nil {
		_ = ac.AdminSess.RevokeAllForAdmin(c.Request.Context(), admin.ID)
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
