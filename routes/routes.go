package routes

import (
	"time"

	"lebs_backend/app"
	"lebs_backend/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	adminCtl := controllers.NewAdminController(s)
	borrowerCtl := controllers.NewBorrowerController(s)
	invCtl := controllers.NewInventoryController(s)
	txCtl := controllers.NewTransactionController(s)
	reportCtl := controllers.NewReportController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a.AdminSessions(), s.Repo)
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// 管理员账号（公开：注册/验证/登录）
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", adminCtl.Register)
		auth.POST("/verify", adminCtl.Verify)
		auth.POST("/resend-code", adminCtl.ResendCode)

		auth.POST("/login/step1", adminCtl.LoginStep1)
		auth.POST("/login/step2", adminCtl.LoginStep2)

		auth.POST("/forgot-password", adminCtl.ForgotPassword)
		auth.POST("/reset-password", adminCtl.ResetPassword)
	}

	authed := r.Group("/api", authMW, seenMW)
	{
		authed.GET("/whoami", adminCtl.WhoAmI)
		authed.POST("/logout", adminCtl.Logout)

		// ------------------------------
		// 借用人
		// ------------------------------
		authed.POST("/borrowers", borrowerCtl.Register)
		authed.GET("/borrowers", borrowerCtl.List)           // ?q=&page=&size=
		authed.GET("/borrowers/scan/:rfid", borrowerCtl.Scan)
		authed.PUT("/borrowers/:id", borrowerCtl.Update)
		authed.DELETE("/borrowers/:id", borrowerCtl.Archive)
		authed.GET("/borrowers/:id/transactions", borrowerCtl.Transactions)
		authed.GET("/borrowers/archived", borrowerCtl.ListArchived)
		authed.PUT("/borrowers/archived/:id/restore", borrowerCtl.Restore)

		// ------------------------------
		// 库存
		// ------------------------------
		authed.POST("/inventory", invCtl.Add)
		authed.GET("/inventory", invCtl.List) // ?q=&type=
		authed.PUT("/inventory/:id", invCtl.Edit)
		authed.DELETE("/inventory/:id", invCtl.Archive)
		authed.GET("/inventory/archived", invCtl.ListArchived)
		authed.PUT("/inventory/archived/:id/restore", invCtl.Restore)

		// ------------------------------
		// 借还
		// ------------------------------
		authed.POST("/transactions/borrow", txCtl.Borrow)
		authed.GET("/transactions/open/:rfid", txCtl.OpenByRFID)
		authed.POST("/transactions/:borrowId/return", txCtl.Return)
		authed.POST("/transactions/:borrowId/return/stage", txCtl.StageReturn)
		authed.POST("/returns/:pendingId/confirm", txCtl.ConfirmReturn)
		authed.POST("/returns/:pendingId/decline", txCtl.DeclineReturn)
		authed.GET("/transactions/:borrowId/slip", txCtl.Slip)

		// ------------------------------
		// 报表
		// ------------------------------
		authed.GET("/dashboard", reportCtl.Dashboard)
		authed.GET("/history", reportCtl.History)
	}
}
