package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/category"
	handlers "github.com/samurainet-antonius/duitkita-financial-hub/internal/http"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/journal"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/notify"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/receipts"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/sharing"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/summary"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/wallet"
)

type Router struct {
	AuthHandler     *handlers.AuthHandler
	ProfileHandler  *handlers.ProfileHandler
	WalletHandler   *wallet.Handler
	JournalHandler  *journal.Handler
	SharingHandler  *sharing.Handler
	CategoryHandler *category.Handler
	SummaryHandler  *summary.Handler
	NotifyHandler   *notify.Handler
	ReceiptsHandler *receipts.Handler
	AuthMW          fiber.Handler
	WriteLimitMW    fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	app.Post("/api/auth/signup", r.AuthHandler.Signup)
	app.Post("/api/auth/login", r.AuthHandler.Login)
	app.Get("/api/me", r.AuthMW, r.AuthHandler.Me)
	app.Put("/api/me", r.AuthMW, r.ProfileHandler.Update)
	app.Put("/api/me/password", r.AuthMW, r.ProfileHandler.ChangePassword)
	app.Delete("/api/me", r.AuthMW, r.WriteLimitMW, r.ProfileHandler.DeleteAccount)

	app.Post("/api/wallets", r.AuthMW, r.WriteLimitMW, r.WalletHandler.Create)
	app.Get("/api/wallets", r.AuthMW, r.WalletHandler.List)
	app.Get("/api/wallets/:id", r.AuthMW, r.WalletHandler.Get)
	app.Put("/api/wallets/:id", r.AuthMW, r.WriteLimitMW, r.WalletHandler.Update)
	app.Delete("/api/wallets/:id", r.AuthMW, r.WriteLimitMW, r.WalletHandler.Delete)
	app.Get("/api/wallets/:id/balance", r.AuthMW, r.WalletHandler.GetBalance)

	app.Post("/api/wallets/:id/shares", r.AuthMW, r.WriteLimitMW, r.SharingHandler.Share)
	app.Get("/api/wallets/:id/shares", r.AuthMW, r.SharingHandler.ListAccess)
	app.Delete("/api/shares/:shareId", r.AuthMW, r.WriteLimitMW, r.SharingHandler.Unshare)

	app.Post("/api/transactions", r.AuthMW, r.WriteLimitMW, r.JournalHandler.Create)
	app.Get("/api/transactions", r.AuthMW, r.JournalHandler.List)
	app.Get("/api/transactions/:id", r.AuthMW, r.JournalHandler.Get)
	app.Put("/api/transactions/:id", r.AuthMW, r.WriteLimitMW, r.JournalHandler.Update)
	app.Delete("/api/transactions/:id", r.AuthMW, r.WriteLimitMW, r.JournalHandler.Delete)

	app.Post("/api/categories", r.AuthMW, r.WriteLimitMW, r.CategoryHandler.Create)
	app.Get("/api/categories", r.AuthMW, r.CategoryHandler.List)

	app.Get("/api/summary", r.AuthMW, r.SummaryHandler.GetSummary)

	app.Get("/api/notifications/settings", r.AuthMW, r.NotifyHandler.GetSettings)
	app.Put("/api/notifications/settings", r.AuthMW, r.NotifyHandler.UpdateSettings)

	if r.ReceiptsHandler != nil {
		app.Post("/api/receipts", r.AuthMW, r.WriteLimitMW, r.ReceiptsHandler.Upload)
		app.Get("/api/receipts/*", r.AuthMW, r.ReceiptsHandler.Download)
	}
}
