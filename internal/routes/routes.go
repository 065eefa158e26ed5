package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/surat_tugas_web/internal/config"
	"github.com/zaqqye/surat_tugas_web/internal/controllers"
	"github.com/zaqqye/surat_tugas_web/internal/middleware"
	"github.com/zaqqye/surat_tugas_web/internal/services"
	"github.com/zaqqye/surat_tugas_web/internal/session"
	"github.com/zaqqye/surat_tugas_web/internal/ws"
)

func Register(r *gin.Engine, m *session.Manager, api *services.API, hub *ws.NotificationHub, cfg *config.Config) {
	guard := &middleware.Guard{Manager: m, CookieName: cfg.SessionCookie, CookieSecure: cfg.CookieSecure}

	authCtrl := &controllers.AuthController{Manager: m, Guard: guard}
	pageCtrl := &controllers.PageController{API: api, Manager: m, Guard: guard}
	suratCtrl := &controllers.SuratController{API: api, Manager: m, Guard: guard}
	adminCtrl := &controllers.AdminController{API: api, Manager: m, Guard: guard, Hub: hub}
	nimCtrl := &controllers.NimController{API: api, Manager: m, Guard: guard}

	// Public pages: authenticated visitors are bounced to their dashboard.
	r.GET("/", guard.RedirectIfAuthenticated(), func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/login")
	})
	pub := r.Group("/", guard.RedirectIfAuthenticated())
	{
		pub.GET("/login", authCtrl.ShowLogin)
		pub.POST("/login", authCtrl.Login)
		pub.GET("/register", authCtrl.ShowRegister)
		pub.POST("/register", authCtrl.Register)
	}
	r.POST("/logout", authCtrl.Logout)

	// Protected pages.
	authed := r.Group("/", guard.RequireSession())
	{
		authed.GET("/dashboard", pageCtrl.Dashboard)
		authed.GET("/profile", pageCtrl.ShowProfile)
		authed.POST("/profile", pageCtrl.UpdateProfile)

		authed.GET("/surat", suratCtrl.List)
		authed.GET("/surat/create", suratCtrl.ShowCreate)
		authed.POST("/surat/create", suratCtrl.Create)
		authed.GET("/surat/:id", suratCtrl.Detail)

		authed.GET("/ws", ws.Handler(hub))

		// Admin-only.
		admin := authed.Group("/admin", guard.RequireAdmin())
		{
			admin.GET("/dashboard", adminCtrl.Dashboard)

			admin.GET("/users", adminCtrl.Users)
			admin.GET("/users/:id", adminCtrl.UserDetail)
			admin.POST("/users/:id/delete", adminCtrl.DeleteUser)

			admin.GET("/nim-management", nimCtrl.List)
			admin.POST("/nim-management", nimCtrl.Add)
			admin.POST("/nim-management/:id/activate", nimCtrl.Activate)
			admin.POST("/nim-management/:id/deactivate", nimCtrl.Deactivate)

			admin.GET("/surat", adminCtrl.Surat)
			admin.GET("/approval", adminCtrl.Approval)
			admin.POST("/approval/:id", adminCtrl.Decide)
			admin.GET("/reports", adminCtrl.Reports)
			admin.GET("/settings", adminCtrl.Settings)
		}
	}

	r.GET("/unauthorized", pageCtrl.Unauthorized)
	r.NoRoute(pageCtrl.NotFound)
}
