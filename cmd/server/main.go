package main

import (
	"html/template"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/surat_tugas_web/internal/config"
	"github.com/zaqqye/surat_tugas_web/internal/database"
	"github.com/zaqqye/surat_tugas_web/internal/derive"
	"github.com/zaqqye/surat_tugas_web/internal/routes"
	"github.com/zaqqye/surat_tugas_web/internal/services"
	"github.com/zaqqye/surat_tugas_web/internal/session"
	"github.com/zaqqye/surat_tugas_web/internal/ws"
)

func main() {
	// Load .env (non-fatal if missing in production)
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := session.NewStore(db, cfg.SessionSecret)
	if err != nil {
		log.Fatalf("session store init failed: %v", err)
	}

	api := services.NewAPI(cfg)
	manager := session.NewManager(store, api, cfg.SessionTTL)

	hub := ws.NewNotificationHub()
	go hub.Run()

	r := gin.Default()
	r.SetFuncMap(template.FuncMap{
		"badge":      derive.BadgeFor,
		"laststatus": derive.LatestStatus,
		"fmtdate": func(t time.Time) string {
			return t.Format("02 Jan 2006")
		},
		"fmtdatetime": func(t time.Time) string {
			return t.Format("02 Jan 2006 15:04")
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	})
	r.LoadHTMLGlob("templates/*.html")
	r.Static("/static", "./static")
	routes.Register(r, manager, api, hub, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Println("server exited with error:", err)
		os.Exit(1)
	}
}
