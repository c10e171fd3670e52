package main

import (
	"log"
	"runtime"
	"strconv"
	"time"

	"backend-helpqueue/internal/archive"
	"backend-helpqueue/internal/config"
	"backend-helpqueue/internal/directory"
	"backend-helpqueue/internal/http/handler"
	"backend-helpqueue/internal/http/middleware"
	"backend-helpqueue/internal/queue"
	"backend-helpqueue/internal/realtime"
	"backend-helpqueue/internal/session"
	"backend-helpqueue/internal/store"
	"backend-helpqueue/internal/ticket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	app := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
	})

	config.LoadEnv()
	config.InitRedis()
	config.InitDB()
	defer config.CloseDB()

	if ms, err := strconv.Atoi(config.GetEnv("STORE_TIMEOUT_MS", "5000")); err == nil && ms > 0 {
		store.Timeout = time.Duration(ms) * time.Millisecond
	}

	// Wire the core: queue ordering, ticket lifecycle, archival and
	// broadcast around the shared Redis and MySQL handles.
	engine := queue.NewEngine(config.Redis)
	tickets := ticket.NewManager(config.Redis)
	users := directory.New(config.DB)
	exporter := archive.NewExporter(config.Redis, config.DB, tickets, users)
	hub := realtime.NewHub()

	handler.Sessions = session.NewManager(config.Redis, engine, tickets, hub, exporter)
	handler.Archives = exporter
	handler.Hub = hub

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Help queue API running",
		})
	})

	// WebSocket subscribe (token travels as query param on upgrade)
	app.Use("/ws", middleware.WSAuth())
	app.Get("/ws/sessions/:id", websocket.New(handler.SessionWebSocket))

	// Base API (login required)
	api := app.Group("/api", middleware.JWTAuth())

	// Sessions
	api.Get("/sessions", handler.GetAllSessions)
	api.Post("/sessions", middleware.RoleAuth("mentor"), handler.OpenSession)
	api.Get("/sessions/:id", handler.GetSession)
	api.Delete("/sessions/:id", middleware.RoleAuth("mentor"), handler.CloseSession)

	// Queue
	api.Post("/sessions/:id/queue", handler.AddTicket)
	api.Get("/sessions/:id/queue", handler.GetQueue)
	api.Get("/sessions/:id/queue/:user", handler.GetPosition)
	api.Delete("/sessions/:id/queue", middleware.RoleAuth("mentor"), handler.ResolveNext)
	api.Delete("/sessions/:id/queue/:user", middleware.RoleAuth("mentor"), handler.ResolveSpecific)
	api.Delete("/sessions/:id/queue/:user/withdraw", handler.CancelTicket)

	// Announcements
	api.Get("/sessions/:id/announcements", handler.GetAnnouncements)
	api.Post("/sessions/:id/announcements", middleware.RoleAuth("mentor"), handler.PostAnnouncement)
	api.Delete("/sessions/:id/announcements", middleware.RoleAuth("mentor"), handler.ClearAnnouncements)

	// FAQ
	api.Get("/sessions/:id/faq", handler.GetFAQs)
	api.Post("/sessions/:id/faq", middleware.RoleAuth("mentor"), handler.AddFAQ)
	api.Delete("/sessions/:id/faq", middleware.RoleAuth("mentor"), handler.ClearFAQs)

	// Archives
	api.Get("/archives/:groupId", handler.ListArchives)

	addr := config.GetEnv("APP_HOST", "") + ":" + config.GetEnv("APP_PORT", "8080")
	log.Println("Server running at", addr)
	log.Fatal(app.Listen(addr))
}
