package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keel/config"
	"keel/internal/api"
	"keel/internal/auth"
	"keel/internal/db"
	"keel/internal/files"
	"keel/internal/health"
	"keel/internal/hub"
	"keel/internal/logs"
	"keel/internal/mailer"
	"keel/internal/middleware"
	"keel/internal/models"
	"keel/internal/notify"
	"keel/internal/repo"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	hub        *hub.Hub
	Router     *mux.Router
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	/* 1) Логи */
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	/* 2) DB + миграции */
	d, err := db.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	a.db = d

	if err := a.db.AutoMigrate(
		&models.Permission{},
		&models.User{},
		&models.Company{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Timesheet{},
		&models.Notification{},
		&models.File{},
		&models.FilePermission{},
		&models.FileActivity{},
		&models.ChatMessage{},
		&models.ChatGroup{},
		&models.ChatGroupMember{},
		&models.CalendarEvent{},
		&models.CalendarEventParticipant{},
		&models.Quote{},
		&models.Setting{},
	); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	users := repo.NewUserStore(a.db)
	timesheets := repo.NewTimesheetStore(a.db)

	// частичный уникальный индекс "один открытый таймер" — вне AutoMigrate
	if err := timesheets.Migrate(); err != nil {
		log.Fatalf("timesheet migrate failed: %v", err)
	}
	if err := users.SeedPermissions(context.Background()); err != nil {
		log.Fatalf("permission seed failed: %v", err)
	}

	/* 3) Сервисы */
	a.hub = hub.New()
	notifs := repo.NewNotificationStore(a.db)

	storage, err := files.NewStorage(a.cfg.Files.Dir)
	if err != nil {
		log.Fatalf("file storage init failed: %v", err)
	}

	ap := api.New(a.cfg)
	ap.Users = users
	ap.Companies = repo.NewCompanyStore(a.db)
	ap.Projects = repo.NewProjectStore(a.db)
	ap.Tasks = repo.NewTaskStore(a.db)
	ap.Timesheets = timesheets
	ap.Notifs = notifs
	ap.Files = repo.NewFileStore(a.db)
	ap.Chat = repo.NewChatStore(a.db)
	ap.Calendar = repo.NewCalendarStore(a.db)
	ap.Quotes = repo.NewQuoteStore(a.db)
	ap.Settings = repo.NewSettingStore(a.db)
	ap.Reports = repo.NewReportStore(a.db)
	ap.Tokens = auth.NewTokens(a.cfg.Auth.JWTSecret, time.Duration(a.cfg.Auth.TokenTTLHours)*time.Hour)
	ap.Hub = a.hub
	ap.Dispatcher = notify.New(notifs, a.hub)
	ap.Mailer = mailer.New(a.cfg.Mail.From, a.cfg.Mail.MaxAttempts)
	ap.Storage = storage

	/* 4) Router + middleware */
	a.Router = mux.NewRouter().StrictSlash(true)
	a.Router.Use(
		middleware.RequestID,
		middleware.Recoverer(a.cfg.Server.DevMode),
		middleware.LoggerMW,
	)

	/* 5) Health + API */
	health.RegisterRoutesWithDB(a.Router, a.db) // /healthz, /readyz
	ap.RegisterRoutes(a.Router)

	/* (необязательно) вывести известные маршруты в лог при старте */
	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}

	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		logs.Logger.Infof("shutdown signal: %s", s)
		a.cancel()
	}()

	// Жёсткие таймауты — это важно для production.
	// WriteTimeout не ставим: он бы рубил долгоживущие websocket-соединения.
	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Logger.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()

	a.hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	return nil
}
