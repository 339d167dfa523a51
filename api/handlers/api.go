package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/umt-lostfound/lostfound-api/api"
	"github.com/umt-lostfound/lostfound-api/api/scheduler"
	"github.com/umt-lostfound/lostfound-api/auth"
	"github.com/umt-lostfound/lostfound-api/config"
	"github.com/umt-lostfound/lostfound-api/databases"
	"github.com/umt-lostfound/lostfound-api/lifecycle"
	"github.com/umt-lostfound/lostfound-api/notify"
	"github.com/umt-lostfound/lostfound-api/storage"
)

// requestTimeout bounds every non-websocket request
const requestTimeout = 30 * time.Second

// App stores the router and the services behind it, so they can be reused
type App struct {
	Router     http.Handler
	Config     config.Config
	Controller *lifecycle.Controller
	Tokens     *auth.TokenService
	Auth       *api.Authenticator
	Hub        *notify.Hub
	Dispatcher *notify.Dispatcher
	Store      storage.Store
	Scheduler  *scheduler.Scheduler
	Metrics    *api.MetricsCollector

	client databases.ClientHelper
}

// New creates a new mux router and all the routes
func (a *App) New() http.Handler {
	if a.Metrics == nil {
		a.Metrics = api.NewMetricsCollector()
	}

	au := Auth{C: a.Controller, Tokens: a.Tokens}
	it := Item{C: a.Controller}
	cl := Claim{C: a.Controller}
	d := Dispute{C: a.Controller}
	dash := Dashboard{C: a.Controller}
	up := Upload{Store: a.Store, MaxFileSize: a.Config.MaxFileSize}
	n := Notification{C: a.Controller, Hub: a.Hub, Auth: a.Auth}
	adm := Admin{C: a.Controller, Metrics: a.Metrics, Dispatcher: a.Dispatcher}

	r := mux.NewRouter()
	r.Use(api.RequestMiddleware(a.Metrics))

	// healthchex
	var pinger api.Pinger
	if a.client != nil {
		pinger = a.client
	}
	r.HandleFunc("/health", api.HealthHandler(pinger)).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	// the websocket upgrade needs the raw connection, so it stays outside the timeout
	r.HandleFunc("/ws/notifications", n.WebsocketHandler).Methods("GET")

	apiCreate := r.PathPrefix("/api").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(requestTimeout))
	apiCreate.HandleFunc("/health", api.HealthHandler(pinger)).Methods("GET")

	apiCreate.Handle("/auth/register", http.HandlerFunc(au.RegisterHandler)).Methods("POST")
	apiCreate.Handle("/auth/login", http.HandlerFunc(au.LoginHandler)).Methods("POST")
	apiCreate.Handle("/auth/me", a.Auth.Middleware(http.HandlerFunc(au.MeHandler))).Methods("GET")
	apiCreate.Handle("/auth/me", a.Auth.Middleware(http.HandlerFunc(au.UpdateMeHandler))).Methods("PUT")

	apiCreate.Handle("/items", http.HandlerFunc(it.ItemsHandler)).Methods("GET")
	apiCreate.Handle("/items", a.Auth.Middleware(http.HandlerFunc(it.CreateItemHandler))).Methods("POST")
	apiCreate.Handle("/items/{item_id}", http.HandlerFunc(it.ItemByIDHandler)).Methods("GET")
	apiCreate.Handle("/items/{item_id}", a.Auth.Middleware(http.HandlerFunc(it.UpdateItemHandler))).Methods("PUT")

	apiCreate.Handle("/claims", a.Auth.Middleware(http.HandlerFunc(cl.CreateClaimHandler))).Methods("POST")
	apiCreate.Handle("/claims/mine", a.Auth.Middleware(http.HandlerFunc(cl.MyClaimsHandler))).Methods("GET")

	apiCreate.Handle("/disputes", a.Auth.Middleware(http.HandlerFunc(d.CreateDisputeHandler))).Methods("POST")

	apiCreate.Handle("/dashboard", a.Auth.Middleware(http.HandlerFunc(dash.DashboardHandler))).Methods("GET")
	apiCreate.Handle("/upload", a.Auth.Middleware(http.HandlerFunc(up.UploadHandler))).Methods("POST")

	apiCreate.Handle("/notifications", a.Auth.Middleware(http.HandlerFunc(n.NotificationsHandler))).Methods("GET")
	apiCreate.Handle("/notifications/{notification_id}/read", a.Auth.Middleware(http.HandlerFunc(n.MarkNotificationReadHandler))).Methods("PUT")

	admin := apiCreate.PathPrefix("/admin").Subrouter()
	admin.Use(a.Auth.Middleware, api.RequireAdmin)
	admin.HandleFunc("/stats", adm.StatsHandler).Methods("GET")
	admin.HandleFunc("/items", adm.ItemsHandler).Methods("GET")
	admin.HandleFunc("/items/{item_id}/status", adm.ItemStatusHandler).Methods("PUT")
	admin.HandleFunc("/items/{item_id}/moderate", adm.ModerateItemHandler).Methods("POST")
	admin.HandleFunc("/claims", adm.ClaimsHandler).Methods("GET")
	admin.HandleFunc("/claims/{claim_id}", adm.DecideClaimHandler).Methods("PUT")
	admin.HandleFunc("/users", adm.UsersHandler).Methods("GET")
	admin.HandleFunc("/users/{user_id}/role", adm.UserRoleHandler).Methods("PUT")
	admin.HandleFunc("/users/{user_id}/ban", adm.UserBanHandler).Methods("PUT")
	admin.HandleFunc("/disputes", adm.DisputesHandler).Methods("GET")
	admin.HandleFunc("/disputes/{dispute_id}", adm.UpdateDisputeHandler).Methods("PUT")
	admin.HandleFunc("/flagged", adm.FlaggedHandler).Methods("GET")
	admin.HandleFunc("/flagged/{content_id}/action", adm.FlaggedActionHandler).Methods("POST")
	admin.HandleFunc("/analytics", adm.AnalyticsHandler).Methods("GET")
	admin.HandleFunc("/bulk-action", adm.BulkActionHandler).Methods("POST")
	admin.HandleFunc("/actions", adm.ActionsHandler).Methods("GET")
	admin.HandleFunc("/metrics", adm.MetricsHandler).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   a.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize(ctx context.Context) error {
	if err := a.Config.Validate(); err != nil {
		return err
	}

	client, err := databases.NewClient(ctx, &a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}
	a.client = client
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("lostfound-api has connected to the database")

	db := databases.NewDatabase(&a.Config, client)
	if err := databases.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensuring indexes: %w", err)
	}

	a.Hub = notify.NewHub(a.Config.AllowedOrigins)
	var mailer notify.Mailer
	if a.Config.SendgridAPIKey != "" {
		mailer = notify.NewSendgridMailer(a.Config.SendgridAPIKey, a.Config.MailFrom)
	}
	a.Dispatcher = notify.NewDispatcher(databases.NewNotificationDatabase(db), databases.NewProfileDatabase(db), a.Hub, mailer, 0)

	a.Controller = lifecycle.NewController(db, a.Dispatcher)
	a.Controller.AllowedEmailDomain = a.Config.AllowedEmailDomain
	a.Tokens = auth.NewTokenService(a.Config.JWTSecret, a.Config.JWTExpire)
	a.Auth = api.NewAuthenticator(a.Tokens, a.Controller.Profiles)

	if a.Config.AdminEmail != "" && a.Config.AdminPassword != "" {
		hash, err := auth.HashPassword(a.Config.AdminPassword)
		if err != nil {
			return fmt.Errorf("hashing admin password: %w", err)
		}
		if err := databases.EnsureAdmin(ctx, a.Controller.Profiles, a.Config.AdminEmail, "Administrator", hash, time.Now().UTC()); err != nil {
			return fmt.Errorf("ensuring admin account: %w", err)
		}
		zap.S().Infow("admin account ready", "email", a.Config.AdminEmail)
	}

	a.Store, err = storage.New(ctx, &a.Config)
	if err != nil {
		return fmt.Errorf("setting up image storage: %w", err)
	}

	a.Scheduler, err = scheduler.New(a.Controller, a.Config.StaleItemCron, a.Config.StaleItemDays)
	if err != nil {
		return err
	}
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Close stops the background workers and disconnects from the database
func (a *App) Close(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			zap.S().With(err).Warn("failed to disconnect from database")
		}
	}
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(map[string]string{
		"message": "Lost & Found Portal API",
		"version": "1.0.0",
	})
	w.Write(b)
}
