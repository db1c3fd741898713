package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kapehan-pos/api/internal/config"
	"github.com/kapehan-pos/api/internal/database"
	"github.com/kapehan-pos/api/internal/enum"
	"github.com/kapehan-pos/api/internal/handler"
	mw "github.com/kapehan-pos/api/internal/middleware"
	"github.com/kapehan-pos/api/internal/service"
	"github.com/kapehan-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up. Self-service
// ordering, the time clock punch and the kitchen feed are public; everything
// else sits behind JWT auth, with back-office routes restricted by role.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket kitchen feed; auth happens inside via the token query param.
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, nil)
	paymentService := service.NewPaymentService(pool, func(db database.DBTX) service.PaymentStore {
		return database.New(db)
	})
	payrollService := service.NewPayrollService(pool, func(db database.DBTX) service.PayrollStore {
		return database.New(db)
	})

	orderHandler := handler.NewOrderHandler(orderService, queries, hub)
	menuHandler := handler.NewMenuHandler(queries)
	timeLogHandler := handler.NewTimeLogHandler(queries, nil)

	// Kiosk and chatbot surface: browse the menu, place a self-service order,
	// punch the time clock. No bearer token; orders land as pending.
	r.Route("/public", func(r chi.Router) {
		r.Route("/menu", menuHandler.RegisterPublicRoutes)
		r.Route("/orders", orderHandler.RegisterPublicRoutes)
		r.Route("/timelogs", timeLogHandler.RegisterPublicRoutes)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/menu", menuHandler.RegisterRoutes)

		paymentHandler := handler.NewPaymentHandler(paymentService, hub)
		r.Route("/orders", func(r chi.Router) {
			orderHandler.RegisterRoutes(r)
			paymentHandler.RegisterRoutes(r)
		})

		r.Route("/timelogs", timeLogHandler.RegisterRoutes)

		inventoryHandler := handler.NewInventoryHandler(queries, nil)
		r.Route("/inventory", inventoryHandler.RegisterRoutes)

		// Back office: staff administration, payroll, expenses, the till
		// ledger and revenue reports.
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.StaffRoleOwner, enum.StaffRoleManager))

			staffHandler := handler.NewStaffHandler(queries)
			r.Route("/staff", staffHandler.RegisterRoutes)

			payrollHandler := handler.NewPayrollHandler(payrollService, queries)
			r.Route("/payroll", payrollHandler.RegisterRoutes)

			expenseHandler := handler.NewExpenseHandler(queries, nil)
			r.Route("/expenses", expenseHandler.RegisterRoutes)

			tillHandler := handler.NewTillHandler(queries)
			r.Route("/till", tillHandler.RegisterRoutes)

			reportHandler := handler.NewReportHandler(queries, nil)
			r.Route("/reports", reportHandler.RegisterRoutes)
		})
	})

	return r
}
