package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/controllers"
	"github.com/yeremiapane/restaurant-reservation/hub"
	"github.com/yeremiapane/restaurant-reservation/middlewares"
	"github.com/yeremiapane/restaurant-reservation/services"
)

type Deps struct {
	Reservations  services.ReservationService
	Tables        services.TableService
	Reconciler    *services.Reconciler
	Hub           *hub.Hub
	ReserveLimit  *middlewares.RateLimiter
	CORSOrigin    string
	RequestLogger bool
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if d.RequestLogger {
		r.Use(middlewares.LoggerMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))

	reservationCtrl := controllers.NewReservationController(d.Reservations)
	tableCtrl := controllers.NewTableController(d.Tables, d.Reconciler)
	adminCtrl := controllers.NewAdminController(d.Tables)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.GET("/tables", tableCtrl.GetTables)
	r.GET("/reserved-tables", reservationCtrl.GetReservedTables)

	// Guests may reserve without an account; a token ties the reservation to its user
	guest := r.Group("/")
	guest.Use(middlewares.OptionalAuth())
	{
		reserve := []gin.HandlerFunc{}
		if d.ReserveLimit != nil {
			reserve = append(reserve, d.ReserveLimit.RateLimit())
		}
		reserve = append(reserve, reservationCtrl.CreateReservation)
		guest.POST("/reserve", reserve...)

		guest.GET("/reservation/:orderId", reservationCtrl.GetReservation)
		guest.DELETE("/reservation/:orderId", reservationCtrl.CancelReservation)
		guest.PUT("/reservation/:orderId", reservationCtrl.UpdateReservation)
		guest.PATCH("/reservation/:orderId", reservationCtrl.UpdateReservation)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	user := r.Group("/")
	user.Use(middlewares.AuthMiddleware())
	user.GET("/user/:userId/reservations", reservationCtrl.GetUserReservations)

	adminOnly := []gin.HandlerFunc{middlewares.AuthMiddleware(), middlewares.RequireRole(middlewares.RoleAdmin)}
	r.POST("/sync", append(adminOnly, tableCtrl.SyncReservedTables)...)
	r.POST("/reserved-tables/sync", append(adminOnly, tableCtrl.SyncReservedTables)...)

	admin := r.Group("/admin")
	admin.Use(adminOnly...)

	// RESERVATIONS
	admin.GET("/reservations", reservationCtrl.GetAllReservations)
	admin.POST("/reservations/:orderId/complete", reservationCtrl.CompleteReservation)

	// TABLES
	admin.GET("/tables", tableCtrl.GetAllTables)
	admin.POST("/tables", tableCtrl.CreateTable)
	admin.PUT("/tables/:tableNumber/status", tableCtrl.UpdateTableStatus)
	admin.DELETE("/tables/:tableNumber", tableCtrl.DeleteTable)
	admin.POST("/tables/reconcile", tableCtrl.ReconcileTables)

	// DASHBOARD
	admin.GET("/dashboard/stats", adminCtrl.GetDashboardStats)

	// Realtime dashboard feed
	if d.Hub != nil {
		realtimeCtrl := controllers.NewRealtimeController(d.Hub, d.CORSOrigin)
		r.GET("/ws", middlewares.WebSocketAuthMiddleware(), realtimeCtrl.Serve)
	}

	return r
}
