package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"ridehail/internal/auth"
	"ridehail/internal/handler"
	"ridehail/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler      *handler.RideHandler
	CaptainHandler   *handler.CaptainHandler
	UserHandler      *handler.UserHandler
	MapsHandler      *handler.MapsHandler
	Socket           http.HandlerFunc
	Tokens           middleware.TokenParser
	IdempotencyStore middleware.IdempotencyStore
	AllowedOrigins   []string
	NewRelicApp      *newrelic.Application

	// Optional, reported by /health.
	Sockets SocketCounter
	Events  LivenessChecker
}

// SocketCounter reports how many push sockets are open.
type SocketCounter interface {
	Connected() int
}

// LivenessChecker reports whether an outbound connection is usable.
type LivenessChecker interface {
	IsAlive() bool
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", healthHandler(deps.Sockets, deps.Events))

	// Push channel. The token may ride in the query string on the handshake.
	router.GET("/ws", middleware.AuthenticateSocket(deps.Tokens), gin.WrapF(deps.Socket))

	authenticated := middleware.Authenticate(deps.Tokens)
	riderOnly := middleware.RequireRole(auth.RoleRider)
	captainOnly := middleware.RequireRole(auth.RoleCaptain)
	anyRole := middleware.RequireRole(auth.RoleRider, auth.RoleCaptain)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
		}

		// Captain routes.
		captains := v1.Group("/captains")
		{
			captains.POST("/register", deps.CaptainHandler.Register)
			captains.POST("/location", authenticated, captainOnly, deps.CaptainHandler.UpdateLocation)
			captains.POST("/status", authenticated, captainOnly, deps.CaptainHandler.UpdateStatus)
		}

		// Ride routes.
		rides := v1.Group("/rides", authenticated)
		{
			rides.GET("/get-fare", riderOnly, deps.RideHandler.GetFare)
			if deps.IdempotencyStore != nil {
				rides.POST("/create", riderOnly, middleware.IdempotencyMiddleware(deps.IdempotencyStore), deps.RideHandler.CreateRide)
			} else {
				rides.POST("/create", riderOnly, deps.RideHandler.CreateRide)
			}
			rides.POST("/confirm", captainOnly, deps.RideHandler.ConfirmRide)
			rides.GET("/start-ride", captainOnly, deps.RideHandler.StartRide)
			rides.POST("/end-ride", captainOnly, deps.RideHandler.EndRide)
			rides.GET("/:id", anyRole, deps.RideHandler.GetRide)
		}

		// Maps routes.
		maps := v1.Group("/maps", authenticated, anyRole)
		{
			maps.GET("/coordinates", deps.MapsHandler.GetCoordinates)
			maps.GET("/distance-time", deps.MapsHandler.GetDistanceTime)
			maps.GET("/suggestions", deps.MapsHandler.GetSuggestions)
		}
	}

	return router
}

// healthHandler reports open sockets and the event broker. A lost broker
// degrades the service but rides keep flowing, so it stays 200.
func healthHandler(sockets SocketCounter, events LivenessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok", "events": "disabled"}
		if sockets != nil {
			body["sockets"] = sockets.Connected()
		}
		if events != nil {
			body["events"] = "up"
			if !events.IsAlive() {
				body["status"] = "degraded"
				body["events"] = "down"
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
