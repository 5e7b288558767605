// internal/interface/rest/router.go
package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine with all routes mounted under the
// configured context root. Metrics and health live outside it.
func NewRouter(h *Handler, contextRoot string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	api := engine.Group(contextRoot)

	api.POST("/login", h.Login)
	api.GET("/login/logout", h.Logout)

	authed := api.Group("", h.RequireSession)
	authed.POST("/flights/queryflights", h.QueryFlights)
	authed.POST("/bookings/bookflights", h.BookFlights)
	authed.POST("/bookings/cancelbooking", h.CancelBooking)
	authed.GET("/bookings/byuser/:user", h.BookingsByUser)
	authed.GET("/customer/byid/:user", h.GetCustomerByID)
	authed.POST("/customer/byid/:user", h.PutCustomerByID)

	api.GET("/config/runtime", h.RuntimeInfo)
	api.GET("/config/dataServices", h.DataServices)
	api.GET("/config/activeDataService", h.ActiveDataService)
	api.GET("/config/countBookings", h.CountBookings)
	api.GET("/config/countCustomers", h.CountCustomers)
	api.GET("/config/countSessions", h.CountSessions)
	api.GET("/config/countFlights", h.CountFlights)
	api.GET("/config/countFlightSegments", h.CountFlightSegments)
	api.GET("/config/countAirports", h.CountAirports)

	api.GET("/loader/load", h.LoadDB)
	api.GET("/loader/query", h.LoaderQuery)
	api.GET("/checkstatus", h.CheckStatus)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/health", func(c *gin.Context) {
		c.String(200, "Healthy")
	})

	return engine
}
