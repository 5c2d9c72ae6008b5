package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mentor-marketplace/internal/handler"
	"github.com/iliyamo/mentor-marketplace/internal/middleware"
	"github.com/iliyamo/mentor-marketplace/internal/model"
)

// RegisterMentor registers MENTOR-scoped endpoints for managing recurring
// availability windows.  All routes require a valid JWT and the MENTOR role.
func RegisterMentor(e *echo.Echo, a *handler.AvailabilityHandler, jwtSecret string) {
	g := e.Group(
		"/v1/availability",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleMentor),
	)
	g.POST("", a.Create)
	g.POST("/batch", a.CreateBatch)
	g.GET("/windows", a.ListWindows)
	g.DELETE("/windows/:id", a.DeleteWindow)
}
