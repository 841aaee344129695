// Package router wires HTTP routes to handlers and applies the JWT and
// role middleware per group.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kofiadjei/robolab-api/internal/config"
	"github.com/kofiadjei/robolab-api/internal/handler"
	"github.com/kofiadjei/robolab-api/internal/middleware"
	"github.com/kofiadjei/robolab-api/internal/model"
)

// Handlers groups everything the router needs to register the API.
type Handlers struct {
	Auth        *handler.AuthHandler
	Appointment *handler.AppointmentHandler
	Region      *handler.RegionHandler
	Lab         *handler.LabHandler
	Org         *handler.OrgHandler
	Book        *handler.BookHandler
	Attendance  *handler.AttendanceHandler
}

// RegisterRoutes registers the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints. Register, login and the
// refresh pair are open; logout and /me run behind JWTAuth so logout can
// revoke every session of the caller.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)

	auth := e.Group("/v1/auth", middleware.JWTAuth(jwtSecret))
	auth.POST("/logout", a.Logout)

	me := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	me.GET("/me", a.Me)
}

// RegisterAPI registers every protected endpoint under /v1. The cache
// and rate-limit middleware are built from config and degrade to no-ops
// when Redis is absent.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	rateCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.NewTokenBucket(rateCfg, rdb))

	admin := middleware.RequireRole(model.RoleAdmin)
	staff := middleware.RequireStaff()

	// Reference data: reads for everyone, cached; mutations admin-only.
	cached := middleware.NewRedisCache(cacheCfg, rdb)
	v1.GET("/regions", h.Region.List, cached)
	v1.GET("/regions/:id", h.Region.Get, cached)
	v1.POST("/regions", h.Region.Create, admin)
	v1.PUT("/regions/:id", h.Region.Update, admin)
	v1.DELETE("/regions/:id", h.Region.Delete, admin)

	v1.GET("/labs", h.Lab.List, cached)
	v1.GET("/labs/:id", h.Lab.Get, cached)
	v1.POST("/labs", h.Lab.Create, admin)
	v1.PUT("/labs/:id", h.Lab.Update, admin)
	v1.DELETE("/labs/:id", h.Lab.Delete, admin)
	v1.GET("/labs/:id/appointments", h.Appointment.ListByLab, staff)

	// Organizational registry (admin).
	v1.GET("/companies", h.Org.ListCompanies, staff)
	v1.GET("/companies/:id", h.Org.GetCompany, staff)
	v1.POST("/companies", h.Org.CreateCompany, admin)
	v1.PUT("/companies/:id", h.Org.UpdateCompany, admin)
	v1.DELETE("/companies/:id", h.Org.DeleteCompany, admin)

	v1.GET("/departments", h.Org.ListDepartments, staff)
	v1.GET("/departments/:id", h.Org.GetDepartment, staff)
	v1.POST("/departments", h.Org.CreateDepartment, admin)
	v1.PUT("/departments/:id", h.Org.UpdateDepartment, admin)
	v1.DELETE("/departments/:id", h.Org.DeleteDepartment, admin)

	v1.GET("/employees", h.Org.ListEmployees, staff)
	v1.GET("/employees/:id", h.Org.GetEmployee, staff)
	v1.POST("/employees", h.Org.CreateEmployee, admin)
	v1.PUT("/employees/:id", h.Org.UpdateEmployee, admin)
	v1.DELETE("/employees/:id", h.Org.DeleteEmployee, admin)

	// Faculties are browsable by any authenticated user so bookers can
	// pick a responsible faculty member.
	v1.GET("/faculties", h.Org.ListFaculties)
	v1.GET("/faculties/:id", h.Org.GetFaculty)
	v1.POST("/faculties", h.Org.CreateFaculty, admin)
	v1.PUT("/faculties/:id", h.Org.UpdateFaculty, admin)
	v1.DELETE("/faculties/:id", h.Org.DeleteFaculty, admin)

	// Appointment lifecycle. Role checks beyond staff/admin gating live
	// in the workflow service. The static /appointments/user route must
	// come before the :id parameter route.
	v1.POST("/appointments", h.Appointment.Create)
	v1.GET("/appointments", h.Appointment.List)
	v1.GET("/appointments/user", h.Appointment.ListOwn)
	v1.GET("/appointments/:id", h.Appointment.Get)
	v1.POST("/appointments/capture-payment", h.Appointment.Capture)
	v1.PUT("/appointments/approve/:id", h.Appointment.Approve, staff)
	v1.PUT("/appointments/:id/checkin", h.Appointment.CheckIn)
	v1.PUT("/appointments/:id/checkout", h.Appointment.CheckOut)
	v1.PUT("/appointments/:id/cancel", h.Appointment.Cancel)

	// Library.
	v1.GET("/books", h.Book.List, cached)
	v1.GET("/books/:id", h.Book.Get, cached)
	v1.POST("/books", h.Book.Create, admin)
	v1.PUT("/books/:id", h.Book.Update, admin)
	v1.DELETE("/books/:id", h.Book.Delete, admin)
	v1.POST("/books/:id/borrow", h.Book.Borrow)
	v1.POST("/loans/:id/return", h.Book.Return)
	v1.GET("/loans", h.Book.ListLoans)

	// Attendance.
	v1.POST("/attendance", h.Attendance.Mark)
	v1.GET("/attendance", h.Attendance.ListOwn)
	v1.GET("/attendance/day/:date", h.Attendance.ListByDay, staff)
}
