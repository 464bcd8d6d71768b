package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/order-manager/internal/api/http/handlers"
	"github.com/spec-kit/order-manager/internal/auth"
	"github.com/spec-kit/order-manager/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Products       *handlers.ProductsHandler
	Orders         *handlers.OrdersHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. The authentication middleware runs once
// for every route; whether anonymous access is acceptable is decided per
// route group by the guards.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Use(cfg.AuthMiddleware.Handle)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/change", auth.RequireAuthenticated(), cfg.Auth.ChangePassword)

	users := app.Group("/users", auth.RequireRole(domain.RoleAdmin))
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	products := app.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/:id", cfg.Products.Get)
	products.Post("/", auth.RequireRole(domain.RoleAdmin), cfg.Products.Create)
	products.Put("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Products.Update)
	products.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Products.Delete)

	orders := app.Group("/orders", auth.RequireAuthenticated())
	orders.Get("/", cfg.Orders.List)
	orders.Post("/", cfg.Orders.Create)
	orders.Put("/:id/complete", cfg.Orders.Complete)
	orders.Delete("/:id", cfg.Orders.Delete)
}
