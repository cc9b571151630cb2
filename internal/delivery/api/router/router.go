// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"catalog/config"
	"catalog/internal/delivery/api/middleware"
	"catalog/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	CategoryHandler *handler.CategoryHandler
	ProductHandler  *handler.ProductHandler
	AuthMiddleware  *middleware.AuthMiddleware
	Metrics         *middleware.Metrics
	Config          *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	categoryHandler *handler.CategoryHandler
	productHandler  *handler.ProductHandler
	authMiddleware  *middleware.AuthMiddleware
	metrics         *middleware.Metrics
	config          *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:     params.AuthHandler,
		userHandler:     params.UserHandler,
		categoryHandler: params.CategoryHandler,
		productHandler:  params.ProductHandler,
		authMiddleware:  params.AuthMiddleware,
		metrics:         params.Metrics,
		config:          params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	if r.config.Metrics != nil && r.config.Metrics.Enabled {
		e.GET(r.config.Metrics.Path, r.metrics.Handler())
	}

	requireUser := r.authMiddleware.Authenticate

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/token", r.authHandler.Token, middleware.NewLoginRateLimiter(r.config))
	}

	// Current user routes
	usersGroup := e.Group("/users", requireUser)
	{
		usersGroup.GET("/me", r.userHandler.GetMe)
		usersGroup.DELETE("/me", r.userHandler.DeleteMe)
	}

	// Categories: reads are public, writes need a bearer token
	categoriesGroup := e.Group("/categories")
	{
		categoriesGroup.GET("", r.categoryHandler.ListCategories)
		categoriesGroup.GET("/:id", r.categoryHandler.GetCategory)
		categoriesGroup.POST("", r.categoryHandler.CreateCategory, requireUser)
		categoriesGroup.PUT("/:id", r.categoryHandler.RenameCategory, requireUser)
		categoriesGroup.DELETE("/:id", r.categoryHandler.DeleteCategory, requireUser)
	}

	// Products: reads are public, writes need a bearer token
	productsGroup := e.Group("/products")
	{
		productsGroup.GET("", r.productHandler.ListProducts)
		productsGroup.GET("/:id", r.productHandler.GetProduct)
		productsGroup.POST("", r.productHandler.CreateProduct, requireUser)
		productsGroup.PATCH("/:id", r.productHandler.UpdateProduct, requireUser)
		productsGroup.DELETE("/:id", r.productHandler.DeleteProduct, requireUser)
	}
}
