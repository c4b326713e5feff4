package server

import (
	"context"
	"log/slog"
	"net/http"

	"decantifume-api/internal/apperr"
	"decantifume-api/internal/config"
	"decantifume-api/internal/dto"
	"decantifume-api/internal/handler"
	"decantifume-api/internal/middleware"
	"decantifume-api/internal/model"
	"decantifume-api/internal/service"
	"decantifume-api/internal/validation"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const stripeWebhookPath = "/api/v1/orders/webhook/stripe"

type Services struct {
	Auth     service.AuthService
	User     service.UserService
	Product  service.ProductService
	Order    service.OrderService
	Payment  service.PaymentService
	Wishlist service.WishlistService
}

type Server struct {
	echo            *echo.Echo
	cfg             *config.Config
	tokens          middleware.TokenParser
	users           middleware.UserLookup
	limiter         echomw.RateLimiterStore
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	productHandler  *handler.ProductHandler
	orderHandler    *handler.OrderHandler
	wishlistHandler *handler.WishlistHandler
}

// NewServer wires the HTTP stack. A nil limiter falls back to an in-memory
// store sized from the rate limit config.
func NewServer(
	cfg *config.Config,
	services Services,
	tokens middleware.TokenParser,
	users middleware.UserLookup,
	limiter echomw.RateLimiterStore,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = newErrorHandler(cfg.IsProduction())

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit(cfg.HTTP.BodyLimit))

	if limiter == nil {
		limiter = NewMemoryLimiter(cfg.RateLimit)
	}

	s := &Server{
		echo:            e,
		cfg:             cfg,
		tokens:          tokens,
		users:           users,
		limiter:         limiter,
		authHandler:     handler.NewAuthHandler(services.Auth),
		userHandler:     handler.NewUserHandler(services.User),
		productHandler:  handler.NewProductHandler(services.Product),
		orderHandler:    handler.NewOrderHandler(services.Order, services.Payment),
		wishlistHandler: handler.NewWishlistHandler(services.Wishlist),
	}

	s.setupRoutes()
	return s
}

// NewMemoryLimiter allows cfg.Requests per cfg.Window for each client.
func NewMemoryLimiter(cfg config.RateLimit) echomw.RateLimiterStore {
	return echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		Burst:     cfg.Requests,
		ExpiresIn: cfg.Window,
	})
}

func (s *Server) rateLimiter() echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		// Stripe retries on 429, so the webhook is never throttled
		Skipper: func(c echo.Context) bool {
			return c.Path() == stripeWebhookPath
		},
		Store: s.limiter,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperr.Forbidden("Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return apperr.New(http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
		},
	})
}

func (s *Server) setupRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"message": "Decantifume API is running successfully!",
		})
	})

	api := s.echo.Group("/api", s.rateLimiter())
	v1 := api.Group("/v1")

	v1.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	member := middleware.Authenticate(s.tokens, s.users, model.RoleUser, model.RoleAdmin)
	admin := middleware.Authenticate(s.tokens, s.users, model.RoleAdmin)

	// -------- auth --------
	auth := v1.Group("/auth")
	auth.POST("/register", s.authHandler.Register, middleware.ValidateBody[dto.RegisterRequest]())
	auth.POST("/login", s.authHandler.Login, middleware.ValidateBody[dto.LoginRequest]())
	auth.POST("/change-password", s.authHandler.ChangePassword, member, middleware.ValidateBody[dto.ChangePasswordRequest]())
	auth.POST("/refresh-token", s.authHandler.RefreshToken, middleware.ValidateBody[dto.RefreshTokenRequest]())

	// -------- users --------
	users := v1.Group("/users")
	users.POST("", s.userHandler.Create, admin, middleware.ValidateBody[dto.CreateUserRequest]())
	users.GET("", s.userHandler.List, admin, middleware.ValidateQuery[dto.UserQuery]())
	users.GET("/stats", s.userHandler.Stats, admin)
	users.PATCH("/:id/role", s.userHandler.UpdateRole, admin, middleware.ValidateBody[dto.UpdateRoleRequest]())
	users.DELETE("/:id", s.userHandler.Delete, admin)
	users.GET("/:id", s.userHandler.Get, member)
	users.PATCH("/:id", s.userHandler.Update, member, middleware.ValidateBody[dto.UpdateUserRequest]())

	// -------- products --------
	products := v1.Group("/products")
	products.GET("", s.productHandler.List, middleware.ValidateQuery[dto.ProductQuery]())
	products.GET("/featured", s.productHandler.Featured, middleware.ValidateQuery[dto.LimitQuery]())
	products.GET("/brand/:brand", s.productHandler.ByBrand, middleware.ValidateQuery[dto.LimitQuery]())
	products.GET("/slug/:slug", s.productHandler.GetBySlug)
	products.GET("/:id/related", s.productHandler.Related, middleware.ValidateQuery[dto.LimitQuery]())
	products.GET("/:id", s.productHandler.Get)
	products.POST("", s.productHandler.Create, admin, middleware.ValidateBody[dto.CreateProductRequest]())
	products.POST("/images", s.productHandler.UploadImages, admin)
	products.PATCH("/:id", s.productHandler.Update, admin, middleware.ValidateBody[dto.UpdateProductRequest]())
	products.DELETE("/:id", s.productHandler.Delete, admin)
	products.PATCH("/:id/stock", s.productHandler.UpdateStock, admin, middleware.ValidateBody[dto.UpdateStockRequest]())

	// -------- orders --------
	orders := v1.Group("/orders")
	orders.POST("/webhook/stripe", s.orderHandler.StripeWebhook)

	orders.POST("", s.orderHandler.Create, member, middleware.ValidateBody[dto.CreateOrderRequest]())
	orders.GET("/my-orders", s.orderHandler.ListMine, member, middleware.ValidateQuery[dto.OrderQuery]())
	orders.GET("/stats", s.orderHandler.Stats, member)
	orders.GET("/top-products", s.orderHandler.TopProducts, admin, middleware.ValidateQuery[dto.LimitQuery]())
	orders.GET("/order-number/:orderNumber", s.orderHandler.GetByNumber, member)
	orders.GET("/:id", s.orderHandler.Get, member)
	orders.GET("", s.orderHandler.ListAll, admin, middleware.ValidateQuery[dto.OrderQuery]())
	orders.PATCH("/:id/status", s.orderHandler.UpdateStatus, admin, middleware.ValidateBody[dto.UpdateOrderStatusRequest]())
	orders.PATCH("/:id", s.orderHandler.Update, admin, middleware.ValidateBody[dto.UpdateOrderRequest]())

	// -------- payments --------
	payment := orders.Group("/payment")
	payment.POST("/create-intent", s.orderHandler.CreatePaymentIntent, member, middleware.ValidateBody[dto.CreatePaymentIntentRequest]())
	payment.POST("/confirm/:paymentIntentId", s.orderHandler.ConfirmPayment, member)
	payment.POST("/braintree", s.orderHandler.PayWithBraintree, member, middleware.ValidateBody[dto.BraintreeCheckoutRequest]())
	payment.POST("/refund/:paymentIntentId", s.orderHandler.RefundPayment, admin, middleware.ValidateBody[dto.RefundRequest]())

	// -------- wishlist --------
	wishlist := v1.Group("/wishlist", member)
	wishlist.GET("", s.wishlistHandler.List)
	wishlist.POST("", s.wishlistHandler.Add, middleware.ValidateBody[dto.AddWishlistRequest]())
	wishlist.DELETE("/:productId", s.wishlistHandler.Remove)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
