package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/Ritesh99494/Cloud-GYM/internal/auth"
	"github.com/Ritesh99494/Cloud-GYM/internal/booking"
	"github.com/Ritesh99494/Cloud-GYM/internal/config"
	"github.com/Ritesh99494/Cloud-GYM/internal/email"
	"github.com/Ritesh99494/Cloud-GYM/internal/gym"
	"github.com/Ritesh99494/Cloud-GYM/internal/payment"
	"github.com/Ritesh99494/Cloud-GYM/internal/subscription"
	"github.com/Ritesh99494/Cloud-GYM/internal/user"
)

type Server struct {
	router *gin.Engine
	httpd  *http.Server
	db     *sqlx.DB
	config *config.Config

	// Background sweep entry points, driven by cmd/app tickers.
	Subscriptions subscription.Service
	Bookings      booking.Service
	Payments      payment.Service
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	userRepo := user.NewRepository(db)
	gymRepo := gym.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	subscriptionRepo := subscription.NewRepository(db)
	paymentRepo := payment.NewRepository(db)

	userService := user.NewService(userRepo, cfg.JWTSecret)
	gymService := gym.NewService(gymRepo)
	subscriptionService := subscription.NewService(subscriptionRepo, cfg.PendingPaymentTimeout)
	bookingService := booking.NewService(bookingRepo, gymRepo, subscriptionRepo, userRepo, emailService, cfg.PendingPaymentTimeout)
	paymentService := payment.NewService(db, paymentRepo, subscriptionRepo, bookingRepo, userRepo, emailService, payment.Config{
		Currency:        cfg.PaymentCurrency,
		RedirectBaseURL: cfg.PaymentRedirectBaseURL,
		PendingTimeout:  cfg.PendingPaymentTimeout,
	})

	userHandler := user.NewHandler(userService, cfg.JWTSecret)
	gymHandler := gym.NewHandler(gymService)
	bookingHandler := booking.NewHandler(bookingService)
	subscriptionHandler := subscription.NewHandler(subscriptionService)
	paymentHandler := payment.NewHandler(paymentService)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	router.GET("/subscriptions/plans", subscriptionHandler.ListPlans)

	// Gateway webhook, unauthenticated by design. Safe to replay.
	router.POST("/payments/callback", paymentHandler.Callback)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/gyms", gymHandler.ListGyms)
		protected.GET("/gyms/nearby", gymHandler.NearbyGyms)
		protected.GET("/gyms/:gymID/slots", gymHandler.ListTimeSlots)
		protected.GET("/gyms/:gymID/availability", bookingHandler.GetAvailability)

		protected.POST("/bookings", bookingHandler.CreateBooking)
		protected.GET("/bookings", bookingHandler.ListMyBookings)
		protected.POST("/bookings/:bookingID/cancel", bookingHandler.CancelBooking)
		protected.POST("/bookings/:bookingID/checkin", bookingHandler.CheckIn)
		protected.POST("/bookings/:bookingID/checkout", bookingHandler.CheckOut)

		protected.POST("/subscriptions", subscriptionHandler.Purchase)
		protected.GET("/subscriptions/active", subscriptionHandler.GetActive)
		protected.GET("/subscriptions/my", subscriptionHandler.ListMy)
		protected.DELETE("/subscriptions/:id", subscriptionHandler.Cancel)

		protected.POST("/payments/subscription", paymentHandler.InitiateSubscriptionPayment)
		protected.POST("/payments/booking", paymentHandler.InitiateBookingPayment)
		protected.GET("/payments/my", paymentHandler.ListMy)
		protected.GET("/payments/:paymentID", paymentHandler.GetByPaymentID)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/gyms", gymHandler.CreateGym)
		admin.GET("/gyms", gymHandler.ListGyms)
		admin.POST("/gyms/:gymID/slots", gymHandler.CreateTimeSlot)
		admin.GET("/gyms/:gymID/slots", gymHandler.ListTimeSlots)
		admin.GET("/slots/:slotID/bookings", bookingHandler.ListBookingsBySlot)
		admin.GET("/gyms/:gymID/bookings", bookingHandler.ListBookingsByGym)
		admin.GET("/gyms/:gymID/stats", bookingHandler.GetGymStats)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,

		Subscriptions: subscriptionService,
		Bookings:      bookingService,
		Payments:      paymentService,
	}
}

// Router exposes the gin engine, used by integration tests to drive
// requests without a listening socket.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start(port string) error {
	s.httpd = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpd.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpd == nil {
		return nil
	}
	return s.httpd.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
