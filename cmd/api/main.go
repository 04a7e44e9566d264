package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diagnoease-backend/internal/auth"
	"diagnoease-backend/internal/cache"
	"diagnoease-backend/internal/config"
	"diagnoease-backend/internal/db"
	"diagnoease-backend/internal/handlers"
	"diagnoease-backend/internal/middleware"
	"diagnoease-backend/internal/notifications"
	"diagnoease-backend/internal/payments"
	"diagnoease-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected")
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected")
		cacheStore = redisCache
	}

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:   []byte(cfg.JWTSecret),
			TokenTTL: time.Duration(cfg.TokenTTLHours) * time.Hour,
			Issuer:   "diagnoease-backend",
		}
	} else {
		logger.Warn("ACCESS_TOKEN_SECRET not set, protected routes disabled")
	}

	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox)
	if mailer == nil {
		logger.Info("brevo mailer disabled")
	} else {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	}

	stripeProvider := payments.NewStripe(cfg.StripeSecretKey)
	if stripeProvider == nil {
		logger.Info("stripe disabled")
	} else {
		logger.Info("stripe enabled")
	}

	server := &handlers.Server{
		Cfg:    cfg,
		Cols:   cols,
		Val:    validation.New(),
		Log:    logger,
		Cache:  cacheStore,
		Tokens: jwtManager,
	}
	if mailer != nil {
		server.Mailer = mailer
	}
	if stripeProvider != nil {
		server.Payments = stripeProvider
	}

	roles := db.NewRoleStore(cols.Users)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigins))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	bookingLimiter := middleware.NewRateLimiter(cfg.RateLimitBookings, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	signupLimiter := middleware.NewRateLimiter(cfg.RateLimitSignup, time.Duration(cfg.RateLimitWindowSec)*time.Second)

	authenticated := middleware.Authenticate(jwtManager)
	adminOnly := middleware.RequireAdmin(roles)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("Your Server is Running"))
	})

	// Public routes.
	r.Post("/jwt", server.IssueToken)
	r.Post("/logout", server.Logout)
	r.Get("/districts", server.ListDistricts)
	r.Get("/upazilas", server.ListUpazilas)
	r.Get("/recommendations", server.ListRecommendations)
	r.Get("/available-tests", server.AvailableTests)
	r.Get("/featured-tests", server.FeaturedTests)
	r.Get("/banner", server.ListBanners)
	r.Get("/active-banner", server.ActiveBanner)
	r.With(signupLimiter.Middleware).Post("/user", server.CreateUser)

	// Authenticated routes.
	r.Group(func(protected chi.Router) {
		protected.Use(authenticated)

		protected.With(middleware.RequireSelfOrAdmin("email", roles)).Get("/user/{email}", server.GetUserByEmail)
		protected.Patch("/user/{id}", server.UpdateUser)
		protected.Get("/test/{id}", server.GetTest)
		protected.With(bookingLimiter.Middleware).Post("/booking", server.CreateBooking)
		protected.Delete("/booking/{id}", server.CancelBooking)
		protected.With(middleware.RequireSelfOrAdmin("email", roles)).Get("/upcomming-appointments/{email}", server.UpcomingAppointments)
		protected.With(middleware.RequireSelfOrAdmin("email", roles)).Get("/test-results/{email}", server.TestResults)
		protected.Post("/create-payment-intent", server.CreatePaymentIntent)

		// Admin-only routes.
		protected.Group(func(admin chi.Router) {
			admin.Use(adminOnly)

			admin.Get("/users", server.ListUsers)
			admin.Get("/tests", server.ListTests)
			admin.Post("/test", server.CreateTest)
			admin.Patch("/test/{id}", server.UpdateTest)
			admin.Delete("/test/{id}", server.DeleteTest)
			admin.Get("/appointments/{testId}", server.AppointmentsByTest)
			admin.Get("/user-appointments/{email}", server.AppointmentsByUser)
			admin.Patch("/report-submit/{email}/{id}", server.SubmitReport)
			admin.Get("/admin-stat", server.AdminStats)
			admin.Post("/banner", server.CreateBanner)
			admin.Delete("/banner/{id}", server.DeleteBanner)
			admin.Put("/banner/{id}/activate", server.ActivateBanner)
		})
	})

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
