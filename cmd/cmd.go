package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillswap-backend/internal/config"
	"skillswap-backend/internal/handlers"
	"skillswap-backend/internal/middleware"
	"skillswap-backend/internal/repository"
	"skillswap-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	rateLimitRequests = 60
	rateLimitWindow   = time.Minute
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Connect to redis; the service degrades gracefully without it
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, caching and rate limiting disabled")
			redisClient = nil
		} else {
			log.Info().Msg("Redis connection established")
		}
	}

	// Initialize repositories
	memberRepo := repository.NewMemberRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	swapRepo := repository.NewSwapRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Initialize services
	authService := services.NewAuthService(memberRepo, cfg.JWT.Secret)
	memberService := services.NewMemberService(memberRepo, skillRepo)
	skillService := services.NewSkillService(skillRepo, memberRepo, redisClient)
	swapService := services.NewSwapService(swapRepo, memberRepo, skillRepo)
	messageService := services.NewMessageService(messageRepo, memberRepo, swapRepo)
	avatarService, err := services.NewAvatarService(cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create avatar service")
	}
	pushService, err := services.NewPushService(cfg.APNS, memberRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push service")
	}
	wsHub := services.NewWSHub()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	memberHandler := handlers.NewMemberHandler(memberService, avatarService)
	skillHandler := handlers.NewSkillHandler(skillService)
	swapHandler := handlers.NewSwapHandler(swapService, wsHub, pushService)
	messageHandler := handlers.NewMessageHandler(messageService, wsHub, pushService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, authService)

	// Setup router
	r := newRouter(routerDeps{
		authService: authService,
		redisClient: redisClient,
		auth:        authHandler,
		member:      memberHandler,
		skill:       skillHandler,
		swap:        swapHandler,
		message:     messageHandler,
		ws:          wsHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

type routerDeps struct {
	authService *services.AuthService
	redisClient *redis.Client
	auth        *handlers.AuthHandler
	member      *handlers.MemberHandler
	skill       *handlers.SkillHandler
	swap        *handlers.SwapHandler
	message     *handlers.MessageHandler
	ws          *handlers.WebSocketHandler
}

// newRouter mounts all routes. Profile reads, search and the skill
// catalog are public; everything acting as a member requires a token.
func newRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		r.Post("/auth/register", d.auth.Register)
		r.Post("/auth/login", d.auth.Login)
		r.Get("/skills", d.skill.ListCatalog)
		r.Get("/search/users", d.member.Search)
		r.Get("/users/{user_id}", d.member.GetMember)
		r.Get("/users/{user_id}/skills", d.skill.ListMemberSkills)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(d.authService))
			r.Use(middleware.RateLimit(d.redisClient, rateLimitRequests, rateLimitWindow))

			r.Get("/users/me", d.member.GetMe)
			r.Patch("/users/me", d.member.UpdateMe)
			r.Put("/users/me/push-token", d.member.UpdatePushToken)
			r.Post("/users/me/avatar-upload", d.member.PresignAvatarUpload)
			r.Post("/users/me/skills", d.skill.AddMemberSkill)
			r.Delete("/users/me/skills/{skill_id}", d.skill.RemoveMemberSkill)

			r.Post("/swaps", d.swap.Create)
			r.Get("/swaps", d.swap.List)
			r.Get("/swaps/{swap_id}", d.swap.Get)
			r.Patch("/swaps/{swap_id}/status", d.swap.UpdateStatus)
			r.Post("/swaps/{swap_id}/complete", d.swap.Complete)
			r.Patch("/swaps/active/{active_swap_id}/schedule", d.swap.ScheduleSession)

			r.Post("/messages", d.message.Send)
			r.Get("/messages", d.message.ListConversations)
			r.Get("/messages/{user_id}", d.message.ListConversation)
			r.Post("/messages/{user_id}/read", d.message.MarkRead)
		})
	})

	// WebSocket route
	r.Get("/ws", d.ws.HandleWebSocket)

	return r
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
