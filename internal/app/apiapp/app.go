package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kevalg4g/SoulSync-backend/internal/config"
	s3infra "github.com/kevalg4g/SoulSync-backend/internal/infra/s3"
	"github.com/kevalg4g/SoulSync-backend/internal/realtime"
	pgrepo "github.com/kevalg4g/SoulSync-backend/internal/repo/postgres"
	redrepo "github.com/kevalg4g/SoulSync-backend/internal/repo/redis"
	authsvc "github.com/kevalg4g/SoulSync-backend/internal/services/auth"
	chatsvc "github.com/kevalg4g/SoulSync-backend/internal/services/chat"
	matchessvc "github.com/kevalg4g/SoulSync-backend/internal/services/matches"
	notifsvc "github.com/kevalg4g/SoulSync-backend/internal/services/notifications"
	profilesvc "github.com/kevalg4g/SoulSync-backend/internal/services/profiles"
	swipesvc "github.com/kevalg4g/SoulSync-backend/internal/services/swipes"
	"github.com/kevalg4g/SoulSync-backend/internal/transport/ws"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	userRepo := pgrepo.NewUserRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	notificationRepo := pgrepo.NewNotificationRepo(pool)
	photoRepo := pgrepo.NewPhotoRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, userRepo, sessionRepo, cfg.Auth.RefreshTTL)

	registry := realtime.NewRegistry(log)
	broker := realtime.NewBroker(log)

	notificationService := notifsvc.NewService(notificationRepo, registry, log)
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		Pool:        pool,
		MatchStore:  matchRepo,
		UserStore:   userRepo,
		Notifier:    notificationService,
		Broadcaster: registry,
		Logger:      log,
	})
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:       pool,
		SwipeStore: swipeRepo,
		MatchStore: matchRepo,
		Announcer:  matchesService,
		Logger:     log,
	})
	chatService := chatsvc.NewService(chatsvc.Dependencies{
		MatchStore:   matchRepo,
		MessageStore: messageRepo,
		UserStore:    userRepo,
		Broadcaster:  broker,
		Notifier:     notificationService,
		Logger:       log,
	}, chatsvc.Config{
		HistoryLimit:  cfg.Chat.HistoryLimit,
		MaxTextLength: cfg.Chat.MaxTextLength,
	})

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	photoStorage := profilesvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	profileService := profilesvc.NewService(userRepo, photoRepo, photoStorage)

	gateway := ws.NewGateway(
		authService,
		registry,
		broker,
		matchesService,
		chatService,
		realtime.ClientOptions{
			SendBuffer:   cfg.Realtime.SendBuffer,
			WriteTimeout: cfg.Realtime.WriteTimeout,
			PongTimeout:  cfg.Realtime.PongTimeout,
			PingInterval: cfg.Realtime.PingInterval,
			MaxFrameSize: cfg.Realtime.MaxFrameSize,
		},
		log,
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:         authService,
		SwipeService:        swipeService,
		MatchService:        matchesService,
		ChatService:         chatService,
		NotificationService: notificationService,
		ProfileService:      profileService,
		WebsocketGateway:    gateway,
		Logger:              log,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
