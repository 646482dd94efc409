// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"leadflow-service/internal/config"
	"leadflow-service/internal/db"
	agentHandler "leadflow-service/internal/handlers/agent"
	conversationHandler "leadflow-service/internal/handlers/conversation"
	leadHandler "leadflow-service/internal/handlers/lead"
	metricsHandler "leadflow-service/internal/handlers/metrics"
	wsHandler "leadflow-service/internal/handlers/websocket"
	"leadflow-service/internal/middleware"
	"leadflow-service/internal/pkg/jwt"
	"leadflow-service/internal/pkg/presence"
	"leadflow-service/internal/repository/postgres"
	"leadflow-service/internal/service/attendance"
	"leadflow-service/internal/store"
	"leadflow-service/internal/websocket"
	wsHandlers "leadflow-service/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("[REDIS] connected")

	// ----- JWT Verifier -----
	verifier, err := jwt.LoadVerifier(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}

	// ----- Presence -----
	tracker := presence.NewTracker(redisClient)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	intakeRepo := postgres.NewLeadIntakeRepository(dbWrapper)
	archiveRepo := postgres.NewConversationArchiveRepository(dbWrapper)

	// ----- Store -----
	st := store.New()
	if err := s.seedQueue(ctx, st, intakeRepo); err != nil {
		return err
	}

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(verifier, tracker, logger)
	go hub.Run(ctx)

	// ----- Services -----
	metricsService := attendance.NewMetricsService(st, s.cfg.ConversionWindow)
	queueService := attendance.NewQueueService(st, intakeRepo, hub, logger)
	coordinator := attendance.NewCoordinator(st, metricsService, intakeRepo, hub, logger)
	conversationService := attendance.NewConversationService(st, metricsService, archiveRepo, hub, logger)

	// Register WebSocket handlers
	hub.RegisterHandler(wsHandlers.NewAttendanceHandler(conversationService))

	// ----- Handlers -----
	leadHandlerInst := leadHandler.NewLeadHandler(queueService, coordinator)
	conversationHandlerInst := conversationHandler.NewConversationHandler(conversationService)
	metricsHandlerInst := metricsHandler.NewMetricsHandler(metricsService)
	agentHandlerInst := agentHandler.NewAgentHandler(tracker)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		LeadHandler:         leadHandlerInst,
		ConversationHandler: conversationHandlerInst,
		MetricsHandler:      metricsHandlerInst,
		AgentHandler:        agentHandlerInst,
		WSHandler:           wsHandlerInst,
		AuthMiddleware:      authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}

// seedQueue reloads unclaimed leads so a restart does not lose the queue.
func (s *Server) seedQueue(ctx context.Context, st *store.Store, intakeRepo *postgres.LeadIntakeRepository) error {
	leads, err := intakeRepo.LoadUnclaimed(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload unclaimed leads: %w", err)
	}
	for _, l := range leads {
		if _, err := st.PutLead(l); err != nil {
			s.logger.Warn("skipping lead on reseed",
				zap.String("lead_id", l.ID),
				zap.Error(err),
			)
		}
	}
	s.logger.Info("queue seeded", zap.Int("leads", len(leads)))
	return nil
}
