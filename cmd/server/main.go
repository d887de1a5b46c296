// Command server runs the quotation HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleetquote/internal/auth"
	"github.com/ukydev/fleetquote/internal/cache"
	"github.com/ukydev/fleetquote/internal/config"
	"github.com/ukydev/fleetquote/internal/costs"
	"github.com/ukydev/fleetquote/internal/db"
	"github.com/ukydev/fleetquote/internal/events"
	"github.com/ukydev/fleetquote/internal/handlers"
	"github.com/ukydev/fleetquote/internal/middleware"
	"github.com/ukydev/fleetquote/internal/parameters"
	"github.com/ukydev/fleetquote/internal/quotation"
	"github.com/ukydev/fleetquote/internal/routing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		log.WithError(err).Fatal("Failed to configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	mongoClient, err := db.ConnectMongo(ctx, cfg.Mongo.URI)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()
	logger.WithField("database", cfg.Mongo.Database).Info("Connected to MongoDB")

	database := mongoClient.Database(cfg.Mongo.Database)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		return err
	}
	store := db.NewStore(database)

	checks := map[string]handlers.Pinger{
		"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	redisClient := newRedisClient(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	authService, err := auth.NewService(auth.Config{Secret: cfg.JWT.Secret, Expiry: cfg.JWT.Expiry})
	if err != nil {
		return err
	}
	if cfg.JWT.Secret == "" {
		logger.Warn("JWT_SECRET not set, using the development secret")
	}

	paramsService := parameters.NewService(store.Parameters, newParametersCache(redisClient, cfg), logger)
	quoteService := quotation.NewService(quotation.Config{
		Vehicles:   store.Vehicles,
		Quotations: store.Quotations,
		Parameters: paramsService,
		Routes:     newRouteProvider(cfg, logger),
		Publisher:  publisher,
		Calculator: costs.NewCalculator(costs.WithTollPolicy(cfg.TollPolicy)),
		Logger:     logger,
	})

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:       authService,
		Users:      store.Users,
		Tenants:    store.Tenants,
		Vehicles:   store.Vehicles,
		Parameters: paramsService,
		Quotations: quoteService,
		Limiter:    newLimiter(redisClient),
		Logger:     logger,
		Checks:     checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(log.Fields{
			"port":        cfg.Port,
			"toll_policy": cfg.TollPolicy.String(),
		}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRedisClient returns nil when Redis is not configured or unreachable.
func newRedisClient(cfg config.Config, logger log.FieldLogger) *redis.Client {
	if cfg.Redis.Addr == "" {
		logger.Info("REDIS_ADDR not set, parameters cache and shared rate limits disabled")
		return nil
	}
	client, err := cache.NewRedisClient(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, continuing without cache")
		return nil
	}
	logger.WithField("addr", cfg.Redis.Addr).Info("Connected to Redis")
	return client
}

func newParametersCache(client *redis.Client, cfg config.Config) cache.ParametersCache {
	if client == nil {
		return cache.Nop{}
	}
	return cache.NewParametersCache(client, cfg.ParamsCacheTTL)
}

func newLimiter(client *redis.Client) middleware.Limiter {
	if client == nil {
		return middleware.NewMemoryLimiter()
	}
	return middleware.NewRedisLimiter(client)
}

func newRouteProvider(cfg config.Config, logger log.FieldLogger) routing.Provider {
	if cfg.Maps.APIKey == "" {
		logger.Info("GOOGLE_MAPS_API_KEY not set, quotes must carry their own route")
		return routing.Unavailable{}
	}
	p, err := routing.NewGoogleProvider(cfg.Maps.APIKey, cfg.Maps.Region)
	if err != nil {
		logger.WithError(err).Warn("Maps client unavailable, quotes must carry their own route")
		return routing.Unavailable{}
	}
	return p
}

func newPublisher(cfg config.Config, logger log.FieldLogger) events.Publisher {
	if cfg.MQTT.BrokerURL == "" {
		logger.Info("MQTT_BROKER_URL not set, quotation events disabled")
		return events.Nop{}
	}
	p, err := events.NewMQTTPublisher(events.MQTTConfig{
		BrokerURL: cfg.MQTT.BrokerURL,
		ClientID:  cfg.MQTT.ClientID,
		Username:  cfg.MQTT.Username,
		Password:  cfg.MQTT.Password,
		QoS:       cfg.MQTT.QoS,
	})
	if err != nil {
		logger.WithError(err).Warn("MQTT broker unavailable, quotation events disabled")
		return events.Nop{}
	}
	logger.WithField("broker", cfg.MQTT.BrokerURL).Info("Connected to MQTT broker")
	return p
}
