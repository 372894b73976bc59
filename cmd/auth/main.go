package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kaushikshivam970/storeit/internal/adapter/cache"
	"github.com/kaushikshivam970/storeit/internal/appwrite"
	"github.com/kaushikshivam970/storeit/internal/bootstrap"
	"github.com/kaushikshivam970/storeit/internal/config"
	httptransport "github.com/kaushikshivam970/storeit/internal/http"
	"github.com/kaushikshivam970/storeit/internal/http/handler"
	httpmiddleware "github.com/kaushikshivam970/storeit/internal/http/middleware"
	"github.com/kaushikshivam970/storeit/internal/repository"
	"github.com/kaushikshivam970/storeit/internal/server"
	"github.com/kaushikshivam970/storeit/internal/service"
	"github.com/kaushikshivam970/storeit/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newAppwriteFactory,
			newAdminClient,
			newUserRepository,
			newOTPIssuer,
			newHandleFactory,
			newAvatarSource,
			newRedisClient,
			newOTPThrottle,
			newRateLimiter,
			service.NewAuthService,
			handler.NewAuthHandler,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, bootstrap.CheckProvider, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func newAppwriteFactory(cfg config.Config) *appwrite.Factory {
	return appwrite.NewFactory(cfg, nil)
}

func newAdminClient(factory *appwrite.Factory) *appwrite.AdminClient {
	return factory.Admin()
}

func newUserRepository(admin *appwrite.AdminClient, node *snowflake.Node, cfg config.Config) repository.UserRepository {
	return repository.NewAppwriteUserRepo(admin, node, cfg)
}

func newOTPIssuer(admin *appwrite.AdminClient) service.OTPIssuer {
	return admin.Accounts
}

func newAvatarSource(admin *appwrite.AdminClient) service.AvatarSource {
	return admin.Avatars
}

// handleFactory adapts the provider factory to the service's capability
// interface, mapping the nil session client to a nil handle.
type handleFactory struct {
	factory *appwrite.Factory
}

func (f handleFactory) Session(token string) service.SessionHandle {
	client := f.factory.Session(token)
	if client == nil {
		return nil
	}
	return client.Account
}

func newHandleFactory(factory *appwrite.Factory) service.HandleFactory {
	return handleFactory{factory: factory}
}

func newRedisClient(lc fx.Lifecycle, cfg config.Config) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newOTPThrottle(client redis.UniversalClient, cfg config.Config) service.OTPThrottle {
	return cache.NewRedisThrottle(client, cfg.OTPMaxPerWindow, cfg.OTPThrottleWindow)
}

func newRateLimiter(cfg config.Config) *httpmiddleware.RateLimiter {
	return httpmiddleware.NewRateLimiter(cfg.RateLimitRPM)
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
