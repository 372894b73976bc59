package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kaushikshivam970/storeit/internal/appwrite"
)

// CheckProvider pings the identity provider before the service starts
// accepting traffic, so misconfigured endpoints and keys fail fast.
func CheckProvider(lc fx.Lifecycle, admin *appwrite.AdminClient, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := admin.Health(pingCtx); err != nil {
				return fmt.Errorf("identity provider unreachable: %w", err)
			}
			logger.Info("identity provider reachable")
			return nil
		},
	})
}
