package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/pugoing-integration/internal/pkg/bridge"
	"github.com/anicoll/pugoing-integration/internal/pkg/config"
	"github.com/anicoll/pugoing-integration/internal/pkg/mqtt"
	"github.com/anicoll/pugoing-integration/internal/pkg/publisher"
	"github.com/anicoll/pugoing-integration/internal/pkg/pugoing"
	"github.com/anicoll/pugoing-integration/internal/pkg/server"
	"github.com/anicoll/pugoing-integration/pkg/clock"
)

func BridgeCommand(ctx *cli.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	cfg.PuGoing.Username = ctx.String("pugoing-username")
	cfg.PuGoing.Password = ctx.String("pugoing-password")
	cfg.PuGoing.Environment = ctx.String("pugoing-environment")
	cfg.PuGoing.PollInterval = ctx.Duration("poll-interval")
	cfg.Mqtt.Host = ctx.String("mqtt-host")
	cfg.Mqtt.Port = ctx.Int("mqtt-port")
	cfg.Mqtt.Username = ctx.String("mqtt-user")
	cfg.Mqtt.Password = ctx.String("mqtt-pass")
	cfg.HTTPAddr = ctx.String("http-addr")
	cfg.LogLevel = ctx.String("log-level")

	return setup(ctx.Context, cfg)
}

func setup(ctx context.Context, cfg *config.Config) error {
	logCfg := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg.Level = level
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	client := pugoing.New(cfg.PuGoing, pugoing.WithLogger(logger))

	opts := paho_mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Mqtt.Host, cfg.Mqtt.Port)).
		SetClientID(cfg.Mqtt.ClientID).
		SetUsername(cfg.Mqtt.Username).
		SetPassword(cfg.Mqtt.Password).
		SetAutoReconnect(true)
	pahoClient := paho_mqtt.NewClient(opts)

	mqttSvc := mqtt.New(pahoClient)
	if err := mqttSvc.Connect(); err != nil {
		return err
	}
	if err := publisher.RegisterPublisher("mqtt", mqttSvc); err != nil {
		return err
	}

	b := bridge.New(client, clock.New(), cfg, logger)

	assist := mqtt.NewAssistBridge(pahoClient, b.Converse)
	b.OnButlerChange(
		func(yid string) {
			if err := assist.SubscribeButler(yid); err != nil {
				logger.Error("failed to subscribe butler", zap.String("yid", yid), zap.Error(err))
			}
		},
		func(yid string) {
			if err := assist.UnsubscribeButler(yid); err != nil {
				logger.Error("failed to unsubscribe butler", zap.String("yid", yid), zap.Error(err))
			}
		},
	)

	errorChan := make(chan error, 1000)
	return run(ctx, cfg, client, b.Apply, server.New(b).Router(), errorChan, logger)
}

func run(ctx context.Context, cfg *config.Config, svc PuGoingService, sink SnapshotSink, handler http.Handler, errorChan chan error, logger *zap.Logger) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return pollLoop(ctx, cfg.PuGoing.PollInterval, svc, sink, logger)
	})

	eg.Go(func() error {
		return cronForcedRelogin(ctx, svc, errorChan)
	})

	eg.Go(func() error {
		srv := &http.Server{
			Handler:      handler,
			Addr:         cfg.HTTPAddr,
			WriteTimeout: 15 * time.Second,
			ReadTimeout:  15 * time.Second,
		}
		serveErr := make(chan error, 1)
		go func() {
			serveErr <- srv.ListenAndServe()
		}()
		select {
		case err := <-serveErr:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			return ctx.Err()
		}
	})

	eg.Go(func() error {
		// handle any async errors from services
		for {
			select {
			case err := <-errorChan:
				if errors.Is(err, errCron) {
					logger.Error("cron error", zap.Error(err))
					return err
				}
				logger.Error("async error", zap.Error(err))
			case <-ctx.Done():
				logger.Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

// pollLoop drives the topology poll at the configured cadence. An
// authentication failure aborts the group since the credentials are bad;
// anything else is retried on the next tick.
func pollLoop(ctx context.Context, interval time.Duration, svc PuGoingService, sink SnapshotSink, logger *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		snap, err := svc.PollAll(ctx)
		if err != nil {
			var authErr *pugoing.AuthenticationError
			if errors.As(err, &authErr) {
				logger.Error("re-auth required", zap.Error(err))
				return err
			}
			logger.Warn("update failed", zap.Error(err))
			continue
		}
		sink(ctx, snap)
	}
}

var errCron = errors.New("cron error")

// cronForcedRelogin rotates the session token every night well inside its
// 24h lifetime, so the buffer-triggered refresh rarely fires mid-poll.
func cronForcedRelogin(ctx context.Context, svc PuGoingService, errChan chan error) error {
	c := cron.New()
	if _, err := c.AddFunc("CRON_TZ=Asia/Shanghai 0 4 * * *", func() {
		if err := svc.ForceRelogin(context.Background()); err != nil {
			zap.L().Error("forced relogin failed", zap.Error(err))
			errChan <- errCron
			return
		}
		zap.L().Info("nightly token refresh complete")
	}); err != nil {
		return err
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}
