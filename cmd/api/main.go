package main

import (
	"Airena/internal/api/config"
	"Airena/internal/pkg/consts"
	"Airena/internal/pkg/cron"
	"Airena/internal/pkg/database"
	"Airena/internal/pkg/es"
	"Airena/internal/pkg/logger"
	"Airena/internal/pkg/minio"
	"Airena/internal/pkg/mongo"
	"Airena/internal/pkg/redis"
	"Airena/internal/pkg/security"
	"Airena/internal/wire"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const drainTimeout = 5 * time.Second

func main() {
	must("load configuration", config.LoadConfig())
	cfg := config.Cfg
	logger.InitLogger()
	security.Init(cfg.JWT)

	app := bootstrap(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, app, cfg); err != nil {
		log.Error("Airena exited with error", "err", err)
	}
	// 消费者与 HTTP 均已退出，最后释放生产者
	if err := app.Producer.Close(); err != nil {
		log.Error("Kafka producer close failed", "err", err)
	}
	log.Info("Airena stopped")
}

// must 启动阶段任一依赖不可用时直接终止进程
func must(step string, err error) {
	if err != nil {
		log.Error("Fatal error: failed to "+step, "err", err)
		panic(err)
	}
}

// bootstrap 连接存储与检索依赖并组装应用
func bootstrap(cfg *config.Config) *wire.ApplicationContainer {
	db, err := database.NewGormDB(&cfg.DB)
	must("connect mysql", err)

	must("connect redis", redis.InitRedis(cfg.Redis))

	mongoDB, err := mongo.InitMongo(cfg.Mongo)
	must("connect mongo", err)
	log.Info("Mongo ready",
		"database", mongoDB.Name(),
		"collections", []string{consts.PostCollection, consts.VideoCollection, consts.ChannelCollection, consts.ApplicationCollection},
	)

	must("initialize object storage", minio.Init())
	log.Info("Object storage ready", "bucket", minio.MainBucket, "public_link", cfg.MinIO.UsePublicLink)

	must("initialize search", es.InitClient())
	log.Info("Search ready", "post_index", es.PostIndex)

	app, err := wire.BuildApplication(db, mongoDB, cfg)
	must("build application", err)
	return app
}

// serve 运行 HTTP、Kafka 消费者与定时任务，ctx 结束后依次排空
func serve(ctx context.Context, app *wire.ApplicationContainer, cfg *config.Config) error {
	g, gctx := errgroup.WithContext(ctx)

	if err := cron.InitCron(app.CronMgr); err != nil {
		return fmt.Errorf("start cron jobs: %w", err)
	}
	g.Go(func() error {
		<-gctx.Done()
		app.CronMgr.Stop()
		return nil
	})

	log.Info("Kafka consumers starting",
		"post_topic", cfg.KafkaPostConsumer.Topic, "post_group", cfg.KafkaPostConsumer.GroupID,
		"views_topic", cfg.KafkaViewsConsumer.Topic, "views_group", cfg.KafkaViewsConsumer.GroupID,
	)
	g.Go(func() error {
		return app.KafkaManager.Start(gctx, cfg)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: app.Router,
	}
	g.Go(func() error {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down, draining in-flight requests", "timeout", drainTimeout)
		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := srv.Shutdown(drainCtx); err != nil {
			log.Error("HTTP server shutdown failed", "err", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
