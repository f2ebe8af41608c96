package main

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/example/socialtrust/internal/platform/auth"
	"github.com/example/socialtrust/internal/platform/config"
	"github.com/example/socialtrust/internal/platform/db"
	"github.com/example/socialtrust/internal/platform/httpserver"
	"github.com/example/socialtrust/internal/platform/logging"
	"github.com/example/socialtrust/internal/platform/natsconn"
	"github.com/example/socialtrust/internal/platform/run"
	"github.com/example/socialtrust/services/social/internal/actions"
	"github.com/example/socialtrust/services/social/internal/bootstrap"
	"github.com/example/socialtrust/services/social/internal/events"
	"github.com/example/socialtrust/services/social/internal/grpcapi"
	"github.com/example/socialtrust/services/social/internal/handlers"
	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/ratelimit"
	"github.com/example/socialtrust/services/social/internal/store"
	"github.com/example/socialtrust/services/social/internal/worker"
)

const eventRetention = 7 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	pflag.StringVar(&cfg.HTTP.Addr, "http-addr", cfg.HTTP.Addr, "HTTP listen address")
	pflag.StringVar(&cfg.GRPC.Addr, "grpc-addr", cfg.GRPC.Addr, "gRPC listen address")
	pflag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	pflag.StringVar(&cfg.PolicyFile, "policy", cfg.PolicyFile, "YAML file overriding the default policy")
	pflag.Parse()

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	pol, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		log.Error("load policy", zap.Error(err))
		run.Exit(1)
	}

	stores, ready, closeStores := initStores(cfg, log)
	defer closeStores()

	// Events go to the in-process SSE broadcaster and, when NATS is
	// configured, to JetStream.
	broadcaster := events.NewBroadcaster(64)
	observers := events.Multi{broadcaster}
	var js worker.JetStream
	if cfg.NATSURL != "" {
		nc, jsCtx, err := initNATS(cfg, log)
		if err != nil {
			if cfg.IsProduction() {
				log.Error("nats is required in production", zap.Error(err))
				run.Exit(1)
			}
			log.Warn("nats unavailable, events stay in-process", zap.Error(err))
		} else {
			defer nc.Drain()
			js = jsCtx
			observers = append(observers, events.NewNATSPublisher(jsCtx, log))
		}
	}

	svc := actions.New(actions.Deps{
		Stores:   stores,
		Policy:   pol,
		Observer: observers,
		Log:      log,
	})

	if err := bootstrap.PromoteModerators(context.Background(), stores.Users, cfg.ModeratorIDs, log); err != nil {
		log.Error("promote moderators", zap.Error(err))
		run.Exit(1)
	}

	bucket := ratelimit.NewBucket(cfg.HTTP.RatePerSec, cfg.HTTP.RateBurst, 10000)
	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: ready, Metrics: true})
	handlers.Mount(r, handlers.RouteDeps{
		Service:    svc,
		Verifier:   auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)},
		Events:     broadcaster,
		WriteGuard: bucket.Middleware,
	})
	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Error("grpc listen", zap.Error(err))
		run.Exit(1)
	}
	grpcSrv := grpc.NewServer()
	grpcapi.RegisterTrustServer(grpcSrv, &grpcapi.TrustService{Service: svc, Log: log})
	reflection.Register(grpcSrv)
	go func() {
		log.Info("grpc server starting", zap.String("addr", cfg.GRPC.Addr))
		if err := grpcSrv.Serve(lis); err != nil {
			log.Error("grpc serve", zap.Error(err))
		}
	}()

	penalties := worker.NewPenaltyWorker(log, svc.Moderation(), js, cfg.PenaltySweepInterval)

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			if err := penalties.Run(ctx); err != nil {
				log.Error("penalty worker stopped", zap.Error(err))
			}
		}()

		go func() {
			<-ctx.Done()
			stopped := make(chan struct{})
			go func() {
				grpcSrv.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
			case <-time.After(10 * time.Second):
				grpcSrv.Stop()
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initStores selects the storage backend. In production (APP_ENV=production)
// it requires a working Postgres connection and terminates the process
// otherwise. REDIS_DSN moves rate-limit marks to Redis.
func initStores(cfg config.AppConfig, log *zap.Logger) (store.Stores, func() error, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var (
		stores  store.Stores
		pool    *pgxpool.Pool
		closers []func()
	)
	if cfg.DatabaseURL == "" {
		if cfg.IsProduction() {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory stores (development only)")
		stores = store.NewInMemoryStores()
	} else {
		p, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			if cfg.IsProduction() {
				log.Error("postgres is required in production but unavailable", zap.Error(err))
				_ = log.Sync()
				os.Exit(1)
			}
			log.Warn("postgres unavailable, falling back to in-memory stores", zap.Error(err))
			stores = store.NewInMemoryStores()
		} else {
			if err := store.Migrate(ctx, p); err != nil {
				p.Close()
				log.Error("migrate", zap.Error(err))
				_ = log.Sync()
				os.Exit(1)
			}
			log.Info("stores: postgres")
			pool = p
			stores = store.NewPostgresStores(p)
			closers = append(closers, p.Close)
		}
	}

	var marks *store.RedisRateMarkStore
	if cfg.RedisDSN != "" {
		m, err := store.NewRedisRateMarkStore(cfg.RedisDSN)
		if err == nil {
			err = m.Ping(ctx)
		}
		switch {
		case err == nil:
			log.Info("rate marks: redis")
			marks = m
			stores.RateMarks = m
			closers = append(closers, func() { _ = m.Close() })
		case cfg.IsProduction():
			log.Error("redis configured but unavailable", zap.Error(err))
			_ = log.Sync()
			os.Exit(1)
		default:
			log.Warn("redis unavailable, keeping rate marks in the main store", zap.Error(err))
		}
	}

	ready := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
		}
		if marks != nil {
			return marks.Ping(ctx)
		}
		return nil
	}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return stores, ready, closeAll
}

// initNATS connects and makes sure the event stream exists before anything
// publishes to it.
func initNATS(cfg config.AppConfig, log *zap.Logger) (*nats.Conn, nats.JetStreamContext, error) {
	nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL, Name: cfg.ServiceName, Logger: log})
	if err != nil {
		return nil, nil, err
	}
	js, err := nc.JetStream(nats.PublishAsyncMaxPending(256))
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	if err := natsconn.EnsureStream(js, events.StreamName, events.StreamSubject, eventRetention); err != nil {
		nc.Close()
		return nil, nil, err
	}
	log.Info("events: nats", zap.String("stream", events.StreamName))
	return nc, js, nil
}
