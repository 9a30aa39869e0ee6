package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/davicafu/carcatalog/internal/car/application"
	carDomain "github.com/davicafu/carcatalog/internal/car/domain"
	carEvents "github.com/davicafu/carcatalog/internal/car/infra/inbound/events"
	carHTTP "github.com/davicafu/carcatalog/internal/car/infra/inbound/http"
	"github.com/davicafu/carcatalog/internal/car/infra/outbound/analytics/clickhouse"
	carMemory "github.com/davicafu/carcatalog/internal/car/infra/outbound/db/memory"
	carMongo "github.com/davicafu/carcatalog/internal/car/infra/outbound/db/mongodb"
	carPostgres "github.com/davicafu/carcatalog/internal/car/infra/outbound/db/postgres"
	carSQLite "github.com/davicafu/carcatalog/internal/car/infra/outbound/db/sqlite"
	"github.com/davicafu/carcatalog/internal/car/infra/outbound/seed"
	"github.com/davicafu/carcatalog/internal/config"
	infraCache "github.com/davicafu/carcatalog/internal/infra/cache"
	outboxMongo "github.com/davicafu/carcatalog/internal/infra/db/mongodb"
	outboxPostgres "github.com/davicafu/carcatalog/internal/infra/db/postgres"
	outboxSQLite "github.com/davicafu/carcatalog/internal/infra/db/sqlite"
	infraEvents "github.com/davicafu/carcatalog/internal/infra/events"
	infraRelayer "github.com/davicafu/carcatalog/internal/infra/relayer"
	"github.com/davicafu/carcatalog/pkg/logger"
	sharedDomain "github.com/davicafu/carcatalog/shared/domain"
	sharedBus "github.com/davicafu/carcatalog/shared/platform/bus"
	sharedCache "github.com/davicafu/carcatalog/shared/platform/cache"
)

const consumerGroup = "carcatalog-analytics"

// store agrupa el repositorio elegido, su outbox y cómo cerrarlo.
type store struct {
	cars   carDomain.CarRepository
	outbox sharedDomain.OutboxRepository
	close  func()
}

// ---------------- Main ----------------
func main() {
	cfg := config.LoadConfig()
	logger.InitWithLevel(cfg.LogLevel)
	log := logger.Logger()
	defer log.Sync() // flush buffers al salir

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("carcatalog terminó con error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	// ---------------- Store ----------------
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	if cfg.SeedDemo {
		cars, err := seed.DemoCars()
		if err != nil {
			return fmt.Errorf("load demo catalog: %w", err)
		}
		if _, err := seed.IfEmpty(ctx, st.cars, cars, log); err != nil {
			return fmt.Errorf("seed demo catalog: %w", err)
		}
	}

	// ---------------- Cache ----------------
	cache, closeCache := openCache(ctx, cfg, log)
	defer closeCache()

	// --------------- Servicio --------------
	service := application.NewCarService(st.cars, cache, log)

	g, gctx := errgroup.WithContext(ctx)

	// ---------------- Events ---------------
	var analytics carDomain.CarAnalyticsRepository
	if cfg.ClickHouseAddr != "" {
		repo, err := clickhouse.NewCarAnalyticsRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, analítica desactivada", zap.Error(err))
		} else if err := repo.InitSchema(); err != nil {
			log.Warn("⚠️ No se pudo crear el esquema de ClickHouse", zap.Error(err))
		} else {
			analytics = repo
			log.Info("✅ ClickHouse conectado")
		}
	}
	consumer := carEvents.NewCarConsumer(analytics, log)

	var publisher sharedBus.EventPublisher
	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos", zap.Strings("brokers", cfg.KafkaBrokers))

		kafkaPublisher := infraEvents.NewKafkaPublisher(infraEvents.NewKafkaWriter(cfg.KafkaBrokers, carDomain.CarTopic), log)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher

		// Run cierra el reader al terminar.
		reader := infraEvents.NewKafkaReader(cfg.KafkaBrokers, carDomain.CarTopic, consumerGroup)
		adapter := infraEvents.NewConsumerAdapter(reader, consumer, log)
		g.Go(func() error { return adapter.Run(gctx) })
	} else {
		log.Info("⚡️Usando bus de eventos en memoria (canales de Go)")

		bus := infraEvents.NewInMemoryEventBus(carDomain.CarTopic)
		defer bus.Close()
		publisher = bus

		log.Info("🎧 Iniciando listener en memoria para eventos de coche")
		infraEvents.BackgroundConsumerChan(gctx, bus.Subscribe(64), consumer, log)
	}

	// ------------ Outbox Worker ------------
	worker := infraRelayer.NewOutboxWorker(st.outbox, publisher, carDomain.NewEventRegistry(), cfg.OutboxPeriod, cfg.OutboxLimit, log)
	g.Go(func() error { return worker.Run(gctx) })

	// ---------------- HTTP ----------------
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	carHTTP.RegisterCarRoutes(router, carHTTP.NewCarHandler(service), carHTTP.NewGraphQLHandler(service, log))

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
			MaxAge:         300,
		})(router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort), zap.String("store", cfg.CarStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("🛑 Apagando servidor HTTP")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*store, error) {
	switch cfg.CarStore {
	case config.StoreMemory:
		repo := carMemory.NewCarRepo()
		return &store{cars: repo, outbox: repo, close: func() {}}, nil

	case config.StoreSQLite:
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// SQLite admite un único escritor.
		db.SetMaxOpenConns(1)
		if err := carSQLite.InitSQLite(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		log.Info("✅ SQLite listo", zap.String("path", cfg.SQLitePath))
		return &store{
			cars:   carSQLite.NewCarRepoSQLite(db),
			outbox: outboxSQLite.NewOutboxRepoSQLite(db),
			close:  func() { db.Close() },
		}, nil

	case config.StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres store")
		}
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := carPostgres.InitPostgresCarSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		log.Info("✅ Postgres conectado")
		return &store{
			cars:   carPostgres.NewCarRepoPostgres(db),
			outbox: outboxPostgres.NewOutboxRepoPostgres(db),
			close:  func() { db.Close() },
		}, nil

	case config.StoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		disconnect := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		repo, err := carMongo.NewCarRepoMongoDB(ctx, client, cfg.MongoDB)
		if err != nil {
			disconnect()
			return nil, err
		}
		log.Info("✅ MongoDB conectado", zap.String("db", cfg.MongoDB))
		return &store{
			cars:   repo,
			outbox: outboxMongo.NewOutboxRepoMongoDB(client, cfg.MongoDB),
			close:  disconnect,
		}, nil

	default:
		return nil, fmt.Errorf("unknown CAR_STORE %q", cfg.CarStore)
	}
}

func openCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (sharedCache.Cache, func()) {
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		err := rdb.Ping(ctx).Err()
		if err == nil {
			log.Info("✅ Redis conectado, cache habilitado")
			return infraCache.NewRedisCache(rdb, "carcatalog", cfg.CacheTTL), func() { rdb.Close() }
		}
		log.Warn("⚠️ Redis no disponible, cache en memoria", zap.Error(err))
		rdb.Close()
	}
	mem := infraCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
	return mem, mem.Stop
}
