package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/Matheuscfs/tgt-contratto-mvp/configs"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/cache"
	httpadapter "github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/http"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/http/middleware"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/kafka"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/queue"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/repo"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/logging"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/security"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/usecase"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
}

// InitWithConfig wires the whole service: one client per external
// system, constructed here and passed into constructors.
func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, cfg.App.LogFile)
	l := logging.New("app")

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return nil, nil, err
	}

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	amqpCh, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// shared secrets
	material, err := security.NewMaterial(cfg)
	if err != nil {
		return nil, nil, err
	}

	// infra
	catalogRepo := repo.NewMySQLCatalogRepo(db)
	sessionRepo := repo.NewMySQLSessionRepo(db)
	orderRepo := repo.NewMySQLOrderRepo(db)
	outboxRepo := repo.NewMySQLOutboxRepo(db)
	confirmCache := cache.NewRedisConfirmationCache(rdb, cfg.Redis.TTL)

	producer, err := queue.NewRabbitProducer(amqpCh, cfg.Rabbit.Exchange, cfg.Rabbit.AlertQueue)
	if err != nil {
		return nil, nil, err
	}

	// use cases
	createUC := usecase.NewCreateSession(
		catalogRepo, sessionRepo, material.Metadata,
		cfg.Checkout.Currency, cfg.Checkout.PaymentBaseURL)
	materializeUC := usecase.NewMaterializeOrder(
		catalogRepo, sessionRepo, orderRepo, confirmCache, producer)
	reaper := usecase.NewExpireSessions(sessionRepo, cfg.Checkout.SessionTTL)

	// background workers
	bgCtx, bgCancel := context.WithCancel(context.Background())
	go queue.NewOutboxPublisher(outboxRepo, producer, cfg.Rabbit.DrainInterval, cfg.Rabbit.DrainBatch).Run(bgCtx)
	go reaper.Run(bgCtx, cfg.Checkout.SweepInterval)

	// alert queue consumer (ops bridge)
	setupAlertConsumer(amqpCh, cfg.Rabbit.AlertQueue)

	// optional: provider payment events over Kafka
	if len(cfg.Kafka.Brokers) > 0 {
		if err := setupKafkaListener(bgCtx, cfg, materializeUC); err != nil {
			bgCancel()
			return nil, nil, err
		}
	}

	// handlers + router + middleware
	h := httpadapter.NewCheckoutHandler(createUC, sessionRepo, orderRepo)
	wh := httpadapter.NewWebhookHandler(materializeUC)
	th := httpadapter.NewTokenHandler(cfg)
	auth := middleware.NewAuthz(cfg)
	wv := middleware.NewWebhookVerify(material.Webhook)
	router := httpadapter.NewRouter(h, wh, th, auth, wv)

	l.Info("checkout-api wired", "mysql", true, "redis", true, "rabbit", true,
		"kafka", len(cfg.Kafka.Brokers) > 0)

	cleanup := func() {
		bgCancel()
		_ = amqpCh.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupAlertConsumer(ch *amqp091.Channel, alertQueue string) {
	h := queue.NewAlertHandler()

	router := queue.NewConsumerRouter(ch, queue.WithPrefetch(50), queue.WithRequeue(false))
	router.Register(alertQueue, queue.JSONHandler[usecase.AlertMsg]{HandleFunc: h.HandleAlert})

	if err := router.Start(); err != nil {
		panic(err)
	}
}

func setupKafkaListener(ctx context.Context, cfg configs.Config, m *usecase.MaterializeOrder) error {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return err
	}

	h := kafka.NewPaymentEventHandler(m)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.PaymentTopic}, h.Handle)
	consumer.Logger = logging.New("kafka")

	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logging.New("kafka").Error("consumer stopped", "err", err)
		}
	}()
	return nil
}
