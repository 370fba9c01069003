package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"heat/internal/cart"
	"heat/internal/config"
	"heat/internal/delivery"
	"heat/internal/handler"
	"heat/internal/infra/broker"
	"heat/internal/infra/cache"
	"heat/internal/infra/db"
	infraRepo "heat/internal/infra/repository"
	"heat/internal/lifecycle"
	"heat/internal/logger"
	"heat/internal/realtime"
	"heat/internal/server"
	"heat/internal/usecase"
	"heat/internal/validator"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	//.env が無くても環境変数で動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("heat-api", cfg.LogLevel, cfg.GoEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	//DB接続
	gormDB, err := db.Connect(cfg.DSN(), log)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	itemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	profileRepo := infraRepo.NewProfileGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//カート保存先
	var store cart.Store = cart.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		store = cache.NewRedisCartStore(rdb, cfg.CartTTL)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, carts are kept in memory")
	}

	//遷移通知
	notifier := lifecycle.MultiNotifier{lifecycle.LogNotifier{Log: log}}
	if len(cfg.KafkaBrokers) > 0 {
		w := broker.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaNotifyTopic)
		defer w.Close()
		notifier = append(notifier, broker.NewKafkaNotifier(w))
	}
	registry := lifecycle.NewRegistry(orderRepo, notifier, log)

	//注文変更の購読（LISTEN order_changes）
	hub := realtime.NewHub(0, log)
	defer hub.Close()
	pool, err := db.NewPool(ctx, cfg.DSN(), log)
	if err != nil {
		return err
	}
	defer pool.Close()
	go func() {
		if err := realtime.NewPGListener(pool, hub, log).Run(ctx); err != nil {
			log.Error().Err(err).Msg("order listener stopped")
		}
	}()

	var picker delivery.TablePicker = delivery.FixedPicker(1)
	if cfg.TableSeed != 0 {
		picker = delivery.NewRandomPicker(cfg.TableSeed)
	}

	//Usecase生成
	profileUC := usecase.NewProfileUsecase(profileRepo, validator.NewProfileValidator(), log)
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(store, productUC, nil, log)
	checkoutUC := usecase.NewCheckoutUsecase(txm, cartUC, profileUC, delivery.Options{
		Fee:        cfg.DeliveryFee,
		TableCount: cfg.TableCount,
		Picker:     picker,
	}, log)
	historyUC := usecase.NewOrderHistoryUsecase(orderRepo, hub, log)
	statusUC := usecase.NewOrderStatusUsecase(orderRepo, auditRepo, registry, log)
	kitchenUC := usecase.NewKitchenUsecase(orderRepo, itemRepo, log)
	qrUC := usecase.NewOrderQRUsecase(orderRepo, usecase.DefaultQRGenerator{}, cfg.PublicBaseURL, log)
	auditUC := usecase.NewAuditLogUsecase(auditRepo, log)

	//Handler生成
	e := server.New()
	server.RegisterRoutes(e, cfg, profileUC, log, server.Handlers{
		Product:    handler.NewProductHandler(productUC),
		Cart:       handler.NewCartHandler(cartUC),
		Order:      handler.NewOrderHandler(checkoutUC, historyUC, statusUC, qrUC, log),
		Profile:    handler.NewProfileHandler(profileUC),
		AdminOrder: handler.NewAdminOrderHandler(statusUC, kitchenUC),
		AdminAudit: handler.NewAdminAuditHandler(auditUC),
	})

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	return server.Start(ctx, addr, server.Handler(cfg, e), log)
}
