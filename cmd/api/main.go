package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/trek-api/internal/application/auth"
	"github.com/jhoicas/trek-api/internal/application/contract"
	"github.com/jhoicas/trek-api/internal/application/dispatch"
	"github.com/jhoicas/trek-api/internal/application/notification"
	"github.com/jhoicas/trek-api/internal/application/reports"
	"github.com/jhoicas/trek-api/internal/application/session"
	"github.com/jhoicas/trek-api/internal/application/usecase"
	"github.com/jhoicas/trek-api/internal/domain/order"
	"github.com/jhoicas/trek-api/internal/infrastructure/brasilapi"
	"github.com/jhoicas/trek-api/internal/infrastructure/metrics"
	"github.com/jhoicas/trek-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/trek-api/internal/infrastructure/pdf"
	"github.com/jhoicas/trek-api/internal/infrastructure/postgres"
	"github.com/jhoicas/trek-api/internal/infrastructure/queue"
	"github.com/jhoicas/trek-api/internal/infrastructure/redisstore"
	"github.com/jhoicas/trek-api/internal/infrastructure/report"
	"github.com/jhoicas/trek-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/trek-api/internal/interfaces/http"
	"github.com/jhoicas/trek-api/pkg/config"
	"github.com/jhoicas/trek-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	flow, err := order.ParseFlow(cfg.Contract.DispatchFlow)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de despacho")
	}
	naming, err := contract.ParseNaming(cfg.Contract.DocumentNaming)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de documentos")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.ApplySchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewMetrics(reg)

	// Documentos: directorio local o bucket MinIO.
	docStore, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("almacenamiento de documentos")
	}
	docs := contract.NewDocumentService(infrapdf.NewContractGenerator(), docStore, naming, log.Component("documents"))

	// Avisos: SMTP si está configurado; si no, solo log.
	var sender notification.Sender = notify.NewLogSender(log.Component("notify"))
	if cfg.SMTP.Enabled() {
		sender = notify.NewSMTPSender(cfg.SMTP)
	}
	dispatcher := notification.NewDispatcher(outboxRepo, docStore, sender, log.Component("notify"), recorder)

	// Sesiones, guardia y cola: Redis si hay REDIS_URL; si no, memoria y envío en línea.
	var (
		sessions  session.Store = session.NewMemoryStore()
		guard     session.Guard = session.NewMemoryGuard()
		publisher notification.Publisher
		worker    *queue.Worker
	)
	publisher = notification.NewInlinePublisher(dispatcher, log.Component("notify"))
	if cfg.Redis.Enabled() {
		rdb, err := redisstore.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		sessions = redisstore.NewSessionStore(rdb)
		guard = redisstore.NewGuard(rdb)

		qp, err := queue.NewPublisher(cfg.Redis, outboxRepo, log.Component("queue"))
		if err != nil {
			log.Fatal().Err(err).Msg("cliente asynq")
		}
		defer qp.Close()
		publisher = qp

		worker, err = queue.NewWorker(cfg.Redis, dispatcher, log.Component("worker"))
		if err != nil {
			log.Fatal().Err(err).Msg("worker asynq")
		}
	}

	lookups := brasilapi.NewClient(cfg.BrasilAPI.BaseURL, log.Component("brasilapi"))
	termMonths := cfg.Contract.TermMonths

	authUC := auth.NewAuthUseCase(userRepo, sessions, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	contractUC := contract.NewUseCase(contract.Deps{
		Users:     userRepo,
		Products:  productRepo,
		Companies: companyRepo,
		Orders:    orderRepo,
		Tx:        txRunner,
		Docs:      docs,
		Sessions:  sessions,
		Guard:     guard,
		Publisher: publisher,
		Log:       log.Component("contracts"),
		Metrics:   recorder,
	}, contract.Config{TermMonths: termMonths})
	dispatchUC := dispatch.NewUseCase(dispatch.Deps{
		Orders:    orderRepo,
		Users:     userRepo,
		Products:  productRepo,
		Companies: companyRepo,
		Tx:        txRunner,
		Docs:      docs,
		Publisher: publisher,
		Log:       log.Component("dispatch"),
		Metrics:   recorder,
	}, order.NewPolicy(flow), termMonths)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Trek API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "dispatch_flow": string(flow)})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		CompanyUC:  usecase.NewCompanyUseCase(companyRepo, lookups),
		ProductUC:  usecase.NewProductUseCase(productRepo),
		UserUC:     usecase.NewUserUseCase(userRepo, companyRepo),
		OrderUC:    usecase.NewOrderUseCase(orderRepo, docs),
		LookupUC:   usecase.NewLookupUseCase(lookups, lookups, brasilapi.NewMockPersonLookup(), recorder),
		ContractUC: contractUC,
		DispatchUC: dispatchUC,
		PayrollUC:  reports.NewPayrollUseCase(orderRepo, report.NewPayrollWriter()),
		RetryUC:    notification.NewRetryUseCase(outboxRepo, publisher),
		JWTSecret:  cfg.JWT.Secret,
	})

	go worker.Run(ctx)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
