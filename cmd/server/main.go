package main

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/infrastructure/cache"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/erp/invoicing/internal/infrastructure/export"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/infrastructure/mail"
	"github.com/erp/invoicing/internal/infrastructure/persistence"
	"github.com/erp/invoicing/internal/infrastructure/printing"
	"github.com/erp/invoicing/internal/infrastructure/scheduler"
	"github.com/erp/invoicing/internal/infrastructure/storage"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/erp/invoicing/internal/interfaces/http/handler"
	"github.com/erp/invoicing/internal/interfaces/http/middleware"
	"github.com/erp/invoicing/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Invoicing API
//	@version		1.0
//	@description	Invoices, credit notes, PDF rendering, email delivery and accounting exports
//	@BasePath		/api/v1

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const logoContentID = "logo"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting invoicing service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Tracing
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	currencyRepo := persistence.NewGormCurrencyRepository(db.DB)
	recipientRepo := persistence.NewGormRecipientRepository(db.DB)
	exportRepo := persistence.NewGormExportRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Rendering and delivery
	renderer, closeRenderer, err := buildRenderer(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer closeRenderer()

	sendConfig, err := buildSendConfig(cfg)
	if err != nil {
		log.Fatal("Failed to load email settings", zap.Error(err))
	}
	composerConfig := printing.EmailComposerConfig{CurrencySymbol: cfg.Invoice.CurrencySymbol}
	if len(sendConfig.Attachments) > 0 {
		composerConfig.LogoCID = logoContentID
	}
	composer, err := printing.NewEmailComposer(composerConfig)
	if err != nil {
		log.Fatal("Failed to parse email templates", zap.Error(err))
	}

	notifier := mail.NewSMTPNotifier(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Timeout:  cfg.SMTP.Timeout,
	}, log)
	if !notifier.Enabled() {
		log.Warn("SMTP host not configured, invoices will not be emailed")
	}

	pdfStore, err := printing.NewFileSystemPDFStore(printing.FileSystemPDFStoreConfig{
		BasePath: cfg.Invoice.PDFDir,
		Logger:   log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF store", zap.Error(err))
	}

	pdfCache, err := cache.NewPDFCacheFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize PDF cache", zap.Error(err))
	}
	redisCache, _ := pdfCache.(*cache.RedisPDFCache)
	if redisCache != nil {
		defer func() {
			_ = redisCache.Close()
		}()
	}

	exportStore, err := buildExportStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize export storage", zap.Error(err))
	}

	// Application services
	namer := invoicing.IdentifierFileNamer{}
	invoiceService := appinv.NewInvoiceService(
		txScope,
		invoiceRepo,
		recipientRepo,
		currencyRepo,
		appinv.NewIdentifierAllocator(invoicing.PrefixEncoder{
			Prefix: cfg.Invoice.IDPrefix,
			Width:  cfg.Invoice.IDWidth,
		}),
		appinv.NewPaymentLedger(),
		appinv.WithLogger(log),
	)
	creditNoteService := appinv.NewCreditNoteService(invoiceService, log)
	sendService := appinv.NewSendService(invoiceService, renderer, composer, notifier, namer, sendConfig, log)
	pdfService := appinv.NewPDFService(invoiceService, renderer, pdfStore, pdfCache, namer, log)
	exportJob := appinv.NewExportJob(
		appinv.NewInvoiceGatherer(txScope),
		export.NewCSVEncoder(),
		exportStore,
		exportRepo,
		nil,
		log,
	)
	currencyService := appinv.NewCurrencyService(currencyRepo)
	recipientService := appinv.NewRecipientService(recipientRepo, invoiceRepo)

	// Daily send of due invoices
	if cfg.Scheduler.Enabled {
		trigger, err := buildSendTrigger(cfg, sendService, redisCache, log)
		if err != nil {
			log.Fatal("Failed to create send trigger", zap.Error(err))
		}
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start send trigger", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := trigger.Stop(ctx); err != nil {
				log.Error("Error stopping send trigger", zap.Error(err))
			}
		}()
		log.Info("Send trigger started",
			zap.Int("hour", cfg.Scheduler.SendHour),
			zap.Int("minute", cfg.Scheduler.SendMinute),
		)
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	// Order matters: the request ID is needed by the logger and tracing
	// attributes, and recovery must wrap everything after it.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if redisCache != nil {
		checks["redis"] = redisCache.Ping
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, checks)
	engine.GET("/health", systemHandler.Health)

	var formatter appinv.AmountFormatter = renderer
	handlers := router.Handlers{
		Invoices:   handler.NewInvoiceHandler(invoiceService, formatter),
		Actions:    handler.NewInvoiceActionHandler(sendService, creditNoteService, formatter),
		PDFs:       handler.NewPDFHandler(pdfService),
		Exports:    handler.NewExportHandler(exportJob),
		Currencies: handler.NewCurrencyHandler(currencyService),
		Recipients: handler.NewRecipientHandler(recipientService),
		System:     systemHandler,
	}

	// The by-number PDF route answers without a database id, so guessing
	// identifiers is throttled.
	publicLimiter := middleware.NewRateLimiter(30, time.Minute)
	defer publicLimiter.Stop()

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(router.InvoicingRoutes(handlers, middleware.RateLimit(publicLimiter))...)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// buildRenderer selects the PDF engine. chromedp is the default; fpdf needs
// no browser.
func buildRenderer(cfg *config.Config, log *zap.Logger) (appinv.Renderer, func(), error) {
	if cfg.Renderer.Engine == "fpdf" {
		log.Info("Using fpdf invoice renderer")
		return printing.NewFPDFRenderer(printing.FPDFRendererConfig{
			SiteName:       cfg.Invoice.SiteName,
			CurrencySymbol: cfg.Invoice.CurrencySymbol,
			Logger:         log,
		}), func() {}, nil
	}

	engine, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Renderer.Timeout,
		RemoteURL:      cfg.Renderer.RemoteURL,
		NoSandbox:      true,
		Logger:         log,
	})
	if err != nil {
		return nil, nil, err
	}
	closeEngine := func() {
		if err := engine.Close(); err != nil {
			log.Error("Error closing chromedp engine", zap.Error(err))
		}
	}

	r, err := printing.NewHTMLInvoiceRenderer(engine, printing.InvoiceRendererConfig{
		SiteName:       cfg.Invoice.SiteName,
		CurrencySymbol: cfg.Invoice.CurrencySymbol,
		Timeout:        cfg.Renderer.Timeout,
		Logger:         log,
	})
	if err != nil {
		closeEngine()
		return nil, nil, err
	}
	log.Info("Using chromedp invoice renderer", zap.Bool("remote", cfg.Renderer.RemoteURL != ""))
	return r, closeEngine, nil
}

// buildSendConfig maps invoice settings to email settings and loads the
// optional inline logo
func buildSendConfig(cfg *config.Config) (appinv.SendConfig, error) {
	sc := appinv.SendConfig{
		SubjectTemplate: cfg.Invoice.SubjectTemplate,
		SiteName:        cfg.Invoice.SiteName,
		Currency:        cfg.Invoice.Currency,
		CurrencySymbol:  cfg.Invoice.CurrencySymbol,
	}
	if cfg.Invoice.LogoPath == "" {
		return sc, nil
	}

	data, err := os.ReadFile(cfg.Invoice.LogoPath)
	if err != nil {
		return sc, err
	}
	contentType := mime.TypeByExtension(filepath.Ext(cfg.Invoice.LogoPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	sc.Attachments = []appinv.Attachment{{
		FileName:    filepath.Base(cfg.Invoice.LogoPath),
		ContentType: contentType,
		Data:        data,
		ContentID:   logoContentID,
	}}
	return sc, nil
}

// buildExportStore returns the S3 store when configured and the local
// directory store otherwise
func buildExportStore(cfg *config.Config, log *zap.Logger) (appinv.FileStore, error) {
	if cfg.Export.Backend != "s3" {
		return storage.NewLocalFileStore(cfg.Export.Dir, cfg.Export.MediaURL, log)
	}

	s3Store, err := storage.NewS3FileStore(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPrefix(cfg.Export.Prefix),
	)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s3Store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Exports stored in S3", zap.String("bucket", s3Store.Bucket()))
	return s3Store, nil
}

// buildSendTrigger wires SendDue to the daily trigger. Instances sharing a
// Redis agree on a single run per day; without Redis the guard is local.
func buildSendTrigger(
	cfg *config.Config,
	sender *appinv.SendService,
	redisCache *cache.RedisPDFCache,
	log *zap.Logger,
) (*scheduler.DailyTrigger, error) {
	var guard scheduler.RunGuard = cache.NewInMemoryIdempotencyStore()
	if redisCache != nil {
		guard = cache.NewRedisIdempotencyStoreWithClient(redisCache.Client(), "invoicing:trigger:")
	}

	triggerConfig := scheduler.DefaultDailyTriggerConfig()
	triggerConfig.Hour = cfg.Scheduler.SendHour
	triggerConfig.Minute = cfg.Scheduler.SendMinute
	if cfg.Scheduler.JobTimeout > 0 {
		triggerConfig.JobTimeout = cfg.Scheduler.JobTimeout
	}

	task := func(ctx context.Context) error {
		result, err := sender.SendDue(ctx)
		if err != nil {
			return err
		}
		log.Info("Due invoices sent",
			zap.Int("processed", len(result.Processed)),
			zap.Int("errors", len(result.Errors)),
		)
		return nil
	}

	return scheduler.NewDailyTrigger(triggerConfig, task, log, scheduler.WithRunGuard(guard))
}
