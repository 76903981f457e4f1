package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FarhanRj389/storefront-widgets/api/routes"
	"github.com/FarhanRj389/storefront-widgets/internal/cart"
	"github.com/FarhanRj389/storefront-widgets/internal/cartview"
	"github.com/FarhanRj389/storefront-widgets/internal/catalog"
	"github.com/FarhanRj389/storefront-widgets/internal/drawer"
	"github.com/FarhanRj389/storefront-widgets/internal/selector"
	"github.com/FarhanRj389/storefront-widgets/internal/session"
	"github.com/FarhanRj389/storefront-widgets/pkg/config"
	"github.com/FarhanRj389/storefront-widgets/pkg/logger"
	"github.com/FarhanRj389/storefront-widgets/pkg/metrics"
	"github.com/FarhanRj389/storefront-widgets/pkg/money"
	"github.com/FarhanRj389/storefront-widgets/pkg/platform"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	client, err := platform.NewClient(context.Background(), cfg.Platform, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build platform client", err)
		os.Exit(1)
	}

	var variantBlob []byte
	if cfg.Widget.VariantsPath != "" {
		variantBlob, err = os.ReadFile(cfg.Widget.VariantsPath)
		if err != nil {
			logg.Error(logg.WithField(context.Background(), "path", cfg.Widget.VariantsPath), "failed to read variant blob", err)
			os.Exit(1)
		}
	}
	cat := catalog.New(context.Background(), variantBlob, logg)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	syncMetrics := metrics.NewSyncMetrics(promRegistry)

	formatter := money.WithSymbol(cfg.Widget.CurrencySymbol)

	var initialVariantID int64
	if variants := cat.Variants(); len(variants) > 0 {
		initialVariantID = variants[0].ID
	}

	factory := func(sessionID string) (*session.Widgets, error) {
		mirror, err := cart.NewMirror(cart.Params{
			Client:        client,
			Logger:        logg,
			Metrics:       syncMetrics,
			RowImageWidth: cfg.Widget.RowImageWidth,
		})
		if err != nil {
			return nil, err
		}
		shell := drawer.NewShell()
		sel, err := selector.NewSelector(selector.Params{
			Catalog:          cat,
			Client:           client,
			Cart:             mirror,
			Drawer:           shell,
			Formatter:        formatter,
			Logger:           logg,
			ProductHandle:    cfg.Widget.ProductHandle,
			InitialVariantID: initialVariantID,
			ImageWidth:       cfg.Widget.ProductImageWidth,
		})
		if err != nil {
			return nil, err
		}
		return session.NewWidgets(mirror, cartview.NewView(formatter), shell, sel, logg), nil
	}

	registry, err := session.NewRegistry(factory, cfg.Widget.SessionTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build session registry", err)
		os.Exit(1)
	}

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go registry.Run(sweepCtx)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting widget engine")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, registry, promRegistry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "widget engine stopped unexpectedly", err)
		os.Exit(1)
	}
}
