// Package telemetry exports sync pass metrics over OTLP.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// Resource attribute keys identifying which shop pair a syncer instance serves.
const (
	AttrDeploymentEnv     = attribute.Key("deployment.environment.name")
	AttrStorefrontShop    = attribute.Key("sync.storefront.shop")
	AttrMarketplaceShopID = attribute.Key("sync.marketplace.shop_id")
)

const defaultExportInterval = 60 * time.Second

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration
	Insecure          bool

	ServiceName    string
	ServiceVersion string // "dev" when empty
	Environment    string
	// StorefrontShop is the storefront shop domain, e.g. "acme.myshopify.com"
	StorefrontShop string
	// MarketplaceShopID is empty for single-shop marketplace accounts
	MarketplaceShopID string
}

// NewSyncResource describes a syncer instance. Every exported series carries
// these attributes, so dashboards can split by shop pair without metric labels.
func NewSyncResource(cfg MetricsConfig) (*resource.Resource, error) {
	version := cfg.ServiceVersion
	if version == "" {
		version = "dev"
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(version),
	}
	if cfg.Environment != "" {
		attrs = append(attrs, AttrDeploymentEnv.String(cfg.Environment))
	}
	if cfg.StorefrontShop != "" {
		attrs = append(attrs, AttrStorefrontShop.String(cfg.StorefrontShop))
	}
	if cfg.MarketplaceShopID != "" {
		attrs = append(attrs, AttrMarketplaceShopID.String(cfg.MarketplaceShopID))
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL, attrs...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// MeterProvider owns the OTLP pipeline. With metrics disabled it hands out
// meters from the global no-op provider.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider creates the OTLP gRPC pipeline and registers it globally.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger.Named("metrics")}

	if !cfg.Enabled {
		mp.logger.Info("Metrics disabled, sync passes are not exported")
		return mp, nil
	}

	res, err := NewSyncResource(cfg)
	if err != nil {
		return nil, err
	}

	exporterOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = defaultExportInterval
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	mp.logger.Info("Exporting sync metrics",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
		zap.String("storefront_shop", cfg.StorefrontShop),
		zap.String("marketplace_shop_id", cfg.MarketplaceShopID),
	)

	return mp, nil
}

// Meter returns a named meter.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// ForceFlush exports the results of passes that finished since the last
// export tick. Call it after the scheduler has stopped.
func (mp *MeterProvider) ForceFlush(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	if err := mp.provider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("failed to flush sync metrics: %w", err)
	}
	return nil
}

// Shutdown stops the export pipeline.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	mp.logger.Info("Metrics exporter stopped")
	return nil
}
