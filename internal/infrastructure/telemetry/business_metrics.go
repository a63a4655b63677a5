// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks the back office's commercial activity: sale
// volume and revenue, package credit movement, and commission accrual.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	saleConfirmedTotal    *Counter
	saleCancelledTotal    *Counter
	saleAmountTotal       *Counter
	creditsConsumedTotal  *Counter
	commissionAmountTotal *Counter

	// Gauge metrics (point-in-time values)
	outstandingCredits *Gauge
	expiringPackages   *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	packageProvider PackageMetricsProvider
}

// PackageMetricsProvider supplies package ledger aggregates for
// periodic gauge collection. The interface keeps the telemetry layer
// off the packages domain.
type PackageMetricsProvider interface {
	// OutstandingCredits returns the total unconsumed credit across a
	// tenant's active, unexpired packages.
	OutstandingCredits(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// ExpiringSoonCount returns how many active packages with remaining
	// balance expire within the window.
	ExpiringSoonCount(ctx context.Context, tenantID uuid.UUID, within time.Duration) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	PackageProvider PackageMetricsProvider
}

// ExpiryWindow is the look-ahead used when counting packages about to
// expire with credit still on them.
const ExpiryWindow = 30 * 24 * time.Hour

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		packageProvider: cfg.PackageProvider,
	}

	var err error

	bm.saleConfirmedTotal, err = NewCounter(
		cfg.Meter,
		"glowdesk_sale_confirmed_total",
		"Total number of confirmed sales",
		"{sales}",
	)
	if err != nil {
		return nil, err
	}

	bm.saleCancelledTotal, err = NewCounter(
		cfg.Meter,
		"glowdesk_sale_cancelled_total",
		"Total number of cancelled sales",
		"{sales}",
	)
	if err != nil {
		return nil, err
	}

	bm.saleAmountTotal, err = NewCounter(
		cfg.Meter,
		"glowdesk_sale_amount_total",
		"Total confirmed sale amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.creditsConsumedTotal, err = NewCounter(
		cfg.Meter,
		"glowdesk_package_credits_consumed_total",
		"Total package credits drawn by consumption sales",
		"{credits}",
	)
	if err != nil {
		return nil, err
	}

	bm.commissionAmountTotal, err = NewCounter(
		cfg.Meter,
		"glowdesk_commission_amount_total",
		"Total commission accrued in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.outstandingCredits, err = NewGauge(
		cfg.Meter,
		"glowdesk_package_outstanding_credits",
		"Unconsumed credit across active packages",
		"{credits}",
	)
	if err != nil {
		return nil, err
	}

	bm.expiringPackages, err = NewGauge(
		cfg.Meter,
		"glowdesk_package_expiring_count",
		"Active packages with balance expiring within the look-ahead window",
		"{packages}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordSaleConfirmed records a confirmed sale and its revenue. Call
// it from the application layer once the confirmation has committed.
func (bm *BusinessMetrics) RecordSaleConfirmed(ctx context.Context, tenantID uuid.UUID, saleType string, total decimal.Decimal) {
	bm.saleConfirmedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrSaleType.String(saleType),
	)

	cents := total.Mul(decimal.NewFromInt(100)).IntPart()
	bm.saleAmountTotal.Add(ctx, cents,
		AttrTenantID.String(tenantID.String()),
		AttrSaleType.String(saleType),
	)
}

// RecordSaleCancelled records a cancellation.
func (bm *BusinessMetrics) RecordSaleCancelled(ctx context.Context, tenantID uuid.UUID, saleType string) {
	bm.saleCancelledTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrSaleType.String(saleType),
	)
}

// RecordPackageConsumption records credits drawn from a package.
func (bm *BusinessMetrics) RecordPackageConsumption(ctx context.Context, tenantID uuid.UUID, credits int64) {
	bm.creditsConsumedTotal.Add(ctx, credits,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordCommission records commission accrued for an attendant.
func (bm *BusinessMetrics) RecordCommission(ctx context.Context, tenantID, attendantID uuid.UUID, amount decimal.Decimal) {
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.commissionAmountTotal.Add(ctx, cents,
		AttrTenantID.String(tenantID.String()),
		AttrAttendantID.String(attendantID.String()),
	)
}

// RecordOutstandingCredits records the current unconsumed credit for a
// tenant. Updated by the periodic collector.
func (bm *BusinessMetrics) RecordOutstandingCredits(ctx context.Context, tenantID uuid.UUID, credits int64) {
	bm.outstandingCredits.Record(ctx, credits,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordExpiringPackages records how many packages are about to expire
// with credit remaining. Updated by the periodic collector.
func (bm *BusinessMetrics) RecordExpiringPackages(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.expiringPackages.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// TenantProvider supplies tenant IDs for periodic metrics collection.
type TenantProvider interface {
	ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts the gauge collection loop. It is
// non-blocking and idempotent; use Stop to end it.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, tenants, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectPackageGauges(ctx, tenants)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectPackageGauges(ctx, tenants)
		}
	}
}

func (bm *BusinessMetrics) collectPackageGauges(ctx context.Context, tenants TenantProvider) {
	if bm.packageProvider == nil {
		bm.logger.Debug("No package provider configured, skipping gauge collection")
		return
	}

	tenantIDs, err := tenants.ActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to list tenants for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		bm.collectTenantPackageGauges(ctx, tenantID)
	}
}

func (bm *BusinessMetrics) collectTenantPackageGauges(ctx context.Context, tenantID uuid.UUID) {
	credits, err := bm.packageProvider.OutstandingCredits(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to read outstanding credits",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordOutstandingCredits(ctx, tenantID, credits)
	}

	expiring, err := bm.packageProvider.ExpiringSoonCount(ctx, tenantID, ExpiryWindow)
	if err != nil {
		bm.logger.Warn("Failed to count expiring packages",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordExpiringPackages(ctx, tenantID, expiring)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
