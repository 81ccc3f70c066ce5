// Package telemetry provides OpenTelemetry metric instruments for
// payroll-level business metrics. Instruments are registered against the
// global meter provider so a no-op provider keeps them free when metrics
// are disabled.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope for payroll business metrics.
const MeterName = "payroll-backend"

// Metric attribute keys.
const (
	AttrPeriodType    = attribute.Key("period_type")
	AttrPeriodStatus  = attribute.Key("period_status")
	AttrPaymentStatus = attribute.Key("payment_status")
	AttrMethodType    = attribute.Key("method_type")
	AttrOutcome       = attribute.Key("outcome")
)

// BusinessMetrics holds the instruments recorded from application services.
type BusinessMetrics struct {
	CalculationsTotal    metric.Int64Counter
	CalculationDuration  metric.Float64Histogram
	EmployeesCalculated  metric.Int64Counter
	CalculationFailures  metric.Int64Counter
	PaymentsTotal        metric.Int64Counter
	PaymentRetriesTotal  metric.Int64Counter
	PayslipsIssuedTotal  metric.Int64Counter
	LoanDeductionsTotal  metric.Int64Counter
	UnclaimedSweepsTotal metric.Int64Counter
}

var (
	businessMetrics     *BusinessMetrics
	businessMetricsOnce sync.Once
	businessMetricsErr  error
)

// Metrics returns the process-wide business metric instruments, creating
// them on first use.
func Metrics() (*BusinessMetrics, error) {
	businessMetricsOnce.Do(func() {
		businessMetrics, businessMetricsErr = newBusinessMetrics()
	})
	return businessMetrics, businessMetricsErr
}

func newBusinessMetrics() (*BusinessMetrics, error) {
	meter := otel.GetMeterProvider().Meter(MeterName)

	m := &BusinessMetrics{}
	var err error

	if m.CalculationsTotal, err = meter.Int64Counter(
		"payroll.calculations.total",
		metric.WithDescription("Number of payroll calculation runs started"),
	); err != nil {
		return nil, err
	}
	if m.CalculationDuration, err = meter.Float64Histogram(
		"payroll.calculation.duration",
		metric.WithDescription("Duration of a full period calculation run"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.EmployeesCalculated, err = meter.Int64Counter(
		"payroll.employees.calculated",
		metric.WithDescription("Per-employee calculation outcomes"),
	); err != nil {
		return nil, err
	}
	if m.CalculationFailures, err = meter.Int64Counter(
		"payroll.calculation.failures",
		metric.WithDescription("Employee calculations that produced exceptions"),
	); err != nil {
		return nil, err
	}
	if m.PaymentsTotal, err = meter.Int64Counter(
		"payroll.payments.total",
		metric.WithDescription("Payment status transitions"),
	); err != nil {
		return nil, err
	}
	if m.PaymentRetriesTotal, err = meter.Int64Counter(
		"payroll.payment.retries",
		metric.WithDescription("Payment retry attempts"),
	); err != nil {
		return nil, err
	}
	if m.PayslipsIssuedTotal, err = meter.Int64Counter(
		"payroll.payslips.issued",
		metric.WithDescription("Payslips generated"),
	); err != nil {
		return nil, err
	}
	if m.LoanDeductionsTotal, err = meter.Int64Counter(
		"payroll.loan.deductions",
		metric.WithDescription("Loan installments deducted through payroll"),
	); err != nil {
		return nil, err
	}
	if m.UnclaimedSweepsTotal, err = meter.Int64Counter(
		"payroll.unclaimed.sweeps",
		metric.WithDescription("Unclaimed cash payments swept past deadline"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCalculationRun increments the calculation counter for a period type.
func RecordCalculationRun(ctx context.Context, periodType string) {
	m, err := Metrics()
	if err != nil {
		return
	}
	m.CalculationsTotal.Add(ctx, 1, metric.WithAttributes(AttrPeriodType.String(periodType)))
}

// RecordEmployeeCalculated records a per-employee calculation outcome
// ("ok" or "exception").
func RecordEmployeeCalculated(ctx context.Context, outcome string) {
	m, err := Metrics()
	if err != nil {
		return
	}
	m.EmployeesCalculated.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
	if outcome != "ok" {
		m.CalculationFailures.Add(ctx, 1)
	}
}

// RecordPaymentTransition records a payment status transition by method type.
func RecordPaymentTransition(ctx context.Context, methodType, status string) {
	m, err := Metrics()
	if err != nil {
		return
	}
	m.PaymentsTotal.Add(ctx, 1, metric.WithAttributes(
		AttrMethodType.String(methodType),
		AttrPaymentStatus.String(status),
	))
}

// RecordPaymentRetry records a payment retry attempt.
func RecordPaymentRetry(ctx context.Context, methodType string) {
	m, err := Metrics()
	if err != nil {
		return
	}
	m.PaymentRetriesTotal.Add(ctx, 1, metric.WithAttributes(AttrMethodType.String(methodType)))
}

// RecordPayslipIssued records an issued payslip.
func RecordPayslipIssued(ctx context.Context) {
	m, err := Metrics()
	if err != nil {
		return
	}
	m.PayslipsIssuedTotal.Add(ctx, 1)
}
