// Package worker consumes payment events: it carries meter readings from
// approved payments onto assets and exports approved payments to the
// bookkeeping spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/log"
	"rentledger/internal/sheets"
	"rentledger/internal/store"
)

// EventSource delivers payment events until ctx is cancelled.
type EventSource interface {
	ConsumePaymentEvents(ctx context.Context, handler func(context.Context, *amqp.PaymentEvent) error) error
}

type PaymentWorker struct {
	store    store.Store
	exporter sheets.PaymentExporter // nil disables export
	logger   *log.Logger
}

func NewPaymentWorker(st store.Store, exporter sheets.PaymentExporter) *PaymentWorker {
	return &PaymentWorker{
		store:    st,
		exporter: exporter,
		logger:   log.Default().WithComponent(log.ComponentWorker),
	}
}

// Run consumes events from src until ctx is cancelled.
func (w *PaymentWorker) Run(ctx context.Context, src EventSource) error {
	w.logger.InfoContext(ctx, "Payment worker consuming events", "export_enabled", w.exporter != nil)
	err := src.ConsumePaymentEvents(ctx, w.HandleEvent)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HandleEvent applies one event. The payment is reloaded so replays and
// out-of-order delivery act on current state. Returning an error requeues
// the event.
func (w *PaymentWorker) HandleEvent(ctx context.Context, ev *amqp.PaymentEvent) error {
	p, err := w.store.GetPayment(ctx, ev.PaymentID)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.WarnContext(ctx, "Dropping event for unknown payment",
			log.FieldPaymentID, ev.PaymentID, "kind", ev.Kind)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load payment %d: %w", ev.PaymentID, err)
	}
	if !p.IsApproved() {
		return w.unexport(ctx, p)
	}

	tenant, err := w.store.GetTenant(ctx, p.TenantID)
	if err != nil {
		return fmt.Errorf("load tenant %d: %w", p.TenantID, err)
	}
	asset, err := w.store.GetAsset(ctx, tenant.AssetID)
	var assetPtr *core.Asset
	switch {
	case err == nil:
		assetPtr = &asset
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("load asset %d: %w", tenant.AssetID, err)
	}

	if assetPtr != nil {
		if err := w.applyMeterReading(ctx, p, asset); err != nil {
			return err
		}
	}
	return w.export(ctx, p, tenant, assetPtr)
}

// applyMeterReading moves the asset's reading forward when the payment
// carries a reading newer than the asset's.
func (w *PaymentWorker) applyMeterReading(ctx context.Context, p core.RentPayment, a core.Asset) error {
	if p.MeterReading == 0 || p.PaymentDate.IsEmpty() {
		return nil
	}
	if !a.ReadingUpdated.IsZero() && !p.PaymentDate.After(a.ReadingUpdated) {
		return nil
	}
	if _, err := w.store.UpdateMeterReading(ctx, a.ID, p.MeterReading, p.PaymentDate.Time); err != nil {
		return fmt.Errorf("update meter reading of asset %d: %w", a.ID, err)
	}
	w.logger.InfoContext(ctx, "Updated meter reading",
		log.FieldAssetID, a.ID,
		log.FieldPaymentID, p.ID,
		"reading", p.MeterReading)
	return nil
}

func (w *PaymentWorker) export(ctx context.Context, p core.RentPayment, t core.Tenant, a *core.Asset) error {
	if w.exporter == nil {
		return nil
	}
	row := sheets.PaymentRow{Payment: p, TenantName: t.Name}
	if a != nil {
		row.AssetName = a.Name
	}
	ref, err := w.exporter.ExportPayment(ctx, row)
	if err != nil {
		return fmt.Errorf("export payment %d: %w", p.ID, err)
	}
	w.logger.InfoContext(ctx, "Exported payment",
		log.FieldOperation, log.OpExport,
		log.FieldPaymentID, p.ID,
		log.FieldSheetsRef, ref)
	return nil
}

// unexport clears the row of a payment that is no longer approved, such as
// one moved back to Pending after an edit.
func (w *PaymentWorker) unexport(ctx context.Context, p core.RentPayment) error {
	if w.exporter == nil {
		return nil
	}
	if err := w.exporter.RemovePayment(ctx, p.ID); err != nil {
		return fmt.Errorf("remove payment %d from export: %w", p.ID, err)
	}
	w.logger.DebugContext(ctx, "Removed unapproved payment from export",
		log.FieldOperation, log.OpExport,
		log.FieldPaymentID, p.ID,
		log.FieldStatus, p.Status)
	return nil
}

// ReconcileYear re-exports every approved payment dated in year, repairing
// rows missed while the worker was down. It returns how many were exported.
func (w *PaymentWorker) ReconcileYear(ctx context.Context, year int) (int, error) {
	if w.exporter == nil {
		return 0, nil
	}
	payments, err := w.store.ListPaymentsByYear(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("list payments for %d: %w", year, err)
	}

	n := 0
	var errs []error
	for _, p := range payments {
		if !p.IsApproved() {
			continue
		}
		if err := w.HandleEvent(ctx, amqp.NewPaymentEvent(p.ID, p.TenantID, amqp.PaymentApproved, string(p.Status))); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}
