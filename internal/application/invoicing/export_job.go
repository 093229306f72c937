package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ExportJob writes gathered billing rows to a file for the accounting system
type ExportJob struct {
	gatherer   DataGatherer
	encoder    RowEncoder
	store      FileStore
	exportRepo invoicing.ExportRepository
	clock      Clock
	logger     *zap.Logger
}

// NewExportJob creates a new ExportJob. A nil gatherer makes every run fail
// with ErrGather.
func NewExportJob(
	gatherer DataGatherer,
	encoder RowEncoder,
	store FileStore,
	exportRepo invoicing.ExportRepository,
	clock Clock,
	logger *zap.Logger,
) *ExportJob {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportJob{
		gatherer:   gatherer,
		encoder:    encoder,
		store:      store,
		exportRepo: exportRepo,
		clock:      clock,
		logger:     logger,
	}
}

// Run gathers rows, writes them to "<date>.csv" (or "test_<date>.csv" in
// test mode) and returns the file URL. Live runs also record an Export.
// Nothing is written when the gatherer fails or returns no rows.
func (j *ExportJob) Run(ctx context.Context, testMode bool) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "export", "run")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrExportMode, testMode)

	rows, err := j.gather(ctx, testMode)
	if err != nil {
		telemetry.RecordError(span, err)
		j.logger.Error("Export aborted", zap.Bool("test_mode", testMode), zap.Error(err))
		return "", err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrExportRows, len(rows))

	data, err := j.encoder.Encode(rows)
	if err != nil {
		telemetry.RecordError(span, err)
		return "", fmt.Errorf("failed to encode export rows: %w", err)
	}

	today := invoicing.NormalizeDate(j.clock())
	name := today.Format(time.DateOnly) + ".csv"
	if testMode {
		name = "test_" + name
	}
	file, err := j.store.Store(ctx, name, data, "text/csv; charset=utf-8")
	if err != nil {
		telemetry.RecordError(span, err)
		return "", fmt.Errorf("failed to store export file: %w", err)
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrExportFile, file.Name)

	if !testMode {
		record, err := invoicing.NewExport(today, file.Name)
		if err != nil {
			return "", err
		}
		if err := j.exportRepo.Save(ctx, record); err != nil {
			telemetry.RecordError(span, err)
			return "", fmt.Errorf("failed to record export: %w", err)
		}
	}

	j.logger.Info("Export written",
		zap.Bool("test_mode", testMode),
		zap.Int("rows", len(rows)),
		zap.String("file", file.Name),
	)
	return file.URL, nil
}

func (j *ExportJob) gather(ctx context.Context, testMode bool) (rows [][]string, err error) {
	if j.gatherer == nil {
		return nil, fmt.Errorf("%w: no data gatherer configured", invoicing.ErrGather)
	}
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("%w: gatherer panicked: %v", invoicing.ErrGather, r)
		}
	}()

	rows, err = j.gatherer.Gather(ctx, testMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", invoicing.ErrGather, err)
	}
	if rows == nil {
		return nil, fmt.Errorf("%w: gatherer returned no result", invoicing.ErrGather)
	}
	if len(rows) == 0 {
		return nil, invoicing.ErrNoData
	}
	return rows, nil
}

// List returns a page of export audit records
func (j *ExportJob) List(ctx context.Context, filter shared.Filter) (shared.Paginated[invoicing.Export], error) {
	items, err := j.exportRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[invoicing.Export]{}, err
	}
	total, err := j.exportRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[invoicing.Export]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.Limit()), nil
}

// InvoiceGatherer is the default DataGatherer. It emits one row per invoice
// whose export state is none or partial: date, identifier and total. Live
// runs mark those invoices and their payments exported.
type InvoiceGatherer struct {
	txScope TransactionScope
}

// NewInvoiceGatherer creates a new InvoiceGatherer
func NewInvoiceGatherer(txScope TransactionScope) *InvoiceGatherer {
	return &InvoiceGatherer{txScope: txScope}
}

// Gather implements DataGatherer
func (g *InvoiceGatherer) Gather(ctx context.Context, testMode bool) ([][]string, error) {
	rows := make([][]string, 0)
	err := g.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoices, err := repos.InvoiceRepo().FindExportable(ctx)
		if err != nil {
			return err
		}
		for i := range invoices {
			inv := &invoices[i]
			rows = append(rows, []string{
				inv.InvoiceDate.Format(time.DateOnly),
				inv.InvoiceID,
				inv.Total().StringFixed(2),
			})
			if testMode {
				continue
			}
			inv.MarkExported()
			if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
				return fmt.Errorf("failed to flag invoice %d exported: %w", inv.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

var _ DataGatherer = (*InvoiceGatherer)(nil)
