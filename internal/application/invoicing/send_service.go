package invoicing

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// SendConfig holds the email settings used when sending invoices
type SendConfig struct {
	// SubjectTemplate is used when no subject is given; {invoice_id} is replaced
	SubjectTemplate string
	SiteName        string
	Currency        string
	CurrencySymbol  string
	// Extra attachments added to every message, typically inline logos
	Attachments []Attachment
}

// DefaultSendConfig returns the default email settings
func DefaultSendConfig() SendConfig {
	return SendConfig{
		SubjectTemplate: "Invoice {invoice_id}",
		SiteName:        "Invoicing",
		Currency:        "EUR",
		CurrencySymbol:  "€",
	}
}

// SendService renders invoices and emails them to their recipient
type SendService struct {
	invoices *InvoiceService
	renderer Renderer
	composer BodyComposer
	notifier Notifier
	namer    invoicing.FileNamer
	config   SendConfig
	logger   *zap.Logger
}

// NewSendService creates a new SendService
func NewSendService(
	invoices *InvoiceService,
	renderer Renderer,
	composer BodyComposer,
	notifier Notifier,
	namer invoicing.FileNamer,
	config SendConfig,
	logger *zap.Logger,
) *SendService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SubjectTemplate == "" {
		config.SubjectTemplate = DefaultSendConfig().SubjectTemplate
	}
	return &SendService{
		invoices: invoices,
		renderer: renderer,
		composer: composer,
		notifier: notifier,
		namer:    namer,
		config:   config,
		logger:   logger,
	}
}

// Send renders the invoice, delivers it and only then marks it invoiced.
//
// An unresolvable recipient or a notifier without transport yields a result
// with Sent=false and a Reason. Render and delivery errors are returned and
// leave the invoice untouched. Sending an already invoiced invoice again is
// allowed.
func (s *SendService) Send(ctx context.Context, cmd SendCommand) (*SendResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "send")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInvoicePK, cmd.InvoiceID)

	inv, err := s.invoices.Get(ctx, cmd.InvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result := &SendResult{InvoiceID: inv.ID, Reference: inv.InvoiceID, Invoice: inv}

	to := cmd.ToEmail
	if to == "" && inv.Recipient.HasEmail() {
		to = inv.Recipient.Email
	}
	if to == "" {
		s.logger.Warn("Invoice not sent, no recipient email", zap.Int64("id", inv.ID))
		result.Reason = invoicing.ErrRecipientUnresolved
		return result, nil
	}
	result.To = to
	telemetry.SetAttribute(span, telemetry.SpanAttrRecipient, to)

	msg, err := s.buildMessage(ctx, inv, to, cmd.Subject)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, err
	}

	delivered, err := s.notifier.Deliver(ctx, msg)
	if err != nil {
		err = fmt.Errorf("%w: %w", invoicing.ErrDelivery, err)
		telemetry.RecordError(span, err)
		s.logger.Error("Invoice delivery failed", zap.Int64("id", inv.ID), zap.Error(err))
		return result, err
	}
	if !delivered {
		s.logger.Warn("Invoice not sent, no mail transport", zap.Int64("id", inv.ID))
		result.Reason = invoicing.ErrDelivery
		return result, nil
	}

	updated, err := s.invoices.markInvoiced(ctx, inv.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, err
	}
	result.Invoice = updated
	result.Sent = true

	s.logger.Info("Invoice sent",
		zap.Int64("id", inv.ID),
		zap.String("invoice_id", inv.InvoiceID),
		zap.String("to", to),
	)
	return result, nil
}

func (s *SendService) buildMessage(ctx context.Context, inv *invoicing.Invoice, to, subject string) (*Message, error) {
	pdf, err := s.renderer.Render(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", invoicing.ErrRender, err)
	}

	if subject == "" {
		subject = strings.NewReplacer("{invoice_id}", inv.InvoiceID).Replace(s.config.SubjectTemplate)
	}

	text, html, err := s.composer.Compose(EmailContent{
		Invoice:        inv,
		Date:           invoicing.NormalizeDate(s.invoices.clock()),
		SiteName:       s.config.SiteName,
		Currency:       s.config.Currency,
		CurrencySymbol: s.config.CurrencySymbol,
		TotalDisplay:   s.renderer.FormatAmount(inv.Total(), inv.Currency),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", invoicing.ErrRender, err)
	}

	attachments := make([]Attachment, 0, len(s.config.Attachments)+1)
	attachments = append(attachments, Attachment{
		FileName:    s.namer.FileName(inv),
		ContentType: "application/pdf",
		Data:        pdf,
	})
	attachments = append(attachments, s.config.Attachments...)

	return &Message{
		To:          to,
		Subject:     subject,
		TextBody:    text,
		HTMLBody:    html,
		Attachments: attachments,
	}, nil
}

// SendBatch sends each invoice with its recipient's address. Failures are
// collected per invoice and do not stop the batch.
func (s *SendService) SendBatch(ctx context.Context, ids []int64) *BatchResult {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "send_batch")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrBatchSize, len(ids))

	result := &BatchResult{}
	for _, id := range ids {
		res, err := s.Send(ctx, SendCommand{InvoiceID: id})
		switch {
		case err != nil:
			result.Errors = append(result.Errors, BatchError{InvoiceID: id, Err: err})
		case !res.Sent:
			result.Errors = append(result.Errors, BatchError{InvoiceID: id, Err: res.Reason})
		default:
			result.Processed = append(result.Processed, id)
			result.Last = res.Invoice
		}
	}
	return result
}

// SendDue sends every invoice dated today or earlier that is neither a draft
// nor invoiced yet
func (s *SendService) SendDue(ctx context.Context) (*BatchResult, error) {
	due, err := s.invoices.ListDue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list due invoices: %w", err)
	}
	ids := lo.Map(due, func(inv invoicing.Invoice, _ int) int64 { return inv.ID })
	result := s.SendBatch(ctx, ids)
	s.logger.Info("Due invoices processed",
		zap.Int("due", len(ids)),
		zap.Int("sent", len(result.Processed)),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}
