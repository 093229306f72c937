package invoicing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sendFixture struct {
	env      *testEnv
	renderer *MockRenderer
	composer *MockComposer
	notifier *MockNotifier
	service  *SendService
}

func newSendFixture(t *testing.T) *sendFixture {
	t.Helper()
	env := newTestEnv(t, march2024)
	renderer := new(MockRenderer)
	composer := new(MockComposer)
	notifier := new(MockNotifier)
	cfg := DefaultSendConfig()
	cfg.Attachments = []Attachment{{FileName: "logo.png", ContentType: "image/png", Data: []byte("png"), ContentID: "logo"}}
	return &sendFixture{
		env:      env,
		renderer: renderer,
		composer: composer,
		notifier: notifier,
		service:  NewSendService(env.service, renderer, composer, notifier, invoicing.IdentifierFileNamer{}, cfg, nil),
	}
}

func (f *sendFixture) expectRender() {
	f.renderer.On("Render", mock.Anything, mock.Anything).Return([]byte("%PDF-1.7"), nil)
	f.composer.On("Compose", mock.Anything).Return("text body", "<p>html body</p>", nil)
}

func TestSendService_Send(t *testing.T) {
	f := newSendFixture(t)
	inv := f.env.createInvoice(t, time.Time{}, hundredItem())
	f.expectRender()

	var delivered *Message
	f.notifier.On("Deliver", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { delivered = args.Get(1).(*Message) }).
		Return(true, nil)

	result, err := f.service.Send(context.Background(), SendCommand{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.True(t, result.Sent)
	assert.Equal(t, "billing@acme.example", result.To)
	assert.True(t, result.Invoice.Invoiced)
	assert.True(t, f.env.repo.get(inv.ID).Invoiced)

	require.NotNil(t, delivered)
	assert.Equal(t, "Invoice INV0000001", delivered.Subject)
	require.Len(t, delivered.Attachments, 2)
	assert.Equal(t, "INV0000001.pdf", delivered.Attachments[0].FileName)
	assert.Equal(t, "application/pdf", delivered.Attachments[0].ContentType)
	assert.Equal(t, "logo", delivered.Attachments[1].ContentID)
	assert.Equal(t, "<p>html body</p>", delivered.HTMLBody)

	f.composer.AssertCalled(t, "Compose", mock.MatchedBy(func(c EmailContent) bool {
		return c.TotalDisplay == "100.00 €" && c.Invoice.ID == inv.ID
	}))
}

func TestSendService_Send_Overrides(t *testing.T) {
	f := newSendFixture(t)
	inv := f.env.createInvoice(t, time.Time{})
	f.expectRender()
	f.notifier.On("Deliver", mock.Anything, mock.MatchedBy(func(m *Message) bool {
		return m.To == "other@example.com" && m.Subject == "Your bill"
	})).Return(true, nil)

	result, err := f.service.Send(context.Background(), SendCommand{InvoiceID: inv.ID, ToEmail: "other@example.com", Subject: "Your bill"})
	require.NoError(t, err)
	assert.True(t, result.Sent)
	f.notifier.AssertExpectations(t)
}

func TestSendService_Send_NoRecipientEmail(t *testing.T) {
	f := newSendFixture(t)
	inv := f.env.createInvoice(t, time.Time{})
	f.env.recipient.Email = ""

	result, err := f.service.Send(context.Background(), SendCommand{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.False(t, result.Sent)
	assert.ErrorIs(t, result.Reason, invoicing.ErrRecipientUnresolved)
	assert.False(t, f.env.repo.get(inv.ID).Invoiced)
	f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestSendService_Send_RenderFailure(t *testing.T) {
	f := newSendFixture(t)
	inv := f.env.createInvoice(t, time.Time{})
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(nil, errors.New("chrome crashed"))

	_, err := f.service.Send(context.Background(), SendCommand{InvoiceID: inv.ID})
	assert.ErrorIs(t, err, invoicing.ErrRender)
	assert.False(t, f.env.repo.get(inv.ID).Invoiced)
	f.notifier.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestSendService_Send_DeliveryFailure(t *testing.T) {
	f := newSendFixture(t)
	inv := f.env.createInvoice(t, time.Time{})
	f.expectRender()
	f.notifier.On("Deliver", mock.Anything, mock.Anything).Return(false, errors.New("connection refused"))

	_, err := f.service.Send(context.Background(), SendCommand{InvoiceID: inv.ID})
	assert.ErrorIs(t, err, invoicing.ErrDelivery)
	assert.False(t, f.env.repo.get(inv.ID).Invoiced)
}

func TestSendService_Send_NoTransport(t *testing.T) {
	f := newSendFixture(t)
	inv := f.env.createInvoice(t, time.Time{})
	f.expectRender()
	f.notifier.On("Deliver", mock.Anything, mock.Anything).Return(false, nil)

	result, err := f.service.Send(context.Background(), SendCommand{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.False(t, result.Sent)
	assert.ErrorIs(t, result.Reason, invoicing.ErrDelivery)
	assert.False(t, f.env.repo.get(inv.ID).Invoiced)
}

func TestSendService_SendDue(t *testing.T) {
	f := newSendFixture(t)
	due := f.env.createInvoice(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	future := f.env.createInvoice(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	f.expectRender()
	f.notifier.On("Deliver", mock.Anything, mock.Anything).Return(true, nil)

	result, err := f.service.SendDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{due.ID}, result.Processed)
	assert.False(t, result.Failed())
	assert.True(t, f.env.repo.get(due.ID).Invoiced)
	assert.False(t, f.env.repo.get(future.ID).Invoiced)

	again, err := f.service.SendDue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, again.Processed)
	f.notifier.AssertNumberOfCalls(t, "Deliver", 1)
}

func TestSendService_SendBatch_CollectsFailures(t *testing.T) {
	f := newSendFixture(t)
	first := f.env.createInvoice(t, time.Time{})
	second := f.env.createInvoice(t, time.Time{})
	f.expectRender()
	f.notifier.On("Deliver", mock.Anything, mock.Anything).Return(true, nil)

	result := f.service.SendBatch(context.Background(), []int64{first.ID, 999, second.ID})

	assert.Equal(t, []int64{first.ID, second.ID}, result.Processed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, int64(999), result.Errors[0].InvoiceID)
	assert.Equal(t, second.ID, result.Last.ID)
}
