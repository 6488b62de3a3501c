package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rl1809/checkout-sim/internal/core/domain"
	"github.com/rl1809/checkout-sim/internal/core/eventlog"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewLoggerFromCore(core), logs
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "************1111", MaskCardNumber("4111111111111111"))
	assert.Equal(t, "***", MaskCardNumber("123"))
	assert.Equal(t, "", MaskCardNumber(""))
}

func TestLogger_MasksSensitiveKeys(t *testing.T) {
	logger, logs := observed()

	logger.Info("paying", "card_number", "4000000000000002", "cvv", "123", "sku", "CAMISETA-PRETA-M")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "************0002", fields["card_number"])
	assert.Equal(t, "[REDACTED]", fields["cvv"])
	assert.Equal(t, "CAMISETA-PRETA-M", fields["sku"])
}

func TestLogger_MasksInstrument(t *testing.T) {
	logger, logs := observed()

	logger.With("card", domain.PaymentInstrument{Number: "4111111111111111", CVV: "123"}).Info("card chosen")

	fields := logs.All()[0].ContextMap()
	card, ok := fields["card"].(domain.PaymentInstrument)
	require.True(t, ok, "got %T", fields["card"])
	assert.Equal(t, "************1111", card.Number)
	assert.Equal(t, "[REDACTED]", card.CVV)
}

func TestAttachLogger_LevelsByKind(t *testing.T) {
	logger, logs := observed()
	log := eventlog.New()
	AttachLogger(log, logger)

	log.Emit(domain.EventItemAdded, domain.ItemAdded{SKU: "A", Quantity: 1})
	log.Emit(domain.EventPaymentDeclined, domain.PaymentDeclined{Reason: domain.DeclineLimit})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, "ItemAdded", entries[0].ContextMap()["kind"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "PaymentDeclined", entries[1].ContextMap()["kind"])
}
