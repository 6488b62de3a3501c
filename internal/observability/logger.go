// Package observability carries the structured logger and the prometheus
// recorder, both of which can be attached to an event log as subscribers.
package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rl1809/checkout-sim/internal/core/domain"
	"github.com/rl1809/checkout-sim/internal/core/eventlog"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

func NewLogger(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// NewLoggerFromCore wraps an existing core, mostly for tests.
func NewLoggerFromCore(core zapcore.Core) *Logger {
	return &Logger{SugaredLogger: zap.New(core).Sugar()}
}

func NopLogger() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.SugaredLogger.Debugw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.SugaredLogger.Infow(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.SugaredLogger.Warnw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.SugaredLogger.Errorw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...any) {
	l.SugaredLogger.Fatalw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(sanitizeKVs(keysAndValues)...)}
}

// AttachLogger logs every event published on log. Declines and rejections are
// logged at warn level.
func AttachLogger(log *eventlog.Log, logger *Logger) {
	for _, kind := range domain.EventKinds() {
		log.Subscribe(kind, func(evt domain.DomainEvent) {
			kv := []any{"event_id", evt.ID, "kind", string(evt.Kind), "payload", evt.Payload}
			switch evt.Kind {
			case domain.EventPaymentDeclined, domain.EventCouponRejected,
				domain.EventQuantityChangeRejected, domain.EventShippingUnavailable,
				domain.EventAddressRejected:
				logger.Warn("domain event rejected", kv...)
			default:
				logger.Debug("domain event", kv...)
			}
		})
	}
}

func sanitizeKVs(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key, _ := kv[i].(string)
		out = append(out, kv[i], sanitizeValue(strings.ToLower(strings.TrimSpace(key)), kv[i+1]))
	}
	return out
}

func sanitizeValue(key string, val any) any {
	switch {
	case strings.Contains(key, "cvv"), strings.Contains(key, "secret"), strings.Contains(key, "password"):
		return "[REDACTED]"
	case strings.Contains(key, "card_number"), key == "number":
		if s, ok := val.(string); ok {
			return MaskCardNumber(s)
		}
	}
	switch v := val.(type) {
	case domain.PaymentInstrument:
		v.Number = MaskCardNumber(v.Number)
		v.CVV = "[REDACTED]"
		return v
	case domain.PaymentParams:
		v.Card.Number = MaskCardNumber(v.Card.Number)
		v.Card.CVV = "[REDACTED]"
		return v
	}
	return val
}

// MaskCardNumber keeps the last four digits.
func MaskCardNumber(number string) string {
	if len(number) <= 4 {
		return strings.Repeat("*", len(number))
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
