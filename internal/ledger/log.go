package ledger

import (
	"context"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/conversation"
	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

// LogLedger only logs bookings. Used in development when no sheet or database is configured.
type LogLedger struct {
	logger *logging.Logger
}

func NewLogLedger(logger *logging.Logger) *LogLedger {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogLedger{logger: logger}
}

var _ conversation.Ledger = (*LogLedger)(nil)

func (l *LogLedger) AppendRow(_ context.Context, row []string) error {
	booking, err := ParseRow(row)
	if err != nil {
		return err
	}
	l.logger.Info("appointment booked",
		"whatsapp_id", booking.WhatsAppID,
		"pet_name", booking.PetName,
		"date", booking.Date,
		"time", booking.Time,
	)
	return nil
}
