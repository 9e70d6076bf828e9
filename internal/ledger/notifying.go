package ledger

import (
	"context"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/conversation"
	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

// Notifier is told about every booking that was stored.
type Notifier interface {
	NotifyBooking(ctx context.Context, booking Booking) error
}

// NotifyingLedger stores through next and then notifies. Notification
// failures are logged and never reported to the caller.
type NotifyingLedger struct {
	next     conversation.Ledger
	notifier Notifier
	logger   *logging.Logger
}

func NewNotifyingLedger(next conversation.Ledger, notifier Notifier, logger *logging.Logger) *NotifyingLedger {
	if next == nil {
		panic("ledger: next ledger required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &NotifyingLedger{next: next, notifier: notifier, logger: logger}
}

var _ conversation.Ledger = (*NotifyingLedger)(nil)

func (l *NotifyingLedger) AppendRow(ctx context.Context, row []string) error {
	if err := l.next.AppendRow(ctx, row); err != nil {
		return err
	}
	if l.notifier == nil {
		return nil
	}
	booking, err := ParseRow(row)
	if err != nil {
		l.logger.Warn("booking stored but row not notifiable", "error", err)
		return nil
	}
	if err := l.notifier.NotifyBooking(ctx, booking); err != nil {
		l.logger.Error("failed to notify clinic of booking", "error", err, "whatsapp_id", booking.WhatsAppID)
	}
	return nil
}
