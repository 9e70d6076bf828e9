package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/ledger"
	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

// BookingNotifier emails the clinic inbox whenever an appointment is confirmed.
type BookingNotifier struct {
	email     EmailSender
	recipient string
	logger    *logging.Logger
}

func NewBookingNotifier(email EmailSender, recipient string, logger *logging.Logger) *BookingNotifier {
	if email == nil {
		panic("notify: email sender required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingNotifier{email: email, recipient: strings.TrimSpace(recipient), logger: logger}
}

var _ ledger.Notifier = (*BookingNotifier)(nil)

func (n *BookingNotifier) NotifyBooking(ctx context.Context, b ledger.Booking) error {
	if n.recipient == "" {
		return errors.New("notify: clinic recipient not configured")
	}
	msg := EmailMessage{
		To:       n.recipient,
		ToName:   "MedPet",
		Subject:  fmt.Sprintf("Nueva cita: %s (%s) %s %s", b.PetName, b.PetType, b.Date, b.Time),
		Text:     bookingText(b),
		HTML:     bookingHTML(b),
		Category: "appointment",
	}
	if err := n.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking email: %w", err)
	}
	n.logger.Info("clinic notified of booking", "whatsapp_id", b.WhatsAppID)
	return nil
}

func bookingFields(b ledger.Booking) [][2]string {
	return [][2]string{
		{"Cliente", b.OwnerName},
		{"WhatsApp", b.WhatsAppID},
		{"Mascota", b.PetName},
		{"Tipo", b.PetType},
		{"Motivo", b.Reason},
		{"Fecha", b.Date},
		{"Hora", b.Time},
	}
}

func bookingText(b ledger.Booking) string {
	var sb strings.Builder
	sb.WriteString("Se confirmó una nueva cita por WhatsApp.\n\n")
	for _, f := range bookingFields(b) {
		fmt.Fprintf(&sb, "%s: %s\n", f[0], f[1])
	}
	return sb.String()
}

func bookingHTML(b ledger.Booking) string {
	var sb strings.Builder
	sb.WriteString("<p>Se confirmó una nueva cita por WhatsApp.</p><ul>")
	for _, f := range bookingFields(b) {
		fmt.Fprintf(&sb, "<li><strong>%s:</strong> %s</li>", f[0], html.EscapeString(f[1]))
	}
	sb.WriteString("</ul>")
	return sb.String()
}
