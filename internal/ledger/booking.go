// Package ledger persists confirmed appointments.
package ledger

import (
	"fmt"
	"strings"
)

// RowWidth is the number of columns in a booking row.
const RowWidth = 7

// Booking is a confirmed appointment. Its row form is
// [whatsapp id, owner name, pet name, pet type, reason, date, time].
type Booking struct {
	WhatsAppID string
	OwnerName  string
	PetName    string
	PetType    string
	Reason     string
	Date       string
	Time       string
}

// ParseRow converts a ledger row into a Booking.
func ParseRow(row []string) (Booking, error) {
	if len(row) != RowWidth {
		return Booking{}, fmt.Errorf("ledger: expected %d columns, got %d", RowWidth, len(row))
	}
	if strings.TrimSpace(row[0]) == "" {
		return Booking{}, fmt.Errorf("ledger: whatsapp id required")
	}
	return Booking{
		WhatsAppID: row[0],
		OwnerName:  row[1],
		PetName:    row[2],
		PetType:    row[3],
		Reason:     row[4],
		Date:       row[5],
		Time:       row[6],
	}, nil
}

// Row returns the booking in column order.
func (b Booking) Row() []string {
	return []string{b.WhatsAppID, b.OwnerName, b.PetName, b.PetType, b.Reason, b.Date, b.Time}
}
