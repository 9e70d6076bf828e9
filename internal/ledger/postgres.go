package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/conversation"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresLedger writes bookings to the appointments table.
type PostgresLedger struct {
	db    execer
	newID func() string
}

func NewPostgresLedger(pool *pgxpool.Pool) *PostgresLedger {
	if pool == nil {
		panic("ledger: pgx pool required")
	}
	return newPostgresLedgerWithExec(pool)
}

func newPostgresLedgerWithExec(db execer) *PostgresLedger {
	if db == nil {
		panic("ledger: exec required")
	}
	return &PostgresLedger{db: db, newID: uuid.NewString}
}

var _ conversation.Ledger = (*PostgresLedger)(nil)

func (l *PostgresLedger) AppendRow(ctx context.Context, row []string) error {
	booking, err := ParseRow(row)
	if err != nil {
		return err
	}
	ctx, span := ledgerTracer.Start(ctx, "ledger.postgres.append")
	defer span.End()

	query := `
		INSERT INTO appointments (id, whatsapp_id, owner_name, pet_name, pet_type, reason, appointment_date, appointment_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := l.db.Exec(ctx, query, l.newID(), booking.WhatsAppID, booking.OwnerName, booking.PetName,
		booking.PetType, booking.Reason, booking.Date, booking.Time); err != nil {
		span.RecordError(err)
		return fmt.Errorf("ledger: insert appointment: %w", err)
	}
	return nil
}
