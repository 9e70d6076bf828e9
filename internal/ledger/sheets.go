package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/conversation"
)

var ledgerTracer = otel.Tracer("medpet.internal.ledger")

// SheetsConfig points at the spreadsheet that receives bookings.
type SheetsConfig struct {
	SpreadsheetID string
	// Range defaults to Sheet1.
	Range string
	// CredentialsFile is a service-account key; ignored when opts carry credentials.
	CredentialsFile string
}

// SheetsLedger appends booking rows to a Google Sheet.
type SheetsLedger struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	rng           string
}

// NewSheetsLedger authenticates with the service-account key and prepares the Sheets client.
// Extra client options are appended after the credentials option.
func NewSheetsLedger(ctx context.Context, cfg SheetsConfig, opts ...option.ClientOption) (*SheetsLedger, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("ledger: spreadsheet id required")
	}
	if cfg.Range == "" {
		cfg.Range = "Sheet1"
	}
	clientOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("ledger: create sheets service: %w", err)
	}
	return &SheetsLedger{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		rng:           cfg.Range,
	}, nil
}

var _ conversation.Ledger = (*SheetsLedger)(nil)

// AppendRow inserts the row after the last filled row of the range.
func (l *SheetsLedger) AppendRow(ctx context.Context, row []string) error {
	ctx, span := ledgerTracer.Start(ctx, "ledger.sheets.append")
	defer span.End()
	span.SetAttributes(attribute.String("medpet.spreadsheet_id", l.spreadsheetID))

	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	_, err := l.values.Append(l.spreadsheetID, l.rng, &sheets.ValueRange{Values: [][]interface{}{cells}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("ledger: append to sheet: %w", err)
	}
	return nil
}
