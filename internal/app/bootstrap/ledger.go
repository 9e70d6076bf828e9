package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/wolfman30/medpet-whatsapp-bot/internal/config"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/conversation"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/ledger"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/notify"
	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

// Ledger backends accepted in LEDGER_BACKEND.
const (
	LedgerSheets   = "sheets"
	LedgerPostgres = "postgres"
	LedgerLog      = "log"
)

// BuildLedger selects the appointment ledger and, when a notifier is given,
// wraps it so the clinic hears about every stored booking.
func BuildLedger(ctx context.Context, cfg *appconfig.Config, pool *pgxpool.Pool, notifier ledger.Notifier, logger *logging.Logger) (conversation.Ledger, error) {
	if logger == nil {
		logger = logging.Default()
	}
	var base conversation.Ledger
	switch cfg.LedgerBackend {
	case LedgerSheets:
		sheetsLedger, err := ledger.NewSheetsLedger(ctx, ledger.SheetsConfig{
			SpreadsheetID:   cfg.SpreadsheetID,
			Range:           cfg.SpreadsheetRange,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		base = sheetsLedger
	case LedgerPostgres:
		if pool == nil {
			return nil, fmt.Errorf("bootstrap: postgres ledger requires DATABASE_URL")
		}
		base = ledger.NewPostgresLedger(pool)
	case LedgerLog, "":
		base = ledger.NewLogLedger(logger)
	default:
		return nil, fmt.Errorf("bootstrap: unknown ledger backend %q", cfg.LedgerBackend)
	}
	logger.Info("appointment ledger ready", "backend", cfg.LedgerBackend, "notify", notifier != nil)
	if notifier == nil {
		return base, nil
	}
	return ledger.NewNotifyingLedger(base, notifier, logger), nil
}

// Email providers accepted in EMAIL_PROVIDER.
const (
	EmailSendGrid = "sendgrid"
	EmailSES      = "ses"
	EmailStub     = "stub"
	EmailNone     = "none"
)

// BuildBookingNotifier returns nil when clinic emails are disabled.
func BuildBookingNotifier(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) ledger.Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ClinicNotifyEmail == "" || cfg.EmailProvider == "" || cfg.EmailProvider == EmailNone {
		return nil
	}

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case EmailSendGrid:
		if sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.NotifyFromEmail,
			FromName:  cfg.NotifyFromName,
		}, logger); sg != nil {
			sender = sg
		}
	case EmailSES:
		sender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.NotifyFromEmail,
			FromName:  cfg.NotifyFromName,
		}, logger)
	case EmailStub:
		sender = notify.NewStubEmailSender(logger)
	}
	if sender == nil {
		logger.Warn("clinic email notifications disabled", "provider", cfg.EmailProvider)
		return nil
	}
	return notify.NewBookingNotifier(sender, cfg.ClinicNotifyEmail, logger)
}
