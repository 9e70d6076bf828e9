package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/medpet-whatsapp-bot/internal/config"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/events"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/ledger"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/notify"
)

func TestBuildRedisClient(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, BuildRedisClient(ctx, &appconfig.Config{}, nil, true))

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client := BuildRedisClient(ctx, &appconfig.Config{RedisAddr: addr}, nil, true)
	require.NotNil(t, client)
	defer client.Close()
	assert.NoError(t, client.Ping(ctx).Err())

	mr.Close()
	assert.Nil(t, BuildRedisClient(ctx, &appconfig.Config{RedisAddr: addr}, nil, true))
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	assert.Nil(t, ConnectPostgresPool(context.Background(), "", nil))
}

func TestBuildProcessedTracker(t *testing.T) {
	cfg := &appconfig.Config{ProcessedTTL: time.Hour}

	tracker := BuildProcessedTracker(context.Background(), cfg, nil, nil, nil)
	assert.IsType(t, &events.MemoryProcessedStore{}, tracker)

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, nil, false)
	defer client.Close()
	tracker = BuildProcessedTracker(context.Background(), cfg, client, nil, nil)
	assert.IsType(t, &events.RedisProcessedStore{}, tracker)

	first, err := tracker.MarkProcessed(context.Background(), "whatsapp", "wamid.1")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestBuildAssistant(t *testing.T) {
	ctx := context.Background()

	svc, err := BuildAssistant(ctx, &appconfig.Config{AssistantProvider: ProviderNone}, aws.Config{}, nil)
	require.NoError(t, err)
	assert.Nil(t, svc)

	svc, err = BuildAssistant(ctx, &appconfig.Config{AssistantProvider: ProviderOpenAI, OpenAIAPIKey: "sk-test"}, aws.Config{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)

	_, err = BuildAssistant(ctx, &appconfig.Config{AssistantProvider: ProviderOpenAI}, aws.Config{}, nil)
	assert.Error(t, err, "missing api key")

	_, err = BuildAssistant(ctx, &appconfig.Config{AssistantProvider: ProviderBedrock}, aws.Config{}, nil)
	assert.Error(t, err, "missing model id")

	svc, err = BuildAssistant(ctx, &appconfig.Config{
		AssistantProvider:         ProviderBedrock,
		AssistantFallbackProvider: ProviderOpenAI,
		BedrockModelID:            "anthropic.claude-3-haiku",
		OpenAIAPIKey:              "sk-test",
	}, aws.Config{Region: "us-east-1"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)

	_, err = BuildAssistant(ctx, &appconfig.Config{AssistantProvider: "llama"}, aws.Config{}, nil)
	assert.Error(t, err)
}

func TestBuildLedger(t *testing.T) {
	ctx := context.Background()

	l, err := BuildLedger(ctx, &appconfig.Config{LedgerBackend: LedgerLog}, nil, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &ledger.LogLedger{}, l)

	l, err = BuildLedger(ctx, &appconfig.Config{LedgerBackend: LedgerLog}, nil, &notify.BookingNotifier{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ledger.NotifyingLedger{}, l)

	_, err = BuildLedger(ctx, &appconfig.Config{LedgerBackend: LedgerPostgres}, nil, nil, nil)
	assert.Error(t, err)

	_, err = BuildLedger(ctx, &appconfig.Config{LedgerBackend: LedgerSheets}, nil, nil, nil)
	assert.Error(t, err, "spreadsheet id required")

	_, err = BuildLedger(ctx, &appconfig.Config{LedgerBackend: "excel"}, nil, nil, nil)
	assert.Error(t, err)
}

func TestBuildBookingNotifier(t *testing.T) {
	assert.Nil(t, BuildBookingNotifier(&appconfig.Config{EmailProvider: EmailNone, ClinicNotifyEmail: "vet@medpet.mx"}, aws.Config{}, nil))
	assert.Nil(t, BuildBookingNotifier(&appconfig.Config{EmailProvider: EmailSendGrid}, aws.Config{}, nil))
	assert.Nil(t, BuildBookingNotifier(&appconfig.Config{EmailProvider: EmailSendGrid, ClinicNotifyEmail: "vet@medpet.mx"}, aws.Config{}, nil))

	n := BuildBookingNotifier(&appconfig.Config{
		EmailProvider:     EmailSendGrid,
		SendGridAPIKey:    "SG.test",
		NotifyFromEmail:   "citas@medpet.mx",
		ClinicNotifyEmail: "vet@medpet.mx",
	}, aws.Config{}, nil)
	assert.NotNil(t, n)

	n = BuildBookingNotifier(&appconfig.Config{EmailProvider: EmailSES, ClinicNotifyEmail: "vet@medpet.mx"}, aws.Config{Region: "us-east-1"}, nil)
	assert.NotNil(t, n)

	n = BuildBookingNotifier(&appconfig.Config{EmailProvider: EmailStub, ClinicNotifyEmail: "vet@medpet.mx"}, aws.Config{}, nil)
	require.NotNil(t, n)
	assert.NoError(t, n.NotifyBooking(context.Background(), ledger.Booking{WhatsAppID: "525512345678", PetName: "Firulais"}))

	assert.Nil(t, BuildBookingNotifier(&appconfig.Config{EmailProvider: "carrier-pigeon", ClinicNotifyEmail: "vet@medpet.mx"}, aws.Config{}, nil))
}
