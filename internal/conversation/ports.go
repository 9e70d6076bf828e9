package conversation

import "context"

// Gateway delivers outbound messages to the chat platform.
// Implementations are best-effort; the engine never retries.
type Gateway interface {
	SendText(ctx context.Context, to, body, replyTo string) error
	SendButtons(ctx context.Context, to, body string, buttons []Button) error
	SendMedia(ctx context.Context, to string, media Media) error
	SendContactCard(ctx context.Context, to string, contact Contact) error
	MarkRead(ctx context.Context, messageID string) error
}

// Assistant answers free-form questions. An empty answer means "no answer".
type Assistant interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Ledger stores a confirmed appointment as one ordered row.
type Ledger interface {
	AppendRow(ctx context.Context, row []string) error
}

// Observer is notified of every downstream call the engine makes so operators
// can detect degraded delivery. err is nil on success.
type Observer interface {
	ObserveDelivery(op string, err error)
}

// Downstream operation names reported to the Observer.
const (
	OpSendText    = "send_text"
	OpSendButtons = "send_buttons"
	OpSendMedia   = "send_media"
	OpSendContact = "send_contact"
	OpMarkRead    = "mark_read"
	OpLedger      = "ledger_append"
	OpAssistant   = "assistant_ask"
)

// MaxButtons is the platform limit for reply buttons in one message.
const MaxButtons = 3

// Button is a reply button offered in an interactive message.
type Button struct {
	ID    string
	Title string
}

// MediaKind enumerates media message types.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaAudio    MediaKind = "audio"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
	MediaSticker  MediaKind = "sticker"
)

// Media is an outbound media message sent by link.
type Media struct {
	Kind     MediaKind
	URL      string
	Caption  string
	Filename string
}

// Contact is a vCard-like record delivered as a contact card.
type Contact struct {
	FormattedName string
	FirstName     string
	LastName      string
	Organization  string
	Phones        []ContactPhone
	Emails        []ContactEmail
	URLs          []ContactURL
}

type ContactPhone struct {
	Phone string
	WaID  string
	Type  string
}

type ContactEmail struct {
	Email string
	Type  string
}

type ContactURL struct {
	URL  string
	Type string
}
