package conversation

import (
	"regexp"
	"strings"
)

// Event is an inbound chat event. The concrete types are TextEvent,
// InteractiveEvent and OtherEvent.
type Event interface {
	Sender() string
	MessageID() string
	isEvent()
}

// TextEvent is a plain text message.
type TextEvent struct {
	From string
	ID   string
	Body string
}

// InteractiveEvent is a reply-button (or list) selection.
type InteractiveEvent struct {
	From     string
	ID       string
	Selected ButtonChoice
}

// OtherEvent covers message types the engine does not act on (images, locations, reactions...).
type OtherEvent struct {
	From string
	ID   string
	Type string
}

func (e TextEvent) Sender() string    { return e.From }
func (e TextEvent) MessageID() string { return e.ID }
func (TextEvent) isEvent()            {}

func (e InteractiveEvent) Sender() string    { return e.From }
func (e InteractiveEvent) MessageID() string { return e.ID }
func (InteractiveEvent) isEvent()            {}

func (e OtherEvent) Sender() string    { return e.From }
func (e OtherEvent) MessageID() string { return e.ID }
func (OtherEvent) isEvent()            {}

// ButtonChoice is the option a user picked.
type ButtonChoice struct {
	ID    string
	Title string
}

// Option resolves the choice for matching: the lower-cased title when present, else the id.
func (c ButtonChoice) Option() string {
	if title := strings.TrimSpace(c.Title); title != "" {
		return strings.ToLower(title)
	}
	return strings.ToLower(strings.TrimSpace(c.ID))
}

// Profile describes the sender as reported by the platform.
type Profile struct {
	Name string
	ID   string
}

var firstWordPattern = regexp.MustCompile(`^\p{L}[\p{L}'-]*`)

// FirstName returns the first word of the display name, or "" when none can be derived.
func (p Profile) FirstName() string {
	return firstWordPattern.FindString(strings.TrimSpace(p.Name))
}

// Greeting returns the name used to address the sender.
func (p Profile) Greeting(fallback string) string {
	if name := p.FirstName(); name != "" {
		return name
	}
	if id := strings.TrimSpace(p.ID); id != "" {
		return id
	}
	return fallback
}
