package conversation

import "time"

// SessionKind tells which dialog a session belongs to.
type SessionKind string

const (
	KindAppointment SessionKind = "appointment"
	KindAssistant   SessionKind = "assistant"
)

// Step is the field a session is waiting for.
type Step string

const (
	StepName     Step = "name"
	StepPetName  Step = "petName"
	StepPetType  Step = "petType"
	StepReason   Step = "reason"
	StepDate     Step = "date"
	StepTime     Step = "time"
	StepConfirm  Step = "confirm"
	StepQuestion Step = "question"
)

// Appointment holds the booking fields collected so far.
type Appointment struct {
	Name    string
	PetName string
	PetType string
	Reason  string
	Date    string
	Time    string
}

// Session is the single live dialog for a user. Storing exactly one Session per
// key keeps the appointment and assistant dialogs mutually exclusive.
type Session struct {
	Kind        SessionKind
	Step        Step
	Appointment Appointment
	UpdatedAt   time.Time
}

// NewAppointmentSession starts a booking at the name step.
func NewAppointmentSession() Session {
	return Session{Kind: KindAppointment, Step: StepName}
}

// NewAssistantSession waits for one question.
func NewAssistantSession() Session {
	return Session{Kind: KindAssistant, Step: StepQuestion}
}
