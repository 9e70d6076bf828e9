package conversation

import (
	"context"
	"fmt"
	"strings"
)

// stepPrompts maps a step to the prompt asking for it.
var stepPrompts = map[Step]string{
	StepName:    msgAskName,
	StepPetName: msgAskPetName,
	StepPetType: msgAskPetType,
	StepReason:  msgAskReason,
	StepDate:    msgAskDate,
	StepTime:    msgAskTime,
}

var affirmativeAnswers = map[string]bool{
	"sí":          true,
	"si":          true,
	"yes":         true,
	optionConfirm: true,
}

// advanceAppointment stores one field and moves to the next step.
func (e *Engine) advanceAppointment(ctx context.Context, to string, session Session, text string) {
	value := strings.TrimSpace(text)
	if session.Step == StepConfirm {
		e.confirmAppointment(ctx, to, session, strings.ToLower(value))
		return
	}
	if value == "" {
		e.sendText(ctx, to, stepPrompts[session.Step], "")
		return
	}

	form := &session.Appointment
	switch session.Step {
	case StepName:
		form.Name = value
		session.Step = StepPetName
	case StepPetName:
		form.PetName = value
		session.Step = StepPetType
	case StepPetType:
		form.PetType = value
		session.Step = StepReason
	case StepReason:
		form.Reason = value
		session.Step = StepDate
	case StepDate:
		form.Date = value
		session.Step = StepTime
	case StepTime:
		form.Time = value
		session.Step = StepConfirm
	default:
		e.logger.Warn("appointment session in unknown step, restarting", "to", to, "step", session.Step)
		e.sessions.Put(to, NewAppointmentSession())
		e.sendText(ctx, to, msgAskName, "")
		return
	}
	e.sessions.Put(to, session)

	if session.Step == StepConfirm {
		body := msgConfirm + "\n\n" + formatAppointment(session.Appointment)
		e.sendButtons(ctx, to, body, confirmButtons)
		return
	}
	e.sendText(ctx, to, stepPrompts[session.Step], "")
}

// confirmAppointment finalizes or cancels the booking. Either way the session is removed.
func (e *Engine) confirmAppointment(ctx context.Context, to string, session Session, answer string) {
	e.sessions.Delete(to)
	if !affirmativeAnswers[answer] {
		e.sendText(ctx, to, msgCancelled, "")
		return
	}

	form := session.Appointment
	row := []string{to, form.Name, form.PetName, form.PetType, form.Reason, form.Date, form.Time}
	e.report(OpLedger, to, e.ledger.AppendRow(ctx, row))

	summary := msgBookedIntro + "\n\nResumen de tu cita:\n\n" + formatAppointment(form) + "\n\n" + msgBookedOutro
	e.sendText(ctx, to, summary, "")
	e.logger.Info("appointment booked", "to", to)
}

func formatAppointment(a Appointment) string {
	return fmt.Sprintf("Nombre: %s\nNombre de la mascota: %s\nTipo de mascota: %s\nMotivo: %s\nFecha: %s\nHora: %s",
		a.Name, a.PetName, a.PetType, a.Reason, a.Date, a.Time)
}
