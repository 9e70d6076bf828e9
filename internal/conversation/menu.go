package conversation

import (
	"context"
	"regexp"
)

var locationPattern = regexp.MustCompile(`ubicaci[oó]n`)

func (e *Engine) handleMenuOption(ctx context.Context, to, option string) {
	switch {
	case option == "agendar" || option == optionSchedule:
		e.sessions.Put(to, NewAppointmentSession())
		e.sendText(ctx, to, msgAskName, "")
	case option == "consultar" || option == optionConsult,
		option == "otra pregunta" || option == optionAnother:
		e.sessions.Put(to, NewAssistantSession())
		e.sendText(ctx, to, msgAskQuestion, "")
	case locationPattern.MatchString(option) || option == optionLocation:
		e.sendText(ctx, to, e.clinic.Location, "")
	case option == "emergencia" || option == optionEmergency:
		e.sendText(ctx, to, msgEmergency, "")
		e.sendContact(ctx, to, e.clinic.EmergencyContact)
	case option == "sí, gracias" || option == optionThanks:
		e.sendText(ctx, to, msgThanks, "")
	default:
		e.sendText(ctx, to, msgInvalidOption, "")
	}
}
