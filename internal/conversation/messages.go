package conversation

import "fmt"

const (
	echoPrefix = "Echo: "

	msgMenuPrompt     = "Elige una Opción"
	msgInvalidOption  = "Opción no válida"
	msgAskQuestion    = "Realizar Consulta"
	msgAssistantError = "No entiendo tu pregunta"
	msgFollowupPrompt = "¿La respuesta fue de ayuda?"
	msgThanks         = "¡Con gusto! Escribe \"hola\" cuando quieras volver al menú."
	msgEmergency      = "Si esto es una emergencia, te invitamos a llamar a nuestra línea de atención."

	msgAskName     = "Por favor, ingresa tu nombre:"
	msgAskPetName  = "Gracias. Ahora, ¿cuál es el nombre de tu mascota?"
	msgAskPetType  = "¿Qué tipo de mascota es? (por ejemplo: perro, gato, hurón, etc.)"
	msgAskReason   = "¿Cuál es el motivo de la consulta?"
	msgAskDate     = "¿Qué fecha prefieres para la cita? (DD/MM/AAAA)"
	msgAskTime     = "¿A qué hora prefieres la cita? (HH:MM)"
	msgConfirm     = "¿Confirmas tu cita?"
	msgCancelled   = "Cita cancelada"
	msgBookedIntro = "Gracias por agendar tu cita."
	msgBookedOutro = "Nos pondremos en contacto contigo pronto para confirmar la fecha y hora de tu cita."
)

// Button ids. Titles are matched first; ids are the fallback.
const (
	optionSchedule  = "option1"
	optionConsult   = "option2"
	optionLocation  = "option3"
	optionThanks    = "option6"
	optionAnother   = "option7"
	optionEmergency = "option8"
	optionConfirm   = "confirm_yes"
	optionDecline   = "confirm_no"
)

var (
	menuButtons = []Button{
		{ID: optionSchedule, Title: "Agendar"},
		{ID: optionConsult, Title: "Consultar"},
		{ID: optionLocation, Title: "Ubicación"},
	}
	followupButtons = []Button{
		{ID: optionThanks, Title: "Sí, gracias"},
		{ID: optionAnother, Title: "Otra pregunta"},
		{ID: optionEmergency, Title: "Emergencia"},
	}
	confirmButtons = []Button{
		{ID: optionConfirm, Title: "Sí"},
		{ID: optionDecline, Title: "No"},
	}
)

// greetingPhrases are matched as substrings of the lower-cased, trimmed text.
var greetingPhrases = []string{
	"hola",
	"hello",
	"buenas tardes",
	"buenas noches",
	"buenos días",
	"buenos dias",
	"buen día",
	"saludos",
}

// mediaKeywords are the exact texts that trigger a canned media message.
// sticker is recognised but has no catalog entry and is reported as unsupported.
var mediaKeywords = map[string]MediaKind{
	"image":    MediaImage,
	"audio":    MediaAudio,
	"video":    MediaVideo,
	"document": MediaDocument,
	"sticker":  MediaSticker,
}

func welcomeText(name string) string {
	return fmt.Sprintf("Hola %s, Bienvenido a MEDPET, tu tienda de mascotas en línea. ¿En qué puedo ayudarte hoy?", name)
}

// Clinic carries the fixed clinic details the bot hands out.
type Clinic struct {
	Location         string
	EmergencyContact Contact
}

// DefaultClinic returns the built-in clinic details.
func DefaultClinic() Clinic {
	return Clinic{
		Location: "Te esperamos en nuestra sucursal: Av. Insurgentes Sur 1602, Crédito Constructor, Benito Juárez, 03940 Ciudad de México, CDMX.",
		EmergencyContact: Contact{
			FormattedName: "MedPet Contacto",
			FirstName:     "MedPet",
			LastName:      "Contacto",
			Organization:  "MedPet",
			Phones: []ContactPhone{
				{Phone: "+5215512345678", WaID: "5215512345678", Type: "WORK"},
			},
			Emails: []ContactEmail{
				{Email: "contacto@medpet.com", Type: "WORK"},
			},
			URLs: []ContactURL{
				{URL: "https://www.medpet.com", Type: "WORK"},
			},
		},
	}
}
