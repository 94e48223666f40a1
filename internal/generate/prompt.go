package generate

import (
	"encoding/json"
	"strings"
)

// The two target languages the demo supports. Anything that doesn't look
// like English falls back to Spanish.
const (
	TargetEnglish = "Ingles"
	TargetSpanish = "Espanol"
)

// Params carries everything the generator needs for one message.
// TargetLanguage is the caller's free-form value; NormalizeTargetLanguage is
// applied internally before it reaches the prompt.
type Params struct {
	Transcript  string
	MessageType string
	Tone        string
	TargetLang  string
	Adjustment  string
}

// NormalizeTargetLanguage maps free-form caller input onto the two supported
// targets: any value starting with "ingl" (case-insensitive, covering
// "Inglés", "INGLES", "ingl") selects English, everything else Spanish.
func NormalizeTargetLanguage(raw string) string {
	if strings.HasPrefix(strings.ToLower(raw), "ingl") {
		return TargetEnglish
	}
	return TargetSpanish
}

const systemPrompt = "Eres un asistente bilingue experto en comunicacion profesional. " +
	"Debes convertir ideas habladas en un mensaje claro y listo para enviar, " +
	"manteniendo el tono solicitado. Responde solo en JSON valido."

// buildUserPrompt renders the instruction block plus the request data. The
// schema the model is asked for (ready_message, transcript, improvements,
// better_phrases) is what convert.Normalize expects on the way back.
func buildUserPrompt(p Params) string {
	payload := map[string]string{
		"transcript":      p.Transcript,
		"message_type":    p.MessageType,
		"tone":            p.Tone,
		"target_language": NormalizeTargetLanguage(p.TargetLang),
		"adjustment":      strings.TrimSpace(p.Adjustment),
	}
	data, _ := json.Marshal(payload)

	return "Convierte el transcript en un mensaje profesional listo para enviar. " +
		"Entrega JSON con las llaves: ready_message, transcript, improvements, better_phrases. " +
		"improvements debe ser una lista de 3 bullets explicando mejoras (claridad, estructura, tono). " +
		"better_phrases debe tener 3 objetos con before y after, en el idioma objetivo. " +
		"Si target_language es Ingles, devuelve ready_message y better_phrases en ingles. " +
		"Si es Espanol, devuelve en espanol. " +
		"Datos: " + string(data)
}
