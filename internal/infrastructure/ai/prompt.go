package ai

import (
	"fmt"
	"strings"
)

// correctionSystemPrompt define la gramática de salida que parsea la capa de aplicación.
const correctionSystemPrompt = `Eres un asistente que corrige identificadores de órdenes de carga de combustible leídos por OCR o escritos a mano.
Recibes un identificador ruidoso y una lista cerrada de identificadores válidos.
Errores típicos: O/0, I/1/L, S/5, B/8, Z/2, dígitos transpuestos u omitidos.

Responde ÚNICAMENTE con una de estas dos formas, sin texto adicional ni markdown:

MATCH: <identificador exactamente como aparece en la lista>
CONFIDENCE: <entero de 0 a 100>

o bien, si ninguno corresponde con certeza razonable:

NO_MATCH

Nunca inventes un identificador que no esté en la lista.`

// correctionUserMessage arma el mensaje de usuario con el identificador y los candidatos (uno por línea).
func correctionUserMessage(identifier string, candidates []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Identificador recibido: %s\n\nIdentificadores válidos:\n", identifier)
	for _, c := range candidates {
		b.WriteString(c)
		b.WriteByte('\n')
	}
	return b.String()
}

// stripFences quita un bloque de código markdown si el modelo lo añadió pese al prompt.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}
	return text
}
