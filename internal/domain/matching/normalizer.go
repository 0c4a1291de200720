package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minIdentifierLength longitud mínima de un identificador normalizado.
const minIdentifierLength = 3

// Normalizer canonicaliza identificadores crudos (OCR, correos) a la forma comparable:
// mayúsculas, solo alfanuméricos ASCII, prefijo alfabético seguido de dígitos.
// Devuelve "" cuando el resultado no tiene la forma de dominio. Es puro y seguro para uso concurrente.
type Normalizer struct {
	prefix string
	shape  *regexp.Regexp
}

// NewNormalizer construye el normalizador. prefix vacío acepta cualquier prefijo alfabético;
// con prefix (p. ej. "LO") solo se aceptan identificadores que empiecen exactamente así.
func NewNormalizer(prefix string) *Normalizer {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	pattern := `^[A-Z]+[0-9]+$`
	if prefix != "" {
		pattern = `^` + regexp.QuoteMeta(prefix) + `[0-9]+$`
	}
	return &Normalizer{prefix: prefix, shape: regexp.MustCompile(pattern)}
}

var defaultNormalizer = NewNormalizer("")

// Normalize aplica el normalizador por defecto (cualquier prefijo alfabético).
func Normalize(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

// Prefix prefijo fijo configurado ("" si cualquiera).
func (n *Normalizer) Prefix() string {
	return n.prefix
}

// Normalize devuelve la forma canónica de raw o "" si no es un identificador válido.
// Idempotente: Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(raw string) string {
	folded := foldCompat(raw)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) < minIdentifierLength || !n.shape.MatchString(out) {
		return ""
	}
	return out
}

// foldCompat descompone formas de compatibilidad (dígitos de ancho completo que produce el OCR)
// y quita diacríticos. El transformer tiene estado, por eso se arma en cada llamada.
func foldCompat(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
