package resolution

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/fuel-tracker/internal/application/ports"
	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/domain/matching"
	"github.com/jhoicas/fuel-tracker/pkg/logger"
	"github.com/jhoicas/fuel-tracker/pkg/metrics"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Valores por defecto del cliente de corrección.
const (
	DefaultAIThreshold   = 0.8
	DefaultMaxCandidates = 50
	DefaultCacheTTL      = time.Hour
	DefaultTimeout       = 12 * time.Second

	correctionCachePrefix = "correction/v1/"
	noMatchSentinel       = "NO_MATCH"
)

// Resultados posibles de una consulta de corrección.
const (
	CorrectionAccepted    = "accepted"
	CorrectionCacheHit    = "cache_hit"
	CorrectionNoMatch     = "no_match"
	CorrectionRejected    = "rejected"
	CorrectionUnavailable = "unavailable"
)

// errMalformedResponse respuesta que no respeta la gramática MATCH/CONFIDENCE o NO_MATCH.
var errMalformedResponse = errors.New("respuesta de corrección mal formada")

// CorrectionResult resultado de una consulta. Identifier solo viene en accepted/cache_hit.
type CorrectionResult struct {
	Outcome    string
	Identifier string
	Confidence float64 // 0-1
	Reason     string
}

// Found indica si hay una corrección utilizable.
func (r CorrectionResult) Found() bool {
	return r.Outcome == CorrectionAccepted || r.Outcome == CorrectionCacheHit
}

// CorrectionConfig parámetros del cliente.
type CorrectionConfig struct {
	Threshold     float64
	MaxCandidates int
	CacheTTL      time.Duration
	Timeout       time.Duration
	RatePerSecond float64 // 0 = sin límite
	Burst         int
}

// CorrectionClient delega en el servicio externo cuando el match local falla.
// Acota la petición, valida la respuesta (forma, pertenencia a los candidatos enviados y umbral)
// y cachea las correcciones exitosas por (identificador crudo, hash del conjunto de candidatos).
// Cualquier fallo de transporte, timeout o respuesta mal formada se degrada a "sin corrección".
type CorrectionClient struct {
	svc        ports.CorrectionService
	cache      ports.Cache
	normalizer *matching.Normalizer
	cfg        CorrectionConfig
	limiter    *rate.Limiter
	group      singleflight.Group
	log        *logger.Logger
}

// NewCorrectionClient construye el cliente. cache puede ser nil (sin caché).
func NewCorrectionClient(
	svc ports.CorrectionService,
	cache ports.Cache,
	normalizer *matching.Normalizer,
	cfg CorrectionConfig,
	log *logger.Logger,
) *CorrectionClient {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultAIThreshold
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if normalizer == nil {
		normalizer = matching.NewNormalizer("")
	}
	if log == nil {
		log = logger.Nop()
	}
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return &CorrectionClient{
		svc:        svc,
		cache:      cache,
		normalizer: normalizer,
		cfg:        cfg,
		limiter:    limiter,
		log:        log.Component("correction"),
	}
}

type cachedCorrection struct {
	Identifier string  `json:"identifier"`
	Confidence float64 `json:"confidence"`
}

// Correct consulta al servicio con raw y los candidatos (ordenados por relevancia; se envían
// como máximo MaxCandidates). Nunca devuelve error: los fallos se reportan como CorrectionUnavailable.
func (c *CorrectionClient) Correct(ctx context.Context, raw string, candidates []string) CorrectionResult {
	if c == nil || c.svc == nil || len(candidates) == 0 {
		return CorrectionResult{Outcome: CorrectionUnavailable, Reason: "sin servicio o sin candidatos"}
	}
	sent := candidates
	if len(sent) > c.cfg.MaxCandidates {
		sent = sent[:c.cfg.MaxCandidates]
	}
	key := CacheKey(raw, sent)

	if c.cache != nil {
		if data, ok := c.cache.Get(ctx, key); ok {
			var hit cachedCorrection
			if err := json.Unmarshal(data, &hit); err == nil && hit.Identifier != "" {
				metrics.RecordCorrection(CorrectionCacheHit)
				return CorrectionResult{Outcome: CorrectionCacheHit, Identifier: hit.Identifier, Confidence: hit.Confidence}
			}
		}
	}

	// Peticiones concurrentes con la misma clave comparten una sola llamada de red. La llamada
	// compartida no hereda la cancelación de quien la inició (sí su timeout propio); cada caller
	// deja de esperar cuando vence su propio contexto.
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.call(context.WithoutCancel(ctx), raw, sent), nil
	})
	var res CorrectionResult
	select {
	case r := <-ch:
		res = r.Val.(CorrectionResult)
	case <-ctx.Done():
		res = CorrectionResult{Outcome: CorrectionUnavailable, Reason: ctx.Err().Error()}
	}
	metrics.RecordCorrection(res.Outcome)

	if res.Outcome == CorrectionAccepted && c.cache != nil {
		data, err := json.Marshal(cachedCorrection{Identifier: res.Identifier, Confidence: res.Confidence})
		if err == nil {
			c.cache.Set(ctx, key, data, c.cfg.CacheTTL)
		}
	}
	return res
}

func (c *CorrectionClient) call(ctx context.Context, raw string, sent []string) CorrectionResult {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.log.Warn().Err(err).Str("identifier", raw).Msg("corrección: límite de tasa")
			return CorrectionResult{Outcome: CorrectionUnavailable, Reason: err.Error()}
		}
	}

	text, err := c.svc.Suggest(ctx, raw, sent)
	if err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrCorrectionUnavailable, err)
		c.log.Warn().Err(err).Str("identifier", raw).Msg("corrección: servicio no disponible")
		return CorrectionResult{Outcome: CorrectionUnavailable, Reason: err.Error()}
	}

	id, confidence, noMatch, err := ParseCorrection(text)
	switch {
	case err != nil:
		c.log.Warn().Err(err).Str("identifier", raw).Str("response", truncate(text, 200)).Msg("corrección: respuesta mal formada")
		return CorrectionResult{Outcome: CorrectionUnavailable, Reason: err.Error()}
	case noMatch:
		return CorrectionResult{Outcome: CorrectionNoMatch}
	}

	normalized := c.normalizer.Normalize(id)
	if normalized == "" {
		return c.reject(raw, id, confidence, "identificador sugerido con formato inválido")
	}
	if !contains(sent, normalized) {
		// Guarda contra alucinaciones: solo se aceptan valores de la lista enviada.
		return c.reject(raw, id, confidence, "identificador sugerido fuera de los candidatos")
	}
	if confidence/100 < c.cfg.Threshold {
		return c.reject(raw, id, confidence, "confianza bajo el umbral")
	}
	return CorrectionResult{Outcome: CorrectionAccepted, Identifier: normalized, Confidence: confidence / 100}
}

func (c *CorrectionClient) reject(raw, suggested string, confidence float64, reason string) CorrectionResult {
	c.log.Info().
		Str("identifier", raw).
		Str("suggested", suggested).
		Float64("confidence", confidence).
		Str("reason", reason).
		Msg("corrección rechazada")
	return CorrectionResult{Outcome: CorrectionRejected, Confidence: confidence / 100, Reason: reason}
}

// ParseCorrection interpreta la gramática del servicio:
//
//	MATCH: <id>
//	CONFIDENCE: <0-100>
//
// o NO_MATCH. Las líneas vacías se ignoran y las etiquetas no distinguen mayúsculas.
// Cualquier otra forma devuelve errMalformedResponse.
func ParseCorrection(text string) (id string, confidence float64, noMatch bool, err error) {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return "", 0, false, fmt.Errorf("%w: %v", errMalformedResponse, err)
	}

	if len(lines) == 1 && strings.EqualFold(lines[0], noMatchSentinel) {
		return "", 0, true, nil
	}
	if len(lines) != 2 {
		return "", 0, false, fmt.Errorf("%w: se esperaban 2 líneas, hay %d", errMalformedResponse, len(lines))
	}

	id, ok := field(lines[0], "MATCH")
	if !ok || id == "" || strings.ContainsAny(id, " \t") {
		return "", 0, false, fmt.Errorf("%w: línea MATCH inválida", errMalformedResponse)
	}
	rawConf, ok := field(lines[1], "CONFIDENCE")
	if !ok {
		return "", 0, false, fmt.Errorf("%w: línea CONFIDENCE inválida", errMalformedResponse)
	}
	confidence, convErr := strconv.ParseFloat(strings.TrimSuffix(rawConf, "%"), 64)
	if convErr != nil || confidence < 0 || confidence > 100 {
		return "", 0, false, fmt.Errorf("%w: confianza %q fuera de 0-100", errMalformedResponse, rawConf)
	}
	return id, confidence, false, nil
}

func field(line, label string) (string, bool) {
	name, value, ok := strings.Cut(line, ":")
	if !ok || !strings.EqualFold(strings.TrimSpace(name), label) {
		return "", false
	}
	return strings.TrimSpace(value), true
}

// CacheKey clave de caché: hash del identificador crudo + hash del conjunto (ordenado) de candidatos.
func CacheKey(raw string, candidates []string) string {
	set := append([]string(nil), candidates...)
	sort.Strings(set)
	rawSum := sha256.Sum256([]byte(raw))
	setSum := sha256.Sum256([]byte(strings.Join(set, "\n")))
	return correctionCachePrefix + hex.EncodeToString(rawSum[:16]) + "/" + hex.EncodeToString(setSum[:16])
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
