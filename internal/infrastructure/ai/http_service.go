package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/fuel-tracker/internal/application/ports"
)

var _ ports.CorrectionService = (*HTTPService)(nil)

// HTTPService adaptador para un microservicio de corrección propio.
// POST {url} con {"identifier": ..., "candidates": [...]}; el cuerpo de la respuesta es el texto de la gramática.
type HTTPService struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPService construye el adaptador. apiKey es opcional (cabecera Authorization: Bearer).
func NewHTTPService(url, apiKey string) *HTTPService {
	return &HTTPService{
		url:        url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type correctionRequest struct {
	Identifier string   `json:"identifier"`
	Candidates []string `json:"candidates"`
}

// Suggest envía la petición y devuelve el cuerpo como texto. Un estado distinto de 2xx es error.
func (s *HTTPService) Suggest(ctx context.Context, identifier string, candidates []string) (string, error) {
	body, err := json.Marshal(correctionRequest{Identifier: identifier, Candidates: candidates})
	if err != nil {
		return "", fmt.Errorf("corrección: serializar request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("corrección: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("corrección: timeout o cancelación: %w", ctx.Err())
		}
		return "", fmt.Errorf("corrección: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
	if err != nil {
		return "", fmt.Errorf("corrección: leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("corrección: HTTP %d", resp.StatusCode)
	}
	return string(rawBody), nil
}
