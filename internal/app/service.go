package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/errshape/errshape/internal/domain"
	"github.com/errshape/errshape/internal/httpstatus"
	"github.com/errshape/errshape/internal/payload"
	"github.com/errshape/errshape/internal/record"
	"github.com/errshape/errshape/internal/upstream"
)

type Upstream interface {
	Fetch(ctx context.Context, rawURL string) (upstream.Response, error)
}

type Service struct {
	api Upstream
}

func NewService(api Upstream) *Service {
	return &Service{api: api}
}

type InspectInput struct {
	Data    []byte
	Format  payload.Format
	Options record.Options
}

// Inspect normalizes a payload supplied as raw text.
func (s *Service) Inspect(correlation domain.CorrelationID, input InspectInput) (record.Record, error) {
	tree, err := payload.Decode(input.Data, input.Format)
	if err != nil {
		return record.Record{}, fmt.Errorf("decode payload: %w", err)
	}

	return record.NewAPI(correlation, tree, input.Options), nil
}

// Wrap produces an operation record for a plain failure message.
func (s *Service) Wrap(correlation domain.CorrelationID, message string) record.Record {
	return record.NewOperation(correlation, message)
}

type ProbeReport struct {
	URL        string         `json:"url"`
	StatusCode int            `json:"status_code"`
	ElapsedMS  int64          `json:"elapsed_ms"`
	Healthy    bool           `json:"healthy"`
	Record     *record.Record `json:"record,omitempty"`
}

// Probe requests the URL and, when the upstream answers with an error
// status, normalizes whatever body came back.
func (s *Service) Probe(ctx context.Context, correlation domain.CorrelationID, rawURL string) (ProbeReport, error) {
	response, err := s.api.Fetch(ctx, rawURL)
	if err != nil {
		return ProbeReport{}, fmt.Errorf("probe upstream: %w", err)
	}

	report := ProbeReport{
		URL:        rawURL,
		StatusCode: response.StatusCode,
		ElapsedMS:  response.Elapsed.Milliseconds(),
		Healthy:    response.Success(),
	}
	if report.Healthy {
		return report, nil
	}

	rec := normalizeResponse(correlation, response)
	report.Record = &rec

	return report, nil
}

func normalizeResponse(correlation domain.CorrelationID, response upstream.Response) record.Record {
	if response.IsXML() {
		raw := map[string]any{
			"error":      string(response.Body),
			"statusCode": float64(response.StatusCode),
		}
		return record.NewAPI(correlation, raw, record.Options{ParseXML: true})
	}

	tree, _ := payload.Decode(response.Body, payload.FormatJSON)
	rec := record.NewAPI(correlation, tree, record.Options{})

	// A body that never mentions its own status still arrived with
	// one; the transport status fills the gap.
	if rec.HTTPCode == "" {
		rec.HTTPCode, rec.Message = httpstatus.Resolve(strconv.Itoa(response.StatusCode))
	}

	return rec
}
