package app

import (
	"context"
	"testing"
	"time"

	"github.com/errshape/errshape/internal/domain"
	"github.com/errshape/errshape/internal/httpstatus"
	"github.com/errshape/errshape/internal/payload"
	"github.com/errshape/errshape/internal/record"
	"github.com/errshape/errshape/internal/upstream"
)

const testCorrelation = domain.CorrelationID("corr-1")

type fakeUpstream struct {
	response upstream.Response
	err      error
	gotURL   string
}

func (f *fakeUpstream) Fetch(_ context.Context, rawURL string) (upstream.Response, error) {
	f.gotURL = rawURL
	return f.response, f.err
}

func TestInspectJSON(t *testing.T) {
	t.Parallel()

	service := NewService(nil)
	rec, err := service.Inspect(testCorrelation, InspectInput{
		Data:   []byte(`{"status":404,"message":"no such user"}`),
		Format: payload.FormatJSON,
	})
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if rec.HTTPCode != "404" || rec.Message != "Not found" {
		t.Fatalf("record = %q/%q, want 404/Not found", rec.HTTPCode, rec.Message)
	}
	if rec.Description != "no such user" {
		t.Fatalf("Description = %q, want %q", rec.Description, "no such user")
	}
}

func TestInspectYAML(t *testing.T) {
	t.Parallel()

	service := NewService(nil)
	rec, err := service.Inspect(testCorrelation, InspectInput{
		Data:   []byte("errors:\n  - bad A\n  - bad B\n"),
		Format: payload.FormatYAML,
	})
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if rec.Description != "bad A | bad B" {
		t.Fatalf("Description = %q, want %q", rec.Description, "bad A | bad B")
	}
}

func TestInspectOverride(t *testing.T) {
	t.Parallel()

	service := NewService(nil)
	rec, err := service.Inspect(testCorrelation, InspectInput{
		Data:    []byte(`{"status":500,"message":"ignored"}`),
		Format:  payload.FormatJSON,
		Options: record.Options{Message: "X"},
	})
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if rec.Message != "X" || rec.HTTPCode != "" {
		t.Fatalf("record = %q/%q, want override X with absent code", rec.Message, rec.HTTPCode)
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	rec := NewService(nil).Wrap(testCorrelation, "disk full")

	if rec.Kind != record.KindOperation || rec.Message != "disk full" {
		t.Fatalf("Wrap() = %+v", rec)
	}
}

func TestProbeHealthy(t *testing.T) {
	t.Parallel()

	fake := &fakeUpstream{response: upstream.Response{StatusCode: 200, Body: []byte(`{}`), Elapsed: 12 * time.Millisecond}}
	report, err := NewService(fake).Probe(context.Background(), testCorrelation, "https://up.example.com")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	if !report.Healthy || report.Record != nil {
		t.Fatalf("report = %+v, want healthy with no record", report)
	}
	if fake.gotURL != "https://up.example.com" {
		t.Fatalf("fetched URL = %q", fake.gotURL)
	}
}

func TestProbeNormalizesJSONBody(t *testing.T) {
	t.Parallel()

	fake := &fakeUpstream{response: upstream.Response{
		StatusCode:  422,
		ContentType: "application/json",
		Body:        []byte(`{"status":422,"errors":["name required","email invalid"]}`),
	}}
	report, err := NewService(fake).Probe(context.Background(), testCorrelation, "https://api.example.com")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	if report.Healthy || report.Record == nil {
		t.Fatalf("report = %+v, want unhealthy with record", report)
	}
	if report.Record.HTTPCode != "422" || report.Record.Message != "Unprocessable entity" {
		t.Fatalf("record = %q/%q", report.Record.HTTPCode, report.Record.Message)
	}
	if report.Record.Description != "name required | email invalid" {
		t.Fatalf("Description = %q", report.Record.Description)
	}
}

func TestProbeBackfillsTransportStatus(t *testing.T) {
	t.Parallel()

	fake := &fakeUpstream{response: upstream.Response{
		StatusCode:  502,
		ContentType: "text/html",
		Body:        []byte(`<html>nginx</html>`),
	}}
	report, err := NewService(fake).Probe(context.Background(), testCorrelation, "https://api.example.com")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	if report.Record == nil {
		t.Fatalf("report = %+v, want record", report)
	}
	if report.Record.HTTPCode != "502" || report.Record.Message != "Bad gateway" {
		t.Fatalf("record = %q/%q, want backfilled 502/Bad gateway", report.Record.HTTPCode, report.Record.Message)
	}
}

func TestProbeRoutesXMLThroughParseXML(t *testing.T) {
	t.Parallel()

	fake := &fakeUpstream{response: upstream.Response{
		StatusCode:  403,
		ContentType: "application/xml",
		Body:        []byte(`<Response><Error><Message>access denied</Message></Error></Response>`),
	}}
	report, err := NewService(fake).Probe(context.Background(), testCorrelation, "https://api.example.com")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	if report.Record == nil {
		t.Fatalf("report = %+v, want record", report)
	}
	if report.Record.Description != "access denied" {
		t.Fatalf("Description = %q, want %q", report.Record.Description, "access denied")
	}
	if report.Record.HTTPCode != "403" {
		t.Fatalf("HTTPCode = %q, want %q", report.Record.HTTPCode, "403")
	}
}

func TestProbeUnknownStatusSentinel(t *testing.T) {
	t.Parallel()

	fake := &fakeUpstream{response: upstream.Response{
		StatusCode: 399,
		Body:       []byte(`not json`),
	}}
	report, err := NewService(fake).Probe(context.Background(), testCorrelation, "https://api.example.com")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	if report.Record == nil || report.Record.Message != httpstatus.UnknownMessage {
		t.Fatalf("report = %+v, want unknown sentinel", report)
	}
}
