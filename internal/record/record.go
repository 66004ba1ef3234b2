package record

import (
	"errors"
	"fmt"
	"time"

	"github.com/errshape/errshape/internal/domain"
	"github.com/errshape/errshape/internal/httpstatus"
	"github.com/errshape/errshape/internal/payload"
	"github.com/errshape/errshape/internal/search"
	"github.com/errshape/errshape/internal/xmlbody"
)

type Kind string

const (
	KindOperation Kind = "operation"
	KindAPI       Kind = "api"
)

// Record is the normalized form of an upstream failure. Construction
// sanitizes the payload exactly once; after that the record is
// read-only and the payload is owned by it.
type Record struct {
	Kind        Kind                 `json:"kind"`
	Message     string               `json:"message"`
	Description string               `json:"description,omitempty"`
	HTTPCode    string               `json:"http_code,omitempty"`
	Cause       any                  `json:"cause,omitempty"`
	Correlation domain.CorrelationID `json:"correlation_id,omitempty"`
	Timestamp   time.Time            `json:"timestamp"`

	wrapped error
}

// Options overrides parts of the API-error pipeline. A non-empty
// Message suppresses the search entirely; ParseXML routes description
// extraction through the XML path instead of the generic one.
type Options struct {
	Message     string
	Description string
	HTTPCode    string
	ParseXML    bool
}

// NewOperation wraps a plain failure: a message string or an existing
// error value. No search runs; the message is taken directly from the
// input.
func NewOperation(correlation domain.CorrelationID, input any) Record {
	wrapped := asError(input)
	payload.Sanitize(input)

	message := ""
	if wrapped != nil {
		message = wrapped.Error()
	}

	return Record{
		Kind:        KindOperation,
		Message:     message,
		Cause:       input,
		Correlation: correlation,
		Timestamp:   time.Now().UTC(),
		wrapped:     wrapped,
	}
}

// NewAPI normalizes a raw upstream payload. It never fails: anything
// unresolvable just leaves the corresponding field empty.
func NewAPI(correlation domain.CorrelationID, raw any, opts Options) Record {
	payload.Sanitize(raw)

	rec := Record{
		Kind:        KindAPI,
		Cause:       raw,
		Correlation: correlation,
		Timestamp:   time.Now().UTC(),
	}

	if opts.Message != "" {
		rec.Message = opts.Message
		rec.Description = opts.Description
		rec.HTTPCode = opts.HTTPCode
		return rec
	}

	status := search.Find(raw, search.StatusKeys, search.NestingKeys)
	rec.HTTPCode, rec.Message = httpstatus.Resolve(status)

	if opts.ParseXML {
		// The XML result is final, even when empty; the generic
		// description search is not a fallback here.
		rec.Description = xmlbody.Description(xmlErrorText(raw))
		return rec
	}

	rec.Description = search.Find(raw, search.MessageKeys, search.NestingKeys)

	return rec
}

func (r Record) Error() string {
	if r.HTTPCode != "" {
		return fmt.Sprintf("%s (http %s)", r.Message, r.HTTPCode)
	}

	return r.Message
}

func (r Record) Unwrap() error {
	return r.wrapped
}

func asError(input any) error {
	switch typed := input.(type) {
	case nil:
		return nil
	case error:
		return typed
	case string:
		return errors.New(typed)
	default:
		return fmt.Errorf("%v", typed)
	}
}

// xmlErrorText exposes the payload's error field when it carries an
// XML document as text.
func xmlErrorText(raw any) string {
	mapping, ok := raw.(map[string]any)
	if !ok {
		return ""
	}

	text, _ := mapping["error"].(string)

	return text
}
