package domain

import "github.com/google/uuid"

// CorrelationID is an opaque token tying a normalized error record back
// to the caller's request context. The value is never interpreted.
type CorrelationID string

func NewCorrelationID() CorrelationID {
	return CorrelationID(uuid.NewString())
}

func (id CorrelationID) String() string {
	return string(id)
}
