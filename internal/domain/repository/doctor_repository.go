package repository

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrBackendUnreachable = errors.New("doctor backend unreachable")
	ErrBackendInvalidBody = errors.New("doctor backend returned invalid json")
)

// Relay is a backend response kept as-is so it can be echoed unchanged.
type Relay struct {
	Status int
	Body   []byte
}

func (r *Relay) OK() bool {
	return r != nil && r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}

// DoctorGateway forwards directory operations to the external backend.
// Implementations never retry.
type DoctorGateway interface {
	AddDoctor(ctx context.Context, body []byte) (*Relay, error)
	ListDoctors(ctx context.Context, rawQuery string) (*Relay, error)
}
