package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire version of the response envelope. Clients
// check this before parsing the rest of the payload.
const envelopeVersion = 1

// Envelope is the uniform JSON shape of every API response.
type Envelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// EnvelopeTransformer wraps every huma response body in the versioned
// envelope. Error bodies (anything implementing huma.StatusError) go under
// "error" with success=false; everything else goes under "data".
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	// Already wrapped (e.g. by a nested transformer).
	if _, ok := v.(*Envelope); ok {
		return v, nil
	}

	if _, ok := v.(huma.StatusError); ok {
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   v,
		}, nil
	}

	isError := len(status) > 0 && status[0] >= '4'
	if isError {
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   v,
		}, nil
	}

	return &Envelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
