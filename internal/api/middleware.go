package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire version of the response envelope. Clients check
// it before parsing the rest of the body.
const envelopeVersion = 1

// Envelope is the uniform wrapper for every API response body.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps all huma response bodies in the Envelope
// structure so success and error payloads share one shape.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	// Already wrapped (e.g. by a nested transformer run).
	if _, ok := v.(*Envelope); ok {
		return v, nil
	}

	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Details: apiErr.Details,
		}, nil
	}

	if err, ok := v.(error); ok {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return &Envelope{
				V:       envelopeVersion,
				Success: false,
				Error:   apiErr.Message,
				Code:    apiErr.Code,
				Details: apiErr.Details,
			}, nil
		}
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	return &Envelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
