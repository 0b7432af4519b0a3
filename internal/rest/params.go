package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"rehabDose/domain"
)

// parseParams decodes an optional parameter object. Nil means "not supplied".
func parseParams(raw json.RawMessage) (*domain.ModelParameters, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var fields map[string]float64
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	p := domain.NormalizeParams(fields)
	return &p, nil
}

// parseParamList accepts a single parameter object or an array of them.
func parseParamList(raw json.RawMessage) ([]domain.ModelParameters, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] != '[' {
		p, err := parseParams(raw)
		if err != nil {
			return nil, err
		}
		return []domain.ModelParameters{*p}, nil
	}

	var list []map[string]float64
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	params := make([]domain.ModelParameters, 0, len(list))
	for _, fields := range list {
		params = append(params, domain.NormalizeParams(fields))
	}
	return params, nil
}

// trimActions drops trailing nulls, which mark the not yet delivered period.
func trimActions(actions []*float64) ([]float64, error) {
	end := len(actions)
	for end > 0 && actions[end-1] == nil {
		end--
	}

	out := make([]float64, end)
	for i := 0; i < end; i++ {
		if actions[i] == nil {
			return nil, fmt.Errorf("%w: actions[%d] is null", domain.ErrInvalidPatient, i)
		}
		out[i] = *actions[i]
	}
	return out, nil
}
