package domain

import "errors"

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrInvalidPatient  = errors.New("invalid patient data")
	ErrNoResults       = errors.New("no prediction results found")
	ErrNoParams        = errors.New("no model parameters found")
)
