package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrMissingAPIKey     = errors.New("provider api key missing")
	ErrProviderFailure   = errors.New("provider failure")
	ErrNoTargetLanguages = errors.New("no target languages")
	ErrNotTranslatable   = errors.New("content not translatable")
	ErrDuplicateJob      = errors.New("equivalent job already in flight")
)
