package store

import "errors"

var (
	ErrNotFound        = errors.New("pool not found")
	ErrAlreadyExists   = errors.New("pool already exists")
	ErrVersionConflict = errors.New("pool version conflict")
)
