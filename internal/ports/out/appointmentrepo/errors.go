package appointmentrepo

import "errors"

var (
	ErrNotFound      = errors.New("appointment not found")
	ErrAlreadyExists = errors.New("appointment already exists")

	// ErrSlotTaken is returned when a write would make two blocking
	// appointments for the same doctor overlap. Adapters re-check this at
	// commit time, so it signals a lost race with another writer.
	ErrSlotTaken = errors.New("appointment slot already taken")
)
