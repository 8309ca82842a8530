package domain

// AppointmentID is the public identifier of an appointment record ("apt_" + 8 hex chars).
type AppointmentID string

// EventID identifies a published appointment event.
type EventID string
