package domain

import (
	"errors"
	"fmt"
	"strings"
)

// MaxReportBytes caps a report description so it fits one byte-array word.
const MaxReportBytes = 31

// ReportReasons are the preset descriptions offered to users.
var ReportReasons = []string{
	"Precio incorrecto",
	"Tienda cerrada",
	"Información desactualizada",
	"Sin stock de Fernet",
	"Datos de contacto incorrectos",
	"Otro",
}

var (
	// ErrEmptyReport is returned for blank report descriptions.
	ErrEmptyReport = errors.New("report description is required")

	// ErrReportTooLong is returned for descriptions that do not fit one word.
	ErrReportTooLong = errors.New("report description is too long")
)

// NewReportDescription trims and validates a report description.
func NewReportDescription(raw string) (string, error) {
	description := strings.TrimSpace(raw)
	if description == "" {
		return "", ErrEmptyReport
	}
	if len(description) > MaxReportBytes {
		return "", fmt.Errorf("%w: at most %d bytes", ErrReportTooLong, MaxReportBytes)
	}
	return description, nil
}
