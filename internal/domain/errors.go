package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrValidation           = errors.New("entrada inválida")
	ErrInvariantViolation   = errors.New("la escritura violaría un invariante del almacén de lotes")
	ErrInsufficientQuantity = errors.New("cantidad insuficiente en el lote")
	ErrAlreadyReserved      = errors.New("el lote ya está reservado para otro documento")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrConflict             = errors.New("conflicto con el estado actual del lote")
)
