package inventory

import (
	"context"

	"github.com/casaintegra/lotes-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Toda operación compuesta del motor (split, despliegue masivo,
// recambio, despacho) corre completa dentro de una sola transacción: o se aplican
// todas las mutaciones de lotes y escrituras de historial, o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		histRepo repository.HistoryRepository,
		productRepo repository.ProductRepository,
	) error) error
}
