package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/casaintegra/lotes-api/internal/domain"
	"github.com/casaintegra/lotes-api/internal/domain/entity"
	"github.com/casaintegra/lotes-api/internal/domain/repository"
)

// FulfillmentUseCase decide qué lotes satisfacen el despacho de un documento de venta:
// primero los reservados para ese documento, luego stock libre en orden FIFO. La
// preferencia reservado-antes-que-libre garantiza que la reserva de un cliente nunca
// se consume para un despliegue ajeno.
type FulfillmentUseCase struct {
	txRunner TxRunner
	siteRepo repository.SiteRepository
}

// NewFulfillmentUseCase construye el caso de uso.
func NewFulfillmentUseCase(txRunner TxRunner, siteRepo repository.SiteRepository) *FulfillmentUseCase {
	return &FulfillmentUseCase{txRunner: txRunner, siteRepo: siteRepo}
}

// FulfillLine cantidad requerida de un producto.
type FulfillLine struct {
	ProductID string
	Quantity  decimal.Decimal
}

// FulfillInput entrada del despacho de un documento.
type FulfillInput struct {
	DocumentID string
	SiteID     string
	ActorID    string
	Lines      []FulfillLine
}

// FulfillLineResult resultado por línea.
type FulfillLineResult struct {
	ProductID      string
	Requested      decimal.Decimal
	Shipped        decimal.Decimal
	Outstanding    decimal.Decimal
	DeployedLotIDs []string
}

// FulfillResult resultado del despacho. Outstanding > 0 en alguna línea es un
// resultado parcial estructurado, nunca una falla silenciosa: el caller decide si
// acepta el envío parcial o genera una solicitud de abastecimiento por el faltante.
type FulfillResult struct {
	DocumentID string
	Partial    bool
	Lines      []FulfillLineResult
}

// Fulfill despacha el documento en una sola transacción. Por cada línea consume
// primero los lotes RESERVED del documento (liberando la reserva al desplegarlos) y
// después lotes IN_STOCK del producto, más antiguos primero, hasta cubrir la cantidad
// o agotar el stock. Cada lote consumido queda DEPLOYED en el objeto con su entrada
// DEPLOY; el faltante se reporta en el resultado.
func (uc *FulfillmentUseCase) Fulfill(ctx context.Context, in FulfillInput) (*FulfillResult, error) {
	if in.DocumentID == "" || in.SiteID == "" {
		return nil, fmt.Errorf("%w: document_id y site_id son requeridos", domain.ErrValidation)
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: el despacho no tiene líneas", domain.ErrValidation)
	}
	for _, line := range in.Lines {
		if line.ProductID == "" || !line.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: línea inválida para producto %q", domain.ErrValidation, line.ProductID)
		}
	}
	site, err := uc.siteRepo.GetByID(in.SiteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, fmt.Errorf("%w: objeto %s", domain.ErrNotFound, in.SiteID)
	}

	now := time.Now()
	result := &FulfillResult{DocumentID: in.DocumentID}
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		histRepo repository.HistoryRepository,
		productRepo repository.ProductRepository,
	) error {
		for _, line := range in.Lines {
			lineResult, err := uc.fulfillLine(lotRepo, histRepo, productRepo, in, line, now)
			if err != nil {
				return err
			}
			if lineResult.Outstanding.GreaterThan(decimal.Zero) {
				result.Partial = true
			}
			result.Lines = append(result.Lines, *lineResult)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// fulfillLine consume reservado-primero y luego FIFO de stock libre para una línea.
func (uc *FulfillmentUseCase) fulfillLine(
	lotRepo repository.LotRepository,
	histRepo repository.HistoryRepository,
	productRepo repository.ProductRepository,
	in FulfillInput,
	line FulfillLine,
	now time.Time,
) (*FulfillLineResult, error) {
	res := &FulfillLineResult{
		ProductID: line.ProductID,
		Requested: line.Quantity,
		Shipped:   decimal.Zero,
	}
	remaining := line.Quantity

	// Nivel 1: lotes reservados para el documento.
	reserved, err := lotRepo.ListReservedForUpdate(line.ProductID, in.DocumentID)
	if err != nil {
		return nil, err
	}
	for _, lot := range reserved {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(remaining, lot.Quantity)
		// La reserva se limpia al pasar a DEPLOYED (el split completo reescribe los
		// campos acompañantes del estado).
		id, err := uc.ship(lotRepo, histRepo, productRepo, lot, take, in, now)
		if err != nil {
			return nil, err
		}
		res.DeployedLotIDs = append(res.DeployedLotIDs, id)
		res.Shipped = res.Shipped.Add(take)
		remaining = remaining.Sub(take)
	}

	// Nivel 2: stock libre del producto, más antiguo primero (FIFO).
	if remaining.GreaterThan(decimal.Zero) {
		free, err := lotRepo.ListInStockForUpdate(line.ProductID)
		if err != nil {
			return nil, err
		}
		for _, lot := range free {
			if !remaining.GreaterThan(decimal.Zero) {
				break
			}
			take := decimal.Min(remaining, lot.Quantity)
			id, err := uc.ship(lotRepo, histRepo, productRepo, lot, take, in, now)
			if err != nil {
				return nil, err
			}
			res.DeployedLotIDs = append(res.DeployedLotIDs, id)
			res.Shipped = res.Shipped.Add(take)
			remaining = remaining.Sub(take)
		}
	}

	res.Outstanding = remaining
	return res, nil
}

// ship despliega take del lote bloqueado hacia el objeto del despacho. Si el lote
// está reservado para el documento, el split completo limpia la reserva; en el camino
// parcial el remanente del lote sigue reservado.
func (uc *FulfillmentUseCase) ship(
	lotRepo repository.LotRepository,
	histRepo repository.HistoryRepository,
	productRepo repository.ProductRepository,
	lot *entity.Lot,
	take decimal.Decimal,
	in FulfillInput,
	now time.Time,
) (string, error) {
	docID := in.DocumentID
	return deployFromLot(lotRepo, histRepo, productRepo, deployParams{
		LotID:       lot.ID,
		Quantity:    take,
		SiteID:      in.SiteID,
		ActorID:     in.ActorID,
		Comment:     fmt.Sprintf("despacho documento %s", in.DocumentID),
		DocumentID:  &docID,
		DocumentTS:  now,
		RequireLock: lot,
	}, now)
}
