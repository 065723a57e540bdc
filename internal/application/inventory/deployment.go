package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/casaintegra/lotes-api/internal/domain"
	"github.com/casaintegra/lotes-api/internal/domain/entity"
	domaininv "github.com/casaintegra/lotes-api/internal/domain/inventory"
	"github.com/casaintegra/lotes-api/internal/domain/repository"
)

// DeploymentUseCase despliega cantidad de lotes en stock hacia un objeto de instalación,
// individual o masivo (carrito), generando la ventana de garantía de cada lote desplegado.
type DeploymentUseCase struct {
	txRunner TxRunner
	siteRepo repository.SiteRepository
}

// NewDeploymentUseCase construye el caso de uso.
func NewDeploymentUseCase(txRunner TxRunner, siteRepo repository.SiteRepository) *DeploymentUseCase {
	return &DeploymentUseCase{txRunner: txRunner, siteRepo: siteRepo}
}

// DeployInput entrada para desplegar cantidad de un lote a un objeto.
type DeployInput struct {
	LotID        string
	Quantity     decimal.Decimal
	SiteID       string
	SerialNumber *string // override opcional para una unidad serializada sin serie
	ActorID      string
	Comment      string
}

// Deploy extrae quantity del lote vía split, lo deja DEPLOYED en el objeto con su
// ventana de garantía y escribe una entrada DEPLOY. Devuelve el id del lote desplegado.
func (uc *DeploymentUseCase) Deploy(ctx context.Context, in DeployInput) (string, error) {
	if in.LotID == "" || in.SiteID == "" {
		return "", fmt.Errorf("%w: lot_id y site_id son requeridos", domain.ErrValidation)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return "", fmt.Errorf("%w: cantidad %s debe ser positiva", domain.ErrValidation, in.Quantity)
	}
	if in.SerialNumber != nil && !in.Quantity.Equal(decimal.NewFromInt(1)) {
		return "", fmt.Errorf("%w: el override de serie solo aplica a cantidad 1", domain.ErrValidation)
	}
	if err := uc.checkSite(in.SiteID); err != nil {
		return "", err
	}

	now := time.Now()
	var deployedID string
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		histRepo repository.HistoryRepository,
		productRepo repository.ProductRepository,
	) error {
		id, err := deployFromLot(lotRepo, histRepo, productRepo, deployParams{
			LotID:        in.LotID,
			Quantity:     in.Quantity,
			SiteID:       in.SiteID,
			SerialNumber: in.SerialNumber,
			ActorID:      in.ActorID,
			Comment:      in.Comment,
			DocumentTS:   now,
		}, now)
		if err != nil {
			return err
		}
		deployedID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return deployedID, nil
}

// BatchItem una línea del carrito de despliegue masivo. Cada línea es un registro
// inmutable de solicitud por lote; el motor nunca muta la lista del caller.
type BatchItem struct {
	LotID    string
	Quantity decimal.Decimal
	Serials  []string
}

// DeployBatchInput entrada del despliegue masivo.
type DeployBatchInput struct {
	SiteID  string
	ActorID string
	Items   []BatchItem
}

// DeployBatchResult resultado del despliegue masivo. Warnings informa las líneas que
// quedaron con unidades sin serie (decisión de política, no bloqueo duro).
type DeployBatchResult struct {
	DeployedLotIDs []string
	Warnings       []string
}

// DeployBatch despliega un carrito completo en una sola transacción. Para productos con
// serie crea un lote de cantidad 1 por cada serie suministrada más, si faltan series, un
// lote residual sin serie por el resto. Todas las entradas DEPLOY comparten DocumentTS
// para poder reconstruir el documento de envío.
func (uc *DeploymentUseCase) DeployBatch(ctx context.Context, in DeployBatchInput) (*DeployBatchResult, error) {
	if in.SiteID == "" {
		return nil, fmt.Errorf("%w: site_id requerido", domain.ErrValidation)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: carrito vacío", domain.ErrValidation)
	}
	if err := uc.checkSite(in.SiteID); err != nil {
		return nil, err
	}

	now := time.Now()
	result := &DeployBatchResult{}
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		histRepo repository.HistoryRepository,
		productRepo repository.ProductRepository,
	) error {
		for _, item := range in.Items {
			if !item.Quantity.GreaterThan(decimal.Zero) {
				return fmt.Errorf("%w: cantidad %s en lote %s", domain.ErrValidation, item.Quantity, item.LotID)
			}
			lot, err := lotRepo.GetForUpdate(item.LotID)
			if err != nil {
				return err
			}
			if lot == nil || lot.Deleted() {
				return fmt.Errorf("%w: lote %s", domain.ErrNotFound, item.LotID)
			}
			product, err := productRepo.GetByID(lot.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, lot.ProductID)
			}

			if !product.RequiresSerial {
				if len(item.Serials) > 0 {
					return fmt.Errorf("%w: el producto %s no maneja series", domain.ErrValidation, product.ID)
				}
				id, err := deployFromLot(lotRepo, histRepo, productRepo, deployParams{
					LotID:       lot.ID,
					Quantity:    item.Quantity,
					SiteID:      in.SiteID,
					ActorID:     in.ActorID,
					DocumentTS:  now,
					RequireLock: lot,
				}, now)
				if err != nil {
					return err
				}
				result.DeployedLotIDs = append(result.DeployedLotIDs, id)
				continue
			}

			serialCount := decimal.NewFromInt(int64(len(item.Serials)))
			if serialCount.GreaterThan(item.Quantity) {
				return fmt.Errorf("%w: %d series para cantidad %s en lote %s",
					domain.ErrValidation, len(item.Serials), item.Quantity, lot.ID)
			}
			if item.Quantity.GreaterThan(lot.Quantity) {
				return fmt.Errorf("%w: lote %s tiene %s, se pidieron %s",
					domain.ErrInsufficientQuantity, lot.ID, lot.Quantity, item.Quantity)
			}
			for _, serial := range item.Serials {
				s := serial
				if s == "" {
					return fmt.Errorf("%w: serie vacía en lote %s", domain.ErrValidation, lot.ID)
				}
				id, err := deployFromLot(lotRepo, histRepo, productRepo, deployParams{
					LotID:        lot.ID,
					Quantity:     decimal.NewFromInt(1),
					SiteID:       in.SiteID,
					SerialNumber: &s,
					ActorID:      in.ActorID,
					DocumentTS:   now,
					RequireLock:  lot,
				}, now)
				if err != nil {
					return err
				}
				result.DeployedLotIDs = append(result.DeployedLotIDs, id)
			}
			if residual := item.Quantity.Sub(serialCount); residual.GreaterThan(decimal.Zero) {
				// Faltan series: se despliega el resto sin serie y se deja constancia.
				// La serie puede asignarse después con AssignSerial.
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"lote %s: %s unidades de %s desplegadas sin serie", lot.ID, residual, product.Name))
				id, err := deployFromLot(lotRepo, histRepo, productRepo, deployParams{
					LotID:       lot.ID,
					Quantity:    residual,
					SiteID:      in.SiteID,
					ActorID:     in.ActorID,
					DocumentTS:  now,
					RequireLock: lot,
				}, now)
				if err != nil {
					return err
				}
				result.DeployedLotIDs = append(result.DeployedLotIDs, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *DeploymentUseCase) checkSite(siteID string) error {
	site, err := uc.siteRepo.GetByID(siteID)
	if err != nil {
		return err
	}
	if site == nil {
		return fmt.Errorf("%w: objeto %s", domain.ErrNotFound, siteID)
	}
	return nil
}

// deployParams parámetros internos del despliegue, compartidos por despliegue
// individual, masivo, recambio y despacho (misma transacción del caller).
type deployParams struct {
	LotID        string
	Quantity     decimal.Decimal
	SiteID       string
	SerialNumber *string
	ActorID      string
	Comment      string
	DocumentID   *string
	DocumentTS   time.Time
	RequireLock  *entity.Lot // lote ya bloqueado por el caller; nil = bloquear aquí
}

// deployFromLot bloquea (si hace falta) y despliega quantity de un lote IN_STOCK.
// Corre dentro de la transacción del caller.
func deployFromLot(
	lotRepo repository.LotRepository,
	histRepo repository.HistoryRepository,
	productRepo repository.ProductRepository,
	p deployParams,
	now time.Time,
) (string, error) {
	lot := p.RequireLock
	if lot == nil {
		var err error
		lot, err = lotRepo.GetForUpdate(p.LotID)
		if err != nil {
			return "", err
		}
	}
	if lot == nil || lot.Deleted() {
		return "", fmt.Errorf("%w: lote %s", domain.ErrNotFound, p.LotID)
	}
	switch {
	case lot.Status == entity.LotStatusInStock:
	case lot.Status == entity.LotStatusReserved && p.DocumentID != nil &&
		lot.ReservedForDocumentID != nil && *lot.ReservedForDocumentID == *p.DocumentID:
		// Consumo de la propia reserva del documento: el camino completo del split
		// limpia la reserva; en el parcial el remanente sigue reservado.
	default:
		return "", fmt.Errorf("%w: lote %s en estado %s, se esperaba IN_STOCK", domain.ErrConflict, lot.ID, lot.Status)
	}
	if p.Quantity.GreaterThan(lot.Quantity) {
		return "", fmt.Errorf("%w: lote %s tiene %s, se pidieron %s",
			domain.ErrInsufficientQuantity, lot.ID, lot.Quantity, p.Quantity)
	}
	if p.SerialNumber != nil && lot.SerialNumber != nil {
		return "", fmt.Errorf("%w: el lote %s ya tiene serie", domain.ErrConflict, lot.ID)
	}
	product, err := productRepo.GetByID(lot.ProductID)
	if err != nil {
		return "", err
	}
	if product == nil {
		return "", fmt.Errorf("%w: producto %s", domain.ErrNotFound, lot.ProductID)
	}
	if p.SerialNumber != nil && !product.RequiresSerial {
		return "", fmt.Errorf("%w: el producto %s no maneja series", domain.ErrValidation, product.ID)
	}

	parentID := lot.ID
	start, end := domaininv.WarrantyWindow(now, product.WarrantyMonths)
	siteID := p.SiteID
	deployed, err := splitLot(lotRepo, lot, p.Quantity, lotTarget{
		Status:        entity.LotStatusDeployed,
		SiteID:        &siteID,
		SerialNumber:  p.SerialNumber,
		WarrantyStart: &start,
		WarrantyEnd:   &end,
	}, now)
	if err != nil {
		return "", err
	}

	entry := &entity.HistoryEntry{
		ID:         uuid.New().String(),
		LotID:      deployed.ID,
		ActionType: entity.ActionDEPLOY,
		Quantity:   p.Quantity,
		ToSiteID:   &siteID,
		DocumentID: p.DocumentID,
		ActorID:    p.ActorID,
		Comment:    p.Comment,
		DocumentTS: p.DocumentTS,
		CreatedAt:  now,
	}
	if deployed.ID != parentID {
		related := parentID
		entry.RelatedLotID = &related
	}
	if err := histRepo.Create(entry); err != nil {
		return "", err
	}
	return deployed.ID, nil
}
