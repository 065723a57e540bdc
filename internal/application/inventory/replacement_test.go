package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casaintegra/lotes-api/internal/application/inventory"
	"github.com/casaintegra/lotes-api/internal/domain"
	"github.com/casaintegra/lotes-api/internal/domain/entity"
)

func TestReplace_UnidadSerializadaCompleta(t *testing.T) {
	e := newEngine()
	product := e.seedProduct(t, "Cámara IP domo", true, 24)
	site := e.seedSite(t, "Casa campestre")
	oldID := e.receiveSerial(t, product.ID, "CAM-OLD")
	newID := e.receiveSerial(t, product.ID, "CAM-NEW")
	deployAll(t, e, oldID, site.ID, 1)

	out, err := e.replacement.Replace(context.Background(), inventory.ReplaceInput{
		OldLotID:    oldID,
		OldQuantity: dec(1),
		NewLotID:    newID,
		NewQuantity: dec(1),
		Reason:      "falla de imagen en garantía",
		ActorID:     testActor,
	})
	require.NoError(t, err)
	assert.Equal(t, oldID, out.ScrappedLotID)
	assert.Equal(t, newID, out.DeployedLotID)

	// La unidad vieja queda chatarreada; la cantidad nunca se borra.
	old := e.mustGetLot(t, oldID)
	assert.Equal(t, entity.LotStatusScrapped, old.Status)
	assert.True(t, old.Quantity.Equal(dec(1)))
	assert.Nil(t, old.SiteID)

	// La nueva queda desplegada en el mismo objeto con garantía propia.
	replacement := e.mustGetLot(t, newID)
	assert.Equal(t, entity.LotStatusDeployed, replacement.Status)
	require.NotNil(t, replacement.SiteID)
	assert.Equal(t, site.ID, *replacement.SiteID)
	require.NotNil(t, replacement.WarrantyStart)
	assert.Equal(t, replacement.WarrantyStart.AddDate(0, 24, 0), *replacement.WarrantyEnd)

	// Historial: SCRAP para la vieja, DEPLOY con referencia cruzada para la nueva.
	oldEntries, err := e.hist.ListByLot(oldID)
	require.NoError(t, err)
	last := oldEntries[len(oldEntries)-1]
	assert.Equal(t, entity.ActionSCRAP, last.ActionType)
	require.NotNil(t, last.FromSiteID)
	assert.Equal(t, site.ID, *last.FromSiteID)
	assert.Contains(t, last.Comment, "falla de imagen")

	newEntries, err := e.hist.ListByLot(newID)
	require.NoError(t, err)
	deployEntry := newEntries[len(newEntries)-1]
	assert.Equal(t, entity.ActionDEPLOY, deployEntry.ActionType)
	assert.Contains(t, deployEntry.Comment, "recambio de Cámara IP domo")
	assert.Contains(t, deployEntry.Comment, "CAM-OLD")
}

func TestReplace_FallaEnElRecambioRevierteTodo(t *testing.T) {
	e := newEngine()
	product := e.seedProduct(t, "Cámara IP domo", true, 24)
	site := e.seedSite(t, "Casa campestre")
	oldID := e.receiveSerial(t, product.ID, "CAM-OLD")
	deployAll(t, e, oldID, site.ID, 1)

	// El lote nuevo no existe: el desmontaje ya ejecutado debe revertirse.
	_, err := e.replacement.Replace(context.Background(), inventory.ReplaceInput{
		OldLotID:    oldID,
		OldQuantity: dec(1),
		NewLotID:    "99999999-9999-9999-9999-999999999999",
		NewQuantity: dec(1),
		ActorID:     testActor,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	old := e.mustGetLot(t, oldID)
	assert.Equal(t, entity.LotStatusDeployed, old.Status, "sin recambio no hay desmontaje")
	require.NotNil(t, old.SiteID)
	assert.Equal(t, site.ID, *old.SiteID)
}

func TestReplace_SoloLotesDesplegados(t *testing.T) {
	e := newEngine()
	product := e.seedProduct(t, "Cámara IP domo", true, 24)
	oldID := e.receiveSerial(t, product.ID, "CAM-OLD")
	newID := e.receiveSerial(t, product.ID, "CAM-NEW")

	_, err := e.replacement.Replace(context.Background(), inventory.ReplaceInput{
		OldLotID:    oldID,
		OldQuantity: dec(1),
		NewLotID:    newID,
		NewQuantity: dec(1),
	})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestReplace_MismoLoteRechazado(t *testing.T) {
	e := newEngine()
	_, err := e.replacement.Replace(context.Background(), inventory.ReplaceInput{
		OldLotID:    "a",
		OldQuantity: dec(1),
		NewLotID:    "a",
		NewQuantity: dec(1),
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestReplace_ParcialDeLoteGranel(t *testing.T) {
	e := newEngine()
	product := e.seedProduct(t, "Sensor de humo", false, 12)
	site := e.seedSite(t, "Bodega norte")
	oldLot := e.receive(t, product.ID, 10)
	newLot := e.receive(t, product.ID, 10)
	deployedID := deployAll(t, e, oldLot, site.ID, 10)

	out, err := e.replacement.Replace(context.Background(), inventory.ReplaceInput{
		OldLotID:    deployedID,
		OldQuantity: dec(3),
		NewLotID:    newLot,
		NewQuantity: dec(3),
		ActorID:     testActor,
	})
	require.NoError(t, err)

	// 7 siguen desplegados, 3 chatarreados, 3 nuevos desplegados, 7 nuevos en stock.
	assert.True(t, e.mustGetLot(t, deployedID).Quantity.Equal(dec(7)))
	assert.True(t, e.mustGetLot(t, out.ScrappedLotID).Quantity.Equal(dec(3)))
	assert.Equal(t, entity.LotStatusScrapped, e.mustGetLot(t, out.ScrappedLotID).Status)
	assert.True(t, e.mustGetLot(t, out.DeployedLotID).Quantity.Equal(dec(3)))
	assert.True(t, e.mustGetLot(t, newLot).Quantity.Equal(dec(7)))

	assert.True(t, e.totalActiveQuantity(t, product.ID).Equal(dec(20)))
}
