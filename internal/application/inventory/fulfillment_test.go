package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casaintegra/lotes-api/internal/application/inventory"
	"github.com/casaintegra/lotes-api/internal/domain"
	"github.com/casaintegra/lotes-api/internal/domain/entity"
	"github.com/casaintegra/lotes-api/internal/domain/repository"
)

func reserve(t *testing.T, e *engine, lotID string, qty int64, docID string) string {
	t.Helper()
	id, err := e.reservation.Reserve(context.Background(), inventory.ReserveInput{
		LotID:      lotID,
		Quantity:   dec(qty),
		DocumentID: docID,
		ActorID:    testActor,
	})
	require.NoError(t, err)
	return id
}

func TestFulfill_ReservadoPrimeroSinTocarStockLibre(t *testing.T) {
	e := newEngine()
	product := e.seedProduct(t, "Cable UTP Cat6", false, 0)
	site := e.seedSite(t, "Apartamento 501")
	freeLot := e.receive(t, product.ID, 100)
	reservedLot := reserve(t, e, e.receive(t, product.ID, 50), 50, "doc-1")

	// Se piden 30 y hay 50 reservadas: el stock libre no se toca.
	out, err := e.fulfillment.Fulfill(context.Background(), inventory.FulfillInput{
		DocumentID: "doc-1",
		SiteID:     site.ID,
		ActorID:    testActor,
		Lines:      []inventory.FulfillLine{{ProductID: product.ID, Quantity: dec(30)}},
	})
	require.NoError(t, err)
	require.Len(t, out.Lines, 1)
	assert.False(t, out.Partial)
	assert.True(t, out.Lines[0].Shipped.Equal(dec(30)))
	assert.True(t, out.Lines[0].Outstanding.IsZero())

	free := e.mustGetLot(t, freeLot)
	assert.True(t, free.Quantity.Equal(dec(100)), "el stock libre queda intacto")
	assert.Equal(t, entity.LotStatusInStock, free.Status)

	// El remanente de la reserva sigue reservado para el documento.
	remainder := e.mustGetLot(t, reservedLot)
	assert.True(t, remainder.Quantity.Equal(dec(20)))
	assert.Equal(t, entity.LotStatusReserved, remainder.Status)
	require.NotNil(t, remainder.ReservedForDocumentID)
	assert.Equal(t, "doc-1", *remainder.ReservedForDocumentID)
}

func TestFulfill_FaltanteSaleDelStockLibreFIFO(t *testing.T) {
	e := newEngine()
	product := e.seedProduct(t, "Cable UTP Cat6", false, 0)
	site := e.seedSite(t, "Apartamento 501")
	oldest := e.receive(t, product.ID, 10)
	newest := e.receive(t, product.ID, 10)
	reserve(t, e, e.receive(t, product.ID, 5), 5, "doc-1")

	// Se piden 12: 5 reservadas + 7 del lote libre más antiguo. El más nuevo no se toca.
	out, err := e.fulfillment.Fulfill(context.Background(), inventory.FulfillInput{
		DocumentID: "doc-1",
		SiteID:     site.ID,
		ActorID:    testActor,
		Lines:      []inventory.FulfillLine{{ProductID: product.ID, Quantity: dec(12)}},
	})
	require.NoError(t, err)
	assert.True(t, out.Lines[0].Shipped.Equal(dec(12)))
	assert.False(t, out.Partial)

	assert.True(t, e.mustGetLot(t, oldest).Quantity.Equal(dec(3)), "FIFO: primero el más antiguo")
	assert.True(t, e.mustGetLot(t, newest).Quantity.Equal(dec(10)))
}

func TestFulfill_ReservaDeOtroDocumentoIntocable(t *testing.T) {
	e := newEngine()
	product := e.seedProduct(t, "Cable UTP Cat6", false, 0)
	site := e.seedSite(t, "Apartamento 501")
	otherReserved := reserve(t, e, e.receive(t, product.ID, 50), 50, "doc-ajeno")
	e.receive(t, product.ID, 10)

	out, err := e.fulfillment.Fulfill(context.Background(), inventory.FulfillInput{
		DocumentID: "doc-1",
		SiteID:     site.ID,
		ActorID:    testActor,
		Lines:      []inventory.FulfillLine{{ProductID: product.ID, Quantity: dec(30)}},
	})
	require.NoError(t, err)

	// Solo alcanza el stock libre: 10 de 30. La reserva ajena no se consume.
	assert.True(t, out.Partial)
	assert.True(t, out.Lines[0].Shipped.Equal(dec(10)))
	assert.True(t, out.Lines[0].Outstanding.Equal(dec(20)))

	foreign := e.mustGetLot(t, otherReserved)
	assert.Equal(t, entity.LotStatusReserved, foreign.Status)
	assert.True(t, foreign.Quantity.Equal(dec(50)))
}

func TestFulfill_FaltanteEsResultadoNoError(t *testing.T) {
	e := newEngine()
	product := e.seedProduct(t, "Cable UTP Cat6", false, 0)
	site := e.seedSite(t, "Apartamento 501")

	// Sin stock en absoluto: el despacho reporta todo como pendiente.
	out, err := e.fulfillment.Fulfill(context.Background(), inventory.FulfillInput{
		DocumentID: "doc-1",
		SiteID:     site.ID,
		Lines:      []inventory.FulfillLine{{ProductID: product.ID, Quantity: dec(8)}},
	})
	require.NoError(t, err)
	assert.True(t, out.Partial)
	assert.True(t, out.Lines[0].Shipped.IsZero())
	assert.True(t, out.Lines[0].Outstanding.Equal(dec(8)))
	assert.Empty(t, out.Lines[0].DeployedLotIDs)
}

func TestFulfill_VariasLineasEnUnaTransaccion(t *testing.T) {
	e := newEngine()
	cable := e.seedProduct(t, "Cable UTP Cat6", false, 0)
	sensor := e.seedProduct(t, "Sensor de movimiento", false, 12)
	site := e.seedSite(t, "Penthouse 1201")
	e.receive(t, cable.ID, 100)
	e.receive(t, sensor.ID, 3)

	out, err := e.fulfillment.Fulfill(context.Background(), inventory.FulfillInput{
		DocumentID: "doc-1",
		SiteID:     site.ID,
		ActorID:    testActor,
		Lines: []inventory.FulfillLine{
			{ProductID: cable.ID, Quantity: dec(40)},
			{ProductID: sensor.ID, Quantity: dec(5)},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Lines, 2)
	assert.True(t, out.Partial, "una línea corta marca el resultado completo como parcial")
	assert.True(t, out.Lines[0].Outstanding.IsZero())
	assert.True(t, out.Lines[1].Outstanding.Equal(dec(2)))

	// Todo lo despachado quedó desplegado en el objeto con su entrada DEPLOY.
	for _, line := range out.Lines {
		for _, id := range line.DeployedLotIDs {
			lot := e.mustGetLot(t, id)
			assert.Equal(t, entity.LotStatusDeployed, lot.Status)
			require.NotNil(t, lot.SiteID)
			assert.Equal(t, site.ID, *lot.SiteID)
		}
	}
}

func TestFulfill_ConsumoReservaLimpiaElDocumento(t *testing.T) {
	e := newEngine()
	product := e.seedProduct(t, "Cable UTP Cat6", false, 0)
	site := e.seedSite(t, "Apartamento 501")
	reservedLot := reserve(t, e, e.receive(t, product.ID, 20), 20, "doc-1")

	out, err := e.fulfillment.Fulfill(context.Background(), inventory.FulfillInput{
		DocumentID: "doc-1",
		SiteID:     site.ID,
		ActorID:    testActor,
		Lines:      []inventory.FulfillLine{{ProductID: product.ID, Quantity: dec(20)}},
	})
	require.NoError(t, err)
	require.Len(t, out.Lines[0].DeployedLotIDs, 1)
	assert.Equal(t, reservedLot, out.Lines[0].DeployedLotIDs[0])

	// Consumo completo: el propio lote pasa a DEPLOYED y la reserva desaparece.
	lot := e.mustGetLot(t, reservedLot)
	assert.Equal(t, entity.LotStatusDeployed, lot.Status)
	assert.Nil(t, lot.ReservedForDocumentID)

	entries, err := e.hist.ListByLot(reservedLot)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, entity.ActionDEPLOY, last.ActionType)
	require.NotNil(t, last.DocumentID)
	assert.Equal(t, "doc-1", *last.DocumentID)
}

func TestFulfill_SinLineasEsValidacion(t *testing.T) {
	e := newEngine()
	site := e.seedSite(t, "Apartamento 501")
	_, err := e.fulfillment.Fulfill(context.Background(), inventory.FulfillInput{
		DocumentID: "doc-1",
		SiteID:     site.ID,
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

// Tras un despacho que mezcló reservas y stock libre, el replay de cada lote vivo
// del producto coincide con su fila actual.
func TestFulfill_ReplayCoherenteTrasDespacho(t *testing.T) {
	e := newEngine()
	product := e.seedProduct(t, "Cable UTP Cat6", false, 0)
	site := e.seedSite(t, "Apartamento 501")
	e.receive(t, product.ID, 30)
	reserve(t, e, e.receive(t, product.ID, 10), 10, "doc-1")

	_, err := e.fulfillment.Fulfill(context.Background(), inventory.FulfillInput{
		DocumentID: "doc-1",
		SiteID:     site.ID,
		ActorID:    testActor,
		Lines:      []inventory.FulfillLine{{ProductID: product.ID, Quantity: dec(25)}},
	})
	require.NoError(t, err)

	lots, err := e.lots.List(repository.LotFilter{ProductID: product.ID, IncludeDeleted: true})
	require.NoError(t, err)
	for _, lot := range lots {
		replayed, err := e.query.ReplayLot(context.Background(), lot.ID)
		require.NoError(t, err)
		assert.True(t, replayed.Quantity.Equal(lot.Quantity),
			"lote %s: fila %s vs replay %s", lot.ID, lot.Quantity, replayed.Quantity)
		assert.Equal(t, lot.Status, replayed.Status)
	}
}
