package inventory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/casaintegra/lotes-api/internal/application/inventory"
	"github.com/casaintegra/lotes-api/internal/domain"
	"github.com/casaintegra/lotes-api/internal/domain/entity"
	"github.com/casaintegra/lotes-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria de los puertos de persistencia. Replican el contrato del
// adaptador de PostgreSQL: validación de invariantes en cada escritura, serie
// única por producto, soft-delete al agotar cantidad y orden FIFO por creación.
// ──────────────────────────────────────────────────────────────────────────────

type fakeLotRepo struct {
	lots  map[string]*entity.Lot
	order []string // orden de inserción = orden created_at
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: map[string]*entity.Lot{}}
}

func copyLot(l *entity.Lot) *entity.Lot {
	c := *l
	if l.SerialNumber != nil {
		v := *l.SerialNumber
		c.SerialNumber = &v
	}
	if l.SiteID != nil {
		v := *l.SiteID
		c.SiteID = &v
	}
	if l.ReservedForDocumentID != nil {
		v := *l.ReservedForDocumentID
		c.ReservedForDocumentID = &v
	}
	if l.WarrantyStart != nil {
		v := *l.WarrantyStart
		c.WarrantyStart = &v
	}
	if l.WarrantyEnd != nil {
		v := *l.WarrantyEnd
		c.WarrantyEnd = &v
	}
	if l.DeletedAt != nil {
		v := *l.DeletedAt
		c.DeletedAt = &v
	}
	return &c
}

func (r *fakeLotRepo) Create(lot *entity.Lot) error {
	if err := lot.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvariantViolation, err)
	}
	if lot.SerialNumber != nil {
		for _, id := range r.order {
			ex := r.lots[id]
			if ex.DeletedAt == nil && ex.ProductID == lot.ProductID &&
				ex.SerialNumber != nil && *ex.SerialNumber == *lot.SerialNumber {
				return fmt.Errorf("%w: serie %s del producto %s", domain.ErrDuplicate, *lot.SerialNumber, lot.ProductID)
			}
		}
	}
	r.lots[lot.ID] = copyLot(lot)
	r.order = append(r.order, lot.ID)
	return nil
}

func (r *fakeLotRepo) GetByID(id string) (*entity.Lot, error) {
	lot, ok := r.lots[id]
	if !ok {
		return nil, nil
	}
	return copyLot(lot), nil
}

func (r *fakeLotRepo) GetForUpdate(id string) (*entity.Lot, error) {
	lot, ok := r.lots[id]
	if !ok || lot.DeletedAt != nil {
		return nil, nil
	}
	return copyLot(lot), nil
}

func (r *fakeLotRepo) Update(lot *entity.Lot) error {
	if _, ok := r.lots[lot.ID]; !ok {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, lot.ID)
	}
	if lot.DeletedAt == nil && !lot.Quantity.GreaterThan(decimal.Zero) {
		now := time.Now()
		lot.DeletedAt = &now
	}
	if err := lot.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvariantViolation, err)
	}
	r.lots[lot.ID] = copyLot(lot)
	return nil
}

func (r *fakeLotRepo) SoftDelete(id string, at time.Time) error {
	lot, ok := r.lots[id]
	if !ok {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	lot.DeletedAt = &at
	return nil
}

func (r *fakeLotRepo) List(f repository.LotFilter) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, id := range r.order {
		lot := r.lots[id]
		if lot.DeletedAt != nil && !f.IncludeDeleted {
			continue
		}
		if f.ProductID != "" && lot.ProductID != f.ProductID {
			continue
		}
		if f.Status != "" && lot.Status != f.Status {
			continue
		}
		if f.SiteID != "" && (lot.SiteID == nil || *lot.SiteID != f.SiteID) {
			continue
		}
		if f.DocumentID != "" && (lot.ReservedForDocumentID == nil || *lot.ReservedForDocumentID != f.DocumentID) {
			continue
		}
		out = append(out, copyLot(lot))
	}
	return out, nil
}

func (r *fakeLotRepo) ListReservedForUpdate(productID, documentID string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, id := range r.order {
		lot := r.lots[id]
		if lot.DeletedAt != nil || lot.ProductID != productID || lot.Status != entity.LotStatusReserved {
			continue
		}
		if lot.ReservedForDocumentID == nil || *lot.ReservedForDocumentID != documentID {
			continue
		}
		out = append(out, copyLot(lot))
	}
	return out, nil
}

func (r *fakeLotRepo) ListInStockForUpdate(productID string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, id := range r.order {
		lot := r.lots[id]
		if lot.DeletedAt != nil || lot.ProductID != productID || lot.Status != entity.LotStatusInStock {
			continue
		}
		out = append(out, copyLot(lot))
	}
	return out, nil
}

// snapshot/restore para simular rollback de transacción.
func (r *fakeLotRepo) snapshot() (map[string]*entity.Lot, []string) {
	lots := make(map[string]*entity.Lot, len(r.lots))
	for id, lot := range r.lots {
		lots[id] = copyLot(lot)
	}
	order := append([]string(nil), r.order...)
	return lots, order
}

func (r *fakeLotRepo) restore(lots map[string]*entity.Lot, order []string) {
	r.lots = lots
	r.order = order
}

type fakeHistoryRepo struct {
	entries []*entity.HistoryEntry
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (r *fakeHistoryRepo) Create(entry *entity.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	e := *entry
	r.entries = append(r.entries, &e)
	return nil
}

func (r *fakeHistoryRepo) ListByLot(lotID string) ([]*entity.HistoryEntry, error) {
	var out []*entity.HistoryEntry
	for _, e := range r.entries {
		if e.LotID == lotID || (e.RelatedLotID != nil && *e.RelatedLotID == lotID) {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) ListByShipment(siteID string, documentTS time.Time) ([]*entity.HistoryEntry, error) {
	var out []*entity.HistoryEntry
	for _, e := range r.entries {
		if e.ToSiteID != nil && *e.ToSiteID == siteID && e.DocumentTS.Equal(documentTS) {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*entity.Product{}}
}

func (r *fakeProductRepo) Create(p *entity.Product) error {
	c := *p
	r.products[p.ID] = &c
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.products {
		c := *p
		out = append(out, &c)
	}
	return out, nil
}

type fakeSiteRepo struct {
	sites map[string]*entity.Site
}

func newFakeSiteRepo() *fakeSiteRepo {
	return &fakeSiteRepo{sites: map[string]*entity.Site{}}
}

func (r *fakeSiteRepo) Create(s *entity.Site) error {
	c := *s
	r.sites[s.ID] = &c
	return nil
}

func (r *fakeSiteRepo) GetByID(id string) (*entity.Site, error) {
	s, ok := r.sites[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (r *fakeSiteRepo) List(limit, offset int) ([]*entity.Site, error) {
	var out []*entity.Site
	for _, s := range r.sites {
		c := *s
		out = append(out, &c)
	}
	return out, nil
}

// fakeTxRunner ejecuta fn sobre los repos en memoria. En caso de error restaura el
// estado previo, igual que el rollback de la transacción real.
type fakeTxRunner struct {
	lots     *fakeLotRepo
	hist     *fakeHistoryRepo
	products *fakeProductRepo
}

func (tx *fakeTxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	histRepo repository.HistoryRepository,
	productRepo repository.ProductRepository,
) error) error {
	lots, order := tx.lots.snapshot()
	entries := append([]*entity.HistoryEntry(nil), tx.hist.entries...)
	if err := fn(tx.lots, tx.hist, tx.products); err != nil {
		tx.lots.restore(lots, order)
		tx.hist.entries = entries
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Arnés: todos los casos de uso del motor cableados sobre los dobles.
// ──────────────────────────────────────────────────────────────────────────────

type engine struct {
	lots     *fakeLotRepo
	hist     *fakeHistoryRepo
	products *fakeProductRepo
	sites    *fakeSiteRepo

	reception   *inventory.ReceptionUseCase
	deployment  *inventory.DeploymentUseCase
	returns     *inventory.ReturnUseCase
	replacement *inventory.ReplacementUseCase
	reservation *inventory.ReservationUseCase
	fulfillment *inventory.FulfillmentUseCase
	query       *inventory.QueryUseCase
}

func newEngine() *engine {
	lots := newFakeLotRepo()
	hist := newFakeHistoryRepo()
	products := newFakeProductRepo()
	sites := newFakeSiteRepo()
	tx := &fakeTxRunner{lots: lots, hist: hist, products: products}
	return &engine{
		lots:        lots,
		hist:        hist,
		products:    products,
		sites:       sites,
		reception:   inventory.NewReceptionUseCase(tx),
		deployment:  inventory.NewDeploymentUseCase(tx, sites),
		returns:     inventory.NewReturnUseCase(tx),
		replacement: inventory.NewReplacementUseCase(tx),
		reservation: inventory.NewReservationUseCase(tx),
		fulfillment: inventory.NewFulfillmentUseCase(tx, sites),
		query:       inventory.NewQueryUseCase(lots, hist),
	}
}

func (e *engine) seedProduct(t *testing.T, name string, requiresSerial bool, warrantyMonths int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:             uuid.New().String(),
		Name:           name,
		UnitMeasure:    "und",
		RequiresSerial: requiresSerial,
		WarrantyMonths: warrantyMonths,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, e.products.Create(p))
	return p
}

func (e *engine) seedSite(t *testing.T, name string) *entity.Site {
	t.Helper()
	s := &entity.Site{
		ID:        uuid.New().String(),
		Name:      name,
		Address:   "Cra 7 # 12-34",
		CreatedAt: time.Now(),
	}
	require.NoError(t, e.sites.Create(s))
	return s
}

// receive da de alta un lote vía el caso de uso real para que el historial quede
// completo (las pruebas de replay dependen de la entrada RECEIVE).
func (e *engine) receive(t *testing.T, productID string, qty int64) string {
	t.Helper()
	ids, err := e.reception.Receive(context.Background(), inventory.ReceiveInput{
		ProductID: productID,
		Quantity:  decimal.NewFromInt(qty),
		UnitCost:  decimal.NewFromInt(100),
		ActorID:   testActor,
	})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	return ids[0]
}

func (e *engine) receiveSerial(t *testing.T, productID, serial string) string {
	t.Helper()
	ids, err := e.reception.Receive(context.Background(), inventory.ReceiveInput{
		ProductID:    productID,
		Quantity:     decimal.NewFromInt(1),
		UnitCost:     decimal.NewFromInt(100),
		SerialNumber: &serial,
		ActorID:      testActor,
	})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	return ids[0]
}

func (e *engine) mustGetLot(t *testing.T, id string) *entity.Lot {
	t.Helper()
	lot, err := e.lots.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, lot)
	return lot
}

// totalActiveQuantity suma la cantidad de todos los lotes vivos de un producto,
// para verificar conservación de cantidad a través de splits.
func (e *engine) totalActiveQuantity(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	lots, err := e.lots.List(repository.LotFilter{ProductID: productID})
	require.NoError(t, err)
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.Quantity)
	}
	return total
}

const testActor = "11111111-1111-1111-1111-111111111111"

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
