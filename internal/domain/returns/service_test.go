package returns

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/apperror"
	"github.com/partheepan17/POSGrocery-sub002/internal/core/id"
	"github.com/partheepan17/POSGrocery-sub002/internal/core/types"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/catalogs/product"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/inventory"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/sales"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/settings"
)

// memStore is the shared in-memory state behind the fakes. The fake tx
// manager snapshots and restores it, mimicking transactional rollback.
type memStore struct {
	returns   []*Return
	nextID    int64
	stock     map[int64]types.Quantity
	movements []inventory.Movement

	failCreateLines bool
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, stock: map[int64]types.Quantity{}}
}

func (s *memStore) snapshot() *memStore {
	cp := &memStore{
		nextID:          s.nextID,
		failCreateLines: s.failCreateLines,
		stock:           make(map[int64]types.Quantity, len(s.stock)),
	}
	for k, v := range s.stock {
		cp.stock[k] = v
	}
	for _, r := range s.returns {
		rc := *r
		rc.Lines = append([]ReturnLine(nil), r.Lines...)
		cp.returns = append(cp.returns, &rc)
	}
	cp.movements = append([]inventory.Movement(nil), s.movements...)
	return cp
}

func (s *memStore) restore(snap *memStore) {
	s.returns = snap.returns
	s.nextID = snap.nextID
	s.stock = snap.stock
	s.movements = snap.movements
	s.failCreateLines = snap.failCreateLines
}

// fakeTxManager runs fn directly and rolls the store back on error.
type fakeTxManager struct {
	store *memStore
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// fakeReturnRepo derives the ledger by folding over stored return lines,
// same as the SQL aggregation. Repository calls are recorded so tests can
// assert ordering inside the commit transaction.
type fakeReturnRepo struct {
	store *memStore
	calls []string
}

func (r *fakeReturnRepo) LockSale(ctx context.Context, saleID int64) error {
	r.calls = append(r.calls, "lock_sale")
	return nil
}

func (r *fakeReturnRepo) LedgerForSale(ctx context.Context, saleID int64) (Ledger, error) {
	r.calls = append(r.calls, "ledger")
	ledger := Ledger{}
	for _, ret := range r.store.returns {
		if ret.SaleID != saleID {
			continue
		}
		for _, l := range ret.Lines {
			ledger[l.SaleLineID] += l.Qty
		}
	}
	return ledger, nil
}

func (r *fakeReturnRepo) CreateHeader(ctx context.Context, ret *Return) error {
	ret.ID = r.store.nextID
	r.store.nextID++
	stored := *ret
	r.store.returns = append(r.store.returns, &stored)
	return nil
}

func (r *fakeReturnRepo) CreateLines(ctx context.Context, returnID int64, lines []ReturnLine) error {
	if r.store.failCreateLines {
		return errors.New("connection reset by peer")
	}
	for _, ret := range r.store.returns {
		if ret.ID == returnID {
			ret.Lines = append(ret.Lines, lines...)
			return nil
		}
	}
	return errors.New("return header missing")
}

func (r *fakeReturnRepo) GetByID(ctx context.Context, returnID int64) (*Return, error) {
	for _, ret := range r.store.returns {
		if ret.ID == returnID {
			cp := *ret
			cp.Lines = append([]ReturnLine(nil), ret.Lines...)
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("Return", returnID)
}

func (r *fakeReturnRepo) List(ctx context.Context, filter ListFilter) ([]Summary, error) {
	var out []Summary
	for _, ret := range r.store.returns {
		if filter.Method != nil && ret.RefundMethod != *filter.Method {
			continue
		}
		out = append(out, Summary{
			ID:           ret.ID,
			SaleID:       ret.SaleID,
			Datetime:     ret.Datetime,
			CashierID:    ret.CashierID,
			RefundMethod: ret.RefundMethod,
			Total:        ret.RefundTotal(),
			TerminalName: ret.TerminalName,
		})
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

type fakeSaleRepo struct {
	sales map[int64]*sales.Sale
}

func (r *fakeSaleRepo) GetByID(ctx context.Context, saleID int64) (*sales.Sale, error) {
	if s, ok := r.sales[saleID]; ok {
		return s, nil
	}
	return nil, apperror.NewNotFound("Sale", saleID)
}

func (r *fakeSaleRepo) FindByReference(ctx context.Context, ref string) (*sales.Sale, error) {
	for _, s := range r.sales {
		if s.InvoiceNo == ref {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("Sale", ref)
}

type fakeProductRepo struct {
	store    *memStore
	products map[int64]product.Product
}

func (r *fakeProductRepo) GetByID(ctx context.Context, productID int64) (product.Product, error) {
	if p, ok := r.products[productID]; ok {
		return p, nil
	}
	return product.Product{}, apperror.NewNotFound("Product", productID)
}

func (r *fakeProductRepo) GetByIDs(ctx context.Context, productIDs []int64) (map[int64]product.Product, error) {
	out := map[int64]product.Product{}
	for _, pid := range productIDs {
		if p, ok := r.products[pid]; ok {
			out[pid] = p
		}
	}
	return out, nil
}

func (r *fakeProductRepo) IncrementStock(ctx context.Context, productID int64, delta types.Quantity) error {
	r.store.stock[productID] += delta
	return nil
}

type fakeInventoryRepo struct {
	store *memStore
}

func (r *fakeInventoryRepo) CreateMovements(ctx context.Context, movements []inventory.Movement) error {
	r.store.movements = append(r.store.movements, movements...)
	return nil
}

func (r *fakeInventoryRepo) ListByProduct(ctx context.Context, productID int64, filter inventory.MovementFilter) ([]inventory.Movement, error) {
	return nil, nil
}

func (r *fakeInventoryRepo) ListBySource(ctx context.Context, sourceType inventory.SourceType, sourceLineID id.ID) ([]inventory.Movement, error) {
	return nil, nil
}

type fixture struct {
	service *Service
	store   *memStore
	sales   *fakeSaleRepo
	returns *fakeReturnRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	returnRepo := &fakeReturnRepo{store: store}
	saleRepo := &fakeSaleRepo{sales: map[int64]*sales.Sale{1: testSale()}}
	productRepo := &fakeProductRepo{
		store: store,
		products: map[int64]product.Product{
			100: {ID: 100, SKU: "RICE5", NameEN: "Rice 5kg", Unit: product.UnitPiece},
			101: {ID: 101, SKU: "SUG1", NameEN: "Sugar 1kg", NameSI: "සීනි 1kg", Unit: product.UnitPiece},
		},
	}

	svc := NewService(
		returnRepo,
		saleRepo,
		productRepo,
		productRepo,
		inventory.NewService(&fakeInventoryRepo{store: store}),
		settings.Static{Policy: testPolicy()},
		&fakeTxManager{store: store},
		nil,
	)
	svc.WithClock(func() time.Time { return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) })

	return &fixture{service: svc, store: store, sales: saleRepo, returns: returnRepo}
}

func commitInput(lines ...CommitLine) CommitInput {
	total := types.ZeroMoney()
	// callers fill Payments explicitly when testing mismatches
	return CommitInput{
		SaleID:       1,
		Lines:        lines,
		Payments:     TenderSplit{Cash: total},
		RefundMethod: MethodCash,
		Language:     "en",
		CashierID:    7,
		TerminalName: "Counter-1",
	}
}

func TestCommit_HappyPath(t *testing.T) {
	f := newFixture(t)

	input := commitInput(CommitLine{
		SaleLineID: 10,
		Qty:        types.NewQuantityFromInt(2),
		ReasonCode: ReasonDamaged,
	})
	input.Payments = TenderSplit{Cash: types.MustMoney("20.00")}

	ret, err := f.service.Commit(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, int64(1), ret.ID)
	assert.Equal(t, "RET-000001", ReceiptID(ret.ID))
	assert.Equal(t, "20.00", ret.RefundTotal().StringFixed(2))
	require.Len(t, ret.Lines, 1)
	assert.True(t, ret.Lines[0].Restock, "policy default restock should apply")

	// Ledger now reflects the committed lines
	ledger, err := f.service.returns.LedgerForSale(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(2), ledger.Returned(10))

	// Stock restocked and movement recorded
	assert.Equal(t, types.NewQuantityFromInt(2), f.store.stock[100])
	require.Len(t, f.store.movements, 1)
	assert.Equal(t, inventory.SourceReturnLine, f.store.movements[0].SourceType)
}

func TestCommit_SequentialPartialReturns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := commitInput(CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(2), ReasonCode: ReasonCustomerChange})
	first.Payments = TenderSplit{Cash: types.MustMoney("20.00")}
	_, err := f.service.Commit(ctx, first)
	require.NoError(t, err)

	second := commitInput(CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(3), ReasonCode: ReasonCustomerChange})
	second.Payments = TenderSplit{Cash: types.MustMoney("30.00")}
	ret, err := f.service.Commit(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "RET-000002", ReceiptID(ret.ID))

	// The sold quantity is now exhausted: the in-transaction re-validation
	// sees both committed returns and rejects any further attempt.
	third := commitInput(CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(1), ReasonCode: ReasonCustomerChange})
	third.Payments = TenderSplit{Cash: types.MustMoney("10.00")}
	_, err = f.service.Commit(ctx, third)
	require.Error(t, err)
	assert.True(t, apperror.IsReturnValidation(err))
	assert.Contains(t, apperror.ValidationErrors(err),
		"Cannot return 1 of Rice 5kg. Only 0 available (sold: 5, already returned: 5).")
}

// Splitting one sale line across several request entries must not let the
// combined quantity slip past the availability check.
func TestCommit_RejectsDuplicateLineEntries(t *testing.T) {
	f := newFixture(t)

	// Line 10 sold qty 5: each entry alone fits, together they exceed it.
	input := commitInput(
		CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(3), ReasonCode: ReasonDamaged},
		CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(3), ReasonCode: ReasonDamaged},
	)
	input.Payments = TenderSplit{Cash: types.MustMoney("60.00")}

	_, err := f.service.Commit(context.Background(), input)
	require.Error(t, err)
	assert.True(t, apperror.IsReturnValidation(err))
	assert.Contains(t, apperror.ValidationErrors(err), "Sale line 10 is listed more than once")

	// Nothing was persisted.
	ledger, err := f.service.returns.LedgerForSale(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, ledger)
	assert.Empty(t, f.store.stock)
}

// Commit must take the sale row lock before deriving the ledger, otherwise
// two overlapping transactions could both read a stale ledger and jointly
// exceed the sold quantity.
func TestCommit_LocksSaleBeforeReadingLedger(t *testing.T) {
	f := newFixture(t)

	input := commitInput(CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(1), ReasonCode: ReasonOther})
	input.Payments = TenderSplit{Cash: types.MustMoney("10.00")}

	_, err := f.service.Commit(context.Background(), input)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(f.returns.calls), 2)
	assert.Equal(t, []string{"lock_sale", "ledger"}, f.returns.calls[:2])
}

func TestCommit_PaymentsMustSumToTotal(t *testing.T) {
	f := newFixture(t)

	input := commitInput(CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(2), ReasonCode: ReasonOther})
	input.Payments = TenderSplit{Cash: types.MustMoney("19.99")}

	_, err := f.service.Commit(context.Background(), input)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	// Split across tenders is fine as long as it sums exactly.
	input.Payments = TenderSplit{Cash: types.MustMoney("10.00"), Card: types.MustMoney("10.00")}
	_, err = f.service.Commit(context.Background(), input)
	require.NoError(t, err)
}

func TestCommit_ManagerApproval(t *testing.T) {
	f := newFixture(t)

	// 5 x 10.00 + 1 x (25.00 - 5.00) = 70.00; drop the threshold below it.
	pol := testPolicy()
	pol.ManagerPinRequiredAbove = types.MustMoney("50.00")
	f.service.settings = settings.Static{Policy: pol}

	input := commitInput(
		CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(5), ReasonCode: ReasonExpired},
		CommitLine{SaleLineID: 11, Qty: types.NewQuantityFromInt(1), ReasonCode: ReasonExpired},
	)
	input.Payments = TenderSplit{Cash: types.MustMoney("70.00")}

	_, err := f.service.Commit(context.Background(), input)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeAuthorizationRequired, appErr.Code)

	managerID := int64(42)
	input.ManagerID = &managerID
	ret, err := f.service.Commit(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, ret.ManagerID)
	assert.Equal(t, managerID, *ret.ManagerID)
}

func TestCommit_InfrastructureFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.store.failCreateLines = true

	input := commitInput(CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(2), ReasonCode: ReasonDamaged})
	input.Payments = TenderSplit{Cash: types.MustMoney("20.00")}

	_, err := f.service.Commit(context.Background(), input)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeTransactionFailed, appErr.Code)
	assert.Equal(t, "Failed to create return transaction", appErr.Message)

	// Rollback left no trace: ledger empty, stock untouched, retry succeeds.
	ledger, err := f.service.returns.LedgerForSale(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, ledger)
	assert.Empty(t, f.store.stock)
	assert.Empty(t, f.store.movements)

	f.store.failCreateLines = false
	ret, err := f.service.Commit(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "RET-000001", ReceiptID(ret.ID))
}

func TestCommit_RestockOptOut(t *testing.T) {
	f := newFixture(t)

	noRestock := false
	input := commitInput(
		CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(1), ReasonCode: ReasonDamaged, Restock: &noRestock},
		CommitLine{SaleLineID: 11, Qty: types.NewQuantityFromInt(1), ReasonCode: ReasonCustomerChange},
	)
	input.Payments = TenderSplit{Cash: types.MustMoney("30.00")} // 10 + (25 - 5)

	_, err := f.service.Commit(context.Background(), input)
	require.NoError(t, err)

	// Damaged line skipped; only the resellable line moved stock.
	assert.NotContains(t, f.store.stock, int64(100))
	assert.Equal(t, types.NewQuantityFromInt(1), f.store.stock[101])
	require.Len(t, f.store.movements, 1)
	assert.Equal(t, int64(101), f.store.movements[0].ProductID)
}

func TestCommit_RejectsInvalidEnums(t *testing.T) {
	f := newFixture(t)

	input := commitInput(CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(1), ReasonCode: "BROKEN"})
	_, err := f.service.Commit(context.Background(), input)
	require.Error(t, err)

	input = commitInput(CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(1), ReasonCode: ReasonOther})
	input.RefundMethod = "CHEQUE"
	_, err = f.service.Commit(context.Background(), input)
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := commitInput(CommitLine{SaleLineID: 11, Qty: types.NewQuantityFromInt(1), ReasonCode: ReasonWrongItem})
	input.Payments = TenderSplit{Cash: types.MustMoney("20.00")}
	input.Language = "si"

	ret, err := f.service.Commit(ctx, input)
	require.NoError(t, err)

	payload, err := f.service.Format(ctx, ret.ID)
	require.NoError(t, err)

	assert.Equal(t, "return", payload.Type)
	assert.Equal(t, "RET-000001", payload.Invoice.ID)
	assert.Equal(t, "si", payload.Invoice.Language)
	assert.Equal(t, "Counter-1", payload.Invoice.Terminal)
	assert.Equal(t, "20.00", payload.Invoice.Totals.Net.StringFixed(2))
	assert.Equal(t, "20.00", payload.Invoice.Payments.Total().StringFixed(2))

	require.Len(t, payload.Invoice.Items, 1)
	item := payload.Invoice.Items[0]
	assert.Equal(t, "Sugar 1kg", item.NameEN)
	assert.Equal(t, "සීනි 1kg", item.NameSI)
	assert.Equal(t, ReasonWrongItem, item.ReasonCode)
}

func TestFormat_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Format(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "Return not found", appErr.Message)
}

func TestCanRefund_FailsClosedOnMissingSale(t *testing.T) {
	f := newFixture(t)

	elig, err := f.service.CanRefund(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, elig.Allowed)
	assert.Equal(t, "Sale not found", elig.Reason)
}

func TestValidate_UsesFreshLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	items := []Item{{SaleLineID: 10, Qty: types.NewQuantityFromInt(4)}}

	result, err := f.service.Validate(ctx, 1, items)
	require.NoError(t, err)
	assert.True(t, result.OK)

	input := commitInput(CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(2), ReasonCode: ReasonOther})
	input.Payments = TenderSplit{Cash: types.MustMoney("20.00")}
	_, err = f.service.Commit(ctx, input)
	require.NoError(t, err)

	// Same request re-validated now fails: the ledger is derived per call.
	result, err = f.service.Validate(ctx, 1, items)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Contains(t, result.Errors,
		"Cannot return 4 of Rice 5kg. Only 3 available (sold: 5, already returned: 2).")
}

func TestFindSaleByReference(t *testing.T) {
	f := newFixture(t)

	sale, err := f.service.FindSaleByReference(context.Background(), "INV-000042")
	require.NoError(t, err)
	assert.Equal(t, int64(1), sale.ID)

	_, err = f.service.FindSaleByReference(context.Background(), "INV-999999")
	assert.True(t, apperror.IsNotFound(err))
}

func TestListRefunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := commitInput(CommitLine{SaleLineID: 10, Qty: types.NewQuantityFromInt(1), ReasonCode: ReasonOther})
	input.Payments = TenderSplit{Cash: types.MustMoney("10.00")}
	_, err := f.service.Commit(ctx, input)
	require.NoError(t, err)

	summaries, err := f.service.ListRefunds(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "10.00", summaries[0].Total.StringFixed(2))

	card := MethodCard
	summaries, err = f.service.ListRefunds(ctx, ListFilter{Method: &card})
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
