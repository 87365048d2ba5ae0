package services

import (
	"context"

	"github.com/konstantin-nikolovski/perq/internal/models"
	"github.com/konstantin-nikolovski/perq/internal/repositories"
)

// fakeLedgerRepo is an in-memory LedgerRepository. Only customers present in
// balances exist; adjustments against anyone else fail like the platform
// store would.
type fakeLedgerRepo struct {
	balances    map[string]int
	adjustCalls int
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{balances: map[string]int{}}
}

func (r *fakeLedgerRepo) GetBalance(_ context.Context, customerGID string) (int, error) {
	balance, ok := r.balances[customerGID]
	if !ok {
		return 0, repositories.ErrCustomerNotFound
	}
	return balance, nil
}

func (r *fakeLedgerRepo) AdjustBalance(_ context.Context, customerGID string, delta int) (int, error) {
	balance, ok := r.balances[customerGID]
	if !ok {
		return 0, repositories.ErrCustomerNotFound
	}
	r.adjustCalls++
	r.balances[customerGID] = balance + delta
	return r.balances[customerGID], nil
}

// fakeOrderStateRepo is an in-memory OrderStateRepository. Unknown orders
// read as the zero-value state.
type fakeOrderStateRepo struct {
	states   map[string]models.OrderPointsState
	setCalls int
}

func newFakeOrderStateRepo() *fakeOrderStateRepo {
	return &fakeOrderStateRepo{states: map[string]models.OrderPointsState{}}
}

func (r *fakeOrderStateRepo) Get(_ context.Context, orderGID string) (*models.OrderPointsState, error) {
	state := r.states[orderGID]
	return &state, nil
}

func (r *fakeOrderStateRepo) Set(_ context.Context, orderGID string, state *models.OrderPointsState) error {
	r.setCalls++
	r.states[orderGID] = *state
	return nil
}

// fakeTxnRepo collects audit records.
type fakeTxnRepo struct {
	transactions []*models.PointTransaction
}

func (r *fakeTxnRepo) Create(_ context.Context, transaction *models.PointTransaction) error {
	r.transactions = append(r.transactions, transaction)
	return nil
}

func (r *fakeTxnRepo) FindByCustomerGID(_ context.Context, customerGID string, _, _ int) ([]*models.PointTransaction, error) {
	var out []*models.PointTransaction
	for _, txn := range r.transactions {
		if txn.CustomerGID == customerGID {
			out = append(out, txn)
		}
	}
	return out, nil
}
