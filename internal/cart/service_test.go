package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_storefront/internal/domain"
)

type mockRemote struct {
	m           sync.Mutex
	updateCalls int
	removeCalls int
	addCalls    int
	updateErr   error
	removeErr   error
	addErr      error

	// confirmed overrides the echoed line item when set (server clamps etc.)
	confirmed *domain.CartLineItem

	// blockUpdate, when non-nil, is received from before the update returns
	blockUpdate chan struct{}
	applied     []int // quantities in the order the remote saw them
}

func (m *mockRemote) AddCartItem(_ context.Context, productID int64, quantity int) (domain.CartLineItem, error) {
	m.m.Lock()
	m.addCalls++
	err := m.addErr
	m.m.Unlock()
	if err != nil {
		return domain.CartLineItem{}, err
	}
	return domain.CartLineItem{ID: productID * 100, ProductID: productID, Quantity: quantity, UnitPrice: 500}, nil
}

func (m *mockRemote) UpdateCartQuantity(_ context.Context, _, productID int64, quantity int) (domain.CartLineItem, error) {
	m.m.Lock()
	m.updateCalls++
	block := m.blockUpdate
	err := m.updateErr
	m.m.Unlock()

	if block != nil {
		<-block
	}

	m.m.Lock()
	m.applied = append(m.applied, quantity)
	confirmed := m.confirmed
	m.m.Unlock()

	if err != nil {
		return domain.CartLineItem{}, err
	}
	if confirmed != nil {
		return *confirmed, nil
	}
	return domain.CartLineItem{ID: productID * 100, ProductID: productID, Quantity: quantity, UnitPrice: 1000}, nil
}

func (m *mockRemote) RemoveCartItem(context.Context, int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.removeCalls++
	return m.removeErr
}

func (m *mockRemote) counts() (int, int, int) {
	m.m.Lock()
	defer m.m.Unlock()
	return m.addCalls, m.updateCalls, m.removeCalls
}

func seedCart() *domain.Cart {
	return &domain.Cart{
		ID:     1,
		UserID: 42,
		Items: []domain.CartLineItem{
			{ID: 100, ProductID: 1, Name: "keyboard", Quantity: 2, UnitPrice: 1000},
			{ID: 200, ProductID: 2, Name: "mouse", Quantity: 1, UnitPrice: 500},
			{ID: 300, ProductID: 3, Name: "cable", Quantity: 4, UnitPrice: 90},
		},
	}
}

func TestSetQuantity_Success(t *testing.T) {
	remote := &mockRemote{}
	sut := NewService(remote, seedCart(), zerolog.Nop())

	err := sut.SetQuantity(context.Background(), 1, 5)

	require.NoError(t, err)
	items := sut.Items()
	assert.Equal(t, 5, items[0].Quantity)
}

func TestSetQuantity_BelowOneNeverReachesNetwork(t *testing.T) {
	remote := &mockRemote{}
	sut := NewService(remote, seedCart(), zerolog.Nop())

	err := sut.SetQuantity(context.Background(), 1, 0)

	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, updates, _ := remote.counts()
	assert.Zero(t, updates)
	assert.Equal(t, 2, sut.Items()[0].Quantity)
}

func TestSetQuantity_FailureRollsBack(t *testing.T) {
	remote := &mockRemote{updateErr: errors.New("boom")}
	sut := NewService(remote, seedCart(), zerolog.Nop())

	err := sut.SetQuantity(context.Background(), 1, 9)

	require.Error(t, err)
	assert.Equal(t, 2, sut.Items()[0].Quantity, "quantity must revert to pre-change value")
}

func TestSetQuantity_ServerValueWins(t *testing.T) {
	// server clamps 50 down to 10 and reprices
	remote := &mockRemote{confirmed: &domain.CartLineItem{ID: 100, ProductID: 1, Quantity: 10, UnitPrice: 950}}
	sut := NewService(remote, seedCart(), zerolog.Nop())

	err := sut.SetQuantity(context.Background(), 1, 50)

	require.NoError(t, err)
	items := sut.Items()
	assert.Equal(t, 10, items[0].Quantity)
	assert.Equal(t, int64(950), items[0].UnitPrice)
}

func TestSetQuantity_UnknownProduct(t *testing.T) {
	remote := &mockRemote{}
	sut := NewService(remote, seedCart(), zerolog.Nop())

	err := sut.SetQuantity(context.Background(), 99, 2)

	require.ErrorIs(t, err, ErrItemNotFound)
	_, updates, _ := remote.counts()
	assert.Zero(t, updates)
}

func TestRemoveItem_Success(t *testing.T) {
	remote := &mockRemote{}
	sut := NewService(remote, seedCart(), zerolog.Nop())

	err := sut.RemoveItem(context.Background(), 200)

	require.NoError(t, err)
	items := sut.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(100), items[0].ID)
	assert.Equal(t, int64(300), items[1].ID)
}

func TestRemoveItem_FailureRestoresOriginalIndex(t *testing.T) {
	remote := &mockRemote{removeErr: errors.New("network down")}
	sut := NewService(remote, seedCart(), zerolog.Nop())

	err := sut.RemoveItem(context.Background(), 200)

	require.Error(t, err)
	items := sut.Items()
	require.Len(t, items, 3)
	assert.Equal(t, int64(200), items[1].ID, "item must return to its original position")
	assert.Equal(t, 1, items[1].Quantity, "item must keep its original quantity")
}

func TestRemoveItem_Unknown(t *testing.T) {
	remote := &mockRemote{}
	sut := NewService(remote, seedCart(), zerolog.Nop())

	err := sut.RemoveItem(context.Background(), 999)

	require.ErrorIs(t, err, ErrItemNotFound)
	_, _, removes := remote.counts()
	assert.Zero(t, removes)
}

func TestAddItem_AppendsConfirmedLine(t *testing.T) {
	remote := &mockRemote{}
	sut := NewService(remote, seedCart(), zerolog.Nop())

	line, err := sut.AddItem(context.Background(), 7, 2)

	require.NoError(t, err)
	assert.Equal(t, int64(700), line.ID)
	items := sut.Items()
	require.Len(t, items, 4)
	assert.Equal(t, int64(700), items[3].ID)
}

func TestAddItem_FailureLeavesCartUntouched(t *testing.T) {
	remote := &mockRemote{addErr: errors.New("boom")}
	sut := NewService(remote, seedCart(), zerolog.Nop())

	_, err := sut.AddItem(context.Background(), 7, 2)

	require.Error(t, err)
	assert.Len(t, sut.Items(), 3)
}

func TestSummary_RecomputedAfterEveryMutation(t *testing.T) {
	remote := &mockRemote{}
	sut := NewService(remote, seedCart(), zerolog.Nop())

	before := sut.Summary(domain.ShippingStandard)
	assert.Equal(t, int64(2000+500+360), before.Subtotal)

	require.NoError(t, sut.SetQuantity(context.Background(), 2, 3))

	after := sut.Summary(domain.ShippingStandard)
	assert.Equal(t, int64(2000+1500+360), after.Subtotal)
	assert.Equal(t, after.Subtotal+50, after.Total)
}

func TestMutations_SameLineAreSerialized(t *testing.T) {
	release := make(chan struct{})
	remote := &mockRemote{blockUpdate: release}
	sut := NewService(remote, seedCart(), zerolog.Nop())

	first := make(chan error, 1)
	go func() {
		first <- sut.SetQuantity(context.Background(), 1, 5)
	}()

	// wait until the first mutation is in flight
	require.Eventually(t, func() bool {
		_, updates, _ := remote.counts()
		return updates == 1
	}, time.Second, 5*time.Millisecond)

	second := make(chan error, 1)
	go func() {
		second <- sut.SetQuantity(context.Background(), 1, 7)
	}()

	// the second mutation must queue, not race
	time.Sleep(20 * time.Millisecond)
	_, updates, _ := remote.counts()
	assert.Equal(t, 1, updates, "second mutation must wait for the first")

	close(release)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	remote.m.Lock()
	applied := append([]int(nil), remote.applied...)
	remote.m.Unlock()
	assert.Equal(t, []int{5, 7}, applied, "mutations apply in submission order")
	assert.Equal(t, 7, sut.Items()[0].Quantity, "last applied wins")
}

func TestClear(t *testing.T) {
	sut := NewService(&mockRemote{}, seedCart(), zerolog.Nop())

	sut.Clear()

	assert.Empty(t, sut.Items())
	assert.Equal(t, int64(50), sut.Summary(domain.ShippingStandard).Total)
}
