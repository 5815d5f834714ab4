package quota

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store keyed by userID+day.
type memStore struct {
	mu    sync.Mutex
	plans map[string]Plan
	usage map[string]Counters
}

func newMemStore() *memStore {
	return &memStore{plans: map[string]Plan{}, usage: map[string]Counters{}}
}

func (m *memStore) GetPlan(_ context.Context, userID string) (Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.plans[userID]; ok {
		return p, nil
	}
	return PlanFree, nil
}

func (m *memStore) GetUsage(_ context.Context, userID, day string) (Counters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage[userID+"|"+day], nil
}

func (m *memStore) IncrementUsage(_ context.Context, userID, day string, res Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.usage[userID+"|"+day]
	switch res {
	case ResourceChat:
		c.Chat++
	case ResourceApply:
		c.Apply++
	case ResourceResume:
		c.Resume++
	case ResourceUpload:
		c.Upload++
	}
	m.usage[userID+"|"+day] = c
	return nil
}

func TestCheck_FreshUserIsAllowed(t *testing.T) {
	gate := NewGate(newMemStore())

	check, err := gate.Check(context.Background(), "new@x.dev", ResourceChat)

	require.NoError(t, err)
	assert.True(t, check.Allowed)
	assert.Equal(t, 5, check.Remaining)
	assert.Equal(t, 5, check.Limit)
}

func TestCheck_DeniesAtExactlyTheLimit(t *testing.T) {
	store := newMemStore()
	gate := NewGate(store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		check, err := gate.Check(ctx, "free@x.dev", ResourceChat)
		require.NoError(t, err)
		assert.True(t, check.Allowed, "charge %d of 5 must still be allowed", i+1)
		require.NoError(t, gate.Charge(ctx, "free@x.dev", ResourceChat))
	}

	check, err := gate.Check(ctx, "free@x.dev", ResourceChat)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Equal(t, 0, check.Remaining)
}

func TestCheck_ZeroLimitResourceNeverAllowed(t *testing.T) {
	gate := NewGate(newMemStore())

	check, err := gate.Check(context.Background(), "free@x.dev", ResourceApply)

	require.NoError(t, err)
	assert.False(t, check.Allowed, "free plan has no auto-applies at all")
	assert.Equal(t, 0, check.Limit)
}

func TestCheck_UnlimitedPlanAlwaysAllows(t *testing.T) {
	store := newMemStore()
	store.plans["vip@x.dev"] = PlanPremium
	gate := NewGate(store)
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		require.NoError(t, gate.Charge(ctx, "vip@x.dev", ResourceChat))
	}

	check, err := gate.Check(ctx, "vip@x.dev", ResourceChat)
	require.NoError(t, err)
	assert.True(t, check.Allowed)
	assert.Equal(t, Unlimited, check.Remaining)
	assert.Equal(t, Unlimited, check.Limit)
}

func TestCharge_CountsOnlyTheChargedResource(t *testing.T) {
	store := newMemStore()
	store.plans["pro@x.dev"] = PlanPro
	gate := NewGate(store)
	ctx := context.Background()

	require.NoError(t, gate.Charge(ctx, "pro@x.dev", ResourceResume))
	require.NoError(t, gate.Charge(ctx, "pro@x.dev", ResourceResume))
	require.NoError(t, gate.Charge(ctx, "pro@x.dev", ResourceApply))

	summary, err := gate.Summary(ctx, "pro@x.dev")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Today[ResourceResume].Used)
	assert.Equal(t, 1, summary.Today[ResourceApply].Used)
	assert.Equal(t, 0, summary.Today[ResourceChat].Used)
}

func TestSummary_CoversEveryResource(t *testing.T) {
	gate := NewGate(newMemStore())

	summary, err := gate.Summary(context.Background(), "new@x.dev")

	require.NoError(t, err)
	assert.Equal(t, PlanFree, summary.Plan)
	assert.Equal(t, ResourceUsage{Used: 0, Limit: 5}, summary.Today[ResourceChat])
	assert.Equal(t, ResourceUsage{Used: 0, Limit: 0}, summary.Today[ResourceApply])
	assert.Equal(t, ResourceUsage{Used: 0, Limit: 1}, summary.Today[ResourceResume])
	assert.Equal(t, ResourceUsage{Used: 0, Limit: 2}, summary.Today[ResourceUpload])
}

func TestLimitsFor_UnknownPlanFallsBackToFree(t *testing.T) {
	assert.Equal(t, LimitsFor(PlanFree), LimitsFor(Plan("enterprise")))
}

func TestPlanLimits(t *testing.T) {
	tests := []struct {
		plan Plan
		res  Resource
		want int
	}{
		{PlanFree, ResourceChat, 5},
		{PlanFree, ResourceApply, 0},
		{PlanFree, ResourceResume, 1},
		{PlanFree, ResourceUpload, 2},
		{PlanPro, ResourceChat, 100},
		{PlanPro, ResourceApply, 10},
		{PlanPro, ResourceResume, 20},
		{PlanPro, ResourceUpload, 50},
		{PlanPremium, ResourceChat, Unlimited},
		{PlanPremium, ResourceApply, Unlimited},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LimitsFor(tt.plan).For(tt.res), "%s/%s", tt.plan, tt.res)
	}
}
