package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupMajorityRule(t *testing.T) {
	tests := []struct {
		successes int
		trials    int
		want      bool
	}{
		{0, 5, false},
		{2, 5, false},
		{3, 5, true},
		{5, 5, true},
		{0, 1, false},
		{1, 1, true},
		{2, 4, false},
		{3, 4, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d of %d", tt.successes, tt.trials), func(t *testing.T) {
			g := NewGroup(tt.trials)
			for i := 0; i < tt.trials; i++ {
				g.Add(i < tt.successes, 10)
			}
			assert.True(t, g.Complete())
			assert.Equal(t, tt.want, g.Result().Success())
		})
	}
}

func TestGroupMeanCountsSuccessesOnly(t *testing.T) {
	g := NewGroup(3)
	g.Add(true, 100)
	assert.False(t, g.Complete())
	g.Add(false, 999)
	g.Add(true, 300)

	r := g.Result()
	assert.Equal(t, 2, r.Successes)
	assert.Equal(t, 3, r.Trials)
	assert.InDelta(t, 200, r.MeanTimeToFind, 1e-9)

	g.Reset()
	assert.Equal(t, 0, g.Trials())
	assert.Equal(t, GroupResult{}, g.Result())
}

func TestEnergyModel(t *testing.T) {
	e := testEnergy()

	assert.InDelta(t, 3.0, e.Weight(2), 1e-9)
	// 30 minutes at 4 m/s carrying 3 kg: 0.5 * 16 * 3 / 2
	assert.InDelta(t, 12.0, e.Consumption(1800, 4, 2), 1e-9)

	b, ok := e.MinBatteries(1800, 4)
	assert.True(t, ok)
	assert.Equal(t, 1, b)
}

func TestMinBatteriesStartsAtMinCount(t *testing.T) {
	e := testEnergy()
	e.MinBatteryCount = 2

	b, ok := e.MinBatteries(0, 4)
	assert.True(t, ok)
	assert.Equal(t, 2, b, "a zero-length flight still carries the minimum battery count")
}
