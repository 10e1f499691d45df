package cost_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/includeguardian/cost"
)

func TestAddSubInverse(t *testing.T) {
	a := cost.Cost{Tokens: 120, Bytes: 4096}
	b := cost.Cost{Tokens: 30, Bytes: 512}

	assert.True(t, a.Add(b).Sub(b).Equal(a))
}

func TestScaleDistributesOverAdd(t *testing.T) {
	a := cost.Cost{Tokens: 7, Bytes: 11}
	b := cost.Cost{Tokens: 2, Bytes: 3}

	lhs := a.Add(b).Scale(4)
	rhs := a.Scale(4).Add(b.Scale(4))

	assert.True(t, lhs.Equal(rhs))
}

func TestZeroIsIdentity(t *testing.T) {
	a := cost.Cost{Tokens: 42, Bytes: 99}
	assert.True(t, a.Add(cost.Zero).Equal(a))
	assert.True(t, cost.Zero.IsZero())
}

func TestSum(t *testing.T) {
	got := cost.Sum(
		cost.Cost{Tokens: 1, Bytes: 1},
		cost.Cost{Tokens: 10, Bytes: 10},
		cost.Cost{Tokens: 100, Bytes: 100},
	)
	assert.Equal(t, cost.Cost{Tokens: 111, Bytes: 111}, got)
}

func TestString(t *testing.T) {
	c := cost.Cost{Tokens: 10, Bytes: 2048}
	assert.Equal(t, "10 tokens, 2.00KiB", c.String())
}
