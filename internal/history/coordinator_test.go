package history

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_SequenceIncreases(t *testing.T) {
	c := NewCoordinator(nil)

	t1 := c.Begin("a")
	t2 := c.Begin("b")

	assert.Equal(t, uint64(1), t1.Seq)
	assert.Equal(t, uint64(2), t2.Seq)
	assert.Equal(t, uint64(2), c.Latest())
}

func TestCoordinator_LatestIsApplied(t *testing.T) {
	c := NewCoordinator(nil)

	first := c.Begin("slow")
	second := c.Begin("fast")

	assert.Equal(t, Discarded, c.Resolve(first).Outcome)
	assert.Equal(t, Applied, c.Resolve(second).Outcome)
}

func TestCoordinator_DefaultFlowIsUUIDv7(t *testing.T) {
	c := NewCoordinator(nil)
	tk := c.Begin("x")

	parsed, err := uuid.Parse(tk.Flow)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestCoordinator_CustomFlow(t *testing.T) {
	n := 0
	c := NewCoordinator(func() string {
		n++
		return "flow-" + string(rune('0'+n))
	})

	assert.Equal(t, "flow-1", c.Begin("a").Flow)
	assert.Equal(t, "flow-2", c.Begin("b").Flow)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "applied", Applied.String())
	assert.Equal(t, "discarded", Discarded.String())
	assert.Equal(t, "pending", Outcome(0).String())
}
