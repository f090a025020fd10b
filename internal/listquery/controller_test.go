package listquery

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeRecorder struct {
	mu     sync.Mutex
	states []Params
}

func (r *changeRecorder) record(p Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, p)
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func (r *changeRecorder) last() Params {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[len(r.states)-1]
}

func TestSearchDebounceCommitsOnlyLastValue(t *testing.T) {
	rec := &changeRecorder{}
	c := NewController(Default(), rec.record, WithDebounce(20*time.Millisecond))

	c.SetSearch("r")
	c.SetSearch("ri")
	c.SetSearch("riz")

	require.Eventually(t, func() bool { return rec.count() > 0 }, time.Second, time.Millisecond)
	// Intermediate keystrokes never commit.
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, "riz", rec.last().Q)
	assert.Equal(t, "riz", c.Params().Q)
}

func TestSearchResetsPage(t *testing.T) {
	initial := Default()
	initial.Page = 5
	c := NewController(initial, nil, WithDebounce(time.Millisecond))

	c.FlushSearch("poulet")
	assert.Equal(t, 1, c.Params().Page)
}

func TestSearchClearsCategoryAndClearRestoresIt(t *testing.T) {
	initial := Default()
	initial.Category = "Fruits"
	c := NewController(initial, nil)

	c.FlushSearch("pomme")
	assert.Equal(t, "", c.Params().Category)
	assert.Equal(t, "pomme", c.Params().Q)

	c.FlushSearch("")
	assert.Equal(t, "Fruits", c.Params().Category)
	assert.Equal(t, "", c.Params().Q)
}

func TestSetCategoryLeavesSearchMode(t *testing.T) {
	c := NewController(Default(), nil, WithDebounce(time.Hour))

	c.FlushSearch("pomme")
	// A pending keystroke must not fire after the tab switch.
	c.SetSearch("pomm")
	c.SetCategory("Légumes")

	p := c.Params()
	assert.Equal(t, "Légumes", p.Category)
	assert.Equal(t, "", p.Q)
	assert.Equal(t, 1, p.Page)

	// Clearing search later restores the newly selected category.
	c.FlushSearch("x")
	c.FlushSearch("")
	assert.Equal(t, "Légumes", c.Params().Category)
}

func TestFlushSearchSameValueDoesNotNotify(t *testing.T) {
	rec := &changeRecorder{}
	c := NewController(Default(), rec.record)

	c.FlushSearch("")
	assert.Equal(t, 0, rec.count())
}

func TestToggleSort(t *testing.T) {
	c := NewController(Default(), nil)

	// Same column flips direction.
	c.ToggleSort("name")
	assert.Equal(t, "name", c.Params().SortBy)
	assert.Equal(t, "desc", c.Params().SortDir)

	// New column starts ascending.
	c.ToggleSort("kcal")
	assert.Equal(t, "kcal", c.Params().SortBy)
	assert.Equal(t, "asc", c.Params().SortDir)

	// Unknown columns are ignored.
	c.ToggleSort("weight")
	assert.Equal(t, "kcal", c.Params().SortBy)
}

func TestSetPageSizeResetsPage(t *testing.T) {
	initial := Default()
	initial.Page = 3
	c := NewController(initial, nil)

	c.SetPageSize(50)
	assert.Equal(t, 50, c.Params().PageSize)
	assert.Equal(t, 1, c.Params().Page)

	// Disallowed sizes are ignored.
	c.SetPageSize(37)
	assert.Equal(t, 50, c.Params().PageSize)
}

func TestPagingClampsAtBounds(t *testing.T) {
	rec := &changeRecorder{}
	c := NewController(Default(), rec.record)

	// Already on page 1, going back is a no-op.
	c.PrevPage()
	assert.Equal(t, 1, c.Params().Page)
	assert.Equal(t, 0, rec.count())

	c.NextPage(3)
	c.NextPage(3)
	assert.Equal(t, 3, c.Params().Page)

	// At the last page, advancing is a no-op.
	c.NextPage(3)
	assert.Equal(t, 3, c.Params().Page)
	assert.Equal(t, 2, rec.count())

	c.PrevPage()
	assert.Equal(t, 2, c.Params().Page)
}
