package listquery

import (
	"sync"
	"time"
)

// Controller drives view-state transitions. Free-text input is debounced;
// every other control commits synchronously. Search and category are
// mutually exclusive view modes: typing a search drops the active category,
// and clearing the search restores the category last selected, which is
// remembered here rather than in the URL.
type Controller struct {
	mu           sync.Mutex
	params       Params
	lastCategory string
	debounce     time.Duration
	timer        *time.Timer
	onChange     func(Params)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithDebounce overrides the free-text settle delay (default 300ms).
func WithDebounce(d time.Duration) ControllerOption {
	return func(c *Controller) { c.debounce = d }
}

// NewController creates a controller over an initial state. onChange fires
// after every committed transition with the resulting state.
func NewController(initial Params, onChange func(Params), opts ...ControllerOption) *Controller {
	c := &Controller{
		params:       initial,
		lastCategory: initial.Category,
		debounce:     300 * time.Millisecond,
		onChange:     onChange,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Params returns the current committed state.
func (c *Controller) Params() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// SetSearch schedules a search-text change; only the last value within the
// settle window commits.
func (c *Controller) SetSearch(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.commitSearch(q)
	})
}

// FlushSearch commits a pending or explicit search value immediately.
func (c *Controller) FlushSearch(q string) {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.commitSearch(q)
}

func (c *Controller) commitSearch(q string) {
	c.mu.Lock()
	if q == c.params.Q {
		c.mu.Unlock()
		return
	}
	c.params.Q = q
	c.params.Page = 1
	if q != "" {
		if c.params.Category != "" {
			c.lastCategory = c.params.Category
			c.params.Category = ""
		}
	} else {
		c.params.Category = c.lastCategory
	}
	p := c.params
	c.mu.Unlock()
	c.notify(p)
}

// SetCategory activates a category tab, leaving search mode.
func (c *Controller) SetCategory(category string) {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.params.Category = category
	c.lastCategory = category
	c.params.Q = ""
	c.params.Page = 1
	p := c.params
	c.mu.Unlock()
	c.notify(p)
}

// ToggleSort switches the sort to col ascending, or flips the direction
// when col is already active. Unknown columns are ignored.
func (c *Controller) ToggleSort(col string) {
	if !ValidSortColumn(col) {
		return
	}
	c.mu.Lock()
	if c.params.SortBy == col {
		if c.params.SortDir == "asc" {
			c.params.SortDir = "desc"
		} else {
			c.params.SortDir = "asc"
		}
	} else {
		c.params.SortBy = col
		c.params.SortDir = "asc"
	}
	p := c.params
	c.mu.Unlock()
	c.notify(p)
}

// SetPageSize switches to an allowed page size and returns to page 1.
// Disallowed sizes are ignored.
func (c *Controller) SetPageSize(size int) {
	allowed := false
	for _, s := range PageSizes {
		if size == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return
	}
	c.mu.Lock()
	c.params.PageSize = size
	c.params.Page = 1
	p := c.params
	c.mu.Unlock()
	c.notify(p)
}

// NextPage advances one page, clamped to pageCount.
func (c *Controller) NextPage(pageCount int) {
	c.step(1, pageCount)
}

// PrevPage goes back one page, clamped to 1.
func (c *Controller) PrevPage() {
	c.step(-1, 0)
}

func (c *Controller) step(delta, pageCount int) {
	c.mu.Lock()
	next := c.params.Page + delta
	if next < 1 {
		next = 1
	}
	if pageCount > 0 && next > pageCount {
		next = pageCount
	}
	if next == c.params.Page {
		c.mu.Unlock()
		return
	}
	c.params.Page = next
	p := c.params
	c.mu.Unlock()
	c.notify(p)
}

func (c *Controller) notify(p Params) {
	if c.onChange != nil {
		c.onChange(p)
	}
}
