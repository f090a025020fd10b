// Package listquery models the state of the paginated food-catalog view:
// URL-encodable query parameters plus the input state machine driving them.
package listquery

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultSortBy   = "name"
	DefaultSortDir  = "asc"
	DefaultPage     = 1
	DefaultPageSize = 10
)

// PageSizes are the allowed page sizes; anything else falls back to the
// default.
var PageSizes = []int{10, 20, 50}

var sortColumns = map[string]bool{
	"name": true,
	"kcal": true,
	"prot": true,
	"carb": true,
	"fat":  true,
}

// Params is the full state of a filtered/sorted/paginated listing. It is the
// cache key for list queries, so equal states must compare equal.
type Params struct {
	Q        string   `json:"q"`
	Category string   `json:"category"`
	SortBy   string   `json:"sortBy"`
	SortDir  string   `json:"sortDir"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
	KcalMin  *float64 `json:"kcalMin,omitempty"`
	KcalMax  *float64 `json:"kcalMax,omitempty"`
	ProtMin  *float64 `json:"protMin,omitempty"`
	ProtMax  *float64 `json:"protMax,omitempty"`
	CarbMin  *float64 `json:"carbMin,omitempty"`
	CarbMax  *float64 `json:"carbMax,omitempty"`
	FatMin   *float64 `json:"fatMin,omitempty"`
	FatMax   *float64 `json:"fatMax,omitempty"`
}

// Default returns the view state of a freshly opened listing.
func Default() Params {
	return Params{
		SortBy:   DefaultSortBy,
		SortDir:  DefaultSortDir,
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}
}

// ValidSortColumn reports whether col is a sortable column key.
func ValidSortColumn(col string) bool {
	return sortColumns[col]
}

// Decode parses URL query values into Params. Unrecognized or out-of-range
// values fall back to the defaults instead of erroring.
func Decode(values url.Values) Params {
	p := Default()

	p.Q = strings.TrimSpace(values.Get("q"))
	p.Category = strings.TrimSpace(values.Get("category"))

	if sort := values.Get("sort"); sort != "" {
		by, dir, _ := strings.Cut(sort, ":")
		if ValidSortColumn(by) {
			p.SortBy = by
		}
		if dir == "desc" {
			p.SortDir = "desc"
		}
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page >= 1 {
		p.Page = page
	}
	if size, err := strconv.Atoi(values.Get("pageSize")); err == nil {
		for _, allowed := range PageSizes {
			if size == allowed {
				p.PageSize = size
				break
			}
		}
	}

	p.KcalMin = parseFloat(values.Get("kcalMin"))
	p.KcalMax = parseFloat(values.Get("kcalMax"))
	p.ProtMin = parseFloat(values.Get("protMin"))
	p.ProtMax = parseFloat(values.Get("protMax"))
	p.CarbMin = parseFloat(values.Get("carbMin"))
	p.CarbMax = parseFloat(values.Get("carbMax"))
	p.FatMin = parseFloat(values.Get("fatMin"))
	p.FatMax = parseFloat(values.Get("fatMax"))

	return p
}

// Encode renders Params as URL query values, omitting defaults so clean
// states produce clean URLs. Decode(Encode(p)) yields p for any decoded p.
func (p Params) Encode() url.Values {
	values := url.Values{}
	if p.Q != "" {
		values.Set("q", p.Q)
	}
	if p.Category != "" {
		values.Set("category", p.Category)
	}
	if p.SortBy != DefaultSortBy || p.SortDir != DefaultSortDir {
		values.Set("sort", p.SortBy+":"+p.SortDir)
	}
	if p.Page != DefaultPage {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize != DefaultPageSize {
		values.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	setFloat(values, "kcalMin", p.KcalMin)
	setFloat(values, "kcalMax", p.KcalMax)
	setFloat(values, "protMin", p.ProtMin)
	setFloat(values, "protMax", p.ProtMax)
	setFloat(values, "carbMin", p.CarbMin)
	setFloat(values, "carbMax", p.CarbMax)
	setFloat(values, "fatMin", p.FatMin)
	setFloat(values, "fatMax", p.FatMax)
	return values
}

// PageCount computes max(1, ceil(total / pageSize)).
func PageCount(total int64, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	count := int(math.Ceil(float64(total) / float64(pageSize)))
	if count < 1 {
		return 1
	}
	return count
}

// ClampPage silently clamps a requested page into [1, pageCount].
func ClampPage(page, pageCount int) int {
	if page < 1 {
		return 1
	}
	if page > pageCount {
		return pageCount
	}
	return page
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func setFloat(values url.Values, key string, v *float64) {
	if v != nil {
		values.Set(key, strconv.FormatFloat(*v, 'f', -1, 64))
	}
}
