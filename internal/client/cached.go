package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/jmoreau/nutritrack/internal/cache"
	"github.com/jmoreau/nutritrack/internal/listquery"
	"github.com/jmoreau/nutritrack/internal/models"
	"github.com/jmoreau/nutritrack/internal/service"
)

const (
	alimentsEntity    = "aliments"
	preferencesEntity = "preferences"
)

// CachedClient layers the query cache over the raw accessor. Reads are
// stale-while-revalidate; catalog writes update every cached page
// optimistically and roll back if the server rejects them.
type CachedClient struct {
	api   *Client
	cache *cache.QueryCache
}

// NewCached wraps a Client with a query cache.
func NewCached(api *Client, queryCache *cache.QueryCache) *CachedClient {
	return &CachedClient{api: api, cache: queryCache}
}

// Raw exposes the underlying accessor for operations that bypass the cache.
func (c *CachedClient) Raw() *Client { return c.api }

// ListAliments returns a catalog page, cached per parameterization.
func (c *CachedClient) ListAliments(ctx context.Context, p listquery.Params) (models.AlimentPage, error) {
	return cache.Fetch(ctx, c.cache, alimentsEntity, p,
		func(ctx context.Context) (models.AlimentPage, error) {
			return c.api.ListAliments(ctx, p)
		})
}

// CreateAliment adds an entry. Every cached page showing the first page of
// an unfiltered view gains the new row immediately; a server rejection
// restores the previous pages.
func (c *CachedClient) CreateAliment(ctx context.Context, input service.AlimentInput) error {
	optimistic := models.Aliment{
		ID:              uuid.New(),
		Name:            input.Name,
		Category:        input.Category,
		KcalPer100g:     input.KcalPer100g,
		ProteinGPer100g: input.ProteinGPer100g,
		CarbsGPer100g:   input.CarbsGPer100g,
		FatGPer100g:     input.FatGPer100g,
	}
	return cache.Mutate(ctx, c.cache, alimentsEntity,
		func(page models.AlimentPage) models.AlimentPage {
			page.Items = append([]models.Aliment{optimistic}, page.Items...)
			page.Total++
			page.PageCount = listquery.PageCount(page.Total, page.PageSize)
			return page
		},
		func(ctx context.Context) error {
			_, err := c.api.CreateAliment(ctx, input)
			return err
		})
}

// UpdateAliment replaces an entry in place in every cached page holding it.
func (c *CachedClient) UpdateAliment(ctx context.Context, id uuid.UUID, input service.AlimentInput) error {
	return cache.Mutate(ctx, c.cache, alimentsEntity,
		func(page models.AlimentPage) models.AlimentPage {
			for i := range page.Items {
				if page.Items[i].ID == id {
					page.Items[i].Name = input.Name
					page.Items[i].Category = input.Category
					page.Items[i].KcalPer100g = input.KcalPer100g
					page.Items[i].ProteinGPer100g = input.ProteinGPer100g
					page.Items[i].CarbsGPer100g = input.CarbsGPer100g
					page.Items[i].FatGPer100g = input.FatGPer100g
				}
			}
			return page
		},
		func(ctx context.Context) error {
			_, err := c.api.UpdateAliment(ctx, id, input)
			return err
		})
}

// DeleteAliment drops an entry from every cached page holding it.
func (c *CachedClient) DeleteAliment(ctx context.Context, id uuid.UUID) error {
	return cache.Mutate(ctx, c.cache, alimentsEntity,
		func(page models.AlimentPage) models.AlimentPage {
			kept := page.Items[:0]
			for _, item := range page.Items {
				if item.ID != id {
					kept = append(kept, item)
				}
			}
			if len(kept) < len(page.Items) {
				page.Total--
				if page.Total < 0 {
					page.Total = 0
				}
				page.PageCount = listquery.PageCount(page.Total, page.PageSize)
			}
			page.Items = kept
			return page
		},
		func(ctx context.Context) error {
			return c.api.DeleteAliment(ctx, id)
		})
}

// Preferences returns the cached preference map.
func (c *CachedClient) Preferences(ctx context.Context) (map[string]string, error) {
	return cache.Fetch(ctx, c.cache, preferencesEntity, nil,
		func(ctx context.Context) (map[string]string, error) {
			return c.api.Preferences(ctx)
		})
}

// SetPreference stores a preference state, updating the cached map
// optimistically.
func (c *CachedClient) SetPreference(ctx context.Context, alimentID uuid.UUID, preference string) error {
	return cache.Mutate(ctx, c.cache, preferencesEntity,
		func(m map[string]string) map[string]string {
			if m == nil {
				m = make(map[string]string)
			}
			m[alimentID.String()] = preference
			return m
		},
		func(ctx context.Context) error {
			return c.api.SetPreference(ctx, alimentID, preference)
		})
}

// ClearPreference removes a preference, updating the cached map
// optimistically.
func (c *CachedClient) ClearPreference(ctx context.Context, alimentID uuid.UUID) error {
	return cache.Mutate(ctx, c.cache, preferencesEntity,
		func(m map[string]string) map[string]string {
			delete(m, alimentID.String())
			return m
		},
		func(ctx context.Context) error {
			return c.api.ClearPreference(ctx, alimentID)
		})
}
