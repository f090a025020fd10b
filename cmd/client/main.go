// Command-line client for the nutrition API. Lists the food catalog with
// the same filtering, sorting, and pagination the web views use, through
// the in-process query cache.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/jmoreau/nutritrack/internal/cache"
	"github.com/jmoreau/nutritrack/internal/client"
	"github.com/jmoreau/nutritrack/internal/listquery"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "API server base URL")
		token     = flag.String("token", os.Getenv("NUTRITRACK_TOKEN"), "bearer token")
		email     = flag.String("email", "", "login email (alternative to -token)")
		password  = flag.String("password", "", "login password")
		q         = flag.String("q", "", "search text")
		category  = flag.String("category", "", "category filter")
		sortBy    = flag.String("sort", listquery.DefaultSortBy, "sort column")
		sortDir   = flag.String("dir", listquery.DefaultSortDir, "sort direction (asc|desc)")
		page      = flag.Int("page", listquery.DefaultPage, "page number")
		pageSize  = flag.Int("page-size", listquery.DefaultPageSize, "page size (10|20|50)")
	)
	flag.Parse()

	ctx := context.Background()
	api := client.New(*serverURL, client.WithToken(*token))

	if *token == "" {
		if *email == "" || *password == "" {
			log.Fatal("either -token or -email/-password is required")
		}
		if err := api.Login(ctx, *email, *password); err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}

	cached := client.NewCached(api, cache.New(cache.NewMemoryStore()))

	params := listquery.Default()
	params.Q = *q
	params.Category = *category
	if listquery.ValidSortColumn(*sortBy) {
		params.SortBy = *sortBy
	}
	if *sortDir == "asc" || *sortDir == "desc" {
		params.SortDir = *sortDir
	}
	if *page >= 1 {
		params.Page = *page
	}
	for _, allowed := range listquery.PageSizes {
		if *pageSize == allowed {
			params.PageSize = *pageSize
			break
		}
	}

	result, err := cached.ListAliments(ctx, params)
	if err != nil {
		log.Fatalf("failed to list aliments: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tKCAL\tPROT\tCARB\tFAT")
	for _, a := range result.Items {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\n",
			a.Name, a.Category, a.KcalPer100g, a.ProteinGPer100g, a.CarbsGPer100g, a.FatGPer100g)
	}
	w.Flush()

	fmt.Printf("\npage %d/%d, %d entries\n", result.Page, result.PageCount, result.Total)
}
