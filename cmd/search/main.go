package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ikkim/dietprefs-client/config"
	"github.com/ikkim/dietprefs-client/internal/app/model"
	"github.com/ikkim/dietprefs-client/internal/app/repository"
	"github.com/ikkim/dietprefs-client/internal/app/service"
	"github.com/ikkim/dietprefs-client/internal/export"
	"github.com/ikkim/dietprefs-client/pkg/dietprefs"
	"github.com/ikkim/dietprefs-client/pkg/logger"
)

type options struct {
	user1, user2 string
	price1       float64
	price2       float64
	query        string
	sort         string
	lat, lng     float64
	pages        int
	xlsx         string
}

func main() {
	var opts options
	flag.StringVar(&opts.user1, "u1", "", "comma separated preferences for user 1 (wire or display names)")
	flag.StringVar(&opts.user2, "u2", "", "comma separated preferences for user 2")
	flag.Float64Var(&opts.price1, "p1", 0, "max price for user 1, 0 for none")
	flag.Float64Var(&opts.price2, "p2", 0, "max price for user 2, 0 for none")
	flag.StringVar(&opts.query, "q", "", "free text search")
	flag.StringVar(&opts.sort, "sort", "", "sort column: rating, distance or item_count (repeat a column to flip, e.g. rating,rating)")
	flag.Float64Var(&opts.lat, "lat", 0, "latitude")
	flag.Float64Var(&opts.lng, "lng", 0, "longitude")
	flag.IntVar(&opts.pages, "pages", 1, "number of result pages to load")
	flag.StringVar(&opts.xlsx, "xlsx", "", "write results to this .xlsx file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "warn", Format: "console", Output: os.Stderr})

	apiClient, err := dietprefs.NewClient(dietprefs.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
	})
	if err != nil {
		log.Fatal("Failed to create API client:", err)
	}
	repo := repository.NewVendorRepository(apiClient)

	ctx := context.Background()
	configService := service.NewConfigService(repo, nil)
	if err := configService.Refresh(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: using %s configuration: %v\n", configService.Source(), err)
	}
	display := service.NewDisplayService(configService)

	coordinator := service.NewSearchCoordinator(repo, display, service.CoordinatorConfig{PageSize: cfg.Search.PageSize})
	defer coordinator.Close()

	if err := applyOptions(coordinator, opts); err != nil {
		log.Fatal(err)
	}

	if err := coordinator.Search(ctx); err != nil {
		log.Fatal("Search failed:", err)
	}
	for i := 1; i < opts.pages; i++ {
		err := coordinator.LoadNextPage(ctx)
		if errors.Is(err, service.ErrNoMorePages) {
			break
		}
		if err != nil {
			log.Fatal("Failed to load next page:", err)
		}
	}

	snap := coordinator.Snapshot()
	printResults(snap)

	if opts.xlsx != "" {
		if err := writeXLSX(opts.xlsx, snap); err != nil {
			log.Fatal("Failed to write XLSX:", err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(snap.Vendors), opts.xlsx)
	}
}

func applyOptions(c *service.SearchCoordinator, opts options) error {
	profiles := []struct {
		slot  model.UserSlot
		prefs string
		price float64
	}{
		{model.User1, opts.user1, opts.price1},
		{model.User2, opts.user2, opts.price2},
	}
	for _, p := range profiles {
		for _, name := range splitList(p.prefs) {
			pref, ok := model.PreferenceByWireName(name)
			if !ok {
				pref, ok = model.PreferenceFromDisplay(name)
			}
			if !ok {
				return fmt.Errorf("unknown preference %q", name)
			}
			if _, err := c.TogglePreference(p.slot, pref); err != nil {
				return fmt.Errorf("%s: %w", p.slot, err)
			}
		}
		if p.price > 0 {
			price := p.price
			if err := c.SetMaxPrice(p.slot, &price); err != nil {
				return fmt.Errorf("%s: %w", p.slot, err)
			}
		}
	}

	if opts.lat != 0 || opts.lng != 0 {
		c.SetLocation(&model.Location{Latitude: opts.lat, Longitude: opts.lng})
	}
	c.SetSearchText(opts.query)

	for _, col := range splitList(opts.sort) {
		column, err := model.ParseSortColumn(col)
		if err != nil {
			return err
		}
		c.SetSortColumn(column)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printResults(snap service.SessionSnapshot) {
	if snap.User1.DisplayText != "" {
		fmt.Printf("User 1: %s\n", snap.User1.DisplayText)
	}
	if snap.User2.DisplayText != "" {
		fmt.Printf("User 2: %s\n", snap.User2.DisplayText)
	}
	fmt.Printf("%d results, showing %d (page %d of %d, sorted by %s %s)\n\n",
		snap.TotalResults, len(snap.Vendors), snap.CurrentPage, snap.TotalPages, snap.Sort.Column, snap.Sort.Direction)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VENDOR\tU1\tU2\tMILES\tRATING\tITEMS")
	for _, v := range snap.Vendors {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%s\t%d\n",
			v.VendorName, v.User1Count, v.User2Count, v.DistanceMiles, v.QuerySpecificRatingString, v.CombinedRelevantItemCount)
	}
	tw.Flush()
}

func writeXLSX(path string, snap service.SessionSnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return export.NewXLSXExporter().Export(f, export.Workbook{
		User1Filters: snap.User1.DisplayText,
		User2Filters: snap.User2.DisplayText,
		SearchQuery:  snap.SearchQuery,
		Sort:         snap.Sort,
		TotalResults: snap.TotalResults,
		Vendors:      snap.Vendors,
	})
}
