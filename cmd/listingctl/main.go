package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/app"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/config"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/schema"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/utils"
)

var (
	// Wired components, opened before any subcommand runs
	application *app.App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "listingctl",
		Short: "Operator tool for the federated listing search",
		Long:  `Inspect source schemas, manage learned column mappings and run one-shot searches`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			application, err = app.New(cmd.Context(), cfg)
			return err
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(createSourcesCmd())
	rootCmd.AddCommand(createSchemaCmd())
	rootCmd.AddCommand(createMappingsCmd())
	rootCmd.AddCommand(createSearchCmd())

	err := rootCmd.ExecuteContext(context.Background())
	// Close flushes the search log, so it runs on the error path too.
	if application != nil {
		application.Close()
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// createSourcesCmd creates a command to test source connectivity
func createSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Ping every configured source",
		Run: func(cmd *cobra.Command, args []string) {
			for _, status := range application.Admin.SourceStatus(cmd.Context()) {
				target := "-"
				if sc, ok := application.Config.Source(status.Source); ok {
					target = fmt.Sprintf("%s:%d/%s", sc.Host, sc.Port, sc.Database)
					if sc.DSN != "" {
						target = "(dsn)"
					}
				}
				if status.Healthy {
					fmt.Printf("%-12s %-32s ok\n", status.Source, target)
				} else {
					fmt.Printf("%-12s %-32s unreachable: %s\n", status.Source, target, status.Error)
				}
			}
		},
	}
}

func createSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [source]",
		Short: "List the tables and columns of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := application.Admin.Schema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tables := make([]string, 0, len(resp.Tables))
			for table := range resp.Tables {
				tables = append(tables, table)
			}
			sort.Strings(tables)
			for _, table := range tables {
				fmt.Printf("%s\n", table)
				for _, column := range resp.Tables[table] {
					fmt.Printf("  %s\n", column)
				}
			}
			return nil
		},
	}
}

func createMappingsCmd() *cobra.Command {
	mappingsCmd := &cobra.Command{
		Use:   "mappings",
		Short: "Show or repair learned column mappings",
	}

	mappingsCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the column mapping document",
		Run: func(cmd *cobra.Command, args []string) {
			printMappings(application.Admin.Mappings().Mappings)
		},
	})

	mappingsCmd.AddCommand(&cobra.Command{
		Use:   "resolve [source] [column]",
		Short: "Match a missing column against the source's live columns and store the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			match, err := application.Admin.ResolveColumn(cmd.Context(), args[0], args[1])
			var perr *schema.PersistenceError
			switch {
			case errors.As(err, &perr):
				log.Printf("⚠️  %v", perr)
			case err != nil:
				return err
			}
			fmt.Printf("%s.%s -> %s\n", args[0], args[1], match)
			return nil
		},
	})

	return mappingsCmd
}

func printMappings(doc map[string]map[string]string) {
	sources := make([]string, 0, len(doc))
	for src := range doc {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	for _, src := range sources {
		fmt.Println(src)
		logicals := make([]string, 0, len(doc[src]))
		for logical := range doc[src] {
			logicals = append(logicals, logical)
		}
		sort.Strings(logicals)
		for _, logical := range logicals {
			fmt.Printf("  %-20s %s\n", logical, doc[src][logical])
		}
	}
}

func createSearchCmd() *cobra.Command {
	var (
		name, city, location, propertyType string
		minPrice, maxPrice                 string
		minArea, maxArea                   string
		minRooms                           int
		balcony, hideDuplicates            bool
		sortOrder                          string
		limit                              int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a federated search and print the JSON response",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := &model.SearchFilters{HasBalcony: balcony}
			for _, f := range []struct {
				value string
				dst   **string
			}{
				{name, &filters.PropertyName},
				{city, &filters.City},
				{location, &filters.Location},
				{propertyType, &filters.PropertyType},
			} {
				if v := strings.TrimSpace(f.value); v != "" {
					*f.dst = &v
				}
			}

			var err error
			if filters.PriceMin, err = optional(minPrice, utils.ParseINRPrice); err != nil {
				return fmt.Errorf("--min-price: %w", err)
			}
			if filters.PriceMax, err = optional(maxPrice, utils.ParseINRPrice); err != nil {
				return fmt.Errorf("--max-price: %w", err)
			}
			if filters.AreaMin, err = optional(minArea, utils.ParseAreaSqft); err != nil {
				return fmt.Errorf("--min-area: %w", err)
			}
			if filters.AreaMax, err = optional(maxArea, utils.ParseAreaSqft); err != nil {
				return fmt.Errorf("--max-area: %w", err)
			}
			if cmd.Flags().Changed("min-rooms") {
				filters.RoomsMin = &minRooms
			}

			resp, err := application.Search.Search(cmd.Context(), &model.SearchRequest{
				Filters: filters,
				Options: &model.SearchOptions{HideDuplicates: hideDuplicates, Sort: sortOrder, Limit: limit},
			})
			if err != nil {
				return err
			}

			out := json.NewEncoder(os.Stdout)
			out.SetIndent("", "  ")
			return out.Encode(resp)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "property name contains")
	flags.StringVar(&city, "city", "", "city contains")
	flags.StringVar(&location, "location", "", "location contains")
	flags.StringVar(&propertyType, "type", "", "property type contains")
	flags.StringVar(&minPrice, "min-price", "", `minimum price, e.g. "50 L" or "1.2 Cr"`)
	flags.StringVar(&maxPrice, "max-price", "", "maximum price")
	flags.StringVar(&minArea, "min-area", "", `minimum area, e.g. "1000 sqft"`)
	flags.StringVar(&maxArea, "max-area", "", "maximum area")
	flags.IntVar(&minRooms, "min-rooms", 0, "minimum number of rooms")
	flags.BoolVar(&balcony, "balcony", false, "only listings with a balcony")
	flags.BoolVar(&hideDuplicates, "hide-duplicates", false, "remove cross-source duplicates")
	flags.StringVar(&sortOrder, "sort", "", "price_desc, price_asc or area_desc")
	flags.IntVar(&limit, "limit", 0, "maximum number of results")
	return cmd
}

func optional(value string, parse func(string) (float64, error)) (*float64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	v, err := parse(value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
