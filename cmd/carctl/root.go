package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/davicafu/carcatalog/internal/catalog"
	"github.com/davicafu/carcatalog/internal/catalog/graphql"
	"github.com/davicafu/carcatalog/internal/config"
	"github.com/davicafu/carcatalog/pkg/logger"
)

var errNotCreated = errors.New("car was not created")

type rootOptions struct {
	apiURL   string
	logLevel string
	timeout  time.Duration
}

// newRootCmd construye el árbol de comandos. Los flags viven en el closure
// para que los tests puedan crear árboles independientes.
func newRootCmd() *cobra.Command {
	cfg := config.LoadConfig()
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "carctl",
		Short:         "Browse and extend the car catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", cfg.CatalogAPIURL, "GraphQL endpoint (or set CATALOG_API_URL)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	root.AddCommand(newListCmd(opts, cfg.DefaultPageSize))
	root.AddCommand(newCreateCmd(opts))
	return root
}

// newState crea un CarsState contra la API configurada.
func (o *rootOptions) newState(extra ...catalog.Option) (*catalog.CarsState, error) {
	log, err := logger.New(o.logLevel)
	if err != nil {
		return nil, err
	}
	client := graphql.NewClient(o.apiURL, &http.Client{Timeout: o.timeout}, log)
	return catalog.NewCarsState(client, append([]catalog.Option{catalog.WithLogger(log)}, extra...)...)
}

type listOptions struct {
	make, model, color, year string
	sortBy, sortDir          string
	page, pageSize, width    int
}

func newListCmd(root *rootOptions, defaultPageSize int) *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cars with filters, sorting and pagination",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout(), root, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.make, "make", "", "Filter by make (substring, case-insensitive)")
	f.StringVar(&opts.model, "model", "", "Filter by model (substring, case-insensitive)")
	f.StringVar(&opts.color, "color", "", "Filter by color (substring, case-insensitive)")
	f.StringVar(&opts.year, "year", "", "Filter by exact year")
	f.StringVar(&opts.sortBy, "sort-by", string(catalog.SortByMake), "Sort key: make, model, year or color")
	f.StringVar(&opts.sortDir, "sort-dir", string(catalog.SortAsc), "Sort direction: asc or desc")
	f.IntVar(&opts.page, "page", 1, "Page number")
	f.IntVar(&opts.pageSize, "page-size", defaultPageSize, "Items per page")
	f.IntVar(&opts.width, "width", 1280, "Viewport width used to pick the image variant")
	return cmd
}

func runList(ctx context.Context, out io.Writer, root *rootOptions, opts *listOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	state, err := root.newState(
		catalog.WithFilters(catalog.FilterOptions{
			Make:    opts.make,
			Model:   opts.model,
			Color:   opts.color,
			Year:    opts.year,
			SortBy:  catalog.SortKey(opts.sortBy),
			SortDir: catalog.SortDirection(opts.sortDir),
		}),
		catalog.WithPageSize(opts.pageSize),
	)
	if err != nil {
		return err
	}
	defer state.Close()
	state.SetViewportWidth(opts.width)

	if err := state.Refetch(ctx); err != nil {
		return fmt.Errorf("list cars: %w", err)
	}
	// La página pedida solo se conoce tras saber el total.
	if opts.page != 1 {
		state.SetPage(opts.page)
		if state.Page() != 1 {
			if err := state.Refetch(ctx); err != nil {
				return fmt.Errorf("list cars: %w", err)
			}
		}
	}

	return printCars(out, state)
}

func printCars(out io.Writer, state *catalog.CarsState) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMAKE\tMODEL\tYEAR\tCOLOR\tIMAGE")
	for _, item := range state.CarsWithImage() {
		c := item.Car
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", c.ID, c.Make, c.Model, c.Year, c.Color, item.ImageURL)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	p := state.Pager()
	_, err := fmt.Fprintf(out, "%d-%d of %d items · page %d of %d · %s\n",
		p.Start, p.End, p.TotalCount, p.Page, p.TotalPages, state.Device())
	return err
}

func newCreateCmd(root *rootOptions) *cobra.Command {
	p := &catalog.CreateCarParams{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a new car to the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreate(cmd.Context(), cmd.OutOrStdout(), root, *p)
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Make, "make", "", "Make (required)")
	f.StringVar(&p.Model, "model", "", "Model (required)")
	f.StringVar(&p.Color, "color", "", "Color (required)")
	f.IntVar(&p.Year, "year", 0, "Year (required)")
	f.StringVar(&p.Mobile, "mobile", "", "Mobile image URL")
	f.StringVar(&p.Tablet, "tablet", "", "Tablet image URL")
	f.StringVar(&p.Desktop, "desktop", "", "Desktop image URL")
	return cmd
}

func runCreate(ctx context.Context, out io.Writer, root *rootOptions, p catalog.CreateCarParams) error {
	if ctx == nil {
		ctx = context.Background()
	}
	state, err := root.newState()
	if err != nil {
		return err
	}
	defer state.Close()

	car, ok := state.CreateCar(ctx, p)
	if !ok {
		if cerr := state.CreateError(); cerr != nil {
			return fmt.Errorf("%w: %w", errNotCreated, cerr)
		}
		if last := state.LastCreated(); last != nil {
			return fmt.Errorf("created %s but reloading the listing failed: %w", last.ID, state.Err())
		}
		return fmt.Errorf("%w: make, model and color are required and year must be valid", errNotCreated)
	}
	_, err = fmt.Fprintf(out, "created %s: %s %s (%d, %s)\n", car.ID, car.Make, car.Model, car.Year, car.Color)
	return err
}
