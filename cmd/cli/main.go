package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fellingdate/adapters/catalog"
	"fellingdate/adapters/excel"
	"fellingdate/adapters/fh"
	"fellingdate/adapters/report"
	"fellingdate/app"
	"fellingdate/internal/config"
)

// rootOptions are shared across subcommands.
type rootOptions struct {
	swData   string
	densFun  string
	credMass float64
	swFile   string
	swSep    string
	reject   bool
}

func main() {
	_ = godotenv.Load()

	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "fellingdate",
		Short: "Felling-date estimation from dated tree-ring series",
	}
	rootCmd.PersistentFlags().StringVar(&opts.swData, "sw-data", "", "sapwood dataset name (default: catalog default)")
	rootCmd.PersistentFlags().StringVar(&opts.densFun, "densfun", "lognormal", "density family: lognormal, normal, weibull, gamma")
	rootCmd.PersistentFlags().Float64Var(&opts.credMass, "cred-mass", 0.954, "credible mass for the highest-density interval")
	rootCmd.PersistentFlags().StringVar(&opts.swFile, "sw-file", "", "user-supplied sapwood dataset (two-column delimited text)")
	rootCmd.PersistentFlags().StringVar(&opts.swSep, "sw-sep", ",", "field separator for --sw-file (',' or ';')")
	rootCmd.PersistentFlags().BoolVar(&opts.reject, "reject-unknown", false, "reject unknown dataset names instead of falling back")

	rootCmd.AddCommand(
		newIntervalCmd(opts),
		newCombineCmd(opts),
		newSumCmd(opts),
		newDatasetsCmd(opts),
		newConvertCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRegistry loads the built-in catalog plus any user dataset.
func buildRegistry(opts *rootOptions) (*catalog.Registry, error) {
	registry := catalog.New()
	if opts.swFile != "" {
		sep := ','
		if opts.swSep == ";" {
			sep = ';'
		}
		ds, err := catalog.LoadCSV(opts.swFile, sep)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(ds); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func estimatorOptions(opts *rootOptions) app.EstimatorOptions {
	policy := config.PolicyFallback
	if opts.reject {
		policy = config.PolicyReject
	}
	return app.EstimatorOptions{OnUnknownDataset: policy}
}

func newIntervalCmd(opts *rootOptions) *cobra.Command {
	var nSapwood float64
	var last int
	var noHDI bool

	cmd := &cobra.Command{
		Use:   "interval",
		Short: "Estimate the felling-date interval for a single series",
		Long: `Estimate the probable felling-date range for one series from its
observed sapwood count and the calendar year of its last ring.

Example: fellingdate interval --n-sapwood 10 --last 1234 --sw-data Wazny_1990`,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := buildRegistry(opts)
			if err != nil {
				return err
			}
			estimator := app.NewIntervalEstimator(registry, estimatorOptions(opts))

			result, err := estimator.Estimate(app.IntervalRequest{
				SeriesID: "series",
				NSapwood: &nSapwood,
				Last:     last,
				SWData:   opts.swData,
				DensFun:  opts.densFun,
				CredMass: opts.credMass,
				HDI:      !noHDI,
			})
			if err != nil {
				return err
			}

			fmt.Print(report.Table(report.IntervalRows([]*app.IntervalResult{result})))
			for _, d := range result.Diagnostics {
				fmt.Fprintln(os.Stderr, d)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&nSapwood, "n-sapwood", 0, "observed sapwood-ring count")
	cmd.Flags().IntVar(&last, "last", 0, "calendar year of the last dated ring (0 for relative)")
	cmd.Flags().BoolVar(&noHDI, "no-hdi", false, "report the full PMF without interval bounds")
	cmd.MarkFlagRequired("n-sapwood")
	return cmd
}

// seriesTableFlags bind the configurable column-name mapping.
func seriesTableFlags(cmd *cobra.Command, mapping *excel.ColumnMapping) {
	cmd.Flags().StringVar(&mapping.SeriesID, "col-series", mapping.SeriesID, "series-identifier column name")
	cmd.Flags().StringVar(&mapping.Last, "col-last", mapping.Last, "last-ring-year column name")
	cmd.Flags().StringVar(&mapping.NSapwood, "col-sapwood", mapping.NSapwood, "sapwood-count column name")
	cmd.Flags().StringVar(&mapping.WaneyEdge, "col-waneyedge", mapping.WaneyEdge, "waney-edge column name")
}

func newCombineCmd(opts *rootOptions) *cobra.Command {
	var threshold float64
	mapping := excel.DefaultMapping()

	cmd := &cobra.Command{
		Use:   "combine [series-table]",
		Short: "Combine related series into one common felling-date estimate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := excel.NewSeriesReader(args[0], mapping).Read()
			if err != nil {
				return err
			}
			registry, err := buildRegistry(opts)
			if err != nil {
				return err
			}
			combiner := app.NewSeriesCombiner(registry, estimatorOptions(opts))

			model, err := combiner.Combine(series, app.CombineOptions{
				SWData:    opts.swData,
				DensFun:   opts.densFun,
				CredMass:  opts.credMass,
				Threshold: threshold,
			})
			if err != nil {
				return err
			}

			fmt.Print(report.Table(report.CombineRows(model)))
			for _, d := range model.Diagnostics {
				fmt.Fprintln(os.Stderr, d)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", app.DefaultAgreementThreshold, "critical agreement-index percentage")
	seriesTableFlags(cmd, &mapping)
	return cmd
}

func newSumCmd(opts *rootOptions) *cobra.Command {
	mapping := excel.DefaultMapping()

	cmd := &cobra.Command{
		Use:   "sum [series-table]",
		Short: "Sum independent felling-date distributions into an SPD curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := excel.NewSeriesReader(args[0], mapping).Read()
			if err != nil {
				return err
			}
			registry, err := buildRegistry(opts)
			if err != nil {
				return err
			}
			aggregator := app.NewSPDAggregator(registry, estimatorOptions(opts))

			summed, err := aggregator.Sum(series, app.SPDOptions{SWData: opts.swData, DensFun: opts.densFun})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "YEAR\tDENSITY")
			for i, year := range summed.Years {
				fmt.Fprintf(w, "%d\t%.6f\n", year, summed.Density[i])
			}
			w.Flush()
			fmt.Printf("series contributing: %d, curve total: %.3f\n", summed.N, summed.Total())
			for _, d := range summed.Diagnostics {
				fmt.Fprintln(os.Stderr, d)
			}
			return nil
		},
	}

	seriesTableFlags(cmd, &mapping)
	return cmd
}

func newDatasetsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the registered sapwood datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := buildRegistry(opts)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tREGION\tN\tMIN\tMAX\tMEAN\tMEDIAN")
			for _, name := range registry.Names() {
				ds, err := registry.Lookup(name)
				if err != nil {
					return err
				}
				summary, err := catalog.Summarize(ds)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.1f\t%.1f\n",
					summary.Name, summary.Region, summary.SampleSize,
					summary.Min, summary.Max, summary.Mean, summary.Median)
			}
			return w.Flush()
		},
	}
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [heidelberg-file]",
		Short: "Convert a Heidelberg ring-width file to CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := fh.ReadFile(args[0])
			if err != nil {
				return err
			}
			return fh.WriteCSV(os.Stdout, series)
		},
	}
}
