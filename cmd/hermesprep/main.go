// Command hermesprep prepares tabular datasets for model training and
// reverts prepared numeric columns to their original scale.
//
//	hermesprep prepare --job job.yaml --set normalization_method=MINMAX
//	hermesprep revert --artifact run.yaml --input prepared.csv --column age
//	hermesprep describe --artifact run.yaml
//	hermesprep image --input cat.png --method CHANNEL_WISE
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/ezoic/hermes/core/enums"
	"github.com/ezoic/hermes/dataset"
	"github.com/ezoic/hermes/imageprep"
	"github.com/ezoic/hermes/pipeline"
	"github.com/ezoic/hermes/pkg/errors"
	"github.com/ezoic/hermes/pkg/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.LogError(err, "hermesprep failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	var logLevel string

	root := &cobra.Command{
		Use:           "hermesprep",
		Short:         "Prepare tabular datasets for statistical and ML models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
				return errors.Wrapf(err, "failed to load %s", envFile)
			}
			level := os.Getenv(envLogLevel)
			if cmd.Flags().Changed("log-level") || level == "" {
				level = logLevel
			}
			log.SetupLogger(level)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before running")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newPrepareCmd(),
		newRevertCmd(),
		newDescribeCmd(),
		newImageCmd(),
	)
	return root
}

func componentLogger() log.Logger {
	return log.GetLoggerWithName("hermesprep")
}

func newPrepareCmd() *cobra.Command {
	var (
		jobPath     string
		sets        []string
		output      string
		artifact    string
		plotsDir    string
		strict      bool
		workers     int
		printConfig bool
	)

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Prepare a dataset described by a job file",
		Long: `Load the raw dataset named by the job file, compute column statistics,
impute, normalize and encode, then write the prepared CSV and the run artifact.

Settings are applied in order: job file, environment (HERMES_STRICT,
HERMES_WORKERS, HERMES_DSN, HERMES_LOG_LEVEL), flags, then --set overrides of
the metadata fields.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := LoadJob(jobPath)
			if err != nil {
				return err
			}
			if err := job.ApplyEnv(os.Getenv); err != nil {
				return err
			}
			if cmd.Flags().Changed("strict") {
				job.Strict = strict
			}
			if cmd.Flags().Changed("workers") {
				job.Workers = workers
			}
			if output != "" {
				job.Output.Data = output
			}
			if artifact != "" {
				job.Output.Artifact = artifact
			}
			if plotsDir != "" {
				job.Output.Plots = plotsDir
			}
			if err := job.ApplyOverrides(sets); err != nil {
				return err
			}
			if !cmd.Flags().Changed("log-level") && os.Getenv(envLogLevel) == "" {
				log.SetupLogger(job.LogLevel)
			}

			if printConfig {
				md := job.Pipeline.Metadata()
				_, err := io.WriteString(cmd.OutOrStdout(), md.Summary())
				return err
			}
			return runPrepare(cmd.Context(), cmd.OutOrStdout(), job)
		},
	}

	cmd.Flags().StringVar(&jobPath, "job", "", "Job file (YAML)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Override a metadata field, e.g. normalization_method=MINMAX")
	cmd.Flags().StringVar(&output, "output", "", "Prepared CSV path (overrides output.data)")
	cmd.Flags().StringVar(&artifact, "artifact", "", "Artifact path, .json or .yaml (overrides output.artifact)")
	cmd.Flags().StringVar(&plotsDir, "plots", "", "Directory for before/after histograms of numeric columns")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on unknown imputation or normalization methods")
	cmd.Flags().IntVar(&workers, "workers", 0, "Columns processed concurrently (0 uses GOMAXPROCS)")
	cmd.Flags().BoolVar(&printConfig, "print-config", false, "Print the resolved configuration and exit")
	_ = cmd.MarkFlagRequired("job")

	return cmd
}

func runPrepare(ctx context.Context, stdout io.Writer, job *Job) error {
	logger := componentLogger()

	ds, err := job.LoadDataset(ctx)
	if err != nil {
		return err
	}
	logger.Info("Dataset loaded", log.OperationKey, log.OperationLoad, log.RowsKey, ds.Rows(), log.ColumnsKey, ds.Len())

	prep, err := pipeline.New(enums.Regression, append(job.Options(), pipeline.WithLogger(logger))...)
	if err != nil {
		return err
	}
	res, err := prep.Prepare(ds, job.Pipeline)
	if err != nil {
		return err
	}

	if job.Output.Data != "" {
		if err := writeCSVFile(job.Output.Data, res.Data); err != nil {
			return err
		}
	} else if err := dataset.WriteCSV(stdout, res.Data); err != nil {
		return err
	}

	if job.Output.Artifact != "" {
		if err := prep.SaveArtifact(job.Output.Artifact); err != nil {
			return err
		}
	}

	if job.Output.Plots != "" {
		raw := make(map[string][]float64, len(job.Pipeline.NumericalColumns))
		prepared := make(map[string][]float64, len(job.Pipeline.NumericalColumns))
		for _, name := range job.Pipeline.NumericalColumns {
			raw[name], _ = ds.Numeric(name)
			prepared[name], _ = res.Data.Numeric(name)
		}
		paths, err := saveHistograms(job.Output.Plots, job.Pipeline.NumericalColumns, raw, prepared)
		if err != nil {
			return err
		}
		logger.Info("Histograms saved", "count", len(paths), "dir", job.Output.Plots)
	}
	return nil
}

func newRevertCmd() *cobra.Command {
	var (
		artifactPath string
		input        string
		rawPath      string
		output       string
		columns      []string
	)

	cmd := &cobra.Command{
		Use:   "revert",
		Short: "Map prepared numeric columns back to their original scale",
		Long: `Revert numeric columns of a prepared CSV with the statistics stored in a
run artifact. L1 and L2 runs also need --raw, a CSV holding the original
values of the rows that were kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prep, err := pipeline.Load(artifactPath, pipeline.WithLogger(componentLogger()))
			if err != nil {
				return err
			}
			md, _ := prep.Metadata()
			if len(columns) == 0 {
				columns = md.NumericalColumns
			}
			method := md.NormalizationMethod
			schema := dataset.NewSchema(columns, nil)

			ds, err := dataset.LoadCSV(input, schema)
			if err != nil {
				return err
			}
			var raw *dataset.Dataset
			if method.NeedsRaw() {
				if rawPath == "" {
					return errors.NewUnsupportedNormalizationError(strings.Join(columns, ","), method.String(),
						"reverting needs --raw")
				}
				if raw, err = dataset.LoadCSV(rawPath, schema); err != nil {
					return err
				}
			}

			out := dataset.New()
			for _, name := range columns {
				values, err := ds.Numeric(name)
				if err != nil {
					return err
				}
				var reverted []float64
				if raw != nil {
					original, err := raw.Numeric(name)
					if err != nil {
						return err
					}
					reverted, err = prep.RevertWithRaw(values, original, name, method)
					if err != nil {
						return err
					}
				} else if reverted, err = prep.Revert(values, name, method); err != nil {
					return err
				}
				if err := out.AddNumeric(name, reverted); err != nil {
					return err
				}
			}

			if output == "" {
				return dataset.WriteCSV(cmd.OutOrStdout(), out)
			}
			return writeCSVFile(output, out)
		},
	}

	cmd.Flags().StringVar(&artifactPath, "artifact", "", "Run artifact written by prepare")
	cmd.Flags().StringVar(&input, "input", "", "Prepared CSV")
	cmd.Flags().StringVar(&rawPath, "raw", "", "Original CSV (L1 and L2 only)")
	cmd.Flags().StringVar(&output, "output", "", "Output CSV (default stdout)")
	cmd.Flags().StringSliceVar(&columns, "column", nil, "Columns to revert (default all numeric columns)")
	_ = cmd.MarkFlagRequired("artifact")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func newDescribeCmd() *cobra.Command {
	var artifactPath string

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the metadata and statistics stored in a run artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, spec, err := pipeline.LoadArtifact(artifactPath)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Run: %s (%s)\n", spec.RunID, spec.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprint(w, a.Metadata.Summary())
			for _, name := range a.Metadata.NumericalColumns {
				st := a.Numeric[name]
				if st == nil {
					continue
				}
				fmt.Fprintf(w, "  %-16s mean=%.4g std=%.4g min=%.4g max=%.4g median=%.4g\n",
					name, st.Mean, st.Std, st.Min, st.Max, st.Median)
			}
			for _, name := range a.Metadata.CategoricalColumns {
				if st := a.Categorical[name]; st != nil {
					fmt.Fprintf(w, "  %-16s %d categories: %s\n", name, st.Len(), strings.Join(st.Categories, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&artifactPath, "artifact", "", "Run artifact")
	_ = cmd.MarkFlagRequired("artifact")
	return cmd
}

func newImageCmd() *cobra.Command {
	var (
		input         string
		method        string
		width, height int
		bounds        []float64
	)

	cmd := &cobra.Command{
		Use:   "image",
		Short: "Normalize one image and print per-channel statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseImageMethod(method)
			if err != nil {
				return err
			}
			if len(bounds) != 2 {
				return errors.NewValidationError("range", "expected two values", bounds)
			}

			src, err := imageprep.Open(input)
			if err != nil {
				return err
			}
			if width > 0 || height > 0 {
				if src, err = imageprep.Resize(src, width, height); err != nil {
					return err
				}
			}
			img, err := imageprep.Normalize(imageprep.FromImage(src), m, bounds[0], bounds[1])
			if err != nil {
				return err
			}

			h, w := img.Dims()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %dx%d, %d channels, %s\n", input, w, h, img.Channels(), m)
			means, mins, maxs := img.Stats()
			for c := range means {
				fmt.Fprintf(out, "  channel %d: mean=%.4f min=%.4f max=%.4f\n", c, means[c], mins[c], maxs[c])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "PNG or JPEG image")
	cmd.Flags().StringVar(&method, "method", "RANGE_NORM", "RANGE_NORM, MINMAX or CHANNEL_WISE")
	cmd.Flags().IntVar(&width, "width", 0, "Resize width")
	cmd.Flags().IntVar(&height, "height", 0, "Resize height")
	cmd.Flags().Float64SliceVar(&bounds, "range", []float64{0, 1}, "Target range for MINMAX")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func parseImageMethod(s string) (imageprep.Method, error) {
	for _, m := range []imageprep.Method{imageprep.RangeNorm, imageprep.MinMaxNorm, imageprep.ChannelWiseNorm} {
		if strings.EqualFold(strings.ReplaceAll(s, "-", "_"), m.String()) {
			return m, nil
		}
	}
	return 0, errors.NewValidationError("method", "unknown image normalization", s)
}

func writeCSVFile(path string, ds *dataset.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	if err := dataset.WriteCSV(f, ds); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
