package main

import (
	"context"
	"fmt"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
)

const (
	usageErrorCode = 2
	ioErrorCode    = 74
)

// options holds the command line flags.
type options struct {
	numBins     int
	forceResize bool
	loadFrom    string
	outputFile  string
	field       int
	printJSON   bool
	statistics  bool
	noSummary   bool
	barWidth    int
	ignoreInput bool
	showDensity bool
	bandwidth   float64
	kernelName  string
	ruleName    string
	dbPath      string
	streamName  string
	configPath  string
	verbose     bool
}

func defaultOptions() options {
	return options{
		numBins:    10,
		field:      1,
		barWidth:   10,
		kernelName: "gaussian",
		ruleName:   "silverman",
		streamName: "default",
	}
}

var opts options

var rootCmd = &cobra.Command{
	Use:   "streamhist [FILE]",
	Short: "streaming histogram of a column of numbers",
	Long: `Builds a histogram with a bounded number of bins from the numbers in FILE
(or stdin), one value per line taken from a whitespace separated field.
The histogram can be loaded from and saved to a file (MessagePack unless
the extension is .json) or kept as a named stream in a badger store.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		input := ""
		if len(args) == 1 {
			input = args[0]
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		// Once interrupted, a second Ctrl-C kills the process even while
		// the input read is blocked.
		context.AfterFunc(ctx, stop)
		return run(ctx, &opts, input, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	defaults := defaultOptions()
	flags := rootCmd.Flags()
	flags.IntVarP(&opts.numBins, "bins", "b", defaults.numBins, "the number of bins")
	flags.BoolVarP(&opts.forceResize, "force-resize", "r", false,
		"resize a loaded histogram to the number of bins given by --bins")
	flags.StringVarP(&opts.loadFrom, "load-from", "l", "",
		"initialize the histogram from the file at `PATH`")
	flags.StringVarP(&opts.outputFile, "output-file", "o", "",
		"save the histogram to the file at `PATH`")
	flags.IntVarP(&opts.field, "field", "f", defaults.field,
		"use the nth whitespace separated field of every line, starting at 1")
	flags.BoolVarP(&opts.printJSON, "json", "j", false, "print the histogram as JSON")
	flags.BoolVarP(&opts.statistics, "statistics", "s", false, "print summary statistics")
	flags.BoolVarP(&opts.noSummary, "no-summary", "n", false, "do not print the histogram bars")
	flags.IntVarP(&opts.barWidth, "width", "w", defaults.barWidth, "maximal width of the histogram bars")
	flags.BoolVarP(&opts.ignoreInput, "ignore-input", "i", false,
		"do not update the histogram (ignore FILE and stdin)")
	flags.BoolVarP(&opts.showDensity, "density", "d", false, "plot a kernel density estimate")
	flags.Float64Var(&opts.bandwidth, "bandwidth", 0,
		"kernel bandwidth for --density (0 picks one with --rule)")
	flags.StringVar(&opts.kernelName, "kernel", defaults.kernelName,
		"kernel for --density: gaussian, triangular, epanechnikov or uniform")
	flags.StringVar(&opts.ruleName, "rule", defaults.ruleName,
		"bandwidth rule for --density: silverman, scott, fd, sturges, binwidth or auto")
	flags.StringVar(&opts.dbPath, "db", "", "keep the histogram in the badger store at `DIR`")
	flags.StringVar(&opts.streamName, "stream", defaults.streamName, "stream name within --db")
	flags.StringVar(&opts.configPath, "config", "", "YAML store config `FILE`")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
}

type usageError struct {
	error
}

type ioError struct {
	error
}

func (err *usageError) Unwrap() error { return err.error }

func (err *ioError) Unwrap() error { return err.error }

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var usageErr *usageError
	var ioErr *ioError
	switch {
	case errors.As(err, &usageErr):
		fmt.Fprintln(os.Stderr, rootCmd.UsageString())
		os.Exit(usageErrorCode)
	case errors.As(err, &ioErr):
		os.Exit(ioErrorCode)
	default:
		os.Exit(1)
	}
}
