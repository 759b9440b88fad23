package main

import (
	"context"
	"fmt"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"io"
	"os"
	"streamhist/core"
	"streamhist/density"
	"streamhist/hist"
	"streamhist/ingest"
	"streamhist/render"
	"streamhist/serde"
)

const (
	plotWidth  = 72
	plotHeight = 12
)

// histSink feeds ingested batches straight into a histogram.
type histSink struct {
	hist *hist.StreamHist
}

func (sink *histSink) AppendBatch(values []float64) error {
	for _, value := range values {
		if err := sink.hist.Insert(value); err != nil {
			return err
		}
	}
	return nil
}

func (opts *options) validate() error {
	if opts.field < 1 {
		return &usageError{errors.New("field index needs to start at 1")}
	}
	if opts.numBins < 1 {
		return &usageError{errors.Newf("the number of bins must be positive, got %d", opts.numBins)}
	}
	if opts.barWidth < 0 {
		return &usageError{errors.Newf("the bar width must not be negative, got %d", opts.barWidth)}
	}
	if opts.loadFrom != "" && opts.dbPath != "" {
		return &usageError{errors.New("--load-from and --db cannot be used together")}
	}
	return nil
}

func (opts *options) densityConfig() (*density.Config, error) {
	kernel, err := density.ParseKernel(opts.kernelName)
	if err != nil {
		return nil, &usageError{err}
	}
	rule, err := density.ParseRule(opts.ruleName)
	if err != nil {
		return nil, &usageError{err}
	}
	return &density.Config{Kernel: kernel, Bandwidth: opts.bandwidth, Rule: rule}, nil
}

func (opts *options) storeConfig(logger *zap.Logger) (*core.StoreConfig, error) {
	config := core.DefaultStoreConfig()
	if opts.configPath != "" {
		var err error
		config, err = core.LoadStoreConfig(opts.configPath)
		if err != nil {
			return nil, &ioError{err}
		}
	}
	config.DefaultCapacity = opts.numBins
	config.Logger = logger
	return config, nil
}

func run(ctx context.Context, opts *options, input string, stdin io.Reader, stdout io.Writer) error {
	if err := opts.validate(); err != nil {
		return err
	}
	var densityConfig *density.Config
	if opts.showDensity {
		var err error
		densityConfig, err = opts.densityConfig()
		if err != nil {
			return err
		}
	}
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return errors.Wrap(err, "creating logger")
	}
	defer func() { _ = logger.Sync() }()
	config, err := opts.storeConfig(logger)
	if err != nil {
		return err
	}

	var h *hist.StreamHist
	if opts.dbPath != "" {
		h, err = runStream(ctx, opts, config, input, stdin, logger)
	} else {
		h, err = runFile(ctx, opts, config, input, stdin, logger)
	}
	if err != nil {
		return err
	}

	return writeOutputs(opts, densityConfig, h, stdout, logger)
}

// runFile updates a histogram that lives only for this run, optionally
// loaded from a file.
func runFile(
	ctx context.Context,
	opts *options,
	config *core.StoreConfig,
	input string,
	stdin io.Reader,
	logger *zap.Logger) (*hist.StreamHist, error) {
	h, err := initializeHistogram(opts)
	if err != nil {
		return nil, err
	}
	if err := ingestInput(ctx, opts, config, input, stdin, &histSink{hist: h}, logger); err != nil {
		return nil, err
	}
	return h, nil
}

// runStream updates a named stream of the store and saves it on return.
func runStream(
	ctx context.Context,
	opts *options,
	config *core.StoreConfig,
	input string,
	stdin io.Reader,
	logger *zap.Logger) (h *hist.StreamHist, err error) {
	db, err := core.Open(opts.dbPath, config)
	if err != nil {
		return nil, &ioError{errors.Wrapf(err, "failed to open the store %q", opts.dbPath)}
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = &ioError{errors.Wrap(closeErr, "failed to save the stream")}
		}
	}()

	stream, err := db.GetOrCreateStream(opts.streamName, opts.numBins)
	if err != nil {
		return nil, &ioError{err}
	}
	if opts.forceResize {
		if err := stream.Resize(opts.numBins); err != nil {
			return nil, err
		}
	}
	if err := ingestInput(ctx, opts, config, input, stdin, stream, logger); err != nil {
		return nil, err
	}
	logger.Debug("updated stream",
		zap.String("stream", stream.Name()),
		zap.Int("capacity", stream.Capacity()))
	return stream.Hist(), nil
}

func initializeHistogram(opts *options) (*hist.StreamHist, error) {
	if opts.loadFrom == "" {
		return hist.New(opts.numBins)
	}
	h, err := serde.ReadFile(opts.loadFrom)
	if err != nil {
		return nil, &ioError{errors.Wrap(err, "failed to initialize the histogram")}
	}
	if opts.forceResize {
		if err := h.Resize(opts.numBins); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func ingestInput(
	ctx context.Context,
	opts *options,
	config *core.StoreConfig,
	input string,
	stdin io.Reader,
	sink ingest.Sink,
	logger *zap.Logger) error {
	if opts.ignoreInput {
		return nil
	}
	r := stdin
	if input != "" {
		file, err := os.Open(input)
		if err != nil {
			return &ioError{errors.Wrap(err, "failed to read the input")}
		}
		defer file.Close()
		r = file
	}
	report, err := ingest.Run(ctx, r, sink, config.IngestConfig(opts.field-1))
	if err != nil {
		return &ioError{errors.Wrap(err, "failed to read the input")}
	}
	logger.Debug("ingested input",
		zap.Uint64("lines", report.Lines),
		zap.Uint64("values", report.Values),
		zap.Uint64("skipped", report.Skipped),
		zap.Uint64("batches", report.Batches))
	return nil
}

func writeOutputs(
	opts *options,
	densityConfig *density.Config,
	h *hist.StreamHist,
	stdout io.Writer,
	logger *zap.Logger) error {
	if opts.printJSON {
		if err := render.JSON(stdout, h); err != nil {
			return &ioError{errors.Wrap(err, "failed to print JSON")}
		}
	}
	if !opts.noSummary {
		if err := render.Bars(stdout, h, opts.barWidth); err != nil {
			return &ioError{err}
		}
	}
	if opts.statistics {
		render.Statistics(stdout, h)
	}
	if opts.showDensity {
		if err := plotDensity(stdout, h, densityConfig, logger); err != nil {
			return err
		}
	}
	if opts.outputFile != "" {
		if err := serde.WriteFile(opts.outputFile, h); err != nil {
			return &ioError{errors.Wrap(err, "failed to write the output")}
		}
	}
	return nil
}

func plotDensity(stdout io.Writer, h *hist.StreamHist, config *density.Config, logger *zap.Logger) error {
	if h.IsEmpty() {
		logger.Warn("no density for an empty histogram")
		return nil
	}
	kde, err := density.New(h, config)
	if err != nil {
		return &usageError{err}
	}
	lo, hi, err := render.DensityRange(h, kde)
	if err != nil {
		return err
	}
	plot, err := render.DensityPlot(kde, lo, hi, plotWidth, plotHeight)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, plot)
	return err
}
