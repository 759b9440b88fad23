// Package ingest feeds whitespace separated text into a histogram sink.
package ingest

import (
	"bufio"
	"context"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"io"
	"streamhist/parse"
)

const maxLineLength = 1 << 20

// Sink receives batches from a single goroutine at a time. The slice is
// only valid for the duration of the call.
type Sink interface {
	AppendBatch(values []float64) error
}

type Config struct {
	// Field is the 0-based column parsed from every line.
	Field     int
	BatchSize int
	QueueSize int
	Logger    *zap.Logger
}

func DefaultConfig() *Config {
	return &Config{
		Field:     0,
		BatchSize: 1024,
		QueueSize: 4,
		Logger:    zap.NewNop(),
	}
}

type Report struct {
	Lines   uint64
	Values  uint64
	Skipped uint64
	Batches uint64
}

// Run reads r line by line and appends the parsed values to sink in
// input order. Lines that do not parse are counted and logged, not
// fatal. The first error from reading, from the sink or from ctx stops
// both stages.
func Run(ctx context.Context, r io.Reader, sink Sink, config *Config) (*Report, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize < 1 || config.QueueSize < 1 {
		return nil, errors.Newf("invalid ingest config: batch size %d, queue size %d",
			config.BatchSize, config.QueueSize)
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	emptyBuffers := make(chan *Buffer, config.QueueSize)
	fullBuffers := make(chan *Buffer, config.QueueSize)
	for i := 0; i < config.QueueSize; i++ {
		emptyBuffers <- NewBuffer(config.BatchSize)
	}

	report := &Report{}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(fullBuffers)
		return read(ctx, r, config.Field, logger, report, emptyBuffers, fullBuffers)
	})
	group.Go(func() error {
		return write(sink, report, fullBuffers, emptyBuffers)
	})
	err := group.Wait()
	logger.Debug("ingest finished",
		zap.Uint64("lines", report.Lines),
		zap.Uint64("values", report.Values),
		zap.Uint64("skipped", report.Skipped),
		zap.Error(err))
	return report, err
}

func read(ctx context.Context, r io.Reader, field int, logger *zap.Logger, report *Report,
	emptyBuffers <-chan *Buffer, fullBuffers chan<- *Buffer) error {
	var active *Buffer
	push := func() error {
		select {
		case fullBuffers <- active:
			active = nil
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Lines++
		value, err := parse.ParseField(scanner.Text(), field)
		if err != nil {
			report.Skipped++
			logger.Warn("skipping line", zap.Uint64("line", report.Lines), zap.Error(err))
			continue
		}

		for active == nil {
			select {
			case active = <-emptyBuffers:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		active.Append(value)
		if active.IsFull() {
			if err := push(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "reading line %d", report.Lines+1)
	}
	// Scan blocks without watching ctx, so a cancel that arrived while
	// waiting for input only shows up here.
	if err := ctx.Err(); err != nil {
		return err
	}
	if active != nil && active.Size > 0 {
		return push()
	}
	return nil
}

func write(sink Sink, report *Report, fullBuffers <-chan *Buffer, emptyBuffers chan<- *Buffer) error {
	for buffer := range fullBuffers {
		if err := sink.AppendBatch(buffer.Values()); err != nil {
			return errors.Wrap(err, "appending batch")
		}
		report.Values += uint64(buffer.Size)
		report.Batches++
		buffer.Clear()
		emptyBuffers <- buffer
	}
	return nil
}
