package baq

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// CalculationMode selects whether, and under what condition, the facade
// (re)computes BAQ for a read.
type CalculationMode int

const (
	ModeNone CalculationMode = iota
	ModeAsNecessary
	ModeRecalculate
)

// QualityMode selects where a freshly-computed BAQ result goes.
type QualityMode int

const (
	QualityAddTag QualityMode = iota
	QualityOverwriteQuals
	QualityDontModify
)

// Stats are per-Processor counters updated by Process/ProcessAll. They
// summarize call outcomes across a batch -- not cross-read statistical
// modeling of any kind.
type Stats struct {
	Processed  int64
	OutOfRange int64
	NCigar     int64
}

// Processor is the BAQ facade: it decides, per read, whether to run the
// adapter, and what to do with the result.
type Processor struct {
	Calculation CalculationMode
	Quality     QualityMode
	Config      Config
	Refs        ReferenceProvider
	Log         Logger

	Stats Stats
}

// NewProcessor returns a Processor configured with the package's default
// tuning, AsNecessary/AddTag behaviour, and the default logger.
func NewProcessor(refs ReferenceProvider) *Processor {
	return &Processor{
		Calculation: ModeAsNecessary,
		Quality:     QualityAddTag,
		Config:      DefaultConfig(),
		Refs:        refs,
		Log:         NewDefaultLogger(),
	}
}

func excluded(r ReadView) bool {
	return r.Unmapped() || r.FailsQC() || r.Duplicate()
}

// Process implements the facade's dispatch for a single read and returns
// the quality vector the caller should treat as authoritative.
// The read's own storage is also mutated according to p.Quality, except
// under QualityDontModify.
func (p *Processor) Process(ctx context.Context, r ReadView) ([]byte, error) {
	raw := r.Qualities()
	if p.Calculation == ModeNone || excluded(r) {
		return raw, nil
	}

	tagValue, hasTag := r.StringAttribute(AttributeName)

	if p.Calculation == ModeRecalculate || !hasTag {
		result, reason, err := CalcBAQ(ctx, r, p.Refs, p.Config)
		if err != nil {
			return nil, err
		}
		if result == nil {
			switch reason {
			case SkipNCigar:
				atomic.AddInt64(&p.Stats.NCigar, 1)
				if p.Log != nil {
					p.Log.Debugf("baq: skipping %s: N-cigar", r.ReadName())
				}
			default: // SkipOutOfRange
				atomic.AddInt64(&p.Stats.OutOfRange, 1)
				if p.Log != nil {
					p.Log.Debugf("baq: skipping %s: out of range", r.ReadName())
				}
			}
			return raw, nil
		}
		atomic.AddInt64(&p.Stats.Processed, 1)
		switch p.Quality {
		case QualityAddTag:
			r.SetAttribute(AttributeName, string(EncodeTag(raw, result.BQ)))
			return result.BQ, nil
		case QualityOverwriteQuals:
			copy(raw, result.BQ)
			return raw, nil
		default: // QualityDontModify
			return result.BQ, nil
		}
	}

	// AsNecessary with an existing tag: decode it rather than recompute,
	// and overwrite in place only when asked to.
	bq := DecodeTag(raw, []byte(tagValue))
	if p.Quality == QualityOverwriteQuals {
		copy(raw, bq)
	}
	return bq, nil
}

// DecodeOnly decodes a read's existing BQ tag without running the
// adapter. In strict mode it returns ErrMissingTag when no tag is
// present; by default it returns the read's raw qualities unchanged.
func (p *Processor) DecodeOnly(r ReadView, strict bool) ([]byte, error) {
	raw := r.Qualities()
	tagValue, ok := r.StringAttribute(AttributeName)
	if !ok {
		if strict {
			return nil, errors.Wrapf(ErrMissingTag, "read %s", r.ReadName())
		}
		return raw, nil
	}
	return DecodeTag(raw, []byte(tagValue)), nil
}

// ProcessAll fans Process out across parallelism goroutines: the decoder
// holds no state across calls and each worker owns its
// current read's attribute/quality storage exclusively, so reads may be
// processed concurrently in any order. It returns the first error
// encountered, if any, and stops dispatching further reads once ctx is
// cancelled.
func (p *Processor) ProcessAll(ctx context.Context, reads []ReadView, parallelism int) error {
	if parallelism < 1 {
		parallelism = 1
	}
	jobs := make(chan int)
	errs := make(chan error, 1)

	var wg sync.WaitGroup
	for w := 0; w < parallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if _, err := p.Process(ctx, reads[idx]); err != nil {
					select {
					case errs <- err:
					default:
					}
				}
			}
		}()
	}

feed:
	for i := range reads {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errs:
		return err
	default:
		return ctx.Err()
	}
}
