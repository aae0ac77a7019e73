package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"surveydash/internal/aggregate"
	"surveydash/internal/datasource"
	"surveydash/internal/filter"
	"surveydash/internal/metrics"
	"surveydash/internal/parser"
	csvparser "surveydash/internal/parser/csv"
	"surveydash/internal/survey"
)

// ErrNotLoaded is returned when no dataset has been loaded yet.
var ErrNotLoaded = errors.New("dataset: not loaded")

// DefaultLoadTimeout bounds a load when Options.LoadTimeout is zero.
const DefaultLoadTimeout = 2 * time.Minute

// Options configures a Store.
type Options struct {
	Source datasource.Source
	Parser csvparser.Options
	// Decoder replaces the CSV parser built from Parser when set.
	Decoder parser.Parser
	// LoadTimeout bounds one read of the source. Zero means
	// DefaultLoadTimeout.
	LoadTimeout time.Duration
	// TopCountries bounds the country breakdown of a View.
	// Zero means aggregate.DefaultTopCountries.
	TopCountries int
	// Job labels metrics; defaults to "surveydash".
	Job    string
	Logger *zap.Logger
}

// Store holds the current Dataset. It is safe for concurrent use.
type Store struct {
	opts  Options
	dec   parser.Parser
	cur   atomic.Pointer[Dataset]
	group singleflight.Group
	now   func() time.Time
}

// NewStore returns an empty Store. Call Load before querying.
func NewStore(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.TopCountries <= 0 {
		opts.TopCountries = aggregate.DefaultTopCountries
	}
	if opts.Job == "" {
		opts.Job = "surveydash"
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = DefaultLoadTimeout
	}
	if opts.Parser.Logger == nil {
		opts.Parser.Logger = opts.Logger
	}
	dec := opts.Decoder
	if dec == nil {
		dec = csvparser.NewParser(opts.Parser)
	}
	return &Store{opts: opts, dec: dec, now: time.Now}
}

// Current returns the installed snapshot or ErrNotLoaded.
func (s *Store) Current() (*Dataset, error) {
	d := s.cur.Load()
	if d == nil {
		return nil, ErrNotLoaded
	}
	return d, nil
}

// Load reads, parses and normalizes the source, then installs the result.
// Concurrent calls share a single read. The read is bounded by
// LoadTimeout rather than by any one caller: a caller whose ctx ends stops
// waiting, while the others still receive the shared result. On failure
// the previous snapshot stays in place.
func (s *Store) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := s.group.DoChan("load", func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.LoadTimeout)
		defer cancel()
		return s.load(lctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Shared {
			s.opts.Logger.Debug("dataset load shared with concurrent caller")
		}
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Dataset), nil
	}
}

func (s *Store) load(ctx context.Context) (ds *Dataset, err error) {
	if s.opts.Source == nil {
		return nil, errors.New("dataset: no source configured")
	}
	start := s.now()
	log := s.opts.Logger.With(zap.String("source", s.opts.Source.Location()))
	defer func() {
		metrics.RecordStep(s.opts.Job, "load", err, s.now().Sub(start))
		if err != nil {
			log.Error("dataset load failed", zap.Error(err))
		}
	}()

	rc, err := s.opts.Source.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.opts.Source.Location(), err)
	}
	defer rc.Close()

	h := xxh3.New()
	recs, skipped, err := s.dec.Parse(io.TeeReader(rc, h))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.opts.Source.Location(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds = &Dataset{
		ID:          uuid.New(),
		Source:      s.opts.Source.Location(),
		Fingerprint: h.Sum64(),
		LoadedAt:    s.now(),
		Responses:   survey.NormalizeAll(recs),
		Skipped:     skipped,
	}
	s.cur.Store(ds)

	metrics.RecordRow(s.opts.Job, "loaded", int64(ds.Len()))
	metrics.RecordRow(s.opts.Job, "skipped", int64(ds.Skipped))
	log.Info("dataset loaded",
		zap.String("id", ds.ID.String()),
		zap.Int("rows", ds.Len()),
		zap.Int("skipped", ds.Skipped),
		zap.Duration("took", ds.LoadedAt.Sub(start)),
	)
	return ds, nil
}

// View is the filtered subset of one snapshot and its aggregates.
type View struct {
	Dataset  *Dataset
	Criteria filter.Criteria
	Rows     []survey.Response
	Report   aggregate.Report
}

// ETag identifies the view by dataset fingerprint and criteria.
func (v View) ETag() string {
	return fmt.Sprintf(`"%016x-%016x"`, v.Dataset.Fingerprint, xxh3.HashString(v.Criteria.Values().Encode()))
}

// Query filters the current snapshot and aggregates the result.
func (s *Store) Query(c filter.Criteria) (View, error) {
	start := s.now()
	ds, err := s.Current()
	if err != nil {
		metrics.RecordStep(s.opts.Job, "query", err, s.now().Sub(start))
		return View{}, err
	}
	rows := filter.Apply(ds.Responses, c)
	v := View{
		Dataset:  ds,
		Criteria: c,
		Rows:     rows,
		Report:   aggregate.Build(rows, s.opts.TopCountries),
	}
	metrics.RecordStep(s.opts.Job, "query", nil, s.now().Sub(start))
	return v, nil
}
