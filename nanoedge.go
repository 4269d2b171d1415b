// Package nanoedge classifies multi-channel sensor readings with
// Hyperdimensional Computing. Readings are thermometer-encoded, bound to a
// per-channel basis vector and bundled into one 128-bit hypervector; labeled
// patterns are learned by bundling and recalled by Hamming similarity.
//
// Basic usage:
//
//	eng := nanoedge.New(nanoedge.WithChannels("temp", "light"))
//	eng.Learn("normal", []uint16{400, 700})
//	label, ok, sim, err := eng.Classify([]uint16{410, 690})
package nanoedge

import (
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/Amansingh-afk/nanoedge/basis"
	"github.com/Amansingh-afk/nanoedge/config"
	"github.com/Amansingh-afk/nanoedge/hdc"
	"github.com/Amansingh-afk/nanoedge/memory"
	"github.com/Amansingh-afk/nanoedge/store"
)

// ErrChannelMismatch is returned when a frame does not carry exactly one
// reading per configured channel.
var ErrChannelMismatch = errors.New("reading count does not match channel count")

// ErrNoFrames is returned when no frame is given.
var ErrNoFrames = errors.New("at least one frame of readings is required")

// Stats is a point-in-time snapshot of Engine metrics.
type Stats = memory.Stats

// Engine encodes readings and keeps a labeled pattern memory.
// It is safe for concurrent use.
type Engine struct {
	channels []string
	enc      *hdc.ChannelEncoder
	mem      *memory.Memory
	logger   logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	channels         []string
	maxValue         uint16
	seed             uint64
	threshold        int
	capacity         int
	minBasisDistance int
	logger           logrus.FieldLogger
	registerer       prometheus.Registerer
}

func defaultOptions() engineOptions {
	return engineOptions{
		channels:         []string{"adc0"},
		maxValue:         hdc.ADCMax,
		threshold:        96,
		capacity:         16,
		minBasisDistance: 32,
	}
}

// WithChannels names the input channels, one basis vector each (default "adc0").
func WithChannels(names ...string) Option {
	return func(o *engineOptions) { o.channels = append([]string(nil), names...) }
}

// WithMaxValue sets the reading range bound (default 1023, a 10-bit ADC).
func WithMaxValue(v uint16) Option { return func(o *engineOptions) { o.maxValue = v } }

// WithSeed sets the basis namespace seed (default 0).
// Engines with different seeds produce incompatible vectors.
func WithSeed(s uint64) Option { return func(o *engineOptions) { o.seed = s } }

// WithThreshold sets the minimum similarity for a match, in (0, 128] (default 96).
func WithThreshold(t int) Option { return func(o *engineOptions) { o.threshold = t } }

// WithCapacity sets the number of labels kept before LRU eviction (default 16).
func WithCapacity(n int) Option { return func(o *engineOptions) { o.capacity = n } }

// WithMinBasisDistance sets the pairwise basis distance below which a
// warning is logged (default 32). 0 disables the check.
func WithMinBasisDistance(d int) Option { return func(o *engineOptions) { o.minBasisDistance = d } }

// WithLogger sets the logger (default discards).
func WithLogger(l logrus.FieldLogger) Option { return func(o *engineOptions) { o.logger = l } }

// WithRegisterer enables Prometheus metrics for the pattern memory.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *engineOptions) { o.registerer = r }
}

// New creates an Engine with the given options.
// Panics if any option value is invalid (e.g. no channels, MaxValue=0).
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.channels) == 0 {
		panic("nanoedge: at least one channel is required")
	}
	if o.maxValue == 0 {
		panic("nanoedge: max value must be positive")
	}
	logger := o.logger
	if logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		logger = l
	}

	vecs := basis.ForChannels(o.channels, o.seed)
	if o.minBasisDistance > 0 {
		if err := basis.Check(vecs, o.minBasisDistance); err != nil {
			logger.WithError(err).Warn("basis vectors are not well separated; channels may be confused")
		}
	}

	return &Engine{
		channels: o.channels,
		enc:      hdc.NewChannelEncoder(vecs, o.maxValue),
		mem: memory.New(memory.Options{
			Threshold: o.threshold,
			Capacity:  o.capacity,
			Logger:    logger,
			Metrics:   memory.NewMetrics(o.registerer),
		}),
		logger: logger.WithField("component", "engine"),
	}
}

// FromConfig creates an Engine from a validated configuration.
func FromConfig(cfg *config.Config, logger logrus.FieldLogger, reg prometheus.Registerer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return New(
		WithChannels(cfg.Encoder.Channels...),
		WithMaxValue(cfg.Encoder.MaxValue),
		WithSeed(cfg.Encoder.Seed),
		WithMinBasisDistance(cfg.Encoder.MinBasisDistance),
		WithThreshold(cfg.Memory.Threshold),
		WithCapacity(cfg.Memory.Capacity),
		WithLogger(logger),
		WithRegisterer(reg),
	), nil
}

// Channels returns the configured channel names.
func (e *Engine) Channels() []string { return append([]string(nil), e.channels...) }

// Memory exposes the underlying pattern memory.
func (e *Engine) Memory() *memory.Memory { return e.mem }

// Encode returns the hypervector for one reading per channel.
func (e *Engine) Encode(readings []uint16) (hdc.Vector, error) {
	if len(readings) != e.enc.Channels() {
		return hdc.Vector{}, errors.Wrapf(ErrChannelMismatch, "got %d readings for %d channels",
			len(readings), e.enc.Channels())
	}
	return e.enc.Encode(readings), nil
}

// EncodeFrames encodes each frame and binds them in order with hdc.Sequence.
// A single frame encodes exactly as Encode does.
func (e *Engine) EncodeFrames(frames ...[]uint16) (hdc.Vector, error) {
	if len(frames) == 0 {
		return hdc.Vector{}, ErrNoFrames
	}
	vecs := make([]hdc.Vector, len(frames))
	for i, f := range frames {
		v, err := e.Encode(f)
		if err != nil {
			return hdc.Vector{}, errors.Wrapf(err, "frame %d", i)
		}
		vecs[i] = v
	}
	return hdc.Sequence(vecs...), nil
}

// Learn bundles the encoded frames into label's pattern.
func (e *Engine) Learn(label string, frames ...[]uint16) error {
	v, err := e.EncodeFrames(frames...)
	if err != nil {
		return err
	}
	e.mem.Learn(label, v)
	return nil
}

// Classify returns the label most similar to the encoded frames, if its
// similarity reaches the threshold. Returns ("", false, 0, nil) on a miss.
func (e *Engine) Classify(frames ...[]uint16) (string, bool, int, error) {
	v, err := e.EncodeFrames(frames...)
	if err != nil {
		return "", false, 0, err
	}
	label, ok, sim := e.mem.Match(v)
	e.logger.WithFields(logrus.Fields{"label": label, "hit": ok, "similarity": sim}).Debug("classified")
	return label, ok, sim, nil
}

// Forget removes a label. Returns true if it was present.
func (e *Engine) Forget(label string) bool { return e.mem.Forget(label) }

// Len returns the number of learned labels.
func (e *Engine) Len() int { return e.mem.Len() }

// Stats returns a point-in-time snapshot of Engine metrics.
func (e *Engine) Stats() Stats { return e.mem.Stats() }

// Save persists the pattern memory.
func (e *Engine) Save(s *store.Store) error {
	return s.Save(e.mem.Snapshot())
}

// Load replaces the pattern memory with the stored patterns.
func (e *Engine) Load(s *store.Store) error {
	entries, err := s.Load()
	if err != nil {
		return err
	}
	e.mem.Restore(entries)
	return nil
}
