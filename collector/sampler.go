package collector

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hostpulse/hostpulse/collector/metrics"
	"github.com/hostpulse/hostpulse/share/collections"
	"github.com/hostpulse/hostpulse/share/config"
	"github.com/hostpulse/hostpulse/share/logger"
	"github.com/hostpulse/hostpulse/share/models"
)

// Store is what the sampler needs from the persistence layer.
type Store interface {
	// Add appends the sample to the in-memory tail and mirrors the tail
	// to the scratch file.
	Add(ctx context.Context, sample *models.Sample) error
	// MaybeFlush moves the tail to durable storage when it is due.
	MaybeFlush(ctx context.Context) error
	// Flush moves the tail to durable storage unconditionally.
	Flush(ctx context.Context) error
}

// Sampler assembles one sample per interval from its collectors and hands
// it to the store. A collector that reports ErrUnavailable is dropped for
// the rest of the run; any other collector error leaves a gap in that
// sample and is retried next tick.
type Sampler struct {
	conf       *config.MonitoringConfig
	log        *logger.Logger
	store      Store
	collectors []metrics.Collector
	disabled   collections.StringBoolMap
	flushReq   chan struct{}
}

func NewSampler(conf *config.MonitoringConfig, log *logger.Logger, probe metrics.Probe, store Store) *Sampler {
	var collectors []metrics.Collector
	if !conf.MetricDisabled("cpu") {
		collectors = append(collectors, metrics.NewCPUCollector(probe))
	}
	if !conf.MetricDisabled("memory") {
		collectors = append(collectors, metrics.NewMemoryCollector(probe))
	}
	if !conf.MetricDisabled("disk") {
		collectors = append(collectors, metrics.NewDiskUsageCollector(probe, conf.DiskPaths, log.Fork("disk")))
	}
	if !conf.MetricDisabled("diskio") {
		collectors = append(collectors, metrics.NewDiskIOCollector(probe, conf.DiskIODevices))
	}
	if !conf.MetricDisabled("network") {
		collectors = append(collectors, metrics.NewNetworkCollector(probe, conf.NetInterfaces))
	}
	if !conf.MetricDisabled("temp") {
		collectors = append(collectors, metrics.NewTempCollector(probe, conf.TempSensors))
	}
	return &Sampler{
		conf:       conf,
		log:        log,
		store:      store,
		collectors: collectors,
		disabled:   collections.StringBoolMap{},
		flushReq:   make(chan struct{}, 1),
	}
}

// Run samples immediately and then once per interval until ctx is
// cancelled. On shutdown the tail is flushed so no buffered samples are
// lost.
func (s *Sampler) Run(ctx context.Context) error {
	s.log.Infof("sampling every %s", s.conf.Interval)
	for {
		s.sampleTick(ctx)

		deadline := time.After(s.conf.Interval)
		waiting := true
		for waiting {
			select {
			case <-ctx.Done():
				s.log.Infof("sampling stopped")
				if err := s.store.Flush(context.Background()); err != nil {
					s.log.Errorf("final flush: %v", err)
				}
				return nil
			case <-deadline:
				waiting = false
			case <-s.flushReq:
				s.log.Infof("flush requested")
				if err := s.store.Flush(ctx); err != nil {
					s.log.Errorf("requested flush: %v", err)
				}
			}
		}
	}
}

// TriggerFlush asks the run loop to flush the tail to durable storage. It
// never blocks, a flush already being requested is good enough.
func (s *Sampler) TriggerFlush() {
	select {
	case s.flushReq <- struct{}{}:
	default:
	}
}

func (s *Sampler) sampleTick(ctx context.Context) {
	sample := s.assembleSample(ctx)
	if err := s.store.Add(ctx, sample); err != nil {
		s.log.Errorf("failed to record sample: %v", err)
		return
	}
	if err := s.store.MaybeFlush(ctx); err != nil {
		s.log.Errorf("scheduled flush: %v", err)
	}
}

func (s *Sampler) assembleSample(ctx context.Context) *models.Sample {
	sample := models.NewSample(time.Now())
	for _, c := range s.collectors {
		if s.disabled.Has(c.Name()) {
			continue
		}
		err := c.Collect(ctx, sample)
		if err == nil {
			continue
		}
		if errors.Is(err, metrics.ErrUnavailable) {
			s.log.Infof("%v, disabling %s collection", err, c.Name())
			s.disabled.Add(c.Name())
			continue
		}
		s.log.Errorf("failed to collect %s: %v", c.Name(), err)
	}
	return sample
}
