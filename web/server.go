package web

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hostpulse/hostpulse/collector/metrics"
	"github.com/hostpulse/hostpulse/render"
	"github.com/hostpulse/hostpulse/scheduler"
	"github.com/hostpulse/hostpulse/share/config"
	"github.com/hostpulse/hostpulse/share/logger"
	"github.com/hostpulse/hostpulse/store"
)

// Server owns the chart pipeline of the web process: it reads samples the
// collector process wrote, renders them into charts and serves them over
// HTTP. It shares no memory with the collector, the two meet only in the
// scratch and durable files.
type Server struct {
	conf     *config.Config
	log      *logger.Logger
	reader   *store.Reader
	renderer *render.Renderer
	cache    *render.Cache
	probe    metrics.Probe
	started  time.Time

	apiListener *APIListener
}

func NewServer(conf *config.Config, log *logger.Logger, probe metrics.Probe) (*Server, error) {
	s := &Server{
		conf:     conf,
		log:      log,
		reader:   store.NewReader(&conf.Monitoring, log.Fork("store")),
		renderer: render.NewRenderer(conf.Web.MaxPoints, conf.Web.ChartRanges),
		probe:    probe,
		started:  time.Now(),
	}
	s.cache = render.NewCache(conf.Monitoring.Interval, log.Fork("cache"), s.buildCharts)

	al, err := NewAPIListener(s)
	if err != nil {
		return nil, err
	}
	s.apiListener = al
	return s, nil
}

// Run serves until the context is canceled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	if err := s.apiListener.Start(s.conf.Web.Address); err != nil {
		return err
	}
	s.log.Infof("web interface listening on %s", s.apiListener.Addr())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(s.apiListener.Wait)
	g.Go(func() error {
		scheduler.Run(ctx, s.log.Fork("prewarm"), prewarmTask{s}, s.conf.Monitoring.Interval)
		return nil
	})
	g.Go(func() error {
		s.apiListener.broadcastLive(ctx, s.conf.Monitoring.Interval)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return s.apiListener.Close()
	})
	return g.Wait()
}

// buildCharts renders every chart in one pass, reading each window once so
// the store I/O is shared across the six metrics.
func (s *Server) buildCharts() map[string]render.BuildResult {
	out := make(map[string]render.BuildResult, len(store.Windows)*len(render.Metrics))
	now := time.Now()
	for _, w := range store.Windows {
		samples, err := s.reader.Window(w, now)
		if err != nil {
			for _, m := range render.Metrics {
				out[render.CacheKey(w.String(), m.String())] = render.BuildResult{Err: err}
			}
			continue
		}
		for _, m := range render.Metrics {
			png, err := s.renderer.Render(m, render.ExtractSeries(m, samples), titleSuffix(w))
			out[render.CacheKey(w.String(), m.String())] = render.BuildResult{PNG: png, Err: err}
		}
	}
	return out
}

func (s *Server) cacheKeys() []string {
	keys := make([]string, 0, len(store.Windows)*len(render.Metrics))
	for _, w := range store.Windows {
		for _, m := range render.Metrics {
			keys = append(keys, render.CacheKey(w.String(), m.String()))
		}
	}
	return keys
}

func titleSuffix(w store.Window) string {
	if w == store.WindowHour {
		return " (Last Hour)"
	}
	return ""
}

// prewarmTask keeps the render cache warm so the first dashboard request
// after each sampling tick does not pay for a full rebuild.
type prewarmTask struct {
	server *Server
}

func (t prewarmTask) Run(ctx context.Context) error {
	t.server.cache.Prewarm(t.server.cacheKeys())
	return nil
}
