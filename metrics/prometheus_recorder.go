package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "nvstate"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	commits         *prom.CounterVec
	commitDuration  prom.Histogram
	bytesWritten    prom.Counter
	savesSkipped    prom.Counter
	sectionsInvalid *prom.CounterVec
	formats         *prom.CounterVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		commits: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "Medium commits by result",
		}, []string{"result"}),
		commitDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "commit_duration_seconds",
			Help:      "Duration of medium commits",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		bytesWritten: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Bytes written to the medium",
		}),
		savesSkipped: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "saves_skipped_total",
			Help:      "State saves that found the medium already up to date",
		}),
		sectionsInvalid: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sections_invalid_total",
			Help:      "Element-state loads that found no usable section, by reason",
		}, []string{"reason"}),
		formats: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "formats_total",
			Help:      "Medium (re)formats by reason",
		}, []string{"reason"}),
	}
	reg.MustRegister(pr.commits, pr.commitDuration, pr.bytesWritten, pr.savesSkipped, pr.sectionsInvalid, pr.formats)

	return pr
}

func (p *PrometheusRecorder) IncCommit(success bool) {
	if p == nil || p.commits == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.commits.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveCommitDuration(d time.Duration) {
	if p == nil || p.commitDuration == nil {
		return
	}
	p.commitDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddBytesWritten(n int) {
	if p == nil || p.bytesWritten == nil {
		return
	}
	p.bytesWritten.Add(float64(n))
}

func (p *PrometheusRecorder) IncSaveSkipped() {
	if p == nil || p.savesSkipped == nil {
		return
	}
	p.savesSkipped.Inc()
}

func (p *PrometheusRecorder) IncSectionInvalid(reason string) {
	if p == nil || p.sectionsInvalid == nil {
		return
	}
	p.sectionsInvalid.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) IncFormat(reason string) {
	if p == nil || p.formats == nil {
		return
	}
	p.formats.WithLabelValues(reason).Inc()
}
