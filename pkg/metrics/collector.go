// Package metrics 以 Prometheus 指标记录状态转换结果
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/junbin-yang/go-statemachine/pkg/statemachine"
)

// Collector 实现 statemachine.Observer，按操作和结果统计转换
type Collector struct {
	transitions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// Option Collector 选项
type Option func(*collectorOptions)

type collectorOptions struct {
	namespace string
	buckets   []float64
}

// WithNamespace 设置指标命名空间
func WithNamespace(ns string) Option {
	return func(o *collectorOptions) { o.namespace = ns }
}

// WithBuckets 设置耗时直方图的桶
func WithBuckets(buckets ...float64) Option {
	return func(o *collectorOptions) { o.buckets = buckets }
}

// NewCollector 创建指标收集器
func NewCollector(opts ...Option) *Collector {
	o := &collectorOptions{buckets: prometheus.DefBuckets}
	for _, opt := range opts {
		opt(o)
	}

	return &Collector{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: o.namespace,
				Name:      "statemachine_transitions_total",
				Help:      "Total number of guarded transitions by outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: o.namespace,
				Name:      "statemachine_transition_duration_seconds",
				Help:      "Duration of guarded transitions",
				Buckets:   o.buckets,
			},
			[]string{"operation"},
		),
	}
}

// Observe 记录一次转换
func (c *Collector) Observe(ev statemachine.Event) {
	c.transitions.WithLabelValues(ev.Operation, ev.Outcome.String()).Inc()
	c.duration.WithLabelValues(ev.Operation).Observe(ev.Duration.Seconds())
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.transitions.Describe(ch)
	c.duration.Describe(ch)
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.transitions.Collect(ch)
	c.duration.Collect(ch)
}

// Register 注册到给定的 Registerer，nil 时使用默认注册表
func (c *Collector) Register(r prometheus.Registerer) error {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	return r.Register(c)
}

var _ statemachine.Observer = (*Collector)(nil)
