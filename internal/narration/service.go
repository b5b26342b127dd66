package narration

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Metrics counts gateway lookups. Register it on the registry served at /metrics.
type Metrics struct {
	NarrationLookups *prometheus.CounterVec
	ChatAnswers      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NarrationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jwtviz",
			Name:      "narration_lookups_total",
			Help:      "Narration lookups by result (found, not_found, error).",
		}, []string{"result"}),
		ChatAnswers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jwtviz",
			Name:      "chat_answers_total",
			Help:      "Chat answers by the rule that produced them.",
		}, []string{"rule"}),
	}
	if reg != nil {
		reg.MustRegister(m.NarrationLookups, m.ChatAnswers)
	}
	return m
}

// Service answers gateway requests.
type Service struct {
	source  Source
	matcher *Matcher
	secret  []byte
	metrics *Metrics
	logger  *zap.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithMetrics(m *Metrics) Option { return func(s *Service) { s.metrics = m } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(source Source, tokenSecret []byte, logger *zap.Logger, opts ...Option) *Service {
	if source == nil {
		source = DefaultCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		source:  source,
		matcher: DefaultMatcher(),
		secret:  tokenSecret,
		metrics: NewMetrics(nil),
		logger:  logger.Named("NarrationService"),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Narration returns the text for step or ErrStepNotFound.
func (s *Service) Narration(ctx context.Context, step int) (string, error) {
	text, err := s.source.Narration(ctx, step)
	switch {
	case err == nil:
		s.metrics.NarrationLookups.WithLabelValues("found").Inc()
		return text, nil
	case errors.Is(err, ErrStepNotFound):
		s.metrics.NarrationLookups.WithLabelValues("not_found").Inc()
		return "", err
	default:
		s.metrics.NarrationLookups.WithLabelValues("error").Inc()
		s.logger.Error("Narration lookup failed", zap.Int("step", step), zap.Error(err))
		return "", err
	}
}

// Ask answers a free-text chat message.
func (s *Service) Ask(message string) string {
	answer, rule := s.matcher.Answer(message)
	s.metrics.ChatAnswers.WithLabelValues(rule).Inc()
	s.logger.Debug("Chat answered", zap.String("rule", rule))
	return answer
}

// SampleToken issues a fresh illustrative token.
func (s *Service) SampleToken() (SampleToken, error) {
	return IssueSample(s.secret, "user-42", s.now())
}
