package narration_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DaanHessen/jwtviz/internal/narration"
)

func TestCatalogCoversEveryStep(t *testing.T) {
	c := narration.DefaultCatalog()
	for step := 0; step <= 6; step++ {
		text, err := c.Narration(context.Background(), step)
		require.NoError(t, err, "step %d", step)
		assert.NotEmpty(t, text)
	}
	_, err := c.Narration(context.Background(), 7)
	assert.ErrorIs(t, err, narration.ErrStepNotFound)
	_, err = c.Narration(context.Background(), -1)
	assert.ErrorIs(t, err, narration.ErrStepNotFound)
}

func TestMatcherRuleOrder(t *testing.T) {
	m := narration.DefaultMatcher()
	rules := narration.DefaultRules()
	answerOf := func(name string) string {
		for _, r := range rules {
			if r.Name == name {
				return r.Answer
			}
		}
		t.Fatalf("no rule %q", name)
		return ""
	}

	cases := []struct {
		msg  string
		rule string
	}{
		{"What is a JWT?", "definition"},
		{"what's inside a jwt header", "definition"},
		{"WHY bother?", "rationale"},
		{"why is it safe", "rationale"},
		{"Is this thing SAFE at all", "security"},
		{"how SECURE is it", "security"},
		{"explain the header", "header"},
		{"and the payload?", "payload"},
		{"Signature please", "signature"},
		{"what is a header", "header"},
		{"hello", "default"},
		{"", "default"},
	}
	for _, tc := range cases {
		answer, rule := m.Answer(tc.msg)
		assert.Equal(t, tc.rule, rule, "message %q", tc.msg)
		if tc.rule == "default" {
			assert.Equal(t, narration.DefaultAnswer, answer)
		} else {
			assert.Equal(t, answerOf(tc.rule), answer)
		}
	}
}

func TestSafeAnswerIgnoresCaseAndSurroundings(t *testing.T) {
	m := narration.DefaultMatcher()
	want, _ := m.Answer("safe")
	for _, msg := range []string{"Safe", "is it SAFE?", "feeling unsafe here", "sAfE!!"} {
		got, rule := m.Answer(msg)
		assert.Equal(t, "security", rule, msg)
		assert.Equal(t, want, got, msg)
	}
}

func TestIssueSample(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s, err := narration.IssueSample([]byte("secret"), "user-1", now)
	require.NoError(t, err)
	assert.JSONEq(t, `{"alg":"HS256","typ":"JWT"}`, s.Header)

	var claims map[string]any
	require.NoError(t, json.Unmarshal([]byte(s.Payload), &claims))
	assert.Equal(t, "user-1", claims["sub"])
	assert.Equal(t, float64(now.Unix()), claims["iat"])
	assert.Equal(t, float64(now.Add(15*time.Minute).Unix()), claims["exp"])
	assert.NotEmpty(t, s.Signature)

	_, err = narration.IssueSample(nil, "user-1", now)
	assert.Error(t, err)
}

func TestSplitRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "a.b", "a.b.c.d", "!!!.e30.sig", "e30.bm90LWpzb24.sig"} {
		_, err := narration.Split(tok)
		assert.Error(t, err, tok)
	}
}

type failingSource struct{}

func (failingSource) Narration(context.Context, int) (string, error) {
	return "", errors.New("db down")
}

func TestServiceCountsLookups(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := narration.NewMetrics(reg)
	svc := narration.NewService(nil, []byte("s"), zap.NewNop(), narration.WithMetrics(metrics))

	_, err := svc.Narration(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.Narration(context.Background(), 9)
	require.ErrorIs(t, err, narration.ErrStepNotFound)
	svc.Ask("is it safe")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NarrationLookups.WithLabelValues("found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NarrationLookups.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ChatAnswers.WithLabelValues("security")))

	broken := narration.NewService(failingSource{}, []byte("s"), zap.NewNop(), narration.WithMetrics(metrics))
	_, err = broken.Narration(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, narration.ErrStepNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NarrationLookups.WithLabelValues("error")))
}

func TestServiceSampleTokenUsesClock(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := narration.NewService(nil, []byte("s"), nil, narration.WithClock(func() time.Time { return now }))
	s, err := svc.SampleToken()
	require.NoError(t, err)
	assert.Contains(t, s.Payload, `"iat":1777593600`)
}
