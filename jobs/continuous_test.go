package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awtools/aw-analyzer/aw"
	"github.com/awtools/aw-analyzer/config"
	"github.com/awtools/aw-analyzer/errors"
)

func newContinuous(p MetricsProvider, thresholdMin, cooldownMin int) *ContinuousWork {
	return NewContinuousWork(Deps{
		Provider: p,
		Offset:   testOffset,
		Jobs: config.JobsConfig{
			ContinuousWork: config.ContinuousWorkConfig{
				ThresholdMinutes: thresholdMin,
				CooldownMinutes:  cooldownMin,
			},
		},
	})
}

func TestContinuousWorkAlwaysConsents(t *testing.T) {
	job := newContinuous(&fakeProvider{}, 60, 60)
	ok, err := job.ShouldRun(nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestContinuousWorkThreshold(t *testing.T) {
	t.Run("below the threshold stays quiet", func(t *testing.T) {
		provider := &fakeProvider{metrics: &aw.DailyMetrics{MaxContinuousSeconds: 3599}}
		job := newContinuous(provider, 60, 60)

		res, err := job.Run(jobContext(testNow, newMemState()))
		require.NoError(t, err)
		assert.False(t, res.Notify)
		assert.Contains(t, res.Reason, "below")
	})

	t.Run("exactly at the threshold notifies", func(t *testing.T) {
		provider := &fakeProvider{metrics: &aw.DailyMetrics{MaxContinuousSeconds: 3600}}
		job := newContinuous(provider, 60, 45)

		res, err := job.Run(jobContext(testNow, newMemState()))
		require.NoError(t, err)
		assert.True(t, res.Notify)
		assert.Equal(t, "Time for a break", res.Title)
		assert.Equal(t, "You have been working for 1h", res.Body)
		assert.Equal(t, "cooldown:continuous-work-alert", res.CooldownKey)
		assert.Equal(t, 45*time.Minute, res.Cooldown)
	})

	t.Run("custom threshold", func(t *testing.T) {
		provider := &fakeProvider{metrics: &aw.DailyMetrics{MaxContinuousSeconds: 5400}}
		job := newContinuous(provider, 90, 60)

		res, err := job.Run(jobContext(testNow, newMemState()))
		require.NoError(t, err)
		assert.True(t, res.Notify)
		assert.Equal(t, "You have been working for 1h 30m", res.Body)
	})
}

func TestContinuousWorkQueriesToday(t *testing.T) {
	provider := &fakeProvider{metrics: &aw.DailyMetrics{}}
	job := newContinuous(provider, 60, 60)

	_, err := job.Run(jobContext(testNow, newMemState()))
	require.NoError(t, err)

	require.Len(t, provider.periods, 1)
	assert.Equal(t, "2026-01-02/2026-01-03", provider.periods[0], "the window is startOfToday to now")
}

func TestContinuousWorkOffsetDayBoundary(t *testing.T) {
	// 23:30Z on Jan 1 is already 08:30 on Jan 2 in the +09:00 offset.
	utc := time.Date(2026, 1, 1, 23, 30, 0, 0, time.UTC)
	provider := &fakeProvider{metrics: &aw.DailyMetrics{}}
	job := newContinuous(provider, 60, 60)

	_, err := job.Run(jobContext(utc, newMemState()))
	require.NoError(t, err)

	require.Len(t, provider.periods, 1)
	assert.Equal(t, "2026-01-02/2026-01-03", provider.periods[0])
}

func TestContinuousWorkProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.NewQueryError("bad query")}
	job := newContinuous(provider, 60, 60)

	_, err := job.Run(jobContext(testNow, newMemState()))
	require.Error(t, err)
	assert.True(t, errors.IsQueryError(err))
}

func TestContinuousWorkZeroConfigDefaults(t *testing.T) {
	provider := &fakeProvider{metrics: &aw.DailyMetrics{MaxContinuousSeconds: 3600}}
	job := newContinuous(provider, 0, 0)

	res, err := job.Run(jobContext(testNow, newMemState()))
	require.NoError(t, err)
	assert.True(t, res.Notify, "a zero threshold falls back to an hour")
	assert.Equal(t, time.Hour, res.Cooldown)
}
