package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/postpilot/postpilot/pkg/schedule"
)

func TestEvery_CalculatesNextRun(t *testing.T) {
	s := schedule.Every(time.Hour)
	now := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)

	next := s.Next(now)

	assert.Equal(t, time.Date(2026, 8, 30, 11, 30, 0, 0, time.UTC), next)
}

func TestEvery_MinuteCadence(t *testing.T) {
	s := schedule.Every(time.Minute)
	now := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)

	next := s.Next(now)

	assert.Equal(t, time.Date(2026, 8, 30, 10, 31, 0, 0, time.UTC), next)
}

func TestDaily_CalculatesNextRun(t *testing.T) {
	s := schedule.Daily(3, 0)

	// Before 3am
	now := time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC)
	next := s.Next(now)
	assert.Equal(t, time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC), next)

	// After 3am
	now = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	next = s.Next(now)
	assert.Equal(t, time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC), next)
}

func TestDaily_ExactTimeRollsToNextDay(t *testing.T) {
	s := schedule.Daily(3, 0)

	now := time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)
	next := s.Next(now)

	assert.Equal(t, time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC), next)
}

func TestWeekly_CalculatesNextRun(t *testing.T) {
	s := schedule.Weekly(time.Monday, 9, 0)

	// Sunday before Monday
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC) // Sunday
	next := s.Next(now)

	assert.Equal(t, time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC), next)
}

func TestWeekly_SameDayAfterTime(t *testing.T) {
	s := schedule.Weekly(time.Monday, 9, 0)

	// Monday after 9am
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC) // Monday
	next := s.Next(now)

	assert.Equal(t, time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC), next)
}

func TestCron_EveryMinute(t *testing.T) {
	s := schedule.Cron("* * * * *")
	now := time.Date(2026, 8, 30, 10, 30, 15, 0, time.UTC)

	next := s.Next(now)

	assert.Equal(t, time.Date(2026, 8, 30, 10, 31, 0, 0, time.UTC), next)
}

func TestCron_DailyAtThree(t *testing.T) {
	s := schedule.Cron("0 3 * * *")
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	next := s.Next(now)

	assert.Equal(t, time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC), next)
}

func TestCron_InvalidExpressionPanics(t *testing.T) {
	assert.Panics(t, func() {
		schedule.Cron("not a cron expression")
	})
}
