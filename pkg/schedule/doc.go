// Package schedule provides cadence definitions for the engine's lanes.
//
// This package includes:
//   - Schedule interface for defining lane cadences
//   - Every() for fixed-interval schedules
//   - Daily() for daily schedules at a specific time
//   - Weekly() for weekly schedules on a specific day and time
//   - Cron() for cron expression-based schedules
package schedule
