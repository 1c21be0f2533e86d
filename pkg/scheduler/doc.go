// Package scheduler drives engine lanes on independent cadences.
package scheduler
