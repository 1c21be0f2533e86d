// Package core provides the domain models and interfaces for the publishing engine.
package core
