// Package security provides validation, sanitization, and limits for the engine.
package security
