// Package platform implements the social-platform client used by the engine.
package platform
