// Package storage provides the GORM-backed persistence layer for the engine.
package storage
