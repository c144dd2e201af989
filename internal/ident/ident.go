// Package ident generates opaque unique identifiers for tasks and log entries.
package ident

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// New returns a process-unique opaque identifier. Identifiers are never
// parsed or ordered; uniqueness is the only contract.
func New() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fallback()
	}
	return id.String()
}

// fallback builds a timestamp+random identifier when the system random
// source is unavailable for UUID generation.
func fallback() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + hex.EncodeToString(buf)
}
