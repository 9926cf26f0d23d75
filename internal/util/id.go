// Package util provides utility functions for workdesk.
package util

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator provides thread-safe UUIDv7 generation with monotonic timestamps.
type IDGenerator struct {
	mu       sync.Mutex
	lastTime int64
	counter  uint16
}

// NewIDGenerator creates a new ID generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// NewID generates a new UUIDv7 identifier from this generator.
// UUIDv7 provides time-ordered identifiers for better index locality.
func (g *IDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixMilli()

	if now == g.lastTime {
		g.counter++
		if g.counter == 0 {
			for now == g.lastTime {
				time.Sleep(time.Microsecond * 100)
				now = time.Now().UnixMilli()
			}
		}
	} else {
		g.lastTime = now
		g.counter = 0
	}

	return generateUUIDv7(now, g.counter)
}

var generator = &IDGenerator{}

// NewID generates a new UUIDv7 identifier from the package generator.
func NewID() string {
	return generator.NewID()
}

// generateUUIDv7 creates a UUIDv7 from a timestamp and counter.
func generateUUIDv7(unixMilli int64, counter uint16) string {
	var id [16]byte

	// First 48 bits: Unix timestamp in milliseconds (big endian)
	binary.BigEndian.PutUint32(id[0:4], uint32(unixMilli>>16))
	binary.BigEndian.PutUint16(id[4:6], uint16(unixMilli))

	// Version 7 + counter
	id[6] = 0x70 | (byte(counter>>8) & 0x0F)
	id[7] = byte(counter)

	var randomBytes [8]byte
	rand.Read(randomBytes[:])
	copy(id[8:], randomBytes[:])
	id[8] = (id[8] & 0x3F) | 0x80 // RFC 4122 variant

	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(id[0:4]),
		binary.BigEndian.Uint16(id[4:6]),
		binary.BigEndian.Uint16(id[6:8]),
		binary.BigEndian.Uint16(id[8:10]),
		id[10:16],
	)
}

// ParseID validates and parses a UUID string.
func ParseID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid ID format: %w", err)
	}
	return id.String(), nil
}

// IsValidID checks if a string is a valid UUID format.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// DocumentNumberGenerator produces human-facing document numbers for
// receipts and stocktake sessions.
// Format: {prefix}-{5-digit sequence}, e.g. RCP-00042.
type DocumentNumberGenerator struct {
	mu      sync.Mutex
	prefix  string
	lastSeq int
}

// NewDocumentNumberGenerator creates a generator with the given prefix.
func NewDocumentNumberGenerator(prefix string) *DocumentNumberGenerator {
	return &DocumentNumberGenerator{prefix: prefix}
}

// SetLastSequence sets the last used sequence number. Call this after
// loading the highest existing number from the database.
func (g *DocumentNumberGenerator) SetLastSequence(seq int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastSeq = seq
}

// Next generates the next document number.
func (g *DocumentNumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastSeq++
	return fmt.Sprintf("%s-%05d", g.prefix, g.lastSeq)
}

// ParseDocumentNumber extracts the prefix and sequence from a document number.
func ParseDocumentNumber(num string) (prefix string, sequence int, err error) {
	n := len(num)
	if n < 7 || num[n-6] != '-' {
		return "", 0, fmt.Errorf("invalid document number format: %q", num)
	}
	if _, err := fmt.Sscanf(num[n-5:], "%05d", &sequence); err != nil {
		return "", 0, fmt.Errorf("invalid document number format: %q", num)
	}
	return num[:n-6], sequence, nil
}
