// Package input delivers sanitized target coordinates to the motion cycle.
// Transports parse their own text; the rest of the system only ever sees
// float pairs.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cjeanneret/ScaraGo/internal/config"
)

// Source supplies target coordinates, one pair per call.
// Next returns io.EOF when the transport is exhausted.
type Source interface {
	Next() (x, y float64, err error)
	Close() error
}

// New creates an input source based on configuration. Console input reads
// from the given fallback reader (normally stdin).
func New(cfg config.InputConfig, console io.Reader) (Source, error) {
	switch cfg.Type {
	case "console":
		return NewConsole(console), nil
	case "serial":
		return OpenSerial(cfg.Device, cfg.Baud)
	default:
		return nil, fmt.Errorf("unsupported input type: %s", cfg.Type)
	}
}

// Console reads "x y" pairs, one per line, from an io.Reader.
type Console struct {
	scanner *bufio.Scanner
	closer  io.Closer
}

// NewConsole creates a line-based coordinate reader.
func NewConsole(r io.Reader) *Console {
	c := &Console{scanner: bufio.NewScanner(r)}
	if closer, ok := r.(io.Closer); ok {
		c.closer = closer
	}
	return c
}

// Next returns the next coordinate pair. Blank lines are skipped;
// malformed lines return an error without consuming further input.
func (c *Console) Next() (float64, float64, error) {
	for c.scanner.Scan() {
		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}
		return ParsePair(line)
	}
	if err := c.scanner.Err(); err != nil {
		return 0, 0, err
	}
	return 0, 0, io.EOF
}

func (c *Console) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// ParsePair parses a coordinate pair written as "x y" or "x,y".
func ParsePair(line string) (float64, float64, error) {
	line = strings.ReplaceAll(line, ",", " ")
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected two coordinates, got %q", line)
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse x %q: %w", fields[0], err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse y %q: %w", fields[1], err)
	}
	return x, y, nil
}
