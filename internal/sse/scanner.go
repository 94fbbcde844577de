package sse

import (
	"bufio"
	"io"
	"strings"
)

// Scanner implements a basic server-sent events scanner
type Scanner struct {
	scanner *bufio.Scanner
}

const MaxScanTokenSize = 5 * 1024 * 1024 // 5MB

// NewScanner creates a new SSE scanner from an io.Reader
func NewScanner(reader io.Reader) *Scanner {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, MaxScanTokenSize)
	scanner.Buffer(buf, MaxScanTokenSize)
	return &Scanner{
		scanner: scanner,
	}
}

// Scan advances the scanner to the next line
func (s *Scanner) Scan() bool {
	return s.scanner.Scan()
}

// Text returns the current line as a string
func (s *Scanner) Text() string {
	return s.scanner.Text()
}

// Err returns any error encountered during scanning
func (s *Scanner) Err() error {
	return s.scanner.Err()
}

// IsDataLine checks if a line is a data line and returns the data content
func IsDataLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if data, ok := strings.CutPrefix(line, "data: "); ok {
		return data, true
	}
	return "", false
}
