package adapter

import (
	"bufio"
	"bytes"
	"log"
	"strconv"
	"strings"

	"ppiviz/internal/domain"
)

// Column positions in a tsv-no-header network row
const (
	colPreferredNameA = 2
	colPreferredNameB = 3
	colExperimental   = 10
	minNetworkColumns = colExperimental + 1
)

// DefaultThreshold is the minimum experimental score an edge must exceed
const DefaultThreshold = 0.4

// IsErrorBody reports whether a response body is an API error payload
func IsErrorBody(body []byte) bool {
	return bytes.Contains(body, []byte("Error"))
}

// ParseNetwork decodes a tsv-no-header network body and keeps the edges whose
// experimental score is strictly greater than threshold. Malformed rows and
// self interactions are skipped.
func ParseNetwork(body []byte, threshold float64) ([]domain.Interaction, error) {
	if len(bytes.TrimSpace(body)) == 0 || IsErrorBody(body) {
		return nil, ErrNoResult
	}

	var out []domain.Interaction
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < minNetworkColumns {
			log.Printf("string: skipping line %d: %d columns", lineNo, len(fields))
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(fields[colExperimental]), 64)
		if err != nil {
			log.Printf("string: skipping line %d: bad score %q", lineNo, fields[colExperimental])
			continue
		}
		if score <= threshold {
			continue
		}
		in := domain.NewInteraction(fields[colPreferredNameA], fields[colPreferredNameB], score)
		if in.IsSelfLoop() {
			continue
		}
		out = append(out, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoResult
	}
	return out, nil
}
