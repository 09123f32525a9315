package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// DefaultPercent applies to file entries that carry no explicit rate.
	DefaultPercent = 10

	cancelCheckEvery = 10_000
)

// parseCodes reads a gzipped code file. Blank lines and lines starting with
// '#' are skipped; "CODE" uses DefaultPercent and "CODE:PERCENT" sets the rate
// explicitly. Percentages outside 1..100 are rejected.
func parseCodes(ctx context.Context, r io.Reader) (*mapCodeSet, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	set := NewMapCodeSet(64)

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		code, percent, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		set.Add(code, percent)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read codes: %w", err)
	}

	return set, nil
}

func parseLine(line string) (string, int, error) {
	code, rate, found := strings.Cut(line, ":")
	code = strings.TrimSpace(code)
	if code == "" {
		return "", 0, fmt.Errorf("empty promo code")
	}
	if !found {
		return code, DefaultPercent, nil
	}

	percent, err := strconv.Atoi(strings.TrimSpace(rate))
	if err != nil || percent < 1 || percent > 100 {
		return "", 0, fmt.Errorf("invalid percentage %q for code %s", rate, code)
	}
	return code, percent, nil
}
