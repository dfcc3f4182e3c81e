package source

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/model"
)

// Marker scopes.
const (
	ScopeFile       = "file"
	ScopeLine       = "line"
	ScopeRangeStart = "range_start"
	ScopeRangeEnd   = "range_end"
)

var (
	// ErrMalformedMarker is returned for @relation markers without UIDs or
	// with an unknown scope.
	ErrMalformedMarker = errors.New("source: malformed @relation marker")
	// ErrUnmatchedRange is returned when range_start and range_end markers
	// do not pair up.
	ErrUnmatchedRange = errors.New("source: unmatched range marker")
)

var markerPattern = regexp.MustCompile(`@relation\(([^)]*)\)`)

// parseMarkers extracts @relation(UID[, UID...], scope=S[, role=R]) markers.
// A missing scope means the marker applies to its own line. Range markers
// are paired by UID list; both ends carry the resolved range.
func parseMarkers(lines []string) ([]model.Marker, error) {
	var markers []model.Marker
	open := map[string][]int{}

	for idx, line := range lines {
		for _, match := range markerPattern.FindAllStringSubmatch(line, -1) {
			marker, err := parseMarker(match[1], idx+1)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", idx+1, err)
			}
			key := strings.Join(marker.UIDs, ",")

			switch marker.Scope {
			case ScopeRangeStart:
				open[key] = append(open[key], len(markers))
			case ScopeRangeEnd:
				stack := open[key]
				if len(stack) == 0 {
					return nil, fmt.Errorf("line %d: %w: range_end for %s without range_start", idx+1, ErrUnmatchedRange, key)
				}
				startIdx := stack[len(stack)-1]
				open[key] = stack[:len(stack)-1]
				markers[startIdx].RangeEnd = marker.Line
				marker.RangeBegin = markers[startIdx].RangeBegin
				marker.RangeEnd = marker.Line
			}
			markers = append(markers, marker)
		}
	}

	for key, stack := range open {
		if len(stack) > 0 {
			return nil, fmt.Errorf("line %d: %w: range_start for %s is never closed", markers[stack[0]].Line, ErrUnmatchedRange, key)
		}
	}
	return markers, nil
}

func parseMarker(args string, line int) (model.Marker, error) {
	marker := model.Marker{Scope: ScopeLine, Line: line, RangeBegin: line, RangeEnd: line}
	for _, raw := range strings.Split(args, ",") {
		part := strings.TrimSpace(raw)
		if part == "" {
			continue
		}
		key, value, isOption := strings.Cut(part, "=")
		if !isOption {
			marker.UIDs = append(marker.UIDs, part)
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "scope":
			marker.Scope = value
		case "role":
			marker.Role = value
		default:
			return marker, fmt.Errorf("%w: unknown option %q", ErrMalformedMarker, key)
		}
	}

	if len(marker.UIDs) == 0 {
		return marker, fmt.Errorf("%w: no requirement UID", ErrMalformedMarker)
	}
	switch marker.Scope {
	case ScopeFile, ScopeLine, ScopeRangeStart, ScopeRangeEnd:
	default:
		return marker, fmt.Errorf("%w: unknown scope %q", ErrMalformedMarker, marker.Scope)
	}
	return marker, nil
}
