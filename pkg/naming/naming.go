// Package naming extracts the structured facts embedded in activity names:
// block number, day index and the buffer-day ("día remanente") marker.
// The encoding is free text, so parsing happens once per activity load and
// the rest of the code passes ParsedName around instead of re-matching.
package naming

import (
	"regexp"
	"strconv"
)

// DayNumberNone sorts unlabeled activities last among same-date, same-block peers.
const DayNumberNone = 999

// Ordered: longer/more specific patterns first so "Bloque 90" never parses as 9.
var blockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)-\s*Bloque\s+(\d+)`),
	regexp.MustCompile(`(?i)Bloque\s*(\d+)`),
	regexp.MustCompile(`(?i)Block\s+(\d+)`),
	regexp.MustCompile(`(?i)B(\d+)`),
	regexp.MustCompile(`(?i)sector\s+(\d+)`),
}

var dayPattern = regexp.MustCompile(`Día (\d+)`)

var bufferPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)remanente`),
	regexp.MustCompile(`(?i)último`),
	regexp.MustCompile(`(?i)ultimo`),
	regexp.MustCompile(`(?i)final`),
	regexp.MustCompile(`(?i)restante`),
	regexp.MustCompile(`(?i)comodín`),
	regexp.MustCompile(`(?i)comodin`),
	regexp.MustCompile(`(?i)buffer`),
}

// ParsedName holds everything the redistribution engine needs from a name.
type ParsedName struct {
	Block    int
	BlockOK  bool
	Day      int // DayNumberNone when absent
	IsBuffer bool
}

func Parse(name string) ParsedName {
	block, ok := ExtractBlockNumber(name)
	return ParsedName{
		Block:    block,
		BlockOK:  ok,
		Day:      ExtractDayNumber(name),
		IsBuffer: IsBufferDay(name),
	}
}

// ExtractBlockNumber returns the block number embedded in the activity
// name, trying each pattern in order. Digits match greedily, so multi-digit
// blocks are never truncated.
func ExtractBlockNumber(name string) (int, bool) {
	for _, p := range blockPatterns {
		if m := p.FindStringSubmatch(name); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return n, true
		}
	}
	return 0, false
}

// ExtractDayNumber returns the "Día N" index, or DayNumberNone when absent.
func ExtractDayNumber(name string) int {
	if m := dayPattern.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return DayNumberNone
}

// IsBufferDay reports whether the name marks the block's remainder day,
// the slot that absorbs hectare variance.
func IsBufferDay(name string) bool {
	for _, p := range bufferPatterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}
