package prescription

import (
	"regexp"
	"strings"
)

var (
	segmentSplit    = regexp.MustCompile(`[;\n]`)
	dosagePattern   = regexp.MustCompile(`(?i)(\d+\s*(?:mg|g|ml|units?))`)
	freqPattern     = regexp.MustCompile(`(?i)\b(?:once|twice|thrice|\d+\s*times?)\s*(?:daily|per\s*day|a\s*day)\b`)
	durationPattern = regexp.MustCompile(`(?i)(?:\bfor\s*)?\b(\d+\s*(?:days?|weeks?|months?))\b`)
)

// Parse turns free-text prescriptions into one entry per segment. Segments
// are separated by ';' or newlines. The first word of a segment is taken as
// the medication name and dosage, frequency and duration are scanned for
// independently; a segment where none of them is found is kept whole as the
// medication name.
func Parse(text string) []MedicationEntry {
	entries := []MedicationEntry{}
	for _, raw := range segmentSplit.Split(text, -1) {
		segment := strings.TrimSpace(raw)
		if segment == "" {
			continue
		}
		entries = append(entries, parseSegment(segment))
	}
	return entries
}

func parseSegment(segment string) MedicationEntry {
	entry := MedicationEntry{
		Dosage:    firstSubmatch(dosagePattern, segment),
		Frequency: normalizeSpace(freqPattern.FindString(segment)),
		Duration:  firstSubmatch(durationPattern, segment),
	}

	if entry.Dosage == "" && entry.Frequency == "" && entry.Duration == "" {
		entry.Medication = segment
		return entry
	}

	entry.Medication = medicationName(strings.Fields(segment)[0])
	return entry
}

// medicationName strips a dose glued onto the name, as in "Amoxicillin500mg".
func medicationName(token string) string {
	if loc := dosagePattern.FindStringIndex(token); loc != nil && loc[0] > 0 {
		return token[:loc[0]]
	}
	return token
}

func firstSubmatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return normalizeSpace(m[1])
}

// normalizeSpace collapses runs of whitespace inside a matched phrase so
// "twice  a\tday" reads as "twice a day".
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
