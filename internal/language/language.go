package language

import "strings"

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "japanese")
}

// Languages the transcription engine handles well for sung vocals.
// Hints outside this table still pass through as-is; the engine
// auto-detects when the hint is empty.
var languages = []entry{
	{"ja", "Japanese", []string{"japanese"}},
	{"en", "English", []string{"english"}},
	{"ko", "Korean", []string{"korean"}},
	{"zh", "Chinese", []string{"chinese", "mandarin"}},
	{"es", "Spanish", []string{"spanish"}},
	{"fr", "French", []string{"french"}},
	{"de", "German", []string{"german"}},
	{"it", "Italian", []string{"italian"}},
	{"pt", "Portuguese", []string{"portuguese"}},
	{"ru", "Russian", []string{"russian"}},
	{"id", "Indonesian", []string{"indonesian"}},
	{"th", "Thai", []string{"thai"}},
	{"vi", "Vietnamese", []string{"vietnamese"}},
}

var (
	byCode2 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// ToISO2 converts a recognized language code or word to ISO 639-1.
// Returns empty string for unrecognized input.
// If the input is already a 2-letter code (even if unknown), it passes through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Auto-detect" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Auto-detect"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsKnown reports whether the code maps to a language in the table.
func IsKnown(code string) bool {
	return lookup(code) != nil
}
