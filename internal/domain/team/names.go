package team

import (
	"maps"
	"strings"
	"unicode"
)

// Rules is the data-driven name normalization table. Steps run in a fixed
// order: override, punctuation strip, token expansion, trailing mascot strip.
type Rules struct {
	overrides  map[string]map[string]string
	expansions map[string]string
	stopwords  map[string]struct{}
}

func NewRules(expansions map[string]string, stopwords []string) *Rules {
	r := &Rules{
		overrides:  make(map[string]map[string]string),
		expansions: make(map[string]string, len(expansions)),
		stopwords:  make(map[string]struct{}, len(stopwords)),
	}
	for from, to := range expansions {
		r.expansions[strings.ToLower(from)] = strings.ToLower(to)
	}
	for _, w := range stopwords {
		r.stopwords[strings.ToLower(w)] = struct{}{}
	}
	return r
}

func DefaultRules() *Rules {
	r := NewRules(defaultExpansions, defaultStopwords)
	for league, table := range defaultOverrides {
		r = r.WithOverrides(league, table)
	}
	return r
}

// WithOverrides returns a copy of r with an operator-curated alias table for
// one league merged in. Keys match case-insensitively on whitespace-collapsed
// names.
func (r *Rules) WithOverrides(league string, table map[string]string) *Rules {
	out := &Rules{
		overrides:  make(map[string]map[string]string, len(r.overrides)+1),
		expansions: r.expansions,
		stopwords:  r.stopwords,
	}
	for code, existing := range r.overrides {
		out.overrides[code] = maps.Clone(existing)
	}

	code := strings.ToUpper(strings.TrimSpace(league))
	if out.overrides[code] == nil {
		out.overrides[code] = make(map[string]string, len(table))
	}
	for from, to := range table {
		out.overrides[code][overrideKey(from)] = strings.Join(strings.Fields(to), " ")
	}
	return out
}

// Override returns the curated name for raw, if any.
func (r *Rules) Override(league, raw string) (string, bool) {
	table := r.overrides[strings.ToUpper(strings.TrimSpace(league))]
	name, ok := table[overrideKey(raw)]
	return name, ok
}

// Canonical lowercases, strips punctuation, expands abbreviations and
// optionally drops trailing mascot/color words. A token written with a
// trailing period ("St.") is never expanded.
func (r *Rules) Canonical(name string, stripMascots bool) string {
	return strings.Join(r.tokens(name, stripMascots), " ")
}

func (r *Rules) tokens(name string, stripMascots bool) []string {
	out := make([]string, 0, 4)
	for _, raw := range splitName(name) {
		period := strings.HasSuffix(raw, ".")
		clean := cleanToken(raw)
		if clean == "" {
			continue
		}
		if exp, ok := r.expansions[clean]; ok && !period {
			out = append(out, strings.Fields(exp)...)
			continue
		}
		out = append(out, clean)
	}

	if stripMascots {
		for len(out) > 1 {
			if _, ok := r.stopwords[out[len(out)-1]]; !ok {
				break
			}
			out = out[:len(out)-1]
		}
	}
	return out
}

func overrideKey(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

func splitName(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '/' || r == '(' || r == ')'
	})
}

func cleanToken(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// basicTokens lowercases and strips punctuation without any expansion.
func basicTokens(name string) []string {
	out := make([]string, 0, 4)
	for _, raw := range splitName(name) {
		if clean := cleanToken(raw); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// containsWords reports whether needle appears in hay as a contiguous run
// of whole tokens.
func containsWords(hay, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(hay) {
		return false
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j := range needle {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

var defaultExpansions = map[string]string{
	"st":   "state",
	"univ": "university",
	"intl": "international",
	"mt":   "mount",
	"byu":  "brigham young",
	"lsu":  "louisiana state",
	"usc":  "southern california",
	"ucf":  "central florida",
	"smu":  "southern methodist",
	"tcu":  "texas christian",
	"unlv": "nevada las vegas",
	"utep": "texas el paso",
	"vcu":  "virginia commonwealth",
	"fiu":  "florida international",
	"fau":  "florida atlantic",
}

var defaultStopwords = []string{
	"aggies", "badgers", "bears", "bearcats", "bruins", "buckeyes", "bulldogs", "bulls",
	"cardinal", "cardinals", "cavaliers", "cougars", "cowboys", "crimson", "cyclones",
	"deacons", "demon", "devils", "blue", "ducks", "eagles", "fighting", "gators",
	"gophers", "hawkeyes", "heels", "hokies", "hoosiers", "hurricanes", "huskies",
	"illini", "irish", "jackets", "jayhawks", "knights", "lions", "longhorns",
	"mountaineers", "nittany", "owls", "panthers", "raiders", "rams", "razorbacks",
	"rebels", "red", "seminoles", "sooners", "spartans", "tar", "terrapins", "tide",
	"tigers", "trojans", "utes", "volunteers", "wildcats", "wolfpack", "wolverines",
	"yellow",
}

var defaultOverrides = map[string]map[string]string{
	"NBA": {
		"la lakers":   "Los Angeles Lakers",
		"la clippers": "Los Angeles Clippers",
	},
	"NCAAB": {
		"uconn":    "Connecticut",
		"ole miss": "Mississippi",
		"pitt":     "Pittsburgh",
		"umass":    "Massachusetts",
	},
	"NCAAF": {
		"ole miss": "Mississippi",
		"pitt":     "Pittsburgh",
	},
}
