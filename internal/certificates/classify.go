package certificates

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Result is the outcome of classifying OCR text.
type Result struct {
	Kind   Kind   `json:"kind"`
	Reason string `json:"reason"`
}

type signal struct {
	re     *regexp.Regexp
	weight int
}

type candidate struct {
	kind    Kind
	why     string
	signals []signal
}

func re(expr string) *regexp.Regexp {
	return regexp.MustCompile(expr)
}

var (
	marker2015 = []*regexp.Regexp{re(`\bsosfs\s*2015[:\s]*8\b`), re(`\b2015:8\b`)}
	marker2021 = []*regexp.Regexp{re(`\b2021-2-7212\b`), re(`\bbilaga\s+\d{1,2}\b`)}
	appendixRe = re(`\bbilaga\s+(\d{1,2})\b`)

	ausk        = re(`\bauskultation\b`)
	bilaga8     = re(`\bbilaga\s+8\b`)
	klin        = re(`\bklinisk[a]?\s+tjanstgor`)
	kurs        = re(`\bkurs\b`)
	utv         = re(`\bkvalitets[- ]?|\butvecklingsarbet|\bdeltagande\s+i\s+utvecklingsarbete`)
	skriftligt  = re(`\bskriftligt\s+arbete\b|\bvetenskapligt\s+arbete\b`)
	sta3        = re(`\bsta?\s*3\b|\bst a\s*3\b`)
	tredjeland  = re(`\btredje\s*land\b|\btredjeland\b|\beu/ees.*utanf`)
	titel       = re(`\btitel\b`)
	handledare  = re(`\bhandledare\b`)
	beskrivning = re(`\bbeskrivning\s+av\s+(den\s+)?(kliniska\s+)?tjanstgor`)
	intygas     = re(`\bintygas?\b|\bkurstid\b`)
	syfte       = re(`\bsyfte\b|\bmetod\b|\bresultat\b`)
	deltagande  = re(`\bdeltagande\s+i\s+utvecklingsarbete`)
	ansokan     = re(`\bansokan\b`)
	speckomp    = re(`\bspecialistkompetens\b`)
	fullst      = re(`\bfullstandighet\b`)
	kontroll    = re(`\bkontroll\b`)
	uppnadd     = re(`\buppnad\s+specialistkompetens\b`)
)

var appendix2021 = map[int]Kind{
	5:  KindAnsokan2021,
	6:  KindFullst2021,
	7:  KindUppnadd2021,
	8:  KindAusk2021,
	9:  KindKlin2021,
	10: KindKurs2021,
	11: KindUtv2021,
	12: KindSTa32021,
	13: KindTredjeland2021,
}

// Candidate order is significant: equal scores resolve to the earlier entry.
var candidates2015 = []candidate{
	{KindSkriftlig2015, "2015 + skriftligt arbete", []signal{{skriftligt, 3}, {titel, 1}, {handledare, 1}}},
	{KindKlin2015, "2015 + klinisk tjänstgöring", []signal{{klin, 2}, {beskrivning, 1}}},
	{KindKurs2015, "2015 + kurs", []signal{{kurs, 2}, {intygas, 1}}},
	{KindUtv2015, "2015 + kvalitets- och utvecklingsarbete", []signal{{utv, 2}, {syfte, 1}}},
	{KindAusk2015, "2015 + auskultation", []signal{{ausk, 2}}},
}

var candidates2021 = []candidate{
	{KindAusk2021, "2021 + auskultation", []signal{{ausk, 3}, {bilaga8, 2}}},
	{KindKlin2021, "2021 + klinisk tjänstgöring", []signal{{klin, 3}, {beskrivning, 1}}},
	{KindKurs2021, "2021 + kurs", []signal{{kurs, 3}, {intygas, 1}}},
	{KindUtv2021, "2021 + deltagande i utvecklingsarbete", []signal{{utv, 3}, {deltagande, 1}}},
	{KindSTa32021, "2021 + STa3", []signal{{sta3, 3}}},
	{KindTredjeland2021, "2021 + tredjeland", []signal{{tredjeland, 3}}},
	{KindAnsokan2021, "2021 + ansökan", []signal{{ansokan, 1}, {speckomp, 1}}},
	{KindFullst2021, "2021 + fullständighet", []signal{{fullst, 1}, {kontroll, 1}}},
	{KindUppnadd2021, "2021 + uppnådd specialistkompetens", []signal{{uppnadd, 1}}},
}

var candidatesGeneric = []candidate{
	{KindSkriftlig2015, "generic + skriftligt arbete", []signal{{skriftligt, 2}}},
	{KindKlin2015, "generic + klinisk tjänstgöring", []signal{{klin, 2}}},
	{KindKurs2015, "generic + kurs", []signal{{kurs, 2}}},
	{KindUtv2015, "generic + kvalitets- och utvecklingsarbete", []signal{{utv, 2}}},
	{KindAusk2015, "generic + auskultation", []signal{{ausk, 2}}},
	{KindSTa32021, "generic + STa3", []signal{{sta3, 2}}},
	{KindTredjeland2021, "generic + tredjeland", []signal{{tredjeland, 2}}},
}

// Classify returns the best matching certificate kind for raw OCR text.
// A legible 2021 appendix number decides the kind directly. Otherwise the
// candidates of the detected regime are scored on weighted keywords, and
// text without any regime marker is scored on a generic subset. A top score
// of zero leaves the kind unset.
func Classify(raw string) Result {
	s := Normalize(raw)

	switch {
	case matchAny(s, marker2015):
		return best(s, candidates2015)
	case matchAny(s, marker2021):
		if m := appendixRe.FindStringSubmatch(s); m != nil {
			n, _ := strconv.Atoi(m[1])
			if k, ok := appendix2021[n]; ok {
				return Result{Kind: k, Reason: "2021 + bilaga " + strconv.Itoa(n)}
			}
		}
		return best(s, candidates2021)
	default:
		return best(s, candidatesGeneric)
	}
}

func best(s string, cands []candidate) Result {
	top, topScore := -1, 0
	for i, c := range cands {
		score := 0
		for _, sig := range c.signals {
			if sig.re.MatchString(s) {
				score += sig.weight
			}
		}
		if score > topScore {
			top, topScore = i, score
		}
	}

	if top < 0 {
		return Result{Reason: "no candidate matched"}
	}
	return Result{Kind: cands[top].kind, Reason: cands[top].why}
}

func matchAny(s string, res []*regexp.Regexp) bool {
	for _, r := range res {
		if r.MatchString(s) {
			return true
		}
	}
	return false
}

var dashes = strings.NewReplacer("–", "-", "—", "-", "−", "-", "‐", "-")

// Normalize folds text for keyword matching: diacritics are removed, dash
// variants become "-", whitespace runs collapse to one space and letters
// are lowercased.
func Normalize(s string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		s,
	)
	if err != nil {
		folded = s
	}
	folded = dashes.Replace(folded)
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}
