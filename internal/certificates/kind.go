// Package certificates classifies OCR text from Swedish specialist-training
// certificates (SOSFS 2015:8 and HSLF-FS 2021:8 appendices) and extracts the
// fields printed on them.
package certificates

import (
	"encoding/json"
	"fmt"
)

// Kind identifies a certificate form. The zero value means unclassified and
// serializes as JSON null.
type Kind string

const (
	KindAusk2015       Kind = "2015-B3-AUSK"
	KindKlin2015       Kind = "2015-B4-KLIN"
	KindKurs2015       Kind = "2015-B5-KURS"
	KindUtv2015        Kind = "2015-B6-UTV"
	KindSkriftlig2015  Kind = "2015-B7-SKRIFTLIGT"
	KindAnsokan2021    Kind = "2021-B5-ANS"
	KindFullst2021     Kind = "2021-B6-FULLST"
	KindUppnadd2021    Kind = "2021-B7-UPPN"
	KindAusk2021       Kind = "2021-B8-AUSK"
	KindKlin2021       Kind = "2021-B9-KLIN"
	KindKurs2021       Kind = "2021-B10-KURS"
	KindUtv2021        Kind = "2021-B11-UTV"
	KindSTa32021       Kind = "2021-B12-STa3"
	KindTredjeland2021 Kind = "2021-B13-TREDJELAND"
)

// Regime is the regulation a form belongs to.
type Regime string

const (
	Regime2015 Regime = "2015"
	Regime2021 Regime = "2021"
)

// Record is the domain record a confirmed certificate becomes.
type Record string

const (
	RecordNone      Record = ""
	RecordPlacement Record = "placement"
	RecordCourse    Record = "course"
)

// Info describes a certificate kind.
type Info struct {
	Kind     Kind   `json:"kind"`
	Label    string `json:"label"`
	Regime   Regime `json:"regime"`
	Appendix int    `json:"appendix"`
	HasDates bool   `json:"hasDates"`
	Record   Record `json:"record"`
}

var catalog = []Info{
	{KindAusk2015, "Intyg för auskultation", Regime2015, 3, true, RecordPlacement},
	{KindKlin2015, "Intyg för klinisk tjänstgöring", Regime2015, 4, true, RecordPlacement},
	{KindKurs2015, "Intyg för kurs", Regime2015, 5, true, RecordCourse},
	{KindUtv2015, "Intyg för kvalitets- och utvecklingsarbete", Regime2015, 6, false, RecordPlacement},
	{KindSkriftlig2015, "Självständigt skriftligt arbete", Regime2015, 7, false, RecordPlacement},
	{KindAnsokan2021, "Ansökan om bevis om specialistkompetens", Regime2021, 5, true, RecordNone},
	{KindFullst2021, "Kontroll av fullständighet", Regime2021, 6, true, RecordNone},
	{KindUppnadd2021, "Uppnådd specialistkompetens", Regime2021, 7, true, RecordNone},
	{KindAusk2021, "Intyg för auskultation", Regime2021, 8, true, RecordPlacement},
	{KindKlin2021, "Intyg för klinisk tjänstgöring", Regime2021, 9, true, RecordPlacement},
	{KindKurs2021, "Intyg för kurs", Regime2021, 10, true, RecordCourse},
	{KindUtv2021, "Intyg för deltagande i utvecklingsarbete", Regime2021, 11, false, RecordPlacement},
	{KindSTa32021, "Delmål STa3", Regime2021, 12, true, RecordPlacement},
	{KindTredjeland2021, "Delmål för specialistläkare från tredjeland", Regime2021, 13, true, RecordPlacement},
}

var byKind = func() map[Kind]Info {
	m := make(map[Kind]Info, len(catalog))
	for _, info := range catalog {
		m[info.Kind] = info
	}
	return m
}()

// Kinds returns every known kind in declaration order.
func Kinds() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the description of k.
func Lookup(k Kind) (Info, bool) {
	info, ok := byKind[k]
	return info, ok
}

// ParseKind validates s as a known kind. The empty string parses to the
// zero Kind.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return "", nil
	}
	if _, ok := byKind[Kind(s)]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return Kind(s), nil
}

// Info returns the description of k, or the zero Info for unknown kinds.
func (k Kind) Info() Info {
	return byKind[k]
}

// HasDates reports whether the form carries a service period. Unclassified
// text is assumed to.
func (k Kind) HasDates() bool {
	if k == "" {
		return true
	}
	info, ok := byKind[k]
	return !ok || info.HasDates
}

func (k Kind) MarshalJSON() ([]byte, error) {
	if k == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(k))
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*k = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
