package certificates

import (
	"regexp"
	"strings"

	"github.com/JaimeStill/stark/internal/dates"
	"github.com/JaimeStill/stark/internal/ocr"
)

// Signing roles on course certificates.
const (
	RoleSupervisor   = "handledare"
	RoleCourseLeader = "kursledare"
)

// Signer is the person certifying the activity.
type Signer struct {
	Role           string `json:"role,omitempty"`
	Name           string `json:"name,omitempty"`
	Speciality     string `json:"speciality,omitempty"`
	Site           string `json:"site,omitempty"`
	PersonalNumber string `json:"personalNumber,omitempty"`
	PlaceDate      string `json:"placeDate,omitempty"`
}

// Fields are the values read from a certificate. Every field is optional.
type Fields struct {
	Kind           Kind         `json:"kind"`
	FullName       string       `json:"fullName,omitempty"`
	FirstName      string       `json:"firstName,omitempty"`
	LastName       string       `json:"lastName,omitempty"`
	PersonalNumber string       `json:"personalNumber,omitempty"`
	Specialty      string       `json:"specialty,omitempty"`
	Codes          []string     `json:"codes,omitempty"`
	Subject        string       `json:"subject,omitempty"`
	Clinic         string       `json:"clinic,omitempty"`
	Period         dates.Period `json:"period"`
	Description    string       `json:"description,omitempty"`
	Signer         Signer       `json:"signer"`
}

type textLabels struct {
	clinic       *regexp.Regexp
	subject      *regexp.Regexp
	subjectBlock bool
	description  []*regexp.Regexp
}

func ci(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

var (
	activitiesLabel   = ci(`Utbildningsaktiviteter som sökanden genomfört`)
	verificationLabel = ci(`Hur det kontrollerats`)
	signerNameLabel   = ci(`^Namnförtydligande`)
	signerSpecLabel   = ci(`^Specialitet\s*:?\s*$`)
	signerSiteLabel   = ci(`^Tjänsteställe`)
	signerPlaceLabel  = ci(`^Ort (och|o) datum`)
	courseLeaderLabel = ci(`^Kursledare`)
)

var labels = map[Kind]textLabels{
	KindAusk2015: {
		clinic:      ci(`(Tjänstgöringsställe|Auskultation)`),
		description: []*regexp.Regexp{ci(`Beskrivning av auskultationen`)},
	},
	KindKlin2015: {
		clinic:      ci(`Tjänstgöringsställe`),
		description: []*regexp.Regexp{ci(`Beskrivning av den kliniska tjänstgöringen`)},
	},
	KindKurs2015: {
		subject:      ci(`Kursens ämne`),
		subjectBlock: true,
		description:  []*regexp.Regexp{ci(`Beskrivning av kursen`)},
	},
	KindUtv2015: {
		subject:      ci(`Ämne för kvalitets- och utvecklingsarbete`),
		subjectBlock: true,
		description:  []*regexp.Regexp{ci(`Beskrivning av kvalitets- och utvecklingsarbetet`)},
	},
	KindSkriftlig2015: {
		subject:     ci(`Ämne för självständigt skriftligt arbete`),
		description: []*regexp.Regexp{ci(`Beskrivning av det självständiga skriftliga arbetet`)},
	},
	KindAusk2021: {
		clinic:      ci(`(Tjänstgöringsställe|Auskultation)`),
		description: []*regexp.Regexp{ci(`Beskrivning av auskultationen`)},
	},
	KindKlin2021: {
		clinic:      ci(`(Tjänstgöringsställe|klinisk tjänstgöring)`),
		description: []*regexp.Regexp{ci(`Beskrivning av den kliniska tjänstgöringen`)},
	},
	KindKurs2021: {
		subject:     ci(`Kursens ämne`),
		description: []*regexp.Regexp{ci(`Beskrivning av kursen`)},
	},
	KindUtv2021: {
		subject:     ci(`Utvecklingsarbetets ämne`),
		description: []*regexp.Regexp{ci(`Beskrivning av ST-läkarens deltagande`)},
	},
	KindSTa32021: {
		description: []*regexp.Regexp{activitiesLabel, verificationLabel},
	},
	KindTredjeland2021: {
		description: []*regexp.Regexp{activitiesLabel, verificationLabel},
	},
}

// Extract reads the fields of a certificate of the given kind. Word boxes
// are read through the form's zone layout when one exists. Otherwise the
// fields are found by their printed labels in text.
func Extract(kind Kind, text string, words []ocr.Word) Fields {
	var f Fields
	if l, ok := LayoutFor(kind); ok && len(words) > 0 {
		f = fromZones(kind, ReadZones(words, l))
	} else {
		f = fromText(kind, text)
	}
	f.Kind = kind

	if f.Period.Empty() && kind.HasDates() {
		f.Period = dates.First(text)
	}
	if kind.Info().Regime == Regime2021 {
		f.Codes = NormalizeCodes2021(f.Codes)
	}
	if f.FullName == "" {
		f.FullName = strings.TrimSpace(f.FirstName + " " + f.LastName)
	}
	if f.Signer.Role == "" && kind.Info().Record == RecordCourse {
		f.Signer.Role = RoleSupervisor
	}
	return f
}

func fromZones(kind Kind, z map[string]string) Fields {
	f := Fields{
		FirstName:      z["applicantFirstName"],
		LastName:       z["applicantLastName"],
		PersonalNumber: strings.Join(strings.Fields(z["personnummer"]), ""),
		Specialty:      z["specialty"],
		Codes:          Codes(z["delmal"]),
		Subject:        z["subject"],
		Clinic:         z["clinic"],
		Description:    z["description"],
		Signer: Signer{
			Name:           z["supervisorNamePrinted"],
			Speciality:     z["supervisorSpecialty"],
			Site:           z["supervisorSite"],
			PersonalNumber: strings.Join(strings.Fields(z["supervisorPersonnummer"]), ""),
			PlaceDate:      z["supervisorPlaceAndDate"],
		},
	}

	if line, ok := z["clinicAndPeriod"]; ok {
		s := dates.SplitLine(strings.ReplaceAll(line, "\n", " "))
		f.Clinic, f.Period = s.Clean, s.Period
	}
	if line, ok := z["subjectAndPeriod"]; ok {
		s := dates.SplitLine(strings.ReplaceAll(line, "\n", " "))
		f.Subject, f.Period = s.Clean, s.Period
	}
	if p, ok := z["period"]; ok {
		f.Period = dates.First(p)
	}

	if checked(z["certifierIsCourseLeader"]) {
		f.Signer.Role = RoleCourseLeader
		if f.Signer.Name == "" {
			f.Signer.Name = z["courseLeader"]
		}
	}
	return f
}

// checked reports whether a checkbox zone holds a mark.
func checked(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s != "" && strings.ContainsAny(s, "x☒✓✔")
}

func fromText(kind Kind, text string) Fields {
	var f Fields
	f.FirstName, f.LastName = Name(text)
	f.PersonalNumber = PersonalNumber(text)
	f.Specialty = Specialty(text)
	f.Codes = Codes(text)

	spec, ok := labels[kind]
	if !ok {
		return f
	}

	if spec.clinic != nil {
		s := dates.SplitLine(stripLabel(LineMatching(text, spec.clinic), spec.clinic))
		f.Clinic, f.Period = s.Clean, s.Period
	}
	if spec.subject != nil {
		if spec.subjectBlock {
			f.Subject = BlockAfter(text, spec.subject)
		} else {
			f.Subject = SubjectAfter(text, spec.subject)
		}
	}

	var blocks []string
	for _, l := range spec.description {
		if b := BlockAfter(text, l); b != "" {
			blocks = append(blocks, b)
		}
	}
	f.Description = strings.Join(blocks, "\n\n")

	f.Signer = Signer{
		Name:       ValueAfter(text, signerNameLabel),
		Speciality: ValueAfter(text, signerSpecLabel),
		Site:       ValueAfter(text, signerSiteLabel),
		PlaceDate:  ValueAfter(text, signerPlaceLabel),
	}
	if kind.Info().Record == RecordCourse && checkedRe.MatchString(text) {
		f.Signer.Role = RoleCourseLeader
		if f.Signer.Name == "" {
			f.Signer.Name = ValueAfter(text, courseLeaderLabel)
		}
	}
	return f
}

// stripLabel removes a leading field label, and a colon after it, from a
// clinic line so only the value remains.
func stripLabel(line string, label *regexp.Regexp) string {
	loc := label.FindStringIndex(line)
	if loc == nil || loc[0] != 0 {
		return line
	}
	rest := strings.TrimSpace(line[loc[1]:])
	rest = strings.TrimPrefix(rest, "och period")
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), ":"))
}
