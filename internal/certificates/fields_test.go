package certificates_test

import (
	"slices"
	"testing"

	"github.com/JaimeStill/stark/internal/certificates"
	"github.com/JaimeStill/stark/internal/ocr"
)

func TestNormalizeCodes2021(t *testing.T) {
	got := certificates.NormalizeCodes2021([]string{"sta3", "A1", "STc19", "b2", "STA3"})
	want := []string{"STa1", "STa3", "STb2"}
	if !slices.Equal(got, want) {
		t.Errorf("NormalizeCodes2021 = %v, want %v", got, want)
	}
}

func TestCodes(t *testing.T) {
	got := certificates.Codes("Delmål: a1, b2 och STc3; a1 igen")
	want := []string{"A1", "B2", "STC3"}
	if !slices.Equal(got, want) {
		t.Errorf("Codes = %v, want %v", got, want)
	}
}

func TestZoneText(t *testing.T) {
	words := []ocr.Word{
		{Text: "Lund", X1: 10, Y1: 130, X2: 40, Y2: 140},
		{Text: "kliniken", X1: 70, Y1: 102, X2: 120, Y2: 112},
		{Text: "Medicin", X1: 10, Y1: 100, X2: 60, Y2: 110},
		{Text: "utanför", X1: 500, Y1: 100, X2: 560, Y2: 110},
		{Text: "  ", X1: 20, Y1: 100, X2: 30, Y2: 110},
	}

	got := certificates.ZoneText(words, certificates.Zone{X: 0, Y: 90, W: 200, H: 60})
	if want := "Medicin kliniken\nLund"; got != want {
		t.Errorf("ZoneText = %q, want %q", got, want)
	}

	if got := certificates.ZoneText(words, certificates.Zone{X: 0, Y: 0, W: 10, H: 10}); got != "" {
		t.Errorf("empty zone = %q", got)
	}
}

func TestExtractZonesScaled(t *testing.T) {
	// the corner word puts the page at about twice the 2015 reference size
	words := []ocr.Word{
		{Text: "Kirurgen", X1: 300, Y1: 1240, X2: 420, Y2: 1262},
		{Text: "2019-01-03–2019-06-30", X1: 430, Y1: 1240, X2: 700, Y2: 1262},
		{Text: "19800101-1234", X1: 290, Y1: 835, X2: 500, Y2: 860},
		{Text: ".", X1: 2040, Y1: 2870, X2: 2050, Y2: 2880},
	}

	f := certificates.Extract(certificates.KindKlin2015, "", words)

	if f.Clinic != "Kirurgen" {
		t.Errorf("Clinic = %q, want Kirurgen", f.Clinic)
	}
	if f.Period.StartISO != "2019-01-03" || f.Period.EndISO != "2019-06-30" {
		t.Errorf("Period = %+v", f.Period)
	}
	if f.PersonalNumber != "19800101-1234" {
		t.Errorf("PersonalNumber = %q", f.PersonalNumber)
	}
	if f.Kind != certificates.KindKlin2015 {
		t.Errorf("Kind = %q", f.Kind)
	}
}

const klin2021 = `HSLF-FS 2021:8 Bilaga 9
Efternamn Förnamn
Svensson Anna Maria
Personnummer
19850312-1234
Specialitet som ansökan avser: Psykiatri
Delmål som intyget avser: a3, STc19, b2, sta3
Tjänstgöringsställe och period: Psykiatri Nord 2019-01-03 – 2019-06-30
Beskrivning av den kliniska tjänstgöringen
Heltid på slutenvården.
Jourtjänstgöring.

Namnförtydligande
Karin Berg
`

func TestExtractText(t *testing.T) {
	f := certificates.Extract(certificates.KindKlin2021, klin2021, nil)

	checks := []struct {
		field, got, want string
	}{
		{"FirstName", f.FirstName, "Anna Maria"},
		{"LastName", f.LastName, "Svensson"},
		{"FullName", f.FullName, "Anna Maria Svensson"},
		{"PersonalNumber", f.PersonalNumber, "19850312-1234"},
		{"Specialty", f.Specialty, "Psykiatri"},
		{"Clinic", f.Clinic, "Psykiatri Nord"},
		{"StartISO", f.Period.StartISO, "2019-01-03"},
		{"EndISO", f.Period.EndISO, "2019-06-30"},
		{"Description", f.Description, "Heltid på slutenvården.\nJourtjänstgöring."},
		{"Signer.Name", f.Signer.Name, "Karin Berg"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}

	if want := []string{"STa3", "STb2"}; !slices.Equal(f.Codes, want) {
		t.Errorf("Codes = %v, want %v", f.Codes, want)
	}
}

func TestExtractWithoutDates(t *testing.T) {
	text := "SOSFS 2015:8\nÄmne för kvalitets- och utvecklingsarbete\nFörbättrad läkemedelsgenomgång\n\nOrt och datum\nLund 2020-05-05"
	f := certificates.Extract(certificates.KindUtv2015, text, nil)

	if !f.Period.Empty() {
		t.Errorf("Period = %+v, want empty", f.Period)
	}
	if f.Subject != "Förbättrad läkemedelsgenomgång" {
		t.Errorf("Subject = %q", f.Subject)
	}
	if f.Signer.PlaceDate != "Lund 2020-05-05" {
		t.Errorf("PlaceDate = %q", f.Signer.PlaceDate)
	}
}

func TestExtractCourseLeader(t *testing.T) {
	text := "HSLF-FS 2021:8 Bilaga 10\nKursens ämne\nPsykofarmakologi\n\nX Kursledare\nNamnförtydligande\nEva Ek\n"
	f := certificates.Extract(certificates.KindKurs2021, text, nil)

	if f.Signer.Role != certificates.RoleCourseLeader {
		t.Errorf("Role = %q, want %q", f.Signer.Role, certificates.RoleCourseLeader)
	}
	if f.Subject != "Psykofarmakologi" {
		t.Errorf("Subject = %q", f.Subject)
	}
	if f.Signer.Name != "Eva Ek" {
		t.Errorf("Signer.Name = %q", f.Signer.Name)
	}
}
