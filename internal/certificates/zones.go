package certificates

import (
	"math"
	"slices"
	"strings"

	"github.com/JaimeStill/stark/internal/ocr"
)

// Zone is a rectangle on a reference page, in pixels from the top left.
type Zone struct {
	X, Y, W, H float64
}

// Layout maps field names to zones drawn on a reference page size.
type Layout struct {
	Width, Height float64
	Zones         map[string]Zone
}

const (
	zonePadding  = 2
	rowTolerance = 8
	lineBreak    = 10
)

var (
	size2015 = [2]float64{1128, 1584}
	size2021 = [2]float64{1057, 1496}
)

var applicant2015 = map[string]Zone{
	"applicantLastName":  {142, 360, 422, 38},
	"applicantFirstName": {568, 360, 422, 38},
	"personnummer":       {142, 414, 290, 36},
	"specialty":          {142, 484, 848, 46},
	"delmal":             {142, 536, 848, 48},
	"attachmentNumber":   {942, 86, 44, 38},
}

var applicant2021 = map[string]Zone{
	"applicantLastName":  {136, 400, 467, 52},
	"applicantFirstName": {608, 400, 365, 52},
	"personnummer":       {136, 472, 321, 52},
	"specialty":          {460, 472, 513, 52},
	"delmal":             {136, 578, 467, 53},
	"attachmentNumber":   {924, 86, 133, 33},
}

var signer2021 = map[string]Zone{
	"supervisorPlaceAndDate": {608, 1190, 365, 52},
	"supervisorNamePrinted":  {136, 1262, 511, 52},
	"supervisorPersonnummer": {652, 1262, 321, 52},
	"supervisorSpecialty":    {136, 1334, 837, 52},
	"supervisorSite":         {136, 1406, 837, 52},
}

// 2015 forms B6 and B7 share a layout below the applicant block.
var written2015 = map[string]Zone{
	"subject":                {142, 616, 848, 48},
	"description":            {142, 668, 848, 540},
	"supervisorSpecialty":    {142, 1220, 848, 40},
	"supervisorSite":         {142, 1266, 422, 40},
	"supervisorPlaceAndDate": {568, 1266, 422, 40},
	"supervisorNamePrinted":  {568, 1312, 422, 44},
}

var layouts = map[Kind]Layout{
	KindAusk2015: layout(size2015, applicant2015, map[string]Zone{
		"clinicAndPeriod":        {142, 616, 848, 48},
		"description":            {142, 700, 848, 508},
		"supervisorSpecialty":    {142, 1314, 848, 48},
		"supervisorSite":         {142, 1367, 422, 47},
		"supervisorPlaceAndDate": {568, 1378, 422, 36},
		"supervisorNamePrinted":  {568, 1420, 422, 48},
	}),
	KindKlin2015: layout(size2015, applicant2015, map[string]Zone{
		"clinicAndPeriod":        {142, 616, 848, 48},
		"description":            {142, 700, 848, 508},
		"supervisorSpecialty":    {142, 1314, 848, 48},
		"supervisorSite":         {142, 1367, 422, 47},
		"supervisorPlaceAndDate": {568, 1378, 422, 36},
		"supervisorNamePrinted":  {568, 1420, 422, 48},
	}),
	KindKurs2015: layout(size2015, applicant2015, map[string]Zone{
		"subjectAndPeriod":        {142, 616, 848, 48},
		"courseLeader":            {142, 668, 848, 40},
		"description":             {142, 720, 848, 488},
		"certifierIsCourseLeader": {142, 1220, 160, 30},
		"certifierIsSupervisor":   {322, 1220, 160, 30},
		"supervisorSpecialty":     {142, 1280, 848, 40},
		"supervisorSite":          {142, 1326, 422, 40},
		"supervisorPlaceAndDate":  {568, 1326, 422, 40},
		"supervisorNamePrinted":   {568, 1372, 422, 44},
	}),
	KindUtv2015:       layout(size2015, applicant2015, written2015),
	KindSkriftlig2015: layout(size2015, applicant2015, written2015),
	KindAusk2021: layout(size2021, applicant2021, signer2021, map[string]Zone{
		"clinic":      {136, 688, 547, 52},
		"period":      {688, 688, 285, 52},
		"description": {136, 764, 837, 321},
	}),
	KindKlin2021: layout(size2021, map[string]Zone{
		"applicantLastName":      {76, 402, 255, 15},
		"applicantFirstName":     {331, 402, 255, 15},
		"personnummer":           {76, 470, 177, 15},
		"specialty":              {253, 470, 322, 15},
		"delmal":                 {76, 573, 480, 40},
		"clinic":                 {76, 681, 299, 15},
		"period":                 {375, 681, 180, 15},
		"description":            {76, 705, 480, 281},
		"supervisorPlaceAndDate": {105, 1019, 200, 15},
		"supervisorNamePrinted":  {76, 1227, 279, 15},
		"supervisorSpecialty":    {76, 1294, 429, 15},
		"supervisorSite":         {76, 1360, 429, 15},
	}),
	KindKurs2021: layout(size2021, applicant2021, signer2021, map[string]Zone{
		"subject":                 {136, 656, 837, 52},
		"description":             {136, 730, 837, 355},
		"certifierIsSupervisor":   {136, 1120, 160, 30},
		"certifierIsCourseLeader": {316, 1120, 160, 30},
	}),
	KindUtv2021: layout(size2021, applicant2021, signer2021, map[string]Zone{
		"subject":     {136, 656, 837, 52},
		"description": {136, 730, 837, 355},
	}),
}

func layout(size [2]float64, parts ...map[string]Zone) Layout {
	l := Layout{Width: size[0], Height: size[1], Zones: map[string]Zone{}}
	for _, p := range parts {
		for k, z := range p {
			l.Zones[k] = z
		}
	}
	return l
}

// LayoutFor returns the zone layout of a form, if one is defined.
func LayoutFor(k Kind) (Layout, bool) {
	l, ok := layouts[k]
	return l, ok
}

// ReadZones returns the text inside every zone of l. Zones are scaled from
// the reference page to the page size implied by the words.
func ReadZones(words []ocr.Word, l Layout) map[string]string {
	out := make(map[string]string, len(l.Zones))
	if len(words) == 0 {
		return out
	}

	w, h := pageSize(words)
	sx, sy := w/l.Width, h/l.Height

	for name, z := range l.Zones {
		scaled := Zone{X: z.X * sx, Y: z.Y * sy, W: z.W * sx, H: z.H * sy}
		out[name] = ZoneText(words, scaled)
	}
	return out
}

// pageSize estimates the page from the furthest word, with a 10% margin.
func pageSize(words []ocr.Word) (float64, float64) {
	var maxX, maxY float64
	for _, w := range words {
		maxX = max(maxX, w.X1, w.X2)
		maxY = max(maxY, w.Y1, w.Y2)
	}
	return math.Ceil(maxX * 1.1), math.Ceil(maxY * 1.1)
}

type placed struct {
	x, y float64
	text string
}

// ZoneText joins the words that overlap z into lines, top to bottom and
// left to right.
func ZoneText(words []ocr.Word, z Zone) string {
	z = Zone{X: z.X - zonePadding, Y: z.Y - zonePadding, W: z.W + 2*zonePadding, H: z.H + 2*zonePadding}

	var items []placed
	for _, w := range words {
		t := strings.TrimSpace(w.Text)
		if t == "" {
			continue
		}
		x0, x1 := min(w.X1, w.X2), max(w.X1, w.X2)
		y0, y1 := min(w.Y1, w.Y2), max(w.Y1, w.Y2)
		if !intersects(x0, y0, x1, y1, z) {
			continue
		}
		items = append(items, placed{x: x0, y: y0, text: t})
	}
	if len(items) == 0 {
		return ""
	}

	slices.SortStableFunc(items, func(a, b placed) int {
		if dy := a.y - b.y; math.Abs(dy) > rowTolerance {
			return cmpFloat(dy)
		}
		return cmpFloat(a.x - b.x)
	})

	var lines []string
	var current []string
	y := items[0].y
	for _, it := range items {
		if math.Abs(it.y-y) > lineBreak {
			if len(current) > 0 {
				lines = append(lines, strings.Join(current, " "))
			}
			current = nil
			y = it.y
		}
		current = append(current, it.text)
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func intersects(x0, y0, x1, y1 float64, z Zone) bool {
	ix0 := max(x0, z.X)
	iy0 := max(y0, z.Y)
	ix1 := min(x1, z.X+z.W)
	iy1 := min(y1, z.Y+z.H)
	return ix1 > ix0 && iy1 > iy0
}

func cmpFloat(d float64) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}
