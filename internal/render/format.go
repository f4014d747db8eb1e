package render

import (
	"encoding/base64"
	"html/template"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	dutch          = message.NewPrinter(language.Dutch)
	dutchThousands = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	unsafeFileChar = regexp.MustCompile(`[/\\"<>:|?*\x00-\x1f]`)

	// Below this magnitude float64 holds a price to the cent.
	exactPriceLimit = decimal.New(1, 15)
)

// FormatPrice renders a price with Dutch digit grouping: "25000" -> "25.000",
// "1234,5" -> "1.234,50". Input that is not a number is returned trimmed.
func FormatPrice(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimPrefix(s, "€"))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return ""
	}

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dutchThousands.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return strings.TrimSpace(raw)
	}

	if d.Abs().GreaterThanOrEqual(exactPriceLimit) {
		return groupDecimal(d)
	}
	if d.IsInteger() {
		return dutch.Sprintf("%d", d.IntPart())
	}
	f, _ := d.Round(2).Float64()
	return dutch.Sprintf("%.2f", f)
}

// groupDecimal formats d with Dutch separators without going through int64
// or float64.
func groupDecimal(d decimal.Decimal) string {
	places := int32(2)
	if d.IsInteger() {
		places = 0
	}
	s := d.StringFixed(places)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	if frac != "" {
		b.WriteString("," + frac)
	}
	return b.String()
}

// FormatDate formats t the way Dutch locales print short dates (d-m-yyyy).
func FormatDate(t time.Time) string {
	return t.Format("2-1-2006")
}

// Filename derives the download name of a sheet from its title:
// lower-cased, whitespace runs replaced by "-", with a .pdf suffix.
func Filename(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = whitespaceRun.ReplaceAllString(slug, "-")
	slug = unsafeFileChar.ReplaceAllString(slug, "")
	slug = strings.Trim(slug, ".")
	if slug == "" {
		slug = "listing"
	}
	return slug + ".pdf"
}

// imageSource turns a stored base64 image into a data URL, sniffing the MIME
// type from its first bytes. ok is false when img is not valid base64.
func imageSource(img string) (template.URL, bool) {
	img = strings.TrimSpace(img)
	if img == "" {
		return "", false
	}

	head := img
	if len(head) > 688 {
		head = head[:688]
	}
	sample, err := base64.StdEncoding.DecodeString(head)
	if err != nil {
		return "", false
	}

	mime := http.DetectContentType(sample)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}

	// Values are base64 so cannot break out of the attribute.
	return template.URL("data:" + mime + ";base64," + img), true //nolint:gosec
}
