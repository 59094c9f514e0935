package phoneauth

import (
	"strings"

	"golang.org/x/text/width"
)

// Country is one entry of the dial code list.
type Country struct {
	Name     string `json:"name"`
	DialCode string `json:"dial_code"` // "+84" or "84"
}

// ComposePhoneNumber builds an E.164-style number from a country and the
// national number the user typed. Full-width digits are narrowed, separators
// dropped and the trunk prefix 0 removed. A national number already starting
// with "+" and the country's dial code is accepted as is.
func ComposePhoneNumber(c Country, national string) (string, error) {
	dial := digits(c.DialCode)
	if dial == "" {
		return "", ErrMissingDialCode
	}

	narrow := strings.TrimSpace(width.Narrow.String(national))
	number := digits(narrow)
	if strings.HasPrefix(narrow, "+") {
		number = strings.TrimPrefix(number, dial)
	}
	number = strings.TrimLeft(number, "0")
	if number == "" {
		return "", ErrEmptyPhoneNumber
	}
	return "+" + dial + number, nil
}

// NormalizeCode keeps the digits of a typed verification code, narrowing
// full-width ones first.
func NormalizeCode(code string) string {
	return digits(code)
}

func digits(s string) string {
	s = width.Narrow.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
