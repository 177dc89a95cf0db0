package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers written without a country code.
const DefaultRegion = "US"

// NormalizePhone returns the number in E.164 form, or "" when it cannot be
// parsed as a valid number.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, DefaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
