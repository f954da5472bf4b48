package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is the region assumed for numbers written without a country
// code. The clinic operates in the Philippines.
const DefaultRegion = "PH"

var (
	supportedRegions = []string{
		DefaultRegion,
		"US",
	}
)

// NormalizePhone returns phone in E.164 form, or "" when no supported region
// recognizes it as a valid number.
func NormalizePhone(phone string) string {
	parsed := parseValid(phone)
	if parsed == nil {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// FormatPhoneNational renders phone the way it is written locally, e.g.
// "0917 123 4567" for a Philippine mobile number.
func FormatPhoneNational(phone string) string {
	parsed := parseValid(phone)
	if parsed == nil {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.NATIONAL)
}

func parseValid(phone string) *phonenumbers.PhoneNumber {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return nil
	}

	for _, region := range supportedRegions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsValidNumber(parsedNumber) {
			return parsedNumber
		}
	}
	return nil
}
