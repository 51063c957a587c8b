package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported UI language.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
)

// English sits first so it wins ties and acts as the matcher default.
var supported = []language.Tag{
	language.English,
	language.Arabic,
}

var matcher = language.NewMatcher(supported)

// MatchOne resolves a single preference string (an X-Locale value or a full
// Accept-Language header) against the supported locales. The bool reports
// whether the preference actually matched rather than falling through.
func MatchOne(preference string) (Locale, bool) {
	preference = strings.TrimSpace(preference)
	if preference == "" {
		return LocaleEnglish, false
	}
	tags, _, err := language.ParseAcceptLanguage(preference)
	if err != nil || len(tags) == 0 {
		return LocaleEnglish, false
	}
	_, index, conf := matcher.Match(tags...)
	if conf == language.No {
		return LocaleEnglish, false
	}
	if supported[index] == language.Arabic {
		return LocaleArabic, true
	}
	return LocaleEnglish, true
}

// arabicCountries lists the ISO codes whose visitors default to Arabic when
// no header states a preference.
var arabicCountries = map[string]struct{}{
	"SA": {}, "AE": {}, "KW": {}, "QA": {}, "BH": {}, "OM": {},
	"EG": {}, "JO": {}, "LB": {}, "IQ": {}, "SY": {}, "YE": {}, "PS": {},
	"MA": {}, "DZ": {}, "TN": {}, "LY": {}, "SD": {}, "MR": {},
}

// ForCountry maps an ISO country code to a default locale. The bool reports
// whether the country implied anything.
func ForCountry(code string) (Locale, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return LocaleEnglish, false
	}
	if _, ok := arabicCountries[code]; ok {
		return LocaleArabic, true
	}
	return LocaleEnglish, true
}

// Normalize coerces a configured locale string onto a supported Locale.
func Normalize(locale string) Locale {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), "ar") {
		return LocaleArabic
	}
	return LocaleEnglish
}
