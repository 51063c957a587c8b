package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Mas3oood/Bovali/internal/i18n"
)

type localeContextKey struct{}
type countryContextKey struct{}

// CountryLookup resolves an ISO country code for an IP address.
type CountryLookup func(ip string) (string, error)

// Locale detects the request locale and stores it with the resolved
// country in the context. Precedence: the X-Locale header, then
// Accept-Language, then the country of the caller, then the configured
// default.
func Locale(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	fallback := i18n.Normalize(defaultLocale)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			locale := detectLocale(r, fallback, country)

			ctx := context.WithValue(r.Context(), localeContextKey{}, locale)
			if country != "" {
				ctx = context.WithValue(ctx, countryContextKey{}, country)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback i18n.Locale, country string) i18n.Locale {
	if locale, ok := i18n.MatchOne(r.Header.Get("X-Locale")); ok {
		return locale
	}
	if locale, ok := i18n.MatchOne(r.Header.Get("Accept-Language")); ok {
		return locale
	}
	if locale, ok := i18n.ForCountry(country); ok {
		return locale
	}
	return fallback
}

// ResolveCountry picks a best-effort ISO country code: proxy headers
// first, then the region of the locale headers, then the IP lookup.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	for _, key := range []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"} {
		if v := strings.TrimSpace(r.Header.Get(key)); v != "" {
			return strings.ToUpper(v)
		}
	}
	if region := localeRegion(r.Header.Get("X-Locale")); region != "" {
		return region
	}
	if region := localeRegion(r.Header.Get("Accept-Language")); region != "" {
		return region
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

// localeRegion pulls the region subtag out of a language header, so
// "ar-SA" and "en_GB" yield "SA" and "GB".
func localeRegion(header string) string {
	for _, part := range strings.Split(header, ",") {
		token := strings.TrimSpace(strings.Split(part, ";")[0])
		if token == "" {
			continue
		}
		if idx := strings.IndexAny(token, "-_"); idx > 0 && idx < len(token)-1 {
			region := token[idx+1:]
			if len(region) == 2 {
				return strings.ToUpper(region)
			}
		}
	}
	return ""
}

// LocaleFromContext returns the detected locale, defaulting to English.
func LocaleFromContext(ctx context.Context) i18n.Locale {
	if v, ok := ctx.Value(localeContextKey{}).(i18n.Locale); ok {
		return v
	}
	return i18n.LocaleEnglish
}

// CountryFromContext returns the resolved ISO country code, empty when
// none could be determined.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(countryContextKey{}).(string); ok {
		return v
	}
	return ""
}
