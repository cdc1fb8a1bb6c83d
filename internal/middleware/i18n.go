package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// Locale is the language and best-effort country attached to a request.
type Locale struct {
	Language string
	Country  string
}

type localeKey struct{}

// Locales the service answers in. The first entry is the default.
var supported = []language.Tag{language.English, language.Indonesian}

var matcher = language.NewMatcher(supported)

// countryHeaders are set by CDNs and load balancers in front of the service.
var countryHeaders = []string{"X-Country-Code", "X-IP-Country", "CF-IPCountry", "X-Appengine-Country"}

// I18N resolves the request locale from X-Locale, Accept-Language and the
// client's country, in that order.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	fallback := baseOf(defaultLocale)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc := resolveLocale(r, fallback, lookup)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), localeKey{}, loc)))
		})
	}
}

func resolveLocale(r *http.Request, fallback string, lookup CountryLookup) Locale {
	tags := requestTags(r)
	loc := Locale{Country: countryOf(r, tags, lookup)}
	switch {
	case len(tags) > 0:
		loc.Language = match(tags...)
	case loc.Country == "ID":
		loc.Language = "id"
	case loc.Country != "":
		loc.Language = "en"
	case fallback != "":
		loc.Language = fallback
	default:
		loc.Language = "en"
	}
	return loc
}

// requestTags returns the explicit X-Locale tag if valid, otherwise the
// Accept-Language tags ordered by quality.
func requestTags(r *http.Request) []language.Tag {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if tag, err := language.Parse(v); err == nil {
			return []language.Tag{tag}
		}
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil {
		return nil
	}
	return tags
}

func match(tags ...language.Tag) string {
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		index = 0
	}
	base, _ := supported[index].Base()
	return base.String()
}

func baseOf(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return ""
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	return match(tag)
}

func countryOf(r *http.Request, tags []language.Tag, lookup CountryLookup) string {
	for _, h := range countryHeaders {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			return strings.ToUpper(v)
		}
	}
	for _, tag := range tags {
		if region, confidence := tag.Region(); confidence == language.Exact {
			return region.String()
		}
	}
	// A bare "id" still places the client in Indonesia.
	if len(tags) > 0 && match(tags...) == "id" {
		return "ID"
	}
	if lookup != nil {
		if ip := clientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

// LocaleFromContext returns the request language, "en" when unset.
func LocaleFromContext(ctx context.Context) string {
	if loc, ok := ctx.Value(localeKey{}).(Locale); ok && loc.Language != "" {
		return loc.Language
	}
	return "en"
}

// CountryFromContext returns the ISO country code resolved for the request.
func CountryFromContext(ctx context.Context) string {
	loc, _ := ctx.Value(localeKey{}).(Locale)
	return loc.Country
}
