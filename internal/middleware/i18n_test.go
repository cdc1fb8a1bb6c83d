package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		fallback string
		lookup   CountryLookup
		want     Locale
	}{
		{
			name:    "x-locale overrides accept-language",
			headers: map[string]string{"X-Locale": "ID", "Accept-Language": "en-US"},
			want:    Locale{Language: "id", Country: "ID"},
		},
		{
			name:    "accept-language region",
			headers: map[string]string{"Accept-Language": "en-GB,en;q=0.9"},
			want:    Locale{Language: "en", Country: "GB"},
		},
		{
			name:    "indonesian preference",
			headers: map[string]string{"Accept-Language": "id-ID,en;q=0.8"},
			want:    Locale{Language: "id", Country: "ID"},
		},
		{
			name:    "quality ordering respected",
			headers: map[string]string{"Accept-Language": "en;q=0.2,id;q=0.9"},
			want:    Locale{Language: "id", Country: "ID"},
		},
		{
			name:    "unsupported language answers in english",
			headers: map[string]string{"Accept-Language": "fr-FR,fr;q=0.9"},
			want:    Locale{Language: "en", Country: "FR"},
		},
		{
			name:    "malformed x-locale ignored",
			headers: map[string]string{"X-Locale": "!!", "Accept-Language": "id"},
			want:    Locale{Language: "id", Country: "ID"},
		},
		{
			name:    "cdn country header picks language",
			headers: map[string]string{"CF-IPCountry": "id"},
			want:    Locale{Language: "id", Country: "ID"},
		},
		{
			name:    "country header precedence",
			headers: map[string]string{"X-Country-Code": "us", "CF-IPCountry": "id"},
			want:    Locale{Language: "en", Country: "US"},
		},
		{
			name: "geoip lookup",
			lookup: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					return "", errors.New("unexpected ip " + ip)
				}
				return "my", nil
			},
			want: Locale{Language: "en", Country: "MY"},
		},
		{
			name:     "lookup failure uses fallback",
			fallback: "id",
			lookup:   func(string) (string, error) { return "", errors.New("boom") },
			want:     Locale{Language: "id"},
		},
		{
			name: "default english",
			want: Locale{Language: "en"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := resolveLocale(req, tc.fallback, tc.lookup); got != tc.want {
				t.Fatalf("resolveLocale() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestBaseOf(t *testing.T) {
	for in, want := range map[string]string{"": "", "id-ID": "id", "en": "en", "de": "en", "???": ""} {
		if got := baseOf(in); got != want {
			t.Fatalf("baseOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestI18NStoresLocale(t *testing.T) {
	var lang, country string
	h := I18N("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "id-ID")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if lang != "id" || country != "ID" {
		t.Fatalf("locale = %q/%q, want id/ID", lang, country)
	}

	if got := LocaleFromContext(context.Background()); got != "en" {
		t.Fatalf("LocaleFromContext() default = %q, want en", got)
	}
	if got := CountryFromContext(context.Background()); got != "" {
		t.Fatalf("CountryFromContext() default = %q, want empty", got)
	}
}
