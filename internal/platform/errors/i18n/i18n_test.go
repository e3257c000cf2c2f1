package i18n

import "testing"

func TestFormatSubstitutesMetadata(t *testing.T) {
	catalog := GetCatalog("en-US")
	msg := catalog.Format("MEMO_TOO_LONG", map[string]string{"Max": "256"})
	if msg == "" || msg == "An unexpected error occurred" {
		t.Fatalf("expected templated message, got %q", msg)
	}
}

func TestFormatUnknownCode(t *testing.T) {
	catalog := GetCatalog("en-US")
	if msg := catalog.Format("NO_SUCH_CODE", nil); msg != "An unexpected error occurred" {
		t.Fatalf("expected fallback message, got %q", msg)
	}
}

func TestGetCatalogFallsBack(t *testing.T) {
	for _, locale := range []string{"", "xx-YY", "pt-BR", "en"} {
		catalog := GetCatalog(locale)
		if catalog.Locale() != "en-US" {
			t.Fatalf("expected en-US fallback for %q, got %q", locale, catalog.Locale())
		}
	}
}
