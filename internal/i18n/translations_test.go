package i18n

import (
	"strings"
	"testing"
)

func TestTReturnsRequestedLanguage(t *testing.T) {
	if got := T("goodbye", Swahili); !strings.Contains(got, "Kwaheri") {
		t.Errorf("sw goodbye = %q", got)
	}
	if got := T("goodbye", English); !strings.Contains(got, "Goodbye") {
		t.Errorf("en goodbye = %q", got)
	}
}

func TestTFallsBackToEnglish(t *testing.T) {
	if got := T("goodbye", "fr"); got != T("goodbye", English) {
		t.Errorf("unknown language should fall back to English, got %q", got)
	}
}

func TestTFallsBackToKey(t *testing.T) {
	if got := T("no_such_key", English); got != "no_such_key" {
		t.Errorf("missing key should echo the key, got %q", got)
	}
}

func TestBilingualCarriesBothLanguages(t *testing.T) {
	got := Bilingual("not_registered")
	if !strings.Contains(got, T("not_registered", English)) ||
		!strings.Contains(got, T("not_registered", Swahili)) {
		t.Errorf("Bilingual = %q", got)
	}
}

// Every key must carry both languages so no caller ever sees a half
// translated screen.
func TestEveryKeyHasBothLanguages(t *testing.T) {
	for key, entry := range translations {
		if entry[English] == "" {
			t.Errorf("key %q missing English text", key)
		}
		if entry[Swahili] == "" {
			t.Errorf("key %q missing Swahili text", key)
		}
	}
}
