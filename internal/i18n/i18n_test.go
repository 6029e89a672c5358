package i18n

import (
	"testing"
	"testing/fstest"
)

func TestResolveHonorsQValues(t *testing.T) {
	b, err := Default("en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.Resolve("en;q=0.5, ta;q=0.9"); got != "ta" {
		t.Fatalf("expected ta, got %s", got)
	}
	if got := b.Resolve("ta-IN,ta;q=0.9"); got != "ta" {
		t.Fatalf("expected ta for regional tag, got %s", got)
	}
	if got := b.Resolve("fr-FR"); got != "en" {
		t.Fatalf("expected fallback en, got %s", got)
	}
	if got := b.Resolve(""); got != "en" {
		t.Fatalf("expected fallback for empty header, got %s", got)
	}
}

func TestTranslateFallsBackToDefaultThenKey(t *testing.T) {
	b, err := Default("en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.T("ta", "nav.home"); got != "முகப்பு" {
		t.Fatalf("unexpected ta nav.home %q", got)
	}
	// places.detail.body is only in the English dictionary.
	if got := b.T("ta", "places.detail.body"); got == "places.detail.body" {
		t.Fatalf("expected English fallback, got key")
	}
	if got := b.T("en", "does.not.exist"); got != "does.not.exist" {
		t.Fatalf("expected key echo, got %q", got)
	}
	if got := b.Tf("en", "toast.call.title", "108"); got != "Calling 108" {
		t.Fatalf("unexpected Tf %q", got)
	}
}

func TestBundledDictionariesShareKeys(t *testing.T) {
	b, err := Default("en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for key := range b.dict["ta"] {
		if _, ok := b.dict["en"][key]; !ok {
			t.Errorf("ta key %q missing from en", key)
		}
	}
}

func TestLoadRequiresFallbackDictionary(t *testing.T) {
	fsys := fstest.MapFS{"ta.json": {Data: []byte(`{"nav.home":"x"}`)}}
	if _, err := Load(fsys, "en", []string{"en", "ta"}); err == nil {
		t.Fatalf("expected error when fallback dictionary is missing")
	}

	fsys["en.json"] = &fstest.MapFile{Data: []byte(`{"nav.home":"Home"}`)}
	b, err := Load(fsys, "en", []string{"ta"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.Supported(); len(got) != 2 || got[0] != "en" || got[1] != "ta" {
		t.Fatalf("unexpected supported %v", got)
	}
	if !b.IsSupported("ta") || b.IsSupported("fr") {
		t.Fatalf("unexpected IsSupported results")
	}
}

func TestLocalizer(t *testing.T) {
	b, err := Default("en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	l := b.For("")
	if l.Lang != "en" {
		t.Fatalf("expected fallback lang, got %s", l.Lang)
	}
	if got := l.F("places.detail.title", "Temples"); got != "Temples in Trichy" {
		t.Fatalf("unexpected %q", got)
	}
	if got := (Localizer{}).T("nav.home"); got != "nav.home" {
		t.Fatalf("zero localizer should echo keys, got %q", got)
	}
}
