package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestT_English(t *testing.T) {
	Init("en")
	if GetLang() != "en" {
		t.Fatalf("expected lang 'en', got %q", GetLang())
	}
	if got := T("settings.saved"); got != "Profile saved." {
		t.Fatalf("unexpected translation: %q", got)
	}
	if got := T("generate.qr_saved", "pix.png"); got != "QR code saved to pix.png" {
		t.Fatalf("unexpected formatted translation: %q", got)
	}
}

func TestT_Portuguese(t *testing.T) {
	Init("pt-BR")
	defer Init("en")
	if got := T("settings.saved"); got != "Configurações salvas." {
		t.Fatalf("unexpected translation: %q", got)
	}
	if got := T("generate.amount", "R$ 10,00"); got != "Valor: R$ 10,00" {
		t.Fatalf("unexpected formatted translation: %q", got)
	}
}

func TestT_UnknownID(t *testing.T) {
	Init("en")
	if got := T("does.not.exist"); got != "does.not.exist" {
		t.Fatalf("expected id fallback, got %q", got)
	}
}

func TestAvailableLocales(t *testing.T) {
	Init("en")
	have := map[string]bool{}
	for _, l := range AvailableLocales() {
		have[l] = true
	}
	for _, want := range []string{"en", "pt-BR"} {
		if !have[want] {
			t.Fatalf("expected locale %q in %v", want, AvailableLocales())
		}
	}
}

// Every catalog must carry the same ids as the English one.
func TestLocales_SameKeys(t *testing.T) {
	load := func(name string) map[string]string {
		data, err := os.ReadFile(filepath.Join("locales", name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		m := map[string]string{}
		if err := yaml.Unmarshal(data, &m); err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		return m
	}
	en := load("active.en.yaml")
	pt := load("active.pt-BR.yaml")
	for k := range en {
		if _, ok := pt[k]; !ok {
			t.Fatalf("pt-BR is missing %q", k)
		}
	}
	for k := range pt {
		if _, ok := en[k]; !ok {
			t.Fatalf("pt-BR has orphaned %q", k)
		}
	}
}
