package i18n

import (
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocaleKeysParity(t *testing.T) {
	en := mustLoadLocaleMessages(t, "en")
	ru := mustLoadLocaleMessages(t, "ru")

	missingInRU := missingKeys(en, ru)
	missingInEN := missingKeys(ru, en)

	if len(missingInRU) > 0 {
		t.Errorf("keys missing in ru locale: %s", strings.Join(missingInRU, ", "))
	}
	if len(missingInEN) > 0 {
		t.Errorf("keys missing in en locale: %s", strings.Join(missingInEN, ", "))
	}
}

func TestBundledManagerTranslatesWithFallback(t *testing.T) {
	manager, err := NewBundledManager("en")
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "ru"}, manager.SupportedLanguages())
	assert.Equal(t, "Ovulation", manager.Translate("en", "status.ovulation"))
	assert.Equal(t, "Овуляция", manager.Translate("ru-RU", "status.ovulation"))
	assert.Equal(t, "Ovulation", manager.Translate("de", "status.ovulation"))
	assert.Equal(t, "missing.key", manager.Translate("en", "missing.key"))
	assert.Equal(t, "High accuracy (±1 days)", manager.Translatef("en", "confidence.high", 1))
}

func TestDetectFromAcceptLanguage(t *testing.T) {
	manager, err := NewBundledManager("en")
	require.NoError(t, err)

	assert.Equal(t, "ru", manager.DetectFromAcceptLanguage("de-DE;q=0.9, ru;q=0.8"))
	assert.Equal(t, "en", manager.DetectFromAcceptLanguage("fr"))
}

func TestNewManagerRequiresBothLocales(t *testing.T) {
	locales := fstest.MapFS{
		"locales/en.json": &fstest.MapFile{Data: []byte(`{"a":"b"}`)},
	}
	_, err := NewManager("en", locales, "locales")
	assert.Error(t, err)
}

func mustLoadLocaleMessages(t *testing.T, language string) map[string]string {
	t.Helper()

	content, err := Locales.ReadFile(LocalesDir + "/" + language + ".json")
	if err != nil {
		t.Fatalf("read locale %q: %v", language, err)
	}

	messages := map[string]string{}
	if err := json.Unmarshal(content, &messages); err != nil {
		t.Fatalf("parse locale %q: %v", language, err)
	}
	if len(messages) == 0 {
		t.Fatalf("locale %q is empty", language)
	}

	return messages
}

func missingKeys(source map[string]string, target map[string]string) []string {
	missing := make([]string, 0)
	for key := range source {
		if _, ok := target[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
