package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameLocale(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{name: "identical", a: "en-US", b: "en-US", expected: true},
		{name: "case differs", a: "en-US", b: "EN-us", expected: true},
		{name: "different region", a: "en-US", b: "en-GB", expected: false},
		{name: "different language", a: "en-US", b: "fr-FR", expected: false},
		{name: "unparseable fallback", a: "not a tag!", b: "NOT A TAG!", expected: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SameLocale(tt.a, tt.b))
		})
	}
}

func TestValidateLocaleTag(t *testing.T) {
	assert.NoError(t, ValidateLocaleTag("pt-BR"))
	err := ValidateLocaleTag("!!")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLocale)
}

func localeSet() Set {
	return Set{
		Version: VersionManifest{
			PackageIdentifier: "Contoso.App",
			PackageVersion:    "1.0.0",
			DefaultLocale:     "en-US",
		},
		DefaultLocale: DefaultLocaleManifest{
			PackageIdentifier: "Contoso.App",
			PackageVersion:    "1.0.0",
			PackageLocale:     "en-US",
			Publisher:         "Contoso",
			PackageName:       "App",
			License:           "MIT",
			ShortDescription:  "A sample application",
			Tags:              []string{"sample"},
		},
		Locales: []LocaleManifest{
			{
				PackageLocale:    "de-DE",
				Publisher:        Ptr("Contoso"),
				ShortDescription: Ptr("Eine Beispielanwendung"),
			},
		},
	}
}

func TestResolveReferenceLocale(t *testing.T) {
	s := localeSet()

	ref, err := ResolveReferenceLocale("", s)
	require.NoError(t, err)
	assert.Equal(t, "en-US", ref.PackageLocale)
	assert.Equal(t, "Contoso", *ref.Publisher)

	ref, err = ResolveReferenceLocale("DE-de", s)
	require.NoError(t, err)
	assert.Equal(t, "Eine Beispielanwendung", *ref.ShortDescription)

	_, err = ResolveReferenceLocale("ja-JP", s)
	assert.ErrorIs(t, err, ErrLocaleNotFound)
}

func TestPopulateFromReference(t *testing.T) {
	s := localeSet()
	ref, err := ResolveReferenceLocale("", s)
	require.NoError(t, err)

	fresh := LocaleManifest{
		PackageLocale:    "fr-FR",
		ShortDescription: Ptr("Une application"),
	}
	out := PopulateFromReference(fresh, ref, LocaleFieldNames())

	// The tag is never copied from the reference.
	assert.Equal(t, "fr-FR", out.PackageLocale)

	// Already-set fields stay; unset fields are seeded.
	assert.Equal(t, "Une application", *out.ShortDescription)
	assert.Equal(t, "Contoso", *out.Publisher)
	assert.Equal(t, "MIT", *out.License)
	assert.Equal(t, []string{"sample"}, out.Tags)
}

func TestPopulateFromReference_RestrictedFieldList(t *testing.T) {
	s := localeSet()
	ref, err := ResolveReferenceLocale("", s)
	require.NoError(t, err)

	out := PopulateFromReference(LocaleManifest{PackageLocale: "fr-FR"}, ref, []string{"Publisher"})
	assert.NotNil(t, out.Publisher)
	assert.Nil(t, out.License)
}

func TestAddLocale(t *testing.T) {
	s := localeSet()

	out, err := AddLocale(s, LocaleManifest{PackageLocale: "fr-FR", ShortDescription: Ptr("Une application")})
	require.NoError(t, err)
	require.Len(t, out.Locales, 2)

	added := out.Locales[1]
	assert.Equal(t, "Contoso.App", added.PackageIdentifier)
	assert.Equal(t, "1.0.0", added.PackageVersion)
	assert.Equal(t, KindLocale, added.ManifestType)
	assert.Equal(t, SchemaVersion, added.ManifestVersion)

	// The input set is untouched.
	assert.Len(t, s.Locales, 1)
}

func TestAddLocale_RejectsDuplicates(t *testing.T) {
	s := localeSet()

	// Region-aware: differs only in case from the default locale.
	_, err := AddLocale(s, LocaleManifest{PackageLocale: "EN-us"})
	assert.ErrorIs(t, err, ErrLocaleAlreadyExists)

	_, err = AddLocale(s, LocaleManifest{PackageLocale: "de-DE"})
	assert.ErrorIs(t, err, ErrLocaleAlreadyExists)

	_, err = AddLocale(s, LocaleManifest{PackageLocale: "!!"})
	assert.ErrorIs(t, err, ErrInvalidLocale)
}

func TestUpdateLocale(t *testing.T) {
	s := localeSet()

	out, err := UpdateLocale(s, LocaleManifest{
		PackageLocale:    "DE-de",
		ShortDescription: Ptr("Aktualisiert"),
	})
	require.NoError(t, err)
	require.Len(t, out.Locales, 1)
	assert.Equal(t, "Aktualisiert", *out.Locales[0].ShortDescription)
	assert.Equal(t, KindLocale, out.Locales[0].ManifestType)

	_, err = UpdateLocale(s, LocaleManifest{PackageLocale: "ja-JP"})
	assert.ErrorIs(t, err, ErrLocaleNotFound)
}

func TestUpdateLocale_UntouchedFieldsSurvive(t *testing.T) {
	s := localeSet()

	out, err := UpdateLocale(s, LocaleManifest{
		PackageLocale: "de-DE",
		ReleaseNotes:  Ptr("Fehlerbehebungen"),
	})
	require.NoError(t, err)
	require.Len(t, out.Locales, 1)

	// Only the supplied field changes; previously authored fields stay.
	assert.Equal(t, "Fehlerbehebungen", *out.Locales[0].ReleaseNotes)
	require.NotNil(t, out.Locales[0].Publisher)
	assert.Equal(t, "Contoso", *out.Locales[0].Publisher)
	require.NotNil(t, out.Locales[0].ShortDescription)
	assert.Equal(t, "Eine Beispielanwendung", *out.Locales[0].ShortDescription)
}
