package manifest

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

var (
	// ErrLocaleNotFound is returned when an explicit locale tag matches no
	// document in the set.
	ErrLocaleNotFound = errors.New("locale not found in manifest set")

	// ErrLocaleAlreadyExists is returned when adding a locale whose tag
	// region-matches one already present.
	ErrLocaleAlreadyExists = errors.New("locale already present in manifest set")

	// ErrInvalidLocale is returned for tags that do not parse as BCP 47.
	ErrInvalidLocale = errors.New("invalid locale tag")
)

// SameLocale reports whether two tags denote the same locale under BCP 47
// canonicalization, so `en-US`, `EN-us`, and deprecated aliases of the same
// region all match. Unparseable tags fall back to case-insensitive string
// equality.
func SameLocale(a, b string) bool {
	ta, errA := language.Parse(a)
	tb, errB := language.Parse(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	return ta == tb
}

// ValidateLocaleTag checks that a tag parses as BCP 47.
func ValidateLocaleTag(tag string) error {
	if _, err := language.Parse(tag); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLocale, tag)
	}
	return nil
}

// AsLocale views the default locale as a LocaleManifest so it can serve as
// a reference template for new translations.
func (d DefaultLocaleManifest) AsLocale() LocaleManifest {
	return LocaleManifest{
		PackageIdentifier:   d.PackageIdentifier,
		PackageVersion:      d.PackageVersion,
		PackageLocale:       d.PackageLocale,
		Publisher:           Ptr(d.Publisher),
		PublisherURL:        clonePtr(d.PublisherURL),
		PublisherSupportURL: clonePtr(d.PublisherSupportURL),
		PrivacyURL:          clonePtr(d.PrivacyURL),
		Author:              clonePtr(d.Author),
		PackageName:         Ptr(d.PackageName),
		PackageURL:          clonePtr(d.PackageURL),
		License:             Ptr(d.License),
		LicenseURL:          clonePtr(d.LicenseURL),
		Copyright:           clonePtr(d.Copyright),
		CopyrightURL:        clonePtr(d.CopyrightURL),
		ShortDescription:    Ptr(d.ShortDescription),
		Description:         clonePtr(d.Description),
		Tags:                cloneSlice(d.Tags),
		ReleaseNotes:        clonePtr(d.ReleaseNotes),
		ReleaseNotesURL:     clonePtr(d.ReleaseNotesURL),
		Documentations:      cloneDocumentations(d.Documentations),
		ManifestType:        KindLocale,
		ManifestVersion:     d.ManifestVersion,
	}
}

// ResolveReferenceLocale locates the document that seeds field values when
// authoring a new locale. With an empty tag the set's default locale is the
// reference. An explicit tag must region-match the default locale or one of
// the existing locale manifests, else ErrLocaleNotFound.
func ResolveReferenceLocale(tag string, s Set) (LocaleManifest, error) {
	if tag == "" {
		return s.DefaultLocale.AsLocale(), nil
	}
	if SameLocale(tag, s.DefaultLocale.PackageLocale) {
		return s.DefaultLocale.AsLocale(), nil
	}
	for _, l := range s.Locales {
		if SameLocale(tag, l.PackageLocale) {
			return l.Clone(), nil
		}
	}
	return LocaleManifest{}, fmt.Errorf("%w: %q", ErrLocaleNotFound, tag)
}

// localeField pairs a settable field name with its accessor on a
// LocaleManifest. PackageLocale itself is deliberately absent: the tag is
// never copied from a reference.
type localeField struct {
	name string
	str  func(*LocaleManifest) **string
	list func(*LocaleManifest) *[]string
}

var localeFields = []localeField{
	{name: "Publisher", str: func(l *LocaleManifest) **string { return &l.Publisher }},
	{name: "PublisherUrl", str: func(l *LocaleManifest) **string { return &l.PublisherURL }},
	{name: "PublisherSupportUrl", str: func(l *LocaleManifest) **string { return &l.PublisherSupportURL }},
	{name: "PrivacyUrl", str: func(l *LocaleManifest) **string { return &l.PrivacyURL }},
	{name: "Author", str: func(l *LocaleManifest) **string { return &l.Author }},
	{name: "PackageName", str: func(l *LocaleManifest) **string { return &l.PackageName }},
	{name: "PackageUrl", str: func(l *LocaleManifest) **string { return &l.PackageURL }},
	{name: "License", str: func(l *LocaleManifest) **string { return &l.License }},
	{name: "LicenseUrl", str: func(l *LocaleManifest) **string { return &l.LicenseURL }},
	{name: "Copyright", str: func(l *LocaleManifest) **string { return &l.Copyright }},
	{name: "CopyrightUrl", str: func(l *LocaleManifest) **string { return &l.CopyrightURL }},
	{name: "ShortDescription", str: func(l *LocaleManifest) **string { return &l.ShortDescription }},
	{name: "Description", str: func(l *LocaleManifest) **string { return &l.Description }},
	{name: "Tags", list: func(l *LocaleManifest) *[]string { return &l.Tags }},
	{name: "ReleaseNotes", str: func(l *LocaleManifest) **string { return &l.ReleaseNotes }},
	{name: "ReleaseNotesUrl", str: func(l *LocaleManifest) **string { return &l.ReleaseNotesURL }},
}

// LocaleFieldNames returns the populatable field names in table order.
func LocaleFieldNames() []string {
	names := make([]string, 0, len(localeFields))
	for _, f := range localeFields {
		names = append(names, f.name)
	}
	return names
}

// PopulateFromReference copies the reference's value into the new locale
// for each named field whose value is currently unset, seeding a new
// translation with the source-language baseline. Already-set fields and the
// locale tag are left alone. Unknown field names are ignored.
func PopulateFromReference(newLocale, reference LocaleManifest, fieldNames []string) LocaleManifest {
	out := newLocale.Clone()
	ref := reference.Clone()
	want := make(map[string]struct{}, len(fieldNames))
	for _, n := range fieldNames {
		want[n] = struct{}{}
	}
	for _, f := range localeFields {
		if _, ok := want[f.name]; !ok {
			continue
		}
		switch {
		case f.str != nil:
			dst, src := f.str(&out), f.str(&ref)
			if *dst == nil && *src != nil {
				*dst = clonePtr(*src)
			}
		case f.list != nil:
			dst, src := f.list(&out), f.list(&ref)
			if *dst == nil && *src != nil {
				*dst = cloneSlice(*src)
			}
		}
	}
	return out
}

// AddLocale appends a new locale manifest to the set after stamping its
// identity fields. The tag must not region-match any tag already present
// among the default locale and existing locales.
func AddLocale(s Set, l LocaleManifest) (Set, error) {
	if err := ValidateLocaleTag(l.PackageLocale); err != nil {
		return Set{}, err
	}
	if SameLocale(l.PackageLocale, s.DefaultLocale.PackageLocale) {
		return Set{}, fmt.Errorf("%w: %q matches the default locale", ErrLocaleAlreadyExists, l.PackageLocale)
	}
	for _, existing := range s.Locales {
		if SameLocale(l.PackageLocale, existing.PackageLocale) {
			return Set{}, fmt.Errorf("%w: %q", ErrLocaleAlreadyExists, l.PackageLocale)
		}
	}
	out := s.Clone()
	entry := l.Clone()
	entry.PackageIdentifier = s.Version.PackageIdentifier
	entry.PackageVersion = s.Version.PackageVersion
	entry.ManifestType = KindLocale
	entry.ManifestVersion = SchemaVersion
	out.Locales = append(out.Locales, entry)
	return out, nil
}

// UpdateLocale edits the locale manifest whose tag region-matches
// l.PackageLocale: fields set on l overwrite the stored values, fields left
// unset survive unchanged. The tag must already exist; ErrLocaleNotFound
// otherwise. The default locale cannot be edited through this path.
func UpdateLocale(s Set, l LocaleManifest) (Set, error) {
	if err := ValidateLocaleTag(l.PackageLocale); err != nil {
		return Set{}, err
	}
	out := s.Clone()
	for i := range out.Locales {
		if SameLocale(l.PackageLocale, out.Locales[i].PackageLocale) {
			entry := PopulateFromReference(l, out.Locales[i], LocaleFieldNames())
			// Keep the stored tag spelling so file names stay stable.
			entry.PackageLocale = out.Locales[i].PackageLocale
			entry.PackageIdentifier = s.Version.PackageIdentifier
			entry.PackageVersion = s.Version.PackageVersion
			entry.ManifestType = KindLocale
			entry.ManifestVersion = SchemaVersion
			out.Locales[i] = entry
			return out, nil
		}
	}
	return Set{}, fmt.Errorf("%w: %q", ErrLocaleNotFound, l.PackageLocale)
}
