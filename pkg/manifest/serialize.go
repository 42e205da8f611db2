package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Format selects the serialization format for manifest files.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported manifest format %q (yaml or json)", s)
	}
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatJSON {
		return "json"
	}
	return "yaml"
}

// Codec serializes manifest documents in one format. Round-trip stability
// for unchanged documents is required so the no-op-update hash gate stays
// meaningful.
type Codec struct {
	Format Format
}

// Marshal serializes a manifest document.
func (c Codec) Marshal(doc any) ([]byte, error) {
	if c.Format == FormatJSON {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes into doc. YAML handles both formats since JSON is
// a YAML subset, but JSON input is decoded with encoding/json for exact
// round-trip semantics.
func (c Codec) Unmarshal(data []byte, doc any) error {
	if c.Format == FormatJSON {
		return json.Unmarshal(data, doc)
	}
	return yaml.Unmarshal(data, doc)
}

// kindProbe extracts only the discriminator from a raw document.
type kindProbe struct {
	ManifestType Kind `yaml:"ManifestType" json:"ManifestType"`
}

// DetectKind reads the ManifestType discriminator from a raw document.
func DetectKind(data []byte) (Kind, error) {
	var probe kindProbe
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return "", fmt.Errorf("detecting manifest kind: %w", err)
	}
	switch probe.ManifestType {
	case KindVersion, KindInstaller, KindDefaultLocale, KindLocale, KindSingleton:
		return probe.ManifestType, nil
	case "":
		return "", errors.New("document has no ManifestType")
	default:
		return "", fmt.Errorf("unknown ManifestType %q", probe.ManifestType)
	}
}

// ParseDocuments assembles a Set from raw document texts, as fetched from
// the forge or read from disk. A singleton document yields a set awaiting
// conversion; otherwise a version, installer, and default-locale document
// must all be present.
func ParseDocuments(raws [][]byte) (Set, error) {
	var s Set
	var haveVersion, haveInstaller, haveDefaultLocale bool
	for _, raw := range raws {
		kind, err := DetectKind(raw)
		if err != nil {
			return Set{}, err
		}
		switch kind {
		case KindVersion:
			if err := yaml.Unmarshal(raw, &s.Version); err != nil {
				return Set{}, fmt.Errorf("parsing version manifest: %w", err)
			}
			haveVersion = true
		case KindInstaller:
			if err := yaml.Unmarshal(raw, &s.Installer); err != nil {
				return Set{}, fmt.Errorf("parsing installer manifest: %w", err)
			}
			haveInstaller = true
		case KindDefaultLocale:
			if err := yaml.Unmarshal(raw, &s.DefaultLocale); err != nil {
				return Set{}, fmt.Errorf("parsing default locale manifest: %w", err)
			}
			haveDefaultLocale = true
		case KindLocale:
			var l LocaleManifest
			if err := yaml.Unmarshal(raw, &l); err != nil {
				return Set{}, fmt.Errorf("parsing locale manifest: %w", err)
			}
			s.Locales = append(s.Locales, l)
		case KindSingleton:
			var sg SingletonManifest
			if err := yaml.Unmarshal(raw, &sg); err != nil {
				return Set{}, fmt.Errorf("parsing singleton manifest: %w", err)
			}
			s.Singleton = &sg
		}
	}
	if s.Singleton != nil {
		return s, nil
	}
	if !haveVersion || !haveInstaller || !haveDefaultLocale {
		return Set{}, errors.New("incomplete manifest set: version, installer, and defaultLocale documents are required")
	}
	return s, nil
}

// SetDirectory returns the repository-relative directory for a package
// version: first letter of the identifier (lowercased), the dot-separated
// identifier parts, then the version.
func SetDirectory(root, packageIdentifier, packageVersion string) string {
	first := strings.ToLower(packageIdentifier[:1])
	parts := append([]string{root, first}, strings.Split(packageIdentifier, ".")...)
	parts = append(parts, packageVersion)
	return filepath.Join(parts...)
}

// FileName returns the manifest file name for a document kind. Locale
// documents (default or additional) are keyed by their tag.
func FileName(kind Kind, packageIdentifier, locale string, format Format) string {
	switch kind {
	case KindInstaller:
		return fmt.Sprintf("%s.installer.%s", packageIdentifier, format.Ext())
	case KindDefaultLocale, KindLocale:
		return fmt.Sprintf("%s.locale.%s.%s", packageIdentifier, locale, format.Ext())
	default:
		return fmt.Sprintf("%s.%s", packageIdentifier, format.Ext())
	}
}

// WriteSet serializes the set into dir, one file per document kind, and
// returns the written paths. The set must already be converted (no
// singleton) and pruned.
func WriteSet(dir string, s Set, codec Codec) ([]string, error) {
	if s.Singleton != nil {
		return nil, errors.New("refusing to write an unconverted singleton set")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}

	id := s.Version.PackageIdentifier
	type doc struct {
		name string
		body any
	}
	docs := []doc{
		{FileName(KindVersion, id, "", codec.Format), s.Version},
		{FileName(KindInstaller, id, "", codec.Format), s.Installer},
		{FileName(KindDefaultLocale, id, s.DefaultLocale.PackageLocale, codec.Format), s.DefaultLocale},
	}
	for _, l := range s.Locales {
		docs = append(docs, doc{FileName(KindLocale, id, l.PackageLocale, codec.Format), l})
	}

	var paths []string
	for _, d := range docs {
		data, err := codec.Marshal(d.body)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", d.name, err)
		}
		path := filepath.Join(dir, d.name)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return nil, fmt.Errorf("writing %s: %w", d.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// LocateManifests finds manifest documents under dir.
func LocateManifests(dir string) ([]string, error) {
	var paths []string
	for _, pattern := range []string{"**/*.yaml", "**/*.yml", "**/*.json"} {
		matches, err := doublestar.Glob(os.DirFS(dir), pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			paths = append(paths, filepath.Join(dir, m))
		}
	}
	return paths, nil
}

// ReadSetDir reads every manifest document under dir into a Set.
func ReadSetDir(dir string) (Set, error) {
	paths, err := LocateManifests(dir)
	if err != nil {
		return Set{}, err
	}
	if len(paths) == 0 {
		return Set{}, fmt.Errorf("no manifest files found under %s", dir)
	}
	var raws [][]byte
	for _, p := range paths {
		data, err := os.ReadFile(p) // #nosec G304 -- operator-supplied manifest path
		if err != nil {
			return Set{}, err
		}
		raws = append(raws, data)
	}
	return ParseDocuments(raws)
}
