package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/manifold/pkg/manifest"
)

func validSet() manifest.Set {
	return manifest.Set{
		Version: manifest.VersionManifest{
			PackageIdentifier: "Contoso.App",
			PackageVersion:    "1.0.0",
			DefaultLocale:     "en-US",
			ManifestType:      manifest.KindVersion,
			ManifestVersion:   manifest.SchemaVersion,
		},
		Installer: manifest.InstallerManifest{
			PackageIdentifier: "Contoso.App",
			PackageVersion:    "1.0.0",
			Installers: []manifest.Installer{
				{
					Architecture:    "x64",
					InstallerURL:    "https://example.com/app.msi",
					InstallerSha256: "9F86D081884C7D659A2FEAA0C55AD015A3BF4F1B2B0B822CD15D6C15B0F00A08",
					InstallerType:   manifest.Ptr("msi"),
				},
			},
			ManifestType:    manifest.KindInstaller,
			ManifestVersion: manifest.SchemaVersion,
		},
		DefaultLocale: manifest.DefaultLocaleManifest{
			PackageIdentifier: "Contoso.App",
			PackageVersion:    "1.0.0",
			PackageLocale:     "en-US",
			Publisher:         "Contoso",
			PackageName:       "App",
			License:           "MIT",
			ShortDescription:  "A sample application",
			ManifestType:      manifest.KindDefaultLocale,
			ManifestVersion:   manifest.SchemaVersion,
		},
	}
}

func TestCompileSchemas(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		compiled, err := compileSchemas(map[manifest.Kind][]byte{
			manifest.KindVersion: []byte(`{"type": "object"}`),
		})
		require.NoError(t, err)
		assert.Contains(t, compiled, manifest.KindVersion)
	})

	t.Run("malformed schema surfaces the kind", func(t *testing.T) {
		_, err := compileSchemas(map[manifest.Kind][]byte{
			manifest.KindInstaller: []byte(`{"type": `),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), string(manifest.KindInstaller))
	})
}

func TestValidateSet_Valid(t *testing.T) {
	res, err := ValidateSet(validSet(), manifest.Codec{Format: manifest.FormatYAML})
	require.NoError(t, err)
	assert.True(t, res.Valid, "diagnostics: %v", res.Errors)
}

func TestValidateDocument_MissingRequiredField(t *testing.T) {
	// Publisher, PackageName, License, and ShortDescription are absent.
	raw := []byte("PackageIdentifier: Contoso.App\nPackageVersion: 1.0.0\nPackageLocale: en-US\nManifestType: defaultLocale\nManifestVersion: 1.6.0\n")
	res, err := ValidateDocument(raw)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)
}

func TestValidateDocument_BadArchitecture(t *testing.T) {
	raw := []byte(`PackageIdentifier: Contoso.App
PackageVersion: 1.0.0
Installers:
  - Architecture: sparc
    InstallerUrl: https://example.com/app.msi
    InstallerSha256: 9F86D081884C7D659A2FEAA0C55AD015A3BF4F1B2B0B822CD15D6C15B0F00A08
ManifestType: installer
ManifestVersion: 1.6.0
`)
	res, err := ValidateDocument(raw)
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestValidateDocument_UnknownKind(t *testing.T) {
	_, err := ValidateDocument([]byte("ManifestType: mystery\n"))
	assert.Error(t, err)
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	codec := manifest.Codec{Format: manifest.FormatYAML}
	_, err := manifest.WriteSet(dir, validSet(), codec)
	require.NoError(t, err)

	res, err := ValidateDir(dir)
	require.NoError(t, err)
	assert.True(t, res.Valid, "diagnostics: %v", res.Errors)

	_, err = ValidateDir(t.TempDir())
	assert.Error(t, err)
}

func TestValidateSet_SingletonDocument(t *testing.T) {
	s := manifest.Set{
		Singleton: &manifest.SingletonManifest{
			PackageIdentifier: "Contoso.App",
			PackageVersion:    "1.0.0",
			PackageLocale:     "en-US",
			Publisher:         "Contoso",
			PackageName:       "App",
			License:           "MIT",
			ShortDescription:  "A sample application",
			Installers: []manifest.Installer{
				{
					Architecture:    "x64",
					InstallerURL:    "https://example.com/app.msi",
					InstallerSha256: "9F86D081884C7D659A2FEAA0C55AD015A3BF4F1B2B0B822CD15D6C15B0F00A08",
				},
			},
			ManifestType:    manifest.KindSingleton,
			ManifestVersion: "1.4.0",
		},
	}
	res, err := ValidateSet(s, manifest.Codec{Format: manifest.FormatYAML})
	require.NoError(t, err)
	assert.True(t, res.Valid, "diagnostics: %v", res.Errors)
}
