package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singletonSet() Set {
	return Set{
		Singleton: &SingletonManifest{
			PackageIdentifier: "Contoso.App",
			PackageVersion:    "1.0.0",
			PackageLocale:     "en-US",
			Publisher:         "Contoso",
			PackageName:       "App",
			License:           "MIT",
			ShortDescription:  "A sample application",
			Moniker:           Ptr("app"),
			InstallerType:     Ptr("msi"),
			Scope:             Ptr("machine"),
			Installers: []Installer{
				{Architecture: "x64", InstallerURL: "https://example.com/app.msi", InstallerSha256: "AAAA"},
			},
			ManifestType:    KindSingleton,
			ManifestVersion: "1.4.0",
		},
	}
}

func TestConvertSingletonToMultiFile(t *testing.T) {
	out := ConvertSingletonToMultiFile(singletonSet())

	assert.Nil(t, out.Singleton)

	// Discriminators are forced to the multi-file literals.
	assert.Equal(t, KindVersion, out.Version.ManifestType)
	assert.Equal(t, KindInstaller, out.Installer.ManifestType)
	assert.Equal(t, KindDefaultLocale, out.DefaultLocale.ManifestType)

	assert.Equal(t, "Contoso.App", out.Version.PackageIdentifier)
	assert.Equal(t, "en-US", out.Version.DefaultLocale)
	assert.Equal(t, "en-US", out.DefaultLocale.PackageLocale)
	assert.Equal(t, "Contoso", out.DefaultLocale.Publisher)
	assert.Equal(t, "A sample application", out.DefaultLocale.ShortDescription)

	require.NotNil(t, out.Installer.InstallerType)
	assert.Equal(t, "msi", *out.Installer.InstallerType)
	require.Len(t, out.Installer.Installers, 1)
	assert.Equal(t, "AAAA", out.Installer.Installers[0].InstallerSha256)
}

func TestSetClone_SingletonSlicesIndependent(t *testing.T) {
	s := singletonSet()
	s.Singleton.Platform = []string{"Windows.Desktop"}
	s.Singleton.InstallModes = []string{"silent"}
	s.Singleton.InstallerSuccessCodes = []int64{0}
	s.Singleton.ExpectedReturnCodes = []ExpectedReturnCode{{InstallerReturnCode: 1603, ReturnResponse: "installInProgress"}}
	s.Singleton.Tags = []string{"sample"}

	c := s.Clone()
	c.Singleton.Platform[0] = "Windows.Universal"
	c.Singleton.InstallModes[0] = "interactive"
	c.Singleton.InstallerSuccessCodes[0] = 3010
	c.Singleton.ExpectedReturnCodes[0].ReturnResponse = "cancelledByUser"
	c.Singleton.Tags[0] = "changed"

	assert.Equal(t, []string{"Windows.Desktop"}, s.Singleton.Platform)
	assert.Equal(t, []string{"silent"}, s.Singleton.InstallModes)
	assert.Equal(t, []int64{0}, s.Singleton.InstallerSuccessCodes)
	assert.Equal(t, "installInProgress", s.Singleton.ExpectedReturnCodes[0].ReturnResponse)
	assert.Equal(t, []string{"sample"}, s.Singleton.Tags)
}

func TestConvertSingletonToMultiFile_NoSingletonPassesThrough(t *testing.T) {
	s := Set{
		Version: VersionManifest{PackageIdentifier: "Contoso.App", ManifestType: KindVersion},
	}
	out := ConvertSingletonToMultiFile(s)
	assert.Equal(t, s.Version, out.Version)
	assert.Nil(t, out.Singleton)
}

func TestStampIdentifiers(t *testing.T) {
	s := ConvertSingletonToMultiFile(singletonSet())
	s.Locales = append(s.Locales, LocaleManifest{PackageLocale: "fr-FR", PackageIdentifier: "contoso.app", PackageVersion: "1.0.0"})

	out := StampIdentifiers(s, "Contoso.App", "2.0.0")

	assert.Equal(t, "Contoso.App", out.Version.PackageIdentifier)
	assert.Equal(t, "2.0.0", out.Version.PackageVersion)
	assert.Equal(t, "2.0.0", out.Installer.PackageVersion)
	assert.Equal(t, "2.0.0", out.DefaultLocale.PackageVersion)
	assert.Equal(t, "Contoso.App", out.Locales[0].PackageIdentifier)
	assert.Equal(t, "2.0.0", out.Locales[0].PackageVersion)

	// Empty version keeps the existing one.
	kept := StampIdentifiers(s, "Contoso.App", "")
	assert.Equal(t, "1.0.0", kept.Version.PackageVersion)
}

func TestEnsureManifestVersionConsistency(t *testing.T) {
	s := ConvertSingletonToMultiFile(singletonSet())
	s.Locales = append(s.Locales, LocaleManifest{PackageLocale: "fr-FR", ManifestVersion: "1.1.0"})

	out := EnsureManifestVersionConsistency(s)
	assert.Equal(t, SchemaVersion, out.Version.ManifestVersion)
	assert.Equal(t, SchemaVersion, out.Installer.ManifestVersion)
	assert.Equal(t, SchemaVersion, out.DefaultLocale.ManifestVersion)
	assert.Equal(t, SchemaVersion, out.Locales[0].ManifestVersion)
	assert.Equal(t, KindLocale, out.Locales[0].ManifestType)
}

func TestNewSet(t *testing.T) {
	detected := []DetectedInstaller{
		{
			InstallerURL:  "https://example.com/app-x64.exe",
			Architecture:  "x64",
			InstallerType: "inno",
			Sha256:        "AAAA",
		},
		{
			InstallerURL:      "https://example.com/app.msix",
			Architecture:      "arm64",
			InstallerType:     "msix",
			Sha256:            "BBBB",
			PackageFamilyName: Ptr("Contoso.App_8wekyb3d8bbwe"),
		},
	}
	s := NewSet("Contoso.App", "1.0.0", "", detected)

	assert.Equal(t, "en-US", s.Version.DefaultLocale)
	assert.Equal(t, SchemaVersion, s.Version.ManifestVersion)
	require.Len(t, s.Installer.Installers, 2)
	assert.Equal(t, "inno", *s.Installer.Installers[0].InstallerType)
	assert.Equal(t, "Contoso.App_8wekyb3d8bbwe", *s.Installer.Installers[1].PackageFamilyName)
	assert.Nil(t, s.Singleton)
}
