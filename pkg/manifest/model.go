// Package manifest implements the package manifest document model and the
// reconciliation logic used by the new/update/locale flows: shifting shared
// fields between the installer-manifest root and individual installers,
// matching freshly detected installers against existing entries, converting
// legacy singleton manifests, and keeping identifier/version stamps
// consistent across a document set.
package manifest

// Kind discriminates the five manifest document kinds.
type Kind string

const (
	KindVersion       Kind = "version"
	KindInstaller     Kind = "installer"
	KindDefaultLocale Kind = "defaultLocale"
	KindLocale        Kind = "locale"
	KindSingleton     Kind = "singleton"
)

// SchemaVersion is the manifest schema version this tool writes. Every
// document in a set is normalized to this value before serialization.
const SchemaVersion = "1.6.0"

// Ptr returns a pointer to v. Convenience for optional manifest fields.
func Ptr[T any](v T) *T { return &v }

// VersionManifest is the top-level document naming the package and pointing
// at its default locale.
type VersionManifest struct {
	PackageIdentifier string `yaml:"PackageIdentifier" json:"PackageIdentifier"`
	PackageVersion    string `yaml:"PackageVersion" json:"PackageVersion"`
	DefaultLocale     string `yaml:"DefaultLocale" json:"DefaultLocale"`
	ManifestType      Kind   `yaml:"ManifestType" json:"ManifestType"`
	ManifestVersion   string `yaml:"ManifestVersion" json:"ManifestVersion"`
}

// InstallerSwitches holds command-line switches recognized by an installer.
type InstallerSwitches struct {
	Silent             *string `yaml:"Silent,omitempty" json:"Silent,omitempty"`
	SilentWithProgress *string `yaml:"SilentWithProgress,omitempty" json:"SilentWithProgress,omitempty"`
	Interactive        *string `yaml:"Interactive,omitempty" json:"Interactive,omitempty"`
	InstallLocation    *string `yaml:"InstallLocation,omitempty" json:"InstallLocation,omitempty"`
	Log                *string `yaml:"Log,omitempty" json:"Log,omitempty"`
	Upgrade            *string `yaml:"Upgrade,omitempty" json:"Upgrade,omitempty"`
	Custom             *string `yaml:"Custom,omitempty" json:"Custom,omitempty"`
}

// Equal reports field-wise equality.
func (s *InstallerSwitches) Equal(o *InstallerSwitches) bool {
	if s == nil || o == nil {
		return s == o
	}
	return ptrEq(s.Silent, o.Silent) &&
		ptrEq(s.SilentWithProgress, o.SilentWithProgress) &&
		ptrEq(s.Interactive, o.Interactive) &&
		ptrEq(s.InstallLocation, o.InstallLocation) &&
		ptrEq(s.Log, o.Log) &&
		ptrEq(s.Upgrade, o.Upgrade) &&
		ptrEq(s.Custom, o.Custom)
}

// Clone returns a deep copy.
func (s *InstallerSwitches) Clone() *InstallerSwitches {
	if s == nil {
		return nil
	}
	c := &InstallerSwitches{}
	c.Silent = clonePtr(s.Silent)
	c.SilentWithProgress = clonePtr(s.SilentWithProgress)
	c.Interactive = clonePtr(s.Interactive)
	c.InstallLocation = clonePtr(s.InstallLocation)
	c.Log = clonePtr(s.Log)
	c.Upgrade = clonePtr(s.Upgrade)
	c.Custom = clonePtr(s.Custom)
	return c
}

// PackageDependency names another package required by this one.
type PackageDependency struct {
	PackageIdentifier string  `yaml:"PackageIdentifier" json:"PackageIdentifier"`
	MinimumVersion    *string `yaml:"MinimumVersion,omitempty" json:"MinimumVersion,omitempty"`
}

// Dependencies groups the dependency kinds an installer may declare.
type Dependencies struct {
	WindowsFeatures     []string            `yaml:"WindowsFeatures,omitempty" json:"WindowsFeatures,omitempty"`
	WindowsLibraries    []string            `yaml:"WindowsLibraries,omitempty" json:"WindowsLibraries,omitempty"`
	PackageDependencies []PackageDependency `yaml:"PackageDependencies,omitempty" json:"PackageDependencies,omitempty"`
	ExternalDependencies []string           `yaml:"ExternalDependencies,omitempty" json:"ExternalDependencies,omitempty"`
}

// Equal reports deep equality.
func (d *Dependencies) Equal(o *Dependencies) bool {
	if d == nil || o == nil {
		return d == o
	}
	if !sliceEq(d.WindowsFeatures, o.WindowsFeatures) ||
		!sliceEq(d.WindowsLibraries, o.WindowsLibraries) ||
		!sliceEq(d.ExternalDependencies, o.ExternalDependencies) {
		return false
	}
	if len(d.PackageDependencies) != len(o.PackageDependencies) {
		return false
	}
	for i := range d.PackageDependencies {
		a, b := d.PackageDependencies[i], o.PackageDependencies[i]
		if a.PackageIdentifier != b.PackageIdentifier || !ptrEq(a.MinimumVersion, b.MinimumVersion) {
			return false
		}
	}
	return true
}

// Empty reports whether no dependency of any kind is declared.
func (d *Dependencies) Empty() bool {
	if d == nil {
		return true
	}
	return len(d.WindowsFeatures) == 0 && len(d.WindowsLibraries) == 0 &&
		len(d.PackageDependencies) == 0 && len(d.ExternalDependencies) == 0
}

// Clone returns a deep copy.
func (d *Dependencies) Clone() *Dependencies {
	if d == nil {
		return nil
	}
	c := &Dependencies{
		WindowsFeatures:      cloneSlice(d.WindowsFeatures),
		WindowsLibraries:     cloneSlice(d.WindowsLibraries),
		ExternalDependencies: cloneSlice(d.ExternalDependencies),
	}
	for _, p := range d.PackageDependencies {
		c.PackageDependencies = append(c.PackageDependencies, PackageDependency{
			PackageIdentifier: p.PackageIdentifier,
			MinimumVersion:    clonePtr(p.MinimumVersion),
		})
	}
	return c
}

// ExpectedReturnCode maps an installer exit code to a response category.
type ExpectedReturnCode struct {
	InstallerReturnCode int64  `yaml:"InstallerReturnCode" json:"InstallerReturnCode"`
	ReturnResponse      string `yaml:"ReturnResponse" json:"ReturnResponse"`
}

// Markets restricts the markets a package is available in.
type Markets struct {
	AllowedMarkets  []string `yaml:"AllowedMarkets,omitempty" json:"AllowedMarkets,omitempty"`
	ExcludedMarkets []string `yaml:"ExcludedMarkets,omitempty" json:"ExcludedMarkets,omitempty"`
}

// Equal reports deep equality.
func (m *Markets) Equal(o *Markets) bool {
	if m == nil || o == nil {
		return m == o
	}
	return sliceEq(m.AllowedMarkets, o.AllowedMarkets) && sliceEq(m.ExcludedMarkets, o.ExcludedMarkets)
}

// Empty reports whether no market restriction is declared.
func (m *Markets) Empty() bool {
	return m == nil || (len(m.AllowedMarkets) == 0 && len(m.ExcludedMarkets) == 0)
}

// Clone returns a deep copy.
func (m *Markets) Clone() *Markets {
	if m == nil {
		return nil
	}
	return &Markets{
		AllowedMarkets:  cloneSlice(m.AllowedMarkets),
		ExcludedMarkets: cloneSlice(m.ExcludedMarkets),
	}
}

// NestedInstallerFile points at an installer inside an archive.
type NestedInstallerFile struct {
	RelativeFilePath     string  `yaml:"RelativeFilePath" json:"RelativeFilePath"`
	PortableCommandAlias *string `yaml:"PortableCommandAlias,omitempty" json:"PortableCommandAlias,omitempty"`
}

// Installer is one entry in the installer manifest. Identity for matching
// across updates is (InstallerURL, Architecture, InstallerType).
type Installer struct {
	// Identity and detected metadata.
	Architecture    string  `yaml:"Architecture" json:"Architecture"`
	InstallerURL    string  `yaml:"InstallerUrl" json:"InstallerUrl"`
	InstallerSha256 string  `yaml:"InstallerSha256" json:"InstallerSha256"`
	SignatureSha256 *string `yaml:"SignatureSha256,omitempty" json:"SignatureSha256,omitempty"`

	NestedInstallerType  *string               `yaml:"NestedInstallerType,omitempty" json:"NestedInstallerType,omitempty"`
	NestedInstallerFiles []NestedInstallerFile `yaml:"NestedInstallerFiles,omitempty" json:"NestedInstallerFiles,omitempty"`

	// Fields shared with the installer-manifest root. See fields.go.
	InstallerLocale        *string              `yaml:"InstallerLocale,omitempty" json:"InstallerLocale,omitempty"`
	Platform               []string             `yaml:"Platform,omitempty" json:"Platform,omitempty"`
	MinimumOSVersion       *string              `yaml:"MinimumOSVersion,omitempty" json:"MinimumOSVersion,omitempty"`
	InstallerType          *string              `yaml:"InstallerType,omitempty" json:"InstallerType,omitempty"`
	Scope                  *string              `yaml:"Scope,omitempty" json:"Scope,omitempty"`
	InstallModes           []string             `yaml:"InstallModes,omitempty" json:"InstallModes,omitempty"`
	InstallerSwitches      *InstallerSwitches   `yaml:"InstallerSwitches,omitempty" json:"InstallerSwitches,omitempty"`
	InstallerSuccessCodes  []int64              `yaml:"InstallerSuccessCodes,omitempty" json:"InstallerSuccessCodes,omitempty"`
	ExpectedReturnCodes    []ExpectedReturnCode `yaml:"ExpectedReturnCodes,omitempty" json:"ExpectedReturnCodes,omitempty"`
	UpgradeBehavior        *string              `yaml:"UpgradeBehavior,omitempty" json:"UpgradeBehavior,omitempty"`
	Commands               []string             `yaml:"Commands,omitempty" json:"Commands,omitempty"`
	Protocols              []string             `yaml:"Protocols,omitempty" json:"Protocols,omitempty"`
	FileExtensions         []string             `yaml:"FileExtensions,omitempty" json:"FileExtensions,omitempty"`
	Dependencies           *Dependencies        `yaml:"Dependencies,omitempty" json:"Dependencies,omitempty"`
	PackageFamilyName      *string              `yaml:"PackageFamilyName,omitempty" json:"PackageFamilyName,omitempty"`
	ProductCode            *string              `yaml:"ProductCode,omitempty" json:"ProductCode,omitempty"`
	Capabilities           []string             `yaml:"Capabilities,omitempty" json:"Capabilities,omitempty"`
	RestrictedCapabilities []string             `yaml:"RestrictedCapabilities,omitempty" json:"RestrictedCapabilities,omitempty"`
	Markets                *Markets             `yaml:"Markets,omitempty" json:"Markets,omitempty"`
	ElevationRequirement   *string              `yaml:"ElevationRequirement,omitempty" json:"ElevationRequirement,omitempty"`
	ReleaseDate            *string              `yaml:"ReleaseDate,omitempty" json:"ReleaseDate,omitempty"`
}

// Clone returns a deep copy.
func (i Installer) Clone() Installer {
	c := i
	c.SignatureSha256 = clonePtr(i.SignatureSha256)
	c.NestedInstallerType = clonePtr(i.NestedInstallerType)
	c.NestedInstallerFiles = nil
	for _, f := range i.NestedInstallerFiles {
		c.NestedInstallerFiles = append(c.NestedInstallerFiles, NestedInstallerFile{
			RelativeFilePath:     f.RelativeFilePath,
			PortableCommandAlias: clonePtr(f.PortableCommandAlias),
		})
	}
	c.InstallerLocale = clonePtr(i.InstallerLocale)
	c.Platform = cloneSlice(i.Platform)
	c.MinimumOSVersion = clonePtr(i.MinimumOSVersion)
	c.InstallerType = clonePtr(i.InstallerType)
	c.Scope = clonePtr(i.Scope)
	c.InstallModes = cloneSlice(i.InstallModes)
	c.InstallerSwitches = i.InstallerSwitches.Clone()
	c.InstallerSuccessCodes = cloneSlice(i.InstallerSuccessCodes)
	c.ExpectedReturnCodes = cloneSlice(i.ExpectedReturnCodes)
	c.UpgradeBehavior = clonePtr(i.UpgradeBehavior)
	c.Commands = cloneSlice(i.Commands)
	c.Protocols = cloneSlice(i.Protocols)
	c.FileExtensions = cloneSlice(i.FileExtensions)
	c.Dependencies = i.Dependencies.Clone()
	c.PackageFamilyName = clonePtr(i.PackageFamilyName)
	c.ProductCode = clonePtr(i.ProductCode)
	c.Capabilities = cloneSlice(i.Capabilities)
	c.RestrictedCapabilities = cloneSlice(i.RestrictedCapabilities)
	c.Markets = i.Markets.Clone()
	c.ElevationRequirement = clonePtr(i.ElevationRequirement)
	c.ReleaseDate = clonePtr(i.ReleaseDate)
	return c
}

// InstallerManifest lists the installers for one package version. Root-level
// fields are logically inherited by every installer that does not override
// them; a well-formed document carries a shared field at root or on every
// installer, never both.
type InstallerManifest struct {
	PackageIdentifier string `yaml:"PackageIdentifier" json:"PackageIdentifier"`
	PackageVersion    string `yaml:"PackageVersion" json:"PackageVersion"`

	Channel *string `yaml:"Channel,omitempty" json:"Channel,omitempty"`

	InstallerLocale        *string              `yaml:"InstallerLocale,omitempty" json:"InstallerLocale,omitempty"`
	Platform               []string             `yaml:"Platform,omitempty" json:"Platform,omitempty"`
	MinimumOSVersion       *string              `yaml:"MinimumOSVersion,omitempty" json:"MinimumOSVersion,omitempty"`
	InstallerType          *string              `yaml:"InstallerType,omitempty" json:"InstallerType,omitempty"`
	Scope                  *string              `yaml:"Scope,omitempty" json:"Scope,omitempty"`
	InstallModes           []string             `yaml:"InstallModes,omitempty" json:"InstallModes,omitempty"`
	InstallerSwitches      *InstallerSwitches   `yaml:"InstallerSwitches,omitempty" json:"InstallerSwitches,omitempty"`
	InstallerSuccessCodes  []int64              `yaml:"InstallerSuccessCodes,omitempty" json:"InstallerSuccessCodes,omitempty"`
	ExpectedReturnCodes    []ExpectedReturnCode `yaml:"ExpectedReturnCodes,omitempty" json:"ExpectedReturnCodes,omitempty"`
	UpgradeBehavior        *string              `yaml:"UpgradeBehavior,omitempty" json:"UpgradeBehavior,omitempty"`
	Commands               []string             `yaml:"Commands,omitempty" json:"Commands,omitempty"`
	Protocols              []string             `yaml:"Protocols,omitempty" json:"Protocols,omitempty"`
	FileExtensions         []string             `yaml:"FileExtensions,omitempty" json:"FileExtensions,omitempty"`
	Dependencies           *Dependencies        `yaml:"Dependencies,omitempty" json:"Dependencies,omitempty"`
	PackageFamilyName      *string              `yaml:"PackageFamilyName,omitempty" json:"PackageFamilyName,omitempty"`
	ProductCode            *string              `yaml:"ProductCode,omitempty" json:"ProductCode,omitempty"`
	Capabilities           []string             `yaml:"Capabilities,omitempty" json:"Capabilities,omitempty"`
	RestrictedCapabilities []string             `yaml:"RestrictedCapabilities,omitempty" json:"RestrictedCapabilities,omitempty"`
	Markets                *Markets             `yaml:"Markets,omitempty" json:"Markets,omitempty"`
	ElevationRequirement   *string              `yaml:"ElevationRequirement,omitempty" json:"ElevationRequirement,omitempty"`
	ReleaseDate            *string              `yaml:"ReleaseDate,omitempty" json:"ReleaseDate,omitempty"`

	Installers []Installer `yaml:"Installers" json:"Installers"`

	ManifestType    Kind   `yaml:"ManifestType" json:"ManifestType"`
	ManifestVersion string `yaml:"ManifestVersion" json:"ManifestVersion"`
}

// Clone returns a deep copy.
func (m InstallerManifest) Clone() InstallerManifest {
	c := m
	c.Channel = clonePtr(m.Channel)
	c.InstallerLocale = clonePtr(m.InstallerLocale)
	c.Platform = cloneSlice(m.Platform)
	c.MinimumOSVersion = clonePtr(m.MinimumOSVersion)
	c.InstallerType = clonePtr(m.InstallerType)
	c.Scope = clonePtr(m.Scope)
	c.InstallModes = cloneSlice(m.InstallModes)
	c.InstallerSwitches = m.InstallerSwitches.Clone()
	c.InstallerSuccessCodes = cloneSlice(m.InstallerSuccessCodes)
	c.ExpectedReturnCodes = cloneSlice(m.ExpectedReturnCodes)
	c.UpgradeBehavior = clonePtr(m.UpgradeBehavior)
	c.Commands = cloneSlice(m.Commands)
	c.Protocols = cloneSlice(m.Protocols)
	c.FileExtensions = cloneSlice(m.FileExtensions)
	c.Dependencies = m.Dependencies.Clone()
	c.PackageFamilyName = clonePtr(m.PackageFamilyName)
	c.ProductCode = clonePtr(m.ProductCode)
	c.Capabilities = cloneSlice(m.Capabilities)
	c.RestrictedCapabilities = cloneSlice(m.RestrictedCapabilities)
	c.Markets = m.Markets.Clone()
	c.ElevationRequirement = clonePtr(m.ElevationRequirement)
	c.ReleaseDate = clonePtr(m.ReleaseDate)
	c.Installers = nil
	for _, inst := range m.Installers {
		c.Installers = append(c.Installers, inst.Clone())
	}
	return c
}

// Agreement is a named agreement the user accepts at install time.
type Agreement struct {
	AgreementLabel *string `yaml:"AgreementLabel,omitempty" json:"AgreementLabel,omitempty"`
	Agreement      *string `yaml:"Agreement,omitempty" json:"Agreement,omitempty"`
	AgreementURL   *string `yaml:"AgreementUrl,omitempty" json:"AgreementUrl,omitempty"`
}

// Documentation links supplementary documents.
type Documentation struct {
	DocumentLabel *string `yaml:"DocumentLabel,omitempty" json:"DocumentLabel,omitempty"`
	DocumentURL   *string `yaml:"DocumentUrl,omitempty" json:"DocumentUrl,omitempty"`
}

// DefaultLocaleManifest is the mandatory baseline locale document.
type DefaultLocaleManifest struct {
	PackageIdentifier   string          `yaml:"PackageIdentifier" json:"PackageIdentifier"`
	PackageVersion      string          `yaml:"PackageVersion" json:"PackageVersion"`
	PackageLocale       string          `yaml:"PackageLocale" json:"PackageLocale"`
	Publisher           string          `yaml:"Publisher" json:"Publisher"`
	PublisherURL        *string         `yaml:"PublisherUrl,omitempty" json:"PublisherUrl,omitempty"`
	PublisherSupportURL *string         `yaml:"PublisherSupportUrl,omitempty" json:"PublisherSupportUrl,omitempty"`
	PrivacyURL          *string         `yaml:"PrivacyUrl,omitempty" json:"PrivacyUrl,omitempty"`
	Author              *string         `yaml:"Author,omitempty" json:"Author,omitempty"`
	PackageName         string          `yaml:"PackageName" json:"PackageName"`
	PackageURL          *string         `yaml:"PackageUrl,omitempty" json:"PackageUrl,omitempty"`
	License             string          `yaml:"License" json:"License"`
	LicenseURL          *string         `yaml:"LicenseUrl,omitempty" json:"LicenseUrl,omitempty"`
	Copyright           *string         `yaml:"Copyright,omitempty" json:"Copyright,omitempty"`
	CopyrightURL        *string         `yaml:"CopyrightUrl,omitempty" json:"CopyrightUrl,omitempty"`
	ShortDescription    string          `yaml:"ShortDescription" json:"ShortDescription"`
	Description         *string         `yaml:"Description,omitempty" json:"Description,omitempty"`
	Moniker             *string         `yaml:"Moniker,omitempty" json:"Moniker,omitempty"`
	Tags                []string        `yaml:"Tags,omitempty" json:"Tags,omitempty"`
	Agreements          []Agreement     `yaml:"Agreements,omitempty" json:"Agreements,omitempty"`
	ReleaseNotes        *string         `yaml:"ReleaseNotes,omitempty" json:"ReleaseNotes,omitempty"`
	ReleaseNotesURL     *string         `yaml:"ReleaseNotesUrl,omitempty" json:"ReleaseNotesUrl,omitempty"`
	Documentations      []Documentation `yaml:"Documentations,omitempty" json:"Documentations,omitempty"`
	ManifestType        Kind            `yaml:"ManifestType" json:"ManifestType"`
	ManifestVersion     string          `yaml:"ManifestVersion" json:"ManifestVersion"`
}

// Clone returns a deep copy.
func (d DefaultLocaleManifest) Clone() DefaultLocaleManifest {
	c := d
	c.PublisherURL = clonePtr(d.PublisherURL)
	c.PublisherSupportURL = clonePtr(d.PublisherSupportURL)
	c.PrivacyURL = clonePtr(d.PrivacyURL)
	c.Author = clonePtr(d.Author)
	c.PackageURL = clonePtr(d.PackageURL)
	c.LicenseURL = clonePtr(d.LicenseURL)
	c.Copyright = clonePtr(d.Copyright)
	c.CopyrightURL = clonePtr(d.CopyrightURL)
	c.Description = clonePtr(d.Description)
	c.Moniker = clonePtr(d.Moniker)
	c.Tags = cloneSlice(d.Tags)
	c.Agreements = cloneAgreements(d.Agreements)
	c.ReleaseNotes = clonePtr(d.ReleaseNotes)
	c.ReleaseNotesURL = clonePtr(d.ReleaseNotesURL)
	c.Documentations = cloneDocumentations(d.Documentations)
	return c
}

// LocaleManifest is an optional additional translation of the locale text.
type LocaleManifest struct {
	PackageIdentifier   string          `yaml:"PackageIdentifier" json:"PackageIdentifier"`
	PackageVersion      string          `yaml:"PackageVersion" json:"PackageVersion"`
	PackageLocale       string          `yaml:"PackageLocale" json:"PackageLocale"`
	Publisher           *string         `yaml:"Publisher,omitempty" json:"Publisher,omitempty"`
	PublisherURL        *string         `yaml:"PublisherUrl,omitempty" json:"PublisherUrl,omitempty"`
	PublisherSupportURL *string         `yaml:"PublisherSupportUrl,omitempty" json:"PublisherSupportUrl,omitempty"`
	PrivacyURL          *string         `yaml:"PrivacyUrl,omitempty" json:"PrivacyUrl,omitempty"`
	Author              *string         `yaml:"Author,omitempty" json:"Author,omitempty"`
	PackageName         *string         `yaml:"PackageName,omitempty" json:"PackageName,omitempty"`
	PackageURL          *string         `yaml:"PackageUrl,omitempty" json:"PackageUrl,omitempty"`
	License             *string         `yaml:"License,omitempty" json:"License,omitempty"`
	LicenseURL          *string         `yaml:"LicenseUrl,omitempty" json:"LicenseUrl,omitempty"`
	Copyright           *string         `yaml:"Copyright,omitempty" json:"Copyright,omitempty"`
	CopyrightURL        *string         `yaml:"CopyrightUrl,omitempty" json:"CopyrightUrl,omitempty"`
	ShortDescription    *string         `yaml:"ShortDescription,omitempty" json:"ShortDescription,omitempty"`
	Description         *string         `yaml:"Description,omitempty" json:"Description,omitempty"`
	Tags                []string        `yaml:"Tags,omitempty" json:"Tags,omitempty"`
	ReleaseNotes        *string         `yaml:"ReleaseNotes,omitempty" json:"ReleaseNotes,omitempty"`
	ReleaseNotesURL     *string         `yaml:"ReleaseNotesUrl,omitempty" json:"ReleaseNotesUrl,omitempty"`
	Documentations      []Documentation `yaml:"Documentations,omitempty" json:"Documentations,omitempty"`
	ManifestType        Kind            `yaml:"ManifestType" json:"ManifestType"`
	ManifestVersion     string          `yaml:"ManifestVersion" json:"ManifestVersion"`
}

// Clone returns a deep copy.
func (l LocaleManifest) Clone() LocaleManifest {
	c := l
	c.Publisher = clonePtr(l.Publisher)
	c.PublisherURL = clonePtr(l.PublisherURL)
	c.PublisherSupportURL = clonePtr(l.PublisherSupportURL)
	c.PrivacyURL = clonePtr(l.PrivacyURL)
	c.Author = clonePtr(l.Author)
	c.PackageName = clonePtr(l.PackageName)
	c.PackageURL = clonePtr(l.PackageURL)
	c.License = clonePtr(l.License)
	c.LicenseURL = clonePtr(l.LicenseURL)
	c.Copyright = clonePtr(l.Copyright)
	c.CopyrightURL = clonePtr(l.CopyrightURL)
	c.ShortDescription = clonePtr(l.ShortDescription)
	c.Description = clonePtr(l.Description)
	c.Tags = cloneSlice(l.Tags)
	c.ReleaseNotes = clonePtr(l.ReleaseNotes)
	c.ReleaseNotesURL = clonePtr(l.ReleaseNotesURL)
	c.Documentations = cloneDocumentations(l.Documentations)
	return c
}

// SingletonManifest is the legacy single-file form carrying version,
// installer, and default-locale fields in one document.
type SingletonManifest struct {
	PackageIdentifier string `yaml:"PackageIdentifier" json:"PackageIdentifier"`
	PackageVersion    string `yaml:"PackageVersion" json:"PackageVersion"`
	PackageLocale     string `yaml:"PackageLocale" json:"PackageLocale"`

	Publisher        string   `yaml:"Publisher" json:"Publisher"`
	PackageName      string   `yaml:"PackageName" json:"PackageName"`
	PackageURL       *string  `yaml:"PackageUrl,omitempty" json:"PackageUrl,omitempty"`
	License          string   `yaml:"License" json:"License"`
	LicenseURL       *string  `yaml:"LicenseUrl,omitempty" json:"LicenseUrl,omitempty"`
	ShortDescription string   `yaml:"ShortDescription" json:"ShortDescription"`
	Description      *string  `yaml:"Description,omitempty" json:"Description,omitempty"`
	Moniker          *string  `yaml:"Moniker,omitempty" json:"Moniker,omitempty"`
	Tags             []string `yaml:"Tags,omitempty" json:"Tags,omitempty"`

	Channel *string `yaml:"Channel,omitempty" json:"Channel,omitempty"`

	InstallerLocale       *string              `yaml:"InstallerLocale,omitempty" json:"InstallerLocale,omitempty"`
	Platform              []string             `yaml:"Platform,omitempty" json:"Platform,omitempty"`
	MinimumOSVersion      *string              `yaml:"MinimumOSVersion,omitempty" json:"MinimumOSVersion,omitempty"`
	InstallerType         *string              `yaml:"InstallerType,omitempty" json:"InstallerType,omitempty"`
	Scope                 *string              `yaml:"Scope,omitempty" json:"Scope,omitempty"`
	InstallModes          []string             `yaml:"InstallModes,omitempty" json:"InstallModes,omitempty"`
	InstallerSwitches     *InstallerSwitches   `yaml:"InstallerSwitches,omitempty" json:"InstallerSwitches,omitempty"`
	InstallerSuccessCodes []int64              `yaml:"InstallerSuccessCodes,omitempty" json:"InstallerSuccessCodes,omitempty"`
	ExpectedReturnCodes   []ExpectedReturnCode `yaml:"ExpectedReturnCodes,omitempty" json:"ExpectedReturnCodes,omitempty"`
	UpgradeBehavior       *string              `yaml:"UpgradeBehavior,omitempty" json:"UpgradeBehavior,omitempty"`
	Dependencies          *Dependencies        `yaml:"Dependencies,omitempty" json:"Dependencies,omitempty"`
	PackageFamilyName     *string              `yaml:"PackageFamilyName,omitempty" json:"PackageFamilyName,omitempty"`
	ProductCode           *string              `yaml:"ProductCode,omitempty" json:"ProductCode,omitempty"`
	ReleaseDate           *string              `yaml:"ReleaseDate,omitempty" json:"ReleaseDate,omitempty"`

	Installers []Installer `yaml:"Installers" json:"Installers"`

	ManifestType    Kind   `yaml:"ManifestType" json:"ManifestType"`
	ManifestVersion string `yaml:"ManifestVersion" json:"ManifestVersion"`
}

// Set is the unit of work: either the four multi-file documents (plus any
// additional locales) or a legacy singleton awaiting conversion.
type Set struct {
	Version       VersionManifest
	Installer     InstallerManifest
	DefaultLocale DefaultLocaleManifest
	Locales       []LocaleManifest
	Singleton     *SingletonManifest
}

// Clone returns a deep copy.
func (s Set) Clone() Set {
	c := Set{
		Version:       s.Version,
		Installer:     s.Installer.Clone(),
		DefaultLocale: s.DefaultLocale.Clone(),
	}
	for _, l := range s.Locales {
		c.Locales = append(c.Locales, l.Clone())
	}
	if s.Singleton != nil {
		sc := *s.Singleton
		sc.Installers = nil
		for _, inst := range s.Singleton.Installers {
			sc.Installers = append(sc.Installers, inst.Clone())
		}
		sc.InstallerSwitches = s.Singleton.InstallerSwitches.Clone()
		sc.Dependencies = s.Singleton.Dependencies.Clone()
		sc.Platform = cloneSlice(s.Singleton.Platform)
		sc.InstallModes = cloneSlice(s.Singleton.InstallModes)
		sc.InstallerSuccessCodes = cloneSlice(s.Singleton.InstallerSuccessCodes)
		sc.ExpectedReturnCodes = cloneSlice(s.Singleton.ExpectedReturnCodes)
		sc.Tags = cloneSlice(s.Singleton.Tags)
		c.Singleton = &sc
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func cloneAgreements(a []Agreement) []Agreement {
	var out []Agreement
	for _, e := range a {
		out = append(out, Agreement{
			AgreementLabel: clonePtr(e.AgreementLabel),
			Agreement:      clonePtr(e.Agreement),
			AgreementURL:   clonePtr(e.AgreementURL),
		})
	}
	return out
}

func cloneDocumentations(d []Documentation) []Documentation {
	var out []Documentation
	for _, e := range d {
		out = append(out, Documentation{
			DocumentLabel: clonePtr(e.DocumentLabel),
			DocumentURL:   clonePtr(e.DocumentURL),
		})
	}
	return out
}

func ptrEq[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sliceEq[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
