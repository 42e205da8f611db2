package manifest

// ConvertSingletonToMultiFile maps the legacy single-document form into the
// four-document form. The singleton's PackageLocale becomes the version
// manifest's DefaultLocale, installer-shaped fields move to the installer
// manifest, and locale-shaped fields move to the default-locale manifest.
// The ManifestType discriminators are forced to their correct literals; a
// structural copy would otherwise carry the singleton's own type string.
// A set that carries no singleton is returned unchanged.
func ConvertSingletonToMultiFile(s Set) Set {
	if s.Singleton == nil {
		return s.Clone()
	}
	sg := s.Singleton

	out := Set{
		Version: VersionManifest{
			PackageIdentifier: sg.PackageIdentifier,
			PackageVersion:    sg.PackageVersion,
			DefaultLocale:     sg.PackageLocale,
			ManifestType:      KindVersion,
			ManifestVersion:   sg.ManifestVersion,
		},
		Installer: InstallerManifest{
			PackageIdentifier:     sg.PackageIdentifier,
			PackageVersion:        sg.PackageVersion,
			Channel:               clonePtr(sg.Channel),
			InstallerLocale:       clonePtr(sg.InstallerLocale),
			Platform:              cloneSlice(sg.Platform),
			MinimumOSVersion:      clonePtr(sg.MinimumOSVersion),
			InstallerType:         clonePtr(sg.InstallerType),
			Scope:                 clonePtr(sg.Scope),
			InstallModes:          cloneSlice(sg.InstallModes),
			InstallerSwitches:     sg.InstallerSwitches.Clone(),
			InstallerSuccessCodes: cloneSlice(sg.InstallerSuccessCodes),
			ExpectedReturnCodes:   cloneSlice(sg.ExpectedReturnCodes),
			UpgradeBehavior:       clonePtr(sg.UpgradeBehavior),
			Dependencies:          sg.Dependencies.Clone(),
			PackageFamilyName:     clonePtr(sg.PackageFamilyName),
			ProductCode:           clonePtr(sg.ProductCode),
			ReleaseDate:           clonePtr(sg.ReleaseDate),
			ManifestType:          KindInstaller,
			ManifestVersion:       sg.ManifestVersion,
		},
		DefaultLocale: DefaultLocaleManifest{
			PackageIdentifier: sg.PackageIdentifier,
			PackageVersion:    sg.PackageVersion,
			PackageLocale:     sg.PackageLocale,
			Publisher:         sg.Publisher,
			PackageName:       sg.PackageName,
			PackageURL:        clonePtr(sg.PackageURL),
			License:           sg.License,
			LicenseURL:        clonePtr(sg.LicenseURL),
			ShortDescription:  sg.ShortDescription,
			Description:       clonePtr(sg.Description),
			Moniker:           clonePtr(sg.Moniker),
			Tags:              cloneSlice(sg.Tags),
			ManifestType:      KindDefaultLocale,
			ManifestVersion:   sg.ManifestVersion,
		},
	}
	for _, inst := range sg.Installers {
		out.Installer.Installers = append(out.Installer.Installers, inst.Clone())
	}
	return out
}

// StampIdentifiers propagates the canonical package identifier (and, when
// non-empty, a new package version) across every document in the set,
// including each locale entry. Identifier capitalization in a manifest must
// always match the canonical form regardless of the casing found in the
// on-disk directory path.
func StampIdentifiers(s Set, packageIdentifier, packageVersion string) Set {
	out := s.Clone()
	stamp := func(id, ver *string) {
		*id = packageIdentifier
		if packageVersion != "" {
			*ver = packageVersion
		}
	}
	stamp(&out.Version.PackageIdentifier, &out.Version.PackageVersion)
	stamp(&out.Installer.PackageIdentifier, &out.Installer.PackageVersion)
	stamp(&out.DefaultLocale.PackageIdentifier, &out.DefaultLocale.PackageVersion)
	for i := range out.Locales {
		stamp(&out.Locales[i].PackageIdentifier, &out.Locales[i].PackageVersion)
	}
	if out.Singleton != nil {
		stamp(&out.Singleton.PackageIdentifier, &out.Singleton.PackageVersion)
	}
	return out
}

// EnsureManifestVersionConsistency stamps the current schema version onto
// every document kind and every locale entry, normalizing a set assembled
// from documents written by different tool versions.
func EnsureManifestVersionConsistency(s Set) Set {
	out := s.Clone()
	out.Version.ManifestVersion = SchemaVersion
	out.Version.ManifestType = KindVersion
	out.Installer.ManifestVersion = SchemaVersion
	out.Installer.ManifestType = KindInstaller
	out.DefaultLocale.ManifestVersion = SchemaVersion
	out.DefaultLocale.ManifestType = KindDefaultLocale
	for i := range out.Locales {
		out.Locales[i].ManifestVersion = SchemaVersion
		out.Locales[i].ManifestType = KindLocale
	}
	if out.Singleton != nil {
		out.Singleton.ManifestVersion = SchemaVersion
		out.Singleton.ManifestType = KindSingleton
	}
	return out
}

// NewSet scaffolds a fresh multi-file set for the create flow from detected
// installers. Root-level shared fields are left unset; with nothing to
// de-duplicate against, values live on the installer entries until
// ShiftInstallerFieldsToRootLevel runs before serialization.
func NewSet(packageIdentifier, packageVersion, defaultLocale string, detected []DetectedInstaller) Set {
	if defaultLocale == "" {
		defaultLocale = "en-US"
	}
	s := Set{
		Version: VersionManifest{
			PackageIdentifier: packageIdentifier,
			PackageVersion:    packageVersion,
			DefaultLocale:     defaultLocale,
			ManifestType:      KindVersion,
			ManifestVersion:   SchemaVersion,
		},
		Installer: InstallerManifest{
			PackageIdentifier: packageIdentifier,
			PackageVersion:    packageVersion,
			ManifestType:      KindInstaller,
			ManifestVersion:   SchemaVersion,
		},
		DefaultLocale: DefaultLocaleManifest{
			PackageIdentifier: packageIdentifier,
			PackageVersion:    packageVersion,
			PackageLocale:     defaultLocale,
			ManifestType:      KindDefaultLocale,
			ManifestVersion:   SchemaVersion,
		},
	}
	for _, d := range detected {
		inst := Installer{
			Architecture:      d.Architecture,
			InstallerURL:      d.InstallerURL,
			InstallerSha256:   d.Sha256,
			SignatureSha256:   clonePtr(d.SignatureSha256),
			ProductCode:       clonePtr(d.ProductCode),
			PackageFamilyName: clonePtr(d.PackageFamilyName),
		}
		if d.InstallerType != "" {
			t := d.InstallerType
			inst.InstallerType = &t
		}
		s.Installer.Installers = append(s.Installer.Installers, inst)
	}
	return s
}
