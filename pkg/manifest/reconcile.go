package manifest

// Field reconciliation. All operations are pure: the input manifest is
// cloned and never mutated, so callers can hold the original for rollback.
// These transforms are total over well-formed documents and never fail.

// ShiftRootFieldsToInstallerLevel copies every non-nil root shared field
// into each installer that does not override it, then clears the root.
// Installer-level values already present are never overwritten. Used before
// per-installer editing so each installer carries its effective values.
func ShiftRootFieldsToInstallerLevel(m InstallerManifest) InstallerManifest {
	out := m.Clone()
	for _, f := range sharedFields {
		f.shiftDown(&out)
	}
	return out
}

// ShiftInstallerFieldsToRootLevel promotes each shared field whose value is
// present on every installer and equal across all of them (ordered
// element-wise comparison for lists) to the root, clearing it on the
// installers. Fields that differ across installers are left untouched.
// Used before serialization to de-duplicate. A single-installer manifest
// keeps its fields on the installer entry, with the root left null; there
// is nothing to de-duplicate.
func ShiftInstallerFieldsToRootLevel(m InstallerManifest) InstallerManifest {
	out := m.Clone()
	if len(out.Installers) < 2 {
		return out
	}
	for _, f := range sharedFields {
		f.liftUp(&out)
	}
	return out
}

// RemoveEmptyFields nils out empty-string and zero-length list fields on
// every document in the set, so the serializer omits them instead of
// emitting deceptive empty nodes.
func RemoveEmptyFields(s Set) Set {
	out := s.Clone()
	pruneInstallerManifest(&out.Installer)
	pruneDefaultLocale(&out.DefaultLocale)
	for i := range out.Locales {
		pruneLocale(&out.Locales[i])
	}
	return out
}

func pruneStr(p **string) {
	if *p != nil && **p == "" {
		*p = nil
	}
}

func pruneList[T any](p *[]T) {
	if *p != nil && len(*p) == 0 {
		*p = nil
	}
}

func pruneSwitches(p **InstallerSwitches) {
	s := *p
	if s == nil {
		return
	}
	pruneStr(&s.Silent)
	pruneStr(&s.SilentWithProgress)
	pruneStr(&s.Interactive)
	pruneStr(&s.InstallLocation)
	pruneStr(&s.Log)
	pruneStr(&s.Upgrade)
	pruneStr(&s.Custom)
	if s.Silent == nil && s.SilentWithProgress == nil && s.Interactive == nil &&
		s.InstallLocation == nil && s.Log == nil && s.Upgrade == nil && s.Custom == nil {
		*p = nil
	}
}

func pruneDependencies(p **Dependencies) {
	d := *p
	if d == nil {
		return
	}
	pruneList(&d.WindowsFeatures)
	pruneList(&d.WindowsLibraries)
	pruneList(&d.PackageDependencies)
	pruneList(&d.ExternalDependencies)
	for i := range d.PackageDependencies {
		pruneStr(&d.PackageDependencies[i].MinimumVersion)
	}
	if d.Empty() {
		*p = nil
	}
}

func pruneMarkets(p **Markets) {
	m := *p
	if m == nil {
		return
	}
	pruneList(&m.AllowedMarkets)
	pruneList(&m.ExcludedMarkets)
	if m.Empty() {
		*p = nil
	}
}

func pruneSharedInstallerFields(i *Installer) {
	pruneStr(&i.InstallerLocale)
	pruneList(&i.Platform)
	pruneStr(&i.MinimumOSVersion)
	pruneStr(&i.InstallerType)
	pruneStr(&i.Scope)
	pruneList(&i.InstallModes)
	pruneSwitches(&i.InstallerSwitches)
	pruneList(&i.InstallerSuccessCodes)
	pruneList(&i.ExpectedReturnCodes)
	pruneStr(&i.UpgradeBehavior)
	pruneList(&i.Commands)
	pruneList(&i.Protocols)
	pruneList(&i.FileExtensions)
	pruneDependencies(&i.Dependencies)
	pruneStr(&i.PackageFamilyName)
	pruneStr(&i.ProductCode)
	pruneList(&i.Capabilities)
	pruneList(&i.RestrictedCapabilities)
	pruneMarkets(&i.Markets)
	pruneStr(&i.ElevationRequirement)
	pruneStr(&i.ReleaseDate)
	pruneStr(&i.SignatureSha256)
	pruneStr(&i.NestedInstallerType)
	pruneList(&i.NestedInstallerFiles)
}

func pruneInstallerManifest(m *InstallerManifest) {
	pruneStr(&m.Channel)
	pruneStr(&m.InstallerLocale)
	pruneList(&m.Platform)
	pruneStr(&m.MinimumOSVersion)
	pruneStr(&m.InstallerType)
	pruneStr(&m.Scope)
	pruneList(&m.InstallModes)
	pruneSwitches(&m.InstallerSwitches)
	pruneList(&m.InstallerSuccessCodes)
	pruneList(&m.ExpectedReturnCodes)
	pruneStr(&m.UpgradeBehavior)
	pruneList(&m.Commands)
	pruneList(&m.Protocols)
	pruneList(&m.FileExtensions)
	pruneDependencies(&m.Dependencies)
	pruneStr(&m.PackageFamilyName)
	pruneStr(&m.ProductCode)
	pruneList(&m.Capabilities)
	pruneList(&m.RestrictedCapabilities)
	pruneMarkets(&m.Markets)
	pruneStr(&m.ElevationRequirement)
	pruneStr(&m.ReleaseDate)
	for i := range m.Installers {
		pruneSharedInstallerFields(&m.Installers[i])
	}
}

func pruneAgreements(p *[]Agreement) {
	pruneList(p)
	for i := range *p {
		pruneStr(&(*p)[i].AgreementLabel)
		pruneStr(&(*p)[i].Agreement)
		pruneStr(&(*p)[i].AgreementURL)
	}
}

func pruneDocumentations(p *[]Documentation) {
	pruneList(p)
	for i := range *p {
		pruneStr(&(*p)[i].DocumentLabel)
		pruneStr(&(*p)[i].DocumentURL)
	}
}

func pruneDefaultLocale(d *DefaultLocaleManifest) {
	pruneStr(&d.PublisherURL)
	pruneStr(&d.PublisherSupportURL)
	pruneStr(&d.PrivacyURL)
	pruneStr(&d.Author)
	pruneStr(&d.PackageURL)
	pruneStr(&d.LicenseURL)
	pruneStr(&d.Copyright)
	pruneStr(&d.CopyrightURL)
	pruneStr(&d.Description)
	pruneStr(&d.Moniker)
	pruneList(&d.Tags)
	pruneAgreements(&d.Agreements)
	pruneStr(&d.ReleaseNotes)
	pruneStr(&d.ReleaseNotesURL)
	pruneDocumentations(&d.Documentations)
}

func pruneLocale(l *LocaleManifest) {
	pruneStr(&l.Publisher)
	pruneStr(&l.PublisherURL)
	pruneStr(&l.PublisherSupportURL)
	pruneStr(&l.PrivacyURL)
	pruneStr(&l.Author)
	pruneStr(&l.PackageName)
	pruneStr(&l.PackageURL)
	pruneStr(&l.License)
	pruneStr(&l.LicenseURL)
	pruneStr(&l.Copyright)
	pruneStr(&l.CopyrightURL)
	pruneStr(&l.ShortDescription)
	pruneStr(&l.Description)
	pruneList(&l.Tags)
	pruneStr(&l.ReleaseNotes)
	pruneStr(&l.ReleaseNotesURL)
	pruneDocumentations(&l.Documentations)
}
