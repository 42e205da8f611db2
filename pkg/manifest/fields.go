package manifest

// The original tooling discovered which fields exist at both the
// installer-manifest root and per-installer level by runtime reflection.
// Here the sharing is declared once in a static descriptor table; the
// reconciliation operations in reconcile.go consult the table and nothing
// else.

// FieldKind classifies a shared field for equality purposes.
type FieldKind int

const (
	KindScalar FieldKind = iota
	KindList
	KindObject
)

// SharedField describes one field present on both InstallerManifest and
// Installer. The shift closures operate in place on a manifest the caller
// has already cloned.
type SharedField struct {
	Name string
	Kind FieldKind

	// shiftDown copies a non-nil root value into installers lacking their
	// own value, then clears the root.
	shiftDown func(m *InstallerManifest)

	// liftUp promotes a value common to all installers to the root and
	// clears it on every installer. Leaves the manifest untouched when any
	// installer lacks a value or values differ.
	liftUp func(m *InstallerManifest)
}

// scalarField builds a SharedField for a pointer-to-comparable field.
func scalarField[T comparable](name string, root func(*InstallerManifest) **T, inst func(*Installer) **T) SharedField {
	return SharedField{
		Name: name,
		Kind: KindScalar,
		shiftDown: func(m *InstallerManifest) {
			rp := root(m)
			if *rp == nil {
				return
			}
			for i := range m.Installers {
				ip := inst(&m.Installers[i])
				if *ip == nil {
					v := **rp
					*ip = &v
				}
			}
			*rp = nil
		},
		liftUp: func(m *InstallerManifest) {
			if len(m.Installers) == 0 {
				return
			}
			first := *inst(&m.Installers[0])
			if first == nil {
				return
			}
			for i := 1; i < len(m.Installers); i++ {
				v := *inst(&m.Installers[i])
				if v == nil || *v != *first {
					return
				}
			}
			common := *first
			*root(m) = &common
			for i := range m.Installers {
				*inst(&m.Installers[i]) = nil
			}
		},
	}
}

// listField builds a SharedField for a slice of comparable elements.
// Equality is ordered element-by-element comparison.
func listField[T comparable](name string, root func(*InstallerManifest) *[]T, inst func(*Installer) *[]T) SharedField {
	return SharedField{
		Name: name,
		Kind: KindList,
		shiftDown: func(m *InstallerManifest) {
			rp := root(m)
			if *rp == nil {
				return
			}
			for i := range m.Installers {
				ip := inst(&m.Installers[i])
				if *ip == nil {
					*ip = cloneSlice(*rp)
				}
			}
			*rp = nil
		},
		liftUp: func(m *InstallerManifest) {
			if len(m.Installers) == 0 {
				return
			}
			first := *inst(&m.Installers[0])
			if first == nil {
				return
			}
			for i := 1; i < len(m.Installers); i++ {
				v := *inst(&m.Installers[i])
				if v == nil || !sliceEq(v, first) {
					return
				}
			}
			*root(m) = cloneSlice(first)
			for i := range m.Installers {
				*inst(&m.Installers[i]) = nil
			}
		},
	}
}

// objectField builds a SharedField for a pointer-to-struct field with its
// own equality and clone functions.
func objectField[T any](name string, eq func(a, b *T) bool, clone func(*T) *T, root func(*InstallerManifest) **T, inst func(*Installer) **T) SharedField {
	return SharedField{
		Name: name,
		Kind: KindObject,
		shiftDown: func(m *InstallerManifest) {
			rp := root(m)
			if *rp == nil {
				return
			}
			for i := range m.Installers {
				ip := inst(&m.Installers[i])
				if *ip == nil {
					*ip = clone(*rp)
				}
			}
			*rp = nil
		},
		liftUp: func(m *InstallerManifest) {
			if len(m.Installers) == 0 {
				return
			}
			first := *inst(&m.Installers[0])
			if first == nil {
				return
			}
			for i := 1; i < len(m.Installers); i++ {
				v := *inst(&m.Installers[i])
				if v == nil || !eq(v, first) {
					return
				}
			}
			*root(m) = clone(first)
			for i := range m.Installers {
				*inst(&m.Installers[i]) = nil
			}
		},
	}
}

// sharedFields is the complete root/installer sharing table. Order matters
// only for determinism of the transforms.
var sharedFields = []SharedField{
	scalarField("InstallerLocale",
		func(m *InstallerManifest) **string { return &m.InstallerLocale },
		func(i *Installer) **string { return &i.InstallerLocale }),
	listField("Platform",
		func(m *InstallerManifest) *[]string { return &m.Platform },
		func(i *Installer) *[]string { return &i.Platform }),
	scalarField("MinimumOSVersion",
		func(m *InstallerManifest) **string { return &m.MinimumOSVersion },
		func(i *Installer) **string { return &i.MinimumOSVersion }),
	scalarField("InstallerType",
		func(m *InstallerManifest) **string { return &m.InstallerType },
		func(i *Installer) **string { return &i.InstallerType }),
	scalarField("Scope",
		func(m *InstallerManifest) **string { return &m.Scope },
		func(i *Installer) **string { return &i.Scope }),
	listField("InstallModes",
		func(m *InstallerManifest) *[]string { return &m.InstallModes },
		func(i *Installer) *[]string { return &i.InstallModes }),
	objectField("InstallerSwitches",
		(*InstallerSwitches).Equal, (*InstallerSwitches).Clone,
		func(m *InstallerManifest) **InstallerSwitches { return &m.InstallerSwitches },
		func(i *Installer) **InstallerSwitches { return &i.InstallerSwitches }),
	listField("InstallerSuccessCodes",
		func(m *InstallerManifest) *[]int64 { return &m.InstallerSuccessCodes },
		func(i *Installer) *[]int64 { return &i.InstallerSuccessCodes }),
	listField("ExpectedReturnCodes",
		func(m *InstallerManifest) *[]ExpectedReturnCode { return &m.ExpectedReturnCodes },
		func(i *Installer) *[]ExpectedReturnCode { return &i.ExpectedReturnCodes }),
	scalarField("UpgradeBehavior",
		func(m *InstallerManifest) **string { return &m.UpgradeBehavior },
		func(i *Installer) **string { return &i.UpgradeBehavior }),
	listField("Commands",
		func(m *InstallerManifest) *[]string { return &m.Commands },
		func(i *Installer) *[]string { return &i.Commands }),
	listField("Protocols",
		func(m *InstallerManifest) *[]string { return &m.Protocols },
		func(i *Installer) *[]string { return &i.Protocols }),
	listField("FileExtensions",
		func(m *InstallerManifest) *[]string { return &m.FileExtensions },
		func(i *Installer) *[]string { return &i.FileExtensions }),
	objectField("Dependencies",
		(*Dependencies).Equal, (*Dependencies).Clone,
		func(m *InstallerManifest) **Dependencies { return &m.Dependencies },
		func(i *Installer) **Dependencies { return &i.Dependencies }),
	scalarField("PackageFamilyName",
		func(m *InstallerManifest) **string { return &m.PackageFamilyName },
		func(i *Installer) **string { return &i.PackageFamilyName }),
	scalarField("ProductCode",
		func(m *InstallerManifest) **string { return &m.ProductCode },
		func(i *Installer) **string { return &i.ProductCode }),
	listField("Capabilities",
		func(m *InstallerManifest) *[]string { return &m.Capabilities },
		func(i *Installer) *[]string { return &i.Capabilities }),
	listField("RestrictedCapabilities",
		func(m *InstallerManifest) *[]string { return &m.RestrictedCapabilities },
		func(i *Installer) *[]string { return &i.RestrictedCapabilities }),
	objectField("Markets",
		(*Markets).Equal, (*Markets).Clone,
		func(m *InstallerManifest) **Markets { return &m.Markets },
		func(i *Installer) **Markets { return &i.Markets }),
	scalarField("ElevationRequirement",
		func(m *InstallerManifest) **string { return &m.ElevationRequirement },
		func(i *Installer) **string { return &i.ElevationRequirement }),
	scalarField("ReleaseDate",
		func(m *InstallerManifest) **string { return &m.ReleaseDate },
		func(i *Installer) **string { return &i.ReleaseDate }),
}

// SharedFieldNames returns the names in the sharing table, in table order.
func SharedFieldNames() []string {
	names := make([]string, 0, len(sharedFields))
	for _, f := range sharedFields {
		names = append(names, f.Name)
	}
	return names
}
