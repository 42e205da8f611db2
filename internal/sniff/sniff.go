// Package sniff inspects downloaded installer binaries and produces the
// detected metadata (architecture, installer type, hashes, product codes)
// the manifest flows merge into installer entries. Sniffing is
// deterministic for a given file.
package sniff

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fulmenhq/manifold/pkg/logger"
	"github.com/fulmenhq/manifold/pkg/manifest"
)

// Compound file binary magic, the container format of MSI packages.
var cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// mzMagic starts every PE image.
var mzMagic = []byte{0x4D, 0x5A}

// productCodePattern matches a windows product code GUID.
var productCodePattern = regexp.MustCompile(`\{[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}\}`)

// Sniff inspects the downloaded file at path and returns one detected
// installer per architecture found. A bundle or archive containing
// installers for several architectures yields several candidates; plain
// installers yield exactly one.
func Sniff(url, path string) ([]manifest.DetectedInstaller, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from our own download dir
	if err != nil {
		return nil, fmt.Errorf("reading installer file: %w", err)
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("file %s is too short to be an installer", path)
	}

	sum := sha256.Sum256(data)
	base := manifest.DetectedInstaller{
		InstallerURL:    url,
		Sha256:          fmt.Sprintf("%X", sum[:]),
		URLArchitecture: ArchFromURL(url),
	}

	switch {
	case bytes.HasPrefix(data, mzMagic):
		return sniffPE(base, data)
	case bytes.HasPrefix(data, cfbMagic):
		return sniffMsi(base, data)
	case bytes.HasPrefix(data, zipMagic):
		return sniffArchive(base, data, strings.ToLower(filepath.Ext(path)))
	default:
		return nil, fmt.Errorf("unrecognized installer format for %s", path)
	}
}

func sniffPE(base manifest.DetectedInstaller, data []byte) ([]manifest.DetectedInstaller, error) {
	arch, err := peArch(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing PE header: %w", err)
	}
	base.Architecture = arch
	base.InstallerType = peInstallerType(data)
	return []manifest.DetectedInstaller{base}, nil
}

func sniffMsi(base manifest.DetectedInstaller, data []byte) ([]manifest.DetectedInstaller, error) {
	// Wix burn bundles embed the same marker inside the CFB container.
	if bytes.Contains(data, sigBurn) {
		base.InstallerType = TypeBurn
	} else {
		base.InstallerType = TypeMsi
	}

	// MSI stores strings in CFB streams; x64 packages declare their
	// template platform near the summary information stream.
	switch {
	case bytes.Contains(data, []byte("Intel64")) || bytes.Contains(data, []byte("x64;")):
		base.Architecture = ArchX64
	case bytes.Contains(data, []byte("Arm64")):
		base.Architecture = ArchArm64
	default:
		base.Architecture = ArchX86
	}
	if base.URLArchitecture != "" && base.Architecture == ArchX86 && base.URLArchitecture != ArchX86 {
		// The template scan is a heuristic; trust an explicit URL hint
		// over the x86 fallback.
		base.Architecture = base.URLArchitecture
	}

	if code := productCodePattern.Find(data); code != nil {
		pc := string(code)
		base.ProductCode = &pc
	}
	return []manifest.DetectedInstaller{base}, nil
}

func sniffArchive(base manifest.DetectedInstaller, data []byte, ext string) ([]manifest.DetectedInstaller, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	if isAppxPackage(zr) {
		return sniffAppx(base, zr, ext)
	}
	return sniffZip(base, zr)
}

func isAppxPackage(zr *zip.Reader) bool {
	for _, f := range zr.File {
		switch f.Name {
		case "AppxManifest.xml", "AppxBundleManifest.xml", "AppxMetadata/AppxBundleManifest.xml":
			return true
		}
	}
	return false
}

func sniffAppx(base manifest.DetectedInstaller, zr *zip.Reader, ext string) ([]manifest.DetectedInstaller, error) {
	installerType := TypeMsix
	if ext == ".appx" || ext == ".appxbundle" {
		installerType = TypeAppx
	}
	identity, sigSha, nested, err := sniffMsix(zr, installerType)
	if err != nil {
		return nil, err
	}

	base.InstallerType = installerType
	if sigSha != "" {
		base.SignatureSha256 = &sigSha
	}
	if identity.Name != "" {
		pfn := identity.PackageFamilyName()
		base.PackageFamilyName = &pfn
	}

	// A bundle carries nested packages per architecture; each becomes its
	// own candidate so the matcher can address multi-architecture entries.
	if len(nested) > 1 {
		var out []manifest.DetectedInstaller
		for _, arch := range nested {
			cand := base
			cand.Architecture = arch
			cand.NestedArchitectures = nested
			out = append(out, cand)
		}
		return out, nil
	}
	if len(nested) == 1 {
		base.Architecture = nested[0]
	} else {
		base.Architecture = identity.Architecture
	}
	return []manifest.DetectedInstaller{base}, nil
}

// sniffZip looks for installers nested at the top level of a plain archive
// and reports one candidate per distinct nested architecture.
func sniffZip(base manifest.DetectedInstaller, zr *zip.Reader) ([]manifest.DetectedInstaller, error) {
	base.InstallerType = TypeZip

	seen := make(map[string]struct{})
	var archs []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.Contains(f.Name, "/") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext != ".exe" && ext != ".msi" {
			continue
		}
		content, err := readZipFile(f)
		if err != nil {
			logger.Debug("skipping unreadable archive member", logger.String("member", f.Name), logger.Err(err))
			continue
		}
		arch := ""
		if bytes.HasPrefix(content, mzMagic) {
			if a, err := peArch(bytes.NewReader(content)); err == nil {
				arch = a
			}
		} else if bytes.HasPrefix(content, cfbMagic) {
			if nested, err := sniffMsi(manifest.DetectedInstaller{}, content); err == nil {
				arch = nested[0].Architecture
			}
		}
		if arch == "" {
			continue
		}
		if _, dup := seen[arch]; !dup {
			seen[arch] = struct{}{}
			archs = append(archs, arch)
		}
	}

	switch len(archs) {
	case 0:
		// No nested installer identified; fall back to the URL hint.
		if base.URLArchitecture != "" {
			base.Architecture = base.URLArchitecture
		} else {
			base.Architecture = ArchNeutral
		}
		return []manifest.DetectedInstaller{base}, nil
	case 1:
		base.Architecture = archs[0]
		return []manifest.DetectedInstaller{base}, nil
	default:
		var out []manifest.DetectedInstaller
		for _, arch := range archs {
			cand := base
			cand.Architecture = arch
			cand.NestedArchitectures = archs
			out = append(out, cand)
		}
		return out, nil
	}
}
