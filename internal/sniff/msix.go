package sniff

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// appxIdentity is the package identity parsed from an appx manifest.
type appxIdentity struct {
	Name         string
	Publisher    string
	Architecture string
}

// parseAppxManifest extracts the package identity from AppxManifest.xml.
func parseAppxManifest(data []byte) (appxIdentity, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return appxIdentity{}, fmt.Errorf("parsing appx manifest: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return appxIdentity{}, fmt.Errorf("appx manifest has no root element")
	}
	identity := root.FindElement("Identity")
	if identity == nil {
		return appxIdentity{}, fmt.Errorf("appx manifest has no Identity element")
	}
	id := appxIdentity{
		Name:         identity.SelectAttrValue("Name", ""),
		Publisher:    identity.SelectAttrValue("Publisher", ""),
		Architecture: strings.ToLower(identity.SelectAttrValue("ProcessorArchitecture", ArchNeutral)),
	}
	if id.Name == "" || id.Publisher == "" {
		return appxIdentity{}, fmt.Errorf("appx manifest identity is incomplete")
	}
	return id, nil
}

// bundleArchitectures extracts the per-package architectures declared in
// AppxBundleManifest.xml.
func bundleArchitectures(data []byte) ([]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing appx bundle manifest: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("appx bundle manifest has no root element")
	}
	seen := make(map[string]struct{})
	var archs []string
	for _, pkg := range root.FindElements("Packages/Package") {
		if pkg.SelectAttrValue("Type", "") != "application" {
			continue
		}
		arch := strings.ToLower(pkg.SelectAttrValue("Architecture", ""))
		if arch == "" {
			continue
		}
		if _, dup := seen[arch]; !dup {
			seen[arch] = struct{}{}
			archs = append(archs, arch)
		}
	}
	return archs, nil
}

// crockford32 is the alphabet the package family name hash uses.
const crockford32 = "0123456789abcdefghjkmnpqrstvwxyz"

// familyNameHash computes the publisher hash suffix of a package family
// name: SHA-256 over the UTF-16LE publisher string, first 8 bytes encoded
// as 13 Crockford base-32 characters.
func familyNameHash(publisher string) string {
	utf16le := make([]byte, 0, len(publisher)*2)
	for _, r := range publisher {
		var buf [2]byte
		if r > 0xFFFF {
			r1, r2 := utf16Surrogates(r)
			binary.LittleEndian.PutUint16(buf[:], r1)
			utf16le = append(utf16le, buf[0], buf[1])
			binary.LittleEndian.PutUint16(buf[:], r2)
			utf16le = append(utf16le, buf[0], buf[1])
			continue
		}
		binary.LittleEndian.PutUint16(buf[:], uint16(r))
		utf16le = append(utf16le, buf[0], buf[1])
	}
	sum := sha256.Sum256(utf16le)

	// 8 bytes = 64 bits, padded with a trailing zero bit to 65 and encoded
	// MSB-first as 13 five-bit groups.
	bits := binary.BigEndian.Uint64(sum[:8])
	var out [13]byte
	for i := 0; i < 12; i++ {
		shift := uint(64 - 5*(i+1))
		out[i] = crockford32[(bits>>shift)&0x1F]
	}
	out[12] = crockford32[(bits&0xF)<<1]
	return string(out[:])
}

func utf16Surrogates(r rune) (uint16, uint16) {
	r -= 0x10000
	return uint16(0xD800 + (r >> 10)), uint16(0xDC00 + (r & 0x3FF))
}

// PackageFamilyName builds the family name from an identity.
func (id appxIdentity) PackageFamilyName() string {
	return id.Name + "_" + familyNameHash(id.Publisher)
}

// sniffMsix inspects an msix/appx (or bundle) archive.
func sniffMsix(zr *zip.Reader, installerType string) (identity appxIdentity, sigSha string, nested []string, err error) {
	var manifestData, bundleData, sigData []byte
	for _, f := range zr.File {
		switch f.Name {
		case "AppxManifest.xml":
			manifestData, err = readZipFile(f)
		case "AppxBundleManifest.xml", "AppxMetadata/AppxBundleManifest.xml":
			bundleData, err = readZipFile(f)
		case "AppxSignature.p7x":
			sigData, err = readZipFile(f)
		}
		if err != nil {
			return appxIdentity{}, "", nil, err
		}
	}

	if bundleData != nil {
		nested, err = bundleArchitectures(bundleData)
		if err != nil {
			return appxIdentity{}, "", nil, err
		}
	}
	if manifestData != nil {
		identity, err = parseAppxManifest(manifestData)
		if err != nil {
			return appxIdentity{}, "", nil, err
		}
	} else if bundleData == nil {
		return appxIdentity{}, "", nil, fmt.Errorf("%s package has no appx manifest", installerType)
	}
	if sigData != nil {
		sum := sha256.Sum256(sigData)
		sigSha = fmt.Sprintf("%X", sum[:])
	}
	return identity, sigSha, nested, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
