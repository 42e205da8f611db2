package sniff

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchFromURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{url: "https://example.com/app-x64.exe", expected: ArchX64},
		{url: "https://example.com/app_amd64.msi", expected: ArchX64},
		{url: "https://example.com/app-arm64.zip", expected: ArchArm64},
		{url: "https://example.com/app-AARCH64.exe", expected: ArchArm64},
		{url: "https://example.com/app-win32.exe", expected: ArchX86},
		{url: "https://example.com/App-32bit.exe", expected: ArchX86},
		{url: "https://example.com/setup.exe", expected: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ArchFromURL(tt.url), tt.url)
	}
}

func TestArchFromMachine(t *testing.T) {
	assert.Equal(t, ArchX86, archFromMachine(machineI386))
	assert.Equal(t, ArchX64, archFromMachine(machineAMD64))
	assert.Equal(t, ArchArm, archFromMachine(machineARM))
	assert.Equal(t, ArchArm64, archFromMachine(machineARM64))
	assert.Equal(t, ArchNeutral, archFromMachine(0x1234))
}

func TestPEInstallerType(t *testing.T) {
	assert.Equal(t, TypeInno, peInstallerType([]byte("...Inno Setup...")))
	assert.Equal(t, TypeNullsoft, peInstallerType([]byte("...Nullsoft.NSIS...")))
	assert.Equal(t, TypeNullsoft, peInstallerType([]byte("...NullsoftInst...")))
	assert.Equal(t, TypeBurn, peInstallerType([]byte("....wixburn...")))
	assert.Equal(t, TypeExe, peInstallerType([]byte("plain executable")))
}

func TestFamilyNameHash(t *testing.T) {
	// The well-known Microsoft Store publisher id.
	publisher := "CN=Microsoft Corporation, O=Microsoft Corporation, L=Redmond, S=Washington, C=US"
	assert.Equal(t, "8wekyb3d8bbwe", familyNameHash(publisher))

	id := appxIdentity{Name: "Microsoft.WindowsTerminal", Publisher: publisher}
	assert.Equal(t, "Microsoft.WindowsTerminal_8wekyb3d8bbwe", id.PackageFamilyName())
}

func TestParseAppxManifest(t *testing.T) {
	xml := `<?xml version="1.0" encoding="utf-8"?>
<Package xmlns="http://schemas.microsoft.com/appx/manifest/foundation/windows10">
  <Identity Name="Contoso.App" Publisher="CN=Contoso" Version="1.0.0.0" ProcessorArchitecture="X64"/>
</Package>`
	id, err := parseAppxManifest([]byte(xml))
	require.NoError(t, err)
	assert.Equal(t, "Contoso.App", id.Name)
	assert.Equal(t, "CN=Contoso", id.Publisher)
	assert.Equal(t, "x64", id.Architecture)

	_, err = parseAppxManifest([]byte(`<Package><Identity Name="" Publisher=""/></Package>`))
	assert.Error(t, err)
}

func TestBundleArchitectures(t *testing.T) {
	xml := `<?xml version="1.0"?>
<Bundle xmlns="http://schemas.microsoft.com/appx/2013/bundle">
  <Packages>
    <Package Type="application" Architecture="x64" FileName="app_x64.appx"/>
    <Package Type="application" Architecture="arm64" FileName="app_arm64.appx"/>
    <Package Type="resource" FileName="resources.appx"/>
  </Packages>
</Bundle>`
	archs, err := bundleArchitectures([]byte(xml))
	require.NoError(t, err)
	assert.Equal(t, []string{"x64", "arm64"}, archs)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestSniff_MSI(t *testing.T) {
	data := append([]byte{}, cfbMagic...)
	data = append(data, []byte(";Intel64;1033 summary {12345678-ABCD-ABCD-ABCD-123456789012} tail")...)
	path := writeFile(t, "app.msi", data)

	detected, err := Sniff("https://example.com/app-x64.msi", path)
	require.NoError(t, err)
	require.Len(t, detected, 1)

	d := detected[0]
	assert.Equal(t, TypeMsi, d.InstallerType)
	assert.Equal(t, ArchX64, d.Architecture)
	assert.Equal(t, ArchX64, d.URLArchitecture)
	assert.Len(t, d.Sha256, 64)
	require.NotNil(t, d.ProductCode)
	assert.Equal(t, "{12345678-ABCD-ABCD-ABCD-123456789012}", *d.ProductCode)
}

func TestSniff_MSIBurnMarker(t *testing.T) {
	data := append([]byte{}, cfbMagic...)
	data = append(data, []byte(".wixburn payload")...)
	path := writeFile(t, "bundle.exe", data)

	detected, err := Sniff("https://example.com/bundle.exe", path)
	require.NoError(t, err)
	require.Len(t, detected, 1)
	assert.Equal(t, TypeBurn, detected[0].InstallerType)
}

func TestSniff_URLHintOverridesMsiFallback(t *testing.T) {
	data := append([]byte{}, cfbMagic...)
	data = append(data, []byte("no template hints")...)
	path := writeFile(t, "app.msi", data)

	detected, err := Sniff("https://example.com/app-arm64.msi", path)
	require.NoError(t, err)
	assert.Equal(t, ArchArm64, detected[0].Architecture)
}

func buildZip(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestSniff_Msix(t *testing.T) {
	manifest := []byte(`<Package><Identity Name="Contoso.App" Publisher="CN=Contoso" ProcessorArchitecture="x64"/></Package>`)
	signature := []byte("fake signature bytes")
	data := buildZip(t, map[string][]byte{
		"AppxManifest.xml":   manifest,
		"AppxSignature.p7x":  signature,
		"AppxBlockMap.xml":   []byte("<BlockMap/>"),
	})
	path := writeFile(t, "app.msix", data)

	detected, err := Sniff("https://example.com/app.msix", path)
	require.NoError(t, err)
	require.Len(t, detected, 1)

	d := detected[0]
	assert.Equal(t, TypeMsix, d.InstallerType)
	assert.Equal(t, "x64", d.Architecture)
	require.NotNil(t, d.PackageFamilyName)
	assert.Equal(t, "Contoso.App_"+familyNameHash("CN=Contoso"), *d.PackageFamilyName)
	require.NotNil(t, d.SignatureSha256)
	assert.Len(t, *d.SignatureSha256, 64)
}

func TestSniff_AppxBundleYieldsOneCandidatePerArch(t *testing.T) {
	bundle := []byte(`<Bundle><Packages>
<Package Type="application" Architecture="x64"/>
<Package Type="application" Architecture="arm64"/>
</Packages></Bundle>`)
	data := buildZip(t, map[string][]byte{
		"AppxMetadata/AppxBundleManifest.xml": bundle,
	})
	path := writeFile(t, "app.appxbundle", data)

	detected, err := Sniff("https://example.com/app.appxbundle", path)
	require.NoError(t, err)
	require.Len(t, detected, 2)
	assert.Equal(t, TypeAppx, detected[0].InstallerType)
	assert.Equal(t, "x64", detected[0].Architecture)
	assert.Equal(t, "arm64", detected[1].Architecture)
	assert.Equal(t, []string{"x64", "arm64"}, detected[0].NestedArchitectures)
}

func TestSniff_ZipWithNestedMsi(t *testing.T) {
	msi := append([]byte{}, cfbMagic...)
	msi = append(msi, []byte("Intel64;")...)
	data := buildZip(t, map[string][]byte{
		"setup.msi":  msi,
		"readme.txt": []byte("docs"),
	})
	path := writeFile(t, "app.zip", data)

	detected, err := Sniff("https://example.com/app.zip", path)
	require.NoError(t, err)
	require.Len(t, detected, 1)
	assert.Equal(t, TypeZip, detected[0].InstallerType)
	assert.Equal(t, ArchX64, detected[0].Architecture)
}

func TestSniff_ZipWithoutInstallersFallsBackToURLHint(t *testing.T) {
	data := buildZip(t, map[string][]byte{"readme.txt": []byte("docs")})
	path := writeFile(t, "tools.zip", data)

	detected, err := Sniff("https://example.com/tools-x86.zip", path)
	require.NoError(t, err)
	require.Len(t, detected, 1)
	assert.Equal(t, ArchX86, detected[0].Architecture)
}

func TestSniff_RejectsUnknownFormat(t *testing.T) {
	path := writeFile(t, "mystery.bin", []byte("0123456789abcdef"))
	_, err := Sniff("https://example.com/mystery.bin", path)
	assert.Error(t, err)
}
