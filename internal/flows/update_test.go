package flows

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/manifold/internal/download"
	"github.com/fulmenhq/manifold/internal/forge"
	"github.com/fulmenhq/manifold/pkg/config"
	"github.com/fulmenhq/manifold/pkg/manifest"
)

// msiPayload builds a minimal CFB container the installer sniffer reads as
// an x64 MSI with a product code.
func msiPayload() []byte {
	var b bytes.Buffer
	b.Write([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	b.WriteString("Intel64;1033")
	b.WriteString("{11111111-2222-3333-4444-555555555555}")
	return b.Bytes()
}

type repoEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// updateFixture serves the contents API for a repository holding
// Contoso.App 1.0.0 whose installer URL points at installerBase and embeds
// the version.
func updateFixture(t *testing.T, installerBase, installerSha string) *forge.Client {
	t.Helper()

	base := "manifests/c/Contoso/App"
	versionDoc := "PackageIdentifier: Contoso.App\nPackageVersion: 1.0.0\nDefaultLocale: en-US\nManifestType: version\nManifestVersion: 1.6.0\n"
	installerDoc := fmt.Sprintf(
		"PackageIdentifier: Contoso.App\nPackageVersion: 1.0.0\nInstallers:\n- Architecture: x64\n  InstallerType: msi\n  InstallerUrl: %s/app-1.0.0-x64.msi\n  InstallerSha256: %s\nManifestType: installer\nManifestVersion: 1.6.0\n",
		installerBase, installerSha)
	localeDoc := "PackageIdentifier: Contoso.App\nPackageVersion: 1.0.0\nPackageLocale: en-US\nPublisher: Contoso\nPackageName: App\nLicense: MIT\nShortDescription: A sample application\nManifestType: defaultLocale\nManifestVersion: 1.6.0\n"

	dirs := map[string][]repoEntry{
		"manifests/c":         {{Name: "Contoso", Path: "manifests/c/Contoso", Type: "dir"}},
		"manifests/c/Contoso": {{Name: "App", Path: base, Type: "dir"}},
		base:                  {{Name: "1.0.0", Path: base + "/1.0.0", Type: "dir"}},
		base + "/1.0.0": {
			{Name: "Contoso.App.yaml", Path: base + "/1.0.0/Contoso.App.yaml", Type: "file"},
			{Name: "Contoso.App.installer.yaml", Path: base + "/1.0.0/Contoso.App.installer.yaml", Type: "file"},
			{Name: "Contoso.App.locale.en-US.yaml", Path: base + "/1.0.0/Contoso.App.locale.en-US.yaml", Type: "file"},
		},
	}
	files := map[string]string{
		base + "/1.0.0/Contoso.App.yaml":              versionDoc,
		base + "/1.0.0/Contoso.App.installer.yaml":    installerDoc,
		base + "/1.0.0/Contoso.App.locale.en-US.yaml": localeDoc,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "/repos/microsoft/winget-pkgs/contents/"
		if !strings.HasPrefix(r.URL.Path, prefix) {
			http.NotFound(w, r)
			return
		}
		path := strings.TrimPrefix(r.URL.Path, prefix)
		if entries, ok := dirs[path]; ok {
			_ = json.NewEncoder(w).Encode(entries)
			return
		}
		if content, ok := files[path]; ok {
			_ = json.NewEncoder(w).Encode(map[string]string{
				"name":     path[strings.LastIndex(path, "/")+1:],
				"path":     path,
				"type":     "file",
				"encoding": "base64",
				"content":  base64.StdEncoding.EncodeToString([]byte(content)),
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	}))
	t.Cleanup(srv.Close)

	return forge.NewWithHTTP(config.Default(), srv.Client(), srv.URL)
}

// installerServer serves the same MSI payload under both the old and the
// new version's file names.
func installerServer(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	serve := func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}
	mux.HandleFunc("/app-1.0.0-x64.msi", serve)
	mux.HandleFunc("/app-2.0.0-x64.msi", serve)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func updateDeps(t *testing.T, client *forge.Client) Deps {
	t.Helper()
	return Deps{
		Cfg:    config.Default(),
		Client: client,
		Cache:  download.NewCache(download.New(t.TempDir(), 0, 10*time.Second)),
		Codec:  manifest.Codec{Format: manifest.FormatYAML},
	}
}

func TestUpdate_VersionBump(t *testing.T) {
	payload := msiPayload()
	installers := installerServer(t, payload)
	// The stored hash belongs to the previous release's binary, so the
	// freshly downloaded one must differ.
	client := updateFixture(t, installers.URL, strings.Repeat("A", 64))

	outDir := t.TempDir()
	res, err := Update(context.Background(), updateDeps(t, client), UpdateOptions{
		PackageIdentifier: "Contoso.App",
		NewVersion:        "2.0.0",
		OutDir:            outDir,
	})
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", res.PreviousVersion)
	assert.Equal(t, "2.0.0", res.Set.Version.PackageVersion)
	assert.Equal(t, "2.0.0", res.Set.Installer.PackageVersion)

	require.Len(t, res.Set.Installer.Installers, 1)
	inst := res.Set.Installer.Installers[0]
	assert.Equal(t, installers.URL+"/app-2.0.0-x64.msi", inst.InstallerURL)
	assert.Equal(t, fmt.Sprintf("%X", sha256.Sum256(payload)), inst.InstallerSha256)
	require.NotNil(t, inst.ProductCode)
	assert.Equal(t, "{11111111-2222-3333-4444-555555555555}", *inst.ProductCode)

	assert.Len(t, res.Paths, 3)
	for _, p := range res.Paths {
		assert.Contains(t, p, "2.0.0")
	}
	assert.Empty(t, res.ArchitectureWarnings)
	assert.Nil(t, res.PullRequest)
}

func TestUpdate_UnchangedHashRegeneratesLocally(t *testing.T) {
	payload := msiPayload()
	installers := installerServer(t, payload)
	client := updateFixture(t, installers.URL, fmt.Sprintf("%X", sha256.Sum256(payload)))

	res, err := Update(context.Background(), updateDeps(t, client), UpdateOptions{
		PackageIdentifier: "Contoso.App",
	})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", res.Set.Version.PackageVersion)
}

func TestUpdate_UnchangedHashBlocksSubmission(t *testing.T) {
	payload := msiPayload()
	installers := installerServer(t, payload)
	client := updateFixture(t, installers.URL, fmt.Sprintf("%X", sha256.Sum256(payload)))

	_, err := Update(context.Background(), updateDeps(t, client), UpdateOptions{
		PackageIdentifier: "Contoso.App",
		Submit:            true,
	})
	assert.ErrorIs(t, err, ErrHashUnchanged)
}
