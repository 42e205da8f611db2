package sniff

import "strings"

// Architecture and installer type literals as they appear in manifests.
const (
	ArchX86     = "x86"
	ArchX64     = "x64"
	ArchArm     = "arm"
	ArchArm64   = "arm64"
	ArchNeutral = "neutral"
)

const (
	TypeExe      = "exe"
	TypeMsi      = "msi"
	TypeWix      = "wix"
	TypeInno     = "inno"
	TypeNullsoft = "nullsoft"
	TypeBurn     = "burn"
	TypeMsix     = "msix"
	TypeAppx     = "appx"
	TypeZip      = "zip"
)

// archHintTokens maps URL tokens to architectures, checked in order so the
// more specific token wins (arm64 before arm, x64 aliases before x86).
var archHintTokens = []struct {
	token string
	arch  string
}{
	{"arm64", ArchArm64},
	{"aarch64", ArchArm64},
	{"x86_64", ArchX64},
	{"x86-64", ArchX64},
	{"amd64", ArchX64},
	{"x64", ArchX64},
	{"win64", ArchX64},
	{"64-bit", ArchX64},
	{"64bit", ArchX64},
	{"arm", ArchArm},
	{"x86", ArchX86},
	{"win32", ArchX86},
	{"ia32", ArchX86},
	{"386", ArchX86},
	{"32-bit", ArchX86},
	{"32bit", ArchX86},
}

// ArchFromURL returns the architecture hinted by tokens in the URL, or
// empty when the URL carries no recognizable hint. Used only to warn when
// the binary disagrees.
func ArchFromURL(url string) string {
	lower := strings.ToLower(url)
	for _, h := range archHintTokens {
		if strings.Contains(lower, h.token) {
			return h.arch
		}
	}
	return ""
}
