package manifest

import (
	"errors"
	"fmt"
)

// ErrInstallerCountMismatch is returned when an update supplies a different
// number of distinct installer URLs than the manifest already carries.
// Partial updates that change installer cardinality are not supported.
var ErrInstallerCountMismatch = errors.New("installer URL count does not match the existing manifest")

// DetectedInstaller is the ephemeral record produced by the installer
// sniffer for one (possibly nested) installer found in a downloaded file.
type DetectedInstaller struct {
	InstallerURL      string
	Architecture      string
	InstallerType     string
	Sha256            string
	SignatureSha256   *string
	ProductCode       *string
	PackageFamilyName *string

	// URLArchitecture is the architecture hinted by tokens in the URL, used
	// only for mismatch warnings. Empty when the URL carries no hint.
	URLArchitecture string

	// NestedArchitectures lists architectures found inside an archive that
	// bundles installers for several architectures.
	NestedArchitectures []string
}

// ArchitectureWarning flags a disagreement between the architecture hinted
// by an installer URL and the one detected from the binary.
type ArchitectureWarning struct {
	InstallerURL       string
	URLArchitecture    string
	BinaryArchitecture string
}

func (w ArchitectureWarning) String() string {
	return fmt.Sprintf("%s: URL suggests %s but binary is %s", w.InstallerURL, w.URLArchitecture, w.BinaryArchitecture)
}

// MatchResult carries the outcome of reconciling detected installers
// against an existing installer list. When OK is false the caller must not
// apply any part of the result: Installers is only populated on success.
type MatchResult struct {
	OK bool

	// Installers is the merged list, in the existing manifest's order.
	Installers []Installer

	// Unmatched holds candidates whose URL matched no existing entry, or
	// whose (architecture, type) matched none at their URL.
	Unmatched []DetectedInstaller

	// MultipleMatched holds candidates that matched more than one existing
	// entry and cannot be merged automatically.
	MultipleMatched []DetectedInstaller

	// UnaddressedURLs lists existing installer URLs no candidate merged
	// into.
	UnaddressedURLs []string

	// ArchitectureWarnings reports URL/binary architecture disagreements
	// for display. Warnings do not fail the match.
	ArchitectureWarnings []ArchitectureWarning
}

// MatchInstallers reconciles detected installer metadata against the
// existing installer entries of a manifest being updated.
//
// Identity is resolved in two steps: a candidate first narrows to the
// existing entries with exactly its URL, then to those whose architecture
// equals the detected one and whose installer type is either unset or equal
// to the detected type. Zero survivors partition the candidate as
// unmatched; more than one as multipleMatched; exactly one merges.
//
// The existing list is never mutated. On success the returned Installers
// slice is a fresh list the caller swaps in; on failure (OK false or a
// cardinality error) no safe changes were computed and the caller keeps the
// manifest as-is.
func MatchInstallers(existing []Installer, detected []DetectedInstaller) (MatchResult, error) {
	existingURLs := distinctURLs(existing)
	newURLs := make(map[string]struct{})
	for _, d := range detected {
		newURLs[d.InstallerURL] = struct{}{}
	}
	if len(existingURLs) != len(newURLs) {
		return MatchResult{}, fmt.Errorf("%w: manifest has %d distinct URLs, update supplies %d",
			ErrInstallerCountMismatch, len(existingURLs), len(newURLs))
	}

	merged := make([]Installer, len(existing))
	for i, inst := range existing {
		merged[i] = inst.Clone()
	}
	addressed := make([]bool, len(existing))

	var result MatchResult
	for _, cand := range detected {
		if cand.URLArchitecture != "" && cand.URLArchitecture != cand.Architecture {
			result.ArchitectureWarnings = append(result.ArchitectureWarnings, ArchitectureWarning{
				InstallerURL:       cand.InstallerURL,
				URLArchitecture:    cand.URLArchitecture,
				BinaryArchitecture: cand.Architecture,
			})
		}

		matches := matchCandidate(existing, cand)
		switch len(matches) {
		case 0:
			result.Unmatched = append(result.Unmatched, cand)
		case 1:
			idx := matches[0]
			mergeDetected(&merged[idx], cand)
			addressed[idx] = true
		default:
			result.MultipleMatched = append(result.MultipleMatched, cand)
		}
	}

	seen := make(map[string]struct{})
	for i, inst := range existing {
		if !addressed[i] {
			if _, dup := seen[inst.InstallerURL]; !dup {
				seen[inst.InstallerURL] = struct{}{}
				result.UnaddressedURLs = append(result.UnaddressedURLs, inst.InstallerURL)
			}
		}
	}

	result.OK = len(result.Unmatched) == 0 && len(result.MultipleMatched) == 0 && len(result.UnaddressedURLs) == 0
	if result.OK {
		result.Installers = merged
	}
	return result, nil
}

// matchCandidate returns the indices of existing installers the candidate
// identifies with.
func matchCandidate(existing []Installer, cand DetectedInstaller) []int {
	var sameURL []int
	for i := range existing {
		if existing[i].InstallerURL == cand.InstallerURL {
			sameURL = append(sameURL, i)
		}
	}
	if len(sameURL) <= 1 {
		return sameURL
	}

	// Several entries share the URL (nested multi-architecture packages):
	// narrow by architecture, then by installer type. An entry with no
	// declared type is compatible with any detected type.
	var narrowed []int
	for _, i := range sameURL {
		if existing[i].Architecture == cand.Architecture {
			narrowed = append(narrowed, i)
		}
	}
	if len(narrowed) <= 1 {
		return narrowed
	}
	var byType []int
	for _, i := range narrowed {
		t := existing[i].InstallerType
		if t == nil || *t == cand.InstallerType {
			byType = append(byType, i)
		}
	}
	return byType
}

// mergeDetected overwrites detected metadata on a matched installer while
// leaving user-authored fields untouched.
func mergeDetected(inst *Installer, cand DetectedInstaller) {
	inst.InstallerSha256 = cand.Sha256
	if cand.Architecture != "" {
		inst.Architecture = cand.Architecture
	}
	if inst.InstallerType == nil && cand.InstallerType != "" {
		t := cand.InstallerType
		inst.InstallerType = &t
	}
	if cand.SignatureSha256 != nil {
		inst.SignatureSha256 = clonePtr(cand.SignatureSha256)
	}
	if cand.ProductCode != nil {
		inst.ProductCode = clonePtr(cand.ProductCode)
	}
	if cand.PackageFamilyName != nil {
		inst.PackageFamilyName = clonePtr(cand.PackageFamilyName)
	}
}

func distinctURLs(installers []Installer) map[string]struct{} {
	urls := make(map[string]struct{})
	for _, inst := range installers {
		urls[inst.InstallerURL] = struct{}{}
	}
	return urls
}

// VerifyInstallerHashChanged reports whether the new installer list carries
// at least one SHA-256 absent from the old list. Used to block submitting
// an update that produced no detectable content change.
func VerifyInstallerHashChanged(old, new []Installer) bool {
	oldHashes := make(map[string]struct{})
	for _, inst := range old {
		oldHashes[inst.InstallerSha256] = struct{}{}
	}
	for _, inst := range new {
		if _, ok := oldHashes[inst.InstallerSha256]; !ok {
			return true
		}
	}
	return false
}
