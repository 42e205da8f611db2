package sniff

import (
	"bytes"
	"debug/pe"
	"io"
)

// PE machine types we recognize.
const (
	machineI386  = 0x014c
	machineAMD64 = 0x8664
	machineARM   = 0x01c0
	machineARMNT = 0x01c4
	machineARM64 = 0xaa64
)

func archFromMachine(machine uint16) string {
	switch machine {
	case machineI386:
		return ArchX86
	case machineAMD64:
		return ArchX64
	case machineARM, machineARMNT:
		return ArchArm
	case machineARM64:
		return ArchArm64
	default:
		return ArchNeutral
	}
}

// peArch reads the architecture from a PE image.
func peArch(r io.ReaderAt) (string, error) {
	f, err := pe.NewFile(r)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	return archFromMachine(f.FileHeader.Machine), nil
}

// Signatures embedded by the common installer frameworks. A scan over the
// image payload is how the frameworks themselves advertise their presence;
// there is no header field for it.
var (
	sigInno     = []byte("Inno Setup")
	sigNullsoft = []byte("Nullsoft.NSIS")
	sigNullsoft2 = []byte("NullsoftInst")
	sigBurn     = []byte(".wixburn")
)

// peInstallerType classifies an exe as inno, nullsoft, burn, or plain exe
// by scanning the image for framework signatures.
func peInstallerType(data []byte) string {
	switch {
	case bytes.Contains(data, sigBurn):
		return TypeBurn
	case bytes.Contains(data, sigInno):
		return TypeInno
	case bytes.Contains(data, sigNullsoft), bytes.Contains(data, sigNullsoft2):
		return TypeNullsoft
	default:
		return TypeExe
	}
}
