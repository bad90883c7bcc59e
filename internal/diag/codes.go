package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Input decoding.
	HirInfo            Code = 1000
	HirMalformed       Code = 1001
	HirUnknownType     Code = 1002
	HirUnknownVariable Code = 1003
	HirDuplicateFunc   Code = 1005

	// IO.
	IOLoadFileError  Code = 4001
	IOCacheReadError Code = 4002
	IOCacheWriteErr  Code = 4003

	// Project configuration.
	PrjManifestInvalid Code = 5001

	// Lowering: broken invariants of the input or of the lowerer itself.
	MirInternal           Code = 9000
	MirLabelNotFound      Code = 9001
	MirScopeUnderflow     Code = 9002
	MirScopeMismatch      Code = 9003
	MirSealedBlock        Code = 9004
	MirCompoundAssignDrop Code = 9005
	MirBadPlace           Code = 9006
	MirUnknownBinding     Code = 9007

	// Validation of the produced graph.
	MirValidate Code = 9100
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	HirInfo:               "Input information",
	HirMalformed:          "Malformed input",
	HirUnknownType:        "Unknown type",
	HirUnknownVariable:    "Unknown variable",
	HirDuplicateFunc:      "Duplicate function",
	IOLoadFileError:       "I/O load file error",
	IOCacheReadError:      "Cache read error",
	IOCacheWriteErr:       "Cache write error",
	PrjManifestInvalid:    "Invalid mirbuild.toml",
	MirInternal:           "Internal lowering error",
	MirLabelNotFound:      "Loop label not found",
	MirScopeUnderflow:     "Scope exit past the scope stack",
	MirScopeMismatch:      "Scope popped out of order",
	MirSealedBlock:        "Write to a terminated block",
	MirCompoundAssignDrop: "Compound assignment to a type that needs drop",
	MirBadPlace:           "Expression is not a place",
	MirUnknownBinding:     "Reference to an undeclared binding",
	MirValidate:           "Invalid MIR",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("HIR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("MIR%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
