package annotate

import "fmt"

// VariantType is the functional class of a variant relative to a transcript.
type VariantType uint8

// Variant types. String values are the tokens written to output files.
const (
	Intergenic VariantType = iota
	Downstream
	Upstream
	Intronic
	NcRNAExonic
	NcRNAIntronic
	Splicing
	StopLoss
	StopGain
	Synonymous
	Nonsynonymous
	NonFSSubstitution
	NonFSInsertion
	FSSubstitution
	FSDeletion
	FSInsertion
	NonFSDeletion
	Error
	UTR5
	UTR3
	UTR53
)

var variantTypeNames = [...]string{
	Intergenic:        "INTERGENIC",
	Downstream:        "DOWNSTREAM",
	Upstream:          "UPSTREAM",
	Intronic:          "INTRONIC",
	NcRNAExonic:       "ncRNA_EXONIC",
	NcRNAIntronic:     "ncRNA_INTRONIC",
	Splicing:          "SPLICING",
	StopLoss:          "STOPLOSS",
	StopGain:          "STOPGAIN",
	Synonymous:        "SYNONYMOUS",
	Nonsynonymous:     "NONSYNONYMOUS",
	NonFSSubstitution: "NON_FS_SUBSTITUTION",
	NonFSInsertion:    "NON_FS_INSERTION",
	FSSubstitution:    "FS_SUBSTITUTION",
	FSDeletion:        "FS_DELETION",
	FSInsertion:       "FS_INSERTION",
	NonFSDeletion:     "NON_FS_DELETION",
	Error:             "ERROR",
	UTR5:              "UTR5",
	UTR3:              "UTR3",
	UTR53:             "UTR53",
}

func (v VariantType) String() string {
	if int(v) < len(variantTypeNames) {
		return variantTypeNames[v]
	}
	return fmt.Sprintf("VariantType(%d)", uint8(v))
}

// ParseVariantType converts an output token back into a VariantType.
func ParseVariantType(s string) (VariantType, error) {
	for i, name := range variantTypeNames {
		if name == s {
			return VariantType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown variant type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (v VariantType) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *VariantType) UnmarshalText(b []byte) error {
	parsed, err := ParseVariantType(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// IsExonic reports whether the type belongs to the exonic/splicing tier.
func (v VariantType) IsExonic() bool {
	switch v {
	case Splicing, StopLoss, StopGain, Nonsynonymous,
		NonFSSubstitution, NonFSInsertion, NonFSDeletion,
		FSSubstitution, FSInsertion, FSDeletion:
		return true
	}
	return false
}

// Impact levels, coarse severity buckets for reporting.
const (
	ImpactHigh     = "HIGH"
	ImpactModerate = "MODERATE"
	ImpactLow      = "LOW"
	ImpactModifier = "MODIFIER"
)

// Impact returns the coarse impact level of the variant type.
func (v VariantType) Impact() string {
	switch v {
	case StopGain, StopLoss, FSInsertion, FSDeletion, FSSubstitution, Splicing:
		return ImpactHigh
	case Nonsynonymous, NonFSInsertion, NonFSDeletion, NonFSSubstitution:
		return ImpactModerate
	case Synonymous, UTR5, UTR3, UTR53:
		return ImpactLow
	}
	return ImpactModifier
}
