package annotate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantType_StringAndParse(t *testing.T) {
	for i := range variantTypeNames {
		vt := VariantType(i)
		parsed, err := ParseVariantType(vt.String())
		require.NoError(t, err)
		assert.Equal(t, vt, parsed)
	}

	assert.Equal(t, "ncRNA_EXONIC", NcRNAExonic.String())
	assert.Equal(t, "NON_FS_DELETION", NonFSDeletion.String())
	assert.Equal(t, "VariantType(99)", VariantType(99).String())

	_, err := ParseVariantType("missense_variant")
	assert.Error(t, err)
}

func TestVariantType_JSON(t *testing.T) {
	b, err := json.Marshal(map[string]VariantType{"type": FSInsertion})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FS_INSERTION"}`, string(b))

	var got struct{ Type VariantType }
	require.NoError(t, json.Unmarshal([]byte(`{"Type":"UTR53"}`), &got))
	assert.Equal(t, UTR53, got.Type)
	assert.Error(t, json.Unmarshal([]byte(`{"Type":"bogus"}`), &got))
}

func TestVariantType_Impact(t *testing.T) {
	tests := []struct {
		vt   VariantType
		want string
	}{
		{StopGain, ImpactHigh},
		{FSDeletion, ImpactHigh},
		{Splicing, ImpactHigh},
		{Nonsynonymous, ImpactModerate},
		{NonFSInsertion, ImpactModerate},
		{Synonymous, ImpactLow},
		{UTR53, ImpactLow},
		{Intronic, ImpactModifier},
		{Intergenic, ImpactModifier},
		{Error, ImpactModifier},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.vt.Impact(), tt.vt.String())
	}
}

func TestVariantType_IsExonic(t *testing.T) {
	for _, vt := range []VariantType{Synonymous, UTR5, UTR3, Intronic, NcRNAExonic, Upstream, Intergenic, Error} {
		assert.False(t, vt.IsExonic(), vt.String())
	}
}
