package updater

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	in := "x = [\n" +
		"{\n id: 'a',\n nameSIMBAD: 'Rigel',\n ra: 78.6,\n dec: '05 14 32'\n},\n" +
		"{\n id: 'b',\n ra: 1,\n ra: 2\n},\n" +
		"{\n nameSIMBAD: 'Vega'\n}\n" +
		"]"
	rep, err := Check(in, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Records)
	assert.Equal(t, 2, rep.Named)
	assert.Equal(t, []Issue{{Index: 2, Label: "b"}}, rep.Unnamed)
	assert.Equal(t, []Issue{{Index: 2, Label: "b", Detail: "repeated keys: ra"}}, rep.Duplicates)
	require.Len(t, rep.BadCoords, 1)
	assert.Equal(t, 1, rep.BadCoords[0].Index)
	assert.Equal(t, "Rigel", rep.BadCoords[0].Label)
	assert.False(t, rep.Canonical)
	assert.False(t, rep.OK())
}

func TestCheck_CanonicalDocument(t *testing.T) {
	rep, err := Check(wantDoc, Options{})
	require.NoError(t, err)
	assert.True(t, rep.Canonical)
	assert.True(t, rep.OK())
	assert.Equal(t, 2, rep.Named)
}

func TestCheck_Malformed(t *testing.T) {
	_, err := Check("x = [\n{\n oops\n}\n]", Options{})
	assert.Error(t, err)
}

func TestCheck_EmptyNameCountsAsUnnamed(t *testing.T) {
	rep, err := Check("x = [\n{\n id: 'c',\n nameSIMBAD: ''\n}\n]", Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Named)
	assert.Equal(t, []Issue{{Index: 1, Label: "c"}}, rep.Unnamed)
}
