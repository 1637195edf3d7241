package updater

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/macro2718/starcat/internal/catalog"
	"github.com/macro2718/starcat/internal/coord"
	"github.com/macro2718/starcat/internal/lookup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sampleDoc = "// Bright stars.\n" +
	"export const BASE_STAR_DATA = [\n" +
	"    {\n" +
	"        id: 'sirius',\n" +
	"        nameSIMBAD: 'Sirius',\n" +
	"        ra: 0,\n" +
	"        dec: 0,\n" +
	"        magnitude: 9.99,\n" +
	"        info: 'Dog star: the brightest {night} star',\n" +
	"        featured: true\n" +
	"    },\n" +
	"    {\n" +
	"        id: 'ghost',\n" +
	"        nameSIMBAD: \"Ghost\",\n" +
	"        ra: 1.5,\n" +
	"        dec: 2.5\n" +
	"    },\n" +
	"    {\n" +
	"        id: 'plain',\n" +
	"        ra: 3\n" +
	"    }\n" +
	"];\n"

const wantDoc = "// Bright stars.\n" +
	"export const BASE_STAR_DATA = [" +
	"    {\n" +
	"        id: 'sirius',\n" +
	"        nameSIMBAD: 'Sirius',\n" +
	"        ra: 101.287154,\n" +
	"        dec: -16.716117,\n" +
	"        magnitude: -1.50,\n" +
	"        info: 'Dog star: the brightest {night} star',\n" +
	"        featured: true,\n" +
	"        sp_type: 'A1V'\n" +
	"    },\n" +
	"\n" +
	"    {\n" +
	"        id: 'ghost',\n" +
	"        nameSIMBAD: \"Ghost\",\n" +
	"        ra: 1.5,\n" +
	"        dec: 2.5\n" +
	"    },\n" +
	"\n" +
	"    {\n" +
	"        id: 'plain',\n" +
	"        ra: 3\n" +
	"    }\n" +
	"];\n"

func sampleTable() *lookup.Table {
	return lookup.NewTable(map[string]lookup.TableEntry{
		"Sirius": {RA: "06 45 08.917", Dec: "−16 42 58.02", Magnitude: "-1.5", SpectralType: "A1V"},
		"Rigel":  {RA: "05 14 32.27", Dec: "-08 12 05.9", Magnitude: "0.13", SpectralType: "B8Ia"},
	}, lookup.AllFields)
}

func TestUpdateDocument(t *testing.T) {
	res, err := UpdateDocument(context.Background(), sampleDoc, sampleTable(), Options{})
	require.NoError(t, err)
	if diff := cmp.Diff(wantDoc, res.Text); diff != "" {
		t.Fatalf("UpdateDocument mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Ghost"}, res.Unresolved)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Skipped)
}

func TestUpdateDocument_Idempotent(t *testing.T) {
	first, err := UpdateDocument(context.Background(), sampleDoc, sampleTable(), Options{})
	require.NoError(t, err)
	second, err := UpdateDocument(context.Background(), first.Text, sampleTable(), Options{})
	require.NoError(t, err)
	if diff := cmp.Diff(first.Text, second.Text); diff != "" {
		t.Fatalf("second run changed the document (-first +second):\n%s", diff)
	}
}

func TestUpdateDocument_IdempotentWhenLookupReturnsEncodedValues(t *testing.T) {
	lk := lookup.NewTable(map[string]lookup.TableEntry{
		"Sirius": {RA: "101.287154", Dec: "-16.716117", Magnitude: "-1.50", SpectralType: "A1V"},
	}, lookup.AllFields)
	res, err := UpdateDocument(context.Background(), wantDoc, lk, Options{})
	require.NoError(t, err)
	assert.Equal(t, wantDoc, res.Text)
}

func TestUpdateDocument_NoNamedRecordsOnlyReencodes(t *testing.T) {
	in := "const X = [\n  {\n    id: 'a',\n    ra: 1\n  },\n  {\n    id: 'b'\n  }\n];"
	never := lookup.Func(func(context.Context, string) (lookup.Result, error) {
		t.Fatalf("lookup must not be called")
		return lookup.Result{}, nil
	})
	res, err := UpdateDocument(context.Background(), in, never, Options{})
	require.NoError(t, err)

	want := "const X = [" +
		"    {\n        id: 'a',\n        ra: 1\n    },\n\n" +
		"    {\n        id: 'b'\n    }\n];"
	assert.Equal(t, want, res.Text)
	assert.Empty(t, res.Unresolved)
	assert.Equal(t, 2, res.Skipped)
}

func TestUpdateDocument_PreservesNameOrder(t *testing.T) {
	in := "x = [\n" +
		"{ nameSIMBAD: 'Rigel' },\n{ nameSIMBAD: 'Ghost' },\n{ id: 'q' },\n{ nameSIMBAD: 'Sirius' },\n{ nameSIMBAD: 'Rigel' }\n]"
	res, err := UpdateDocument(context.Background(), in, sampleTable(), Options{})
	require.NoError(t, err)

	_, records, err := catalog.Parse(res.Text)
	require.NoError(t, err)
	var names []string
	for _, r := range records {
		if v, ok := r.Get("nameSIMBAD"); ok {
			names = append(names, StarName(v))
		}
	}
	assert.Equal(t, []string{"Rigel", "Ghost", "Sirius", "Rigel"}, names)
}

func TestUpdateDocument_UnresolvedListedOnce(t *testing.T) {
	in := "x = [\n{ nameSIMBAD: 'Ghost' },\n{ nameSIMBAD: 'Ghost' },\n{ nameSIMBAD: 'Broken' },\n{ nameSIMBAD: 'Rigel' }\n]"
	boom := errors.New("connection refused")
	table := sampleTable()
	lk := lookup.Func(func(ctx context.Context, name string) (lookup.Result, error) {
		if name == "Broken" {
			return lookup.Result{}, boom
		}
		return table.Lookup(ctx, name)
	})
	res, err := UpdateDocument(context.Background(), in, lk, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ghost", "Broken"}, res.Unresolved)
	assert.Equal(t, 1, res.Updated)
	assert.Contains(t, res.Text, "    {\n        nameSIMBAD: 'Ghost'\n    },")
}

func TestUpdateDocument_EmptyNameIsSkipped(t *testing.T) {
	var calls int
	lk := lookup.Func(func(context.Context, string) (lookup.Result, error) {
		calls++
		return lookup.Result{}, lookup.ErrNotFound
	})
	in := "x = [\n{\n nameSIMBAD: '',\n id: 'a'\n},\n{\n nameSIMBAD: \"  \"\n}\n]"
	res, err := UpdateDocument(context.Background(), in, lk, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Unresolved)
	assert.Equal(t, 2, res.Skipped)
	assert.Zero(t, calls)
	assert.Contains(t, res.Text, "nameSIMBAD: '',\n        id: 'a'")
}

func TestUpdateDocument_MissingPositionIsUnresolved(t *testing.T) {
	lk := lookup.Func(func(context.Context, string) (lookup.Result, error) {
		return lookup.Result{RA: "10 00 00", Magnitude: "1.0"}, nil
	})
	in := "x = [\n{\n nameSIMBAD: 'Half',\n magnitude: 5.00\n}\n]"
	res, err := UpdateDocument(context.Background(), in, lk, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Half"}, res.Unresolved)
	assert.Contains(t, res.Text, "magnitude: 5.00")
}

func TestUpdateDocument_MagnitudeAndSpectralType(t *testing.T) {
	cases := []struct {
		name     string
		result   lookup.Result
		wantMag  string
		wantSp   string
		wantSpOK bool
	}{
		{"negative magnitude", lookup.Result{RA: "1", Dec: "2", Magnitude: "-1.5"}, "-1.50", "", false},
		{"absent magnitude", lookup.Result{RA: "1", Dec: "2"}, "3.33", "", false},
		{"non-numeric magnitude", lookup.Result{RA: "1", Dec: "2", Magnitude: "~"}, "3.33", "", false},
		{"nan magnitude", lookup.Result{RA: "1", Dec: "2", Magnitude: "NaN"}, "3.33", "", false},
		{"rounded magnitude", lookup.Result{RA: "1", Dec: "2", Magnitude: "0.126"}, "0.13", "", false},
		{"quoted spectral type", lookup.Result{RA: "1", Dec: "2", SpectralType: "K0III'"}, "3.33", `'K0III\''`, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lk := lookup.Func(func(context.Context, string) (lookup.Result, error) { return c.result, nil })
			in := "x = [\n{\n nameSIMBAD: 'Star',\n magnitude: 3.33\n}\n]"
			res, err := UpdateDocument(context.Background(), in, lk, Options{})
			require.NoError(t, err)

			_, records, err := catalog.Parse(res.Text)
			require.NoError(t, err)
			r := records[0]
			mag, _ := r.Get("magnitude")
			assert.Equal(t, c.wantMag, mag)
			sp, ok := r.Get("sp_type")
			assert.Equal(t, c.wantSpOK, ok)
			assert.Equal(t, c.wantSp, sp)
			ra, _ := r.Get("ra")
			assert.Equal(t, "1.000000", ra)
		})
	}
}

func TestUpdateDocument_CustomFieldNamesAndStyle(t *testing.T) {
	lk := lookup.Func(func(_ context.Context, name string) (lookup.Result, error) {
		assert.Equal(t, "Vega", name)
		return lookup.Result{RA: "18 36 56.3", Dec: "+38 47 01.3", Magnitude: "0.03", SpectralType: "A0Va"}, nil
	})
	in := "x = [\n{\n  simbad: 'Vega',\n  alpha: 0,\n  delta: 0\n}\n]"
	res, err := UpdateDocument(context.Background(), in, lk, Options{
		Fields: FieldNames{Name: "simbad", RA: "alpha", Dec: "delta"},
		Style:  &catalog.Style{Indent: "  "},
	})
	require.NoError(t, err)
	want := "x = [  {\n      simbad: 'Vega',\n      alpha: 279.234583,\n      delta: 38.783694\n  }\n]"
	assert.Equal(t, want, res.Text)
}

func TestUpdateDocument_MalformedRecordIsFatal(t *testing.T) {
	in := "x = [\n{ nameSIMBAD: 'Rigel' },\n{\n    nameSIMBAD: 'Sirius',\n    broken line\n}\n]"
	_, err := UpdateDocument(context.Background(), in, sampleTable(), Options{})
	var fe *catalog.FormatError
	require.True(t, errors.As(err, &fe), "expected *catalog.FormatError, got %v", err)
}

func TestUpdateDocument_StructuralErrorIsFatal(t *testing.T) {
	for _, in := range []string{"no array here", "x = [\n{ nameSIMBAD: 'Rigel' \n]"} {
		_, err := UpdateDocument(context.Background(), in, sampleTable(), Options{})
		var se *catalog.StructuralError
		assert.Truef(t, errors.As(err, &se), "input %q: expected *catalog.StructuralError, got %v", in, err)
	}
}

func TestUpdateDocument_BadLookupAngleIsFatal(t *testing.T) {
	lk := lookup.Func(func(context.Context, string) (lookup.Result, error) {
		return lookup.Result{RA: "10 30", Dec: "5"}, nil
	})
	_, err := UpdateDocument(context.Background(), "x = [{ nameSIMBAD: 'Odd' }]", lk, Options{})
	var fe *coord.FormatError
	require.True(t, errors.As(err, &fe), "expected *coord.FormatError, got %v", err)
	assert.Contains(t, err.Error(), `"Odd"`)
}

func TestUpdateDocument_NonFiniteAngleIsFatal(t *testing.T) {
	for _, c := range []lookup.Result{
		{RA: "NaN", Dec: "Inf"},
		{RA: "10", Dec: "+Inf"},
		{RA: "1 2 NaN", Dec: "5"},
	} {
		lk := lookup.Func(func(context.Context, string) (lookup.Result, error) { return c, nil })
		res, err := UpdateDocument(context.Background(), "x = [{ nameSIMBAD: 'A' }]", lk, Options{})
		var fe *coord.FormatError
		require.True(t, errors.As(err, &fe), "%+v: expected *coord.FormatError, got %v", c, err)
		assert.Empty(t, res.Text)
	}
}

func TestUpdateDocument_CancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lk := lookup.Func(func(ctx context.Context, _ string) (lookup.Result, error) {
		cancel()
		return lookup.Result{}, ctx.Err()
	})
	_, err := UpdateDocument(ctx, "x = [{ nameSIMBAD: 'A' }, { nameSIMBAD: 'B' }]", lk, Options{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStarName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"'Rigel'", "Rigel"},
		{`"Betelgeuse"`, "Betelgeuse"},
		{"  'alf CMa'  ", "alf CMa"},
		{"Vega", "Vega"},
		{`'"mixed"'`, "mixed"},
		{"''", ""},
		{`"  "`, ""},
	}
	for _, c := range cases {
		if got := StarName(c.in); got != c.want {
			t.Fatalf("StarName(%q)=%q want %q", c.in, got, c.want)
		}
	}
}
