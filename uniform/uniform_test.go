package uniform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsContainReservedEntries(t *testing.T) {
	tbl := Defaults(640, 360)

	for _, name := range []string{Time, Resolution, Pointer, InputImage, BackgroundImage} {
		_, ok := tbl.Get(name)
		assert.True(t, ok, "missing reserved uniform %q", name)
	}

	res, _ := tbl.Get(Resolution)
	assert.Equal(t, KindVec2, res.Kind)
	assert.Equal(t, float32(640), res.Data[0])
	assert.Equal(t, float32(360), res.Data[1])
}

func TestCloneIsIndependent(t *testing.T) {
	a := Defaults(100, 100)
	b := a.Clone()

	b.Set(Time, Scalar(5))
	b.Set("uSpeed", Scalar(1))

	av, _ := a.Get(Time)
	assert.Equal(t, float32(0), av.Data[0])
	_, ok := a.Get("uSpeed")
	assert.False(t, ok)
}

func TestConvertScalar(t *testing.T) {
	v, err := Convert("1f", 0.42)
	require.NoError(t, err)
	assert.Equal(t, KindScalar, v.Kind)
	assert.InDelta(t, 0.42, float64(v.Data[0]), 1e-6)
}

func TestConvertVec2ArrayForm(t *testing.T) {
	v, err := Convert("2f", []any{0.5, 0.25})
	require.NoError(t, err)
	assert.Equal(t, KindVec2, v.Kind)
	assert.Equal(t, float32(0.5), v.Data[0])
	assert.Equal(t, float32(0.25), v.Data[1])
}

func TestConvertVec2ObjectForm(t *testing.T) {
	v, err := Convert("2f", map[string]any{"x": 1.0, "y": 2.0})
	require.NoError(t, err)
	assert.Equal(t, KindVec2, v.Kind)
	assert.Equal(t, float32(1), v.Data[0])
	assert.Equal(t, float32(2), v.Data[1])
}

func TestConvertUnknownTypeIsOpaque(t *testing.T) {
	raw := []any{1.0, 2.0, 3.0, 4.0, 5.0}
	v, err := Convert("mat2", raw)
	assert.Error(t, err)
	assert.Equal(t, KindOpaque, v.Kind)
	assert.Equal(t, raw, v.Raw)
}

func TestMergeDeclaredKeepsPipelineManagedNames(t *testing.T) {
	tbl := Defaults(10, 10)
	tbl.MergeDeclared("solid", map[string]Declaration{
		"uSpeed":   {Type: "1f", Value: 0.42},
		Time:       {Type: "1f", Value: 99.0},
		Resolution: {Type: "2f", Value: []any{1.0, 1.0}},
		Pointer:    {Type: "2f", Value: []any{9.0, 9.0}},
		InputImage: {Type: "1f", Value: 3.0},
	})

	speed, ok := tbl.Get("uSpeed")
	require.True(t, ok)
	assert.InDelta(t, 0.42, float64(speed.Data[0]), 1e-6)

	tv, _ := tbl.Get(Time)
	assert.Equal(t, float32(0), tv.Data[0], "time must not be overwritten")
	rv, _ := tbl.Get(Resolution)
	assert.Equal(t, float32(10), rv.Data[0], "resolution must not be overwritten")
	pv, _ := tbl.Get(Pointer)
	assert.Equal(t, float32(0), pv.Data[0], "pointer must not be overwritten")
	iv, _ := tbl.Get(InputImage)
	assert.Equal(t, KindTexture, iv.Kind, "inputImage must not be overwritten")
}

func TestMergeDeclaredAllowsBackgroundImageDeclaration(t *testing.T) {
	// backgroundImage is reserved but not pipeline-managed at merge
	// time; the compositor rebinds it per frame for layers that use it.
	tbl := Defaults(10, 10)
	tbl.MergeDeclared("blur", map[string]Declaration{
		BackgroundImage: {Type: "1f", Value: 1.0},
	})
	v, _ := tbl.Get(BackgroundImage)
	assert.Equal(t, KindScalar, v.Kind)
}
