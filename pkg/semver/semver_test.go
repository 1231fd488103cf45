package semver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	v, err := Parse("v1.2.3-rc.1+build.5")
	require.NoError(t, err)
	require.Equal(t, 1, v.Major)
	require.Equal(t, 2, v.Minor)
	require.Equal(t, 3, v.Patch)
	require.Equal(t, "rc.1", v.Prerelease)
	require.Equal(t, "build.5", v.Build)
	require.Equal(t, "1.2.3-rc.1+build.5", v.String())

	_, err = Parse("1.2")
	require.Error(t, err)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.2.0", "1.1.9", 1},
		{"2.0.0", "1.9.9", 1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0", "1.0.0-alpha", 1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			require.Equal(t, tt.want, MustParse(tt.a).Compare(MustParse(tt.b)))
		})
	}
}

func TestOrdering(t *testing.T) {
	require.True(t, MustParse("1.0.0-rc.1").LessThan(MustParse("1.0.0")))
	require.True(t, MustParse("1.1.0").GreaterThan(MustParse("1.0.9")))
	require.False(t, MustParse("1.0.0").GreaterThan(MustParse("1.0.0")))
}

func TestCompatible(t *testing.T) {
	require.True(t, Compatible(MustParse("1.0.0"), MustParse("1.4.2")))
	require.False(t, Compatible(MustParse("1.0.0"), MustParse("2.0.0")))
}

func TestMustParsePanics(t *testing.T) {
	require.Panics(t, func() { MustParse("nope") })
}
