package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSplitExt(t *testing.T) {
	tests := []struct {
		name string
		base string
		ext  string
	}{
		{"rail_image.jpg", "rail_image", ".jpg"},
		{"rail.image.v2.jpg", "rail.image.v2", ".jpg"},
		{"noextension", "noextension", ""},
		{".hidden", "", ".hidden"},
	}

	for _, tt := range tests {
		base, ext := SplitExt(tt.name)
		require.Equal(t, tt.base, base, tt.name)
		require.Equal(t, tt.ext, ext, tt.name)
	}
}

func TestSafeFilename_PreservesRealExtension(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 30, 45, 0, time.UTC)

	name := SafeFilename("rail.image.v2.JPG", now)
	require.True(t, strings.HasPrefix(name, "20260825_123045_"))
	require.True(t, strings.HasSuffix(name, "_rail.image.v2.jpg"))
}

func TestSafeFilename_StripsPathSegments(t *testing.T) {
	now := time.Now()

	name := SafeFilename("../../etc/passwd.png", now)
	require.NotContains(t, name, "/")
	require.NotContains(t, name, "..")
	require.True(t, strings.HasSuffix(name, "_passwd.png"))

	name = SafeFilename(`C:\photos\track one.jpg`, now)
	require.NotContains(t, name, `\`)
	require.True(t, strings.HasSuffix(name, "_track_one.jpg"))
}

func TestSafeFilename_Unique(t *testing.T) {
	now := time.Now()
	first := SafeFilename("rail.jpg", now)
	second := SafeFilename("rail.jpg", now)
	require.NotEqual(t, first, second)
}

func TestAnnotatedFilename(t *testing.T) {
	require.Equal(t, "a.b_annotated.jpg", AnnotatedFilename("a.b.jpg"))
	require.Equal(t, "shot_annotated.png", AnnotatedFilename("shot.png"))
}
