package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLibrarySpecifier(t *testing.T) {
	tests := []struct {
		input string
		want  LibrarySpecifier
	}{
		{
			input: "com.mojang:authlib:2.1.28",
			want:  LibrarySpecifier{Group: "com.mojang", Artifact: "authlib", Version: "2.1.28", Extension: "jar"},
		},
		{
			input: "org.lwjgl:lwjgl:3.3.1:natives-linux",
			want:  LibrarySpecifier{Group: "org.lwjgl", Artifact: "lwjgl", Version: "3.3.1", Classifier: "natives-linux", Extension: "jar"},
		},
		{
			input: "net.fabricmc:yarn:1.20.1+build.10:v2@zip",
			want:  LibrarySpecifier{Group: "net.fabricmc", Artifact: "yarn", Version: "1.20.1+build.10", Classifier: "v2", Extension: "zip"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			spec, err := ParseLibrarySpecifier(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec)
			assert.Equal(t, tt.input, spec.String())
		})
	}
}

func TestParseLibrarySpecifierErrors(t *testing.T) {
	_, err := ParseLibrarySpecifier("group:artifact")
	require.Error(t, err)

	_, err = ParseLibrarySpecifier("group:artifact:version@")
	require.Error(t, err)
}

func TestLibrarySpecifierFilePath(t *testing.T) {
	spec := LibrarySpecifier{Group: "com.mojang", Artifact: "authlib", Version: "2.2.30", Extension: "jar"}
	assert.Equal(t, "com/mojang/authlib/2.2.30/authlib-2.2.30.jar", spec.FilePath())

	spec.Classifier = "natives-windows"
	assert.Equal(t, "com/mojang/authlib/2.2.30/authlib-2.2.30-natives-windows.jar", spec.FilePath())
}
