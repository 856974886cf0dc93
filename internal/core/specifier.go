package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// LibrarySpecifier is a maven-style coordinate identifying one dependency
// artifact: group:artifact:version[:classifier][@extension]. It is comparable
// and used as a map key to dedupe and override libraries.
type LibrarySpecifier struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Extension  string
}

// ParseLibrarySpecifier parses "group:artifact:version[:classifier][@ext]".
// The extension defaults to "jar".
func ParseLibrarySpecifier(s string) (LibrarySpecifier, error) {
	ext := "jar"
	if at := strings.LastIndex(s, "@"); at >= 0 {
		ext = s[at+1:]
		s = s[:at]
		if ext == "" {
			return LibrarySpecifier{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid library specifier: empty extension")
		}
	}
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return LibrarySpecifier{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid library specifier: too few parts in %q", s))
	}
	spec := LibrarySpecifier{
		Group:     parts[0],
		Artifact:  parts[1],
		Version:   parts[2],
		Extension: ext,
	}
	if len(parts) == 4 {
		spec.Classifier = parts[3]
	}
	return spec, nil
}

func (s LibrarySpecifier) String() string {
	out := fmt.Sprintf("%s:%s:%s", s.Group, s.Artifact, s.Version)
	if s.Classifier != "" {
		out += ":" + s.Classifier
	}
	if s.Extension != "jar" {
		out += "@" + s.Extension
	}
	return out
}

// FilePath derives the repository-relative path of the artifact. Forward
// slashes are used because the result doubles as a URL path; callers convert
// to the platform separator when joining with a local directory.
//
// com.foo.bar:artifact:version@zip gives com/foo/bar/artifact/version/artifact-version.zip.
func (s LibrarySpecifier) FilePath() string {
	name := s.Artifact + "-" + s.Version
	if s.Classifier != "" {
		name += "-" + s.Classifier
	}
	name += "." + s.Extension
	segments := append(strings.Split(s.Group, "."), s.Artifact, s.Version, name)
	return strings.Join(segments, "/")
}
