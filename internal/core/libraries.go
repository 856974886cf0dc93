package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"portacraft/internal/policies"
	"portacraft/internal/types"
)

// LibrariesResult is the typed outcome of library resolution: the local paths
// forming the classpath, the native bundles, and the specifiers excluded by
// caller predicates.
type LibrariesResult struct {
	ClassFiles  []string
	NativeFiles []string
	Excluded    []LibrarySpecifier
}

// LibrariesResolver selects and locates every library declared across the
// version chain. Rules are evaluated against Platform and Features; Fixes
// replaces known-broken versions before the download list is populated;
// Predicates allow callers to exclude specifiers (alternate loaders ship their
// own copies of some libraries).
type LibrariesResolver struct {
	Platform       types.PlatformInfo
	Features       map[string]bool
	Fixes          policies.LibraryFixPolicy
	DefaultRepoURL string
	Predicates     []func(LibrarySpecifier) bool
}

// libraryCandidate is one entry of the intermediate, specifier-keyed map built
// before the download list is populated.
type libraryCandidate struct {
	spec       LibrarySpecifier
	descriptor any
	descPath   string
	repoURL    string
	native     bool
	fixed      bool
}

// Resolve walks the chain child-first so the root version's libraries take
// priority over inherited ones when coordinates collide.
func (r LibrariesResolver) Resolve(head *VersionNode, install types.InstallContext, dl *DownloadList, sink EventSink) (*LibrariesResult, error) {
	result := LibrariesResult{}
	seen := map[LibrarySpecifier]*libraryCandidate{}
	var ordered []*libraryCandidate

	for _, node := range head.Recurse() {
		rawLibraries, ok := node.Metadata["libraries"]
		if !ok || rawLibraries == nil {
			continue
		}
		libraries, err := asList(rawLibraries, "metadata: /libraries")
		if err != nil {
			return nil, err
		}
		for i, rawLibrary := range libraries {
			path := fmt.Sprintf("metadata: /libraries/%d", i)
			candidate, excluded, err := r.gatherLibrary(rawLibrary, path)
			if err != nil {
				return nil, err
			}
			if candidate == nil {
				if excluded != nil {
					result.Excluded = append(result.Excluded, *excluded)
				}
				continue
			}
			if _, dup := seen[candidate.spec]; dup {
				continue
			}
			seen[candidate.spec] = candidate
			ordered = append(ordered, candidate)
		}
	}

	// Version fixes operate by specifier-keyed replacement on the intermediate
	// map, before any download entry exists. A fixed library ignores its
	// original download descriptor and is fetched from the repository instead.
	for _, candidate := range ordered {
		if version, ok := r.Fixes.FixVersion(candidate.spec.String()); ok {
			delete(seen, candidate.spec)
			candidate.spec.Version = version
			candidate.fixed = true
			seen[candidate.spec] = candidate
		}
	}

	for _, candidate := range ordered {
		jarRel := candidate.spec.FilePath()
		jarPath := filepath.Join(install.LibrariesDir, filepath.FromSlash(jarRel))

		var entry *types.DownloadEntry
		if candidate.descriptor != nil && !candidate.fixed {
			parsed, err := parseDownloadDescriptor(candidate.descriptor, jarPath, candidate.spec.String(), candidate.descPath)
			if err != nil {
				return nil, err
			}
			entry = &parsed
		} else if candidate.repoURL != "" {
			repoURL := candidate.repoURL
			if !strings.HasSuffix(repoURL, "/") {
				repoURL += "/"
			}
			entry = &types.DownloadEntry{
				URL:  repoURL + jarRel,
				Dst:  jarPath,
				Size: types.SizeUnknown,
				Name: candidate.spec.String(),
			}
		}

		if entry == nil || entry.URL == "" {
			// No way to fetch this library; only an existing local file can
			// save the install.
			if info, err := os.Stat(jarPath); err != nil || info.IsDir() {
				return nil, UnresolvedLibraryError(candidate.spec)
			}
		} else if err := dl.Add(*entry, true); err != nil {
			return nil, err
		}

		if candidate.native {
			result.NativeFiles = append(result.NativeFiles, jarPath)
		} else {
			result.ClassFiles = append(result.ClassFiles, jarPath)
		}
	}

	excludedNames := make([]string, 0, len(result.Excluded))
	for _, spec := range result.Excluded {
		excludedNames = append(excludedNames, spec.String())
	}
	sink.emit(types.LibrariesResolvedEvent{
		ClassCount:  len(result.ClassFiles),
		NativeCount: len(result.NativeFiles),
		Excluded:    excludedNames,
	})
	return &result, nil
}

// gatherLibrary decodes one raw library declaration. It returns (nil, nil,
// nil) when the library is skipped by rules or by a missing natives classifier
// for this platform, and (nil, &spec, nil) when excluded by a predicate.
func (r LibrariesResolver) gatherLibrary(rawLibrary any, path string) (*libraryCandidate, *LibrarySpecifier, error) {
	library, err := asObject(rawLibrary, path)
	if err != nil {
		return nil, nil, err
	}
	name, err := asString(library["name"], path+"/name")
	if err != nil {
		return nil, nil, err
	}
	spec, err := ParseLibrarySpecifier(name)
	if err != nil {
		return nil, nil, err
	}

	if rawRules, ok := library["rules"]; ok && rawRules != nil {
		rules, err := DecodeRules(rawRules, path+"/rules")
		if err != nil {
			return nil, nil, err
		}
		if !EvaluateRules(rules, r.Platform, r.Features) {
			return nil, nil, nil
		}
	}

	// Old metadata provides a natives mapping from OS name to a classifier
	// overriding the one parsed from the coordinate.
	native := false
	natives, err := optObject(library, "natives", path)
	if err != nil {
		return nil, nil, err
	}
	if natives != nil {
		rawClassifier, ok := natives[r.Platform.OS]
		if !ok || rawClassifier == nil {
			// No native bundle for this platform: skip the library entirely.
			return nil, nil, nil
		}
		classifier, err := asString(rawClassifier, fmt.Sprintf("%s/natives/%s", path, r.Platform.OS))
		if err != nil {
			return nil, nil, err
		}
		if r.Platform.ArchBits != 0 {
			classifier = strings.ReplaceAll(classifier, "${arch}", strconv.Itoa(r.Platform.ArchBits))
		}
		spec.Classifier = classifier
		native = true
	}

	// Predicates run after the final classifier is known.
	for _, predicate := range r.Predicates {
		if !predicate(spec) {
			return nil, &spec, nil
		}
	}

	candidate := libraryCandidate{spec: spec, native: native, repoURL: r.DefaultRepoURL}

	downloads, err := optObject(library, "downloads", path)
	if err != nil {
		return nil, nil, err
	}
	if downloads != nil {
		if native {
			classifiers, err := optObject(downloads, "classifiers", path+"/downloads")
			if err != nil {
				return nil, nil, err
			}
			if classifiers != nil {
				if descriptor, ok := classifiers[spec.Classifier]; ok && descriptor != nil {
					candidate.descriptor = descriptor
					candidate.descPath = fmt.Sprintf("%s/downloads/classifiers/%s", path, spec.Classifier)
				}
			}
		} else if descriptor, ok := downloads["artifact"]; ok && descriptor != nil {
			candidate.descriptor = descriptor
			candidate.descPath = path + "/downloads/artifact"
		}
	}

	if repoURL, ok, err := optString(library, "url", path); err != nil {
		return nil, nil, err
	} else if ok {
		candidate.repoURL = repoURL
	}

	return &candidate, nil, nil
}
