package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"

	"portacraft/internal/types"
)

// Args carries everything needed to start the installed client: the runtime
// arguments, the main class and the game arguments, plus the variable
// replacement map applied when the final command line is computed.
type Args struct {
	JVMArgs      []string
	GameArgs     []string
	MainClass    string
	Replacements map[string]string
}

// FullArgs computes the complete command line: runtime arguments, main class,
// then game arguments, each formatted against the replacement map.
func (a Args) FullArgs() []string {
	out := make([]string, 0, len(a.JVMArgs)+1+len(a.GameArgs))
	for _, arg := range a.JVMArgs {
		out = append(out, replaceVars(arg, a.Replacements))
	}
	out = append(out, a.MainClass)
	for _, arg := range a.GameArgs {
		out = append(out, replaceVars(arg, a.Replacements))
	}
	return out
}

// ArgsResolver assembles the launch arguments from the merged metadata and the
// typed results of the other resolvers.
type ArgsResolver struct {
	Platform        types.PlatformInfo
	Features        map[string]bool
	Username        string
	LauncherName    string
	LauncherVersion string
}

// Resolve supports both the modern arguments object and the legacy
// minecraftArguments string, mirroring what the official metadata ships.
func (r ArgsResolver) Resolve(ctx context.Context, install types.InstallContext, root *VersionNode, metadata map[string]any, clientFile string, libraries *LibrariesResult, assets *AssetsResult, logger *LoggerResult, runtime *RuntimeResult) (*Args, error) {
	mainClass, err := asString(metadata["mainClass"], "metadata: /mainClass")
	if err != nil {
		return nil, err
	}
	assert.NotEmpty(ctx, mainClass, "mainClass must not be empty")

	args := Args{MainClass: mainClass}
	if runtime != nil {
		args.JVMArgs = append(args.JVMArgs, runtime.BinPath)
	}

	var classPath []string
	if libraries != nil {
		classPath = append(classPath, libraries.ClassFiles...)
	}

	modernArgs, err := optObject(metadata, "arguments", "metadata:")
	if err != nil {
		return nil, err
	}
	if modernArgs != nil {
		if rawJVM, ok := modernArgs["jvm"]; ok && rawJVM != nil {
			if args.JVMArgs, err = r.interpretArgs(rawJVM, args.JVMArgs, "metadata: /arguments/jvm"); err != nil {
				return nil, err
			}
		}
		if rawGame, ok := modernArgs["game"]; ok && rawGame != nil {
			if args.GameArgs, err = r.interpretArgs(rawGame, args.GameArgs, "metadata: /arguments/game"); err != nil {
				return nil, err
			}
		}
		// Modern versions expect the client archive last in class path.
		classPath = append(classPath, clientFile)
	} else {
		if args.JVMArgs, err = r.interpretArgs(legacyJVMArgs, args.JVMArgs, "<legacy jvm args>"); err != nil {
			return nil, err
		}
		if legacy, ok, err := optString(metadata, "minecraftArguments", "metadata:"); err != nil {
			return nil, err
		} else if ok {
			args.GameArgs = append(args.GameArgs, strings.Split(legacy, " ")...)
		}
		// Legacy versions prefer the client archive first in class path.
		classPath = append([]string{clientFile}, classPath...)
	}

	if logger != nil {
		args.JVMArgs = append(args.JVMArgs, strings.ReplaceAll(logger.Argument, "${path}", logger.Path))
	}

	versionType, _, err := optString(metadata, "type", "metadata:")
	if err != nil {
		return nil, err
	}

	username := r.Username
	if username == "" {
		username = "Player"
	}

	args.Replacements = map[string]string{
		"auth_player_name":    username,
		"version_name":        root.ID,
		"library_directory":   install.LibrariesDir,
		"game_directory":      install.WorkDir,
		"assets_root":         install.AssetsDir,
		"version_type":        versionType,
		"natives_directory":   install.BinDir,
		"launcher_name":       r.LauncherName,
		"launcher_version":    r.LauncherVersion,
		"classpath_separator": string(os.PathListSeparator),
		"classpath":           strings.Join(classPath, string(os.PathListSeparator)),
	}
	if assets != nil {
		args.Replacements["assets_index_name"] = assets.IndexVersion
		if assets.VirtualDir != "" {
			args.Replacements["game_assets"] = assets.VirtualDir
		}
	}

	return &args, nil
}

// interpretArgs appends plain string arguments and conditional argument
// objects whose rules pass for the current platform and features.
func (r ArgsResolver) interpretArgs(value any, dst []string, path string) ([]string, error) {
	list, err := asList(value, path)
	if err != nil {
		return nil, err
	}
	for i, rawArg := range list {
		argPath := fmt.Sprintf("%s/%d", path, i)
		switch arg := rawArg.(type) {
		case string:
			dst = append(dst, arg)
		case map[string]any:
			if rawRules, ok := arg["rules"]; ok && rawRules != nil {
				rules, err := DecodeRules(rawRules, argPath+"/rules")
				if err != nil {
					return nil, err
				}
				if !EvaluateRules(rules, r.Platform, r.Features) {
					continue
				}
			}
			switch argValue := arg["value"].(type) {
			case string:
				dst = append(dst, argValue)
			case []any:
				for j, item := range argValue {
					str, err := asString(item, fmt.Sprintf("%s/value/%d", argPath, j))
					if err != nil {
						return nil, err
					}
					dst = append(dst, str)
				}
			default:
				return nil, SchemaError(argPath+"/value", "a list or a string")
			}
		default:
			return nil, SchemaError(argPath, "an object or a string")
		}
	}
	return dst, nil
}

// replaceVars substitutes ${key} occurrences from the replacement map, leaving
// unknown keys verbatim.
func replaceVars(text string, replacements map[string]string) string {
	if !strings.Contains(text, "${") {
		return text
	}
	var out strings.Builder
	for {
		start := strings.Index(text, "${")
		if start < 0 {
			out.WriteString(text)
			return out.String()
		}
		end := strings.Index(text[start:], "}")
		if end < 0 {
			out.WriteString(text)
			return out.String()
		}
		end += start
		key := text[start+2 : end]
		out.WriteString(text[:start])
		if value, ok := replacements[key]; ok {
			out.WriteString(value)
		} else {
			out.WriteString(text[start : end+1])
		}
		text = text[end+1:]
	}
}

// legacyJVMArgs mirrors the default runtime arguments used by metadata that
// predates the arguments object.
var legacyJVMArgs = []any{
	map[string]any{
		"rules": []any{map[string]any{"action": "allow", "os": map[string]any{"name": "osx"}}},
		"value": []any{"-XstartOnFirstThread"},
	},
	map[string]any{
		"rules": []any{map[string]any{"action": "allow", "os": map[string]any{"name": "windows"}}},
		"value": "-XX:HeapDumpPath=MojangTricksIntelDriversForPerformance_javaw.exe_minecraft.exe.heapdump",
	},
	map[string]any{
		"rules": []any{map[string]any{"action": "allow", "os": map[string]any{"name": "windows", "version": "^10\\."}}},
		"value": []any{"-Dos.name=Windows 10", "-Dos.version=10.0"},
	},
	"-Djava.library.path=${natives_directory}",
	"-Dminecraft.launcher.brand=${launcher_name}",
	"-Dminecraft.launcher.version=${launcher_version}",
	"-cp",
	"${classpath}",
}
