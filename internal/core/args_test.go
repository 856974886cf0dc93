package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgsResolverModernArguments(t *testing.T) {
	install := testInstall(t)
	root := NewVersionNode(install, "1.20.1")
	metadata := map[string]any{
		"mainClass": "net.client.Main",
		"type":      "release",
		"arguments": map[string]any{
			"jvm": []any{
				"-Xss1M",
				map[string]any{
					"rules": []any{map[string]any{"action": "allow", "os": map[string]any{"name": "osx"}}},
					"value": []any{"-XstartOnFirstThread"},
				},
			},
			"game": []any{
				"--username", "${auth_player_name}",
				map[string]any{
					"rules": []any{map[string]any{"action": "allow", "features": map[string]any{"is_demo_user": true}}},
					"value": "--demo",
				},
			},
		},
	}
	libraries := &LibrariesResult{ClassFiles: []string{"/libs/a.jar"}}

	resolver := ArgsResolver{Platform: linuxPlatform(), Username: "Steve", LauncherName: "portacraft", LauncherVersion: "dev"}
	args, err := resolver.Resolve(t.Context(), install, root, metadata, "/versions/1.20.1/1.20.1.jar", libraries, nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "net.client.Main", args.MainClass)
	assert.Contains(t, args.JVMArgs, "-Xss1M")
	assert.NotContains(t, args.JVMArgs, "-XstartOnFirstThread")
	assert.Contains(t, args.GameArgs, "--username")
	assert.NotContains(t, args.GameArgs, "--demo")

	// The client archive goes last on modern classpaths.
	classPath := strings.Split(args.Replacements["classpath"], string(os.PathListSeparator))
	require.Len(t, classPath, 2)
	assert.Equal(t, "/versions/1.20.1/1.20.1.jar", classPath[1])

	full := args.FullArgs()
	i := indexOf(full, "--username")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "Steve", full[i+1])
}

func TestArgsResolverDemoFeature(t *testing.T) {
	install := testInstall(t)
	root := NewVersionNode(install, "1.20.1")
	metadata := map[string]any{
		"mainClass": "net.client.Main",
		"arguments": map[string]any{
			"game": []any{
				map[string]any{
					"rules": []any{map[string]any{"action": "allow", "features": map[string]any{"is_demo_user": true}}},
					"value": "--demo",
				},
			},
		},
	}
	resolver := ArgsResolver{Platform: linuxPlatform(), Features: map[string]bool{"is_demo_user": true}}
	args, err := resolver.Resolve(t.Context(), install, root, metadata, "client.jar", nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, args.GameArgs, "--demo")
}

func TestArgsResolverLegacyArguments(t *testing.T) {
	install := testInstall(t)
	root := NewVersionNode(install, "1.7.10")
	metadata := map[string]any{
		"mainClass":          "net.client.Main",
		"minecraftArguments": "--username ${auth_player_name} --gameDir ${game_directory}",
	}
	libraries := &LibrariesResult{ClassFiles: []string{"/libs/a.jar"}}

	resolver := ArgsResolver{Platform: linuxPlatform()}
	args, err := resolver.Resolve(t.Context(), install, root, metadata, "/versions/1.7.10/1.7.10.jar", libraries, nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"--username", "${auth_player_name}", "--gameDir", "${game_directory}"}, args.GameArgs)
	assert.Contains(t, args.JVMArgs, "-cp")
	assert.Contains(t, args.JVMArgs, "${classpath}")

	// The client archive goes first on legacy classpaths.
	classPath := strings.Split(args.Replacements["classpath"], string(os.PathListSeparator))
	require.Len(t, classPath, 2)
	assert.Equal(t, "/versions/1.7.10/1.7.10.jar", classPath[0])

	// Absent features leave the default username in place.
	full := args.FullArgs()
	i := indexOf(full, "--username")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "Player", full[i+1])
}

func TestArgsResolverLoggerAndRuntime(t *testing.T) {
	install := testInstall(t)
	root := NewVersionNode(install, "1.20.1")
	metadata := map[string]any{
		"mainClass": "net.client.Main",
		"arguments": map[string]any{},
	}
	logger := &LoggerResult{Argument: "-Dlog4j.configurationFile=${path}", Path: filepath.Join(install.AssetsDir, "log_configs", "client.xml")}
	runtime := &RuntimeResult{Component: "java-runtime-gamma", BinPath: "/jvm/java-runtime-gamma/bin/java"}

	resolver := ArgsResolver{Platform: linuxPlatform()}
	args, err := resolver.Resolve(t.Context(), install, root, metadata, "client.jar", nil, nil, logger, runtime)
	require.NoError(t, err)

	assert.Equal(t, "/jvm/java-runtime-gamma/bin/java", args.JVMArgs[0])
	assert.Contains(t, args.JVMArgs, "-Dlog4j.configurationFile="+logger.Path)
}

func TestReplaceVars(t *testing.T) {
	repl := map[string]string{"known": "value"}
	assert.Equal(t, "value", replaceVars("${known}", repl))
	assert.Equal(t, "${unknown}", replaceVars("${unknown}", repl))
	assert.Equal(t, "a value b ${unknown}", replaceVars("a ${known} b ${unknown}", repl))
	assert.Equal(t, "plain", replaceVars("plain", repl))
	assert.Equal(t, "${broken", replaceVars("${broken", repl))
}

func indexOf(list []string, value string) int {
	for i, item := range list {
		if item == value {
			return i
		}
	}
	return -1
}
