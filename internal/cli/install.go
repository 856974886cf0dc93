package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"portacraft/internal/app"
)

type installOptions struct {
	MainDir   string
	WorkDir   string
	Workers   int
	Username  string
	Features  []string
	NoRuntime bool
	ShowArgs  bool
}

func newInstallCommand() *cobra.Command {
	opts := installOptions{}
	cmd := &cobra.Command{
		Use:   "install [version]",
		Short: "Install a version and everything it needs",
		Long: "Install resolves the version metadata chain, downloads the client, assets,\n" +
			"libraries, logging configuration and managed runtime, and writes an install\n" +
			"report. The version defaults to the latest release; the aliases \"release\"\n" +
			"and \"snapshot\" are resolved against the manifest index.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := "release"
			if len(args) == 1 {
				version = args[0]
			}
			return runInstall(cmd.Context(), cmd, version, opts)
		},
	}

	cmd.Flags().StringVar(&opts.MainDir, "main-dir", defaultMainDir(), "Installation directory")
	cmd.Flags().StringVar(&opts.WorkDir, "work-dir", "", "Working directory the client runs from")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Download worker count (0 = automatic)")
	cmd.Flags().StringVar(&opts.Username, "username", "", "Offline player name")
	cmd.Flags().StringSliceVar(&opts.Features, "feature", nil, "Rule features to enable (e.g. is_demo_user)")
	cmd.Flags().BoolVar(&opts.NoRuntime, "no-runtime", false, "Skip the managed runtime")
	cmd.Flags().BoolVar(&opts.ShowArgs, "show-args", false, "Print the assembled command line")

	_ = viper.BindPFlag("main_dir", cmd.Flags().Lookup("main-dir"))
	_ = viper.BindPFlag("work_dir", cmd.Flags().Lookup("work-dir"))
	_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("username", cmd.Flags().Lookup("username"))
	_ = viper.BindPFlag("no_runtime", cmd.Flags().Lookup("no-runtime"))

	return cmd
}

func runInstall(ctx context.Context, cmd *cobra.Command, version string, opts installOptions) error {
	mainDir := resolveString(cmd, opts.MainDir, "main_dir", "main-dir")
	service := app.NewService(mainDir)

	features := map[string]bool{}
	for _, feature := range opts.Features {
		features[feature] = true
	}

	result, err := service.Install(ctx, app.InstallRequest{
		MainDir:         mainDir,
		WorkDir:         resolveString(cmd, opts.WorkDir, "work_dir", "work-dir"),
		Version:         version,
		Features:        features,
		Workers:         resolveInt(cmd, opts.Workers, "workers", "workers"),
		Username:        resolveString(cmd, opts.Username, "username", "username"),
		LauncherName:    "portacraft",
		LauncherVersion: cmd.Root().Version,
		NoRuntime:       resolveBool(cmd, opts.NoRuntime, "no_runtime", "no-runtime"),
	}, newConsoleWatcher())
	if err != nil {
		return err
	}

	fmt.Printf("installed: %s\n", result.Version)
	fmt.Printf("report: %s\n", result.ReportPath)
	if opts.ShowArgs {
		for _, arg := range result.Args.FullArgs() {
			fmt.Println(arg)
		}
	}
	return nil
}

// defaultMainDir mirrors the conventional per-user installation directory of
// each platform.
func defaultMainDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portacraft"
	}
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return filepath.Join(appdata, ".portacraft")
		}
		return filepath.Join(home, ".portacraft")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "portacraft")
	default:
		return filepath.Join(home, ".portacraft")
	}
}
