package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	githubadapter "github.com/alisw/ci-overview/internal/adapter/driven/github"
	"github.com/alisw/ci-overview/internal/application"
	"github.com/alisw/ci-overview/internal/catalog"
	"github.com/alisw/ci-overview/internal/config"
	"github.com/alisw/ci-overview/internal/domain/port/driven"
	"github.com/alisw/ci-overview/internal/logging"
	"github.com/alisw/ci-overview/internal/render"
)

var overviewFlags struct {
	defsDir    string
	remote     bool
	recent     time.Duration
	roles      []string
	containers []string
	repos      []string
	checks     []string
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Print the current overview to the terminal",
	Long: `Print a one-shot overview of all known checks to the terminal.

Filtering flags can be given multiple times. Repeated values of one flag are
OR-ed; different flags are AND-ed. With no filtering flags, all known checks
are shown.`,
	RunE: runOverview,
}

func init() {
	flags := overviewCmd.Flags()
	flags.StringVar(&overviewFlags.defsDir, "defs-dir", "ali-bot/ci/repo-config",
		"directory holding the .env definitions hierarchy (DIR/ROLE/CONTAINER/*.env)")
	flags.BoolVar(&overviewFlags.remote, "remote", false,
		"fetch the definitions tree from GitHub instead of reading --defs-dir")
	flags.DurationVarP(&overviewFlags.recent, "recent", "t", 24*time.Hour,
		"mark check results newer than this window as recent (reverse video)")
	flags.StringArrayVarP(&overviewFlags.roles, "role", "m", nil,
		"include checks running under this role")
	flags.StringArrayVarP(&overviewFlags.containers, "container", "d", nil,
		"include checks running inside this container (short name, e.g. slc8)")
	flags.StringArrayVarP(&overviewFlags.repos, "repo", "r", nil,
		"include checks for this repository (owner/repo form)")
	flags.StringArrayVarP(&overviewFlags.checks, "check", "c", nil,
		"include the specific named check (as it appears on GitHub)")

	rootCmd.AddCommand(overviewCmd)
}

func runOverview(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	client, err := githubadapter.NewClient(cfg.GitHubToken)
	if err != nil {
		return err
	}

	var source driven.DefinitionSource
	if overviewFlags.remote {
		source = githubadapter.NewRemoteSource(client, cfg.DefsRepo, cfg.DefsBranch, cfg.DefsPath)
	} else {
		source = catalog.NewLocalSource(overviewFlags.defsDir)
	}

	filters := catalog.Filters{
		Roles:        overviewFlags.roles,
		Containers:   overviewFlags.containers,
		Repositories: overviewFlags.repos,
		Checks:       overviewFlags.checks,
	}

	now := time.Now().UTC()
	cat, statuses, collectErr := application.Collect(cmd.Context(), source, client, filters, now)
	if cat == nil {
		return collectErr
	}

	opts := render.Options{
		Now:          now,
		RecentWindow: overviewFlags.recent,
		DisplayWidth: displayWidth(),
	}
	if err := render.Overview(render.NewText(os.Stdout, opts), cat, statuses, opts); err != nil {
		return err
	}

	// Partial failures were already rendered around; they still decide the
	// exit code.
	if collectErr != nil {
		return fmt.Errorf("overview incomplete: %w", collectErr)
	}
	return nil
}

// displayWidth returns the terminal width, or 80 when stdout is not a
// terminal.
func displayWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}
