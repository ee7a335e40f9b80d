package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/Zacy-Sokach/DayFlow/internal/update"
)

type VersionCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
	version string

	check bool
}

// NewVersionCommand returns the version command.
func NewVersionCommand(rootCmd *RootCommand, app *kingpin.Application, version string) *VersionCommand {
	c := &VersionCommand{rootCmd: rootCmd, version: version}
	c.Cmd = app.Command("version", "Show version information.")
	c.Cmd.Flag("check", "Also check GitHub for a newer release.").BoolVar(&c.check)
	return c
}

func (c VersionCommand) Name() string { return c.Cmd.FullCommand() }

func (c VersionCommand) Run(ctx context.Context) error {
	fmt.Fprintf(c.rootCmd.Stdout, "DayFlow %s\n", c.version)
	if !c.check {
		return nil
	}

	newer, release, err := update.NewChecker(nil, "").CheckForUpdate(ctx, c.version)
	if err != nil {
		return fmt.Errorf("检查更新失败: %w", err)
	}
	if newer {
		fmt.Fprintf(c.rootCmd.Stdout, "New version available: %s\n%s\n", release.TagName, release.HTMLURL)
		return nil
	}
	fmt.Fprintf(c.rootCmd.Stdout, "Already up to date (%s)\n", release.TagName)
	return nil
}
