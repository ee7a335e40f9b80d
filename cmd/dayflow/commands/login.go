package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type LoginCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewLoginCommand returns the login command.
func NewLoginCommand(rootCmd *RootCommand, app *kingpin.Application) *LoginCommand {
	c := &LoginCommand{rootCmd: rootCmd}
	c.Cmd = app.Command("login", "Run the token command and store a fresh access token.")
	return c
}

func (c LoginCommand) Name() string { return c.Cmd.FullCommand() }

func (c LoginCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.LoadConfig()
	if err != nil {
		return err
	}
	tokens, err := newTokenCache(cfg, c.rootCmd.Logger)
	if err != nil {
		return err
	}
	if err := tokens.SignIn(ctx); err != nil {
		return fmt.Errorf("登录失败: %w", err)
	}
	fmt.Fprintln(c.rootCmd.Stdout, "Signed in.")
	return nil
}

type LogoutCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewLogoutCommand returns the logout command.
func NewLogoutCommand(rootCmd *RootCommand, app *kingpin.Application) *LogoutCommand {
	c := &LogoutCommand{rootCmd: rootCmd}
	c.Cmd = app.Command("logout", "Forget the stored access token.")
	return c
}

func (c LogoutCommand) Name() string { return c.Cmd.FullCommand() }

func (c LogoutCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.LoadConfig()
	if err != nil {
		return err
	}
	tokens, err := newTokenCache(cfg, c.rootCmd.Logger)
	if err != nil {
		return err
	}
	if err := tokens.SignOut(); err != nil {
		return fmt.Errorf("退出登录失败: %w", err)
	}
	fmt.Fprintln(c.rootCmd.Stdout, "Signed out.")
	return nil
}
