package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/Zacy-Sokach/DayFlow/internal/api"
	"github.com/Zacy-Sokach/DayFlow/internal/printer"
)

type FuturesCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewFuturesCommand returns the futures command.
func NewFuturesCommand(rootCmd *RootCommand, app *kingpin.Application) *FuturesCommand {
	c := &FuturesCommand{rootCmd: rootCmd}
	c.Cmd = app.Command("futures", "Predict where the current routine leads.")
	return c
}

func (c FuturesCommand) Name() string { return c.Cmd.FullCommand() }

func (c FuturesCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	cfg, err := c.rootCmd.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.UserID == "" {
		return errors.New("未配置 user_id，请先运行 dayflow tui")
	}

	tokens, err := newTokenCache(cfg, logger)
	if err != nil {
		return err
	}
	token, ok := tokens.UsableToken(ctx)
	session := api.Session{UserID: cfg.UserID, TimeZone: cfg.TimeZone}.WithToken(token, ok)

	futures, err := newAPIClient(cfg).PredictFuture(ctx, session)
	if err != nil {
		return fmt.Errorf("获取预测失败: %w", err)
	}
	printer.Futures(c.rootCmd.Stdout, futures)
	return nil
}
