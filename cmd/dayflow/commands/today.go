package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/Zacy-Sokach/DayFlow/internal/printer"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

var weekdayNames = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

type TodayCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	day     string
	offline bool
}

// NewTodayCommand returns the today command.
func NewTodayCommand(rootCmd *RootCommand, app *kingpin.Application) *TodayCommand {
	c := &TodayCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("today", "Print the day's activities laid out on tracks.")
	c.Cmd.Flag("day", "Weekday to show instead of today.").EnumVar(&c.day, weekdayNames...)
	c.Cmd.Flag("offline", "Use the last local snapshot without contacting the server.").BoolVar(&c.offline)

	return c
}

func (c TodayCommand) Name() string { return c.Cmd.FullCommand() }

func (c TodayCommand) Run(ctx context.Context) error {
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
	repo, err := newSnapshotRepository(ctx, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	feed, err := newFeed(cfg, tokens, repo, logger)
	if err != nil {
		return err
	}
	if feed == nil {
		return errors.New("未配置 firebase.database_url")
	}

	now := today(cfg)
	title := now.Format("Monday, Jan 2")
	day := now.Weekday()
	if c.day != "" {
		day = weekdayFromName(c.day)
		title = day.String()
	}

	var list []schedule.Activity
	if !c.offline {
		list, err = feed.Fetch(ctx)
	}
	if c.offline || err != nil {
		if err != nil {
			logger.Warningf("拉取活动列表失败，改用本地快照: %s", err)
		}
		snap, cerr := feed.Cached(ctx)
		if cerr != nil {
			if err != nil {
				return fmt.Errorf("获取活动列表失败: %w", err)
			}
			return fmt.Errorf("读取本地快照失败: %w", cerr)
		}
		list = snap.Activities
		title += fmt.Sprintf(" (offline copy from %s)", snap.FetchedAt.In(cfg.Location()).Format("Jan 2 15:04"))
	}

	nowMinute := -1
	if day == now.Weekday() {
		nowMinute = now.Hour()*60 + now.Minute()
	}
	printer.Layout(c.rootCmd.Stdout, title, schedule.Assign(list, day), nowMinute)
	return nil
}

func weekdayFromName(name string) time.Weekday {
	for i, n := range weekdayNames {
		if strings.EqualFold(n, name) {
			return time.Weekday(i)
		}
	}
	return time.Sunday
}
