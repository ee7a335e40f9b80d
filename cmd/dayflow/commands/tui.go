package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zacy-Sokach/DayFlow/internal/activities"
	"github.com/Zacy-Sokach/DayFlow/internal/config"
	"github.com/Zacy-Sokach/DayFlow/internal/conversation"
	"github.com/Zacy-Sokach/DayFlow/internal/tui"
)

type TUICommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewTUICommand returns the interactive command, it is the default command.
func NewTUICommand(rootCmd *RootCommand, app *kingpin.Application) *TUICommand {
	c := &TUICommand{rootCmd: rootCmd}
	c.Cmd = app.Command("tui", "Open the interactive timeline and planner.").Default()
	return c
}

func (c TUICommand) Name() string { return c.Cmd.FullCommand() }

func (c TUICommand) Run(ctx context.Context) error {
	if !isTerminal(c.rootCmd.Stdout) {
		return errors.New("交互界面需要在终端中运行，非交互环境请使用 today 或 futures 命令")
	}

	logger := c.rootCmd.Logger
	cfg, err := c.rootCmd.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.UserID == "" {
		if err := c.promptUserID(cfg); err != nil {
			return err
		}
	}

	tokens, err := newTokenCache(cfg, logger)
	if err != nil {
		return err
	}
	client := newAPIClient(cfg)

	engine, err := conversation.NewEngine(conversation.EngineConfig{
		Chat:    client,
		Tokens:  tokens,
		Session: &conversation.Session{UserID: cfg.UserID, TimeZone: cfg.TimeZone},
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("创建对话引擎失败: %w", err)
	}
	defer engine.Close()

	editor, err := activities.NewService(activities.ServiceConfig{
		Backend:  client,
		Tokens:   tokens,
		UserID:   cfg.UserID,
		TimeZone: cfg.TimeZone,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("创建活动服务失败: %w", err)
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

	bus := tui.NewEventBus(64)
	defer bus.Close()

	model, err := tui.NewModel(tui.ModelConfig{
		Conversation:   engine,
		Editor:         editor,
		Bus:            bus,
		Logger:         logger,
		Location:       cfg.Location(),
		ColumnsPerHour: cfg.Timeline.ColumnsPerHour,
	})
	if err != nil {
		return fmt.Errorf("创建界面失败: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if feed != nil {
		go bus.Forward(ctx, feed.Watch(ctx))
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("程序运行错误: %w", err)
	}
	return nil
}

// promptUserID 首次运行时询问用户 ID 并写回配置
func (c TUICommand) promptUserID(cfg *config.Config) error {
	out := c.rootCmd.Stdout
	fmt.Fprintln(out, lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render("Welcome to DayFlow!"))
	fmt.Fprint(out, "Enter your user id: ")

	scanner := bufio.NewScanner(c.rootCmd.Stdin)
	if !scanner.Scan() {
		return errors.New("没有读取到用户 ID")
	}
	userID := strings.TrimSpace(scanner.Text())
	if userID == "" {
		return errors.New("用户 ID 不能为空")
	}

	cfg.UserID = userID
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("保存配置失败: %w", err)
	}
	fmt.Fprintln(out, lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("Saved."))
	return nil
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
