package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/Zacy-Sokach/DayFlow/cmd/dayflow/commands"
	"github.com/Zacy-Sokach/DayFlow/internal/config"
	"github.com/Zacy-Sokach/DayFlow/internal/log"
	loglogrus "github.com/Zacy-Sokach/DayFlow/internal/log/logrus"
	"github.com/Zacy-Sokach/DayFlow/internal/tui"
)

var (
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("dayflow", "Plan your day on a zoomable timeline with an AI assistant.")
	rootCmd := commands.NewRootCommand(app)

	tuiCmd := commands.NewTUICommand(rootCmd, app)
	todayCmd := commands.NewTodayCommand(rootCmd, app)
	futuresCmd := commands.NewFuturesCommand(rootCmd, app)
	loginCmd := commands.NewLoginCommand(rootCmd, app)
	logoutCmd := commands.NewLogoutCommand(rootCmd, app)
	versionCmd := commands.NewVersionCommand(rootCmd, app, Version)

	cmds := map[string]commands.Command{
		tuiCmd.Name():     tuiCmd,
		todayCmd.Name():   todayCmd,
		futuresCmd.Name(): futuresCmd,
		loginCmd.Name():   loginCmd,
		logoutCmd.Name():  logoutCmd,
		versionCmd.Name(): versionCmd,
	}

	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}
	if err := rootCmd.ApplyConfigHome(); err != nil {
		return err
	}

	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// 交互界面占用终端，日志写到文件
	logOut := stderr
	if cmdName == tuiCmd.Name() {
		f, err := openLogFile()
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	rootCmd.Logger = getLogger(*rootCmd, logOut)
	tui.Version = Version

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

func openLogFile() (*os.File, error) {
	path, err := commands.LogFilePath()
	if err != nil {
		return nil, fmt.Errorf("获取日志路径失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return f, nil
}

// getLogger returns the application logger.
func getLogger(root commands.RootCommand, out io.Writer) log.Logger {
	logrusLog := logrus.New()
	logrusLog.Out = out
	logrusLog.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	logrusLogEntry := logrus.NewEntry(logrusLog)

	switch {
	case root.Debug:
		logrusLog.SetLevel(logrus.DebugLevel)
	default:
		// 配置读取失败时保持默认级别，命令本身会报告配置错误
		if cfg, err := config.LoadConfig(); err == nil && cfg.LogLevel != "" {
			if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
				logrusLog.SetLevel(lvl)
			}
		}
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled")

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
