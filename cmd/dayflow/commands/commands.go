package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/Zacy-Sokach/DayFlow/internal/config"
	"github.com/Zacy-Sokach/DayFlow/internal/log"
	"github.com/Zacy-Sokach/DayFlow/internal/utils"
)

// LogFileName 是交互界面运行时日志文件的名字，位于配置目录下
const LogFileName = "dayflow.log"

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand 是全局参数和所有命令共用的实例
type RootCommand struct {
	// Global flags.
	Debug      bool
	ConfigHome string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand 注册全局参数
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug logging.").BoolVar(&c.Debug)
	app.Flag("config-home", "Directory holding config.yaml, credentials and the local snapshot.").Envar("DAYFLOW_CONFIG_HOME").StringVar(&c.ConfigHome)

	return c
}

// ApplyConfigHome 让 --config-home 对 utils.GetConfigDir 生效
func (c RootCommand) ApplyConfigHome() error {
	if c.ConfigHome == "" {
		return nil
	}
	abs, err := filepath.Abs(c.ConfigHome)
	if err != nil {
		return fmt.Errorf("无效的配置目录: %w", err)
	}
	return os.Setenv("DAYFLOW_CONFIG_HOME", abs)
}

// LoadConfig 读取配置文件
func (c RootCommand) LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	return cfg, nil
}

// LogFilePath 返回交互界面的日志文件路径
func LogFilePath() (string, error) {
	return utils.ConfigFile(LogFileName)
}
