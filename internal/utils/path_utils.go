package utils

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

const appDirName = "dayflow"

// GetConfigDir 获取跨平台的配置目录
// 优先级: DAYFLOW_CONFIG_HOME > %APPDATA%/dayflow > $XDG_CONFIG_HOME/dayflow > ~/.config/dayflow
func GetConfigDir() (string, error) {
	if configHome := os.Getenv("DAYFLOW_CONFIG_HOME"); configHome != "" {
		return configHome, nil
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appDirName), nil
	}

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appDirName), nil
	}

	homeDir, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", appDirName), nil
}

// ConfigFile 返回配置目录下某个文件的完整路径
func ConfigFile(name string) (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
