package auth

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandAuthenticator 运行外部命令获取令牌，命令在标准输出的第一行打印 bearer 令牌
//
// 身份提供方的交互流程（浏览器弹窗等）由该命令负责。
type CommandAuthenticator struct {
	Command []string
}

func (a CommandAuthenticator) Authenticate(ctx context.Context) (string, error) {
	if len(a.Command) == 0 {
		return "", errors.New("未配置 auth.token_command")
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.Command[0], a.Command[1:]...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("令牌命令执行失败: %w: %s", err, msg)
		}
		return "", fmt.Errorf("令牌命令执行失败: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	return "", nil
}
