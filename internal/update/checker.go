// Package update 查询 GitHub 上的最新发布版本。
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Zacy-Sokach/DayFlow/internal/utils"
)

const (
	RepoOwner = "Zacy-Sokach"
	RepoName  = "DayFlow"
	Repo      = RepoOwner + "/" + RepoName

	DefaultReleasesURL = "https://api.github.com/repos/" + Repo + "/releases/latest"
)

type ReleaseInfo struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

type Checker struct {
	client utils.Doer
	url    string
}

// NewChecker 创建版本检查器，url 为空时使用 GitHub 的 latest release 接口
func NewChecker(client utils.Doer, url string) *Checker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if url == "" {
		url = DefaultReleasesURL
	}
	return &Checker{client: client, url: url}
}

func (c *Checker) Latest(ctx context.Context) (ReleaseInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return ReleaseInfo{}, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return ReleaseInfo{}, fmt.Errorf("获取最新版本失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ReleaseInfo{}, fmt.Errorf("GitHub API 返回状态码 %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return ReleaseInfo{}, fmt.Errorf("解析响应失败: %w", err)
	}
	return release, nil
}

// CheckForUpdate 返回是否有比 currentVersion 更新的版本
func (c *Checker) CheckForUpdate(ctx context.Context, currentVersion string) (bool, ReleaseInfo, error) {
	latest, err := c.Latest(ctx)
	if err != nil {
		return false, ReleaseInfo{}, err
	}
	return compareVersions(currentVersion, latest.TagName) < 0, latest, nil
}

// compareVersions 按点分数字比较，忽略前缀 v，非数字部分按 0 处理
func compareVersions(v1, v2 string) int {
	parts1 := strings.Split(strings.TrimPrefix(v1, "v"), ".")
	parts2 := strings.Split(strings.TrimPrefix(v2, "v"), ".")

	for i := 0; i < len(parts1) && i < len(parts2); i++ {
		var p1, p2 int
		fmt.Sscanf(parts1[i], "%d", &p1)
		fmt.Sscanf(parts2[i], "%d", &p2)

		if p1 < p2 {
			return -1
		}
		if p1 > p2 {
			return 1
		}
	}

	switch {
	case len(parts1) < len(parts2):
		return -1
	case len(parts1) > len(parts2):
		return 1
	}
	return 0
}
