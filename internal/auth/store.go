package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

// MemoryStore 只在进程内保存令牌
type MemoryStore struct {
	mu  sync.Mutex
	rec *Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return Record{}, false, nil
	}
	return *m.rec, true, nil
}

func (m *MemoryStore) Save(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = &rec
	return nil
}

func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = nil
	return nil
}

const (
	keyToken  = "accessToken"
	keyExpiry = "accessTokenExpiry"
)

// DiskvStore 把令牌保存为目录下的两个文件，跨进程重启保留
type DiskvStore struct {
	d *diskv.Diskv
}

// NewDiskvStore 在 basePath 下保存令牌
func NewDiskvStore(basePath string) *DiskvStore {
	return &DiskvStore{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 4 * 1024,
		FilePerm:     0o600,
		PathPerm:     0o700,
	})}
}

func (s *DiskvStore) Load() (Record, bool, error) {
	if !s.d.Has(keyToken) || !s.d.Has(keyExpiry) {
		return Record{}, false, nil
	}

	token, err := s.d.Read(keyToken)
	if err != nil {
		return Record{}, false, fmt.Errorf("读取令牌失败: %w", err)
	}
	rawExpiry, err := s.d.Read(keyExpiry)
	if err != nil {
		return Record{}, false, fmt.Errorf("读取过期时间失败: %w", err)
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(string(rawExpiry)), 10, 64)
	if err != nil {
		return Record{}, false, fmt.Errorf("无效的过期时间 %q: %w", rawExpiry, err)
	}

	return Record{Token: string(token), ExpiresAt: time.UnixMilli(ms)}, true, nil
}

// Save 过期时间按毫秒时间戳保存
func (s *DiskvStore) Save(rec Record) error {
	if err := s.d.Write(keyToken, []byte(rec.Token)); err != nil {
		return fmt.Errorf("写入令牌失败: %w", err)
	}
	expiry := strconv.FormatInt(rec.ExpiresAt.UnixMilli(), 10)
	if err := s.d.Write(keyExpiry, []byte(expiry)); err != nil {
		return fmt.Errorf("写入过期时间失败: %w", err)
	}
	return nil
}

func (s *DiskvStore) Delete() error {
	var errs []error
	for _, key := range []string{keyToken, keyExpiry} {
		if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
