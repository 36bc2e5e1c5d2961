package cache

import (
	"context"
	"errors"
	"io"
	"time"
)

// Store 负责管理磁盘缓存的读写。磁盘布局遵循：
//
//	<StoragePath>/<Prefix><Name>    # 编码后的正文，无额外头部
//
// 每个条目仅由正文文件组成，文件的 ModTime/Size 由文件系统提供。
type Store interface {
	// Stat 仅返回条目元数据。若不存在则返回 ErrNotFound。
	Stat(ctx context.Context, locator Locator) (*Entry, error)

	// Get 返回一个可流式读取的缓存条目。若不存在则返回 ErrNotFound。
	Get(ctx context.Context, locator Locator) (*ReadResult, error)

	// Create 以截断方式打开条目文件供写入，调用方负责 Close。
	// 写入不是原子的：并发读者可能看到部分内容。
	Create(ctx context.Context, locator Locator) (io.WriteCloser, error)

	// Remove 删除正文文件，文件不存在不视为错误。
	Remove(ctx context.Context, locator Locator) error

	// List 返回文件名以 prefix 开头的条目，按名称排序。
	List(ctx context.Context, prefix string) ([]Entry, error)

	// BasePath 返回缓存根目录的绝对路径。
	BasePath() string
}

// Locator 唯一定位一个缓存条目（命名空间前缀 + 键标签）。
type Locator struct {
	Prefix string
	Name   string
}

// FileName 返回条目在根目录下的文件名。
func (l Locator) FileName() string {
	return l.Prefix + l.Name
}

// Entry 表示一个已存在的缓存文件，包含绝对文件路径及文件信息。
type Entry struct {
	Locator   Locator   `json:"locator"`
	FilePath  string    `json:"file_path"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

// Age 返回条目相对 now 的存活时长。
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.ModTime)
}

// ReadResult 组合 Entry 与正文 Reader。
type ReadResult struct {
	Entry  Entry
	Reader io.ReadCloser
}

// ErrNotFound 表示缓存不存在。
var ErrNotFound = errors.New("cache entry not found")
