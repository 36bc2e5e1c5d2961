package persist

import (
	"errors"
	"fmt"
)

// ErrDispatcherClosed 表示 Dispatcher 已关闭，不再接受后台写入。
var ErrDispatcherClosed = errors.New("dispatcher closed")

// LoadError 包装读取路径上除缺失/过期以外的所有失败（IO、解码）。
type LoadError struct {
	Key string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load cache entry %s: %v", e.Key, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SaveError 包装同步写入路径上的失败（编码、IO）。
type SaveError struct {
	Key string
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save cache entry %s: %v", e.Key, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
