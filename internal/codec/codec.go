package codec

import (
	"bytes"
	"errors"
	"io"
)

var (
	// ErrMalformed 表示缓存内容无法按当前编码解析。
	ErrMalformed = errors.New("malformed payload")
	// ErrUnsupportedType 表示编码器不支持给定的 Go 类型。
	ErrUnsupportedType = errors.New("unsupported type")
)

// Codec 负责类型化对象与字节流之间的互转。
type Codec interface {
	// Name 返回注册键，同时用于日志与命名空间前缀。
	Name() string
	// ContentType 返回编码产物的 MIME 类型。
	ContentType() string
	// Encode 将 v 编码为 Payload。
	Encode(v any) (Payload, error)
	// Decode 将 in 解码进 target，target 必须是指针。
	Decode(in Payload, target any) error
}

// Payload 是编码后的字节流，附带 Content-Type，磁盘上只保存 Body。
type Payload struct {
	ContentType string
	Body        []byte
}

// Length 返回正文字节数。
func (p Payload) Length() int64 {
	return int64(len(p.Body))
}

// Reader 返回正文的只读视图。
func (p Payload) Reader() io.Reader {
	return bytes.NewReader(p.Body)
}

// WriteTo 将正文完整写入 w。
func (p Payload) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Body)
	if err == nil && n < len(p.Body) {
		err = io.ErrShortWrite
	}
	return int64(n), err
}
