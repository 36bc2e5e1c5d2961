package persist

// Document 是 HTTP 服务缓存的通用文档类型。
type Document map[string]any
