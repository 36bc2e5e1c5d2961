package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// EntryFields 描述单个缓存条目（前缀、键标签、文件路径），供读写日志复用。
func EntryFields(prefix, key, path string) logrus.Fields {
	return logrus.Fields{
		"prefix": prefix,
		"key":    key,
		"path":   path,
	}
}

// RequestFields 提供命名空间/键/请求 ID/命中状态字段，供 HTTP 请求日志复用。
func RequestFields(namespace, key, requestID string, cacheHit bool) logrus.Fields {
	return logrus.Fields{
		"namespace":  namespace,
		"key":        key,
		"request_id": requestID,
		"cache_hit":  cacheHit,
	}
}
