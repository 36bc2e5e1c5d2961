package cache

import (
	"fmt"
	"time"
)

// State 描述读者视角下的条目状态：ABSENT → FRESH → STALE。
type State int

const (
	StateAbsent State = iota
	StateFresh
	StateStale
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "absent"
	}
}

// MarshalText 让 State 在 JSON 诊断输出中以字符串呈现。
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 解析 absent/fresh/stale。
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "absent":
		*s = StateAbsent
	case "fresh":
		*s = StateFresh
	case "stale":
		*s = StateStale
	default:
		return fmt.Errorf("unknown cache state: %q", string(text))
	}
	return nil
}

// Evaluate 仅依据文件元数据判断新鲜度。maxAge 为 0 表示永不过期。
func Evaluate(entry *Entry, maxAge time.Duration, now time.Time) State {
	if entry == nil {
		return StateAbsent
	}
	if maxAge == 0 {
		return StateFresh
	}
	if entry.Age(now) <= maxAge {
		return StateFresh
	}
	return StateStale
}

// Status 是一次新鲜度检查的结果，Entry 在 StateAbsent 时为 nil。
type Status struct {
	State State         `json:"state"`
	Entry *Entry        `json:"entry,omitempty"`
	Age   time.Duration `json:"age"`
}
