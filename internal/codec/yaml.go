package codec

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// YAML 使用 gopkg.in/yaml.v3 编解码，便于人工查看缓存文件。
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) ContentType() string { return "application/yaml" }

func (YAML) Encode(v any) (Payload, error) {
	body, err := yaml.Marshal(v)
	if err != nil {
		return Payload{}, fmt.Errorf("yaml encode: %w", err)
	}
	return Payload{ContentType: YAML{}.ContentType(), Body: body}, nil
}

func (YAML) Decode(in Payload, target any) error {
	if err := requirePointer(target); err != nil {
		return fmt.Errorf("yaml decode: %w", err)
	}
	if len(in.Body) == 0 {
		return fmt.Errorf("yaml decode: %w: empty body", ErrMalformed)
	}
	if err := yaml.Unmarshal(in.Body, target); err != nil {
		return fmt.Errorf("yaml decode: %w: %w", ErrMalformed, err)
	}
	return nil
}

// requirePointer 拒绝非指针或 nil 指针目标，yaml/toml 对此的报错并不统一。
func requirePointer(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer, got %T", ErrUnsupportedType, target)
	}
	return nil
}
