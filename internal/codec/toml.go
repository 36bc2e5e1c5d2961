package codec

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// TOML 使用 go-toml/v2 编解码，只支持 table 形态（struct/map）的顶层值。
type TOML struct{}

func (TOML) Name() string { return "toml" }

func (TOML) ContentType() string { return "application/toml" }

func (TOML) Encode(v any) (Payload, error) {
	body, err := toml.Marshal(v)
	if err != nil {
		return Payload{}, fmt.Errorf("toml encode: %w", err)
	}
	return Payload{ContentType: TOML{}.ContentType(), Body: body}, nil
}

func (TOML) Decode(in Payload, target any) error {
	if err := requirePointer(target); err != nil {
		return fmt.Errorf("toml decode: %w", err)
	}
	if len(in.Body) == 0 {
		return fmt.Errorf("toml decode: %w: empty body", ErrMalformed)
	}
	if err := toml.Unmarshal(in.Body, target); err != nil {
		return fmt.Errorf("toml decode: %w: %w", ErrMalformed, err)
	}
	return nil
}
