package codec

import (
	"encoding/json"
	"errors"
	"fmt"
)

// JSON 使用 encoding/json 编解码，是默认编码。
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) ContentType() string { return "application/json" }

func (JSON) Encode(v any) (Payload, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return Payload{}, fmt.Errorf("json encode: %w", err)
	}
	return Payload{ContentType: JSON{}.ContentType(), Body: body}, nil
}

func (JSON) Decode(in Payload, target any) error {
	if len(in.Body) == 0 {
		return fmt.Errorf("json decode: %w: empty body", ErrMalformed)
	}
	if err := json.Unmarshal(in.Body, target); err != nil {
		var invalid *json.InvalidUnmarshalError
		if errors.As(err, &invalid) {
			return fmt.Errorf("json decode: %w: %w", ErrUnsupportedType, err)
		}
		return fmt.Errorf("json decode: %w: %w", ErrMalformed, err)
	}
	return nil
}
