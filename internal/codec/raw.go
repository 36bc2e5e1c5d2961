package codec

import "fmt"

// Raw 原样保存 []byte 或 string，不做任何转换。
type Raw struct{}

func (Raw) Name() string { return "raw" }

func (Raw) ContentType() string { return "application/octet-stream" }

func (Raw) Encode(v any) (Payload, error) {
	var body []byte
	switch val := v.(type) {
	case []byte:
		body = append([]byte(nil), val...)
	case string:
		body = []byte(val)
	default:
		return Payload{}, fmt.Errorf("raw encode: %w: %T", ErrUnsupportedType, v)
	}
	return Payload{ContentType: Raw{}.ContentType(), Body: body}, nil
}

func (Raw) Decode(in Payload, target any) error {
	switch dst := target.(type) {
	case *[]byte:
		if dst == nil {
			return fmt.Errorf("raw decode: %w: nil target", ErrUnsupportedType)
		}
		*dst = append([]byte(nil), in.Body...)
	case *string:
		if dst == nil {
			return fmt.Errorf("raw decode: %w: nil target", ErrUnsupportedType)
		}
		*dst = string(in.Body)
	default:
		return fmt.Errorf("raw decode: %w: %T", ErrUnsupportedType, target)
	}
	return nil
}
