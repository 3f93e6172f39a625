package encoding

import (
	"encoding/json"

	"github.com/synheart/synheart-bpsim/internal/models"
)

// Format represents the encoding format
type Format string

const (
	FormatJSON     Format = "json"
	FormatProtobuf Format = "protobuf"
)

// Encoder encodes readings to bytes
type Encoder interface {
	Encode(reading models.Reading) ([]byte, error)
	ContentType() string
}

// JSONEncoder encodes readings as JSON
type JSONEncoder struct{}

func NewJSONEncoder() *JSONEncoder {
	return &JSONEncoder{}
}

func (e *JSONEncoder) Encode(reading models.Reading) ([]byte, error) {
	return json.Marshal(reading)
}

func (e *JSONEncoder) ContentType() string {
	return "application/json"
}

// NewEncoder creates an encoder for the given format
func NewEncoder(format Format) Encoder {
	switch format {
	case FormatProtobuf:
		return NewProtobufEncoder()
	default:
		return NewJSONEncoder()
	}
}
