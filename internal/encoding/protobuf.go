package encoding

import (
	"fmt"

	"github.com/synheart/synheart-bpsim/internal/models"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtobufEncoder encodes readings as a google.protobuf.Struct message
type ProtobufEncoder struct{}

func NewProtobufEncoder() *ProtobufEncoder {
	return &ProtobufEncoder{}
}

func (e *ProtobufEncoder) Encode(reading models.Reading) ([]byte, error) {
	pb, err := readingToProto(reading)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(pb)
}

func (e *ProtobufEncoder) ContentType() string {
	return "application/x-protobuf"
}

// DecodeProtobuf parses a reading produced by ProtobufEncoder
func DecodeProtobuf(data []byte) (models.Reading, error) {
	var pb structpb.Struct
	if err := proto.Unmarshal(data, &pb); err != nil {
		return models.Reading{}, fmt.Errorf("failed to unmarshal reading: %w", err)
	}
	return readingFromProto(&pb)
}

func readingToProto(r models.Reading) (*structpb.Struct, error) {
	pb, err := structpb.NewStruct(map[string]interface{}{
		"schema_version": r.SchemaVersion,
		"run_id":         r.RunID,
		"sequence":       r.Sequence,
		"hour":           r.Hour,
		"day":            r.Day,
		"state":          string(r.State),
		"measurement": map[string]interface{}{
			"sbp": r.Measurement.SBP,
			"dbp": r.Measurement.DBP,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build reading message: %w", err)
	}
	return pb, nil
}

func readingFromProto(pb *structpb.Struct) (models.Reading, error) {
	f := pb.GetFields()

	state, err := models.ParseState(f["state"].GetStringValue())
	if err != nil {
		return models.Reading{}, err
	}

	m := f["measurement"].GetStructValue().GetFields()
	if m == nil {
		return models.Reading{}, fmt.Errorf("reading message has no measurement")
	}

	return models.Reading{
		SchemaVersion: f["schema_version"].GetStringValue(),
		RunID:         f["run_id"].GetStringValue(),
		Sequence:      int64(f["sequence"].GetNumberValue()),
		Hour:          f["hour"].GetNumberValue(),
		Day:           int(f["day"].GetNumberValue()),
		State:         state,
		Measurement: models.Measurement{
			SBP: int(m["sbp"].GetNumberValue()),
			DBP: int(m["dbp"].GetNumberValue()),
		},
	}, nil
}
