// Package codec provides the gRPC codec used by the objrepo services.
//
// Messages are plain Go structs encoded as JSON. Protobuf messages such as
// emptypb.Empty are encoded with protojson so both kinds can share a call.
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Name is the gRPC content-subtype of the codec.
const Name = "json"

// JSON implements encoding.Codec.
type JSON struct{}

func init() {
	encoding.RegisterCodec(JSON{})
}

func (JSON) Name() string { return Name }

func (JSON) Marshal(v interface{}) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec marshal %T: %w", v, err)
	}
	return b, nil
}

func (JSON) Unmarshal(data []byte, v interface{}) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.Unmarshal(data, m)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec unmarshal %T: %w", v, err)
	}
	return nil
}
