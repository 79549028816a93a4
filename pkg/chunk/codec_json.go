// pkg/chunk/codec_json.go

package chunk

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// JSONCodec encodes a group of records as one JSON array. Numbers come
// back as float64, which is the usual JSON trade-off; callers that need
// exact integers should store them as strings.
type JSONCodec struct{}

func (JSONCodec) Encode(recs []Record) ([]byte, error) {
	data, err := json.Marshal(recs)
	if err != nil {
		return nil, errors.Wrap(err, "encode records")
	}
	return data, nil
}

func (JSONCodec) Decode(data []byte) ([]Record, error) {
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, errors.Wrap(err, "decode records")
	}
	return recs, nil
}
