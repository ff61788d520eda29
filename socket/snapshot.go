package socket

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wippyai/netsock/errors"
)

// Status is a point-in-time view of one socket, for diagnostics.
type Status struct {
	Type          string `msgpack:"type"`
	State         string `msgpack:"state"`
	Buffered      int    `msgpack:"buffered"`
	Window        int    `msgpack:"window"`
	AvailableData int    `msgpack:"available"`
	Handle        uint8  `msgpack:"handle"`
	Leased        bool   `msgpack:"leased,omitempty"`
}

// EncodeSnapshot serializes statuses as msgpack.
func EncodeSnapshot(statuses []Status) ([]byte, error) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(statuses); err != nil {
		return nil, errors.Wrap(errors.PhaseSet, errors.KindIllegal, err, "encode snapshot")
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot parses the output of EncodeSnapshot.
func DecodeSnapshot(data []byte) ([]Status, error) {
	var statuses []Status
	if err := msgpack.Unmarshal(data, &statuses); err != nil {
		return nil, errors.Wrap(errors.PhaseSet, errors.KindBadLength, err, "decode snapshot")
	}
	return statuses, nil
}
