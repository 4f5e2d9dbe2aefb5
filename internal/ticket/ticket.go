// Package ticket encodes Flight tickets requesting filtered layer features.
//
// A ticket is a MessagePack map compressed with ZStandard:
//
//	{"layer": "buildings", "filter": "(height > 10)", "columns": ["id", "geom"]}
package ticket

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrEmptyTicket indicates a ticket without payload.
	ErrEmptyTicket = errors.New("empty ticket")

	// ErrInvalidTicket indicates a payload that is not a valid ticket.
	ErrInvalidTicket = errors.New("invalid ticket")
)

// Ticket identifies a filtered scan of one layer.
type Ticket struct {
	// Layer is the layer to scan. REQUIRED.
	Layer string `msgpack:"layer"`

	// Filter is the CQL filter; empty means unfiltered.
	Filter string `msgpack:"filter,omitempty"`

	// Columns projects the scan. Empty means all columns.
	Columns []string `msgpack:"columns,omitempty"`
}

// Shared coders. EncodeAll and DecodeAll are safe for concurrent use.
var (
	coderOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	coderErr  error
)

func coders() (*zstd.Encoder, *zstd.Decoder, error) {
	coderOnce.Do(func() {
		encoder, coderErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if coderErr != nil {
			coderErr = fmt.Errorf("failed to create zstd encoder: %w", coderErr)
			return
		}
		decoder, coderErr = zstd.NewReader(nil)
		if coderErr != nil {
			coderErr = fmt.Errorf("failed to create zstd decoder: %w", coderErr)
		}
	})
	return encoder, decoder, coderErr
}

// Encode serializes t into ticket bytes.
func Encode(t Ticket) ([]byte, error) {
	if t.Layer == "" {
		return nil, fmt.Errorf("%w: layer is required", ErrInvalidTicket)
	}
	data, err := msgpack.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}
	enc, _, err := coders()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

// Decode parses ticket bytes produced by Encode.
func Decode(data []byte) (Ticket, error) {
	if len(data) == 0 {
		return Ticket{}, ErrEmptyTicket
	}
	_, dec, err := coders()
	if err != nil {
		return Ticket{}, err
	}
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return Ticket{}, fmt.Errorf("%w: failed to decompress: %v", ErrInvalidTicket, err)
	}

	var t Ticket
	if err := msgpack.Unmarshal(raw, &t); err != nil {
		return Ticket{}, fmt.Errorf("%w: failed to decode MessagePack: %v", ErrInvalidTicket, err)
	}
	if t.Layer == "" {
		return Ticket{}, fmt.Errorf("%w: layer is required", ErrInvalidTicket)
	}
	return t, nil
}
