package ticket

import (
	"errors"
	"slices"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		ticket Ticket
	}{
		{"layer only", Ticket{Layer: "buildings"}},
		{"with filter", Ticket{Layer: "buildings", Filter: "(name ILIKE '%O''Brien%')"}},
		{"with columns", Ticket{Layer: "parcels", Filter: "(a = 1)", Columns: []string{"id", "geom"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.ticket)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got.Layer != tt.ticket.Layer || got.Filter != tt.ticket.Filter || !slices.Equal(got.Columns, tt.ticket.Columns) {
				t.Errorf("expected %+v, got %+v", tt.ticket, got)
			}
		})
	}
}

func TestEncodeRequiresLayer(t *testing.T) {
	if _, err := Encode(Ticket{Filter: "(a = 1)"}); !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("expected ErrInvalidTicket, got %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	enc, _, err := coders()
	if err != nil {
		t.Fatalf("coders failed: %v", err)
	}
	noLayer, _ := msgpack.Marshal(map[string]string{"filter": "x"})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEmptyTicket},
		{"not zstd", []byte(`{"layer":"a"}`), ErrInvalidTicket},
		{"not msgpack", enc.EncodeAll([]byte{0xc1}, nil), ErrInvalidTicket},
		{"missing layer", enc.EncodeAll(noLayer, nil), ErrInvalidTicket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
