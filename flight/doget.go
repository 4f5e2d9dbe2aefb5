package flight

import (
	"errors"
	"io"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/layerfilter/internal/recovery"
	"github.com/hugr-lab/layerfilter/internal/ticket"
)

// DoGet streams the records of one layer matching the ticket filter.
//
// The ticket must be produced by ticket.Encode. Layer access is checked by
// the auth stream interceptor when the ticket is received. The handler:
//  1. Decodes the ticket to get layer, filter and projection
//  2. Scans the layer through the LayerStore
//  3. Streams record batches using Arrow IPC format
func (s *Server) DoGet(tkt *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	ctx := stream.Context()

	req, err := ticket.Decode(tkt.GetTicket())
	if err != nil {
		s.logger.Warn("Failed to decode ticket", "error", err)
		return status.Errorf(codes.InvalidArgument, "invalid ticket: %v", err)
	}

	s.logger.Debug("DoGet request",
		"layer", req.Layer,
		"filter_len", len(req.Filter),
		"columns", req.Columns,
	)

	reader, err := recovery.RecoverToValue(s.logger, "Scan", func() (array.RecordReader, error) {
		return s.store.Scan(ctx, req.Layer, req.Filter, req.Columns)
	})
	if err != nil {
		s.logger.Error("Failed to scan layer", "layer", req.Layer, "error", err)
		return storeStatus(err, req.Layer)
	}
	if reader == nil {
		return status.Errorf(codes.Internal, "layer %s returned nil reader", req.Layer)
	}
	defer reader.Release()

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(reader.Schema()), ipc.WithAllocator(s.allocator))
	defer writer.Close()

	batches := 0
	rows := int64(0)
	for reader.Next() {
		if err := ctx.Err(); err != nil {
			s.logger.Debug("DoGet cancelled by client",
				"layer", req.Layer,
				"batches_sent", batches,
			)
			return status.Error(codes.Canceled, "request cancelled")
		}

		record := reader.RecordBatch()
		if err := writer.Write(record); err != nil {
			s.logger.Error("Failed to write record batch",
				"layer", req.Layer,
				"batch", batches+1,
				"error", err,
			)
			return status.Errorf(codes.Internal, "failed to write batch %d: %v", batches+1, err)
		}
		batches++
		rows += record.NumRows()
	}
	if err := reader.Err(); err != nil && !errors.Is(err, io.EOF) {
		s.logger.Error("RecordReader error during iteration",
			"layer", req.Layer,
			"batch", batches,
			"error", err,
		)
		return status.Errorf(codes.Internal, "scan error after batch %d: %v", batches, err)
	}

	s.logger.Debug("DoGet completed",
		"layer", req.Layer,
		"batches_sent", batches,
		"total_rows", rows,
	)
	return nil
}
