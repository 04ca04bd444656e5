package export

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strconv"

	"sjsage522/catalogworker/internal/catalog"
	apperrors "sjsage522/catalogworker/pkg/errors"
	"sjsage522/catalogworker/services/publisher"
)

// StreamExporter publishes each row as one stream message. The row is
// JSON-encoded and base64-wrapped under the "product" field.
type StreamExporter struct {
	pub           publisher.Publisher
	schemaVersion int
}

// NewStreamExporter creates an exporter on top of pub
func NewStreamExporter(pub publisher.Publisher, schemaVersion int) *StreamExporter {
	return &StreamExporter{pub: pub, schemaVersion: schemaVersion}
}

// Export publishes every row of the batch, then trims the streams
func (s *StreamExporter) Export(ctx context.Context, batch Batch) error {
	if batch.Dataset == nil {
		return nil
	}

	for _, rec := range batch.Dataset.Records() {
		data, err := json.Marshal(rec)
		if err != nil {
			return apperrors.NewPublisher(batch.Query, "encode row", err)
		}

		shardKey, _ := rec[catalog.ColDefaultCode].(string)
		if shardKey == "" {
			shardKey, _ = rec[catalog.ColName].(string)
		}

		values := map[string]interface{}{
			"run_id":         batch.RunID,
			"query":          batch.Query,
			"schema_version": strconv.Itoa(s.schemaVersion),
			"product":        base64.StdEncoding.EncodeToString(data),
		}
		if err := s.pub.Publish(ctx, shardKey, values); err != nil {
			return apperrors.NewPublisher(batch.Query, "publish row", err)
		}
	}

	if err := s.pub.TrimStreams(ctx); err != nil {
		return apperrors.NewPublisher(batch.Query, "trim streams", err)
	}
	return nil
}

// Close closes the underlying publisher
func (s *StreamExporter) Close() error {
	return s.pub.Close()
}
