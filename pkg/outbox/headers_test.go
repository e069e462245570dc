package outbox_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tuanvumaihuynh/inventory-tracker/pkg/correlationid"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/outbox"
)

func TestHeadersRoundTrip(t *testing.T) {
	ctx := correlationid.NewContext(context.Background(), "corr-1")

	headers := outbox.BuildHeaders(ctx)
	require.Equal(t, "corr-1", headers[correlationid.Header])

	rec := &kgo.Record{}
	for k, v := range headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	got, ok := correlationid.FromContext(outbox.ContextFromRecord(context.Background(), rec))
	assert.True(t, ok)
	assert.Equal(t, "corr-1", got)
}
