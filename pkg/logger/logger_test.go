package logger

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeCollection struct {
	mu   sync.Mutex
	docs []LogDocument
}

func (f *fakeCollection) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range docs {
		f.docs = append(f.docs, d.(LogDocument))
	}
	return &mongo.InsertManyResult{}, nil
}

func TestWithCtxFallsBackToBase(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))

	reqLog := L.With("request_id", "abc")
	ctx := InjectLogger(context.Background(), reqLog)
	assert.Same(t, reqLog, WithCtx(ctx))
}

func TestSetupProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "production")
	t.Cleanup(func() { Setup(&bytes.Buffer{}, "local") })

	Debug("hidden")
	Info("invoice completed", "invoice_id", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"invoice completed"`)
	assert.Contains(t, out, `"invoice_id":7`)
}

func TestMongoHandlerFlushesOnClose(t *testing.T) {
	col := &fakeCollection{}
	h := newMongoHandler(col, slog.LevelWarn)

	var buf bytes.Buffer
	Setup(&buf, "local", h)
	t.Cleanup(func() { Setup(&bytes.Buffer{}, "local") })

	L.With("request_id", "r-1").WithGroup("stock").Warn("insufficient stock", "product_id", 3)
	L.Info("below threshold, not shipped")

	h.Close()
	h.Close()

	col.mu.Lock()
	defer col.mu.Unlock()
	require.Len(t, col.docs, 1)
	assert.Equal(t, "insufficient stock", col.docs[0].Msg)
	assert.Equal(t, "r-1", col.docs[0].RequestID)
	assert.EqualValues(t, 3, col.docs[0].Attrs["stock.product_id"])
	assert.Contains(t, buf.String(), "below threshold")
}
