package pushfeed

import (
	"testing"

	"github.com/bartek5186/www2pdv/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	syncCalls int
	payloads  []store.OrderPayload
}

func (f *fakeEngine) TryStartSync() { f.syncCalls++ }

func (f *fakeEngine) ExportSingle(p store.OrderPayload) error {
	f.payloads = append(f.payloads, p)
	return nil
}

func newTestClient() (*Client, *fakeEngine) {
	eng := &fakeEngine{}
	return &Client{log: zerolog.Nop(), eng: eng, url: "ws://example/feed"}, eng
}

func TestHandleNewOrderTriggersSync(t *testing.T) {
	c, eng := newTestClient()

	c.handle([]byte(`{"action":"new_order","order_id":42}`))

	assert.Equal(t, 1, eng.syncCalls)
	assert.Empty(t, eng.payloads)
}

func TestHandleOrderPayloadExportsDirectly(t *testing.T) {
	c, eng := newTestClient()

	c.handle([]byte(`{"action":"order_payload","order":{"order_id":7,"order_number":107,"items":[{"quantity":2,"item_price":5.5}]}}`))

	assert.Zero(t, eng.syncCalls)
	require.Len(t, eng.payloads, 1)
	assert.Equal(t, int64(7), eng.payloads[0].OrderID)
	require.Len(t, eng.payloads[0].Items, 1)
	assert.Equal(t, 2, eng.payloads[0].Items[0].Quantity)
}

func TestHandleMalformedMessageIsIgnored(t *testing.T) {
	c, eng := newTestClient()

	// nierozpoznany wariant
	c.handle([]byte(`{"foo": 1}`))
	// zepsuty JSON
	c.handle([]byte(`{nie-json`))
	// new_order bez identyfikatora
	c.handle([]byte(`{"action":"new_order"}`))
	// order_payload bez ładunku
	c.handle([]byte(`{"action":"order_payload"}`))

	assert.Zero(t, eng.syncCalls)
	assert.Empty(t, eng.payloads)
}
