package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbhendricks/KTGclimate-fire/internal/domain"
)

func testDetection() domain.Detection {
	return domain.Detection{
		Date:          time.Date(2015, 9, 1, 0, 0, 0, 0, time.UTC),
		Time:          321,
		Satellite:     "T",
		Lat:           -1.5,
		Lon:           110.2,
		Brightness1:   325.4,
		Brightness2:   296.1,
		Sample:        512,
		FRP:           45.7,
		Confidence:    80,
		DetectionType: "2",
	}
}

func TestSerializeToMessage(t *testing.T) {
	frozen := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { domain.SetClock(nil) })

	msg, err := serializeToMessage("50km", testDetection())
	require.NoError(t, err)

	assert.Equal(t, []byte("50km"), msg.Key)

	var payload detectionMessage
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "20150901", payload.Date)
	assert.Equal(t, 321, payload.Time)
	assert.Equal(t, "T", payload.Satellite)
	assert.Equal(t, -1.5, payload.Lat)
	assert.Equal(t, 110.2, payload.Lon)
	assert.Equal(t, 45.7, payload.FRP)
	assert.Equal(t, 80, payload.Confidence)
	assert.Equal(t, "50km", payload.Radius)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "radius", msg.Headers[0].Key)
	assert.Equal(t, []byte("50km"), msg.Headers[0].Value)
	assert.Equal(t, "published_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(frozen.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_KeyedByRadius(t *testing.T) {
	d := testDetection()

	for _, label := range []string{"5km", "500km"} {
		msg, err := serializeToMessage(label, d)
		require.NoError(t, err)
		assert.Equal(t, []byte(label), msg.Key, "partitioning key follows the buffer label")
	}
}
