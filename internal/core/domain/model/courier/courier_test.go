package courier_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/courier"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCourier(t *testing.T) {
	t.Run("should create courier offline without location", func(t *testing.T) {
		c, err := courier.NewCourier(kernel.NewUUID(), "Alice")

		require.NoError(t, err)
		require.NoError(t, c.Validate())
		assert.Equal(t, courier.RiderOffline, c.Status())
		assert.Nil(t, c.Location())
		assert.False(t, c.IsMatchable())
	})

	t.Run("should reject empty name", func(t *testing.T) {
		_, err := courier.NewCourier(kernel.NewUUID(), "")

		require.Error(t, err)
	})

	t.Run("should reject invalid id", func(t *testing.T) {
		var zeroID kernel.UUID
		_, err := courier.NewCourier(zeroID, "Alice")

		require.Error(t, err)
	})
}

func TestCourier_MarkBusy(t *testing.T) {
	now := time.Now().UTC()

	t.Run("should claim available courier", func(t *testing.T) {
		c, _ := courier.NewCourier(kernel.NewUUID(), "Alice")
		require.NoError(t, c.MarkAvailable(now))

		err := c.MarkBusy(now)

		require.NoError(t, err)
		assert.Equal(t, courier.RiderBusy, c.Status())
	})

	t.Run("should reject claiming busy courier", func(t *testing.T) {
		c, _ := courier.NewCourier(kernel.NewUUID(), "Alice")
		require.NoError(t, c.MarkAvailable(now))
		require.NoError(t, c.MarkBusy(now))

		err := c.MarkBusy(now)

		require.ErrorIs(t, err, courier.ErrCourierNotAvailable)
	})

	t.Run("should reject claiming offline courier", func(t *testing.T) {
		c, _ := courier.NewCourier(kernel.NewUUID(), "Alice")

		err := c.MarkBusy(now)

		require.ErrorIs(t, err, courier.ErrCourierNotAvailable)
	})
}

func TestCourier_ReportLocation(t *testing.T) {
	now := time.Now().UTC()

	t.Run("first report makes courier matchable once available", func(t *testing.T) {
		c, _ := courier.NewCourier(kernel.NewUUID(), "Alice")
		loc, _ := kernel.NewGeoPoint(14.6, 121.0)

		require.NoError(t, c.ReportLocation(loc, now))
		assert.False(t, c.IsMatchable(), "offline courier is not matchable")

		require.NoError(t, c.MarkAvailable(now))
		assert.True(t, c.IsMatchable())
	})

	t.Run("rejects zero value location", func(t *testing.T) {
		c, _ := courier.NewCourier(kernel.NewUUID(), "Alice")
		var invalid kernel.GeoPoint

		require.Error(t, c.ReportLocation(invalid, now))
	})
}

func TestRestoreCourier(t *testing.T) {
	now := time.Now().UTC()

	t.Run("should restore persisted state", func(t *testing.T) {
		id := kernel.NewUUID()
		loc, _ := kernel.NewGeoPoint(10.0, 120.0)

		c, err := courier.RestoreCourier(id, "Bob", courier.RiderAvailable, &loc, now)

		require.NoError(t, err)
		assert.True(t, c.ID().IsEqual(id))
		assert.True(t, c.IsMatchable())
	})

	t.Run("should reject unknown status", func(t *testing.T) {
		_, err := courier.RestoreCourier(kernel.NewUUID(), "Bob", courier.RiderStatus("bogus"), nil, now)

		require.Error(t, err)
	})

	t.Run("zero value courier fails validation", func(t *testing.T) {
		var c courier.Courier

		require.ErrorIs(t, c.Validate(), courier.ErrCourierIsNotConstructed)
	})
}
