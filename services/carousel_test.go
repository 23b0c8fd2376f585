package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func views(ids ...uint) []OrderView {
	out := make([]OrderView, len(ids))
	for i, id := range ids {
		out[i] = OrderView{OrderID: id}
	}
	return out
}

func currentID(t *testing.T, c *Carousel) uint {
	t.Helper()
	v, err := c.Current()
	require.NoError(t, err)
	return v.OrderID
}

func TestCarouselLoad(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		_, err := NewCarousel(ModeView, nil)
		assert.ErrorIs(t, err, ErrEmptyCollection)
	})

	t.Run("single item collapses cursors", func(t *testing.T) {
		c, err := NewCarousel(ModeView, views(7))
		require.NoError(t, err)
		assert.Equal(t, [3]int{0, 0, 0}, [3]int{c.Prev, c.Cur, c.Next})
		assert.Equal(t, uint(7), currentID(t, c))
	})

	t.Run("several items", func(t *testing.T) {
		c, err := NewCarousel(ModeView, views(1, 2, 3, 4))
		require.NoError(t, err)
		assert.Equal(t, 3, c.Prev)
		assert.Equal(t, 0, c.Cur)
		assert.Equal(t, 1, c.Next)
	})
}

func TestCarouselStepping(t *testing.T) {
	c, err := NewCarousel(ModeView, views(1, 2, 3))
	require.NoError(t, err)

	require.NoError(t, c.StepForward())
	assert.Equal(t, uint(2), currentID(t, c))
	assert.Equal(t, [3]int{0, 1, 2}, [3]int{c.Prev, c.Cur, c.Next})

	require.NoError(t, c.StepForward())
	require.NoError(t, c.StepForward())
	assert.Equal(t, uint(1), currentID(t, c), "stepping N times wraps around")

	require.NoError(t, c.StepBackward())
	assert.Equal(t, uint(3), currentID(t, c))
	assert.Equal(t, [3]int{1, 2, 0}, [3]int{c.Prev, c.Cur, c.Next})
}

func TestCarouselStepRoundTrip(t *testing.T) {
	for n := 2; n <= 6; n++ {
		ids := make([]uint, n)
		for i := range ids {
			ids[i] = uint(i + 1)
		}
		c, err := NewCarousel(ModeView, views(ids...))
		require.NoError(t, err)

		for start := 0; start < n; start++ {
			before := c.Cur
			require.NoError(t, c.StepForward())
			require.NoError(t, c.StepBackward())
			assert.Equal(t, before, c.Cur)

			require.NoError(t, c.StepBackward())
			require.NoError(t, c.StepForward())
			assert.Equal(t, before, c.Cur)

			require.NoError(t, c.StepForward())
		}
	}
}

func TestCarouselDeleteCurrentRecenters(t *testing.T) {
	// [A, B, C] with B current: deleting B leaves C current.
	c, err := NewCarousel(ModeDelete, views(1, 2, 3))
	require.NoError(t, err)
	require.NoError(t, c.StepForward())
	require.Equal(t, 1, c.Cur)

	require.NoError(t, c.DeleteCurrent())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, c.Cur)
	assert.Equal(t, uint(3), currentID(t, c))
	assert.Equal(t, [3]int{0, 1, 0}, [3]int{c.Prev, c.Cur, c.Next})
}

func TestCarouselDeleteLastWraps(t *testing.T) {
	c, err := NewCarousel(ModeDelete, views(1, 2, 3))
	require.NoError(t, err)
	require.NoError(t, c.StepBackward())
	require.Equal(t, uint(3), currentID(t, c))

	require.NoError(t, c.DeleteCurrent())
	assert.Equal(t, 0, c.Cur)
	assert.Equal(t, uint(1), currentID(t, c))
}

func TestCarouselDeleteUntilEmpty(t *testing.T) {
	c, err := NewCarousel(ModeDelete, views(1, 2))
	require.NoError(t, err)

	require.NoError(t, c.DeleteCurrent())
	assert.Equal(t, uint(2), currentID(t, c))
	assert.Equal(t, [3]int{0, 0, 0}, [3]int{c.Prev, c.Cur, c.Next})

	require.NoError(t, c.DeleteCurrent())
	assert.True(t, c.Empty())

	_, err = c.Current()
	assert.ErrorIs(t, err, ErrEmptyCollection)
	assert.ErrorIs(t, c.StepForward(), ErrEmptyCollection)
	assert.ErrorIs(t, c.StepBackward(), ErrEmptyCollection)
	assert.ErrorIs(t, c.DeleteCurrent(), ErrEmptyCollection)
}

func TestCarouselControls(t *testing.T) {
	tests := []struct {
		name         string
		mode         CarouselMode
		items        []OrderView
		expectScroll bool
		middle       Control
		prevLabel    string
		nextLabel    string
	}{
		{
			name:         "view mode shows counter",
			mode:         ModeView,
			items:        views(1, 2, 3),
			expectScroll: true,
			middle:       Control{Label: "1/3", Action: "noop"},
			prevLabel:    "(3/3)",
			nextLabel:    "(2/3)",
		},
		{
			name:         "delete mode shows delete",
			mode:         ModeDelete,
			items:        views(1, 2),
			expectScroll: true,
			middle:       Control{Label: "delete", Action: "delete"},
			prevLabel:    "(2/2)",
			nextLabel:    "(2/2)",
		},
		{
			name:   "single order has no scrolling",
			mode:   ModeDelete,
			items:  views(1),
			middle: Control{Label: "delete", Action: "delete"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCarousel(tt.mode, tt.items)
			require.NoError(t, err)

			controls := c.Controls()
			assert.Equal(t, tt.middle, controls.Middle)
			if !tt.expectScroll {
				assert.Nil(t, controls.Previous)
				assert.Nil(t, controls.Next)
				return
			}
			require.NotNil(t, controls.Previous)
			require.NotNil(t, controls.Next)
			assert.Equal(t, tt.prevLabel, controls.Previous.Label)
			assert.Equal(t, tt.nextLabel, controls.Next.Label)
			assert.Equal(t, "prev", controls.Previous.Action)
			assert.Equal(t, "next", controls.Next.Action)
		})
	}
}
