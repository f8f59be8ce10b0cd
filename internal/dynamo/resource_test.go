package dynamo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResources_PublishAndFind(t *testing.T) {
	rs := NewResources()
	field := Linspace(0, 1, 2)
	rs.PublisherFor(3).Publish("Field", field)

	h, ok := Find[*Array](rs, "Field")
	require.True(t, ok)
	assert.True(t, h.Bound())
	assert.Equal(t, "Field", h.Name())
	assert.Equal(t, 3, h.Owner())

	got, err := h.Get()
	require.NoError(t, err)
	assert.Same(t, field, got)
}

func TestResources_AbsentIsNotAnError(t *testing.T) {
	rs := NewResources()

	h, ok := Find[*Array](rs, "Missing")
	assert.False(t, ok)
	assert.False(t, h.Bound())

	_, err := h.Get()
	assert.True(t, errors.Is(err, ErrUnboundResource))
}

// scalar is a single published number.
type scalar struct {
	value float64
}

func (s *scalar) Rows() int         { return 1 }
func (s *scalar) RowWidth() int     { return 1 }
func (s *scalar) Row(int) []float64 { return []float64{s.value} }

func TestResources_TypeMismatchIsAbsent(t *testing.T) {
	rs := NewResources()
	rs.Publish("Energy", &scalar{value: 2})

	_, ok := Find[*Array](rs, "Energy")
	assert.False(t, ok)

	h, ok := Find[Recordable](rs, "Energy")
	require.True(t, ok)
	v, err := h.Get()
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, v.Row(0))
}

func TestResources_LastPublisherWins(t *testing.T) {
	rs := NewResources()
	first := NewArray(2)
	second := NewArray(3)
	rs.PublisherFor(0).Publish("Field", first)
	rs.PublisherFor(1).Publish("Other", NewArray(1))
	rs.PublisherFor(2).Publish("Field", second)

	owner, ok := rs.Owner("Field")
	require.True(t, ok)
	assert.Equal(t, 2, owner)
	assert.Equal(t, []string{"Field", "Other"}, rs.Names())
	assert.Equal(t, 2, rs.Len())

	h, ok := Find[*Array](rs, "Field")
	require.True(t, ok)
	got, _ := h.Get()
	assert.Same(t, second, got)
}

func TestResources_HandleReadsLiveValue(t *testing.T) {
	rs := NewResources()
	field := NewArray(3)
	rs.Publish("Field", field)

	h, ok := Find[*Array](rs, "Field")
	require.True(t, ok)

	field.Data()[1] = 42
	got, err := h.Get()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 42, 0}, got.Data())
}

func TestResources_HandleIsStaleAfterClose(t *testing.T) {
	rs := NewResources()
	rs.Publish("Field", NewArray(1))
	h, ok := Find[*Array](rs, "Field")
	require.True(t, ok)

	rs.Close()
	assert.True(t, rs.Closed())

	_, err := h.Get()
	assert.True(t, errors.Is(err, ErrStaleHandle))
}

func TestArray_Rows(t *testing.T) {
	m := NewArray(2, 3)
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 3, m.RowWidth())

	m.Row(1)[2] = 7
	assert.Equal(t, 7.0, m.Data()[5])

	v := Linspace(1, 2, 2)
	assert.Equal(t, 1, v.Rows())
	assert.Equal(t, 2, v.RowWidth())
	assert.Equal(t, []float64{1, 2}, v.Row(0))
	assert.Panics(t, func() { v.Row(1) })
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Linspace(0, 1, 3).Data())
	assert.Equal(t, []float64{4}, Linspace(4, 9, 1).Data())
	assert.Empty(t, Linspace(0, 1, 0).Data())
}
