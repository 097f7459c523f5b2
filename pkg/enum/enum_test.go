package enum

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("string values with their own names", func(t *testing.T) {
		type Color string

		red := New(Color("red"), "RED")
		require.Equal(t, Color("red"), red)

		v, err := ToEnum[Color]("RED")
		require.NoError(t, err)
		require.Equal(t, red, v)

		// Lookup is by name, not by value.
		_, err = ToEnum[Color]("red")
		require.Error(t, err)

		require.Equal(t, "RED", ToString(red))
		require.Equal(t, "", ToString(Color("blue")))
	})

	t.Run("int values", func(t *testing.T) {
		type Level int

		low := New(Level(0), "LOW")
		high := New(Level(1), "HIGH")

		v, err := ToEnum[Level]("HIGH")
		require.NoError(t, err)
		require.Equal(t, high, v)

		require.Equal(t, "LOW", ToString(low))
		require.Equal(t, "", ToString(Level(2)))
	})

	t.Run("unregistered type", func(t *testing.T) {
		type Unused int

		_, err := ToEnum[Unused]("ANY")
		require.Error(t, err)
		require.Equal(t, "", ToString(Unused(0)))
	})
}

func TestNew_TypesWithTheSameName(t *testing.T) {
	var first, second func(string) (string, string, error)

	{
		type Kind int
		New(Kind(0), "ZERO")
		first = func(name string) (string, string, error) {
			_, err := ToEnum[Kind](name)
			return ToString(Kind(0)), ToString(Kind(1)), err
		}
	}

	{
		type Kind int
		New(Kind(1), "ONE")
		second = func(name string) (string, string, error) {
			_, err := ToEnum[Kind](name)
			return ToString(Kind(0)), ToString(Kind(1)), err
		}
	}

	zero, one, err := first("ZERO")
	require.NoError(t, err)
	require.Equal(t, "ZERO", zero)
	require.Equal(t, "", one)
	_, _, err = first("ONE")
	require.Error(t, err)

	zero, one, err = second("ONE")
	require.NoError(t, err)
	require.Equal(t, "", zero)
	require.Equal(t, "ONE", one)
	_, _, err = second("ZERO")
	require.Error(t, err)
}

func TestNew_Concurrent(t *testing.T) {
	type Slot int

	wg := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			New(Slot(i), "SLOT")
			_ = ToString(Slot(i))
		}(i)
	}
	wg.Wait()

	require.Equal(t, "SLOT", ToString(Slot(7)))
	_, err := ToEnum[Slot]("SLOT")
	require.NoError(t, err)
}
