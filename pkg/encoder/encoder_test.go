package encoder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/worldEngineDev/mcap-videoify/pkg/raster"
)

type stubEncoder struct {
	width  int
	height int
	closed bool
}

func (e *stubEncoder) Encode(frame *raster.FrameI420) ([]byte, error) {
	return []byte{0xaa}, nil
}

func (e *stubEncoder) Close() {
	e.closed = true
}

func newStubPool() (*Pool, *int) {
	created := 0
	newEncoder := func(width, height int, _ Config) (Encoder, error) {
		created++
		return &stubEncoder{width: width, height: height}, nil
	}
	return NewPool(newEncoder, DefaultConfig()), &created
}

func TestPool(t *testing.T) {
	t.Run("lazyCreate", func(t *testing.T) {
		pool, created := newStubPool()
		require.Equal(t, 0, *created)

		enc, new1, err := pool.GetOrCreate("/cam_video", 64, 48)
		require.NoError(t, err)
		require.True(t, new1)
		require.Equal(t, 1, *created)

		enc2, new2, err := pool.GetOrCreate("/cam_video", 64, 48)
		require.NoError(t, err)
		require.False(t, new2)
		require.Equal(t, 1, *created)
		require.Same(t, enc, enc2)
	})
	t.Run("perTopic", func(t *testing.T) {
		pool, created := newStubPool()

		_, _, err := pool.GetOrCreate("/a_video", 64, 48)
		require.NoError(t, err)
		_, _, err = pool.GetOrCreate("/b_video", 32, 24)
		require.NoError(t, err)
		require.Equal(t, 2, *created)
		require.Equal(t, 2, pool.Count())
	})
	t.Run("dimensionMismatch", func(t *testing.T) {
		pool, _ := newStubPool()

		_, _, err := pool.GetOrCreate("/cam_video", 64, 48)
		require.NoError(t, err)

		_, _, err = pool.GetOrCreate("/cam_video", 32, 24)
		require.ErrorIs(t, err, ErrDimensionMismatch)
	})
	t.Run("createError", func(t *testing.T) {
		mockErr := errors.New("mock")
		pool := NewPool(func(int, int, Config) (Encoder, error) {
			return nil, mockErr
		}, DefaultConfig())

		_, _, err := pool.GetOrCreate("/cam_video", 64, 48)
		require.ErrorIs(t, err, mockErr)

		// A failed creation must not leave an entry behind.
		require.Equal(t, 0, pool.Count())
	})
	t.Run("close", func(t *testing.T) {
		pool, _ := newStubPool()

		enc, _, err := pool.GetOrCreate("/cam_video", 64, 48)
		require.NoError(t, err)

		pool.Close()
		require.True(t, enc.(*stubEncoder).closed)
		require.Equal(t, 0, pool.Count())
	})
}

func TestNewConfig(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		config, err := NewConfig(nil)
		require.NoError(t, err)
		require.Equal(t, DefaultConfig(), config)
	})
	t.Run("partial", func(t *testing.T) {
		config, err := NewConfig([]byte("bitrateBps: 2000000\npreset: veryfast\n"))
		require.NoError(t, err)

		expected := DefaultConfig()
		expected.BitrateBps = 2000000
		expected.Preset = "veryfast"
		require.Equal(t, expected, config)
	})
	t.Run("badYAML", func(t *testing.T) {
		_, err := NewConfig([]byte("bitrateBps: {"))
		require.Error(t, err)
	})
	t.Run("invalid", func(t *testing.T) {
		cases := []string{
			"bitrateBps: -1",
			"gopSize: -5",
			"frameRate: -30",
		}
		for _, tc := range cases {
			t.Run(tc, func(t *testing.T) {
				_, err := NewConfig([]byte(tc))
				require.ErrorIs(t, err, ErrInvalidConfig)
			})
		}
	})
}
