package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLogger(minLevel Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, minLevel)
	logger.timeNow = func() time.Time {
		return time.Date(2000, 1, 2, 3, 4, 5, 0, time.UTC)
	}
	return logger, buf
}

func TestLogger(t *testing.T) {
	t.Run("format", func(t *testing.T) {
		logger, buf := newTestLogger(LevelDebug)

		logger.Info().Src("transcode").Msgf("%v records", 3)
		require.Equal(t, "03:04:05 [info] transcode: 3 records\n", buf.String())
	})
	t.Run("noSource", func(t *testing.T) {
		logger, buf := newTestLogger(LevelDebug)

		logger.Error().Msg("fatal")
		require.Equal(t, "03:04:05 [error] fatal\n", buf.String())
	})
	t.Run("minLevel", func(t *testing.T) {
		cases := []struct {
			name     string
			minLevel Level
			send     func(*Logger) *Event
			expected bool
		}{
			{"errorPasses", LevelWarning, (*Logger).Error, true},
			{"warningPasses", LevelWarning, (*Logger).Warning, true},
			{"infoDropped", LevelWarning, (*Logger).Info, false},
			{"debugDropped", LevelInfo, (*Logger).Debug, false},
			{"infoPasses", LevelInfo, (*Logger).Info, true},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				logger, buf := newTestLogger(tc.minLevel)
				tc.send(logger).Msg("x")
				require.Equal(t, tc.expected, buf.Len() != 0)
			})
		}
	})
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "error", LevelError.String())
	require.Equal(t, "warning", LevelWarning.String())
	require.Equal(t, "info", LevelInfo.String())
	require.Equal(t, "debug", LevelDebug.String())
	require.Equal(t, "unknown", Level(0).String())
}
