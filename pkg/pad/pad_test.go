package pad

import (
	"os"
	"path/filepath"
	"testing"

	opt "github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxisCodes(t *testing.T) {
	assert.Equal(t, "ABS_X", AxisLeftX.String())
	assert.Equal(t, "ABS_RZ", AxisRightTrigger.String())
	assert.Equal(t, "ABS_0x10", AxisCode(0x10).String())

	assert.True(t, AxisRightY.Known())
	assert.False(t, AxisCode(0x10).Known())
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "*-event-joystick")

	found := discoverIn([]string{pattern})
	assert.True(t, opt.IsNone(found))

	for _, name := range []string{"usb-b-event-joystick", "usb-a-event-joystick", "usb-a-event-kbd"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	found = discoverIn([]string{filepath.Join(dir, "missing-*"), pattern})
	require.True(t, opt.IsSome(found))
	assert.Equal(t, filepath.Join(dir, "usb-a-event-joystick"), found.Value)
}
