package sysexec

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptRecordsAndReplays(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewScript().
		FailOn("wipefs", errors.New("busy")).
		RespondTo("lsblk", "sda\nsda1")

	require.NoError(t, s.Run(ctx, "partprobe", "/dev/sda"))
	require.Error(t, s.Run(ctx, "wipefs", "-af", "/dev/sda"))

	out, err := s.Output(ctx, "lsblk", "-ln", "-o", "NAME", "/dev/sda")
	require.NoError(t, err)
	assert.Equal(t, "sda\nsda1", out)

	require.NoError(t, s.Chroot(ctx, "/mnt", "locale-gen"))
	require.NoError(t, s.ChrootWithInput(ctx, "root:pw\n", "/mnt", "chpasswd"))

	assert.Equal(t, []string{
		"partprobe /dev/sda",
		"wipefs -af /dev/sda",
		"lsblk -ln -o NAME /dev/sda",
		"chroot:locale-gen",
		"chroot:chpasswd",
	}, s.Lines())

	assert.True(t, s.Issued("chpasswd"))
	assert.False(t, s.Issued("mkfs"))

	calls := s.Calls()
	assert.Equal(t, "/mnt", calls[3].Root)
	assert.Equal(t, "root:pw\n", calls[4].Input)
}

func TestWrapExitErr(t *testing.T) {
	t.Parallel()

	base := errors.New("exit status 1")

	err := wrapExitErr("parted", base, "Error: unrecognised disk label\n")
	require.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "parted")
	assert.Contains(t, err.Error(), "unrecognised disk label")

	err = wrapExitErr("parted", base, "")
	assert.Equal(t, "parted: exit status 1", err.Error())

	long := strings.Repeat("x", 1000) + "tail-marker"
	err = wrapExitErr("pacstrap", base, long)
	assert.Contains(t, err.Error(), "tail-marker")
	assert.Contains(t, err.Error(), "...")
	assert.Less(t, len(err.Error()), 500)
}
