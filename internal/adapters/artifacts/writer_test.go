package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w := NewDirWriter(dir)

	path, err := w.Write(context.Background(), "Payslip_October.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Payslip_October.pdf"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(got))
}

func TestDirWriter_StaysInDirectory(t *testing.T) {
	dir := t.TempDir()
	w := NewDirWriter(dir)

	path, err := w.Write(context.Background(), "../../escape.pdf", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.pdf"), path)
}

func TestDirWriter_Rejects(t *testing.T) {
	dir := t.TempDir()
	w := NewDirWriter(dir)

	_, err := w.Write(context.Background(), "", []byte("x"))
	require.Error(t, err)

	_, err = w.Write(context.Background(), "a.pdf", nil)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = w.Write(ctx, "a.pdf", []byte("x"))
	require.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
