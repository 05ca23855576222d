package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckLocalFilesystem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fsType  string
		wantErr bool
	}{
		{name: "ext4 magic", fsType: "0xef53"},
		{name: "apfs", fsType: "apfs"},
		{name: "unknown platform", fsType: ""},
		{name: "nfs", fsType: "nfs", wantErr: true},
		{name: "smbfs uppercase", fsType: "SMBFS", wantErr: true},
		{name: "cifs padded", fsType: " cifs ", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dbPath := filepath.Join(t.TempDir(), "biobridge.db")
			err := checkLocalFilesystem(dbPath, func(string) (string, error) { return tt.fsType, nil })
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrNetworkFilesystem)
				assert.Contains(t, err.Error(), "state.path")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckLocalFilesystemInspectsNearestAncestor(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	var inspected string
	err := checkLocalFilesystem(filepath.Join(root, "a", "b", "biobridge.db"), func(p string) (string, error) {
		inspected = p
		return "apfs", nil
	})
	require.NoError(t, err)
	assert.Equal(t, root, inspected)
}

func TestCheckLocalFilesystemDetectorError(t *testing.T) {
	t.Parallel()

	err := checkLocalFilesystem(filepath.Join(t.TempDir(), "x.db"), func(string) (string, error) {
		return "", errors.New("statfs denied")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statfs denied")
	assert.NotErrorIs(t, err, ErrNetworkFilesystem)
}

func TestOpenSQLiteMemorySkipsFilesystemCheck(t *testing.T) {
	db, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}
