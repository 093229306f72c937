package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateName(t *testing.T) {
	assert.Equal(t, "2024-05-17.csv", candidateName("2024-05-17.csv", 0))
	assert.Equal(t, "2024-05-17_1.csv", candidateName("2024-05-17.csv", 1))
	assert.Equal(t, "test_2024-05-17_12.csv", candidateName("test_2024-05-17.csv", 12))
	assert.Equal(t, "README_2", candidateName("README", 2))
}

func TestAvailableName(t *testing.T) {
	taken := map[string]bool{"a.csv": true, "a_1.csv": true}
	name, err := availableName(context.Background(), "a.csv", func(_ context.Context, n string) (bool, error) {
		return taken[n], nil
	})
	require.NoError(t, err)
	assert.Equal(t, "a_2.csv", name)

	boom := errors.New("head failed")
	_, err = availableName(context.Background(), "a.csv", func(context.Context, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = availableName(context.Background(), "a.csv", func(context.Context, string) (bool, error) {
		return true, nil
	})
	assert.ErrorIs(t, err, ErrNoFreeName)
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, validateName("2024-05-17.csv"))
	for _, name := range []string{"", "..", "../x.csv", "dir/x.csv", `dir\x.csv`, "/abs.csv"} {
		assert.Error(t, validateName(name), name)
	}
}
