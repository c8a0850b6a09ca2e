package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/rungen"
	"github.com/okian/minestats/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToStdout(t *testing.T) {
	require.NoError(t, logger.Init(logger.WithWriter(io.Discard)))
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-seeds", "2", "-boards", "3x3,4x6"}, &out, io.Discard))

	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, model.RequiredColumns, records[0])
	want := len(rungen.DefaultAlgorithms) * len(rungen.DefaultObjectives) * 2 * 2
	assert.Len(t, records, want+1)

	dims := map[string]bool{}
	col := -1
	for i, c := range records[0] {
		if c == "dims" {
			col = i
		}
	}
	require.GreaterOrEqual(t, col, 0)
	for _, r := range records[1:] {
		dims[r[col]] = true
	}
	assert.Equal(t, map[string]bool{"3x3x6": true, "4x6x6": true}, dims)
}

func TestGenerateToFileIsDeterministic(t *testing.T) {
	require.NoError(t, logger.Init(logger.WithWriter(io.Discard)))
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")
	args := []string{"-seeds", "1", "-rand", "7"}
	require.NoError(t, run(context.Background(), append(args, "-o", a), io.Discard, io.Discard))
	require.NoError(t, run(context.Background(), append(args, "-o", b), io.Discard, io.Discard))

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestFlagErrors(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, run(ctx, []string{"-boards", "3by3"}, io.Discard, io.Discard))
	assert.Error(t, run(ctx, []string{"-boards", "0x3"}, io.Discard, io.Discard))
	assert.Error(t, run(ctx, []string{"-nope"}, io.Discard, io.Discard))
	assert.Error(t, run(ctx, []string{"extra"}, io.Discard, io.Discard))
}
