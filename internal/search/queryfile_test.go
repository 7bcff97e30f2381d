// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/policy-engine/pkg/types"
)

func TestQueryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.yaml")
	dr, err := ParseDateRange("2020-01-01", "2021-12-31")
	require.NoError(t, err)
	q := Query{Text: "洗钱", Limit: 5, Filters: types.Filters{Status: []string{"valid"}, DateRange: dr}}
	hits := Search(testIndex(), q, types.SearchConfig{})

	require.NoError(t, WriteQueryFile(path, q, 4, hits))
	qf, err := ReadQueryFile(path)
	require.NoError(t, err)

	assert.Equal(t, len(hits), qf.Summary.Total)
	assert.Equal(t, uint64(4), qf.Summary.Generation)
	assert.WithinDuration(t, time.Now(), qf.Summary.Timestamp, time.Minute)
	assert.Equal(t, "2020-01-01", qf.Query.DateFrom)
	assert.Equal(t, "2021-12-31", qf.Query.DateTo)

	back, err := qf.Query.ToQuery()
	require.NoError(t, err)
	assert.Equal(t, q.Text, back.Text)
	assert.Equal(t, q.Filters.Status, back.Filters.Status)
	assert.Equal(t, titles(hits), titles(Search(testIndex(), back, types.SearchConfig{})))
}

func TestReadQueryFileMissing(t *testing.T) {
	_, err := ReadQueryFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
