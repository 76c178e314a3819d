package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDedupeLatestKeepsLastOccurrence(t *testing.T) {
	t1 := time.Now().Add(-time.Minute)
	t2 := time.Now()

	batch := []UserRecord{
		{ExtID: "steam:1", Honor: 10, At: t1},
		{ExtID: "steam:2", Honor: 5, At: t1},
		{ExtID: "steam:1", Honor: 20, At: t2},
	}

	latest := dedupeLatest(batch)

	assert.Len(t, latest, 2)
	assert.Equal(t, 20, latest["steam:1"].Honor)
	assert.Equal(t, t2, latest["steam:1"].At)
	assert.Equal(t, 5, latest["steam:2"].Honor)
}

func TestDedupeLatestEmptyBatch(t *testing.T) {
	assert.Empty(t, dedupeLatest(nil))
}
