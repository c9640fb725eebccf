package audit

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyd-tools/gamevault/internal/model"
)

func TestRecord_AssignsULIDWhenIDEmpty(t *testing.T) {
	l := New(Config{}, nil)
	rec := l.Record(model.AuditRecord{Role: "Admin", Operation: "MODIFY", Timestamp: time.Now()})
	assert.NotEmpty(t, rec.ID)
}

func TestHistory_ReturnsNewestFirst(t *testing.T) {
	l := New(Config{}, nil)
	base := time.Now()
	l.Record(model.AuditRecord{Role: "Admin", Timestamp: base})
	l.Record(model.AuditRecord{Role: "Admin", Timestamp: base.Add(time.Second)})
	l.Record(model.AuditRecord{Role: "Admin", Timestamp: base.Add(2 * time.Second)})

	history := l.History("", 0)
	require.Len(t, history, 3)
	assert.True(t, history[0].Timestamp.After(history[1].Timestamp))
	assert.True(t, history[1].Timestamp.After(history[2].Timestamp))
}

func TestHistory_FiltersByRole(t *testing.T) {
	l := New(Config{}, nil)
	l.Record(model.AuditRecord{Role: "Admin", Timestamp: time.Now()})
	l.Record(model.AuditRecord{Role: "Player", Timestamp: time.Now()})

	history := l.History("Player", 0)
	require.Len(t, history, 1)
	assert.Equal(t, "Player", history[0].Role)
}

func TestRecord_DropsOldestBeyondMaxEntries(t *testing.T) {
	l := New(Config{MaxEntries: 3}, nil)
	for i := 0; i < 5; i++ {
		l.Record(model.AuditRecord{Role: "Admin", Timestamp: time.Now().Add(time.Duration(i) * time.Second)})
	}
	history := l.History("", 0)
	assert.Len(t, history, 3)
}

func TestFlush_WritesRecordsToPath(t *testing.T) {
	path := t.TempDir() + "/audit.json"
	l := New(Config{Path: path, FlushEveryN: 1000}, nil)
	l.Record(model.AuditRecord{Role: "Admin", Operation: "CREATE", Timestamp: time.Now()})

	require.NoError(t, l.Flush())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []model.AuditRecord
	require.NoError(t, json.Unmarshal(raw, &records))
	require.Len(t, records, 1)
}

func TestRecord_FlushesAutomaticallyEveryNRecords(t *testing.T) {
	path := t.TempDir() + "/audit.json"
	l := New(Config{Path: path, FlushEveryN: 2}, nil)
	l.Record(model.AuditRecord{Role: "Admin", Timestamp: time.Now()})
	l.Record(model.AuditRecord{Role: "Admin", Timestamp: time.Now()})

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []model.AuditRecord
	require.NoError(t, json.Unmarshal(raw, &records))
	assert.Len(t, records, 2)
}
