package source

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/folio/errors"
)

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"json list", FormatJSON, `[{"id":"a","title":"Alpha","category":"ml","weight":3,"tags":{"role":["lead"]}},{"id":"b"}]`},
		{"json object", FormatJSON, `{"records":[{"id":"a","title":"Alpha","category":"ml","weight":3,"tags":{"role":["lead"]}},{"id":"b"}]}`},
		{"yaml list", FormatYAML, "- id: a\n  title: Alpha\n  category: ml\n  weight: 3\n  tags:\n    role: [lead]\n- id: b\n"},
		{"yaml object", FormatYAML, "records:\n  - id: a\n    title: Alpha\n    category: ml\n    weight: 3\n    tags:\n      role: [lead]\n  - id: b\n"},
		{"toml", FormatTOML, "[[records]]\nid = \"a\"\ntitle = \"Alpha\"\ncategory = \"ml\"\nweight = 3.0\n[records.tags]\nrole = [\"lead\"]\n\n[[records]]\nid = \"b\"\n"},
		{"csv", FormatCSV, "id,title,category,weight,tag.role\na,Alpha,ml,3,lead\nb,,,,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Decode(tt.format, []byte(tt.data))
			require.NoError(t, err)
			require.Len(t, ds.Records, 2)
			a := ds.Records[0]
			assert.Equal(t, "a", a.ID)
			assert.Equal(t, "Alpha", a.Label())
			assert.Equal(t, "ml", a.Category)
			assert.Equal(t, 3.0, a.Weight)
			assert.Equal(t, []string{"lead"}, a.Tags["role"])
			assert.Equal(t, "b", ds.Records[1].Label())
		})
	}
}

func TestDecodeCSVExtras(t *testing.T) {
	ds, err := Decode(FormatCSV, []byte("id,links,client\nx,a; b ;,Acme\n"))
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, []string{"a", "b"}, ds.Records[0].Links)
	assert.Equal(t, "Acme", ds.Records[0].Meta["client"])
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"missing id", FormatJSON, `[{"title":"x"}]`},
		{"duplicate id", FormatJSON, `[{"id":"a"},{"id":"a"}]`},
		{"negative weight", FormatYAML, "- id: a\n  weight: -1\n"},
		{"bad date", FormatJSON, `[{"id":"a","start":"last spring"}]`},
		{"bad csv weight", FormatCSV, "id,weight\na,heavy\n"},
		{"broken json", FormatJSON, `[{"id":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.format, []byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestDecodeDiagramKeepsText(t *testing.T) {
	ds, err := Decode(FormatDiagram, []byte("graph TD\nA-->B\n"))
	require.NoError(t, err)
	assert.Equal(t, "graph TD\nA-->B\n", ds.Text)
	assert.Empty(t, ds.Records)
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"a.json": FormatJSON, "a.YML": FormatYAML, "a.yaml": FormatYAML,
		"a.toml": FormatTOML, "a.csv": FormatCSV, "flow.mmd": FormatDiagram,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatOf("a.xlsx")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestRecordDates(t *testing.T) {
	r := Record{ID: "a", Start: "2020-01", End: "2021-01"}
	require.NoError(t, r.Validate())
	assert.InDelta(t, 12.0, r.Months(), 0.1)

	start, ok := r.StartTime()
	require.True(t, ok)
	assert.Equal(t, 2020, start.Year())

	assert.Zero(t, Record{ID: "b", Start: "2020"}.Months())
	assert.Zero(t, Record{ID: "c", Start: "2021", End: "2020"}.Months())
	_, ok = Record{ID: "d"}.StartTime()
	assert.False(t, ok)
}

func TestReadFileNamesDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: a\n"), 0o644))
	ds, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "projects", ds.Name)
	assert.Len(t, ds.Records, 1)
}

func TestStaticIsReady(t *testing.T) {
	var src Source = Static{Name: "x"}
	ds, ok := src.Snapshot()
	assert.True(t, ok)
	assert.Equal(t, "x", ds.Name)
}

func TestLoaderNotReadyUntilFetched(t *testing.T) {
	release := make(chan struct{})
	l := NewLoader(func(ctx context.Context) (Dataset, error) {
		<-release
		return Dataset{Name: "late"}, nil
	})
	l.Start(context.Background())

	_, ok := l.Snapshot()
	assert.False(t, ok, "snapshot must not block or report partial data")

	close(release)
	require.NoError(t, l.Wait(context.Background()))
	ds, ok := l.Snapshot()
	assert.True(t, ok)
	assert.Equal(t, "late", ds.Name)
}

func TestLoaderKeepsLastGoodOnError(t *testing.T) {
	var mu sync.Mutex
	fail := false
	l := NewLoader(func(ctx context.Context) (Dataset, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return Dataset{}, errors.New("disk gone")
		}
		return Dataset{Name: "good"}, nil
	})
	changes := make(chan Dataset, 4)
	l.OnChange(func(ds Dataset) { changes <- ds })
	l.Start(context.Background())
	require.NoError(t, l.Wait(context.Background()))
	<-changes

	mu.Lock()
	fail = true
	mu.Unlock()
	l.Reload(context.Background())
	require.Eventually(t, func() bool { return l.Err() != nil }, time.Second, 5*time.Millisecond)

	ds, ok := l.Snapshot()
	assert.True(t, ok)
	assert.Equal(t, "good", ds.Name)
	assert.Empty(t, changes)
}

func TestLoaderWaitReportsFirstFailure(t *testing.T) {
	l := NewLoader(func(ctx context.Context) (Dataset, error) {
		return Dataset{}, errors.New("boom")
	})
	l.Start(context.Background())
	err := l.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestLoaderDiscardsSupersededFetch(t *testing.T) {
	slow := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	l := NewLoader(func(ctx context.Context) (Dataset, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			<-slow
			return Dataset{Name: "stale"}, nil
		}
		return Dataset{Name: "fresh"}, nil
	})
	l.Start(context.Background())
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, time.Millisecond)
	l.Reload(context.Background())
	require.NoError(t, l.Wait(context.Background()))
	close(slow)

	time.Sleep(20 * time.Millisecond)
	ds, _ := l.Snapshot()
	assert.Equal(t, "fresh", ds.Name)
}

func TestWaitHonorsContext(t *testing.T) {
	l := NewLoader(func(ctx context.Context) (Dataset, error) {
		<-ctx.Done()
		return Dataset{}, ctx.Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	l.Start(ctx)
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer waitCancel()
	assert.ErrorIs(t, l.Wait(waitCtx), context.DeadlineExceeded)
	cancel()
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	var mu sync.Mutex
	var seen []string
	w, err := NewWatcher([]string{path}, 50*time.Millisecond, func(p string) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	})
	require.NoError(t, err)
	w.Start()
	defer w.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`[{"id":"a"}]`), 0o644))
	}
	require.NoError(t, os.WriteFile(other, []byte("[]"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	abs, _ := filepath.Abs(path)
	assert.Equal(t, []string{abs}, seen)
}

func TestIsBackupFile(t *testing.T) {
	assert.True(t, isBackupFile("/x/data.json~"))
	assert.True(t, isBackupFile(".data.json.swp"))
	assert.True(t, isBackupFile(".#data.json"))
	assert.False(t, isBackupFile("data.json"))
}
