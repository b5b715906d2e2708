package observer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnemet/deckforge/internal/config"
	"github.com/gnemet/deckforge/internal/generator"
	"github.com/gnemet/deckforge/internal/logger"
)

type fakeGenerator struct {
	mu   sync.Mutex
	reqs []generator.Request
	fail string
}

func (f *fakeGenerator) Generate(_ context.Context, req generator.Request) (generator.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if req.Topic == f.fail {
		return generator.Result{}, errors.New("llm down")
	}
	return generator.Result{Path: req.Topic + ".pptx"}, nil
}

func (f *fakeGenerator) requests() []generator.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]generator.Request(nil), f.reqs...)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestParseTopicFile(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want generator.Request
	}{
		{"topic only", "Coffee\n", generator.Request{Topic: "Coffee"}},
		{"leading blanks", "\n\n  Deep sea  \n", generator.Request{Topic: "Deep sea"}},
		{"style", "Coffee\nStyle: Dark\n", generator.Request{Topic: "Coffee", Style: "dark"}},
		{"not a style line", "Coffee\nmore notes\nstyle: dark", generator.Request{Topic: "Coffee"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTopicFile([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseTopicFile([]byte("  \n\n"))
	assert.ErrorIs(t, err, generator.ErrEmptyTopic)
}

func TestIsTopicFile(t *testing.T) {
	assert.True(t, IsTopicFile("inbox/coffee.topic"))
	assert.True(t, IsTopicFile("inbox/COFFEE.TXT"))
	assert.False(t, IsTopicFile("inbox/coffee.pptx"))
	assert.False(t, IsTopicFile("inbox/.hidden.txt"))
}

func TestObserver_ProcessesInbox(t *testing.T) {
	inbox := t.TempDir()
	done := filepath.Join(inbox, "done")
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "first.topic"), []byte("Coffee\nstyle: green\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "notes.md"), []byte("ignored"), 0644))

	gen := &fakeGenerator{fail: "Broken"}
	o := NewObserver(config.WatchConfig{Inbox: inbox, Done: done, Debounce: 20 * time.Millisecond}, gen, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- o.Start(ctx) }()

	// initial scan
	require.Eventually(t, func() bool {
		return exists(filepath.Join(done, "first.topic"))
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []generator.Request{{Topic: "Coffee", Style: "green"}}, gen.requests())
	assert.True(t, exists(filepath.Join(inbox, "notes.md")))

	// watched
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "second.txt"), []byte("Tides"), 0644))
	require.Eventually(t, func() bool {
		return exists(filepath.Join(done, "second.txt"))
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(inbox, "third.txt"), []byte("Broken"), 0644))
	require.Eventually(t, func() bool {
		return exists(filepath.Join(done, "third.txt.failed"))
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("observer did not stop")
	}

	var topics []string
	for _, r := range gen.requests() {
		topics = append(topics, r.Topic)
	}
	assert.Contains(t, topics, "Tides")
	assert.Contains(t, topics, "Broken")
}

func TestObserver_RequiresInbox(t *testing.T) {
	o := NewObserver(config.WatchConfig{}, &fakeGenerator{}, nil)
	assert.Error(t, o.Start(context.Background()))
}
