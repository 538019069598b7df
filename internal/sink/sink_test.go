package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The broker mirrors events from every publishing goroutine, so the file
// sink must tolerate concurrent writers across topics without corrupting
// lines or the topic map.
func TestFileSinkConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir)

	topics := []string{"partner.assigned", "location.updated", "notification.new"}
	const writers = 4
	const perWriter = 60

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				topic := topics[i%len(topics)]
				msg := fmt.Sprintf(`{"writer":%d,"seq":%d}`, w, i)
				assert.NoError(t, s.WriteMessage(topic, []byte(msg)))
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, s.Close())

	total := 0
	for _, topic := range topics {
		data, err := os.ReadFile(filepath.Join(dir, topic+".txt"))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		for _, line := range lines {
			assert.True(t, strings.HasPrefix(line, `{"writer":`), "corrupted line %q", line)
			assert.True(t, strings.HasSuffix(line, `}`), "corrupted line %q", line)
		}
		total += len(lines)
	}
	assert.Equal(t, writers*perWriter, total)
}

func TestForConfigPicksSink(t *testing.T) {
	s, err := ForConfig(&models.Config{})
	require.NoError(t, err)
	assert.IsType(t, &ConsoleSink{}, s)

	s, err = ForConfig(&models.Config{OutputFolder: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileSink{}, s)
}
