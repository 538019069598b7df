// Package sink provides durable destinations for the event stream. Every
// broker publish is mirrored here, topic per event type, so downstream
// consumers get the same feed the realtime subscribers see.
package sink

import (
	"fmt"
	"os"
	"sync"

	"github.com/chrisdamba/foodispatch/internal/models"
)

type EventSink interface {
	WriteMessage(topic string, msg []byte) error
}

type ConsoleSink struct{}

func (c *ConsoleSink) WriteMessage(topic string, msg []byte) error {
	output := fmt.Sprintf("[%s] %s\n", topic, string(msg))

	_, err := os.Stdout.Write([]byte(output))
	if err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}

	// Try to sync, but don't return an error if it fails
	_ = os.Stdout.Sync()

	return nil
}

// FileSink appends one line per event to a file per topic. The mutex guards
// the file map and serializes writes; the broker calls WriteMessage from
// every publishing goroutine.
type FileSink struct {
	mu       sync.Mutex
	files    map[string]*os.File
	basePath string // Base directory for output files
}

func NewFileSink(basePath string) *FileSink {
	return &FileSink{
		files:    make(map[string]*os.File),
		basePath: basePath,
	}
}

func (f *FileSink) WriteMessage(topic string, msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.files[topic]; !ok {
		filename := fmt.Sprintf("%s/%s.txt", f.basePath, topic)
		file, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("failed to create file for topic %s: %w", topic, err)
		}
		f.files[topic] = file
	}

	if _, err := f.files[topic].Write(append(msg, '\n')); err != nil {
		return fmt.Errorf("failed to write message to topic %s: %w", topic, err)
	}

	return nil
}

func (f *FileSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, file := range f.files {
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

// ForConfig picks the sink the config asks for: Kafka when enabled, a file
// sink when an output folder is set, console otherwise.
func ForConfig(cfg *models.Config) (EventSink, error) {
	switch {
	case cfg.KafkaEnabled:
		return NewKafkaSink(cfg)
	case cfg.OutputFolder != "":
		if err := os.MkdirAll(cfg.OutputFolder, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output folder: %w", err)
		}
		return NewFileSink(cfg.OutputFolder), nil
	default:
		return &ConsoleSink{}, nil
	}
}
