// Package calendar turns extracted tasks into calendar events, either by
// writing them into a calendar store or by producing an importable .ics file.
package calendar

import (
	"context"
	"log"

	"voicetasks/internal/config"
	"voicetasks/internal/model"
)

// Export modes
const (
	ModeDirect = "direct"
	ModeFile   = "file"
)

// Result aggregates one export. Payload and FilePath are set in file mode only.
type Result struct {
	Mode       string   `json:"mode"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	EventIDs   []string `json:"event_ids,omitempty"`
	FilePath   string   `json:"file_path,omitempty"`
	FileName   string   `json:"file_name,omitempty"`
	Payload    []byte   `json:"-"`
}

// Exporter writes a task list as calendar events.
type Exporter interface {
	// ExportAll rejects an empty task list with model.ErrEmptyInput before touching any backend.
	ExportAll(ctx context.Context, tasks []model.Task) (*Result, error)
	Mode() string
}

// NewFromConfig picks direct-write mode when a calendar store is available,
// file-export mode otherwise. The returned func releases backend resources.
func NewFromConfig(cfg *config.Config) (Exporter, func(), error) {
	noop := func() {}

	switch cfg.CalendarBackend {
	case config.CalendarMemory:
		log.Printf("[Calendar] Direct-write mode with in-memory calendar store")
		return NewDirectExporter(NewMemoryStore(), cfg.CalendarPrimaryProvider), noop, nil

	case config.CalendarMQTT:
		client, err := ConnectMQTT(cfg)
		if err != nil {
			log.Printf("[Calendar] Warning: device bridge unavailable (%v), falling back to file export", err)
			return NewFileExporter(cfg.ExportDir), noop, nil
		}
		store, err := NewMQTTStore(client, cfg.MQTTTopicPrefix)
		if err != nil {
			client.Disconnect(250)
			log.Printf("[Calendar] Warning: device bridge subscription failed (%v), falling back to file export", err)
			return NewFileExporter(cfg.ExportDir), noop, nil
		}
		log.Printf("[Calendar] Direct-write mode through MQTT device bridge (%s)", cfg.MQTTBroker)
		return NewDirectExporter(store, cfg.CalendarPrimaryProvider), func() { client.Disconnect(250) }, nil

	default:
		log.Printf("[Calendar] File-export mode (dir: %s)", cfg.ExportDir)
		return NewFileExporter(cfg.ExportDir), noop, nil
	}
}
