package guide

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	maxRecords    = 10
	promptRecords = 5 // how many recent walks to include in the Haiku prompt
)

// WalkRecord captures where one completed walk went.
type WalkRecord struct {
	At       time.Time `json:"at"`
	Region   string    `json:"region"`
	Biome    string    `json:"biome"`
	Featured string    `json:"featured"`
	Source   string    `json:"source"`
}

// Memory is a ring of recent walks, kept on disk between runs so the
// guide wanders somewhere new.
type Memory struct {
	Records []WalkRecord `json:"records"`
}

// LoadMemory reads the memory file. Returns empty memory if not found.
func LoadMemory(path string) *Memory {
	if path == "" {
		return &Memory{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &Memory{}
	}
	var mem Memory
	if err := json.Unmarshal(data, &mem); err != nil {
		slog.Warn("guide memory corrupted, starting fresh", "error", err)
		return &Memory{}
	}
	return &mem
}

// Save writes the memory to path.
func (m *Memory) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal guide memory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write guide memory: %w", err)
	}
	return nil
}

// Record adds a walk, trimming to maxRecords.
func (m *Memory) Record(r WalkRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// Visited reports whether any remembered walk went through the region.
func (m *Memory) Visited(region string) bool {
	if m == nil {
		return false
	}
	for _, r := range m.Records {
		if r.Region == region {
			return true
		}
	}
	return false
}

// FormatForPrompt summarizes the last few walks for the Haiku prompt.
func (m *Memory) FormatForPrompt() string {
	if m == nil || len(m.Records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Your recent journeys:\n")

	start := 0
	if len(m.Records) > promptRecords {
		start = len(m.Records) - promptRecords
	}
	for _, r := range m.Records[start:] {
		fmt.Fprintf(&b, "- %s / %s / %s\n", r.Region, r.Biome, r.Featured)
	}
	return b.String()
}
