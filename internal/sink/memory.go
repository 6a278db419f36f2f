package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"legalaid-seeder/internal/models"
)

// Memory keeps rows in process as JSON. It backs the "memory" sink type
// for rehearsals without a backend.
type Memory struct {
	mu     sync.Mutex
	tables map[string][]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]json.RawMessage)}
}

func (m *Memory) Insert(_ context.Context, table models.TableSpec, rows []interface{}) error {
	encoded := make([]json.RawMessage, 0, len(rows))
	for i, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("insert %s row %d: %w", table.Name, i, err)
		}
		encoded = append(encoded, data)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.Name] = append(m.tables[table.Name], encoded...)
	return nil
}

func (m *Memory) DeleteAll(_ context.Context, table models.TableSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, table.Name)
	return nil
}

func (m *Memory) Select(_ context.Context, table models.TableSpec, dest interface{}) error {
	m.mu.Lock()
	rows := append([]json.RawMessage{}, m.tables[table.Name]...)
	m.mu.Unlock()

	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Count returns the number of rows held for table.
func (m *Memory) Count(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table])
}
