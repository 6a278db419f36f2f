// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	apperrors "legalaid-seeder/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed operations.json
var embedded []byte

var (
	defaultOnce sync.Once
	defaultReg  *OperationRegistry
	defaultErr  error
)

func LoadRegistry(path string) (*OperationRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*OperationRegistry, error) {
	var reg OperationRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	return &reg, nil
}

// Default returns the registry compiled into the binary.
func Default() (*OperationRegistry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Parse(embedded)
		if defaultErr == nil {
			defaultErr = defaultReg.Check()
		}
	})
	return defaultReg, defaultErr
}

// MustLookup finds id in the default registry and panics when it is
// missing. Operation handlers call it once at construction.
func MustLookup(id string) *Operation {
	reg, err := Default()
	if err != nil {
		panic(err)
	}
	op, ok := reg.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("registry: unknown operation %q", id))
	}
	return op
}

func (r *OperationRegistry) Lookup(id string) (*Operation, bool) {
	for i := range r.Operations {
		if r.Operations[i].ID == id {
			return &r.Operations[i], true
		}
	}
	return nil, false
}

// Check rejects registries with duplicate ids, missing fields, bad
// timeouts or input schemas that do not compile.
func (r *OperationRegistry) Check() error {
	if len(r.Operations) == 0 {
		return fmt.Errorf("registry contains no operations")
	}

	ids := make(map[string]bool)
	for _, op := range r.Operations {
		if op.ID == "" {
			return fmt.Errorf("operation missing required field: id")
		}
		if ids[op.ID] {
			return fmt.Errorf("duplicate operation id: %s", op.ID)
		}
		ids[op.ID] = true

		if op.DisplayName == "" {
			return fmt.Errorf("operation %s missing required field: displayName", op.ID)
		}
		if op.TaskType == "" {
			return fmt.Errorf("operation %s missing required field: taskType", op.ID)
		}
		if op.Path != "" && !strings.HasPrefix(op.Path, "/") {
			return fmt.Errorf("operation %s path must start with '/'", op.ID)
		}
		if _, err := time.ParseDuration(op.Timeout); err != nil {
			return fmt.Errorf("operation %s has invalid timeout %q: %w", op.ID, op.Timeout, err)
		}
		if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(op.InputSchema)); err != nil {
			return fmt.Errorf("operation %s input schema: %w", op.ID, err)
		}
	}
	return nil
}

// TimeoutDuration falls back to 30s when the registry value is unset.
func (o *Operation) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(o.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Validate checks input, any value that marshals to JSON, against the
// operation's input schema. A violation is a configuration error.
func (o *Operation) Validate(input interface{}) error {
	if len(o.InputSchema) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(o.InputSchema),
		gojsonschema.NewGoLoader(input),
	)
	if err != nil {
		return apperrors.NewConfigurationError(fmt.Sprintf("%s: %v", o.ID, err))
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return apperrors.NewConfigurationError(fmt.Sprintf("%s: %s", o.ID, strings.Join(errs, "; "))).
			WithMetadata("violations", errs)
	}
	return nil
}
