package jira

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// Input formats accepted by DecodeFile.
const (
	InputRecords = "records"
	InputJira    = "jira"
)

var (
	recordSchemaOnce sync.Once
	recordSchema     *jsonschema.Resolved
	recordSchemaErr  error
)

// RecordSchema returns the resolved JSON schema of a record file (an array of Record).
func RecordSchema() (*jsonschema.Resolved, error) {
	recordSchemaOnce.Do(func() {
		schema, err := jsonschema.For[[]Record](nil)
		if err != nil {
			recordSchemaErr = fmt.Errorf("failed to derive record schema: %w", err)
			return
		}
		recordSchema, recordSchemaErr = schema.Resolve(nil)
	})
	return recordSchema, recordSchemaErr
}

// DecodeRecords validates data against the record schema and decodes it.
func DecodeRecords(data []byte) ([]Record, error) {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := RecordSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("record file does not match schema: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// DecodeSearchResponse decodes a Jira search response and maps it to records.
func DecodeSearchResponse(data []byte) ([]Record, error) {
	var resp SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	records := MapSearchResponse(resp)
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// DecodeFile reads a file in the given input format.
func DecodeFile(path, input string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch input {
	case InputRecords, "":
		return DecodeRecords(data)
	case InputJira:
		return DecodeSearchResponse(data)
	default:
		return nil, fmt.Errorf("unknown input format %q (want %s or %s)", input, InputRecords, InputJira)
	}
}
