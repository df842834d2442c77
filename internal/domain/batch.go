package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeBatch parses an upstream response envelope. Only a body that is not a
// JSON object is an error; a missing or malformed "events" member yields an
// empty batch, and entries that are not objects are skipped.
func DecodeBatch(data []byte) (RawBatch, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return RawBatch{}, fmt.Errorf("decode event batch: %w", err)
	}

	batch := RawBatch{Events: []RawEvent{}}

	var items []json.RawMessage
	if raw, ok := envelope["events"]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			items = nil
		}
	}
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var ev RawEvent
		if err := json.Unmarshal(item, &ev); err != nil {
			continue
		}
		batch.Events = append(batch.Events, ev)
	}

	if raw, ok := envelope["count"]; ok {
		var count any
		if err := json.Unmarshal(raw, &count); err == nil {
			if rate := parseRate(count); rate != nil && *rate >= 0 {
				n := int(*rate)
				batch.Count = &n
			}
		}
	}
	return batch, nil
}

// EncodeBatch marshals a batch back into its envelope form.
func EncodeBatch(batch RawBatch) ([]byte, error) {
	if batch.Events == nil {
		batch.Events = []RawEvent{}
	}
	data, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("encode event batch: %w", err)
	}
	return data, nil
}
