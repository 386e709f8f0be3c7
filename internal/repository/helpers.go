package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// convertSurrealID renders a SurrealDB record id as "table:id"
func convertSurrealID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.RecordID:
		return fmt.Sprintf("%s:%v", v.Table, v.ID)
	case *models.RecordID:
		if v != nil {
			return fmt.Sprintf("%s:%v", v.Table, v.ID)
		}
	case map[string]interface{}:
		if tb, ok := v["tb"].(string); ok {
			return fmt.Sprintf("%s:%v", tb, v["id"])
		}
	}
	return ""
}

// recordID qualifies a client-supplied id with table. Ids that name a
// different table are rejected so a route for one resource can never
// load a row of another.
func recordID(table, id string) (string, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false
	}
	prefix, rest, found := strings.Cut(id, ":")
	if !found {
		return table + ":" + id, true
	}
	if prefix != table || rest == "" {
		return "", false
	}
	return id, true
}

// normalize rewrites SurrealDB driver types into JSON-friendly values:
// record ids become "table:id" strings and datetimes RFC 3339 strings.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case models.RecordID, *models.RecordID:
		return convertSurrealID(t)
	case models.CustomDateTime:
		return t.Time.UTC().Format(time.RFC3339Nano)
	case *models.CustomDateTime:
		if t == nil {
			return nil
		}
		return t.Time.UTC().Format(time.RFC3339Nano)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	}
	return v
}

// decodeRecord converts one raw SurrealDB row into T
func decodeRecord[T any](row interface{}) (*T, error) {
	data, err := json.Marshal(normalize(row))
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return &out, nil
}

// decodeRows converts every row of the first statement result into T
func decodeRows[T any](results []interface{}) ([]*T, error) {
	rows := extractQueryResults(results)
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		item, err := decodeRecord[T](row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// extractQueryResults returns the rows of the first statement response
func extractQueryResults(results []interface{}) []interface{} {
	if len(results) == 0 {
		return nil
	}
	if resp, ok := results[0].(map[string]interface{}); ok {
		if rows, ok := resp["result"].([]interface{}); ok {
			return rows
		}
		if _, ok := resp["status"]; ok {
			return nil
		}
	}
	return results
}

// contentOf encodes v into a CONTENT map, dropping the columns the
// database owns.
func contentOf(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var content map[string]interface{}
	if err := dec.Decode(&content); err != nil {
		return nil, err
	}
	for k, v := range content {
		content[k] = exactNumbers(v)
	}
	delete(content, "id")
	delete(content, "created_on")
	delete(content, "updated_on")
	return content, nil
}

// exactNumbers turns json.Number back into int64 where the value is
// integral so large amounts reach the database unrounded.
func exactNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]interface{}:
		for k, e := range t {
			t[k] = exactNumbers(e)
		}
	case []interface{}:
		for i, e := range t {
			t[i] = exactNumbers(e)
		}
	}
	return v
}

// parseTime parses time from the shapes the driver may hand back
func parseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getStringPtr(m map[string]interface{}, key string) *string {
	if v, ok := m[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

func getTimePtr(m map[string]interface{}, key string) *time.Time {
	if v, ok := m[key]; ok && v != nil {
		if t := parseTime(v); !t.IsZero() {
			return &t
		}
	}
	return nil
}

func getInt(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	}
	return 0
}

func getBool(m map[string]interface{}, key string) bool {
	v, _ := m[key].(bool)
	return v
}

// nilIfEmpty maps "" to NONE so optional columns are unset rather than blank
func nilIfEmpty(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
