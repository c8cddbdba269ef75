package airtable

import (
	"github.com/shakhna/portal/core/school"
)

// Typed accessors over a record's loosely-typed field map. Missing or
// malformed values read as their zero/empty shape — parse trouble in cached
// metadata is recovered locally, never raised.

func (r Record) Str(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

func (r Record) Bool(key string) bool {
	b, _ := r.Fields[key].(bool)
	return b
}

// IDs reads a linked-record identifier list.
func (r Record) IDs(key string) []string {
	raw, ok := r.Fields[key].([]interface{})
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r Record) Date(key string) school.Date {
	return school.ParseDate(r.Str(key))
}

// Attachments reads an attachment list; entries without a url are dropped.
func (r Record) Attachments(key string) []school.Attachment {
	raw, ok := r.Fields[key].([]interface{})
	if !ok {
		return nil
	}
	atts := make([]school.Attachment, 0, len(raw))
	for _, v := range raw {
		entry, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		u, _ := entry["url"].(string)
		if u == "" {
			continue
		}
		name, _ := entry["filename"].(string)
		atts = append(atts, school.Attachment{URL: u, Filename: name})
	}
	return atts
}
