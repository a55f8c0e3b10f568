package knowledge

import (
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"compliance-agent-be/pkg/graph"
)

// All "trust the external shape" logic lives here: driver rows arrive loosely
// typed (dbtype.Node values, []any collections, nulls from OPTIONAL MATCH) and
// are converted to typed Control/Rule/Document values immediately after the
// query executes.

// nodeProps extracts the property map from a row value. Accepts both the
// driver's node type and a plain map so fakes can feed the mapper directly.
func nodeProps(v any) (map[string]any, bool) {
	switch n := v.(type) {
	case dbtype.Node:
		return n.Props, true
	case *dbtype.Node:
		if n == nil {
			return nil, false
		}
		return n.Props, true
	case map[string]any:
		return n, true
	default:
		return nil, false
	}
}

func stringProp(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

func controlFromRow(row graph.Record) (Control, bool) {
	props, ok := nodeProps(row["c"])
	if !ok {
		return Control{}, false
	}
	return Control{
		ControlId:    stringProp(props, "control_id"),
		Title:        stringProp(props, "title"),
		Description:  stringProp(props, "description"),
		ControlGroup: stringProp(props, "control_group"),
	}, true
}

// rulesFromRow unpacks the collect(r) column. An OPTIONAL MATCH that found no
// rule yields a collection holding a single null; such placeholders are
// dropped so the result contains only genuine Rule records.
func rulesFromRow(row graph.Record) []Rule {
	rules := make([]Rule, 0)
	collected, ok := row["rules"].([]any)
	if !ok {
		return rules
	}
	for _, item := range collected {
		props, ok := nodeProps(item)
		if !ok {
			continue
		}
		rules = append(rules, Rule{
			RuleId:   stringProp(props, "rule_id"),
			Text:     stringProp(props, "text"),
			Platform: stringProp(props, "platform"),
		})
	}
	return rules
}

// buildDocument shapes one matched Control and its rules into a Document.
// Content joins title and description with a blank line, skipping empty parts.
func buildDocument(control Control, rules []Rule) Document {
	parts := make([]string, 0, 2)
	if control.Title != "" {
		parts = append(parts, control.Title)
	}
	if control.Description != "" {
		parts = append(parts, control.Description)
	}

	return Document{
		Content: strings.Join(parts, "\n\n"),
		Metadata: DocumentMetadata{
			ControlId: control.ControlId,
			Title:     control.Title,
			GroupId:   control.ControlGroup,
			Rules:     rules,
		},
	}
}
