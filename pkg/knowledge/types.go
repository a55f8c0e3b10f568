package knowledge

// Control is a compliance control node as stored in the graph. Read-only from
// this service's perspective; absent properties map to empty strings.
type Control struct {
	ControlId    string
	Title        string
	Description  string
	ControlGroup string
}

// Rule is a normative rule attached to a Control via the HAS_RULE edge.
type Rule struct {
	RuleId   string `json:"rule_id"`
	Text     string `json:"text"`
	Platform string `json:"platform"`
}

// DocumentMetadata carries the structured origin of a Document. GroupId is the
// Control's control_group, renamed for the downstream consumer.
type DocumentMetadata struct {
	ControlId string `json:"control_id"`
	Title     string `json:"title"`
	GroupId   string `json:"group_id"`
	Rules     []Rule `json:"rules"`
}

// Document is the normalized unit handed to the answer generator. It lives for
// one retrieval call only and is never cached or persisted.
type Document struct {
	Content  string
	Metadata DocumentMetadata
}
