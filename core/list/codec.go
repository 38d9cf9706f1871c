package list

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Token actions understood by HandleToken.
const (
	ActionDetail = "detail"
	ActionPrev   = "prev"
	ActionNext   = "next"
)

// Token is the structured callback payload carried by every button. Index and
// Page are set for detail tokens only; both are optional on the wire and
// default to zero when absent.
type Token struct {
	Action string `json:"action"`
	Index  int    `json:"index,omitempty"`
	Page   int    `json:"page,omitempty"`
}

// EncodeToken serializes a token with the default JSON codec.
func EncodeToken(t Token) string {
	b, _ := json.Marshal(t)
	return string(b)
}

// DecodeToken parses a token produced by EncodeToken. Raw payloads that are
// not a JSON object are rejected.
func DecodeToken(raw string) (Token, error) {
	var t Token
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return Token{}, fmt.Errorf("list: decode token: %w", err)
	}
	return t, nil
}

// EncodeCompact serializes a token in a pipe-separated form for transports
// with tight callback-data budgets (Telegram allows 64 bytes per button).
// Wire forms: "d|<index>|<page>" for detail, "p" for prev, "n" for next.
// Only the fields Render emits survive the round trip; arbitrary extra state
// needs the JSON codec.
func EncodeCompact(t Token) string {
	switch t.Action {
	case ActionDetail:
		return "d|" + strconv.Itoa(t.Index) + "|" + strconv.Itoa(t.Page)
	case ActionPrev:
		return "p"
	case ActionNext:
		return "n"
	}
	return ""
}

// DecodeCompact parses a token produced by EncodeCompact.
func DecodeCompact(raw string) (Token, error) {
	switch raw {
	case "p":
		return Token{Action: ActionPrev}, nil
	case "n":
		return Token{Action: ActionNext}, nil
	}
	parts := strings.Split(raw, "|")
	if len(parts) != 3 || parts[0] != "d" {
		return Token{}, fmt.Errorf("list: decode compact token %q: %w", raw, strconv.ErrSyntax)
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return Token{}, fmt.Errorf("list: decode compact index: %w", err)
	}
	page, err := strconv.Atoi(parts[2])
	if err != nil {
		return Token{}, fmt.Errorf("list: decode compact page: %w", err)
	}
	return Token{Action: ActionDetail, Index: index, Page: page}, nil
}
