package sfs

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Operation is one of the six requests the executor can perform.
type Operation string

const (
	OpPut            Operation = "put"
	OpGet            Operation = "get"
	OpDelete         Operation = "delete"
	OpListFiles      Operation = "list_files"
	OpFileMostRecent Operation = "file_most_recent"
	OpListContexts   Operation = "list_contexts"
)

// DefaultOperation is used when no method is given.
const DefaultOperation = OpPut

// Operations lists every supported operation in declaration order.
var Operations = []Operation{OpPut, OpGet, OpDelete, OpListFiles, OpFileMostRecent, OpListContexts}

func (o Operation) IsValid() bool {
	switch o {
	case OpPut, OpGet, OpDelete, OpListFiles, OpFileMostRecent, OpListContexts:
		return true
	default:
		return false
	}
}

// Mutates reports whether the operation changes remote or local state.
func (o Operation) Mutates() bool {
	switch o {
	case OpPut, OpGet, OpDelete:
		return true
	default:
		return false
	}
}

// NeedsContext reports whether the operation is scoped to a context.
func (o Operation) NeedsContext() bool {
	return o != OpListContexts
}

// NeedsName reports whether the operation addresses a single named file.
func (o Operation) NeedsName() bool {
	return o == OpGet || o == OpDelete
}

func ParseOperation(s string) (Operation, error) {
	if s == "" {
		return DefaultOperation, nil
	}
	op := Operation(s)
	if !op.IsValid() {
		return "", fmt.Errorf("%w: %s (valid methods: put, get, delete, list_files, file_most_recent, list_contexts)", ErrInvalidOperation, s)
	}
	return op, nil
}

// Target addresses an organization, a context within it and optionally a file.
type Target struct {
	Org     string
	Context string
	Name    string
}

// Credentials are sent as HTTP basic auth. Either field may be empty.
type Credentials struct {
	User     string
	Password string
}

func (c Credentials) String() string {
	return fmt.Sprintf("{User:%s Password:%s}", c.User, redact(c.Password))
}

// LogValue keeps the password out of structured logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", c.User),
		slog.String("password", redact(c.Password)),
	)
}

func redact(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "********"
}

// Invocation is a fully resolved request for one operation.
type Invocation struct {
	Operation   Operation
	Target      Target
	Credentials Credentials
	URL         string
	CertVerify  bool
	LocalPath   string
}

// Response is a successful (2xx) reply from the service.
type Response struct {
	StatusCode int
	Body       []byte
	URL        string
}

// Result is the success document of an invocation.
type Result struct {
	Changed        bool            `json:"changed"`
	Code           int             `json:"code"`
	Response       json.RawMessage `json:"response,omitempty"`
	Listing        json.RawMessage `json:"listing,omitempty"`
	FileMostRecent json.RawMessage `json:"file_most_recent,omitempty"`
}

// Failure is the error document of an invocation. Response holds the raw
// server body exactly as received.
type Failure struct {
	Failed   bool   `json:"failed"`
	Msg      string `json:"msg"`
	Response string `json:"response,omitempty"`
	Code     int    `json:"code,omitempty"`
	URL      string `json:"url,omitempty"`
}
