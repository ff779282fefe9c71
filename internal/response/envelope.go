// Package response pairs a server reply with the document that produced it.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/qlient/internal/operation"
)

// CodeMalformedResponse is the extension code of the error synthesized for
// a payload that is not a GraphQL response.
const CodeMalformedResponse = "MALFORMED_RESPONSE"

// MalformedResponseError is never returned by Wrap. It is carried by the
// single error of an envelope built from an unusable payload.
type MalformedResponseError struct {
	Reason  string
	Payload []byte
}

func (e *MalformedResponseError) Error() string {
	return "response: malformed payload: " + e.Reason
}

// Envelope is read-only after Wrap returns.
type Envelope struct {
	doc        *operation.Document
	raw        []byte
	dataRaw    json.RawMessage
	data       any
	errors     gqlerror.List
	extensions map[string]any
}

// Wrap parses raw, which may be []byte, json.RawMessage, string,
// map[string]any or nil. It never fails: problems with the payload are
// reported through Errors.
func Wrap(doc *operation.Document, raw any) *Envelope {
	e := &Envelope{doc: doc}
	var payload []byte
	switch v := raw.(type) {
	case nil:
		return e.malformed("empty payload", nil)
	case []byte:
		payload = v
	case json.RawMessage:
		payload = v
	case string:
		payload = []byte(v)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return e.malformed(err.Error(), nil)
		}
		payload = b
	default:
		return e.malformed(fmt.Sprintf("unsupported payload type %T", raw), nil)
	}
	e.raw = payload

	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil || top == nil {
		return e.malformed("not a JSON object", payload)
	}
	data, hasData := top["data"]
	errs, hasErrors := top["errors"]
	if !hasData && !hasErrors {
		return e.malformed("neither data nor errors present", payload)
	}
	if hasData && !isNull(data) {
		if err := json.Unmarshal(data, &e.data); err != nil {
			return e.malformed("data: "+err.Error(), payload)
		}
		e.dataRaw = data
	}
	if hasErrors && !isNull(errs) {
		if err := json.Unmarshal(errs, &e.errors); err != nil {
			return e.malformed("errors: "+err.Error(), payload)
		}
	}
	if ext, ok := top["extensions"]; ok && !isNull(ext) {
		if err := json.Unmarshal(ext, &e.extensions); err != nil {
			return e.malformed("extensions: "+err.Error(), payload)
		}
	}
	return e
}

func isNull(b json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

func (e *Envelope) malformed(reason string, payload []byte) *Envelope {
	cause := &MalformedResponseError{Reason: reason, Payload: payload}
	e.data, e.dataRaw, e.extensions = nil, nil, nil
	e.errors = gqlerror.List{{
		Err:        cause,
		Message:    cause.Error(),
		Extensions: map[string]any{"code": CodeMalformedResponse},
	}}
	return e
}

func (e *Envelope) Document() *operation.Document { return e.doc }

// Query is the text of the document that was sent.
func (e *Envelope) Query() string {
	if e.doc == nil {
		return ""
	}
	return e.doc.Query()
}

func (e *Envelope) Variables() map[string]any {
	if e.doc == nil {
		return nil
	}
	return e.doc.VariableValues()
}

func (e *Envelope) OperationName() string {
	if e.doc == nil {
		return ""
	}
	return e.doc.Name()
}

// Raw is the payload as received, nil when it was not bytes or a map.
func (e *Envelope) Raw() []byte { return e.raw }

// Data is the decoded data object, nil when the server returned none.
func (e *Envelope) Data() map[string]any {
	m, _ := e.data.(map[string]any)
	return m
}

func (e *Envelope) Errors() gqlerror.List { return e.errors }

func (e *Envelope) Extensions() map[string]any { return e.extensions }

func (e *Envelope) HasErrors() bool { return len(e.errors) > 0 }

// Err returns the errors as a Go error, or nil. A single error is returned
// as *gqlerror.Error so its cause can be unwrapped.
func (e *Envelope) Err() error {
	switch len(e.errors) {
	case 0:
		return nil
	case 1:
		return e.errors[0]
	}
	return e.errors
}

// Get walks data by object keys (string) and list indexes (int).
func (e *Envelope) Get(path ...any) (any, bool) {
	if len(path) == 0 {
		return e.data, e.data != nil
	}
	cur := e.data
	for _, step := range path {
		switch k := step.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = m[k]; !ok {
				return nil, false
			}
		case int:
			l, ok := cur.([]any)
			if !ok || k < 0 || k >= len(l) {
				return nil, false
			}
			cur = l[k]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Decode unmarshals data into v. A missing data object leaves v untouched.
func (e *Envelope) Decode(v any) error {
	if len(e.dataRaw) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.dataRaw, v); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
