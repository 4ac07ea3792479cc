package revstore

import (
	"encoding/json"

	"github.com/flimzy/revstore/errors"
)

// Revision is an immutable-after-commit snapshot of a document
// (spec.md §3). A Revision returned from a query is a value: it shares no
// mutable state with the store.
type Revision struct {
	DocID      string
	RevID      RevID
	Deleted    bool
	Properties map[string]interface{} // nil unless loaded by Get, LoadBody or AllDocuments with IncludeDocs
	Sequence   int64                  // 0 until assigned by Put/ForceInsert

	// parentSequence is unexported: callers observe history through
	// GetRevisionHistory, not by poking at the DAG directly.
	parentSequence *int64
	current        bool
}

// Current reports whether this Revision is a leaf of its document's
// revision DAG as of the snapshot it was read from.
func (r Revision) Current() bool { return r.current }

// Codec marshals and unmarshals document bodies. The production store
// delegates this to an external codec (spec.md §1); the zero value of
// jsonCodec, backed by encoding/json, is the default and is sufficient for
// every caller in this repository.
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

// bodyJSON serializes rev.Properties for storage, injecting _id and _rev
// per spec.md §4.3.3 step 4. Deleted revisions store a nil body.
func bodyJSON(codec Codec, rev Revision) ([]byte, error) {
	if rev.Deleted {
		return nil, nil
	}
	props := make(map[string]interface{}, len(rev.Properties)+2)
	for k, v := range rev.Properties {
		props[k] = v
	}
	props["_id"] = rev.DocID
	props["_rev"] = rev.RevID.String()
	data, err := codec.Marshal(props)
	if err != nil {
		return nil, errors.BadRequest("unable to serialize document body: %s", err)
	}
	return data, nil
}

// decodeBody unmarshals stored JSON into a fresh properties map. A nil or
// empty input yields a nil map (compacted-away or never-stored body).
func decodeBody(codec Codec, data []byte) (map[string]interface{}, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var props map[string]interface{}
	if err := codec.Unmarshal(data, &props); err != nil {
		return nil, errors.Internal(err)
	}
	return props, nil
}
