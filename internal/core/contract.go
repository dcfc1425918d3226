// Package core composes the capability modules into the Seat and Hub
// contracts: envelope decoding, per-module dispatch, response merging, and
// the storage, observability, and archival plumbing around them.
package core

import (
	"encoding/json"
	"sort"

	"seathub/pkg/domain"
)

// ContractResponse is the merged result of a contract instantiate or execute
// call. Attributes and events concatenate in module-invocation order; of the
// instruction kinds modules may emit, only funds transfers cross the merge
// boundary.
type ContractResponse struct {
	Attributes []domain.Attribute `json:"attributes,omitempty"`
	Events     []domain.Event     `json:"events,omitempty"`
	Transfers  []domain.Transfer  `json:"transfers,omitempty"`
}

// AddEvent appends a contract-level event and returns the response.
func (r ContractResponse) AddEvent(event domain.Event) ContractResponse {
	r.Events = append(r.Events, event)
	return r
}

// mergeResponses folds module partial responses into one contract response.
// Order is the invocation order of the modules that produced them.
func mergeResponses(parts ...domain.Response) ContractResponse {
	var out ContractResponse
	for _, part := range parts {
		out.Attributes = append(out.Attributes, part.Attributes...)
		out.Events = append(out.Events, part.Events...)
		for _, ins := range part.Instructions {
			if ins.Transfer != nil {
				out.Transfers = append(out.Transfers, *ins.Transfer)
			}
		}
	}
	return out
}

// decodeEnvelope splits a single-key module envelope into the module name and
// its payload. An empty or multi-key object is malformed input; whether the
// named module exists is the dispatcher's concern.
func decodeEnvelope(raw []byte) (string, json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", nil, domain.InvalidInputError{Reason: "malformed message envelope: " + err.Error()}
	}
	if len(envelope) == 0 {
		return "", nil, domain.InvalidInputError{Reason: "empty message envelope"}
	}
	if len(envelope) > 1 {
		keys := make([]string, 0, len(envelope))
		for k := range envelope {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		reason := "message envelope must carry exactly one module key, got"
		for _, k := range keys {
			reason += " " + k
		}
		return "", nil, domain.InvalidInputError{Reason: reason}
	}
	for name, payload := range envelope {
		return name, payload, nil
	}
	return "", nil, domain.InvalidInputError{Reason: "empty message envelope"}
}

// decodePayload unmarshals a module payload, tagging decode failures as
// invalid input scoped to the module.
func decodePayload(module string, payload json.RawMessage, into any) error {
	if err := json.Unmarshal(payload, into); err != nil {
		return domain.ModuleError{Module: module, Err: domain.InvalidInputError{Reason: "malformed payload: " + err.Error()}}
	}
	return nil
}

// moduleErr tags err with the module that produced it. Module errors abort
// the whole call; the store discards every write of the transaction.
func moduleErr(module string, err error) error {
	if err == nil {
		return nil
	}
	return domain.ModuleError{Module: module, Err: err}
}
