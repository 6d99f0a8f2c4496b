// Package project mirrors arbitrary inbound messages into the telemetry
// store by flattening their fields into slash-separated variable paths. It is
// total over the recognized shapes: numbers, strings, booleans and nested
// records project; arrays of records project only when a declared identifier
// field disambiguates their elements.
package project

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/groundlink-io/groundlink/internal/datalake"
	"github.com/groundlink-io/groundlink/internal/mavlink"
)

// DefaultIdentifierFields maps container field names to the field that
// disambiguates repeated sub-records, so that two cameras or compasses
// reporting through the same message type do not collide. Extend per message
// catalog; no code change needed.
var DefaultIdentifierFields = map[string]string{
	"batteries": "id",
	"cameras":   "id",
	"compasses": "id",
	"sensors":   "id",
}

// Projector writes (path, value) pairs into the telemetry store. Every sender
// identity projects under /mavlink/{sys}/{comp}/...; the primary identity
// additionally projects under the unscoped legacy alias /mavlink/... kept for
// backward compatibility.
type Projector struct {
	store    datalake.Store
	primary  mavlink.Identity
	idFields map[string]string

	registered map[string]struct{}
}

func NewProjector(store datalake.Store, primary mavlink.Identity, idFields map[string]string) *Projector {
	if idFields == nil {
		idFields = DefaultIdentifierFields
	}
	return &Projector{
		store:      store,
		primary:    primary,
		idFields:   idFields,
		registered: make(map[string]struct{}),
	}
}

// Handle projects one inbound envelope. Unknown messages are never rejected;
// unprojectable shapes are skipped field by field.
func (p *Projector) Handle(env mavlink.Envelope) {
	fields, err := messageFields(env.Msg)
	if err != nil {
		return
	}

	scoped := fmt.Sprintf("/mavlink/%d/%d/%s", env.Sender.SystemID, env.Sender.ComponentID, env.Msg.Type())
	p.walk(scoped, fields)

	if env.Sender == p.primary {
		p.walk("/mavlink/"+env.Msg.Type(), fields)
	}
}

// messageFields converts a typed message into a generic field tree.
func messageFields(msg mavlink.Message) (map[string]any, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (p *Projector) walk(prefix string, fields map[string]any) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p.walkValue(prefix+"/"+name, name, fields[name])
	}
}

func (p *Projector) walkValue(path, fieldName string, value any) {
	switch v := value.(type) {
	case float64:
		p.emit(path, v, datalake.TypeNumber)
	case string:
		p.emit(path, v, datalake.TypeString)
	case bool:
		p.emit(path, v, datalake.TypeBoolean)
	case map[string]any:
		p.walk(path, v)
	case []any:
		p.walkArray(path, fieldName, v)
	}
	// nil and anything else: skipped.
}

// walkArray projects an array of sub-records when an identifier field is
// declared for its container; all other arrays are skipped.
func (p *Projector) walkArray(path, fieldName string, elems []any) {
	idField, ok := p.idFields[fieldName]
	if !ok {
		return
	}

	for _, elem := range elems {
		record, ok := elem.(map[string]any)
		if !ok {
			return
		}
		id, ok := record[idField]
		if !ok {
			continue
		}
		p.walk(fmt.Sprintf("%s/%s=%v", path, idField, formatID(id)), record)
	}
}

// formatID renders identifier values without JSON float noise (1 not 1e+00).
func formatID(id any) string {
	if f, ok := id.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", id)
}

func (p *Projector) emit(path string, value any, typ datalake.VarType) {
	// Lazy schema discovery: first sight registers the variable, later
	// sightings only update the value. The store's registration is already
	// idempotent by id; the local set just avoids redundant calls.
	if _, ok := p.registered[path]; !ok {
		p.store.CreateVariable(path, path, typ)
		p.registered[path] = struct{}{}
	}
	p.store.SetValue(path, value)
}
