// Package datalake defines the reactive key/value telemetry store the engine
// writes into. UI and automation layers are the readers; the engine only ever
// registers variables and sets values.
package datalake

// VarType declares the value shape of a registered variable.
type VarType string

const (
	TypeNumber  VarType = "number"
	TypeString  VarType = "string"
	TypeBoolean VarType = "boolean"
)

// Listener receives the new value of a variable after each set.
type Listener func(id string, value any)

// Store is the write-side contract of the telemetry store.
type Store interface {
	// CreateVariable registers a variable. It is idempotent by id: a second
	// registration of the same id is a no-op.
	CreateVariable(id, name string, typ VarType)

	// SetValue updates a variable's value. Setting an unregistered id is a
	// no-op.
	SetValue(id string, value any)

	// GetValue returns the current value, or false when the variable is
	// absent or never set.
	GetValue(id string) (any, bool)

	// Listen subscribes to every value change of id. The returned function
	// cancels the subscription.
	Listen(id string, fn Listener) (cancel func())
}
