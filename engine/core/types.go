package core

// -----------------------------------------------------------------------------
// Output
// -----------------------------------------------------------------------------

// Output is the result envelope produced by builtin tool handlers.
type Output map[string]any

// Get returns the value for key, or nil when absent.
func (o Output) Get(key string) any {
	if o == nil {
		return nil
	}
	return o[key]
}
