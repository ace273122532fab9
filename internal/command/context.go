package command

import (
	"fmt"
	"math"
)

// Param is a single extracted parameter with its requiredness flag.
type Param struct {
	Name     string
	Value    any
	Required bool
}

// Context is the per-message execution context handed to a handler.
// It is created by the dispatcher for each inbound message and
// discarded after the result is consumed.
type Context struct {
	CommandName string
	Topic       string
	RawPayload  []byte

	params   []Param
	response []byte
}

// ParamCount returns the number of extracted parameters.
func (c *Context) ParamCount() int {
	return len(c.params)
}

// Has reports whether a parameter with the given name was extracted.
func (c *Context) Has(name string) bool {
	for i := range c.params {
		if c.params[i].Name == name {
			return true
		}
	}
	return false
}

func (c *Context) lookup(name string) (any, bool) {
	for i := range c.params {
		if c.params[i].Name == name {
			return c.params[i].Value, true
		}
	}
	return nil, false
}

// GetString returns the named parameter as a string, or defaultValue
// when the parameter is absent or not a string. The leniency is for
// optional parameters only; required-parameter absence is rejected
// before the handler runs.
func (c *Context) GetString(name, defaultValue string) string {
	value, ok := c.lookup(name)
	if !ok {
		return defaultValue
	}
	s, ok := value.(string)
	if !ok {
		return defaultValue
	}
	return s
}

// GetInt returns the named parameter as an int, or defaultValue when
// the parameter is absent, not a number, or has a fractional part.
func (c *Context) GetInt(name string, defaultValue int) int {
	value, ok := c.lookup(name)
	if !ok {
		return defaultValue
	}
	n, ok := value.(float64)
	if !ok || n != math.Trunc(n) {
		return defaultValue
	}
	return int(n)
}

// GetBool returns the named parameter as a bool, or defaultValue when
// the parameter is absent or not a boolean.
func (c *Context) GetBool(name string, defaultValue bool) bool {
	value, ok := c.lookup(name)
	if !ok {
		return defaultValue
	}
	b, ok := value.(bool)
	if !ok {
		return defaultValue
	}
	return b
}

// SetResponse replaces the response buffer with the given text,
// truncated to the response capacity.
func (c *Context) SetResponse(text string) {
	if len(text) > maxResponseLen {
		text = text[:maxResponseLen]
	}
	c.response = append(c.response[:0], text...)
}

// Respondf formats into the response buffer, truncating at capacity.
func (c *Context) Respondf(format string, args ...any) {
	c.SetResponse(fmt.Sprintf(format, args...))
}

// Response returns the accumulated response text.
func (c *Context) Response() string {
	return string(c.response)
}
