// Package styleclass associates forms with the CSS classes the client
// should put on their containers.
package styleclass

import (
	"encoding/json"
	"strings"
)

// FormStyleClass is the class list of one form.
type FormStyleClass struct {
	FormName   string `json:"formname"`
	StyleClass string `json:"styleclass"`
}

// Classes holds the per-form class lists in the order forms were first seen.
// The zero value is absent and encodes as JSON null.
//
// Classes is not safe for concurrent use.
type Classes struct {
	entries []FormStyleClass
}

// New returns an absent class table.
func New() *Classes {
	return &Classes{}
}

// Add appends className to the form's classes, creating the entry when the
// form is unknown. Repeated class names are kept.
func (c *Classes) Add(formName, className string) {
	if i := c.index(formName); i >= 0 {
		c.entries[i].StyleClass += " " + className
		return
	}
	c.entries = append(c.entries, FormStyleClass{FormName: formName, StyleClass: className})
}

// Get returns the space separated classes of a form.
func (c *Classes) Get(formName string) (string, bool) {
	if i := c.index(formName); i >= 0 {
		return c.entries[i].StyleClass, true
	}
	return "", false
}

// Remove drops the first occurrence of className from the form. A form left
// without classes is removed from the table.
func (c *Classes) Remove(formName, className string) {
	i := c.index(formName)
	if i < 0 {
		return
	}

	parts := strings.Split(c.entries[i].StyleClass, " ")
	j := indexOf(parts, className)
	if j < 0 {
		return
	}
	parts = append(parts[:j], parts[j+1:]...)

	if len(parts) == 0 {
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
		return
	}
	c.entries[i].StyleClass = strings.Join(parts, " ")
}

// Present reports whether any form was ever added.
func (c *Classes) Present() bool {
	return c.entries != nil
}

// Len returns the number of forms with classes.
func (c *Classes) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the table, nil when absent.
func (c *Classes) Entries() []FormStyleClass {
	if c.entries == nil {
		return nil
	}
	return append([]FormStyleClass{}, c.entries...)
}

// Load replaces the table.
func (c *Classes) Load(entries []FormStyleClass) {
	if entries == nil {
		c.entries = nil
		return
	}
	c.entries = append([]FormStyleClass{}, entries...)
}

// MarshalJSON encodes the table, or null when absent.
func (c *Classes) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.entries)
}

// UnmarshalJSON decodes a table.
func (c *Classes) UnmarshalJSON(data []byte) error {
	var entries []FormStyleClass
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	c.entries = entries
	return nil
}

func (c *Classes) index(formName string) int {
	for i := range c.entries {
		if c.entries[i].FormName == formName {
			return i
		}
	}
	return -1
}

func indexOf(parts []string, s string) int {
	for i, p := range parts {
		if p == s {
			return i
		}
	}
	return -1
}
