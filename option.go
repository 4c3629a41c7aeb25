// FILE: lixenwraith/configtree/option.go
package configtree

import (
	"fmt"

	"github.com/lixenwraith/configtree/internal/convert"
	"github.com/spf13/pflag"
)

// Option is a named, typed setting with a default, shared between a flag
// set and a Config. It implements pflag.Value.
type Option[T Value] struct {
	Name    string
	Usage   string
	Default T
	// Masked hides the value in logs and in String.
	Masked bool

	value   T
	changed bool
}

// NewOption creates an Option holding its default.
func NewOption[T Value](name string, def T, usage string) *Option[T] {
	return &Option[T]{Name: name, Usage: usage, Default: def, value: def}
}

// Get returns the current value.
func (o *Option[T]) Get() T {
	return o.value
}

// SetValue replaces the current value and marks the option changed.
func (o *Option[T]) SetValue(v T) {
	o.value = v
	o.changed = true
}

// Reset restores the default and clears the changed mark.
func (o *Option[T]) Reset() {
	o.value = o.Default
	o.changed = false
}

// Changed reports whether the value was set after construction.
func (o *Option[T]) Changed() bool {
	return o.changed
}

// String implements pflag.Value.
func (o *Option[T]) String() string {
	if o == nil {
		return ""
	}
	return Redact(convert.Format(o.value), o.Masked)
}

// Set implements pflag.Value.
func (o *Option[T]) Set(s string) error {
	parsed, err := convert.Parse(kindOf[T](), s)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", o.Name, err)
	}
	o.SetValue(parsed.(T))
	return nil
}

// Type implements pflag.Value.
func (o *Option[T]) Type() string {
	return kindOf[T]().String()
}

// BindFlag registers the option on fs. Bool options accept a bare --name.
func (o *Option[T]) BindFlag(fs *pflag.FlagSet) *pflag.Flag {
	fs.Var(o, o.Name, o.Usage)
	f := fs.Lookup(o.Name)
	if kindOf[T]() == KindBool {
		f.NoOptDefVal = "true"
	}
	f.DefValue = Redact(convert.Format(o.Default), o.Masked)
	return f
}

// ReadOption loads opt from c. A missing key leaves the option at its
// current value and returns an error wrapping ErrKeyNotFound.
func ReadOption[T Value](c *Config, opt *Option[T], masked bool) error {
	var v T
	if err := Read(c, opt.Name, &v, masked || opt.Masked); err != nil {
		return err
	}
	opt.SetValue(v)
	return nil
}

// WriteOption stores the option's current value in c.
func WriteOption[T Value](c *Config, opt *Option[T], masked bool) error {
	return Write(c, opt.Name, opt.value, masked || opt.Masked)
}
