package models

import (
	"errors"
	"fmt"
)

// ErrUnknownModel is returned by New for a model name the factory does not
// recognize.
var ErrUnknownModel = errors.New("unknown attribution model")

var builders = map[string]func() Model{
	"first_touch": func() Model { return FirstTouch{} },
	"last_touch":  func() Model { return LastTouch{} },
	"linear":      func() Model { return Linear{} },
	"time_decay":  func() Model { return TimeDecay{HalfLifeDays: DefaultHalfLifeDays} },
	"u_shaped":    func() Model { return DefaultUShaped() },
	"w_shaped":    func() Model { return DefaultWShaped() },
	"data_driven": func() Model { return DataDriven{} },
}

// order is the canonical listing order for Available and Compare.
var order = []string{
	"first_touch", "last_touch", "linear", "time_decay",
	"u_shaped", "w_shaped", "data_driven",
}

// New creates a model by name with its default configuration.
func New(name string) (Model, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return build(), nil
}

// Available lists the model names the factory can build.
func Available() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Compare runs the named models (all of them when names is empty) over one
// journey and returns model name -> touchpoint id -> attribution value.
// Unknown names are skipped.
func Compare(names []string, touchpoints []Touchpoint, conversionValue float64) map[string]map[string]float64 {
	if len(names) == 0 {
		names = order
	}

	results := make(map[string]map[string]float64, len(names))
	for _, name := range names {
		model, err := New(name)
		if err != nil {
			continue
		}
		results[name] = model.Attribute(touchpoints, conversionValue)
	}
	return results
}
