package exercise

import (
	"fmt"
	"time"
)

// IdleLabel is what a stopped sequencer shows.
const IdleLabel = "Start"

type Phase struct {
	Name    string `json:"name"`
	Seconds int    `json:"seconds"`
}

func (p Phase) Duration() time.Duration {
	return time.Duration(p.Seconds) * time.Second
}

// Pattern is an ordered breathing cycle.
type Pattern struct {
	Key    string  `json:"key"`
	Name   string  `json:"name"`
	Phases []Phase `json:"phases"`
}

func phase(name string, seconds int) Phase {
	return Phase{Name: name, Seconds: seconds}
}

var (
	Box = Pattern{Key: "box", Name: "Box Breathing", Phases: []Phase{
		phase("Inhale", 4), phase("Hold", 4), phase("Exhale", 4), phase("Hold", 4),
	}}
	FourSevenEight = Pattern{Key: "478", Name: "4-7-8 Breathing", Phases: []Phase{
		phase("Inhale", 4), phase("Hold", 7), phase("Exhale", 8),
	}}
	Paced = Pattern{Key: "paced", Name: "Paced Breathing", Phases: []Phase{
		phase("Inhale", 5), phase("Exhale", 5),
	}}
)

func Patterns() []Pattern {
	return []Pattern{Box, FourSevenEight, Paced}
}

func PatternByKey(key string) (Pattern, error) {
	for _, p := range Patterns() {
		if p.Key == key {
			return p, nil
		}
	}
	return Pattern{}, fmt.Errorf("unknown breathing pattern %q", key)
}
