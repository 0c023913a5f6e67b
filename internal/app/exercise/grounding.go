package exercise

import "sync"

type GroundingStep struct {
	Count int    `json:"count"`
	Text  string `json:"text"`
}

// GroundingSteps is the 5-4-3-2-1 technique.
var GroundingSteps = []GroundingStep{
	{Count: 5, Text: "things you can SEE"},
	{Count: 4, Text: "things you can TOUCH"},
	{Count: 3, Text: "things you can HEAR"},
	{Count: 2, Text: "things you can SMELL"},
	{Count: 1, Text: "thing you can TASTE"},
}

type GroundingState struct {
	Index int           `json:"index"`
	Step  GroundingStep `json:"step"`
	First bool          `json:"first"`
	Last  bool          `json:"last"`
}

// Grounding pages through GroundingSteps by hand. Paging stops at both ends.
type Grounding struct {
	mu    sync.Mutex
	index int
}

func NewGrounding() *Grounding {
	return &Grounding{}
}

func (g *Grounding) Next() GroundingState {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index < len(GroundingSteps)-1 {
		g.index++
	}
	return g.stateLocked()
}

func (g *Grounding) Prev() GroundingState {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index > 0 {
		g.index--
	}
	return g.stateLocked()
}

func (g *Grounding) Reset() GroundingState {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.index = 0
	return g.stateLocked()
}

func (g *Grounding) State() GroundingState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Grounding) stateLocked() GroundingState {
	return GroundingState{
		Index: g.index,
		Step:  GroundingSteps[g.index],
		First: g.index == 0,
		Last:  g.index == len(GroundingSteps)-1,
	}
}
