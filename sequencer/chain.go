package sequencer

import "github.com/kmorrill/tonicmidi/debug"

// ChainItem is one entry in a loop's pattern chain: a pattern repeated
// Cycles times before the chain moves on. Channel becomes the loop's
// when the item activates.
type ChainItem struct {
	Pattern Pattern
	Cycles  int
	Channel uint8
}

// chainState sequences a loop through its chain items. It is either
// playing item `index` (having completed `cyclesDone` cycles of it) or
// complete. Complete is terminal: the loop is muted and the completion
// callback has fired exactly once.
type chainState struct {
	items      []ChainItem
	index      int
	cyclesDone int
	complete   bool

	onComplete func()
	fired      bool
}

func newChainState(first ChainItem) *chainState {
	if first.Cycles < 1 {
		first.Cycles = 1
	}
	return &chainState{items: []ChainItem{first}}
}

func (c *chainState) append(item ChainItem) {
	if item.Cycles < 1 {
		item.Cycles = 1
	}
	c.items = append(c.items, item)
}

// active returns the currently playing item, or nil once complete.
func (c *chainState) active() *ChainItem {
	if c.complete || c.index >= len(c.items) {
		return nil
	}
	return &c.items[c.index]
}

// cycleFinished is the transition function, called when the active
// item's pattern crossed its last step. It reports whether the chain
// advanced to a new item (the loop must adopt its pattern/channel/role)
// and whether the whole chain just completed.
func (c *chainState) cycleFinished() (advanced, completed bool) {
	item := c.active()
	if item == nil {
		return false, false
	}
	c.cyclesDone++
	if c.cyclesDone < item.Cycles {
		return false, false
	}
	c.index++
	c.cyclesDone = 0
	if c.index < len(c.items) {
		debug.Log("chain", "advancing to item %d/%d", c.index+1, len(c.items))
		return true, false
	}
	c.complete = true
	debug.Log("chain", "complete after %d items", len(c.items))
	if c.onComplete != nil && !c.fired {
		c.fired = true
		c.onComplete()
	}
	return false, true
}
