// policy.go: segmented LRU with TinyLFU admission
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

// policy orders the linked nodes into window, probation and protected
// segments and decides which of them to evict.
//
// All methods run inside the maintenance pass and are not safe for
// concurrent use.
type policy[K comparable, V any] struct {
	window    *segmentList[K, V]
	probation *segmentList[K, V]
	protected *segmentList[K, V]

	sketch *frequencySketch
	part   partition

	// evict unlinked n from every structure; the callback retires it.
	evict func(n *node[K, V], reason ItemRemovedReason)
}

func newPolicy[K comparable, V any](capacity int, evict func(*node[K, V], ItemRemovedReason)) *policy[K, V] {
	return &policy[K, V]{
		window:    newSegmentList[K, V](segmentWindow),
		probation: newSegmentList[K, V](segmentProbation),
		protected: newSegmentList[K, V](segmentProtected),
		sketch:    newFrequencySketch(capacity),
		part:      newPartition(capacity),
		evict:     evict,
	}
}

// size returns the number of linked nodes.
func (p *policy[K, V]) size() int {
	return p.window.length() + p.probation.length() + p.protected.length()
}

// onAccess replays a buffered read.
func (p *policy[K, V]) onAccess(n *node[K, V]) {
	if n.deleted || n.removed.Load() {
		return
	}
	p.sketch.increment(n.hash)

	switch n.segment {
	case segmentWindow:
		p.window.moveToBack(n)
	case segmentProbation:
		p.promote(n)
	case segmentProtected:
		p.protected.moveToBack(n)
	}
}

// onWrite replays a buffered write of a live node: new nodes enter the
// window, linked nodes are treated as accessed.
func (p *policy[K, V]) onWrite(n *node[K, V]) {
	p.sketch.increment(n.hash)

	switch n.segment {
	case segmentNone:
		p.window.pushBack(n)
	case segmentWindow:
		p.window.moveToBack(n)
	case segmentProbation:
		p.promote(n)
	case segmentProtected:
		p.protected.moveToBack(n)
	}
}

// unlink detaches n from whichever segment holds it.
func (p *policy[K, V]) unlink(n *node[K, V]) {
	switch n.segment {
	case segmentWindow:
		p.window.remove(n)
	case segmentProbation:
		p.probation.remove(n)
	case segmentProtected:
		p.protected.remove(n)
	}
}

// promote moves a probation node to the protected MRU position.
func (p *policy[K, V]) promote(n *node[K, V]) {
	p.probation.remove(n)
	p.protected.pushBack(n)
	p.refitProtected()
}

// refitProtected demotes protected LRU nodes to probation MRU until the
// protected segment fits its capacity.
func (p *policy[K, V]) refitProtected() {
	for p.protected.length() > p.part.protected {
		n := p.protected.popFront()
		p.probation.pushBack(n)
	}
}

// evictEntries brings the linked size back within capacity.
func (p *policy[K, V]) evictEntries() {
	candidate := p.evictFromWindow()
	p.evictFromMain(candidate)
}

// evictFromWindow moves window overflow to the probation MRU end and returns
// the first moved node, the oldest admission candidate.
func (p *policy[K, V]) evictFromWindow() *node[K, V] {
	var first *node[K, V]
	for p.window.length() > p.part.window {
		n := p.window.popFront()
		p.probation.pushBack(n)
		if first == nil {
			first = n
		}
	}
	return first
}

// evictFromMain resolves duels between admission candidates (walking from
// candidate to the probation MRU end) and victims (walking from the
// probation LRU end). A candidate survives only when its estimated frequency
// is strictly greater than the victim's.
func (p *policy[K, V]) evictFromMain(candidate *node[K, V]) {
	victim := p.probation.front()
	for p.size() > p.part.capacity {
		if victim == nil && candidate == nil {
			break
		}

		var evict *node[K, V]
		switch {
		case victim == nil || victim == candidate:
			// only candidates remain; the oldest goes first
			evict = candidate
			candidate = candidate.next
			victim = candidate
		case candidate == nil:
			evict = victim
			victim = victim.next
		case p.admit(candidate, victim):
			evict = victim
			victim = victim.next
		default:
			evict = candidate
			candidate = candidate.next
		}
		p.unlink(evict)
		p.evict(evict, ReasonEvicted)
	}

	// Probation exhausted: fall back to the window, then to protected.
	for p.size() > p.part.capacity {
		n := p.window.front()
		if n == nil {
			n = p.protected.front()
		}
		if n == nil {
			break
		}
		p.unlink(n)
		p.evict(n, ReasonEvicted)
	}
}

// admit reports whether candidate should replace victim.
func (p *policy[K, V]) admit(candidate, victim *node[K, V]) bool {
	return p.sketch.frequency(candidate.hash) > p.sketch.frequency(victim.hash)
}

// trim evicts up to n linked nodes: probation first, then window, then
// protected, each from the LRU end. Returns how many were evicted.
func (p *policy[K, V]) trim(n int) int {
	trimmed := 0
	for trimmed < n {
		victim := p.probation.front()
		if victim == nil {
			victim = p.window.front()
		}
		if victim == nil {
			victim = p.protected.front()
		}
		if victim == nil {
			break
		}
		p.unlink(victim)
		p.evict(victim, ReasonTrimmed)
		trimmed++
	}
	return trimmed
}

// clear evicts every linked node.
func (p *policy[K, V]) clear(reason ItemRemovedReason) int {
	cleared := 0
	for _, l := range []*segmentList[K, V]{p.window, p.probation, p.protected} {
		for n := l.front(); n != nil; n = l.front() {
			l.remove(n)
			p.evict(n, reason)
			cleared++
		}
	}
	return cleared
}

// optimize feeds the cumulative hit and miss counts to the hill climber and
// applies any change to the protected segment.
func (p *policy[K, V]) optimize(hits, misses uint64) {
	if p.part.optimize(hits, misses, p.sketch.resetSampleSize()) != 0 {
		p.refitProtected()
	}
}

// setCapacity resizes the segments and evicts down to the new capacity.
func (p *policy[K, V]) setCapacity(capacity int) {
	p.part.resize(capacity)
	p.sketch.ensureCapacity(capacity)
	p.refitProtected()
	p.evictEntries()
}
