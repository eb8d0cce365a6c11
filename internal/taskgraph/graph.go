// Package taskgraph keeps the in-memory task graph consistent: the
// parent/subtask hierarchy, the dependency edges between tasks, completion
// gating, and the optimistic-update bookkeeping the UI relies on between a
// mutation and the server's canonical answer.
package taskgraph

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mglenn/ttm/internal/models"
)

// Filter selects which tasks a list view shows. The zero value is All.
type Filter struct {
	Quick     bool
	ProjectID *int64
}

// All returns every top-level task.
func All() Filter { return Filter{} }

// Quick returns tasks without a project.
func Quick() Filter { return Filter{Quick: true} }

// Project returns tasks belonging to one project.
func Project(id int64) Filter { return Filter{ProjectID: &id} }

// Graph is an arena of tasks keyed by id. parent and children are the two
// views of the same relationship and are rebuilt together on every Replace,
// so the denormalized subtasks arrays from the wire can never drift from
// parent_id.
type Graph struct {
	log *slog.Logger

	mu       sync.RWMutex
	nodes    map[int64]models.Task
	parent   map[int64]int64
	children map[int64][]int64
	order    []int64 // top-level ids in server order

	reordering    bool
	reorderParent int64
	working       []int64
}

func New(logger *slog.Logger) *Graph {
	return &Graph{
		log:      logger,
		nodes:    map[int64]models.Task{},
		parent:   map[int64]int64{},
		children: map[int64][]int64{},
	}
}

// Replace rebuilds the arena from a server task list. Embedded subtasks and
// parent_id fields are reconciled into single nodes plus edge maps; a task
// appearing both embedded and as its own row is stored once. Any reorder in
// progress is discarded, since its working order may reference stale ids.
func (g *Graph) Replace(tasks []models.Task) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = map[int64]models.Task{}
	g.parent = map[int64]int64{}
	g.children = map[int64][]int64{}
	g.order = nil
	g.reordering = false
	g.working = nil

	var add func(t models.Task)
	add = func(t models.Task) {
		subs := t.Subtasks
		t.Subtasks = nil
		if existing, ok := g.nodes[t.ID]; ok {
			t = merge(existing, t)
		}
		g.nodes[t.ID] = t
		for _, st := range subs {
			if st.ParentID == nil {
				pid := t.ID
				st.ParentID = &pid
			}
			g.link(t.ID, st.ID)
			add(st)
		}
	}
	for _, t := range tasks {
		add(t)
		if t.ParentID == nil {
			g.order = append(g.order, t.ID)
		}
	}
	// Rows that carried only parent_id, without being embedded anywhere.
	for id, t := range g.nodes {
		if t.ParentID != nil {
			g.link(*t.ParentID, id)
		}
	}
}

// merge overlays the non-empty relationship fields of an earlier sighting
// of the same task. Embedded subtask rows omit blocked_by/blocking, so a
// bare re-add must not wipe them.
func merge(existing, incoming models.Task) models.Task {
	if incoming.BlockedBy == nil {
		incoming.BlockedBy = existing.BlockedBy
	}
	if incoming.Blocking == nil {
		incoming.Blocking = existing.Blocking
	}
	return incoming
}

func (g *Graph) link(parentID, childID int64) {
	g.parent[childID] = parentID
	for _, c := range g.children[parentID] {
		if c == childID {
			return
		}
	}
	g.children[parentID] = append(g.children[parentID], childID)
}

// Get returns a task snapshot with its subtasks materialized from the
// children index.
func (g *Graph) Get(id int64) (models.Task, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.nodes[id]
	if !ok {
		return models.Task{}, false
	}
	t.Subtasks = g.subtasksLocked(id)
	return t, true
}

func (g *Graph) subtasksLocked(id int64) []models.Task {
	ids := g.children[id]
	if len(ids) == 0 {
		return nil
	}
	subs := make([]models.Task, 0, len(ids))
	for _, cid := range ids {
		if c, ok := g.nodes[cid]; ok {
			c.Subtasks = g.subtasksLocked(cid)
			subs = append(subs, c)
		}
	}
	return subs
}

// TopLevel flattens the graph into the linear list a view renders. Tasks
// that are themselves subtasks never appear here; they stay reachable
// through their parent and through Get by id.
func (g *Graph) TopLevel(f Filter) []models.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]models.Task, 0, len(g.order))
	for _, id := range g.order {
		t, ok := g.nodes[id]
		if !ok || t.ParentID != nil {
			continue
		}
		switch {
		case f.Quick && t.ProjectID != nil:
			continue
		case f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID):
			continue
		}
		t.Subtasks = g.subtasksLocked(id)
		out = append(out, t)
	}
	return out
}

// Gate reports whether a completion toggle is allowed for the task and, if
// not, the explanatory label the control carries. The gate is advisory: the
// server re-validates against its own subtask snapshot.
func (g *Graph) Gate(id int64) (allowed bool, reason string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.nodes[id]
	if !ok {
		return false, "Task not found"
	}
	if t.Completed {
		return true, ""
	}
	for _, cid := range g.children[id] {
		if c, ok := g.nodes[cid]; ok && !c.Completed {
			return false, "Complete all subtasks first"
		}
	}
	return true, ""
}

// StatusFields is the single write-back rule for an explicit status
// selection: completed sets the flag, in_progress stamps start_date with
// now, todo clears start_date with an explicit null so the server unsets it
// rather than ignoring an absent key.
func StatusFields(s models.Status, now time.Time) (completed bool, startDate string, clearStart bool) {
	switch s {
	case models.StatusCompleted:
		return true, "", false
	case models.StatusInProgress:
		return false, now.UTC().Format(time.RFC3339), false
	default:
		return false, "", true
	}
}

// SetStatus optimistically applies a status selection to the in-memory
// task and returns the updated snapshot. An unknown id is a logged no-op.
// Callers issue the matching mutation afterward and either Reconcile the
// canonical response or re-fetch the whole collection on failure.
func (g *Graph) SetStatus(id int64, s models.Status, now time.Time) (models.Task, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.nodes[id]
	if !ok {
		g.log.Warn("status change for unknown task", "id", id)
		return models.Task{}, false
	}
	completed, startDate, clearStart := StatusFields(s, now)
	t.Completed = completed
	if clearStart {
		t.StartDate = ""
	} else if startDate != "" {
		t.StartDate = startDate
	}
	g.nodes[id] = t
	return t, true
}

// SetCompleted optimistically flips only the completed flag, leaving
// start_date untouched. Used by the direct completion toggle; unlike an
// explicit status selection it writes a single field.
func (g *Graph) SetCompleted(id int64, completed bool) (models.Task, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.nodes[id]
	if !ok {
		g.log.Warn("completion toggle for unknown task", "id", id)
		return models.Task{}, false
	}
	t.Completed = completed
	g.nodes[id] = t
	return t, true
}

// Reconcile merges the server's canonical task over the local node,
// preferring the returned shape to the optimistic guess. Relationship
// fields absent from the response are kept.
func (g *Graph) Reconcile(task models.Task) {
	g.mu.Lock()
	defer g.mu.Unlock()
	existing, ok := g.nodes[task.ID]
	if !ok {
		g.log.Warn("reconcile for unknown task", "id", task.ID)
		return
	}
	task.Subtasks = nil
	g.nodes[task.ID] = merge(existing, task)
}

// Remove drops a task and its subtasks after a confirmed delete.
func (g *Graph) Remove(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[id]; !ok {
		g.log.Warn("remove for unknown task", "id", id)
		return
	}
	g.removeLocked(id)
}

func (g *Graph) removeLocked(id int64) {
	for _, cid := range g.children[id] {
		g.removeLocked(cid)
	}
	delete(g.children, id)
	if pid, ok := g.parent[id]; ok {
		g.children[pid] = without(g.children[pid], id)
		delete(g.parent, id)
	}
	g.order = without(g.order, id)
	delete(g.nodes, id)
}

func without(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Dependencies resolves the two edge arrays to display titles. The arrays
// are independently sourced by the server; neither is derived from the
// other. An id with no loaded task renders as "Task #<id>".
func (g *Graph) Dependencies(id int64) (blockedBy, blocking []string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.nodes[id]
	if !ok {
		return nil, nil
	}
	return g.titlesLocked(t.BlockedBy), g.titlesLocked(t.Blocking)
}

func (g *Graph) titlesLocked(ids []int64) []string {
	if len(ids) == 0 {
		return nil
	}
	titles := make([]string, len(ids))
	for i, id := range ids {
		if t, ok := g.nodes[id]; ok {
			titles[i] = t.Title
		} else {
			titles[i] = fmt.Sprintf("Task #%d", id)
		}
	}
	return titles
}

// BeginReorder starts a reorder session over a parent's subtasks with a
// local working copy of the order. Nothing persists until the caller saves
// the full order in one mutation; CancelReorder discards it silently.
func (g *Graph) BeginReorder(parentID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := g.children[parentID]
	if len(ids) == 0 {
		return false
	}
	g.reordering = true
	g.reorderParent = parentID
	g.working = append([]int64(nil), ids...)
	return true
}

// MoveInReorder shifts the working-order entry at index by delta positions.
func (g *Graph) MoveInReorder(index, delta int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.reordering {
		return
	}
	target := index + delta
	if index < 0 || index >= len(g.working) || target < 0 || target >= len(g.working) {
		return
	}
	g.working[index], g.working[target] = g.working[target], g.working[index]
}

// WorkingOrder returns a copy of the in-progress order, or nil when no
// reorder session is active.
func (g *Graph) WorkingOrder() []int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.reordering {
		return nil
	}
	return append([]int64(nil), g.working...)
}

// CommitReorder ends the session, applies the order locally, and returns
// the parent id plus the full ordered id list for the save mutation.
func (g *Graph) CommitReorder() (parentID int64, order []int64, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.reordering {
		return 0, nil, false
	}
	order = append([]int64(nil), g.working...)
	g.children[g.reorderParent] = g.working
	parentID = g.reorderParent
	g.reordering = false
	g.working = nil
	return parentID, order, true
}

// CancelReorder discards the working order without persisting anything.
func (g *Graph) CancelReorder() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reordering = false
	g.working = nil
}
