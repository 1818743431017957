// internal/manuscript/reorder.go
package manuscript

import (
	"context"
	"fmt"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/models"
)

// ItemType names a level of the manuscript tree.
type ItemType string

const (
	ItemAct     ItemType = "act"
	ItemChapter ItemType = "chapter"
	ItemScene   ItemType = "scene"
)

// DragEndEvent is what the drag-and-drop layer reports when a pointer is released.
// Over* names the drop target: a sibling item or a container accepting the item.
type DragEndEvent struct {
	ActiveType        ItemType `json:"activeType"`
	ActiveID          string   `json:"activeId"`
	SourceContainerID string   `json:"sourceContainerId,omitempty"`
	OverType          ItemType `json:"overType"`
	OverID            string   `json:"overId"`
}

// ReorderPlan is the single remote write a drag gesture turns into.
// NewParentID is empty unless the item changes container.
type ReorderPlan struct {
	Type        ItemType `json:"type"`
	ID          string   `json:"id"`
	NewOrder    int      `json:"newOrder"`
	NewParentID string   `json:"newParentId,omitempty"`
}

// Endpoint is the REST route the plan is sent to, for logs and CLI output.
func (p ReorderPlan) Endpoint() string {
	return fmt.Sprintf("PUT /%ss/%s/reorder", p.Type, p.ID)
}

// PlanReorder turns a drag gesture into a reorder plan. A nil plan with a nil error
// means the gesture is a no-op (dropped on itself, or on a target that does not
// accept the item). Unknown ids are reported as not-found errors.
func PlanReorder(n *models.Novel, ev DragEndEvent) (*ReorderPlan, error) {
	if ev.ActiveID == "" || ev.OverID == "" || ev.ActiveID == ev.OverID {
		return nil, nil
	}
	if n == nil {
		return nil, ErrNoNovel
	}

	switch ev.ActiveType {
	case ItemScene:
		return planSceneMove(n, ev)
	case ItemChapter:
		return planChapterMove(n, ev)
	case ItemAct:
		return planActMove(n, ev)
	}
	return nil, nil
}

func planSceneMove(n *models.Novel, ev DragEndEvent) (*ReorderPlan, error) {
	_, source, scene := findScene(n, ev.ActiveID)
	if scene == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("scene %s not found", ev.ActiveID), nil)
	}
	sourceID := ev.SourceContainerID
	if sourceID == "" {
		sourceID = source.ID
	}

	plan := &ReorderPlan{Type: ItemScene, ID: scene.ID}
	var destID string
	switch ev.OverType {
	case ItemScene:
		_, dest, target := findScene(n, ev.OverID)
		if target == nil {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("scene %s not found", ev.OverID), nil)
		}
		destID = dest.ID
		plan.NewOrder = target.Order
	case ItemChapter:
		_, dest := findChapter(n, ev.OverID)
		if dest == nil {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("chapter %s not found", ev.OverID), nil)
		}
		destID = dest.ID
		plan.NewOrder = len(dest.Scenes) + 1
	default:
		return nil, nil
	}
	if destID != sourceID {
		plan.NewParentID = destID
	}
	return plan, nil
}

func planChapterMove(n *models.Novel, ev DragEndEvent) (*ReorderPlan, error) {
	source, chapter := findChapter(n, ev.ActiveID)
	if chapter == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("chapter %s not found", ev.ActiveID), nil)
	}
	sourceID := ev.SourceContainerID
	if sourceID == "" {
		sourceID = source.ID
	}

	plan := &ReorderPlan{Type: ItemChapter, ID: chapter.ID}
	var destID string
	switch ev.OverType {
	case ItemChapter:
		dest, target := findChapter(n, ev.OverID)
		if target == nil {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("chapter %s not found", ev.OverID), nil)
		}
		destID = dest.ID
		plan.NewOrder = target.Order
	case ItemAct:
		dest := findAct(n, ev.OverID)
		if dest == nil {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("act %s not found", ev.OverID), nil)
		}
		destID = dest.ID
		plan.NewOrder = len(dest.Chapters) + 1
	default:
		return nil, nil
	}
	if destID != sourceID {
		plan.NewParentID = destID
	}
	return plan, nil
}

func planActMove(n *models.Novel, ev DragEndEvent) (*ReorderPlan, error) {
	if ev.OverType != ItemAct {
		return nil, nil
	}
	act := findAct(n, ev.ActiveID)
	if act == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("act %s not found", ev.ActiveID), nil)
	}
	target := findAct(n, ev.OverID)
	if target == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("act %s not found", ev.OverID), nil)
	}
	return &ReorderPlan{Type: ItemAct, ID: act.ID, NewOrder: target.Order}, nil
}

// PlanDragEnd plans a gesture against the editor's current aggregate.
func (e *Editor) PlanDragEnd(ev DragEndEvent) (*ReorderPlan, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return PlanReorder(e.novel, ev)
}

// HandleDragEnd performs a drag gesture: at most one reorder request, followed by a
// full refresh whether the request succeeded or not. The server renumbers siblings,
// so local state is never patched from the reorder response.
func (e *Editor) HandleDragEnd(ctx context.Context, ev DragEndEvent) error {
	plan, err := e.PlanDragEnd(ev)
	if err != nil || plan == nil {
		return err
	}
	return e.ApplyReorder(ctx, *plan)
}

// ApplyReorder sends a planned reorder. A second call while one is in flight fails
// with ErrReorderInProgress instead of queuing.
func (e *Editor) ApplyReorder(ctx context.Context, plan ReorderPlan) error {
	if !e.reordering.CompareAndSwap(false, true) {
		return ErrReorderInProgress
	}
	defer e.reordering.Store(false)

	ctx, done := e.scope(ctx)
	defer done()

	e.logger.Info("reordering manuscript item", map[string]interface{}{
		"novel_id":  e.novelID,
		"endpoint":  plan.Endpoint(),
		"new_order": plan.NewOrder,
		"parent_id": plan.NewParentID,
	})

	callErr := e.sendReorder(ctx, plan)
	if e.Closed() {
		return ErrEditorClosed
	}
	refreshErr := e.Refresh(ctx)

	if callErr != nil {
		if refreshErr != nil {
			e.logger.Warn("refresh after failed reorder also failed", map[string]interface{}{
				"novel_id": e.novelID,
				"error":    refreshErr,
			})
		}
		return apperrors.WrapError(callErr, fmt.Sprintf("move %s", plan.Type), apperrors.ErrorTypeNetwork)
	}
	return refreshErr
}

func (e *Editor) sendReorder(ctx context.Context, plan ReorderPlan) error {
	var err error
	switch plan.Type {
	case ItemScene:
		_, err = e.backend.ReorderScene(ctx, e.novelID, plan.ID, models.ReorderSceneRequest{
			NewOrder:     plan.NewOrder,
			NewChapterID: plan.NewParentID,
		})
	case ItemChapter:
		_, err = e.backend.ReorderChapter(ctx, e.novelID, plan.ID, models.ReorderChapterRequest{
			NewOrder: plan.NewOrder,
			NewActID: plan.NewParentID,
		})
	case ItemAct:
		_, err = e.backend.ReorderAct(ctx, e.novelID, plan.ID, models.ReorderActRequest{NewOrder: plan.NewOrder})
	default:
		err = apperrors.NewValidationError(fmt.Sprintf("cannot reorder %q", plan.Type), nil)
	}
	return err
}

// NudgeEvent builds the drag gesture equivalent to moving an item one step up
// (delta < 0) or down (delta > 0) with the keyboard. At a container edge scenes and
// chapters step into the neighbouring container. ok is false when there is nowhere to go.
func NudgeEvent(n *models.Novel, itemType ItemType, id string, delta int) (DragEndEvent, bool) {
	if n == nil || delta == 0 {
		return DragEndEvent{}, false
	}
	switch itemType {
	case ItemScene:
		return nudgeScene(n, id, delta)
	case ItemChapter:
		return nudgeChapter(n, id, delta)
	case ItemAct:
		acts := models.SortedActs(n.Acts)
		for i := range acts {
			if acts[i].ID != id {
				continue
			}
			j := i + sign(delta)
			if j < 0 || j >= len(acts) {
				return DragEndEvent{}, false
			}
			return DragEndEvent{ActiveType: ItemAct, ActiveID: id, OverType: ItemAct, OverID: acts[j].ID}, true
		}
	}
	return DragEndEvent{}, false
}

func nudgeScene(n *models.Novel, id string, delta int) (DragEndEvent, bool) {
	_, ch, sc := findScene(n, id)
	if sc == nil {
		return DragEndEvent{}, false
	}
	ev := DragEndEvent{ActiveType: ItemScene, ActiveID: id, SourceContainerID: ch.ID}

	scenes := models.SortedScenes(ch.Scenes)
	idx := indexOfScene(scenes, id)
	if j := idx + sign(delta); j >= 0 && j < len(scenes) {
		ev.OverType, ev.OverID = ItemScene, scenes[j].ID
		return ev, true
	}

	// Step into the adjacent chapter of the manuscript (reading order).
	var chapters []models.Chapter
	for _, a := range models.SortedActs(n.Acts) {
		chapters = append(chapters, models.SortedChapters(a.Chapters)...)
	}
	for i := range chapters {
		if chapters[i].ID != ch.ID {
			continue
		}
		j := i + sign(delta)
		if j < 0 || j >= len(chapters) {
			return DragEndEvent{}, false
		}
		dest := chapters[j]
		if delta > 0 {
			if first := firstScene(&dest); first != nil {
				ev.OverType, ev.OverID = ItemScene, first.ID
				return ev, true
			}
		}
		ev.OverType, ev.OverID = ItemChapter, dest.ID
		return ev, true
	}
	return DragEndEvent{}, false
}

func nudgeChapter(n *models.Novel, id string, delta int) (DragEndEvent, bool) {
	act, ch := findChapter(n, id)
	if ch == nil {
		return DragEndEvent{}, false
	}
	ev := DragEndEvent{ActiveType: ItemChapter, ActiveID: id, SourceContainerID: act.ID}

	chapters := models.SortedChapters(act.Chapters)
	idx := -1
	for i := range chapters {
		if chapters[i].ID == id {
			idx = i
			break
		}
	}
	if j := idx + sign(delta); j >= 0 && j < len(chapters) {
		ev.OverType, ev.OverID = ItemChapter, chapters[j].ID
		return ev, true
	}

	acts := models.SortedActs(n.Acts)
	for i := range acts {
		if acts[i].ID != act.ID {
			continue
		}
		j := i + sign(delta)
		if j < 0 || j >= len(acts) {
			return DragEndEvent{}, false
		}
		dest := acts[j]
		if delta > 0 {
			if first := firstChapter(&dest); first != nil {
				ev.OverType, ev.OverID = ItemChapter, first.ID
				return ev, true
			}
		}
		ev.OverType, ev.OverID = ItemAct, dest.ID
		return ev, true
	}
	return DragEndEvent{}, false
}

func indexOfScene(scenes []models.Scene, id string) int {
	for i := range scenes {
		if scenes[i].ID == id {
			return i
		}
	}
	return -1
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}
