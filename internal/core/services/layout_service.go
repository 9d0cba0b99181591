package services

import (
	"sync"
	"time"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// pipZBase keeps the PiP z-index space numerically above any grid slot, so
// detached panes always render on top of the template grid.
const pipZBase = 1000

// LayoutConfig carries the geometry policy for one layout session.
type LayoutConfig struct {
	MaxSlots      int
	PaneSpacing   float64
	MinPaneSize   domain.Size
	PiPBubbleSize domain.Size
	MinPinchScale float64
	MaxPinchScale float64
	ContainerSize domain.Size
	Template      domain.TemplateID
}

// DefaultLayoutConfig returns the policy used when no configuration is given.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		MaxSlots:      16,
		PaneSpacing:   8,
		MinPaneSize:   domain.Size{Width: 120, Height: 68},
		PiPBubbleSize: domain.Size{Width: 96, Height: 54},
		MinPinchScale: 0.5,
		MaxPinchScale: 2.0,
		ContainerSize: domain.Size{Width: 1280, Height: 720},
		Template:      domain.TemplateGrid2x2,
	}
}

type layoutService struct {
	mu sync.Mutex

	cfg LayoutConfig

	template     domain.Template
	container    domain.Size
	containerSeq uint64
	slots        []domain.Slot
	pip          []domain.PiPSlot
	fullscreen   domain.StreamID

	playback ports.PlaybackEngine
	metrics  *MetricsService
	logger   *zap.SugaredLogger

	subMu   sync.Mutex
	subs    map[int]func(domain.LayoutState, domain.PiPState)
	nextSub int
}

// NewLayoutService builds the single-writer owner of one session's layout
// state. playback and metrics may be nil.
func NewLayoutService(cfg LayoutConfig, playback ports.PlaybackEngine, metrics *MetricsService, logger *zap.SugaredLogger) ports.LayoutService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	tpl, ok := domain.TemplateByID(cfg.Template)
	if !ok {
		tpl, _ = domain.TemplateByID(domain.TemplateGrid2x2)
	}
	if !cfg.ContainerSize.IsValid() {
		cfg.ContainerSize = domain.Size{Width: 1280, Height: 720}
	}
	return &layoutService{
		cfg:       cfg,
		template:  tpl,
		container: cfg.ContainerSize,
		playback:  playback,
		metrics:   metrics,
		logger:    logger,
		subs:      make(map[int]func(domain.LayoutState, domain.PiPState)),
	}
}

func (s *layoutService) Subscribe(fn func(domain.LayoutState, domain.PiPState)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// notify runs subscribers with already-copied state, outside the state lock.
func (s *layoutService) notify(st domain.LayoutState, pp domain.PiPState) {
	s.subMu.Lock()
	fns := make([]func(domain.LayoutState, domain.PiPState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st, pp)
	}
}

func (s *layoutService) record(op string, started time.Time, err error) {
	if s.metrics != nil {
		s.metrics.RecordOperation(op, err, time.Since(started))
	}
}

// effectiveMax is the slot capacity: the tighter of the session cap and the
// active template's capacity.
func (s *layoutService) effectiveMaxLocked() int {
	max := s.template.MaxSlots
	if s.cfg.MaxSlots > 0 && s.cfg.MaxSlots < max {
		max = s.cfg.MaxSlots
	}
	return max
}

func (s *layoutService) copyStateLocked() domain.LayoutState {
	slots := make([]domain.Slot, len(s.slots))
	copy(slots, s.slots)
	return domain.LayoutState{
		ActiveTemplate: s.template.ID,
		ContainerSize:  s.container,
		Slots:          slots,
		MaxSlots:       s.effectiveMaxLocked(),
		Fullscreen:     s.fullscreen,
	}
}

func (s *layoutService) copyPiPLocked() domain.PiPState {
	slots := make([]domain.PiPSlot, len(s.pip))
	copy(slots, s.pip)
	return domain.PiPState{Slots: slots}
}

func (s *layoutService) State() domain.LayoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyStateLocked()
}

func (s *layoutService) PiP() domain.PiPState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyPiPLocked()
}

// commit copies state under the lock, releases it and fans out the change.
func (s *layoutService) commit() {
	st := s.copyStateLocked()
	pp := s.copyPiPLocked()
	s.mu.Unlock()
	s.notify(st, pp)
}

func (s *layoutService) slotIndexLocked(id domain.StreamID) int {
	for i := range s.slots {
		if s.slots[i].StreamID == id {
			return i
		}
	}
	return -1
}

func (s *layoutService) pipIndexLocked(id domain.PiPID) int {
	for i := range s.pip {
		if s.pip[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *layoutService) pipIndexForStreamLocked(id domain.StreamID) int {
	for i := range s.pip {
		if s.pip[i].StreamID == id {
			return i
		}
	}
	return -1
}

// renumberZLocked compacts grid z-indices to a dense 1..n, preserving the
// current stacking order (ties broken by insertion order).
func (s *layoutService) renumberZLocked() {
	order := make([]int, len(s.slots))
	for i := range order {
		order[i] = i
	}
	// Stable insertion sort by z-index; slices are small.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && s.slots[order[j-1]].ZIndex > s.slots[order[j]].ZIndex; j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
	for rank, idx := range order {
		s.slots[idx].ZIndex = rank + 1
	}
}

func (s *layoutService) renumberPiPZLocked() {
	order := make([]int, len(s.pip))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && s.pip[order[j-1]].ZIndex > s.pip[order[j]].ZIndex; j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
	for rank, idx := range order {
		s.pip[idx].ZIndex = pipZBase + rank + 1
	}
}

func (s *layoutService) maxZLocked() int {
	max := 0
	for i := range s.slots {
		if s.slots[i].ZIndex > max {
			max = s.slots[i].ZIndex
		}
	}
	return max
}

// applyTemplateLocked recomputes every slot frame from the active template.
// Custom keeps the manual frames and only clamps them into the container.
func (s *layoutService) applyTemplateLocked() {
	if s.template.IsManual() {
		for i := range s.slots {
			s.slots[i].Frame = s.slots[i].Frame.ClampInto(s.container)
		}
		return
	}
	rects := s.template.Rectangles(s.container, len(s.slots), s.cfg.PaneSpacing)
	for i := range s.slots {
		if i < len(rects) {
			s.slots[i].Frame = rects[i]
		}
	}
	s.renumberZLocked()
}

func (s *layoutService) SetContainerSize(size domain.Size, seq uint64) error {
	started := time.Now()
	s.mu.Lock()
	if !size.IsValid() {
		s.mu.Unlock()
		s.record("set_container_size", started, domain.ErrInvalidGeometry)
		return domain.ErrInvalidGeometry
	}
	// Resize events carry a monotonic sequence number; a stale size arriving
	// after a newer one must not win.
	if seq <= s.containerSeq {
		s.mu.Unlock()
		s.record("set_container_size", started, domain.ErrStaleContainerSize)
		return domain.ErrStaleContainerSize
	}
	s.containerSeq = seq
	s.container = size
	s.applyTemplateLocked()
	for i := range s.pip {
		frame := s.pip[i].Frame(s.cfg.PiPBubbleSize).ClampInto(s.container)
		s.pip[i].Position = frame.Origin()
	}
	s.logger.Debugw("container resized", "width", size.Width, "height", size.Height, "seq", seq)
	s.record("set_container_size", started, nil)
	s.commit()
	return nil
}

func (s *layoutService) SetTemplate(id domain.TemplateID) error {
	started := time.Now()
	s.mu.Lock()
	tpl, ok := domain.TemplateByID(id)
	if !ok {
		s.mu.Unlock()
		s.record("set_template", started, domain.ErrUnknownTemplate)
		return domain.ErrUnknownTemplate
	}
	max := tpl.MaxSlots
	if s.cfg.MaxSlots > 0 && s.cfg.MaxSlots < max {
		max = s.cfg.MaxSlots
	}
	if len(s.slots) > max {
		s.mu.Unlock()
		s.record("set_template", started, domain.ErrCapacityExceeded)
		return domain.ErrCapacityExceeded
	}
	s.template = tpl
	s.applyTemplateLocked()
	s.logger.Debugw("template changed", "template", id, "slots", len(s.slots))
	s.record("set_template", started, nil)
	s.commit()
	return nil
}

func (s *layoutService) AddStream(id domain.StreamID) error {
	started := time.Now()
	s.mu.Lock()
	if s.slotIndexLocked(id) >= 0 || s.pipIndexForStreamLocked(id) >= 0 {
		s.mu.Unlock()
		s.record("add_stream", started, domain.ErrDuplicateStream)
		return domain.ErrDuplicateStream
	}
	if len(s.slots) >= s.effectiveMaxLocked() {
		s.mu.Unlock()
		s.record("add_stream", started, domain.ErrCapacityExceeded)
		return domain.ErrCapacityExceeded
	}

	n := len(s.slots)
	rects := s.template.Rectangles(s.container, n+1, s.cfg.PaneSpacing)
	frame := domain.Rect{Width: s.container.Width, Height: s.container.Height}
	if n < len(rects) {
		frame = rects[n]
	}
	s.slots = append(s.slots, domain.Slot{
		StreamID: id,
		Frame:    frame,
		ZIndex:   s.maxZLocked() + 1,
	})
	s.logger.Debugw("stream added", "stream_id", id, "slots", len(s.slots))
	s.record("add_stream", started, nil)
	s.commit()
	return nil
}

func (s *layoutService) RemoveStream(id domain.StreamID) error {
	started := time.Now()
	s.mu.Lock()
	if idx := s.slotIndexLocked(id); idx >= 0 {
		// Removing the focused or audio-active slot leaves focus/audio
		// unset; silence is preferred to an arbitrary auto-unmute.
		s.slots = append(s.slots[:idx], s.slots[idx+1:]...)
		s.renumberZLocked()
		if s.fullscreen == id {
			s.fullscreen = ""
		}
		s.logger.Debugw("stream removed", "stream_id", id, "slots", len(s.slots))
		s.record("remove_stream", started, nil)
		s.commit()
		return nil
	}
	if idx := s.pipIndexForStreamLocked(id); idx >= 0 {
		s.pip = append(s.pip[:idx], s.pip[idx+1:]...)
		s.renumberPiPZLocked()
		s.logger.Debugw("stream removed from pip", "stream_id", id)
		s.record("remove_stream", started, nil)
		s.commit()
		return nil
	}
	s.mu.Unlock()
	s.record("remove_stream", started, domain.ErrNotFound)
	return domain.ErrNotFound
}

func (s *layoutService) MoveSlot(id domain.StreamID, origin domain.Point) error {
	started := time.Now()
	s.mu.Lock()
	if !s.template.IsManual() {
		s.mu.Unlock()
		s.record("move_slot", started, domain.ErrTemplateLocked)
		return domain.ErrTemplateLocked
	}
	idx := s.slotIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.record("move_slot", started, domain.ErrNotFound)
		return domain.ErrNotFound
	}
	frame := s.slots[idx].Frame
	frame.X = origin.X
	frame.Y = origin.Y
	s.slots[idx].Frame = frame.ClampInto(s.container)
	s.record("move_slot", started, nil)
	s.commit()
	return nil
}

func (s *layoutService) ResizeSlot(id domain.StreamID, size domain.Size) error {
	started := time.Now()
	s.mu.Lock()
	if !s.template.IsManual() {
		s.mu.Unlock()
		s.record("resize_slot", started, domain.ErrTemplateLocked)
		return domain.ErrTemplateLocked
	}
	idx := s.slotIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.record("resize_slot", started, domain.ErrNotFound)
		return domain.ErrNotFound
	}
	if !size.IsValid() {
		s.mu.Unlock()
		s.record("resize_slot", started, domain.ErrInvalidGeometry)
		return domain.ErrInvalidGeometry
	}
	// Floor keeps the pane controls usable.
	if size.Width < s.cfg.MinPaneSize.Width {
		size.Width = s.cfg.MinPaneSize.Width
	}
	if size.Height < s.cfg.MinPaneSize.Height {
		size.Height = s.cfg.MinPaneSize.Height
	}
	frame := s.slots[idx].Frame
	frame.Width = size.Width
	frame.Height = size.Height
	s.slots[idx].Frame = frame.ClampInto(s.container)
	s.record("resize_slot", started, nil)
	s.commit()
	return nil
}

func (s *layoutService) BringToFront(id domain.StreamID) error {
	started := time.Now()
	s.mu.Lock()
	idx := s.slotIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.record("bring_to_front", started, domain.ErrNotFound)
		return domain.ErrNotFound
	}
	s.slots[idx].ZIndex = s.maxZLocked() + 1
	s.renumberZLocked()
	s.record("bring_to_front", started, nil)
	s.commit()
	return nil
}

func (s *layoutService) SendToBack(id domain.StreamID) error {
	started := time.Now()
	s.mu.Lock()
	idx := s.slotIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.record("send_to_back", started, domain.ErrNotFound)
		return domain.ErrNotFound
	}
	min := s.slots[0].ZIndex
	for i := range s.slots {
		if s.slots[i].ZIndex < min {
			min = s.slots[i].ZIndex
		}
	}
	s.slots[idx].ZIndex = min - 1
	s.renumberZLocked()
	s.record("send_to_back", started, nil)
	s.commit()
	return nil
}

func (s *layoutService) SetFocus(id domain.StreamID) error {
	started := time.Now()
	s.mu.Lock()
	idx := s.slotIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.record("set_focus", started, domain.ErrNotFound)
		return domain.ErrNotFound
	}
	for i := range s.slots {
		s.slots[i].Focused = i == idx
	}
	s.record("set_focus", started, nil)
	s.commit()
	return nil
}

func (s *layoutService) ClearFocus() {
	started := time.Now()
	s.mu.Lock()
	for i := range s.slots {
		s.slots[i].Focused = false
	}
	s.record("clear_focus", started, nil)
	s.commit()
}

func (s *layoutService) SetAudioActive(id domain.StreamID) error {
	started := time.Now()
	s.mu.Lock()
	slotIdx := s.slotIndexLocked(id)
	pipIdx := s.pipIndexForStreamLocked(id)
	if slotIdx < 0 && pipIdx < 0 {
		s.mu.Unlock()
		s.record("set_audio_active", started, domain.ErrNotFound)
		return domain.ErrNotFound
	}
	// Single-speaker invariant spans the grid and the PiP layer.
	for i := range s.slots {
		s.slots[i].AudioActive = i == slotIdx
	}
	for i := range s.pip {
		s.pip[i].AudioActive = i == pipIdx
	}
	s.record("set_audio_active", started, nil)
	s.commit()
	if s.playback != nil {
		s.playback.AudioActivated(id)
	}
	return nil
}

func (s *layoutService) MuteAll() {
	started := time.Now()
	s.mu.Lock()
	for i := range s.slots {
		s.slots[i].AudioActive = false
	}
	for i := range s.pip {
		s.pip[i].AudioActive = false
	}
	s.record("mute_all", started, nil)
	s.commit()
	if s.playback != nil {
		s.playback.AllMuted()
	}
}

func (s *layoutService) AutoArrange(style domain.ArrangeStyle) error {
	started := time.Now()
	s.mu.Lock()
	frames, err := arrangeFrames(style, s.container, len(s.slots), s.cfg)
	if err != nil {
		s.mu.Unlock()
		s.record("auto_arrange", started, err)
		return err
	}
	for i := range s.slots {
		s.slots[i].Frame = frames[i]
	}
	// Positions are manual from here on.
	s.template, _ = domain.TemplateByID(domain.TemplateCustom)
	s.logger.Debugw("auto arranged", "style", style, "slots", len(s.slots))
	s.record("auto_arrange", started, nil)
	s.commit()
	return nil
}

func (s *layoutService) ToggleFullscreen(id domain.StreamID) error {
	started := time.Now()
	s.mu.Lock()
	if s.slotIndexLocked(id) < 0 {
		s.mu.Unlock()
		s.record("toggle_fullscreen", started, domain.ErrNotFound)
		return domain.ErrNotFound
	}
	if s.fullscreen == id {
		s.fullscreen = ""
	} else {
		s.fullscreen = id
	}
	s.record("toggle_fullscreen", started, nil)
	s.commit()
	return nil
}

func (s *layoutService) ExitFullscreen() {
	started := time.Now()
	s.mu.Lock()
	s.fullscreen = ""
	s.record("exit_fullscreen", started, nil)
	s.commit()
}

func (s *layoutService) DetachToPiP(id domain.StreamID) (domain.PiPID, error) {
	started := time.Now()
	s.mu.Lock()
	idx := s.slotIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.record("detach_to_pip", started, domain.ErrNotFound)
		return "", domain.ErrNotFound
	}
	slot := s.slots[idx]
	s.slots = append(s.slots[:idx], s.slots[idx+1:]...)
	s.renumberZLocked()
	if s.fullscreen == id {
		s.fullscreen = ""
	}

	pipID := domain.PiPID(uuid.NewString())
	frame := slot.Frame.ClampInto(s.container)
	s.pip = append(s.pip, domain.PiPSlot{
		ID:          pipID,
		StreamID:    slot.StreamID,
		Position:    frame.Origin(),
		Size:        frame.Size(),
		ZIndex:      pipZBase + len(s.pip) + 1,
		AudioActive: slot.AudioActive,
	})
	s.logger.Debugw("stream detached to pip", "stream_id", id, "pip_id", pipID)
	s.record("detach_to_pip", started, nil)
	s.commit()
	return pipID, nil
}

func (s *layoutService) ReattachFromPiP(id domain.PiPID) error {
	started := time.Now()
	s.mu.Lock()
	idx := s.pipIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.record("reattach_from_pip", started, domain.ErrNotFound)
		return domain.ErrNotFound
	}
	if len(s.slots) >= s.effectiveMaxLocked() {
		s.mu.Unlock()
		s.record("reattach_from_pip", started, domain.ErrCapacityExceeded)
		return domain.ErrCapacityExceeded
	}
	pipSlot := s.pip[idx]
	s.pip = append(s.pip[:idx], s.pip[idx+1:]...)
	s.renumberPiPZLocked()

	n := len(s.slots)
	var frame domain.Rect
	if s.template.IsManual() {
		frame = domain.Rect{X: pipSlot.Position.X, Y: pipSlot.Position.Y, Width: pipSlot.Size.Width, Height: pipSlot.Size.Height}.ClampInto(s.container)
	} else {
		rects := s.template.Rectangles(s.container, n+1, s.cfg.PaneSpacing)
		frame = domain.Rect{Width: s.container.Width, Height: s.container.Height}
		if n < len(rects) {
			frame = rects[n]
		}
	}
	s.slots = append(s.slots, domain.Slot{
		StreamID:    pipSlot.StreamID,
		Frame:       frame,
		ZIndex:      s.maxZLocked() + 1,
		AudioActive: pipSlot.AudioActive,
	})
	s.logger.Debugw("stream reattached from pip", "stream_id", pipSlot.StreamID, "pip_id", id)
	s.record("reattach_from_pip", started, nil)
	s.commit()
	return nil
}

func (s *layoutService) MovePiP(id domain.PiPID, pos domain.Point) error {
	started := time.Now()
	s.mu.Lock()
	idx := s.pipIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.record("move_pip", started, domain.ErrNotFound)
		return domain.ErrNotFound
	}
	s.pip[idx].Position = pos
	frame := s.pip[idx].Frame(s.cfg.PiPBubbleSize).ClampInto(s.container)
	s.pip[idx].Position = frame.Origin()
	s.record("move_pip", started, nil)
	s.commit()
	return nil
}

func (s *layoutService) MinimizePiP(id domain.PiPID) error {
	return s.setPiPMode(id, true, false, "minimize_pip")
}

func (s *layoutService) MaximizePiP(id domain.PiPID) error {
	return s.setPiPMode(id, false, true, "maximize_pip")
}

func (s *layoutService) RestorePiP(id domain.PiPID) error {
	return s.setPiPMode(id, false, false, "restore_pip")
}

// setPiPMode flips the mutually exclusive minimized/maximized flags. The
// stored size is untouched so un-minimizing restores the previous footprint.
func (s *layoutService) setPiPMode(id domain.PiPID, minimized, maximized bool, op string) error {
	started := time.Now()
	s.mu.Lock()
	idx := s.pipIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.record(op, started, domain.ErrNotFound)
		return domain.ErrNotFound
	}
	s.pip[idx].Minimized = minimized
	s.pip[idx].Maximized = maximized
	s.record(op, started, nil)
	s.commit()
	return nil
}

// ApplyIntent funnels discrete gesture intents into layout operations.
// Continuous preview intents (drag_move, resize) and cancels never touch
// committed state.
func (s *layoutService) ApplyIntent(intent domain.Intent) error {
	switch intent.Type {
	case domain.IntentDragEnd, domain.IntentResizeEnd, domain.IntentFocus,
		domain.IntentClearFocus, domain.IntentFullscreenToggle:
		if s.metrics != nil {
			s.metrics.RecordIntent(intent.Type)
		}
	}

	switch intent.Type {
	case domain.IntentDragEnd:
		s.mu.Lock()
		idx := s.slotIndexLocked(intent.StreamID)
		if idx < 0 {
			s.mu.Unlock()
			return domain.ErrNotFound
		}
		origin := s.slots[idx].Frame.Origin()
		s.mu.Unlock()
		return s.MoveSlot(intent.StreamID, domain.Point{
			X: origin.X + intent.Translation.X,
			Y: origin.Y + intent.Translation.Y,
		})

	case domain.IntentResizeEnd:
		scale := intent.Scale
		if scale < s.cfg.MinPinchScale {
			scale = s.cfg.MinPinchScale
		}
		if scale > s.cfg.MaxPinchScale {
			scale = s.cfg.MaxPinchScale
		}
		s.mu.Lock()
		idx := s.slotIndexLocked(intent.StreamID)
		if idx < 0 {
			s.mu.Unlock()
			return domain.ErrNotFound
		}
		size := s.slots[idx].Frame.Size()
		s.mu.Unlock()
		return s.ResizeSlot(intent.StreamID, domain.Size{
			Width:  size.Width * scale,
			Height: size.Height * scale,
		})

	case domain.IntentFocus:
		return s.SetFocus(intent.StreamID)

	case domain.IntentClearFocus:
		s.ClearFocus()
		return nil

	case domain.IntentFullscreenToggle:
		return s.ToggleFullscreen(intent.StreamID)

	default:
		// Previews, cancels and selection mode are handled by the caller's
		// presentation layer; the committed layout does not change.
		return nil
	}
}

func (s *layoutService) Serialize(name string) domain.LayoutSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := make([]domain.Slot, len(s.slots))
	copy(slots, s.slots)
	pip := make([]domain.PiPSlot, len(s.pip))
	copy(pip, s.pip)
	return domain.LayoutSnapshot{
		Name:          name,
		TemplateID:    s.template.ID,
		ContainerSize: s.container,
		Slots:         slots,
		PiPSlots:      pip,
		Fullscreen:    s.fullscreen,
		SavedAt:       time.Now(),
	}
}

func (s *layoutService) Restore(snapshot *domain.LayoutSnapshot) error {
	started := time.Now()
	s.mu.Lock()
	tpl, ok := domain.TemplateByID(snapshot.TemplateID)
	if !ok {
		s.mu.Unlock()
		s.record("restore", started, domain.ErrUnknownTemplate)
		return domain.ErrUnknownTemplate
	}
	max := tpl.MaxSlots
	if s.cfg.MaxSlots > 0 && s.cfg.MaxSlots < max {
		max = s.cfg.MaxSlots
	}
	if len(snapshot.Slots) > max {
		s.mu.Unlock()
		s.record("restore", started, domain.ErrCapacityExceeded)
		return domain.ErrCapacityExceeded
	}

	s.template = tpl
	s.slots = make([]domain.Slot, len(snapshot.Slots))
	copy(s.slots, snapshot.Slots)
	s.pip = make([]domain.PiPSlot, len(snapshot.PiPSlots))
	copy(s.pip, snapshot.PiPSlots)
	s.fullscreen = snapshot.Fullscreen
	s.sanitizeExclusiveLocked()

	// Restoring onto a different container size takes the same clamp and
	// recompute path as a container resize.
	if snapshot.ContainerSize != s.container {
		s.applyTemplateLocked()
		for i := range s.pip {
			frame := s.pip[i].Frame(s.cfg.PiPBubbleSize).ClampInto(s.container)
			s.pip[i].Position = frame.Origin()
		}
	}
	s.renumberPiPZLocked()
	s.logger.Infow("layout restored", "name", snapshot.Name, "template", snapshot.TemplateID, "slots", len(s.slots))
	s.record("restore", started, nil)
	s.commit()
	return nil
}

// sanitizeExclusiveLocked re-establishes the at-most-one focus and audio
// invariants after loading externally produced state.
func (s *layoutService) sanitizeExclusiveLocked() {
	focusSeen := false
	for i := range s.slots {
		if s.slots[i].Focused {
			if focusSeen {
				s.slots[i].Focused = false
			}
			focusSeen = true
		}
	}
	audioSeen := false
	for i := range s.slots {
		if s.slots[i].AudioActive {
			if audioSeen {
				s.slots[i].AudioActive = false
			}
			audioSeen = true
		}
	}
	for i := range s.pip {
		if s.pip[i].AudioActive {
			if audioSeen {
				s.pip[i].AudioActive = false
			}
			audioSeen = true
		}
		if s.pip[i].Minimized && s.pip[i].Maximized {
			s.pip[i].Maximized = false
		}
	}
}
