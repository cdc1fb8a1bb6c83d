package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"stager/internal/domain"
	"stager/internal/domain/presets"
	"stager/internal/history"
	"stager/internal/infra"
	"stager/internal/metrics"
	"stager/internal/providers/image"
	"stager/internal/storage"
)

const subscriberBuffer = 8

// Config carries the collaborators shared by every session.
type Config struct {
	Generator         image.Generator
	Blobs             storage.BlobStore
	Catalog           presets.Catalog
	Gate              *semaphore.Weighted
	Metrics           *metrics.Metrics
	Logger            *infra.Logger
	GenerationTimeout time.Duration
	RequestID         func(ctx context.Context) string
	Now               func() time.Time
}

// Controller owns one editing session: its undoable form state plus the
// transient outcome of the last generation.
type Controller struct {
	id        string
	cfg       *Config
	createdAt time.Time

	mu      sync.Mutex
	history *history.Store[domain.AppState]
	version uint64
	changed bool
	closed  bool

	loading   bool
	lastError string
	result    *domain.GeneratedImage

	subscribers map[int]chan View
	nextSub     int
}

func newController(id string, cfg *Config) *Controller {
	c := &Controller{
		id:          id,
		cfg:         cfg,
		createdAt:   cfg.Now().UTC(),
		subscribers: make(map[int]chan View),
	}
	c.history = history.New(domain.InitialAppState(),
		history.WithEqual(domain.AppState.Equal),
		history.WithOnChange(func(domain.AppState) { c.changed = true }),
	)
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// View returns the current state of the session.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Image returns the reference of the currently selected upload, if any.
func (c *Controller) Image() *domain.ImageRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Current().Image
}

// Result returns the last generated image, if any.
func (c *Controller) Result() *domain.GeneratedImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// SetImage replaces the product photo. A nil ref removes it. Any previous
// error or result is cleared.
func (c *Controller) SetImage(ref *domain.ImageRef) (View, error) {
	return c.edit(func() error {
		c.history.Update(func(s domain.AppState) domain.AppState {
			s.Image = ref
			return s
		})
		c.resetOutcomeLocked()
		return nil
	})
}

// SetPrompt replaces the scene description.
func (c *Controller) SetPrompt(prompt string) (View, error) {
	return c.edit(func() error {
		c.history.Update(func(s domain.AppState) domain.AppState {
			s.Prompt = prompt
			return s
		})
		return nil
	})
}

// SetShouldModifyItem toggles whether the model may relight the product.
func (c *Controller) SetShouldModifyItem(modify bool) (View, error) {
	return c.edit(func() error {
		c.history.Update(func(s domain.AppState) domain.AppState {
			s.ShouldModifyItem = modify
			return s
		})
		return nil
	})
}

// SelectStyle selects a style preset, or clears it when the style is already
// selected. An empty name clears the selection.
func (c *Controller) SelectStyle(name string) (View, error) {
	return c.edit(func() error {
		canonical := ""
		if strings.TrimSpace(name) != "" {
			style, ok := c.cfg.Catalog.Lookup(name)
			if !ok {
				return domain.NewUserError(domain.ErrUnknownStyle, fmt.Sprintf("Unknown style %q.", strings.TrimSpace(name)))
			}
			canonical = style.Name
		}
		c.history.Update(func(s domain.AppState) domain.AppState {
			if s.SelectedStyle == canonical {
				s.SelectedStyle = ""
			} else {
				s.SelectedStyle = canonical
			}
			return s
		})
		return nil
	})
}

// SelectExample copies the example prompt at index into the prompt field.
func (c *Controller) SelectExample(index int) (View, error) {
	return c.edit(func() error {
		prompt, ok := c.cfg.Catalog.Example(index)
		if !ok {
			return domain.NewUserError(domain.ErrUnknownExample, fmt.Sprintf("Example prompt %d does not exist.", index))
		}
		c.history.Update(func(s domain.AppState) domain.AppState {
			s.Prompt = prompt
			return s
		})
		return nil
	})
}

// Undo steps back one history entry. It is a no-op at the oldest entry.
func (c *Controller) Undo() (View, error) {
	return c.edit(func() error {
		c.history.Undo()
		return nil
	})
}

// Redo steps forward one history entry. It is a no-op at the newest entry.
func (c *Controller) Redo() (View, error) {
	return c.edit(func() error {
		c.history.Redo()
		return nil
	})
}

// Generate composes the final prompt and asks the generator for a staged
// scene. It blocks until the generator returns. Only one generation may run
// per session; a second call while loading fails with domain.ErrBusy.
func (c *Controller) Generate(ctx context.Context) (View, error) {
	c.mu.Lock()
	if err := c.usableLocked(); err != nil {
		c.mu.Unlock()
		c.cfg.Metrics.GenerationRejected()
		return View{}, err
	}
	state := c.history.Current()
	if state.Prompt == "" || state.Image == nil {
		c.lastError = domain.MsgMissingInput
		c.changed = true
		view := c.flushLocked()
		c.mu.Unlock()
		c.cfg.Metrics.GenerationRejected()
		return view, domain.NewUserError(domain.ErrValidation, domain.MsgMissingInput)
	}
	c.loading = true
	c.resetOutcomeLocked()
	c.changed = true
	c.flushLocked()
	c.mu.Unlock()

	finalPrompt := c.cfg.Catalog.Compose(state.Prompt, state.SelectedStyle)
	asset, err := c.runGeneration(ctx, finalPrompt, state)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.changed = true
	switch {
	case err != nil:
		c.lastError = userMessage(err)
	case asset == nil || asset.Base64 == "":
		c.lastError = domain.MsgEmptyResult
		err = domain.NewUserError(domain.ErrEmptyResult, domain.MsgEmptyResult)
	default:
		mime := asset.MIMEType
		if mime == "" {
			mime = image.DefaultMIMEType
		}
		c.result = &domain.GeneratedImage{
			Base64:      asset.Base64,
			MIMEType:    mime,
			Prompt:      finalPrompt,
			Source:      state.Image,
			GeneratedAt: c.cfg.Now().UTC(),
		}
	}
	return c.flushLocked(), err
}

func (c *Controller) runGeneration(ctx context.Context, prompt string, state domain.AppState) (*image.Asset, error) {
	if c.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.GenerationTimeout)
		defer cancel()
	}
	requestID := ""
	if c.cfg.RequestID != nil {
		requestID = c.cfg.RequestID(ctx)
	}
	logger := c.cfg.Logger.With().
		Str("session_id", c.id).
		Str("request_id", requestID).
		Logger()

	if err := c.cfg.Gate.Acquire(ctx, 1); err != nil {
		logger.Warn().Err(err).Msg("session: gave up waiting for a generation slot")
		return nil, &domain.UserError{Kind: domain.ErrGeneration, Message: "AI image generation failed: " + err.Error(), Err: err}
	}
	defer c.cfg.Gate.Release(1)

	data, err := c.cfg.Blobs.Read(ctx, state.Image.StorageKey)
	if err != nil {
		logger.Error().Err(err).Str("image_id", state.Image.ID).Msg("session: read upload")
		return nil, fmt.Errorf("read upload %s: %w", state.Image.ID, err)
	}

	done := c.cfg.Metrics.GenerationStarted()
	start := time.Now()
	asset, err := c.cfg.Generator.Generate(ctx, image.SceneRequest{
		Prompt:           prompt,
		ImageBase64:      base64.StdEncoding.EncodeToString(data),
		MIMEType:         state.Image.MIMEType,
		ShouldModifyItem: state.ShouldModifyItem,
		RequestID:        requestID,
	})
	done(err)
	if err != nil {
		logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("session: generation failed")
		return nil, err
	}
	logger.Info().Dur("duration", time.Since(start)).Msg("session: generation finished")
	return asset, nil
}

// Subscribe returns a channel receiving a View after every change, starting
// with the current one. Slow readers miss intermediate views. The channel is
// closed by cancel or when the session ends.
func (c *Controller) Subscribe() (<-chan View, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan View, subscriberBuffer)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = ch
	ch <- c.viewLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close ends the session and disconnects its subscribers. It reports whether
// this call was the one that closed it.
func (c *Controller) Close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	for id, ch := range c.subscribers {
		delete(c.subscribers, id)
		close(ch)
	}
	return true
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) edit(fn func() error) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usableLocked(); err != nil {
		return View{}, err
	}
	if err := fn(); err != nil {
		return c.viewLocked(), err
	}
	return c.flushLocked(), nil
}

func (c *Controller) usableLocked() error {
	if c.closed {
		return domain.ErrNotFound
	}
	if c.loading {
		return domain.ErrBusy
	}
	return nil
}

func (c *Controller) resetOutcomeLocked() {
	if c.lastError != "" || c.result != nil {
		c.changed = true
	}
	c.lastError = ""
	c.result = nil
}

// flushLocked bumps the version and notifies subscribers when something
// changed since the last flush.
func (c *Controller) flushLocked() View {
	if !c.changed {
		return c.viewLocked()
	}
	c.changed = false
	c.version++
	view := c.viewLocked()
	for _, ch := range c.subscribers {
		publish(ch, view)
	}
	return view
}

func (c *Controller) viewLocked() View {
	return View{
		SessionID: c.id,
		Version:   c.version,
		State:     c.history.Current(),
		CanUndo:   c.history.CanUndo(),
		CanRedo:   c.history.CanRedo(),
		History:   HistoryInfo{Length: c.history.Len(), Cursor: c.history.Cursor()},
		Loading:   c.loading,
		Error:     c.lastError,
		Result:    c.result,
		CreatedAt: c.createdAt,
	}
}

// publish never blocks: when the buffer is full the oldest view is dropped.
func publish(ch chan View, view View) {
	for {
		select {
		case ch <- view:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func userMessage(err error) string {
	var userErr *domain.UserError
	if errors.As(err, &userErr) {
		return userErr.Message
	}
	return domain.MsgUnknownFault
}
