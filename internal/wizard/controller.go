package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/tryon/internal/imagedata"
	"github.com/lehigh-university-libraries/tryon/internal/images"
	"github.com/lehigh-university-libraries/tryon/internal/models"
	"github.com/lehigh-university-libraries/tryon/internal/tryon"
	"github.com/oklog/ulid/v2"
)

// Generator performs the two remote generation operations.
type Generator interface {
	GenerateGarment(ctx context.Context, description string) (imagedata.Image, error)
	Composite(ctx context.Context, person, clothes imagedata.Image) (imagedata.Image, error)
}

// Resolver turns preset URLs into self-contained images.
type Resolver interface {
	ToDataURL(ctx context.Context, img imagedata.Image) (imagedata.Image, error)
}

// History records completed try-ons.
type History interface {
	Add(ctx context.Context, entry models.HistoryEntry)
	Get(id string) (models.HistoryEntry, bool)
}

var ErrHistoryNotFound = errors.New("history entry not found")

// Controller owns one session's State. The lock is never held across a remote
// call; re-entrant requests are refused by the state machine instead.
type Controller struct {
	mu    sync.Mutex
	state State
	run   uint64 // bumped on every try-on start and restart

	generator Generator
	resolver  Resolver
	history   History

	now   func() time.Time
	newID func() string
}

func NewController(generator Generator, resolver Resolver, history History, clothesPresets []imagedata.Image) *Controller {
	return &Controller{
		state:     NewState(clothesPresets),
		generator: generator,
		resolver:  resolver,
		history:   history,
		now:       time.Now,
		newID:     func() string { return ulid.Make().String() },
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// update applies fn under the lock and returns the resulting snapshot.
func (c *Controller) update(fn func(State) (State, error)) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(c.state)
	if err != nil {
		return c.state.Clone(), err
	}
	c.state = next
	return c.state.Clone(), nil
}

// Select stores a preset or already-encoded image as a selection.
func (c *Controller) Select(kind Kind, img imagedata.Image) (State, error) {
	return c.update(func(s State) (State, error) {
		return Select(s, kind, img)
	})
}

// Upload validates and stores an uploaded file. Oversized or non-image files
// set the error and leave the selections untouched.
func (c *Controller) Upload(kind Kind, size int64, declaredType string, r io.Reader) (State, error) {
	if kind != KindPerson && kind != KindClothes {
		return c.State(), fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	c.mu.Lock()
	busy := c.state.Step == Generating
	c.mu.Unlock()
	if busy {
		return c.State(), ErrBusy
	}

	img, err := imagedata.ReadUpload(r, size, declaredType)
	if err != nil {
		slog.Debug("Upload invalid", "kind", kind, "size", size)
		return c.Reject(err), err
	}

	return c.Select(kind, img)
}

// Reject records err as the user-facing error without touching the selections.
func (c *Controller) Reject(err error) State {
	slog.Warn("Upload rejected", "err", err)
	state, _ := c.update(func(s State) (State, error) {
		return WithError(s, UserMessage(err)), nil
	})
	return state
}

func (c *Controller) Advance() (State, error) {
	return c.update(Advance)
}

func (c *Controller) Back() (State, error) {
	return c.update(Back)
}

func (c *Controller) Restart() State {
	state, _ := c.update(func(s State) (State, error) {
		c.run++
		return Restart(s), nil
	})
	return state
}

// ViewHistory shows a stored result.
func (c *Controller) ViewHistory(id string) (State, error) {
	entry, ok := c.history.Get(id)
	if !ok {
		return c.State(), fmt.Errorf("%w: %s", ErrHistoryNotFound, id)
	}
	return c.update(func(s State) (State, error) {
		return ViewResult(s, imagedata.Image(entry.ImageURL))
	})
}

// GenerateClothes creates a clothing image from prompt, adds it to the front
// of the presets and selects it.
func (c *Controller) GenerateClothes(ctx context.Context, prompt string) (State, error) {
	if _, err := c.update(func(s State) (State, error) {
		return BeginGarment(s, prompt)
	}); err != nil {
		return c.State(), err
	}

	img, genErr := c.generator.GenerateGarment(ctx, prompt)

	return c.update(func(s State) (State, error) {
		if genErr != nil {
			return FailGarment(s, UserMessage(genErr)), genErr
		}
		return CompleteGarment(s, img), nil
	})
}

// StartTryOn runs one composite generation. It refuses to start unless both
// selections are present; on failure the step falls back so the user can
// retry.
func (c *Controller) StartTryOn(ctx context.Context) (State, error) {
	var run uint64
	started, err := c.update(func(s State) (State, error) {
		next, err := BeginTryOn(s)
		if err == nil {
			c.run++
			run = c.run
		}
		return next, err
	})
	if err != nil {
		return started, err
	}

	person, clothes := started.Person, started.Clothes
	slog.Info("Starting try-on", "person_embedded", person.IsEmbedded(), "clothes_embedded", clothes.IsEmbedded())

	result, genErr := c.runTryOn(ctx, person, clothes)
	if genErr != nil {
		return c.finishTryOn(run, func(s State) (State, error) {
			return FailTryOn(s, UserMessage(genErr))
		}, genErr)
	}

	c.history.Add(ctx, models.HistoryEntry{
		ID:         c.newID(),
		ImageURL:   string(result),
		PersonURL:  string(person),
		ClothesURL: string(clothes),
		Timestamp:  c.now().UnixMilli(),
	})

	return c.finishTryOn(run, func(s State) (State, error) {
		return CompleteTryOn(s, result)
	}, nil)
}

func (c *Controller) runTryOn(ctx context.Context, person, clothes imagedata.Image) (imagedata.Image, error) {
	personData, err := c.resolver.ToDataURL(ctx, person)
	if err != nil {
		return "", err
	}
	clothesData, err := c.resolver.ToDataURL(ctx, clothes)
	if err != nil {
		return "", err
	}
	return c.generator.Composite(ctx, personData, clothesData)
}

// finishTryOn applies the completion transition for run. If the session was
// restarted while the call was in flight the outcome is dropped.
func (c *Controller) finishTryOn(run uint64, fn func(State) (State, error), genErr error) (State, error) {
	state, _ := c.update(func(s State) (State, error) {
		if c.run != run {
			slog.Info("Try-on finished after session moved on", "step", s.Step)
			return s, nil
		}
		return fn(s)
	})
	return state, genErr
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	var genErr *tryon.GenerationError
	switch {
	case errors.As(err, &genErr):
		return genErr.Message
	case errors.Is(err, images.ErrFetch):
		return images.ErrFetch.Error()
	case errors.Is(err, imagedata.ErrTooLarge):
		return imagedata.ErrTooLarge.Error()
	case errors.Is(err, imagedata.ErrNotImage):
		return imagedata.ErrNotImage.Error()
	default:
		return err.Error()
	}
}
