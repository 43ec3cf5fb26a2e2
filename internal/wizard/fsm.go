// Package wizard implements the four-step try-on flow as an explicit state
// machine. The functions in this file are pure: they take a State and return
// the next one. Controller adds locking and the side effects.
package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/tryon/internal/imagedata"
)

// Step is the wizard page the session is on.
type Step int

const (
	SelectPerson Step = iota + 1
	SelectClothes
	Generating
	Result
)

var stepNames = map[Step]string{
	SelectPerson:  "select_person",
	SelectClothes: "select_clothes",
	Generating:    "generating",
	Result:        "result",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

func (s Step) MarshalText() ([]byte, error) {
	if _, ok := stepNames[s]; !ok {
		return nil, fmt.Errorf("unknown step %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(text []byte) error {
	for step, name := range stepNames {
		if name == string(text) {
			*s = step
			return nil
		}
	}
	return fmt.Errorf("unknown step %q", text)
}

// Event is an input to the step transition table.
type Event int

const (
	EventAdvance Event = iota + 1
	EventBack
	EventStartTryOn
	EventSucceed
	EventFail
	EventRestart
	EventViewHistory
)

var eventNames = map[Event]string{
	EventAdvance:     "advance",
	EventBack:        "back",
	EventStartTryOn:  "start_tryon",
	EventSucceed:     "succeed",
	EventFail:        "fail",
	EventRestart:     "restart",
	EventViewHistory: "view_history",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Kind names which selection an image is for.
type Kind string

const (
	KindPerson  Kind = "person"
	KindClothes Kind = "clothes"
)

var (
	// ErrNotReady means a precondition (a selection, a prompt) is missing.
	ErrNotReady          = errors.New("required selection is missing")
	// ErrBusy means a generation is already in flight.
	ErrBusy              = errors.New("a generation is already in progress")
	// ErrInvalidTransition means the event is not allowed from the current step.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrUnknownKind means the selection target is neither person nor clothes.
	ErrUnknownKind       = errors.New("unknown image kind")
)

// IsRejection reports whether err means the request was refused and the state
// left untouched.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNotReady) || errors.Is(err, ErrBusy) ||
		errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrUnknownKind)
}

// State is one session of the flow.
type State struct {
	Step              Step              `json:"step"`
	Person            imagedata.Image   `json:"person,omitempty"`
	Clothes           imagedata.Image   `json:"clothes,omitempty"`
	ClothesPresets    []imagedata.Image `json:"clothes_presets"`
	Prompt            string            `json:"prompt,omitempty"`
	GeneratingClothes bool              `json:"generating_clothes"`
	Result            imagedata.Image   `json:"result,omitempty"`
	Error             string            `json:"error,omitempty"`
}

// NewState returns the initial state with the given clothing presets.
func NewState(clothesPresets []imagedata.Image) State {
	presets := make([]imagedata.Image, len(clothesPresets))
	copy(presets, clothesPresets)
	return State{Step: SelectPerson, ClothesPresets: presets}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	presets := make([]imagedata.Image, len(s.ClothesPresets))
	copy(presets, s.ClothesPresets)
	s.ClothesPresets = presets
	return s
}

type rule struct {
	from  Step // zero matches any step
	event Event
	guard func(State) error
	to    func(State) Step
}

func goTo(step Step) func(State) Step {
	return func(State) Step { return step }
}

func requirePerson(s State) error {
	if s.Person.IsEmpty() {
		return fmt.Errorf("%w: person image", ErrNotReady)
	}
	return nil
}

func requireBoth(s State) error {
	if s.Person.IsEmpty() || s.Clothes.IsEmpty() {
		return fmt.Errorf("%w: person and clothing images", ErrNotReady)
	}
	if s.GeneratingClothes {
		return ErrBusy
	}
	return nil
}

// fallbackStep is the most recent selection-capable step.
func fallbackStep(s State) Step {
	if !s.Clothes.IsEmpty() {
		return SelectClothes
	}
	return SelectPerson
}

var transitions = []rule{
	{from: SelectPerson, event: EventAdvance, guard: requirePerson, to: goTo(SelectClothes)},
	{from: SelectClothes, event: EventBack, to: goTo(SelectPerson)},
	{from: SelectClothes, event: EventStartTryOn, guard: requireBoth, to: goTo(Generating)},
	{from: Generating, event: EventSucceed, to: goTo(Result)},
	{from: Generating, event: EventFail, to: fallbackStep},
	{from: SelectPerson, event: EventViewHistory, to: goTo(Result)},
	{from: SelectClothes, event: EventViewHistory, to: goTo(Result)},
	{from: Result, event: EventViewHistory, to: goTo(Result)},
	{event: EventRestart, to: goTo(SelectPerson)},
}

// Next returns the step reached by applying ev to s.
func Next(s State, ev Event) (Step, error) {
	for _, r := range transitions {
		if r.event != ev || (r.from != 0 && r.from != s.Step) {
			continue
		}
		if r.guard != nil {
			if err := r.guard(s); err != nil {
				return s.Step, err
			}
		}
		return r.to(s), nil
	}

	if s.Step == Generating {
		return s.Step, fmt.Errorf("%w: %s", ErrBusy, ev)
	}
	return s.Step, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, s.Step)
}

// Select stores img as the person or clothing selection. The step is not
// changed.
func Select(s State, kind Kind, img imagedata.Image) (State, error) {
	if s.Step == Generating {
		return s, ErrBusy
	}
	if img.IsEmpty() {
		return s, fmt.Errorf("%w: empty image", ErrNotReady)
	}

	s = s.Clone()
	switch kind {
	case KindPerson:
		s.Person = img
	case KindClothes:
		s.Clothes = img
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	s.Error = ""
	return s, nil
}

// WithError replaces the displayed error. Nothing else changes.
func WithError(s State, message string) State {
	s = s.Clone()
	s.Error = message
	return s
}

func Advance(s State) (State, error) {
	return apply(s, EventAdvance)
}

func Back(s State) (State, error) {
	return apply(s, EventBack)
}

// BeginTryOn moves to Generating and clears the previous error.
func BeginTryOn(s State) (State, error) {
	next, err := apply(s, EventStartTryOn)
	if err != nil {
		return s, err
	}
	next.Error = ""
	return next, nil
}

// CompleteTryOn stores the result and moves to Result.
func CompleteTryOn(s State, result imagedata.Image) (State, error) {
	if result.IsEmpty() {
		return s, fmt.Errorf("%w: empty result", ErrNotReady)
	}
	next, err := apply(s, EventSucceed)
	if err != nil {
		return s, err
	}
	next.Result = result
	return next, nil
}

// FailTryOn records the error and falls back to a selection step.
func FailTryOn(s State, message string) (State, error) {
	next, err := apply(s, EventFail)
	if err != nil {
		return s, err
	}
	next.Error = message
	return next, nil
}

// Restart resets step, selections, result and error.
func Restart(s State) State {
	next, _ := apply(s, EventRestart)
	next.Person = ""
	next.Clothes = ""
	next.Result = ""
	next.Error = ""
	return next
}

// ViewResult shows a stored result, e.g. from history.
func ViewResult(s State, result imagedata.Image) (State, error) {
	if result.IsEmpty() {
		return s, fmt.Errorf("%w: empty result", ErrNotReady)
	}
	next, err := apply(s, EventViewHistory)
	if err != nil {
		return s, err
	}
	next.Result = result
	return next, nil
}

// BeginGarment marks a prompt-based clothing generation as in flight.
func BeginGarment(s State, prompt string) (State, error) {
	if s.GeneratingClothes || s.Step == Generating {
		return s, ErrBusy
	}
	if strings.TrimSpace(prompt) == "" {
		return s, fmt.Errorf("%w: prompt", ErrNotReady)
	}

	s = s.Clone()
	s.Prompt = prompt
	s.GeneratingClothes = true
	s.Error = ""
	return s, nil
}

// CompleteGarment adds the generated clothing to the front of the presets and
// selects it.
func CompleteGarment(s State, img imagedata.Image) State {
	s = s.Clone()
	s.ClothesPresets = append([]imagedata.Image{img}, s.ClothesPresets...)
	s.Clothes = img
	s.Prompt = ""
	s.GeneratingClothes = false
	return s
}

func FailGarment(s State, message string) State {
	s = s.Clone()
	s.Error = message
	s.GeneratingClothes = false
	return s
}

func apply(s State, ev Event) (State, error) {
	step, err := Next(s, ev)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	next.Step = step
	return next, nil
}
