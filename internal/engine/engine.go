// Package engine schedules turns around a single game: it applies the human's
// actions, paces the bots' decisions on a clock and saves the game after
// every transition.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem/internal/bot"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/store"
)

var (
	ErrBusy         = errors.New("automated turns in progress")
	ErrNotHumanTurn = errors.New("not the human player's turn")
	ErrHandAborted  = errors.New("hand aborted")
)

// DefaultAIDelay is the pause before each automated decision
const DefaultAIDelay = time.Second

// Policy picks an action for a seat. It must not mutate the hand.
type Policy interface {
	Decide(h *game.HandState, playerID string) game.Action
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the clock used for pacing and action timestamps
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithStore saves the game to s after every transition
func WithStore(s store.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithAIDelay sets the pause before each automated decision. Zero disables
// pacing.
func WithAIDelay(d time.Duration) Option {
	return func(e *Engine) { e.aiDelay = d }
}

// WithPolicy sets the policy used for bot seats
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithAutopilot also plays the human seat with p, so whole games can run
// unattended
func WithAutopilot(p Policy) Option {
	return func(e *Engine) { e.autopilot = p }
}

// WithObserver calls fn after every transition, once the engine lock is
// released. fn must not block.
func WithObserver(fn func()) Option {
	return func(e *Engine) { e.observer = fn }
}

// Engine owns the current game. It is safe for concurrent use.
type Engine struct {
	rng       randutil.Source
	logger    *log.Logger
	clock     quartz.Clock
	store     store.Store
	policy    Policy
	autopilot Policy
	observer  func()
	aiDelay   time.Duration

	mu       sync.Mutex
	state    *game.HandState
	running  bool
	aborted  bool
	chips    int
	lastSave error
}

// New creates an engine with no game. rng shuffles every deck and, unless
// WithPolicy is given, drives the bots.
func New(rng randutil.Source, logger *log.Logger, opts ...Option) *Engine {
	if rng == nil {
		panic("engine: New requires a random source")
	}
	e := &Engine{
		rng:     rng,
		logger:  logger.WithPrefix("engine"),
		aiDelay: DefaultAIDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = quartz.NewReal()
	}
	if e.policy == nil {
		e.policy = bot.NewHeuristic(rng, logger)
	}
	return e
}

// NewGame replaces any current game with a fresh one and deals the first hand
func (e *Engine) NewGame(ctx context.Context, bots, startingChips int, opts ...game.Option) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrBusy
	}

	opts = append(opts, game.WithClock(e.clock))
	h, err := game.InitializeGame(e.rng, bots, startingChips, opts...)
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("failed to initialize game: %w", err)
	}
	e.state = h
	e.aborted = false
	e.chips = h.TotalChips()

	err = h.DealHoleCards()
	if err == nil {
		err = e.verify("deal")
	}
	e.logger.Info("New game", "id", h.ID, "players", len(h.Players), "chips", startingChips,
		"button", h.Button, "blinds", fmt.Sprintf("%d/%d", h.SmallBlindAmount, h.BigBlindAmount))
	err = e.settle(ctx, "new game", err)
	e.mu.Unlock()
	e.notify()
	return err
}

// Resume loads the saved game. It returns store.ErrNotFound when there is
// nothing to resume.
func (e *Engine) Resume(ctx context.Context) error {
	if e.store == nil {
		return store.ErrNotFound
	}
	h, err := e.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := h.CheckInvariants(); err != nil {
		return fmt.Errorf("saved game is inconsistent: %w", err)
	}
	h.SetClock(e.clock)

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrBusy
	}
	e.state = h
	e.aborted = false
	e.chips = h.TotalChips()
	e.logger.Info("Resumed game", "id", h.ID, "hand", h.HandNumber, "street", h.Street)
	e.mu.Unlock()
	e.notify()
	return nil
}

// Forget deletes the saved game, leaving the current one in memory
func (e *Engine) Forget(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	return e.store.Delete(ctx)
}

// State returns a deep copy of the current game
func (e *Engine) State() (*game.HandState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, game.ErrNoActiveGame
	}
	return e.state.Clone(), nil
}

// View returns the table as the human player sees it
func (e *Engine) View() (game.TableView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return game.TableView{}, game.ErrNoActiveGame
	}
	return e.state.View(game.HumanPlayerID), nil
}

// Hint suggests a move for the human player. ok is false when it is not
// their turn.
func (e *Engine) Hint() (bot.Hint, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil || e.aborted {
		return bot.Hint{}, false
	}
	return bot.Advise(e.state, game.HumanPlayerID)
}

// Stats summarises the table
func (e *Engine) Stats() (game.GameStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return game.GameStats{}, game.ErrNoActiveGame
	}
	return e.state.Stats(), nil
}

// IsGameOver reports whether at most one player has chips left
func (e *Engine) IsGameOver() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state != nil && e.state.IsGameOver()
}

// Winner returns the last player standing once the game is over
func (e *Engine) Winner() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return "", false
	}
	return e.state.Winner()
}

// Busy reports whether automated turns are running
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Aborted reports whether the current hand was abandoned after an invariant
// breach. Only NewHand clears it.
func (e *Engine) Aborted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aborted
}

// LastSaveError returns the error from the most recent save, or nil if it
// succeeded
func (e *Engine) LastSaveError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSave
}

// BotTurn reports whether the action is on a seat the engine plays
func (e *Engine) BotTurn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.automatedPlayer()
	return ok
}

func (e *Engine) Fold(ctx context.Context) error {
	return e.human(ctx, game.Action{Kind: game.Fold})
}

func (e *Engine) Check(ctx context.Context) error {
	return e.human(ctx, game.Action{Kind: game.Check})
}

func (e *Engine) Call(ctx context.Context) error {
	return e.human(ctx, game.Action{Kind: game.Call})
}

// Raise raises by amount on top of the current bet
func (e *Engine) Raise(ctx context.Context, amount int) error {
	return e.human(ctx, game.Action{Kind: game.Raise, Amount: amount})
}

func (e *Engine) human(ctx context.Context, a game.Action) error {
	e.mu.Lock()
	if err := e.ready(); err != nil {
		e.mu.Unlock()
		return err
	}
	if e.state.Complete {
		e.mu.Unlock()
		return game.ErrHandComplete
	}
	if e.state.ActivePlayerID != game.HumanPlayerID {
		e.mu.Unlock()
		return ErrNotHumanTurn
	}

	err := e.apply(ctx, game.HumanPlayerID, a)
	e.mu.Unlock()
	if err == nil || !isActionError(err) {
		e.notify()
	}
	return err
}

// NewHand starts the next hand, abandoning the current one if unfinished
func (e *Engine) NewHand(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrBusy
	}
	if e.state == nil {
		e.mu.Unlock()
		return game.ErrNoActiveGame
	}

	err := e.state.StartNewHand(e.rng)
	if errors.Is(err, game.ErrGameOver) {
		e.save(ctx)
		e.mu.Unlock()
		return err
	}
	e.aborted = false
	e.chips = e.state.TotalChips()
	if err == nil {
		err = e.verify("new hand")
	}
	e.logger.Info("New hand", "hand", e.state.HandNumber, "button", e.state.Button)
	err = e.settle(ctx, "new hand", err)
	e.mu.Unlock()
	e.notify()
	return err
}

// Step applies one automated decision if the action is on a bot. It reports
// whether an action was taken.
func (e *Engine) Step(ctx context.Context) (bool, error) {
	e.mu.Lock()
	if err := e.ready(); err != nil {
		e.mu.Unlock()
		return false, err
	}
	stepped, err := e.step(ctx)
	e.mu.Unlock()
	if stepped {
		e.notify()
	}
	return stepped, err
}

// RunAutomated plays bot turns until the action reaches the human or the
// hand ends, waiting the AI delay between decisions. Cancelling ctx stops the
// loop between decisions and returns ctx.Err(); actions already applied stay
// applied.
func (e *Engine) RunAutomated(ctx context.Context) error {
	e.mu.Lock()
	if err := e.ready(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	for {
		e.mu.Lock()
		stepped, err := e.step(ctx)
		_, more := e.automatedPlayer()
		e.mu.Unlock()
		if stepped {
			e.notify()
		}
		if err != nil || !stepped || !more {
			return err
		}

		if err := e.pause(ctx); err != nil {
			e.logger.Debug("Automated turns cancelled", "error", err)
			return err
		}
	}
}

// pause waits out the AI delay on the engine clock
func (e *Engine) pause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.aiDelay <= 0 {
		return nil
	}
	timer := e.clock.NewTimer(e.aiDelay, "engine", "pause")
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// step must be called with mu held
func (e *Engine) step(ctx context.Context) (bool, error) {
	p, ok := e.automatedPlayer()
	if !ok {
		return false, nil
	}

	policy := e.policy
	if p.Human {
		policy = e.autopilot
	}
	a := policy.Decide(e.state, p.ID)

	err := e.apply(ctx, p.ID, a)
	if isActionError(err) {
		// Policies are not trusted to be legal; fall back to the cheapest
		// legal action
		fallback := game.Action{Kind: game.Fold}
		if e.state.LegalActions(p.ID).CanCheck {
			fallback = game.Action{Kind: game.Check}
		}
		e.logger.Warn("Policy chose an illegal action", "player", p.ID, "action", a, "error", err, "fallback", fallback)
		err = e.apply(ctx, p.ID, fallback)
	}
	return true, err
}

// automatedPlayer returns the player to act when the engine plays that seat
func (e *Engine) automatedPlayer() (*game.Player, bool) {
	if e.state == nil || e.aborted || e.state.Complete {
		return nil, false
	}
	p := e.state.ActivePlayer()
	if p == nil {
		return nil, false
	}
	if p.Human && e.autopilot == nil {
		return nil, false
	}
	return p, true
}

// ready must be called with mu held
func (e *Engine) ready() error {
	switch {
	case e.running:
		return ErrBusy
	case e.state == nil:
		return game.ErrNoActiveGame
	case e.aborted:
		return ErrHandAborted
	}
	return nil
}

// apply runs one action and settles the result. mu must be held.
func (e *Engine) apply(ctx context.Context, playerID string, a game.Action) error {
	err := e.state.Apply(playerID, a)
	if isActionError(err) {
		return err
	}
	if err == nil {
		e.logger.Debug("Action", "hand", e.state.HandNumber, "player", playerID, "action", a,
			"street", e.state.Street, "pot", e.state.Pot)
		err = e.verify(a.Kind.String())
	}
	if err == nil && e.state.Complete {
		e.logHandResult()
	}
	return e.settle(ctx, a.Kind.String(), err)
}

// verify checks the table invariants and that no chips appeared or vanished
func (e *Engine) verify(op string) error {
	if err := e.state.CheckInvariants(); err != nil {
		return err
	}
	if total := e.state.TotalChips(); total != e.chips {
		return &game.InvariantError{Op: op, Err: fmt.Errorf("chip total changed from %d to %d", e.chips, total)}
	}
	return nil
}

// settle aborts the hand on an invariant breach, then saves. mu must be held.
func (e *Engine) settle(ctx context.Context, op string, err error) error {
	if err != nil && game.IsInvariantError(err) {
		e.logger.Error("Aborting hand", "op", op, "hand", e.state.HandNumber, "error", err)
		e.state.Abort()
		e.aborted = true
		e.chips = e.state.TotalChips()
		err = fmt.Errorf("%w: %w", ErrHandAborted, err)
	}
	e.save(ctx)
	return err
}

// save stores the game best-effort. Failures are logged and kept for
// LastSaveError but never stop play.
func (e *Engine) save(ctx context.Context) {
	if e.store == nil {
		return
	}
	// A cancelled turn loop still persists what it applied
	err := e.store.Save(context.WithoutCancel(ctx), e.state)
	if err != nil {
		e.logger.Warn("Failed to save game", "error", err, "retryable", store.IsRetryable(err))
	}
	e.lastSave = err
}

func (e *Engine) logHandResult() {
	r := e.state.Result
	if r == nil {
		return
	}
	for _, w := range r.Winners {
		e.logger.Info("Hand won", "hand", e.state.HandNumber, "player", w.PlayerID,
			"amount", w.Amount, "hand_rank", w.Hand, "showdown", r.Showdown)
	}
}

func (e *Engine) notify() {
	if e.observer != nil {
		e.observer()
	}
}

func isActionError(err error) bool {
	var ae *game.ActionError
	return errors.As(err, &ae)
}
