package game

import (
	"sort"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/econlabs/growthgame/go/internal/econ"
	"github.com/econlabs/growthgame/go/internal/game/events"
	"github.com/econlabs/growthgame/go/internal/models"
	"github.com/econlabs/growthgame/go/internal/roster"
)

// RoundTimer is the cancellable countdown task owned by the scheduler package.
// Start begins a fresh 1 Hz countdown for a round; Cancel synchronously stops
// the task so no further ticks are produced for it.
type RoundTimer interface {
	Start(roundNumber, durationSec int)
	Cancel()
}

// Notifier fans events out to audience groups or to a single connection. The
// gateway implements it; the session never touches a socket directly.
type Notifier interface {
	Broadcast(event *events.Event, audiences ...events.Audience)
	Send(connID string, event *events.Event)
}

var allAudiences = []events.Audience{
	events.AudiencePlayers,
	events.AudienceScreens,
	events.AudienceInstructor,
}

// Session is the game coordinator: it owns the session phase, the player and
// round ledgers, and the identity registry, and it arbitrates every inbound
// command. A single mutex serializes commands and scheduler ticks, so each
// handler reads and writes state without interleaving and settlement happens
// at most once per round.
type Session struct {
	mu sync.Mutex

	cfg      models.GameConfig
	model    econ.Model
	clock    clockwork.Clock
	notifier Notifier
	timer    RoundTimer
	class    *roster.Roster

	registry *Registry
	players  map[string]*models.Player

	created     bool
	phase       models.GamePhase
	manualStart bool
	round       *models.Round
	history     []models.RoundSummary
}

// NewSession builds a session coordinator. The round timer is attached
// afterwards with SetTimer because the scheduler needs the session as its tick
// handler.
func NewSession(cfg models.GameConfig, model econ.Model, notifier Notifier, class *roster.Roster, clock clockwork.Clock) *Session {
	return &Session{
		cfg:      cfg,
		model:    model,
		clock:    clock,
		notifier: notifier,
		class:    class,
		registry: NewRegistry(),
		players:  make(map[string]*models.Player),
		phase:    models.GamePhaseIdle,
	}
}

// SetTimer attaches the round timer. Must be called before StartGame.
func (s *Session) SetTimer(t RoundTimer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = t
}

// Phase reports the current game phase.
func (s *Session) Phase() models.GamePhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// History returns the settled round summaries so far.
func (s *Session) History() []models.RoundSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.RoundSummary, len(s.history))
	copy(out, s.history)
	return out
}

// CreateGame initializes the session. Valid only before a game exists.
func (s *Session) CreateGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.created {
		return ErrIllegalTransition
	}
	s.created = true
	s.phase = models.GamePhaseIdle

	log.Info().Bool("manual_start", s.manualStart).Msg("game created")
	s.broadcast(events.TypeGameCreated, events.GameCreatedPayload{ManualStartEnabled: s.manualStart}, allAudiences...)
	return nil
}

// SetManualStart records the manual-start gate. Valid only while Idle. The
// flag governs whether clients may request start_game, not whether the
// coordinator accepts it.
func (s *Session) SetManualStart(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.created || s.phase != models.GamePhaseIdle {
		return ErrIllegalTransition
	}
	s.manualStart = enabled

	log.Info().Bool("enabled", enabled).Msg("manual start mode set")
	s.broadcast(events.TypeManualStartMode, events.ManualStartModePayload{Enabled: enabled}, allAudiences...)
	return nil
}

// StartGame transitions Idle to Running and begins the first round.
func (s *Session) StartGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.created || s.phase != models.GamePhaseIdle {
		return ErrIllegalTransition
	}
	s.phase = models.GamePhaseRunning

	log.Info().Int("first_round", s.cfg.FirstRound).Int("players", len(s.players)).Msg("game started")
	s.broadcast(events.TypeGameStarted, events.GameStartedPayload{}, allAudiences...)
	s.startRoundLocked(s.cfg.FirstRound)
	return nil
}

// ForceEnd abandons any in-flight round and transitions straight to GameOver.
// Unsealed investments are discarded and do not count toward results.
func (s *Session) ForceEnd() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.created || s.phase == models.GamePhaseGameOver {
		return ErrIllegalTransition
	}
	if s.timer != nil {
		s.timer.Cancel()
	}
	if s.round != nil {
		s.round.Sealed = true
		s.round = nil
	}
	s.phase = models.GamePhaseGameOver

	log.Info().Int("completed_rounds", len(s.history)).Msg("game force-ended")
	s.broadcastGameOverLocked()
	return nil
}

// Reset restores the pre-session state. This is the explicit administrative
// action; it is not a normal phase transition.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Cancel()
	}
	s.created = false
	s.phase = models.GamePhaseIdle
	s.manualStart = false
	s.round = nil
	s.history = nil
	s.players = make(map[string]*models.Player)
	s.registry.Reset()

	log.Info().Msg("session reset")
}

// Join binds a connection to a player name, creating the player on first use.
// A join under a name whose connection is still live supersedes the old
// binding; the stale handle stops being recognized but is not force-closed.
func (s *Session) Join(name, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		s.send(connID, events.TypeJoinAck, events.JoinAckPayload{Success: false, Error: "player name must not be empty"})
		return ErrInvalidInput
	}
	if !s.created || s.phase == models.GamePhaseGameOver {
		s.send(connID, events.TypeJoinAck, events.JoinAckPayload{Success: false, Error: "game is not accepting players"})
		return ErrIllegalTransition
	}

	player, exists := s.players[name]
	if !exists {
		player = &models.Player{
			Name:    name,
			Capital: s.cfg.InitialCapital,
			Output:  s.cfg.InitialOutput,
		}
		s.players[name] = player
	}

	if superseded := s.registry.Bind(name, connID); superseded != "" {
		log.Info().Str("player", name).Str("stale_conn", superseded).Msg("join superseded existing connection")
	}
	player.Connected = true

	ack := s.snapshotLocked(player)
	ack.Success = true
	ack.PlayerName = name
	s.send(connID, events.TypeJoinAck, ack)
	s.broadcast(events.TypePlayerJoined, events.PlayerJoinedPayload{PlayerName: name, IsReconnect: false},
		events.AudienceScreens, events.AudienceInstructor)

	log.Info().Str("player", name).Bool("new", !exists).Msg("player joined")
	return nil
}

// Reconnect rebinds an existing player to a new connection and returns enough
// state to resume mid-round. It never creates a player implicitly.
func (s *Session) Reconnect(name, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	player, ok := s.players[name]
	if !ok {
		s.send(connID, events.TypeJoinAck, events.JoinAckPayload{Success: false, Error: "no such player"})
		return ErrReconnectFailed
	}

	// Atomic rebind: lookup and handle swap happen under the session lock, so
	// there is no window with two owners of the name.
	if superseded := s.registry.Bind(name, connID); superseded != "" {
		log.Info().Str("player", name).Str("stale_conn", superseded).Msg("reconnect superseded existing connection")
	}
	player.Connected = true

	ack := s.snapshotLocked(player)
	ack.Success = true
	ack.PlayerName = name
	ack.Reconnect = true
	s.send(connID, events.TypeJoinAck, ack)
	s.send(connID, events.TypeStateSnapshot, events.StateSnapshotPayload{
		RoundNumber:   ack.RoundNumber,
		Capital:       player.Capital,
		Output:        player.Output,
		Submitted:     player.Submitted,
		TimeRemaining: ack.TimeRemaining,
	})
	s.broadcast(events.TypePlayerJoined, events.PlayerJoinedPayload{PlayerName: name, IsReconnect: true},
		events.AudienceScreens, events.AudienceInstructor)

	log.Info().Str("player", name).Msg("player reconnected")
	return nil
}

// Release marks the player behind a dropped connection as disconnected. The
// player record survives so a later reconnect recovers it. A handle that was
// superseded earlier releases nothing.
func (s *Session) Release(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.registry.Release(connID)
	if !ok {
		return
	}
	player, ok := s.players[name]
	if !ok {
		return
	}
	player.Connected = false

	s.broadcast(events.TypePlayerDisconnected, events.PlayerDisconnectedPayload{PlayerName: name},
		events.AudienceScreens, events.AudienceInstructor)
	log.Info().Str("player", name).Msg("player disconnected")
}

// SubmitInvestment records one player's investment for the current round.
// Duplicate submissions for the same round are ignored, as are submissions
// from superseded handles, outside Running, or after the round sealed.
func (s *Session) SubmitInvestment(connID string, amount float64, autoSubmit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.registry.NameFor(connID)
	if !ok {
		log.Debug().Str("conn", connID).Msg("submission from unrecognized handle dropped")
		return nil
	}
	player, ok := s.players[name]
	if !ok {
		return nil
	}
	if s.phase != models.GamePhaseRunning || s.round == nil || s.round.Sealed || player.Submitted {
		return nil
	}
	if amount < 0 {
		return ErrInvalidInput
	}

	s.round.Investments[name] = models.Investment{Amount: amount, AutoSubmit: autoSubmit}
	player.Submitted = true
	player.AutoSubmitted = autoSubmit

	log.Info().Str("player", name).Float64("investment", amount).Bool("auto", autoSubmit).
		Int("round", s.round.Number).Msg("investment received")
	s.broadcast(events.TypeInvestmentReceived, events.InvestmentReceivedPayload{
		PlayerName: name,
		Investment: amount,
		AutoSubmit: autoSubmit,
	}, events.AudienceInstructor, events.AudienceScreens)

	s.checkEarlyEndLocked()
	return nil
}

// StudentList answers get_student_list for one requesting connection.
func (s *Session) StudentList(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload := s.class.StudentList(func(name string) bool {
		if _, bound := s.registry.ConnFor(name); !bound {
			return false
		}
		player, ok := s.players[name]
		return ok && player.Connected
	})
	s.send(connID, events.TypeStudentList, payload)
}

// HandleRoundTick is the scheduler's 1 Hz callback. Ticks for a sealed or
// stale round are discarded; a tick that brings the countdown to zero
// triggers timeout settlement.
func (s *Session) HandleRoundTick(roundNumber int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != models.GamePhaseRunning || s.round == nil || s.round.Sealed || s.round.Number != roundNumber {
		return
	}
	s.round.TimeRemaining--
	if s.round.TimeRemaining < 0 {
		s.round.TimeRemaining = 0
	}
	s.broadcast(events.TypeTimerUpdate, events.TimerUpdatePayload{TimeRemaining: s.round.TimeRemaining}, allAudiences...)

	if s.round.TimeRemaining <= 0 {
		s.timer.Cancel()
		s.settleRoundLocked()
	}
}

// startRoundLocked opens a round and starts its countdown. Caller holds mu.
func (s *Session) startRoundLocked(number int) {
	s.round = models.NewRound(number, s.cfg.RoundDurationSec)
	for _, player := range s.players {
		player.ResetRound()
	}

	log.Info().Int("round", number).Int("duration_sec", s.cfg.RoundDurationSec).Msg("round started")
	s.broadcast(events.TypeRoundStart, events.RoundStartPayload{
		RoundNumber:   number,
		TimeRemaining: s.round.TimeRemaining,
	}, allAudiences...)
	s.timer.Start(number, s.cfg.RoundDurationSec)
}

// checkEarlyEndLocked settles the round early once every connected player
// still eligible this round has submitted. Caller holds mu.
func (s *Session) checkEarlyEndLocked() {
	if s.round == nil || s.round.Sealed || len(s.players) == 0 {
		return
	}
	for _, player := range s.players {
		if player.Connected && !player.AutoSubmitted && !player.Submitted {
			return
		}
	}

	log.Info().Int("round", s.round.Number).Int("time_remaining", s.round.TimeRemaining).
		Msg("all players submitted, ending round early")
	s.broadcast(events.TypeAllSubmitted, events.AllSubmittedPayload{TimeRemaining: s.round.TimeRemaining}, allAudiences...)
	s.timer.Cancel()
	s.settleRoundLocked()
}

// settleRoundLocked computes results for every player, seals the round,
// appends it to history, and either advances to the next round or finishes
// the game. Caller holds mu. The sealed flag plus the session lock guarantee
// at most one settlement per round.
func (s *Session) settleRoundLocked() {
	round := s.round
	if round == nil || round.Sealed {
		return
	}
	round.Sealed = true

	names := make([]string, 0, len(s.players))
	for name := range s.players {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]models.RoundResult, 0, len(names))
	for _, name := range names {
		player := s.players[name]
		inv, ok := round.Investments[name]
		if !ok {
			// Timeout auto-submission at the model-defined minimum.
			inv = models.Investment{Amount: s.cfg.MinInvestment, AutoSubmit: true}
			round.Investments[name] = inv
			player.Submitted = true
			player.AutoSubmitted = true
		}
		newCapital, newOutput := s.model(player.Capital, player.Output, inv.Amount)
		player.Capital = newCapital
		player.Output = newOutput
		results = append(results, models.RoundResult{
			PlayerName: name,
			Investment: inv.Amount,
			NewCapital: newCapital,
			NewOutput:  newOutput,
			AutoSubmit: inv.AutoSubmit,
		})
	}

	summary := models.RoundSummary{RoundNumber: round.Number, Results: results}
	s.history = append(s.history, summary)

	log.Info().Int("round", round.Number).Int("results", len(results)).Msg("round settled")
	s.broadcast(events.TypeRoundSummary, events.RoundSummaryPayload(summary), allAudiences...)

	if round.Number >= s.cfg.TotalRounds {
		s.phase = models.GamePhaseGameOver
		s.round = nil
		log.Info().Int("completed_rounds", len(s.history)).Msg("game over")
		s.broadcastGameOverLocked()
		return
	}
	s.startRoundLocked(round.Number + 1)
}

// broadcastGameOverLocked emits final rankings: descending output, ties broken
// by ascending player name. Caller holds mu.
func (s *Session) broadcastGameOverLocked() {
	standings := make([]models.PlayerStanding, 0, len(s.players))
	for _, player := range s.players {
		standings = append(standings, models.PlayerStanding{
			PlayerName: player.Name,
			Capital:    player.Capital,
			Output:     player.Output,
		})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Output != standings[j].Output {
			return standings[i].Output > standings[j].Output
		}
		return standings[i].PlayerName < standings[j].PlayerName
	})

	winner := ""
	if len(standings) > 0 {
		winner = standings[0].PlayerName
	}
	s.broadcast(events.TypeGameOver, events.GameOverPayload{Results: standings, Winner: winner}, allAudiences...)
}

// snapshotLocked fills the resume fields of a join ack. Caller holds mu.
func (s *Session) snapshotLocked(player *models.Player) events.JoinAckPayload {
	ack := events.JoinAckPayload{
		Capital:   player.Capital,
		Output:    player.Output,
		Submitted: player.Submitted,
	}
	if s.phase == models.GamePhaseRunning && s.round != nil {
		ack.RoundNumber = s.round.Number
		ack.TimeRemaining = s.round.TimeRemaining
	}
	return ack
}

func (s *Session) broadcast(typ events.Type, payload any, audiences ...events.Audience) {
	event, err := events.New(typ, payload, s.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("event_type", string(typ)).Msg("failed to build event")
		return
	}
	s.notifier.Broadcast(event, audiences...)
}

func (s *Session) send(connID string, typ events.Type, payload any) {
	event, err := events.New(typ, payload, s.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("event_type", string(typ)).Msg("failed to build event")
		return
	}
	s.notifier.Send(connID, event)
}
