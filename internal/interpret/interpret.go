// Package interpret turns one utterance into one reply. It routes keyword
// commands first, then tries the lexical parser, then falls back to the
// semantic resolver, persisting any record it produces.
package interpret

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/claude/gymchat/internal/command"
	"github.com/claude/gymchat/internal/events"
	"github.com/claude/gymchat/internal/models"
	"github.com/claude/gymchat/internal/observability"
	"github.com/claude/gymchat/internal/parser"
	"github.com/claude/gymchat/internal/session"
	"github.com/claude/gymchat/internal/summary"
)

// Repository is the record storage the interpreter writes through.
type Repository interface {
	AddRecord(ctx context.Context, rec models.Record) (models.Record, error)
	// QueryByUserSince returns records newest first.
	QueryByUserSince(ctx context.Context, userID string, since time.Time) ([]models.Record, error)
	CountByUserActionSince(ctx context.Context, userID, action string, since time.Time) (int, error)
	DeleteMostRecent(ctx context.Context, userID string) (bool, error)
	MostRecent(ctx context.Context, userID string) (*models.Record, error)
}

// Resolver classifies utterances the lexical parser could not handle.
type Resolver interface {
	Resolve(ctx context.Context, text string, last *models.Record) (models.Intent, error)
}

// errNoResolver is reported when no semantic resolver is configured.
var errNoResolver = errors.New("semantic resolver not configured")

// Options tunes an Interpreter. Zero values are usable.
type Options struct {
	// Location defines day boundaries for set counting and summaries.
	Location *time.Location
	// ResolveTimeout bounds one resolver call. Zero means no extra bound.
	ResolveTimeout time.Duration
	// StoreTimeout bounds each repository call. Zero means no extra bound.
	StoreTimeout time.Duration
	// Events receives record changes. Nil disables publishing.
	Events events.Publisher
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Interpreter is safe for concurrent use by different users. Requests for
// the same user must not overlap.
type Interpreter struct {
	repo     Repository
	sessions session.Store
	resolver Resolver
	log      *slog.Logger
	opts     Options
}

// New creates an Interpreter. resolver may be nil, in which case utterances
// the lexical parser rejects are answered as unavailable.
func New(repo Repository, sessions session.Store, resolver Resolver, log *slog.Logger, opts Options) *Interpreter {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Interpreter{
		repo:     repo,
		sessions: sessions,
		resolver: resolver,
		log:      log,
		opts:     opts,
	}
}

// Interpret handles one utterance for userID. It never fails: every error
// is converted into a Reply.
func (in *Interpreter) Interpret(ctx context.Context, userID, text string) Reply {
	start := time.Now()
	reply := in.interpret(ctx, userID, strings.TrimSpace(text))
	observability.RecordInterpretation(string(reply.Outcome))
	in.log.Info("interpreted",
		"user", userID,
		"outcome", reply.Outcome,
		"duration", time.Since(start),
	)
	return reply
}

func (in *Interpreter) interpret(ctx context.Context, userID, text string) Reply {
	if text == "" {
		return Reply{Outcome: OutcomeEmpty}
	}

	if intent := command.Route(text); intent.Kind == models.IntentCommand {
		return in.handleCommand(ctx, userID, intent.Command)
	}

	last := in.lastRecord(ctx, userID)
	if rec := parser.Parse(text, last); rec != nil {
		return in.persist(ctx, userID, *rec)
	}

	intent, err := in.resolve(ctx, text, last)
	if err != nil {
		in.log.Warn("semantic resolution failed", "user", userID, "error", err)
		return unavailableReply(err)
	}

	switch intent.Kind {
	case models.IntentLog:
		if intent.Record == nil {
			return incompleteReply()
		}
		rec := *intent.Record
		rec.Normalize()
		if rec.Action == "" || rec.Reps <= 0 || rec.Validate() != nil {
			return incompleteReply()
		}
		return in.persist(ctx, userID, rec)
	case models.IntentSummary:
		return in.summaryReply(ctx, userID, intent.Period)
	case models.IntentChat:
		return chatReply(intent.Text)
	default:
		return chatReply("")
	}
}

func (in *Interpreter) resolve(ctx context.Context, text string, last *models.Record) (models.Intent, error) {
	if in.resolver == nil {
		return models.Intent{}, errNoResolver
	}
	if in.opts.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.opts.ResolveTimeout)
		defer cancel()
	}
	return in.resolver.Resolve(ctx, text, last)
}

func (in *Interpreter) handleCommand(ctx context.Context, userID string, kind models.CommandKind) Reply {
	switch kind {
	case models.CommandHelp:
		return Reply{Text: helpText(), Outcome: OutcomeCommand}
	case models.CommandIntro:
		return Reply{Text: introText, Outcome: OutcomeCommand}
	case models.CommandEndSession:
		return in.endSession(ctx, userID)
	case models.CommandUndo:
		return in.undo(ctx, userID)
	}
	return chatReply("")
}

// persist completes rec with its set number, stores it and updates the
// session context.
func (in *Interpreter) persist(ctx context.Context, userID string, rec models.Record) Reply {
	rec.UserID = userID
	dayStart := in.dayStart()

	sctx, cancel := in.storeContext(ctx)
	defer cancel()

	prior, err := in.repo.CountByUserActionSince(sctx, userID, rec.Action, dayStart)
	if err != nil {
		return in.persistenceFailed(userID, fmt.Errorf("counting sets: %w", err))
	}
	rec.Sets = prior + 1

	saved, err := in.repo.AddRecord(sctx, rec)
	if err != nil {
		return in.persistenceFailed(userID, err)
	}
	observability.RecordPersisted(saved.CreatedAt)
	in.publish(ctx, events.RecordLogged, saved)

	if err := in.sessions.Set(ctx, userID, saved.Context()); err != nil {
		in.log.Warn("updating session context", "user", userID, "error", err)
	}

	text := confirmationText(saved)
	if saved.Sets == 1 {
		first, err := in.sessions.MarkHinted(ctx, userID, saved.Action)
		if err != nil {
			in.log.Warn("marking hint", "user", userID, "error", err)
		}
		if first {
			text += hintText(saved)
		}
	}
	return Reply{Text: text, Outcome: OutcomeLogged, Record: &saved}
}

func (in *Interpreter) undo(ctx context.Context, userID string) Reply {
	sctx, cancel := in.storeContext(ctx)
	defer cancel()

	removed, err := in.repo.MostRecent(sctx, userID)
	if err != nil {
		return in.persistenceFailed(userID, err)
	}
	if removed == nil {
		return Reply{Text: nothingToUndoText, Outcome: OutcomeNothingToUndo}
	}
	deleted, err := in.repo.DeleteMostRecent(sctx, userID)
	if err != nil {
		return in.persistenceFailed(userID, err)
	}
	if !deleted {
		return Reply{Text: nothingToUndoText, Outcome: OutcomeNothingToUndo}
	}

	in.publish(ctx, events.RecordUndone, *removed)

	next, err := in.repo.MostRecent(sctx, userID)
	switch {
	case err != nil:
		in.log.Warn("reseeding session after undo", "user", userID, "error", err)
		err = in.sessions.Clear(ctx, userID)
	case next == nil:
		err = in.sessions.Clear(ctx, userID)
	default:
		err = in.sessions.Set(ctx, userID, next.Context())
	}
	if err != nil {
		in.log.Warn("updating session context", "user", userID, "error", err)
	}
	return Reply{Text: undoneText(*removed), Outcome: OutcomeCommand}
}

func (in *Interpreter) endSession(ctx context.Context, userID string) Reply {
	reply := in.summaryReply(ctx, userID, models.PeriodToday)
	if reply.Outcome != OutcomeSummary {
		return reply
	}
	if err := in.sessions.Reset(ctx, userID); err != nil {
		in.log.Warn("resetting session", "user", userID, "error", err)
	}
	reply.Text = endSessionPrefix + reply.Text
	reply.Outcome = OutcomeCommand
	return reply
}

func (in *Interpreter) summaryReply(ctx context.Context, userID string, period models.Period) Reply {
	s, err := in.Summary(ctx, userID, period)
	if err != nil {
		return in.persistenceFailed(userID, err)
	}
	return Reply{Text: summaryText(s), Outcome: OutcomeSummary}
}

// Records returns userID's records in period, newest first.
func (in *Interpreter) Records(ctx context.Context, userID string, period models.Period) ([]models.Record, error) {
	start, ok := summary.Start(period, in.now())
	if !ok {
		return nil, fmt.Errorf("unknown period %q", period)
	}
	sctx, cancel := in.storeContext(ctx)
	defer cancel()

	records, err := in.repo.QueryByUserSince(sctx, userID, start)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	return records, nil
}

// Summary aggregates userID's records in period. An unknown period yields an
// empty summary.
func (in *Interpreter) Summary(ctx context.Context, userID string, period models.Period) (models.PeriodSummary, error) {
	if !period.Valid() {
		return summary.Summarize(nil, period), nil
	}
	records, err := in.Records(ctx, userID, period)
	if err != nil {
		return models.PeriodSummary{}, err
	}
	return summary.Summarize(records, period), nil
}

// lastRecord reads the session context. Failures degrade to no context.
func (in *Interpreter) lastRecord(ctx context.Context, userID string) *models.Record {
	last, err := in.sessions.Get(ctx, userID)
	if err != nil {
		in.log.Warn("reading session context", "user", userID, "error", err)
		return nil
	}
	return last
}

// publish emits a record change. Failures are logged; the record itself is
// already stored.
func (in *Interpreter) publish(ctx context.Context, kind events.Kind, rec models.Record) {
	if in.opts.Events == nil {
		return
	}
	e := events.Event{Kind: kind, UserID: rec.UserID, Record: rec, At: in.opts.Now()}
	if err := in.opts.Events.Publish(ctx, e); err != nil {
		in.log.Warn("publishing record event", "user", rec.UserID, "kind", kind, "error", err)
	}
}

func (in *Interpreter) persistenceFailed(userID string, err error) Reply {
	in.log.Error("storage call failed", "user", userID, "error", err)
	return Reply{Text: persistenceFailedText, Outcome: OutcomePersistenceFailed}
}

func (in *Interpreter) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if in.opts.StoreTimeout > 0 {
		return context.WithTimeout(ctx, in.opts.StoreTimeout)
	}
	return context.WithCancel(ctx)
}

func (in *Interpreter) now() time.Time {
	return in.opts.Now().In(in.opts.Location)
}

func (in *Interpreter) dayStart() time.Time {
	start, _ := summary.Start(models.PeriodToday, in.now())
	return start
}
