package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/veritest/veritest-backend/internal/config"
)

// AutosaveWorker consumes the draft queue and UPSERTs in-progress answers
// to PostgreSQL. Drafts are never scored; they only protect students from
// losing work on disconnect.
type AutosaveWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewAutosaveWorker creates a new AutosaveWorker.
func NewAutosaveWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AutosaveWorker {
	return &AutosaveWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "autosave_worker").Logger(),
	}
}

type draftPayload struct {
	SessionID   string `json:"session_id"`
	StudentID   int    `json:"student_id"`
	QuestionID  string `json:"question_id"`
	ChoiceIndex *int   `json:"choice_index"`
	Text        string `json:"text"`
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *AutosaveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AutosaveWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistDraftsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persistDraft(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Str("session_id", payload.SessionID).
			Str("question_id", payload.QuestionID).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.PersistDraftsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *AutosaveWorker) persistDraft(ctx context.Context, p *draftPayload) error {
	sessionID, err := uuid.Parse(p.SessionID)
	if err != nil {
		return err
	}

	questionID, err := uuid.Parse(p.QuestionID)
	if err != nil {
		return err
	}

	_, err = w.pool.Exec(ctx,
		`INSERT INTO answer_drafts (session_id, question_id, choice_index, text, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET choice_index = EXCLUDED.choice_index, text = EXCLUDED.text, updated_at = NOW()`,
		sessionID, questionID, p.ChoiceIndex, p.Text,
	)
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *AutosaveWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistDraftsQueue).Result()
		if err != nil {
			break
		}

		var payload draftPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persistDraft(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistDraftsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
