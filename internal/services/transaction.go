package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/securefin/internal/activity"
	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/cryptox"
	"github.com/dmitrijs2005/securefin/internal/logging"
	"github.com/dmitrijs2005/securefin/internal/models"
	"github.com/dmitrijs2005/securefin/internal/repositories/repomanager"
)

// MaxNoteLength is the longest accepted transaction note, in runes.
const MaxNoteLength = 200

var (
	ErrInvalidAmount = fmt.Errorf("%w: amount must be a finite number", common.ErrorValidation)
	ErrEmptyNote     = fmt.Errorf("%w: note must not be empty", common.ErrorValidation)
	ErrNoteTooLong   = fmt.Errorf("%w: note exceeds %d characters", common.ErrorValidation, MaxNoteLength)
)

// TransactionService keeps a per-user ledger. Amounts are sealed with a
// secret the user supplies on every add and reveal; the engine key never
// touches them. Notes are stored as entered.
type TransactionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	activity    activity.Sink
	log         logging.Logger
	now         func() time.Time
}

func NewTransactionService(db *sql.DB, rm repomanager.RepositoryManager, sink activity.Sink, log logging.Logger) *TransactionService {
	return &TransactionService{
		db:          db,
		repomanager: rm,
		activity:    sink,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func normalizeAmount(amount string) (string, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", ErrInvalidAmount
	}
	return strconv.FormatFloat(v, 'f', 2, 64), nil
}

func normalizeNote(note string) (string, error) {
	note = strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, note))
	if note == "" {
		return "", ErrEmptyNote
	}
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return "", ErrNoteTooLong
	}
	return note, nil
}

// Add seals amount with secret and stores it together with note.
func (s *TransactionService) Add(ctx context.Context, username, amount, note, secret string) (*models.Transaction, error) {
	value, err := normalizeAmount(amount)
	if err != nil {
		return nil, err
	}
	note, err = normalizeNote(note)
	if err != nil {
		return nil, err
	}

	sealed, err := cryptox.SealWithSecret([]byte(value), secret)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, err
		}
		s.log.Error(ctx, "seal amount", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	t, err := s.repomanager.Transactions(s.db).Create(ctx, &models.Transaction{
		UserName:        username,
		AmountEncrypted: sealed,
		Note:            note,
		CreatedAt:       s.now(),
	})
	if err != nil {
		s.log.Error(ctx, "storage failure", "op", "add transaction", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	if s.activity != nil {
		if err := s.activity.Record(ctx, username, activity.ActionTransactionAdd); err != nil {
			s.log.Warn(ctx, "activity log write failed", "action", activity.ActionTransactionAdd, "error", err)
		}
	}
	return t, nil
}

// List returns the ledger of username, oldest first, with amounts still sealed.
func (s *TransactionService) List(ctx context.Context, username string) ([]*models.Transaction, error) {
	list, err := s.repomanager.Transactions(s.db).ListByUser(ctx, username)
	if err != nil {
		s.log.Error(ctx, "storage failure", "op", "list transactions", "username", username, "error", err)
		return nil, common.ErrorInternal
	}
	return list, nil
}

// Reveal opens a sealed amount. A wrong secret yields common.ErrorDecryption.
func (s *TransactionService) Reveal(sealed, secret string) (string, error) {
	if secret == "" {
		return "", cryptox.ErrEmptySecret
	}
	plain, err := cryptox.OpenWithSecret(sealed, secret)
	if err != nil {
		return "", common.ErrorDecryption
	}
	return string(plain), nil
}
