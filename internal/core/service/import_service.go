package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/recipe-app/healthcare-backend/internal/core/domain"
	"github.com/recipe-app/healthcare-backend/internal/core/ports"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ImportService loads specializations from a headerless CSV file into the
// record store, one row at a time. A bad row is reported and skipped; only
// precondition failures abort the run.
type ImportService struct {
	specs    ports.SpecializationRepository
	users    ports.UserRepository
	reporter ports.Reporter
	lock     ports.RunLock
	metrics  ports.ImportMetrics
	validate *validator.Validate
	log      zerolog.Logger
}

// NewImportService returns an ImportService. lock and metrics are optional
// and may be nil.
func NewImportService(
	specs ports.SpecializationRepository,
	users ports.UserRepository,
	reporter ports.Reporter,
	lock ports.RunLock,
	metrics ports.ImportMetrics,
	log zerolog.Logger,
) *ImportService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ImportService{
		specs:    specs,
		users:    users,
		reporter: reporter,
		lock:     lock,
		metrics:  metrics,
		validate: validator.New(),
		log:      log,
	}
}

// Import reads path and find-or-creates one specialization per row, keyed
// by name. The returned summary is nil whenever err is non-nil.
func (s *ImportService) Import(ctx context.Context, path string) (*domain.ImportSummary, error) {
	started := time.Now()
	summary := &domain.ImportSummary{RunID: uuid.NewString(), FilePath: path}
	log := s.log.With().Str("run_id", summary.RunID).Str("file", path).Logger()

	// 1. Preconditions. Nothing is read until all of them hold.
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.reporter.Error(fmt.Sprintf("CSV file not found: %s", path))
			return s.fail(log, started, fmt.Errorf("import: %w: %s", domain.ErrFileNotFound, path))
		}
		s.reporter.Error(fmt.Sprintf("CSV file not accessible: %s (%v)", path, err))
		return s.fail(log, started, fmt.Errorf("import: stat %s: %w", path, err))
	}

	owner, err := s.resolveOwner(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoActorAvailable) {
			s.reporter.Error("No user found to assign specializations.")
		} else {
			s.reporter.Error(fmt.Sprintf("Failed to resolve import owner: %v", err))
		}
		return s.fail(log, started, fmt.Errorf("import: %w", err))
	}
	log = log.With().Str("owner_id", owner.ID).Logger()

	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx)
		if err != nil {
			s.reporter.Error(fmt.Sprintf("Failed to acquire import lock: %v", err))
			return s.fail(log, started, fmt.Errorf("import: acquire lock: %w", err))
		}
		if !acquired {
			s.reporter.Error("Another specialization import is already running.")
			return s.fail(log, started, fmt.Errorf("import: %w", domain.ErrImportInProgress))
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("failed to release import lock")
			}
		}()
	}

	f, err := os.Open(path)
	if err != nil {
		s.reporter.Error(fmt.Sprintf("Failed to open CSV file %s: %v", path, err))
		return s.fail(log, started, fmt.Errorf("import: open %s: %w", path, err))
	}
	defer f.Close()

	// 2. Rows, in file order. A blank line is a row with no fields.
	log.Info().Str("phase", string(domain.PhaseReading)).Msg("specialization import started")
	src := &lineCounter{r: f}
	reader := newRowReader(src)
	lastLine := 0
	for {
		if err := ctx.Err(); err != nil {
			s.reporter.Error(fmt.Sprintf("Import interrupted after %d rows: %v", summary.Rows, err))
			return s.fail(log, started, fmt.Errorf("import: %w", err))
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			for line := lastLine + 1; line <= src.lines(); line++ {
				s.record(log, summary, blankRow(line))
			}
			break
		}

		var res domain.RowResult
		var parseErr *csv.ParseError
		switch {
		case err == nil:
			line, _ := reader.FieldPos(0)
			for ; lastLine+1 < line; lastLine++ {
				s.record(log, summary, blankRow(lastLine+1))
			}
			res = s.importRow(ctx, owner, record)
			res.Line = line
			lastLine = recordEndLine(reader, record)
		case errors.As(err, &parseErr):
			for ; lastLine+1 < parseErr.StartLine; lastLine++ {
				s.record(log, summary, blankRow(lastLine+1))
			}
			res = domain.RowResult{Line: parseErr.StartLine, Raw: record, Outcome: domain.OutcomeFailed, Err: err}
			lastLine = parseErr.Line
		default:
			s.reporter.Error(fmt.Sprintf("Failed to read CSV file %s: %v", path, err))
			return s.fail(log, started, fmt.Errorf("import: read %s: %w", path, err))
		}

		s.record(log, summary, res)
	}

	// 3. Summary.
	summary.Duration = time.Since(started)
	s.reporter.Success(fmt.Sprintf("Import complete: %d specializations added.", summary.Created))
	s.metrics.ObserveRun(domain.PhaseCompleted, summary.Created, summary.Duration)

	log.Info().
		Str("phase", string(domain.PhaseCompleted)).
		Int("rows", summary.Rows).
		Int("created", summary.Created).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("specialization import completed")

	return summary, nil
}

// resolveOwner picks the actor attributed with every record of the run: the
// first superuser, falling back to the first user.
func (s *ImportService) resolveOwner(ctx context.Context) (*domain.User, error) {
	actors, err := s.users.ListActors(ctx, ports.ActorQuery{PrivilegedFirst: true, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}
	if len(actors) == 0 {
		return nil, domain.ErrNoActorAvailable
	}
	return actors[0], nil
}

// importRow processes a single record. It never panics past the row and
// never returns an error; failures are carried in the result.
func (s *ImportService) importRow(ctx context.Context, owner *domain.User, record []string) domain.RowResult {
	res := domain.RowResult{Raw: record}

	row, err := unpackRow(record)
	if err != nil {
		return failed(res, err)
	}
	res.Name = row.Name

	if err := s.validate.Struct(row); err != nil {
		return failed(res, &domain.RowValidationError{Reason: validationReason(err)})
	}

	defaults, err := row.defaults(owner)
	if err != nil {
		return failed(res, err)
	}

	_, created, err := s.specs.FindOrCreate(ctx, row.Name, defaults)
	if err != nil {
		return failed(res, &domain.StoreWriteError{Err: err})
	}

	if created {
		res.Outcome = domain.OutcomeCreated
	} else {
		res.Outcome = domain.OutcomeSkippedExisting
	}
	return res
}

// record emits the notice for res and folds it into the running summary.
func (s *ImportService) record(log zerolog.Logger, summary *domain.ImportSummary, res domain.RowResult) {
	summary.Rows++

	switch res.Outcome {
	case domain.OutcomeCreated:
		summary.Created++
		s.reporter.Success(fmt.Sprintf("Imported: %s", res.Name))
		log.Debug().Int("line", res.Line).Str("name", res.Name).Msg("specialization created")
	case domain.OutcomeSkippedExisting:
		summary.Skipped++
		s.reporter.Warning(fmt.Sprintf("Skipped (exists): %s", res.Name))
		log.Debug().Int("line", res.Line).Str("name", res.Name).Msg("specialization exists, skipped")
	default:
		summary.Failed++
		s.reporter.Error(fmt.Sprintf("Failed to import row: %q\nError: %v", res.Raw, res.Err))
		log.Warn().Err(res.Err).Int("line", res.Line).Strs("row", res.Raw).Msg("row import failed")
	}

	s.metrics.ObserveRow(res.Outcome)
}

func (s *ImportService) fail(log zerolog.Logger, started time.Time, err error) (*domain.ImportSummary, error) {
	s.metrics.ObserveRun(domain.PhaseFailed, 0, time.Since(started))
	log.Error().Err(err).Str("phase", string(domain.PhaseFailed)).Msg("specialization import failed")
	return nil, err
}

func failed(res domain.RowResult, err error) domain.RowResult {
	res.Outcome = domain.OutcomeFailed
	res.Err = err
	return res
}

// newRowReader returns a CSV reader over r that skips a leading UTF-8 BOM
// and leaves arity checks to the row parser. A quote inside an unquoted
// field is kept as a literal character.
func newRowReader(r io.Reader) *csv.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// blankRow is the result for an empty input line, which csv.Reader skips.
func blankRow(line int) domain.RowResult {
	return domain.RowResult{
		Line:    line,
		Raw:     []string{},
		Outcome: domain.OutcomeFailed,
		Err:     &domain.RowUnpackError{Got: 0, Want: rowFields},
	}
}

// recordEndLine is the last input line spanned by the record just read.
func recordEndLine(cr *csv.Reader, record []string) int {
	last := len(record) - 1
	line, _ := cr.FieldPos(last)
	return line + strings.Count(record[last], "\n")
}

// lineCounter counts the lines of everything read through it. The count is
// complete once the reader on top of it has hit EOF.
type lineCounter struct {
	r        io.Reader
	newlines int
	open     bool
}

func (c *lineCounter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.newlines += bytes.Count(p[:n], []byte{'\n'})
		c.open = p[n-1] != '\n'
	}
	return n, err
}

// lines is the number of lines read, counting an unterminated final line.
func (c *lineCounter) lines() int {
	if c.open {
		return c.newlines + 1
	}
	return c.newlines
}

type nopMetrics struct{}

func (nopMetrics) ObserveRow(domain.RowOutcome) {}

func (nopMetrics) ObserveRun(domain.ImportPhase, int, time.Duration) {}
