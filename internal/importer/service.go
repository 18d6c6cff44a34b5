package importer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/licenzia/inventory-importer/pkg/config"
	"github.com/licenzia/inventory-importer/pkg/db/models"
	pkgerrors "github.com/licenzia/inventory-importer/pkg/errors"
	"github.com/licenzia/inventory-importer/pkg/logger"
)

type repository interface {
	ExistingActivationKeys(ctx context.Context) (KeySet, error)
	CountItems(ctx context.Context) (int64, error)
	BulkInsert(ctx context.Context, items []models.InventoryItem, batchSize int) error
}

type rowSource interface {
	Rows() ([]Row, error)
}

type confirmer interface {
	Confirm(question string) (bool, error)
}

// Service runs the one-shot import pipeline: load existing keys, read the
// spreadsheet, reconcile, report, confirm, bulk insert.
type Service struct {
	repo   repository
	source rowSource
	prompt confirmer
	logg   *logger.Logger
	out    io.Writer
	cfg    config.ImportConfig
}

// NewService wires the pipeline. All collaborators are required; out defaults
// to stdout.
func NewService(repo repository, source rowSource, prompt confirmer, logg *logger.Logger, out io.Writer, cfg config.ImportConfig) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	if source == nil {
		return nil, fmt.Errorf("row source required")
	}
	if prompt == nil {
		return nil, fmt.Errorf("prompter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if out == nil {
		out = os.Stdout
	}
	return &Service{
		repo:   repo,
		source: source,
		prompt: prompt,
		logg:   logg,
		out:    out,
		cfg:    cfg,
	}, nil
}

// Run executes one import. It returns nil when the operator declines; any
// other early exit carries a coded error.
func (s *Service) Run(ctx context.Context) error {
	ctx = s.logg.WithRunID(ctx, uuid.New().String())
	defer s.logg.Info(ctx, "import run finished")

	existing, err := s.repo.ExistingActivationKeys(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading existing activation keys")
	}
	s.logg.Info(s.logg.WithField(ctx, "existing_keys", len(existing)), "activation keys loaded from store")

	rows, err := s.source.Rows()
	if err != nil {
		s.logg.Error(ctx, "reading spreadsheet failed", err)
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "total_rows", len(rows)), "spreadsheet loaded")

	res := s.reconcileWithProgress(existing, rows)
	s.warnSkipped(ctx, res)

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, renderSummary(newSummary(len(existing), res)))

	storeKeys := uniqueKeys(res.StoreDuplicates)
	fileKeys := uniqueKeys(res.FileDuplicates)
	s.echoKeys("Activation keys already present in the store:", storeKeys)
	s.echoKeys("Activation keys duplicated inside the spreadsheet:", fileKeys)
	s.writeSideFile(ctx, s.cfg.StoreDuplicatesFile, storeKeys)
	s.writeSideFile(ctx, s.cfg.FileDuplicatesFile, fileKeys)

	ok, err := s.prompt.Confirm("Proceed with the bulk import?")
	if err != nil {
		return err
	}
	if !ok {
		s.logg.Info(ctx, "bulk import declined by operator")
		fmt.Fprintln(s.out, "Bulk import stopped by the operator.")
		return nil
	}

	if len(res.Accepted) == 0 {
		s.logg.Info(ctx, "no new rows to insert")
		fmt.Fprintln(s.out, "No new rows to insert.")
		return nil
	}

	if err := s.repo.BulkInsert(ctx, res.Accepted, s.cfg.BatchSize); err != nil {
		dump := pkgerrors.Dump(err)
		s.logg.Error(s.logg.WithField(ctx, "error_chain", dump.Chain), "bulk insert failed", err)
		fmt.Fprintln(s.out, "Bulk import failed; no rows were written.")
		return err
	}

	s.logg.Info(s.logg.WithField(ctx, "inserted", len(res.Accepted)), "bulk insert committed")
	if count, err := s.repo.CountItems(ctx); err == nil {
		s.logg.Info(s.logg.WithField(ctx, "store_items", count), "store count after import")
	}
	fmt.Fprintln(s.out, "Bulk import completed successfully.")
	return nil
}

func (s *Service) reconcileWithProgress(existing KeySet, rows []Row) Result {
	bar := progressbar.NewOptions(len(rows),
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetDescription("classifying rows"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	rc := NewReconciler(existing)
	for _, row := range rows {
		rc.Add(row)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return rc.Result()
}

func (s *Service) warnSkipped(ctx context.Context, res Result) {
	partitions := [][]Skipped{res.Invalid, res.StoreDuplicates, res.FileDuplicates}
	for _, partition := range partitions {
		for _, sk := range partition {
			rowCtx := s.logg.WithFields(ctx, map[string]any{
				"row":    sk.Position,
				"key":    sk.ActivationKey,
				"reason": sk.Reason,
			})
			s.logg.Warn(rowCtx, "row skipped")
		}
	}
}

func (s *Service) echoKeys(title string, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintln(s.out, title)
	for _, k := range keys {
		fmt.Fprintf(s.out, " - %s\n", k)
	}
	fmt.Fprintln(s.out)
}

func (s *Service) writeSideFile(ctx context.Context, path string, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := writeKeyList(path, keys); err != nil {
		s.logg.Error(ctx, "writing duplicate key list failed", err)
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"path": path, "keys": len(keys)}), "duplicate key list written")
}
