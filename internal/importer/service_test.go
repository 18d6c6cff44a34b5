package importer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licenzia/inventory-importer/pkg/config"
	"github.com/licenzia/inventory-importer/pkg/db/models"
	pkgerrors "github.com/licenzia/inventory-importer/pkg/errors"
	"github.com/licenzia/inventory-importer/pkg/logger"
)

type stubRepo struct {
	existing KeySet
	keysErr  error

	inserted  []models.InventoryItem
	batchSize int
	insertErr error
	calls     int

	count    int64
	countErr error
}

func (s *stubRepo) ExistingActivationKeys(ctx context.Context) (KeySet, error) {
	if s.keysErr != nil {
		return nil, s.keysErr
	}
	if s.existing == nil {
		return NewKeySet(), nil
	}
	return s.existing, nil
}

func (s *stubRepo) CountItems(ctx context.Context) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.count, nil
}

func (s *stubRepo) BulkInsert(ctx context.Context, items []models.InventoryItem, batchSize int) error {
	s.calls++
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = items
	s.batchSize = batchSize
	return nil
}

type stubSource struct {
	rows []Row
	err  error
}

func (s *stubSource) Rows() ([]Row, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

type stubConfirmer struct {
	answer   bool
	err      error
	asked    int
	question string
}

func (s *stubConfirmer) Confirm(question string) (bool, error) {
	s.asked++
	s.question = question
	if s.err != nil {
		return false, s.err
	}
	return s.answer, nil
}

func newTestService(t *testing.T, repo *stubRepo, source *stubSource, prompt *stubConfirmer) (*Service, *bytes.Buffer, config.ImportConfig) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.ImportConfig{
		BatchSize:           100,
		StoreDuplicatesFile: filepath.Join(dir, "store_duplicates.txt"),
		FileDuplicatesFile:  filepath.Join(dir, "file_duplicates.txt"),
	}

	out := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})

	svc, err := NewService(repo, source, prompt, logg, out, cfg)
	require.NoError(t, err)
	return svc, out, cfg
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})

	_, err := NewService(nil, &stubSource{}, &stubConfirmer{}, logg, nil, config.ImportConfig{})
	require.Error(t, err)
	_, err = NewService(&stubRepo{}, nil, &stubConfirmer{}, logg, nil, config.ImportConfig{})
	require.Error(t, err)
	_, err = NewService(&stubRepo{}, &stubSource{}, nil, logg, nil, config.ImportConfig{})
	require.Error(t, err)
	_, err = NewService(&stubRepo{}, &stubSource{}, &stubConfirmer{}, nil, nil, config.ImportConfig{})
	require.Error(t, err)
}

func TestRunInsertsAcceptedRowsOnConfirm(t *testing.T) {
	repo := &stubRepo{existing: NewKeySet("OLD"), count: 3}
	source := &stubSource{rows: []Row{
		row(2, "K-1", "Office", "REF-1"),
		row(3, "OLD", "Office", "REF-1"),
		row(4, "K-1", "Office", "REF-1"),
		row(5, "", "Office", "REF-1"),
		row(6, "K-2", "Office", "REF-2"),
	}}
	prompt := &stubConfirmer{answer: true}

	svc, out, _ := newTestService(t, repo, source, prompt)
	require.NoError(t, svc.Run(context.Background()))

	assert.Equal(t, 1, prompt.asked)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 100, repo.batchSize)
	require.Len(t, repo.inserted, 2)
	assert.Equal(t, "K-1", repo.inserted[0].ActivationKey)
	assert.Equal(t, "K-2", repo.inserted[1].ActivationKey)
	assert.Contains(t, out.String(), "Bulk import completed successfully.")
}

func TestRunDeclineWritesNothing(t *testing.T) {
	repo := &stubRepo{}
	source := &stubSource{rows: []Row{row(2, "K-1", "Office", "REF-1")}}
	prompt := &stubConfirmer{answer: false}

	svc, out, _ := newTestService(t, repo, source, prompt)
	require.NoError(t, svc.Run(context.Background()))

	assert.Zero(t, repo.calls)
	assert.Contains(t, out.String(), "Bulk import stopped by the operator.")
}

func TestRunConfirmWithNoNewRows(t *testing.T) {
	repo := &stubRepo{existing: NewKeySet("K-1")}
	source := &stubSource{rows: []Row{row(2, "K-1", "Office", "REF-1")}}
	prompt := &stubConfirmer{answer: true}

	svc, out, _ := newTestService(t, repo, source, prompt)
	require.NoError(t, svc.Run(context.Background()))

	assert.Zero(t, repo.calls)
	assert.Contains(t, out.String(), "No new rows to insert.")
}

func TestRunSourceFailureIsFatalBeforePrompt(t *testing.T) {
	repo := &stubRepo{}
	source := &stubSource{err: pkgerrors.New(pkgerrors.CodeValidation, "spreadsheet is missing required columns")}
	prompt := &stubConfirmer{answer: true}

	svc, _, _ := newTestService(t, repo, source, prompt)
	err := svc.Run(context.Background())

	require.Error(t, err)
	assert.Zero(t, prompt.asked)
	assert.Zero(t, repo.calls)
}

func TestRunKeyLoadFailureIsDependencyError(t *testing.T) {
	repo := &stubRepo{keysErr: errors.New("connection refused")}
	svc, _, _ := newTestService(t, repo, &stubSource{}, &stubConfirmer{})

	err := svc.Run(context.Background())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestRunBulkInsertFailurePropagates(t *testing.T) {
	insertErr := pkgerrors.New(pkgerrors.CodeDependency, "bulk insert failed")
	repo := &stubRepo{insertErr: insertErr}
	source := &stubSource{rows: []Row{row(2, "K-1", "Office", "REF-1")}}
	prompt := &stubConfirmer{answer: true}

	svc, out, _ := newTestService(t, repo, source, prompt)
	err := svc.Run(context.Background())

	require.ErrorIs(t, err, insertErr)
	assert.Contains(t, out.String(), "Bulk import failed; no rows were written.")
}

func TestRunWritesDuplicateSideFiles(t *testing.T) {
	repo := &stubRepo{existing: NewKeySet("STORE-1")}
	source := &stubSource{rows: []Row{
		row(2, "STORE-1", "Office", "REF-1"),
		row(3, "K-1", "Office", "REF-1"),
		row(4, "K-1", "Office", "REF-1"),
	}}
	prompt := &stubConfirmer{answer: false}

	svc, out, cfg := newTestService(t, repo, source, prompt)
	require.NoError(t, svc.Run(context.Background()))

	storeList, err := os.ReadFile(cfg.StoreDuplicatesFile)
	require.NoError(t, err)
	assert.Equal(t, "STORE-1\n", string(storeList))

	fileList, err := os.ReadFile(cfg.FileDuplicatesFile)
	require.NoError(t, err)
	assert.Equal(t, "K-1\n", string(fileList))

	assert.Contains(t, out.String(), "Activation keys already present in the store:")
	assert.Contains(t, out.String(), " - STORE-1")
}

func TestRunSkipsSideFilesWhenNoDuplicates(t *testing.T) {
	repo := &stubRepo{}
	source := &stubSource{rows: []Row{row(2, "K-1", "Office", "REF-1")}}
	prompt := &stubConfirmer{answer: false}

	svc, _, cfg := newTestService(t, repo, source, prompt)
	require.NoError(t, svc.Run(context.Background()))

	_, err := os.Stat(cfg.StoreDuplicatesFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(cfg.FileDuplicatesFile)
	assert.True(t, os.IsNotExist(err))
}

func TestRunShowsSummaryCounts(t *testing.T) {
	repo := &stubRepo{existing: NewKeySet("STORE-1", "STORE-2")}
	source := &stubSource{rows: []Row{
		row(2, "K-1", "Office", "REF-1"),
		row(3, "STORE-1", "Office", "REF-1"),
		row(4, "", "Office", "REF-1"),
	}}
	prompt := &stubConfirmer{answer: false}

	svc, out, _ := newTestService(t, repo, source, prompt)
	require.NoError(t, svc.Run(context.Background()))

	assert.Contains(t, out.String(), "Bulk Import Summary")
	assert.Contains(t, out.String(), "Rows in spreadsheet")
	assert.Contains(t, out.String(), "New items to insert")
}
