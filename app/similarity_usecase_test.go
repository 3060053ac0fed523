package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/simscan/domain"
	"github.com/ludo-technologies/simscan/service"
)

type mockFileReader struct {
	mock.Mock
}

func (m *mockFileReader) CollectFiles(root string, include, exclude []string) ([]string, error) {
	args := m.Called(root, include, exclude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockFileReader) FilterByFilename(paths []string, name string) []string {
	args := m.Called(paths, name)
	return args.Get(0).([]string)
}

func (m *mockFileReader) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockFileReader) FileExists(path string) (bool, error) {
	args := m.Called(path)
	return args.Bool(0), args.Error(1)
}

type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) LoadDocuments(ctx context.Context, paths []string) ([]domain.Document, []domain.SkippedDocument, error) {
	args := m.Called(ctx, paths)
	docs, _ := args.Get(0).([]domain.Document)
	skipped, _ := args.Get(1).([]domain.SkippedDocument)
	return docs, skipped, args.Error(2)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) SaveReport(ctx context.Context, report *domain.SimilarityReport) (int64, error) {
	args := m.Called(ctx, report)
	return args.Get(0).(int64), args.Error(1)
}

func newRequest(out *bytes.Buffer) *domain.SimilarityRequest {
	req := domain.DefaultSimilarityRequest()
	req.Root = "subs"
	req.FileNames = []string{"Main.java"}
	req.PermutationCount = 100
	req.Seed = 7
	if out != nil {
		req.OutputWriter = out
	}
	return req
}

func identicalDocs() []domain.Document {
	shingles := service.Shingles([]string{"int", "a", "=", "b", "+", "c;"}, 3)
	return []domain.Document{
		{Label: "alice", Path: "subs/alice/Main.java", Shingles: shingles},
		{Label: "bob", Path: "subs/bob/Main.java", Shingles: shingles},
		{Label: "carol", Path: "subs/carol/Main.java", Shingles: service.Shingles([]string{"x", "y", "z", "w"}, 3)},
	}
}

func TestSimilarityUseCaseBuilder_RequiresDependencies(t *testing.T) {
	_, err := NewSimilarityUseCaseBuilder().Build()
	assert.EqualError(t, err, "file reader is required")

	_, err = NewSimilarityUseCaseBuilder().WithFileReader(&mockFileReader{}).Build()
	assert.EqualError(t, err, "document loader is required")

	_, err = NewSimilarityUseCaseBuilder().
		WithFileReader(&mockFileReader{}).
		WithLoader(&mockLoader{}).
		Build()
	assert.EqualError(t, err, "similarity service is required")

	_, err = NewSimilarityUseCaseBuilder().
		WithFileReader(&mockFileReader{}).
		WithLoader(&mockLoader{}).
		WithService(service.NewSimilarityService(nil, nil)).
		Build()
	assert.EqualError(t, err, "output formatter is required")
}

func TestSimilarityUseCase_Execute(t *testing.T) {
	files := []string{"subs/alice/Main.java", "subs/bob/Main.java", "subs/carol/Main.java", "subs/alice/Util.java"}
	matched := files[:3]

	reader := &mockFileReader{}
	reader.On("CollectFiles", "subs", domain.DefaultIncludePatterns, domain.DefaultExcludePatterns).Return(files, nil)
	reader.On("FilterByFilename", files, "Main.java").Return(matched)

	loader := &mockLoader{}
	loader.On("LoadDocuments", mock.Anything, matched).Return(identicalDocs(), []domain.SkippedDocument{{Label: "dave", Reason: "unreadable"}}, nil)

	recorder := &mockRecorder{}
	recorder.On("SaveReport", mock.Anything, mock.AnythingOfType("*domain.SimilarityReport")).Return(int64(12), nil)

	uc, err := NewSimilarityUseCaseBuilder().
		WithFileReader(reader).
		WithLoader(loader).
		WithService(service.NewSimilarityService(nil, nil)).
		WithFormatter(service.NewSimilarityFormatter()).
		WithRecorder(recorder).
		WithExecutor(service.NewParallelExecutor()).
		Build()
	require.NoError(t, err)

	var out bytes.Buffer
	resp, err := uc.Execute(context.Background(), newRequest(&out))
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, 4, resp.FilesFound)
	require.Len(t, resp.Reports, 1)

	report := resp.Reports[0]
	assert.Equal(t, int64(12), report.RunID)
	assert.Equal(t, []string{"alice", "bob"}, report.FlaggedLabels())
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "dave", report.Skipped[0].Label)

	assert.Contains(t, out.String(), "Main.java\n---------\n")
	assert.Contains(t, out.String(), "alice\n-----\n1.000 bob\n")

	reader.AssertExpectations(t)
	loader.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestSimilarityUseCase_WritesReportFile(t *testing.T) {
	root := t.TempDir()
	files := []string{filepath.Join(root, "a", "Main.java"), filepath.Join(root, "b", "Main.java")}

	reader := &mockFileReader{}
	reader.On("CollectFiles", root, mock.Anything, mock.Anything).Return(files, nil)
	reader.On("FilterByFilename", files, "Main.java").Return(files)

	loader := &mockLoader{}
	loader.On("LoadDocuments", mock.Anything, files).Return(identicalDocs()[:2], nil, nil)

	var status bytes.Buffer
	uc, err := NewSimilarityUseCaseBuilder().
		WithFileReader(reader).
		WithLoader(loader).
		WithService(service.NewSimilarityService(nil, nil)).
		WithFormatter(service.NewSimilarityFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(&status)).
		Build()
	require.NoError(t, err)

	req := newRequest(nil)
	req.Root = root
	req.OutputDir = filepath.Join(root, "reports")
	req.OutputFormat = domain.OutputFormatCSV

	_, err = uc.Execute(context.Background(), req)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(root, "reports", "Main Clusters.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "file,label,other,similarity\n")
	assert.Contains(t, status.String(), "Report written:")
}

func TestSimilarityUseCase_ContinuesAfterFailure(t *testing.T) {
	files := []string{"subs/a/Main.java", "subs/b/Main.java", "subs/a/Util.java", "subs/b/Util.java"}

	reader := &mockFileReader{}
	reader.On("CollectFiles", "subs", mock.Anything, mock.Anything).Return(files, nil)
	reader.On("FilterByFilename", files, "Main.java").Return(files[:2])
	reader.On("FilterByFilename", files, "Util.java").Return(files[2:])

	boom := errors.New("disk on fire")
	loader := &mockLoader{}
	loader.On("LoadDocuments", mock.Anything, files[:2]).Return(nil, nil, boom)
	loader.On("LoadDocuments", mock.Anything, files[2:]).Return(identicalDocs()[:2], nil, nil)

	uc, err := NewSimilarityUseCaseBuilder().
		WithFileReader(reader).
		WithLoader(loader).
		WithService(service.NewSimilarityService(nil, nil)).
		WithFormatter(service.NewSimilarityFormatter()).
		Build()
	require.NoError(t, err)

	var out bytes.Buffer
	req := newRequest(&out)
	req.FileNames = []string{"Main.java", "Util.java"}

	resp, err := uc.Execute(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, resp.Success)
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, "Util.java", resp.Reports[0].FileName)
}

func TestSimilarityUseCase_WritesReportsInFileNameOrder(t *testing.T) {
	files := []string{"subs/a/Main.java", "subs/b/Main.java", "subs/a/Util.java", "subs/b/Util.java"}

	reader := &mockFileReader{}
	reader.On("CollectFiles", "subs", mock.Anything, mock.Anything).Return(files, nil)
	reader.On("FilterByFilename", files, "Main.java").Return(files[:2])
	reader.On("FilterByFilename", files, "Util.java").Return(files[2:])

	// Main.java finishes only after Util.java has been loaded
	utilLoaded := make(chan struct{})
	loader := &mockLoader{}
	loader.On("LoadDocuments", mock.Anything, files[:2]).
		Run(func(mock.Arguments) { <-utilLoaded }).
		Return(identicalDocs()[:2], nil, nil)
	loader.On("LoadDocuments", mock.Anything, files[2:]).
		Run(func(mock.Arguments) { close(utilLoaded) }).
		Return(identicalDocs()[:2], nil, nil)

	uc, err := NewSimilarityUseCaseBuilder().
		WithFileReader(reader).
		WithLoader(loader).
		WithService(service.NewSimilarityService(nil, nil)).
		WithFormatter(service.NewSimilarityFormatter()).
		WithExecutor(service.NewParallelExecutor()).
		Build()
	require.NoError(t, err)

	var out bytes.Buffer
	req := newRequest(&out)
	req.FileNames = []string{"Main.java", "Util.java"}

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Reports, 2)
	assert.Equal(t, "Main.java", resp.Reports[0].FileName)
	assert.Equal(t, "Util.java", resp.Reports[1].FileName)

	text := out.String()
	mainAt := strings.Index(text, "Main.java\n---------\n")
	utilAt := strings.Index(text, "Util.java\n---------\n")
	require.GreaterOrEqual(t, mainAt, 0)
	require.GreaterOrEqual(t, utilAt, 0)
	assert.Less(t, mainAt, utilAt)
}

func TestSimilarityUseCase_InvalidRequest(t *testing.T) {
	uc, err := NewSimilarityUseCaseBuilder().
		WithFileReader(&mockFileReader{}).
		WithLoader(&mockLoader{}).
		WithService(service.NewSimilarityService(nil, nil)).
		WithFormatter(service.NewSimilarityFormatter()).
		Build()
	require.NoError(t, err)

	req := newRequest(nil)
	req.FileNames = nil
	_, err = uc.Execute(context.Background(), req)
	assert.Equal(t, domain.ErrCodeInvalidInput, domain.ErrorCode(err))

	_, err = uc.Execute(context.Background(), nil)
	assert.Error(t, err)
}

func TestReportPath(t *testing.T) {
	req := newRequest(nil)
	assert.Equal(t, filepath.Join("subs", "Main Clusters.txt"), ReportPath(req, "Main.java"))

	req.OutputDir = "out"
	req.OutputFormat = domain.OutputFormatJSON
	assert.Equal(t, filepath.Join("out", "Main Clusters.json"), ReportPath(req, "Main.java"))
}
