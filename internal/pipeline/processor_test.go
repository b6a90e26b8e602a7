package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tdesilva/nicscan/constants"
	"github.com/tdesilva/nicscan/internal/entity"
	"github.com/tdesilva/nicscan/internal/nic"
	"github.com/tdesilva/nicscan/internal/ocr"
	"github.com/tdesilva/nicscan/internal/repository"
)

type memDocs struct {
	docs map[uuid.UUID]*entity.Document
}

func (m *memDocs) GetByID(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return d, nil
}
func (m *memDocs) GetByHash(context.Context, []byte) (*entity.Document, error) {
	return nil, errors.New("no rows")
}
func (m *memDocs) Create(_ context.Context, d *entity.Document) error {
	m.docs[d.ID] = d
	return nil
}
func (m *memDocs) UpsertByHash(ctx context.Context, d *entity.Document) (*entity.Document, bool, error) {
	return d, false, m.Create(ctx, d)
}

type memJobs struct {
	jobs map[uuid.UUID]*entity.ScanJob
}

func (m *memJobs) Start(_ context.Context, docID uuid.UUID, format string) (*entity.ScanJob, error) {
	j := &entity.ScanJob{ID: uuid.New(), DocumentID: docID, Format: format,
		Status: string(constants.JobStatusRunning)}
	m.jobs[j.ID] = j
	return j, nil
}
func (m *memJobs) FinishDone(_ context.Context, jobID uuid.UUID, runCount int) error {
	j := m.jobs[jobID]
	j.Status = string(constants.JobStatusDone)
	j.RunCount = runCount
	return nil
}
func (m *memJobs) FinishFailure(_ context.Context, jobID uuid.UUID, msg string) error {
	j := m.jobs[jobID]
	j.Status = string(constants.JobStatusFailed)
	j.ErrorMessage = &msg
	return nil
}
func (m *memJobs) GetByID(_ context.Context, id uuid.UUID) (*entity.ScanJob, error) {
	j, ok := m.jobs[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return j, nil
}

type memIDs struct {
	byDoc map[uuid.UUID][]nic.Result
}

func (m *memIDs) ReplaceForDocument(_ context.Context, _, docID uuid.UUID, results []nic.Result) error {
	m.byDoc[docID] = results
	return nil
}
func (m *memIDs) ListByDocument(_ context.Context, docID uuid.UUID) ([]*entity.Identifier, error) {
	var out []*entity.Identifier
	for i, r := range m.byDoc[docID] {
		out = append(out, &entity.Identifier{DocumentID: docID, Value: r.Value,
			Tier: r.Tier, Occurrences: r.Count, Position: i})
	}
	return out, nil
}
func (m *memIDs) ListForExport(context.Context, *time.Time, *time.Time) ([]repository.ExportRow, error) {
	return nil, nil
}

func newTestProcessor(t *testing.T, acq Acquirer) (*Processor, *memDocs, *memJobs, *memIDs) {
	t.Helper()
	lib, err := nic.NewLibrary()
	if err != nil {
		t.Fatal(err)
	}
	docs := &memDocs{docs: map[uuid.UUID]*entity.Document{}}
	jobs := &memJobs{jobs: map[uuid.UUID]*entity.ScanJob{}}
	ids := &memIDs{byDoc: map[uuid.UUID][]nic.Result{}}
	p := NewProcessor(nil, acq, nic.NewExtractor(lib, nil), docs, jobs, ids)
	return p, docs, jobs, ids
}

func TestProcessDocument(t *testing.T) {
	acq := &fakeAcquirer{fast: ocr.Result{Runs: []string{"NIC No: 913153782V"}}}
	p, docs, jobs, ids := newTestProcessor(t, acq)

	doc := &entity.Document{ID: uuid.New(), SourcePath: "/in/a.pdf",
		Filename: "a.pdf", FileExt: "pdf"}
	docs.docs[doc.ID] = doc

	jobID, results, err := p.ProcessDocument(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if len(results) != 1 || results[0].Value != "913153782V" {
		t.Errorf("results = %+v", results)
	}

	job := jobs.jobs[jobID]
	if job == nil || job.Status != string(constants.JobStatusDone) {
		t.Errorf("job = %+v, want DONE", job)
	}
	if job.RunCount != 1 {
		t.Errorf("run count = %d, want 1", job.RunCount)
	}
	if stored := ids.byDoc[doc.ID]; len(stored) != 1 || stored[0].Value != "913153782V" {
		t.Errorf("stored identifiers = %+v", stored)
	}
}

func TestProcessDocumentUnknownID(t *testing.T) {
	p, _, _, _ := newTestProcessor(t, &fakeAcquirer{})
	if _, _, err := p.ProcessDocument(context.Background(), uuid.New()); err == nil {
		t.Error("want error for unknown document")
	}
}

func TestProcessDocumentUnsupportedFormat(t *testing.T) {
	p, docs, jobs, _ := newTestProcessor(t, &fakeAcquirer{})
	doc := &entity.Document{ID: uuid.New(), SourcePath: "/in/a.docx",
		Filename: "a.docx", FileExt: "docx"}
	docs.docs[doc.ID] = doc

	if _, _, err := p.ProcessDocument(context.Background(), doc.ID); err == nil {
		t.Error("want error for unsupported format")
	}
	if len(jobs.jobs) != 0 {
		t.Errorf("no job should be started, got %d", len(jobs.jobs))
	}
}
