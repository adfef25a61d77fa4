package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lyceum/contexts/catalog/dataset-service/adapters/memory"
	"lyceum/contexts/catalog/dataset-service/application"
	domainerrors "lyceum/contexts/catalog/dataset-service/domain/errors"
	"lyceum/contexts/catalog/dataset-service/ports"
	"lyceum/internal/shared/gate"
)

type spyRepository struct {
	*memory.Store
	getCalls  int
	fileAdds  int
	deletions []string
}

func (r *spyRepository) GetDataset(ctx context.Context, datasetID string) (ports.Dataset, error) {
	r.getCalls++
	return r.Store.GetDataset(ctx, datasetID)
}

func (r *spyRepository) AddFile(ctx context.Context, file ports.DatasetFile) (ports.DatasetFile, error) {
	r.fileAdds++
	return r.Store.AddFile(ctx, file)
}

func (r *spyRepository) DeleteDataset(ctx context.Context, datasetID string) error {
	r.deletions = append(r.deletions, datasetID)
	return r.Store.DeleteDataset(ctx, datasetID)
}

var (
	owner        = &gate.Principal{ID: "u1", Role: gate.RoleUser}
	bannedOwner  = &gate.Principal{ID: "u1", Role: gate.RoleBanned}
	stranger     = &gate.Principal{ID: "u2", Role: gate.RoleUser}
	admin        = &gate.Principal{ID: "admin1", Role: gate.RoleAdmin}
	sampleUpload = application.UploadFileInput{FileName: "train.csv", ContentType: "text/csv", SizeBytes: 2048, Checksum: "sha256:abc"}
)

func newService() (application.Service, *spyRepository) {
	store := memory.NewStore()
	store.SeedDataset(ports.Dataset{
		DatasetID:  "d1",
		OwnerID:    "u1",
		Title:      "Iris",
		Visibility: ports.VisibilityPublic,
		CreatedAt:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	store.SeedDataset(ports.Dataset{
		DatasetID:  "d2",
		OwnerID:    "u1",
		Title:      "Private notes",
		Visibility: ports.VisibilityPrivate,
		CreatedAt:  time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
	})
	repo := &spyRepository{Store: store}
	return application.Service{Repo: repo, IDGen: store}, repo
}

func TestUploadFileGate(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	if _, err := svc.UploadFile(ctx, nil, "d1", sampleUpload); !errors.Is(err, gate.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if repo.getCalls != 0 {
		t.Fatalf("anonymous upload must not look up the dataset")
	}
	if _, err := svc.UploadFile(ctx, bannedOwner, "d1", sampleUpload); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden for banned owner, got %v", err)
	}
	if _, err := svc.UploadFile(ctx, stranger, "d1", sampleUpload); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
	if _, err := svc.UploadFile(ctx, owner, "missing", sampleUpload); !errors.Is(err, gate.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.fileAdds != 0 {
		t.Fatalf("expected no writes after denials, got %d", repo.fileAdds)
	}

	file, err := svc.UploadFile(ctx, owner, "d1", sampleUpload)
	if err != nil {
		t.Fatalf("owner upload failed: %v", err)
	}
	if file.StorageKey != "datasets/d1/"+file.FileID {
		t.Fatalf("unexpected storage key %q", file.StorageKey)
	}

	detail, err := svc.GetDataset(ctx, nil, "d1")
	if err != nil {
		t.Fatalf("get dataset failed: %v", err)
	}
	if detail.Dataset.FileCount != 1 || detail.Dataset.TotalBytes != 2048 || len(detail.Files) != 1 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
}

func TestUploadFileRejectsPathNames(t *testing.T) {
	svc, _ := newService()

	input := sampleUpload
	input.FileName = "../etc/passwd"
	if _, err := svc.UploadFile(context.Background(), owner, "d1", input); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestDeleteFileUnknownFile(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if err := svc.DeleteFile(ctx, owner, "d1", "nope"); !errors.Is(err, domainerrors.ErrFileNotFound) {
		t.Fatalf("expected file not found, got %v", err)
	}
	if err := svc.DeleteFile(ctx, stranger, "d1", "nope"); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden before file lookup, got %v", err)
	}

	file, err := svc.UploadFile(ctx, owner, "d1", sampleUpload)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if err := svc.DeleteFile(ctx, admin, "d1", file.FileID); err != nil {
		t.Fatalf("admin delete file failed: %v", err)
	}
}

func TestDeleteDatasetRemovesFiles(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	if _, err := svc.UploadFile(ctx, owner, "d1", sampleUpload); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if err := svc.DeleteDataset(ctx, stranger, "d1"); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(repo.deletions) != 0 {
		t.Fatalf("expected no delete call after denial")
	}
	if err := svc.DeleteDataset(ctx, owner, "d1"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	files, _ := repo.Store.ListFiles(ctx, "d1")
	if len(files) != 0 {
		t.Fatalf("expected files removed with dataset, got %d", len(files))
	}
}

func TestCreateDatasetBannedForbidden(t *testing.T) {
	svc, _ := newService()
	input := application.CreateDatasetInput{Title: "MNIST", Tags: []string{"Vision", "vision", " digits "}}

	if _, err := svc.CreateDataset(context.Background(), &gate.Principal{ID: "u5", Role: gate.RoleBanned}, input); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	dataset, err := svc.CreateDataset(context.Background(), stranger, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if dataset.OwnerID != "u2" || len(dataset.Tags) != 2 || dataset.Visibility != ports.VisibilityPublic {
		t.Fatalf("unexpected dataset: %+v", dataset)
	}
}

func TestPrivateDatasetVisibility(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.GetDataset(ctx, stranger, "d2"); !errors.Is(err, domainerrors.ErrDatasetNotFound) {
		t.Fatalf("expected private dataset hidden, got %v", err)
	}
	if _, err := svc.GetDataset(ctx, owner, "d2"); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}

	public, total, err := svc.ListDatasets(ctx, nil, ports.DatasetFilter{})
	if err != nil || total != 1 || public[0].DatasetID != "d1" {
		t.Fatalf("expected only public dataset, got %d %+v %v", total, public, err)
	}
	own, total, err := svc.ListDatasets(ctx, owner, ports.DatasetFilter{OwnerID: "u1"})
	if err != nil || total != 2 || len(own) != 2 {
		t.Fatalf("expected owner to see both datasets, got %d %v", total, err)
	}
}
