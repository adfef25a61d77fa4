package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lyceum/contexts/catalog/product-service/adapters/memory"
	"lyceum/contexts/catalog/product-service/application"
	domainerrors "lyceum/contexts/catalog/product-service/domain/errors"
	"lyceum/contexts/catalog/product-service/ports"
	"lyceum/internal/shared/gate"
	"lyceum/internal/shared/validation"
)

// spyRepository records mutating calls and can inject a delete fault.
type spyRepository struct {
	*memory.Store
	getCalls    int
	deleteCalls []string
	updateCalls []string
	createCalls int
	deleteErr   error
}

func (r *spyRepository) GetProduct(ctx context.Context, productID string) (ports.Product, error) {
	r.getCalls++
	return r.Store.GetProduct(ctx, productID)
}

func (r *spyRepository) DeleteProduct(ctx context.Context, productID string) error {
	r.deleteCalls = append(r.deleteCalls, productID)
	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.Store.DeleteProduct(ctx, productID)
}

func (r *spyRepository) UpdateProduct(ctx context.Context, productID string, patch ports.ProductPatch, now time.Time) (ports.Product, error) {
	r.updateCalls = append(r.updateCalls, productID)
	return r.Store.UpdateProduct(ctx, productID, patch, now)
}

func (r *spyRepository) CreateProduct(ctx context.Context, product ports.Product) (ports.Product, error) {
	r.createCalls++
	return r.Store.CreateProduct(ctx, product)
}

func newService(t *testing.T) (application.Service, *spyRepository) {
	t.Helper()
	store := memory.NewStore()
	store.SeedProduct(ports.Product{
		ProductID:   "p1",
		CreatorID:   "u1",
		Name:        "Go in Practice",
		ProductType: ports.ProductTypeEbook,
		PriceCents:  1999,
		Currency:    "USD",
		Status:      ports.StatusPublished,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	repo := &spyRepository{Store: store}
	return application.Service{
		Repo:        repo,
		Idempotency: store,
		IDGen:       store,
	}, repo
}

var (
	owner  = &gate.Principal{ID: "u1", Role: gate.RoleUser}
	other  = &gate.Principal{ID: "u2", Role: gate.RoleUser}
	admin  = &gate.Principal{ID: "admin1", Role: gate.RoleAdmin}
	banned = &gate.Principal{ID: "u3", Role: gate.RoleBanned}
)

func TestDeleteProductAnonymousTouchesNoPersistence(t *testing.T) {
	svc, repo := newService(t)

	err := svc.DeleteProduct(context.Background(), nil, "p1")
	if !errors.Is(err, gate.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if repo.getCalls != 0 || len(repo.deleteCalls) != 0 {
		t.Fatalf("expected no repository calls, got get=%d delete=%v", repo.getCalls, repo.deleteCalls)
	}
}

func TestDeleteProductNonOwnerForbidden(t *testing.T) {
	svc, repo := newService(t)

	err := svc.DeleteProduct(context.Background(), other, "p1")
	if !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(repo.deleteCalls) != 0 {
		t.Fatalf("expected no delete call, got %v", repo.deleteCalls)
	}
}

func TestDeleteProductOwnerDeletesOnce(t *testing.T) {
	svc, repo := newService(t)

	if err := svc.DeleteProduct(context.Background(), owner, "p1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(repo.deleteCalls) != 1 || repo.deleteCalls[0] != "p1" {
		t.Fatalf("expected exactly one delete(p1), got %v", repo.deleteCalls)
	}
	if _, err := svc.GetProduct(context.Background(), owner, "p1"); !errors.Is(err, domainerrors.ErrProductNotFound) {
		t.Fatalf("expected product to be gone, got %v", err)
	}
}

func TestDeleteProductAdminBypassesOwnership(t *testing.T) {
	svc, repo := newService(t)

	if err := svc.DeleteProduct(context.Background(), admin, "p1"); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if len(repo.deleteCalls) != 1 {
		t.Fatalf("expected one delete call, got %v", repo.deleteCalls)
	}
}

func TestDeleteProductMissingIsNotFound(t *testing.T) {
	svc, repo := newService(t)

	err := svc.DeleteProduct(context.Background(), owner, "missing")
	if !errors.Is(err, gate.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var deny *gate.DenyError
	if !errors.As(err, &deny) || deny.Resource != "Product" {
		t.Fatalf("expected Product deny error, got %#v", err)
	}
	if len(repo.deleteCalls) != 0 {
		t.Fatalf("expected no delete call, got %v", repo.deleteCalls)
	}
}

func TestDeleteProductRepositoryFaultPropagates(t *testing.T) {
	svc, repo := newService(t)
	fault := errors.New("connection reset by peer")
	repo.deleteErr = fault

	err := svc.DeleteProduct(context.Background(), owner, "p1")
	if !errors.Is(err, fault) {
		t.Fatalf("expected repository fault, got %v", err)
	}
	if errors.Is(err, gate.ErrForbidden) || errors.Is(err, gate.ErrNotFound) {
		t.Fatalf("fault must not be reported as a gate denial: %v", err)
	}
}

func TestUpdateProductValidationRunsBeforeGate(t *testing.T) {
	svc, repo := newService(t)

	_, err := svc.UpdateProduct(context.Background(), nil, "p1", ports.ProductPatch{})
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if details := validation.Details(err); len(details) != 1 || details[0].Field != "body" {
		t.Fatalf("expected body detail, got %+v", details)
	}
	if repo.getCalls != 0 {
		t.Fatalf("expected no lookups for invalid input")
	}
}

func TestUpdateProductOwnerOnly(t *testing.T) {
	svc, repo := newService(t)
	name := "Go in Practice, 2nd ed."

	if _, err := svc.UpdateProduct(context.Background(), other, "p1", ports.ProductPatch{Name: &name}); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(repo.updateCalls) != 0 {
		t.Fatalf("expected no update call after denial")
	}

	updated, err := svc.UpdateProduct(context.Background(), owner, "p1", ports.ProductPatch{Name: &name})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("expected name %q, got %q", name, updated.Name)
	}
}

func TestCreateProductBannedForbidden(t *testing.T) {
	svc, repo := newService(t)
	input := application.CreateProductInput{Name: "Templates", ProductType: "template", PriceCents: 500}

	if _, err := svc.CreateProduct(context.Background(), banned, input); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden for banned creator, got %v", err)
	}
	if _, err := svc.CreateProduct(context.Background(), nil, input); !errors.Is(err, gate.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if repo.createCalls != 0 {
		t.Fatalf("expected no create calls, got %d", repo.createCalls)
	}

	created, err := svc.CreateProduct(context.Background(), other, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.CreatorID != "u2" || created.Currency != "USD" || created.Status != ports.StatusPublished {
		t.Fatalf("unexpected defaults: %+v", created)
	}
}

func TestCreateProductRejectsUnknownType(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateProduct(context.Background(), owner, application.CreateProductInput{Name: "X", ProductType: "vinyl"})
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestPurchaseIdempotencyAndAccess(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	hasAccess, err := svc.CheckAccess(ctx, other, "p1")
	if err != nil || hasAccess {
		t.Fatalf("expected no access before purchase, got %v %v", hasAccess, err)
	}

	first, err := svc.PurchaseProduct(ctx, other, "idem-1", "p1")
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	replay, err := svc.PurchaseProduct(ctx, other, "idem-1", "p1")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if first.PurchaseID != replay.PurchaseID {
		t.Fatalf("expected replay to return %s, got %s", first.PurchaseID, replay.PurchaseID)
	}
	if first.AmountCents != 1999 || first.SellerID != "u1" {
		t.Fatalf("unexpected purchase: %+v", first)
	}

	hasAccess, err = svc.CheckAccess(ctx, other, "p1")
	if err != nil || !hasAccess {
		t.Fatalf("expected access after purchase, got %v %v", hasAccess, err)
	}

	if _, err := svc.PurchaseProduct(ctx, other, "idem-2", "p1"); !errors.Is(err, domainerrors.ErrAlreadyOwned) {
		t.Fatalf("expected already owned, got %v", err)
	}

	txs, err := svc.ListMyTransactions(ctx, other, 0)
	if err != nil || len(txs) != 1 {
		t.Fatalf("expected one transaction, got %d %v", len(txs), err)
	}
}

func TestPurchaseRules(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.PurchaseProduct(ctx, other, "", "p1"); !errors.Is(err, domainerrors.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected idempotency key required, got %v", err)
	}
	if _, err := svc.PurchaseProduct(ctx, nil, "k", "p1"); !errors.Is(err, gate.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, err := svc.PurchaseProduct(ctx, owner, "k", "p1"); !errors.Is(err, domainerrors.ErrSelfPurchase) {
		t.Fatalf("expected self purchase rejection, got %v", err)
	}
	if _, err := svc.PurchaseProduct(ctx, other, "k", "missing"); !errors.Is(err, domainerrors.ErrProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}
}

func TestListAllTransactionsAdminOnly(t *testing.T) {
	svc, _ := newService(t)

	if _, err := svc.ListAllTransactions(context.Background(), other, 10); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.ListAllTransactions(context.Background(), admin, 10); err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
}

func TestListEbooksOnlyPublished(t *testing.T) {
	svc, repo := newService(t)
	repo.Store.SeedProduct(ports.Product{ProductID: "p2", CreatorID: "u1", ProductType: ports.ProductTypeEbook, Status: ports.StatusDraft})
	repo.Store.SeedProduct(ports.Product{ProductID: "p3", CreatorID: "u1", ProductType: ports.ProductTypeCourse, Status: ports.StatusPublished})

	items, total, err := svc.ListEbooks(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("list ebooks failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ProductID != "p1" {
		t.Fatalf("expected only p1, got total=%d items=%+v", total, items)
	}
}

func TestGetProductHidesDraftsFromNonOwners(t *testing.T) {
	svc, repo := newService(t)
	repo.Store.SeedProduct(ports.Product{ProductID: "d1", CreatorID: "u1", ProductType: ports.ProductTypeCourse, Status: ports.StatusDraft})
	ctx := context.Background()

	for _, principal := range []*gate.Principal{nil, other} {
		if _, err := svc.GetProduct(ctx, principal, "d1"); !errors.Is(err, domainerrors.ErrProductNotFound) {
			t.Fatalf("expected draft hidden from %+v, got %v", principal, err)
		}
	}
	for _, principal := range []*gate.Principal{owner, admin} {
		product, err := svc.GetProduct(ctx, principal, "d1")
		if err != nil || product.ProductID != "d1" {
			t.Fatalf("expected draft visible to %s, got %+v %v", principal.ID, product, err)
		}
	}
	if _, err := svc.GetProduct(ctx, nil, "p1"); err != nil {
		t.Fatalf("published product should be public, got %v", err)
	}
}
