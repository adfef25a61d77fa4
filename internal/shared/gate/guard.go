package gate

import (
	"context"
	"log/slog"
)

// Recorder observes gate outcomes (metrics). Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordDecision(operation string, decision Decision)
}

// Guard runs Authorize for a named operation, reports the outcome and turns
// denials into *DenyError values services can return as-is.
type Guard struct {
	Recorder Recorder
	Logger   *slog.Logger
}

func (g Guard) Check(
	ctx context.Context,
	operation string,
	resource string,
	principal *Principal,
	requirement Requirement,
) error {
	decision := Authorize(principal, requirement)
	if g.Recorder != nil {
		g.Recorder.RecordDecision(operation, decision)
	}
	if decision == Allow {
		return nil
	}

	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	principalID := ""
	role := ""
	if principal != nil {
		principalID = principal.ID
		role = string(principal.Role)
	}
	logger.WarnContext(ctx, "access denied",
		"event", "gate_denied",
		"module", "internal/shared/gate",
		"layer", "shared",
		"operation", operation,
		"resource", resource,
		"decision", decision.String(),
		"principal_id", principalID,
		"role", role,
	)
	return Err(decision, resource)
}

// OwnerLookup resolves the current owner of the target resource.
// found=false with a nil error means the resource does not exist.
type OwnerLookup func(ctx context.Context) (ownerID string, found bool, err error)

// CheckOwner evaluates an OwnedBy requirement. Anonymous callers are rejected
// before lookup runs. Modifiers such as Requirement.NotBanned are applied to
// the ownership requirement in order.
func (g Guard) CheckOwner(
	ctx context.Context,
	operation string,
	resource string,
	principal *Principal,
	lookup OwnerLookup,
	modifiers ...func(Requirement) Requirement,
) error {
	if !Authorize(principal, Authenticated()).Allowed() {
		return g.Check(ctx, operation, resource, principal, Authenticated())
	}

	ownerID, found, err := lookup(ctx)
	if err != nil {
		return err
	}
	requirement := OwnedBy(ownerID, found)
	for _, modify := range modifiers {
		requirement = modify(requirement)
	}
	return g.Check(ctx, operation, resource, principal, requirement)
}
