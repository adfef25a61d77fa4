package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"lyceum/internal/platform/session"
	"lyceum/internal/shared/gate"
)

// run executes rootCmd with args against a fresh in-memory deployment.
// Cannot run in parallel: rootCmd and its flags are package globals.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LYCEUM_STORAGE_DRIVER", "memory")
	t.Setenv("LYCEUM_SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("LYCEUM_LOG_LEVEL", "error")
	configPath, outputFormat, roleReason, tokenUserID = "", "table", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHelpListsCommands(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, name := range []string{"migrate", "token", "user"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %q in help output:\n%s", name, out)
		}
	}
}

func TestMigrateInMemoryIsNoop(t *testing.T) {
	out, err := run(t, "migrate")
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out, "nothing to migrate") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestSetRoleValidatesBeforeLookup(t *testing.T) {
	if _, err := run(t, "user", "set-role", "u1", "superuser"); err == nil || !strings.Contains(err.Error(), "role") {
		t.Fatalf("expected role validation error, got %v", err)
	}
	if _, err := run(t, "user", "set-role", "missing-user", "admin"); err == nil || !strings.Contains(err.Error(), "set role") {
		t.Fatalf("expected unknown user error, got %v", err)
	}
}

func TestTokenIssueRequiresKnownUser(t *testing.T) {
	if _, err := run(t, "token", "issue"); err == nil {
		t.Fatalf("expected missing --user flag error")
	}
	if _, err := run(t, "token", "issue", "--user", "ghost"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTokenRevokeRequiresRedis(t *testing.T) {
	t.Setenv("LYCEUM_REDIS_ADDR", "")

	out, err := run(t, "token", "revoke", "any-token")
	if err == nil || !strings.Contains(err.Error(), "redis_addr") {
		t.Fatalf("expected redis_addr error, got %v", err)
	}
	if strings.Contains(out, "token revoked") {
		t.Fatalf("must not report success without a shared store: %s", out)
	}
}

func TestTokenRevokeWritesSharedStore(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("LYCEUM_REDIS_ADDR", mr.Addr())

	manager, err := session.NewManager(session.Options{Secret: []byte("0123456789abcdef0123456789abcdef")})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	token, err := manager.Issue(context.Background(), gate.Principal{ID: "u1", Role: gate.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	out, err := run(t, "token", "revoke", token.Value)
	if err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if !strings.Contains(out, "token revoked") {
		t.Fatalf("unexpected output: %s", out)
	}
	if !mr.Exists("lyceum:session:revoked:" + token.ID) {
		t.Fatalf("expected revocation key in redis, have %v", mr.Keys())
	}
}
