package dialog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/dialog"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/errno"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/sqlite"
)

func newResolverFixture(t *testing.T) (*dialog.SessionResolver, *sqlite.SessionStore) {
	t.Helper()
	db, err := sqlite.Open(":memory:", 5000)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	sessions := sqlite.NewSessionStore(db)
	return dialog.NewSessionResolver(sessions), sessions
}

func TestResolveExplicitID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, sessions := newResolverFixture(t)

	sess := entity.NewSession("阿强", "与小慧的对话")
	if err := sessions.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := r.Resolve(ctx, "阿强", "role_001", "小慧", sess.SessionID, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.SessionID != sess.SessionID {
		t.Errorf("SessionID = %q, want %q", got.SessionID, sess.SessionID)
	}
}

func TestResolveUnknownIDFails(t *testing.T) {
	t.Parallel()

	r, _ := newResolverFixture(t)

	_, err := r.Resolve(context.Background(), "阿强", "role_001", "小慧", "no-such-session", false)
	if !errors.Is(err, errno.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestResolveForceNewAlwaysCreates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, sessions := newResolverFixture(t)

	first, err := r.Resolve(ctx, "阿强", "role_001", "小慧", "", true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := r.Resolve(ctx, "阿强", "role_001", "小慧", "", true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first.SessionID == second.SessionID {
		t.Error("forceNew reused a session")
	}

	all, err := sessions.ListByUser(ctx, "阿强")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("sessions = %d, want 2", len(all))
	}
}

func TestResolveReusesSessionMentioningRole(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, sessions := newResolverFixture(t)

	other := entity.NewSession("阿强", "与老王的对话")
	if err := sessions.Create(ctx, other); err != nil {
		t.Fatalf("Create: %v", err)
	}
	match := entity.NewSession("阿强", "与小慧的对话")
	if err := sessions.Create(ctx, match); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := r.Resolve(ctx, "阿强", "role_001", "小慧", "", false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.SessionID != match.SessionID {
		t.Errorf("SessionID = %q, want the 小慧 session %q", got.SessionID, match.SessionID)
	}
}

func TestResolveCreatesWhenNothingMatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, _ := newResolverFixture(t)

	got, err := r.Resolve(ctx, "阿强", "role_001", "小慧", "", false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Status != entity.SessionActive {
		t.Errorf("Status = %q, want active", got.Status)
	}
	if got.Title != "与小慧的对话" {
		t.Errorf("Title = %q", got.Title)
	}

	again, err := r.Resolve(ctx, "阿强", "role_001", "小慧", "", false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if again.SessionID != got.SessionID {
		t.Error("second resolve did not reuse the created session")
	}
}

func TestResolveSkipsClosedSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, sessions := newResolverFixture(t)

	closed := entity.NewSession("阿强", "与小慧的对话")
	closed.Status = entity.SessionClosed
	if err := sessions.Create(ctx, closed); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := r.Resolve(ctx, "阿强", "role_001", "小慧", "", false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.SessionID == closed.SessionID {
		t.Error("resolver reused a closed session")
	}
}
