package moodengine_test

import (
	"context"
	"testing"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/moodengine"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/inmemory"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/sqlite"
)

func newMoodFixture(t *testing.T) (*moodengine.Store, *inmemory.HotStore, *sqlite.RoleStore) {
	t.Helper()
	db, err := sqlite.Open(":memory:", 5000)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	hot := inmemory.NewHotStore()
	roles := sqlite.NewRoleStore(db)
	return moodengine.NewStore(hot, roles), hot, roles
}

func TestCurrentFallsBackToSeed(t *testing.T) {
	t.Parallel()

	store, _, _ := newMoodFixture(t)
	seed := entity.NeutralMood()

	got, err := store.Current(context.Background(), "role_001", seed)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got != seed {
		t.Errorf("mood = %+v, want seed %+v", got, seed)
	}
}

func TestCurrentReadsDurableAndRefillsHot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, hot, roles := newMoodFixture(t)

	durable := entity.Mood{Valence: 0.5, Arousal: 0.6, Tags: "开心", Intensity: 6, Description: "今天很顺"}
	err := roles.UpsertDetail(ctx, &entity.RoleDetail{RoleID: "role_001", RoleName: "小慧", Age: 22, Mood: durable})
	if err != nil {
		t.Fatalf("UpsertDetail: %v", err)
	}

	got, err := store.Current(ctx, "role_001", entity.NeutralMood())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got != durable {
		t.Errorf("mood = %+v, want durable %+v", got, durable)
	}

	fields, err := hot.HGetAll(ctx, moodengine.HotKey("role_001"))
	if err != nil {
		t.Fatalf("HGetAll: %v", err)
	}
	if fields["my_tags"] != "开心" || fields["my_intensity"] != "6" {
		t.Errorf("hot tier not refilled: %v", fields)
	}
}

func TestCurrentPrefersHotTier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, hot, roles := newMoodFixture(t)

	durable := entity.Mood{Valence: -0.5, Arousal: 0.2, Tags: "低落", Intensity: 3, Description: "d"}
	if err := roles.UpsertDetail(ctx, &entity.RoleDetail{RoleID: "role_001", RoleName: "小慧", Mood: durable}); err != nil {
		t.Fatalf("UpsertDetail: %v", err)
	}
	err := hot.HSet(ctx, moodengine.HotKey("role_001"), map[string]string{
		"my_valence":                  "0.7",
		"my_arousal":                  "0.8",
		"my_tags":                     "兴奋",
		"my_intensity":                "8",
		"my_mood_description_for_llm": "hot",
	})
	if err != nil {
		t.Fatalf("HSet: %v", err)
	}

	got, err := store.Current(ctx, "role_001", entity.NeutralMood())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got.Tags != "兴奋" || got.Intensity != 8 {
		t.Errorf("mood = %+v, want the hot value", got)
	}
}

func TestCurrentCorruptHotFallsBackToDurable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, hot, roles := newMoodFixture(t)

	durable := entity.Mood{Valence: 0.1, Arousal: 0.4, Tags: "平静", Intensity: 4, Description: "d"}
	if err := roles.UpsertDetail(ctx, &entity.RoleDetail{RoleID: "role_001", RoleName: "小慧", Mood: durable}); err != nil {
		t.Fatalf("UpsertDetail: %v", err)
	}
	if err := hot.HSet(ctx, moodengine.HotKey("role_001"), map[string]string{"my_valence": "NaN%"}); err != nil {
		t.Fatalf("HSet: %v", err)
	}

	got, err := store.Current(ctx, "role_001", entity.NeutralMood())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got != durable {
		t.Errorf("mood = %+v, want durable %+v", got, durable)
	}
}

func TestSaveWritesBothTiers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, hot, roles := newMoodFixture(t)
	if err := roles.UpsertDetail(ctx, &entity.RoleDetail{RoleID: "role_001", RoleName: "小慧", Mood: entity.NeutralMood()}); err != nil {
		t.Fatalf("UpsertDetail: %v", err)
	}

	next := entity.Mood{Valence: 2, Arousal: 0.9, Tags: "兴奋", Intensity: 9, Description: "n"}
	if err := store.Save(ctx, "role_001", next); err != nil {
		t.Fatalf("Save: %v", err)
	}

	detail, err := roles.GetDetail(ctx, "role_001")
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	// Clamp runs before the durable write.
	if detail.Mood.Valence != 1 || detail.Mood.Tags != "兴奋" {
		t.Errorf("durable mood = %+v, want clamped valence 1", detail.Mood)
	}

	fields, err := hot.HGetAll(ctx, moodengine.HotKey("role_001"))
	if err != nil {
		t.Fatalf("HGetAll: %v", err)
	}
	if fields["my_valence"] != "1" {
		t.Errorf("hot valence = %q, want 1", fields["my_valence"])
	}
}

func TestResetSeedsNeutral(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _, roles := newMoodFixture(t)
	angry := entity.Mood{Valence: -0.8, Arousal: 0.9, Tags: "愤怒", Intensity: 9, Description: "a"}
	if err := roles.UpsertDetail(ctx, &entity.RoleDetail{RoleID: "role_001", RoleName: "小慧", Mood: angry}); err != nil {
		t.Fatalf("UpsertDetail: %v", err)
	}

	if err := store.Reset(ctx, "role_001", entity.NeutralMood()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	got, err := store.Current(ctx, "role_001", entity.NeutralMood())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got != entity.NeutralMood() {
		t.Errorf("mood after reset = %+v, want neutral", got)
	}
}
