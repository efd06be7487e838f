package services

import (
	"testing"

	"lucky-draw-backend/internal/models"
)

func TestCreateEvent(t *testing.T) {
	repo := newTestRepo()
	svc := NewEventService(repo, testConfig())

	t.Run("applies defaults", func(t *testing.T) {
		event, err := svc.CreateEvent(testTenant, CreateEventRequest{Name: "  Year End Gala  "})
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
		if event.Name != "Year End Gala" {
			t.Errorf("name = %q, want trimmed", event.Name)
		}
		if event.Status != models.EventStatusDraft {
			t.Errorf("status = %s, want DRAFT", event.Status)
		}
		if event.Locked {
			t.Error("new event must not be locked")
		}
		if event.ParticipantMode != models.ParticipantModeCSV {
			t.Errorf("mode = %s, want csv default", event.ParticipantMode)
		}
		if !event.CheckinDeviceLimit {
			t.Error("device limit must default on")
		}
		if len(event.RequiredFields) != 1 || event.RequiredFields[0] != "display_name" {
			t.Errorf("required fields = %v, want [display_name]", event.RequiredFields)
		}
	})

	t.Run("normalizes required fields", func(t *testing.T) {
		event, err := svc.CreateEvent(testTenant, CreateEventRequest{
			Name:           "Gala",
			RequiredFields: []string{"department", "department", "favorite_color", "email"},
		})
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
		want := []string{"display_name", "department", "email"}
		if len(event.RequiredFields) != len(want) {
			t.Fatalf("required fields = %v, want %v", event.RequiredFields, want)
		}
		for i, field := range want {
			if event.RequiredFields[i] != field {
				t.Errorf("required fields = %v, want %v", event.RequiredFields, want)
				break
			}
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		if _, err := svc.CreateEvent(testTenant, CreateEventRequest{Name: "   "}); err == nil {
			t.Fatal("expected error for empty name")
		}
	})
}

func TestEventLifecycle(t *testing.T) {
	t.Run("draft events are editable", func(t *testing.T) {
		repo := newTestRepo()
		svc := NewEventService(repo, testConfig())
		event := seedEvent(repo, testTenant, nil)

		name := "Renamed"
		updated, err := svc.UpdateEvent(testTenant, event.ID.String(), UpdateEventRequest{Name: &name})
		if err != nil {
			t.Fatalf("UpdateEvent: %v", err)
		}
		if updated.Name != "Renamed" {
			t.Errorf("name = %q, want Renamed", updated.Name)
		}
	})

	t.Run("running events are not editable", func(t *testing.T) {
		repo := newTestRepo()
		svc := NewEventService(repo, testConfig())
		event := seedEvent(repo, testTenant, func(e *models.Event) {
			e.Status = models.EventStatusRunning
		})

		name := "Renamed"
		if _, err := svc.UpdateEvent(testTenant, event.ID.String(), UpdateEventRequest{Name: &name}); err == nil {
			t.Fatal("expected error updating running event")
		}
	})

	t.Run("lock is one-way and idempotent", func(t *testing.T) {
		repo := newTestRepo()
		svc := NewEventService(repo, testConfig())
		event := seedEvent(repo, testTenant, nil)

		locked, err := svc.LockEvent(testTenant, event.ID.String())
		if err != nil {
			t.Fatalf("LockEvent: %v", err)
		}
		if !locked.Locked {
			t.Fatal("event not locked")
		}

		again, err := svc.LockEvent(testTenant, event.ID.String())
		if err != nil {
			t.Fatalf("LockEvent twice: %v", err)
		}
		if !again.Locked {
			t.Error("second lock cleared the flag")
		}
	})

	t.Run("start requires a locked draft", func(t *testing.T) {
		repo := newTestRepo()
		svc := NewEventService(repo, testConfig())
		event := seedEvent(repo, testTenant, nil)

		if _, err := svc.StartEvent(testTenant, event.ID.String()); err == nil {
			t.Fatal("expected error starting unlocked event")
		}

		if _, err := svc.LockEvent(testTenant, event.ID.String()); err != nil {
			t.Fatalf("LockEvent: %v", err)
		}
		started, err := svc.StartEvent(testTenant, event.ID.String())
		if err != nil {
			t.Fatalf("StartEvent: %v", err)
		}
		if started.Status != models.EventStatusRunning {
			t.Errorf("status = %s, want RUNNING", started.Status)
		}

		if _, err := svc.StartEvent(testTenant, event.ID.String()); err == nil {
			t.Fatal("expected error starting running event")
		}
	})

	t.Run("end requires a running event and is terminal", func(t *testing.T) {
		repo := newTestRepo()
		svc := NewEventService(repo, testConfig())
		event := seedEvent(repo, testTenant, func(e *models.Event) {
			e.Locked = true
			e.Status = models.EventStatusRunning
		})

		ended, err := svc.EndEvent(testTenant, event.ID.String())
		if err != nil {
			t.Fatalf("EndEvent: %v", err)
		}
		if ended.Status != models.EventStatusEnded {
			t.Errorf("status = %s, want ENDED", ended.Status)
		}

		if _, err := svc.EndEvent(testTenant, event.ID.String()); err == nil {
			t.Fatal("expected error ending ended event")
		}
		if _, err := svc.StartEvent(testTenant, event.ID.String()); err == nil {
			t.Fatal("expected error restarting ended event")
		}
	})

	t.Run("tenant isolation", func(t *testing.T) {
		repo := newTestRepo()
		svc := NewEventService(repo, testConfig())
		event := seedEvent(repo, testTenant, nil)

		if _, err := svc.GetEvent("globex", event.ID.String()); err == nil {
			t.Fatal("expected not found for other tenant")
		}
	})
}
