package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nazmulhossain/shopdesk-backend/internal/courier"
	"github.com/nazmulhossain/shopdesk-backend/pkg/db/models"
	"github.com/nazmulhossain/shopdesk-backend/pkg/logger"
)

type fakeLister struct {
	orders []models.Order
	err    error
}

func (f *fakeLister) FindOpenConsignments(context.Context, int) ([]models.Order, error) {
	return f.orders, f.err
}

type fakeReconciler struct {
	calls  int
	failOn map[uuid.UUID]error
}

func (f *fakeReconciler) Reconcile(_ context.Context, orderID uuid.UUID) (*courier.SyncResult, error) {
	f.calls++
	if err, ok := f.failOn[orderID]; ok {
		return nil, err
	}
	return &courier.SyncResult{Changed: true}, nil
}

func TestCourierSyncJobReconcilesEveryOpenOrder(t *testing.T) {
	orders := []models.Order{
		{ID: uuid.New(), OrderNumber: "ORD-0001"},
		{ID: uuid.New(), OrderNumber: "ORD-0002"},
		{ID: uuid.New(), OrderNumber: "ORD-0003"},
	}
	reconciler := &fakeReconciler{failOn: map[uuid.UUID]error{
		orders[1].ID: errors.New("provider timeout"),
	}}
	job, err := NewCourierSyncJob(CourierSyncJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		Orders:     &fakeLister{orders: orders},
		Reconciler: reconciler,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if reconciler.calls != 3 {
		t.Fatalf("expected 3 reconciles, got %d", reconciler.calls)
	}
}

func TestCourierSyncJobFailsWhenEveryReconcileFails(t *testing.T) {
	order := models.Order{ID: uuid.New(), OrderNumber: "ORD-0009"}
	reconciler := &fakeReconciler{failOn: map[uuid.UUID]error{
		order.ID: errors.New("provider down"),
	}}
	job, err := NewCourierSyncJob(CourierSyncJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		Orders:     &fakeLister{orders: []models.Order{order}},
		Reconciler: reconciler,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected run to fail when every reconcile fails")
	}
}
