package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"

	"marketplace-admin-backend/internal/events"
)

type stubPublisher struct {
	published []events.Event
	err       error
}

func (p *stubPublisher) Publish(ctx context.Context, e events.Event) error {
	p.published = append(p.published, e)
	return p.err
}

func (p *stubPublisher) Close() error { return nil }

func TestInvalidatingPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("Resolution drops cached metrics", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		next := &stubPublisher{}
		p := NewInvalidatingPublisher(next, NewRedisDashboardCache(client))

		mock.ExpectDel(dashboardKey).SetVal(1)

		assert.NoError(t, p.Publish(ctx, events.Event{Type: events.DisputeResolved, EntityID: "DSP-1"}))
		assert.Len(t, next.published, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Thread messages keep the cache", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		p := NewInvalidatingPublisher(&stubPublisher{}, NewRedisDashboardCache(client))

		assert.NoError(t, p.Publish(ctx, events.Event{Type: events.DisputeMessageAdded, EntityID: "DSP-1"}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalidates even when publishing fails", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		next := &stubPublisher{err: errors.New("broker down")}
		p := NewInvalidatingPublisher(next, NewRedisDashboardCache(client))

		mock.ExpectDel(dashboardKey).SetVal(1)

		assert.EqualError(t, p.Publish(ctx, events.Event{Type: events.UserSuspended, EntityID: "usr_1"}), "broker down")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Cache errors are not returned", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		p := NewInvalidatingPublisher(&stubPublisher{}, NewRedisDashboardCache(client))

		mock.ExpectDel(dashboardKey).SetErr(errors.New("connection refused"))

		assert.NoError(t, p.Publish(ctx, events.Event{Type: events.LedgerEntryRecorded, EntityID: "e1"}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
