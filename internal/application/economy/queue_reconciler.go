package economy

import (
	"time"

	"github.com/stellardrift/stellardrift-go/internal/domain/catalog"
	"github.com/stellardrift/stellardrift-go/internal/domain/planet"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

// QueueReconciler resolves completed work in the planet's three FIFO queues.
// Entries with finishTime <= now are materialized and removed; the remainder
// keeps its order. Materialization deletes the entry, so within one sync an
// entry lands at most once.
type QueueReconciler struct {
	catalog catalog.Catalog
}

// NewQueueReconciler creates a queue reconciler
func NewQueueReconciler(cat catalog.Catalog) *QueueReconciler {
	return &QueueReconciler{catalog: cat}
}

// Reconcile materializes every due entry across all three queues
func (r *QueueReconciler) Reconcile(p *planet.Planet, now time.Time) {
	p.RecruitmentQueue = r.drain(p.RecruitmentQueue, now, func(e planet.QueueEntry) {
		p.AddUnits(e.ItemType, e.Count)
	})
	p.ManufacturingQueue = r.drain(p.ManufacturingQueue, now, func(e planet.QueueEntry) {
		if p.Tools == nil {
			p.Tools = shared.Amounts{}
		}
		p.Tools[shared.Resource(e.ItemType)] += e.Count
	})
	p.TurretQueue = r.drain(p.TurretQueue, now, func(e planet.QueueEntry) {
		levels := 1
		if stats := r.catalog.LevelStats(e.ItemType, 1); stats != nil && stats.DefenseLevels > 0 {
			levels = stats.DefenseLevels
		}
		p.DefenseLevel += levels * e.Count
	})
}

// drain splits a queue on "now", applying each due entry in order.
// Entries are chained, so due entries are always a prefix.
func (r *QueueReconciler) drain(queue []planet.QueueEntry, now time.Time, apply func(planet.QueueEntry)) []planet.QueueEntry {
	i := 0
	for ; i < len(queue); i++ {
		if queue[i].FinishTime.After(now) {
			break
		}
		apply(queue[i])
	}
	if i == 0 {
		return queue
	}
	return append([]planet.QueueEntry(nil), queue[i:]...)
}
