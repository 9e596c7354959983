package metrics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

func TestCache(t *testing.T) {
	t.Run("evicts oldest first beyond capacity", func(t *testing.T) {
		c := NewCache(3, time.Minute)
		for i := 0; i < 5; i++ {
			c.Set(fmt.Sprintf("k%d", i), entity.ReportMetrics{ProfitCount: i})
		}

		for _, key := range []string{"k0", "k1"} {
			if _, ok := c.Get(key); ok {
				t.Errorf("expected %s to be evicted", key)
			}
		}
		for i, key := range []string{"k2", "k3", "k4"} {
			m, ok := c.Get(key)
			if !ok || m.ProfitCount != i+2 {
				t.Errorf("expected %s to be cached, got %v %+v", key, ok, m)
			}
		}
		if c.Len() != 3 {
			t.Errorf("expected 3 entries, got %d", c.Len())
		}
	})

	t.Run("overwriting a key keeps its age", func(t *testing.T) {
		c := NewCache(2, time.Minute)
		c.Set("a", entity.ReportMetrics{})
		c.Set("b", entity.ReportMetrics{})
		c.Set("a", entity.ReportMetrics{ProfitCount: 1})
		c.Set("c", entity.ReportMetrics{})

		if _, ok := c.Get("a"); ok {
			t.Error("expected a to be evicted as the oldest insert")
		}
		if _, ok := c.Get("b"); !ok {
			t.Error("expected b to be kept")
		}
	})

	t.Run("store events clear everything", func(t *testing.T) {
		c := NewCache(10, time.Minute)
		c.Set("a", entity.ReportMetrics{})
		c.Set("b", entity.ReportMetrics{})

		c.OnStoreEvent(context.Background(), entity.StoreEvent{Name: entity.EventProfitAdded, ReportID: "r1"})
		if c.Len() != 0 {
			t.Errorf("expected empty cache, got %d entries", c.Len())
		}
	})

	t.Run("entries expire", func(t *testing.T) {
		c := NewCache(10, 20*time.Millisecond)
		c.Set("a", entity.ReportMetrics{})
		time.Sleep(40 * time.Millisecond)
		if _, ok := c.Get("a"); ok {
			t.Error("expected entry to expire")
		}
	})
}
