package controllers

import (
	"testing"
	"time"

	"urbanfix-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(t models.IssueType, city, state string, count int64, latest time.Time) TopReportedItem {
	return TopReportedItem{
		Type:  t,
		City:  city,
		State: state,
		Count: count,
		LatestReport: LatestReportSummary{
			CreatedAt: latest,
			Status:    models.StatusOpen,
		},
	}
}

func TestSortTopReported(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("ranks by count descending", func(t *testing.T) {
		items := []TopReportedItem{
			item(models.Garbage, "Araçuaí", "MG", 1, base),
			item(models.Pothole, "Araçuaí", "MG", 2, base.Add(-time.Hour)),
		}
		sortTopReported(items)

		require.Len(t, items, 2)
		assert.Equal(t, models.Pothole, items[0].Type)
		assert.Equal(t, int64(2), items[0].Count)
		assert.Equal(t, models.Garbage, items[1].Type)
	})

	t.Run("ties broken by most recent latest report", func(t *testing.T) {
		items := []TopReportedItem{
			item(models.Garbage, "Araçuaí", "MG", 3, base.Add(-time.Hour)),
			item(models.Pothole, "Belo Horizonte", "MG", 3, base),
		}
		sortTopReported(items)

		assert.Equal(t, models.Pothole, items[0].Type)
		assert.Equal(t, models.Garbage, items[1].Type)
	})

	t.Run("full ties fall back to group key", func(t *testing.T) {
		items := []TopReportedItem{
			item(models.Streetlight, "Araçuaí", "MG", 2, base),
			item(models.Garbage, "Araçuaí", "MG", 2, base),
			item(models.Garbage, "Araçuaí", "BA", 2, base),
		}
		sortTopReported(items)

		assert.Equal(t, models.Garbage, items[0].Type)
		assert.Equal(t, "BA", items[0].State)
		assert.Equal(t, models.Garbage, items[1].Type)
		assert.Equal(t, "MG", items[1].State)
		assert.Equal(t, models.Streetlight, items[2].Type)
	})

	t.Run("order is deterministic", func(t *testing.T) {
		build := func() []TopReportedItem {
			return []TopReportedItem{
				item(models.Pothole, "Araçuaí", "MG", 2, base),
				item(models.Garbage, "Araçuaí", "MG", 1, base),
				item(models.Sidewalk, "Salvador", "BA", 2, base),
			}
		}
		a, b := build(), build()
		sortTopReported(a)
		sortTopReported(b)
		assert.Equal(t, a, b)
	})
}
