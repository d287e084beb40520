package leaderboard

import (
	"sort"
	"time"

	"github.com/watercup/backend/pkg/watercup/models"
	"gorm.io/gorm"
)

// Row is one ranked leaderboard entry. Rows are derived on every call and
// never persisted or cached across requests.
type Row struct {
	GroupID     string  `json:"group_id"`
	UserID      string  `json:"user_id"`
	Name        string  `json:"name"`
	TotalML     int     `json:"total_ml"`
	TotalLiters float64 `json:"total_liters"`
	Rank        int     `json:"rank"`
}

// ComputeWeekly computes the ranked weekly leaderboard for a group as of
// the given time. It is a pure function of current membership and the
// event log: every current member gets a row (zero total included), totals
// are the in-window sums, ordering is total desc with user id as the
// deterministic tie-break, and ranking is dense (equal totals share a
// rank, the next distinct total gets the next rank). Concurrent redundant
// calls over unchanged data yield identical results.
func ComputeWeekly(db *gorm.DB, groupID string, asOf time.Time) ([]Row, error) {
	start, end := WeekOf(asOf)

	var memberships []models.GroupMembership
	if err := db.Preload("User").Where("group_id = ?", groupID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	var sums []struct {
		UserID  string
		TotalML int
	}
	err := db.Model(&models.WaterLog{}).
		Select("user_id, sum(ml) as total_ml").
		Where("group_id = ? AND created_at >= ? AND created_at < ?", groupID, start, end).
		Group("user_id").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int, len(sums))
	for _, s := range sums {
		totals[s.UserID] = s.TotalML
	}

	rows := make([]Row, 0, len(memberships))
	for _, m := range memberships {
		total := totals[m.UserID]
		rows = append(rows, Row{
			GroupID:     groupID,
			UserID:      m.UserID,
			Name:        m.User.Name,
			TotalML:     total,
			TotalLiters: float64(total) / 1000,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalML != rows[j].TotalML {
			return rows[i].TotalML > rows[j].TotalML
		}
		return rows[i].UserID < rows[j].UserID
	})

	rank := 0
	for i := range rows {
		if i == 0 || rows[i].TotalML != rows[i-1].TotalML {
			rank++
		}
		rows[i].Rank = rank
	}

	return rows, nil
}
