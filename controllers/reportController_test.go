package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"urbanfix-be/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func queryContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports?"+rawQuery, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, 10},
		{"page=3&limit=25", 3, 25},
		{"page=0&limit=0", 1, 1},
		{"page=-5&limit=-1", 1, 1},
		{"limit=100", 1, 100},
		{"limit=101", 1, 100},
		{"limit=9999", 1, 100},
		{"page=abc&limit=abc", 1, 10},
		{"page=2&limit=abc", 2, 10},
		{"page=abc&limit=50", 1, 50},
	}

	for _, tc := range cases {
		c := queryContext(t, tc.query)
		page, limit := parsePagination(c)
		assert.Equal(t, tc.wantPage, page, "query %q", tc.query)
		assert.Equal(t, tc.wantLimit, limit, "query %q", tc.query)
		assert.GreaterOrEqual(t, limit, 1)
		assert.LessOrEqual(t, limit, 100)
	}
}

func TestSortOptions(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, sortOptions("newest"))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, sortOptions(""))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, sortOptions("bogus"))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: 1}}, sortOptions("oldest"))
	assert.Equal(t, bson.D{{Key: "votes", Value: -1}, {Key: "createdAt", Value: -1}}, sortOptions("votes"))
	assert.Equal(t, bson.D{{Key: "views", Value: -1}, {Key: "createdAt", Value: -1}}, sortOptions("views"))
}

func TestBuildReportFilter(t *testing.T) {
	t.Run("empty query yields empty filter", func(t *testing.T) {
		filter, err := buildReportFilter(queryContext(t, ""))
		require.NoError(t, err)
		assert.Empty(t, filter)
	})

	t.Run("state is uppercased", func(t *testing.T) {
		filter, err := buildReportFilter(queryContext(t, "state=mg"))
		require.NoError(t, err)
		assert.Equal(t, "MG", filter["location.state"])
	})

	t.Run("city and enums pass through", func(t *testing.T) {
		filter, err := buildReportFilter(queryContext(t, "city=Salvador&type=POTHOLE&status=OPEN"))
		require.NoError(t, err)
		assert.Equal(t, "Salvador", filter["location.city"])
		assert.Equal(t, "POTHOLE", filter["type"])
		assert.Equal(t, "OPEN", filter["status"])
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		_, err := buildReportFilter(queryContext(t, "type=GRAFFITI"))
		assert.Error(t, err)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, err := buildReportFilter(queryContext(t, "status=CLOSED"))
		assert.Error(t, err)
	})
}

func TestVoteReply(t *testing.T) {
	reply := voteReply("Vote already recorded", 7)

	assert.Equal(t, "Vote already recorded", reply["message"])
	assert.Equal(t, int64(7), reply["votes"])
	assert.Equal(t, true, reply["userHasVoted"])
}

func TestValidateReportInput(t *testing.T) {
	valid := func() reportInput {
		return reportInput{
			Type:        "POTHOLE",
			Description: "Buraco grande na esquina",
			Location:    models.Location{City: "Araçuaí", State: "mg"},
		}
	}

	t.Run("valid input normalizes state", func(t *testing.T) {
		input := valid()
		require.NoError(t, validateReportInput(&input))
		assert.Equal(t, "MG", input.Location.State)
	})

	t.Run("empty description rejected", func(t *testing.T) {
		input := valid()
		input.Description = "   "
		assert.Error(t, validateReportInput(&input))
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		input := valid()
		input.Type = "FLOOD"
		assert.Error(t, validateReportInput(&input))
	})

	t.Run("bad location rejected", func(t *testing.T) {
		input := valid()
		input.Location.State = "Minas"
		assert.Error(t, validateReportInput(&input))
	})
}
