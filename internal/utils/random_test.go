package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/grid"
)

func TestGenerateRandomRoster(t *testing.T) {
	plan := GenerateRandomExamPlan()
	_, err := grid.New(plan.Grid)
	require.NoError(t, err)

	roster := GenerateRandomRoster(15, plan.Grid, "example.edu")

	require.Len(t, roster, 15)
	seen := make(map[string]bool)
	for _, s := range roster {
		require.False(t, seen[s.Name])
		seen[s.Name] = true
		require.True(t, strings.HasSuffix(s.Email, "@example.edu"))
		if s.Priority != nil {
			require.GreaterOrEqual(t, *s.Priority, 1)
		}
	}
}
