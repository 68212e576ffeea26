package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRoster(t *testing.T) {
	input := "\ufeffName, Exclude ,priority,email\n" +
		"张三,D1P2; D3P1,1,zhangsan@school.edu\n" +
		"李四,,,\n" +
		",D1P1,,\n" +
		"王五,C1-2\n"

	roster, err := ParseRoster(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, roster, 3)

	require.Equal(t, "张三", roster[0].Name)
	require.Equal(t, "D1P2; D3P1", roster[0].ExclusionText)
	require.NotNil(t, roster[0].Priority)
	require.Equal(t, 1, *roster[0].Priority)
	require.Equal(t, "zhangsan@school.edu", roster[0].Email)

	require.Equal(t, "李四", roster[1].Name)
	require.Nil(t, roster[1].Priority)

	require.Equal(t, "王五", roster[2].Name)
	require.Equal(t, "C1-2", roster[2].ExclusionText)
	require.Empty(t, roster[2].Email)
}

func TestParseRosterWithoutExcludeColumn(t *testing.T) {
	roster, err := ParseRoster(strings.NewReader("name\nA\nB\n"))
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.Empty(t, roster[0].ExclusionText)
	require.Equal(t, "B", roster[1].Name)
}

func TestParseRosterErrors(t *testing.T) {
	_, err := ParseRoster(strings.NewReader(""))
	require.ErrorIs(t, err, ErrMissingNameColumn)

	_, err = ParseRoster(strings.NewReader("staff,exclude\nA,D1P1\n"))
	require.ErrorIs(t, err, ErrMissingNameColumn)

	_, err = ParseRoster(strings.NewReader("name,priority\nA,high\n"))
	require.Error(t, err)

	_, err = ParseRoster(strings.NewReader("name\nA\nA\n"))
	require.Error(t, err)
}
