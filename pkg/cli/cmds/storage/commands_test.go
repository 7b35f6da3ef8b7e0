package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/synchrotime/pkg/command"
)

func TestToken(t *testing.T) {
	testCases := []struct {
		task   command.Task
		args   []string
		expect string
	}{
		{command.Format, []string{"3"}, "s:3:f"},
		{command.Read, []string{"1", "0", "15"}, "s:1:r:0:15"},
		{command.Erase, []string{"2", "16", "31", "extra"}, "s:2:e:16:31"},
		{command.Write, []string{"0", "0", "0"}, "s:0:w:0:0"},
	}
	for _, tc := range testCases {
		t.Run(tc.expect, func(t *testing.T) {
			token, err := Token(tc.task, tc.args)
			require.NoError(t, err)
			require.Equal(t, tc.expect, token)
			d, err := command.Parse(token)
			require.NoError(t, err)
			require.Equal(t, tc.task, d.Task)
		})
	}
}

func TestTokenMissingArgs(t *testing.T) {
	_, err := Token(command.Format, nil)
	require.Error(t, err)
	_, err = Token(command.Read, []string{"1", "0"})
	require.Error(t, err)
}
