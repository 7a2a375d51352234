package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/cypherdash/internal/cli"
	"github.com/rshade/cypherdash/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		assert.NotNil(t, root)
		assert.Equal(t, "cypherdash", root.Use)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{name: "nil error returns 0", err: nil, wantCode: 0, wantOut: ""},
		{name: "error returns 1", err: errors.New("boom"), wantCode: 1, wantOut: "Error: boom\n"},
		{
			name:     "wrapped wallet failure returns 1",
			err:      errors.Join(cli.ErrWalletAnalysisFailed, errors.New("timeout")),
			wantCode: 1,
			wantOut:  "Error: wallet analysis failed\ntimeout\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Equal(t, tt.wantCode, exitCode(tt.err, &buf))
			assert.Equal(t, tt.wantOut, buf.String())
		})
	}
}
