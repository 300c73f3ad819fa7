package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInbound(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Inbound
		wantErr bool
	}{
		{
			name:  "control start",
			input: `{"cat":"control","value":"start"}`,
			want:  InboundControl{Value: "start"},
		},
		{
			name:  "obstacles",
			input: `{"cat":"obstacles","value":{"obstacles":[{"id":1,"x":5,"y":10,"d":2}]}}`,
			want: InboundAction{Action: ObstaclesAction{
				Obstacles: []Obstacle{{ID: 1, X: 5, Y: 10, Direction: 2}},
			}},
		},
		{
			name:  "snap",
			input: `{"cat":"snap","value":{"id":3,"signal":"C"}}`,
			want:  InboundAction{Action: SnapAction{ObstacleID: 3, Signal: "C"}},
		},
		{
			name:  "stitch",
			input: `{"cat":"stitch","value":null}`,
			want:  InboundAction{Action: StitchAction{}},
		},
		{
			name:    "unknown category",
			input:   `{"cat":"dance","value":"now"}`,
			wantErr: true,
		},
		{
			name:    "control value not a string",
			input:   `{"cat":"control","value":{"go":true}}`,
			wantErr: true,
		},
		{
			name:    "not json",
			input:   `start please`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInbound([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutboundEnvelope(t *testing.T) {
	b, err := json.Marshal(Info("Robot is ready!"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"cat":"info","value":"Robot is ready!"}`, string(b))

	b, err = json.Marshal(Status("running"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"cat":"status","value":"running"}`, string(b))

	b, err = json.Marshal(LocationUpdate(Location{X: 5, Y: 10, D: 2}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"cat":"location","value":{"x":5,"y":10,"d":2}}`, string(b))
}
