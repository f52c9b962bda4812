package waybar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/internal/control/controltest"
	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

func status(name string, on bool, brightness int) control.LightStatus {
	return control.LightStatus{
		Light: keylight.LightConfig{Name: name},
		State: keylight.LightState{On: on, Brightness: brightness, Temperature: 200},
	}
}

func unreachable(name string) control.LightStatus {
	return control.LightStatus{
		Light: keylight.LightConfig{Name: name},
		Err:   kerrors.Unreachablef("%s", name),
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		statuses []control.LightStatus
		want     Output
	}{
		{
			name:     "all on",
			statuses: []control.LightStatus{status("left", true, 40), status("right", true, 61)},
			want: Output{
				Text:    IconOn + " 50%",
				Tooltip: "left: on | 40% | ~5000K\nright: on | 61% | ~5000K",
				Class:   ClassOn,
			},
		},
		{
			name:     "mixed averages only lights that are on",
			statuses: []control.LightStatus{status("left", true, 30), status("right", false, 90)},
			want: Output{
				Text:    IconOn + " 30%",
				Tooltip: "left: on | 30% | ~5000K\nright: off | 90% | ~5000K",
				Class:   ClassMixed,
			},
		},
		{
			name:     "all off",
			statuses: []control.LightStatus{status("left", false, 30)},
			want: Output{
				Text:    IconOff,
				Tooltip: "left: off | 30% | ~5000K",
				Class:   ClassOff,
			},
		},
		{
			name:     "unreachable lights listed last",
			statuses: []control.LightStatus{unreachable("left"), status("right", true, 70)},
			want: Output{
				Text:    IconOn + " 70%",
				Tooltip: "right: on | 70% | ~5000K\nleft: unreachable",
				Class:   ClassOn,
			},
		},
		{
			name:     "all unreachable",
			statuses: []control.LightStatus{unreachable("left"), unreachable("right")},
			want:     Output{Text: IconOff + " --", Tooltip: "All lights unreachable", Class: ClassError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.statuses))
		})
	}
}

type failingSource struct{ err error }

func (f failingSource) States(ctx context.Context, names []string) ([]control.LightStatus, error) {
	return nil, f.err
}

func TestRenderConfigError(t *testing.T) {
	out := Render(context.Background(), failingSource{errors.New("invalid configuration: line 3")}, nil)
	assert.Equal(t, IconOff+" err", out.Text)
	assert.Equal(t, "invalid configuration: line 3", out.Tooltip)
	assert.Equal(t, ClassError, out.Class)
}

func TestRenderWithController(t *testing.T) {
	f := controltest.New(t, "left", "right")
	f.Light("right").SetState(keylight.LightState{On: false, Brightness: 10, Temperature: 344})

	out := Render(context.Background(), f.Controller, nil)
	assert.Equal(t, IconOn+" 50%", out.Text)
	assert.Equal(t, ClassMixed, out.Class)
	assert.Equal(t, "left: on | 50% | ~5000K\nright: off | 10% | ~2906K", out.Tooltip)

	out = Render(context.Background(), f.Controller, []string{"right"})
	assert.Equal(t, ClassOff, out.Class)
	assert.Zero(t, f.Light("left").InfoGets())
	assert.Zero(t, f.Light("right").InfoGets())
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Output{Text: "x", Tooltip: "a\nb", Class: ClassOn}))

	assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, map[string]string{"text": "x", "tooltip": "a\nb", "class": ClassOn}, decoded)
}
