package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubPlugin struct{ DefaultPlugin }

func (p *stubPlugin) Name() string { return "stub" }

func TestGetFallsBackToDefault(t *testing.T) {
	p := Get("no-such-platform")
	assert.Equal(t, "default", p.Name())
	d := p.Defaults()
	assert.Equal(t, 20, d.MaxPages)
	assert.Equal(t, "---- More ----", d.MoreMarker)
	assert.Empty(t, d.UnlockCommand, "默认平台无需解锁")
}

func TestRegisterAndNames(t *testing.T) {
	Register("stub", &stubPlugin{})
	assert.Equal(t, "stub", Get("stub").Name())
	assert.Contains(t, Names(), "stub")
	assert.Contains(t, Names(), "default")
}

func TestDefaultTransformCopies(t *testing.T) {
	in := []string{"display version"}
	out := (&DefaultPlugin{}).TransformCommands(CommandTransformInput{Commands: in})
	assert.Equal(t, in, out.Commands)
	out.Commands[0] = "changed"
	assert.Equal(t, "display version", in[0], "转换结果不应共享底层数组")
}
